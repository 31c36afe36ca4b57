package main

import (
	"os"

	"github.com/monchobi/artschool/internal/pkg/logger"
	"github.com/monchobi/artschool/internal/server"
)

// @title Monchobi Art School API
// @version 1.0
// @description Class catalog, seat reservations, payments and class review for the art school

// @host localhost:5000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
