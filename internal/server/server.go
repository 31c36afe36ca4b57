package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/bootstrap"
	"github.com/monchobi/artschool/internal/config"
	"github.com/monchobi/artschool/internal/db"
	"github.com/monchobi/artschool/internal/pkg/helpers"
	"github.com/monchobi/artschool/internal/pkg/observability"
)

// Server holds the state for the HTTP server.
type Server struct {
	config      *config.Config
	router      *gin.Engine
	database    *db.PostgresDB
	deps        *bootstrap.Dependencies
	flushSentry func()
	logger      zerolog.Logger
	http        *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	flush, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment, cfg.Sentry.Release)
	if err != nil {
		lgr.Warn().Err(err).Msg("Failed to initialize Sentry, continuing without error reporting")
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		flush()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		flush()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config:      cfg,
		router:      bootstrap.SetupRouter(cfg, database, deps, lgr),
		database:    database,
		deps:        deps,
		flushSentry: flush,
		logger:      lgr,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  helpers.ParseDuration(s.config.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: helpers.ParseDuration(s.config.Server.WriteTimeout, 10*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.release()
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error
	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = fmt.Errorf("server shutdown completed with errors: %w", err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	s.release()
	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

// release stops the hub and event publisher, then closes redis and the database.
func (s *Server) release() {
	if s.deps != nil {
		s.deps.Close()
	}
	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
	}
	if s.flushSentry != nil {
		s.flushSentry()
	}
}
