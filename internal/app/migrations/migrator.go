package migrations

import (
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var FS embed.FS

const migrationsDir = "sql"

// Migrator manages database migrations
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// Up applies every pending migration embedded in the binary.
func (m *Migrator) Up() error {
	sqlDB := stdlib.OpenDBFromPool(m.db)
	defer sqlDB.Close()

	goose.SetBaseFS(FS)
	goose.SetLogger(gooseLogger{m.logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	m.logger.Info().Int64("version", version).Msg("Database schema is up to date")
	return nil
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	logger zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal().Msgf(format, v...)
}
