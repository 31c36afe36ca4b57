//go:build integration

// Package testdb starts a throwaway Postgres container with the application
// schema applied.
package testdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/monchobi/artschool/internal/app/migrations"
	"github.com/monchobi/artschool/internal/db"
)

// Handle owns a migrated database and the container behind it.
type Handle struct {
	DB   *db.PostgresDB
	stop func(context.Context) error
}

// Close releases the pool and terminates the container.
func (h *Handle) Close() {
	if h.DB != nil {
		h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
}

// Start runs postgres:16-alpine and applies every migration.
func Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("artschool"),
		postgres.WithUsername("artschool"),
		postgres.WithPassword("artschool"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(context.Background())
		return nil, err
	}

	pool, err := pgxpool.New(context.Background(), uri)
	if err != nil {
		_ = pg.Terminate(context.Background())
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		_ = pg.Terminate(context.Background())
		return nil, err
	}

	if err := migrations.NewMigrator(pool, zerolog.Nop()).Up(); err != nil {
		pool.Close()
		_ = pg.Terminate(context.Background())
		return nil, err
	}

	return &Handle{DB: db.NewFromPool(pool), stop: pg.Terminate}, nil
}

// Reset empties every application table.
func (h *Handle) Reset(ctx context.Context) error {
	_, err := h.DB.Pool.Exec(ctx, `TRUNCATE classes, enrollments, payments, users, approved_classes, denied_classes CASCADE`)
	return err
}
