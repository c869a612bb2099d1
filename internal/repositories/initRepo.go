package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"ReadinessBot/internal/config"
	"ReadinessBot/internal/migrator"
	"ReadinessBot/internal/utils/logger/sl"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Repository provides access to the database.
type Repository struct {
	DB     *sqlx.DB
	log    *slog.Logger
	schema string
}

// New creates a new repository, connects to the database, and runs migrations.
func New(logger *slog.Logger, cfg *config.Config) *Repository {
	op := "repositories.New()"
	log := logger.With(
		slog.String("op", op))

	conn, err := sqlx.Connect("postgres", cfg.DBConfig.DSN())
	if err != nil {
		log.Error("error connecting to database", sl.Err(err))
		panic("error connecting to database")
	}

	if err := conn.Ping(); err != nil {
		log.Error("error pinging database", sl.Err(err))
		panic("error pinging database")
	}

	log.Debug("sqlx connected to database")

	m := migrator.NewMigrator(conn, log, cfg.DBConfig.Schema)
	if err := m.Run(context.Background()); err != nil {
		log.Error("error running database migrations", sl.Err(err))
		panic("error running database migrations")
	}

	return NewWithDB(logger, conn, cfg.DBConfig.Schema)
}

// NewWithDB wraps an already connected database.
func NewWithDB(logger *slog.Logger, db *sqlx.DB, schema string) *Repository {
	return &Repository{
		DB:     db,
		log:    logger.With(slog.String("component", "repository")),
		schema: schema,
	}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// Shutdown closes the database connection.
func (r *Repository) Shutdown(ctx context.Context) error {
	op := "Repository.Shutdown"
	done := make(chan error, 1)
	go func() { done <- r.DB.Close() }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit %s: %w", op, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("error exit %s: %w", op, err)
		}
		return nil
	}
}
