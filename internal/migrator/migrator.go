package migrator

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded SQL migrations once each, in file name order.
type Migrator struct {
	db     *sqlx.DB
	log    *slog.Logger
	schema string
	files  fs.FS
}

// NewMigrator creates a migrator for the embedded migrations.
func NewMigrator(db *sqlx.DB, log *slog.Logger, schema string) *Migrator {
	sub, _ := fs.Sub(migrationsFS, "migrations")
	return &Migrator{
		db:     db,
		log:    log.With(slog.String("component", "migrator")),
		schema: schema,
		files:  sub,
	}
}

// Run applies all pending migrations.
func (m *Migrator) Run(ctx context.Context) error {
	op := "migrator.Run"
	m.log.Info("starting database migrations", slog.String("schema", m.schema))

	if err := m.ensureSchema(ctx); err != nil {
		return fmt.Errorf("%s: ensure schema: %w", op, err)
	}

	versions, err := m.Pending(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, version := range versions {
		if err := m.apply(ctx, version); err != nil {
			return fmt.Errorf("%s: migration %s: %w", op, version, err)
		}
	}

	m.log.Info("database migrations completed", slog.Int("applied", len(versions)))
	return nil
}

// Versions lists the embedded migration versions in order.
func (m *Migrator) Versions() ([]string, error) {
	entries, err := fs.ReadDir(m.files, ".")
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			versions = append(versions, strings.TrimSuffix(entry.Name(), ".sql"))
		}
	}
	slices.Sort(versions)
	return versions, nil
}

// Pending returns the embedded versions not yet recorded in schema_migrations.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	all, err := m.Versions()
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var applied []string
	query := fmt.Sprintf(`SELECT version FROM %s.schema_migrations`, m.quotedSchema())
	if err := m.db.SelectContext(ctx, &applied, query); err != nil {
		return nil, fmt.Errorf("read applied versions: %w", err)
	}

	pending := all[:0:0]
	for _, v := range all {
		if !slices.Contains(applied, v) {
			pending = append(pending, v)
		}
	}
	return pending, nil
}

func (m *Migrator) quotedSchema() string {
	return pq.QuoteIdentifier(m.schema)
}

func (m *Migrator) ensureSchema(ctx context.Context) error {
	schema := m.quotedSchema()
	if _, err := m.db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, schema)
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *Migrator) apply(ctx context.Context, version string) (err error) {
	content, err := fs.ReadFile(m.files, version+".sql")
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	m.log.Info("applying migration", slog.String("version", version))

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL search_path TO %s, public", m.quotedSchema())); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}

	if _, err = tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s.schema_migrations (version) VALUES ($1)`, m.quotedSchema())
	if _, err = tx.ExecContext(ctx, insert, version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
