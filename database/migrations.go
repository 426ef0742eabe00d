package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed schema.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// RunMigrations creates any missing tables. It is safe to run on every start.
func (db *DB) RunMigrations(ctx context.Context) error {
	schema := sqliteSchema
	if db.dialect == Postgres {
		schema = postgresSchema
	}

	if _, err := db.sql.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Debug("Database schema applied", "dialect", db.dialect)
	return nil
}
