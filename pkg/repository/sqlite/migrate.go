package sqlite

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
)

// migrations are applied in order; version is index + 1
var migrations = [][]string{
	{
		`CREATE TABLE schemas (
			kind TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE entities (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			name_lower TEXT NOT NULL DEFAULT '',
			thumbnail TEXT NOT NULL DEFAULT '',
			field_values TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (kind, id)
		)`,
		`CREATE INDEX idx_entities_kind_name ON entities (kind, name_lower)`,
		`CREATE TABLE counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
	},
}

// migrate runs all pending schema migrations inside a transaction. Migrations are tracked
// in the schema_migrations table by version number.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return goerr.Wrap(err, "failed to create schema_migrations")
	}

	for i, stmts := range migrations {
		version := i + 1

		var exists int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&exists); err != nil {
			return goerr.Wrap(err, "failed to check migration", goerr.V("version", version))
		}
		if exists > 0 {
			continue
		}

		if err := applyMigration(ctx, db, version, stmts); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin migration", goerr.V("version", version))
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return goerr.Wrap(err, "migration failed", goerr.V("version", version))
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return goerr.Wrap(err, "failed to record migration", goerr.V("version", version))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit migration", goerr.V("version", version))
	}
	return nil
}
