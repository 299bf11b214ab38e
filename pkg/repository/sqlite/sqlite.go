package sqlite

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// SQLite is a single file content backend
type SQLite struct {
	db     *sql.DB
	schema *schemaRepository
	entity *entityRepository
}

var _ interfaces.Repository = &SQLite{}

// New opens the database at dsn and applies pending migrations. Use ":memory:" for a
// throwaway database.
func New(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{
		db:     db,
		schema: &schemaRepository{db: db},
		entity: &entityRepository{db: db},
	}, nil
}

// open configures the connection: WAL mode, busy timeout of 5s and a single connection
// to avoid locking issues.
func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dsn", dsn))
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to configure database", goerr.V("pragma", p))
		}
	}

	return db, nil
}

func (s *SQLite) Schema() interfaces.SchemaRepository {
	return s.schema
}

func (s *SQLite) Entity() interfaces.EntityRepository {
	return s.entity
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
