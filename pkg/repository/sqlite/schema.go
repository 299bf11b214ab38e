package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

type schemaRepository struct {
	db *sql.DB
}

func (r *schemaRepository) Get(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error) {
	var body string
	err := r.db.QueryRowContext(ctx, "SELECT body FROM schemas WHERE kind = ?", kind.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrSchemaNotFound, "schema not found", goerr.V(model.EntityKindKey, kind))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get schema", goerr.V(model.EntityKindKey, kind))
	}

	var schema config.FieldSchema
	if err := json.Unmarshal([]byte(body), &schema); err != nil {
		return nil, goerr.Wrap(err, "failed to decode schema", goerr.V(model.EntityKindKey, kind))
	}
	return &schema, nil
}

func (r *schemaRepository) Put(ctx context.Context, schema *config.FieldSchema) error {
	if err := schema.Kind.Validate(); err != nil {
		return goerr.Wrap(err, "invalid schema kind")
	}

	body, err := json.Marshal(schema)
	if err != nil {
		return goerr.Wrap(err, "failed to encode schema", goerr.V(model.EntityKindKey, schema.Kind))
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO schemas (kind, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (kind) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		schema.Kind.String(), string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return goerr.Wrap(err, "failed to save schema", goerr.V(model.EntityKindKey, schema.Kind))
	}
	return nil
}

func (r *schemaRepository) List(ctx context.Context) ([]*config.FieldSchema, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT body FROM schemas ORDER BY kind")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list schemas")
	}
	defer rows.Close()

	schemas := make([]*config.FieldSchema, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, goerr.Wrap(err, "failed to scan schema")
		}
		var schema config.FieldSchema
		if err := json.Unmarshal([]byte(body), &schema); err != nil {
			return nil, goerr.Wrap(err, "failed to decode schema")
		}
		schemas = append(schemas, &schema)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate schemas")
	}
	return schemas, nil
}
