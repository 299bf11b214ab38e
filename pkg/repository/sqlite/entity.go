package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

const entityColumns = "id, kind, name, thumbnail, field_values, created_at, updated_at"

type entityRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*model.Entity, error) {
	var (
		e                    model.Entity
		id, kind, values     string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &kind, &e.Name, &e.Thumbnail, &values, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	e.ID = types.EntityID(id)
	e.Kind = types.EntityKind(kind)
	if err := json.Unmarshal([]byte(values), &e.Values); err != nil {
		return nil, goerr.Wrap(err, "failed to decode field values", goerr.V(model.EntityIDKey, id))
	}
	if e.Values == nil {
		e.Values = make(map[string]any)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &e, nil
}

func (r *entityRepository) Get(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE kind = ? AND id = ?", kind.String(), id.String())

	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrEntityNotFound, "entity not found",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get entity",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}
	return e, nil
}

func (r *entityRepository) List(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE kind = ? ORDER BY seq", kind.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list entities", goerr.V(model.EntityKindKey, kind))
	}
	defer rows.Close()

	entities := make([]*model.Entity, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan entity", goerr.V(model.EntityKindKey, kind))
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate entities", goerr.V(model.EntityKindKey, kind))
	}
	return entities, nil
}

func nextID(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES ('entity', 1)
		 ON CONFLICT (name) DO UPDATE SET value = value + 1`); err != nil {
		return 0, goerr.Wrap(err, "failed to increment counter")
	}

	var id int64
	if err := tx.QueryRowContext(ctx, "SELECT value FROM counters WHERE name = 'entity'").Scan(&id); err != nil {
		return 0, goerr.Wrap(err, "failed to read counter")
	}
	return id, nil
}

// advanceID keeps generated ids above explicitly assigned numeric ones
func advanceID(ctx context.Context, tx *sql.Tx, n int64) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES ('entity', ?)
		 ON CONFLICT (name) DO UPDATE SET value = max(value, excluded.value)`, n); err != nil {
		return goerr.Wrap(err, "failed to advance counter")
	}
	return nil
}

func (r *entityRepository) Create(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	if err := entity.Kind.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid entity kind")
	}

	values := entity.Values
	if values == nil {
		values = make(map[string]any)
	}
	body, err := json.Marshal(values)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode field values")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	id := entity.ID
	if id == "" {
		n, err := nextID(ctx, tx)
		if err != nil {
			return nil, err
		}
		id = types.EntityID(strconv.FormatInt(n, 10))
	} else if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil {
		if err := advanceID(ctx, tx, n); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO entities (kind, id, name, name_lower, thumbnail, field_values, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.Kind.String(), id.String(), entity.Name, strings.ToLower(entity.Name),
		entity.Thumbnail, string(body), now, now)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create entity",
			goerr.V(model.EntityKindKey, entity.Kind),
			goerr.V(model.EntityIDKey, id))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit entity")
	}
	return r.Get(ctx, entity.Kind, id)
}

// Update merges values into the stored field values inside one transaction
func (r *entityRepository) Update(ctx context.Context, kind types.EntityKind, id types.EntityID, values map[string]any) (*model.Entity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	err = tx.QueryRowContext(ctx,
		"SELECT field_values FROM entities WHERE kind = ? AND id = ?", kind.String(), id.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrEntityNotFound, "entity not found",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read entity", goerr.V(model.EntityIDKey, id))
	}

	stored := make(map[string]any)
	if err := json.Unmarshal([]byte(body), &stored); err != nil {
		return nil, goerr.Wrap(err, "failed to decode field values", goerr.V(model.EntityIDKey, id))
	}
	if stored == nil {
		stored = make(map[string]any)
	}
	for k, v := range values {
		stored[k] = v
	}

	merged, err := json.Marshal(stored)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode field values", goerr.V(model.EntityIDKey, id))
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE entities SET field_values = ?, updated_at = ? WHERE kind = ? AND id = ?",
		string(merged), time.Now().UTC().Format(time.RFC3339Nano), kind.String(), id.String()); err != nil {
		return nil, goerr.Wrap(err, "failed to update entity", goerr.V(model.EntityIDKey, id))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit entity update")
	}
	return r.Get(ctx, kind, id)
}

func (r *entityRepository) Search(ctx context.Context, query string, limit int) (*model.SearchResult, error) {
	people, err := r.search(ctx, types.EntityKindPerson, query, limit)
	if err != nil {
		return nil, err
	}
	teams, err := r.search(ctx, types.EntityKindTeam, query, limit)
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{People: people, Teams: teams}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *entityRepository) search(ctx context.Context, kind types.EntityKind, query string, limit int) ([]model.ForeignEntitySummary, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, thumbnail FROM entities
		 WHERE kind = ? AND name_lower LIKE ? ESCAPE '\'
		 ORDER BY seq LIMIT ?`,
		kind.String(), pattern, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search entities", goerr.V("query", query))
	}
	defer rows.Close()

	summaries := make([]model.ForeignEntitySummary, 0)
	for rows.Next() {
		var s model.ForeignEntitySummary
		var id string
		if err := rows.Scan(&id, &s.Name, &s.Thumbnail); err != nil {
			return nil, goerr.Wrap(err, "failed to scan search result")
		}
		s.ID = types.EntityID(id)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate search results")
	}
	return summaries, nil
}
