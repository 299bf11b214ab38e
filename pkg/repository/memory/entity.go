package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

type entityRepository struct {
	mu       sync.RWMutex
	entities map[types.EntityKind]map[types.EntityID]*model.Entity
	order    map[types.EntityKind][]types.EntityID
	nextID   int64
}

func newEntityRepository() *entityRepository {
	return &entityRepository{
		entities: make(map[types.EntityKind]map[types.EntityID]*model.Entity),
		order:    make(map[types.EntityKind][]types.EntityID),
		nextID:   1,
	}
}

// copyValue creates a deep copy of a raw field value
// Note: decoded JSON only contains maps, slices and scalars
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = copyValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = copyValue(inner)
		}
		return s
	case []string:
		s := make([]string, len(val))
		copy(s, val)
		return s
	default:
		return v
	}
}

func copyValues(values map[string]any) map[string]any {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = copyValue(v)
	}
	return copied
}

func copyEntity(e *model.Entity) *model.Entity {
	return &model.Entity{
		ID:        e.ID,
		Kind:      e.Kind,
		Name:      e.Name,
		Thumbnail: e.Thumbnail,
		Values:    copyValues(e.Values),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (r *entityRepository) Get(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[kind][id]
	if !ok {
		return nil, goerr.Wrap(model.ErrEntityNotFound, "entity not found",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}
	return copyEntity(e), nil
}

func (r *entityRepository) List(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities := make([]*model.Entity, 0, len(r.order[kind]))
	for _, id := range r.order[kind] {
		entities = append(entities, copyEntity(r.entities[kind][id]))
	}
	return entities, nil
}

func (r *entityRepository) Create(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	if err := entity.Kind.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid entity kind")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyEntity(entity)
	if created.ID == "" {
		created.ID = types.EntityID(strconv.FormatInt(r.nextID, 10))
		r.nextID++
	} else if n, err := strconv.ParseInt(created.ID.String(), 10, 64); err == nil && n >= r.nextID {
		r.nextID = n + 1
	}

	if _, exists := r.entities[created.Kind][created.ID]; exists {
		return nil, goerr.New("entity already exists",
			goerr.V(model.EntityKindKey, created.Kind),
			goerr.V(model.EntityIDKey, created.ID))
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if r.entities[created.Kind] == nil {
		r.entities[created.Kind] = make(map[types.EntityID]*model.Entity)
	}
	r.entities[created.Kind][created.ID] = created
	r.order[created.Kind] = append(r.order[created.Kind], created.ID)

	return copyEntity(created), nil
}

func (r *entityRepository) Update(ctx context.Context, kind types.EntityKind, id types.EntityID, values map[string]any) (*model.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entities[kind][id]
	if !ok {
		return nil, goerr.Wrap(model.ErrEntityNotFound, "entity not found",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}

	if e.Values == nil {
		e.Values = make(map[string]any)
	}
	for k, v := range values {
		e.Values[k] = copyValue(v)
	}
	e.UpdatedAt = time.Now().UTC()

	return copyEntity(e), nil
}

func (r *entityRepository) Search(ctx context.Context, query string, limit int) (*model.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := strings.ToLower(strings.TrimSpace(query))
	result := &model.SearchResult{
		People: r.search(types.EntityKindPerson, prefix, limit),
		Teams:  r.search(types.EntityKindTeam, prefix, limit),
	}
	return result, nil
}

func (r *entityRepository) search(kind types.EntityKind, prefix string, limit int) []model.ForeignEntitySummary {
	summaries := make([]model.ForeignEntitySummary, 0)
	for _, id := range r.order[kind] {
		e := r.entities[kind][id]
		if !strings.HasPrefix(strings.ToLower(e.Name), prefix) {
			continue
		}
		summaries = append(summaries, e.Summary())
		if limit > 0 && len(summaries) >= limit {
			break
		}
	}
	return summaries
}
