package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

type schemaRepository struct {
	mu      sync.RWMutex
	schemas map[types.EntityKind]*config.FieldSchema
}

func newSchemaRepository() *schemaRepository {
	return &schemaRepository{
		schemas: make(map[types.EntityKind]*config.FieldSchema),
	}
}

// copySchema creates a deep copy of a schema so callers cannot mutate stored definitions
func copySchema(s *config.FieldSchema) *config.FieldSchema {
	fields := make([]config.FieldDefinition, len(s.Fields))
	for i, fd := range s.Fields {
		fd.Choices = append(config.Choices(nil), fd.Choices...)
		fd.PostType = append([]types.EntityKind(nil), fd.PostType...)
		fd.Min = copyFloat(fd.Min)
		fd.Max = copyFloat(fd.Max)
		fd.Step = copyFloat(fd.Step)
		fields[i] = fd
	}
	return &config.FieldSchema{Kind: s.Kind, Fields: fields}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func (r *schemaRepository) Get(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[kind]
	if !ok {
		return nil, goerr.Wrap(model.ErrSchemaNotFound, "schema not found",
			goerr.V(model.EntityKindKey, kind))
	}
	return copySchema(s), nil
}

func (r *schemaRepository) Put(ctx context.Context, schema *config.FieldSchema) error {
	if err := schema.Kind.Validate(); err != nil {
		return goerr.Wrap(err, "invalid schema kind")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[schema.Kind] = copySchema(schema)
	return nil
}

func (r *schemaRepository) List(ctx context.Context) ([]*config.FieldSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]*config.FieldSchema, 0, len(r.schemas))
	for _, s := range r.schemas {
		schemas = append(schemas, copySchema(s))
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Kind < schemas[j].Kind
	})
	return schemas, nil
}
