package interfaces

import (
	"context"

	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// Repository is the content backend holding field schemas and entities
type Repository interface {
	Schema() SchemaRepository
	Entity() EntityRepository
	Close() error
}

// SchemaRepository stores one FieldSchema per entity kind
type SchemaRepository interface {
	// Get returns model.ErrSchemaNotFound when no schema is registered for kind
	Get(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error)

	// Put creates or replaces the schema of schema.Kind
	Put(ctx context.Context, schema *config.FieldSchema) error

	List(ctx context.Context) ([]*config.FieldSchema, error)
}

// EntityRepository stores people and teams with their raw custom field values
type EntityRepository interface {
	// Get returns model.ErrEntityNotFound when the entity does not exist in kind
	Get(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error)

	// List returns every entity of kind ordered by creation
	List(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error)

	// Create assigns an id when entity.ID is empty
	Create(ctx context.Context, entity *model.Entity) (*model.Entity, error)

	// Update applies a partial update of custom field values. Keys absent from values are
	// left unchanged; a nil or empty list value clears the field.
	Update(ctx context.Context, kind types.EntityKind, id types.EntityID, values map[string]any) (*model.Entity, error)

	// Search matches entity names by case-insensitive prefix, at most limit per kind
	Search(ctx context.Context, query string, limit int) (*model.SearchResult, error)
}
