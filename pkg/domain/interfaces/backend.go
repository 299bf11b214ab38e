package interfaces

import (
	"context"

	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// The field engine consumes the backend only through the following operations.

// MetadataFetcher returns the field schema of an entity kind. It is idempotent.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error)
}

// Searcher runs the server side multi-kind name search
type Searcher interface {
	Search(ctx context.Context, query string) (*model.SearchResult, error)
}

// EntityFetcher looks up a single entity. A missing entity is reported with
// model.ErrEntityNotFound so that callers can tell it apart from transport failures.
type EntityFetcher interface {
	FetchEntity(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error)
}

// Uploader stores a binary attachment
type Uploader interface {
	UploadFile(ctx context.Context, data []byte, filename string) (*model.Attachment, error)
}

// Persister applies a wire payload as a partial update: an omitted key means no change,
// null or [] clears the value. An empty id creates a new entity of kind.
type Persister interface {
	Persist(ctx context.Context, kind types.EntityKind, id types.EntityID, payload map[string]any) (*model.Entity, error)
}
