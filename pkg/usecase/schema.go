package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"golang.org/x/sync/singleflight"
)

// SchemaUseCase fetches field schemas once per entity kind and caches them
type SchemaUseCase struct {
	fetcher interfaces.MetadataFetcher

	mu    sync.RWMutex
	cache map[types.EntityKind]*config.FieldSchema
	group singleflight.Group
}

func NewSchemaUseCase(fetcher interfaces.MetadataFetcher) *SchemaUseCase {
	return &SchemaUseCase{
		fetcher: fetcher,
		cache:   make(map[types.EntityKind]*config.FieldSchema),
	}
}

// Get returns the schema of kind. Any failure is reported as model.ErrSchemaUnavailable and
// is not cached, so the next call fetches again.
func (uc *SchemaUseCase) Get(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error) {
	if err := kind.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrSchemaUnavailable, "invalid entity kind",
			goerr.V(model.EntityKindKey, kind))
	}

	uc.mu.RLock()
	cached, ok := uc.cache[kind]
	uc.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if uc.fetcher == nil {
		return nil, goerr.Wrap(model.ErrSchemaUnavailable, "no metadata source configured",
			goerr.V(model.EntityKindKey, kind))
	}

	v, err, _ := uc.group.Do(kind.String(), func() (any, error) {
		schema, err := uc.fetcher.FetchMetadata(ctx, kind)
		if err != nil {
			return nil, err
		}
		if schema == nil {
			return nil, goerr.New("metadata source returned no schema")
		}
		if err := schema.Validate(); err != nil {
			return nil, err
		}

		uc.mu.Lock()
		uc.cache[kind] = schema
		uc.mu.Unlock()
		return schema, nil
	})
	if err != nil {
		return nil, goerr.Wrap(model.ErrSchemaUnavailable, "failed to fetch field schema",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(CauseKey, err.Error()))
	}

	return v.(*config.FieldSchema), nil
}

// Invalidate drops the cached schema of kind
func (uc *SchemaUseCase) Invalidate(kind types.EntityKind) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.cache, kind)
}
