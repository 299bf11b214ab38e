package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// repositoryBackend serves the engine's backend operations from a Repository
type repositoryBackend struct {
	repo  interfaces.Repository
	limit int
}

var (
	_ interfaces.MetadataFetcher = &repositoryBackend{}
	_ interfaces.Searcher        = &repositoryBackend{}
	_ interfaces.EntityFetcher   = &repositoryBackend{}
	_ interfaces.Persister       = &repositoryBackend{}
)

func newRepositoryBackend(repo interfaces.Repository, limit int) *repositoryBackend {
	return &repositoryBackend{repo: repo, limit: limit}
}

func (b *repositoryBackend) FetchMetadata(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error) {
	return b.repo.Schema().Get(ctx, kind)
}

func (b *repositoryBackend) Search(ctx context.Context, query string) (*model.SearchResult, error) {
	return b.repo.Entity().Search(ctx, query, b.limit)
}

func (b *repositoryBackend) FetchEntity(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	return b.repo.Entity().Get(ctx, kind, id)
}

func (b *repositoryBackend) Persist(ctx context.Context, kind types.EntityKind, id types.EntityID, payload map[string]any) (*model.Entity, error) {
	if id == "" {
		created, err := b.repo.Entity().Create(ctx, &model.Entity{Kind: kind, Values: payload})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create entity", goerr.V(model.EntityKindKey, kind))
		}
		return created, nil
	}

	updated, err := b.repo.Entity().Update(ctx, kind, id, payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update entity",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}
	return updated, nil
}
