package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ResolverUseCase materializes selected foreign ids into ResolvedReferences
type ResolverUseCase struct {
	fetcher     interfaces.EntityFetcher
	concurrency int

	mu    sync.RWMutex
	cache map[types.EntityID]map[string][]model.ResolvedReference
	gen   map[types.EntityID]uint64
	group singleflight.Group
}

func NewResolverUseCase(fetcher interfaces.EntityFetcher, concurrency int) *ResolverUseCase {
	if concurrency <= 0 {
		concurrency = DefaultResolveConcurrency
	}
	return &ResolverUseCase{
		fetcher:     fetcher,
		concurrency: concurrency,
		cache:       make(map[types.EntityID]map[string][]model.ResolvedReference),
		gen:         make(map[types.EntityID]uint64),
	}
}

// ResolveSelected resolves each id by probing postTypes in order, moving to the next kind
// only when the entity is not found. Ids found in no kind are dropped. The result keeps the
// order of ids.
func (uc *ResolverUseCase) ResolveSelected(ctx context.Context, ids []types.EntityID, postTypes []types.EntityKind) ([]model.ResolvedReference, error) {
	if len(postTypes) == 0 {
		postTypes = types.DefaultPostTypes()
	}
	if len(ids) == 0 {
		return []model.ResolvedReference{}, nil
	}
	if uc.fetcher == nil {
		return nil, goerr.New("no entity source configured")
	}

	found := make([]*model.ResolvedReference, len(ids))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)

	for i, id := range ids {
		eg.Go(func() error {
			ref, err := uc.probe(ctx, id, postTypes)
			if err != nil {
				return err
			}
			found[i] = ref
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	refs := make([]model.ResolvedReference, 0, len(ids))
	for i, ref := range found {
		if ref == nil {
			logging.From(ctx).Warn("reference not found in any kind",
				slog.String(model.EntityIDKey, ids[i].String()),
				slog.Any("post_types", postTypes))
			continue
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}

func (uc *ResolverUseCase) probe(ctx context.Context, id types.EntityID, postTypes []types.EntityKind) (*model.ResolvedReference, error) {
	for _, kind := range postTypes {
		entity, err := uc.fetcher.FetchEntity(ctx, kind, id)
		if errors.Is(err, model.ErrEntityNotFound) {
			continue
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up reference",
				goerr.V(model.EntityKindKey, kind),
				goerr.V(model.EntityIDKey, id))
		}
		if entity == nil {
			continue
		}
		return &model.ResolvedReference{
			ID:          id,
			Kind:        kind,
			DisplayName: entity.Name,
			Thumbnail:   entity.Thumbnail,
		}, nil
	}
	return nil, nil
}

// ResolveForEntity is ResolveSelected cached per edited entity. Any change of the id list or
// the probe order misses the cache. Failed resolutions are not cached.
func (uc *ResolverUseCase) ResolveForEntity(ctx context.Context, entityID types.EntityID, ids []types.EntityID, postTypes []types.EntityKind) ([]model.ResolvedReference, error) {
	if len(postTypes) == 0 {
		postTypes = types.DefaultPostTypes()
	}
	key := resolveKey(ids, postTypes)

	uc.mu.RLock()
	cached, ok := uc.cache[entityID][key]
	gen := uc.gen[entityID]
	uc.mu.RUnlock()
	if ok {
		return cloneRefs(cached), nil
	}

	flight := fmt.Sprintf("%s\x00%d\x00%s", entityID, gen, key)
	v, err, _ := uc.group.Do(flight, func() (any, error) {
		refs, err := uc.ResolveSelected(ctx, ids, postTypes)
		if err != nil {
			return nil, err
		}

		uc.mu.Lock()
		defer uc.mu.Unlock()
		// Results started before an Invalidate are returned but not cached
		if uc.gen[entityID] != gen {
			return refs, nil
		}
		if uc.cache[entityID] == nil {
			uc.cache[entityID] = make(map[string][]model.ResolvedReference)
		}
		uc.cache[entityID][key] = refs
		return refs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneRefs(v.([]model.ResolvedReference)), nil
}

// Invalidate drops every cached resolution of entityID, including those still in flight
func (uc *ResolverUseCase) Invalidate(entityID types.EntityID) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.cache, entityID)
	uc.gen[entityID]++
}

func resolveKey(ids []types.EntityID, postTypes []types.EntityKind) string {
	var sb strings.Builder
	for i, kind := range postTypes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(kind.String())
	}
	sb.WriteByte('|')
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(id.String())
	}
	return sb.String()
}

func cloneRefs(refs []model.ResolvedReference) []model.ResolvedReference {
	return append([]model.ResolvedReference{}, refs...)
}
