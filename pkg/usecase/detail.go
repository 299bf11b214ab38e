package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// EntityDetail is an entity rendered for a read-only page
type EntityDetail struct {
	Entity     *model.Entity             `json:"entity"`
	Fields     []model.DisplayField      `json:"fields"`
	References []model.ResolvedReference `json:"references"`
}

// Detail loads an entity and renders its custom fields. Relationship ids are resolved per
// field in the field's probe order so chips show display names.
func (uc *UseCases) Detail(ctx context.Context, kind types.EntityKind, id types.EntityID) (*EntityDetail, error) {
	schema, err := uc.Schema.Get(ctx, kind)
	if err != nil {
		return nil, err
	}
	if uc.fetcher == nil {
		return nil, goerr.New("no entity source configured")
	}

	entity, err := uc.fetcher.FetchEntity(ctx, kind, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load entity",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}

	refs := []model.ResolvedReference{}
	for _, fd := range schema.Fields {
		if fd.Type != types.FieldTypeRelationship {
			continue
		}
		ids, _ := editDefault(ctx, uc.registry, fd, entity.Values[fd.Name]).([]types.EntityID)
		if len(ids) == 0 {
			continue
		}
		resolved, err := uc.Resolver.ResolveForEntity(ctx, id, ids, fd.PostTypes())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve references",
				goerr.V(model.FieldNameKey, fd.Name))
		}
		refs = append(refs, resolved...)
	}

	return &EntityDetail{
		Entity:     entity,
		Fields:     uc.Display.RenderDisplay(ctx, schema, entity.Values, refs),
		References: refs,
	}, nil
}

// Listing loads the bulk candidate listing of postTypes from the repository
func (uc *UseCases) Listing(ctx context.Context, postTypes []types.EntityKind) (model.CandidateListing, error) {
	if len(postTypes) == 0 {
		postTypes = types.DefaultPostTypes()
	}
	listing := make(model.CandidateListing, len(postTypes))
	if uc.repo == nil {
		return listing, nil
	}

	for _, kind := range postTypes {
		entities, err := uc.repo.Entity().List(ctx, kind)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list entities", goerr.V(model.EntityKindKey, kind))
		}
		summaries := make([]model.ForeignEntitySummary, len(entities))
		for i, e := range entities {
			summaries[i] = e.Summary()
		}
		listing[kind] = summaries
	}
	return listing, nil
}
