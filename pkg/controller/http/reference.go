package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/codec"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/usecase"
)

type resolveRequest struct {
	EntityID  types.EntityID     `json:"entity_id"`
	IDs       any                `json:"ids"`
	PostTypes []types.EntityKind `json:"post_types"`
}

type referencesResponse struct {
	References []model.ResolvedReference `json:"references"`
}

// toIDs normalizes posted ids, numbers or strings or embedded objects, like a stored
// relationship value
func toIDs(raw any) []types.EntityID {
	def := config.FieldDefinition{Type: types.FieldTypeRelationship}
	c, err := codec.Default().Get(types.FieldTypeRelationship)
	if err != nil {
		return nil
	}
	ids, _ := c.ToEditDefault(raw, def).([]types.EntityID)
	return ids
}

func postTypes(kinds []types.EntityKind) ([]types.EntityKind, error) {
	for _, kind := range kinds {
		if err := kind.Validate(); err != nil {
			return nil, goerr.Wrap(errBadRequest, "invalid post type", goerr.V(model.EntityKindKey, kind))
		}
	}
	return kinds, nil
}

func (s *Server) resolveReferences(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	kinds, err := postTypes(req.PostTypes)
	if err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	ids := toIDs(req.IDs)

	var refs []model.ResolvedReference
	if req.EntityID != "" {
		refs, err = s.uc.Resolver.ResolveForEntity(ctx, req.EntityID, ids, kinds)
	} else {
		refs, err = s.uc.Resolver.ResolveSelected(ctx, ids, kinds)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, referencesResponse{References: refs})
}

// queryList reads a repeated or comma separated query parameter
func queryList(r *http.Request, key string) []string {
	var values []string
	for _, v := range r.URL.Query()[key] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				values = append(values, s)
			}
		}
	}
	return values
}

func (s *Server) searchCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	var kinds []types.EntityKind
	for _, v := range queryList(r, "post_type") {
		kinds = append(kinds, types.EntityKind(v))
	}
	kinds, err := postTypes(kinds)
	if err != nil {
		fail(w, r, err)
		return
	}

	var exclude []types.EntityID
	for _, v := range queryList(r, "exclude") {
		exclude = append(exclude, types.EntityID(v))
	}

	var listing model.CandidateListing
	if !usecase.IsServerQuery(query) {
		listing, err = s.uc.Listing(ctx, kinds)
		if err != nil {
			fail(w, r, err)
			return
		}
	}

	refs, err := s.uc.Search.SearchCandidates(ctx, query, kinds, exclude, listing)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, referencesResponse{References: refs})
}
