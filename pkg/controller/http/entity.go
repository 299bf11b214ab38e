package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/rolodex/pkg/domain/codec"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/usecase"
)

type editResponse struct {
	Kind     types.EntityKind `json:"kind"`
	EntityID types.EntityID   `json:"entity_id,omitempty"`
	State    model.EditState  `json:"state"`
	Editors  []codec.Editor   `json:"editors"`
	Notices  []model.Notice   `json:"notices"`
}

func newEditResponse(r *http.Request, session *usecase.EditSession) editResponse {
	return editResponse{
		Kind:     session.Kind(),
		EntityID: session.EntityID(),
		State:    session.State(),
		Editors:  session.Editors(r.Context()),
		Notices:  session.Notices(),
	}
}

type submitRequest struct {
	Values map[string]any `json:"values"`
}

type submitResponse struct {
	Entity  *model.Entity  `json:"entity"`
	Payload map[string]any `json:"payload"`
	Edit    editResponse   `json:"edit"`
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	schema, err := s.uc.Schema.Get(r.Context(), kind)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, schema)
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	detail, err := s.uc.Detail(r.Context(), kind, types.EntityID(chi.URLParam(r, "id")))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, detail)
}

// getEdit serves the edit state and editors. Without an id in the path it opens a new entity.
func (s *Server) getEdit(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	session, err := s.uc.Edit.OpenSession(r.Context(), kind, types.EntityID(chi.URLParam(r, "id")))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, newEditResponse(r, session))
}

func (s *Server) createEntity(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "", http.StatusCreated)
}

func (s *Server) patchEntity(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, types.EntityID(chi.URLParam(r, "id")), http.StatusOK)
}

// submit applies the posted values on top of the stored ones and persists the result.
// Fields not posted keep their stored value.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, id types.EntityID, status int) {
	kind, err := kindParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx := r.Context()
	session, err := s.uc.Edit.OpenSession(ctx, kind, id)
	if err != nil {
		fail(w, r, err)
		return
	}

	// apply in schema order so the first reported error is stable
	for _, fd := range session.Schema().Fields {
		value, ok := req.Values[fd.Name]
		if !ok {
			continue
		}
		if err := session.Apply(ctx, fd.Name, value); err != nil {
			fail(w, r, err)
			return
		}
	}
	for name := range req.Values {
		if _, ok := session.Schema().Field(name); !ok {
			if err := session.Apply(ctx, name, req.Values[name]); err != nil {
				fail(w, r, err)
				return
			}
		}
	}

	payload := session.Payload(ctx)
	entity, err := session.Submit(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(ctx, w, status, submitResponse{
		Entity:  entity,
		Payload: payload,
		Edit:    newEditResponse(r, session),
	})
}
