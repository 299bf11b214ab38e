package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/errutil"
	"github.com/secmon-lab/rolodex/pkg/utils/safe"
)

var (
	errInvalidKind = goerr.New("unknown entity kind")
	errBadRequest  = goerr.New("bad request")
)

// statusOf maps engine errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, errInvalidKind), errors.Is(err, model.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnknownField),
		errors.Is(err, model.ErrInvalidFieldType),
		errors.Is(err, model.ErrMissingRequired),
		errors.Is(err, model.ErrInvalidNumber),
		errors.Is(err, model.ErrOutOfRange),
		errors.Is(err, model.ErrTooManyItems),
		errors.Is(err, model.ErrInvalidFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrUploadFailed), errors.Is(err, model.ErrPersistFailed):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrSchemaUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

// decodeJSON reads the body keeping numbers as json.Number so ids stay exact
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}

func kindParam(r *http.Request) (types.EntityKind, error) {
	kind := types.EntityKind(chi.URLParam(r, "kind"))
	if err := kind.Validate(); err != nil {
		return "", goerr.Wrap(errInvalidKind, "invalid kind in path", goerr.V(model.EntityKindKey, kind))
	}
	return kind, nil
}
