package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/errutil"
	"github.com/secmon-lab/rolodex/pkg/utils/safe"
)

type uploadFailure struct {
	Error   string         `json:"error"`
	Notices []model.Notice `json:"notices"`
}

type uploadResponse struct {
	Attachment *model.AttachmentRef `json:"attachment"`
	Entity     *model.Entity        `json:"entity"`
}

// uploadAttachment stores the "file" part of a multipart body into an image or file field and
// persists that field alone. A failed upload leaves the stored value untouched.
func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	ctx := r.Context()
	id := types.EntityID(chi.URLParam(r, "id"))
	name := chi.URLParam(r, "name")

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, goerr.Wrap(errBadRequest, "multipart field \"file\" is required", goerr.V("cause", err.Error())))
		return
	}
	defer safe.Close(ctx, file)

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, r, goerr.Wrap(errBadRequest, "failed to read upload", goerr.V("cause", err.Error())))
		return
	}

	session, err := s.uc.Edit.OpenSession(ctx, kind, id)
	if err != nil {
		fail(w, r, err)
		return
	}

	ref, err := session.Upload(ctx, name, data, header.Filename)
	if err != nil {
		status := statusOf(err)
		if status != http.StatusBadGateway {
			fail(w, r, err)
			return
		}
		_ = errutil.Handle(ctx, err, "attachment upload failed")
		writeJSON(ctx, w, status, uploadFailure{Error: err.Error(), Notices: session.Notices()})
		return
	}

	entity, err := session.SubmitField(ctx, name)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, uploadResponse{Attachment: ref, Entity: entity})
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.files.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Content-Disposition", "inline; filename="+strconv.Quote(obj.Filename))
	safe.Write(r.Context(), w, obj.Data)
}
