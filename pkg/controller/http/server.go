package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/rolodex/pkg/service/storage"
	"github.com/secmon-lab/rolodex/pkg/usecase"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// DefaultMaxUploadSize bounds multipart attachment uploads
const DefaultMaxUploadSize = 32 << 20

// FileStore serves uploaded objects back, e.g. the in-memory uploader
type FileStore interface {
	Get(id string) (*storage.Object, bool)
}

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	files         FileStore
	maxUploadSize int64
}

type Options func(*Server)

// WithFileStore exposes uploaded objects under /files/{id}
func WithFileStore(files FileStore) Options {
	return func(s *Server) {
		s.files = files
	}
}

func WithMaxUploadSize(n int64) Options {
	return func(s *Server) {
		s.maxUploadSize = n
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		uc:            uc,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/kinds/{kind}", func(r chi.Router) {
			r.Get("/schema", s.getSchema)
			r.Get("/edit", s.getEdit)
			r.Post("/entities", s.createEntity)
			r.Route("/entities/{id}", func(r chi.Router) {
				r.Get("/", s.getEntity)
				r.Get("/edit", s.getEdit)
				r.Patch("/", s.patchEntity)
				r.Post("/fields/{name}/attachment", s.uploadAttachment)
			})
		})
		r.Post("/references/resolve", s.resolveReferences)
		r.Get("/candidates", s.searchCandidates)
	})

	if s.files != nil {
		r.Get("/files/{id}", s.getFile)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger binds a logger carrying the request id to the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
