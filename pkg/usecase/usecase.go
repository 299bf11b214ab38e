package usecase

import (
	"time"

	"github.com/secmon-lab/rolodex/pkg/domain/codec"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
)

type UseCases struct {
	repo     interfaces.Repository
	metadata interfaces.MetadataFetcher
	searcher interfaces.Searcher
	fetcher  interfaces.EntityFetcher
	persist  interfaces.Persister
	uploader interfaces.Uploader
	registry *codec.Registry

	searchLimit int
	debounce    time.Duration
	concurrency int

	Schema     *SchemaUseCase
	Edit       *EditUseCase
	Resolver   *ResolverUseCase
	Search     *SearchUseCase
	Attachment *AttachmentUseCase
	Display    *DisplayUseCase
}

type Option func(*UseCases)

// WithUploader sets the attachment transport. Uploads fail until one is configured.
func WithUploader(uploader interfaces.Uploader) Option {
	return func(uc *UseCases) {
		uc.uploader = uploader
	}
}

func WithMetadataFetcher(f interfaces.MetadataFetcher) Option {
	return func(uc *UseCases) {
		uc.metadata = f
	}
}

func WithSearcher(s interfaces.Searcher) Option {
	return func(uc *UseCases) {
		uc.searcher = s
	}
}

func WithEntityFetcher(f interfaces.EntityFetcher) Option {
	return func(uc *UseCases) {
		uc.fetcher = f
	}
}

func WithPersister(p interfaces.Persister) Option {
	return func(uc *UseCases) {
		uc.persist = p
	}
}

func WithRegistry(r *codec.Registry) Option {
	return func(uc *UseCases) {
		uc.registry = r
	}
}

// WithSearchLimit caps the number of server side search results per kind
func WithSearchLimit(n int) Option {
	return func(uc *UseCases) {
		uc.searchLimit = n
	}
}

// WithDebounce sets the delay before a type-ahead query reaches the server
func WithDebounce(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.debounce = d
	}
}

// WithResolveConcurrency bounds the number of concurrent single-entity lookups
func WithResolveConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.concurrency = n
	}
}

// New wires the field engine. Backend operations not given by options are served by repo.
func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		registry:    codec.Default(),
		searchLimit: DefaultSearchLimit,
		debounce:    DefaultDebounce,
		concurrency: DefaultResolveConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if repo != nil {
		backend := newRepositoryBackend(repo, uc.searchLimit)
		if uc.metadata == nil {
			uc.metadata = backend
		}
		if uc.searcher == nil {
			uc.searcher = backend
		}
		if uc.fetcher == nil {
			uc.fetcher = backend
		}
		if uc.persist == nil {
			uc.persist = backend
		}
	}

	uc.Schema = NewSchemaUseCase(uc.metadata)
	uc.Resolver = NewResolverUseCase(uc.fetcher, uc.concurrency)
	uc.Search = NewSearchUseCase(uc.searcher, uc.debounce)
	uc.Attachment = NewAttachmentUseCase(uc.uploader)
	uc.Display = NewDisplayUseCase(uc.registry)
	uc.Edit = NewEditUseCase(uc.registry, uc.Schema, uc.fetcher, uc.persist, uc.Resolver, uc.Attachment)

	return uc
}
