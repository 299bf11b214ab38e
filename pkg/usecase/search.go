package usecase

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/async"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// EmptyQueryLimit is the number of cached entities offered before anything is typed
const EmptyQueryLimit = 20

// SearchUseCase finds relationship candidates for type-ahead
type SearchUseCase struct {
	searcher interfaces.Searcher
	debounce time.Duration
}

func NewSearchUseCase(searcher interfaces.Searcher, debounce time.Duration) *SearchUseCase {
	return &SearchUseCase{
		searcher: searcher,
		debounce: debounce,
	}
}

// IsServerQuery reports whether query is long enough for the server side search
func IsServerQuery(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinServerQueryLength
}

// SearchCandidates returns candidates of postTypes sorted by name, never including an id of
// exclude. Short queries filter listing locally; an empty query returns its first entries.
func (uc *SearchUseCase) SearchCandidates(ctx context.Context, query string, postTypes []types.EntityKind, exclude []types.EntityID, listing model.CandidateListing) ([]model.ResolvedReference, error) {
	if len(postTypes) == 0 {
		postTypes = types.DefaultPostTypes()
	}
	if IsServerQuery(query) {
		return uc.searchServer(ctx, query, postTypes, exclude)
	}
	return filterListing(query, postTypes, exclude, listing), nil
}

func (uc *SearchUseCase) searchServer(ctx context.Context, query string, postTypes []types.EntityKind, exclude []types.EntityID) ([]model.ResolvedReference, error) {
	if uc.searcher == nil {
		return nil, goerr.New("no search source configured")
	}

	result, err := uc.searcher.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search candidates", goerr.V(QueryKey, query))
	}

	excluded := idSet(exclude)
	var candidates []model.ResolvedReference
	for _, kind := range postTypes {
		for _, s := range result.ByKind(kind) {
			if excluded[s.ID] {
				continue
			}
			candidates = append(candidates, candidate(kind, s))
		}
	}
	sortCandidates(candidates)
	return nonNil(candidates), nil
}

func filterListing(query string, postTypes []types.EntityKind, exclude []types.EntityID, listing model.CandidateListing) []model.ResolvedReference {
	needle := strings.ToLower(strings.TrimSpace(query))
	excluded := idSet(exclude)

	var candidates []model.ResolvedReference
	for _, kind := range postTypes {
		for _, s := range listing[kind] {
			if excluded[s.ID] {
				continue
			}
			if needle != "" && !strings.Contains(strings.ToLower(s.Name), needle) {
				continue
			}
			candidates = append(candidates, candidate(kind, s))
		}
	}

	if needle == "" && len(candidates) > EmptyQueryLimit {
		candidates = candidates[:EmptyQueryLimit]
	}
	sortCandidates(candidates)
	return nonNil(candidates)
}

func candidate(kind types.EntityKind, s model.ForeignEntitySummary) model.ResolvedReference {
	return model.ResolvedReference{
		ID:          s.ID,
		Kind:        kind,
		DisplayName: s.Name,
		Thumbnail:   s.Thumbnail,
	}
}

// sortCandidates orders by case-insensitive name, keeping fetch order among equal names
func sortCandidates(candidates []model.ResolvedReference) {
	slices.SortStableFunc(candidates, func(a, b model.ResolvedReference) int {
		return strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
	})
}

func idSet(ids []types.EntityID) map[types.EntityID]bool {
	set := make(map[types.EntityID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func nonNil(candidates []model.ResolvedReference) []model.ResolvedReference {
	if candidates == nil {
		return []model.ResolvedReference{}
	}
	return candidates
}

// SearchUpdate is one applied search outcome of a SearchSession
type SearchUpdate struct {
	Token      uint64
	Query      string
	Candidates []model.ResolvedReference
	Err        error
}

// SearchSession serves type-ahead for one relationship editor. Server side queries are
// debounced and a response is applied only while its token is still the latest issued.
type SearchSession struct {
	uc        *SearchUseCase
	postTypes []types.EntityKind
	listing   model.CandidateListing
	onUpdate  func(SearchUpdate)

	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
	latest SearchUpdate

	// notifyMu is held from the token check until onUpdate returns; it is taken before mu
	notifyMu sync.Mutex
}

// NewSession starts a type-ahead session. onUpdate, when not nil, is called with every
// applied update in the order of their tokens. It must not call back into the session.
func (uc *SearchUseCase) NewSession(postTypes []types.EntityKind, listing model.CandidateListing, onUpdate func(SearchUpdate)) *SearchSession {
	if len(postTypes) == 0 {
		postTypes = types.DefaultPostTypes()
	}
	return &SearchSession{
		uc:        uc,
		postTypes: postTypes,
		listing:   listing,
		onUpdate:  onUpdate,
	}
}

// Query issues a new query and supersedes any pending one. It returns the token of the query.
func (s *SearchSession) Query(ctx context.Context, query string, exclude []types.EntityID) uint64 {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.token++
	token := s.token
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if !IsServerQuery(query) {
		update := SearchUpdate{
			Token:      token,
			Query:      query,
			Candidates: filterListing(query, s.postTypes, exclude, s.listing),
		}
		s.latest = update
		s.mu.Unlock()
		s.notify(update)
		return token
	}

	qctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.mu.Unlock()

	exclude = slices.Clone(exclude)
	async.Dispatch(ctx, func(context.Context) error {
		defer cancel()

		timer := time.NewTimer(s.uc.debounce)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-qctx.Done():
			return nil
		}

		candidates, err := s.uc.SearchCandidates(qctx, query, s.postTypes, exclude, s.listing)
		s.apply(qctx, SearchUpdate{Token: token, Query: query, Candidates: candidates, Err: err})
		return nil
	})
	return token
}

func (s *SearchSession) apply(ctx context.Context, update SearchUpdate) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if update.Token != s.token {
		s.mu.Unlock()
		logging.From(ctx).Debug("discarding stale search result",
			slog.Uint64("token", update.Token),
			slog.String(QueryKey, update.Query))
		return
	}
	s.latest = update
	s.mu.Unlock()
	s.notify(update)
}

func (s *SearchSession) notify(update SearchUpdate) {
	if s.onUpdate != nil {
		s.onUpdate(update)
	}
}

// Latest returns the most recently applied update
func (s *SearchSession) Latest() SearchUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close cancels a pending query
func (s *SearchSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
