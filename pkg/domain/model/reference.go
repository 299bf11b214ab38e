package model

import "github.com/secmon-lab/rolodex/pkg/domain/types"

// ForeignEntitySummary is the minimal shape returned by search and cached listings
type ForeignEntitySummary struct {
	ID        types.EntityID `json:"id"`
	Name      string         `json:"name"`
	Thumbnail string         `json:"thumbnail,omitempty"`
}

// ResolvedReference is a foreign id enriched with display metadata. It is never persisted.
type ResolvedReference struct {
	ID          types.EntityID   `json:"id"`
	Kind        types.EntityKind `json:"kind"`
	DisplayName string           `json:"display_name"`
	Thumbnail   string           `json:"thumbnail,omitempty"`
}

// SearchResult is the server side multi-kind search response, already separated by kind
type SearchResult struct {
	People []ForeignEntitySummary `json:"people"`
	Teams  []ForeignEntitySummary `json:"teams"`
}

// ByKind returns the result list for one entity kind
func (r *SearchResult) ByKind(kind types.EntityKind) []ForeignEntitySummary {
	if r == nil {
		return nil
	}
	switch kind {
	case types.EntityKindPerson:
		return r.People
	case types.EntityKindTeam:
		return r.Teams
	default:
		return nil
	}
}

// CandidateListing is the bulk entity listing already loaded by the caller, per kind.
// The engine only reads it.
type CandidateListing map[types.EntityKind][]ForeignEntitySummary
