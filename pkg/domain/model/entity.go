package model

import (
	"time"

	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// Entity is a record of the content backend together with its raw custom field values
type Entity struct {
	ID        types.EntityID   `json:"id"`
	Kind      types.EntityKind `json:"kind"`
	Name      string           `json:"name"`
	Thumbnail string           `json:"thumbnail,omitempty"`
	Values    map[string]any   `json:"values"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Summary returns the minimal search representation of the entity
func (e *Entity) Summary() ForeignEntitySummary {
	return ForeignEntitySummary{
		ID:        e.ID,
		Name:      e.Name,
		Thumbnail: e.Thumbnail,
	}
}

// Attachment is an uploaded file as returned by the transport
type Attachment struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}
