package types

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// EntityKind is a content type stored in the backend (people, teams)
type EntityKind string

const (
	EntityKindPerson EntityKind = "person"
	EntityKindTeam   EntityKind = "team"
)

// DefaultPostTypes is the probe order used when a relationship field declares none
func DefaultPostTypes() []EntityKind {
	return []EntityKind{EntityKindPerson, EntityKindTeam}
}

// Validate checks the kind is one the backend knows about
func (k EntityKind) Validate() error {
	switch k {
	case EntityKindPerson, EntityKindTeam:
		return nil
	default:
		return goerr.New("unknown entity kind", goerr.V("kind", string(k)))
	}
}

func (k EntityKind) String() string {
	return string(k)
}

// EntityID identifies an entity within its kind. The backend mostly hands out numeric ids
// but the id is kept as a string so document stores with opaque keys work too.
type EntityID string

func (id EntityID) String() string {
	return string(id)
}

// IsNumeric reports whether the id is a non-negative decimal integer
func (id EntityID) IsNumeric() bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseUint(string(id), 10, 64)
	return err == nil
}

// WireValue returns the id in the form the backend expects: a number for numeric ids,
// the string otherwise
func (id EntityID) WireValue() any {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && n >= 0 {
		return n
	}
	return string(id)
}
