package model

import (
	"strings"

	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// NotSetText is shown for unset or empty values
const NotSetText = "not set"

// DisplayItemKind tells the presentation layer how to draw an item
type DisplayItemKind string

const (
	DisplayItemText   DisplayItemKind = "text"
	DisplayItemChip   DisplayItemKind = "chip"
	DisplayItemLink   DisplayItemKind = "link"
	DisplayItemImage  DisplayItemKind = "image"
	DisplayItemFile   DisplayItemKind = "file"
	DisplayItemSwatch DisplayItemKind = "swatch"
)

// DisplayItem is one presentational element of a field (a chip, a link, an image ...)
type DisplayItem struct {
	Kind        DisplayItemKind `json:"kind"`
	Label       string          `json:"label"`
	URL         string          `json:"url,omitempty"`
	Target      string          `json:"target,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Placeholder bool            `json:"placeholder,omitempty"`
}

// DisplayField is the read-only rendering of one field
type DisplayField struct {
	Name  string          `json:"name"`
	Label string          `json:"label"`
	Type  types.FieldType `json:"type"`
	Empty bool            `json:"empty"`
	Items []DisplayItem   `json:"items"`
}

// String returns a plain text line for the field
func (f DisplayField) String() string {
	var sb strings.Builder
	sb.WriteString(f.Label)
	sb.WriteString(": ")
	if f.Empty {
		sb.WriteString("(" + NotSetText + ")")
		return sb.String()
	}

	for i, item := range f.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(item.Label)
		if item.URL != "" && item.URL != item.Label {
			sb.WriteString(" <" + item.URL + ">")
		}
	}
	return sb.String()
}
