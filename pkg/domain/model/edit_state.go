package model

import (
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// EditState maps FieldDefinition.Name to a normalized in-memory value. The concrete Go type
// of each value is fixed by the field type:
//
//	text, textarea, email, url, number, date, select, color_picker -> string
//	checkbox                                                       -> []string
//	true_false                                                     -> int (0 or 1)
//	link                                                           -> Link
//	image, file                                                    -> *AttachmentRef (nil = unset)
//	relationship                                                   -> []types.EntityID
type EditState map[string]any

// Clone returns a copy whose slice values do not alias the original
func (s EditState) Clone() EditState {
	copied := make(EditState, len(s))
	for k, v := range s {
		switch val := v.(type) {
		case []string:
			copied[k] = append([]string{}, val...)
		case []types.EntityID:
			copied[k] = append([]types.EntityID{}, val...)
		case *AttachmentRef:
			if val != nil {
				ref := *val
				copied[k] = &ref
			} else {
				copied[k] = val
			}
		default:
			copied[k] = v
		}
	}
	return copied
}

// Link is the edit value of a link field. All three keys are always present.
type Link struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Target string `json:"target"`
}

// DefaultLinkTarget is used when a stored link carries no target
const DefaultLinkTarget = "_blank"

// AttachmentRef is the edit value of an image or file field. ID is set once the attachment
// is known to the backend; legacy values may carry only a URL.
type AttachmentRef struct {
	ID        string `json:"id,omitempty"`
	URL       string `json:"url,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Title     string `json:"title,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}
