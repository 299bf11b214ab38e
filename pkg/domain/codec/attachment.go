package codec

import (
	"strings"

	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// attachmentCodec serves image and file fields
type attachmentCodec struct {
	widget Widget
}

func (attachmentCodec) Empty(config.FieldDefinition) any {
	return (*model.AttachmentRef)(nil)
}

func (c attachmentCodec) ToEditDefault(raw any, def config.FieldDefinition) any {
	ref := attachmentRef(raw)
	if ref == nil {
		return c.Empty(def)
	}
	return ref
}

func attachmentRef(raw any) *model.AttachmentRef {
	switch v := raw.(type) {
	case nil, bool:
		return nil
	case *model.AttachmentRef:
		if v == nil || (v.ID == "" && v.URL == "") {
			return nil
		}
		ref := *v
		return &ref
	case model.AttachmentRef:
		return attachmentRef(&v)
	case *model.Attachment:
		if v == nil {
			return nil
		}
		return attachmentRef(&model.AttachmentRef{ID: v.ID, URL: v.URL})
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if types.EntityID(s).IsNumeric() {
			return &model.AttachmentRef{ID: s}
		}
		return &model.AttachmentRef{URL: s}
	case map[string]any:
		ref := &model.AttachmentRef{
			URL:      stringField(v, "url"),
			Filename: stringField(v, "filename"),
			Title:    stringField(v, "title"),
		}
		for _, key := range []string{"ID", "id"} {
			if inner, ok := v[key]; ok {
				if id, ok := entityID(inner); ok {
					ref.ID = id.String()
					break
				}
			}
		}
		if sizes, ok := v["sizes"].(map[string]any); ok {
			ref.Thumbnail = stringField(sizes, "thumbnail", "medium")
		}
		if ref.ID == "" && ref.URL == "" {
			return nil
		}
		return ref
	default:
		id, ok := entityID(raw)
		if !ok {
			return nil
		}
		return &model.AttachmentRef{ID: id.String()}
	}
}

func (c attachmentCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	return newEditor(def, c.widget, c.ToEditDefault(value, def), onChange)
}

// ToWire prefers the attachment id. Legacy values without one are written back as their URL.
func (c attachmentCodec) ToWire(value any, def config.FieldDefinition) any {
	ref, _ := c.ToEditDefault(value, def).(*model.AttachmentRef)
	switch {
	case ref == nil:
		return nil
	case ref.ID != "":
		return types.EntityID(ref.ID).WireValue()
	default:
		return ref.URL
	}
}
