package codec

import (
	"strings"

	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
)

type linkCodec struct{}

func (linkCodec) Empty(config.FieldDefinition) any {
	return model.Link{Target: model.DefaultLinkTarget}
}

func (c linkCodec) ToEditDefault(raw any, def config.FieldDefinition) any {
	var link model.Link
	switch v := raw.(type) {
	case model.Link:
		link = v
	case *model.Link:
		if v == nil {
			return c.Empty(def)
		}
		link = *v
	case map[string]any:
		link = model.Link{
			URL:    stringField(v, "url"),
			Title:  stringField(v, "title"),
			Target: stringField(v, "target"),
		}
	case string:
		// legacy values store the bare URL
		link = model.Link{URL: strings.TrimSpace(v)}
	default:
		return c.Empty(def)
	}

	if link.Target == "" {
		link.Target = model.DefaultLinkTarget
	}
	return link
}

func (c linkCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	return newEditor(def, WidgetLink, c.ToEditDefault(value, def), onChange)
}

// ToWire collapses a link without URL to nil
func (c linkCodec) ToWire(value any, def config.FieldDefinition) any {
	link, _ := c.ToEditDefault(value, def).(model.Link)
	if strings.TrimSpace(link.URL) == "" {
		return nil
	}
	return map[string]any{
		"url":    link.URL,
		"title":  link.Title,
		"target": link.Target,
	}
}
