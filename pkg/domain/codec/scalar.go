package codec

import (
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
)

// scalarCodec serves the plain string types: text, textarea, email, url, date, color_picker
type scalarCodec struct {
	widget Widget
}

func (c scalarCodec) Empty(config.FieldDefinition) any { return "" }

func (c scalarCodec) ToEditDefault(raw any, _ config.FieldDefinition) any {
	if s, ok := scalarString(raw); ok {
		return s
	}
	return ""
}

func (c scalarCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	e := newEditor(def, c.widget, c.ToEditDefault(value, def), onChange)
	e.Constraints.Rows = def.Rows
	return e
}

func (c scalarCodec) ToWire(value any, def config.FieldDefinition) any {
	return c.ToEditDefault(value, def)
}
