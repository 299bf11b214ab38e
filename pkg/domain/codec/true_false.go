package codec

import (
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
)

// Toggle labels used when the field declares none
const (
	DefaultOnText  = "Yes"
	DefaultOffText = "No"
)

type trueFalseCodec struct{}

func (trueFalseCodec) Empty(config.FieldDefinition) any { return 0 }

func (trueFalseCodec) ToEditDefault(raw any, _ config.FieldDefinition) any {
	if truthy(raw) {
		return 1
	}
	return 0
}

func (c trueFalseCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	e := newEditor(def, WidgetToggle, c.ToEditDefault(value, def), onChange)
	e.Constraints.OnText = def.UIOnText
	if e.Constraints.OnText == "" {
		e.Constraints.OnText = DefaultOnText
	}
	e.Constraints.OffText = def.UIOffText
	if e.Constraints.OffText == "" {
		e.Constraints.OffText = DefaultOffText
	}
	return e
}

// ToWire always yields the integer 0 or 1, never a boolean
func (c trueFalseCodec) ToWire(value any, def config.FieldDefinition) any {
	return c.ToEditDefault(value, def)
}
