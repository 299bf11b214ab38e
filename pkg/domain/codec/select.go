package codec

import (
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
)

// EmptyOptionLabel labels the blank option of a nullable select
const EmptyOptionLabel = "- Select -"

type selectCodec struct{}

func (selectCodec) Empty(config.FieldDefinition) any { return "" }

// ToEditDefault accepts values missing from the choices so legacy data stays visible.
// A stored list (multi-select leftovers) yields its first scalar.
func (selectCodec) ToEditDefault(raw any, _ config.FieldDefinition) any {
	if s, ok := scalarString(raw); ok {
		return s
	}
	if list, ok := asList(raw); ok {
		for _, item := range list {
			if s, ok := scalarString(item); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func (c selectCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	current, _ := c.ToEditDefault(value, def).(string)
	e := newEditor(def, WidgetSelect, current, onChange)

	options := make([]Option, 0, len(def.Choices)+2)
	if def.AllowNull {
		options = append(options, Option{Value: "", Label: EmptyOptionLabel, Selected: current == ""})
	}
	for _, choice := range def.Choices {
		options = append(options, Option{
			Value:    choice.Value,
			Label:    choice.Label,
			Selected: choice.Value == current,
		})
	}
	if current != "" && !def.Choices.Has(current) {
		options = append(options, Option{Value: current, Label: current, Selected: true})
	}

	e.Options = options
	return e
}

func (c selectCodec) ToWire(value any, def config.FieldDefinition) any {
	s, _ := c.ToEditDefault(value, def).(string)
	if s == "" {
		return nil
	}
	return s
}
