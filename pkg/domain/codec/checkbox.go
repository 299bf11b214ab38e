package codec

import (
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
)

type checkboxCodec struct{}

func (checkboxCodec) Empty(config.FieldDefinition) any { return []string{} }

// ToEditDefault turns anything that is not a list into an empty selection
func (checkboxCodec) ToEditDefault(raw any, _ config.FieldDefinition) any {
	list, ok := asList(raw)
	if !ok {
		return []string{}
	}

	selected := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, item := range list {
		s, ok := scalarString(item)
		if !ok || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		selected = append(selected, s)
	}
	return selected
}

func (c checkboxCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	selected, _ := c.ToEditDefault(value, def).([]string)
	e := newEditor(def, WidgetCheckbox, selected, onChange)

	isSelected := make(map[string]bool, len(selected))
	for _, s := range selected {
		isSelected[s] = true
	}

	options := make([]Option, 0, len(def.Choices))
	for _, choice := range def.Choices {
		options = append(options, Option{
			Value:    choice.Value,
			Label:    choice.Label,
			Selected: isSelected[choice.Value],
		})
	}
	e.Options = options
	e.Constraints.Layout = def.Layout
	e.toggle = func(current any, key string) any {
		list, _ := c.ToEditDefault(current, def).([]string)
		return ToggleChoice(list, key)
	}
	return e
}

func (c checkboxCodec) ToWire(value any, def config.FieldDefinition) any {
	selected, _ := c.ToEditDefault(value, def).([]string)
	wire := make([]any, len(selected))
	for i, s := range selected {
		wire[i] = s
	}
	return wire
}

// ToggleChoice inserts key when absent and removes it when present. Order of the other
// entries is kept and the input slice is not modified.
func ToggleChoice(selected []string, key string) []string {
	result := make([]string, 0, len(selected)+1)
	removed := false
	for _, s := range selected {
		if s == key {
			removed = true
			continue
		}
		result = append(result, s)
	}
	if !removed {
		result = append(result, key)
	}
	return result
}
