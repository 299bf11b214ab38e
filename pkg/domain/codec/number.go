package codec

import (
	"strconv"
	"strings"

	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
)

// numberCodec keeps the in-progress text of a number input. An empty string means unset.
type numberCodec struct{}

func (numberCodec) Empty(config.FieldDefinition) any { return "" }

func (numberCodec) ToEditDefault(raw any, _ config.FieldDefinition) any {
	if s, ok := scalarString(raw); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func (c numberCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	e := newEditor(def, WidgetNumber, c.ToEditDefault(value, def), onChange)
	e.Constraints.Min = def.Min
	e.Constraints.Max = def.Max
	e.Constraints.Step = def.Step
	e.Constraints.Prepend = def.Prepend
	e.Constraints.Append = def.Append
	return e
}

// ToWire returns a float64, or nil for an empty or unparseable value. Never 0 or "".
func (c numberCodec) ToWire(value any, def config.FieldDefinition) any {
	s, _ := c.ToEditDefault(value, def).(string)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if formatFloat(f) == "" {
		return nil
	}
	return f
}

// ParseNumber reports whether a number edit value is a usable number
func ParseNumber(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || formatFloat(f) == "" {
		return 0, false
	}
	return f, true
}
