package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// StorageShape is the backend-declared storage type of a field
type StorageShape string

const (
	StorageShapeDefault StorageShape = ""
	StorageShapeScalar  StorageShape = "scalar"
	StorageShapeArray   StorageShape = "array"
)

// Choice is one selectable option of a select or checkbox field
type Choice struct {
	Value string `json:"value" firestore:"value"`
	Label string `json:"label" firestore:"label"`
}

// Choices keeps the order the backend declared. It decodes from either a JSON array of
// {value,label} objects or a JSON object mapping stored value to label.
type Choices []Choice

// UnmarshalJSON reads both the array form and the ordered object form
func (c *Choices) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}

	if data[0] == '[' {
		var list []Choice
		if err := json.Unmarshal(data, &list); err != nil {
			return goerr.Wrap(err, "failed to decode choice list")
		}
		*c = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return goerr.Wrap(err, "failed to decode choice map")
	}

	var result Choices
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return goerr.Wrap(err, "failed to decode choice key")
		}
		key, _ := keyTok.(string)

		var label any
		if err := dec.Decode(&label); err != nil {
			return goerr.Wrap(err, "failed to decode choice label", goerr.V(ChoiceValueKey, key))
		}
		labelStr, ok := label.(string)
		if !ok {
			labelStr = fmt.Sprint(label)
		}
		result = append(result, Choice{Value: key, Label: labelStr})
	}

	*c = result
	return nil
}

// Label returns the display label for a stored value
func (c Choices) Label(value string) (string, bool) {
	for _, choice := range c {
		if choice.Value == value {
			return choice.Label, true
		}
	}
	return "", false
}

// Has reports whether value is one of the declared choices
func (c Choices) Has(value string) bool {
	_, ok := c.Label(value)
	return ok
}

// FieldDefinition defines a custom field's schema. It is immutable for an editing session.
type FieldDefinition struct {
	Key          string          `json:"key" firestore:"key"`
	Name         string          `json:"name" firestore:"name"`
	Label        string          `json:"label" firestore:"label"`
	Instructions string          `json:"instructions,omitempty" firestore:"instructions"`
	Type         types.FieldType `json:"type" firestore:"type"`
	Required     bool            `json:"required,omitempty" firestore:"required"`

	// number
	Min     *float64 `json:"min,omitempty" firestore:"min"`
	Max     *float64 `json:"max,omitempty" firestore:"max"`
	Step    *float64 `json:"step,omitempty" firestore:"step"`
	Prepend string   `json:"prepend,omitempty" firestore:"prepend"`
	Append  string   `json:"append,omitempty" firestore:"append"`

	// select, checkbox
	Choices   Choices `json:"choices,omitempty" firestore:"choices"`
	AllowNull bool    `json:"allow_null,omitempty" firestore:"allow_null"`

	// relationship (Max doubles as the selection limit)
	PostType []types.EntityKind `json:"post_type,omitempty" firestore:"post_type"`

	// true_false
	UIOnText  string `json:"ui_on_text,omitempty" firestore:"ui_on_text"`
	UIOffText string `json:"ui_off_text,omitempty" firestore:"ui_off_text"`

	// presentation only
	Rows         int    `json:"rows,omitempty" firestore:"rows"`
	Layout       string `json:"layout,omitempty" firestore:"layout"`
	ReturnFormat string `json:"return_format,omitempty" firestore:"return_format"`

	StorageShape StorageShape `json:"storage_shape,omitempty" firestore:"storage_shape"`
}

// PostTypes returns the probe order for relationship lookups
func (d FieldDefinition) PostTypes() []types.EntityKind {
	if len(d.PostType) == 0 {
		return types.DefaultPostTypes()
	}
	return d.PostType
}

// MaxItems returns the relationship selection limit, 0 meaning unbounded
func (d FieldDefinition) MaxItems() int {
	if d.Max == nil || *d.Max <= 0 {
		return 0
	}
	return int(*d.Max)
}

// IsArrayShaped reports whether the backend rejects null for this field and expects []
func (d FieldDefinition) IsArrayShaped() bool {
	switch d.StorageShape {
	case StorageShapeArray:
		return true
	case StorageShapeScalar:
		return false
	default:
		return d.Type.IsArrayShaped()
	}
}

// FieldSchema holds the ordered field definitions of one entity kind
type FieldSchema struct {
	Kind   types.EntityKind  `json:"kind" firestore:"kind"`
	Fields []FieldDefinition `json:"fields" firestore:"fields"`
}

// Field looks up a definition by its wire name
func (s *FieldSchema) Field(name string) (FieldDefinition, bool) {
	if s == nil {
		return FieldDefinition{}, false
	}
	for _, fd := range s.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return FieldDefinition{}, false
}
