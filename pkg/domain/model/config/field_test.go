package config_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

func ptr(v float64) *float64 { return &v }

func TestChoices_UnmarshalJSON(t *testing.T) {
	t.Run("object form keeps declaration order", func(t *testing.T) {
		var fd config.FieldDefinition
		data := `{"name":"color","type":"checkbox","choices":{"red":"Red","blue":"Blue","amber":"Amber"}}`
		gt.NoError(t, json.Unmarshal([]byte(data), &fd)).Required()

		gt.Array(t, fd.Choices).Length(3).Required()
		gt.Value(t, fd.Choices[0]).Equal(config.Choice{Value: "red", Label: "Red"})
		gt.Value(t, fd.Choices[1]).Equal(config.Choice{Value: "blue", Label: "Blue"})
		gt.Value(t, fd.Choices[2]).Equal(config.Choice{Value: "amber", Label: "Amber"})
	})

	t.Run("array form", func(t *testing.T) {
		var c config.Choices
		gt.NoError(t, json.Unmarshal([]byte(`[{"value":"1","label":"One"}]`), &c)).Required()
		gt.Value(t, c).Equal(config.Choices{{Value: "1", Label: "One"}})
	})

	t.Run("non string label", func(t *testing.T) {
		var c config.Choices
		gt.NoError(t, json.Unmarshal([]byte(`{"5":5}`), &c)).Required()
		gt.Value(t, c).Equal(config.Choices{{Value: "5", Label: "5"}})
	})

	t.Run("null", func(t *testing.T) {
		var c config.Choices
		gt.NoError(t, json.Unmarshal([]byte(`null`), &c)).Required()
		gt.Number(t, len(c)).Equal(0)
	})
}

func TestChoices_Label(t *testing.T) {
	c := config.Choices{{Value: "red", Label: "Red"}}

	label, ok := c.Label("red")
	gt.Bool(t, ok).True()
	gt.Value(t, label).Equal("Red")

	gt.Bool(t, c.Has("green")).False()
}

func TestFieldDefinition_Helpers(t *testing.T) {
	rel := config.FieldDefinition{Name: "members", Type: types.FieldTypeRelationship}
	gt.Value(t, rel.PostTypes()).Equal([]types.EntityKind{types.EntityKindPerson, types.EntityKindTeam})
	gt.Number(t, rel.MaxItems()).Equal(0)
	gt.Bool(t, rel.IsArrayShaped()).True()

	rel.Max = ptr(3)
	rel.PostType = []types.EntityKind{types.EntityKindTeam}
	gt.Number(t, rel.MaxItems()).Equal(3)
	gt.Value(t, rel.PostTypes()).Equal([]types.EntityKind{types.EntityKindTeam})

	text := config.FieldDefinition{Name: "tags", Type: types.FieldTypeText, StorageShape: config.StorageShapeArray}
	gt.Bool(t, text.IsArrayShaped()).True()

	cb := config.FieldDefinition{Name: "flags", Type: types.FieldTypeCheckbox, StorageShape: config.StorageShapeScalar}
	gt.Bool(t, cb.IsArrayShaped()).False()
}

func TestFieldSchema_Validate(t *testing.T) {
	valid := func() *config.FieldSchema {
		return &config.FieldSchema{
			Kind: types.EntityKindPerson,
			Fields: []config.FieldDefinition{
				{Key: "field_1", Name: "nickname", Type: types.FieldTypeText},
				{Key: "field_2", Name: "age", Type: types.FieldTypeNumber, Min: ptr(0), Max: ptr(150)},
				{Key: "field_3", Name: "color", Type: types.FieldTypeSelect, Choices: config.Choices{{Value: "red", Label: "Red"}}},
				{Key: "field_4", Name: "teams", Type: types.FieldTypeRelationship, PostType: []types.EntityKind{types.EntityKindTeam}},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *config.FieldSchema)
		wantErr error
	}{
		{
			name:   "valid schema",
			mutate: func(s *config.FieldSchema) {},
		},
		{
			name:    "unknown kind",
			mutate:  func(s *config.FieldSchema) { s.Kind = "committee" },
			wantErr: config.ErrInvalidSchema,
		},
		{
			name:    "duplicate key",
			mutate:  func(s *config.FieldSchema) { s.Fields[1].Key = "field_1" },
			wantErr: config.ErrDuplicateFieldKey,
		},
		{
			name:    "duplicate name",
			mutate:  func(s *config.FieldSchema) { s.Fields[1].Name = "nickname"; s.Fields[1].Type = types.FieldTypeText },
			wantErr: config.ErrDuplicateFieldName,
		},
		{
			name:    "missing name",
			mutate:  func(s *config.FieldSchema) { s.Fields[0].Name = "" },
			wantErr: config.ErrMissingName,
		},
		{
			name:    "invalid type",
			mutate:  func(s *config.FieldSchema) { s.Fields[0].Type = "repeater" },
			wantErr: config.ErrInvalidFieldType,
		},
		{
			name:    "select without choices",
			mutate:  func(s *config.FieldSchema) { s.Fields[2].Choices = nil },
			wantErr: config.ErrMissingChoices,
		},
		{
			name: "duplicate choice",
			mutate: func(s *config.FieldSchema) {
				s.Fields[2].Choices = append(s.Fields[2].Choices, config.Choice{Value: "red", Label: "Again"})
			},
			wantErr: config.ErrDuplicateChoice,
		},
		{
			name:    "min above max",
			mutate:  func(s *config.FieldSchema) { s.Fields[1].Min = ptr(200) },
			wantErr: config.ErrInvalidRange,
		},
		{
			name:    "non positive step",
			mutate:  func(s *config.FieldSchema) { s.Fields[1].Step = ptr(0) },
			wantErr: config.ErrInvalidRange,
		},
		{
			name:    "unknown post type",
			mutate:  func(s *config.FieldSchema) { s.Fields[3].PostType = []types.EntityKind{"committee"} },
			wantErr: config.ErrInvalidPostType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == nil {
				gt.NoError(t, err)
			} else {
				gt.Error(t, err).Is(tt.wantErr)
			}
		})
	}
}

func TestFieldSchema_Field(t *testing.T) {
	s := &config.FieldSchema{Fields: []config.FieldDefinition{{Name: "nickname", Type: types.FieldTypeText}}}

	fd, ok := s.Field("nickname")
	gt.Bool(t, ok).True()
	gt.Value(t, fd.Type).Equal(types.FieldTypeText)

	_, ok = s.Field("missing")
	gt.Bool(t, ok).False()

	var nilSchema *config.FieldSchema
	_, ok = nilSchema.Field("nickname")
	gt.Bool(t, ok).False()
}
