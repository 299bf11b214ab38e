package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/domain/codec"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

func ptr(f float64) *float64 { return &f }

func fieldOf(ft types.FieldType) config.FieldDefinition {
	def := config.FieldDefinition{Key: "field_" + ft.String(), Name: ft.String(), Label: ft.String(), Type: ft}
	switch ft {
	case types.FieldTypeSelect, types.FieldTypeCheckbox:
		def.Choices = config.Choices{{Value: "red", Label: "Red"}, {Value: "blue", Label: "Blue"}}
	}
	return def
}

func getCodec(t *testing.T, ft types.FieldType) codec.Codec {
	t.Helper()
	c, err := codec.Default().Get(ft)
	gt.NoError(t, err).Required()
	return c
}

// shapeOK reports whether v has the edit state shape of ft
func shapeOK(ft types.FieldType, v any) bool {
	switch ft {
	case types.FieldTypeCheckbox:
		s, ok := v.([]string)
		return ok && s != nil
	case types.FieldTypeTrueFalse:
		n, ok := v.(int)
		return ok && (n == 0 || n == 1)
	case types.FieldTypeLink:
		l, ok := v.(model.Link)
		return ok && l.Target != ""
	case types.FieldTypeImage, types.FieldTypeFile:
		_, ok := v.(*model.AttachmentRef)
		return ok
	case types.FieldTypeRelationship:
		s, ok := v.([]types.EntityID)
		return ok && s != nil
	default:
		_, ok := v.(string)
		return ok
	}
}

func TestRegistry_Get(t *testing.T) {
	for _, ft := range types.AllFieldTypes() {
		t.Run(ft.String(), func(t *testing.T) {
			c, err := codec.Default().Get(ft)
			gt.NoError(t, err).Required()
			gt.Value(t, c).NotNil()
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		_, err := codec.NewRegistry().Get(types.FieldType("repeater"))
		gt.Error(t, err).Is(model.ErrInvalidFieldType)
	})
}

func TestToEditDefault_Totality(t *testing.T) {
	var undefined any
	inputs := map[string]any{
		"undefined":    undefined,
		"bool":         true,
		"string":       "some value",
		"number":       float64(42),
		"object":       map[string]any{"unexpected": map[string]any{"deep": []any{1, 2}}},
		"nested list":  []any{[]any{map[string]any{"ID": map[string]any{"id": 1}}}},
		"empty list":   []any{},
		"empty object": map[string]any{},
		"json number":  json.Number("7"),
	}

	for _, ft := range types.AllFieldTypes() {
		c := getCodec(t, ft)
		def := fieldOf(ft)
		for name, raw := range inputs {
			t.Run(ft.String()+"/"+name, func(t *testing.T) {
				v := c.ToEditDefault(raw, def)
				gt.B(t, shapeOK(ft, v)).
					Describef("unexpected shape %T for %s", v, ft).
					True()
			})
		}

		t.Run(ft.String()+"/empty", func(t *testing.T) {
			gt.B(t, shapeOK(ft, c.Empty(def))).True()
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ft   types.FieldType
		raw  any
		want any
	}{
		{name: "text", ft: types.FieldTypeText, raw: "hello", want: "hello"},
		{name: "textarea", ft: types.FieldTypeTextarea, raw: "a\nb", want: "a\nb"},
		{name: "email", ft: types.FieldTypeEmail, raw: "a@example.com", want: "a@example.com"},
		{name: "url", ft: types.FieldTypeURL, raw: "https://example.com", want: "https://example.com"},
		{name: "date", ft: types.FieldTypeDate, raw: "20240131", want: "20240131"},
		{name: "color", ft: types.FieldTypeColorPicker, raw: "#ff0000", want: "#ff0000"},
		{name: "number", ft: types.FieldTypeNumber, raw: float64(3.5), want: float64(3.5)},
		{name: "number from string", ft: types.FieldTypeNumber, raw: "12", want: float64(12)},
		{name: "select", ft: types.FieldTypeSelect, raw: "red", want: "red"},
		{name: "checkbox", ft: types.FieldTypeCheckbox, raw: []any{"red", "blue"}, want: []any{"red", "blue"}},
		{name: "true_false on", ft: types.FieldTypeTrueFalse, raw: 1, want: 1},
		{name: "true_false off", ft: types.FieldTypeTrueFalse, raw: 0, want: 0},
		{
			name: "link",
			ft:   types.FieldTypeLink,
			raw:  map[string]any{"url": "https://example.com", "title": "Example", "target": "_self"},
			want: map[string]any{"url": "https://example.com", "title": "Example", "target": "_self"},
		},
		{name: "image", ft: types.FieldTypeImage, raw: int64(12), want: int64(12)},
		{name: "file", ft: types.FieldTypeFile, raw: int64(99), want: int64(99)},
		{name: "relationship", ft: types.FieldTypeRelationship, raw: []any{int64(5), int64(9)}, want: []any{int64(5), int64(9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := getCodec(t, tt.ft)
			def := fieldOf(tt.ft)
			got := c.ToWire(c.ToEditDefault(tt.raw, def), def)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestToEditDefault_Idempotent(t *testing.T) {
	raws := map[types.FieldType]any{
		types.FieldTypeRelationship: []any{map[string]any{"ID": float64(5)}, float64(9), "9"},
		types.FieldTypeCheckbox:     []any{"red", "red", "blue"},
		types.FieldTypeImage:        map[string]any{"id": float64(3), "url": "https://example.com/a.png"},
		types.FieldTypeLink:         map[string]any{"url": "https://example.com"},
		types.FieldTypeTrueFalse:    "true",
		types.FieldTypeNumber:       " 4 ",
	}

	for ft, raw := range raws {
		t.Run(ft.String(), func(t *testing.T) {
			c := getCodec(t, ft)
			def := fieldOf(ft)
			once := c.ToEditDefault(raw, def)
			twice := c.ToEditDefault(once, def)
			gt.Value(t, twice).Equal(once)
		})
	}
}

func TestRelationship(t *testing.T) {
	c := getCodec(t, types.FieldTypeRelationship)

	t.Run("mixed embedded and bare ids", func(t *testing.T) {
		def := config.FieldDefinition{
			Name:     "members",
			Type:     types.FieldTypeRelationship,
			PostType: []types.EntityKind{types.EntityKindPerson, types.EntityKindTeam},
		}
		raw := []any{map[string]any{"ID": float64(5)}, float64(9)}
		gt.Value(t, c.ToEditDefault(raw, def)).Equal(any([]types.EntityID{"5", "9"}))
	})

	tests := []struct {
		name string
		raw  any
		max  *float64
		want []types.EntityID
	}{
		{name: "bare id", raw: float64(7), want: []types.EntityID{"7"}},
		{name: "bare string id", raw: "7", want: []types.EntityID{"7"}},
		{name: "embedded lowercase id", raw: map[string]any{"id": "12"}, want: []types.EntityID{"12"}},
		{name: "duplicates keep first seen", raw: []any{"3", float64(1), map[string]any{"ID": 3}, "1"}, want: []types.EntityID{"3", "1"}},
		{name: "max truncates", raw: []any{"1", "2", "3"}, max: ptr(2), want: []types.EntityID{"1", "2"}},
		{name: "null", raw: nil, want: []types.EntityID{}},
		{name: "boolean", raw: false, want: []types.EntityID{}},
		{name: "negative id dropped", raw: []any{float64(-1), "4"}, want: []types.EntityID{"4"}},
		{name: "fractional id dropped", raw: []any{1.5}, want: []types.EntityID{}},
		{name: "nested object dropped", raw: []any{map[string]any{"ID": map[string]any{"ID": 1}}}, want: []types.EntityID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := config.FieldDefinition{Name: "rel", Type: types.FieldTypeRelationship, Max: tt.max}
			gt.Value(t, c.ToEditDefault(tt.raw, def)).Equal(any(tt.want))
		})
	}

	t.Run("cleared list serializes to empty list", func(t *testing.T) {
		def := fieldOf(types.FieldTypeRelationship)
		got := c.ToWire([]types.EntityID{}, def)
		gt.Value(t, got).Equal(any([]any{}))
		got = c.ToWire(nil, def)
		gt.Value(t, got).Equal(any([]any{}))
	})

	t.Run("non numeric ids stay strings on the wire", func(t *testing.T) {
		def := fieldOf(types.FieldTypeRelationship)
		got := c.ToWire([]types.EntityID{"abc", "10"}, def)
		gt.Value(t, got).Equal(any([]any{"abc", int64(10)}))
	})
}

func TestToggleReference(t *testing.T) {
	selected := []types.EntityID{"1", "2"}

	gt.Value(t, codec.ToggleReference(selected, "3", 0)).Equal([]types.EntityID{"1", "2", "3"})
	gt.Value(t, codec.ToggleReference(selected, "1", 0)).Equal([]types.EntityID{"2"})
	gt.Value(t, codec.ToggleReference(selected, "3", 2)).Equal([]types.EntityID{"1", "2"})
	gt.Value(t, codec.ToggleReference(selected, "2", 2)).Equal([]types.EntityID{"1"})
	gt.Value(t, selected).Equal([]types.EntityID{"1", "2"})
}

func TestAttachment(t *testing.T) {
	c := getCodec(t, types.FieldTypeImage)
	def := fieldOf(types.FieldTypeImage)

	tests := []struct {
		name string
		raw  any
		want *model.AttachmentRef
	}{
		{name: "bare numeric id", raw: float64(42), want: &model.AttachmentRef{ID: "42"}},
		{name: "numeric string", raw: "42", want: &model.AttachmentRef{ID: "42"}},
		{name: "url string", raw: "https://example.com/a.png", want: &model.AttachmentRef{URL: "https://example.com/a.png"}},
		{
			name: "object",
			raw: map[string]any{
				"ID":       float64(8),
				"url":      "https://example.com/full.png",
				"filename": "full.png",
				"title":    "Full",
				"sizes":    map[string]any{"thumbnail": "https://example.com/thumb.png"},
			},
			want: &model.AttachmentRef{
				ID:        "8",
				URL:       "https://example.com/full.png",
				Filename:  "full.png",
				Title:     "Full",
				Thumbnail: "https://example.com/thumb.png",
			},
		},
		{
			name: "object with medium size only",
			raw:  map[string]any{"id": "8", "sizes": map[string]any{"medium": "https://example.com/m.png"}},
			want: &model.AttachmentRef{ID: "8", Thumbnail: "https://example.com/m.png"},
		},
		{name: "empty string", raw: "", want: nil},
		{name: "false", raw: false, want: nil},
		{name: "object without id or url", raw: map[string]any{"title": "x"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ToEditDefault(tt.raw, def).(*model.AttachmentRef)
			gt.B(t, ok).True()
			gt.Value(t, got).Equal(tt.want)
		})
	}

	t.Run("wire prefers id", func(t *testing.T) {
		ref := &model.AttachmentRef{ID: "8", URL: "https://example.com/a.png"}
		gt.Value(t, c.ToWire(ref, def)).Equal(any(int64(8)))
	})

	t.Run("legacy url is written back", func(t *testing.T) {
		ref := &model.AttachmentRef{URL: "https://example.com/a.png"}
		gt.Value(t, c.ToWire(ref, def)).Equal(any("https://example.com/a.png"))
	})

	t.Run("unset is null", func(t *testing.T) {
		gt.Value(t, c.ToWire((*model.AttachmentRef)(nil), def)).Nil()
	})
}

func TestLink(t *testing.T) {
	c := getCodec(t, types.FieldTypeLink)
	def := fieldOf(types.FieldTypeLink)

	t.Run("missing keys get defaults", func(t *testing.T) {
		got := c.ToEditDefault(map[string]any{"url": "https://example.com"}, def)
		gt.Value(t, got).Equal(any(model.Link{URL: "https://example.com", Target: "_blank"}))
	})

	t.Run("null gets all keys", func(t *testing.T) {
		got := c.ToEditDefault(nil, def)
		gt.Value(t, got).Equal(any(model.Link{Target: "_blank"}))
	})

	t.Run("empty url collapses to null", func(t *testing.T) {
		got := c.ToWire(model.Link{URL: "", Title: "ignored", Target: "_blank"}, def)
		gt.Value(t, got).Nil()
	})
}

func TestNumber(t *testing.T) {
	c := getCodec(t, types.FieldTypeNumber)
	def := fieldOf(types.FieldTypeNumber)

	gt.Value(t, c.ToEditDefault(nil, def)).Equal(any(""))
	gt.Value(t, c.ToEditDefault(float64(2.25), def)).Equal(any("2.25"))
	gt.Value(t, c.ToEditDefault(int64(10), def)).Equal(any("10"))
	gt.Value(t, c.ToWire("", def)).Nil()
	gt.Value(t, c.ToWire("  ", def)).Nil()
	gt.Value(t, c.ToWire("abc", def)).Nil()
	gt.Value(t, c.ToWire("0", def)).Equal(any(float64(0)))

	f, ok := codec.ParseNumber(" 1.5 ")
	gt.B(t, ok).True()
	gt.Value(t, f).Equal(1.5)
	_, ok = codec.ParseNumber("")
	gt.B(t, ok).False()
}

func TestTrueFalse(t *testing.T) {
	c := getCodec(t, types.FieldTypeTrueFalse)
	def := fieldOf(types.FieldTypeTrueFalse)

	tests := []struct {
		raw  any
		want int
	}{
		{raw: true, want: 1},
		{raw: false, want: 0},
		{raw: "1", want: 1},
		{raw: "0", want: 0},
		{raw: "yes", want: 1},
		{raw: "", want: 0},
		{raw: float64(1), want: 1},
		{raw: nil, want: 0},
		{raw: []any{1}, want: 0},
	}

	for _, tt := range tests {
		gt.Value(t, c.ToEditDefault(tt.raw, def)).Equal(any(tt.want))
		gt.Value(t, c.ToWire(tt.raw, def)).Equal(any(tt.want))
	}

	t.Run("toggle labels default", func(t *testing.T) {
		e := c.Render(1, def, nil)
		gt.Value(t, e.Constraints.OnText).Equal(codec.DefaultOnText)
		gt.Value(t, e.Constraints.OffText).Equal(codec.DefaultOffText)
	})
}

func TestCheckbox(t *testing.T) {
	c := getCodec(t, types.FieldTypeCheckbox)
	def := fieldOf(types.FieldTypeCheckbox)

	t.Run("malformed value then toggle", func(t *testing.T) {
		state := c.ToEditDefault("not-an-array", def)
		gt.Value(t, state).Equal(any([]string{}))

		var changed any
		e := c.Render(state, def, func(v any) { changed = v })
		gt.B(t, e.Toggle("red")).True()
		gt.Value(t, changed).Equal(any([]string{"red"}))
	})

	t.Run("toggle removes by membership", func(t *testing.T) {
		var changed any
		e := c.Render([]string{"blue", "red"}, def, func(v any) { changed = v })
		e.Toggle("blue")
		gt.Value(t, changed).Equal(any([]string{"red"}))
	})

	t.Run("toggle reads current value", func(t *testing.T) {
		current := any([]string{})
		e := c.Render(current, def, func(v any) { current = v }).
			WithCurrent(func() any { return current })
		e.Toggle("red")
		e.Toggle("blue")
		gt.Value(t, current).Equal(any([]string{"red", "blue"}))
	})

	t.Run("options mark selection", func(t *testing.T) {
		e := c.Render([]string{"blue"}, def, nil)
		gt.A(t, e.Options).Length(2)
		gt.B(t, e.Options[0].Selected).False()
		gt.B(t, e.Options[1].Selected).True()
	})

	t.Run("empty selection serializes to empty list", func(t *testing.T) {
		gt.Value(t, c.ToWire([]string{}, def)).Equal(any([]any{}))
	})

	gt.Value(t, codec.ToggleChoice([]string{"a", "b"}, "a")).Equal([]string{"b"})
	gt.Value(t, codec.ToggleChoice([]string{"a"}, "b")).Equal([]string{"a", "b"})
}

func TestSelect(t *testing.T) {
	c := getCodec(t, types.FieldTypeSelect)

	t.Run("no empty option unless allow_null", func(t *testing.T) {
		def := fieldOf(types.FieldTypeSelect)
		e := c.Render("red", def, nil)
		gt.A(t, e.Options).Length(2)
		for _, opt := range e.Options {
			gt.String(t, opt.Value).NotEqual("")
		}
	})

	t.Run("allow_null prepends empty option", func(t *testing.T) {
		def := fieldOf(types.FieldTypeSelect)
		def.AllowNull = true
		e := c.Render("", def, nil)
		gt.A(t, e.Options).Length(3)
		gt.Value(t, e.Options[0].Value).Equal("")
		gt.B(t, e.Options[0].Selected).True()
	})

	t.Run("value outside choices is kept", func(t *testing.T) {
		def := fieldOf(types.FieldTypeSelect)
		gt.Value(t, c.ToEditDefault("green", def)).Equal(any("green"))
		e := c.Render("green", def, nil)
		gt.A(t, e.Options).Length(3)
		gt.Value(t, e.Options[2]).Equal(codec.Option{Value: "green", Label: "green", Selected: true})
	})

	t.Run("stored list yields first value", func(t *testing.T) {
		def := fieldOf(types.FieldTypeSelect)
		gt.Value(t, c.ToEditDefault([]any{"blue", "red"}, def)).Equal(any("blue"))
	})

	t.Run("empty selection is null", func(t *testing.T) {
		def := fieldOf(types.FieldTypeSelect)
		gt.Value(t, c.ToWire("", def)).Nil()
	})
}

func TestEditor_Set(t *testing.T) {
	c := getCodec(t, types.FieldTypeText)
	def := config.FieldDefinition{Name: "nickname", Label: "Nickname", Type: types.FieldTypeText, Required: true}

	var changed any
	e := c.Render("Bob", def, func(v any) { changed = v })
	gt.Value(t, e.Widget).Equal(codec.WidgetText)
	gt.Value(t, e.Value).Equal(any("Bob"))
	gt.B(t, e.Required).True()

	e.Set("Robert")
	gt.Value(t, changed).Equal(any("Robert"))
	gt.B(t, e.Toggle("x")).False()
}
