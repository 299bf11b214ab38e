package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/secmon-lab/rolodex/pkg/domain/codec"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// DisplayUseCase renders stored values for read-only detail pages
type DisplayUseCase struct {
	registry *codec.Registry
}

func NewDisplayUseCase(registry *codec.Registry) *DisplayUseCase {
	if registry == nil {
		registry = codec.Default()
	}
	return &DisplayUseCase{registry: registry}
}

// RenderDisplay renders every field of schema from raw. known supplies display names for
// relationship ids that carry no embedded object; ids missing from it render as "#<id>".
func (uc *DisplayUseCase) RenderDisplay(ctx context.Context, schema *config.FieldSchema, raw map[string]any, known []model.ResolvedReference) []model.DisplayField {
	if schema == nil {
		return []model.DisplayField{}
	}

	refs := make(map[types.EntityID]model.ResolvedReference, len(known))
	for _, ref := range known {
		refs[ref.ID] = ref
	}

	fields := make([]model.DisplayField, 0, len(schema.Fields))
	for _, fd := range schema.Fields {
		fields = append(fields, uc.renderField(ctx, fd, raw[fd.Name], refs))
	}
	return fields
}

// RelationshipIDs collects the foreign ids of every relationship field in raw
func (uc *DisplayUseCase) RelationshipIDs(ctx context.Context, schema *config.FieldSchema, raw map[string]any) []types.EntityID {
	var ids []types.EntityID
	seen := make(map[types.EntityID]bool)
	if schema == nil {
		return ids
	}
	for _, fd := range schema.Fields {
		if fd.Type != types.FieldTypeRelationship {
			continue
		}
		list, _ := editDefault(ctx, uc.registry, fd, raw[fd.Name]).([]types.EntityID)
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (uc *DisplayUseCase) renderField(ctx context.Context, fd config.FieldDefinition, raw any, refs map[types.EntityID]model.ResolvedReference) (field model.DisplayField) {
	label := fd.Label
	if label == "" {
		label = fd.Name
	}
	field = model.DisplayField{Name: fd.Name, Label: label, Type: fd.Type}

	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Warn("failed to render field for display",
				slog.String(model.FieldNameKey, fd.Name),
				slog.Any("panic", r))
			field.Items = nil
		}
		if len(field.Items) == 0 {
			field.Empty = true
			field.Items = []model.DisplayItem{{Kind: model.DisplayItemText, Label: model.NotSetText, Placeholder: true}}
		}
	}()

	render, err := types.Visit[displayFunc](fd.Type, displayers{ctx: ctx, registry: uc.registry, refs: refs})
	if err != nil {
		return field
	}
	field.Items = render(fd, raw)
	return field
}

type displayFunc = func(config.FieldDefinition, any) []model.DisplayItem

// displayers builds the per-type renderers. Values are normalized by the codecs first so
// every stored shape they accept is displayed the same way.
type displayers struct {
	ctx      context.Context
	registry *codec.Registry
	refs     map[types.EntityID]model.ResolvedReference
}

func (d displayers) normalize(fd config.FieldDefinition, raw any) any {
	return editDefault(d.ctx, d.registry, fd, raw)
}

func (d displayers) text(kind model.DisplayItemKind) displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		s, _ := d.normalize(fd, raw).(string)
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []model.DisplayItem{{Kind: kind, Label: s}}
	}
}

func (d displayers) Text() displayFunc        { return d.text(model.DisplayItemText) }
func (d displayers) Textarea() displayFunc    { return d.text(model.DisplayItemText) }
func (d displayers) ColorPicker() displayFunc { return d.text(model.DisplayItemSwatch) }

func (d displayers) Email() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		s, _ := d.normalize(fd, raw).(string)
		if s == "" {
			return nil
		}
		return []model.DisplayItem{{Kind: model.DisplayItemLink, Label: s, URL: "mailto:" + s}}
	}
}

func (d displayers) URL() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		s, _ := d.normalize(fd, raw).(string)
		if s == "" {
			return nil
		}
		return []model.DisplayItem{{Kind: model.DisplayItemLink, Label: s, URL: s, Target: model.DefaultLinkTarget}}
	}
}

func (d displayers) Number() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		s, _ := d.normalize(fd, raw).(string)
		if _, ok := codec.ParseNumber(s); !ok {
			return nil
		}
		return []model.DisplayItem{{Kind: model.DisplayItemText, Label: fd.Prepend + s + fd.Append}}
	}
}

// dateLayouts are the stored date formats, compact first
var dateLayouts = []string{"20060102", "2006-01-02", time.RFC3339}

func (d displayers) Date() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		s, _ := d.normalize(fd, raw).(string)
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return []model.DisplayItem{{Kind: model.DisplayItemText, Label: t.Format("2006-01-02")}}
			}
		}
		return []model.DisplayItem{{Kind: model.DisplayItemText, Label: s}}
	}
}

func (d displayers) Select() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		s, _ := d.normalize(fd, raw).(string)
		if s == "" {
			return nil
		}
		return []model.DisplayItem{choiceChip(fd, s)}
	}
}

func (d displayers) Checkbox() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		selected, _ := d.normalize(fd, raw).([]string)
		items := make([]model.DisplayItem, 0, len(selected))
		for _, s := range selected {
			items = append(items, choiceChip(fd, s))
		}
		return items
	}
}

func choiceChip(fd config.FieldDefinition, value string) model.DisplayItem {
	label, ok := fd.Choices.Label(value)
	if !ok {
		label = value
	}
	return model.DisplayItem{Kind: model.DisplayItemChip, Label: label}
}

func (d displayers) TrueFalse() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		if raw == nil {
			return nil
		}
		on, off := fd.UIOnText, fd.UIOffText
		if on == "" {
			on = codec.DefaultOnText
		}
		if off == "" {
			off = codec.DefaultOffText
		}
		label := off
		if n, _ := d.normalize(fd, raw).(int); n == 1 {
			label = on
		}
		return []model.DisplayItem{{Kind: model.DisplayItemText, Label: label}}
	}
}

func (d displayers) attachment(kind model.DisplayItemKind) displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		ref, _ := d.normalize(fd, raw).(*model.AttachmentRef)
		if ref == nil {
			return nil
		}
		if ref.URL == "" {
			return []model.DisplayItem{idChip(types.EntityID(ref.ID))}
		}

		label := ref.Title
		if label == "" {
			label = ref.Filename
		}
		if label == "" {
			label = ref.URL
		}
		return []model.DisplayItem{{Kind: kind, Label: label, URL: ref.URL, Thumbnail: ref.Thumbnail}}
	}
}

func (d displayers) Image() displayFunc { return d.attachment(model.DisplayItemImage) }
func (d displayers) File() displayFunc  { return d.attachment(model.DisplayItemFile) }

func (d displayers) Link() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		link, _ := d.normalize(fd, raw).(model.Link)
		if strings.TrimSpace(link.URL) == "" {
			return nil
		}
		label := link.Title
		if label == "" {
			label = link.URL
		}
		return []model.DisplayItem{{Kind: model.DisplayItemLink, Label: label, URL: link.URL, Target: link.Target}}
	}
}

func (d displayers) Relationship() displayFunc {
	return func(fd config.FieldDefinition, raw any) []model.DisplayItem {
		names := embeddedNames(raw)
		ids, _ := d.normalize(fd, raw).([]types.EntityID)

		items := make([]model.DisplayItem, 0, len(ids))
		for _, id := range ids {
			if ref, ok := d.refs[id]; ok && ref.DisplayName != "" {
				items = append(items, model.DisplayItem{Kind: model.DisplayItemChip, Label: ref.DisplayName, Thumbnail: ref.Thumbnail})
				continue
			}
			if name, ok := names[id]; ok {
				items = append(items, model.DisplayItem{Kind: model.DisplayItemChip, Label: name})
				continue
			}
			items = append(items, idChip(id))
		}
		return items
	}
}

// embeddedNames picks display names out of embedded relationship objects
func embeddedNames(raw any) map[types.EntityID]string {
	names := make(map[types.EntityID]string)
	var objects []map[string]any
	switch v := raw.(type) {
	case map[string]any:
		objects = append(objects, v)
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				objects = append(objects, m)
			}
		}
	}

	for _, m := range objects {
		var id string
		for _, key := range []string{"ID", "id"} {
			if s, ok := scalarText(m[key]); ok {
				id = s
				break
			}
		}
		if id == "" {
			continue
		}
		for _, key := range []string{"post_title", "name", "display_name", "title"} {
			if s, ok := m[key].(string); ok && s != "" {
				names[types.EntityID(id)] = s
				break
			}
		}
	}
	return names
}

// scalarText normalizes a bare id through the relationship codec
func scalarText(v any) (string, bool) {
	c, err := codec.Default().Get(types.FieldTypeRelationship)
	if err != nil {
		return "", false
	}
	list, _ := c.ToEditDefault(v, config.FieldDefinition{Type: types.FieldTypeRelationship}).([]types.EntityID)
	if len(list) != 1 {
		return "", false
	}
	return list[0].String(), true
}

func idChip(id types.EntityID) model.DisplayItem {
	return model.DisplayItem{Kind: model.DisplayItemChip, Label: "#" + id.String(), Placeholder: true}
}
