package codec

import (
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

type relationshipCodec struct{}

func (relationshipCodec) Empty(config.FieldDefinition) any { return []types.EntityID{} }

// ToEditDefault flattens a bare id, an embedded {ID|id} object or a list mixing both into
// unique ids in first-seen order, truncated to the field's max.
func (relationshipCodec) ToEditDefault(raw any, def config.FieldDefinition) any {
	items, ok := asList(raw)
	if !ok {
		items = []any{raw}
	}

	limit := def.MaxItems()
	ids := make([]types.EntityID, 0, len(items))
	seen := make(map[types.EntityID]bool, len(items))
	for _, item := range items {
		id, ok := entityID(item)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids
}

func (c relationshipCodec) Render(value any, def config.FieldDefinition, onChange func(any)) Editor {
	e := newEditor(def, WidgetRelationship, c.ToEditDefault(value, def), onChange)
	e.Constraints.MaxItems = def.MaxItems()
	e.Constraints.PostTypes = def.PostTypes()
	e.toggle = func(current any, key string) any {
		ids, _ := c.ToEditDefault(current, def).([]types.EntityID)
		return ToggleReference(ids, types.EntityID(key), def.MaxItems())
	}
	return e
}

// ToWire never returns nil; an empty selection is written as an empty list
func (c relationshipCodec) ToWire(value any, def config.FieldDefinition) any {
	ids, _ := c.ToEditDefault(value, def).([]types.EntityID)
	wire := make([]any, len(ids))
	for i, id := range ids {
		wire[i] = id.WireValue()
	}
	return wire
}

// ToggleReference removes id when selected and appends it otherwise. Adding beyond a positive
// max leaves the selection unchanged.
func ToggleReference(selected []types.EntityID, id types.EntityID, max int) []types.EntityID {
	result := make([]types.EntityID, 0, len(selected)+1)
	removed := false
	for _, s := range selected {
		if s == id {
			removed = true
			continue
		}
		result = append(result, s)
	}
	if removed || id == "" {
		return result
	}
	if max > 0 && len(result) >= max {
		return result
	}
	return append(result, id)
}
