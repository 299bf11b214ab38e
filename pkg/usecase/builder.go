package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/codec"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// GetCodec returns the codec of a field type from the shared registry
func GetCodec(ft types.FieldType) (codec.Codec, error) {
	return codec.Default().Get(ft)
}

// BuildDefaultEditState derives a complete EditState: every field of schema gets a key, a
// nil raw bag is a new entity and keys unknown to the schema are ignored.
func BuildDefaultEditState(ctx context.Context, schema *config.FieldSchema, raw map[string]any) model.EditState {
	return buildDefaultEditState(ctx, codec.Default(), schema, raw)
}

func buildDefaultEditState(ctx context.Context, registry *codec.Registry, schema *config.FieldSchema, raw map[string]any) model.EditState {
	state := make(model.EditState)
	if schema == nil {
		return state
	}

	for _, fd := range schema.Fields {
		state[fd.Name] = editDefault(ctx, registry, fd, raw[fd.Name])
	}
	return state
}

func editDefault(ctx context.Context, registry *codec.Registry, fd config.FieldDefinition, raw any) (value any) {
	c, err := registry.Get(fd.Type)
	if err != nil {
		logging.From(ctx).Warn("no codec for field, value ignored",
			slog.String(model.FieldNameKey, fd.Name),
			slog.String(model.FieldTypeKey, fd.Type.String()))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Warn("codec panicked while deriving default, using empty value",
				slog.String(model.FieldNameKey, fd.Name),
				slog.String(model.FieldTypeKey, fd.Type.String()),
				slog.Any("panic", r))
			value = c.Empty(fd)
		}
	}()

	value = c.ToEditDefault(raw, fd)
	if meaningful(raw) && reflect.DeepEqual(value, c.Empty(fd)) {
		logging.From(ctx).Warn("stored value could not be normalized, using empty value",
			slog.String(model.FieldNameKey, fd.Name),
			slog.String(model.FieldTypeKey, fd.Type.String()),
			slog.String(model.ValueTypeKey, fmt.Sprintf("%T", raw)))
	}
	return value
}

// meaningful reports whether a stored value carries data whose loss is worth a warning
func meaningful(raw any) bool {
	switch v := raw.(type) {
	case nil, bool:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

// ApplyFieldChange returns a copy of state with one field replaced. The value is normalized
// to the field's edit shape, so the state stays type-consistent. state itself is not modified.
func ApplyFieldChange(ctx context.Context, schema *config.FieldSchema, state model.EditState, name string, value any) (model.EditState, error) {
	return applyFieldChange(ctx, codec.Default(), schema, state, name, value)
}

func applyFieldChange(ctx context.Context, registry *codec.Registry, schema *config.FieldSchema, state model.EditState, name string, value any) (model.EditState, error) {
	fd, ok := schema.Field(name)
	if !ok {
		return nil, goerr.Wrap(model.ErrUnknownField, "field not found in schema",
			goerr.V(model.FieldNameKey, name))
	}

	next := state.Clone()
	next[name] = editDefault(ctx, registry, fd, value)
	return next, nil
}

// SerializeForSubmission converts state into the wire payload. Every schema field is
// present, array-shaped fields are never null and empty numbers are null.
func SerializeForSubmission(ctx context.Context, schema *config.FieldSchema, state model.EditState) map[string]any {
	return serializeForSubmission(ctx, codec.Default(), schema, state)
}

func serializeForSubmission(ctx context.Context, registry *codec.Registry, schema *config.FieldSchema, state model.EditState) map[string]any {
	payload := make(map[string]any)
	if schema == nil {
		return payload
	}

	for _, fd := range schema.Fields {
		payload[fd.Name] = toWire(ctx, registry, fd, state[fd.Name])
	}

	for _, fd := range schema.Fields {
		if fd.IsArrayShaped() && payload[fd.Name] == nil {
			payload[fd.Name] = []any{}
		}
	}

	for _, fd := range schema.Fields {
		if fd.Type != types.FieldTypeNumber {
			continue
		}
		s := numberText(registry, fd, state[fd.Name])
		if _, ok := codec.ParseNumber(s); !ok {
			if s != "" {
				logging.From(ctx).Warn("number field is not numeric, submitting null",
					slog.String(model.FieldNameKey, fd.Name),
					slog.String(model.FieldValueKey, s))
			}
			payload[fd.Name] = nil
		}
	}

	return payload
}

func toWire(ctx context.Context, registry *codec.Registry, fd config.FieldDefinition, value any) (wire any) {
	c, err := registry.Get(fd.Type)
	if err != nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Warn("codec panicked while serializing, using empty value",
				slog.String(model.FieldNameKey, fd.Name),
				slog.String(model.FieldTypeKey, fd.Type.String()),
				slog.Any("panic", r))
			wire = c.ToWire(c.Empty(fd), fd)
		}
	}()

	return c.ToWire(value, fd)
}

func numberText(registry *codec.Registry, fd config.FieldDefinition, value any) string {
	c, err := registry.Get(fd.Type)
	if err != nil {
		return ""
	}
	s, _ := c.ToEditDefault(value, fd).(string)
	return s
}
