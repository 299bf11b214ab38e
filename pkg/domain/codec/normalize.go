package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// scalarString converts a stored scalar into its string form. Objects, lists and booleans
// are not scalars for this purpose.
func scalarString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return formatFloat(v), true
	case float32:
		return formatFloat(float64(v)), true
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	default:
		return "", false
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// truthy interprets the many ways a boolean is stored
func truthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
		return false
	default:
		s, ok := scalarString(raw)
		if !ok {
			return false
		}
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && f != 0
	}
}

// entityID extracts a foreign id from a bare id or an embedded {ID|id} object
func entityID(raw any) (types.EntityID, bool) {
	switch v := raw.(type) {
	case types.EntityID:
		return v, v != ""
	case string:
		s := strings.TrimSpace(v)
		return types.EntityID(s), s != ""
	case bool, nil:
		return "", false
	case map[string]any:
		for _, key := range []string{"ID", "id"} {
			if inner, ok := v[key]; ok {
				if _, nested := inner.(map[string]any); nested {
					return "", false
				}
				return entityID(inner)
			}
		}
		return "", false
	default:
		s, ok := scalarString(raw)
		if !ok {
			return "", false
		}
		if _, err := strconv.ParseUint(s, 10, 64); err == nil {
			return types.EntityID(s), true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 || f != math.Trunc(f) {
			return "", false
		}
		return types.EntityID(formatFloat(f)), true
	}
}

// stringField reads a string-ish member of a stored object
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := scalarString(v); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// asList returns raw as a list when it is one of the list shapes a decoder produces
func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		list := make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list, true
	case []types.EntityID:
		list := make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list, true
	case []int64:
		list := make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list, true
	case []float64:
		list := make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
		return list, true
	default:
		return nil, false
	}
}
