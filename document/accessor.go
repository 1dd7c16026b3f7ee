package document

import (
	"fmt"
	"math"
	"strconv"
)

// Get returns data[key] when data is a *Map holding a non-nil value for
// key, and def otherwise. It never panics on a non-map data value.
func Get(data any, key string, def any) any {
	m, ok := data.(*Map)
	if !ok {
		return def
	}
	v, ok := m.Get(key)
	if !ok || v == nil {
		return def
	}
	return v
}

// GetString returns data[key] rendered as a string, or def.
// Numbers and booleans are formatted; maps and lists yield def.
func GetString(data any, key, def string) string {
	s, ok := AsString(Get(data, key, nil))
	if !ok {
		return def
	}
	return s
}

// GetMap returns data[key] if it is a *Map, else nil.
func GetMap(data any, key string) *Map {
	m, _ := Get(data, key, nil).(*Map)
	return m
}

// GetList returns data[key] as a list. A scalar is wrapped in a one-element
// list; a missing key yields nil.
func GetList(data any, key string) []any {
	switch v := Get(data, key, nil).(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// GetBool returns data[key] if it is a bool (or "true"/"false"), else def.
func GetBool(data any, key string, def bool) bool {
	switch v := Get(data, key, nil).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// IsEmpty reports whether v carries no data: nil, "", an empty map or an
// empty list. Zero numbers and false are data.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case *Map:
		return t.Len() == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// AsString renders scalar v as a string.
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// AsFloat converts a numeric scalar to float64.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

// AsInt converts an integral numeric scalar to int64. Floats with a
// fractional part are rejected.
func AsInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || t > math.MaxInt64 || t < math.MinInt64 {
			return 0, false
		}
		return int64(t), true
	default:
		return 0, false
	}
}

// Describe renders v for messages: scalars as-is, containers by kind.
func Describe(v any) string {
	switch t := v.(type) {
	case *Map:
		return fmt.Sprintf("map with %d key(s)", t.Len())
	case []any:
		return fmt.Sprintf("list with %d item(s)", len(t))
	case nil:
		return "null"
	default:
		return fmt.Sprint(t)
	}
}
