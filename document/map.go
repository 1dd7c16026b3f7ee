package document

import (
	"bytes"
	"encoding/json"
)

// Map is a string-keyed map that remembers insertion order.
// RAML attribute order matters (URI parameter declaration order, resource
// order, response order in the source), so every mapping node of a loaded
// document is a *Map rather than a Go map.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a Map from alternating key/value arguments.
// It panics if a key is not a string; it is meant for literals in tests and
// defaults.
func MapOf(kv ...any) *Map {
	m := NewMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

// Set stores v under key. A new key is appended to the order; an existing
// key keeps its position.
func (m *Map) Set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (m *Map) Range(fn func(key string, v any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Filter returns a shallow copy holding only the entries for which keep
// returns true.
func (m *Map) Filter(keep func(key string, v any) bool) *Map {
	out := NewMap()
	m.Range(func(k string, v any) bool {
		if keep(k, v) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of m. Nested maps and lists are copied; scalar
// leaves are shared.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{keys: make([]string, len(m.keys)), values: make(map[string]any, len(m.values))}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies maps and lists inside v.
func CloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// ToNative converts m into plain map[string]any / []any values, dropping
// order. It is used where order-insensitive consumers (instance validation,
// JSON schema payloads) expect Go maps.
func (m *Map) ToNative() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = ToNative(m.values[k])
	}
	return out
}

// ToNative converts any *Map inside v into map[string]any.
func ToNative(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.ToNative()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToNative(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON emits the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
