package meta

import (
	"fmt"
	"sort"
)

// Metadata is an insertion-ordered mapping from key to Value.
// The zero value is an empty, usable mapping.
type Metadata struct {
	keys []string
	vals map[string]Value
}

// New returns an empty Metadata.
func New() *Metadata {
	return &Metadata{vals: make(map[string]Value)}
}

// FromMap converts a Go map. Keys are inserted in sorted order so the
// encoded form is deterministic.
func FromMap(m map[string]any) (*Metadata, error) {
	md := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := ValueOf(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		md.Set(k, v)
	}
	return md, nil
}

// Set stores v under key. Replacing a key keeps its original position.
func (m *Metadata) Set(key string, v Value) {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries. A nil Metadata is empty.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Map returns the entries as plain Go values.
func (m *Metadata) Map() map[string]any {
	out := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		out[k] = m.vals[k].Interface()
	}
	return out
}

// Equal reports whether m and o hold the same entries, ignoring order.
// A nil Metadata equals an empty one.
func (m *Metadata) Equal(o *Metadata) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.Keys() {
		ov, ok := o.Get(k)
		if !ok || !m.vals[k].Equal(ov) {
			return false
		}
	}
	return true
}
