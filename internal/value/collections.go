package value

import (
	"iter"
	"slices"
	"strings"
)

// List is an immutable sequence. Every "mutation" returns a new List and
// leaves the receiver untouched, so a published List can be shared freely.
type List struct {
	items []Value
}

// NewList builds a List holding frozen copies of items.
func NewList(items ...Value) List {
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = Publish(it)
	}
	return List{items: out}
}

func (l List) Len() int { return len(l.items) }

// At returns the i-th element. It panics when i is out of range.
func (l List) At(i int) Value { return l.items[i] }

func (l List) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, it := range l.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Append returns a new List with v added at the end.
func (l List) Append(v Value) List {
	out := make([]Value, len(l.items), len(l.items)+1)
	copy(out, l.items)
	return List{items: append(out, Publish(v))}
}

// Set returns a new List with the i-th element replaced.
func (l List) Set(i int, v Value) List {
	out := slices.Clone(l.items)
	out[i] = Publish(v)
	return List{items: out}
}

func (l List) Equal(other Value) bool {
	o, ok := other.(List)
	if !ok || len(o.items) != len(l.items) {
		return false
	}
	for i := range l.items {
		if !Equal(l.items[i], o.items[i]) {
			return false
		}
	}
	return true
}

// Clone is the identity: elements are frozen on the way in.
func (l List) Clone() Value  { return l }
func (l List) Freeze() Value { return l }

func (l List) String() string {
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = Format(it)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is an immutable string-keyed map that remembers insertion order.
// Equality ignores order.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap builds an empty Map.
func NewMap() Map {
	return Map{vals: map[string]Value{}}
}

func (m Map) Len() int { return len(m.keys) }

func (m Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string { return slices.Clone(m.keys) }

// With returns a new Map where key maps to v.
func (m Map) With(key string, v Value) Map {
	vals := make(map[string]Value, len(m.vals)+1)
	for k, existing := range m.vals {
		vals[k] = existing
	}
	keys := m.keys
	if _, ok := m.vals[key]; !ok {
		keys = append(slices.Clip(slices.Clone(m.keys)), key)
	}
	vals[key] = Publish(v)
	return Map{keys: keys, vals: vals}
}

// Without returns a new Map lacking key.
func (m Map) Without(key string) Map {
	if _, ok := m.vals[key]; !ok {
		return m
	}
	out := NewMap()
	for _, k := range m.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.vals[k] = m.vals[k]
	}
	return out
}

func (m Map) Equal(other Value) bool {
	o, ok := other.(Map)
	if !ok || len(o.keys) != len(m.keys) {
		return false
	}
	for k, v := range m.vals {
		ov, ok := o.vals[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

func (m Map) Clone() Value  { return m }
func (m Map) Freeze() Value { return m }

func (m Map) String() string {
	parts := make([]string, len(m.keys))
	for i, k := range m.keys {
		parts[i] = k + " = " + Format(m.vals[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
