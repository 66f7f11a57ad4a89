// Package value defines the data that travels through plugs.
//
// Every value type implements Equal, Clone and Freeze. A type that is missing
// any of them does not satisfy Value and cannot be written to a plug, so the
// contract is checked by the compiler instead of at runtime.
//
// A nil Value means "no value yet" and is distinct from every concrete value.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Value is anything that can be published on an output plug.
type Value interface {
	// Equal reports structural equality. It is used to suppress redundant
	// propagation, so it must not compare identities.
	Equal(other Value) bool
	// Clone returns an independent mutable duplicate.
	Clone() Value
	// Freeze returns a value that can no longer be mutated. Implementations
	// may freeze in place and return the receiver.
	Freeze() Value
}

// Equal compares two possibly-nil values.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Clone copies a possibly-nil value.
func Clone(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Clone()
}

// Freeze freezes a possibly-nil value.
func Freeze(v Value) Value {
	if v == nil {
		return nil
	}
	return v.Freeze()
}

// Publish returns the canonical copy stored on an output plug: a deep copy
// that is frozen, so the writer keeps ownership of what it passed in.
func Publish(v Value) Value {
	return Freeze(Clone(v))
}

// Number is a numeric value. NaN is equal to itself.
type Number float64

func (n Number) Equal(other Value) bool {
	m, ok := other.(Number)
	if !ok {
		return false
	}
	if math.IsNaN(float64(n)) {
		return math.IsNaN(float64(m))
	}
	return n == m
}

func (n Number) Clone() Value  { return n }
func (n Number) Freeze() Value { return n }

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Bool is a boolean value.
type Bool bool

func (b Bool) Equal(other Value) bool {
	c, ok := other.(Bool)
	return ok && b == c
}

func (b Bool) Clone() Value  { return b }
func (b Bool) Freeze() Value { return b }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// String is a text value.
type String string

func (s String) Equal(other Value) bool {
	t, ok := other.(String)
	return ok && s == t
}

func (s String) Clone() Value  { return s }
func (s String) Freeze() Value { return s }

func (s String) String() string { return string(s) }

// Format renders a value for logs and simple displays.
func Format(v Value) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// AsNumber reads a Number, treating "no value" as zero.
func AsNumber(v Value) (Number, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case Number:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
