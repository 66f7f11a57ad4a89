package value

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Cty wraps a cty.Value. cty values are immutable by construction, so Clone
// and Freeze are the identity.
type Cty struct {
	v cty.Value
}

// NewCty wraps v.
func NewCty(v cty.Value) Cty { return Cty{v: v} }

// Cty returns the wrapped value.
func (c Cty) Cty() cty.Value { return c.v }

func (c Cty) Equal(other Value) bool {
	o, ok := other.(Cty)
	return ok && c.v.RawEquals(o.v)
}

func (c Cty) Clone() Value  { return c }
func (c Cty) Freeze() Value { return c }

func (c Cty) String() string { return c.v.GoString() }

// FromCty converts a cty value into the plug value model. Primitive and
// collection types map onto Number, Bool, String, List and Map; anything else
// (capsules, for instance) stays wrapped in Cty.
func FromCty(v cty.Value) (Value, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("cannot convert an unknown value")
	}

	ty := v.Type()
	switch {
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return Number(f), nil
	case ty == cty.String:
		return String(v.AsString()), nil
	case ty == cty.Bool:
		return Bool(v.True()), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var items []Value
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := FromCty(ev)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return NewList(items...), nil
	case ty.IsMapType() || ty.IsObjectType():
		out := NewMap()
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			item, err := FromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
			}
			out = out.With(k.AsString(), item)
		}
		return out, nil
	default:
		return NewCty(v), nil
	}
}

// ToCty converts a plug value into cty, the representation used when
// values are persisted or evaluated.
func ToCty(v Value) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case Number:
		f := float64(t)
		if math.IsNaN(f) {
			return cty.NilVal, fmt.Errorf("NaN has no cty representation")
		}
		return cty.NumberFloatVal(f), nil
	case Bool:
		return cty.BoolVal(bool(t)), nil
	case String:
		return cty.StringVal(string(t)), nil
	case Cty:
		return t.v, nil
	case List:
		if t.Len() == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, t.Len())
		for i, item := range t.All() {
			ev, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("index %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return cty.TupleVal(elems), nil
	case Map:
		if t.Len() == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, t.Len())
		for _, k := range t.keys {
			ev, err := ToCty(t.vals[k])
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("value of type %T has no cty representation", v)
	}
}

// FromGo converts a statically typed Go value (numbers, strings, slices,
// maps and structs with cty tags) into a plug value.
func FromGo(v any) (Value, error) {
	if v == nil {
		return nil, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return nil, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	cv, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return nil, err
	}
	return FromCty(cv)
}

// ToGo decodes a plug value into the Go value pointed to by target.
func ToGo(v Value, target any) error {
	cv, err := ToCty(v)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(cv, target)
}

// FromNative converts loosely typed data, as produced by encoding/json or a
// socket.io payload, into a plug value.
func FromNative(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, it := range t {
			item, err := FromNative(it)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, item)
		}
		return NewList(items...), nil
	case map[string]any:
		out := NewMap()
		for k, it := range t {
			item, err := FromNative(it)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out = out.With(k, item)
		}
		return out, nil
	default:
		return FromGo(v)
	}
}

// ToNative is the inverse of FromNative, used when values leave the process.
func ToNative(v Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Number:
		return float64(t)
	case Bool:
		return bool(t)
	case String:
		return string(t)
	case List:
		out := make([]any, 0, t.Len())
		for _, it := range t.All() {
			out = append(out, ToNative(it))
		}
		return out
	case Map:
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = ToNative(t.vals[k])
		}
		return out
	default:
		return Format(v)
	}
}
