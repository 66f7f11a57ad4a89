// Package arithmetic provides boxes that combine two numbers.
package arithmetic

import (
	"context"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

const (
	AddType = "arithmetic/add"
	MulType = "arithmetic/mul"
)

// Module registers the arithmetic boxes.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterBox(AddType, registry.Metadata{Description: "Publishes a + b."}, NewAdd)
	r.RegisterBox(MulType, registry.Metadata{Description: "Publishes a * b."}, NewMul)
}

// NewAdd builds an adder. Inputs that have not received a value count as 0.
func NewAdd() *box.Box {
	return newBinary(AddType, func(a, b value.Number) value.Number { return a + b })
}

// NewMul builds a multiplier. Inputs that have not received a value count as 0.
func NewMul() *box.Box {
	return newBinary(MulType, func(a, b value.Number) value.Number { return a * b })
}

func newBinary(typeID string, op func(a, b value.Number) value.Number) *box.Box {
	b := box.New(typeID)
	var a, c *box.InputPlug
	result := b.MustOutput("result")

	recompute := func(context.Context, task.Yield) error {
		x, err := value.AsNumber(a.Read())
		if err != nil {
			return err
		}
		y, err := value.AsNumber(c.Read())
		if err != nil {
			return err
		}
		return result.Write(op(x, y))
	}
	a = b.MustInput("a", recompute)
	c = b.MustInput("b", recompute)
	return b
}
