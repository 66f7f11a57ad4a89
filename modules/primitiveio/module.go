// Package primitiveio provides boxes that let the user enter and display
// single values.
package primitiveio

import (
	"context"
	"fmt"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

const (
	SpinnerType  = "primitive_io/spinner"
	ToStringType = "primitive_io/to_string"

	// SetEvent carries the number typed into a spinner.
	SetEvent = "set"
)

// Module registers the primitive input/output boxes.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterBox(SpinnerType, registry.Metadata{Description: "A number entered by the user."}, NewSpinner)
	r.RegisterBox(ToStringType, registry.Metadata{Description: "Renders its input as text."}, NewToString)
}

// NewSpinner builds a spinner. It publishes 0 once attached, then whatever
// the user enters through the "set" event.
func NewSpinner() *box.Box {
	b := box.New(SpinnerType)
	out := b.MustOutput("value")

	b.ScheduleProcessing(func(context.Context, task.Yield) error {
		return out.Write(value.Number(0))
	})
	if err := b.OnEvent(SetEvent, func(_ context.Context, _ task.Yield, v value.Value) error {
		n, ok := v.(value.Number)
		if !ok {
			return fmt.Errorf("spinner expects a number, got %s", value.Format(v))
		}
		b.State = n
		return out.Write(n)
	}); err != nil {
		panic(err)
	}
	b.State = value.Number(0)
	return b
}

// NewToString builds a box publishing the text form of its input.
func NewToString() *box.Box {
	b := box.New(ToStringType)
	var in *box.InputPlug
	out := b.MustOutput("string")
	in = b.MustInput("value", func(context.Context, task.Yield) error {
		return out.Write(value.String(value.Format(in.Read())))
	})
	return b
}
