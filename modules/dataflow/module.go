// Package dataflow provides boxes that control when values move on.
package dataflow

import (
	"context"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

const (
	HoldType = "data_flow/hold"

	// PushEvent releases the held value.
	PushEvent = "push"
)

// Module registers the data flow boxes.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterBox(HoldType, registry.Metadata{Description: "Keeps its input until pushed."}, NewHold)
}

// NewHold builds a box that stores whatever reaches "held" and only
// publishes it on "value" when the push event fires.
func NewHold() *box.Box {
	b := box.New(HoldType)
	held := b.MustInput("held", nil)
	out := b.MustOutput("value")
	if err := b.OnEvent(PushEvent, func(context.Context, task.Yield, value.Value) error {
		return out.Write(held.Read())
	}); err != nil {
		panic(err)
	}
	return b
}
