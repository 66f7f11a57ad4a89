// Package debug provides boxes for exercising the scheduler: a CPU-bound box
// that yields periodically and a box that waits on a named promise.
package debug

import (
	"github.com/specialistvlad/boxwire/internal/registry"
)

const (
	SlowType  = "debug/slow"
	AwaitType = "debug/await"

	// RunEvent restarts the box's work with its current inputs.
	RunEvent = "run"
)

// Module registers the debug boxes.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterBox(SlowType, registry.Metadata{Description: "Iterates a slow recurrence, yielding as it goes."}, NewSlow)
	r.RegisterBox(AwaitType, registry.Metadata{Description: "Waits for a named promise and publishes its value."}, NewAwait)
}
