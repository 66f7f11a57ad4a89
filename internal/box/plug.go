package box

import (
	"context"
	"fmt"

	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

// InputPlug holds the last value delivered to it. A nil value means nothing
// has arrived yet.
type InputPlug struct {
	name    string
	box     *Box
	handler task.Func
	val     value.Value
}

func (p *InputPlug) Name() string { return p.name }

// Read returns the stored value. It is frozen and must not be mutated.
func (p *InputPlug) Read() value.Value { return p.val }

// Copy returns a mutable duplicate of the stored value.
func (p *InputPlug) Copy() value.Value { return value.Clone(p.val) }

// Receive stores v and runs the update handler. It is only called by the
// program from inside a task of the owning box; v must already be frozen.
func (p *InputPlug) Receive(ctx context.Context, y task.Yield, v value.Value) error {
	p.val = v
	if p.handler == nil {
		return nil
	}
	return p.handler(ctx, y)
}

// OutputPlug holds the last value published on it.
type OutputPlug struct {
	name string
	box  *Box
	val  value.Value
}

func (p *OutputPlug) Name() string { return p.name }

func (p *OutputPlug) Read() value.Value { return p.val }

// Write publishes v. Writing is only legal while the box is processing and
// fails with task.ErrCancelled once the current task has been cancelled.
// Writing a value equal to the current one does nothing.
func (p *OutputPlug) Write(v value.Value) error {
	if !p.box.Processing() {
		return fmt.Errorf("write to %s.%s: %w", p.box.id, p.name, ErrNotProcessing)
	}
	if p.box.Cancelled() {
		return fmt.Errorf("write to %s.%s: %w", p.box.id, p.name, task.ErrCancelled)
	}
	if value.Equal(p.val, v) {
		return nil
	}
	p.val = value.Publish(v)
	p.box.host.SchedulePlugUpdatesFrom(p.box.id, p.name, p.val)
	return nil
}
