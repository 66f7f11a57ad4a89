// Package box implements boxes and their plugs.
//
// A Box is built standalone: plugs and event handlers are declared first,
// then the box is attached to exactly one host (a program) under an id.
// Declaration after attachment fails with ErrAttached. Processing scheduled
// before attachment is held back and submitted on Attach.
//
// Box internals are touched only from the host's event loop while the box is
// processing, except for the processing and cancelled flags, which are atomic
// so read-only observers (status endpoints) can inspect them.
package box

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

var (
	ErrAttached      = errors.New("box is already attached to a program")
	ErrDuplicatePlug = errors.New("duplicate plug")
	ErrNotProcessing = errors.New("box is not processing")
	ErrUnknownEvent  = errors.New("unknown event")
)

// Host is the program a box is attached to.
type Host interface {
	ScheduleProcessing(boxID string, fn task.Func)
	SchedulePlugUpdatesFrom(boxID, plug string, v value.Value)
}

// EventHandler reacts to a named event sent to the box by the editor.
type EventHandler func(ctx context.Context, y task.Yield, payload value.Value) error

// Box is a processing unit with named input and output plugs.
type Box struct {
	// State is the box's own data. It may only be touched while the box is
	// processing.
	State any

	typeID      string
	inputs      map[string]*InputPlug
	inputOrder  []string
	outputs     map[string]*OutputPlug
	outputOrder []string
	events      map[string]EventHandler

	host     Host
	id       string
	deferred []task.Func

	processing atomic.Bool
	cancelled  atomic.Bool
}

// New creates a detached box of the given type.
func New(typeID string) *Box {
	return &Box{
		typeID:  typeID,
		inputs:  map[string]*InputPlug{},
		outputs: map[string]*OutputPlug{},
		events:  map[string]EventHandler{},
	}
}

// NewInput declares an input plug. handler, if not nil, runs every time the
// plug receives a value.
func (b *Box) NewInput(name string, handler task.Func) (*InputPlug, error) {
	if b.Attached() {
		return nil, fmt.Errorf("cannot add input plug %q: %w", name, ErrAttached)
	}
	if _, ok := b.inputs[name]; ok {
		return nil, fmt.Errorf("input plug %q: %w", name, ErrDuplicatePlug)
	}
	p := &InputPlug{name: name, box: b, handler: handler}
	b.inputs[name] = p
	b.inputOrder = append(b.inputOrder, name)
	return p, nil
}

// NewOutput declares an output plug.
func (b *Box) NewOutput(name string) (*OutputPlug, error) {
	if b.Attached() {
		return nil, fmt.Errorf("cannot add output plug %q: %w", name, ErrAttached)
	}
	if _, ok := b.outputs[name]; ok {
		return nil, fmt.Errorf("output plug %q: %w", name, ErrDuplicatePlug)
	}
	p := &OutputPlug{name: name, box: b}
	b.outputs[name] = p
	b.outputOrder = append(b.outputOrder, name)
	return p, nil
}

// MustInput is like NewInput but panics on error. It is meant for box
// constructors, where a bad declaration is a programming error.
func (b *Box) MustInput(name string, handler task.Func) *InputPlug {
	p, err := b.NewInput(name, handler)
	if err != nil {
		panic(err)
	}
	return p
}

// MustOutput is like NewOutput but panics on error.
func (b *Box) MustOutput(name string) *OutputPlug {
	p, err := b.NewOutput(name)
	if err != nil {
		panic(err)
	}
	return p
}

// OnEvent registers the handler for a named editor event.
func (b *Box) OnEvent(name string, h EventHandler) error {
	if b.Attached() {
		return fmt.Errorf("cannot add event %q: %w", name, ErrAttached)
	}
	b.events[name] = h
	return nil
}

// Input returns the named input plug or nil.
func (b *Box) Input(name string) *InputPlug { return b.inputs[name] }

// Output returns the named output plug or nil.
func (b *Box) Output(name string) *OutputPlug { return b.outputs[name] }

// Inputs returns input plug names in declaration order.
func (b *Box) Inputs() []string { return append([]string(nil), b.inputOrder...) }

// Outputs returns output plug names in declaration order.
func (b *Box) Outputs() []string { return append([]string(nil), b.outputOrder...) }

func (b *Box) TypeID() string { return b.typeID }

// ID is empty until the box is attached.
func (b *Box) ID() string { return b.id }

func (b *Box) Attached() bool { return b.host != nil }

// Attach binds the box to host under id and submits deferred processing.
func (b *Box) Attach(host Host, id string) error {
	if b.Attached() {
		return fmt.Errorf("box %q: %w", b.id, ErrAttached)
	}
	b.host = host
	b.id = id
	deferred := b.deferred
	b.deferred = nil
	for _, fn := range deferred {
		host.ScheduleProcessing(id, fn)
	}
	return nil
}

// ScheduleProcessing queues fn as a task of this box. Before the box is
// attached the task is held until Attach.
func (b *Box) ScheduleProcessing(fn task.Func) {
	if !b.Attached() {
		b.deferred = append(b.deferred, fn)
		return
	}
	b.host.ScheduleProcessing(b.id, fn)
}

// TriggerEvent schedules the handler registered for name.
func (b *Box) TriggerEvent(name string, payload value.Value) error {
	h, ok := b.events[name]
	if !ok {
		return fmt.Errorf("box %q has no event %q: %w", b.id, name, ErrUnknownEvent)
	}
	payload = value.Publish(payload)
	b.ScheduleProcessing(func(ctx context.Context, y task.Yield) error {
		return h(ctx, y, payload)
	})
	return nil
}

// Events returns the names of registered events.
func (b *Box) Events() []string {
	out := make([]string, 0, len(b.events))
	for name := range b.events {
		out = append(out, name)
	}
	return out
}

func (b *Box) Processing() bool { return b.processing.Load() }

// SetProcessing is called by the scheduler around every task slice.
func (b *Box) SetProcessing(on bool) { b.processing.Store(on) }

func (b *Box) Cancelled() bool { return b.cancelled.Load() }

// SetCancelled marks the current task as cancelled; output writes fail until
// the flag is cleared when the next task starts.
func (b *Box) SetCancelled(on bool) { b.cancelled.Store(on) }

// View is a snapshot of the box's plug values, used for rendering.
func (b *Box) View() value.Map {
	in := value.NewMap()
	for _, name := range b.inputOrder {
		in = in.With(name, b.inputs[name].val)
	}
	out := value.NewMap()
	for _, name := range b.outputOrder {
		out = out.With(name, b.outputs[name].val)
	}
	return value.NewMap().With("inputs", in).With("outputs", out)
}
