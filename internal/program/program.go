// Package program is the orchestrator: it owns a program's boxes and wires,
// feeds box work to the scheduler and turns output writes into input updates
// downstream.
//
// Every method must be called from the event loop the program was built on.
// Box tasks run on that loop too, so box logic may call back into the program
// (to schedule work, for instance), with one exception: a task must not
// delete its own box or terminate the program, since both wait for the
// box's tasks to finish.
package program

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/eventloop"
	"github.com/specialistvlad/boxwire/internal/scheduler"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/topologystore"
	"github.com/specialistvlad/boxwire/internal/ui"
	"github.com/specialistvlad/boxwire/internal/value"
)

var (
	ErrNotFound  = topologystore.ErrNotFound
	ErrDuplicate = topologystore.ErrDuplicate
)

// Program is a graph of boxes and wires bound to a scheduler.
type Program struct {
	ctx     context.Context
	loop    *eventloop.Loop
	shell   ui.Shell
	sched   *scheduler.Scheduler
	topo    topologystore.Store
	handles map[string]scheduler.Handle
}

// New creates an empty program. ctx carries the logger used for diagnostics
// that are not tied to a caller.
func New(ctx context.Context, loop *eventloop.Loop, shell ui.Shell, topo topologystore.Store, cfg scheduler.Config) *Program {
	if shell == nil {
		shell = ui.Nop{}
	}
	p := &Program{
		ctx:     ctxlog.Component(ctx, "program"),
		loop:    loop,
		shell:   shell,
		topo:    topo,
		handles: map[string]scheduler.Handle{},
	}
	p.sched = scheduler.New(loop, liveShell{p}, cfg)
	return p
}

// Scheduler exposes the program's scheduler for stepping and inspection.
func (p *Program) Scheduler() *scheduler.Scheduler { return p.sched }

// AddBox attaches b under id and places it at (x, y). An empty id is
// generated from the box type. It returns the id used.
func (p *Program) AddBox(ctx context.Context, b *box.Box, id string, x, y float64) (string, error) {
	if b.Attached() {
		return "", fmt.Errorf("add box: %w", box.ErrAttached)
	}
	if id == "" {
		id = p.unusedBoxID(idPrefix(b.TypeID()))
	}
	if _, exists := p.topo.GetBox(ctx, id); exists {
		return "", fmt.Errorf("add box %q: %w", id, ErrDuplicate)
	}
	if err := p.topo.AddBox(ctx, topologystore.Box{ID: id, X: x, Y: y, Box: b}); err != nil {
		return "", fmt.Errorf("add box %q: %w", id, err)
	}
	p.handles[id] = p.sched.Register(id, b)
	if err := b.Attach(p, id); err != nil {
		return "", fmt.Errorf("add box %q: %w", id, err)
	}
	ctxlog.FromContext(ctx).Debug("Box added.", "box", id, "type", b.TypeID())

	p.shell.RefreshProgramStructure()
	p.loop.PostPrioritized(func(context.Context) { liveShell{p}.RefreshBox(id) })
	return id, nil
}

// DeleteBox cancels the box's pending tasks, deletes every wire touching it
// and removes it.
func (p *Program) DeleteBox(ctx context.Context, id string) error {
	if _, ok := p.topo.GetBox(ctx, id); !ok {
		return fmt.Errorf("delete box %q: %w", id, ErrNotFound)
	}
	h := p.handles[id]
	if err := p.sched.TerminateBox(ctx, h); err != nil {
		ctxlog.FromContext(ctx).Warn("Box tasks did not stop cleanly.", "box", id, "error", err)
	}

	wires, err := p.topo.WiresOfBox(ctx, id)
	if err != nil {
		return fmt.Errorf("delete box %q: %w", id, err)
	}
	for _, wid := range wires {
		if _, err := p.topo.RemoveWire(ctx, wid); err != nil {
			return fmt.Errorf("delete box %q: %w", id, err)
		}
	}
	if err := p.topo.RemoveBox(ctx, id); err != nil {
		return fmt.Errorf("delete box %q: %w", id, err)
	}
	p.sched.Unregister(h)
	delete(p.handles, id)
	ctxlog.FromContext(ctx).Debug("Box deleted.", "box", id, "wires", len(wires))

	p.shell.RefreshProgramStructure()
	return nil
}

// MoveBox changes a box's canvas position.
func (p *Program) MoveBox(ctx context.Context, id string, x, y float64) error {
	if err := p.topo.MoveBox(ctx, id, x, y); err != nil {
		return fmt.Errorf("move box: %w", err)
	}
	p.shell.RefreshProgramStructure()
	return nil
}

// AddWire connects srcBox.srcPlug (an output) to destBox.destPlug (an
// input). An empty id is generated. If the source already holds a value it
// is delivered to the destination right away.
func (p *Program) AddWire(ctx context.Context, srcBox, srcPlug, destBox, destPlug, id string) (string, error) {
	src, ok := p.topo.GetBox(ctx, srcBox)
	if !ok {
		return "", fmt.Errorf("add wire: source box %q: %w", srcBox, ErrNotFound)
	}
	out := src.Box.Output(srcPlug)
	if out == nil {
		return "", fmt.Errorf("add wire: source box %q has no output plug %q: %w", srcBox, srcPlug, ErrNotFound)
	}
	dest, ok := p.topo.GetBox(ctx, destBox)
	if !ok {
		return "", fmt.Errorf("add wire: destination box %q: %w", destBox, ErrNotFound)
	}
	if dest.Box.Input(destPlug) == nil {
		return "", fmt.Errorf("add wire: destination box %q has no input plug %q: %w", destBox, destPlug, ErrNotFound)
	}

	if id == "" {
		id = p.unusedWireID()
	}
	w := topologystore.Wire{ID: id, SrcBox: srcBox, SrcPlug: srcPlug, DestBox: destBox, DestPlug: destPlug}
	if err := p.topo.AddWire(ctx, w); err != nil {
		return "", fmt.Errorf("add wire %q: %w", id, err)
	}
	p.shell.RefreshProgramStructure()

	if v := out.Read(); v != nil {
		if err := p.SchedulePlugUpdate(destBox, destPlug, v); err != nil {
			return id, err
		}
		p.sched.DeferWireFlash(id)
	}
	return id, nil
}

// DeleteWire removes a wire.
func (p *Program) DeleteWire(ctx context.Context, id string) error {
	if _, err := p.topo.RemoveWire(ctx, id); err != nil {
		return fmt.Errorf("delete wire: %w", err)
	}
	p.shell.RefreshProgramStructure()
	return nil
}

// ScheduleProcessing queues fn as a task of the box. It implements box.Host.
func (p *Program) ScheduleProcessing(boxID string, fn task.Func) {
	h, ok := p.handles[boxID]
	if !ok {
		ctxlog.FromContext(p.ctx).Error("Dropping work for unknown box.", "box", boxID)
		return
	}
	p.sched.AddTask(h, fn)
	p.sched.Kick()
}

// SchedulePlugUpdate queues a task that delivers v to the named input plug.
// This is the only way input plugs change.
func (p *Program) SchedulePlugUpdate(boxID, plugName string, v value.Value) error {
	b, ok := p.topo.GetBox(p.ctx, boxID)
	if !ok {
		return fmt.Errorf("plug update: box %q: %w", boxID, ErrNotFound)
	}
	in := b.Box.Input(plugName)
	if in == nil {
		return fmt.Errorf("plug update: box %q has no input plug %q: %w", boxID, plugName, ErrNotFound)
	}
	v = value.Publish(v)
	p.ScheduleProcessing(boxID, func(ctx context.Context, y task.Yield) error {
		return in.Receive(ctx, y, v)
	})
	return nil
}

// SchedulePlugUpdatesFrom delivers v along every wire leaving the output
// plug and flashes those wires. It implements box.Host.
func (p *Program) SchedulePlugUpdatesFrom(boxID, plugName string, v value.Value) {
	key := topologystore.PlugKey{Box: boxID, Dir: topologystore.Output, Plug: plugName}
	wires, err := p.topo.WiresAt(p.ctx, key)
	if err != nil {
		ctxlog.FromContext(p.ctx).Error("Cannot propagate from unknown plug.", "plug", key.String(), "error", err)
		return
	}
	for _, wid := range wires {
		w, ok := p.topo.GetWire(p.ctx, wid)
		if !ok {
			continue
		}
		if err := p.SchedulePlugUpdate(w.DestBox, w.DestPlug, v); err != nil {
			ctxlog.FromContext(p.ctx).Error("Propagation failed.", "wire", wid, "error", err)
			continue
		}
		p.sched.DeferWireFlash(wid)
	}
}

// TriggerEvent sends a named editor event to a box.
func (p *Program) TriggerEvent(boxID, name string, payload value.Value) error {
	b, ok := p.topo.GetBox(p.ctx, boxID)
	if !ok {
		return fmt.Errorf("event %q: box %q: %w", name, boxID, ErrNotFound)
	}
	return b.Box.TriggerEvent(name, payload)
}

// TerminateAll cancels all pending work of every box.
func (p *Program) TerminateAll(ctx context.Context) error {
	return p.sched.TerminateAll(ctx)
}

// Box returns the box with the given id.
func (p *Program) Box(id string) (*box.Box, error) {
	b, ok := p.topo.GetBox(p.ctx, id)
	if !ok {
		return nil, fmt.Errorf("box %q: %w", id, ErrNotFound)
	}
	return b.Box, nil
}

// Placement returns the box's record, including its position.
func (p *Program) Placement(id string) (topologystore.Box, error) {
	b, ok := p.topo.GetBox(p.ctx, id)
	if !ok {
		return topologystore.Box{}, fmt.Errorf("box %q: %w", id, ErrNotFound)
	}
	return b, nil
}

// Boxes returns every box in insertion order.
func (p *Program) Boxes() []topologystore.Box { return p.topo.AllBoxes(p.ctx) }

// Wire returns the wire with the given id.
func (p *Program) Wire(id string) (topologystore.Wire, error) {
	w, ok := p.topo.GetWire(p.ctx, id)
	if !ok {
		return topologystore.Wire{}, fmt.Errorf("wire %q: %w", id, ErrNotFound)
	}
	return w, nil
}

// Wires returns every wire in insertion order.
func (p *Program) Wires() []topologystore.Wire { return p.topo.AllWires(p.ctx) }

// State returns the scheduler state of the box's head task.
func (p *Program) State(id string) (task.State, error) {
	h, ok := p.handles[id]
	if !ok {
		return 0, fmt.Errorf("box %q: %w", id, ErrNotFound)
	}
	return p.sched.State(h), nil
}

// Pending returns the number of queued tasks of the box.
func (p *Program) Pending(id string) (int, error) {
	h, ok := p.handles[id]
	if !ok {
		return 0, fmt.Errorf("box %q: %w", id, ErrNotFound)
	}
	return p.sched.Pending(h), nil
}

// View renders the box's plug values.
func (p *Program) View(id string) (value.Value, bool) {
	b, ok := p.topo.GetBox(p.ctx, id)
	if !ok {
		return nil, false
	}
	return b.Box.View(), true
}

func (p *Program) unusedBoxID(prefix string) string {
	return unusedKey(prefix, func(k string) bool {
		_, taken := p.topo.GetBox(p.ctx, k)
		return taken
	})
}

func (p *Program) unusedWireID() string {
	return unusedKey("wire", func(k string) bool {
		_, taken := p.topo.GetWire(p.ctx, k)
		return taken
	})
}

func unusedKey(prefix string, taken func(string) bool) string {
	for i := 0; ; i++ {
		k := fmt.Sprintf("%s_%d", prefix, i)
		if !taken(k) {
			return k
		}
	}
}

// idPrefix turns a type id such as "arithmetic/add" into "add".
func idPrefix(typeID string) string {
	base := path.Base(typeID)
	if base == "" || base == "." || base == "/" {
		return "box"
	}
	return base
}

// liveShell drops refreshes and flashes for boxes and wires that were deleted
// after being queued.
type liveShell struct{ p *Program }

func (l liveShell) StartBoxProcessing(id string) { l.p.shell.StartBoxProcessing(id) }

func (l liveShell) FinishBoxProcessing(id string, err error) {
	l.p.shell.FinishBoxProcessing(id, err)
}

func (l liveShell) RefreshBox(id string) {
	if _, ok := l.p.topo.GetBox(l.p.ctx, id); ok {
		l.p.shell.RefreshBox(id)
	}
}

func (l liveShell) RefreshProgramStructure() { l.p.shell.RefreshProgramStructure() }

func (l liveShell) FlashWireActivity(id string) {
	if _, ok := l.p.topo.GetWire(l.p.ctx, id); ok {
		l.p.shell.FlashWireActivity(id)
	}
}

// IsNotFound reports whether err is a lookup failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
