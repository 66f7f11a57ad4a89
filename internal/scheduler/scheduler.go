package scheduler

import (
	"fmt"
	"time"

	"github.com/specialistvlad/boxwire/internal/eventloop"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/ui"
	"github.com/specialistvlad/boxwire/internal/value"
	"github.com/specialistvlad/boxwire/internal/workqueue"
)

// Handle addresses a box record.
type Handle int32

// NoHandle marks an empty ring link.
const NoHandle Handle = -1

// Target is the box side of a record. *box.Box implements it.
type Target interface {
	Processing() bool
	SetProcessing(on bool)
	SetCancelled(on bool)
}

// Stats are cumulative counters.
type Stats struct {
	Started    int
	Finished   int
	Failed     int
	Cancelled  int
	Yields     int
	Awaits     int
	SlowSlices int
	UIFlushes  int
}

type record struct {
	id     string
	target Target
	alive  bool

	tasks workqueue.Queue[task.Func]
	state task.State
	co    *task.Coroutine

	next, prev Handle

	// gen identifies the current suspension; settlements carrying another
	// value are stale.
	gen       uint64
	resumeVal value.Value
	resumeErr error

	// errs collects task failures until the queue drains.
	errs []error
}

// Scheduler runs box tasks. All methods must be called from the event loop.
type Scheduler struct {
	loop  *eventloop.Loop
	shell ui.Shell
	cfg   Config

	records []*record
	free    []Handle
	current Handle
	gen     uint64

	running   bool
	runPosted bool
	lastFlush time.Time

	refresh deferredSet
	flashes deferredSet

	stats Stats
}

// New creates a scheduler that posts its run loop on loop and reports to
// shell. The shell is expected to ignore boxes and wires that no longer exist.
func New(loop *eventloop.Loop, shell ui.Shell, cfg Config) *Scheduler {
	if shell == nil {
		shell = ui.Nop{}
	}
	return &Scheduler{
		loop:    loop,
		shell:   shell,
		cfg:     cfg.withDefaults(),
		current: NoHandle,
	}
}

// Register creates a record for a box.
func (s *Scheduler) Register(id string, target Target) Handle {
	rec := &record{id: id, target: target, alive: true, next: NoHandle, prev: NoHandle}
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.records[h] = rec
		return h
	}
	s.records = append(s.records, rec)
	return Handle(len(s.records) - 1)
}

// Unregister releases a record. Its queue must be empty; drain it with
// TerminateBox first.
func (s *Scheduler) Unregister(h Handle) {
	rec := s.rec(h)
	invariant(rec.tasks.Empty(), "unregistering box %q with %d pending tasks", rec.id, rec.tasks.Len())
	invariant(rec.next == NoHandle, "unregistering box %q that is still in the ring", rec.id)
	rec.alive = false
	s.refresh.remove(rec.id)
	s.records[h] = nil
	s.free = append(s.free, h)
}

// AddTask appends fn to the box's queue. A box whose queue was empty joins
// the ring and the shell is told it started processing. AddTask does not run
// anything; call Kick.
func (s *Scheduler) AddTask(h Handle, fn task.Func) {
	rec := s.rec(h)
	if rec.tasks.Empty() {
		s.makeActive(h)
		s.shell.StartBoxProcessing(rec.id)
	}
	rec.tasks.Push(fn)
}

// Kick makes sure a run loop is scheduled on the event loop.
func (s *Scheduler) Kick() {
	if s.running || s.runPosted {
		return
	}
	s.runPosted = true
	s.loop.Post(s.run)
}

// State returns the state of the box's head task.
func (s *Scheduler) State(h Handle) task.State { return s.rec(h).state }

// Pending returns the number of queued tasks, including the running one.
func (s *Scheduler) Pending(h Handle) int { return s.rec(h).tasks.Len() }

// InRing reports whether the box is in the active ring.
func (s *Scheduler) InRing(h Handle) bool { return s.rec(h).next != NoHandle }

// Ring returns box ids in dispatch order, starting with the next box to run.
func (s *Scheduler) Ring() []string {
	if s.current == NoHandle {
		return nil
	}
	var out []string
	h := s.current
	for {
		rec := s.records[h]
		out = append(out, rec.id)
		h = rec.next
		if h == s.current {
			return out
		}
	}
}

// Running reports whether a run loop is in progress.
func (s *Scheduler) Running() bool { return s.running }

func (s *Scheduler) Stats() Stats { return s.stats }

func (s *Scheduler) rec(h Handle) *record {
	invariant(h >= 0 && int(h) < len(s.records) && s.records[h] != nil, "unknown handle %d", h)
	return s.records[h]
}

func (s *Scheduler) nextGen() uint64 {
	s.gen++
	return s.gen
}

func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("scheduler: assertion failed: "+format, args...))
	}
}
