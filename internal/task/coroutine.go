package task

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/specialistvlad/boxwire/internal/value"
)

// Event is what a running coroutine reports back to its driver: either a
// suspension (Done is false, WaitOn is the awaited future or nil) or
// completion with Err.
type Event struct {
	Done   bool
	Err    error
	WaitOn *Future
}

type outcome struct {
	val value.Value
	err error
}

// Coroutine runs a Func on its own goroutine while keeping a single logical
// thread of control: the driver blocks in Wait while the task runs, and the
// task blocks inside Yield while the driver runs.
type Coroutine struct {
	resume    chan outcome
	events    chan Event
	abandoned chan struct{}
	finished  bool
}

// Start launches fn. The caller must follow with Wait to hand control over.
func Start(ctx context.Context, fn Func) *Coroutine {
	co := &Coroutine{
		resume:    make(chan outcome),
		events:    make(chan Event),
		abandoned: make(chan struct{}),
	}
	go co.main(ctx, fn)
	return co
}

func (co *Coroutine) main(ctx context.Context, fn Func) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v\n%s", r, debug.Stack())
			}
		}()
		err = fn(ctx, co.yield)
	}()
	select {
	case co.events <- Event{Done: true, Err: err}:
	case <-co.abandoned:
	}
}

func (co *Coroutine) yield(waitOn *Future) (value.Value, error) {
	select {
	case co.events <- Event{WaitOn: waitOn}:
	case <-co.abandoned:
		return nil, ErrCancelled
	}
	select {
	case o := <-co.resume:
		return o.val, o.err
	case <-co.abandoned:
		return nil, ErrCancelled
	}
}

// Wait blocks until the task suspends or finishes. It returns ctx.Err() if
// ctx is done first, in which case the task is still running.
func (co *Coroutine) Wait(ctx context.Context) (Event, error) {
	select {
	case ev := <-co.events:
		if ev.Done {
			co.finished = true
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Resume hands control back to a suspended task, making its Yield return
// (v, err). The caller must follow with Wait.
func (co *Coroutine) Resume(v value.Value, err error) {
	co.resume <- outcome{val: v, err: err}
}

// Finished reports whether Wait has observed completion.
func (co *Coroutine) Finished() bool { return co.finished }

// Abandon releases a coroutine whose driver will never resume it. Any pending
// or future Yield returns ErrCancelled and the final result is dropped.
func (co *Coroutine) Abandon() {
	select {
	case <-co.abandoned:
	default:
		close(co.abandoned)
	}
}
