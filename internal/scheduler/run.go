package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

// run is the run loop job. Only one run loop exists at a time.
func (s *Scheduler) run(ctx context.Context) {
	s.runPosted = false
	if s.running {
		return
	}
	s.running = true
	s.loopBody(ctx, false)
}

// loopBody dispatches ring boxes until the ring is empty. When the UI has
// waited too long it flushes, re-posts itself and returns; the continuation
// skips the watchdog check for its first turn.
func (s *Scheduler) loopBody(ctx context.Context, resumed bool) {
	logger := ctxlog.FromContext(ctx)
	for s.current != NoHandle {
		if !resumed && s.cfg.Now().Sub(s.lastFlush) > s.cfg.MaxUIDelay {
			s.FlushDeferred()
			s.lastFlush = s.cfg.Now()
			s.loop.Post(func(ctx context.Context) { s.loopBody(ctx, true) })
			return
		}
		resumed = false

		if _, err := s.Step(ctx); err != nil {
			logger.Error("Scheduler run loop stopped.", "error", err)
			s.running = false
			return
		}
	}
	s.FlushDeferred()
	s.lastFlush = s.cfg.Now()
	s.running = false
}

// Step performs one dispatch turn. It reports false when the ring is empty.
// The returned error is non-nil only when ctx ended while a task was still
// executing; that task is left Executing.
func (s *Scheduler) Step(ctx context.Context) (bool, error) {
	if s.current == NoHandle {
		return false, nil
	}
	h := s.current
	rec := s.records[h]
	s.current = rec.next

	start := s.cfg.Now()
	var err error
	switch rec.state {
	case task.NotStarted:
		fn, _ := rec.tasks.Peek()
		rec.state = task.Executing
		invariant(!rec.target.Processing(), "box %q is already processing", rec.id)
		rec.target.SetProcessing(true)
		rec.target.SetCancelled(false)
		s.stats.Started++

		logger := ctxlog.FromContext(ctx).With("box", rec.id)
		rec.co = task.Start(ctxlog.WithLogger(ctx, logger), fn)
		err = s.drive(ctx, h)
	case task.Paused:
		rec.state = task.Executing
		invariant(!rec.target.Processing(), "box %q is already processing", rec.id)
		rec.target.SetProcessing(true)

		v, rerr := rec.resumeVal, rec.resumeErr
		rec.resumeVal, rec.resumeErr = nil, nil
		rec.co.Resume(v, rerr)
		err = s.drive(ctx, h)
	default:
		invariant(false, "unexpected task state %s for box %q", rec.state, rec.id)
	}

	s.reportSlice(ctx, rec.id, s.cfg.Now().Sub(start))
	return true, err
}

// drive waits for the running task of h to suspend or finish.
func (s *Scheduler) drive(ctx context.Context, h Handle) error {
	rec := s.records[h]
	ev, err := rec.co.Wait(ctx)
	if err != nil {
		return err
	}
	if ev.Done {
		s.taskFinished(ctx, h, ev.Err)
		return nil
	}
	s.suspend(h, ev.WaitOn)
	return nil
}

// suspend is the scheduler half of a task's Yield.
func (s *Scheduler) suspend(h Handle, waitOn *task.Future) {
	rec := s.records[h]
	invariant(rec.target.Processing(), "suspending box %q that is not processing", rec.id)
	rec.target.SetProcessing(false)
	rec.gen = s.nextGen()
	s.stats.Yields++

	if waitOn == nil {
		rec.state = task.Paused
		rec.resumeVal, rec.resumeErr = nil, nil
		return
	}

	s.stats.Awaits++
	rec.state = task.Awaiting
	s.makeInactive(h)
	gen := rec.gen
	waitOn.OnSettle(func(v value.Value, err error) {
		s.loop.Post(func(ctx context.Context) { s.settle(ctx, h, gen, v, err) })
	})
}

// settle re-admits an awaiting box once its future settled.
func (s *Scheduler) settle(ctx context.Context, h Handle, gen uint64, v value.Value, err error) {
	if int(h) >= len(s.records) {
		return
	}
	rec := s.records[h]
	if rec == nil || !rec.alive || rec.gen != gen || rec.state != task.Awaiting {
		ctxlog.FromContext(ctx).Debug("Discarding stale settlement.", "handle", h)
		return
	}
	rec.resumeVal, rec.resumeErr = v, err
	rec.state = task.Paused
	s.makeActive(h)
	// The loop may have drained and exited while this box was parked.
	s.run(ctx)
}

func (s *Scheduler) taskFinished(ctx context.Context, h Handle, err error) {
	rec := s.records[h]
	rec.target.SetProcessing(false)
	s.DeferRefresh(rec.id)
	s.stats.Finished++

	switch {
	case err == nil:
	case errors.Is(err, task.ErrCancelled):
		s.stats.Cancelled++
	default:
		s.stats.Failed++
		rec.errs = append(rec.errs, err)
		ctxlog.FromContext(ctx).Debug("Box task failed.", "box", rec.id, "error", err)
	}
	s.popActiveTask(h)
}

// popActiveTask removes the head task and resets suspension bookkeeping. A
// box whose queue drains leaves the ring and is reported finished.
func (s *Scheduler) popActiveTask(h Handle) {
	rec := s.records[h]
	rec.tasks.Pop()
	rec.state = task.NotStarted
	rec.co = nil
	rec.gen = 0
	rec.resumeVal, rec.resumeErr = nil, nil
	rec.target.SetCancelled(false)

	if !rec.tasks.Empty() {
		return
	}
	s.makeInactive(h)
	err := errors.Join(rec.errs...)
	rec.errs = nil
	s.shell.FinishBoxProcessing(rec.id, err)
}

func (s *Scheduler) reportSlice(ctx context.Context, boxID string, d time.Duration) {
	switch {
	case d > s.cfg.LongSlice:
		s.stats.SlowSlices++
		ctxlog.FromContext(ctx).Error("Box ran too long without yielding; it should yield more often.",
			"box", boxID, "duration", d)
	case d > s.cfg.WarnSlice:
		s.stats.SlowSlices++
		ctxlog.FromContext(ctx).Warn("Box ran long without yielding.", "box", boxID, "duration", d)
	}
}
