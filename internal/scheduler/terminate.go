package scheduler

import (
	"context"
	"errors"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/task"
)

// TerminateAll cancels every pending task of every registered box, including
// boxes parked outside the ring on an await. It returns once all queues are
// empty. The error joins any waits cut short by ctx.
func (s *Scheduler) TerminateAll(ctx context.Context) error {
	var errs []error
	for h, rec := range s.records {
		if rec == nil || rec.tasks.Empty() {
			continue
		}
		if err := s.drain(ctx, Handle(h)); err != nil {
			errs = append(errs, err)
		}
	}
	s.FlushDeferred()
	return errors.Join(errs...)
}

// TerminateBox cancels every pending task of one box.
func (s *Scheduler) TerminateBox(ctx context.Context, h Handle) error {
	return s.drain(ctx, h)
}

func (s *Scheduler) drain(ctx context.Context, h Handle) error {
	logger := ctxlog.FromContext(ctx)
	rec := s.rec(h)
	var errs []error

	for !rec.tasks.Empty() {
		switch rec.state {
		case task.NotStarted:
			s.stats.Cancelled++
			s.popActiveTask(h)
			continue
		case task.Executing:
			logger.Error("Task is executing outside of its yield; abandoning it.", "box", rec.id)
			s.abandon(h)
			continue
		case task.Awaiting:
			// Invalidate the pending settlement and put the box back in the
			// ring so the Paused path below can resume it.
			rec.gen = 0
			rec.state = task.Paused
			s.makeActive(h)
		}

		rec.state = task.Executing
		rec.target.SetProcessing(true)
		rec.target.SetCancelled(true)
		rec.co.Resume(nil, task.ErrCancelled)
		if err := s.drive(ctx, h); err != nil {
			logger.Error("Cancelled task did not finish.", "box", rec.id, "error", err)
			errs = append(errs, err)
			s.abandon(h)
			continue
		}
		if rec.state == task.Paused || rec.state == task.Awaiting {
			logger.Warn("Task suspended again after cancellation; abandoning it.", "box", rec.id)
			s.abandon(h)
		}
	}
	return errors.Join(errs...)
}

// abandon drops the head task without waiting for it.
func (s *Scheduler) abandon(h Handle) {
	rec := s.records[h]
	if rec.state == task.Awaiting {
		s.makeActive(h)
	}
	if rec.co != nil {
		rec.co.Abandon()
	}
	rec.target.SetProcessing(false)
	s.stats.Cancelled++
	s.DeferRefresh(rec.id)
	s.popActiveTask(h)
}
