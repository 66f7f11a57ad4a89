// Package eventloop is the single-threaded host the scheduler runs on.
//
// Jobs are posted from any goroutine and executed one at a time by whichever
// goroutine drives the loop (Run or RunUntilIdle). Everything that touches a
// program's boxes, wires or scheduler records does so from inside a job, which
// is what lets those structures go without locks.
package eventloop

import (
	"context"
	"sync"

	"github.com/specialistvlad/boxwire/internal/workqueue"
)

// Job is a unit of work executed on the loop.
type Job func(ctx context.Context)

// Loop drains a two-lane work queue.
type Loop struct {
	mu    sync.Mutex
	queue workqueue.TwoPriority[Job]
	holds int
	wake  chan struct{}
}

type loopKey struct{}

// New creates an empty loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues a regular job.
func (l *Loop) Post(job Job) {
	l.mu.Lock()
	l.queue.PushRegular(job)
	l.mu.Unlock()
	l.notify()
}

// PostPrioritized enqueues a job that runs before every regular job.
func (l *Loop) PostPrioritized(job Job) {
	l.mu.Lock()
	l.queue.PushPrioritized(job)
	l.mu.Unlock()
	l.notify()
}

// Pending returns the number of queued jobs.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// next pops a job. When the queue is empty it also reports the number of
// outstanding holds, read under the same lock.
func (l *Loop) next() (Job, bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	job, ok := l.queue.Pop()
	return job, ok, l.holds
}

// Hold marks work running outside the loop that will post back to it, such
// as a network request. RunUntilIdle does not return while a hold is
// outstanding. Post the result before calling release; extra calls to
// release are ignored.
func (l *Loop) Hold() (release func()) {
	l.mu.Lock()
	l.holds++
	l.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holds--
			l.mu.Unlock()
			l.notify()
		})
	}
}

// Hold takes a hold on the loop executing the job that ctx was passed to.
// Without one it returns a no-op.
func Hold(ctx context.Context) (release func()) {
	if l, ok := ctx.Value(loopKey{}).(*Loop); ok {
		return l.Hold()
	}
	return func() {}
}

// RunUntilIdle executes jobs until the queue is empty and no hold is
// outstanding, or ctx is done. Jobs posted by running jobs are executed too.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	ctx = context.WithValue(ctx, loopKey{}, l)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, ok, holds := l.next()
		if ok {
			job(ctx)
			continue
		}
		if holds == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Run executes jobs until ctx is done, sleeping while the queue is empty.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.RunUntilIdle(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Do runs fn on the loop and waits for its result. Another goroutine must be
// driving the loop; calling Do from inside a job deadlocks.
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	l.Post(func(ctx context.Context) {
		done <- fn(ctx)
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
