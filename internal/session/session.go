package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/boxwire/internal/boxstate"
	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/eventloop"
	"github.com/specialistvlad/boxwire/internal/inmemorystore"
	"github.com/specialistvlad/boxwire/internal/inmemorytopology"
	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/scheduler"
	"github.com/specialistvlad/boxwire/internal/ui"
	"github.com/specialistvlad/boxwire/internal/value"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Session ties a program to the loop that runs it.
type Session struct {
	ctx      context.Context
	loop     *eventloop.Loop
	reg      *registry.Registry
	status   boxstate.Store
	promises *Promises
	prog     *program.Program
	view     cty.Value
	closed   bool
}

// New creates a session with an empty program. Notifications go to the
// status tracker and to every extra shell.
func New(ctx context.Context, reg *registry.Registry, cfg scheduler.Config, shells ...ui.Shell) *Session {
	ctx = ctxlog.Component(ctx, "session")
	s := &Session{
		ctx:      ctx,
		loop:     eventloop.New(),
		reg:      reg,
		status:   inmemorystore.New(),
		promises: NewPromises(),
		view:     cty.NullVal(cty.DynamicPseudoType),
	}
	s.ctx = WithPromises(ctx, s.promises)

	tracker := boxstate.NewTracker(s.ctx, s.status, nil)
	shell := ui.Join(append([]ui.Shell{tracker}, shells...)...)
	s.prog = program.New(s.ctx, s.loop, shell, inmemorytopology.New(), cfg)
	tracker.SetViewFunc(func(id string) (value.Value, bool) { return s.prog.View(id) })

	ctxlog.FromContext(ctx).Debug("Session created.", "box_types", len(reg.Types()))
	return s
}

// Loop returns the session's event loop.
func (s *Session) Loop() *eventloop.Loop { return s.loop }

// Program returns the program. It must only be used from the loop.
func (s *Session) Program() *program.Program { return s.prog }

// Registry returns the box types available to the program.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Status returns the per-box execution status store. It is safe to read from
// any goroutine.
func (s *Session) Status() boxstate.Store { return s.status }

// Promises returns the session's named promises.
func (s *Session) Promises() *Promises { return s.promises }

// Run drives the loop until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	return s.loop.Run(s.jobContext(ctx))
}

// RunUntilIdle drives the loop until no job is queued.
func (s *Session) RunUntilIdle(ctx context.Context) error {
	return s.loop.RunUntilIdle(s.jobContext(ctx))
}

func (s *Session) jobContext(ctx context.Context) context.Context {
	if _, ok := PromisesFrom(ctx); !ok {
		ctx = WithPromises(ctx, s.promises)
	}
	return ctx
}

// Do runs fn on the loop and waits for it. Run must be active on another
// goroutine.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, p *program.Program) error) error {
	return s.loop.Do(ctx, func(ctx context.Context) error {
		if s.closed {
			return ErrClosed
		}
		return fn(ctx, s.prog)
	})
}

// AddBox builds a box of the given type and adds it to the program. It must
// be called from the loop.
func (s *Session) AddBox(ctx context.Context, typeID, id string, x, y float64) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	b, err := s.reg.New(typeID)
	if err != nil {
		return "", err
	}
	return s.prog.AddBox(ctx, b, id, x, y)
}

// Restore adds the boxes and wires of doc to the program and adopts its
// view settings. It must be called from the loop.
func (s *Session) Restore(ctx context.Context, doc program.Document) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.prog.Restore(ctx, doc, s.reg); err != nil {
		return err
	}
	if !doc.View.IsNull() {
		s.view = doc.View
	}
	return nil
}

// Document captures the program together with the view settings. It must be
// called from the loop.
func (s *Session) Document() program.Document {
	return s.prog.Document(s.view)
}

// SetView replaces the editor view settings saved with the program.
func (s *Session) SetView(v cty.Value) { s.view = v }

// Close cancels all pending work and rejects pending promises. The loop is
// drained once more so the final notifications are delivered. Close must not
// be called while another goroutine is running the loop.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	ctx = s.jobContext(ctx)

	s.promises.RejectAll(fmt.Errorf("promise abandoned: %w", ErrClosed))
	err := s.prog.TerminateAll(ctx)
	if rerr := s.loop.RunUntilIdle(ctx); rerr != nil {
		err = errors.Join(err, rerr)
	}
	ctxlog.FromContext(ctx).Debug("Session closed.", "error", err)
	return err
}
