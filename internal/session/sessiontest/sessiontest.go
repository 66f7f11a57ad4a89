// Package sessiontest builds sessions for tests of box modules and of the
// layers above the session.
package sessiontest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/scheduler"
	"github.com/specialistvlad/boxwire/internal/session"
	"github.com/specialistvlad/boxwire/internal/testutil"
	"github.com/specialistvlad/boxwire/internal/ui"
	"github.com/specialistvlad/boxwire/internal/value"
)

// Harness is a session driven synchronously with RunUntilIdle.
type Harness struct {
	Ctx     context.Context
	Logs    *testutil.SafeBuffer
	Shell   *testutil.Recorder
	Clock   *testutil.Clock
	Session *session.Session
}

// New creates a session with the given modules registered. The session is
// closed when the test ends.
func New(t testing.TB, modules ...registry.Module) *Harness {
	t.Helper()
	return NewWithShells(t, nil, modules...)
}

// NewWithShells is New with extra shells receiving the runtime's
// notifications next to the recorder.
func NewWithShells(t testing.TB, shells []ui.Shell, modules ...registry.Module) *Harness {
	t.Helper()
	ctx, logs := testutil.Context(t)
	h := &Harness{Ctx: ctx, Logs: logs, Shell: &testutil.Recorder{}, Clock: testutil.NewClock()}

	reg := registry.New().Load(modules...)
	require.NoError(t, reg.Validate(ctx))

	cfg := scheduler.DefaultConfig()
	cfg.Now = h.Clock.Now
	h.Session = session.New(ctx, reg, cfg, append([]ui.Shell{h.Shell}, shells...)...)
	t.Cleanup(func() { _ = h.Session.Close(ctx) })
	return h
}

// Program returns the session's program.
func (h *Harness) Program() *program.Program { return h.Session.Program() }

// Settle runs the loop until nothing is queued.
func (h *Harness) Settle(t testing.TB) {
	t.Helper()
	require.NoError(t, h.Session.RunUntilIdle(h.Ctx))
}

// Add adds a box of the given type and returns its id.
func (h *Harness) Add(t testing.TB, typeID string) string {
	t.Helper()
	id, err := h.Session.AddBox(h.Ctx, typeID, "", 0, 0)
	require.NoError(t, err)
	return id
}

// Wire connects an output plug to an input plug.
func (h *Harness) Wire(t testing.TB, src, srcPlug, dest, destPlug string) string {
	t.Helper()
	id, err := h.Program().AddWire(h.Ctx, src, srcPlug, dest, destPlug, "")
	require.NoError(t, err)
	return id
}

// Set delivers v to an input plug as if it came over a wire.
func (h *Harness) Set(t testing.TB, boxID, plug string, v value.Value) {
	t.Helper()
	require.NoError(t, h.Program().SchedulePlugUpdate(boxID, plug, v))
}

// Event triggers a box event.
func (h *Harness) Event(t testing.TB, boxID, name string, payload value.Value) {
	t.Helper()
	require.NoError(t, h.Program().TriggerEvent(boxID, name, payload))
}

// Output reads an output plug.
func (h *Harness) Output(t testing.TB, boxID, plug string) value.Value {
	t.Helper()
	b, err := h.Program().Box(boxID)
	require.NoError(t, err)
	out := b.Output(plug)
	require.NotNil(t, out, "box %s has no output %q", boxID, plug)
	return out.Read()
}
