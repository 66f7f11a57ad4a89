package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/boxwire/internal/boxstate"
	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/session"
	"github.com/specialistvlad/boxwire/internal/session/sessiontest"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
	"github.com/specialistvlad/boxwire/modules/arithmetic"
	"github.com/specialistvlad/boxwire/modules/debug"
	"github.com/specialistvlad/boxwire/modules/primitiveio"
)

func allModules() []registry.Module {
	return []registry.Module{&arithmetic.Module{}, &primitiveio.Module{}, &debug.Module{}}
}

func sampleDocument() program.Document {
	return program.Document{
		Version: program.DocumentVersion,
		Boxes: []program.BoxRecord{
			{ID: "spinner_0", Type: primitiveio.SpinnerType, X: 1, Y: 2},
			{ID: "spinner_1", Type: primitiveio.SpinnerType, X: 1, Y: 40},
			{ID: "add_0", Type: arithmetic.AddType, X: 60, Y: 20},
		},
		Wires: []program.WireRecord{
			{ID: "wire_0", SrcBox: "spinner_0", SrcPlug: "value", DestBox: "add_0", DestPlug: "a"},
			{ID: "wire_1", SrcBox: "spinner_1", SrcPlug: "value", DestBox: "add_0", DestPlug: "b"},
		},
		View: cty.ObjectVal(map[string]cty.Value{"zoom": cty.NumberIntVal(2)}),
	}
}

func TestSession_RestoreAndDocument(t *testing.T) {
	h := sessiontest.New(t, allModules()...)
	doc := sampleDocument()
	require.NoError(t, h.Session.Restore(h.Ctx, doc))
	h.Settle(t)

	assert.Equal(t, value.Number(0), h.Output(t, "add_0", "result"))
	got := h.Session.Document()
	if diff := cmp.Diff(doc, got, cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}

	h.Session.SetView(cty.NullVal(cty.DynamicPseudoType))
	assert.True(t, h.Session.Document().View.IsNull())
}

func TestSession_RestoreUnknownType(t *testing.T) {
	h := sessiontest.New(t, &arithmetic.Module{})
	err := h.Session.Restore(h.Ctx, sampleDocument())
	assert.ErrorIs(t, err, registry.ErrUnknownType)
}

func TestSession_AddBox(t *testing.T) {
	h := sessiontest.New(t, allModules()...)
	id, err := h.Session.AddBox(h.Ctx, arithmetic.MulType, "", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, "mul_0", id)

	_, err = h.Session.AddBox(h.Ctx, "arithmetic/div", "", 0, 0)
	assert.ErrorIs(t, err, registry.ErrUnknownType)
}

func TestSession_TracksBoxStatus(t *testing.T) {
	h := sessiontest.New(t, allModules()...)
	add := h.Add(t, arithmetic.AddType)
	h.Set(t, add, "a", value.Number(2))
	h.Settle(t)

	status := h.Session.Status()
	got, err := status.GetStatus(h.Ctx, add)
	require.NoError(t, err)
	assert.Equal(t, boxstate.Idle, got)
	view, err := status.GetView(h.Ctx, add)
	require.NoError(t, err)
	outputs, _ := view.(value.Map).Get("outputs")
	result, _ := outputs.(value.Map).Get("result")
	assert.Equal(t, value.Number(2), result)

	h.Set(t, add, "a", value.String("x"))
	h.Settle(t)
	got, _ = status.GetStatus(h.Ctx, add)
	assert.Equal(t, boxstate.Failed, got)
	ferr, _ := status.GetError(h.Ctx, add)
	assert.ErrorContains(t, ferr, "expected a number")

	require.NoError(t, h.Program().DeleteBox(h.Ctx, add))
	snap, err := status.Snapshot(h.Ctx)
	require.NoError(t, err)
	assert.NotContains(t, snap, add)
}

func TestSession_CloseCancelsAwaitingBoxes(t *testing.T) {
	h := sessiontest.New(t, allModules()...)
	id := h.Add(t, debug.AwaitType)
	h.Set(t, id, "name", value.String("never"))
	h.Settle(t)
	state, _ := h.Program().State(id)
	require.Equal(t, task.Awaiting, state)

	require.NoError(t, h.Session.Close(h.Ctx))
	assert.Empty(t, h.Session.Promises().Pending())
	state, _ = h.Program().State(id)
	assert.Equal(t, task.NotStarted, state)
	assert.Nil(t, h.Output(t, id, "value"))

	_, err := h.Session.AddBox(h.Ctx, arithmetic.AddType, "", 0, 0)
	assert.ErrorIs(t, err, session.ErrClosed)
	assert.ErrorIs(t, h.Session.Restore(h.Ctx, program.Document{}), session.ErrClosed)
	assert.NoError(t, h.Session.Close(h.Ctx), "closing twice is harmless")
}

func TestSession_DoFromAnotherGoroutine(t *testing.T) {
	h := sessiontest.New(t, allModules()...)
	ctx, cancel := context.WithTimeout(h.Ctx, 5*time.Second)
	defer cancel()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- h.Session.Run(runCtx) }()

	var id string
	require.NoError(t, h.Session.Do(ctx, func(ctx context.Context, p *program.Program) error {
		var err error
		id, err = h.Session.AddBox(ctx, primitiveio.SpinnerType, "", 0, 0)
		return err
	}))

	require.Eventually(t, func() bool {
		var v value.Value
		err := h.Session.Do(ctx, func(ctx context.Context, p *program.Program) error {
			b, err := p.Box(id)
			if err != nil {
				return err
			}
			v = b.Output("value").Read()
			return nil
		})
		return err == nil && value.Equal(v, value.Number(0))
	}, 2*time.Second, 10*time.Millisecond)

	stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}
