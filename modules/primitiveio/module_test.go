package primitiveio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specialistvlad/boxwire/internal/session/sessiontest"
	"github.com/specialistvlad/boxwire/internal/value"
)

func TestSpinner(t *testing.T) {
	h := sessiontest.New(t, &Module{})
	id := h.Add(t, SpinnerType)
	h.Settle(t)
	assert.Equal(t, value.Number(0), h.Output(t, id, "value"))

	h.Event(t, id, SetEvent, value.Number(12))
	h.Settle(t)
	assert.Equal(t, value.Number(12), h.Output(t, id, "value"))
	b, _ := h.Program().Box(id)
	assert.Equal(t, value.Number(12), b.State)

	h.Event(t, id, SetEvent, value.String("x"))
	h.Settle(t)
	assert.ErrorContains(t, h.Shell.LastError(id), "spinner expects a number")
	assert.Equal(t, value.Number(12), h.Output(t, id, "value"))
}

func TestToString(t *testing.T) {
	h := sessiontest.New(t, &Module{})
	spin := h.Add(t, SpinnerType)
	str := h.Add(t, ToStringType)
	h.Wire(t, spin, "value", str, "value")
	h.Settle(t)
	assert.Equal(t, value.String("0"), h.Output(t, str, "string"))

	h.Event(t, spin, SetEvent, value.Number(2.5))
	h.Settle(t)
	assert.Equal(t, value.String("2.5"), h.Output(t, str, "string"))
}
