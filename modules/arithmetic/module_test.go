package arithmetic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specialistvlad/boxwire/internal/session/sessiontest"
	"github.com/specialistvlad/boxwire/internal/value"
	"github.com/specialistvlad/boxwire/modules/primitiveio"
)

func TestAdd_SpinnersScenario(t *testing.T) {
	h := sessiontest.New(t, &Module{}, &primitiveio.Module{})
	s0 := h.Add(t, primitiveio.SpinnerType)
	s1 := h.Add(t, primitiveio.SpinnerType)
	add := h.Add(t, AddType)
	h.Wire(t, s0, "value", add, "a")
	h.Wire(t, s1, "value", add, "b")
	h.Settle(t)
	assert.Equal(t, value.Number(0), h.Output(t, add, "result"))

	h.Event(t, s0, primitiveio.SetEvent, value.Number(3))
	h.Settle(t)
	assert.Equal(t, value.Number(3), h.Output(t, add, "result"))
}

func TestBinaryOps(t *testing.T) {
	cases := []struct {
		typeID string
		a, b   value.Value
		want   value.Number
	}{
		{AddType, value.Number(2), value.Number(5), 7},
		{AddType, value.Number(2), nil, 2},
		{MulType, value.Number(2), value.Number(5), 10},
		{MulType, value.Number(2), nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.typeID, func(t *testing.T) {
			h := sessiontest.New(t, &Module{})
			id := h.Add(t, tc.typeID)
			h.Set(t, id, "a", tc.a)
			if tc.b != nil {
				h.Set(t, id, "b", tc.b)
			}
			h.Settle(t)
			assert.Equal(t, tc.want, h.Output(t, id, "result"))
		})
	}
}

func TestAdd_RejectsNonNumbers(t *testing.T) {
	h := sessiontest.New(t, &Module{})
	id := h.Add(t, AddType)
	h.Set(t, id, "a", value.String("three"))
	h.Settle(t)
	assert.ErrorContains(t, h.Shell.LastError(id), "expected a number")
	assert.Nil(t, h.Output(t, id, "result"))
}
