package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specialistvlad/boxwire/internal/session/sessiontest"
	"github.com/specialistvlad/boxwire/internal/value"
)

func TestHold_PublishesOnlyWhenPushed(t *testing.T) {
	h := sessiontest.New(t, &Module{})
	id := h.Add(t, HoldType)

	h.Set(t, id, "held", value.Number(1))
	h.Settle(t)
	assert.Nil(t, h.Output(t, id, "value"))

	h.Event(t, id, PushEvent, nil)
	h.Settle(t)
	assert.Equal(t, value.Number(1), h.Output(t, id, "value"))

	h.Set(t, id, "held", value.Number(2))
	h.Settle(t)
	assert.Equal(t, value.Number(1), h.Output(t, id, "value"))

	h.Event(t, id, PushEvent, nil)
	h.Settle(t)
	assert.Equal(t, value.Number(2), h.Output(t, id, "value"))
}
