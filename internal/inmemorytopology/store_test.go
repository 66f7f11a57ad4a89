package inmemorytopology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/topologystore"
)

func newBox(t *testing.T, inputs, outputs []string) *box.Box {
	t.Helper()
	b := box.New("test")
	for _, name := range inputs {
		_, err := b.NewInput(name, nil)
		require.NoError(t, err)
	}
	for _, name := range outputs {
		_, err := b.NewOutput(name)
		require.NoError(t, err)
	}
	return b
}

func TestAddAndGetBox(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := newBox(t, []string{"a"}, []string{"r"})

	require.NoError(t, s.AddBox(ctx, topologystore.Box{ID: "add_0", X: 10, Y: 20, Box: b}))
	err := s.AddBox(ctx, topologystore.Box{ID: "add_0", Box: b})
	assert.ErrorIs(t, err, topologystore.ErrDuplicate)

	got, ok := s.GetBox(ctx, "add_0")
	require.True(t, ok)
	assert.Same(t, b, got.Box)
	assert.Equal(t, 10.0, got.X)

	require.NoError(t, s.MoveBox(ctx, "add_0", 1, 2))
	got, _ = s.GetBox(ctx, "add_0")
	assert.Equal(t, 2.0, got.Y)
	assert.ErrorIs(t, s.MoveBox(ctx, "nope", 0, 0), topologystore.ErrNotFound)

	ids, err := s.WiresAt(ctx, topologystore.PlugKey{Box: "add_0", Dir: topologystore.Input, Plug: "a"})
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = s.WiresAt(ctx, topologystore.PlugKey{Box: "add_0", Dir: topologystore.Output, Plug: "a"})
	assert.ErrorIs(t, err, topologystore.ErrNotFound)
}

func TestWiresAreIndexedOnBothEnds(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.AddBox(ctx, topologystore.Box{ID: "src", Box: newBox(t, nil, []string{"v"})}))
	require.NoError(t, s.AddBox(ctx, topologystore.Box{ID: "dst", Box: newBox(t, []string{"a", "b"}, nil)}))

	w1 := topologystore.Wire{ID: "wire_0", SrcBox: "src", SrcPlug: "v", DestBox: "dst", DestPlug: "a"}
	w2 := topologystore.Wire{ID: "wire_1", SrcBox: "src", SrcPlug: "v", DestBox: "dst", DestPlug: "b"}
	require.NoError(t, s.AddWire(ctx, w1))
	require.NoError(t, s.AddWire(ctx, w2))
	assert.ErrorIs(t, s.AddWire(ctx, w1), topologystore.ErrDuplicate)

	bad := topologystore.Wire{ID: "wire_x", SrcBox: "dst", SrcPlug: "a", DestBox: "src", DestPlug: "v"}
	assert.ErrorIs(t, s.AddWire(ctx, bad), topologystore.ErrNotFound, "direction is part of the key")

	out, err := s.WiresAt(ctx, w1.Source())
	require.NoError(t, err)
	assert.Equal(t, []string{"wire_0", "wire_1"}, out)

	in, err := s.WiresAt(ctx, w2.Destination())
	require.NoError(t, err)
	assert.Equal(t, []string{"wire_1"}, in)

	all, err := s.WiresOfBox(ctx, "dst")
	require.NoError(t, err)
	assert.Equal(t, []string{"wire_0", "wire_1"}, all)

	assert.Error(t, s.RemoveBox(ctx, "src"), "boxes with wires cannot be removed")

	removed, err := s.RemoveWire(ctx, "wire_0")
	require.NoError(t, err)
	assert.Equal(t, w1, removed)
	out, _ = s.WiresAt(ctx, w1.Source())
	assert.Equal(t, []string{"wire_1"}, out)

	_, err = s.RemoveWire(ctx, "wire_0")
	assert.ErrorIs(t, err, topologystore.ErrNotFound)
	assert.Equal(t, []topologystore.Wire{w2}, s.AllWires(ctx))
}

func TestRemoveBoxDropsPlugEntries(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.AddBox(ctx, topologystore.Box{ID: "a", Box: newBox(t, []string{"x"}, nil)}))
	require.NoError(t, s.AddBox(ctx, topologystore.Box{ID: "b", Box: newBox(t, nil, nil)}))

	require.NoError(t, s.RemoveBox(ctx, "a"))
	_, ok := s.GetBox(ctx, "a")
	assert.False(t, ok)
	_, err := s.WiresAt(ctx, topologystore.PlugKey{Box: "a", Dir: topologystore.Input, Plug: "x"})
	assert.ErrorIs(t, err, topologystore.ErrNotFound)

	ids := []string{}
	for _, b := range s.AllBoxes(ctx) {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"b"}, ids)
	assert.ErrorIs(t, s.RemoveBox(ctx, "a"), topologystore.ErrNotFound)
}

func TestPlugKeyString(t *testing.T) {
	assert.Equal(t, "add_0->result", topologystore.PlugKey{Box: "add_0", Dir: topologystore.Output, Plug: "result"}.String())
	assert.Equal(t, "add_0<-a", topologystore.PlugKey{Box: "add_0", Dir: topologystore.Input, Plug: "a"}.String())
}
