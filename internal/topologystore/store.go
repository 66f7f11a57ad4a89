// Package topologystore defines the interface for storing the structure of a
// program: its boxes, its wires and the per-plug wire index.
//
// # Why Topology Store Exists
//
// The topology store isolates the program's structure from everything that
// happens while it runs. Box plug values and internal state live on the boxes
// themselves, task queues live in the scheduler, and execution status lives
// in boxstate. The topology only answers structural questions: which boxes
// exist, where they are on the canvas, and which wires leave or enter a plug.
//
// # Plug index
//
// Every declared plug of every box gets an index entry when the box is added,
// keyed by PlugKey. Wires are appended to the entries of both endpoints when
// they are added, in insertion order, so propagation visits downstream wires
// in the order they were created.
//
// # Ordering
//
// AllBoxes and AllWires return records in insertion order. Persistence relies
// on this: wires are re-added in their saved order on load because adding a
// wire may immediately propagate a value.
package topologystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/boxwire/internal/box"
)

var (
	// ErrNotFound is returned for unknown boxes, wires and plugs.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an id is already taken.
	ErrDuplicate = errors.New("duplicate id")
)

// Direction tells input plugs from output plugs.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// PlugKey names one plug of one box.
type PlugKey struct {
	Box  string
	Dir  Direction
	Plug string
}

func (k PlugKey) String() string {
	if k.Dir == Input {
		return fmt.Sprintf("%s<-%s", k.Box, k.Plug)
	}
	return fmt.Sprintf("%s->%s", k.Box, k.Plug)
}

// Box is a placed box.
type Box struct {
	ID  string
	X   float64
	Y   float64
	Box *box.Box
}

// Wire connects an output plug to an input plug.
type Wire struct {
	ID       string
	SrcBox   string
	SrcPlug  string
	DestBox  string
	DestPlug string
}

// Source is the plug the wire reads from.
func (w Wire) Source() PlugKey { return PlugKey{Box: w.SrcBox, Dir: Output, Plug: w.SrcPlug} }

// Destination is the plug the wire writes to.
func (w Wire) Destination() PlugKey { return PlugKey{Box: w.DestBox, Dir: Input, Plug: w.DestPlug} }

// Store manages program structure.
//
// # Thread-Safety Requirements
//
// The program mutates the store only from its event loop, but status and
// snapshot endpoints read it from other goroutines, so implementations must
// be safe for concurrent use.
type Store interface {
	// AddBox registers a box and creates empty index entries for each of its
	// declared plugs. It fails with ErrDuplicate if the id is taken.
	AddBox(ctx context.Context, b Box) error

	// RemoveBox deletes a box and its index entries. Wires touching the box
	// must be removed first; otherwise it fails and changes nothing.
	RemoveBox(ctx context.Context, id string) error

	// GetBox looks up a box by id.
	GetBox(ctx context.Context, id string) (Box, bool)

	// MoveBox updates a box's canvas position.
	MoveBox(ctx context.Context, id string, x, y float64) error

	// AllBoxes returns every box in insertion order.
	AllBoxes(ctx context.Context) []Box

	// AddWire registers a wire in the registry and in the index entries of both
	// endpoints. Endpoints must exist in the index with the right direction.
	AddWire(ctx context.Context, w Wire) error

	// RemoveWire deletes a wire and returns it.
	RemoveWire(ctx context.Context, id string) (Wire, error)

	// GetWire looks up a wire by id.
	GetWire(ctx context.Context, id string) (Wire, bool)

	// AllWires returns every wire in insertion order.
	AllWires(ctx context.Context) []Wire

	// WiresAt returns the ids of wires attached to a plug, in insertion order.
	WiresAt(ctx context.Context, key PlugKey) ([]string, error)

	// WiresOfBox returns the ids of every wire touching any plug of the box.
	WiresOfBox(ctx context.Context, id string) ([]string, error)
}
