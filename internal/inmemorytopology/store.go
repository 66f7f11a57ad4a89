package inmemorytopology

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/boxwire/internal/topologystore"
)

// Store implements topologystore.Store with maps guarded by a RWMutex.
type Store struct {
	mu        sync.RWMutex
	boxes     map[string]topologystore.Box
	boxOrder  []string
	wires     map[string]topologystore.Wire
	wireOrder []string
	plugs     map[topologystore.PlugKey][]string
}

// New creates a new, empty in-memory topology store.
func New() *Store {
	return &Store{
		boxes: make(map[string]topologystore.Box),
		wires: make(map[string]topologystore.Wire),
		plugs: make(map[topologystore.PlugKey][]string),
	}
}

var _ topologystore.Store = (*Store)(nil)

func (s *Store) AddBox(ctx context.Context, b topologystore.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.boxes[b.ID]; exists {
		return fmt.Errorf("box %q: %w", b.ID, topologystore.ErrDuplicate)
	}
	s.boxes[b.ID] = b
	s.boxOrder = append(s.boxOrder, b.ID)
	if b.Box != nil {
		for _, name := range b.Box.Inputs() {
			s.plugs[topologystore.PlugKey{Box: b.ID, Dir: topologystore.Input, Plug: name}] = nil
		}
		for _, name := range b.Box.Outputs() {
			s.plugs[topologystore.PlugKey{Box: b.ID, Dir: topologystore.Output, Plug: name}] = nil
		}
	}
	return nil
}

func (s *Store) RemoveBox(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.boxes[id]; !exists {
		return fmt.Errorf("box %q: %w", id, topologystore.ErrNotFound)
	}
	if wires := s.wiresOfBoxLocked(id); len(wires) > 0 {
		return fmt.Errorf("box %q still has %d wires attached", id, len(wires))
	}
	delete(s.boxes, id)
	s.boxOrder = slices.DeleteFunc(s.boxOrder, func(v string) bool { return v == id })
	for key := range s.plugs {
		if key.Box == id {
			delete(s.plugs, key)
		}
	}
	return nil
}

func (s *Store) GetBox(ctx context.Context, id string) (topologystore.Box, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boxes[id]
	return b, ok
}

func (s *Store) MoveBox(ctx context.Context, id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boxes[id]
	if !ok {
		return fmt.Errorf("box %q: %w", id, topologystore.ErrNotFound)
	}
	b.X, b.Y = x, y
	s.boxes[id] = b
	return nil
}

func (s *Store) AllBoxes(ctx context.Context) []topologystore.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]topologystore.Box, 0, len(s.boxOrder))
	for _, id := range s.boxOrder {
		out = append(out, s.boxes[id])
	}
	return out
}

func (s *Store) AddWire(ctx context.Context, w topologystore.Wire) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wires[w.ID]; exists {
		return fmt.Errorf("wire %q: %w", w.ID, topologystore.ErrDuplicate)
	}
	src, dest := w.Source(), w.Destination()
	if _, ok := s.plugs[src]; !ok {
		return fmt.Errorf("source plug %s: %w", src, topologystore.ErrNotFound)
	}
	if _, ok := s.plugs[dest]; !ok {
		return fmt.Errorf("destination plug %s: %w", dest, topologystore.ErrNotFound)
	}

	s.wires[w.ID] = w
	s.wireOrder = append(s.wireOrder, w.ID)
	s.plugs[src] = append(s.plugs[src], w.ID)
	s.plugs[dest] = append(s.plugs[dest], w.ID)
	return nil
}

func (s *Store) RemoveWire(ctx context.Context, id string) (topologystore.Wire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wires[id]
	if !ok {
		return topologystore.Wire{}, fmt.Errorf("wire %q: %w", id, topologystore.ErrNotFound)
	}
	isWire := func(v string) bool { return v == id }
	for _, key := range []topologystore.PlugKey{w.Source(), w.Destination()} {
		s.plugs[key] = slices.DeleteFunc(s.plugs[key], isWire)
	}
	delete(s.wires, id)
	s.wireOrder = slices.DeleteFunc(s.wireOrder, isWire)
	return w, nil
}

func (s *Store) GetWire(ctx context.Context, id string) (topologystore.Wire, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wires[id]
	return w, ok
}

func (s *Store) AllWires(ctx context.Context) []topologystore.Wire {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]topologystore.Wire, 0, len(s.wireOrder))
	for _, id := range s.wireOrder {
		out = append(out, s.wires[id])
	}
	return out
}

func (s *Store) WiresAt(ctx context.Context, key topologystore.PlugKey) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.plugs[key]
	if !ok {
		return nil, fmt.Errorf("plug %s: %w", key, topologystore.ErrNotFound)
	}
	return slices.Clone(ids), nil
}

func (s *Store) WiresOfBox(ctx context.Context, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.boxes[id]; !ok {
		return nil, fmt.Errorf("box %q: %w", id, topologystore.ErrNotFound)
	}
	return s.wiresOfBoxLocked(id), nil
}

// wiresOfBoxLocked returns wire ids in registry order, each once.
func (s *Store) wiresOfBoxLocked(id string) []string {
	var out []string
	for _, wid := range s.wireOrder {
		w := s.wires[wid]
		if w.SrcBox == id || w.DestBox == id {
			out = append(out, wid)
		}
	}
	return out
}
