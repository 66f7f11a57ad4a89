package registry

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/specialistvlad/boxwire/internal/box"
)

// ErrUnknownType is returned when no constructor is registered for a type id.
var ErrUnknownType = errors.New("unknown box type")

// Module is the interface that all box modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Constructor builds a fresh, unattached box.
type Constructor func() *box.Box

// Metadata describes a box type for the editor palette.
type Metadata struct {
	Name        string
	Description string
}

// Entry is a registered box type.
type Entry struct {
	TypeID   string
	Category string
	Metadata
	New Constructor
}

// Category groups the types sharing a type id prefix.
type Category struct {
	Name    string
	Entries []Entry
}

// Registry holds the box types known to a single application instance.
type Registry struct {
	entries map[string]Entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Load registers every module.
func (r *Registry) Load(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterBox registers a box type. It panics on a malformed or duplicate
// type id.
func (r *Registry) RegisterBox(typeID string, meta Metadata, ctor Constructor) {
	category, name, ok := strings.Cut(typeID, "/")
	if !ok || category == "" || name == "" {
		panic(fmt.Sprintf("box type id %q must look like category/name", typeID))
	}
	if _, exists := r.entries[typeID]; exists {
		panic(fmt.Sprintf("box type '%s' already registered", typeID))
	}
	if ctor == nil {
		panic(fmt.Sprintf("box type '%s' has no constructor", typeID))
	}
	if meta.Name == "" {
		meta.Name = name
	}
	slog.Debug("Registering box type.", "type", typeID)
	r.entries[typeID] = Entry{TypeID: typeID, Category: category, Metadata: meta, New: ctor}
}

// New builds a box of the given type. It implements program.Constructors.
func (r *Registry) New(typeID string) (*box.Box, error) {
	e, ok := r.entries[typeID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, typeID)
	}
	return e.New(), nil
}

// Lookup returns the entry for typeID.
func (r *Registry) Lookup(typeID string) (Entry, bool) {
	e, ok := r.entries[typeID]
	return e, ok
}

// Types returns every registered type id, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Categories returns the palette: categories sorted by name, each with its
// entries sorted by type id.
func (r *Registry) Categories() []Category {
	byName := map[string]*Category{}
	var out []*Category
	for _, id := range r.Types() {
		e := r.entries[id]
		c, ok := byName[e.Category]
		if !ok {
			c = &Category{Name: e.Category}
			byName[e.Category] = c
			out = append(out, c)
		}
		c.Entries = append(c.Entries, e)
	}
	slices.SortFunc(out, func(a, b *Category) int { return cmp.Compare(a.Name, b.Name) })

	cats := make([]Category, len(out))
	for i, c := range out {
		cats[i] = *c
	}
	return cats
}
