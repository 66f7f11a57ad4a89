package program

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/ctxlog"
)

// DocumentVersion is the persisted format version written by Document.
const DocumentVersion = 1

// Document is the persisted shape of a program. View holds editor settings
// (pan, zoom) that the runtime carries along without interpreting.
type Document struct {
	Version int
	Boxes   []BoxRecord
	Wires   []WireRecord
	View    cty.Value
}

// BoxRecord is a persisted box.
type BoxRecord struct {
	ID   string
	Type string
	X    float64
	Y    float64
}

// WireRecord is a persisted wire.
type WireRecord struct {
	ID       string
	SrcBox   string
	SrcPlug  string
	DestBox  string
	DestPlug string
}

// Constructors builds boxes by type id. registry.Registry implements it.
type Constructors interface {
	New(typeID string) (*box.Box, error)
}

// Document captures the program's structure. Boxes and wires are listed in
// insertion order.
func (p *Program) Document(view cty.Value) Document {
	doc := Document{Version: DocumentVersion, View: view}
	for _, b := range p.topo.AllBoxes(p.ctx) {
		doc.Boxes = append(doc.Boxes, BoxRecord{ID: b.ID, Type: b.Box.TypeID(), X: b.X, Y: b.Y})
	}
	for _, w := range p.topo.AllWires(p.ctx) {
		doc.Wires = append(doc.Wires, WireRecord{
			ID: w.ID, SrcBox: w.SrcBox, SrcPlug: w.SrcPlug, DestBox: w.DestBox, DestPlug: w.DestPlug,
		})
	}
	return doc
}

// Restore adds the document's boxes, then its wires in their saved order,
// since adding a wire can propagate a value immediately. It stops at the
// first failure.
func (p *Program) Restore(ctx context.Context, doc Document, ctors Constructors) error {
	if doc.Version > DocumentVersion {
		return fmt.Errorf("restore: unsupported document version %d", doc.Version)
	}
	for _, rec := range doc.Boxes {
		b, err := ctors.New(rec.Type)
		if err != nil {
			return fmt.Errorf("restore box %q: %w", rec.ID, err)
		}
		if _, err := p.AddBox(ctx, b, rec.ID, rec.X, rec.Y); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	for _, rec := range doc.Wires {
		if _, err := p.AddWire(ctx, rec.SrcBox, rec.SrcPlug, rec.DestBox, rec.DestPlug, rec.ID); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	ctxlog.FromContext(ctx).Info("Program restored.", "boxes", len(doc.Boxes), "wires", len(doc.Wires))
	return nil
}
