// Package yamlprogram reads and writes program documents as YAML, for tools
// that do not speak HCL. A program file looks like this:
//
//	version: 1
//	view:
//	  zoom: 1.5
//	boxes:
//	  - id: spinner_0
//	    type: primitive_io/spinner
//	    x: 10
//	    y: 20
//	wires:
//	  - id: wire_0
//	    src_box: spinner_0
//	    src_plug: value
//	    dest_box: add_0
//	    dest_plug: a
//
// Unlike HCL programs, a YAML program is always a single file.
package yamlprogram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/fsutil"
	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/value"
)

// Extensions lists the file suffixes of YAML programs.
var Extensions = []string{".yaml", ".yml"}

type fileRoot struct {
	Version int         `yaml:"version,omitempty"`
	View    any         `yaml:"view,omitempty"`
	Boxes   []boxEntry  `yaml:"boxes,omitempty"`
	Wires   []wireEntry `yaml:"wires,omitempty"`
}

type boxEntry struct {
	ID   string  `yaml:"id"`
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

type wireEntry struct {
	ID       string `yaml:"id"`
	SrcBox   string `yaml:"src_box"`
	SrcPlug  string `yaml:"src_plug"`
	DestBox  string `yaml:"dest_box"`
	DestPlug string `yaml:"dest_plug"`
}

// Parse decodes a program. Unknown keys are rejected.
func Parse(src []byte, filename string) (program.Document, error) {
	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return program.Document{}, fmt.Errorf("failed to decode program file %s: %w", filename, err)
	}

	doc := program.Document{Version: program.DocumentVersion, View: cty.NullVal(cty.DynamicPseudoType)}
	if root.Version != 0 {
		if root.Version > program.DocumentVersion {
			return program.Document{}, fmt.Errorf("program file %s: unsupported version %d", filename, root.Version)
		}
		doc.Version = root.Version
	}

	if root.View != nil {
		v, err := value.FromNative(root.View)
		if err != nil {
			return program.Document{}, fmt.Errorf("program file %s: view: %w", filename, err)
		}
		if doc.View, err = value.ToCty(v); err != nil {
			return program.Document{}, fmt.Errorf("program file %s: view: %w", filename, err)
		}
	}

	for _, b := range root.Boxes {
		if b.ID == "" || b.Type == "" {
			return program.Document{}, fmt.Errorf("program file %s: every box needs an id and a type", filename)
		}
		doc.Boxes = append(doc.Boxes, program.BoxRecord{ID: b.ID, Type: b.Type, X: b.X, Y: b.Y})
	}
	for _, w := range root.Wires {
		doc.Wires = append(doc.Wires, program.WireRecord{
			ID: w.ID, SrcBox: w.SrcBox, SrcPlug: w.SrcPlug, DestBox: w.DestBox, DestPlug: w.DestPlug,
		})
	}
	return doc, nil
}

// Load reads the program file at path.
func Load(ctx context.Context, path string) (program.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return program.Document{}, fmt.Errorf("load program: %w", err)
	}
	doc, err := Parse(src, path)
	if err != nil {
		return program.Document{}, err
	}
	ctxlog.FromContext(ctx).Debug("Program loaded.", "path", path, "boxes", len(doc.Boxes), "wires", len(doc.Wires))
	return doc, nil
}

// Encode renders doc as YAML.
func Encode(doc program.Document) ([]byte, error) {
	root := fileRoot{Version: doc.Version}
	if !doc.View.IsNull() {
		v, err := value.FromCty(doc.View)
		if err != nil {
			return nil, fmt.Errorf("encode program: view: %w", err)
		}
		root.View = value.ToNative(v)
	}
	for _, b := range doc.Boxes {
		root.Boxes = append(root.Boxes, boxEntry{ID: b.ID, Type: b.Type, X: b.X, Y: b.Y})
	}
	for _, w := range doc.Wires {
		root.Wires = append(root.Wires, wireEntry{
			ID: w.ID, SrcBox: w.SrcBox, SrcPlug: w.SrcPlug, DestBox: w.DestBox, DestPlug: w.DestPlug,
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes doc to path, replacing the file atomically.
func Save(ctx context.Context, path string, doc program.Document) error {
	src, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, src); err != nil {
		return fmt.Errorf("save program: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Program saved.", "path", path, "boxes", len(doc.Boxes), "wires", len(doc.Wires))
	return nil
}
