package hclprogram

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/fsutil"
	"github.com/specialistvlad/boxwire/internal/program"
)

// Extension is the file suffix of program files.
const Extension = ".hcl"

// fileRoot is the decoding target for one program file.
type fileRoot struct {
	Version *int           `hcl:"version,optional"`
	View    hcl.Expression `hcl:"view,optional"`
	Boxes   []*boxBlock    `hcl:"box,block"`
	Wires   []*wireBlock   `hcl:"wire,block"`
}

type boxBlock struct {
	ID   string  `hcl:"id,label"`
	Type string  `hcl:"type"`
	X    float64 `hcl:"x,optional"`
	Y    float64 `hcl:"y,optional"`
}

type wireBlock struct {
	ID       string `hcl:"id,label"`
	SrcBox   string `hcl:"src_box"`
	SrcPlug  string `hcl:"src_plug"`
	DestBox  string `hcl:"dest_box"`
	DestPlug string `hcl:"dest_plug"`
}

// Parse decodes a single program file held in memory.
func Parse(src []byte, filename string) (program.Document, error) {
	p := hclparse.NewParser()
	doc := emptyDocument()
	if err := decodeInto(p, &doc, src, filename); err != nil {
		return program.Document{}, err
	}
	return doc, nil
}

// Load reads a program from path. When path is a directory every program
// file below it is merged in lexical order.
func Load(ctx context.Context, path string) (program.Document, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, Extension)
	if err != nil {
		return program.Document{}, fmt.Errorf("load program %s: %w", path, err)
	}
	if len(files) == 0 {
		return program.Document{}, fmt.Errorf("load program %s: no %s files found", path, Extension)
	}
	logger.Debug("Discovered program files.", "count", len(files))

	p := hclparse.NewParser()
	doc := emptyDocument()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return program.Document{}, fmt.Errorf("load program: %w", err)
		}
		if err := decodeInto(p, &doc, src, file); err != nil {
			return program.Document{}, err
		}
	}

	logger.Debug("Program loaded.", "path", path, "boxes", len(doc.Boxes), "wires", len(doc.Wires))
	return doc, nil
}

func emptyDocument() program.Document {
	return program.Document{Version: program.DocumentVersion, View: cty.NullVal(cty.DynamicPseudoType)}
}

// decodeInto parses one file and appends its contents to doc.
func decodeInto(p *hclparse.Parser, doc *program.Document, src []byte, filename string) error {
	file, diags := p.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse program file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode program file %s: %w", filename, diags)
	}

	if root.Version != nil {
		if *root.Version > program.DocumentVersion {
			return fmt.Errorf("program file %s: unsupported version %d", filename, *root.Version)
		}
		doc.Version = *root.Version
	}

	if root.View != nil {
		view, diags := root.View.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("program file %s: view: %w", filename, diags)
		}
		if !view.IsNull() {
			if !doc.View.IsNull() {
				return fmt.Errorf("program file %s: view is already set by another file", filename)
			}
			doc.View = view
		}
	}

	for _, b := range root.Boxes {
		if b.Type == "" {
			return fmt.Errorf("program file %s: box %q has an empty type", filename, b.ID)
		}
		doc.Boxes = append(doc.Boxes, program.BoxRecord{ID: b.ID, Type: b.Type, X: b.X, Y: b.Y})
	}
	for _, w := range root.Wires {
		doc.Wires = append(doc.Wires, program.WireRecord{
			ID: w.ID, SrcBox: w.SrcBox, SrcPlug: w.SrcPlug, DestBox: w.DestBox, DestPlug: w.DestPlug,
		})
	}
	return nil
}
