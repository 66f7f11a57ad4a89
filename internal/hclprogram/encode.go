package hclprogram

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/fsutil"
	"github.com/specialistvlad/boxwire/internal/program"
)

// Encode renders doc as HCL.
func Encode(doc program.Document) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("version", cty.NumberIntVal(int64(doc.Version)))
	if !doc.View.IsNull() {
		if !doc.View.IsWhollyKnown() {
			return nil, fmt.Errorf("encode program: view contains unknown values")
		}
		body.SetAttributeValue("view", doc.View)
	}

	for _, b := range doc.Boxes {
		body.AppendNewline()
		bb := body.AppendNewBlock("box", []string{b.ID}).Body()
		bb.SetAttributeValue("type", cty.StringVal(b.Type))
		bb.SetAttributeValue("x", cty.NumberFloatVal(b.X))
		bb.SetAttributeValue("y", cty.NumberFloatVal(b.Y))
	}
	for _, w := range doc.Wires {
		body.AppendNewline()
		wb := body.AppendNewBlock("wire", []string{w.ID}).Body()
		wb.SetAttributeValue("src_box", cty.StringVal(w.SrcBox))
		wb.SetAttributeValue("src_plug", cty.StringVal(w.SrcPlug))
		wb.SetAttributeValue("dest_box", cty.StringVal(w.DestBox))
		wb.SetAttributeValue("dest_plug", cty.StringVal(w.DestPlug))
	}
	return hclwrite.Format(f.Bytes()), nil
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
