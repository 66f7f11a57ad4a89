package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/boxwire/internal/hclprogram"
	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/yamlprogram"
)

// Program file formats.
const (
	formatHCL  = "hcl"
	formatYAML = "yaml"
)

// formatOf picks the file format from the extension. Directories and
// anything unrecognised are HCL.
func formatOf(path string) string {
	if slices.Contains(yamlprogram.Extensions, strings.ToLower(filepath.Ext(path))) {
		return formatYAML
	}
	return formatHCL
}

func loadProgram(ctx context.Context, path string) (program.Document, error) {
	if formatOf(path) == formatYAML {
		return yamlprogram.Load(ctx, path)
	}
	return hclprogram.Load(ctx, path)
}

func saveProgram(ctx context.Context, path string, doc program.Document) error {
	if formatOf(path) == formatYAML {
		return yamlprogram.Save(ctx, path, doc)
	}
	return hclprogram.Save(ctx, path, doc)
}

// encodeProgram renders doc in the named format and returns its content type.
func encodeProgram(format string, doc program.Document) ([]byte, string, error) {
	switch format {
	case "", formatHCL:
		src, err := hclprogram.Encode(doc)
		return src, "text/plain; charset=utf-8", err
	case formatYAML:
		src, err := yamlprogram.Encode(doc)
		return src, "application/yaml", err
	default:
		return nil, "", fmt.Errorf("unknown program format %q", format)
	}
}
