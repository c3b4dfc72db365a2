package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/adforge/pkg/creative"
)

type variations struct {
	Variations []*creative.LayoutVariation `json:"variations"`
}

// WriteVariations encodes vs as {"variations": [...]} and writes it to w.
// The output can be re-imported with [ReadVariations].
func WriteVariations(vs []*creative.LayoutVariation, w io.Writer) error {
	if vs == nil {
		vs = []*creative.LayoutVariation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(variations{Variations: vs}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportVariations writes vs to a JSON file at path.
// This is a convenience wrapper around [WriteVariations] for file-based output.
func ExportVariations(vs []*creative.LayoutVariation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteVariations(vs, f)
}
