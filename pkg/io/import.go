package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/layout"
)

// ReadBrief decodes a brief from r.
//
// ReadBrief returns an error if the JSON is malformed, contains unknown
// fields, or names no channel. It does not close r.
func ReadBrief(r io.Reader) (layout.GenerateRequest, error) {
	var req layout.GenerateRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return layout.GenerateRequest{}, fmt.Errorf("decode: %w", err)
	}
	if len(req.Channels) == 0 {
		return layout.GenerateRequest{}, fmt.Errorf("brief names no channels")
	}
	return req, nil
}

// ImportBrief reads a brief file at path.
func ImportBrief(path string) (layout.GenerateRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return layout.GenerateRequest{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBrief(f)
}

// ReadVariations decodes variations from r. Both an object with a
// "variations" array and a bare array are accepted.
//
// Every variation must have an ID and a channel. It does not close r.
func ReadVariations(r io.Reader) ([]*creative.LayoutVariation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var out []*creative.LayoutVariation
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	} else {
		var doc variations
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = doc.Variations
	}

	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("variation %d: null", i)
		}
		if v.ID == "" {
			return nil, fmt.Errorf("variation %d: missing id", i)
		}
		if v.Channel == "" {
			return nil, fmt.Errorf("variation %s: missing channel", v.ID)
		}
	}
	return out, nil
}

// ImportVariations reads a variations file at path.
func ImportVariations(path string) ([]*creative.LayoutVariation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadVariations(f)
}
