// Package channel provides the channel specification registry.
//
// A channel is an output surface with fixed technical requirements: pixel
// dimensions, resolution, color space and output file format. The registry
// is an immutable lookup table built once at startup and injected into the
// composer and the export renderer.
//
//	reg := channel.Default()
//	spec, err := reg.Lookup("instagram_post")
//
// Custom registries are built with [NewRegistry], which validates every spec,
// or derived from an existing one with [Registry.With].
package channel

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
)

// ColorSpace is the channel's target color model.
type ColorSpace string

const (
	RGB  ColorSpace = "RGB"
	CMYK ColorSpace = "CMYK"
)

// Category groups channels by surface type.
type Category string

const (
	Social  Category = "social"
	Print   Category = "print"
	Digital Category = "digital"
	Retail  Category = "retail"
)

// Format is a concrete output file type. Its string value is the file
// extension.
type Format string

const (
	FormatJPG Format = "jpg"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
	FormatMP4 Format = "mp4"
)

// Class is the rendering family of a format.
type Class string

const (
	ClassRaster   Class = "raster"
	ClassVector   Class = "vector"
	ClassDocument Class = "document"
	ClassVideo    Class = "video"
	ClassUnknown  Class = "unknown"
)

// Class returns the rendering family of f.
func (f Format) Class() Class {
	switch f {
	case FormatJPG, FormatPNG:
		return ClassRaster
	case FormatSVG:
		return ClassVector
	case FormatPDF:
		return ClassDocument
	case FormatMP4:
		return ClassVideo
	default:
		return ClassUnknown
	}
}

// Extension returns the filename extension for f, without the dot.
func (f Format) Extension() string { return string(f) }

// Spec is the technical description of one channel.
type Spec struct {
	ID         string     `json:"id" toml:"id"`
	Name       string     `json:"name" toml:"name"`
	Category   Category   `json:"category" toml:"category"`
	Width      int        `json:"width" toml:"width"`
	Height     int        `json:"height" toml:"height"`
	DPI        int        `json:"dpi" toml:"dpi"`
	ColorSpace ColorSpace `json:"colorSpace" toml:"color_space"`
	Format     Format     `json:"format" toml:"format"`
	// SafeArea is the canvas region reserved for the hero's focal content.
	// Headlines are kept out of it.
	SafeArea *creative.Rect `json:"safeArea,omitempty" toml:"safe_area"`
}

// IsPrint reports whether the channel is a print surface.
func (s Spec) IsPrint() bool { return s.Category == Print }

// Validate checks the spec's invariants.
func (s Spec) Validate() error {
	if err := errors.ValidateChannelID(s.ID); err != nil {
		return err
	}
	if s.Width <= 0 || s.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "channel %s: dimensions must be positive (got %dx%d)", s.ID, s.Width, s.Height)
	}
	if s.DPI <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "channel %s: dpi must be positive (got %d)", s.ID, s.DPI)
	}
	if s.Format == "" {
		return errors.New(errors.ErrCodeInvalidInput, "channel %s: format is required", s.ID)
	}
	switch s.ColorSpace {
	case RGB, CMYK:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "channel %s: invalid color space %q (must be RGB or CMYK)", s.ID, s.ColorSpace)
	}
	if s.SafeArea != nil && !s.SafeArea.Within(float64(s.Width), float64(s.Height)) {
		return errors.New(errors.ErrCodeInvalidInput, "channel %s: safe area exceeds canvas", s.ID)
	}
	return nil
}

// Registry maps channel IDs to specs. The zero value is an empty registry.
// A Registry is never mutated after construction and is safe for concurrent use.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds a registry from specs. Duplicate IDs and invalid specs
// are rejected.
func NewRegistry(specs ...Spec) (*Registry, error) {
	m := make(map[string]Spec, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m[s.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate channel id: %s", s.ID)
		}
		m[s.ID] = s
	}
	return &Registry{specs: m}, nil
}

// MustRegistry is like [NewRegistry] but panics on error. Intended for
// package-level tables and tests.
func MustRegistry(specs ...Spec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the spec for id, or an UNKNOWN_CHANNEL error.
func (r *Registry) Lookup(id string) (Spec, error) {
	if r != nil {
		if s, ok := r.specs[id]; ok {
			return s, nil
		}
	}
	return Spec{}, errors.New(errors.ErrCodeUnknownChannel, "unknown channel: %q", id)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, err := r.Lookup(id)
	return err == nil
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.specs)
}

// All returns every spec sorted by category, then ID.
func (r *Registry) All() []Spec {
	if r == nil {
		return nil
	}
	out := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Spec) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// With returns a new registry containing r's specs plus extra. Specs in
// extra replace existing entries with the same ID.
func (r *Registry) With(extra ...Spec) (*Registry, error) {
	merged := make(map[string]Spec, r.Len()+len(extra))
	if r != nil {
		for id, s := range r.specs {
			merged[id] = s
		}
	}
	seen := make(map[string]bool, len(extra))
	for _, s := range extra {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate channel id in overrides: %s", s.ID)
		}
		seen[s.ID] = true
		merged[s.ID] = s
	}
	return &Registry{specs: merged}, nil
}
