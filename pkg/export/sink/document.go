package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
)

// DocumentFormat marks a document envelope produced by [RenderDocument].
const DocumentFormat = "adforge-document"

// DocumentVersion is the current envelope version.
const DocumentVersion = 1

// DocumentContentType is the media type of the document envelope.
const DocumentContentType = "application/vnd.adforge.document+json"

// Metadata describes a document for catalogs and print shops.
type Metadata struct {
	Title    string    `json:"title,omitempty"`
	Author   string    `json:"author,omitempty"`
	Subject  string    `json:"subject,omitempty"`
	Keywords []string  `json:"keywords,omitempty"`
	Created  time.Time `json:"created,omitzero"`
}

// Document is the self-describing print envelope. It carries the layout and
// the page rendered as SVG with the same print marks.
type Document struct {
	Format       string                    `json:"format"`
	Version      int                       `json:"version"`
	Metadata     Metadata                  `json:"metadata"`
	ColorSpace   string                    `json:"colorSpace,omitempty"`
	ColorProfile string                    `json:"colorProfile,omitempty"`
	DPI          int                       `json:"dpi"`
	Trim         creative.Size             `json:"trim"`
	Bleed        float64                   `json:"bleed"`
	CropMarks    bool                      `json:"cropMarks"`
	Channel      *channel.Spec             `json:"channel,omitempty"`
	Settings     json.RawMessage           `json:"settings,omitempty"`
	Layout       *creative.LayoutVariation `json:"layout"`
	SVG          string                    `json:"svg"`
}

// DocumentOption configures document rendering.
type DocumentOption func(*docRenderer)

type docRenderer struct {
	meta         Metadata
	dpi          int
	colorSpace   string
	colorProfile string
	bleed        float64
	cropMarks    bool
	spec         *channel.Spec
	settings     any
}

// WithMetadata sets the document metadata.
func WithMetadata(m Metadata) DocumentOption { return func(r *docRenderer) { r.meta = m } }

// WithDPI records the output resolution. The default is 72.
func WithDPI(dpi int) DocumentOption {
	return func(r *docRenderer) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}

// WithColor records the color space and ICC profile name.
func WithColor(space, profile string) DocumentOption {
	return func(r *docRenderer) { r.colorSpace, r.colorProfile = space, profile }
}

// WithPrintMarks adds bleed in pixels and optional crop marks to the page.
func WithPrintMarks(bleed float64, cropMarks bool) DocumentOption {
	return func(r *docRenderer) { r.bleed, r.cropMarks = max(bleed, 0), cropMarks }
}

// WithChannel embeds the target channel spec.
func WithChannel(spec channel.Spec) DocumentOption {
	return func(r *docRenderer) { r.spec = &spec }
}

// WithSettings embeds the export settings that produced the document. The
// value must encode as JSON.
func WithSettings(v any) DocumentOption { return func(r *docRenderer) { r.settings = v } }

// RenderDocument wraps v in a [Document] envelope encoded as indented JSON.
func RenderDocument(v *creative.LayoutVariation, opts ...DocumentOption) ([]byte, error) {
	r := docRenderer{dpi: 72}
	for _, opt := range opts {
		opt(&r)
	}
	doc := Document{
		Format:       DocumentFormat,
		Version:      DocumentVersion,
		Metadata:     r.meta,
		ColorSpace:   r.colorSpace,
		ColorProfile: r.colorProfile,
		DPI:          r.dpi,
		Trim:         creative.Size{Width: v.Width, Height: v.Height},
		Bleed:        r.bleed,
		CropMarks:    r.cropMarks,
		Channel:      r.spec,
		Layout:       v,
		SVG:          string(RenderSVG(v, r.svgOptions()...)),
	}
	if r.settings != nil {
		raw, err := json.Marshal(r.settings)
		if err != nil {
			return nil, fmt.Errorf("document: settings: %w", err)
		}
		doc.Settings = raw
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return data, nil
}

// PageSVG renders the page exactly as embedded by [RenderDocument].
func PageSVG(v *creative.LayoutVariation, opts ...DocumentOption) []byte {
	r := docRenderer{dpi: 72}
	for _, opt := range opts {
		opt(&r)
	}
	return RenderSVG(v, r.svgOptions()...)
}

func (r *docRenderer) svgOptions() []SVGOption {
	opts := []SVGOption{WithBleed(r.bleed), WithTitle(r.meta.Title), WithDescription(r.meta.Subject)}
	if r.cropMarks {
		opts = append(opts, WithCropMarks())
	}
	return opts
}

// ReadDocument decodes an envelope written by [RenderDocument].
func ReadDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	if doc.Format != DocumentFormat {
		return nil, fmt.Errorf("document: unexpected format %q", doc.Format)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("document: unsupported version %d", doc.Version)
	}
	if doc.Layout == nil {
		return nil, fmt.Errorf("document: missing layout")
	}
	return &doc, nil
}
