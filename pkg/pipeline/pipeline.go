// Package pipeline provides the generate → score → export pipeline for adforge.
//
// This package wires the composer, the scorers and the export orchestrator
// behind one [Runner] so the CLI and the HTTP server behave identically.
// Generated variation sets and judge replies are cached through package
// cache; exports are never cached because every export stores a new
// artifact.
//
// # Stages
//
//  1. Generate: compose one variation per (style, channel) pair and score it
//  2. Export: render variations into channel file formats and store them
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Territory:  territory,
//	    Guidelines: guidelines,
//	    Assets:     assets,
//	    Channels:   []string{"instagram_post", "a4_print"},
//	    Export:     &export.ProjectOptions{Name: "Summer"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Batch.Archive.URL)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/export"
	"github.com/matzehuels/adforge/pkg/layout"
)

// DefaultJudge names the built-in rubric in cache keys.
const DefaultJudge = "rubric"

// MaxPairs bounds the (style, channel) combinations of one request.
const MaxPairs = 64

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Territory  creative.Territory       `json:"territory"`
	Assets     []creative.Asset         `json:"assets,omitempty"`
	Guidelines creative.BrandGuidelines `json:"guidelines"`
	Channels   []string                 `json:"channels"`
	Styles     []layout.Style           `json:"styles,omitempty"`

	// Refresh bypasses the variation cache.
	Refresh bool `json:"refresh,omitempty"`

	// Export, when set, exports every generated variation as one project.
	Export *export.ProjectOptions `json:"export,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Variations are the composed layouts in request order.
	Variations []*creative.LayoutVariation `json:"variations"`

	// Failures lists (style, channel) pairs that could not be composed.
	Failures []layout.Failure `json:"failures,omitempty"`

	// RequestHash is the content hash of the generate request.
	RequestHash string `json:"requestHash"`

	// Batch is set when the run exported its variations.
	Batch *export.BatchResult `json:"batch,omitempty"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cacheInfo"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Variations   int           `json:"variations"`
	Failures     int           `json:"failures"`
	GenerateTime time.Duration `json:"generateTime"`
	ExportTime   time.Duration `json:"exportTime"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool `json:"generateHit"` // Whether the variation set came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Channels) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one channel is required")
	}
	for _, ch := range o.Channels {
		if err := errors.ValidateChannelID(ch); err != nil {
			return err
		}
	}
	if len(o.Styles) == 0 {
		o.Styles = slices.Clone(layout.DefaultStyles)
	}
	for i, s := range o.Styles {
		o.Styles[i] = layout.ParseStyle(string(s))
	}
	if n := len(o.Styles) * len(o.Channels); n > MaxPairs {
		return errors.New(errors.ErrCodeInvalidInput, "too many style/channel combinations: %d (max %d)", n, MaxPairs)
	}
	for i, a := range o.Assets {
		if a.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "asset %d has no id", i)
		}
		if a.Quality != nil && (*a.Quality < 0 || *a.Quality > 100) {
			return errors.New(errors.ErrCodeInvalidInput, "asset %s: quality must be between 0 and 100", a.ID)
		}
	}
	if o.Export != nil && o.Export.Quality != "" && !o.Export.Quality.Valid() {
		return errors.New(errors.ErrCodeInvalidExportConfig, "unknown quality %q", o.Export.Quality)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// GenerateRequest returns the composer request described by o.
func (o *Options) GenerateRequest() layout.GenerateRequest {
	return layout.GenerateRequest{
		Territory:  o.Territory,
		Assets:     o.Assets,
		Guidelines: o.Guidelines,
		Channels:   o.Channels,
		Styles:     o.Styles,
	}
}
