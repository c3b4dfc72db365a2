// Package pkg provides the core libraries for adforge ad layout generation.
//
// # Overview
//
// adforge turns a creative territory and a set of brand assets into
// channel-specific layout variations, scores them for brand compliance and
// predicted performance, and exports them as print and digital files. The
// pkg directory is organized into four areas:
//
//  1. Domain - creative types, channels, palettes and layout composition
//  2. Scoring - the judgment engine abstraction and the two scorers
//  3. Export - format sinks, presets, batches and artifact storage
//  4. Infrastructure - caching, configuration, errors and observability
//
// # Architecture
//
// The typical data flow through adforge:
//
//	Creative brief (territory + assets + guidelines + channels)
//	         ↓
//	    [layout] package (prioritize assets, compose per style × channel)
//	         ↓
//	    [score] package (compliance via [judge], performance heuristics)
//	         ↓
//	    [export] package (raster, vector, document and video sinks)
//	         ↓
//	    [artifact] store (memory, directory or MongoDB GridFS)
//
// [pipeline] wires these stages behind one Runner so the CLI and the HTTP
// server behave identically.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/adforge/pkg/cache"
//	    "github.com/matzehuels/adforge/pkg/export"
//	    "github.com/matzehuels/adforge/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Territory:  territory,
//	    Guidelines: guidelines,
//	    Assets:     assets,
//	    Channels:   []string{"instagram_post", "a4_print"},
//	    Export:     &export.ProjectOptions{Name: "Summer"},
//	})
//
// # Main Packages
//
// ## Domain
//
// [creative] - Territories, assets, brand guidelines and layout variations.
//
// [channel] - The channel registry: dimensions, DPI, color space and format
// for every publishing surface.
//
// [palette] - Color parsing, contrast and harmony checks used by the composer
// and the compliance rubric.
//
// [layout] - Asset prioritization and per-style composition.
//
// ## Scoring
//
// [judge] - The judgment engine interface with static, chained and HTTP
// implementations.
//
// [score] - Compliance scoring with fallback and performance prediction.
//
// ## Export
//
// [export] - Export configuration, presets, the renderer and the batch
// orchestrator. Format sinks live in export/sink.
//
// [artifact] - Storage for exported files.
//
// ## Infrastructure
//
// [cache] - Variation and judgment caching (null, file and Redis).
//
// [config] - TOML catalogs and environment settings.
//
// [errors] - Coded errors with user messages and HTTP status mapping.
//
// [observability] - Hooks for metrics with a Prometheus implementation.
//
// [io] - JSON import and export of briefs and variations.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//
// [creative]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/creative
// [channel]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/channel
// [palette]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/palette
// [layout]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/layout
// [judge]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/judge
// [score]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/score
// [export]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/export
// [artifact]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/artifact
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/observability
// [io]: https://pkg.go.dev/github.com/matzehuels/adforge/pkg/io
package pkg
