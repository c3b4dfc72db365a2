package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/cache"
	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/export"
	"github.com/matzehuels/adforge/pkg/judge"
	"github.com/matzehuels/adforge/pkg/layout"
	"github.com/matzehuels/adforge/pkg/observability"
	"github.com/matzehuels/adforge/pkg/score"
)

// Cache key types reported to observability hooks.
const (
	keyTypeVariation = "variation"
	keyTypeJudgment  = "judgment"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating wiring and caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Channels *channel.Registry
	Presets  *export.Presets
	Composer *layout.Composer
	Renderer *export.Renderer

	judgeName    string
	orchestrator *export.Orchestrator
}

// RunnerOption configures a [Runner].
type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	channels  *channel.Registry
	presets   *export.Presets
	judge     judge.Judge
	judgeName string
	renderer  []export.Option
	composer  []layout.Option
	store     artifact.Store
}

// WithChannels replaces the built-in channel registry.
func WithChannels(reg *channel.Registry) RunnerOption {
	return func(c *runnerConfig) { c.channels = reg }
}

// WithPresets replaces the built-in export presets.
func WithPresets(p *export.Presets) RunnerOption {
	return func(c *runnerConfig) { c.presets = p }
}

// WithJudge scores layouts with j instead of the built-in rubric. name
// separates cached results of different judges.
func WithJudge(name string, j judge.Judge) RunnerOption {
	return func(c *runnerConfig) { c.judge, c.judgeName = j, name }
}

// WithStore keeps exported files in s. The default is an in-memory store.
func WithStore(s artifact.Store) RunnerOption {
	return func(c *runnerConfig) { c.store = s }
}

// WithRendererOptions passes extra options to the export renderer.
func WithRendererOptions(opts ...export.Option) RunnerOption {
	return func(c *runnerConfig) { c.renderer = append(c.renderer, opts...) }
}

// WithComposerOptions passes extra options to the composer.
func WithComposerOptions(opts ...layout.Option) RunnerOption {
	return func(c *runnerConfig) { c.composer = append(c.composer, opts...) }
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...RunnerOption) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	cfg := runnerConfig{judgeName: DefaultJudge}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.channels == nil {
		cfg.channels = channel.Default()
	}
	if cfg.presets == nil {
		cfg.presets = export.DefaultPresets()
	}
	if cfg.judge == nil {
		cfg.judge = score.Rubric{}
	}

	j := &cachedJudge{inner: cfg.judge, name: cfg.judgeName, cache: c, keyer: keyer}
	composer := layout.NewComposer(cfg.channels,
		score.NewComplianceScorer(j, logger),
		score.NewPredictor(j, logger),
		append([]layout.Option{layout.WithLogger(logger)}, cfg.composer...)...,
	)
	renderer := export.NewRenderer(cfg.channels, cfg.store,
		append([]export.Option{export.WithLogger(logger)}, cfg.renderer...)...,
	)

	return &Runner{
		Cache:        c,
		Keyer:        keyer,
		Logger:       logger,
		Channels:     cfg.channels,
		Presets:      cfg.presets,
		Composer:     composer,
		Renderer:     renderer,
		judgeName:    cfg.judgeName,
		orchestrator: export.NewOrchestrator(renderer),
	}
}

// Execute runs generate and, when opts.Export is set, exports every
// variation as one project.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Generate(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if opts.Export == nil || len(result.Variations) == 0 {
		return result, nil
	}

	exportStart := time.Now()
	batch := r.ExportProject(ctx, result.Variations, *opts.Export)
	result.Batch = &batch
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Info("exported project",
		"succeeded", batch.SuccessCount,
		"failed", batch.FailureCount,
		"duration", result.Stats.ExportTime)
	return result, nil
}

// Generate composes and scores every (style, channel) pair with caching.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	req := opts.GenerateRequest()

	requestHash, err := cache.HashJSON(req)
	if err != nil {
		return nil, fmt.Errorf("hash request: %w", err)
	}
	cacheKey := r.Keyer.VariationKey(requestHash, cache.VariationKeyOpts{
		Channel: strings.Join(opts.Channels, ","),
		Style:   joinStyles(opts.Styles),
		Judge:   r.judgeName,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.GenerateResult
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeVariation)
				return r.newResult(requestHash, &cached, start, true), nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeVariation)
	}

	gen, err := r.Composer.ComposeAll(ctx, req)
	if err != nil {
		return nil, err
	}

	// Partial results are never cached.
	if len(gen.Failures) == 0 {
		if data, err := json.Marshal(gen); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLVariation); err == nil {
				observability.Cache().OnCacheSet(ctx, keyTypeVariation, len(data))
			}
		}
	}

	res := r.newResult(requestHash, gen, start, false)
	r.Logger.Info("generated variations",
		"variations", res.Stats.Variations,
		"failures", res.Stats.Failures,
		"duration", res.Stats.GenerateTime)
	return res, nil
}

func (r *Runner) newResult(hash string, gen *layout.GenerateResult, start time.Time, hit bool) *Result {
	return &Result{
		Variations:  gen.Variations,
		Failures:    gen.Failures,
		RequestHash: hash,
		Stats: Stats{
			Variations:   len(gen.Variations),
			Failures:     len(gen.Failures),
			GenerateTime: time.Since(start),
		},
		CacheInfo: CacheInfo{GenerateHit: hit},
	}
}

// Export renders one variation.
func (r *Runner) Export(ctx context.Context, v *creative.LayoutVariation, cfg export.Config) export.Result {
	return r.Renderer.Export(ctx, v, cfg)
}

// ExportPreset renders one variation to ch with a named preset.
func (r *Runner) ExportPreset(ctx context.Context, v *creative.LayoutVariation, preset, ch string) (export.Result, error) {
	cfg, err := r.Presets.Apply(preset, ch)
	if err != nil {
		return export.Result{}, err
	}
	if cfg.Quality == export.QualityProduction && cfg.Metadata.Title == "" && v != nil {
		cfg.Metadata.Title = v.Name
	}
	return r.Renderer.Export(ctx, v, cfg), nil
}

// ExportFormats renders one variation once per configuration.
func (r *Runner) ExportFormats(ctx context.Context, v *creative.LayoutVariation, cfgs []export.Config) export.BatchResult {
	return r.orchestrator.ExportFormats(ctx, v, cfgs)
}

// ExportProject renders many variations, each to its own channel.
func (r *Runner) ExportProject(ctx context.Context, layouts []*creative.LayoutVariation, opts export.ProjectOptions) export.BatchResult {
	return r.orchestrator.ExportProject(ctx, layouts, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func joinStyles(styles []layout.Style) string {
	parts := make([]string, len(styles))
	for i, s := range styles {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
