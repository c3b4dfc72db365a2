package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/observability"
)

// Batch modes reported to observability hooks.
const (
	ModeFormats = "formats"
	ModeProject = "project"
)

// DefaultProjectName names project archives when no name is given.
const DefaultProjectName = "project"

// ProjectOptions configures a multi-layout export. Every layout is exported
// to its own channel with the same format and quality.
type ProjectOptions struct {
	Name        string         `json:"name,omitempty"`
	Quality     Quality        `json:"quality"`
	Format      channel.Format `json:"format,omitempty"`
	Compression int            `json:"compression"`
	Metadata    Metadata       `json:"metadata,omitempty"`
	// ColorProfile is used for print channels. Empty means FOGRA39.
	ColorProfile string `json:"colorProfile,omitempty"`
	// NoArchive skips the combined archive.
	NoArchive bool `json:"noArchive,omitempty"`
}

// Orchestrator runs batches of exports sequentially.
type Orchestrator struct {
	renderer *Renderer
}

// NewOrchestrator creates an orchestrator that exports with r.
func NewOrchestrator(r *Renderer) *Orchestrator {
	return &Orchestrator{renderer: r}
}

type item struct {
	v   *creative.LayoutVariation
	cfg Config
}

// ExportFormats exports one layout once per configuration. When more than
// one export succeeds the files are also bundled into a zip archive.
func (o *Orchestrator) ExportFormats(ctx context.Context, v *creative.LayoutVariation, cfgs []Config) BatchResult {
	items := make([]item, len(cfgs))
	for i, cfg := range cfgs {
		items[i] = item{v: v, cfg: cfg}
	}
	name := DefaultProjectName
	if v != nil {
		name = v.Name
	}
	return o.run(ctx, ModeFormats, name, items, true)
}

// ExportProject exports many layouts, each to its own channel. Print
// channels get bleed, crop marks and the print color profile.
func (o *Orchestrator) ExportProject(ctx context.Context, layouts []*creative.LayoutVariation, opts ProjectOptions) BatchResult {
	items := make([]item, len(layouts))
	for i, v := range layouts {
		items[i] = item{v: v, cfg: o.ProjectConfig(v, opts)}
	}
	name := opts.Name
	if name == "" {
		name = DefaultProjectName
	}
	return o.run(ctx, ModeProject, name, items, !opts.NoArchive)
}

// ProjectConfig builds the export configuration for one project layout.
func (o *Orchestrator) ProjectConfig(v *creative.LayoutVariation, opts ProjectOptions) Config {
	cfg := Config{
		Quality:     opts.Quality,
		Compression: opts.Compression,
		Format:      opts.Format,
		Metadata:    opts.Metadata,
	}
	if cfg.Quality == "" {
		cfg.Quality = QualityProduction
	}
	if v == nil {
		return cfg
	}
	cfg.Channel = v.Channel
	if cfg.Metadata.Title == "" {
		cfg.Metadata.Title = v.Name
	}
	if spec, err := o.renderer.registry.Lookup(v.Channel); err == nil && spec.IsPrint() {
		cfg.IncludeBleed = true
		cfg.IncludeCropMarks = true
		cfg.ColorProfile = opts.ColorProfile
		if cfg.ColorProfile == "" {
			cfg.ColorProfile = ProfileFOGRA39
		}
	}
	return cfg
}

func (o *Orchestrator) run(ctx context.Context, mode, name string, items []item, archive bool) BatchResult {
	start := time.Now()
	logger := o.renderer.logger
	batch := BatchResult{Results: make([]Result, 0, len(items))}
	var files []archiveFile

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			// Record everything not yet started so the result set stays complete.
			for _, rest := range items[i:] {
				batch.add(canceled(rest, err))
			}
			logger.Warn("batch canceled", "mode", mode, "done", i, "skipped", len(items)-i)
			break
		}
		res, data := o.renderer.export(ctx, it.v, it.cfg)
		batch.add(res)
		if res.Success {
			files = append(files, archiveFile{name: res.Filename, data: data})
		}
	}

	if archive && batch.SuccessCount > 1 && ctx.Err() == nil {
		ref, err := o.storeArchive(ctx, ArchiveName(name, o.renderer.clock()), files)
		if err != nil {
			batch.ArchiveError = errors.UserMessage(err)
			logger.Warn("archive failed", "mode", mode, "error", err)
		} else {
			batch.Archive = &ref
		}
	}

	d := time.Since(start)
	observability.Pipeline().OnBatchComplete(ctx, mode, batch.SuccessCount, batch.FailureCount, d)
	logger.Info("batch complete", "mode", mode, "succeeded", batch.SuccessCount, "failed", batch.FailureCount, "bytes", batch.TotalSize, "duration", d)
	return batch
}

func canceled(it item, cause error) Result {
	res := Result{Channel: it.cfg.Channel}
	if it.v != nil {
		res.LayoutID = it.v.ID
	}
	res.fail(errors.Wrap(errors.ErrCodeCanceled, cause, "batch canceled before export started"))
	return res
}

type archiveFile struct {
	name string
	data []byte
}

func (o *Orchestrator) storeArchive(ctx context.Context, name string, files []archiveFile) (artifact.Ref, error) {
	data, err := buildArchive(files, o.renderer.clock())
	if err != nil {
		return artifact.Ref{}, errors.Wrap(errors.ErrCodeInternal, err, "build archive")
	}
	return o.renderer.store.Put(ctx, name, ContentTypeZip, data)
}

// buildArchive writes files into a deflated zip. Duplicate names get a
// numeric suffix before the extension.
func buildArchive(files []archiveFile, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int, len(files))
	for _, f := range files {
		name := uniqueName(f.name, seen)
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified.UTC()})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uniqueName(name string, seen map[string]int) string {
	if _, taken := seen[name]; !taken {
		seen[name] = 1
		return name
	}
	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		base, ext = name[:i], name[i:]
	}
	for n := seen[name] + 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, taken := seen[candidate]; !taken {
			seen[name] = n
			seen[candidate] = 1
			return candidate
		}
	}
}
