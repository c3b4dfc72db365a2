// Package export turns composed layout variations into stored files.
//
// A [Renderer] performs one export: it validates a [Config], dispatches on
// the effective format class to a sink in [sink], and stores the bytes in an
// [artifact.Store]. An [Orchestrator] sequences many exports into a
// [BatchResult], optionally bundling successes into a zip archive.
//
// Exports never panic or return errors to the caller: every problem becomes a
// failed [Result] so batches always return a complete result set.
package export

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/export/sink"
	"github.com/matzehuels/adforge/pkg/observability"
)

// Content types for exported files.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeSVG  = "image/svg+xml"
	ContentTypePDF  = "application/pdf"
	ContentTypeZip  = "application/zip"
)

// Renderer exports single layouts. It is safe for concurrent use when its
// store is.
type Renderer struct {
	registry  *channel.Registry
	store     artifact.Store
	now       func() time.Time
	logger    *log.Logger
	nativePDF bool
	images    map[string]image.Image
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithClock sets the time source used for filenames and document dates.
func WithClock(now func() time.Time) Option { return func(r *Renderer) { r.now = now } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithNativePDF renders document exports as real PDFs through rsvg-convert
// when it is installed. Without it, or when the converter is missing,
// documents are written as JSON envelopes.
func WithNativePDF(enabled bool) Option { return func(r *Renderer) { r.nativePDF = enabled } }

// WithAssetImages supplies decoded asset pixels for raster exports.
func WithAssetImages(images map[string]image.Image) Option {
	return func(r *Renderer) { r.images = images }
}

// NewRenderer creates a renderer. A nil store keeps artifacts in memory.
func NewRenderer(reg *channel.Registry, store artifact.Store, opts ...Option) *Renderer {
	if store == nil {
		store = artifact.NewMemory()
	}
	r := &Renderer{
		registry: reg,
		store:    store,
		now:      time.Now,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// clock returns the current time in UTC truncated to the second, so dates
// agree across filenames, documents and archives and encode at a fixed
// width.
func (r *Renderer) clock() time.Time { return r.now().UTC().Truncate(time.Second) }

// Registry returns the channel registry the renderer validates against.
func (r *Renderer) Registry() *channel.Registry { return r.registry }

// Store returns the artifact store.
func (r *Renderer) Store() artifact.Store { return r.store }

// Export renders v with cfg and stores the file. The result is always in a
// terminal state.
func (r *Renderer) Export(ctx context.Context, v *creative.LayoutVariation, cfg Config) Result {
	res, _ := r.export(ctx, v, cfg)
	return res
}

// export is Export that also returns the rendered bytes on success.
func (r *Renderer) export(ctx context.Context, v *creative.LayoutVariation, cfg Config) (Result, []byte) {
	res := Result{Status: StatusPending, Channel: cfg.Channel}
	if v == nil {
		res.fail(errors.New(errors.ErrCodeInvalidInput, "layout is required"))
		return res, nil
	}
	res.LayoutID = v.ID

	if err := cfg.Validate(r.registry); err != nil {
		res.fail(err)
		r.logger.Warn("export rejected", "layout", v.ID, "channel", cfg.Channel, "error", err)
		return res, nil
	}
	spec, _ := r.registry.Lookup(cfg.Channel)
	format := cfg.EffectiveFormat(spec)
	res.Format = string(format)
	now := r.clock()

	start := time.Now()
	observability.Pipeline().OnExportStart(ctx, cfg.Channel, res.Format)
	res.Status = StatusRendering

	// Layouts may be exported to any channel; the output always has the
	// target channel's canvas.
	data, contentType, err := r.render(ctx, v.Resized(spec.Width, spec.Height), cfg, spec, format, now)
	if err == nil {
		err = ctx.Err()
		if err != nil {
			err = errors.Wrap(errors.ErrCodeCanceled, err, "export canceled")
		}
	}
	if err == nil {
		res.Filename = Filename(v.Name, cfg.Channel, now, format.Extension())
		var ref artifact.Ref
		ref, err = r.store.Put(ctx, res.Filename, contentType, data)
		if err == nil {
			res.Status = StatusSucceeded
			res.Success = true
			res.ContentType = contentType
			res.Size = len(data)
			res.Artifact = &ref
		}
	}
	if err != nil {
		res.fail(err)
		res.Filename = ""
		data = nil
	}

	d := time.Since(start)
	observability.Pipeline().OnExportComplete(ctx, cfg.Channel, res.Format, res.Size, d, err)
	if err != nil {
		r.logger.Warn("export failed", "layout", v.ID, "channel", cfg.Channel, "format", format, "error", err)
	} else {
		r.logger.Debug("exported", "layout", v.ID, "file", res.Filename, "bytes", res.Size, "duration", d)
	}
	return res, data
}

func (r *Renderer) render(ctx context.Context, v *creative.LayoutVariation, cfg Config, spec channel.Spec, format channel.Format, now time.Time) ([]byte, string, error) {
	switch format.Class() {
	case channel.ClassRaster:
		data, err := sink.RenderRaster(v,
			sink.WithRasterFormat(format),
			sink.WithScale(cfg.Quality.Scale()),
			sink.WithQuality(cfg.JPEGQuality()),
			sink.WithPNGCompression(cfg.PNGCompression()),
			sink.WithImages(r.images),
		)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		if format == channel.FormatPNG {
			return data, ContentTypePNG, nil
		}
		return data, ContentTypeJPEG, nil

	case channel.ClassVector:
		opts := []sink.SVGOption{sink.WithTitle(cfg.Metadata.Title), sink.WithDescription(cfg.Metadata.Description)}
		if b := cfg.BleedPixels(spec); b > 0 {
			opts = append(opts, sink.WithBleed(b))
		}
		if cfg.IncludeCropMarks {
			opts = append(opts, sink.WithCropMarks())
		}
		return sink.RenderSVG(v, opts...), ContentTypeSVG, nil

	case channel.ClassDocument:
		opts := []sink.DocumentOption{
			sink.WithMetadata(sink.Metadata{
				Title:    cfg.Metadata.Title,
				Author:   cfg.Metadata.Author,
				Subject:  cfg.Metadata.Description,
				Keywords: cfg.Metadata.Keywords,
				Created:  now,
			}),
			sink.WithDPI(spec.DPI),
			sink.WithColor(string(spec.ColorSpace), cfg.EffectiveProfile(spec)),
			sink.WithPrintMarks(cfg.BleedPixels(spec), cfg.IncludeCropMarks),
			sink.WithChannel(spec),
			sink.WithSettings(cfg),
		}
		if r.nativePDF {
			if sink.HasPDFConverter() {
				pdf, err := sink.ToPDF(ctx, sink.PageSVG(v, opts...))
				if err != nil {
					return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "convert to pdf")
				}
				return pdf, ContentTypePDF, nil
			}
			r.logger.Debug("rsvg-convert not found, writing document envelope", "layout", v.ID)
		}
		data, err := sink.RenderDocument(v, opts...)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "render document")
		}
		return data, sink.DocumentContentType, nil

	case channel.ClassVideo:
		data, err := sink.RenderVideo(v)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "render video placeholder")
		}
		return data, sink.VideoContentType, nil

	default:
		return nil, "", errors.New(errors.ErrCodeUnsupportedFileFormat, "unsupported file format %q", format)
	}
}
