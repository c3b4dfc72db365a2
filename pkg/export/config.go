package export

import (
	"image/png"
	"slices"
	"strings"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/errors"
)

// Quality is the export quality tier.
type Quality string

const (
	QualityDraft      Quality = "draft"
	QualityPreview    Quality = "preview"
	QualityProduction Quality = "production"
)

// Qualities lists the tiers from lowest to highest.
var Qualities = []Quality{QualityDraft, QualityPreview, QualityProduction}

// Scale returns the raster scale factor for q. Unknown tiers render at 1.
func (q Quality) Scale() float64 {
	switch q {
	case QualityDraft:
		return 0.25
	case QualityPreview:
		return 0.5
	default:
		return 1
	}
}

// Valid reports whether q is a known tier.
func (q Quality) Valid() bool { return slices.Contains(Qualities, q) }

// Color profiles recorded on documents.
const (
	ProfileSRGB    = "sRGB"
	ProfileFOGRA39 = "FOGRA39"
)

// BleedMM is the print bleed on every side of the trim box.
const BleedMM = 3.0

// Metadata is embedded into document exports.
type Metadata struct {
	Title       string   `json:"title,omitempty" toml:"title"`
	Author      string   `json:"author,omitempty" toml:"author"`
	Description string   `json:"description,omitempty" toml:"description"`
	Keywords    []string `json:"keywords,omitempty" toml:"keywords"`
	Copyright   string   `json:"copyright,omitempty" toml:"copyright"`
}

// Config describes one export of one layout.
type Config struct {
	Channel          string         `json:"channel" toml:"channel"`
	Quality          Quality        `json:"quality" toml:"quality"`
	IncludeBleed     bool           `json:"includeBleed,omitempty" toml:"include_bleed"`
	IncludeCropMarks bool           `json:"includeCropMarks,omitempty" toml:"include_crop_marks"`
	ColorProfile     string         `json:"colorProfile,omitempty" toml:"color_profile"`
	Compression      int            `json:"compression" toml:"compression"` // 0-100
	Format           channel.Format `json:"format,omitempty" toml:"format"`
	Metadata         Metadata       `json:"metadata,omitempty" toml:"metadata"`
}

// Validate checks the configuration against reg before any rendering.
// An unknown channel fails with UNKNOWN_CHANNEL; every other problem fails
// with INVALID_EXPORT_CONFIG.
func (c Config) Validate(reg *channel.Registry) error {
	if c.Compression < 0 || c.Compression > 100 {
		return errors.New(errors.ErrCodeInvalidExportConfig, "compression must be between 0 and 100 (got %d)", c.Compression)
	}
	if !c.Quality.Valid() {
		return errors.New(errors.ErrCodeInvalidExportConfig, "unknown quality %q (must be draft, preview or production)", c.Quality)
	}
	if c.Quality == QualityProduction && strings.TrimSpace(c.Metadata.Title) == "" {
		return errors.New(errors.ErrCodeInvalidExportConfig, "production exports require a metadata title")
	}
	if _, err := reg.Lookup(c.Channel); err != nil {
		return err
	}
	return nil
}

// EffectiveFormat is the override format, or the channel's own.
func (c Config) EffectiveFormat(spec channel.Spec) channel.Format {
	if c.Format != "" {
		return channel.Format(strings.ToLower(string(c.Format)))
	}
	return spec.Format
}

// EffectiveProfile is the configured color profile, or the default for the
// channel's color space.
func (c Config) EffectiveProfile(spec channel.Spec) string {
	if c.ColorProfile != "" {
		return c.ColorProfile
	}
	if spec.ColorSpace == channel.CMYK {
		return ProfileFOGRA39
	}
	return ProfileSRGB
}

// JPEGQuality maps compression to an encoder quality in 1..100.
func (c Config) JPEGQuality() int { return max(1, 100-c.Compression) }

// PNGCompression maps compression to a PNG encoder level.
func (c Config) PNGCompression() png.CompressionLevel {
	switch {
	case c.Compression == 0:
		return png.NoCompression
	case c.Compression <= 50:
		return png.BestSpeed
	case c.Compression <= 80:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// BleedPixels is the bleed width in canvas pixels at the channel's DPI, or 0
// when bleed is off.
func (c Config) BleedPixels(spec channel.Spec) float64 {
	if !c.IncludeBleed {
		return 0
	}
	return BleedMM / 25.4 * float64(spec.DPI)
}
