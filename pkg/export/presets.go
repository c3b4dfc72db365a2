package export

import (
	"maps"
	"slices"

	"github.com/matzehuels/adforge/pkg/errors"
)

// Preset is a named export configuration without a channel.
type Preset struct {
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
	Config      Config `json:"config" toml:"config"`
}

// Presets is an immutable set of presets keyed by name. Build one with
// [DefaultPresets] or [NewPresets] and inject it where needed.
type Presets struct {
	byName map[string]Preset
}

// NewPresets builds a preset set. Later entries replace earlier ones with
// the same name.
func NewPresets(ps ...Preset) (*Presets, error) {
	out := &Presets{byName: make(map[string]Preset, len(ps))}
	for _, p := range ps {
		if p.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "preset name cannot be empty")
		}
		if p.Config.Compression < 0 || p.Config.Compression > 100 {
			return nil, errors.New(errors.ErrCodeInvalidExportConfig, "preset %s: compression must be between 0 and 100", p.Name)
		}
		if p.Config.Quality != "" && !p.Config.Quality.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidExportConfig, "preset %s: unknown quality %q", p.Name, p.Config.Quality)
		}
		out.byName[p.Name] = p
	}
	return out, nil
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() *Presets {
	p, _ := NewPresets(
		Preset{
			Name:        "social-web",
			Description: "Preview-quality web graphics with light compression",
			Config:      Config{Quality: QualityPreview, Compression: 20, ColorProfile: ProfileSRGB},
		},
		Preset{
			Name:        "print-production",
			Description: "Full-resolution print files with bleed, crop marks and FOGRA39",
			Config: Config{
				Quality:          QualityProduction,
				IncludeBleed:     true,
				IncludeCropMarks: true,
				ColorProfile:     ProfileFOGRA39,
			},
		},
		Preset{
			Name:        "review-draft",
			Description: "Small, heavily compressed drafts for review rounds",
			Config:      Config{Quality: QualityDraft, Compression: 60},
		},
	)
	return p
}

// With returns a new set with extra presets added or replaced.
func (p *Presets) With(extra ...Preset) (*Presets, error) {
	all := slices.Collect(maps.Values(p.byName))
	return NewPresets(append(all, extra...)...)
}

// Lookup returns the named preset or a NOT_FOUND error.
func (p *Presets) Lookup(name string) (Preset, error) {
	ps, ok := p.byName[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeNotFound, "unknown export preset: %s", name)
	}
	return ps, nil
}

// Names returns preset names in sorted order.
func (p *Presets) Names() []string {
	return slices.Sorted(maps.Keys(p.byName))
}

// All returns the presets sorted by name.
func (p *Presets) All() []Preset {
	out := make([]Preset, 0, len(p.byName))
	for _, name := range p.Names() {
		out = append(out, p.byName[name])
	}
	return out
}

// Apply returns the named preset's configuration targeted at ch. The
// keyword slice is copied so callers may modify the result.
func (p *Presets) Apply(name, ch string) (Config, error) {
	ps, err := p.Lookup(name)
	if err != nil {
		return Config{}, err
	}
	cfg := ps.Config
	cfg.Channel = ch
	if cfg.Quality == "" {
		cfg.Quality = QualityPreview
	}
	cfg.Metadata.Keywords = slices.Clone(cfg.Metadata.Keywords)
	return cfg, nil
}
