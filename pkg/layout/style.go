package layout

import (
	"strings"

	"github.com/matzehuels/adforge/pkg/creative"
)

// Style names a visual treatment.
type Style string

// Built-in styles.
const (
	StyleMinimal Style = "minimal"
	StyleBold    Style = "bold"
	StyleElegant Style = "elegant"
	StyleDefault Style = "default"
)

// DefaultStyles are composed when a generate request names none.
var DefaultStyles = []Style{StyleMinimal, StyleBold, StyleElegant}

// ParseStyle normalizes a user-supplied style name.
func ParseStyle(s string) Style {
	return Style(strings.ToLower(strings.TrimSpace(s)))
}

// PaletteFunc derives a layout palette from the brand palette. It must not
// modify its argument.
type PaletteFunc func(brand creative.Palette) creative.Palette

// Policy holds every style-dependent composition parameter.
type Policy struct {
	// Hero is the hero rectangle as fractions of the canvas.
	Hero creative.Rect

	// HeadlineScale multiplies the headline font size.
	HeadlineScale float64

	// HeadlineWeight is used when the brand typography names none.
	HeadlineWeight int

	Align           string
	HeroFilters     []string
	HeadlineEffects []string
	Palette         PaletteFunc

	// Description is quoted in the rationale.
	Description string
}

// Policies maps styles to their policy.
type Policies map[Style]Policy

// DefaultPolicies returns the built-in style table.
func DefaultPolicies() Policies {
	return Policies{
		StyleMinimal: {
			Hero:           creative.Rect{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.6},
			HeadlineScale:  1,
			HeadlineWeight: 500,
			Align:          "left",
			Palette:        minimalPalette,
			Description:    "Centered inset hero with generous whitespace and a softened palette.",
		},
		StyleBold: {
			Hero:            creative.Rect{X: 0, Y: 0, Width: 1, Height: 0.7},
			HeadlineScale:   1.2,
			HeadlineWeight:  800,
			Align:           "left",
			HeroFilters:     []string{"saturate"},
			HeadlineEffects: []string{"shadow"},
			Palette:         boldPalette,
			Description:     "Full-bleed hero with an oversized headline on the brand primary color.",
		},
		StyleElegant: {
			Hero:            creative.Rect{X: 0.05, Y: 0.05, Width: 0.9, Height: 0.65},
			HeadlineScale:   1,
			HeadlineWeight:  400,
			Align:           "center",
			HeadlineEffects: []string{"letter-spacing"},
			Palette:         elegantPalette,
			Description:     "Near-full-bleed hero with centered type and a muted palette.",
		},
		StyleDefault: defaultPolicy(),
	}
}

func defaultPolicy() Policy {
	return Policy{
		Hero:           creative.Rect{X: 0.05, Y: 0.05, Width: 0.9, Height: 0.65},
		HeadlineScale:  1,
		HeadlineWeight: 600,
		Align:          "left",
		Palette:        creative.Palette.Clone,
		Description:    "Near-full-bleed hero with the brand palette unchanged.",
	}
}

// Lookup returns the policy for s, falling back to the default policy for
// unknown styles.
func (p Policies) Lookup(s Style) Policy {
	if pol, ok := p[ParseStyle(string(s))]; ok {
		return pol
	}
	if pol, ok := p[StyleDefault]; ok {
		return pol
	}
	return defaultPolicy()
}
