package layout

import (
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/palette"
)

func mapColors(in []string, f func(string) string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = f(c)
	}
	return out
}

// minimalPalette lightens secondary colors and neutralizes accents.
func minimalPalette(brand creative.Palette) creative.Palette {
	p := brand.Clone()
	p.Secondary = mapColors(brand.Secondary, func(c string) string {
		return palette.Lighten(c, 0.2)
	})
	p.Accent = mapColors(brand.Accent, func(c string) string {
		return palette.Lighten(palette.Desaturate(c, 0.3), 0.1)
	})
	return p
}

// boldPalette puts the primary color behind the copy and picks the neutral
// that reads best on it.
func boldPalette(brand creative.Palette) creative.Palette {
	p := brand.Clone()
	if palette.Valid(brand.Primary) {
		p.Background = brand.Primary
		p.Text = palette.HighestContrast(brand.Primary, brand.Neutral)
	}
	return p
}

// elegantPalette mutes secondary and accent colors, keeping the primary.
func elegantPalette(brand creative.Palette) creative.Palette {
	p := brand.Clone()
	p.Secondary = mapColors(brand.Secondary, func(c string) string {
		return palette.Desaturate(c, 0.2)
	})
	p.Accent = mapColors(brand.Accent, func(c string) string {
		return palette.Desaturate(c, 0.1)
	})
	return p
}
