// Package palette provides the color arithmetic shared by layout composition
// and scoring: hex parsing, HSL adjustments, perceptual distance and WCAG
// contrast. Colors travel through the rest of the system as hex strings.
package palette

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Parse reads a "#rgb" or "#rrggbb" string. A missing leading '#' is
// tolerated.
func Parse(hex string) (colorful.Color, bool) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return colorful.Color{}, false
	}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 3 && len(hex) != 6 {
		return colorful.Color{}, false
	}
	for _, r := range hex {
		if !isHexDigit(r) {
			return colorful.Color{}, false
		}
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// Valid reports whether hex parses as a color.
func Valid(hex string) bool {
	_, ok := Parse(hex)
	return ok
}

// Lighten raises HSL lightness by amount (0..1). Unparseable input is
// returned unchanged.
func Lighten(hex string, amount float64) string {
	return adjust(hex, func(h, s, l float64) (float64, float64, float64) {
		return h, s, l + amount
	})
}

// Darken lowers HSL lightness by amount.
func Darken(hex string, amount float64) string {
	return Lighten(hex, -amount)
}

// Desaturate lowers HSL saturation by amount (0..1). Unparseable input is
// returned unchanged.
func Desaturate(hex string, amount float64) string {
	return adjust(hex, func(h, s, l float64) (float64, float64, float64) {
		return h, s - amount, l
	})
}

func adjust(hex string, f func(h, s, l float64) (float64, float64, float64)) string {
	c, ok := Parse(hex)
	if !ok {
		return hex
	}
	h, s, l := f(c.Hsl())
	return colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped().Hex()
}

// Distance is the CIE76 distance in Lab space, roughly 0 for identical and
// 1 for black versus white. ok is false if either color does not parse.
func Distance(a, b string) (d float64, ok bool) {
	ca, okA := Parse(a)
	cb, okB := Parse(b)
	if !okA || !okB {
		return 0, false
	}
	return ca.DistanceLab(cb), true
}

// Nearest returns the smallest distance from hex to any of candidates.
// It returns +Inf if nothing parses.
func Nearest(hex string, candidates []string) float64 {
	best := math.Inf(1)
	for _, c := range candidates {
		if d, ok := Distance(hex, c); ok && d < best {
			best = d
		}
	}
	return best
}

// Luminance is the WCAG relative luminance of c.
func Luminance(c colorful.Color) float64 {
	r, g, b := c.Clamped().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Contrast returns the WCAG contrast ratio between two colors, from 1 to 21.
// Unparseable input yields 1.
func Contrast(a, b string) float64 {
	ca, okA := Parse(a)
	cb, okB := Parse(b)
	if !okA || !okB {
		return 1
	}
	la, lb := Luminance(ca), Luminance(cb)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// HighestContrast returns the candidate with the best contrast against bg.
// With no parseable candidate it picks white or black.
func HighestContrast(bg string, candidates []string) string {
	best, bestRatio := "", 0.0
	for _, c := range candidates {
		if !Valid(c) {
			continue
		}
		if r := Contrast(bg, c); r > bestRatio {
			best, bestRatio = c, r
		}
	}
	if best != "" {
		return best
	}
	if Contrast(bg, "#ffffff") >= Contrast(bg, "#000000") {
		return "#ffffff"
	}
	return "#000000"
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
