package sink

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/adforge/pkg/creative"
)

// glyphWidth is the average glyph advance in em used to estimate wrapping
// when no font metrics are available.
const glyphWidth = 0.55

// cropMarkRatio sizes crop marks relative to min(width, height).
const cropMarkRatio = 0.03

// element is one drawable item in paint order.
type element struct {
	z     int
	image *creative.ImagePlacement
	text  *creative.TextPlacement
}

// paintOrder merges images and texts, sorted by z-index. Ties keep images
// before texts and declaration order.
func paintOrder(v *creative.LayoutVariation) []element {
	out := make([]element, 0, len(v.Images)+len(v.Texts))
	for i := range v.Images {
		out = append(out, element{z: v.Images[i].ZIndex, image: &v.Images[i]})
	}
	for i := range v.Texts {
		out = append(out, element{z: v.Texts[i].ZIndex, text: &v.Texts[i]})
	}
	slices.SortStableFunc(out, func(a, b element) int { return a.z - b.z })
	return out
}

// placeholderColor picks the fill used for an image without pixels.
func placeholderColor(p creative.Palette, img creative.ImagePlacement, index int) string {
	if img.Hero {
		if len(p.Secondary) > 0 && p.Secondary[0] != "" {
			return p.Secondary[0]
		}
		return p.Primary
	}
	pool := append(append([]string(nil), p.Accent...), p.Neutral...)
	pool = slices.DeleteFunc(pool, func(c string) bool { return c == "" })
	if len(pool) == 0 {
		return p.Primary
	}
	return pool[index%len(pool)]
}

// wrapEstimate breaks text into lines that fit width at the given font size
// using the average glyph advance.
func wrapEstimate(text string, width, size float64) []string {
	perLine := int(width / (size * glyphWidth))
	if perLine < 1 {
		perLine = 1
	}
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(line.String())
		if n > 0 && n+1+utf8.RuneCountInString(word) > perLine {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// alignFactor maps a text alignment to the anchor fraction of the box width.
func alignFactor(align string) float64 {
	switch align {
	case "center":
		return 0.5
	case "right":
		return 1
	default:
		return 0
	}
}

func hasEffect(effects []string, name string) bool {
	return slices.Contains(effects, name)
}
