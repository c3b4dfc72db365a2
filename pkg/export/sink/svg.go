package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"slices"

	"github.com/matzehuels/adforge/pkg/creative"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	bleed       float64
	cropMarks   bool
	title       string
	description string
	assetURLs   map[string]string
}

// WithBleed extends the background by px on every side of the trim box.
func WithBleed(px float64) SVGOption { return func(r *svgRenderer) { r.bleed = math.Max(px, 0) } }

// WithCropMarks draws trim marks outside the bleed area.
func WithCropMarks() SVGOption { return func(r *svgRenderer) { r.cropMarks = true } }

// WithTitle sets the document <title>.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// WithDescription sets the document <desc>.
func WithDescription(s string) SVGOption { return func(r *svgRenderer) { r.description = s } }

// WithAssetURLs links placements to asset images. Placements without a URL
// are drawn as palette-colored placeholders.
func WithAssetURLs(urls map[string]string) SVGOption {
	return func(r *svgRenderer) { r.assetURLs = urls }
}

// RenderSVG renders v as an SVG document at the channel's pixel size.
func RenderSVG(v *creative.LayoutVariation, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := float64(v.Width), float64(v.Height)
	pad := r.bleed
	mark := 0.0
	if r.cropMarks {
		mark = cropMarkRatio * math.Min(w, h)
		pad += mark
	}
	totalW, totalH := w+2*pad, h+2*pad

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %s %s" width="%s" height="%s" data-layout="%s">`+"\n",
		num(totalW), num(totalH), num(totalW), num(totalH), html.EscapeString(v.ID))
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	if r.description != "" {
		fmt.Fprintf(&buf, "  <desc>%s</desc>\n", html.EscapeString(r.description))
	}
	renderDefs(&buf, v)

	// Background fills trim plus bleed.
	fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
		num(pad-r.bleed), num(pad-r.bleed), num(w+2*r.bleed), num(h+2*r.bleed), fill(v.Palette.Background, "#ffffff"))

	fmt.Fprintf(&buf, `  <g transform="translate(%s %s)">`+"\n", num(pad), num(pad))
	fmt.Fprintf(&buf, `    <clipPath id="trim"><rect width="%s" height="%s"/></clipPath>`+"\n", num(w), num(h))
	buf.WriteString(`    <g clip-path="url(#trim)">` + "\n")
	secondary := 0
	for _, el := range paintOrder(v) {
		switch {
		case el.image != nil:
			r.renderImage(&buf, v, *el.image, secondary)
			if !el.image.Hero {
				secondary++
			}
		case el.text != nil:
			renderText(&buf, *el.text)
		}
	}
	buf.WriteString("    </g>\n  </g>\n")

	if r.cropMarks {
		renderCropMarks(&buf, pad, w, h, mark)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, v *creative.LayoutVariation) {
	var shadow, saturate bool
	for _, t := range v.Texts {
		shadow = shadow || hasEffect(t.Effects, "shadow")
	}
	for _, img := range v.Images {
		saturate = saturate || slices.Contains(img.Filters, "saturate")
	}
	if !shadow && !saturate {
		return
	}
	buf.WriteString("  <defs>\n")
	if shadow {
		buf.WriteString(`    <filter id="shadow"><feDropShadow dx="2" dy="2" stdDeviation="3" flood-opacity="0.45"/></filter>` + "\n")
	}
	if saturate {
		buf.WriteString(`    <filter id="saturate"><feColorMatrix type="saturate" values="1.3"/></filter>` + "\n")
	}
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderImage(buf *bytes.Buffer, v *creative.LayoutVariation, img creative.ImagePlacement, index int) {
	rc := img.Rect
	attrs := fmt.Sprintf(`x="%s" y="%s" width="%s" height="%s"`, num(rc.X), num(rc.Y), num(rc.Width), num(rc.Height))
	if img.Opacity > 0 && img.Opacity < 1 {
		attrs += fmt.Sprintf(` opacity="%s"`, num(img.Opacity))
	}
	if slices.Contains(img.Filters, "saturate") {
		attrs += ` filter="url(#saturate)"`
	}
	if img.Rotation != 0 {
		attrs += fmt.Sprintf(` transform="rotate(%s %s %s)"`, num(img.Rotation), num(rc.X+rc.Width/2), num(rc.Y+rc.Height/2))
	}

	id := html.EscapeString(img.AssetID)
	if url := r.assetURLs[img.AssetID]; url != "" {
		fmt.Fprintf(buf, `      <image class="asset" data-asset="%s" %s href="%s" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			id, attrs, html.EscapeString(url))
		return
	}
	fmt.Fprintf(buf, `      <rect class="asset placeholder" data-asset="%s" data-role="%s" %s fill="%s"/>`+"\n",
		id, html.EscapeString(string(img.Role)), attrs, fill(placeholderColor(v.Palette, img, index), "#cccccc"))
}

func renderText(buf *bytes.Buffer, t creative.TextPlacement) {
	ts := t.Typography
	size := ts.Size
	if size <= 0 {
		size = 16
	}
	lh := ts.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	anchor := map[string]string{"center": "middle", "right": "end"}[ts.Align]
	if anchor == "" {
		anchor = "start"
	}
	x := t.Rect.X + alignFactor(ts.Align)*t.Rect.Width

	fmt.Fprintf(buf, `      <text class="%s" x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%d" fill="%s" text-anchor="%s"`,
		html.EscapeString(string(t.Role)), num(x), num(t.Rect.Y), html.EscapeString(ts.Family), num(size), max(ts.Weight, 100), fill(ts.Color, "#000000"), anchor)
	if hasEffect(t.Effects, "shadow") {
		buf.WriteString(` filter="url(#shadow)"`)
	}
	if hasEffect(t.Effects, "letter-spacing") {
		buf.WriteString(` letter-spacing="0.05em"`)
	}
	buf.WriteString(">")
	for i, line := range wrapEstimate(t.Content, t.Rect.Width, size) {
		dy := size
		if i > 0 {
			dy = size * lh
		}
		fmt.Fprintf(buf, `<tspan x="%s" dy="%s">%s</tspan>`, num(x), num(dy), html.EscapeString(line))
	}
	buf.WriteString("</text>\n")
}

// renderCropMarks draws two short lines at each trim corner, offset into the
// padding so they never touch the bleed.
func renderCropMarks(buf *bytes.Buffer, pad, w, h, mark float64) {
	buf.WriteString(`  <g class="crop-marks" stroke="#000000" stroke-width="1">` + "\n")
	for _, cx := range []float64{pad, pad + w} {
		for _, cy := range []float64{pad, pad + h} {
			hx := cx - pad
			if cx > pad {
				hx = cx + pad - mark
			}
			vy := cy - pad
			if cy > pad {
				vy = cy + pad - mark
			}
			fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", num(hx), num(cy), num(hx+mark), num(cy))
			fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", num(cx), num(vy), num(cx), num(vy+mark))
		}
	}
	buf.WriteString("  </g>\n")
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		return "0"
	}
	return s
}

func fill(c, def string) string {
	if c == "" {
		return def
	}
	return html.EscapeString(c)
}
