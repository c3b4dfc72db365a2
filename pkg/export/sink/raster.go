package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"slices"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/palette"
)

// DefaultJPEGQuality is used when no quality option is given.
const DefaultJPEGQuality = 90

// boldWeight is the lowest weight drawn with the bold face.
const boldWeight = 600

// RasterOption configures raster rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	format      channel.Format
	scale       float64
	quality     int
	compression png.CompressionLevel
	images      map[string]image.Image
}

// WithRasterFormat selects JPEG or PNG encoding. The default is JPEG.
func WithRasterFormat(f channel.Format) RasterOption {
	return func(r *rasterRenderer) { r.format = f }
}

// WithScale multiplies the canvas size. Values <= 0 are ignored.
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithQuality sets the JPEG quality, clamped to 1..100.
func WithQuality(q int) RasterOption {
	return func(r *rasterRenderer) { r.quality = min(max(q, 1), 100) }
}

// WithPNGCompression sets the PNG compression level.
func WithPNGCompression(l png.CompressionLevel) RasterOption {
	return func(r *rasterRenderer) { r.compression = l }
}

// WithImages supplies decoded asset pixels keyed by asset ID.
func WithImages(images map[string]image.Image) RasterOption {
	return func(r *rasterRenderer) { r.images = images }
}

// RenderRaster draws v and encodes it as JPEG or PNG.
func RenderRaster(v *creative.LayoutVariation, opts ...RasterOption) ([]byte, error) {
	r := rasterRenderer{format: channel.FormatJPG, scale: 1, quality: DefaultJPEGQuality, compression: png.DefaultCompression}
	for _, opt := range opts {
		opt(&r)
	}

	var enc imaging.Format
	var encOpts []imaging.EncodeOption
	switch r.format {
	case channel.FormatJPG:
		enc = imaging.JPEG
		encOpts = append(encOpts, imaging.JPEGQuality(r.quality))
	case channel.FormatPNG:
		enc = imaging.PNG
		encOpts = append(encOpts, imaging.PNGCompressionLevel(r.compression))
	default:
		return nil, fmt.Errorf("raster: unsupported format %q", r.format)
	}

	w := max(int(math.Round(float64(v.Width)*r.scale)), 1)
	h := max(int(math.Round(float64(v.Height)*r.scale)), 1)
	dc := gg.NewContext(w, h)

	dc.SetColor(colorOr(v.Palette.Background, "#ffffff"))
	dc.Clear()

	secondary := 0
	for _, el := range paintOrder(v) {
		switch {
		case el.image != nil:
			r.drawImage(dc, v, *el.image, secondary)
			if !el.image.Hero {
				secondary++
			}
		case el.text != nil:
			if err := r.drawText(dc, *el.text); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dc.Image(), enc, encOpts...); err != nil {
		return nil, fmt.Errorf("raster: encode %s: %w", r.format, err)
	}
	return buf.Bytes(), nil
}

func (r *rasterRenderer) rect(rc creative.Rect) (x, y, w, h float64) {
	return rc.X * r.scale, rc.Y * r.scale, rc.Width * r.scale, rc.Height * r.scale
}

func (r *rasterRenderer) drawImage(dc *gg.Context, v *creative.LayoutVariation, img creative.ImagePlacement, index int) {
	x, y, w, h := r.rect(img.Rect)
	iw, ih := int(math.Round(w)), int(math.Round(h))
	if iw <= 0 || ih <= 0 {
		return
	}

	dc.Push()
	defer dc.Pop()
	if img.Rotation != 0 {
		dc.RotateAbout(gg.Radians(img.Rotation), x+w/2, y+h/2)
	}

	if src, ok := r.images[img.AssetID]; ok && src != nil {
		pic := imaging.Fill(src, iw, ih, imaging.Center, imaging.Lanczos)
		if slices.Contains(img.Filters, "saturate") {
			pic = imaging.AdjustSaturation(pic, 30)
		}
		dc.DrawImage(pic, int(math.Round(x)), int(math.Round(y)))
		return
	}

	c, ok := palette.Parse(placeholderColor(v.Palette, img, index))
	if !ok {
		c, _ = palette.Parse("#cccccc")
	}
	alpha := img.Opacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	r8, g8, b8 := c.RGB255()
	dc.SetColor(color.NRGBA{R: r8, G: g8, B: b8, A: uint8(math.Round(alpha * 255))})
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
}

func (r *rasterRenderer) drawText(dc *gg.Context, t creative.TextPlacement) error {
	ts := t.Typography
	size := ts.Size
	if size <= 0 {
		size = 16
	}
	lh := ts.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	face, err := fontFace(ts.Weight >= boldWeight, size*r.scale)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	x, y, w, _ := r.rect(t.Rect)
	ax := alignFactor(ts.Align)
	align := map[string]gg.Align{"center": gg.AlignCenter, "right": gg.AlignRight}[ts.Align]
	anchorX := x + ax*w

	if hasEffect(t.Effects, "shadow") {
		off := math.Max(1, 2*r.scale)
		dc.SetRGBA(0, 0, 0, 0.45)
		dc.DrawStringWrapped(t.Content, anchorX+off, y+off, ax, 0, w, lh, align)
	}
	dc.SetColor(colorOr(ts.Color, "#000000"))
	dc.DrawStringWrapped(t.Content, anchorX, y, ax, 0, w, lh, align)
	return nil
}

var (
	fontsOnce sync.Once
	fontsErr  error
	regular   *truetype.Font
	bold      *truetype.Font
)

// fontFace returns a Go font face at size pixels.
func fontFace(isBold bool, size float64) (font.Face, error) {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	if fontsErr != nil {
		return nil, fmt.Errorf("raster: load fonts: %w", fontsErr)
	}
	f := regular
	if isBold {
		f = bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: math.Max(size, 1), DPI: 72, Hinting: font.HintingFull}), nil
}

func colorOr(hex, def string) colorful.Color {
	if c, ok := palette.Parse(hex); ok {
		return c
	}
	c, _ := palette.Parse(def)
	return c
}
