package channel

import "github.com/matzehuels/adforge/pkg/creative"

// mmToPx converts millimetres to pixels at dpi.
func mmToPx(mm float64, dpi int) int {
	return int(mm/25.4*float64(dpi) + 0.5)
}

// storySafeArea keeps the top 14% and bottom 20% of vertical stories clear of
// platform UI, so the hero's focal content lives in between.
func storySafeArea(w, h int) *creative.Rect {
	return &creative.Rect{X: 0, Y: float64(h) * 0.14, Width: float64(w), Height: float64(h) * 0.66}
}

// DefaultSpecs returns the built-in channel table.
func DefaultSpecs() []Spec {
	return []Spec{
		// Social
		{ID: "instagram_post", Name: "Instagram Post", Category: Social, Width: 1080, Height: 1080, DPI: 72, ColorSpace: RGB, Format: FormatJPG},
		{ID: "instagram_story", Name: "Instagram Story", Category: Social, Width: 1080, Height: 1920, DPI: 72, ColorSpace: RGB, Format: FormatJPG, SafeArea: storySafeArea(1080, 1920)},
		{ID: "facebook_post", Name: "Facebook Post", Category: Social, Width: 1200, Height: 630, DPI: 72, ColorSpace: RGB, Format: FormatJPG},
		{ID: "twitter_post", Name: "X / Twitter Post", Category: Social, Width: 1600, Height: 900, DPI: 72, ColorSpace: RGB, Format: FormatPNG},
		{ID: "linkedin_post", Name: "LinkedIn Post", Category: Social, Width: 1200, Height: 627, DPI: 72, ColorSpace: RGB, Format: FormatPNG},
		{ID: "tiktok_video", Name: "TikTok Video", Category: Social, Width: 1080, Height: 1920, DPI: 72, ColorSpace: RGB, Format: FormatMP4, SafeArea: storySafeArea(1080, 1920)},

		// Print (300 dpi, trim size)
		{ID: "a4_print", Name: "A4 Flyer", Category: Print, Width: mmToPx(210, 300), Height: mmToPx(297, 300), DPI: 300, ColorSpace: CMYK, Format: FormatPDF},
		{ID: "a3_poster", Name: "A3 Poster", Category: Print, Width: mmToPx(297, 300), Height: mmToPx(420, 300), DPI: 300, ColorSpace: CMYK, Format: FormatPDF},
		{ID: "business_card", Name: "Business Card", Category: Print, Width: mmToPx(85, 300), Height: mmToPx(55, 300), DPI: 300, ColorSpace: CMYK, Format: FormatPDF},
		{ID: "billboard_48sheet", Name: "48-Sheet Billboard", Category: Print, Width: 6096, Height: 3048, DPI: 20, ColorSpace: CMYK, Format: FormatPDF},

		// Digital advertising (IAB)
		{ID: "leaderboard", Name: "Leaderboard 728x90", Category: Digital, Width: 728, Height: 90, DPI: 72, ColorSpace: RGB, Format: FormatPNG},
		{ID: "medium_rectangle", Name: "Medium Rectangle 300x250", Category: Digital, Width: 300, Height: 250, DPI: 72, ColorSpace: RGB, Format: FormatPNG},
		{ID: "skyscraper", Name: "Wide Skyscraper 160x600", Category: Digital, Width: 160, Height: 600, DPI: 72, ColorSpace: RGB, Format: FormatPNG},
		{ID: "display_responsive", Name: "Responsive Display", Category: Digital, Width: 1200, Height: 628, DPI: 72, ColorSpace: RGB, Format: FormatSVG},

		// Retail / in-store
		{ID: "shelf_talker", Name: "Shelf Talker", Category: Retail, Width: mmToPx(100, 300), Height: mmToPx(150, 300), DPI: 300, ColorSpace: CMYK, Format: FormatPDF},
		{ID: "digital_signage", Name: "Digital Signage 1080p", Category: Retail, Width: 1920, Height: 1080, DPI: 72, ColorSpace: RGB, Format: FormatMP4},
		{ID: "pos_display", Name: "Point-of-Sale Display", Category: Retail, Width: 1080, Height: 1920, DPI: 72, ColorSpace: RGB, Format: FormatPNG},
	}
}

// Default returns a registry holding [DefaultSpecs].
func Default() *Registry {
	return MustRegistry(DefaultSpecs()...)
}
