// Package creative defines the data model shared by the layout, scoring and
// export stages.
//
// Inputs ([Asset], [BrandGuidelines], [Territory]) are owned by external
// collaborators and treated as read-only. Outputs ([LayoutVariation] and the
// placements, palette and scores it carries) are produced fresh per request
// and never mutated once returned; stages that need a different value build
// a new one.
//
// All types round-trip through encoding/json with camelCase field names so
// the same documents serve the CLI, the HTTP API and the document sink.
package creative

import (
	"slices"
	"time"
)

// AssetRole is the semantic role of a visual asset.
type AssetRole string

// Asset roles understood by the prioritizer. Any other value ranks with
// [RoleOther].
const (
	RoleLogo       AssetRole = "logo"
	RoleProduct    AssetRole = "product"
	RoleLifestyle  AssetRole = "lifestyle"
	RoleBackground AssetRole = "background"
	RoleTexture    AssetRole = "texture"
	RoleIcon       AssetRole = "icon"
	RoleOther      AssetRole = "other"
)

// DefaultQuality is assumed for assets that carry no quality score.
const DefaultQuality = 50

// Size is a pixel dimension pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Asset is an uploaded visual supplied by the asset service.
type Asset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Role       AssetRole `json:"role"`
	Quality    *int      `json:"quality,omitempty"` // 0-100
	Dimensions *Size     `json:"dimensions,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// QualityOrDefault returns the asset's quality score, or [DefaultQuality]
// when none is known.
func (a Asset) QualityOrDefault() int {
	if a.Quality == nil {
		return DefaultQuality
	}
	return *a.Quality
}

// AspectRatio returns width/height, or 1 when dimensions are unknown or degenerate.
func (a Asset) AspectRatio() float64 {
	if a.Dimensions == nil || a.Dimensions.Width <= 0 || a.Dimensions.Height <= 0 {
		return 1
	}
	return float64(a.Dimensions.Width) / float64(a.Dimensions.Height)
}

// Palette is a set of hex colors. Brand guidelines declare one; every layout
// variation carries a derived one.
type Palette struct {
	Primary    string   `json:"primary"`
	Secondary  []string `json:"secondary,omitempty"`
	Accent     []string `json:"accent,omitempty"`
	Neutral    []string `json:"neutral,omitempty"`
	Background string   `json:"background"`
	Text       string   `json:"text"`
}

// Colors returns every color in the palette in declaration order.
func (p Palette) Colors() []string {
	out := make([]string, 0, 3+len(p.Secondary)+len(p.Accent)+len(p.Neutral))
	out = append(out, p.Primary)
	out = append(out, p.Secondary...)
	out = append(out, p.Accent...)
	out = append(out, p.Neutral...)
	out = append(out, p.Background, p.Text)
	return out
}

// Clone returns a deep copy of p.
func (p Palette) Clone() Palette {
	c := p
	c.Secondary = append([]string(nil), p.Secondary...)
	c.Accent = append([]string(nil), p.Accent...)
	c.Neutral = append([]string(nil), p.Neutral...)
	return c
}

// Typography names the brand's type families.
type Typography struct {
	HeadingFamily string `json:"headingFamily"`
	HeadingWeight int    `json:"headingWeight,omitempty"`
	BodyFamily    string `json:"bodyFamily"`
	BodyWeight    int    `json:"bodyWeight,omitempty"`
}

// ComplianceRules are the brand's hard requirements.
type ComplianceRules struct {
	RequiredDisclaimers []string `json:"requiredDisclaimers,omitempty"`
	ProhibitedTerms     []string `json:"prohibitedTerms,omitempty"`
	// MinLogoAreaRatio is the smallest logo area relative to the canvas.
	MinLogoAreaRatio float64 `json:"minLogoAreaRatio,omitempty"`
	// MinMarginRatio is the smallest edge clearance relative to min(width, height).
	MinMarginRatio float64 `json:"minMarginRatio,omitempty"`
	RequireLogo    bool    `json:"requireLogo,omitempty"`
}

// BrandGuidelines is the brand definition supplied by the guidelines source.
type BrandGuidelines struct {
	Name       string          `json:"name"`
	Colors     Palette         `json:"colors"`
	Typography Typography      `json:"typography"`
	Compliance ComplianceRules `json:"compliance"`
}

// HeadlinePair is one headline with its follow-up line.
type HeadlinePair struct {
	Headline string `json:"headline"`
	FollowUp string `json:"followUp,omitempty"`
}

// Territory is a strategic creative direction produced by content generation.
type Territory struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Positioning string         `json:"positioning"`
	Tone        string         `json:"tone,omitempty"`
	Headlines   []HeadlinePair `json:"headlines,omitempty"`
}

// Rect is an axis-aligned rectangle in canvas pixels with the origin at the
// top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the overlap of r and o, or the zero Rect when they are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Overlaps reports whether r and o share a region of positive area.
func (r Rect) Overlaps(o Rect) bool { return !r.Intersect(o).Empty() }

// Within reports whether r lies entirely inside [0,w]x[0,h].
func (r Rect) Within(w, h float64) bool {
	const eps = 1e-9
	return r.X >= -eps && r.Y >= -eps && r.Right() <= w+eps && r.Bottom() <= h+eps
}

// Scale multiplies the position and size of r by sx horizontally and sy
// vertically.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{X: r.X * sx, Y: r.Y * sy, Width: r.Width * sx, Height: r.Height * sy}
}

// ImagePlacement positions one asset on the canvas.
type ImagePlacement struct {
	AssetID  string    `json:"assetId"`
	Role     AssetRole `json:"role"`
	Hero     bool      `json:"hero,omitempty"`
	Rect     Rect      `json:"rect"`
	Rotation float64   `json:"rotation"`
	Opacity  float64   `json:"opacity"`
	Filters  []string  `json:"filters,omitempty"`
	ZIndex   int       `json:"zIndex"`
}

// TextRole distinguishes headline and supporting copy.
type TextRole string

// Text roles produced by the composer.
const (
	TextHeadline   TextRole = "headline"
	TextSubheading TextRole = "subheading"
	TextDisclaimer TextRole = "disclaimer"
)

// TextStyle is the resolved typography of one text block.
type TextStyle struct {
	Family     string  `json:"family"`
	Size       float64 `json:"size"`
	Weight     int     `json:"weight"`
	LineHeight float64 `json:"lineHeight"`
	Align      string  `json:"align"` // left, center, right
	Color      string  `json:"color"`
}

// TextPlacement positions one block of copy on the canvas.
type TextPlacement struct {
	Role       TextRole  `json:"role"`
	Content    string    `json:"content"`
	Rect       Rect      `json:"rect"`
	Typography TextStyle `json:"typography"`
	ZIndex     int       `json:"zIndex"`
	Effects    []string  `json:"effects,omitempty"`
}

// Compliance categories scored for every layout.
const (
	CategoryBrandAlignment    = "brandAlignment"
	CategoryColorCompliance   = "colorCompliance"
	CategoryFontCompliance    = "fontCompliance"
	CategoryLogoUsage         = "logoUsage"
	CategorySpacing           = "spacing"
	CategoryLegalRequirements = "legalRequirements"
)

// ComplianceCategories lists the six compliance categories in report order.
var ComplianceCategories = []string{
	CategoryBrandAlignment,
	CategoryColorCompliance,
	CategoryFontCompliance,
	CategoryLogoUsage,
	CategorySpacing,
	CategoryLegalRequirements,
}

// Violation is one breach of the brand guidelines.
type Violation struct {
	Category string `json:"category"`
	Severity string `json:"severity"` // low, medium, high
	Detail   string `json:"detail"`
}

// ComplianceScore rates a layout against brand guidelines.
type ComplianceScore struct {
	Overall           int         `json:"overall"`
	BrandAlignment    int         `json:"brandAlignment"`
	ColorCompliance   int         `json:"colorCompliance"`
	FontCompliance    int         `json:"fontCompliance"`
	LogoUsage         int         `json:"logoUsage"`
	Spacing           int         `json:"spacing"`
	LegalRequirements int         `json:"legalRequirements"`
	Violations        []Violation `json:"violations,omitempty"`
	Recommendations   []string    `json:"recommendations,omitempty"`
	// Fallback is set when the judgment engine was unavailable.
	Fallback bool `json:"fallback,omitempty"`
}

// Categories returns the six category scores in [ComplianceCategories] order.
func (c ComplianceScore) Categories() []int {
	return []int{c.BrandAlignment, c.ColorCompliance, c.FontCompliance, c.LogoUsage, c.Spacing, c.LegalRequirements}
}

// PerformanceScore is a layout's predicted audience impact.
type PerformanceScore struct {
	Overall             int     `json:"overall"`
	VisualImpact        int     `json:"visualImpact"`
	MessageClarity      int     `json:"messageClarity"`
	ChannelOptimization int     `json:"channelOptimization"`
	Confidence          float64 `json:"confidence"`
	Fallback            bool    `json:"fallback,omitempty"`
}

// LayoutVariation is one concrete arrangement of a territory on a channel in
// one style. It is the unit of work handed to export.
type LayoutVariation struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	TerritoryID      string           `json:"territoryId"`
	Style            string           `json:"style"`
	Channel          string           `json:"channel"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	Images           []ImagePlacement `json:"images"`
	Texts            []TextPlacement  `json:"texts"`
	Palette          Palette          `json:"palette"`
	Compliance       ComplianceScore  `json:"compliance"`
	Performance      PerformanceScore `json:"performance"`
	PerformanceScore int              `json:"performanceScore"`
	Rationale        string           `json:"rationale"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Canvas returns the full canvas rectangle.
func (v *LayoutVariation) Canvas() Rect {
	return Rect{Width: float64(v.Width), Height: float64(v.Height)}
}

// Resized returns a copy of v on a w×h canvas with every placement scaled
// to match. Font sizes follow the smaller axis so copy never overflows its
// box. A layout without a canvas size keeps its placements as they are.
// v is not modified.
func (v *LayoutVariation) Resized(w, h int) *LayoutVariation {
	out := *v
	out.Width, out.Height = w, h
	out.Images = slices.Clone(v.Images)
	out.Texts = slices.Clone(v.Texts)
	if v.Width <= 0 || v.Height <= 0 || (v.Width == w && v.Height == h) {
		return &out
	}
	sx, sy := float64(w)/float64(v.Width), float64(h)/float64(v.Height)
	for i := range out.Images {
		out.Images[i].Rect = out.Images[i].Rect.Scale(sx, sy)
	}
	for i := range out.Texts {
		out.Texts[i].Rect = out.Texts[i].Rect.Scale(sx, sy)
		out.Texts[i].Typography.Size *= min(sx, sy)
	}
	return &out
}

// Hero returns the hero placement, if any.
func (v *LayoutVariation) Hero() (ImagePlacement, bool) {
	for _, img := range v.Images {
		if img.Hero {
			return img, true
		}
	}
	return ImagePlacement{}, false
}

// Text returns the first text placement with the given role.
func (v *LayoutVariation) Text(role TextRole) (TextPlacement, bool) {
	for _, t := range v.Texts {
		if t.Role == role {
			return t, true
		}
	}
	return TextPlacement{}, false
}
