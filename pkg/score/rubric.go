package score

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/judge"
	"github.com/matzehuels/adforge/pkg/palette"
)

// Rubric defaults applied when guidelines leave a threshold unset.
const (
	DefaultMinLogoAreaRatio = 0.01
	DefaultMinMarginRatio   = 0.02

	// Lab distances at or below colorMatch count as on-brand; at or above
	// colorMiss as off-brand.
	colorMatch = 0.05
	colorMiss  = 0.5

	minTextContrast  = 4.5
	rubricConfidence = 0.75
)

// Rubric is a deterministic [judge.Judge] that assesses layouts from their
// structure alone. Its replies are JSON documents in the shape the scorers
// parse.
type Rubric struct{}

var _ judge.Judge = Rubric{}

// Compute scores p.Layout. It fails only for prompts without a layout or of
// an unknown kind.
func (Rubric) Compute(ctx context.Context, p judge.Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Layout == nil {
		return "", judge.Unavailablef("rubric: prompt has no layout")
	}
	var reply any
	switch p.Kind {
	case judge.KindCompliance:
		var g creative.BrandGuidelines
		if p.Guidelines != nil {
			g = *p.Guidelines
		}
		reply = assessCompliance(p.Layout, g, p.Territory)
	case judge.KindPerformance:
		reply = assessPerformance(p.Layout, p.Territory, p.Channel)
	default:
		return "", judge.Unavailablef("rubric: unknown kind %q", p.Kind)
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// Compliance
// =============================================================================

type complianceAssessment struct {
	BrandAlignment    int                  `json:"brandAlignment"`
	ColorCompliance   int                  `json:"colorCompliance"`
	FontCompliance    int                  `json:"fontCompliance"`
	LogoUsage         int                  `json:"logoUsage"`
	Spacing           int                  `json:"spacing"`
	LegalRequirements int                  `json:"legalRequirements"`
	Violations        []creative.Violation `json:"violations,omitempty"`
	Recommendations   []string             `json:"recommendations,omitempty"`
}

type findings struct {
	violations      []creative.Violation
	recommendations []string
}

func (f *findings) violate(category, severity, format string, args ...any) {
	f.violations = append(f.violations, creative.Violation{
		Category: category,
		Severity: severity,
		Detail:   fmt.Sprintf(format, args...),
	})
}

func (f *findings) recommend(format string, args ...any) {
	f.recommendations = append(f.recommendations, fmt.Sprintf(format, args...))
}

func assessCompliance(v *creative.LayoutVariation, g creative.BrandGuidelines, t *creative.Territory) complianceAssessment {
	var f findings
	a := complianceAssessment{
		BrandAlignment:    brandAlignment(v, g, t, &f),
		ColorCompliance:   colorCompliance(v, g, &f),
		FontCompliance:    fontCompliance(v, g, &f),
		LogoUsage:         logoUsage(v, g, &f),
		Spacing:           spacing(v, g, &f),
		LegalRequirements: legalRequirements(v, g, &f),
	}
	a.Violations = f.violations
	a.Recommendations = f.recommendations
	return a
}

var toneKeywords = map[string][]string{
	"minimal": {"calm", "clean", "simple", "minimal", "modern", "honest", "clear", "quiet"},
	"bold":    {"bold", "energetic", "playful", "loud", "confident", "urgent", "dynamic", "vibrant"},
	"elegant": {"elegant", "premium", "luxury", "luxurious", "sophisticated", "refined", "timeless", "classic"},
}

func brandAlignment(v *creative.LayoutVariation, g creative.BrandGuidelines, t *creative.Territory, f *findings) int {
	score := 60
	if d, ok := palette.Distance(v.Palette.Primary, g.Colors.Primary); ok && d <= colorMatch {
		score += 20
	} else if g.Colors.Primary != "" {
		f.recommend("Carry the brand primary color %s into the layout.", g.Colors.Primary)
	}

	switch {
	case t == nil || strings.TrimSpace(t.Tone) == "":
		score += 10
	case toneMatches(t.Tone, v.Style):
		score += 20
	default:
		f.recommend("The %s style may not match the territory tone %q.", v.Style, t.Tone)
	}
	return score
}

func toneMatches(tone, style string) bool {
	words, ok := toneKeywords[style]
	if !ok {
		return true
	}
	tone = strings.ToLower(tone)
	for _, w := range words {
		if strings.Contains(tone, w) {
			return true
		}
	}
	return false
}

func colorCompliance(v *creative.LayoutVariation, g creative.BrandGuidelines, f *findings) int {
	brand := nonEmpty(g.Colors.Colors())
	if len(brand) == 0 {
		f.recommend("Define a brand palette so color usage can be verified.")
		return 80
	}
	// Pure white and black are always acceptable.
	allowed := append(brand, "#ffffff", "#000000")

	used := []string{v.Palette.Background, v.Palette.Text}
	for _, t := range v.Texts {
		used = append(used, t.Typography.Color)
	}

	total, n := 0.0, 0
	for _, c := range nonEmpty(used) {
		n++
		if !palette.Valid(c) {
			f.violate(creative.CategoryColorCompliance, "medium", "color %q is not a valid hex value", c)
			continue
		}
		d := palette.Nearest(c, allowed)
		switch {
		case d <= colorMatch:
			total += 100
		case d >= colorMiss:
			f.violate(creative.CategoryColorCompliance, "high", "color %s is outside the brand palette", c)
		default:
			total += 100 * (colorMiss - d) / (colorMiss - colorMatch)
		}
	}
	if n == 0 {
		return 100
	}
	return bound(total / float64(n))
}

func fontCompliance(v *creative.LayoutVariation, g creative.BrandGuidelines, f *findings) int {
	families := nonEmpty([]string{g.Typography.HeadingFamily, g.Typography.BodyFamily})
	if len(families) == 0 {
		f.recommend("Specify brand typography so font usage can be verified.")
		return 80
	}
	if len(v.Texts) == 0 {
		return 100
	}
	ok := 0
	for _, t := range v.Texts {
		if containsFold(families, t.Typography.Family) {
			ok++
			continue
		}
		f.violate(creative.CategoryFontCompliance, "medium", "%s uses non-brand font %q", t.Role, t.Typography.Family)
	}
	return bound(100 * float64(ok) / float64(len(v.Texts)))
}

func logoUsage(v *creative.LayoutVariation, g creative.BrandGuidelines, f *findings) int {
	canvas := v.Canvas().Area()
	var logo *creative.ImagePlacement
	for i := range v.Images {
		if v.Images[i].Role == creative.RoleLogo {
			logo = &v.Images[i]
			break
		}
	}
	if logo == nil {
		if g.Compliance.RequireLogo {
			f.violate(creative.CategoryLogoUsage, "high", "brand logo is required but not placed")
			return 40
		}
		f.recommend("Add the brand logo to strengthen recognition.")
		return 70
	}
	if canvas <= 0 {
		return 70
	}

	ratio := logo.Rect.Area() / canvas
	minRatio := g.Compliance.MinLogoAreaRatio
	if minRatio <= 0 {
		minRatio = DefaultMinLogoAreaRatio
	}
	switch {
	case ratio < minRatio:
		f.violate(creative.CategoryLogoUsage, "medium", "logo covers %.1f%% of the canvas, below the %.1f%% minimum", ratio*100, minRatio*100)
		return 60
	case logo.Hero && ratio > 0.4:
		f.recommend("The logo dominates the canvas; consider a product or lifestyle hero.")
		return 85
	}
	return 100
}

func spacing(v *creative.LayoutVariation, g creative.BrandGuidelines, f *findings) int {
	w, h := float64(v.Width), float64(v.Height)
	ratio := g.Compliance.MinMarginRatio
	if ratio <= 0 {
		ratio = DefaultMinMarginRatio
	}
	margin := ratio * math.Min(w, h)

	issues := 0
	for _, img := range v.Images {
		if img.Hero {
			// Heroes may bleed to the edge.
			continue
		}
		if !withinMargin(img.Rect, w, h, margin) {
			issues++
			f.violate(creative.CategorySpacing, "low", "image %s sits inside the %.0fpx edge margin", img.AssetID, margin)
		}
	}
	for _, t := range v.Texts {
		if !withinMargin(t.Rect, w, h, margin) {
			issues++
			f.violate(creative.CategorySpacing, "medium", "%s sits inside the %.0fpx edge margin", t.Role, margin)
		}
		for _, img := range v.Images {
			if !img.Hero && t.Rect.Overlaps(img.Rect) {
				issues++
				f.violate(creative.CategorySpacing, "medium", "%s overlaps image %s", t.Role, img.AssetID)
			}
		}
	}
	return bound(100 - 12*float64(issues))
}

// withinMargin reports whether r keeps at least margin from every canvas edge.
func withinMargin(r creative.Rect, w, h, margin float64) bool {
	const eps = 1e-6
	return r.X+eps >= margin && r.Y+eps >= margin && r.Right() <= w-margin+eps && r.Bottom() <= h-margin+eps
}

func legalRequirements(v *creative.LayoutVariation, g creative.BrandGuidelines, f *findings) int {
	var b strings.Builder
	for _, t := range v.Texts {
		b.WriteString(strings.ToLower(t.Content))
		b.WriteByte('\n')
	}
	text := b.String()

	score := 100.0
	for _, d := range nonEmpty(g.Compliance.RequiredDisclaimers) {
		if !strings.Contains(text, strings.ToLower(d)) {
			score -= 30
			f.violate(creative.CategoryLegalRequirements, "high", "required disclaimer missing: %q", d)
		}
	}
	for _, term := range nonEmpty(g.Compliance.ProhibitedTerms) {
		if strings.Contains(text, strings.ToLower(term)) {
			score -= 30
			f.violate(creative.CategoryLegalRequirements, "high", "prohibited term used: %q", term)
		}
	}
	return bound(score)
}

// =============================================================================
// Performance
// =============================================================================

type performanceAssessment struct {
	VisualImpact        int     `json:"visualImpact"`
	MessageClarity      int     `json:"messageClarity"`
	ChannelOptimization int     `json:"channelOptimization"`
	Confidence          float64 `json:"confidence"`
}

func assessPerformance(v *creative.LayoutVariation, t *creative.Territory, spec *channel.Spec) performanceAssessment {
	confidence := rubricConfidence
	if t == nil {
		confidence -= 0.15
	}
	if spec == nil {
		confidence -= 0.15
	}
	return performanceAssessment{
		VisualImpact:        visualImpact(v),
		MessageClarity:      messageClarity(v),
		ChannelOptimization: channelOptimization(v, spec),
		Confidence:          confidence,
	}
}

// HeroCoverage returns the hero's share of the canvas area, 0 without a hero.
func HeroCoverage(v *creative.LayoutVariation) float64 {
	hero, ok := v.Hero()
	canvas := v.Canvas().Area()
	if !ok || canvas <= 0 {
		return 0
	}
	return hero.Rect.Intersect(v.Canvas()).Area() / canvas
}

// TextCoverage returns the share of the canvas covered by text blocks.
func TextCoverage(v *creative.LayoutVariation) float64 {
	canvas := v.Canvas().Area()
	if canvas <= 0 {
		return 0
	}
	total := 0.0
	for _, t := range v.Texts {
		total += t.Rect.Intersect(v.Canvas()).Area()
	}
	return total / canvas
}

func visualImpact(v *creative.LayoutVariation) int {
	score := 35.0
	if c := HeroCoverage(v); c > 0 {
		// Peaks when the hero fills a little over half the canvas.
		score = math.Max(20, 100-math.Abs(c-0.55)*150)
	}
	if palette.Contrast(v.Palette.Background, v.Palette.Text) >= minTextContrast {
		score += 5
	} else {
		score -= 10
	}
	return bound(score)
}

func messageClarity(v *creative.LayoutVariation) int {
	headline, ok := v.Text(creative.TextHeadline)
	if !ok || strings.TrimSpace(headline.Content) == "" {
		return 40
	}
	score := 60.0
	switch words := len(strings.Fields(headline.Content)); {
	case words <= 8:
		score = 95
	case words <= 12:
		score = 80
	}
	if c := TextCoverage(v); c < 0.05 || c > 0.3 {
		score -= 15
	}
	if palette.Contrast(v.Palette.Background, headline.Typography.Color) < minTextContrast {
		score -= 15
	}
	return bound(score)
}

var styleFit = map[channel.Category]map[string]int{
	channel.Social:  {"bold": 95, "minimal": 85, "elegant": 75},
	channel.Print:   {"elegant": 95, "minimal": 90, "bold": 80},
	channel.Digital: {"bold": 90, "minimal": 85, "elegant": 75},
	channel.Retail:  {"bold": 90, "elegant": 85, "minimal": 80},
}

func channelOptimization(v *creative.LayoutVariation, spec *channel.Spec) int {
	if spec == nil {
		return 70
	}
	score, ok := styleFit[spec.Category][v.Style]
	if !ok {
		score = 70
	}
	// Extreme banners leave little room for a subheading.
	if spec.Height > 0 && len(v.Texts) > 1 {
		if aspect := float64(spec.Width) / float64(spec.Height); aspect > 4 || aspect < 0.25 {
			score -= 10
		}
	}
	return bound(float64(score))
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
