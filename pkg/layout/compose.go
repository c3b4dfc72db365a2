// Package layout composes channel-specific layout variations.
//
// A [Composer] turns one territory, its assets and the brand guidelines into
// a [creative.LayoutVariation] for a given channel and style. Composition is
// a pure function of its inputs plus the injected clock and ID generator:
// assets are ordered by [Prioritize], the first becomes the hero, the rest
// stack in a column in the lower-right corner, and text is placed below the
// hero. Style-dependent parameters come from a [Policies] table.
//
// Every variation is scored before it is returned. Scoring never fails; see
// package score.
package layout

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/observability"
	"github.com/matzehuels/adforge/pkg/score"
)

// Geometry constants, as fractions of the canvas.
const (
	marginRatio       = 0.05 // of min(width, height)
	secondaryRatio    = 0.2  // column width, of canvas width
	minSecondaryRatio = 0.25 // smallest shrunk secondary, of column width
	baseFontDivisor   = 20
	headlineScale     = 1.5
	lineHeight        = 1.2
	glyphWidth        = 0.55 // average advance, in em
	maxHeadlineLines  = 3
	textOnlyTop       = 0.3
)

const (
	defaultHeadingFamily = "Inter"
	defaultBodyFamily    = "Inter"
	defaultBodyWeight    = 400
)

// Request describes one composition.
type Request struct {
	Territory  creative.Territory       `json:"territory"`
	Assets     []creative.Asset         `json:"assets"`
	Guidelines creative.BrandGuidelines `json:"guidelines"`
	Channel    string                   `json:"channel"`
	Style      Style                    `json:"style"`
	// Name overrides the generated variation name.
	Name string `json:"name,omitempty"`
}

// GenerateRequest asks for every (style, channel) combination.
type GenerateRequest struct {
	Territory  creative.Territory       `json:"territory"`
	Assets     []creative.Asset         `json:"assets"`
	Guidelines creative.BrandGuidelines `json:"guidelines"`
	Channels   []string                 `json:"channels"`
	Styles     []Style                  `json:"styles,omitempty"`
}

// Failure records a (style, channel) pair that could not be composed.
type Failure struct {
	Style   Style  `json:"style"`
	Channel string `json:"channel"`
	Error   string `json:"error"`
}

// GenerateResult holds the variations in request order plus any failures.
type GenerateResult struct {
	Variations []*creative.LayoutVariation `json:"variations"`
	Failures   []Failure                   `json:"failures,omitempty"`
}

// Composer builds layout variations. It is safe for concurrent use.
type Composer struct {
	channels   *channel.Registry
	policies   Policies
	compliance *score.ComplianceScorer
	predictor  *score.Predictor
	logger     *log.Logger
	now        func() time.Time
	newID      func() string
}

// Option configures a [Composer].
type Option func(*Composer)

// WithPolicies replaces [DefaultPolicies].
func WithPolicies(p Policies) Option { return func(c *Composer) { c.policies = p } }

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option { return func(c *Composer) { c.now = now } }

// WithIDGenerator sets the variation ID source; the default is random UUIDs.
func WithIDGenerator(f func() string) Option { return func(c *Composer) { c.newID = f } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(c *Composer) { c.logger = l } }

// NewComposer creates a composer for the channels in reg. Nil scorers are
// replaced by ones that always fall back.
func NewComposer(reg *channel.Registry, cs *score.ComplianceScorer, pr *score.Predictor, opts ...Option) *Composer {
	c := &Composer{
		channels:   reg,
		policies:   DefaultPolicies(),
		compliance: cs,
		predictor:  pr,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.compliance == nil {
		c.compliance = score.NewComplianceScorer(nil, c.logger)
	}
	if c.predictor == nil {
		c.predictor = score.NewPredictor(nil, c.logger)
	}
	return c
}

// Compose builds and scores one variation. It fails with
// UNSUPPORTED_CHANNEL when the channel is not registered.
func (c *Composer) Compose(ctx context.Context, req Request) (v *creative.LayoutVariation, err error) {
	style := ParseStyle(string(req.Style))
	if style == "" {
		style = StyleDefault
	}

	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, string(style), req.Channel)
	start := time.Now()
	defer func() {
		hooks.OnComposeComplete(ctx, string(style), req.Channel, time.Since(start), err)
	}()

	spec, err := c.channels.Lookup(req.Channel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedChannel, err, "cannot compose for channel %q", req.Channel)
	}
	if req.Name != "" {
		if err := errors.ValidateLayoutName(req.Name); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "compose")
	}

	policy := c.policies.Lookup(style)
	ordered := Prioritize(req.Assets)
	w, h := float64(spec.Width), float64(spec.Height)
	margin := marginRatio * math.Min(w, h)

	images := placeImages(ordered, policy, w, h, margin)
	pal := policy.Palette
	if pal == nil {
		pal = creative.Palette.Clone
	}
	colors := pal(req.Guidelines.Colors)
	texts := placeTexts(req.Territory, req.Guidelines.Typography, policy, spec, images, colors, margin)

	now := c.now().UTC()
	v = &creative.LayoutVariation{
		ID:          c.newID(),
		Name:        req.Name,
		TerritoryID: req.Territory.ID,
		Style:       string(style),
		Channel:     spec.ID,
		Width:       spec.Width,
		Height:      spec.Height,
		Images:      images,
		Texts:       texts,
		Palette:     colors,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if v.Name == "" {
		v.Name = variationName(req.Territory, style, spec)
	}
	v.Rationale = rationale(v, spec, policy, ordered)

	territory := req.Territory
	v.Compliance = c.compliance.Score(ctx, v, req.Guidelines, &territory)
	v.Performance = c.predictor.Predict(ctx, v, &territory, spec)
	v.PerformanceScore = v.Performance.Overall

	c.logger.Debug("composed layout",
		"id", v.ID, "style", style, "channel", spec.ID,
		"images", len(images), "compliance", v.Compliance.Overall, "performance", v.PerformanceScore)
	return v, nil
}

// ComposeAll composes every (style, channel) pair, styles outermost. Pairs
// that fail are reported in the result without stopping the others; only
// cancellation aborts the run.
func (c *Composer) ComposeAll(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if len(req.Channels) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "at least one channel is required")
	}
	styles := req.Styles
	if len(styles) == 0 {
		styles = DefaultStyles
	}

	res := &GenerateResult{}
	for _, style := range styles {
		for _, ch := range req.Channels {
			if err := ctx.Err(); err != nil {
				return res, errors.Wrap(errors.ErrCodeCanceled, err, "generate")
			}
			v, err := c.Compose(ctx, Request{
				Territory:  req.Territory,
				Assets:     req.Assets,
				Guidelines: req.Guidelines,
				Channel:    ch,
				Style:      style,
			})
			if err != nil {
				if errors.Is(err, errors.ErrCodeCanceled) {
					return res, err
				}
				c.logger.Warn("composition failed", "style", style, "channel", ch, "err", err)
				res.Failures = append(res.Failures, Failure{Style: style, Channel: ch, Error: errors.UserMessage(err)})
				continue
			}
			res.Variations = append(res.Variations, v)
		}
	}
	return res, nil
}

// =============================================================================
// Images
// =============================================================================

func scaleRect(frac creative.Rect, w, h float64) creative.Rect {
	return creative.Rect{X: frac.X * w, Y: frac.Y * h, Width: frac.Width * w, Height: frac.Height * h}
}

// clampRect moves and trims r into [0,w]x[0,h].
func clampRect(r creative.Rect, w, h float64) creative.Rect {
	r.Width = math.Min(math.Max(r.Width, 0), w)
	r.Height = math.Min(math.Max(r.Height, 0), h)
	r.X = math.Min(math.Max(r.X, 0), w-r.Width)
	r.Y = math.Min(math.Max(r.Y, 0), h-r.Height)
	return r
}

func placeImages(ordered []creative.Asset, policy Policy, w, h, margin float64) []creative.ImagePlacement {
	if len(ordered) == 0 {
		return nil
	}

	hero := ordered[0]
	images := []creative.ImagePlacement{{
		AssetID: hero.ID,
		Role:    hero.Role,
		Hero:    true,
		Rect:    clampRect(scaleRect(policy.Hero, w, h), w, h),
		Opacity: 1,
		Filters: append([]string(nil), policy.HeroFilters...),
		ZIndex:  1,
	}}

	colWidth := secondaryRatio * w
	y := images[0].Rect.Bottom() + margin
	for _, a := range ordered[1:] {
		aspect := a.AspectRatio()
		rw, rh := colWidth, colWidth/aspect
		if avail := h - margin - y; rh > avail {
			rh = avail
			rw = rh * aspect
		}
		if rw < minSecondaryRatio*colWidth || rh <= 0 || y+rh > h-margin+1e-9 {
			break
		}
		images = append(images, creative.ImagePlacement{
			AssetID: a.ID,
			Role:    a.Role,
			Rect:    clampRect(creative.Rect{X: w - margin - rw, Y: y, Width: rw, Height: rh}, w, h),
			Opacity: 1,
			ZIndex:  len(images) + 1,
		})
		y += rh + margin/2
	}
	return images
}

// =============================================================================
// Text
// =============================================================================

func estimateLines(text string, width, size float64) int {
	perLine := int(width / (size * glyphWidth))
	if perLine < 1 {
		perLine = 1
	}
	n := (utf8.RuneCountInString(text) + perLine - 1) / perLine
	return min(max(n, 1), maxHeadlineLines)
}

func placeTexts(t creative.Territory, typo creative.Typography, policy Policy, spec channel.Spec, images []creative.ImagePlacement, pal creative.Palette, margin float64) []creative.TextPlacement {
	w, h := float64(spec.Width), float64(spec.Height)

	headline, sub := t.Name, t.Positioning
	if len(t.Headlines) > 0 {
		headline = t.Headlines[0].Headline
		if sub == "" {
			sub = t.Headlines[0].FollowUp
		}
	}
	headline, sub = strings.TrimSpace(headline), strings.TrimSpace(sub)
	if headline == "" && sub == "" {
		return nil
	}

	// Text runs from the left margin to the secondary column.
	right := w - margin
	top := textOnlyTop * h
	for _, img := range images {
		if img.Hero {
			top = img.Rect.Bottom() + margin
		} else {
			right = math.Min(right, img.Rect.X-margin)
		}
	}
	textWidth := math.Max(right-margin, 0.25*w)

	base := math.Min(w, h) / baseFontDivisor
	scale := policy.HeadlineScale
	if scale <= 0 {
		scale = 1
	}
	hSize := base * headlineScale * scale
	hHeight := float64(estimateLines(headline, textWidth, hSize)) * hSize * lineHeight
	sHeight := float64(estimateLines(sub, textWidth, base)) * base * lineHeight
	gap := base / 2
	if headline == "" {
		hHeight, gap = 0, 0
	}
	if sub == "" {
		sHeight, gap = 0, 0
	}

	y := top
	if block := hHeight + gap + sHeight; y+block > h-margin {
		y = math.Max(margin, h-margin-block)
	}

	headRect := clampRect(creative.Rect{X: margin, Y: y, Width: textWidth, Height: hHeight}, w, h)
	if headline != "" {
		headRect = avoidSafeArea(headRect, spec, images, h, margin)
	}

	var texts []creative.TextPlacement
	z := len(images) + 1
	if headline != "" {
		texts = append(texts, creative.TextPlacement{
			Role:    creative.TextHeadline,
			Content: headline,
			Rect:    headRect,
			Typography: creative.TextStyle{
				Family:     orDefault(typo.HeadingFamily, defaultHeadingFamily),
				Size:       hSize,
				Weight:     orDefaultInt(typo.HeadingWeight, policy.HeadlineWeight),
				LineHeight: lineHeight,
				Align:      orDefault(policy.Align, "left"),
				Color:      pal.Text,
			},
			ZIndex:  z,
			Effects: append([]string(nil), policy.HeadlineEffects...),
		})
		z++
	}
	if sub != "" {
		subY := headRect.Bottom() + gap
		if headline == "" {
			subY = y
		}
		texts = append(texts, creative.TextPlacement{
			Role:    creative.TextSubheading,
			Content: sub,
			Rect:    clampRect(creative.Rect{X: margin, Y: subY, Width: textWidth, Height: sHeight}, w, h),
			Typography: creative.TextStyle{
				Family:     orDefault(typo.BodyFamily, defaultBodyFamily),
				Size:       base,
				Weight:     orDefaultInt(typo.BodyWeight, defaultBodyWeight),
				LineHeight: lineHeight,
				Align:      orDefault(policy.Align, "left"),
				Color:      pal.Text,
			},
			ZIndex: z,
		})
	}
	return texts
}

// avoidSafeArea moves r off the part of the hero that lies in the channel
// safe area: below it if there is room, else above it, else r stays.
func avoidSafeArea(r creative.Rect, spec channel.Spec, images []creative.ImagePlacement, h, margin float64) creative.Rect {
	if spec.SafeArea == nil || len(images) == 0 {
		return r
	}
	zone := images[0].Rect.Intersect(*spec.SafeArea)
	if zone.Empty() || !r.Overlaps(zone) {
		return r
	}
	if below := zone.Bottom() + margin/2; below+r.Height <= h-margin {
		r.Y = below
		return r
	}
	if above := zone.Y - margin/2 - r.Height; above >= margin {
		r.Y = above
		return r
	}
	return r
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// =============================================================================
// Naming
// =============================================================================

func variationName(t creative.Territory, style Style, spec channel.Spec) string {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = "Untitled"
	}
	return fmt.Sprintf("%s (%s, %s)", name, style, spec.Name)
}

func rationale(v *creative.LayoutVariation, spec channel.Spec, policy Policy, ordered []creative.Asset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s layout for %s (%dx%d). ", strings.ToUpper(v.Style[:1])+v.Style[1:], spec.Name, spec.Width, spec.Height)
	if hero, ok := v.Hero(); ok {
		fmt.Fprintf(&b, "Hero %s asset %q covers %.0f%% of the canvas", hero.Role, hero.AssetID, 100*score.HeroCoverage(v))
		if n := len(v.Images) - 1; n > 0 {
			fmt.Fprintf(&b, " with %d supporting asset(s) in the lower-right column", n)
		}
		if skipped := len(ordered) - len(v.Images); skipped > 0 {
			fmt.Fprintf(&b, "; %d asset(s) did not fit", skipped)
		}
		b.WriteString(". ")
	} else {
		b.WriteString("Text-only composition: no assets supplied. ")
	}
	b.WriteString(policy.Description)
	return strings.TrimSpace(b.String())
}
