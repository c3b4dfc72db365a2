package score

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/judge"
)

func testGuidelines() creative.BrandGuidelines {
	return creative.BrandGuidelines{
		Name: "Acme",
		Colors: creative.Palette{
			Primary:    "#1a73e8",
			Secondary:  []string{"#34a853"},
			Neutral:    []string{"#ffffff", "#202124"},
			Background: "#ffffff",
			Text:       "#202124",
		},
		Typography: creative.Typography{HeadingFamily: "Inter", BodyFamily: "Roboto"},
		Compliance: creative.ComplianceRules{
			RequiredDisclaimers: []string{"Terms apply"},
			ProhibitedTerms:     []string{"guaranteed"},
		},
	}
}

func testLayout() *creative.LayoutVariation {
	return &creative.LayoutVariation{
		ID:      "v1",
		Style:   "minimal",
		Channel: "instagram_post",
		Width:   1000,
		Height:  1000,
		Images: []creative.ImagePlacement{
			{AssetID: "hero", Role: creative.RoleProduct, Hero: true, Rect: creative.Rect{X: 100, Y: 100, Width: 800, Height: 600}},
			{AssetID: "logo", Role: creative.RoleLogo, Rect: creative.Rect{X: 750, Y: 750, Width: 200, Height: 200}},
		},
		Texts: []creative.TextPlacement{
			{
				Role:       creative.TextHeadline,
				Content:    "Fresh ideas daily",
				Rect:       creative.Rect{X: 100, Y: 720, Width: 600, Height: 80},
				Typography: creative.TextStyle{Family: "Inter", Color: "#202124"},
			},
			{
				Role:       creative.TextSubheading,
				Content:    "Terms apply.",
				Rect:       creative.Rect{X: 100, Y: 820, Width: 600, Height: 40},
				Typography: creative.TextStyle{Family: "Roboto", Color: "#202124"},
			},
		},
		Palette: creative.Palette{Primary: "#1a73e8", Background: "#ffffff", Text: "#202124"},
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		in   []int
		want int
	}{
		{nil, 0},
		{[]int{75, 75, 75, 75, 75, 75}, 75},
		{[]int{90, 80, 70, 60, 50, 41}, 65}, // 65.17
		{[]int{100, 100, 100, 100, 100, 99}, 100},
		{[]int{1, 2}, 2}, // 1.5 rounds half away from zero
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Mean(tt.in...), "Mean(%v)", tt.in)
	}
}

func TestParseCompliance(t *testing.T) {
	reply := `Assessment follows.
{"brandAlignment": 90, "colorCompliance": 85.6, "fontCompliance": 100,
 "logoUsage": 120, "spacing": -5, "legalRequirements": 70,
 "violations": ["logo too small", {"category": "spacing", "severity": "low", "detail": "tight margin"}, ""],
 "recommendations": ["  enlarge logo ", ""]}
Thanks!`

	cs, err := ParseCompliance(reply)
	require.NoError(t, err)
	assert.Equal(t, 86, cs.ColorCompliance)
	assert.Equal(t, 100, cs.LogoUsage, "scores are clamped to 100")
	assert.Equal(t, 0, cs.Spacing, "scores are clamped to 0")
	assert.Equal(t, Mean(cs.Categories()...), cs.Overall)
	require.Len(t, cs.Violations, 2)
	assert.Equal(t, "medium", cs.Violations[0].Severity)
	assert.Equal(t, "spacing", cs.Violations[1].Category)
	assert.Equal(t, []string{"enlarge logo"}, cs.Recommendations)
	assert.False(t, cs.Fallback)
}

func TestParseComplianceNestedScores(t *testing.T) {
	cs, err := ParseCompliance(`{"scores": {"brandAlignment": 80, "colorCompliance": 80, "fontCompliance": 80,
		"logoUsage": 80, "spacing": 80, "legalRequirements": 80}}`)
	require.NoError(t, err)
	assert.Equal(t, 80, cs.Overall)
}

func TestParseComplianceRejects(t *testing.T) {
	tests := map[string]string{
		"no json":          "I cannot evaluate this layout.",
		"missing category": `{"brandAlignment": 90}`,
		"malformed":        `{"brandAlignment": }`,
	}
	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCompliance(reply)
			assert.Error(t, err)
		})
	}
}

func TestComplianceScorerFallback(t *testing.T) {
	judges := map[string]judge.Judge{
		"unavailable": judge.Unavailable{},
		"garbage":     judge.Static{judge.KindCompliance: "no idea"},
		"nil":         nil,
	}
	for name, j := range judges {
		t.Run(name, func(t *testing.T) {
			cs := NewComplianceScorer(j, nil).Score(context.Background(), testLayout(), testGuidelines(), nil)
			assert.True(t, cs.Fallback)
			assert.Equal(t, 75, cs.Overall)
			for i, v := range cs.Categories() {
				assert.Equal(t, 75, v, creative.ComplianceCategories[i])
			}
			assert.Contains(t, cs.Recommendations, ManualReviewRecommendation)
		})
	}
}

func TestComplianceScorerUsesJudge(t *testing.T) {
	var got judge.Prompt
	j := judge.Func(func(_ context.Context, p judge.Prompt) (string, error) {
		got = p
		return `{"brandAlignment":100,"colorCompliance":100,"fontCompliance":100,"logoUsage":100,"spacing":100,"legalRequirements":40}`, nil
	})
	cs := NewComplianceScorer(j, nil).Score(context.Background(), testLayout(), testGuidelines(), nil)

	assert.Equal(t, judge.KindCompliance, got.Kind)
	assert.Equal(t, "Acme", got.Guidelines.Name)
	assert.Equal(t, 90, cs.Overall)
	assert.False(t, cs.Fallback)
}

func TestPredictorFallback(t *testing.T) {
	ps := NewPredictor(judge.Unavailable{}, nil).Predict(context.Background(), testLayout(), nil, channel.Spec{})
	assert.Equal(t, FallbackPerformance(), ps)
	assert.Equal(t, 70, ps.Overall)
	assert.InDelta(t, 0.3, ps.Confidence, 1e-9)
}

func TestParsePerformance(t *testing.T) {
	ps, err := ParsePerformance(`{"visualImpact": 90, "messageClarity": 80, "channelOptimization": 71, "confidence": 1.7}`)
	require.NoError(t, err)
	assert.Equal(t, 80, ps.Overall)
	assert.Equal(t, 1.0, ps.Confidence)

	ps, err = ParsePerformance(`{"visualImpact": 90, "messageClarity": 80, "channelOptimization": 70}`)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, ps.Confidence, 1e-9)

	_, err = ParsePerformance(`{"visualImpact": 90}`)
	assert.Error(t, err)
}

func TestRubricCompliance(t *testing.T) {
	g := testGuidelines()
	scorer := NewComplianceScorer(Rubric{}, nil)

	cs := scorer.Score(context.Background(), testLayout(), g, &creative.Territory{Tone: "calm and clean"})
	assert.False(t, cs.Fallback)
	assert.Equal(t, 100, cs.ColorCompliance)
	assert.Equal(t, 100, cs.FontCompliance)
	assert.Equal(t, 100, cs.LegalRequirements)
	assert.Equal(t, 100, cs.BrandAlignment)
	assert.Equal(t, Mean(cs.Categories()...), cs.Overall)
	for _, v := range cs.Categories() {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestRubricDetectsViolations(t *testing.T) {
	g := testGuidelines()
	g.Compliance.RequireLogo = true

	v := testLayout()
	v.Images = v.Images[:1]
	v.Texts[0].Content = "Guaranteed results"
	v.Texts[0].Typography.Family = "Comic Sans"
	v.Texts[1].Content = "Shop now"
	v.Texts[1].Rect.X = 0

	cs := NewComplianceScorer(Rubric{}, nil).Score(context.Background(), v, g, nil)
	assert.Equal(t, 40, cs.LogoUsage)
	assert.Equal(t, 50, cs.FontCompliance)
	assert.Equal(t, 40, cs.LegalRequirements)
	assert.Less(t, cs.Spacing, 100)

	categories := map[string]bool{}
	for _, v := range cs.Violations {
		categories[v.Category] = true
	}
	for _, c := range []string{creative.CategoryLogoUsage, creative.CategoryFontCompliance, creative.CategoryLegalRequirements, creative.CategorySpacing} {
		assert.True(t, categories[c], "expected a %s violation", c)
	}
}

func TestRubricOffBrandColor(t *testing.T) {
	v := testLayout()
	v.Palette.Background = "#ff00ff"
	cs := NewComplianceScorer(Rubric{}, nil).Score(context.Background(), v, testGuidelines(), nil)
	assert.Less(t, cs.ColorCompliance, 100)
}

func TestRubricPerformance(t *testing.T) {
	spec := channel.Spec{ID: "instagram_post", Category: channel.Social, Width: 1000, Height: 1000, DPI: 72}
	ps := NewPredictor(Rubric{}, nil).Predict(context.Background(), testLayout(), &creative.Territory{ID: "t"}, spec)

	assert.False(t, ps.Fallback)
	assert.Equal(t, 85, ps.ChannelOptimization)
	assert.Equal(t, Mean(ps.VisualImpact, ps.MessageClarity, ps.ChannelOptimization), ps.Overall)
	assert.InDelta(t, rubricConfidence, ps.Confidence, 1e-9)
	assert.GreaterOrEqual(t, ps.VisualImpact, 90, "hero near the ideal coverage with strong contrast")
}

func TestRubricReplyIsParseable(t *testing.T) {
	text, err := Rubric{}.Compute(context.Background(), judge.Prompt{Kind: judge.KindCompliance, Layout: testLayout()})
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(text)))

	_, err = Rubric{}.Compute(context.Background(), judge.Prompt{Kind: judge.KindCompliance})
	assert.Error(t, err)

	_, err = Rubric{}.Compute(context.Background(), judge.Prompt{Kind: "novelty", Layout: testLayout()})
	assert.Error(t, err)
}

func TestHeroAndTextCoverage(t *testing.T) {
	v := testLayout()
	assert.InDelta(t, 0.48, HeroCoverage(v), 1e-9)
	assert.InDelta(t, 0.072, TextCoverage(v), 1e-9)

	v.Images = nil
	assert.Equal(t, 0.0, HeroCoverage(v))
}
