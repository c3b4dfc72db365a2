package score

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/judge"
	"github.com/matzehuels/adforge/pkg/observability"
)

// ComplianceFallback is the flat category score used when no judgment is
// available.
const ComplianceFallback = 75

// ManualReviewRecommendation accompanies every fallback compliance score.
const ManualReviewRecommendation = "Automated compliance review unavailable; perform a manual brand review before publishing."

// ComplianceScorer rates layouts against brand guidelines.
type ComplianceScorer struct {
	judge  judge.Judge
	logger *log.Logger
}

// NewComplianceScorer creates a scorer backed by j. A nil judge always
// produces the fallback score.
func NewComplianceScorer(j judge.Judge, logger *log.Logger) *ComplianceScorer {
	if j == nil {
		j = judge.Unavailable{}
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &ComplianceScorer{judge: j, logger: logger}
}

// Score judges v against g. The territory is optional context for tone
// checks and may be nil. It never fails: judge errors and unparseable
// replies yield [FallbackCompliance].
func (s *ComplianceScorer) Score(ctx context.Context, v *creative.LayoutVariation, g creative.BrandGuidelines, t *creative.Territory) creative.ComplianceScore {
	start := time.Now()
	text, err := s.judge.Compute(ctx, judge.Prompt{
		Kind:       judge.KindCompliance,
		Layout:     v,
		Guidelines: &g,
		Territory:  t,
	})
	var cs creative.ComplianceScore
	if err == nil {
		cs, err = ParseCompliance(text)
	}
	fallback := err != nil
	if fallback {
		s.logger.Warn("compliance judgment unavailable, using fallback", "layout", layoutID(v), "err", err)
		cs = FallbackCompliance()
	}
	observability.Pipeline().OnJudgment(ctx, string(judge.KindCompliance), fallback, time.Since(start))
	return cs
}

// FallbackCompliance returns the flat score used when judgment is unavailable.
func FallbackCompliance() creative.ComplianceScore {
	return creative.ComplianceScore{
		Overall:           ComplianceFallback,
		BrandAlignment:    ComplianceFallback,
		ColorCompliance:   ComplianceFallback,
		FontCompliance:    ComplianceFallback,
		LogoUsage:         ComplianceFallback,
		Spacing:           ComplianceFallback,
		LegalRequirements: ComplianceFallback,
		Recommendations:   []string{ManualReviewRecommendation},
		Fallback:          true,
	}
}

type complianceReply struct {
	BrandAlignment    *float64          `json:"brandAlignment"`
	ColorCompliance   *float64          `json:"colorCompliance"`
	FontCompliance    *float64          `json:"fontCompliance"`
	LogoUsage         *float64          `json:"logoUsage"`
	Spacing           *float64          `json:"spacing"`
	LegalRequirements *float64          `json:"legalRequirements"`
	Violations        []json.RawMessage `json:"violations"`
	Recommendations   []string          `json:"recommendations"`
}

// ParseCompliance reads a compliance reply. All six categories must be
// present; scores are rounded and bounded to [0,100] and Overall is their
// rounded mean. Violations may be objects or bare strings.
func ParseCompliance(text string) (creative.ComplianceScore, error) {
	var r complianceReply
	if err := decodeReply(text, &r); err != nil {
		return creative.ComplianceScore{}, err
	}

	var cs creative.ComplianceScore
	fields := []struct {
		name string
		src  *float64
		dst  *int
	}{
		{creative.CategoryBrandAlignment, r.BrandAlignment, &cs.BrandAlignment},
		{creative.CategoryColorCompliance, r.ColorCompliance, &cs.ColorCompliance},
		{creative.CategoryFontCompliance, r.FontCompliance, &cs.FontCompliance},
		{creative.CategoryLogoUsage, r.LogoUsage, &cs.LogoUsage},
		{creative.CategorySpacing, r.Spacing, &cs.Spacing},
		{creative.CategoryLegalRequirements, r.LegalRequirements, &cs.LegalRequirements},
	}
	for _, f := range fields {
		n, err := need(f.name, f.src)
		if err != nil {
			return creative.ComplianceScore{}, err
		}
		*f.dst = n
	}
	cs.Overall = Mean(cs.Categories()...)

	for _, raw := range r.Violations {
		if v, ok := parseViolation(raw); ok {
			cs.Violations = append(cs.Violations, v)
		}
	}
	for _, rec := range r.Recommendations {
		if rec = strings.TrimSpace(rec); rec != "" {
			cs.Recommendations = append(cs.Recommendations, rec)
		}
	}
	return cs, nil
}

func parseViolation(raw json.RawMessage) (creative.Violation, bool) {
	var detail string
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail = strings.TrimSpace(detail); detail == "" {
			return creative.Violation{}, false
		}
		return creative.Violation{Severity: "medium", Detail: detail}, true
	}
	var v creative.Violation
	if err := json.Unmarshal(raw, &v); err != nil || v.Detail == "" {
		return creative.Violation{}, false
	}
	if v.Severity == "" {
		v.Severity = "medium"
	}
	return v, true
}
