package score

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/judge"
	"github.com/matzehuels/adforge/pkg/observability"
)

// Fallback performance values.
const (
	PerformanceFallback = 70
	FallbackConfidence  = 0.3
	defaultConfidence   = 0.6
)

// Predictor estimates the audience performance of layouts.
type Predictor struct {
	judge  judge.Judge
	logger *log.Logger
}

// NewPredictor creates a predictor backed by j. A nil judge always produces
// the fallback score.
func NewPredictor(j judge.Judge, logger *log.Logger) *Predictor {
	if j == nil {
		j = judge.Unavailable{}
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Predictor{judge: j, logger: logger}
}

// Predict judges v for territory t on channel spec. It never fails: judge
// errors and unparseable replies yield [FallbackPerformance].
func (p *Predictor) Predict(ctx context.Context, v *creative.LayoutVariation, t *creative.Territory, spec channel.Spec) creative.PerformanceScore {
	start := time.Now()
	text, err := p.judge.Compute(ctx, judge.Prompt{
		Kind:      judge.KindPerformance,
		Layout:    v,
		Territory: t,
		Channel:   &spec,
	})
	var ps creative.PerformanceScore
	if err == nil {
		ps, err = ParsePerformance(text)
	}
	fallback := err != nil
	if fallback {
		p.logger.Warn("performance judgment unavailable, using fallback", "layout", layoutID(v), "err", err)
		ps = FallbackPerformance()
	}
	observability.Pipeline().OnJudgment(ctx, string(judge.KindPerformance), fallback, time.Since(start))
	return ps
}

// FallbackPerformance returns the flat score used when judgment is unavailable.
func FallbackPerformance() creative.PerformanceScore {
	return creative.PerformanceScore{
		Overall:             PerformanceFallback,
		VisualImpact:        PerformanceFallback,
		MessageClarity:      PerformanceFallback,
		ChannelOptimization: PerformanceFallback,
		Confidence:          FallbackConfidence,
		Fallback:            true,
	}
}

type performanceReply struct {
	VisualImpact        *float64 `json:"visualImpact"`
	MessageClarity      *float64 `json:"messageClarity"`
	ChannelOptimization *float64 `json:"channelOptimization"`
	Confidence          *float64 `json:"confidence"`
}

// ParsePerformance reads a performance reply. The three sub-scores are
// required; Overall is their rounded mean. Confidence defaults to 0.6 and is
// clamped to [0,1].
func ParsePerformance(text string) (creative.PerformanceScore, error) {
	var r performanceReply
	if err := decodeReply(text, &r); err != nil {
		return creative.PerformanceScore{}, err
	}
	var ps creative.PerformanceScore
	var err error
	if ps.VisualImpact, err = need("visualImpact", r.VisualImpact); err != nil {
		return creative.PerformanceScore{}, err
	}
	if ps.MessageClarity, err = need("messageClarity", r.MessageClarity); err != nil {
		return creative.PerformanceScore{}, err
	}
	if ps.ChannelOptimization, err = need("channelOptimization", r.ChannelOptimization); err != nil {
		return creative.PerformanceScore{}, err
	}
	ps.Overall = Mean(ps.VisualImpact, ps.MessageClarity, ps.ChannelOptimization)

	ps.Confidence = defaultConfidence
	if r.Confidence != nil {
		ps.Confidence = min(1, max(0, *r.Confidence))
	}
	return ps, nil
}
