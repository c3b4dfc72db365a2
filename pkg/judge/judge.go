// Package judge defines the external judgment strategy used by the scorers.
//
// A [Judge] receives a [Prompt] describing one composed layout and returns an
// unstructured text reply. Scorers parse the reply; they never depend on how
// it was produced. Implementations range from the built-in rubric in package
// score, to a remote policy engine or language model reached over HTTP
// ([HTTPJudge]), to test doubles ([Static], [Func], [Unavailable]).
//
// Failure of a judge is an expected condition: callers treat any error as
// "judgment unavailable" and fall back to deterministic scores.
package judge

import (
	"context"
	"fmt"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
)

// Kind identifies what is being judged.
type Kind string

const (
	KindCompliance  Kind = "compliance"
	KindPerformance Kind = "performance"
)

// Prompt is the input to a judgment.
type Prompt struct {
	Kind       Kind                      `json:"kind"`
	Layout     *creative.LayoutVariation `json:"layout"`
	Guidelines *creative.BrandGuidelines `json:"guidelines,omitempty"`
	Territory  *creative.Territory       `json:"territory,omitempty"`
	Channel    *channel.Spec             `json:"channel,omitempty"`
}

// Judge computes an unstructured judgment for a prompt.
type Judge interface {
	Compute(ctx context.Context, p Prompt) (string, error)
}

// Func adapts a plain function to [Judge].
type Func func(ctx context.Context, p Prompt) (string, error)

// Compute calls f.
func (f Func) Compute(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }

// Static always replies with the text registered for the prompt's kind.
// Kinds without an entry fail as unavailable.
type Static map[Kind]string

// Compute returns the canned reply for p.Kind.
func (s Static) Compute(_ context.Context, p Prompt) (string, error) {
	if text, ok := s[p.Kind]; ok {
		return text, nil
	}
	return "", Unavailablef("no static reply for %s", p.Kind)
}

// Unavailable is a judge that always fails. It stands in when no judgment
// engine is configured.
type Unavailable struct {
	Reason string
}

// Compute always returns a JUDGMENT_UNAVAILABLE error.
func (u Unavailable) Compute(context.Context, Prompt) (string, error) {
	reason := u.Reason
	if reason == "" {
		reason = "no judgment engine configured"
	}
	return "", Unavailablef("%s", reason)
}

// Unavailablef builds a JUDGMENT_UNAVAILABLE error.
func Unavailablef(format string, args ...any) error {
	return errors.New(errors.ErrCodeJudgmentUnavailable, format, args...)
}

// Chain tries each judge in order and returns the first successful reply.
type Chain []Judge

// Compute returns the first reply that does not error.
func (c Chain) Compute(ctx context.Context, p Prompt) (string, error) {
	var lastErr error
	for _, j := range c {
		if j == nil {
			continue
		}
		text, err := j.Compute(ctx, p)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = Unavailablef("empty judge chain")
	}
	return "", fmt.Errorf("all judges failed: %w", lastErr)
}
