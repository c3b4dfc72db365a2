// Package score turns judgment replies into compliance and performance
// scores.
//
// Scorers delegate the actual assessment to a [judge.Judge] and only parse
// its unstructured reply. Any failure along that path (judge error, no JSON
// in the reply, missing categories) is absorbed: the scorer returns a flat
// fallback score instead of an error, so a composed layout always carries
// both scores.
//
// [Rubric] is the built-in deterministic judge used when no external engine
// is configured.
package score

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/adforge/pkg/creative"
)

// extractObject returns the outermost JSON object embedded in text, from the
// first '{' to the last '}'.
func extractObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in reply")
	}
	return text[start : end+1], nil
}

// decodeReply extracts the embedded object and unmarshals it into v.
// Replies may nest the numbers under "scores"; both shapes are accepted.
func decodeReply(text string, v any) error {
	obj, err := extractObject(text)
	if err != nil {
		return err
	}
	var envelope struct {
		Scores json.RawMessage `json:"scores"`
	}
	if err := json.Unmarshal([]byte(obj), &envelope); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if len(envelope.Scores) > 0 && envelope.Scores[0] == '{' {
		if err := json.Unmarshal(envelope.Scores, v); err != nil {
			return fmt.Errorf("decode scores: %w", err)
		}
	}
	return nil
}

// bound rounds f to the nearest integer in [0,100].
func bound(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

// Mean returns round(mean(values)) bounded to [0,100]. An empty input is 0.
func Mean(values ...int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return bound(float64(sum) / float64(len(values)))
}

func need(name string, v *float64) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("reply is missing %q", name)
	}
	return bound(*v), nil
}

func layoutID(v *creative.LayoutVariation) string {
	if v == nil {
		return ""
	}
	return v.ID
}
