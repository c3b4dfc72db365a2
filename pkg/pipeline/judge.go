package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/adforge/pkg/cache"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/judge"
	"github.com/matzehuels/adforge/pkg/observability"
)

// cachedJudge memoizes judge replies by prompt content. Identity fields of
// the layout (ID, timestamps, earlier scores) are left out of the key so
// recomposing the same request reuses earlier judgments.
type cachedJudge struct {
	inner judge.Judge
	name  string
	cache cache.Cache
	keyer cache.Keyer
}

func (j *cachedJudge) Compute(ctx context.Context, p judge.Prompt) (string, error) {
	key, ok := j.key(p)
	if ok {
		if data, hit, err := j.cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeJudgment)
			return string(data), nil
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeJudgment)
	}

	text, err := j.inner.Compute(ctx, p)
	if err != nil {
		// Failures are not cached so an unavailable engine is retried.
		return "", err
	}
	if ok {
		if err := j.cache.Set(ctx, key, []byte(text), cache.TTLJudgment); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeJudgment, len(text))
		}
	}
	return text, nil
}

func (j *cachedJudge) key(p judge.Prompt) (string, bool) {
	if p.Layout != nil {
		l := *p.Layout
		l.ID = ""
		l.CreatedAt = time.Time{}
		l.UpdatedAt = time.Time{}
		l.Compliance = creative.ComplianceScore{}
		l.Performance = creative.PerformanceScore{}
		l.PerformanceScore = 0
		p.Layout = &l
	}
	h, err := cache.HashJSON(struct {
		Judge  string       `json:"judge"`
		Prompt judge.Prompt `json:"prompt"`
	}{j.name, p})
	if err != nil {
		return "", false
	}
	return j.keyer.JudgmentKey(string(p.Kind), h), true
}
