package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments or tenants
// can share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// VariationKey generates a prefixed variation key.
func (k *ScopedKeyer) VariationKey(requestHash string, opts VariationKeyOpts) string {
	return k.prefix + k.inner.VariationKey(requestHash, opts)
}

// JudgmentKey generates a prefixed judgment key.
func (k *ScopedKeyer) JudgmentKey(kind, promptHash string) string {
	return k.prefix + k.inner.JudgmentKey(kind, promptHash)
}
