// Package cache stores composed layout variations between runs.
//
// Composition is deterministic for a given request, so the pipeline runner
// keys cached variations by a hash of everything that influences the result
// (territory, assets, guidelines, channel, style and the scoring backend).
//
// Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for server deployments
//
// Keys are produced by a [Keyer]; wrap one in [NewScopedKeyer] to isolate
// tenants or environments.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	// TTLVariation is how long a composed variation stays valid. Scores come
	// from a judge that may change behavior, so entries do expire.
	TTLVariation = 24 * time.Hour

	// TTLJudgment is how long a raw judge reply stays valid.
	TTLJudgment = 6 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// VariationKeyOpts are the settings that change a composed variation beyond
// the request itself.
type VariationKeyOpts struct {
	Channel string `json:"channel"`
	Style   string `json:"style"`
	// Judge names the scoring backend, for example "rubric" or an endpoint.
	Judge string `json:"judge"`
}

// Keyer builds cache keys.
type Keyer interface {
	// VariationKey keys one composed variation by request hash.
	VariationKey(requestHash string, opts VariationKeyOpts) string

	// JudgmentKey keys one raw judge reply.
	JudgmentKey(kind, promptHash string) string
}

// DefaultKeyer produces "variation:<sha256>" and "judgment:<kind>:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// VariationKey implements Keyer.
func (DefaultKeyer) VariationKey(requestHash string, opts VariationKeyOpts) string {
	return hashKey("variation", requestHash, opts)
}

// JudgmentKey implements Keyer.
func (DefaultKeyer) JudgmentKey(kind, promptHash string) string {
	return "judgment:" + kind + ":" + promptHash
}
