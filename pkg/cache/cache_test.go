package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j1, err := HashJSON(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatal(err)
	}
	j2, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if j1 != j2 {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	vk1 := k.VariationKey("req", VariationKeyOpts{Channel: "instagram_post", Style: "bold", Judge: "rubric"})
	vk2 := k.VariationKey("req", VariationKeyOpts{Channel: "instagram_post", Style: "minimal", Judge: "rubric"})
	if vk1 == vk2 {
		t.Error("Different VariationKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(vk1, "variation:") {
		t.Errorf("VariationKey unexpected: %s", vk1)
	}

	if jk := k.JudgmentKey("compliance", "abc"); jk != "judgment:compliance:abc" {
		t.Errorf("JudgmentKey unexpected: %s", jk)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:123:")

	if jk := scoped.JudgmentKey("performance", "h"); jk != "tenant:123:judgment:performance:h" {
		t.Errorf("ScopedKeyer JudgmentKey unexpected: %s", jk)
	}
	vk := scoped.VariationKey("req", VariationKeyOpts{})
	if !strings.HasPrefix(vk, "tenant:123:variation:") {
		t.Errorf("ScopedKeyer VariationKey should be prefixed: %s", vk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.JudgmentKey("k", "h"); key != "prefix:judgment:k:h" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k1", []byte("v1"), time.Hour))
	require.NoError(t, c.Set(ctx, "k2", []byte("v2"), 0))

	data, hit, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v1", string(data))

	require.NoError(t, c.Delete(ctx, "k1"))
	_, hit, _ = c.Get(ctx, "k1")
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "k1"), "deleting a missing key is fine")

	if cl, ok := c.(Clearer); ok {
		require.NoError(t, cl.Clear(ctx))
		_, hit, _ = c.Get(ctx, "k2")
		assert.False(t, hit, "Clear drops every entry")
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	exerciseCache(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	path := c.path("k")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoFileExists(t, path)
}

func TestFileCacheClearKeepsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	require.NoError(t, c.Clear(context.Background()))
	assert.DirExists(t, dir)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDefaultDir(t *testing.T) {
	assert.Equal(t, "adforge", filepath.Base(DefaultDir()))
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache(t *testing.T) {
	_, client := setupRedis(t)
	exerciseCache(t, NewRedisCache(client, DefaultRedisPrefix))
}

func TestRedisCachePrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	c := NewRedisCache(client, "a:")
	other := NewRedisCache(client, "b:")

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, other.Set(ctx, "k", []byte("w"), 0))
	assert.True(t, mr.Exists("a:k"))
	assert.Equal(t, time.Minute, mr.TTL("a:k"))

	require.NoError(t, c.Clear(ctx))
	assert.False(t, mr.Exists("a:k"))
	data, hit, err := other.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit, "Clear only touches its own prefix")
	assert.Equal(t, "w", string(data))

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)
	_, hit, err = c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.Close(), "borrowed client stays open")
	assert.NoError(t, client.Ping(ctx).Err())
}

func TestConnectRedis(t *testing.T) {
	mr, _ := setupRedis(t)
	c, err := ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0", DefaultRedisPrefix)
	require.NoError(t, err)
	exerciseCache(t, c)
	assert.NoError(t, c.Close())

	_, err = ConnectRedis(context.Background(), "not a url", "")
	assert.Error(t, err)
}
