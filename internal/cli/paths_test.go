package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/adforge/pkg/cache"
)

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(custom, appName), dir)
}

func TestCacheDirHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	_, isNull := newCache(true).(*cache.NullCache)
	assert.True(t, isNull, "--no-cache should give a null cache")

	fc, ok := newCache(false).(*cache.FileCache)
	require.True(t, ok, "default cache should be file-backed")
	dir, _ := cacheDir()
	assert.Equal(t, dir, fc.Dir())
}
