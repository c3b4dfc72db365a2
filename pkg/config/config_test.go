package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/cache"
	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/export"
)

const testCatalog = `
[[channel]]
id = "billboard_48"
name = "48-sheet billboard"
category = "Print"
width = 6096
height = 2032
dpi = 100
color_space = "cmyk"
format = "PDF"

[[channel]]
id = "instagram_post"
name = "Instagram post (PNG)"
category = "social"
width = 1080
height = 1080
dpi = 72
color_space = "RGB"
format = "png"

[[preset]]
name = "client-review"
description = "Small previews for client sign-off"
[preset.config]
quality = "preview"
compression = 40
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	require.Len(t, c.Channels, 2)
	require.Len(t, c.Presets, 1)

	b := c.Channels[0]
	assert.Equal(t, channel.Print, b.Category)
	assert.Equal(t, channel.CMYK, b.ColorSpace)
	assert.Equal(t, channel.FormatPDF, b.Format)
	assert.Equal(t, export.QualityPreview, c.Presets[0].Config.Quality)
	assert.Equal(t, 40, c.Presets[0].Config.Compression)
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"syntax", "[[channel]\nid = ", "parse catalog"},
		{"unknown key", "[[channel]]\nid = \"x\"\nwidht = 10\n", "unknown keys"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCatalogApply(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	base := channel.Default()
	reg, presets, err := c.Apply(base, export.DefaultPresets())
	require.NoError(t, err)

	assert.Equal(t, base.Len()+1, reg.Len())
	spec, err := reg.Lookup("instagram_post")
	require.NoError(t, err)
	assert.Equal(t, channel.FormatPNG, spec.Format, "catalog overrides built-ins")
	orig, _ := base.Lookup("instagram_post")
	assert.Equal(t, channel.FormatJPG, orig.Format, "base registry untouched")

	_, err = presets.Lookup("client-review")
	assert.NoError(t, err)
	_, err = presets.Lookup("social-web")
	assert.NoError(t, err)
}

func TestCatalogApplyInvalidChannel(t *testing.T) {
	c := Catalog{Channels: []channel.Spec{{ID: "bad", Width: 0, Height: 10, DPI: 72, ColorSpace: channel.RGB, Format: "png"}}}
	_, _, err := c.Apply(channel.Default(), export.DefaultPresets())
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	reg, presets, err := Defaults("")
	require.NoError(t, err)
	assert.Equal(t, channel.Default().Len(), reg.Len())
	assert.Equal(t, export.DefaultPresets().Names(), presets.Names())

	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	reg, _, err = Defaults(path)
	require.NoError(t, err)
	assert.True(t, reg.Has("billboard_48"))

	_, _, err = Defaults(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadServerDefaults(t *testing.T) {
	s, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", s.Addr)
	assert.Equal(t, CacheFile, s.Cache)
	assert.Equal(t, StoreMemory, s.Store)
	assert.Equal(t, int64(10<<20), s.MaxBodyBytes)
}

func TestLoadServerErrors(t *testing.T) {
	t.Setenv("ADFORGE_MAX_BODY_BYTES", "lots")
	_, err := LoadServer()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"))

	t.Setenv("ADFORGE_MAX_BODY_BYTES", "100")
	t.Setenv("ADFORGE_CACHE", "memcached")
	_, err = LoadServer()
	assert.ErrorContains(t, err, "invalid cache backend")
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	s := Server{Cache: CacheFile, CacheDir: t.TempDir(), Store: StoreFile, StoreDir: t.TempDir(), PublicURL: "https://ads.example.com/"}

	c, err := s.OpenCache(ctx)
	require.NoError(t, err)
	assert.IsType(t, &cache.FileCache{}, c)
	require.NoError(t, c.Close())

	store, closeStore, err := s.OpenStore(ctx)
	require.NoError(t, err)
	defer closeStore(ctx)
	ref, err := store.Put(ctx, "a.svg", "image/svg+xml", []byte("<svg/>"))
	require.NoError(t, err)
	assert.Equal(t, "https://ads.example.com/v1/artifacts/"+ref.ID, ref.URL)

	s.Cache, s.Store = CacheNull, StoreMemory
	c, err = s.OpenCache(ctx)
	require.NoError(t, err)
	assert.IsType(t, cache.NewNullCache(), c)
	store, _, err = s.OpenStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &artifact.Memory{}, store)
}
