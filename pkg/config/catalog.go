// Package config loads adforge configuration.
//
// Two sources are supported:
//
//   - A TOML catalog file that extends the built-in channel registry and
//     export presets ([LoadCatalog]).
//   - Environment variables for the HTTP server and shared backends
//     ([LoadServer]).
//
// A catalog looks like this:
//
//	[[channel]]
//	id = "billboard_48"
//	name = "48-sheet billboard"
//	category = "print"
//	width = 6096
//	height = 2032
//	dpi = 100
//	color_space = "CMYK"
//	format = "pdf"
//
//	[[preset]]
//	name = "client-review"
//	description = "Small previews for client sign-off"
//	[preset.config]
//	quality = "preview"
//	compression = 40
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/export"
)

// Catalog holds channels and presets declared in a TOML file.
type Catalog struct {
	Channels []channel.Spec  `toml:"channel"`
	Presets  []export.Preset `toml:"preset"`
}

// ParseCatalog decodes a TOML catalog. Unknown keys are rejected so typos
// surface instead of being silently ignored.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Catalog{}, fmt.Errorf("parse catalog: unknown keys: %s", strings.Join(keys, ", "))
	}
	for i := range c.Channels {
		c.Channels[i].Category = channel.Category(strings.ToLower(string(c.Channels[i].Category)))
		c.Channels[i].ColorSpace = channel.ColorSpace(strings.ToUpper(string(c.Channels[i].ColorSpace)))
		c.Channels[i].Format = channel.Format(strings.ToLower(string(c.Channels[i].Format)))
	}
	return c, nil
}

// LoadCatalog reads and parses the catalog file at path.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// Apply returns reg and presets extended with the catalog's entries.
// Catalog entries replace built-ins with the same ID or name. Neither
// input is modified.
func (c Catalog) Apply(reg *channel.Registry, presets *export.Presets) (*channel.Registry, *export.Presets, error) {
	outReg, err := reg.With(c.Channels...)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog channels: %w", err)
	}
	outPresets, err := presets.With(c.Presets...)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog presets: %w", err)
	}
	return outReg, outPresets, nil
}

// Defaults returns the built-in registry and presets, extended by the
// catalog at path when path is non-empty.
func Defaults(path string) (*channel.Registry, *export.Presets, error) {
	reg, presets := channel.Default(), export.DefaultPresets()
	if path == "" {
		return reg, presets, nil
	}
	c, err := LoadCatalog(path)
	if err != nil {
		return nil, nil, err
	}
	return c.Apply(reg, presets)
}
