package config

import (
	"path/filepath"

	"github.com/guesant/marech/pkg/presets"
)

// DefaultMatch is the input match used when a file group sets none.
const DefaultMatch = "**/*"

// Input selects the source files of a group.
type Input struct {
	// Path is a file or a directory.
	Path string `koanf:"path" toml:"path" yaml:"path"`
	// Match filters the files of a directory input. Defaults to DefaultMatch.
	Match string `koanf:"match" toml:"match,omitempty" yaml:"match,omitempty"`
}

// Output says where the results of a group are written.
type Output struct {
	// Path is the output directory.
	Path string `koanf:"path" toml:"path" yaml:"path"`
	// Filename renames the output of a single-file input.
	Filename string `koanf:"filename" toml:"filename,omitempty" yaml:"filename,omitempty"`
}

// FileGroup is one entry of the files list.
type FileGroup struct {
	Input  Input  `koanf:"input" toml:"input" yaml:"input"`
	Output Output `koanf:"output" toml:"output" yaml:"output"`
}

// Rule is a user-declared rule. Transformer names a registered transformer
// and Options holds its raw options.
type Rule struct {
	Name        string         `koanf:"name" toml:"name,omitempty" yaml:"name,omitempty"`
	Match       string         `koanf:"match" toml:"match" yaml:"match"`
	Transformer string         `koanf:"transformer" toml:"transformer" yaml:"transformer"`
	Options     map[string]any `koanf:"options" toml:"options,omitempty" yaml:"options,omitempty"`
}

// Config is a loaded project configuration.
type Config struct {
	// DefaultsEnabled turns on the presets that are on by default.
	DefaultsEnabled bool            `koanf:"defaults_enabled" toml:"defaults_enabled" yaml:"defaults_enabled"`
	Files           []FileGroup     `koanf:"files" toml:"files" yaml:"files"`
	Rules           []Rule          `koanf:"rules" toml:"rules,omitempty" yaml:"rules,omitempty"`
	Presets         presets.Options `koanf:"presets" toml:"presets" yaml:"presets"`

	// Path is the file the configuration was read from.
	Path string `koanf:"-" toml:"-" yaml:"-"`
	// Dir is the directory relative paths were resolved against.
	Dir string `koanf:"-" toml:"-" yaml:"-"`
}

// Default returns the built-in configuration with no file groups.
func Default() *Config {
	return &Config{
		DefaultsEnabled: true,
		Presets:         presets.DefaultOptions(),
	}
}

// Template returns the configuration written by `marech init`.
func Template() *Config {
	cfg := Default()
	cfg.Files = []FileGroup{{
		Input:  Input{Path: "src", Match: "**/*.html"},
		Output: Output{Path: "dist"},
	}}
	cfg.Presets.MappedPaths = map[string]string{"~": "src"}
	return cfg
}

// resolvePaths makes the input and output paths absolute, relative to dir.
func (c *Config) resolvePaths(dir string) {
	c.Dir = dir
	for i := range c.Files {
		c.Files[i].Input.Path = absFrom(dir, c.Files[i].Input.Path)
		c.Files[i].Output.Path = absFrom(dir, c.Files[i].Output.Path)
		if c.Files[i].Input.Match == "" {
			c.Files[i].Input.Match = DefaultMatch
		}
	}
}

func absFrom(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
