// Package presets builds the built-in rules from the preset section of the
// configuration.
//
// Presets are added in a fixed order: html_import, then html_minify. The
// import preset is on unless disabled (or unless defaults are disabled as a
// whole); the minify preset is off unless enabled. Both match `**/*.html`
// when no pattern is given.
package presets

import (
	"github.com/guesant/marech/pkg/logging"
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transform"
	"github.com/guesant/marech/pkg/transformers/htmlimport"
	"github.com/guesant/marech/pkg/transformers/htmlminify"
)

// DefaultMatch is the pattern used by presets without an explicit match.
const DefaultMatch = "**/*.html"

// Rule names of the presets.
const (
	HTMLImportRule = "html_import"
	HTMLMinifyRule = "html_minify"
)

// HTMLImport configures the HTML import preset.
type HTMLImport struct {
	Enabled *bool              `koanf:"enabled" toml:"enabled,omitempty" yaml:"enabled,omitempty"`
	Match   string             `koanf:"match" toml:"match,omitempty" yaml:"match,omitempty"`
	Options htmlimport.Options `koanf:"options" toml:"options,omitempty" yaml:"options,omitempty"`
}

// HTMLMinify configures the HTML minify preset.
type HTMLMinify struct {
	Enabled *bool              `koanf:"enabled" toml:"enabled,omitempty" yaml:"enabled,omitempty"`
	Match   string             `koanf:"match" toml:"match,omitempty" yaml:"match,omitempty"`
	Options htmlminify.Options `koanf:"options" toml:"options" yaml:"options"`
}

// Options is the preset section of the configuration.
type Options struct {
	// MappedPaths maps import alias prefixes to directories.
	MappedPaths map[string]string `koanf:"mapped_paths" toml:"mapped_paths,omitempty" yaml:"mapped_paths,omitempty"`
	HTMLImport  HTMLImport        `koanf:"html_import" toml:"html_import" yaml:"html_import"`
	HTMLMinify  HTMLMinify        `koanf:"html_minify" toml:"html_minify" yaml:"html_minify"`
}

// DefaultOptions returns the preset configuration used when none is given.
func DefaultOptions() Options {
	return Options{
		HTMLImport: HTMLImport{Options: htmlimport.DefaultOptions()},
		HTMLMinify: HTMLMinify{Options: htmlminify.DefaultOptions()},
	}
}

// Bool returns a pointer to b, for setting Enabled fields.
func Bool(b bool) *bool { return &b }

// ImportEnabled reports whether the import preset is active.
func (o Options) ImportEnabled(defaultsEnabled bool) bool {
	if o.HTMLImport.Enabled != nil {
		return *o.HTMLImport.Enabled
	}
	return defaultsEnabled
}

// MinifyEnabled reports whether the minify preset is active.
func (o Options) MinifyEnabled() bool {
	return o.HTMLMinify.Enabled != nil && *o.HTMLMinify.Enabled
}

// BuildRules returns the enabled preset rules in order. It never fails and
// never touches the filesystem.
func BuildRules(opts Options, defaultsEnabled bool) []rules.Rule {
	logger := logging.GetLogger("presets")
	var out []rules.Rule

	if opts.ImportEnabled(defaultsEnabled) {
		out = append(out, rules.Rule{
			Name:    HTMLImportRule,
			Match:   matchOrDefault(opts.HTMLImport.Match),
			Kind:    transform.KindHTMLImport,
			Factory: htmlimport.Factory(opts.HTMLImport.Options),
		})
	}

	if opts.MinifyEnabled() {
		out = append(out, rules.Rule{
			Name:    HTMLMinifyRule,
			Match:   matchOrDefault(opts.HTMLMinify.Match),
			Kind:    transform.KindHTMLMinify,
			Factory: htmlminify.Factory(opts.HTMLMinify.Options),
		})
	}

	logger.Debug().
		Bool("defaults_enabled", defaultsEnabled).
		Int("rules", len(out)).
		Msg("Built preset rules")
	return out
}

// Compose returns userRules followed by the preset rules.
func Compose(userRules []rules.Rule, opts Options, defaultsEnabled bool) []rules.Rule {
	presetRules := BuildRules(opts, defaultsEnabled)
	out := make([]rules.Rule, 0, len(userRules)+len(presetRules))
	out = append(out, userRules...)
	return append(out, presetRules...)
}

func matchOrDefault(match string) string {
	if match == "" {
		return DefaultMatch
	}
	return match
}
