package config

import (
	"fmt"

	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/presets"
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transformers"
)

// Validate checks a decoded configuration. The returned error is an
// ErrConfigInvalid carrying the offending field.
func Validate(cfg *Config) error {
	for i, group := range cfg.Files {
		field := fmt.Sprintf("files[%d]", i)
		if group.Input.Path == "" {
			return fieldError(cfg, field+".input.path", "input path is required", nil)
		}
		if group.Output.Path == "" {
			return fieldError(cfg, field+".output.path", "output path is required", nil)
		}
		if group.Input.Match != "" {
			if _, err := rules.CompilePattern(group.Input.Match); err != nil {
				return fieldError(cfg, field+".input.match", "invalid pattern "+group.Input.Match, err)
			}
		}
	}

	for i, rule := range cfg.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if rule.Match == "" {
			return fieldError(cfg, field+".match", "match is required", nil)
		}
		if _, err := rules.CompilePattern(rule.Match); err != nil {
			return fieldError(cfg, field+".match", "invalid pattern "+rule.Match, err)
		}
		if rule.Transformer == "" {
			return fieldError(cfg, field+".transformer", "transformer is required", nil)
		}
		if _, _, err := transformers.NewFactory(rule.Transformer, rule.Options); err != nil {
			return fieldError(cfg, field+".transformer", "cannot configure transformer "+rule.Transformer, err)
		}
	}

	for name, match := range map[string]string{
		"presets.html_import.match": cfg.Presets.HTMLImport.Match,
		"presets.html_minify.match": cfg.Presets.HTMLMinify.Match,
	} {
		if match == "" {
			continue
		}
		if _, err := rules.CompilePattern(match); err != nil {
			return fieldError(cfg, name, "invalid pattern "+match, err)
		}
	}

	for prefix := range cfg.Presets.MappedPaths {
		if prefix == "" {
			return fieldError(cfg, "presets.mapped_paths", "alias prefix cannot be empty", nil)
		}
	}
	return nil
}

// BuildRules returns the rule list of cfg: user rules first, then presets.
func (c *Config) BuildRules() ([]rules.Rule, error) {
	userRules := make([]rules.Rule, 0, len(c.Rules))
	for i, r := range c.Rules {
		factory, kind, err := transformers.NewFactory(r.Transformer, r.Options)
		if err != nil {
			return nil, fieldError(c, fmt.Sprintf("rules[%d].transformer", i), "cannot configure transformer "+r.Transformer, err)
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("rules[%d]", i)
		}
		userRules = append(userRules, rules.Rule{
			Name:    name,
			Match:   r.Match,
			Kind:    kind,
			Factory: factory,
		})
	}
	return presets.Compose(userRules, c.Presets, c.DefaultsEnabled), nil
}

// RuleSet compiles BuildRules into a RuleSet.
func (c *Config) RuleSet() (*rules.RuleSet, error) {
	list, err := c.BuildRules()
	if err != nil {
		return nil, err
	}
	set, err := rules.NewRuleSet(list)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "invalid rules").
			WithDetail("path", c.Path)
	}
	return set, nil
}

func fieldError(cfg *Config, field, message string, cause error) error {
	var e *errors.MarechError
	if cause != nil {
		e = errors.Wrapf(cause, errors.ErrConfigInvalid, "%s: %s", field, message)
	} else {
		e = errors.Newf(errors.ErrConfigInvalid, "%s: %s", field, message)
	}
	return e.WithDetail("field", field).WithDetail("path", cfg.Path)
}
