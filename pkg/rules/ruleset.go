package rules

import (
	"fmt"

	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/logging"
	"github.com/guesant/marech/pkg/transform"
	"github.com/rs/zerolog"
)

// Factory builds the transformer for one file. It receives the RuleSet it was
// selected from so nested files can be dispatched through the same rules.
type Factory func(ctx transform.Context, rules *RuleSet) (transform.Transformer, error)

// Rule pairs a match pattern with a transformer factory.
type Rule struct {
	// Name identifies the rule in logs and errors.
	Name string
	// Match is the glob selecting the files this rule applies to.
	Match string
	// Kind is the transformer kind the factory builds, when known.
	Kind transform.Kind
	// Factory builds the transformer.
	Factory Factory
}

type compiledRule struct {
	rule    Rule
	pattern *Pattern
}

// RuleSet is an ordered, compiled list of rules. It is immutable after
// construction and safe for concurrent use.
type RuleSet struct {
	rules  []compiledRule
	logger zerolog.Logger
}

// NewRuleSet compiles the patterns of rules, keeping their order.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		if rule.Factory == nil {
			return nil, errors.Newf(errors.ErrInvalidInput, "rule %d (%s) has no transformer", i, ruleName(rule, i)).
				WithDetail("rule", ruleName(rule, i))
		}
		if rule.Match == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "rule %d (%s) has empty pattern", i, ruleName(rule, i)).
				WithDetail("rule", ruleName(rule, i))
		}
		pattern, err := CompilePattern(rule.Match)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "rule %d (%s) has invalid match pattern %q", i, ruleName(rule, i), rule.Match).
				WithDetail("rule", ruleName(rule, i)).
				WithDetail("match", rule.Match)
		}
		rule.Name = ruleName(rule, i)
		compiled = append(compiled, compiledRule{rule: rule, pattern: pattern})
	}

	return &RuleSet{
		rules:  compiled,
		logger: logging.GetLogger("rules"),
	}, nil
}

// MustNewRuleSet is like NewRuleSet but panics on error.
func MustNewRuleSet(rules []Rule) *RuleSet {
	set, err := NewRuleSet(rules)
	if err != nil {
		panic(err)
	}
	return set
}

// Match returns the first rule whose pattern matches path, along with its
// position in the set.
func (s *RuleSet) Match(path string) (Rule, int, bool) {
	if s == nil {
		return Rule{}, -1, false
	}
	for i, cr := range s.rules {
		if cr.pattern.Match(path) {
			s.logger.Trace().
				Str("path", path).
				Str("rule", cr.rule.Name).
				Str("match", cr.rule.Match).
				Msg("File matched rule")
			return cr.rule, i, true
		}
	}
	s.logger.Trace().Str("path", path).Msg("No rule matched")
	return Rule{}, -1, false
}

// Rules returns the rules in declared order.
func (s *RuleSet) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, len(s.rules))
	for i, cr := range s.rules {
		out[i] = cr.rule
	}
	return out
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

func ruleName(rule Rule, i int) string {
	if rule.Name != "" {
		return rule.Name
	}
	if rule.Kind != "" {
		return fmt.Sprintf("%s#%d", rule.Kind, i)
	}
	return fmt.Sprintf("rule#%d", i)
}
