// Package rules maps file paths to transformer factories.
//
// A rule pairs a glob pattern with a factory that builds the transformer for
// a matching file. Rules are kept in the order they were declared and the
// first rule whose pattern matches a file wins; later rules are never
// consulted for that file. A file that matches no rule is passed through
// unchanged by the engine.
//
// # Pattern Conventions
//
// Patterns are matched against slash-separated paths:
//
//   - `index.html` - Exact path match
//   - `*.html` - `*` matches within a single path segment
//   - `**/*.html` - `**` crosses segments; a leading `**/` also matches
//     zero directories, so this matches both `index.html` and `a/b/c.html`
//   - `pages/**/*.html` - files anywhere below `pages/`
//   - `{index,about}.html` - alternatives
//
// # Building a RuleSet
//
// Rules are plain values; [NewRuleSet] compiles their patterns once and
// rejects invalid globs:
//
//	set, err := rules.NewRuleSet([]rules.Rule{
//		{Name: "pages", Match: "pages/**/*.html", Factory: pageFactory},
//		{Name: "html", Match: "**/*.html", Factory: htmlFactory},
//	})
package rules
