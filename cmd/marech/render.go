package marech

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/guesant/marech/pkg/build"
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/style"
	"github.com/guesant/marech/pkg/transform"
)

// ruleView is how a rule is shown by `marech rules`.
type ruleView struct {
	Position int            `yaml:"position"`
	Name     string         `yaml:"name"`
	Match    string         `yaml:"match"`
	Kind     transform.Kind `yaml:"kind,omitempty"`
	Source   string         `yaml:"source"`
}

// ruleViews describes list; the first userRules entries come from the config.
func ruleViews(list []rules.Rule, userRules int) []ruleView {
	views := make([]ruleView, 0, len(list))
	for i, r := range list {
		source := MsgRuleSourcePreset
		if i < userRules {
			source = MsgRuleSourceConfig
		}
		views = append(views, ruleView{
			Position: i + 1,
			Name:     r.Name,
			Match:    r.Match,
			Kind:     r.Kind,
			Source:   source,
		})
	}
	return views
}

func renderRules(w io.Writer, configPath string, views []ruleView) {
	fmt.Fprintln(w, style.TitleStyle.Render(fmt.Sprintf(MsgRulesHeader, configPath)))
	if len(views) == 0 {
		fmt.Fprintln(w, style.Indent(style.MutedStyle.Render(MsgNoRules), 1))
		return
	}
	for _, v := range views {
		line := fmt.Sprintf(MsgRuleItem, v.Position, v.Name, v.Match, v.Kind)
		if v.Source == MsgRuleSourcePreset {
			line += " " + style.MutedStyle.Render("("+v.Source+")")
		}
		fmt.Fprintln(w, line)
	}
}

func renderReport(w io.Writer, dir string, report *build.Report, dryRun bool) {
	if report == nil {
		return
	}
	if len(report.Files) == 0 {
		fmt.Fprintln(w, style.MutedStyle.Render(MsgNoFiles))
		return
	}

	for _, f := range report.Files {
		indicator := style.SuccessIndicator
		switch {
		case f.Err != nil:
			indicator = style.ErrorIndicator
		case !f.Matched:
			indicator = style.SkipIndicator
		}
		fmt.Fprintf(w, MsgFileItem+"\n", indicator, style.Path(relTo(dir, f.Source)), style.Path(relTo(dir, f.Output)))
		if f.Err != nil {
			fmt.Fprintln(w, style.Indent(style.ErrorStyle.Render(f.Err.Error()), 2))
		}
	}

	fmt.Fprintln(w)
	failed := len(report.Failed())
	fmt.Fprintf(w, MsgBuildSummary, report.Built(), failed, len(report.Files))
	if dryRun {
		fmt.Fprintln(w, style.WarningStyle.Render(MsgDryRunNotice))
	}
}

func relTo(dir, p string) string {
	if dir == "" {
		return p
	}
	if rel, err := filepath.Rel(dir, p); err == nil {
		return rel
	}
	return p
}
