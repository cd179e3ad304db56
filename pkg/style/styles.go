// Package style holds the lipgloss styles used for human-readable CLI output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guesant/marech/pkg/transform"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	PatternStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

var kindStyles = map[transform.Kind]lipgloss.Style{
	transform.KindHTMLImport: lipgloss.NewStyle().Foreground(ImportColor).Bold(true),
	transform.KindHTMLMinify: lipgloss.NewStyle().Foreground(MinifyColor).Bold(true),
	transform.KindIdentity:   lipgloss.NewStyle().Foreground(IdentityColor).Bold(true),
}

// Operation indicator styles
var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	SkipIndicator    = MutedStyle.Render("○")
)

// Kind renders a transformer kind in its color.
func Kind(kind transform.Kind) string {
	if s, ok := kindStyles[kind]; ok {
		return s.Render(string(kind))
	}
	return MutedStyle.Render(string(kind))
}

// Path renders a file path.
func Path(p string) string {
	return PathStyle.Render(p)
}

func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
