package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal rendering.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default violet theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#b48cff"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Highlight applies terminal styling to a markdown report: headings get
// the label style, confidence annotations and separators are dimmed.
// Text content is preserved line for line.
func Highlight(report string, st Styles) string {
	lines := strings.Split(report, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(line, "#"):
			lines[i] = st.Label.Render(line)
		case strings.HasPrefix(trimmed, "*Confidence"):
			lines[i] = st.Help.Render(line)
		case line == "---":
			lines[i] = st.Help.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
