package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const minPanelWidth = 24

// Section is one labeled block of panel lines.
type Section struct {
	Label string
	Lines []string
}

// Panel is a boxed status summary: a title row, labeled sections, and a
// help row under the box. The demo prints one after its tour.
type Panel struct {
	Styles   Styles
	Title    string
	Status   string
	Sections []Section
	Help     string
}

// Render lays the panel out at the given terminal size. Sections share
// the vertical space evenly and show the tail of their lines, so the
// most recent log entries stay visible.
func (p Panel) Render(width, height int) string {
	if width < minPanelWidth {
		width = minPanelWidth
	}
	inner := width - 4

	per := 1
	if n := len(p.Sections); n > 0 {
		if rows := height - 4 - n; rows > n {
			per = rows / n
		}
	}

	bord := p.Styles.Border
	edge := strings.Repeat("─", width-2)

	title := p.Styles.Title.Render(p.Title)
	if p.Status != "" {
		title += " " + p.Styles.Help.Render("["+p.Status+"]")
	}

	rows := make([]string, 0, height+1)
	rows = append(rows, bord.Render("╭"+edge+"╮"))
	rows = append(rows, p.boxRow(title, inner))
	for _, sec := range p.Sections {
		rows = append(rows, p.divider(sec.Label, width))
		for _, ln := range tailLines(sec.Lines, per, inner) {
			rows = append(rows, p.boxRow(ln, inner))
		}
	}
	rows = append(rows, bord.Render("╰"+edge+"╯"))
	if p.Help != "" {
		rows = append(rows, p.Styles.Help.Render(p.Help))
	}
	return strings.Join(rows, "\n")
}

// boxRow wraps one line of content in the side borders, padded to the
// panel width.
func (p Panel) boxRow(text string, inner int) string {
	pad := max(0, inner-lipgloss.Width(text))
	b := p.Styles.Border
	return b.Render("│") + " " + text + strings.Repeat(" ", pad) + " " + b.Render("│")
}

// divider draws a section separator with the label embedded:
// ├─📜 Log───────┤
func (p Panel) divider(label string, width int) string {
	styled := p.Styles.Label.Render(label)
	fill := max(0, width-3-lipgloss.Width(styled))
	b := p.Styles.Border
	return b.Render("├─") + styled + b.Render(strings.Repeat("─", fill)+"┤")
}

// tailLines returns exactly n rows holding the last n of lines, each
// clipped to width columns. Missing rows render empty.
func tailLines(lines []string, n, width int) []string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := make([]string, n)
	for i := range lines {
		out[i] = clipCols(lines[i], width)
	}
	return out
}

// clipCols cuts s to at most width display columns, marking the cut
// with an ellipsis. Wide runes count by their terminal width.
func clipCols(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	cols := 0
	for i, r := range s {
		w := lipgloss.Width(string(r))
		if cols+w > width-1 {
			return s[:i] + "…"
		}
		cols += w
	}
	return s
}
