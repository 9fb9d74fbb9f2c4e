package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/tui/components"
	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/styles"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// Agenda renders the evaluation timeline.
func Agenda(p view.AgendaPanel, width int) string {
	t := theme.Current()
	inner := Inner(width)

	var lines []string
	for _, it := range p.Items {
		icon := it.Icon
		if icon == "" {
			icon = "·"
		}
		title := it.Title
		style := lipgloss.NewStyle().Foreground(t.Text)
		switch {
		case it.Live:
			style = style.Foreground(t.Green).Bold(true)
		case it.Muted:
			style = style.Foreground(t.Overlay)
		}
		head := style.Render(layout.Truncate(icon+" "+title, inner-10))
		if it.Status != "" {
			head += " " + styles.StatusBadge(it.Status)
		}
		lines = append(lines, head)
		if it.Detail != "" {
			lines = append(lines, "  "+styles.Muted(layout.Truncate(it.Detail, inner-2)))
		}
	}
	if p.Err != "" {
		lines = append(lines, components.ErrorLine(p.Err, inner))
	}
	return strings.Join(lines, "\n")
}
