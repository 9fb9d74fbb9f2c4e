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

// Timer renders the live round title, the four countdown cells, the
// evaluation badges and the ready action.
func Timer(p view.TimerPanel, width int) string {
	t := theme.Current()
	inner := Inner(width)

	titleColor := t.Overlay
	if p.Live {
		titleColor = t.Green
	}
	lines := []string{lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(layout.Truncate(p.Title, inner))}

	cellWidth := max(min((inner-3)/4, 9), 4)
	cell := lipgloss.NewStyle().
		Width(cellWidth).
		Align(lipgloss.Center).
		Foreground(t.Text).
		Bold(true)
	caption := cell.Bold(false).Foreground(t.Overlay)
	var nums, caps []string
	for i, v := range p.Cells {
		nums = append(nums, cell.Render(v))
		caps = append(caps, caption.Render(layout.Truncate(view.CountdownLabels[i], cellWidth)))
	}
	lines = append(lines,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, spaced(nums)...),
		lipgloss.JoinHorizontal(lipgloss.Top, spaced(caps)...),
		"",
	)

	var badges []string
	for _, e := range p.Evaluations {
		if e.Active {
			badges = append(badges, styles.Badge(e.Name, t.Green, t.Base))
		} else {
			badges = append(badges, styles.Badge(e.Name, t.Surface1, t.Subtext))
		}
	}
	lines = append(lines, layout.Wrap(strings.Join(badges, " "), inner))

	if p.ReadyVisible {
		btn := styles.Badge("[r] "+p.ReadyLabel, t.Surface1, t.Overlay)
		if p.ReadyEnabled {
			btn = styles.Badge("[r] "+p.ReadyLabel, t.Primary, t.Base)
		}
		lines = append(lines, "", btn)
	}
	if p.Hint != "" {
		lines = append(lines, styles.Muted(layout.Wrap(p.Hint, inner)))
	}
	if p.Err != "" {
		lines = append(lines, components.ErrorLine(p.Err, inner))
	}
	return strings.Join(lines, "\n")
}

func spaced(cells []string) []string {
	out := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, c)
	}
	return out
}
