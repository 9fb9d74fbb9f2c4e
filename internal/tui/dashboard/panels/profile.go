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

// Profile renders the team profile. Collapsed shows only the team name
// and venue.
func Profile(p view.ProfilePanel, width int, collapsed bool) string {
	t := theme.Current()
	inner := Inner(width)
	label := lipgloss.NewStyle().Foreground(t.Subtext)

	row := func(k, v string) string {
		return label.Render(k+": ") + layout.Truncate(v, max(inner-lipgloss.Width(k)-2, 1))
	}

	name := lipgloss.NewStyle().Foreground(t.Team).Bold(true).Render(layout.Truncate(p.TeamName, inner))
	lines := []string{name, styles.Muted(layout.Truncate(p.Venue, inner))}
	if !collapsed {
		lines = append(lines,
			"",
			row("Team ID", p.TeamID),
			row("College", p.College),
			row("Track", p.PreferredTrack),
			row("Payment", p.PaymentStatus),
			row("Floor", p.Floor),
			"",
			label.Render("Members"),
		)
		for _, m := range p.Members {
			lines = append(lines, "  • "+layout.Truncate(m, max(inner-4, 1)))
		}
		lines = append(lines, "", label.Render("Problem statement"), layout.Wrap(p.ProblemStatement, inner))
	}
	if p.Err != "" {
		lines = append(lines, "", components.ErrorLine(p.Err, inner))
	}
	return strings.Join(lines, "\n")
}
