package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/tui/components"
	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// AnnouncementsOptions configures Announcements.
type AnnouncementsOptions struct {
	Width int
	// Filter is the rendered filter input, shown while editing.
	Filter   string
	Markdown *Markdown
}

// Announcements renders the announcement list with priority items
// highlighted.
func Announcements(p view.AnnouncementsPanel, opts AnnouncementsOptions) string {
	t := theme.Current()
	inner := Inner(opts.Width)

	var lines []string
	switch {
	case opts.Filter != "":
		lines = append(lines, opts.Filter)
	case p.Filter != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Overlay).Render(
			layout.Truncate(fmt.Sprintf("/%s  (%d of %d)", p.Filter, len(p.Items), p.Total), inner)))
	}

	if len(p.Items) == 0 {
		lines = append(lines, components.RenderState(components.StateOptions{Kind: components.StateEmpty, Message: p.Empty, Width: inner}))
	}
	for i, it := range p.Items {
		if i > 0 {
			lines = append(lines, "")
		}
		color := t.Info
		if it.Priority {
			color = t.Warning
		}
		head := lipgloss.NewStyle().Foreground(color).Bold(true).Render(layout.Truncate(it.Icon+" "+it.Title, inner))
		lines = append(lines, head)
		if strings.TrimSpace(it.Body) != "" {
			lines = append(lines, opts.Markdown.Render(it.Body, inner))
		}
	}
	if p.Err != "" {
		lines = append(lines, components.ErrorLine(p.Err, inner))
	}
	return strings.Join(lines, "\n")
}
