// Package styles holds small rendering helpers shared by the dashboard
// panels.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
)

// Badge creates a styled badge/tag
func Badge(text string, bg, fg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Bold(true).
		Padding(0, 1).
		Render(text)
}

// StatusBadge renders a submission status or round state in its color.
func StatusBadge(status string) string {
	t := theme.Current()
	bg := t.Overlay
	switch strings.ToLower(status) {
	case "live", "open", "ready":
		bg = t.Green
	case "submitted", "completed":
		bg = t.Blue
	case "not_open", "pending", "upcoming":
		bg = t.Surface1
	case "stale", "error":
		bg = t.Yellow
	}
	return Badge(strings.ToUpper(strings.ReplaceAll(status, "_", " ")), bg, t.Base)
}

// Divider creates a styled divider line
func Divider(width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("─", width))
}

// Panel frames body with a rounded border and a title line. Focused
// panels use the primary color for the border.
func Panel(title, body string, width int, focused bool) string {
	t := theme.Current()
	border := t.Surface1
	if focused {
		border = t.Primary
	}
	head := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render(title)
	inner := width - 4
	if inner < 1 {
		inner = 1
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(inner + 2).
		Render(head + "\n" + body)
}

// Muted renders secondary text.
func Muted(s string) string {
	return lipgloss.NewStyle().Foreground(theme.Current().Overlay).Render(s)
}

// Bold renders emphasized text.
func Bold(s string) string {
	return lipgloss.NewStyle().Foreground(theme.Current().Text).Bold(true).Render(s)
}

// ErrorText renders an inline error.
func ErrorText(s string) string {
	return lipgloss.NewStyle().Foreground(theme.Current().Error).Render(s)
}

// SuccessText renders an inline success message.
func SuccessText(s string) string {
	return lipgloss.NewStyle().Foreground(theme.Current().Success).Render(s)
}

// Colored renders s in c.
func Colored(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// RightAlign right-aligns text within a given width
func RightAlign(text string, width int) string {
	visLen := lipgloss.Width(text)
	if visLen >= width {
		return text
	}
	return strings.Repeat(" ", width-visLen) + text
}
