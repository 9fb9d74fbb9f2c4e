// Package components provides shared TUI building blocks.
package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
)

// IsStale reports whether data last loaded at last is older than twice its
// poll interval at now.
func IsStale(now, last time.Time, interval time.Duration) bool {
	if last.IsZero() || interval <= 0 {
		return false
	}
	return now.Sub(last) > 2*interval
}

// RenderFreshness renders "Updated Xs ago", followed by a STALE badge when
// the data has missed two poll cycles. Empty when nothing has loaded yet.
func RenderFreshness(now, last time.Time, interval time.Duration) string {
	if last.IsZero() {
		return ""
	}
	t := theme.Current()
	style := lipgloss.NewStyle().Foreground(t.Overlay)
	stale := IsStale(now, last, interval)
	if stale {
		style = style.Foreground(t.Yellow)
	}
	out := style.Render(fmt.Sprintf("Updated %s ago", FormatAge(now.Sub(last))))
	if stale {
		out += " " + lipgloss.NewStyle().
			Background(t.Yellow).
			Foreground(t.Base).
			Bold(true).
			Padding(0, 1).
			Render("STALE")
	}
	return out
}

// FormatAge renders d as a short age like "now", "12s" or "3m".
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
