package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
)

// StateKind selects the placeholder shown in place of panel content.
type StateKind int

const (
	StateEmpty StateKind = iota
	StateLoading
	StateError
)

// StateOptions configures RenderState.
type StateOptions struct {
	Kind    StateKind
	Message string
	Hint    string
	Width   int
}

// RenderState renders a one or two line placeholder for an empty, loading
// or failed panel.
func RenderState(opts StateOptions) string {
	t := theme.Current()

	icon := "○"
	lineStyle := lipgloss.NewStyle().Foreground(t.Overlay).Italic(true)
	message := strings.TrimSpace(opts.Message)

	switch opts.Kind {
	case StateLoading:
		icon = "…"
		lineStyle = lineStyle.Foreground(t.Subtext)
		if message == "" {
			message = "Loading…"
		}
	case StateError:
		icon = "!"
		lineStyle = lineStyle.Foreground(t.Red)
		if message == "" {
			message = "Something went wrong"
		}
	default:
		if message == "" {
			message = "Nothing to show"
		}
	}

	line := icon + " " + message
	if opts.Width > 0 {
		line = layout.Truncate(line, opts.Width)
	}
	out := lineStyle.Render(line)

	if hint := strings.TrimSpace(opts.Hint); hint != "" {
		if opts.Width > 0 {
			hint = layout.Truncate(hint, opts.Width-2)
		}
		out += "\n" + lipgloss.NewStyle().Foreground(t.Overlay).Render("  "+hint)
	}
	return out
}

// ErrorLine renders msg as a single red line, or nothing when msg is empty.
func ErrorLine(msg string, width int) string {
	if strings.TrimSpace(msg) == "" {
		return ""
	}
	return RenderState(StateOptions{Kind: StateError, Message: msg, Width: width})
}
