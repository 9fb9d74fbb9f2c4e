package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/chat"
	"github.com/aiwars-hackathon/hackdash/internal/tui/components"
	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/styles"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// ChatLines renders the message history, oldest first. Team messages are
// right-aligned, staff and system messages left-aligned.
func ChatLines(p view.ChatPanel, width int) string {
	t := theme.Current()
	bubble := max(width*3/4, 10)

	var lines []string
	for _, l := range p.Lines {
		color := t.Staff
		if l.Class == chat.ClassTeam {
			color = t.Team
		}
		style := lipgloss.NewStyle().Foreground(color)
		if l.System {
			style = style.Italic(true)
		}
		body := style.Render(layout.Wrap(l.Text, bubble))
		if l.At != "" {
			body += "\n" + styles.Muted(layout.Truncate(l.At, bubble))
		}
		if l.Class == chat.ClassTeam && !l.System {
			body = lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(body)
		}
		lines = append(lines, body)
	}
	if p.Err != "" {
		lines = append(lines, components.ErrorLine(p.Err, width))
	}
	return strings.Join(lines, "\n")
}

// ChatInput renders the input row. editor is the live input widget while
// it has focus.
func ChatInput(p view.ChatPanel, editor string, width int) string {
	var lines []string
	switch {
	case editor != "":
		lines = append(lines, editor)
	case p.Input != "":
		lines = append(lines, "> "+layout.Truncate(p.Input, max(width-2, 1)))
	default:
		lines = append(lines, styles.Muted("[c] type a message"))
	}
	if p.Sending {
		lines = append(lines, styles.Muted("Sending…"))
	}
	if p.SendErr != "" {
		lines = append(lines, components.ErrorLine(p.SendErr, width))
	}
	return strings.Join(lines, "\n")
}
