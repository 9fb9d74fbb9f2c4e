package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
)

// KeyHint is a single keybinding hint such as "r" → "ready".
type KeyHint struct {
	Key  string
	Desc string
}

// HelpSection groups hints under a heading.
type HelpSection struct {
	Title string
	Hints []KeyHint
}

// RenderKeyHint renders "[key] desc", dropping the key background at
// narrow widths.
func RenderKeyHint(hint KeyHint, compact bool) string {
	t := theme.Current()
	keyStyle := lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	if !compact {
		keyStyle = keyStyle.Background(t.Surface0).Padding(0, 1)
	}
	return keyStyle.Render(hint.Key) + " " + lipgloss.NewStyle().Foreground(t.Overlay).Render(hint.Desc)
}

// RenderHelpBar renders hints on one line. Hints that do not fit in width
// are dropped from the right.
func RenderHelpBar(hints []KeyHint, width int) string {
	if len(hints) == 0 {
		return ""
	}
	const sep = "  "
	compact := layout.TierForWidth(width) == layout.TierNarrow

	rendered := make([]string, 0, len(hints))
	for _, h := range hints {
		rendered = append(rendered, RenderKeyHint(h, compact))
	}
	if width <= 0 {
		return strings.Join(rendered, sep)
	}
	for len(rendered) > 0 && lipgloss.Width(strings.Join(rendered, sep)) > width {
		rendered = rendered[:len(rendered)-1]
	}
	return strings.Join(rendered, sep)
}

// HelpOverlay renders the full keybinding reference.
func HelpOverlay(sections []HelpSection) string {
	t := theme.Current()
	sectionStyle := lipgloss.NewStyle().Foreground(t.Mauve).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.Subtext)

	keyWidth := 0
	for _, s := range sections {
		for _, h := range s.Hints {
			keyWidth = max(keyWidth, lipgloss.Width(h.Key))
		}
	}

	lines := []string{lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("?  Keyboard Shortcuts"), ""}
	for i, s := range sections {
		if s.Title != "" {
			lines = append(lines, sectionStyle.Render(s.Title))
		}
		for _, h := range s.Hints {
			key := lipgloss.NewStyle().Width(keyWidth).Align(lipgloss.Right).Render(h.Key)
			lines = append(lines, "  "+keyStyle.Render(key)+"  "+descStyle.Render(h.Desc))
		}
		if i < len(sections)-1 {
			lines = append(lines, "")
		}
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(t.Overlay).Italic(true).Render("Press ? or Esc to close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
