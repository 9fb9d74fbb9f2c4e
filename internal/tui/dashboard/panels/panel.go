// Package panels renders the dashboard sections from composed view data.
// Renderers are pure functions of their input and width.
package panels

import (
	"strings"
	"time"

	"github.com/aiwars-hackathon/hackdash/internal/tui/components"
	"github.com/aiwars-hackathon/hackdash/internal/tui/styles"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// Frame wraps body in a titled border exactly width cells wide. A
// non-empty footer is right-aligned on its own last line.
func Frame(title, body, footer string, width int, focused bool) string {
	if footer != "" {
		body += "\n" + styles.RightAlign(footer, Inner(width))
	}
	return styles.Panel(title, body, width, focused)
}

// Inner is the content width inside a Frame of width cells.
func Inner(width int) int {
	return max(width-4, 1)
}

// Footer renders the freshness line for f at now.
func Footer(now time.Time, f view.Freshness) string {
	return components.RenderFreshness(now, f.Updated, f.Interval)
}

// PadToHeight pads content with empty lines to at least targetHeight.
func PadToHeight(content string, targetHeight int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < targetHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// TruncateToHeight keeps the first targetHeight lines of content.
func TruncateToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= targetHeight {
		return content
	}
	return strings.Join(lines[:targetHeight], "\n")
}

// FitToHeight makes content exactly targetHeight lines.
func FitToHeight(content string, targetHeight int) string {
	if targetHeight <= 0 {
		return ""
	}
	return PadToHeight(TruncateToHeight(content, targetHeight), targetHeight)
}
