package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBadgeContainsText(t *testing.T) {
	got := StatusBadge("not_open")
	if !strings.Contains(got, "NOT OPEN") {
		t.Errorf("StatusBadge = %q", got)
	}
}

func TestPanelWidth(t *testing.T) {
	out := Panel("Team", "line one\nline two", 30, false)
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w != 30 {
			t.Errorf("line width = %d, want 30: %q", w, line)
		}
	}
	if !strings.Contains(out, "Team") {
		t.Error("missing title")
	}
}

func TestRightAlign(t *testing.T) {
	if got := RightAlign("ab", 5); got != "   ab" {
		t.Errorf("RightAlign = %q", got)
	}
	if got := RightAlign("abcdef", 3); got != "abcdef" {
		t.Errorf("overflow should pass through, got %q", got)
	}
}

func TestDivider(t *testing.T) {
	if Divider(0, "") != "" {
		t.Error("zero width should be empty")
	}
	if lipgloss.Width(Divider(8, "")) != 8 {
		t.Error("divider width mismatch")
	}
}
