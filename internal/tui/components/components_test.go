package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		last     time.Time
		interval time.Duration
		want     bool
	}{
		{"never loaded", time.Time{}, 7 * time.Second, false},
		{"fresh", now.Add(-5 * time.Second), 7 * time.Second, false},
		{"exactly two cycles", now.Add(-14 * time.Second), 7 * time.Second, false},
		{"missed two cycles", now.Add(-15 * time.Second), 7 * time.Second, true},
		{"no interval", now.Add(-time.Hour), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStale(now, tt.last, tt.interval); got != tt.want {
				t.Errorf("IsStale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderFreshness(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if RenderFreshness(now, time.Time{}, time.Second) != "" {
		t.Error("nothing loaded should render empty")
	}
	got := RenderFreshness(now, now.Add(-12*time.Second), 15*time.Second)
	if !strings.Contains(got, "Updated 12s ago") || strings.Contains(got, "STALE") {
		t.Errorf("fresh = %q", got)
	}
	got = RenderFreshness(now, now.Add(-2*time.Minute), 15*time.Second)
	if !strings.Contains(got, "Updated 2m ago") || !strings.Contains(got, "STALE") {
		t.Errorf("stale = %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	tests := map[time.Duration]string{
		500 * time.Millisecond: "now",
		42 * time.Second:       "42s",
		5 * time.Minute:        "5m",
		3 * time.Hour:          "3h",
		50 * time.Hour:         "2d",
	}
	for d, want := range tests {
		if got := FormatAge(d); got != want {
			t.Errorf("FormatAge(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestRenderState(t *testing.T) {
	tests := []struct {
		opts StateOptions
		want string
	}{
		{StateOptions{Kind: StateLoading}, "Loading…"},
		{StateOptions{Kind: StateError, Message: "Failed to load agenda."}, "Failed to load agenda."},
		{StateOptions{Kind: StateEmpty, Message: "No announcements yet.", Hint: "check back soon"}, "check back soon"},
	}
	for _, tt := range tests {
		if got := RenderState(tt.opts); !strings.Contains(got, tt.want) {
			t.Errorf("RenderState(%+v) = %q", tt.opts, got)
		}
	}
	if got := RenderState(StateOptions{Kind: StateError, Message: strings.Repeat("x", 80), Width: 20}); lipgloss.Width(got) > 20 {
		t.Errorf("width not respected: %d", lipgloss.Width(got))
	}
	if ErrorLine("  ", 10) != "" {
		t.Error("blank error should render nothing")
	}
}

func TestRenderHelpBarDropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{{"q", "quit"}, {"r", "ready"}, {"c", "chat"}, {"s", "submit"}}
	full := RenderHelpBar(hints, 0)
	for _, h := range hints {
		if !strings.Contains(full, h.Desc) {
			t.Errorf("missing %q in %q", h.Desc, full)
		}
	}
	narrow := RenderHelpBar(hints, 16)
	if lipgloss.Width(narrow) > 16 {
		t.Errorf("help bar overflows: %q", narrow)
	}
	if !strings.Contains(narrow, "quit") || strings.Contains(narrow, "submit") {
		t.Errorf("expected rightmost hints dropped: %q", narrow)
	}
}

func TestHelpOverlay(t *testing.T) {
	got := HelpOverlay([]HelpSection{{Title: "Actions", Hints: []KeyHint{{"ctrl+s", "submit project"}}}})
	for _, want := range []string{"Keyboard Shortcuts", "Actions", "submit project"} {
		if !strings.Contains(got, want) {
			t.Errorf("overlay missing %q", want)
		}
	}
}
