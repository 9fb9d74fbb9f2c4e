package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
	"github.com/aiwars-hackathon/hackdash/internal/tui/components"
	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/styles"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// SubmissionOptions configures Submission.
type SubmissionOptions struct {
	Width int
	// Cursor is the highlighted field index, -1 when the form is not
	// focused.
	Cursor int
	// Editor is the rendered input widget for the field under the cursor.
	Editor string
}

// Submission renders the form, the not-open notice, or the submitted
// summary depending on the panel mode.
func Submission(p view.SubmissionPanel, opts SubmissionOptions) string {
	inner := Inner(opts.Width)
	var lines []string

	switch p.Mode {
	case api.SubmissionSubmitted:
		lines = append(lines, submittedSummary(p, inner)...)
	case api.SubmissionOpen:
		lines = append(lines, notice(p.Notice, inner)...)
		lines = append(lines, form(p, opts, inner)...)
	default:
		lines = append(lines, styles.Muted(layout.Wrap(p.NotOpenText, inner)))
	}

	if p.Message != "" {
		lines = append(lines, "", styles.SuccessText(layout.Wrap(p.Message, inner)))
	}
	if p.Err != "" {
		lines = append(lines, "", components.ErrorLine(p.Err, inner))
	}
	return strings.Join(lines, "\n")
}

func submittedSummary(p view.SubmissionPanel, inner int) []string {
	lines := []string{styles.StatusBadge(api.SubmissionSubmitted)}
	if s := p.Summary; s != nil {
		lines = append(lines,
			"",
			styles.Bold(layout.Truncate(s.Title, inner)),
			styles.Muted("Repo: ")+layout.Truncate(s.GithubRepo, inner-6),
		)
		if s.LiveDemo != "" {
			lines = append(lines, styles.Muted("Demo: ")+layout.Truncate(s.LiveDemo, inner-6))
		}
	}
	if p.SubmittedAt != "" {
		lines = append(lines, styles.Muted("Submitted at "+p.SubmittedAt))
	}
	return lines
}

// notice renders the problem statement change as an inline diff.
func notice(segs []submission.Segment, inner int) []string {
	if len(segs) == 0 {
		return nil
	}
	t := theme.Current()
	var b strings.Builder
	for _, s := range segs {
		switch s.Op {
		case submission.OpInsert:
			b.WriteString(lipgloss.NewStyle().Foreground(t.Green).Underline(true).Render(s.Text))
		case submission.OpDelete:
			b.WriteString(lipgloss.NewStyle().Foreground(t.Red).Strikethrough(true).Render(s.Text))
		default:
			b.WriteString(s.Text)
		}
	}
	return []string{
		lipgloss.NewStyle().Foreground(t.Warning).Bold(true).Render("Problem statement updated") + styles.Muted("  [n] dismiss"),
		layout.Wrap(b.String(), inner),
		"",
	}
}

func form(p view.SubmissionPanel, opts SubmissionOptions, inner int) []string {
	t := theme.Current()
	var lines []string
	for i, f := range p.Fields {
		selected := i == opts.Cursor
		label := lipgloss.NewStyle().Foreground(t.Subtext)
		marker := "  "
		if selected {
			label = label.Foreground(t.Primary).Bold(true)
			marker = "▸ "
		}
		head := marker + label.Render(f.Label)
		if f.ReadOnly {
			head += styles.Muted(" (read-only)")
		}
		lines = append(lines, head)

		switch {
		case selected && opts.Editor != "":
			lines = append(lines, opts.Editor)
		case f.Value == "":
			lines = append(lines, "  "+styles.Muted(view.Placeholder))
		case f.Multiline:
			for _, l := range strings.Split(layout.Wrap(f.Value, inner-2), "\n") {
				lines = append(lines, "  "+l)
			}
		default:
			lines = append(lines, "  "+layout.Truncate(f.Value, inner-2))
		}
		if f.Err != "" {
			lines = append(lines, "  "+styles.ErrorText(layout.Truncate(f.Err, inner-2)))
		}
	}

	btn := styles.Badge("[ctrl+s] "+p.SubmitLabel, t.Surface1, t.Overlay)
	if p.CanSubmit {
		btn = styles.Badge("[ctrl+s] "+p.SubmitLabel, t.Primary, t.Base)
	}
	return append(lines, "", btn)
}
