package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/countdown"
	"github.com/aiwars-hackathon/hackdash/internal/output"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// StatusReport is one snapshot of every dashboard slice.
type StatusReport struct {
	FetchedAt     string                `json:"fetched_at" yaml:"fetched_at"`
	Team          *api.TeamProfile      `json:"team" yaml:"team"`
	Agenda        *api.Agenda           `json:"agenda,omitempty" yaml:"agenda,omitempty"`
	Announcements []api.Announcement    `json:"announcements" yaml:"announcements"`
	Chat          []api.ChatMessage     `json:"chat" yaml:"chat"`
	Submission    *api.SubmissionStatus `json:"submission,omitempty" yaml:"submission,omitempty"`
	// Errors maps a slice name to why it could not be loaded.
	Errors map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print every dashboard panel once",
		Long: `Fetch the profile, agenda, announcements, chat and submission status once
and print them. Use --json or --format yaml for machine-readable output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.formatter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := fetchStatus(cmd.Context(), s, time.Now())
			if err != nil {
				return err
			}
			return f.Output(report, report.writeText)
		},
	}
}

// fetchStatus loads every slice. The profile is required; the other slices
// fail on their own. A rejected token is forgotten.
func fetchStatus(ctx context.Context, s *session, now time.Time) (*StatusReport, error) {
	tok, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{FetchedAt: api.Timestamp(now), Errors: map[string]string{}}
	if report.Team, err = s.client.Profile(ctx, tok); err != nil {
		return nil, s.reject(ctx, err)
	}

	keep := func(src poll.Source, err error) error {
		if err == nil {
			return nil
		}
		if api.IsUnauthorized(err) {
			return s.reject(ctx, err)
		}
		report.Errors[string(src)] = err.Error()
		return nil
	}

	report.Agenda, err = s.client.Agenda(ctx, tok)
	if err := keep(poll.SourceAgenda, err); err != nil {
		return nil, err
	}
	report.Announcements, err = s.client.Announcements(ctx, tok)
	if err := keep(poll.SourceAnnouncements, err); err != nil {
		return nil, err
	}
	report.Chat, err = s.client.Chat(ctx, tok)
	if err := keep(poll.SourceChat, err); err != nil {
		return nil, err
	}
	report.Submission, err = s.client.SubmissionStatus(ctx, tok)
	if err := keep(poll.SourceSubmission, err); err != nil {
		return nil, err
	}
	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	return report, nil
}

func (r *StatusReport) writeText(w io.Writer) error {
	p := r.Team
	members := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, m.DisplayName())
	}

	t := &output.Table{}
	t.Row("Team", fmt.Sprintf("%s (%s)", p.TeamName, p.TeamID)).
		Row("Members", strings.Join(members, ", ")).
		Row("College", p.College).
		Row("Venue", view.VenueLine(p.Venue)).
		Row("Problem", p.ProblemStatement).
		Row("Track", p.PreferredTrack).
		Row("Payment", p.Payment.Status).
		Row("State", p.TeamState)

	if a := r.Agenda; a != nil {
		live := "none"
		if le := a.LiveEvaluation; le != nil {
			live = le.Name
			if le.RemainingSeconds != nil {
				live += " (" + countdown.Decompose(*le.RemainingSeconds).String() + " left)"
			}
		}
		t.Row("Live evaluation", live)
		for _, e := range a.Evaluations {
			t.Row(fmt.Sprintf("Round %d", e.Order), fmt.Sprintf("%s [%s]", e.Name, e.Status))
		}
	}

	t.Row("Announcements", fmt.Sprintf("%d", len(r.Announcements)))
	for _, a := range r.Announcements {
		title := a.Title
		if a.Priority {
			title = "! " + title
		}
		t.Row("", title)
	}
	t.Row("Chat messages", fmt.Sprintf("%d", len(r.Chat)))

	if sub := r.Submission; sub != nil {
		status := sub.Status
		if sub.SubmittedAt != "" {
			status += " at " + sub.SubmittedAt
		}
		t.Row("Submission", status)
	}
	srcs := make([]string, 0, len(r.Errors))
	for src := range r.Errors {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)
	for _, src := range srcs {
		t.Row("Error ("+src+")", r.Errors[src])
	}
	return t.Render(w)
}
