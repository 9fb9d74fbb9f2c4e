package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiwars-hackathon/hackdash/internal/output"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
)

// DraftReport is the machine-readable form of `draft show`.
type DraftReport struct {
	TeamID string            `json:"team_id" yaml:"team_id"`
	Draft  submission.Draft  `json:"draft" yaml:"draft"`
	Valid  bool              `json:"valid" yaml:"valid"`
	Errors map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newDraftCmd(a *app) *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect the locally saved submission draft",
		Long: `The submission form is saved locally as you type, one draft per team.
These commands work offline against that saved copy.`,
	}
	cmd.PersistentFlags().StringVar(&team, "team", "", "team id (default: the only saved draft)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved draft and what is still missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.formatter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return withDraft(cmd.Context(), a, team, func(s *session, id string, d submission.Draft) error {
				v := d.Validate()
				report := DraftReport{TeamID: id, Draft: d, Valid: v.Valid}
				if len(v.Errors) > 0 {
					report.Errors = make(map[string]string, len(v.Errors))
					for field, msg := range v.Errors {
						report.Errors[string(field)] = msg
					}
				}
				return f.Output(report, func(w io.Writer) error { return writeDraftText(w, id, d, v) })
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDraft(cmd.Context(), a, team, func(s *session, id string, _ submission.Draft) error {
				if err := s.drafts.Discard(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Draft for team %s cleared.\n", id)
				return nil
			})
		},
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the saved draft as YAML (or JSON with --json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDraft(cmd.Context(), a, team, func(s *session, id string, d submission.Draft) error {
				w := cmd.OutOrStdout()
				if out != "" && out != "-" {
					file, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("creating %s: %w", out, err)
					}
					defer file.Close()
					w = file
				}
				if a.json || strings.EqualFold(a.format, "json") {
					return output.WriteJSON(w, d)
				}
				return output.WriteYAML(w, d)
			})
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", `output file, or "-" for stdout`)

	cmd.AddCommand(show, clearCmd, export)
	return cmd
}

// withDraft resolves the team and loads its draft before calling fn.
func withDraft(ctx context.Context, a *app, team string, fn func(*session, string, submission.Draft) error) error {
	s, err := a.openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := pickDraftTeam(ctx, s.drafts, team)
	if err != nil {
		return err
	}
	d, ok, err := s.drafts.Load(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return output.NewCLIError("no saved draft for team " + id).WithCode("NO_DRAFT")
	}
	return fn(s, id, d)
}

func pickDraftTeam(ctx context.Context, drafts *submission.DraftStore, team string) (string, error) {
	if team != "" {
		return team, nil
	}
	teams, err := drafts.Teams(ctx)
	if err != nil {
		return "", err
	}
	switch len(teams) {
	case 0:
		return "", output.NewCLIError("no saved draft").
			WithCode("NO_DRAFT").
			WithHint("Drafts are saved while you edit the form in the dashboard")
	case 1:
		return teams[0], nil
	}
	sort.Strings(teams)
	return "", output.NewCLIError("several teams have saved drafts").
		WithCause(strings.Join(teams, ", ")).
		WithCode("AMBIGUOUS_TEAM").
		WithHint("Pick one with --team")
}

func writeDraftText(w io.Writer, id string, d submission.Draft, v submission.Validation) error {
	t := &output.Table{}
	t.Row("Team", id)
	for _, f := range submission.Fields {
		val := strings.TrimSpace(d.Get(f))
		if val == "" {
			val = "-"
		}
		if msg, bad := v.Errors[f]; bad {
			val += "  (" + msg + ")"
		}
		t.Row(f.Label(), val)
	}
	if v.Valid {
		t.Row("Ready", "yes")
	} else {
		t.Row("Ready", fmt.Sprintf("no, %d field(s) need attention", len(v.Errors)))
	}
	return t.Render(w)
}
