package cli

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aiwars-hackathon/hackdash/internal/auth"
	"github.com/aiwars-hackathon/hackdash/internal/config"
	"github.com/aiwars-hackathon/hackdash/internal/output"
	"github.com/aiwars-hackathon/hackdash/internal/tui/dashboard"
)

const loginHint = "Run `hackdash login` in another terminal, then press ctrl+r."

func newDashboardCmd(a *app) *cobra.Command {
	var (
		token   string
		noLogin bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard [location]",
		Short: "Open the team dashboard",
		Long: `Open the interactive team dashboard.

The optional location is the dashboard URL the login flow redirected to. Its
token query parameter is stored and then dropped from the location:

  hackdash dashboard "http://localhost:8976/dashboard?token=abc"
  hackdash --token abc

Without a token the stored session is used. If there is none, the login
screen starts a local receiver and shows the URL to open in a browser.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			return runDashboard(cmd.Context(), a, raw, token, noLogin)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "session token to sign in with")
	cmd.Flags().BoolVar(&noLogin, "no-login-server", false, "do not start the local login receiver")
	return cmd
}

// dashboardLocation merges the location argument and --token.
func dashboardLocation(raw, token string) (*url.URL, error) {
	if token != "" {
		q := url.Values{auth.TokenParam: {token}}
		raw = auth.DashboardPath + "?" + q.Encode()
	}
	return auth.ParseLocation(raw)
}

func runDashboard(ctx context.Context, a *app, raw, token string, noLogin bool) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return output.NewCLIError("the dashboard needs an interactive terminal").
			WithCode("NOT_A_TTY").
			WithHint("Use 'hackdash status' for one-shot output")
	}

	loc, err := dashboardLocation(raw, token)
	if err != nil {
		return output.NewCLIError("invalid location").WithCause(err.Error()).WithCode("BAD_LOCATION")
	}

	s, err := a.openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.tokens.Resolve(ctx, loc)
	if err != nil {
		return err
	}
	if res.Location != nil {
		a.log.Debug().Str("location", res.Location.String()).Msg("token removed from location")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var receiver *auth.Receiver
	if !noLogin {
		receiver = auth.NewReceiver(s.tokens, a.cfg.LoginURL(), a.cfg.Login.Listen, a.log)
	}

	model := dashboard.New(ctx, dashboard.Deps{
		API:       s.client,
		Tokens:    s.tokens,
		Receiver:  receiver,
		Drafts:    s.drafts,
		Clock:     clockwork.NewRealClock(),
		Log:       a.log,
		Intervals: a.cfg.Poll.Intervals(),
		Welcome:   a.cfg.UI.Welcome,
		LoginHint: loginHint,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	stopWatch, err := config.Watch(a.configPath(), a.log, func(c *config.Config) {
		p.Send(dashboard.ConfigReloadedMsg{
			Intervals: c.Poll.Intervals(),
			Theme:     c.UI.Theme,
			Welcome:   c.UI.Welcome,
		})
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("config hot reload disabled")
	} else {
		defer stopWatch()
	}

	final, err := p.Run()
	if m, ok := final.(dashboard.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
