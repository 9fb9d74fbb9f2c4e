package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aiwars-hackathon/hackdash/internal/auth"
	"github.com/aiwars-hackathon/hackdash/internal/output"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		timeout time.Duration
		listen  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser",
		Long: `Start the local login receiver and wait for the browser hand-off.

Open the printed URL, sign in, and the session token is stored for the
dashboard and the other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Login.Listen
			}
			return runLogin(cmd.Context(), a, cmd.OutOrStdout(), listen, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "give up after this long (0 waits forever)")
	cmd.Flags().StringVar(&listen, "listen", "", "address for the login receiver (default from config)")
	return cmd
}

func runLogin(ctx context.Context, a *app, w io.Writer, listen string, timeout time.Duration) error {
	s, err := a.openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r := auth.NewReceiver(s.tokens, a.cfg.LoginURL(), listen, a.log)
	if err := r.Start(ctx); err != nil {
		return output.NewCLIError("cannot start the login receiver").
			WithCause(err.Error()).
			WithCode("LISTEN").
			WithHint("Pick another address with --listen")
	}
	defer r.Stop(context.Background())

	fmt.Fprintf(w, "Open %s in your browser to sign in.\n", r.URL())

	select {
	case tok := <-r.Tokens():
		return reportLogin(ctx, a, s, w, tok)
	case <-ctx.Done():
		return output.NewCLIError("login did not complete").
			WithCause(ctx.Err().Error()).
			WithCode("LOGIN_TIMEOUT")
	}
}

// reportLogin confirms the token by fetching the profile.
func reportLogin(ctx context.Context, a *app, s *session, w io.Writer, tok string) error {
	p, err := s.client.Profile(ctx, tok)
	if err != nil {
		a.log.Warn().Err(err).Msg("could not confirm the new session")
		fmt.Fprintln(w, "Signed in.")
		return nil
	}
	fmt.Fprintf(w, "Signed in as %s (%s).\n", p.TeamName, p.TeamID)
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.tokens.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}
