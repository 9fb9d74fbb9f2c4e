// Package cli wires the hackdash commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/auth"
	"github.com/aiwars-hackathon/hackdash/internal/config"
	"github.com/aiwars-hackathon/hackdash/internal/logging"
	"github.com/aiwars-hackathon/hackdash/internal/output"
	"github.com/aiwars-hackathon/hackdash/internal/state"
	"github.com/aiwars-hackathon/hackdash/internal/storage"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
)

// Build information. Populated at build-time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// app carries the state shared by every command of one invocation.
type app struct {
	cfgFile string
	verbose bool
	logFile string
	format  string
	json    bool

	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

// formatter builds the output formatter from --format and --json.
func (a *app) formatter(w io.Writer) (*output.Formatter, error) {
	f, err := output.ParseFormat(a.format)
	if err != nil {
		return nil, output.NewCLIError(err.Error()).WithCode("BAD_FLAG")
	}
	if a.json {
		f = output.FormatJSON
	}
	return output.New(output.WithFormat(f), output.WithWriter(w)), nil
}

// configPath is the file the config was (or would be) loaded from.
func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.DefaultPath()
}

// session bundles the store-backed pieces most commands need.
type session struct {
	store  *storage.Store
	tokens *auth.TokenStore
	drafts *submission.DraftStore
	client *api.Client

	// loginReason is set when the token store sends the user to login.
	loginReason string
}

func (a *app) openSession() (*session, error) {
	st, err := storage.Open(a.cfg.Storage.Path)
	if err != nil {
		return nil, output.NewCLIError("cannot open local store").
			WithCause(err.Error()).
			WithCode("STORAGE")
	}
	s := &session{
		store:  st,
		drafts: submission.NewDraftStore(st),
		client: api.NewClient(
			api.WithBaseURL(a.cfg.APIBase),
			api.WithUserAgent("hackdash/"+Version),
		),
	}
	s.tokens = auth.NewTokenStore(st,
		auth.WithLogger(a.log),
		auth.WithNavigator(auth.NavigatorFunc(func(reason string) { s.loginReason = reason })),
	)
	return s, nil
}

// token returns the stored session token or a login error.
func (s *session) token(ctx context.Context) (string, error) {
	res, err := s.tokens.Resolve(ctx, nil)
	if err != nil {
		return "", err
	}
	if !res.Authenticated() {
		return "", s.loginError(api.ErrNoToken)
	}
	return res.Token, nil
}

// reject forgets a token the backend refused and returns err as a login
// error. Other errors pass through.
func (s *session) reject(ctx context.Context, err error) error {
	if !api.IsUnauthorized(err) {
		return err
	}
	s.tokens.Invalidate(ctx, state.ErrSessionInvalid)
	return s.loginError(err)
}

func (s *session) loginError(err error) error {
	ce := output.FromError(err)
	if s.loginReason != "" && ce.Cause == "" {
		ce.Cause = s.loginReason
	}
	return ce
}

func (s *session) Close() error {
	return s.store.Close()
}

// newRootCmd builds the command tree. Each call returns an independent tree.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "hackdash [location]",
		Short: "Hackathon team dashboard for the terminal",
		Long: `hackdash shows your team's hackathon dashboard in the terminal:
profile, evaluation countdown, agenda, announcements, support chat and the
project submission form, all kept fresh by background polling.

Run without a subcommand to open the dashboard. A location such as
http://localhost/dashboard?token=abc signs you in with the token it carries.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Printing the config path must work even when the config is broken.
			if cmd.Name() == "path" || cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closer != nil {
				_ = a.closer.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ~/.config/hackdash/config.toml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	pf.StringVar(&a.logFile, "log-file", "", `log file path, or "-" for stderr`)
	pf.StringVar(&a.format, "format", "text", "output format: text, json or yaml")
	pf.BoolVar(&a.json, "json", false, "shorthand for --format json")

	dash := newDashboardCmd(a)
	root.RunE = dash.RunE
	root.Flags().AddFlagSet(dash.Flags())

	root.AddCommand(
		dash,
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newDraftCmd(a),
		newQRCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root, a
}

// setup loads the config and installs the logger and theme.
func (a *app) setup() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return output.NewCLIError("invalid configuration").
			WithCause(err.Error()).
			WithCode("CONFIG").
			WithHint(output.HintConfigInvalid)
	}
	a.cfg = cfg

	file := cfg.Log.File
	if a.logFile != "" {
		file = a.logFile
	}
	logger, closer, err := logging.Setup(logging.Options{Level: cfg.Log.Level, File: file, Verbose: a.verbose})
	if err != nil {
		return output.NewCLIError("cannot set up logging").WithCause(err.Error())
	}
	a.log, a.closer = logger, closer

	theme.Use(cfg.UI.Theme)
	return nil
}

// Execute runs the root command and prints any error.
func Execute() error {
	root, a := newRootCmd()
	err := root.Execute()
	if err != nil {
		f, ferr := a.formatter(os.Stdout)
		if ferr != nil {
			f = output.New()
		}
		output.PrintError(f, os.Stderr, err)
	}
	return err
}

func goVersion() string {
	return runtime.Version()
}

func goPlatform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
