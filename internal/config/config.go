package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/auth"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
)

// EnvPrefix prefixes every environment override, e.g. HACKDASH_API_BASE.
const EnvPrefix = "hackdash"

// Config represents the main configuration
type Config struct {
	APIBase string        `toml:"api_base"`
	Poll    PollConfig    `toml:"poll"`
	Storage StorageConfig `toml:"storage"`
	Login   LoginConfig   `toml:"login"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// Duration is a time.Duration written as "15s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// PollConfig holds one interval per polled slice.
type PollConfig struct {
	Profile       Duration `toml:"profile"`
	Agenda        Duration `toml:"agenda"`
	Announcements Duration `toml:"announcements"`
	Chat          Duration `toml:"chat"`
	Submission    Duration `toml:"submission"`
}

// Intervals converts the config to poller intervals.
func (p PollConfig) Intervals() poll.Intervals {
	return poll.Intervals{
		Profile:       p.Profile.Duration,
		Agenda:        p.Agenda.Duration,
		Announcements: p.Announcements.Duration,
		Chat:          p.Chat.Duration,
		Submission:    p.Submission.Duration,
	}
}

// StorageConfig locates the local key-value store.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LoginConfig configures the local login hand-off receiver.
type LoginConfig struct {
	Listen string `toml:"listen"`
	URL    string `toml:"url"` // login page; defaults to <api_base>/login
}

// UIConfig holds dashboard preferences.
type UIConfig struct {
	Theme   string `toml:"theme"`
	Welcome string `toml:"welcome"` // first chat line
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // "-" logs to stderr
}

// envOverrides are the HACKDASH_* variables read by Load.
type envOverrides struct {
	APIBase     string `envconfig:"API_BASE"`
	StoragePath string `envconfig:"STORAGE_PATH"`
	LoginListen string `envconfig:"LOGIN_LISTEN"`
	LoginURL    string `envconfig:"LOGIN_URL"`
	Theme       string `envconfig:"THEME"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	LogFile     string `envconfig:"LOG_FILE"`
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hackdash", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "hackdash", "config.toml")
}

// StateDir returns where the store and log live.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "hackdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "hackdash")
}

// Default returns the default configuration
func Default() *Config {
	iv := poll.DefaultIntervals()
	return &Config{
		APIBase: api.DefaultBaseURL,
		Poll: PollConfig{
			Profile:       Duration{iv.Profile},
			Agenda:        Duration{iv.Agenda},
			Announcements: Duration{iv.Announcements},
			Chat:          Duration{iv.Chat},
			Submission:    Duration{iv.Submission},
		},
		Storage: StorageConfig{Path: filepath.Join(StateDir(), "hackdash.db")},
		Login:   LoginConfig{Listen: auth.DefaultListenAddr},
		UI:      UIConfig{Theme: "auto"},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(StateDir(), "hackdash.log"),
		},
	}
}

// Load reads the config at path (DefaultPath when empty). A missing file
// yields the defaults. Environment overrides are applied last; a .env file
// in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads .env (if any) and applies HACKDASH_* overrides to cfg.
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.APIBase, env.APIBase)
	set(&cfg.Storage.Path, env.StoragePath)
	set(&cfg.Login.Listen, env.LoginListen)
	set(&cfg.Login.URL, env.LoginURL)
	set(&cfg.UI.Theme, env.Theme)
	set(&cfg.Log.Level, env.LogLevel)
	set(&cfg.Log.File, env.LogFile)
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if strings.TrimSpace(c.APIBase) == "" {
		c.APIBase = def.APIBase
	}
	c.APIBase = strings.TrimRight(c.APIBase, "/")
	fill := func(d *Duration, v Duration) {
		if d.Duration <= 0 {
			*d = v
		}
	}
	fill(&c.Poll.Profile, def.Poll.Profile)
	fill(&c.Poll.Agenda, def.Poll.Agenda)
	fill(&c.Poll.Announcements, def.Poll.Announcements)
	fill(&c.Poll.Chat, def.Poll.Chat)
	fill(&c.Poll.Submission, def.Poll.Submission)
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	c.Storage.Path = expandHome(c.Storage.Path)
	if c.Login.Listen == "" {
		c.Login.Listen = def.Login.Listen
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
	if c.Log.File != "-" {
		c.Log.File = expandHome(c.Log.File)
	}
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIBase, "http://") && !strings.HasPrefix(c.APIBase, "https://") {
		return fmt.Errorf("api_base must be an http(s) URL, got %q", c.APIBase)
	}
	for name, d := range map[string]Duration{
		"poll.profile":       c.Poll.Profile,
		"poll.agenda":        c.Poll.Agenda,
		"poll.announcements": c.Poll.Announcements,
		"poll.chat":          c.Poll.Chat,
		"poll.submission":    c.Poll.Submission,
	} {
		if d.Duration < time.Second {
			return fmt.Errorf("%s must be at least 1s, got %s", name, d.Duration)
		}
	}
	return nil
}

// LoginURL returns the browser login page.
func (c *Config) LoginURL() string {
	if c.Login.URL != "" {
		return c.Login.URL
	}
	return c.APIBase + api.PathLogin
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// CreateDefault creates a default config file
func CreateDefault() (string, error) {
	return CreateDefaultAt(DefaultPath())
}

// CreateDefaultAt writes the default config to path. It refuses to overwrite.
func CreateDefaultAt(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Print(Default(), f); err != nil {
		return "", err
	}
	return path, nil
}

// Print writes cfg as a commented TOML file.
func Print(cfg *Config, w io.Writer) error {
	var b strings.Builder
	fmt.Fprintln(&b, "# hackdash configuration")
	fmt.Fprintln(&b, "# Environment overrides: HACKDASH_API_BASE, HACKDASH_STORAGE_PATH, HACKDASH_LOGIN_LISTEN,")
	fmt.Fprintln(&b, "# HACKDASH_LOGIN_URL, HACKDASH_THEME, HACKDASH_LOG_LEVEL, HACKDASH_LOG_FILE")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "# Backend base URL")
	fmt.Fprintf(&b, "api_base = %q\n", cfg.APIBase)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[poll]")
	fmt.Fprintln(&b, "# How often each panel refreshes")
	fmt.Fprintf(&b, "profile = %q\n", cfg.Poll.Profile.Duration.String())
	fmt.Fprintf(&b, "agenda = %q\n", cfg.Poll.Agenda.Duration.String())
	fmt.Fprintf(&b, "announcements = %q\n", cfg.Poll.Announcements.Duration.String())
	fmt.Fprintf(&b, "chat = %q\n", cfg.Poll.Chat.Duration.String())
	fmt.Fprintf(&b, "submission = %q\n", cfg.Poll.Submission.Duration.String())
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[storage]")
	fmt.Fprintln(&b, "# SQLite file holding the session token and submission drafts")
	fmt.Fprintf(&b, "path = %q\n", cfg.Storage.Path)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[login]")
	fmt.Fprintln(&b, "# Local address that receives the token after browser login")
	fmt.Fprintf(&b, "listen = %q\n", cfg.Login.Listen)
	if cfg.Login.URL != "" {
		fmt.Fprintf(&b, "url = %q\n", cfg.Login.URL)
	} else {
		fmt.Fprintln(&b, "# url = \"https://example.org/login\"")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[ui]")
	fmt.Fprintln(&b, "# auto, mocha, macchiato, latte, nord, plain")
	fmt.Fprintf(&b, "theme = %q\n", cfg.UI.Theme)
	if cfg.UI.Welcome != "" {
		fmt.Fprintf(&b, "welcome = %q\n", cfg.UI.Welcome)
	} else {
		fmt.Fprintln(&b, "# welcome = \"Welcome! Ask your queries here.\"")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "[log]")
	fmt.Fprintln(&b, "# debug, info, warn, error; file \"-\" logs to stderr")
	fmt.Fprintf(&b, "level = %q\n", cfg.Log.Level)
	fmt.Fprintf(&b, "file = %q\n", cfg.Log.File)

	_, err := io.WriteString(w, b.String())
	return err
}
