package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
)

// CLIError represents a structured CLI error with remediation hints.
type CLIError struct {
	Message string // What failed
	Cause   string // Why it failed (optional)
	Hint    string // Fastest command/action to fix it (optional)
	Code    string // Error code for programmatic handling (optional)
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLI error with just a message.
func NewCLIError(msg string) *CLIError {
	return &CLIError{Message: msg}
}

// WithCause adds a cause to the error.
func (e *CLIError) WithCause(cause string) *CLIError {
	e.Cause = cause
	return e
}

// WithHint adds a remediation hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// WithCode adds an error code to the error.
func (e *CLIError) WithCode(code string) *CLIError {
	e.Code = code
	return e
}

// Common hints.
const (
	HintLogin          = "Run 'hackdash login' to sign in again"
	HintServerDown     = "Check your network, or the api_base in 'hackdash config show'"
	HintConfigInvalid  = "Check config syntax with 'hackdash config show' or edit ~/.config/hackdash/config.toml"
	HintConfigNotFound = "Run 'hackdash config init' to create a default configuration"
)

// FromError turns err into a CLIError, adding hints for known API failures.
// A CLIError passes through unchanged.
func FromError(err error) *CLIError {
	if err == nil {
		return nil
	}
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce
	}
	out := &CLIError{Message: err.Error(), Err: err}
	switch {
	case errors.Is(err, api.ErrNoToken):
		out.Message = "not logged in"
		out.Code = "NO_TOKEN"
		out.Hint = HintLogin
	case api.IsUnauthorized(err):
		out.Message = "session expired or invalid"
		out.Code = "UNAUTHORIZED"
		out.Hint = HintLogin
	case api.IsServerUnavailable(err), api.IsTimeout(err):
		out.Message = "backend unavailable"
		out.Code = "UNAVAILABLE"
		out.Cause = err.Error()
		out.Hint = HintServerDown
	default:
		if msg := api.ServerMessage(err); msg != "" {
			out.Cause = msg
		}
	}
	return out
}

// isStderrTerminal checks if stderr is a terminal (for color output).
func isStderrTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// FormatCLIError formats a CLIError for terminal output with colors.
// Returns plain text if stderr is not a terminal or NO_COLOR is set.
func FormatCLIError(e *CLIError) string {
	return formatCLIError(e, isStderrTerminal() && os.Getenv("NO_COLOR") == "")
}

func formatCLIError(e *CLIError, useColor bool) string {
	label := func(s string, c lipgloss.Color, bold bool) string { return s }
	if useColor {
		label = func(s string, c lipgloss.Color, bold bool) string {
			return lipgloss.NewStyle().Foreground(c).Bold(bold).Render(s)
		}
	}
	t := theme.Current()

	var sb strings.Builder
	sb.WriteString(label("Error: ", t.Error, true))
	sb.WriteString(e.Message)
	if e.Code != "" {
		sb.WriteString(" ")
		sb.WriteString(label("["+e.Code+"]", t.Overlay, false))
	}
	sb.WriteString("\n")
	if e.Cause != "" {
		sb.WriteString(label("  Cause: ", t.Subtext, false))
		sb.WriteString(e.Cause)
		sb.WriteString("\n")
	}
	if e.Hint != "" {
		sb.WriteString(label("  Hint: ", t.Info, false))
		sb.WriteString(e.Hint)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ErrorResponse is the machine-readable error shape.
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
	Cause string `json:"cause,omitempty" yaml:"cause,omitempty"`
	Hint  string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// PrintError writes err to stderr as text, or to f's writer as JSON/YAML.
func PrintError(f *Formatter, stderr io.Writer, err error) {
	e := FromError(err)
	if e == nil {
		return
	}
	if f != nil && f.Format() != FormatText {
		resp := ErrorResponse{Error: e.Message, Code: e.Code, Cause: e.Cause, Hint: e.Hint}
		if werr := f.Output(resp, nil); werr == nil {
			return
		}
	}
	fmt.Fprint(stderr, FormatCLIError(e))
}
