// Package output renders command results as text, JSON or YAML, and
// formats CLI errors with remediation hints.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type
type Format int

const (
	// FormatText is human-readable formatted text (default)
	FormatText Format = iota
	// FormatJSON is machine-readable JSON output
	FormatJSON
	// FormatYAML is YAML output
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// ParseFormat accepts text, json or yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatText, fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// Formatter handles output formatting for commands
type Formatter struct {
	format Format
	writer io.Writer
}

// Option is a functional option for Formatter
type Option func(*Formatter)

// WithFormat sets the output format
func WithFormat(format Format) Option {
	return func(f *Formatter) { f.format = format }
}

// WithWriter sets the output writer
func WithWriter(w io.Writer) Option {
	return func(f *Formatter) { f.writer = w }
}

// New creates a new Formatter with the given options
func New(opts ...Option) *Formatter {
	f := &Formatter{format: FormatText, writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format returns the current output format
func (f *Formatter) Format() Format { return f.format }

// Writer returns the output writer
func (f *Formatter) Writer() io.Writer { return f.writer }

// Output writes data as JSON or YAML, or calls textFn in text mode.
func (f *Formatter) Output(data any, textFn func(w io.Writer) error) error {
	switch f.format {
	case FormatJSON:
		return WriteJSON(f.writer, data)
	case FormatYAML:
		return WriteYAML(f.writer, data)
	}
	return textFn(f.writer)
}

// WriteJSON writes indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes YAML with two-space indentation.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
