package output

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aiwars-hackathon/hackdash/internal/api"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"xml", FormatText, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}

type sample struct {
	Team   string `json:"team" yaml:"team"`
	Status string `json:"status" yaml:"status"`
}

func TestFormatterOutput(t *testing.T) {
	data := sample{Team: "Null Pointers", Status: "open"}
	text := func(w io.Writer) error {
		_, err := io.WriteString(w, "text mode\n")
		return err
	}

	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "text mode\n"},
		{FormatJSON, "{\n  \"team\": \"Null Pointers\",\n  \"status\": \"open\"\n}\n"},
		{FormatYAML, "team: Null Pointers\nstatus: open\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			f := New(WithFormat(tt.format), WithWriter(&buf))
			if err := f.Output(data, text); err != nil {
				t.Fatalf("Output: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		hint string
	}{
		{"no token", api.ErrNoToken, "NO_TOKEN", HintLogin},
		{"unauthorized", api.NewAPIError("team_profile", 401, api.ErrUnauthorized), "UNAUTHORIZED", HintLogin},
		{"unavailable", api.NewAPIError("agenda", 0, api.ErrServerUnavailable), "UNAVAILABLE", HintServerDown},
		{"other", errors.New("boom"), "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromError(tt.err)
			if e.Code != tt.code || e.Hint != tt.hint {
				t.Errorf("FromError = %+v", e)
			}
			if !errors.Is(e, tt.err) {
				t.Error("CLIError should wrap the original error")
			}
		})
	}

	orig := NewCLIError("x").WithCode("X")
	if FromError(orig) != orig {
		t.Error("CLIError should pass through")
	}
	if FromError(nil) != nil {
		t.Error("nil in, nil out")
	}
}

func TestFormatCLIErrorPlain(t *testing.T) {
	e := NewCLIError("not logged in").WithCode("NO_TOKEN").WithCause("no token stored").WithHint(HintLogin)
	got := formatCLIError(e, false)
	want := "Error: not logged in [NO_TOKEN]\n  Cause: no token stored\n  Hint: " + HintLogin + "\n"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestPrintErrorJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	f := New(WithFormat(FormatJSON), WithWriter(&out))
	PrintError(f, &errOut, api.ErrNoToken)

	if errOut.Len() != 0 {
		t.Errorf("JSON mode should not write to stderr: %q", errOut.String())
	}
	if !strings.Contains(out.String(), `"code": "NO_TOKEN"`) {
		t.Errorf("unexpected JSON: %s", out.String())
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	var tb Table
	tb.Row("Team", "A").Row("Submission", "open")
	if err := tb.Render(&buf); err != nil {
		t.Fatal(err)
	}
	want := "Team        A\nSubmission  open\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
