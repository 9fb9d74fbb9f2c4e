package panels

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
)

// Markdown renders announcement bodies with glamour, caching renderers per
// width and output per body.
type Markdown struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
	out       map[mdKey]string
}

type mdKey struct {
	width int
	body  string
}

// NewMarkdown creates a renderer using a glamour standard style such as
// "dark", "light" or "notty".
func NewMarkdown(style string) *Markdown {
	if style == "" {
		style = "dark"
	}
	return &Markdown{
		style:     style,
		renderers: map[int]*glamour.TermRenderer{},
		out:       map[mdKey]string{},
	}
}

// Render returns body rendered to width cells. Rendering failures fall
// back to plain word wrapping.
func (m *Markdown) Render(body string, width int) string {
	if m == nil || strings.TrimSpace(body) == "" {
		return layout.Wrap(body, width)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := mdKey{width, body}
	if s, ok := m.out[k]; ok {
		return s
	}
	r, ok := m.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return layout.Wrap(body, width)
		}
		m.renderers[width] = r
	}
	s, err := r.Render(body)
	if err != nil {
		return layout.Wrap(body, width)
	}
	s = strings.Trim(s, "\n")
	m.out[k] = s
	return s
}
