package dashboard

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/aiwars-hackathon/hackdash/internal/tui/components"
)

// KeyMap holds the dashboard bindings.
type KeyMap struct {
	Quit          key.Binding
	Help          key.Binding
	ToggleProfile key.Binding
	Ready         key.Binding
	Chat          key.Binding
	Filter        key.Binding
	Form          key.Binding
	Up            key.Binding
	Down          key.Binding
	Submit        key.Binding
	Dismiss       key.Binding
	Refresh       key.Binding
	Send          key.Binding
	Leave         key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
}

var dashKeys = KeyMap{
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	ToggleProfile: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "profile")),
	Ready:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "ready")),
	Chat:          key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chat")),
	Filter:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Form:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submission")),
	Up:            key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev field")),
	Down:          key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next field")),
	Submit:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit project")),
	Dismiss:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "dismiss notice")),
	Refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
	Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Leave:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	ScrollUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll chat")),
	ScrollDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll chat")),
}

func hint(b key.Binding) components.KeyHint {
	h := b.Help()
	return components.KeyHint{Key: h.Key, Desc: h.Desc}
}

func hints(bs ...key.Binding) []components.KeyHint {
	out := make([]components.KeyHint, 0, len(bs))
	for _, b := range bs {
		out = append(out, hint(b))
	}
	return out
}

func helpSections() []components.HelpSection {
	k := dashKeys
	return []components.HelpSection{
		{Title: "Dashboard", Hints: hints(k.Ready, k.ToggleProfile, k.Refresh, k.ScrollUp, k.ScrollDown, k.Quit)},
		{Title: "Chat & announcements", Hints: hints(k.Chat, k.Send, k.Filter, k.Leave)},
		{Title: "Submission", Hints: hints(k.Form, k.Up, k.Down, k.Submit, k.Dismiss)},
	}
}
