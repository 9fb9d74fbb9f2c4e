package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines a complete color palette for the TUI
type Theme struct {
	Name string

	// Base colors
	Base     lipgloss.Color // Background
	Surface0 lipgloss.Color // Surface
	Surface1 lipgloss.Color // Surface highlight

	// Text colors
	Text    lipgloss.Color // Primary text
	Subtext lipgloss.Color // Secondary text
	Overlay lipgloss.Color // Dimmed text

	// Accent colors
	Red    lipgloss.Color
	Peach  lipgloss.Color
	Yellow lipgloss.Color
	Green  lipgloss.Color
	Teal   lipgloss.Color
	Blue   lipgloss.Color
	Mauve  lipgloss.Color

	// Semantic colors
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Chat sender colors
	Team  lipgloss.Color
	Staff lipgloss.Color

	// Dark selects the glamour style for markdown.
	Dark bool
}

// CatppuccinMocha is the default dark theme.
var CatppuccinMocha = Theme{
	Name:     "mocha",
	Base:     "#1e1e2e",
	Surface0: "#313244",
	Surface1: "#45475a",
	Text:     "#cdd6f4",
	Subtext:  "#a6adc8",
	Overlay:  "#6c7086",
	Red:      "#f38ba8",
	Peach:    "#fab387",
	Yellow:   "#f9e2af",
	Green:    "#a6e3a1",
	Teal:     "#94e2d5",
	Blue:     "#89b4fa",
	Mauve:    "#cba6f7",
	Primary:  "#89b4fa",
	Success:  "#a6e3a1",
	Warning:  "#f9e2af",
	Error:    "#f38ba8",
	Info:     "#89dceb",
	Team:     "#89b4fa",
	Staff:    "#cba6f7",
	Dark:     true,
}

// CatppuccinMacchiato is a softer dark variant.
var CatppuccinMacchiato = Theme{
	Name:     "macchiato",
	Base:     "#24273a",
	Surface0: "#363a4f",
	Surface1: "#494d64",
	Text:     "#cad3f5",
	Subtext:  "#a5adcb",
	Overlay:  "#6e738d",
	Red:      "#ed8796",
	Peach:    "#f5a97f",
	Yellow:   "#eed49f",
	Green:    "#a6da95",
	Teal:     "#8bd5ca",
	Blue:     "#8aadf4",
	Mauve:    "#c6a0f6",
	Primary:  "#8aadf4",
	Success:  "#a6da95",
	Warning:  "#eed49f",
	Error:    "#ed8796",
	Info:     "#91d7e3",
	Team:     "#8aadf4",
	Staff:    "#c6a0f6",
	Dark:     true,
}

// CatppuccinLatte is the light theme.
var CatppuccinLatte = Theme{
	Name:     "latte",
	Base:     "#eff1f5",
	Surface0: "#ccd0da",
	Surface1: "#bcc0cc",
	Text:     "#4c4f69",
	Subtext:  "#6c6f85",
	Overlay:  "#9ca0b0",
	Red:      "#d20f39",
	Peach:    "#fe640b",
	Yellow:   "#df8e1d",
	Green:    "#40a02b",
	Teal:     "#179299",
	Blue:     "#1e66f5",
	Mauve:    "#8839ef",
	Primary:  "#1e66f5",
	Success:  "#40a02b",
	Warning:  "#df8e1d",
	Error:    "#d20f39",
	Info:     "#04a5e5",
	Team:     "#1e66f5",
	Staff:    "#8839ef",
}

// Nord is an arctic dark theme.
var Nord = Theme{
	Name:     "nord",
	Base:     "#2e3440",
	Surface0: "#3b4252",
	Surface1: "#434c5e",
	Text:     "#eceff4",
	Subtext:  "#d8dee9",
	Overlay:  "#4c566a",
	Red:      "#bf616a",
	Peach:    "#d08770",
	Yellow:   "#ebcb8b",
	Green:    "#a3be8c",
	Teal:     "#8fbcbb",
	Blue:     "#81a1c1",
	Mauve:    "#b48ead",
	Primary:  "#88c0d0",
	Success:  "#a3be8c",
	Warning:  "#ebcb8b",
	Error:    "#bf616a",
	Info:     "#88c0d0",
	Team:     "#81a1c1",
	Staff:    "#b48ead",
	Dark:     true,
}

// Plain has no colors at all.
var Plain = Theme{Name: "plain", Dark: true}

// NoColorEnabled returns true if color output should be disabled.
// Respects the NO_COLOR standard (https://no-color.org/):
// - If NO_COLOR exists in environment (any value), colors are disabled
// - HACKDASH_NO_COLOR=1 also disables colors
// - HACKDASH_NO_COLOR=0 forces colors ON (overrides NO_COLOR)
func NoColorEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("HACKDASH_NO_COLOR"))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	_, noColorSet := os.LookupEnv("NO_COLOR")
	return noColorSet
}

// FromName returns a theme by name
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "macchiato":
		return CatppuccinMacchiato
	case "nord":
		return Nord
	case "latte", "light":
		return CatppuccinLatte
	case "mocha", "dark":
		return CatppuccinMocha
	default:
		return autoTheme()
	}
}

var (
	mu     sync.RWMutex
	active *Theme
)

// Use makes the named theme current and returns it.
func Use(name string) Theme {
	t := FromName(name)
	mu.Lock()
	active = &t
	mu.Unlock()
	return t
}

// Current returns the theme set by Use, falling back to HACKDASH_THEME.
func Current() Theme {
	mu.RLock()
	defer mu.RUnlock()
	if active != nil {
		return *active
	}
	return FromName(os.Getenv("HACKDASH_THEME"))
}

// detectDarkBackground inspects the terminal to determine if a dark background is in use.
// It is defined as a variable for testability.
var detectDarkBackground = func() bool {
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

var (
	cachedAutoTheme Theme
	autoThemeOnce   sync.Once
)

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		cachedAutoTheme = CatppuccinMocha
		defer func() {
			if recover() != nil {
				cachedAutoTheme = CatppuccinMocha
			}
		}()
		if !detectDarkBackground() {
			cachedAutoTheme = CatppuccinLatte
		}
	})
	return cachedAutoTheme
}
