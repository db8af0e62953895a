package cli

import "github.com/charmbracelet/lipgloss"

type tuiTheme struct {
	name       string
	panel      lipgloss.Style
	title      lipgloss.Style
	subtitle   lipgloss.Style
	text       lipgloss.Style
	muted      lipgloss.Style
	ok         lipgloss.Style
	warn       lipgloss.Style
	danger     lipgloss.Style
	info       lipgloss.Style
	highlight  lipgloss.Style
	help       lipgloss.Style
	pill       lipgloss.Style
	pillActive lipgloss.Style
	pillAlert  lipgloss.Style
	chip       lipgloss.Style

	// gradient endpoints consumed by the progress bars.
	gradientStart string
	gradientEnd   string
}

// themePalette holds the raw colors of one named theme. The same names
// and hex values the scheduler reports in its config, so the terminal
// surface and any other frontend agree on what "fire" looks like.
type themePalette struct {
	start   string
	end     string
	accent  string
	accent2 string
}

var themePalettes = map[string]themePalette{
	"default":  {start: "#1c2541", end: "#0b132b", accent: "#f6c344", accent2: "#3dd6d0"},
	"fire":     {start: "#2b1328", end: "#ff6b4a", accent: "#ffcf6f", accent2: "#ff8a5c"},
	"ice":      {start: "#0d1b2a", end: "#6ea8ff", accent: "#9ee8ff", accent2: "#7dd3fc"},
	"pinkneon": {start: "#1b1035", end: "#ff64d6", accent: "#ffb1f5", accent2: "#8ef1ff"},
	"rainbow":  {start: "#1a1a40", end: "#6a11cb", accent: "#fcb045", accent2: "#00c9ff"},
	"matrix":   {start: "#041b0a", end: "#0f5132", accent: "#4ade80", accent2: "#22c55e"},
	"sunset":   {start: "#24160b", end: "#ff7e5f", accent: "#f6d365", accent2: "#ff9a62"},
}

// themeNames is the cycling order of the theme picker.
var themeNames = []string{"default", "fire", "ice", "pinkneon", "rainbow", "matrix", "sunset"}

func newTUITheme(name string) tuiTheme {
	pal, ok := themePalettes[name]
	if !ok {
		name = "default"
		pal = themePalettes[name]
	}
	accent := lipgloss.Color(pal.accent)
	accent2 := lipgloss.Color(pal.accent2)
	return tuiTheme{
		name: name,
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3D4752")).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#C0C8D4")),
		text: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7DBE0")),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E7B88")),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#63C17A")),
		warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E7B65A")),
		danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06B75")),
		info: lipgloss.NewStyle().
			Foreground(accent2),
		highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0E1116")).
			Background(accent),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8FA0B3")),
		pill: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#C0C8D4")).
			Background(lipgloss.Color("#2A3038")),
		pillActive: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#0E1116")).
			Background(accent2),
		pillAlert: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#0E1116")).
			Background(lipgloss.Color("#E06B75")),
		chip: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(accent).
			Background(lipgloss.Color("#1C222B")),
		gradientStart: pal.start,
		gradientEnd:   pal.end,
	}
}
