package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"idlectl/api"
)

// followThreshold is how many lines above the bottom still count as
// "pinned". A reader who scrolled a line or two up by accident keeps
// following new output; a reader deep in history does not.
const followThreshold = 3

type ledgerModel struct {
	viewport viewport.Model
	events   []api.LogEvent
	width    int
	height   int
	theme    tuiTheme
}

func newLedgerModel(theme tuiTheme) ledgerModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return ledgerModel{
		viewport: vp,
		theme:    theme,
	}
}

func (m ledgerModel) Init() tea.Cmd {
	return nil
}

func (m ledgerModel) Update(msg tea.Msg) (ledgerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ledgerModel) setTheme(theme tuiTheme) {
	m.theme = theme
	m.refresh(true)
}

func (m *ledgerModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h
	m.refresh(true)
}

// setEvents replaces the rendered window. When the reader was at or
// near the bottom beforehand the view sticks to the newest line,
// otherwise the scroll position is preserved.
func (m *ledgerModel) setEvents(events []api.LogEvent) {
	pinned := m.nearBottom()
	m.events = events
	m.refresh(pinned)
}

func (m *ledgerModel) gotoBottom() {
	m.viewport.GotoBottom()
}

func (m ledgerModel) nearBottom() bool {
	total := m.viewport.TotalLineCount()
	if total <= m.viewport.Height {
		return true
	}
	return m.viewport.YOffset >= total-m.viewport.Height-followThreshold
}

func (m *ledgerModel) refresh(pin bool) {
	m.viewport.SetContent(m.renderContent())
	if pin {
		m.viewport.GotoBottom()
	}
}

func (m ledgerModel) renderContent() string {
	if len(m.events) == 0 {
		return m.theme.muted.Render("Waiting for log events...")
	}

	var b strings.Builder
	for _, ev := range m.events {
		levelStyle := m.theme.info
		switch ev.Level {
		case "warning":
			levelStyle = m.theme.warn
		case "error":
			levelStyle = m.theme.danger
		case "success":
			levelStyle = m.theme.ok
		}

		sec, frac := math.Modf(ev.Timestamp)
		ts := time.Unix(int64(sec), int64(frac*float64(time.Second))).Format("15:04:05")

		line := fmt.Sprintf("%s %s %s",
			m.theme.muted.Render(ts),
			levelStyle.Render(levelTag(ev.Level)),
			ev.Message)
		b.WriteString(line + "\n")
	}
	return b.String()
}

func levelTag(level string) string {
	if level == "" {
		level = "info"
	}
	return fmt.Sprintf("%-7s", strings.ToUpper(level))
}

func (m ledgerModel) View() string {
	return m.viewport.View()
}
