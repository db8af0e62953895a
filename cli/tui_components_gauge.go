package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"idlectl/gauge"
)

// gaugeModel renders the cycle gauge plus, when a rotation is running,
// the per-account switch bar and the step banner underneath it.
type gaugeModel struct {
	bar       progress.Model
	switchBar progress.Model

	reading     gauge.Reading
	switching   gauge.SwitchReading
	step        gauge.StepReading
	stepVisible bool

	width int
	theme tuiTheme
}

func newGaugeModel(theme tuiTheme) gaugeModel {
	m := gaugeModel{theme: theme}
	m.applyTheme(theme)
	return m
}

func (m *gaugeModel) applyTheme(theme tuiTheme) {
	m.theme = theme
	m.bar = progress.New(
		progress.WithGradient(theme.gradientStart, theme.gradientEnd),
		progress.WithoutPercentage(),
	)
	m.switchBar = progress.New(
		progress.WithGradient(theme.gradientStart, theme.gradientEnd),
		progress.WithoutPercentage(),
	)
	m.setSize(m.width)
}

func (m gaugeModel) Init() tea.Cmd {
	return nil
}

func (m gaugeModel) Update(msg tea.Msg) (gaugeModel, tea.Cmd) {
	return m, nil
}

func (m *gaugeModel) setSize(w int) {
	m.width = w
	available := w - 8
	if available < 10 {
		available = 10
	}
	m.bar.Width = available
	m.switchBar.Width = available
}

func (m *gaugeModel) setReading(r gauge.Reading) {
	m.reading = r
}

func (m *gaugeModel) setSwitch(s gauge.SwitchReading, step gauge.StepReading, stepVisible bool) {
	m.switching = s
	m.step = step
	m.stepVisible = stepVisible
}

func (m gaugeModel) View() string {
	label := m.theme.subtitle.Render(m.reading.Label)
	rows := []string{
		m.bar.ViewAs(m.reading.Percent / 100),
		label,
	}

	title := m.theme.text.Render(m.switching.Title)
	if m.switching.Alert {
		title = m.theme.danger.Render(m.switching.Title)
	}
	count := m.theme.muted.Render(fmt.Sprintf(" %s", m.switching.Count))
	rows = append(rows,
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, title, count),
		m.switchBar.ViewAs(m.switching.Percent/100),
	)
	if m.switching.Phase != "" {
		rows = append(rows, m.theme.info.Render(m.switching.Phase))
	}
	if m.switching.ActiveFor != "" {
		rows = append(rows, m.theme.muted.Render(m.switching.ActiveFor))
	}
	if m.stepVisible {
		rows = append(rows, m.theme.warn.Render(m.step.Count+"  "+m.step.Title))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
