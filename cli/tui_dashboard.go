package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"idlectl/api"
	"idlectl/config"
	"idlectl/gauge"
	"idlectl/logtail"
	"idlectl/metacache"
)

type screenID int

const (
	screenDashboard screenID = iota
	screenSettings
)

type statusTickMsg struct{}

type statusMsg struct {
	snap *api.StatusSnapshot
	err  error
}

type logTickMsg struct{}

type logsMsg struct {
	batch *api.LogBatch
	err   error
}

type metaMsg struct {
	apps map[string]api.AppMeta
	err  error
}

type commandResultMsg struct {
	name    string
	message string
	err     error
}

type configReloadMsg config.Config

type dashboardKeyMap struct {
	Quit     key.Binding
	Settings key.Binding
	Run      key.Binding
	Stop     key.Binding
	Clear    key.Binding
	Switch   key.Binding
	Bottom   key.Binding
	Accounts key.Binding
	Save     key.Binding
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Settings: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "settings"),
		),
		Run: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run now"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s", "x"),
			key.WithHelp("s", "stop"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log"),
		),
		Switch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "switch to account"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "log bottom"),
		),
		Accounts: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "pick account"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
	}
}

func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Settings, k.Run, k.Stop, k.Switch, k.Bottom, k.Quit}
}

func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Settings, k.Run, k.Stop},
		{k.Switch, k.Accounts, k.Bottom},
		{k.Clear, k.Save, k.Quit},
	}
}

// dashboardModel is the program root: it owns polling, the projected
// snapshot, and the two screens.
type dashboardModel struct {
	theme   tuiTheme
	client  *api.Client
	cfg     config.Config
	audit   *auditLogger
	store   *metacache.Store
	reloads <-chan config.Config

	lock     *editLock
	settings settingsModel
	screen   screenID

	offline bool
	spin    spinner.Model

	// projected read-only telemetry, refreshed every status tick even
	// while the edit lock is held.
	state      string
	nextRunAt  string
	lastRunAt  string
	accounts   []string
	accountIdx int
	gamesOpen  int
	batchSize  int
	cycleGauge gaugeModel

	tail   logtail.Tailer
	ledger ledgerModel

	keys   dashboardKeyMap
	help   help.Model
	width  int
	height int
}

func newDashboardModel(cfg config.Config, client *api.Client, store *metacache.Store, audit *auditLogger, reloads <-chan config.Config) dashboardModel {
	theme := newTUITheme("default")
	lock := &editLock{}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.warn

	return dashboardModel{
		theme:      theme,
		client:     client,
		cfg:        cfg,
		audit:      audit,
		store:      store,
		reloads:    reloads,
		lock:       lock,
		settings:   newSettingsModel(theme, lock, client, store),
		spin:       sp,
		cycleGauge: newGaugeModel(theme),
		ledger:     newLedgerModel(theme),
		keys:       newDashboardKeyMap(),
		help:       help.New(),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		fetchStatusCmd(m.client),
		statusTickCmd(m.cfg.StatusPoll()),
		logTickCmd(config.LogPollStagger),
		waitForConfigReload(m.reloads),
		m.settings.Init(),
	)
}

func statusTickCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func logTickCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return logTickMsg{}
	})
}

func fetchStatusCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		snap, err := client.Status(context.Background())
		return statusMsg{snap: snap, err: err}
	}
}

func fetchLogsCmd(client *api.Client, since float64) tea.Cmd {
	return func() tea.Msg {
		batch, err := client.Logs(context.Background(), since)
		return logsMsg{batch: batch, err: err}
	}
}

func hydrateMetaCmd(store *metacache.Store, client *api.Client, ids []string) tea.Cmd {
	missing := store.Missing(ids)
	if len(missing) == 0 {
		return nil
	}
	return func() tea.Msg {
		apps, err := store.Hydrate(context.Background(), client, missing)
		return metaMsg{apps: apps, err: err}
	}
}

// refreshMetaCmd fetches ids regardless of cache state and writes the
// results through. Used where partial metadata was just seeded locally
// and the full record (header image, icon) still has to come from the
// daemon.
func refreshMetaCmd(store *metacache.Store, client *api.Client, ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	return func() tea.Msg {
		apps, err := client.AppMeta(context.Background(), ids)
		for id, meta := range apps {
			_ = store.Put(id, meta)
		}
		return metaMsg{apps: apps, err: err}
	}
}

func commandCmd(name string, fn func(context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		message, err := fn(context.Background())
		return commandResultMsg{name: name, message: message, err: err}
	}
}

func waitForConfigReload(ch <-chan config.Config) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configReloadMsg(cfg)
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.settings.setWidth(msg.Width)
		m.cycleGauge.setSize(msg.Width - 4)
		ledgerHeight := msg.Height - 16
		if ledgerHeight < 4 {
			ledgerHeight = 4
		}
		m.ledger.setSize(msg.Width-4, ledgerHeight)
		return m, nil

	case statusTickMsg:
		return m, tea.Batch(
			fetchStatusCmd(m.client),
			statusTickCmd(m.cfg.StatusPoll()),
		)

	case statusMsg:
		if msg.err != nil {
			if !m.offline {
				m.offline = true
				cmds = append(cmds, m.spin.Tick)
			}
			return m, tea.Batch(cmds...)
		}
		m.offline = false
		m.applySnapshot(msg.snap)
		return m, tea.Batch(cmds...)

	case logTickMsg:
		cmds = append(cmds, logTickCmd(m.cfg.LogPoll()))
		// Log polling pauses while the daemon is unreachable; the status
		// poller keeps probing and lifts the flag on recovery.
		if !m.offline {
			cmds = append(cmds, fetchLogsCmd(m.client, m.tail.Cursor()))
		}
		return m, tea.Batch(cmds...)

	case logsMsg:
		if msg.err != nil || msg.batch == nil {
			return m, nil
		}
		m.tail.Apply(msg.batch.Events, msg.batch.Latest)
		m.ledger.setEvents(m.tail.Events())
		return m, nil

	case spinner.TickMsg:
		if !m.offline {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case metaMsg:
		if msg.err != nil {
			m.localLog("warning", "Catalog metadata lookup failed: "+msg.err.Error())
		}
		return m, nil

	case saveResultMsg:
		if msg.err != nil {
			m.audit.Record("save-config", "", msg.err)
			m.localLog("error", "Save failed: "+errorText(msg.err))
			m.settings.setHint("Save failed: "+errorText(msg.err), "error")
			return m, nil
		}
		m.audit.Record("save-config", "", nil)
		m.lock.clearManual()
		m.localLog("success", "Configuration saved")
		m.settings.setHint("Saved.", "ok")
		if msg.snap != nil {
			m.applySnapshot(msg.snap)
		}
		return m, nil

	case commandResultMsg:
		m.audit.Record(msg.name, msg.message, msg.err)
		if msg.err != nil {
			m.localLog("error", msg.name+" failed: "+errorText(msg.err))
			return m, nil
		}
		text := msg.message
		if text == "" {
			text = msg.name + " requested"
		}
		m.localLog("info", text)
		return m, nil

	case configReloadMsg:
		// Poll cadence follows the file live; the daemon address sticks
		// for the life of the session.
		reloaded := config.Config(msg)
		m.cfg.StatusPollMillis = reloaded.StatusPollMillis
		m.cfg.LogPollMillis = reloaded.LogPollMillis
		return m, waitForConfigReload(m.reloads)

	case searchDebounceMsg, searchResultMsg:
		var cmd tea.Cmd
		m.settings, cmd, _ = m.settings.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.settings, cmd, _ = m.settings.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.screen == screenSettings {
		var cmd tea.Cmd
		var leave bool
		m.settings, cmd, leave = m.settings.Update(msg)
		if leave {
			m.screen = screenDashboard
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Settings):
		m.screen = screenSettings
		return m, nil

	case key.Matches(msg, m.keys.Run):
		client := m.client
		return m, commandCmd("run", func(ctx context.Context) (string, error) {
			return "Run queued", client.Run(ctx)
		})

	case key.Matches(msg, m.keys.Stop):
		client := m.client
		m.state = "stopped"
		m.cycleGauge.setReading(gauge.Reading{Label: "Stopped by user"})
		return m, commandCmd("stop", func(ctx context.Context) (string, error) {
			return "Stop requested", client.Stop(ctx)
		})

	case key.Matches(msg, m.keys.Switch):
		// Rotation can only be redirected between cycles.
		if m.state != "waiting" || len(m.accounts) == 0 {
			return m, nil
		}
		account := m.accounts[m.accountIdx]
		client := m.client
		return m, commandCmd("switch-account", func(ctx context.Context) (string, error) {
			return client.SwitchAccount(ctx, account)
		})

	case key.Matches(msg, m.keys.Accounts):
		if len(m.accounts) == 0 {
			return m, nil
		}
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		m.accountIdx = ((m.accountIdx+step)%len(m.accounts) + len(m.accounts)) % len(m.accounts)
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.tail.Clear()
		m.ledger.setEvents(m.tail.Events())
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.ledger.gotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m, m.settings.saveCmd()
	}

	var cmd tea.Cmd
	m.ledger, cmd = m.ledger.Update(msg)
	return m, cmd
}

// applySnapshot projects one polled status read. Read-only telemetry is
// always refreshed; the editable form is only overwritten while the edit
// lock is free.
func (m *dashboardModel) applySnapshot(snap *api.StatusSnapshot) {
	m.state = snap.State
	if m.state == "" {
		if snap.Running {
			m.state = "running"
		} else {
			m.state = "idle"
		}
	}
	m.nextRunAt = snap.NextRunAt
	m.lastRunAt = snap.LastRunAt
	m.gamesOpen = snap.GameOpenCount
	m.batchSize = snap.Config.BatchSize
	m.accounts = snap.Accounts
	if m.accountIdx >= len(m.accounts) {
		m.accountIdx = 0
	}

	if snap.Config.Theme != m.theme.name {
		m.setTheme(snap.Config.Theme)
	}

	m.cycleGauge.setReading(gauge.FromSnapshot(snap, time.Now()))
	step, stepVisible := gauge.Step(snap.SwitchProgress)
	m.cycleGauge.setSwitch(gauge.Switch(snap.SwitchProgress, snap.Accounts), step, stepVisible)

	if !m.lock.editing() {
		m.settings.applyConfig(snap.Config)
	}
}

func (m *dashboardModel) setTheme(name string) {
	theme := newTUITheme(name)
	m.theme = theme
	m.spin.Style = theme.warn
	m.settings.setTheme(theme)
	m.ledger.setTheme(theme)
	m.cycleGauge.applyTheme(theme)
}

// localLog appends a client-side entry to the ledger without touching the
// server cursor.
func (m *dashboardModel) localLog(level, message string) {
	m.tail.Append(api.LogEvent{
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Level:     level,
		Message:   message,
	})
	m.ledger.setEvents(m.tail.Events())
}

func errorText(err error) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message()
	}
	return err.Error()
}

func (m dashboardModel) View() string {
	t := m.theme

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		t.title.Render(" idlectl "),
		"  ",
		m.viewStatePill(),
	)

	if m.offline {
		header = lipgloss.JoinHorizontal(lipgloss.Center,
			header, "  ",
			t.warn.Render(m.spin.View()+" daemon unreachable, retrying"),
		)
	}

	var body string
	if m.screen == screenSettings {
		body = t.panel.Render(m.settings.View())
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			t.panel.Render(m.viewKPIs()),
			t.panel.Render(m.cycleGauge.View()),
			t.panel.Render(m.viewAccounts()),
			t.panel.Render(m.ledger.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.help.View(m.keys),
	)
}

func (m dashboardModel) viewStatePill() string {
	label := strings.ToUpper(m.state)
	if label == "" {
		label = "CONNECTING"
	}
	switch m.state {
	case "running", "waiting":
		return m.theme.pillActive.Render(label)
	case "stopped":
		return m.theme.pillAlert.Render(label)
	default:
		return m.theme.pill.Render(label)
	}
}

func (m dashboardModel) viewKPIs() string {
	t := m.theme
	now := time.Now()

	next := gauge.FormatClock(m.nextRunAt)
	if rel := gauge.RelativeISO(m.nextRunAt, now); rel != "" {
		next += t.muted.Render(" (" + rel + ")")
	}
	last := gauge.FormatClock(m.lastRunAt)
	if rel := gauge.RelativeISO(m.lastRunAt, now); rel != "" {
		last += t.muted.Render(" (" + rel + ")")
	}

	rows := []string{
		t.subtitle.Render("Next run  ") + t.text.Render(next),
		t.subtitle.Render("Last run  ") + t.text.Render(last),
		t.subtitle.Render("Accounts  ") + t.text.Render(fmt.Sprintf("%d", len(m.accounts))) +
			t.subtitle.Render("   Games open  ") + t.text.Render(fmt.Sprintf("%d", m.gamesOpen)) +
			t.subtitle.Render("   Batch  ") + t.text.Render(fmt.Sprintf("%d", m.batchSize)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m dashboardModel) viewAccounts() string {
	if len(m.accounts) == 0 {
		return m.theme.muted.Render("No Steam profiles detected")
	}
	canSwitch := m.state == "waiting"
	pills := make([]string, 0, len(m.accounts))
	for i, account := range m.accounts {
		style := m.theme.pill
		if canSwitch && i == m.accountIdx {
			style = m.theme.pillActive
		}
		pills = append(pills, style.Render(account))
	}
	hint := m.theme.muted.Render("  enter switches to the selected account")
	if !canSwitch {
		hint = m.theme.muted.Render("  switching unlocks while waiting")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(pills, " "), hint)
}

// runDashboardUI builds the model's dependencies and runs the program in
// the alternate screen until quit.
func runDashboardUI(addr string) error {
	cfg := config.Load(config.Path())
	if addr != "" {
		cfg.Addr = addr
	}
	client := api.New(cfg.Addr)

	store, err := metacache.Open(filepath.Join(config.Dir(), "metacache.sqlite"))
	if err != nil {
		store = metacache.OpenMemory()
	}
	defer store.Close()

	audit := newAuditLogger(filepath.Join(config.Dir(), "audit.jsonl"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads, err := config.Watch(ctx, config.Path())
	if err != nil {
		reloads = nil
	}

	m := newDashboardModel(cfg, client, store, audit, reloads)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
