package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"idlectl/api"
	"idlectl/metacache"
	"idlectl/search"
	"idlectl/tokens"
)

// Settings form fields in navigation order.
const (
	fieldInterval = iota
	fieldWait
	fieldBatch
	fieldStartup
	fieldSwitch
	fieldTheme
	fieldToken
	fieldCount
)

const defaultTokenHint = "Paste a store link or app id, Enter to add. Ctrl+v pastes a whole list."

type searchDebounceMsg struct {
	gen uint64
}

type searchResultMsg struct {
	gen     uint64
	results []api.SearchResult
	err     error
}

type saveResultMsg struct {
	snap *api.StatusSnapshot
	err  error
}

// settingsModel is the interactive edit surface. It owns the edit buffer;
// the dashboard only writes into it through applyConfig, and only while
// the shared edit lock is free.
type settingsModel struct {
	theme  tuiTheme
	lock   *editLock
	client *api.Client
	store  *metacache.Store

	interval       textinput.Model
	wait           textinput.Model
	batch          textinput.Model
	startup        bool
	switchAccounts bool
	themeIdx       int
	token          textinput.Model

	editor    *tokens.Editor
	searchCtl *search.Controller

	// applied is the last daemon config projected into the form, used as
	// the fallback for fields left blank or unparseable at save time.
	applied api.Config

	focus    int
	hint     string
	hintTone string
	width    int
}

func newSettingsModel(theme tuiTheme, lock *editLock, client *api.Client, store *metacache.Store) settingsModel {
	interval := textinput.New()
	interval.Placeholder = "minutes"
	interval.CharLimit = 5
	interval.Width = 8

	wait := textinput.New()
	wait.Placeholder = "seconds"
	wait.CharLimit = 6
	wait.Width = 8

	batch := textinput.New()
	batch.Placeholder = "count"
	batch.CharLimit = 4
	batch.Width = 8

	token := textinput.New()
	token.Placeholder = "search the catalog or paste an app id"
	token.CharLimit = 200
	token.Width = 44

	return settingsModel{
		theme:     theme,
		lock:      lock,
		client:    client,
		store:     store,
		interval:  interval,
		wait:      wait,
		batch:     batch,
		token:     token,
		editor:    tokens.NewEditor(nil),
		searchCtl: search.NewController(),
		focus:     -1,
		hint:      defaultTokenHint,
	}
}

func (m settingsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *settingsModel) setTheme(theme tuiTheme) {
	m.theme = theme
}

func (m *settingsModel) setWidth(w int) {
	m.width = w
}

// applyConfig projects a polled config into the form. Callers gate this on
// the edit lock; the method itself overwrites unconditionally.
func (m *settingsModel) applyConfig(cfg api.Config) {
	m.applied = cfg
	m.interval.SetValue(strconv.Itoa(cfg.RunIntervalSeconds / 60))
	m.wait.SetValue(strconv.Itoa(cfg.TimeToWait))
	m.batch.SetValue(strconv.Itoa(cfg.BatchSize))
	m.startup = cfg.RunOnStartup
	m.switchAccounts = cfg.SwitchSteamAccounts
	m.themeIdx = themeIndex(cfg.Theme)
	m.editor.Reset(cfg.Games)
}

func themeIndex(name string) int {
	for i, candidate := range themeNames {
		if candidate == name {
			return i
		}
	}
	return 0
}

// buildConfig assembles the save payload, falling back to the last applied
// value for any numeric field that does not parse.
func (m settingsModel) buildConfig() api.Config {
	cfg := m.applied
	if minutes, err := strconv.Atoi(strings.TrimSpace(m.interval.Value())); err == nil && minutes > 0 {
		cfg.RunIntervalSeconds = minutes * 60
	}
	if wait, err := strconv.Atoi(strings.TrimSpace(m.wait.Value())); err == nil && wait >= 0 {
		cfg.TimeToWait = wait
	}
	if batch, err := strconv.Atoi(strings.TrimSpace(m.batch.Value())); err == nil && batch > 0 {
		cfg.BatchSize = batch
	}
	cfg.RunOnStartup = m.startup
	cfg.SwitchSteamAccounts = m.switchAccounts
	cfg.Theme = themeNames[m.themeIdx]
	cfg.Games = m.editor.IDs()
	return cfg
}

func (m settingsModel) saveCmd() tea.Cmd {
	cfg := m.buildConfig()
	client := m.client
	return func() tea.Msg {
		snap, err := client.SaveConfig(context.Background(), cfg)
		return saveResultMsg{snap: snap, err: err}
	}
}

// editing reports whether key input should be captured by the form rather
// than treated as a global shortcut.
func (m settingsModel) editingField() bool {
	switch m.focus {
	case fieldInterval, fieldWait, fieldBatch, fieldToken:
		return true
	}
	return false
}

func (m *settingsModel) setFocus(idx int) tea.Cmd {
	cmd := m.blurFocused()
	m.focus = idx
	if idx < 0 {
		return cmd
	}
	m.lock.beginFocus()
	switch idx {
	case fieldInterval:
		m.interval.Focus()
	case fieldWait:
		m.wait.Focus()
	case fieldBatch:
		m.batch.Focus()
	case fieldToken:
		m.token.Focus()
	}
	return cmd
}

// blurFocused releases the focused field. A pending entry in the token box
// is committed on the way out, mirroring how leaving the field behaves in
// the rest of the form.
func (m *settingsModel) blurFocused() tea.Cmd {
	if m.focus < 0 {
		return nil
	}
	var cmd tea.Cmd
	if m.focus == fieldToken {
		cmd = m.commitToken()
	}
	m.lock.endFocus()
	m.interval.Blur()
	m.wait.Blur()
	m.batch.Blur()
	m.token.Blur()
	m.focus = -1
	return cmd
}

func (m *settingsModel) moveFocus(step int) tea.Cmd {
	next := m.focus + step
	if next < 0 {
		next = fieldCount - 1
	}
	if next >= fieldCount {
		next = 0
	}
	return m.setFocus(next)
}

func (m *settingsModel) setHint(text, tone string) {
	m.hint = text
	m.hintTone = tone
}

// leave is returned true when an esc in browse mode should hand the screen
// back to the dashboard.
func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd, bool) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case searchDebounceMsg:
		if m.searchCtl.DebounceDue(msg.gen) {
			cmds = append(cmds, m.launchSearch())
		}
		return m, tea.Batch(cmds...), false

	case searchResultMsg:
		if msg.err != nil {
			m.searchCtl.Fail(msg.gen, msg.err)
		} else {
			m.searchCtl.Apply(msg.gen, msg.results)
		}
		return m, nil, false

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	// Component housekeeping (cursor blinks and the like).
	var cmd tea.Cmd
	m.interval, cmd = m.interval.Update(msg)
	cmds = append(cmds, cmd)
	m.wait, cmd = m.wait.Update(msg)
	cmds = append(cmds, cmd)
	m.batch, cmd = m.batch.Update(msg)
	cmds = append(cmds, cmd)
	m.token, cmd = m.token.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...), false
}

func (m settingsModel) updateKey(msg tea.KeyMsg) (settingsModel, tea.Cmd, bool) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		if m.focus == fieldToken && m.searchCtl.Visible() {
			m.searchCtl.Hide()
			return m, nil, false
		}
		if m.focus >= 0 {
			return m, m.blurFocused(), false
		}
		return m, nil, true

	case "ctrl+s":
		return m, m.saveCmd(), false

	case "tab", "down":
		if m.focus == fieldToken && msg.String() == "down" && m.searchCtl.Visible() {
			m.searchCtl.Cycle(1)
			return m, nil, false
		}
		return m, m.moveFocus(1), false

	case "shift+tab", "up":
		if m.focus == fieldToken && msg.String() == "up" && m.searchCtl.Visible() {
			m.searchCtl.Cycle(-1)
			return m, nil, false
		}
		return m, m.moveFocus(-1), false

	case "enter", " ":
		if cmd, handled := m.activate(msg.String()); handled {
			return m, cmd, false
		}

	case ",":
		// A comma separates tokens once the suggestion panel is out of
		// the way, same as space.
		if m.focus == fieldToken && !m.searchCtl.Visible() {
			return m, m.commitToken(), false
		}

	case "left", "right":
		if m.focus == fieldTheme {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			m.themeIdx = ((m.themeIdx+step)%len(themeNames) + len(themeNames)) % len(themeNames)
			m.lock.markManual()
			return m, nil, false
		}

	case "ctrl+v":
		if m.focus == fieldToken {
			return m, m.pasteClipboard(), false
		}

	case "backspace":
		if m.focus == fieldToken && m.token.Value() == "" && m.editor.Len() > 0 {
			ids := m.editor.IDs()
			last := ids[len(ids)-1]
			m.editor.Remove(last)
			m.lock.markManual()
			m.setHint("Removed "+m.tokenLabel(last)+".", "warn")
			return m, nil, false
		}
	}

	// Everything else feeds the focused input.
	switch m.focus {
	case fieldInterval:
		cmds = append(cmds, m.passToInput(&m.interval, msg, true))
	case fieldWait:
		cmds = append(cmds, m.passToInput(&m.wait, msg, true))
	case fieldBatch:
		cmds = append(cmds, m.passToInput(&m.batch, msg, true))
	case fieldToken:
		cmds = append(cmds, m.updateTokenInput(msg))
	}

	return m, tea.Batch(cmds...), false
}

// activate handles enter/space on the focused field. The second return is
// false when the key should fall through to the text input instead.
func (m *settingsModel) activate(key string) (tea.Cmd, bool) {
	switch m.focus {
	case fieldStartup:
		m.startup = !m.startup
		m.lock.markManual()
		return nil, true
	case fieldSwitch:
		m.switchAccounts = !m.switchAccounts
		m.lock.markManual()
		return nil, true
	case fieldTheme:
		if key == "enter" || key == " " {
			m.themeIdx = (m.themeIdx + 1) % len(themeNames)
			m.lock.markManual()
			return nil, true
		}
	case fieldToken:
		if key == " " {
			// Space types into an active search; with the panel hidden
			// it commits the pending entry instead.
			if m.searchCtl.Visible() {
				return nil, false
			}
			return m.commitToken(), true
		}
		if key != "enter" {
			return nil, false
		}
		if res, ok := m.searchCtl.Select(-1); ok && m.searchCtl.Visible() {
			return m.selectResult(res), true
		}
		return m.commitToken(), true
	case -1:
		if key == "enter" {
			return m.setFocus(0), true
		}
	}
	return nil, false
}

// passToInput forwards a key to a numeric field, marking the manual-edit
// flag whenever the value actually changes.
func (m *settingsModel) passToInput(input *textinput.Model, msg tea.KeyMsg, configField bool) tea.Cmd {
	before := input.Value()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	if configField && input.Value() != before {
		m.lock.markManual()
	}
	return cmd
}

// updateTokenInput forwards a key to the token search box. Typing a search
// term does not mark a manual edit by itself; only adding or removing a
// token mutates the config.
func (m *settingsModel) updateTokenInput(msg tea.KeyMsg) tea.Cmd {
	before := m.token.Value()
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.token, cmd = m.token.Update(msg)
	cmds = append(cmds, cmd)

	if m.token.Value() != before {
		if gen, fire := m.searchCtl.SetTerm(m.token.Value()); fire {
			cmds = append(cmds, debounceCmd(gen))
		}
	}
	return tea.Batch(cmds...)
}

func debounceCmd(gen uint64) tea.Cmd {
	return tea.Tick(search.Debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{gen: gen}
	})
}

func (m *settingsModel) launchSearch() tea.Cmd {
	ctx, gen := m.searchCtl.StartQuery(context.Background())
	term := m.searchCtl.Term()
	client := m.client
	return func() tea.Msg {
		results, err := client.Search(ctx, term)
		if err != nil {
			return searchResultMsg{gen: gen, err: err}
		}
		return searchResultMsg{gen: gen, results: results}
	}
}

func (m *settingsModel) selectResult(res api.SearchResult) tea.Cmd {
	defer func() {
		m.token.SetValue("")
		m.searchCtl.Hide()
	}()

	if res.AppID == "" {
		m.setHint("That result has no app id.", "error")
		return nil
	}
	id, err := m.editor.Add(res.AppID)
	switch {
	case errors.Is(err, tokens.ErrDuplicate):
		m.setHint(m.tokenLabel(res.AppID)+" is already in the list.", "warn")
		return nil
	case err != nil:
		m.setHint("Could not add that entry.", "error")
		return nil
	}

	m.lock.markManual()
	if res.Name != "" || res.Image != "" {
		_ = m.store.Put(id, api.AppMeta{Name: res.Name, CapsuleImage: res.Image})
	}
	m.setHint("Added "+m.tokenLabel(id)+".", "ok")
	return refreshMetaCmd(m.store, m.client, []string{id})
}

func (m *settingsModel) commitToken() tea.Cmd {
	raw := m.token.Value()
	m.token.SetValue("")
	m.searchCtl.Hide()
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	added, failed := m.editor.AddAll(raw)
	switch {
	case len(added) == 0 && failed > 0:
		m.setHint("No app id found in that entry.", "error")
	case failed > 0:
		m.setHint(fmt.Sprintf("Added %d, skipped %d.", len(added), failed), "warn")
	case len(added) == 1:
		m.setHint("Added "+m.tokenLabel(added[0])+".", "ok")
	default:
		m.setHint(fmt.Sprintf("Added %d entries.", len(added)), "ok")
	}

	if len(added) == 0 {
		return nil
	}
	m.lock.markManual()
	return hydrateMetaCmd(m.store, m.client, added)
}

func (m *settingsModel) pasteClipboard() tea.Cmd {
	text, err := clipboard.ReadAll()
	if err != nil {
		m.setHint("Clipboard unavailable.", "error")
		return nil
	}
	added, failed := m.editor.AddAll(text)
	switch {
	case len(added) == 0 && failed == 0:
		m.setHint("Clipboard is empty.", "warn")
	case len(added) == 0:
		m.setHint("No app ids found on the clipboard.", "error")
	case failed > 0:
		m.setHint(fmt.Sprintf("Pasted %d, skipped %d.", len(added), failed), "warn")
	default:
		m.setHint(fmt.Sprintf("Pasted %d entries.", len(added)), "ok")
	}

	if len(added) == 0 {
		return nil
	}
	m.lock.markManual()
	return hydrateMetaCmd(m.store, m.client, added)
}

// tokenLabel prefers the cached catalog name over the bare id.
func (m settingsModel) tokenLabel(id string) string {
	if meta, ok := m.store.Get(id); ok && meta.Name != "" {
		return meta.Name
	}
	return "app " + id
}

func (m settingsModel) View() string {
	t := m.theme

	label := func(idx int, text string) string {
		if idx == m.focus {
			return t.highlight.Render(" " + text + " ")
		}
		return t.subtitle.Render(" " + text + " ")
	}
	toggle := func(on bool) string {
		if on {
			return t.ok.Render("[on] ")
		}
		return t.muted.Render("[off]")
	}

	rows := []string{
		t.title.Render("Settings"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			label(fieldInterval, "Interval (min)"), m.interval.View()),
		lipgloss.JoinHorizontal(lipgloss.Center,
			label(fieldWait, "Wait (sec)    "), m.wait.View()),
		lipgloss.JoinHorizontal(lipgloss.Center,
			label(fieldBatch, "Batch size    "), m.batch.View()),
		lipgloss.JoinHorizontal(lipgloss.Center,
			label(fieldStartup, "Run on startup"), " ", toggle(m.startup)),
		lipgloss.JoinHorizontal(lipgloss.Center,
			label(fieldSwitch, "Switch accounts"), " ", toggle(m.switchAccounts)),
		lipgloss.JoinHorizontal(lipgloss.Center,
			label(fieldTheme, "Theme         "), " ", t.info.Render(themeNames[m.themeIdx])),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			label(fieldToken, "Games         "), m.token.View()),
	}

	if panel := m.viewSuggestions(); panel != "" {
		rows = append(rows, panel)
	}
	rows = append(rows, m.viewChips(), "", m.viewHint())

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m settingsModel) viewSuggestions() string {
	if !m.searchCtl.Visible() {
		return ""
	}
	t := m.theme

	if m.searchCtl.Loading() {
		return t.muted.Render("  Searching...")
	}
	if m.searchCtl.Failed() {
		return t.danger.Render("  Search unavailable")
	}

	lines := make([]string, 0, len(m.searchCtl.Results()))
	for i, res := range m.searchCtl.Results() {
		name := res.Name
		if name == "" {
			name = "app " + res.AppID
		}
		line := fmt.Sprintf("  %s  %s", name, t.muted.Render(res.AppID))
		if res.Price != "" {
			line += "  " + t.muted.Render(res.Price)
		}
		if i == m.searchCtl.Active() {
			line = t.highlight.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m settingsModel) viewChips() string {
	ids := m.editor.IDs()
	if len(ids) == 0 {
		return m.theme.muted.Render("  No games configured")
	}
	chips := make([]string, 0, len(ids))
	for _, id := range ids {
		chips = append(chips, m.theme.chip.Render(m.tokenLabel(id)))
	}
	return "  " + strings.Join(chips, " ")
}

func (m settingsModel) viewHint() string {
	style := m.theme.muted
	switch m.hintTone {
	case "ok":
		style = m.theme.ok
	case "warn":
		style = m.theme.warn
	case "error":
		style = m.theme.danger
	}
	return style.Render(m.hint)
}
