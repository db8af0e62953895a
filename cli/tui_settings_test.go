package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"idlectl/api"
	"idlectl/metacache"
)

func newTestSettings() settingsModel {
	return newSettingsModel(newTUITheme("default"), &editLock{}, api.New(""), metacache.OpenMemory())
}

func typeInto(t *testing.T, m settingsModel, text string) settingsModel {
	t.Helper()
	for _, r := range text {
		next, _, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next
	}
	return m
}

func TestSettingsApplyConfigFillsForm(t *testing.T) {
	m := newTestSettings()
	m.applyConfig(api.Config{
		RunIntervalSeconds:  1800,
		TimeToWait:          45,
		BatchSize:           2,
		RunOnStartup:        true,
		SwitchSteamAccounts: true,
		Theme:               "matrix",
		Games:               []string{"440", "570"},
	})

	if got := m.interval.Value(); got != "30" {
		t.Fatalf("interval = %q, want 30 minutes", got)
	}
	if got := m.wait.Value(); got != "45" {
		t.Fatalf("wait = %q, want 45", got)
	}
	if !m.startup || !m.switchAccounts {
		t.Fatal("expected both toggles on")
	}
	if themeNames[m.themeIdx] != "matrix" {
		t.Fatalf("theme = %q, want matrix", themeNames[m.themeIdx])
	}
	if m.editor.Len() != 2 {
		t.Fatalf("tokens = %d, want 2", m.editor.Len())
	}
}

func TestSettingsTypingMarksManualEdit(t *testing.T) {
	m := newTestSettings()
	m.applyConfig(api.Config{RunIntervalSeconds: 600})

	m.setFocus(fieldInterval)
	m = typeInto(t, m, "5")

	if !m.lock.editing() {
		t.Fatal("expected manual edit after typing into interval")
	}
	m.blurFocused()
	if !m.lock.editing() {
		t.Fatal("manual edit must survive blur until save")
	}
}

func TestSettingsBuildConfigConvertsAndFallsBack(t *testing.T) {
	m := newTestSettings()
	m.applyConfig(api.Config{
		RunIntervalSeconds: 600,
		TimeToWait:         30,
		BatchSize:          2,
		Games:              []string{"440"},
	})

	m.interval.SetValue("15")
	m.wait.SetValue("not a number")
	m.batch.SetValue("")

	cfg := m.buildConfig()
	if cfg.RunIntervalSeconds != 900 {
		t.Fatalf("RunIntervalSeconds = %d, want 900", cfg.RunIntervalSeconds)
	}
	if cfg.TimeToWait != 30 {
		t.Fatalf("TimeToWait = %d, want fallback 30", cfg.TimeToWait)
	}
	if cfg.BatchSize != 2 {
		t.Fatalf("BatchSize = %d, want fallback 2", cfg.BatchSize)
	}
	if len(cfg.Games) != 1 || cfg.Games[0] != "440" {
		t.Fatalf("Games = %v", cfg.Games)
	}
}

func TestSettingsToggleAndThemeCycle(t *testing.T) {
	m := newTestSettings()
	m.applyConfig(api.Config{Theme: "default"})

	m.setFocus(fieldStartup)
	next, _, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next
	if !m.startup {
		t.Fatal("expected startup toggle on")
	}

	m.setFocus(fieldTheme)
	next, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next
	if themeNames[m.themeIdx] != themeNames[len(themeNames)-1] {
		t.Fatalf("left from first theme should wrap, got %q", themeNames[m.themeIdx])
	}
	next, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next
	if themeNames[m.themeIdx] != "default" {
		t.Fatalf("expected wrap back to default, got %q", themeNames[m.themeIdx])
	}
	if !m.lock.editing() {
		t.Fatal("toggle and theme changes must mark a manual edit")
	}
}

func TestSettingsTokenCommitAddsOnce(t *testing.T) {
	m := newTestSettings()
	m.setFocus(fieldToken)

	m.token.SetValue("https://store.example/app/440/Team/")
	next, _, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next

	if !m.editor.Contains("440") {
		t.Fatalf("expected 440 added, have %v", m.editor.IDs())
	}
	if m.token.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.token.Value())
	}
	if !m.lock.editing() {
		t.Fatal("adding a token must mark a manual edit")
	}

	m.token.SetValue("440")
	next, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next
	if m.editor.Len() != 1 {
		t.Fatalf("duplicate was added, tokens = %v", m.editor.IDs())
	}
	if m.hintTone == "ok" {
		t.Fatalf("duplicate should not report success, hint %q", m.hint)
	}
}

func TestSettingsBackspaceRemovesLastToken(t *testing.T) {
	m := newTestSettings()
	m.applyConfig(api.Config{Games: []string{"440", "570"}})
	m.setFocus(fieldToken)

	next, _, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next

	ids := m.editor.IDs()
	if len(ids) != 1 || ids[0] != "440" {
		t.Fatalf("tokens after backspace = %v, want [440]", ids)
	}
	if !m.lock.editing() {
		t.Fatal("removal must mark a manual edit")
	}
}

func TestSettingsSearchOnlyLastGenerationCounts(t *testing.T) {
	m := newTestSettings()
	m.setFocus(fieldToken)

	m = typeInto(t, m, "port")
	staleGen := m.searchCtl.Gen()
	m = typeInto(t, m, "al")
	freshGen := m.searchCtl.Gen()
	if staleGen == freshGen {
		t.Fatal("expected a new generation per keystroke")
	}

	// A debounce timer from the superseded keystroke must not launch.
	next, cmd, _ := m.Update(searchDebounceMsg{gen: staleGen})
	m = next
	if cmd != nil {
		t.Fatal("stale debounce should be a no-op")
	}
	next, cmd, _ = m.Update(searchDebounceMsg{gen: freshGen})
	m = next
	if cmd == nil {
		t.Fatal("current debounce should launch the query")
	}

	// Responses tagged with an old generation are discarded.
	next, _, _ = m.Update(searchResultMsg{gen: staleGen, results: []api.SearchResult{{AppID: "1", Name: "stale"}}})
	m = next
	if len(m.searchCtl.Results()) != 0 {
		t.Fatalf("stale results rendered: %v", m.searchCtl.Results())
	}

	next, _, _ = m.Update(searchResultMsg{gen: freshGen, results: []api.SearchResult{{AppID: "440", Name: "Portal"}}})
	m = next
	if len(m.searchCtl.Results()) != 1 {
		t.Fatal("expected fresh results applied")
	}
}

func TestSettingsSearchFailureShowsUnavailableRow(t *testing.T) {
	m := newTestSettings()
	m.setFocus(fieldToken)
	m = typeInto(t, m, "portal")
	gen := m.searchCtl.Gen()

	next, _, _ := m.Update(searchDebounceMsg{gen: gen})
	m = next
	next, _, _ = m.Update(searchResultMsg{gen: gen, err: errors.New("boom")})
	m = next

	if !m.searchCtl.Failed() {
		t.Fatal("expected failed search state")
	}
	if view := m.View(); view == "" {
		t.Fatal("expected a rendered view")
	}
}

func TestSettingsSelectResultSeedsCache(t *testing.T) {
	m := newTestSettings()
	m.setFocus(fieldToken)
	m = typeInto(t, m, "portal")
	gen := m.searchCtl.Gen()

	next, _, _ := m.Update(searchDebounceMsg{gen: gen})
	m = next
	next, _, _ = m.Update(searchResultMsg{gen: gen, results: []api.SearchResult{
		{AppID: "440", Name: "Portal", Image: "https://cdn.example/440.jpg"},
	}})
	m = next

	next, cmd, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next

	if !m.editor.Contains("440") {
		t.Fatalf("expected selection added, have %v", m.editor.IDs())
	}
	meta, ok := m.store.Get("440")
	if !ok || meta.Name != "Portal" {
		t.Fatalf("expected cache seeded from result, got %+v ok=%v", meta, ok)
	}
	if m.searchCtl.Visible() {
		t.Fatal("expected suggestions hidden after selection")
	}
	// Search results only carry a name and capsule image. The full record
	// must still be fetched even though the id is now in the cache.
	if cmd == nil {
		t.Fatal("expected a metadata fetch for the selected id")
	}
}

func TestSettingsSpaceCommitsTokenWhenSuggestionsHidden(t *testing.T) {
	m := newTestSettings()
	m.setFocus(fieldToken)

	m.token.SetValue("440")
	m.searchCtl.Hide()
	next, _, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next

	if !m.editor.Contains("440") {
		t.Fatalf("expected space to commit, have %v", m.editor.IDs())
	}
	if m.token.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.token.Value())
	}
}

func TestSettingsCommaCommitsToken(t *testing.T) {
	m := newTestSettings()
	m.setFocus(fieldToken)

	m.token.SetValue("570")
	m.searchCtl.Hide()
	next, _, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{','}})
	m = next

	if !m.editor.Contains("570") {
		t.Fatalf("expected comma to commit, have %v", m.editor.IDs())
	}
	if m.token.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.token.Value())
	}
}

func TestSettingsBlurCommitsPendingToken(t *testing.T) {
	m := newTestSettings()
	m.setFocus(fieldToken)

	m.token.SetValue("730")
	m.searchCtl.Hide()
	next, _, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next

	if m.focus != -1 {
		t.Fatalf("focus = %d, want browse mode", m.focus)
	}
	if !m.editor.Contains("730") {
		t.Fatalf("expected pending entry kept on blur, have %v", m.editor.IDs())
	}
}
