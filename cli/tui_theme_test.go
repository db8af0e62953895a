package cli

import "testing"

func TestThemeFallsBackToDefault(t *testing.T) {
	theme := newTUITheme("does-not-exist")
	if theme.name != "default" {
		t.Fatalf("theme name = %q, want default", theme.name)
	}
}

func TestThemeGradientFollowsPalette(t *testing.T) {
	theme := newTUITheme("fire")
	if theme.gradientStart != "#2b1328" || theme.gradientEnd != "#ff6b4a" {
		t.Fatalf("fire gradient = %s..%s", theme.gradientStart, theme.gradientEnd)
	}
}

func TestEveryThemeNameHasPalette(t *testing.T) {
	for _, name := range themeNames {
		if _, ok := themePalettes[name]; !ok {
			t.Fatalf("theme %q has no palette", name)
		}
	}
}

func TestThemeIndexUnknownName(t *testing.T) {
	if got := themeIndex("matrix"); themeNames[got] != "matrix" {
		t.Fatalf("themeIndex(matrix) = %d", got)
	}
	if got := themeIndex("bogus"); got != 0 {
		t.Fatalf("themeIndex(bogus) = %d, want 0", got)
	}
}
