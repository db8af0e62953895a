package cli

import "testing"

func TestShouldUseDashboardUI(t *testing.T) {
	if !shouldUseDashboardUI(true, false) {
		t.Fatal("expected dashboard UI to be enabled in tty mode")
	}
	if shouldUseDashboardUI(true, true) {
		t.Fatal("expected --no-ui to disable dashboard UI")
	}
	if shouldUseDashboardUI(false, false) {
		t.Fatal("expected non-tty to disable dashboard UI")
	}
}
