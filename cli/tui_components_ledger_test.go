package cli

import (
	"fmt"
	"strings"
	"testing"

	"idlectl/api"
)

func ledgerEvents(n int) []api.LogEvent {
	events := make([]api.LogEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, api.LogEvent{
			Timestamp: float64(1000 + i),
			Level:     "info",
			Message:   fmt.Sprintf("event-%d", i),
		})
	}
	return events
}

func TestLedgerFollowsTailWhenPinned(t *testing.T) {
	l := newLedgerModel(newTUITheme("default"))
	l.setSize(80, 5)

	l.setEvents(ledgerEvents(20))
	if !l.viewport.AtBottom() {
		t.Fatal("expected viewport pinned to bottom after first fill")
	}

	l.setEvents(ledgerEvents(30))
	if !l.viewport.AtBottom() {
		t.Fatal("expected viewport to stay pinned as events arrive")
	}
	if !strings.Contains(l.View(), "event-29") {
		t.Fatalf("expected newest event visible:\n%s", l.View())
	}
}

func TestLedgerPreservesScrollbackPosition(t *testing.T) {
	l := newLedgerModel(newTUITheme("default"))
	l.setSize(80, 5)
	l.setEvents(ledgerEvents(20))

	l.viewport.SetYOffset(0)
	if l.viewport.AtBottom() {
		t.Fatal("precondition: expected scrolled away from bottom")
	}

	l.setEvents(ledgerEvents(40))
	if l.viewport.YOffset != 0 {
		t.Fatalf("YOffset = %d, want 0 while reading scrollback", l.viewport.YOffset)
	}

	l.gotoBottom()
	l.setEvents(ledgerEvents(50))
	if !l.viewport.AtBottom() {
		t.Fatal("expected follow mode restored after jumping to bottom")
	}
}

func TestLedgerEmptyState(t *testing.T) {
	l := newLedgerModel(newTUITheme("default"))
	l.setSize(40, 4)
	if !strings.Contains(l.View(), "Waiting for log events") {
		t.Fatalf("unexpected empty view:\n%s", l.View())
	}
}
