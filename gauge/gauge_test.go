package gauge

import (
	"testing"
	"time"

	"idlectl/api"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestFromSnapshotStoppedWinsOverEverything(t *testing.T) {
	snap := &api.StatusSnapshot{
		State:        "stopped",
		WaitProgress: &api.WaitProgress{Total: 100, Elapsed: 50, Label: "Waiting"},
	}
	r := FromSnapshot(snap, testNow)
	if r.Percent != 0 || r.Label != "Stopped by user" {
		t.Fatalf("reading = %+v", r)
	}
}

func TestFromSnapshotWaitDerivesRemaining(t *testing.T) {
	snap := &api.StatusSnapshot{
		State:        "running",
		WaitProgress: &api.WaitProgress{Total: 100, Elapsed: 40, Label: "Waiting before closing games"},
	}
	r := FromSnapshot(snap, testNow)
	if r.Percent != 40 {
		t.Fatalf("percent = %v, want 40", r.Percent)
	}
	if r.Label != "Waiting before closing games (00:01:00 remaining)" {
		t.Fatalf("label = %q", r.Label)
	}
	if r.Anim != AnimWaiting {
		t.Fatalf("anim = %v, want AnimWaiting", r.Anim)
	}
}

func TestFromSnapshotWaitExplicitRemainingWins(t *testing.T) {
	remaining := 25.0
	snap := &api.StatusSnapshot{
		WaitProgress: &api.WaitProgress{Total: 100, Elapsed: 40, Remaining: &remaining, Label: "Cooling down"},
	}
	r := FromSnapshot(snap, testNow)
	if r.Percent != 75 {
		t.Fatalf("percent = %v, want 75", r.Percent)
	}
}

func TestFromSnapshotWaitPercentMonotonic(t *testing.T) {
	last := -1.0
	for remaining := 100.0; remaining >= 0; remaining -= 7 {
		rem := remaining
		snap := &api.StatusSnapshot{
			WaitProgress: &api.WaitProgress{Total: 100, Remaining: &rem, Label: "Waiting"},
		}
		r := FromSnapshot(snap, testNow)
		if r.Percent < 0 || r.Percent > 100 {
			t.Fatalf("percent %v out of range at remaining=%v", r.Percent, remaining)
		}
		if r.Percent < last {
			t.Fatalf("percent regressed: %v after %v", r.Percent, last)
		}
		last = r.Percent
	}
}

func TestFromSnapshotRunningWithoutWait(t *testing.T) {
	r := FromSnapshot(&api.StatusSnapshot{State: "running"}, testNow)
	if r.Percent != 100 || r.Label != "Running current cycle" || r.Anim != AnimLoading {
		t.Fatalf("reading = %+v", r)
	}
}

func TestFromSnapshotCountdown(t *testing.T) {
	snap := &api.StatusSnapshot{
		State:           "waiting",
		NextRunAt:       testNow.Add(30 * time.Second).Format(time.RFC3339),
		IntervalSeconds: 120,
	}
	r := FromSnapshot(snap, testNow)
	if r.Percent != 75 {
		t.Fatalf("percent = %v, want 75", r.Percent)
	}
	if r.Label != "Next in 30s" {
		t.Fatalf("label = %q, want \"Next in 30s\"", r.Label)
	}
}

func TestFromSnapshotIdleFallback(t *testing.T) {
	r := FromSnapshot(&api.StatusSnapshot{State: "idle"}, testNow)
	if r.Percent != 0 || r.Label != "Idle" {
		t.Fatalf("reading = %+v", r)
	}
}

func TestSwitchReadingPercentAndPhase(t *testing.T) {
	progress := &api.SwitchProgress{
		Total:          4,
		Completed:      3,
		Phase:          "signing_in",
		CurrentAccount: "bob",
	}
	r := Switch(progress, []string{"alice", "bob", "carol", "dave"})
	if r.Percent != 75 {
		t.Fatalf("percent = %v, want 75", r.Percent)
	}
	if r.Phase != "SIGNING IN" {
		t.Fatalf("phase = %q", r.Phase)
	}
	if r.Alert {
		t.Fatal("alert should be false for signing_in")
	}
	if r.ActiveFor != "Active: bob" {
		t.Fatalf("active = %q", r.ActiveFor)
	}
}

func TestSwitchReadingFailedPhaseAlerts(t *testing.T) {
	r := Switch(&api.SwitchProgress{Total: 2, Completed: 1, Phase: "failed"}, nil)
	if !r.Alert {
		t.Fatal("expected alert for failed phase")
	}
}

func TestSwitchReadingNoAccounts(t *testing.T) {
	r := Switch(nil, nil)
	if r.Phase != "NO ACCOUNTS" || r.Count != "0 accounts configured" || r.ActiveFor != "--" {
		t.Fatalf("reading = %+v", r)
	}
}

func TestStepBanner(t *testing.T) {
	r, ok := Step(&api.SwitchProgress{Step: 2, StepTotal: 4, Message: "Restarting client"})
	if !ok {
		t.Fatal("expected banner")
	}
	if r.Percent != 50 || r.Count != "Step 2/4" {
		t.Fatalf("reading = %+v", r)
	}

	r, ok = Step(&api.SwitchProgress{Phase: "complete"})
	if !ok || r.Percent != 100 || r.Count != "COMPLETE" {
		t.Fatalf("complete banner = %+v ok=%v", r, ok)
	}

	if _, ok := Step(nil); ok {
		t.Fatal("nil progress should hide the banner")
	}
}

func TestRelativeFormatting(t *testing.T) {
	cases := []struct {
		target time.Time
		want   string
	}{
		{testNow.Add(400 * time.Millisecond), "now"},
		{testNow.Add(-400 * time.Millisecond), "just now"},
		{testNow.Add(90 * time.Second), "in 1m 30s"},
		{testNow.Add(-3661 * time.Second), "1h 1m 1s ago"},
		{testNow.Add(45 * time.Second), "in 45s"},
	}
	for _, tc := range cases {
		if got := Relative(tc.target, testNow); got != tc.want {
			t.Errorf("Relative(%v) = %q, want %q", tc.target.Sub(testNow), got, tc.want)
		}
	}
}

func TestDurationFormatting(t *testing.T) {
	if got := DurationVerbose(3725); got != "1h 2m 5s" {
		t.Errorf("DurationVerbose(3725) = %q", got)
	}
	if got := DurationVerbose(65); got != "1m 5s" {
		t.Errorf("DurationVerbose(65) = %q", got)
	}
	if got := DurationVerbose(9); got != "9s" {
		t.Errorf("DurationVerbose(9) = %q", got)
	}
	if got := DurationHMS(3725); got != "01:02:05" {
		t.Errorf("DurationHMS(3725) = %q", got)
	}
	if got := DurationHMS(-5); got != "00:00:00" {
		t.Errorf("DurationHMS(-5) = %q", got)
	}
}
