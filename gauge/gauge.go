// Package gauge derives display readings (completion percent plus a human
// label) from heterogeneous progress payloads in a status snapshot. All
// functions are pure; "now" is always passed in.
package gauge

import (
	"fmt"
	"math"
	"strings"
	"time"

	"idlectl/api"
)

// Anim hints how the rendered bar should behave.
type Anim int

const (
	AnimNone Anim = iota
	AnimLoading
	AnimWaiting
)

// Reading is the cycle gauge view model.
type Reading struct {
	Percent float64
	Label   string
	Anim    Anim
}

// FromSnapshot resolves the one authoritative progress source for this
// tick. Priority: stopped state, active wait, running cycle, countdown to
// the next run, idle.
func FromSnapshot(snap *api.StatusSnapshot, now time.Time) Reading {
	if snap == nil {
		return Reading{Label: "Idle"}
	}
	if snap.State == "stopped" {
		return Reading{Percent: 0, Label: "Stopped by user"}
	}

	if wp := snap.WaitProgress; wp != nil && wp.Total > 0 {
		remaining := wp.Total - wp.Elapsed
		if wp.Remaining != nil {
			remaining = *wp.Remaining
		}
		if remaining < 0 {
			remaining = 0
		}
		denom := wp.Total
		if denom == 0 {
			denom = wp.Elapsed + remaining
		}
		if denom == 0 {
			denom = 1
		}
		pct := clampPercent((denom - remaining) / denom * 100)
		label := fmt.Sprintf("%s (%s remaining)", wp.Label, DurationHMS(remaining))
		return Reading{Percent: pct, Label: label, Anim: AnimWaiting}
	}

	if snap.State == "running" {
		return Reading{Percent: 100, Label: "Running current cycle", Anim: AnimLoading}
	}

	if next, ok := api.ParseTime(snap.NextRunAt); ok && snap.IntervalSeconds > 0 {
		interval := float64(snap.IntervalSeconds)
		remaining := next.Sub(now).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		pct := clampPercent((interval - remaining) / interval * 100)
		hint := "soon"
		if remaining >= 1 {
			hint = DurationVerbose(remaining)
		}
		return Reading{Percent: pct, Label: "Next in " + hint}
	}

	return Reading{Label: "Idle"}
}

// SwitchReading is the account rotation view model.
type SwitchReading struct {
	Percent   float64
	Title     string
	Phase     string
	Count     string
	ActiveFor string
	Active    bool
	Alert     bool
}

// Switch projects switch_progress (or its absence) against the remembered
// account list.
func Switch(progress *api.SwitchProgress, accounts []string) SwitchReading {
	total := len(accounts)
	completed := 0
	if progress != nil {
		if progress.Total > 0 {
			total = progress.Total
		}
		completed = progress.Completed
		if completed > total {
			completed = total
		}
	}

	r := SwitchReading{Active: progress != nil}
	if total > 0 {
		r.Percent = clampPercent(math.Round(float64(completed) / float64(total) * 100))
		r.Count = fmt.Sprintf("%d/%d completed", completed, total)
	} else {
		r.Count = "0 accounts configured"
	}

	switch {
	case progress != nil && progress.Message != "":
		r.Title = progress.Message
	case total > 0:
		r.Title = "All accounts idle"
	default:
		r.Title = "No Steam profiles detected"
	}

	switch {
	case progress != nil && progress.Phase != "":
		r.Phase = PhaseLabel(progress.Phase)
		r.Alert = progress.Phase == "failed"
	case total > 0:
		r.Phase = "IDLE"
	default:
		r.Phase = "NO ACCOUNTS"
	}

	switch {
	case progress != nil && progress.CurrentAccount != "":
		r.ActiveFor = "Active: " + progress.CurrentAccount
	case len(accounts) > 0:
		r.ActiveFor = "Next: " + accounts[0]
	default:
		r.ActiveFor = "--"
	}
	return r
}

// PhaseLabel uppercases a phase token and opens its separators, so
// "signing_in" renders as "SIGNING IN".
func PhaseLabel(phase string) string {
	return strings.ToUpper(strings.ReplaceAll(phase, "_", " "))
}

// StepReading is the step banner shown during an individual switch.
type StepReading struct {
	Percent float64
	Title   string
	Detail  string
	Count   string
}

// Step derives the banner from per-switch step fields. The second return
// is false when there is nothing to show.
func Step(progress *api.SwitchProgress) (StepReading, bool) {
	if progress == nil {
		return StepReading{}, false
	}
	r := StepReading{
		Title:  progress.Message,
		Detail: progress.Detail,
	}
	if r.Title == "" {
		r.Title = "Switching Steam accounts"
	}
	if r.Detail == "" {
		r.Detail = progress.Message
	}
	if r.Detail == "" {
		r.Detail = "Working..."
	}

	if progress.StepTotal <= 0 {
		phase := strings.ToUpper(progress.Phase)
		if phase == "COMPLETE" || phase == "LAUNCHING" {
			r.Percent = 100
		}
		r.Count = phase
		return r, true
	}

	step := progress.Step
	if step < 0 {
		step = 0
	}
	if step > progress.StepTotal {
		step = progress.StepTotal
	}
	r.Percent = clampPercent(float64(step) / float64(progress.StepTotal) * 100)
	r.Count = fmt.Sprintf("Step %d/%d", step, progress.StepTotal)
	return r, true
}

// Relative renders a target instant against now: "in 2m 10s", "5s ago",
// or "now"/"just now" inside one second.
func Relative(target, now time.Time) string {
	if target.IsZero() {
		return ""
	}
	diff := target.Sub(now)
	seconds := int(math.Round(math.Abs(diff.Seconds())))
	if seconds == 0 {
		if diff >= 0 {
			return "now"
		}
		return "just now"
	}
	formatted := DurationVerbose(float64(seconds))
	if diff > 0 {
		return "in " + formatted
	}
	return formatted + " ago"
}

// RelativeISO is Relative over a wire timestamp; unparseable input yields "".
func RelativeISO(value string, now time.Time) string {
	t, ok := api.ParseTime(value)
	if !ok {
		return ""
	}
	return Relative(t, now)
}

// DurationVerbose renders seconds as "Xh Ym Zs", omitting leading zero
// units. Seconds are always shown.
func DurationVerbose(seconds float64) string {
	total := int(math.Floor(math.Max(0, seconds)))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", secs))
	return strings.Join(parts, " ")
}

// DurationHMS renders seconds as zero-padded H:MM:SS. Used only inside the
// wait label; everything else uses the verbose form.
func DurationHMS(seconds float64) string {
	total := int(math.Floor(math.Max(0, seconds)))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatClock renders a wire timestamp for the KPI tiles, "--" when absent.
func FormatClock(value string) string {
	t, ok := api.ParseTime(value)
	if !ok {
		return "--"
	}
	return t.Local().Format("Jan 2 15:04:05")
}

func clampPercent(pct float64) float64 {
	return math.Min(100, math.Max(0, pct))
}
