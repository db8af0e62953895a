// Package logtail accumulates the daemon's append-only event stream into
// a bounded buffer behind a monotonic cursor.
package logtail

import "idlectl/api"

// Capacity is the retention cap; the oldest events are evicted first.
const Capacity = 300

// Tailer tracks the newest server timestamp seen and keeps the last
// Capacity events. The server is trusted for ordering within a batch.
type Tailer struct {
	cursor float64
	events []api.LogEvent
}

// Cursor is the high-water timestamp to pass as ?since= on the next poll.
func (t *Tailer) Cursor() float64 { return t.cursor }

// Apply appends a poll response in order and advances the cursor to the
// newest timestamp seen. The cursor never regresses, so a late-arriving
// stale batch cannot rewind the tail.
func (t *Tailer) Apply(events []api.LogEvent, latest float64) {
	for _, ev := range events {
		t.push(ev)
		if ev.Timestamp > t.cursor {
			t.cursor = ev.Timestamp
		}
	}
	if latest > t.cursor {
		t.cursor = latest
	}
}

// Append adds a client-side entry (command feedback) without touching the
// server cursor.
func (t *Tailer) Append(ev api.LogEvent) {
	t.push(ev)
}

func (t *Tailer) push(ev api.LogEvent) {
	t.events = append(t.events, ev)
	if len(t.events) > Capacity {
		t.events = t.events[len(t.events)-Capacity:]
	}
}

// Events exposes the retained buffer, oldest first. Callers must not
// mutate it.
func (t *Tailer) Events() []api.LogEvent { return t.events }

func (t *Tailer) Len() int { return len(t.events) }

// Clear empties the buffer but keeps the cursor, so cleared history is not
// refetched.
func (t *Tailer) Clear() {
	t.events = t.events[:0]
}
