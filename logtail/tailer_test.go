package logtail

import (
	"fmt"
	"testing"

	"idlectl/api"
)

func batch(start float64, n int) []api.LogEvent {
	events := make([]api.LogEvent, n)
	for i := range events {
		events[i] = api.LogEvent{
			Timestamp: start + float64(i),
			Level:     "info",
			Message:   fmt.Sprintf("event %v", start+float64(i)),
		}
	}
	return events
}

func TestApplyAdvancesCursor(t *testing.T) {
	var tl Tailer
	tl.Apply(batch(100, 3), 102)
	if tl.Cursor() != 102 {
		t.Fatalf("cursor = %v, want 102", tl.Cursor())
	}
	tl.Apply(batch(103, 2), 104)
	if tl.Cursor() != 104 {
		t.Fatalf("cursor = %v, want 104", tl.Cursor())
	}
	if tl.Len() != 5 {
		t.Fatalf("len = %d, want 5", tl.Len())
	}
}

func TestCursorNeverRegresses(t *testing.T) {
	var tl Tailer
	tl.Apply(batch(200, 1), 200)
	tl.Apply(nil, 150)
	if tl.Cursor() != 200 {
		t.Fatalf("cursor regressed to %v", tl.Cursor())
	}
	// A batch whose events run ahead of its latest field still advances.
	tl.Apply(batch(300, 2), 0)
	if tl.Cursor() != 301 {
		t.Fatalf("cursor = %v, want 301", tl.Cursor())
	}
}

func TestBufferCappedAtCapacity(t *testing.T) {
	var tl Tailer
	for i := 0; i < 5; i++ {
		tl.Apply(batch(float64(i*100), 90), float64(i*100+89))
		if tl.Len() > Capacity {
			t.Fatalf("buffer overflowed: %d", tl.Len())
		}
	}
	if tl.Len() != Capacity {
		t.Fatalf("len = %d, want %d", tl.Len(), Capacity)
	}
	// 450 pushed, 150 evicted: the first retained is the 61st event of the
	// second batch.
	first := tl.Events()[0]
	if first.Timestamp != 160 {
		t.Fatalf("first retained timestamp = %v, want 160", first.Timestamp)
	}
	last := tl.Events()[tl.Len()-1]
	if last.Timestamp != 489 {
		t.Fatalf("last retained timestamp = %v, want 489", last.Timestamp)
	}
}

func TestAppendKeepsCursor(t *testing.T) {
	var tl Tailer
	tl.Apply(batch(100, 1), 100)
	tl.Append(api.LogEvent{Timestamp: 99999, Level: "error", Message: "local failure note"})
	if tl.Cursor() != 100 {
		t.Fatalf("local append moved cursor to %v", tl.Cursor())
	}
	if tl.Len() != 2 {
		t.Fatalf("len = %d, want 2", tl.Len())
	}
}

func TestClearKeepsCursor(t *testing.T) {
	var tl Tailer
	tl.Apply(batch(100, 10), 109)
	tl.Clear()
	if tl.Len() != 0 {
		t.Fatalf("len = %d after clear", tl.Len())
	}
	if tl.Cursor() != 109 {
		t.Fatalf("cursor = %v after clear, want 109", tl.Cursor())
	}
}
