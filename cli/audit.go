package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// auditEntry is one JSONL line in the command audit trail.
type auditEntry struct {
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
	Command   string    `json:"command"`
	Detail    string    `json:"detail,omitempty"`
	Err       string    `json:"err,omitempty"`
}

// auditLogger appends every mutating daemon command (run, stop, switch,
// save) to an append-only file, one JSON object per line. Best effort: a
// failed write never interrupts the command itself.
type auditLogger struct {
	path      string
	sessionID string
	mu        sync.Mutex
}

func newAuditLogger(path string) *auditLogger {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &auditLogger{
		path:      path,
		sessionID: uuid.NewString(),
	}
}

func (a *auditLogger) Record(command, detail string, cmdErr error) {
	if a == nil || command == "" {
		return
	}
	entry := auditEntry{
		SessionID: a.sessionID,
		At:        time.Now().UTC(),
		Command:   command,
		Detail:    detail,
	}
	if cmdErr != nil {
		entry.Err = cmdErr.Error()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}
