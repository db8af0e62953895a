package cli

// editLock decides when polled state may overwrite the settings form.
// Two independent signals hold the lock: a field currently having input
// focus, and unsaved manual edits. Either one is enough; a successful
// save clears the manual flag, and moving focus away releases the focus
// side. Read-only telemetry never consults the lock.
type editLock struct {
	focusDepth int
	manualEdit bool
}

func (l *editLock) beginFocus() {
	l.focusDepth++
}

func (l *editLock) endFocus() {
	if l.focusDepth > 0 {
		l.focusDepth--
	}
}

func (l *editLock) markManual() {
	l.manualEdit = true
}

func (l *editLock) clearManual() {
	l.manualEdit = false
}

func (l *editLock) editing() bool {
	return l.manualEdit || l.focusDepth > 0
}
