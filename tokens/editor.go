package tokens

import "errors"

// Add failures, surfaced as hint text rather than hard errors.
var (
	ErrNoID      = errors.New("no app id found in entry")
	ErrDuplicate = errors.New("app id already added")
)

// Editor holds the ordered game id list. Order is first-insertion; removal
// is by explicit id only.
type Editor struct {
	ids   []string
	index map[string]struct{}
}

func NewEditor(ids []string) *Editor {
	e := &Editor{index: make(map[string]struct{})}
	e.Reset(ids)
	return e
}

// Reset replaces the list wholesale, normalizing away blanks and
// duplicates while preserving first occurrence order. Used when a polled
// config overwrites the list outside an active edit.
func (e *Editor) Reset(ids []string) {
	e.ids = e.ids[:0]
	e.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, seen := e.index[id]; seen {
			continue
		}
		e.index[id] = struct{}{}
		e.ids = append(e.ids, id)
	}
}

// Add extracts an id from raw text and appends it. Returns the id on
// success, ErrNoID or ErrDuplicate otherwise.
func (e *Editor) Add(raw string) (string, error) {
	id, ok := Extract(raw)
	if !ok {
		return "", ErrNoID
	}
	if _, dup := e.index[id]; dup {
		return id, ErrDuplicate
	}
	e.index[id] = struct{}{}
	e.ids = append(e.ids, id)
	return id, nil
}

// AddAll runs Add over every chunk of pasted text independently. Partial
// success is expected; the returns are the ids added and the count of
// chunks that failed.
func (e *Editor) AddAll(text string) (added []string, failed int) {
	for _, chunk := range SplitChunks(text) {
		id, err := e.Add(chunk)
		if err != nil {
			failed++
			continue
		}
		added = append(added, id)
	}
	return added, failed
}

// Remove deletes by value. No-op when absent.
func (e *Editor) Remove(id string) bool {
	if _, ok := e.index[id]; !ok {
		return false
	}
	delete(e.index, id)
	for i, existing := range e.ids {
		if existing == id {
			e.ids = append(e.ids[:i], e.ids[i+1:]...)
			break
		}
	}
	return true
}

func (e *Editor) Contains(id string) bool {
	_, ok := e.index[id]
	return ok
}

// IDs returns a copy of the ordered list.
func (e *Editor) IDs() []string {
	return append([]string(nil), e.ids...)
}

func (e *Editor) Len() int { return len(e.ids) }
