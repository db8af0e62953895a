// Package search owns the catalog autocomplete lifecycle: debounced query
// scheduling, at-most-one in-flight request, and stale-response discard.
//
// The controller is a pure state machine keyed by a monotonically
// increasing generation. Every keystroke bumps the generation; debounce
// timers and HTTP responses carry the generation they were started under
// and self-identify as stale when it no longer matches. The caller (the
// TUI) supplies the actual timers and network calls.
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"idlectl/api"
)

const (
	// MinTerm is the shortest query worth sending.
	MinTerm = 2
	// MaxResults caps how many hits are kept from a response.
	MaxResults = 10
	// Debounce is the trailing-edge quiet window after a keystroke.
	Debounce = 220 * time.Millisecond
)

type Controller struct {
	term    string
	gen     uint64
	results []api.SearchResult
	active  int
	visible bool
	loading bool
	failed  bool
	cancel  context.CancelFunc
}

func NewController() *Controller {
	return &Controller{active: -1}
}

// SetTerm records a new input value. When the trimmed term is long enough
// it bumps the generation and returns it with fire=true, telling the
// caller to schedule a debounce timer for that generation. Short terms
// cancel everything and hide the panel.
func (c *Controller) SetTerm(value string) (gen uint64, fire bool) {
	c.term = strings.TrimSpace(value)
	if len([]rune(c.term)) < MinTerm {
		c.Hide()
		return 0, false
	}
	c.gen++
	return c.gen, true
}

// DebounceDue reports whether a debounce timer that fired for gen should
// still launch its query. A newer keystroke makes older timers no-ops.
func (c *Controller) DebounceDue(gen uint64) bool {
	return gen == c.gen && len([]rune(c.term)) >= MinTerm
}

// StartQuery supersedes any in-flight request and opens the context for
// the new one. At most one request is ever outstanding.
func (c *Controller) StartQuery(parent context.Context) (context.Context, uint64) {
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.loading = true
	c.visible = true
	return ctx, c.gen
}

// Apply installs a response. Stale generations are discarded and the
// return is false; the caller must not render them.
func (c *Controller) Apply(gen uint64, results []api.SearchResult) bool {
	if gen != c.gen {
		return false
	}
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	c.results = results
	c.loading = false
	c.failed = false
	c.visible = true
	c.cancel = nil
	if len(results) > 0 {
		c.active = 0
	} else {
		c.active = -1
	}
	return true
}

// Fail records a query failure. Cancellation (a superseded request) is
// swallowed silently; genuine failures mark the panel so it can show an
// unavailable row. Returns false when nothing should change on screen.
func (c *Controller) Fail(gen uint64, err error) bool {
	if gen != c.gen || errors.Is(err, context.Canceled) {
		return false
	}
	c.results = nil
	c.active = -1
	c.loading = false
	c.failed = true
	c.cancel = nil
	return true
}

// Cycle moves the active row by step, wrapping in both directions. Only
// meaningful while results are visible.
func (c *Controller) Cycle(step int) {
	total := len(c.results)
	if total == 0 {
		return
	}
	current := c.active
	if current < 0 {
		current = 0
	}
	c.active = ((current+step)%total + total) % total
}

// Select resolves the result at index, or the active row when index is
// negative.
func (c *Controller) Select(index int) (api.SearchResult, bool) {
	if index < 0 {
		index = c.active
	}
	if index < 0 || index >= len(c.results) {
		return api.SearchResult{}, false
	}
	return c.results[index], true
}

// Hide dismisses the panel: cancels in-flight work, clears results, and
// invalidates any pending debounce by bumping the generation.
func (c *Controller) Hide() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.results = nil
	c.active = -1
	c.visible = false
	c.loading = false
	c.failed = false
}

func (c *Controller) Term() string                { return c.term }
func (c *Controller) Gen() uint64                 { return c.gen }
func (c *Controller) Results() []api.SearchResult { return c.results }
func (c *Controller) Active() int                 { return c.active }
func (c *Controller) Loading() bool               { return c.loading }
func (c *Controller) Failed() bool                { return c.failed }

// Visible reports whether the suggestion panel should render.
func (c *Controller) Visible() bool {
	return c.visible && (c.loading || c.failed || len(c.results) > 0)
}
