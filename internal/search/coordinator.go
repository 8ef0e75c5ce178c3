package search

import (
	"sync"

	"flow-ai/chatcore/internal/model"
)

// Coordinator owns the web search state of the current exchange.
//
// The user toggle (SetEnabled) and the active stream session are the only
// writers; the rendering boundary reads snapshots. Only one session is active
// at a time, so writes are last-write-wins. The lock only protects readers that
// run on other goroutines (HTTP handlers).
type Coordinator struct {
	mu       sync.RWMutex
	state    model.SearchState
	watchers map[int]func(model.SearchState)
	nextID   int
}

// NewCoordinator creates a Coordinator with the given toggle value.
func NewCoordinator(enabled bool) *Coordinator {
	return &Coordinator{
		state:    model.SearchState{Enabled: enabled},
		watchers: make(map[int]func(model.SearchState)),
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() model.SearchState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Enabled reports the user toggle.
func (c *Coordinator) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Enabled
}

// Watch registers fn to be called with the new state after every write that
// changes it. fn runs on the writer's goroutine and must not block.
func (c *Coordinator) Watch(fn func(model.SearchState)) (unwatch func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// SetEnabled sets the user toggle. It does not touch an exchange in flight.
func (c *Coordinator) SetEnabled(enabled bool) {
	c.update(func(s *model.SearchState) { s.Enabled = enabled })
}

// SetSearching sets the in-flight flag.
func (c *Coordinator) SetSearching(searching bool) {
	c.update(func(s *model.SearchState) { s.IsSearching = searching })
}

// SetResults stores the captured results text.
func (c *Coordinator) SetResults(results string) {
	c.update(func(s *model.SearchState) { s.Results = results })
}

// BeginExchange prepares the state for a new exchange and reports whether web
// search is enabled for it. When enabled, results are cleared and the search
// is marked in flight; otherwise the state is left untouched.
func (c *Coordinator) BeginExchange() bool {
	var enabled bool
	c.update(func(s *model.SearchState) {
		enabled = s.Enabled
		if enabled {
			s.Results = ""
			s.IsSearching = true
		}
	})
	return enabled
}

// Capture stores results and finalizes the search in one step, so results
// are never visible while the search still reads as in flight.
func (c *Coordinator) Capture(results string) {
	c.update(func(s *model.SearchState) {
		s.Results = results
		s.IsSearching = false
	})
}

// Finish clears the in-flight flag. It reports whether the flag was set.
func (c *Coordinator) Finish() bool {
	var cleared bool
	c.update(func(s *model.SearchState) {
		cleared = s.IsSearching
		s.IsSearching = false
	})
	return cleared
}

func (c *Coordinator) update(fn func(*model.SearchState)) {
	c.mu.Lock()
	old := c.state
	fn(&c.state)
	cur := c.state
	var watchers []func(model.SearchState)
	if cur != old {
		watchers = make([]func(model.SearchState), 0, len(c.watchers))
		for _, w := range c.watchers {
			watchers = append(watchers, w)
		}
	}
	c.mu.Unlock()

	for _, w := range watchers {
		w(cur)
	}
}
