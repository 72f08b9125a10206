package checkin

import (
	"strings"
	"sync"
	"time"

	"github.com/amirphl/carrier-pos/utils"
)

// Registry keeps one Searcher per terminal so keypads in the same store do not cancel each other
type Registry struct {
	lookup LookupFunc
	delay  time.Duration

	mu        sync.Mutex
	searchers map[string]*Searcher
}

func NewRegistry(lookup LookupFunc, delay time.Duration) *Registry {
	return &Registry{
		lookup:    lookup,
		delay:     delay,
		searchers: make(map[string]*Searcher),
	}
}

// For returns the searcher of terminalID, creating it on first use
func (r *Registry) For(terminalID string) *Searcher {
	terminalID = strings.TrimSpace(terminalID)
	if terminalID == "" {
		terminalID = utils.DefaultTerminalID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.searchers[terminalID]
	if !ok {
		s = NewSearcher(r.lookup, r.delay)
		r.searchers[terminalID] = s
	}
	return s
}

// ResetAll cancels the pending lookup of every terminal
func (r *Registry) ResetAll() {
	r.mu.Lock()
	searchers := make([]*Searcher, 0, len(r.searchers))
	for _, s := range r.searchers {
		searchers = append(searchers, s)
	}
	r.mu.Unlock()

	for _, s := range searchers {
		s.Reset()
	}
}
