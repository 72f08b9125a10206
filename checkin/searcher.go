// Package checkin implements the debounced customer-name lookup behind the check-in keypad
package checkin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amirphl/carrier-pos/utils"
)

// ErrSuperseded is returned to a lookup that a newer lookup or a reset replaced
var ErrSuperseded = errors.New("lookup superseded by a newer request")

// LookupFunc resolves a 10-digit MDN to the owner's name; nil means no customer
type LookupFunc func(ctx context.Context, mdn string) (*string, error)

// Searcher runs at most one lookup at a time. Starting a lookup cancels the pending
// one, so only the latest request can ever produce a result.
type Searcher struct {
	lookup LookupFunc
	delay  time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSearcher creates a searcher that waits delay before calling lookup
func NewSearcher(lookup LookupFunc, delay time.Duration) *Searcher {
	return &Searcher{lookup: lookup, delay: delay}
}

// Lookup cancels any pending request, waits out the debounce delay and resolves mdn.
// Input that is not 10 digits yields (nil, nil) without touching the store.
func (s *Searcher) Lookup(ctx context.Context, mdn string) (*string, error) {
	reqCtx, seq := s.begin(ctx)
	defer s.finish(seq)

	mdn = utils.DigitsOnly(mdn)
	if !utils.IsDigits(mdn, utils.MDNLength) {
		return nil, nil
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-reqCtx.Done():
			timer.Stop()
			return nil, s.cancelled(ctx)
		case <-timer.C:
		}
	}

	name, err := s.lookup(reqCtx, mdn)
	if s.superseded(seq) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	return name, nil
}

// Reset cancels the pending lookup, if any
func (s *Searcher) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) begin(ctx context.Context) (context.Context, uint64) {
	reqCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	s.cancel = cancel
	return reqCtx, s.seq
}

func (s *Searcher) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) superseded(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != seq
}

// cancelled distinguishes the caller going away from a newer request taking over
func (s *Searcher) cancelled(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return ErrSuperseded
}
