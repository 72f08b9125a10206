// Package events carries check-in and reset notifications between the HTTP layer and the service queue
package events

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is a message published on the Bus
type Event interface {
	EventType() string
}

const (
	TypeCheckIn  = "check_in"
	TypeReset    = "reset"
	TypeResolved = "resolved"
)

// CheckIn announces that the customer owning MDN wants service. ID becomes the
// queue entry's ID on every node that resolves the customer.
type CheckIn struct {
	ID     uuid.UUID `json:"id"`
	MDN    string    `json:"mdn"`
	Reason string    `json:"reason"`
}

func (CheckIn) EventType() string { return TypeCheckIn }

// Reset asks the check-in surfaces to clear their state
type Reset struct{}

func (Reset) EventType() string { return TypeReset }

// Resolved announces that the queue entry ID was assisted or removed
type Resolved struct {
	ID uuid.UUID `json:"id"`
}

func (Resolved) EventType() string { return TypeResolved }

// Forwarder receives every event published locally
type Forwarder func(ctx context.Context, event Event)

// SubscribeOption configures a Subscription
type SubscribeOption func(*Subscription)

// Lossless makes delivery of the given event types wait for buffer space instead
// of dropping. The wait ends when the publisher's context is done or the
// subscription is closed.
func Lossless(types ...string) SubscribeOption {
	return func(s *Subscription) {
		for _, t := range types {
			s.lossless[t] = true
		}
	}
}

// Subscription is one consumer of the bus
type Subscription struct {
	bus      *Bus
	ch       chan Event
	done     chan struct{}
	lossless map[string]bool

	// mu guards closing ch against in-flight sends
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// C returns the delivery channel. It is closed on Unsubscribe or Bus.Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Unsubscribe detaches the subscription and closes its channel
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s)
}

func (s *Subscription) send(ctx context.Context, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- event:
		return
	default:
	}

	if !s.lossless[event.EventType()] {
		log.Printf("events: subscriber buffer full, dropped %s event", event.EventType())
		return
	}
	select {
	case s.ch <- event:
	case <-s.done:
	case <-ctx.Done():
		log.Printf("events: gave up delivering %s event: %v", event.EventType(), ctx.Err())
	}
}

func (s *Subscription) shutdown() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// Bus is an in-process publish/subscribe hub. A subscriber whose buffer is full
// misses the event unless it subscribed to that type with Lossless.
type Bus struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	forwarders []Forwarder
	closed     bool
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a consumer with the given channel buffer
func (b *Bus) Subscribe(buffer int, opts ...SubscribeOption) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{
		bus:      b,
		ch:       make(chan Event, buffer),
		done:     make(chan struct{}),
		lossless: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(sub)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.shutdown()
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// OnPublish registers f to see every locally published event
func (b *Bus) OnPublish(f Forwarder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarders = append(b.forwarders, f)
}

// Publish delivers event to local subscribers and hands it to the forwarders
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.Deliver(ctx, event)

	b.mu.RLock()
	forwarders := append([]Forwarder(nil), b.forwarders...)
	b.mu.RUnlock()

	for _, f := range forwarders {
		f(ctx, event)
	}
}

// Deliver hands event to local subscribers only
func (b *Bus) Deliver(ctx context.Context, event Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.send(ctx, event)
	}
}

// Close detaches and closes every subscription
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.shutdown()
		delete(b.subs, sub)
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	sub.shutdown()
}
