// Package queue keeps the in-memory list of customers waiting for service
package queue

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/amirphl/carrier-pos/events"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/google/uuid"
)

// CustomerFinder resolves a checked-in MDN to its customer; (nil, nil) means no customer
type CustomerFinder interface {
	ByMDN(ctx context.Context, mdn string) (*models.Customer, error)
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces the time source used for AddedAt
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager is the service queue. Entries keep insertion order; removal is by ID.
type Manager struct {
	mu         sync.RWMutex
	items      []models.QueueItem
	customers  CustomerFinder
	resetHooks []func()
	now        func() time.Time
}

// NewManager creates an empty queue resolving check-ins through customers
func NewManager(customers CustomerFinder, opts ...Option) *Manager {
	m := &Manager{
		customers: customers,
		now:       utils.UTCNow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add appends a new entry for customer
func (m *Manager) Add(customer models.Customer, reason string) models.QueueItem {
	item, _ := m.insert(uuid.New(), customer, reason)
	return item
}

// insert appends an entry with id unless one already exists
func (m *Manager) insert(id uuid.UUID, customer models.Customer, reason string) (models.QueueItem, bool) {
	item := models.QueueItem{
		ID:       id,
		Customer: customer,
		Reason:   reason,
		AddedAt:  m.now(),
	}

	m.mu.Lock()
	if slices.ContainsFunc(m.items, func(existing models.QueueItem) bool { return existing.ID == id }) {
		m.mu.Unlock()
		return models.QueueItem{}, false
	}
	m.items = append(m.items, item)
	n := len(m.items)
	m.mu.Unlock()

	queueLength.Set(float64(n))
	queueEnqueuedTotal.Inc()
	return item, true
}

// Items returns a copy of the queue in insertion order
func (m *Manager) Items() []models.QueueItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items)
}

func (m *Manager) Get(id uuid.UUID) (models.QueueItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.QueueItem{}, false
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Remove drops the entry with id. It reports false when no such entry exists.
func (m *Manager) Remove(id uuid.UUID) bool {
	_, ok := m.take(id, outcomeRemove)
	return ok
}

// Assist resolves the entry with id by serving it and returns its snapshot
func (m *Manager) Assist(id uuid.UUID) (models.QueueItem, bool) {
	return m.take(id, outcomeAssist)
}

func (m *Manager) take(id uuid.UUID, outcome string) (models.QueueItem, bool) {
	m.mu.Lock()
	idx := slices.IndexFunc(m.items, func(item models.QueueItem) bool { return item.ID == id })
	if idx < 0 {
		m.mu.Unlock()
		return models.QueueItem{}, false
	}
	item := m.items[idx]
	m.items = slices.Delete(m.items, idx, idx+1)
	n := len(m.items)
	m.mu.Unlock()

	queueLength.Set(float64(n))
	queueResolvedTotal.WithLabelValues(outcome).Inc()
	return item, true
}

// OnReset registers f to run whenever a Reset event arrives
func (m *Manager) OnReset(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetHooks = append(m.resetHooks, f)
}

// Subscribe attaches the queue to bus. Check-ins and resolutions are never
// dropped for a full buffer; the publisher waits instead.
func (m *Manager) Subscribe(bus *events.Bus, buffer int) *events.Subscription {
	return bus.Subscribe(buffer, events.Lossless(events.TypeCheckIn, events.TypeResolved))
}

// Run consumes bus events until ctx is done
func (m *Manager) Run(ctx context.Context, bus *events.Bus, buffer int) {
	sub := m.Subscribe(bus, buffer)
	defer sub.Unsubscribe()
	m.Consume(ctx, sub)
}

// Consume handles events from sub until ctx is done or sub is closed
func (m *Manager) Consume(ctx context.Context, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C():
			if !ok {
				return
			}
			m.HandleEvent(ctx, event)
		}
	}
}

// HandleEvent applies a single bus event
func (m *Manager) HandleEvent(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.CheckIn:
		m.checkIn(ctx, e)
	case events.Resolved:
		m.take(e.ID, outcomeRemote)
	case events.Reset:
		m.mu.RLock()
		hooks := slices.Clone(m.resetHooks)
		m.mu.RUnlock()
		for _, hook := range hooks {
			hook()
		}
	}
}

func (m *Manager) checkIn(ctx context.Context, e events.CheckIn) {
	customer, err := m.customers.ByMDN(ctx, e.MDN)
	if err != nil {
		queueDroppedCheckIns.Inc()
		log.Printf("queue: failed to resolve check-in for %s: %v", e.MDN, err)
		return
	}
	if customer == nil {
		queueDroppedCheckIns.Inc()
		log.Printf("queue: no customer found for %s, check-in dropped", e.MDN)
		return
	}

	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	item, ok := m.insert(id, *customer, e.Reason)
	if !ok {
		return
	}
	log.Printf("queue: %s checked in (account %d) for %q", customer.Name, customer.AccountNumber, item.Reason)
}
