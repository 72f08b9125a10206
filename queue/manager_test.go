package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirphl/carrier-pos/events"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/queue"
	"github.com/amirphl/carrier-pos/repository"
	testingutil "github.com/amirphl/carrier-pos/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	customers map[string]models.Customer
	err       error
}

func (f fakeFinder) ByMDN(_ context.Context, mdn string) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.customers[mdn]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func newFinder() fakeFinder {
	return fakeFinder{customers: map[string]models.Customer{
		"5551234567": {AccountNumber: 1001, Name: "Acme"},
		"5559876543": {AccountNumber: 1002, Name: "Globex"},
	}}
}

func TestManagerOrdering(t *testing.T) {
	m := queue.NewManager(newFinder())

	a := m.Add(models.Customer{AccountNumber: 1, Name: "A"}, "Upgrade")
	b := m.Add(models.Customer{AccountNumber: 2, Name: "B"}, "Pay a Bill")
	c := m.Add(models.Customer{AccountNumber: 3, Name: "C"}, "Accessory")
	require.Equal(t, 3, m.Len())
	assert.NotEqual(t, a.ID, b.ID)

	t.Run("RemoveMiddlePreservesOrder", func(t *testing.T) {
		require.True(t, m.Remove(b.ID))
		items := m.Items()
		require.Len(t, items, 2)
		assert.Equal(t, a.ID, items[0].ID)
		assert.Equal(t, c.ID, items[1].ID)
	})

	t.Run("RemoveUnknown", func(t *testing.T) {
		assert.False(t, m.Remove(uuid.New()))
		assert.False(t, m.Remove(b.ID))
		assert.Equal(t, 2, m.Len())
	})

	t.Run("AssistReturnsSnapshot", func(t *testing.T) {
		item, ok := m.Assist(a.ID)
		require.True(t, ok)
		assert.Equal(t, "A", item.Customer.Name)
		assert.Equal(t, "Upgrade", item.Reason)

		_, ok = m.Get(a.ID)
		assert.False(t, ok)
		_, ok = m.Assist(a.ID)
		assert.False(t, ok)
	})

	t.Run("ItemsIsACopy", func(t *testing.T) {
		items := m.Items()
		items[0].Reason = "changed"
		got, ok := m.Get(c.ID)
		require.True(t, ok)
		assert.Equal(t, "Accessory", got.Reason)
	})
}

func TestManagerCheckIn(t *testing.T) {
	ctx := context.Background()
	added := time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC)

	t.Run("KnownMDNIsEnqueued", func(t *testing.T) {
		m := queue.NewManager(newFinder(), queue.WithClock(func() time.Time { return added }))
		m.HandleEvent(ctx, events.CheckIn{MDN: "5551234567", Reason: "Upgrade"})

		items := m.Items()
		require.Len(t, items, 1)
		assert.Equal(t, int64(1001), items[0].Customer.AccountNumber)
		assert.Equal(t, "Upgrade", items[0].Reason)
		assert.Equal(t, added, items[0].AddedAt)
	})

	t.Run("UnknownMDNLeavesLengthUnchanged", func(t *testing.T) {
		m := queue.NewManager(newFinder())
		m.HandleEvent(ctx, events.CheckIn{MDN: "5551234567", Reason: "Upgrade"})
		require.Equal(t, 1, m.Len())

		m.HandleEvent(ctx, events.CheckIn{MDN: "5550000000", Reason: "Upgrade"})
		assert.Equal(t, 1, m.Len())
	})

	t.Run("LookupFailureIsDropped", func(t *testing.T) {
		m := queue.NewManager(fakeFinder{err: errors.New("disk I/O error")})
		m.HandleEvent(ctx, events.CheckIn{MDN: "5551234567", Reason: "Upgrade"})
		assert.Zero(t, m.Len())
	})

	t.Run("ResetRunsHooksOnly", func(t *testing.T) {
		m := queue.NewManager(newFinder())
		m.Add(models.Customer{Name: "A"}, "Upgrade")

		var calls atomic.Int32
		m.OnReset(func() { calls.Add(1) })
		m.OnReset(func() { calls.Add(1) })

		m.HandleEvent(ctx, events.Reset{})
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 1, m.Len())
	})
}

func TestManagerConsumesBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	defer bus.Close()

	m := queue.NewManager(newFinder())
	var resets atomic.Int32
	m.OnReset(func() { resets.Add(1) })

	sub := bus.Subscribe(8)
	done := make(chan struct{})
	go func() {
		m.Consume(ctx, sub)
		close(done)
	}()

	bus.Publish(ctx, events.CheckIn{MDN: "5551234567", Reason: "Upgrade"})
	bus.Publish(ctx, events.Reset{})
	bus.Publish(ctx, events.CheckIn{MDN: "5559876543", Reason: "Pay a Bill"})

	require.Eventually(t, func() bool { return m.Len() == 2 && resets.Load() == 1 }, time.Second, 5*time.Millisecond)
	items := m.Items()
	assert.Equal(t, "Acme", items[0].Customer.Name)
	assert.Equal(t, "Globex", items[1].Customer.Name)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestManagerWithStore(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		_, err := testingutil.NewTestFixtures(testDB).CreateScenario()
		require.NoError(t, err)

		customers := repository.NewCustomerRepository(testDB.Store)
		m := queue.NewManager(customers)
		ctx := testingutil.CreateTestContext()

		m.HandleEvent(ctx, events.CheckIn{MDN: testingutil.ScenarioMDN, Reason: "Billing Question"})
		m.HandleEvent(ctx, events.CheckIn{MDN: "5550000000", Reason: "Upgrade"})

		items := m.Items()
		require.Len(t, items, 1)
		assert.Equal(t, testingutil.ScenarioName, items[0].Customer.Name)
		assert.Equal(t, testingutil.ScenarioAccount, items[0].Customer.AccountNumber)
		return nil
	})
	require.NoError(t, err)
}

type slowFinder struct {
	fakeFinder
	delay time.Duration
}

func (f slowFinder) ByMDN(ctx context.Context, mdn string) (*models.Customer, error) {
	time.Sleep(f.delay)
	return f.fakeFinder.ByMDN(ctx, mdn)
}

func TestManagerKeepsBurstBeyondBuffer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := events.NewBus()
	defer bus.Close()

	m := queue.NewManager(slowFinder{fakeFinder: newFinder(), delay: 2 * time.Millisecond})
	sub := m.Subscribe(bus, 4)
	done := make(chan struct{})
	go func() {
		m.Consume(ctx, sub)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	const burst = 20
	for i := 0; i < burst; i++ {
		bus.Publish(ctx, events.CheckIn{ID: uuid.New(), MDN: "5551234567", Reason: "Upgrade"})
		bus.Publish(ctx, events.Reset{})
	}

	require.Eventually(t, func() bool { return m.Len() == burst }, 2*time.Second, 5*time.Millisecond)
}

func TestManagerSharedIDs(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("CheckInUsesEventID", func(t *testing.T) {
		m := queue.NewManager(newFinder())
		m.HandleEvent(ctx, events.CheckIn{ID: id, MDN: "5551234567", Reason: "Upgrade"})
		m.HandleEvent(ctx, events.CheckIn{ID: id, MDN: "5551234567", Reason: "Upgrade"})

		items := m.Items()
		require.Len(t, items, 1)
		assert.Equal(t, id, items[0].ID)
	})

	t.Run("ResolvedRemovesEntry", func(t *testing.T) {
		m := queue.NewManager(newFinder())
		m.HandleEvent(ctx, events.CheckIn{ID: id, MDN: "5551234567", Reason: "Upgrade"})
		other := m.Add(models.Customer{AccountNumber: 1002, Name: "Globex"}, "Pay a Bill")

		m.HandleEvent(ctx, events.Resolved{ID: id})
		m.HandleEvent(ctx, events.Resolved{ID: uuid.New()})

		items := m.Items()
		require.Len(t, items, 1)
		assert.Equal(t, other.ID, items[0].ID)
	})
}
