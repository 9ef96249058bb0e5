package messaging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestEventBusDeliversToSubscribers(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var got []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventAgreementCreated, func(e shared.Event) error {
		got = append(got, e.EventType())
		return nil
	}))

	event := shared.NewBaseEvent(shared.EventAgreementCreated, "agr-1")
	require.NoError(t, bus.Publish(event))

	require.Len(t, got, 1)
	assert.Equal(t, shared.EventAgreementCreated, got[0])
}

func TestEventBusIgnoresUnsubscribedTypes(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	called := false
	require.NoError(t, bus.Subscribe(shared.EventAgreementSigned, func(shared.Event) error {
		called = true
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventAgreementCreated, "agr-1")))
	assert.False(t, called)
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	count := 0
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventAgreementCreated, "a")))
	require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventAgreementSigned, "a")))
	assert.Equal(t, 2, count)
}

func TestEventBusAsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())

	var mu sync.Mutex
	count := 0
	require.NoError(t, bus.Subscribe(shared.EventAgreementSigned, func(shared.Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventAgreementSigned, "agr-1")))
	}

	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, count)
}

func TestEventBusCloseDrainsBackloggedWorkers(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.WorkerPoolSize = 1
	bus := NewInMemoryEventBus(cfg)

	var mu sync.Mutex
	count := 0
	require.NoError(t, bus.Subscribe(shared.EventAgreementSigned, func(shared.Event) error {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))

	// With one worker slot, most of these queue behind the slow handler
	// and are still waiting for a slot when Close is called.
	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventAgreementSigned, "agr-1")))
	}

	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, count)
}

func TestEventBusClosedRejectsOperations(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewBaseEvent(shared.EventAgreementCreated, "a")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventAgreementCreated, func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestEventBusMetricsSnapshot(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventAgreementCreated, func(shared.Event) error {
		time.Sleep(time.Millisecond)
		return nil
	}))
	require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventAgreementCreated, "a")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.TotalHandlerExecs)
	assert.Equal(t, 1.0, snap.HandlerSuccessRate)
}
