// internal/events/bus_test.go
package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
)

func TestBus_PublishFansOut(t *testing.T) {
	bus := NewBus(logger.NewTestLogger(t))
	first := bus.Subscribe(4)
	second := bus.Subscribe(4)

	bus.Publish(Event{Kind: KindWaitlistMatched, UserID: "user-1"})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case ev := <-ch:
			assert.Equal(t, KindWaitlistMatched, ev.Kind)
			assert.Equal(t, "user-1", ev.UserID)
			assert.False(t, ev.OccurredAt.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestBus_PublishNeverBlocksOnFullBuffer(t *testing.T) {
	bus := NewBus(logger.NewTestLogger(t))
	slow := bus.Subscribe(1)
	healthy := bus.Subscribe(4)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(Event{Kind: KindNotificationCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	// The slow subscriber kept its one buffered event; overflow was dropped.
	assert.Len(t, slow, 1)
	assert.Len(t, healthy, 4)
}

func TestBus_PublishWithNoSubscribers(t *testing.T) {
	bus := NewBus(logger.NewTestLogger(t))

	require.NotPanics(t, func() {
		bus.Publish(Event{Kind: KindNotificationSent})
	})
}

func TestBus_PreservesExplicitOccurredAt(t *testing.T) {
	bus := NewBus(logger.NewTestLogger(t))
	ch := bus.Subscribe(1)
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	bus.Publish(Event{Kind: KindNotificationInApp, OccurredAt: at})

	ev := <-ch
	assert.Equal(t, at, ev.OccurredAt)
}
