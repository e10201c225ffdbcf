// internal/events/bus.go
package events

import (
	"sync"
	"time"

	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
)

// Event kinds published by the engine.
const (
	KindNotificationCreated = "notification.created"
	KindNotificationSent    = "notification.sent"
	KindNotificationInApp   = "notification.in_app"
	KindWaitlistMatched     = "waitlist.matched"
)

// Event is a fire-and-forget message for realtime consumers.
type Event struct {
	Kind       string                 `json:"kind"`
	UserID     string                 `json:"userId,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// Bus is an in-process publish/subscribe hub. Each subscriber gets a buffered
// channel; a full buffer drops the event rather than blocking the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	logger      logger.Logger
}

func NewBus(log logger.Logger) *Bus {
	return &Bus{logger: log.WithFields(map[string]interface{}{"component": "event-bus"})}
}

// Subscribe registers a consumer and returns its receive channel.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	return ch
}

// Publish delivers the event to every subscriber without blocking. Consumers
// that cannot keep up lose events; delivery here is at-most-once and realtime
// UIs reconcile from the store.
func (b *Bus) Publish(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber buffer full, dropping event", map[string]interface{}{
				"kind":   event.Kind,
				"userId": event.UserID,
			})
		}
	}
}
