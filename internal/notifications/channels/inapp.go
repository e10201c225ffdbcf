// internal/notifications/channels/inapp.go
package channels

import (
	"context"

	"github.com/andeslee444/Project-H-sub007/internal/events"
	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// InAppSender delivers by emitting an event on the in-process bus. The UI
// keys toasts off the notification id, which makes redelivery harmless.
type InAppSender struct {
	bus *events.Bus
}

func NewInAppSender(bus *events.Bus) *InAppSender {
	return &InAppSender{bus: bus}
}

func (s *InAppSender) Channel() models.Channel {
	return models.ChannelInApp
}

func (s *InAppSender) Send(_ context.Context, n *models.Notification) error {
	s.bus.Publish(events.Event{
		Kind:   events.KindNotificationInApp,
		UserID: n.UserID,
		Payload: map[string]interface{}{
			"notificationId": n.ID,
			"type":           n.Type,
			"priority":       n.Priority,
			"title":          n.Title,
			"message":        n.Message,
		},
	})
	return nil
}
