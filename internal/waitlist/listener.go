// internal/waitlist/listener.go
package waitlist

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/models"
)

const (
	slotOpenChannel  = "waitlist:slot_open"
	handRaiseChannel = "waitlist:hand_raise"
)

type handRaiseMessage struct {
	EntryID    string `json:"entryId"`
	ProviderID string `json:"providerId,omitempty"`
}

// Listener consumes slot-open and hand-raise events published over Redis and
// feeds them to the matching service. Scheduling and booking systems publish
// to these channels; the engine is a pure consumer.
type Listener struct {
	client  *redis.Client
	service *Service
	logger  logger.Logger
}

func NewListener(client *redis.Client, service *Service, log logger.Logger) *Listener {
	return &Listener{
		client:  client,
		service: service,
		logger:  log.WithFields(map[string]interface{}{"component": "waitlist_listener"}),
	}
}

// Run blocks consuming messages until the context is cancelled. A malformed
// message is logged and skipped; it never stops the listener.
func (l *Listener) Run(ctx context.Context) {
	sub := l.client.Subscribe(ctx, slotOpenChannel, handRaiseChannel)
	defer sub.Close()

	l.logger.Info("waitlist listener started", map[string]interface{}{
		"channels": []string{slotOpenChannel, handRaiseChannel},
	})

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("waitlist listener stopped", nil)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			l.handle(ctx, msg)
		}
	}
}

func (l *Listener) handle(ctx context.Context, msg *redis.Message) {
	switch msg.Channel {
	case slotOpenChannel:
		var slot models.ProviderSlot
		if err := json.Unmarshal([]byte(msg.Payload), &slot); err != nil {
			l.logger.WithError(err).Warn("malformed slot-open message", map[string]interface{}{
				"payload": msg.Payload,
			})
			return
		}
		if _, err := l.service.HandleSlotOpen(ctx, slot); err != nil {
			l.logger.WithError(err).Error("slot-open handling failed", map[string]interface{}{
				"providerId": slot.ProviderID,
			})
		}
	case handRaiseChannel:
		var raise handRaiseMessage
		if err := json.Unmarshal([]byte(msg.Payload), &raise); err != nil {
			l.logger.WithError(err).Warn("malformed hand-raise message", map[string]interface{}{
				"payload": msg.Payload,
			})
			return
		}
		if _, err := l.service.HandleHandRaise(ctx, raise.EntryID, raise.ProviderID); err != nil {
			l.logger.WithError(err).Error("hand-raise handling failed", map[string]interface{}{
				"entryId": raise.EntryID,
			})
		}
	}
}
