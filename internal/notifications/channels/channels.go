// internal/notifications/channels/channels.go
package channels

import (
	"context"
	"fmt"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// Sender is the capability contract for one delivery channel. Implementations
// are expected to be idempotent per notification id: the dispatcher passes the
// same idempotency key on every attempt for a given notification+channel.
type Sender interface {
	Channel() models.Channel
	Send(ctx context.Context, n *models.Notification) error
}

// ContactDirectory resolves a user's delivery addresses. It is an external
// collaborator; the engine only asks for what a concrete channel needs.
type ContactDirectory interface {
	Email(ctx context.Context, userID string) (string, error)
	Phone(ctx context.Context, userID string) (string, error)
}

// SendError describes a terminal per-channel failure. One channel failing
// never affects the others.
type SendError struct {
	Channel models.Channel
	Reason  string
	Err     error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("send via %s failed: %s: %v", e.Channel, e.Reason, e.Err)
	}
	return fmt.Sprintf("send via %s failed: %s", e.Channel, e.Reason)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// IdempotencyKey is the provider-side dedupe key for one notification on one
// channel. Re-dispatching the same notification reuses the same key.
func IdempotencyKey(notificationID string, channel models.Channel) string {
	return notificationID + "-" + string(channel)
}
