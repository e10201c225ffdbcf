// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// NotificationFilter narrows ListNotifications results.
type NotificationFilter struct {
	Type       string
	UnreadOnly bool
	Limit      int
}

// Store is the persistence adapter for waitlist entries, preferences, and
// notifications. Any CRUD-capable backend can implement it; the engine ships
// a PostgreSQL implementation.
type Store interface {
	GetWaitlistEntry(ctx context.Context, id string) (*models.WaitlistEntry, error)
	PutWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error
	// ListActiveEntries returns active entries for a provider; an empty
	// providerID returns entries not pinned to any provider as well.
	ListActiveEntries(ctx context.Context, providerID string) ([]models.WaitlistEntry, error)

	GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	PutPreferences(ctx context.Context, prefs *models.NotificationPreferences) error

	InsertNotification(ctx context.Context, n *models.Notification) error
	UpdateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID string, filter NotificationFilter) ([]models.Notification, error)
}
