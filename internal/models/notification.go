// internal/models/notification.go
package models

import "time"

// Channel is a delivery mechanism for a notification.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// AllChannels lists every channel in a fixed order. Resolution and fan-out
// iterate this slice rather than map keys so channel order is deterministic.
var AllChannels = []Channel{ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush}

// Priority levels for notifications.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification types emitted by the engine.
const (
	TypeWaitlistAvailable       = "waitlist_available"
	TypeWaitlistPositionChanged = "waitlist_position_changed"
	TypeMatchFound              = "match_found"
	TypeAppointmentConfirmed    = "appointment_confirmed"
	TypeAppointmentCancelled    = "appointment_cancelled"
	TypeAppointmentReminder     = "appointment_reminder"
)

// Notification is a scheduled, rendered message for one user. Channels is locked
// in at schedule time; preference changes afterwards do not alter it. After SentAt
// is set only ReadAt/ClickedAt may change.
type Notification struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	Type         string            `json:"type"`
	Priority     string            `json:"priority"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Channels     []Channel         `json:"channels"`
	Data         map[string]string `json:"data,omitempty"`
	ScheduledFor time.Time         `json:"scheduledFor"`
	SentAt       *time.Time        `json:"sentAt,omitempty"`
	ReadAt       *time.Time        `json:"readAt,omitempty"`
	ClickedAt    *time.Time        `json:"clickedAt,omitempty"`
	ExpiresAt    *time.Time        `json:"expiresAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Sent reports whether the dispatcher already resolved this notification.
func (n *Notification) Sent() bool {
	return n.SentAt != nil
}

// NotificationTemplate maps a notification type to its title/body pattern,
// default priority, default channel set, and the variables the body expects.
type NotificationTemplate struct {
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	DefaultPriority string    `json:"defaultPriority"`
	DefaultChannels []Channel `json:"defaultChannels"`
	RequiredVars    []string  `json:"requiredVars,omitempty"`
}
