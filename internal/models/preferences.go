// internal/models/preferences.go
package models

import "time"

// TypePreference overrides delivery for a single notification type.
type TypePreference struct {
	Enabled              bool      `json:"enabled"`
	Channels             []Channel `json:"channels,omitempty"`
	AdvanceNoticeMinutes int       `json:"advanceNoticeMinutes,omitempty"`
}

// QuietHours is a local-time window during which delivery is deferred.
// Start > End means the window wraps midnight.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"` // "HH:MM"
	End      string `json:"end"`   // "HH:MM"
	Timezone string `json:"timezone"`
}

// NotificationPreferences holds one user's delivery settings. One per user,
// created lazily with system defaults on first access.
type NotificationPreferences struct {
	UserID     string                    `json:"userId"`
	Channels   map[Channel]bool          `json:"channels"`
	Types      map[string]TypePreference `json:"types,omitempty"`
	QuietHours QuietHours                `json:"quietHours"`
	UpdatedAt  time.Time                 `json:"updatedAt"`
}

// DefaultPreferences returns the system defaults used when a user has no stored
// preferences: in-app and email on, SMS and push off, quiet hours disabled.
func DefaultPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID: userID,
		Channels: map[Channel]bool{
			ChannelInApp: true,
			ChannelEmail: true,
			ChannelSMS:   false,
			ChannelPush:  false,
		},
		Types:      map[string]TypePreference{},
		QuietHours: QuietHours{Enabled: false, Timezone: "UTC"},
	}
}
