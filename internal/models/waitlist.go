// internal/models/waitlist.go
package models

import "time"

// Waitlist entry statuses.
const (
	WaitlistStatusActive    = "active"
	WaitlistStatusPending   = "pending"
	WaitlistStatusScheduled = "scheduled"
	WaitlistStatusRemoved   = "removed"
)

// WaitlistEntry is a patient waiting for an opening, optionally with a specific
// provider. PriorityScore is recomputed whenever priority inputs change.
type WaitlistEntry struct {
	ID            string        `json:"id"`
	PatientID     string        `json:"patientId"`
	PatientName   string        `json:"patientName,omitempty"`
	ProviderID    string        `json:"providerId,omitempty"`
	Criteria      MatchCriteria `json:"criteria"`
	PriorityScore float64       `json:"priorityScore"`
	Status        string        `json:"status"`
	HandRaised    bool          `json:"handRaised"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// RankedEntry pairs a waitlist entry with its match outcome for one candidate.
type RankedEntry struct {
	Entry   WaitlistEntry `json:"entry"`
	Score   int           `json:"score"`
	Matches bool          `json:"matches"`
	Reasons []string      `json:"reasons"`
}
