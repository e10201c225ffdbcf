// Package errors provides standardized error types for the matching and
// notification engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTemplateNotFound        ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateRegistryInvalid ErrorCode = "TEMPLATE_REGISTRY_INVALID"

	ErrCodePreferencesLoadFailed ErrorCode = "PREFERENCES_LOAD_FAILED"
	ErrCodePreferencesSaveFailed ErrorCode = "PREFERENCES_SAVE_FAILED"

	ErrCodeNotificationPersistFailed ErrorCode = "NOTIFICATION_PERSIST_FAILED"
	ErrCodeNotificationSendFailed    ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeChannelTimeout            ErrorCode = "CHANNEL_TIMEOUT"
	ErrCodeChannelPanic              ErrorCode = "CHANNEL_PANIC"

	ErrCodeQueueEnqueueFailed ErrorCode = "QUEUE_ENQUEUE_FAILED"
	ErrCodeQueueClaimFailed   ErrorCode = "QUEUE_CLAIM_FAILED"

	ErrCodeWaitlistEntryNotFound ErrorCode = "WAITLIST_ENTRY_NOT_FOUND"
	ErrCodeDatabaseQueryFailed   ErrorCode = "DATABASE_QUERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewTemplateNotFoundError creates a non-retryable template lookup error.
func NewTemplateNotFoundError(notificationType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "No template registered for notification type",
		Details:   fmt.Sprintf("type: %s", notificationType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateRegistryInvalidError creates a non-retryable registry file error.
func NewTemplateRegistryInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateRegistryInvalid,
		Message:   "Template registry file failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPreferencesLoadFailedError creates a retryable store read error.
func NewPreferencesLoadFailedError(userID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePreferencesLoadFailed,
		Message:   "Failed to load notification preferences",
		Details:   fmt.Sprintf("userId: %s, error: %s", userID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPreferencesSaveFailedError creates a retryable store write error.
func NewPreferencesSaveFailedError(userID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePreferencesSaveFailed,
		Message:   "Failed to save notification preferences",
		Details:   fmt.Sprintf("userId: %s, error: %s", userID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationPersistFailedError creates a retryable store write error.
func NewNotificationPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationPersistFailed,
		Message:   "Failed to persist notification",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable channel send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Channel delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelTimeoutError creates a retryable per-channel timeout error.
func NewChannelTimeoutError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelTimeout,
		Message:   "Channel send exceeded timeout",
		Details:   fmt.Sprintf("channel: %s", channel),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelPanicError converts a recovered sender panic into an error.
func NewChannelPanicError(channel string, recovered interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelPanic,
		Message:   "Channel sender panicked",
		Details:   fmt.Sprintf("channel: %s, panic: %v", channel, recovered),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueEnqueueFailedError creates a retryable delay-queue write error.
func NewQueueEnqueueFailedError(notificationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueEnqueueFailed,
		Message:   "Failed to enqueue delayed notification",
		Details:   fmt.Sprintf("notificationId: %s, error: %s", notificationID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueClaimFailedError creates a retryable delay-queue read error.
func NewQueueClaimFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueClaimFailed,
		Message:   "Failed to claim due notifications",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWaitlistEntryNotFoundError creates a non-retryable lookup error.
func NewWaitlistEntryNotFoundError(entryID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWaitlistEntryNotFound,
		Message:   "Waitlist entry not found",
		Details:   fmt.Sprintf("entryId: %s", entryID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable query error.
func NewDatabaseQueryFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := err.(*StandardError)
	return ok && se.Code == code
}
