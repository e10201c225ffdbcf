// internal/notifications/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/andeslee444/Project-H-sub007/internal/common/errors"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/common/metrics"
	"github.com/andeslee444/Project-H-sub007/internal/models"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/preferences"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/templates"
	"github.com/andeslee444/Project-H-sub007/internal/store"

	"github.com/google/uuid"
)

// DispatchFunc hands a due notification to the dispatcher.
type DispatchFunc func(ctx context.Context, n *models.Notification) error

// DelayQueue parks a notification id until its send time. Any durable
// delayed-job mechanism works; the engine ships a redis-backed one.
type DelayQueue interface {
	Enqueue(ctx context.Context, notificationID string, at time.Time) error
}

// Options tune a single Schedule call.
type Options struct {
	// Priority overrides the template default when non-empty.
	Priority string
	// RequestedTime is the desired send time; zero means now.
	RequestedTime time.Time
	// ExpiresAt, when set, is stored on the notification for the UI.
	ExpiresAt *time.Time
}

// Scheduler turns a (user, type, variables) triple into a persisted
// notification with a computed send time, deferring anything that would land
// inside the user's quiet hours.
type Scheduler struct {
	registry *templates.Registry
	prefs    *preferences.Resolver
	store    store.Store
	queue    DelayQueue
	dispatch DispatchFunc
	logger   logger.Logger

	defaultTimezone string
	now             func() time.Time
}

func New(registry *templates.Registry, prefs *preferences.Resolver, st store.Store,
	queue DelayQueue, dispatch DispatchFunc, defaultTimezone string, log logger.Logger) *Scheduler {
	return &Scheduler{
		registry:        registry,
		prefs:           prefs,
		store:           st,
		queue:           queue,
		dispatch:        dispatch,
		logger:          log.WithFields(map[string]interface{}{"component": "scheduler"}),
		defaultTimezone: defaultTimezone,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the scheduler's clock. Test hook.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Schedule creates the notification row and either dispatches it immediately
// or parks it on the delay queue. An unknown notification type is the one
// fatal error: there is nothing to render.
func (s *Scheduler) Schedule(ctx context.Context, userID, notificationType string,
	variables map[string]string, opts Options) (*models.Notification, error) {

	template, err := s.registry.Get(notificationType)
	if err != nil {
		return nil, err
	}

	prefs := s.prefs.Resolve(ctx, userID)
	channels := preferences.EffectiveChannels(template, prefs)

	title, body, err := s.registry.Render(notificationType, variables)
	if err != nil {
		return nil, err
	}

	priority := template.DefaultPriority
	if opts.Priority != "" {
		priority = opts.Priority
	}

	now := s.now()
	scheduledFor := opts.RequestedTime
	if scheduledFor.IsZero() {
		scheduledFor = now
	}

	// Urgent notifications are never deferred.
	if priority != models.PriorityUrgent {
		if adjusted, deferred := adjustForQuietHours(scheduledFor, prefs.QuietHours, s.defaultTimezone); deferred {
			s.logger.Info("delivery deferred by quiet hours", map[string]interface{}{
				"userId":   userID,
				"type":     notificationType,
				"original": scheduledFor,
				"adjusted": adjusted,
			})
			metrics.NotificationsDeferred.Inc()
			scheduledFor = adjusted
		}
	}

	notification := &models.Notification{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         notificationType,
		Priority:     priority,
		Title:        title,
		Message:      body,
		Channels:     channels,
		Data:         variables,
		ScheduledFor: scheduledFor,
		ExpiresAt:    opts.ExpiresAt,
		CreatedAt:    now,
	}

	if err := s.store.InsertNotification(ctx, notification); err != nil {
		return nil, errors.NewNotificationPersistFailedError(err)
	}
	metrics.NotificationsScheduled.WithLabelValues(notificationType).Inc()

	if !scheduledFor.After(now) {
		if err := s.dispatch(ctx, notification); err != nil {
			// The row exists unsent; dispatch errors are operational, not
			// caller-facing.
			s.logger.WithError(err).Error("immediate dispatch failed", map[string]interface{}{
				"notificationId": notification.ID,
			})
		}
		return notification, nil
	}

	if err := s.queue.Enqueue(ctx, notification.ID, scheduledFor); err != nil {
		return notification, err
	}
	return notification, nil
}
