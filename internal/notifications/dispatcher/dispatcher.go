// internal/notifications/dispatcher/dispatcher.go
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/andeslee444/Project-H-sub007/internal/common/errors"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/common/metrics"
	"github.com/andeslee444/Project-H-sub007/internal/events"
	"github.com/andeslee444/Project-H-sub007/internal/models"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/channels"
	"github.com/andeslee444/Project-H-sub007/internal/store"
)

// ChannelResult is the terminal outcome of one channel's send attempt.
type ChannelResult struct {
	Channel  models.Channel
	Err      error
	Duration time.Duration
}

// Outcome summarizes a dispatch. SentAt is always set on a fresh dispatch,
// even when every channel failed: delivery is best-effort per channel.
type Outcome struct {
	NotificationID string
	AlreadySent    bool
	SentAt         time.Time
	Results        []ChannelResult
}

// Failed returns the results whose send did not succeed.
func (o *Outcome) Failed() []ChannelResult {
	var failed []ChannelResult
	for _, r := range o.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Dispatcher fans a notification out to every resolved channel concurrently.
// Safe to invoke twice for the same notification: a row with SentAt already
// set is not re-delivered.
type Dispatcher struct {
	store       store.Store
	bus         *events.Bus
	senders     map[models.Channel]channels.Sender
	sendTimeout time.Duration
	logger      logger.Logger
	now         func() time.Time
}

func New(st store.Store, bus *events.Bus, senders []channels.Sender,
	sendTimeout time.Duration, log logger.Logger) *Dispatcher {
	byChannel := make(map[models.Channel]channels.Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Dispatcher{
		store:       st,
		bus:         bus,
		senders:     byChannel,
		sendTimeout: sendTimeout,
		logger:      log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the dispatcher's clock. Test hook.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Dispatch delivers the notification on every channel in its locked-in set.
// All sends run in parallel and every one resolves (success, failure, or
// timeout) before SentAt is stamped. A channel failure never cancels its
// siblings, and this engine never retries a finished dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) (*Outcome, error) {
	if n.Sent() {
		return &Outcome{NotificationID: n.ID, AlreadySent: true, SentAt: *n.SentAt}, nil
	}

	start := d.now()

	// Realtime consumers see the row as soon as dispatch begins; they are
	// never blocked on slow external channels.
	d.bus.Publish(events.Event{
		Kind:   events.KindNotificationCreated,
		UserID: n.UserID,
		Payload: map[string]interface{}{
			"notificationId": n.ID,
			"type":           n.Type,
			"channels":       n.Channels,
		},
	})

	results := make([]ChannelResult, len(n.Channels))
	var wg sync.WaitGroup
	for i, channel := range n.Channels {
		wg.Add(1)
		go func(i int, channel models.Channel) {
			defer wg.Done()
			results[i] = d.sendOne(ctx, channel, n)
		}(i, channel)
	}
	wg.Wait()

	sentAt := d.now()
	n.SentAt = &sentAt
	metrics.DispatchDuration.Observe(sentAt.Sub(start).Seconds())

	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "error"
			d.logger.WithError(r.Err).Error("channel send failed", map[string]interface{}{
				"notificationId": n.ID,
				"channel":        r.Channel,
			})
		}
		metrics.ChannelSends.WithLabelValues(string(r.Channel), status).Inc()
	}

	outcome := &Outcome{NotificationID: n.ID, SentAt: sentAt, Results: results}

	if err := d.store.UpdateNotification(ctx, n); err != nil {
		return outcome, errors.NewNotificationPersistFailedError(err)
	}

	d.bus.Publish(events.Event{
		Kind:   events.KindNotificationSent,
		UserID: n.UserID,
		Payload: map[string]interface{}{
			"notificationId": n.ID,
			"failedChannels": len(outcome.Failed()),
		},
	})

	return outcome, nil
}

// sendOne runs a single channel send under a timeout, converting timeouts and
// panics into SendError-shaped failures instead of letting them escape.
func (d *Dispatcher) sendOne(ctx context.Context, channel models.Channel, n *models.Notification) (result ChannelResult) {
	result.Channel = channel
	start := d.now()
	defer func() {
		result.Duration = d.now().Sub(start)
		if recovered := recover(); recovered != nil {
			result.Err = errors.NewChannelPanicError(string(channel), recovered)
		}
	}()

	sender, ok := d.senders[channel]
	if !ok {
		result.Err = &channels.SendError{Channel: channel, Reason: "no sender registered"}
		return result
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := sender.Send(sendCtx, n); err != nil {
		if sendCtx.Err() == context.DeadlineExceeded {
			result.Err = errors.NewChannelTimeoutError(string(channel))
		} else {
			result.Err = err
		}
	}
	return result
}
