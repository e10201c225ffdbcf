// internal/notifications/queue/worker.go
package queue

import (
	"context"
	"time"

	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/common/metrics"
	"github.com/andeslee444/Project-H-sub007/internal/models"
	"github.com/andeslee444/Project-H-sub007/internal/store"
)

const claimBatchSize = 100

// DispatchFunc hands a claimed notification to the dispatcher.
type DispatchFunc func(ctx context.Context, n *models.Notification) error

// Worker polls the delay queue and dispatches notifications that have come
// due. One worker per process is enough; claims are exclusive so running
// more is safe, just redundant.
type Worker struct {
	queue    *Queue
	store    store.Store
	dispatch DispatchFunc
	interval time.Duration
	logger   logger.Logger
	now      func() time.Time
}

func NewWorker(q *Queue, st store.Store, dispatch DispatchFunc,
	interval time.Duration, log logger.Logger) *Worker {
	return &Worker{
		queue:    q,
		store:    st,
		dispatch: dispatch,
		interval: interval,
		logger:   log.WithFields(map[string]interface{}{"component": "queue_worker"}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the worker's clock. Test hook.
func (w *Worker) SetClock(now func() time.Time) {
	w.now = now
}

// Run polls until the context is cancelled. It drains one due batch
// immediately on startup so notifications that came due while the process
// was down are not delayed a full extra interval.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("delay queue worker started", map[string]interface{}{
		"pollInterval": w.interval.String(),
	})

	w.drainDue(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("delay queue worker stopped", nil)
			return
		case <-ticker.C:
			w.drainDue(ctx)
		}
	}
}

func (w *Worker) drainDue(ctx context.Context) {
	ids, err := w.queue.ClaimDue(ctx, w.now(), claimBatchSize)
	if err != nil {
		w.logger.WithError(err).Error("failed to claim due notifications", nil)
		return
	}
	if len(ids) == 0 {
		return
	}

	w.logger.Info("claimed due notifications", map[string]interface{}{
		"count": len(ids),
	})

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		w.dispatchOne(ctx, id)
	}
}

func (w *Worker) dispatchOne(ctx context.Context, notificationID string) {
	n, err := w.store.GetNotification(ctx, notificationID)
	if err != nil {
		// A missing row means the notification was deleted after being
		// enqueued; there is nothing left to deliver.
		outcome := "load_error"
		if err == store.ErrNotFound {
			outcome = "orphaned"
		}
		metrics.QueueClaims.WithLabelValues(outcome).Inc()
		w.logger.WithError(err).Warn("skipping claimed notification", map[string]interface{}{
			"notificationId": notificationID,
		})
		return
	}

	if err := w.dispatch(ctx, n); err != nil {
		w.logger.WithError(err).Error("delayed dispatch failed", map[string]interface{}{
			"notificationId": notificationID,
		})
	}
}
