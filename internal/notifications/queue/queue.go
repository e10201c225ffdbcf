// internal/notifications/queue/queue.go
package queue

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andeslee444/Project-H-sub007/internal/common/errors"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/common/metrics"
)

const delayedKey = "notifications:delayed"

// Queue stores deferred notification IDs in a Redis sorted set, scored by
// the unix time they become due. ZRem on claim keeps a claim exclusive even
// with multiple pollers against the same Redis.
type Queue struct {
	client *redis.Client
	logger logger.Logger
}

func New(client *redis.Client, log logger.Logger) *Queue {
	return &Queue{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "delay_queue"}),
	}
}

// Enqueue registers a notification for dispatch at the given time. Enqueueing
// the same ID again moves it to the new time rather than duplicating it.
func (q *Queue) Enqueue(ctx context.Context, notificationID string, at time.Time) error {
	err := q.client.ZAdd(ctx, delayedKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: notificationID,
	}).Err()
	if err != nil {
		return errors.NewQueueEnqueueFailedError(notificationID, err)
	}

	q.logger.Debug("notification enqueued for delayed dispatch", map[string]interface{}{
		"notificationId": notificationID,
		"dueAt":          at.Format(time.RFC3339),
	})
	return nil
}

// Remove drops a pending notification from the queue, for example after the
// underlying slot was taken and the notification expired.
func (q *Queue) Remove(ctx context.Context, notificationID string) error {
	return q.client.ZRem(ctx, delayedKey, notificationID).Err()
}

// Pending reports how many notifications are waiting in the queue.
func (q *Queue) Pending(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, delayedKey).Result()
}

// ClaimDue atomically removes and returns the IDs of every notification due
// at or before now, up to limit. An ID returned here belongs to the caller;
// a crash after claim loses the dispatch, which is acceptable for
// best-effort delivery.
func (q *Queue) ClaimDue(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	max := strconv.FormatInt(now.Unix(), 10)
	ids, err := q.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   max,
		Count: limit,
	}).Result()
	if err != nil {
		metrics.QueueClaims.WithLabelValues("error").Inc()
		return nil, errors.NewQueueClaimFailedError(err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := q.client.ZRem(ctx, delayedKey, members...).Err(); err != nil {
		metrics.QueueClaims.WithLabelValues("error").Inc()
		return nil, errors.NewQueueClaimFailedError(err)
	}

	metrics.QueueClaims.WithLabelValues("claimed").Add(float64(len(ids)))
	return ids, nil
}
