// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchingScores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_scores_total",
			Help: "Total number of candidate pairs scored",
		},
		[]string{"matched"},
	)

	NotificationsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_scheduled_total",
			Help: "Total number of notifications scheduled",
		},
		[]string{"type"},
	)

	NotificationsDeferred = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_deferred_total",
			Help: "Total number of notifications deferred by quiet hours",
		},
	)

	ChannelSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_sends_total",
			Help: "Total number of channel send attempts",
		},
		[]string{"channel", "status"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "dispatch_duration_seconds",
			Help: "Duration of full notification dispatch in seconds",
		},
	)

	QueueClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delay_queue_claims_total",
			Help: "Total number of delayed notifications claimed",
		},
		[]string{"outcome"},
	)
)
