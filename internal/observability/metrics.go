package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharesmallbiz_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sharesmallbiz_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EngagementEvents counts like/unlike/comment events by type and outcome.
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharesmallbiz_engagement_events_total",
		Help: "Total engagement ledger events by type and outcome",
	}, []string{"event", "outcome"})

	// PostsCreated counts created posts by post type.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharesmallbiz_posts_created_total",
		Help: "Total posts created by post type",
	}, []string{"post_type"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordEngagement increments the engagement event counter.
func RecordEngagement(event, outcome string) {
	EngagementEvents.WithLabelValues(event, outcome).Inc()
}
