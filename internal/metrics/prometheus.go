package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the bot

var (
	// Feed metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "philliesbot_feed_requests_total",
			Help: "Total number of gameday feed requests",
		},
		[]string{"endpoint", "status"},
	)

	FeedRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "philliesbot_feed_request_duration_seconds",
			Help:    "Duration of gameday feed requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Command metrics
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "philliesbot_commands_total",
			Help: "Total number of chat commands handled",
		},
		[]string{"command", "outcome"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "philliesbot_db_queries_total",
			Help: "Total number of player table queries",
		},
		[]string{"operation", "status"},
	)

	// Stats walk metrics
	StatsWalkDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "philliesbot_stats_walk_days",
			Help:    "Days walked back before a batter document was found",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 20, 30},
		},
	)

	// Pending /stats prompts
	PendingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "philliesbot_pending_requests_total",
			Help: "Pending stats prompts by lifecycle event",
		},
		[]string{"event"},
	)

	// Announcement metrics
	AnnouncementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "philliesbot_announcements_total",
			Help: "Total number of game-day announcements published",
		},
		[]string{"sink", "status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "philliesbot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "philliesbot_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordFeedRequest records a feed request metric
func RecordFeedRequest(endpoint, status string, duration float64) {
	FeedRequestsTotal.WithLabelValues(endpoint, status).Inc()
	FeedRequestDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordCommand records a handled command
func RecordCommand(command, outcome string) {
	CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, status string) {
	DBQueriesTotal.WithLabelValues(operation, status).Inc()
}

// RecordStatsWalk records how many days a stats walk covered
func RecordStatsWalk(days int) {
	StatsWalkDays.Observe(float64(days))
}

// RecordPending records a pending prompt lifecycle event
func RecordPending(event string) {
	PendingRequestsTotal.WithLabelValues(event).Inc()
}

// RecordAnnouncement records an announcement publish
func RecordAnnouncement(sink, status string) {
	AnnouncementsTotal.WithLabelValues(sink, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
