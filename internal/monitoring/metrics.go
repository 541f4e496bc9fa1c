// Package monitoring exposes Prometheus metrics and background maintenance
// for the visibility service.
package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeUpstream = "upstream_error"
	OutcomeFailed   = "failed"
	OutcomeDropped  = "dropped"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_analyses_total",
			Help: "Total number of analyses by outcome",
		},
		[]string{"outcome"},
	)

	ScoreTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visibility_score_total",
			Help:    "Distribution of total visibility scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	GradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_grades_total",
			Help: "Total number of scored businesses by grade",
		},
		[]string{"grade"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_notifications_total",
			Help: "Total number of lead notifications by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visibility_notifications_dropped_total",
			Help: "Lead notifications dropped because the queue was full or closed",
		},
	)

	PlacesRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_places_requests_total",
			Help: "Total number of Places API operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	StoreRemovals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_store_removals_total",
			Help: "Stored results removed by reason",
		},
		[]string{"reason"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "visibility_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"route", "method", "status"},
	)
)

// RecordScore records a computed total and grade.
func RecordScore(total int, grade string) {
	ScoreTotal.Observe(float64(total))
	GradesTotal.WithLabelValues(grade).Inc()
}

// RecordNotification records the result of one sink delivery.
func RecordNotification(sink string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	}
	NotificationsTotal.WithLabelValues(sink, outcome).Inc()
}

// RecordHTTP records one served request.
func RecordHTTP(route, method string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
