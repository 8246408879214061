// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AttentionWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rehearse_attention_warnings_total",
			Help: "Total number of look-away warnings issued",
		},
	)

	AttentionTerminations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rehearse_attention_terminations_total",
			Help: "Total number of interviews ended by the attention monitor",
		},
	)

	AttentionInitFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rehearse_attention_init_failures_total",
			Help: "Total number of attention monitors that failed to start",
		},
		[]string{"reason"},
	)

	ActiveMonitors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rehearse_attention_monitors_active",
			Help: "Number of attention monitors currently running",
		},
	)

	FeedbackOverrides = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rehearse_feedback_overrides_total",
			Help: "Total number of model feedback entries rewritten by policy",
		},
		[]string{"reason"},
	)

	ScoringTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rehearse_scoring_total",
			Help: "Total number of interview submissions scored",
		},
		[]string{"outcome"},
	)

	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rehearse_scoring_duration_seconds",
			Help:    "Duration of answer scoring in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rehearse_llm_requests_total",
			Help: "Total number of text generation requests",
		},
		[]string{"purpose", "outcome"},
	)

	LLMRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rehearse_llm_retries_total",
			Help: "Total number of text generation attempts repeated after a transient failure",
		},
		[]string{"purpose", "reason"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rehearse_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rehearse_http_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rehearse_ws_connections_active",
			Help: "Number of open attention WebSocket connections",
		},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
