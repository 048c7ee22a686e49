// Package metrics registers the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksReceived counts inbound webhook deliveries by payload kind.
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmgateway_webhooks_received_total",
		Help: "Inbound webhook deliveries.",
	}, []string{"has_messages"})

	// SignalsRecorded counts referral signals persisted to the store.
	SignalsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wmgateway_signals_recorded_total",
		Help: "Referral signals persisted.",
	})

	// KeywordMatches counts keyword rule matches against message bodies.
	KeywordMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wmgateway_keyword_matches_total",
		Help: "Keyword rules matched against inbound messages.",
	})

	// ConversionsDispatched counts dispatch outcomes: sent, skipped_stale,
	// skipped_no_signal, failed.
	ConversionsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmgateway_conversions_dispatched_total",
		Help: "Conversion dispatch outcomes.",
	}, []string{"outcome"})

	// ProcessingErrors counts per-message pipeline failures by stage.
	ProcessingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmgateway_processing_errors_total",
		Help: "Per-message pipeline failures.",
	}, []string{"stage"})

	// HTTPRequests counts HTTP requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmgateway_http_requests_total",
		Help: "HTTP requests served.",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request latency per path.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wmgateway_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Dispatch outcome label values.
const (
	OutcomeSent           = "sent"
	OutcomeSkippedStale   = "skipped_stale"
	OutcomeSkippedNoMatch = "skipped_no_signal"
	OutcomeFailed         = "failed"
)
