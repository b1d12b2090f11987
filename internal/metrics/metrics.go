// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sentinel"

var (
	// Ingestion
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_total",
			Help:      "Security events recorded, by kind and severity",
		},
		[]string{"kind", "severity"},
	)

	EventsBlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_blocked_total",
			Help:      "Events whose risk score crossed the block threshold",
		},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_rejected_total",
			Help:      "Ingestion calls rejected before storage",
		},
		[]string{"reason"}, // unknown_kind, validation
	)

	RiskScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_risk_score",
			Help:      "Distribution of assigned risk scores",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	ScoringFactors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_factors_total",
			Help:      "Contextual risk factors that fired",
		},
		[]string{"factor"},
	)

	LogEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_log_evictions_total",
			Help:      "Events evicted from the in-memory audit log for capacity",
		},
	)

	LogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_log_events",
			Help:      "Events currently held in the in-memory audit log",
		},
	)

	// Blocklist
	BlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Block and re-block operations, by scope and cause",
		},
		[]string{"scope", "reason"},
	)

	BlocksActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocks_active",
			Help:      "Subjects currently blocked",
		},
		[]string{"scope"},
	)

	BlockExpiries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_expiries_total",
			Help:      "Blocks removed, by scope and how (expired, manual)",
		},
		[]string{"scope", "how"},
	)

	// Alerting
	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_dispatched_total",
			Help:      "Admin alerts queued for delivery, by severity",
		},
		[]string{"severity"},
	)

	AlertsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_dropped_total",
			Help:      "Admin alerts dropped because the delivery queue was full",
		},
	)

	AlertDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_deliveries_total",
			Help:      "Successful alert deliveries, by channel",
		},
		[]string{"channel"},
	)

	AlertDeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_delivery_failures_total",
			Help:      "Failed or timed out alert deliveries, by channel",
		},
		[]string{"channel"},
	)

	AlertQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_queue_depth",
			Help:      "Alerts waiting for delivery",
		},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Admin consoles connected to the alert stream",
		},
	)

	// Event mirror
	SinkWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Events written to a durable sink",
		},
		[]string{"sink"},
	)

	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_failures_total",
			Help:      "Failed sink write attempts",
		},
		[]string{"sink"},
	)

	SinkFlushDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sink_flush_duration_seconds",
			Help:      "Time spent writing one batch to a sink",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"sink"},
	)

	MirrorPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mirror_pending_events",
			Help:      "Events buffered for the next mirror flush",
		},
	)

	MirrorFallback = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mirror_fallback_events",
			Help:      "Events held in the bounded local fallback store",
		},
	)

	MirrorFallbackEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_fallback_evictions_total",
			Help:      "Events evicted from the local fallback store",
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "HTTP requests, by method, route and status",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_rate_limit_hits_total",
			Help:      "Requests rejected by the per-IP rate limiter",
		},
		[]string{"route"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests through a circuit breaker, by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordEvent records one stored event.
func RecordEvent(kind, severity string, risk int, blocked bool) {
	EventsIngested.WithLabelValues(kind, severity).Inc()
	RiskScore.Observe(float64(risk))
	if blocked {
		EventsBlocked.Inc()
	}
}

// RecordFactors counts the contextual factors behind a score.
func RecordFactors(names []string) {
	for _, n := range names {
		ScoringFactors.WithLabelValues(n).Inc()
	}
}

// RecordRejected counts an ingestion call that stored nothing.
func RecordRejected(reason string) {
	EventsRejected.WithLabelValues(reason).Inc()
}

// RecordLog updates the audit log gauges after an append.
func RecordLog(size int, evicted bool) {
	LogSize.Set(float64(size))
	if evicted {
		LogEvictions.Inc()
	}
}

// RecordBlock counts a block on scope and refreshes the active gauge.
func RecordBlock(scope, reason string, active int) {
	BlocksTotal.WithLabelValues(scope, reason).Inc()
	BlocksActive.WithLabelValues(scope).Set(float64(active))
}

// RecordUnblock counts a removed block and refreshes the active gauge.
func RecordUnblock(scope, how string, active int) {
	BlockExpiries.WithLabelValues(scope, how).Inc()
	BlocksActive.WithLabelValues(scope).Set(float64(active))
}

// RecordAlertQueued counts an alert accepted for delivery.
func RecordAlertQueued(severity string, depth int) {
	AlertsDispatched.WithLabelValues(severity).Inc()
	AlertQueueDepth.Set(float64(depth))
}

// RecordAlertDropped counts an alert lost to a full queue.
func RecordAlertDropped() {
	AlertsDropped.Inc()
}

// RecordAlertDelivery records the outcome of publishing to one channel.
func RecordAlertDelivery(channel string, err error) {
	if err != nil {
		AlertDeliveryFailures.WithLabelValues(channel).Inc()
		return
	}
	AlertDeliveries.WithLabelValues(channel).Inc()
}

// RecordSinkFlush records a batch write to a sink.
func RecordSinkFlush(sink string, n int, duration time.Duration, err error) {
	SinkFlushDuration.WithLabelValues(sink).Observe(duration.Seconds())
	if err != nil {
		SinkFailures.WithLabelValues(sink).Inc()
		return
	}
	SinkWrites.WithLabelValues(sink).Add(float64(n))
}

// UpdateMirrorGauges publishes the mirror's buffer sizes.
func UpdateMirrorGauges(pending, fallback int) {
	MirrorPending.Set(float64(pending))
	MirrorFallback.Set(float64(fallback))
}

// RecordAPIRequest records one HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
