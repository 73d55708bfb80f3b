// Orderhub - Live Order Broadcasting for the Dinehall Restaurant Platform
// Copyright 2026 Dinehall Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dinehall/orderhub

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the broadcast service:
// - WebSocket connection lifecycle and message throughput
// - Broadcast fan-out volume and dropped deliveries
// - Heartbeat evictions
// - HTTP ingress latency and throughput

var (
	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket frames written to clients",
		},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket frames received from clients",
		},
		[]string{"type"}, // message type, or "invalid" for rejected frames
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"}, // "read", "write", "upgrade", "handler_panic"
	)

	// Broadcast Metrics
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Total number of broadcast fan-outs",
		},
		[]string{"source"}, // "socket" or "ingress"
	)

	BroadcastDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_dropped_deliveries_total",
			Help: "Total deliveries skipped because a client send buffer was full",
		},
	)

	// Heartbeat Metrics
	HeartbeatEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "heartbeat_evictions_total",
			Help: "Total connections evicted after missing two heartbeat sweeps",
		},
	)

	HeartbeatSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "heartbeat_sweeps_total",
			Help: "Total heartbeat sweep runs",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordConnection tracks WebSocket connection lifecycle
func RecordConnection(connected bool) {
	if connected {
		WSConnections.Inc()
	} else {
		WSConnections.Dec()
	}
}

// RecordMessageReceived records an inbound WebSocket frame by message type
func RecordMessageReceived(messageType string) {
	WSMessagesReceived.WithLabelValues(messageType).Inc()
}

// RecordMessageSent records an outbound WebSocket frame
func RecordMessageSent() {
	WSMessagesSent.Inc()
}

// RecordWSError records a WebSocket error by category
func RecordWSError(errorType string) {
	WSErrors.WithLabelValues(errorType).Inc()
}

// RecordBroadcast records a broadcast fan-out by source
func RecordBroadcast(source string) {
	BroadcastsTotal.WithLabelValues(source).Inc()
}

// RecordDroppedDelivery records a delivery skipped due to a full send buffer
func RecordDroppedDelivery() {
	BroadcastDropped.Inc()
}

// RecordHeartbeatSweep records a heartbeat sweep and its evictions
func RecordHeartbeatSweep(evicted int) {
	HeartbeatSweeps.Inc()
	if evicted > 0 {
		HeartbeatEvictions.Add(float64(evicted))
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
