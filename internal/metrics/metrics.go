// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	// Snapshot Metrics
	SnapshotFeatures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "snapshot_features",
			Help: "Number of features loaded per map layer",
		},
		[]string{"layer"},
	)

	SnapshotIntervals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_intervals",
			Help: "Number of distinct time intervals in the loaded dataset",
		},
	)

	SnapshotLoadTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_load_timestamp_seconds",
			Help: "Unix time at which the snapshot was loaded",
		},
	)
)

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

// RecordSnapshotLoad publishes the layer sizes of a loaded snapshot.
func RecordSnapshotLoad(buildings, roads, noise, traffic, intervals int, loadedAt time.Time) {
	SnapshotFeatures.WithLabelValues("buildings").Set(float64(buildings))
	SnapshotFeatures.WithLabelValues("roads").Set(float64(roads))
	SnapshotFeatures.WithLabelValues("noise").Set(float64(noise))
	SnapshotFeatures.WithLabelValues("traffic").Set(float64(traffic))
	SnapshotIntervals.Set(float64(intervals))
	SnapshotLoadTimestamp.Set(float64(loadedAt.Unix()))
}
