// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package api

import (
	"net/http"
	"time"
)

// Health reports service status, uptime, and loaded layer sizes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWrapped(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(h.started).String(),
		"layers": map[string]int{
			"buildings": len(h.snap.Buildings.Features),
			"roads":     len(h.snap.Roads.Features),
			"noise":     len(h.snap.Noise.Features),
			"traffic":   len(h.snap.Traffic),
		},
		"intervals":   len(h.snap.Intervals),
		"snapshot_at": h.snap.LoadedAt().UTC().Format(time.RFC3339),
	})
}

// HealthLive is the liveness probe: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondWrapped(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe. The snapshot is loaded before the
// listener starts, so a serving process is always ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondWrapped(w, http.StatusOK, map[string]string{"status": "ready"})
}
