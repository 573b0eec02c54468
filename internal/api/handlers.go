// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Package api serves the map layers and interval queries over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/trafficatlas/trafficatlas/internal/config"
	"github.com/trafficatlas/trafficatlas/internal/logging"
	"github.com/trafficatlas/trafficatlas/internal/models"
	"github.com/trafficatlas/trafficatlas/internal/snapshot"
)

// Handler serves all API endpoints over the loaded snapshot.
type Handler struct {
	snap    *snapshot.Snapshot
	cfg     *config.Config
	started time.Time
}

// NewHandler creates a handler bound to an immutable snapshot.
func NewHandler(snap *snapshot.Snapshot, cfg *config.Config) *Handler {
	return &Handler{
		snap:    snap,
		cfg:     cfg,
		started: time.Now(),
	}
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondWrapped sends a success response in the APIResponse envelope.
func respondWrapped(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
