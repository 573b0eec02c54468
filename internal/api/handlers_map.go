// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package api

import (
	"net/http"
	"time"

	"github.com/trafficatlas/trafficatlas/internal/models"
	"github.com/trafficatlas/trafficatlas/internal/snapshot"
)

// DefaultVariable is the traffic variable used when the client does not
// name one.
const DefaultVariable = "vehicles"

// Buildings serves the full buildings layer.
func (h *Handler) Buildings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snap.Buildings)
}

// Roads serves the full roads layer.
func (h *Handler) Roads(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snap.Roads)
}

// Noise serves the noise layer, empty when the pipeline never produced one.
func (h *Handler) Noise(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snap.Noise)
}

// parseTrafficQuery decodes start/end/var/scope. An unparseable start
// or end is treated as absent and an unknown scope as "filtered".
func parseTrafficQuery(r *http.Request) (start, end *time.Time, variable, scope string) {
	q := r.URL.Query()
	start = snapshot.ParseISO(q.Get("start"))
	end = snapshot.ParseISO(q.Get("end"))

	variable = q.Get("var")
	if variable == "" {
		variable = DefaultVariable
	}

	scope = q.Get("scope")
	if scope != "global" {
		scope = "filtered"
	}
	return start, end, variable, scope
}

// Traffic serves the time-filtered traffic layer with a metadata block
// carrying the min/max used for client-side color scaling.
func (h *Handler) Traffic(w http.ResponseWriter, r *http.Request) {
	start, end, variable, scope := parseTrafficQuery(r)

	filtered := snapshot.FilterByInterval(h.snap.Traffic, start, end)

	var mm models.MinMax
	if scope == "global" {
		mm = h.snap.GlobalMinMax(variable)
	} else {
		mm = snapshot.MinMaxOf(filtered, variable)
	}

	features := make([]*models.Feature, 0, len(filtered))
	for _, f := range filtered {
		features = append(features, f.Feature)
	}

	respondJSON(w, http.StatusOK, &models.TrafficCollection{
		Type:     "FeatureCollection",
		Features: features,
		Meta: models.TrafficMeta{
			Var:   variable,
			Min:   mm.Min,
			Max:   mm.Max,
			Count: len(features),
			Scope: scope,
		},
	})
}

// TrafficMinMax serves only the min/max bounds for a variable.
func (h *Handler) TrafficMinMax(w http.ResponseWriter, r *http.Request) {
	start, end, variable, scope := parseTrafficQuery(r)

	var mm models.MinMax
	if scope == "global" {
		mm = h.snap.GlobalMinMax(variable)
	} else {
		filtered := snapshot.FilterByInterval(h.snap.Traffic, start, end)
		mm = snapshot.MinMaxOf(filtered, variable)
	}
	respondJSON(w, http.StatusOK, mm)
}

// TrafficLatest serves the interval with the maximum end timestamp.
func (h *Handler) TrafficLatest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, snapshot.LatestInterval(h.snap.Traffic))
}

// TrafficVars serves the sorted list of numeric display variables.
func (h *Handler) TrafficVars(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"variables": h.snap.Variables,
	})
}

// Intervals serves the dataset's authoritative timeline.
func (h *Handler) Intervals(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.IntervalList{Intervals: h.snap.Intervals})
}
