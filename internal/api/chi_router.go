// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trafficatlas/trafficatlas/internal/config"
	"github.com/trafficatlas/trafficatlas/internal/middleware"
)

// NewRouter assembles the full HTTP surface: map layers, interval
// queries, health probes, and Prometheus metrics.
func NewRouter(handler *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1/map", func(r chi.Router) {
		if !cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)

		r.Get("/buildings", handler.Buildings)
		r.Get("/roads", handler.Roads)
		r.Get("/noise", handler.Noise)
		r.Get("/traffic", handler.Traffic)
		r.Get("/traffic/minmax", handler.TrafficMinMax)
		r.Get("/traffic/latest", handler.TrafficLatest)
		r.Get("/traffic/vars", handler.TrafficVars)
		r.Get("/intervals", handler.Intervals)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
