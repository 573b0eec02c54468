// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Command prepare runs the aggregation pipeline once: it reads the raw
// parquet sources, reprojects geometry to WGS84, aggregates traffic per
// segment and interval, and emits the GeoJSON and interval artifacts
// consumed by the query service.
//
// The exit code is non-zero only for a schema mismatch or an unreadable
// roads source; a missing buildings, traffic, or noise source degrades
// to an empty or skipped artifact.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trafficatlas/trafficatlas/internal/config"
	"github.com/trafficatlas/trafficatlas/internal/logging"
	"github.com/trafficatlas/trafficatlas/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Pipeline run failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	log := logging.With().
		Str("component", "pipeline").
		Str("run_id", logging.GenerateRequestID()).
		Logger()

	_, err = pipeline.Run(context.Background(), cfg, log)
	return err
}
