// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Command server runs the interval query service. It loads the
// pipeline's emitted artifacts once into an immutable snapshot and
// serves them until the process exits; a new dataset requires a restart.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trafficatlas/trafficatlas/internal/api"
	"github.com/trafficatlas/trafficatlas/internal/config"
	"github.com/trafficatlas/trafficatlas/internal/logging"
	"github.com/trafficatlas/trafficatlas/internal/metrics"
	"github.com/trafficatlas/trafficatlas/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
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
	log := logging.With().Str("component", "server").Logger()

	snap, err := snapshot.Load(&cfg.Data, log)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	metrics.RecordSnapshotLoad(
		len(snap.Buildings.Features),
		len(snap.Roads.Features),
		len(snap.Noise.Features),
		len(snap.Traffic),
		len(snap.Intervals),
		snap.LoadedAt(),
	)

	handler := api.NewHandler(snap, cfg)
	router := api.NewRouter(handler, &cfg.Server)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
