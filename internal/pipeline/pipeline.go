// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/trafficatlas/trafficatlas/internal/config"
	"github.com/trafficatlas/trafficatlas/internal/models"
	"github.com/trafficatlas/trafficatlas/internal/source"
)

// Summary reports the per-stage counts of one pipeline run.
type Summary struct {
	Roads           int
	Buildings       int
	TrafficFeatures int
	NoiseFeatures   int
	Intervals       int
	Classes         []string
	SkippedGeometry int
	SkippedTraffic  int
	SkippedNoise    int
	MinBegin        string
	MaxEnd          string
	Duration        time.Duration
}

// Run executes one full pipeline pass: read sources, decode and
// reproject geometry, aggregate traffic, join, and emit all artifacts
// atomically. An unreadable roads source or any schema mismatch is
// fatal; an unreadable buildings, traffic, or noise source degrades to
// an empty (or skipped) artifact.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Summary, error) {
	started := time.Now()

	reader, err := source.NewReader(&cfg.Pipeline)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	summary := &Summary{}

	// Roads are required: without segment geometry the traffic layer is
	// meaningless.
	segments, err := reader.Segments(ctx, cfg.Pipeline.RoadsSource)
	if err != nil {
		return nil, fmt.Errorf("roads source: %w", err)
	}
	roadsFC, segmentGeoms, skipped := SegmentFeatures(segments, cfg.Pipeline.Reproject)
	summary.Roads = len(roadsFC.Features)
	summary.SkippedGeometry += skipped
	log.Info().
		Int("features", summary.Roads).
		Int("skipped", skipped).
		Msg("Roads decoded")

	buildingsFC := models.NewFeatureCollection()
	buildingIndex := map[string]orb.Geometry{}
	if rows, err := reader.Buildings(ctx, cfg.Pipeline.BuildingsSource); err != nil {
		if errors.Is(err, source.ErrSchemaMismatch) {
			return nil, fmt.Errorf("buildings source: %w", err)
		}
		log.Warn().Err(err).Msg("Buildings source unavailable, emitting empty collection")
	} else {
		var skipped int
		buildingsFC, buildingIndex, skipped = BuildingFeatures(rows, cfg.Pipeline.Reproject)
		summary.SkippedGeometry += skipped
	}
	summary.Buildings = len(buildingsFC.Features)

	trafficFC := models.NewFeatureCollection()
	intervals := []models.IntervalRecord{}
	if rows, err := reader.Traffic(ctx, cfg.Pipeline.TrafficSource); err != nil {
		if errors.Is(err, source.ErrSchemaMismatch) {
			return nil, fmt.Errorf("traffic source: %w", err)
		}
		log.Warn().Err(err).Msg("Traffic source unavailable, emitting empty collection")
	} else {
		agg := Aggregate(rows)
		trafficFC = JoinGeometry(agg.Records, segmentGeoms, agg.Classes)
		intervals = ExtractIntervals(rows)
		summary.Classes = agg.Classes
		summary.SkippedTraffic = agg.Skipped
	}
	summary.TrafficFeatures = len(trafficFC.Features)
	summary.Intervals = len(intervals)
	if len(intervals) > 0 {
		summary.MinBegin = intervals[0].Begin
		summary.MaxEnd = maxEnd(intervals)
	}

	if err := writeJSONAtomic(cfg.Data.RoadsPath(), roadsFC); err != nil {
		return nil, err
	}
	if err := writeJSONAtomic(cfg.Data.BuildingsPath(), buildingsFC); err != nil {
		return nil, err
	}
	if err := writeJSONAtomic(cfg.Data.TrafficPath(), trafficFC); err != nil {
		return nil, err
	}
	if err := writeJSONAtomic(cfg.Data.IntervalsPath(), models.IntervalList{Intervals: intervals}); err != nil {
		return nil, err
	}

	if cfg.Pipeline.NoiseSource != "" {
		if rows, err := reader.Noise(ctx, cfg.Pipeline.NoiseSource, cfg.Pipeline.NoiseVariables); err != nil {
			if errors.Is(err, source.ErrSchemaMismatch) {
				return nil, fmt.Errorf("noise source: %w", err)
			}
			log.Warn().Err(err).Msg("Noise source unavailable, skipping noise stage")
		} else {
			noiseFC, skipped := NoiseFeatures(rows, cfg.Pipeline.NoiseVariables, buildingIndex)
			summary.NoiseFeatures = len(noiseFC.Features)
			summary.SkippedNoise = skipped
			if err := writeJSONAtomic(cfg.Data.NoisePath(), noiseFC); err != nil {
				return nil, err
			}
		}
	}

	summary.Duration = time.Since(started)
	log.Info().
		Int("roads", summary.Roads).
		Int("buildings", summary.Buildings).
		Int("traffic_features", summary.TrafficFeatures).
		Int("noise_features", summary.NoiseFeatures).
		Int("intervals", summary.Intervals).
		Strs("vclasses", summary.Classes).
		Int("skipped_geometry", summary.SkippedGeometry).
		Int("skipped_traffic_rows", summary.SkippedTraffic).
		Int("skipped_noise_rows", summary.SkippedNoise).
		Str("min_begin", summary.MinBegin).
		Str("max_end", summary.MaxEnd).
		Dur("duration", summary.Duration).
		Msg("Pipeline run complete")

	return summary, nil
}

func maxEnd(intervals []models.IntervalRecord) string {
	max := ""
	for _, rec := range intervals {
		if rec.End > max {
			max = rec.End
		}
	}
	return max
}
