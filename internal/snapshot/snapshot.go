// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Package snapshot loads the pipeline's emitted artifacts into an
// immutable in-memory dataset and answers the interval queries over it.
//
// The snapshot is built once at process start and never mutated, so any
// number of concurrent readers may query it without locking. A new
// pipeline run requires a service restart.
package snapshot

import (
	"fmt"
	"os"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/trafficatlas/trafficatlas/internal/config"
	"github.com/trafficatlas/trafficatlas/internal/models"
)

// variableExclusions are the identifier and time keys never offered as
// display variables.
var variableExclusions = map[string]bool{
	"id":    true,
	"begin": true,
	"end":   true,
	"start": true,
}

// TrafficFeature pairs a traffic feature with its parsed interval
// bounds so the overlap test does not re-parse timestamps per request.
type TrafficFeature struct {
	Feature *models.Feature
	Begin   *time.Time
	End     *time.Time
}

// Snapshot is the immutable in-memory dataset served by the API.
type Snapshot struct {
	Buildings *models.FeatureCollection
	Roads     *models.FeatureCollection
	Noise     *models.FeatureCollection
	Traffic   []TrafficFeature

	Intervals []models.IntervalRecord
	Variables []string

	globalStats map[string]models.MinMax
	loadedAt    time.Time
}

// Load reads all artifacts and builds the snapshot. A missing artifact
// file yields an empty layer so the service can start on partial
// pipeline output; a present but unparseable file is an error.
func Load(cfg *config.DataConfig, log zerolog.Logger) (*Snapshot, error) {
	buildings, err := loadCollection(cfg.BuildingsPath(), log)
	if err != nil {
		return nil, err
	}
	roads, err := loadCollection(cfg.RoadsPath(), log)
	if err != nil {
		return nil, err
	}
	noise, err := loadCollection(cfg.NoisePath(), log)
	if err != nil {
		return nil, err
	}
	trafficFC, err := loadCollection(cfg.TrafficPath(), log)
	if err != nil {
		return nil, err
	}
	intervals, err := loadIntervals(cfg.IntervalsPath(), log)
	if err != nil {
		return nil, err
	}

	traffic := make([]TrafficFeature, 0, len(trafficFC.Features))
	for _, f := range trafficFC.Features {
		traffic = append(traffic, TrafficFeature{
			Feature: f,
			Begin:   parseProperty(f.Properties, "begin"),
			End:     parseProperty(f.Properties, "end"),
		})
	}

	s := &Snapshot{
		Buildings: buildings,
		Roads:     roads,
		Noise:     noise,
		Traffic:   traffic,
		Intervals: intervals,
		Variables: listVariables(trafficFC.Features),
		loadedAt:  time.Now(),
	}

	s.globalStats = make(map[string]models.MinMax, len(s.Variables))
	for _, name := range s.Variables {
		s.globalStats[name] = MinMaxOf(traffic, name)
	}

	log.Info().
		Int("buildings", len(buildings.Features)).
		Int("roads", len(roads.Features)).
		Int("noise", len(noise.Features)).
		Int("traffic", len(traffic)).
		Int("intervals", len(intervals)).
		Strs("variables", s.Variables).
		Msg("Snapshot loaded")
	return s, nil
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// GlobalMinMax returns the precomputed whole-dataset bounds for a
// variable, computing them fresh when the variable is absent from the
// cache.
func (s *Snapshot) GlobalMinMax(variable string) models.MinMax {
	if mm, ok := s.globalStats[variable]; ok {
		return mm
	}
	return MinMaxOf(s.Traffic, variable)
}

func loadCollection(path string, log zerolog.Logger) (*models.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Artifact missing, serving empty layer")
			return models.NewFeatureCollection(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc models.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if fc.Type == "" {
		fc.Type = "FeatureCollection"
	}
	if fc.Features == nil {
		fc.Features = []*models.Feature{}
	}
	for _, f := range fc.Features {
		Sanitize(f.Properties)
	}
	return &fc, nil
}

func loadIntervals(path string, log zerolog.Logger) ([]models.IntervalRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Intervals artifact missing, serving empty timeline")
			return []models.IntervalRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var list models.IntervalList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if list.Intervals == nil {
		list.Intervals = []models.IntervalRecord{}
	}
	return list.Intervals, nil
}

// listVariables inspects one representative feature and returns the
// numeric property names, excluding identifier and time keys, sorted
// for stable client ordering.
func listVariables(features []*models.Feature) []string {
	if len(features) == 0 {
		return []string{}
	}

	names := []string{}
	for name, value := range features[0].Properties {
		if variableExclusions[name] {
			continue
		}
		if _, ok := numericValue(value); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func parseProperty(props map[string]interface{}, key string) *time.Time {
	s, ok := props[key].(string)
	if !ok {
		return nil
	}
	return ParseISO(s)
}
