// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package pipeline

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficatlas/trafficatlas/internal/source"
)

func noiseRow(t *testing.T, pk, begin, end string, values ...*float64) source.NoiseRow {
	t.Helper()
	return source.NoiseRow{
		PK:     pk,
		Begin:  ts(t, begin),
		End:    ts(t, end),
		Values: values,
	}
}

func TestNoiseFeatures_JoinAndDedupe(t *testing.T) {
	t.Parallel()

	geoms := map[string]orb.Geometry{
		"B1": orb.Polygon{{{9.19, 45.46}, {9.20, 45.46}, {9.20, 45.47}, {9.19, 45.46}}},
	}

	rows := []source.NoiseRow{
		noiseRow(t, "B1", "2024-01-01T08:00:00", "2024-01-01T09:00:00", f64(61)),
		// Duplicate key: the later row wins.
		noiseRow(t, "B1", "2024-01-01T08:00:00", "2024-01-01T09:00:00", f64(63)),
		noiseRow(t, "B2", "2024-01-01T08:00:00", "2024-01-01T09:00:00", f64(55)),
		{PK: "B3", Begin: nil, End: ts(t, "2024-01-01T09:00:00"), Values: []*float64{f64(58)}},
	}

	fc, skipped := NoiseFeatures(rows, []string{"Lden"}, geoms)
	assert.Equal(t, 1, skipped)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "B1", first.Properties["PK"])
	assert.Equal(t, 63.0, first.Properties["Lden"], "dedupe keeps the last row")
	assert.NotNil(t, first.Geometry)

	second := fc.Features[1]
	assert.Equal(t, "B2", second.Properties["PK"])
	assert.Equal(t, 55.0, second.Properties["Lden"])
	assert.Nil(t, second.Geometry, "noise row without a building keeps null geometry")
}

func TestNoiseFeatures_SortedByKey(t *testing.T) {
	t.Parallel()

	rows := []source.NoiseRow{
		noiseRow(t, "B2", "2024-01-01T08:00:00", "2024-01-01T09:00:00"),
		noiseRow(t, "B1", "2024-01-01T09:00:00", "2024-01-01T10:00:00"),
		noiseRow(t, "B1", "2024-01-01T08:00:00", "2024-01-01T09:00:00"),
	}

	fc, skipped := NoiseFeatures(rows, nil, nil)
	assert.Zero(t, skipped)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "B1", fc.Features[0].Properties["PK"])
	assert.Equal(t, "2024-01-01T08:00:00", fc.Features[0].Properties["begin"])
	assert.Equal(t, "B1", fc.Features[1].Properties["PK"])
	assert.Equal(t, "2024-01-01T09:00:00", fc.Features[1].Properties["begin"])
	assert.Equal(t, "B2", fc.Features[2].Properties["PK"])
}
