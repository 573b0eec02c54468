// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package snapshot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficatlas/trafficatlas/internal/config"
)

func testDataConfig(t *testing.T) *config.DataConfig {
	t.Helper()
	return &config.DataConfig{
		Dir:       t.TempDir(),
		Buildings: "buildings.geojson",
		Roads:     "roads.geojson",
		Traffic:   "traffic_agg.geojson",
		Noise:     "noise.geojson",
		Intervals: "intervals.json",
	}
}

func writeArtifact(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const trafficFixture = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": null,
			"properties": {
				"id": "R1",
				"begin": "2024-01-01T08:00:00",
				"end": "2024-01-01T08:15:00",
				"vehicles": 11.0,
				"speed": 38.18,
				"speedRelative": null,
				"car": 9.0,
				"car_s": 40.0
			}
		},
		{
			"type": "Feature",
			"geometry": null,
			"properties": {
				"id": "R1",
				"begin": "2024-01-01T08:15:00",
				"end": "2024-01-01T08:30:00",
				"vehicles": 4.0,
				"speed": 22.0,
				"speedRelative": null,
				"car": 4.0,
				"car_s": 22.0
			}
		}
	]
}`

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg := testDataConfig(t)
	writeArtifact(t, cfg.TrafficPath(), trafficFixture)
	writeArtifact(t, cfg.RoadsPath(), `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[9.19,45.46],[9.20,45.47]]},"properties":{"id":"R1"}}]}`)
	writeArtifact(t, cfg.IntervalsPath(), `{"intervals":[{"begin":"2024-01-01T08:00:00","end":"2024-01-01T08:15:00"},{"begin":"2024-01-01T08:15:00","end":"2024-01-01T08:30:00"}]}`)

	snap, err := Load(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Len(t, snap.Traffic, 2)
	assert.Len(t, snap.Roads.Features, 1)
	assert.Empty(t, snap.Buildings.Features, "missing artifact loads as empty layer")
	assert.Empty(t, snap.Noise.Features)
	assert.Len(t, snap.Intervals, 2)

	require.NotNil(t, snap.Traffic[0].Begin)
	require.NotNil(t, snap.Traffic[0].End)
	assert.Equal(t, "2024-01-01T08:00:00", snap.Traffic[0].Begin.Format("2006-01-02T15:04:05"))
}

func TestLoad_Variables(t *testing.T) {
	t.Parallel()

	cfg := testDataConfig(t)
	writeArtifact(t, cfg.TrafficPath(), trafficFixture)

	snap, err := Load(cfg, zerolog.Nop())
	require.NoError(t, err)

	// Numeric properties only, identifier and time keys excluded, sorted.
	assert.Equal(t, []string{"car", "car_s", "speed", "vehicles"}, snap.Variables)
}

func TestLoad_GlobalStats(t *testing.T) {
	t.Parallel()

	cfg := testDataConfig(t)
	writeArtifact(t, cfg.TrafficPath(), trafficFixture)

	snap, err := Load(cfg, zerolog.Nop())
	require.NoError(t, err)

	mm := snap.GlobalMinMax("vehicles")
	require.NotNil(t, mm.Min)
	require.NotNil(t, mm.Max)
	assert.Equal(t, 4.0, *mm.Min)
	assert.Equal(t, 11.0, *mm.Max)

	// Absent variable falls back to a fresh scan.
	mm = snap.GlobalMinMax("no_such_variable")
	assert.Nil(t, mm.Min)
	assert.Nil(t, mm.Max)
}

func TestLoad_AllMissing(t *testing.T) {
	t.Parallel()

	snap, err := Load(testDataConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, snap.Traffic)
	assert.Empty(t, snap.Intervals)
	assert.Empty(t, snap.Variables)
}

func TestLoad_MalformedArtifact(t *testing.T) {
	t.Parallel()

	cfg := testDataConfig(t)
	writeArtifact(t, cfg.TrafficPath(), `{"type":"FeatureCollection","features":`)

	_, err := Load(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Base(cfg.TrafficPath()))
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	input := map[string]interface{}{
		"ok":   1.5,
		"nan":  math.NaN(),
		"inf":  math.Inf(1),
		"ninf": math.Inf(-1),
		"nested": []interface{}{
			math.NaN(),
			map[string]interface{}{"deep": math.Inf(1), "kept": "text"},
		},
	}

	Sanitize(input)

	assert.Equal(t, 1.5, input["ok"])
	assert.Nil(t, input["nan"])
	assert.Nil(t, input["inf"])
	assert.Nil(t, input["ninf"])
	nested := input["nested"].([]interface{})
	assert.Nil(t, nested[0])
	deep := nested[1].(map[string]interface{})
	assert.Nil(t, deep["deep"])
	assert.Equal(t, "text", deep["kept"])
}
