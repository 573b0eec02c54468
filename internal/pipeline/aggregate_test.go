// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficatlas/trafficatlas/internal/source"
)

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	require.NoError(t, err)
	return &parsed
}

func f64(v float64) *float64 { return &v }

func trafficRow(t *testing.T, id, begin, end, vclass string, entered, left, speed *float64) source.TrafficRow {
	t.Helper()
	return source.TrafficRow{
		ID:      id,
		Begin:   ts(t, begin),
		End:     ts(t, end),
		VClass:  vclass,
		Entered: entered,
		Left:    left,
		Speed:   speed,
	}
}

// TestAggregate_WeightedMeans checks the canonical two-class scenario:
// car rows weigh (10+8)/2 = 9 at speed 40, truck rows weigh (2+2)/2 = 2
// at speed 30.
func TestAggregate_WeightedMeans(t *testing.T) {
	t.Parallel()

	rows := []source.TrafficRow{
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", f64(10), f64(8), f64(40)),
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "truck", f64(2), f64(2), f64(30)),
	}

	result := Aggregate(rows)
	require.Len(t, result.Records, 1)
	require.Equal(t, []string{"car", "truck"}, result.Classes)

	rec := result.Records[0]
	assert.Equal(t, "R1", rec.ID)
	assert.Equal(t, 11.0, rec.Vehicles)
	require.NotNil(t, rec.Speed)
	assert.InDelta(t, (40.0*9+30.0*2)/11.0, *rec.Speed, 1e-9)
	assert.Nil(t, rec.SpeedRelative)

	require.NotNil(t, rec.ClassVehicles["car"])
	assert.Equal(t, 9.0, *rec.ClassVehicles["car"])
	require.NotNil(t, rec.ClassSpeed["car"])
	assert.Equal(t, 40.0, *rec.ClassSpeed["car"])
	require.NotNil(t, rec.ClassVehicles["truck"])
	assert.Equal(t, 2.0, *rec.ClassVehicles["truck"])
	require.NotNil(t, rec.ClassSpeed["truck"])
	assert.Equal(t, 30.0, *rec.ClassSpeed["truck"])
}

// TestAggregate_SchemaUniformity verifies that every group carries an
// entry for every class observed anywhere in the input, null for
// classes missing from that group.
func TestAggregate_SchemaUniformity(t *testing.T) {
	t.Parallel()

	rows := []source.TrafficRow{
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", f64(4), f64(4), nil),
		trafficRow(t, "R2", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "bus", f64(1), f64(1), f64(20)),
	}

	result := Aggregate(rows)
	require.Len(t, result.Records, 2)
	require.Equal(t, []string{"bus", "car"}, result.Classes)

	for _, rec := range result.Records {
		assert.Len(t, rec.ClassVehicles, 2)
		assert.Len(t, rec.ClassSpeed, 2)
		assert.Contains(t, rec.ClassVehicles, "bus")
		assert.Contains(t, rec.ClassVehicles, "car")
	}

	var r1 AggregatedInterval
	for _, rec := range result.Records {
		if rec.ID == "R1" {
			r1 = rec
		}
	}
	assert.Nil(t, r1.ClassVehicles["bus"])
	assert.Nil(t, r1.ClassSpeed["bus"])
}

// TestAggregate_UniqueKeys verifies one output record per distinct
// (id, begin, end) regardless of how many raw rows share the key.
func TestAggregate_UniqueKeys(t *testing.T) {
	t.Parallel()

	rows := []source.TrafficRow{
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", f64(1), f64(1), nil),
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", f64(1), f64(1), nil),
		trafficRow(t, "R1", "2024-01-01T08:15:00", "2024-01-01T08:30:00", "car", f64(1), f64(1), nil),
		trafficRow(t, "R2", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", f64(1), f64(1), nil),
	}

	result := Aggregate(rows)
	require.Len(t, result.Records, 3)

	type key struct {
		id         string
		begin, end time.Time
	}
	seen := map[key]bool{}
	for _, rec := range result.Records {
		k := key{rec.ID, rec.Begin, rec.End}
		assert.False(t, seen[k], "duplicate key %v", k)
		seen[k] = true
	}
}

// TestAggregate_ZeroWeight verifies speed is reported absent, not zero,
// when the total vehicle weight of a group is zero.
func TestAggregate_ZeroWeight(t *testing.T) {
	t.Parallel()

	rows := []source.TrafficRow{
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", nil, nil, f64(50)),
	}

	result := Aggregate(rows)
	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, 0.0, rec.Vehicles)
	assert.Nil(t, rec.Speed)
	assert.Nil(t, rec.ClassSpeed["car"])
	require.NotNil(t, rec.ClassVehicles["car"])
	assert.Equal(t, 0.0, *rec.ClassVehicles["car"])
}

// TestAggregate_SkipsUnparsedTimestamps verifies rows without both
// bounds are excluded and counted.
func TestAggregate_SkipsUnparsedTimestamps(t *testing.T) {
	t.Parallel()

	rows := []source.TrafficRow{
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", f64(1), f64(1), nil),
		{ID: "R1", Begin: nil, End: ts(t, "2024-01-01T08:15:00"), VClass: "car"},
		{ID: "R1", Begin: ts(t, "2024-01-01T08:00:00"), End: nil, VClass: "car"},
	}

	result := Aggregate(rows)
	assert.Len(t, result.Records, 1)
	assert.Equal(t, 2, result.Skipped)
}

// TestAggregate_SortedOutput verifies deterministic (id, begin, end)
// ordering.
func TestAggregate_SortedOutput(t *testing.T) {
	t.Parallel()

	rows := []source.TrafficRow{
		trafficRow(t, "R2", "2024-01-01T09:00:00", "2024-01-01T09:15:00", "car", f64(1), f64(1), nil),
		trafficRow(t, "R1", "2024-01-01T09:00:00", "2024-01-01T09:15:00", "car", f64(1), f64(1), nil),
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", f64(1), f64(1), nil),
	}

	result := Aggregate(rows)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "R1", result.Records[0].ID)
	assert.Equal(t, "2024-01-01T08:00:00", result.Records[0].Begin.Format("2006-01-02T15:04:05"))
	assert.Equal(t, "R1", result.Records[1].ID)
	assert.Equal(t, "R2", result.Records[2].ID)
}

// TestExtractIntervals verifies the timeline is taken from the raw rows,
// deduplicated and sorted, independent of aggregation.
func TestExtractIntervals(t *testing.T) {
	t.Parallel()

	rows := []source.TrafficRow{
		trafficRow(t, "R9", "2024-01-01T08:15:00", "2024-01-01T08:30:00", "car", nil, nil, nil),
		trafficRow(t, "R1", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "car", nil, nil, nil),
		trafficRow(t, "R2", "2024-01-01T08:00:00", "2024-01-01T08:15:00", "truck", nil, nil, nil),
		{ID: "R3", Begin: nil, End: nil, VClass: "car"},
	}

	intervals := ExtractIntervals(rows)
	require.Len(t, intervals, 2)
	assert.Equal(t, "2024-01-01T08:00:00", intervals[0].Begin)
	assert.Equal(t, "2024-01-01T08:15:00", intervals[0].End)
	assert.Equal(t, "2024-01-01T08:15:00", intervals[1].Begin)
	assert.Equal(t, "2024-01-01T08:30:00", intervals[1].End)
}
