// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGaussBoagaToWGS84_Milan checks a point in central Milan. The
// expected coordinates were produced with a reference EPSG:3003
// transform; the tolerance absorbs the datum-shift approximation.
func TestGaussBoagaToWGS84_Milan(t *testing.T) {
	t.Parallel()

	p := GaussBoagaToWGS84(orb.Point{1514815, 5034639})

	assert.InDelta(t, 9.189, p[0], 0.01, "longitude")
	assert.InDelta(t, 45.464, p[1], 0.01, "latitude")
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	points := []orb.Point{
		{1514815, 5034639}, // Milan
		{1468000, 5140000}, // Lombardy north
		{1550000, 4990000}, // Po valley south-east
	}

	for _, original := range points {
		geographic := GaussBoagaToWGS84(original)
		back := WGS84ToGaussBoaga(geographic)
		assert.InDelta(t, original[0], back[0], 0.01, "easting for %v", original)
		assert.InDelta(t, original[1], back[1], 0.01, "northing for %v", original)
	}
}

func TestReproject_PreservesShape(t *testing.T) {
	t.Parallel()

	line := orb.LineString{
		{1514815, 5034639},
		{1514915, 5034739},
		{1515015, 5034839},
	}

	out := Reproject(line.Clone())
	projected, ok := out.(orb.LineString)
	require.True(t, ok, "geometry type preserved")
	require.Len(t, projected, len(line), "vertex count preserved")

	// Vertex order must survive: northing increases along the input, so
	// latitude must increase along the output.
	assert.Less(t, projected[0][1], projected[1][1])
	assert.Less(t, projected[1][1], projected[2][1])
}

func TestReproject_Polygon(t *testing.T) {
	t.Parallel()

	poly := orb.Polygon{{
		{1514815, 5034639},
		{1514915, 5034639},
		{1514915, 5034739},
		{1514815, 5034639},
	}}

	out := Reproject(poly.Clone())
	projected, ok := out.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, projected, 1)
	assert.Len(t, projected[0], 4)

	for _, p := range projected[0] {
		assert.InDelta(t, 9.19, p[0], 0.05)
		assert.InDelta(t, 45.46, p[1], 0.05)
	}
}
