// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package pipeline

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/trafficatlas/trafficatlas/internal/geo"
	"github.com/trafficatlas/trafficatlas/internal/models"
	"github.com/trafficatlas/trafficatlas/internal/source"
)

// decodeGeometry unmarshals WKB and optionally reprojects to WGS84.
func decodeGeometry(raw []byte, reproject bool) (orb.Geometry, error) {
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	if reproject {
		g = geo.Reproject(g)
	}
	return g, nil
}

// SegmentFeatures builds the roads collection plus a geometry index by
// segment id for the traffic join. Rows with missing or undecodable
// geometry are skipped and counted; output order follows input order.
func SegmentFeatures(rows []source.SegmentRow, reproject bool) (*models.FeatureCollection, map[string]orb.Geometry, int) {
	fc := models.NewFeatureCollection()
	index := make(map[string]orb.Geometry, len(rows))
	skipped := 0

	for _, row := range rows {
		if len(row.Geometry) == 0 {
			skipped++
			continue
		}
		g, err := decodeGeometry(row.Geometry, reproject)
		if err != nil {
			skipped++
			continue
		}
		index[row.ID] = g
		fc.Features = append(fc.Features, models.NewFeature(g, map[string]interface{}{
			"id": row.ID,
		}))
	}
	return fc, index, skipped
}

// BuildingFeatures builds the buildings collection plus a geometry index
// by PK for the noise join.
func BuildingFeatures(rows []source.BuildingRow, reproject bool) (*models.FeatureCollection, map[string]orb.Geometry, int) {
	fc := models.NewFeatureCollection()
	index := make(map[string]orb.Geometry, len(rows))
	skipped := 0

	for _, row := range rows {
		if len(row.Geometry) == 0 {
			skipped++
			continue
		}
		g, err := decodeGeometry(row.Geometry, reproject)
		if err != nil {
			skipped++
			continue
		}
		index[row.PK] = g
		fc.Features = append(fc.Features, models.NewFeature(g, map[string]interface{}{
			"PK":     row.PK,
			"HEIGHT": nullable(row.Height),
			"POP":    nullable(row.Pop),
		}))
	}
	return fc, index, skipped
}

// JoinGeometry attaches segment geometry to the aggregated intervals.
// A group whose id has no geometry keeps a null geometry rather than
// being dropped, so the temporal timeline stays complete.
func JoinGeometry(records []AggregatedInterval, geoms map[string]orb.Geometry, classes []string) *models.FeatureCollection {
	fc := models.NewFeatureCollection()
	for _, rec := range records {
		props := map[string]interface{}{
			"id":            rec.ID,
			"begin":         rec.Begin.Format(models.TimeLayout),
			"end":           rec.End.Format(models.TimeLayout),
			"vehicles":      rec.Vehicles,
			"speed":         nullable(rec.Speed),
			"speedRelative": nullable(rec.SpeedRelative),
		}
		for _, name := range classes {
			props[name] = nullable(rec.ClassVehicles[name])
			props[name+"_s"] = nullable(rec.ClassSpeed[name])
		}
		fc.Features = append(fc.Features, models.NewFeature(geoms[rec.ID], props))
	}
	return fc
}

// nullable flattens an optional float into a JSON-null-able value.
func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
