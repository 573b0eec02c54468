// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package pipeline

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/trafficatlas/trafficatlas/internal/models"
	"github.com/trafficatlas/trafficatlas/internal/source"
)

// NoiseFeatures joins noise measurement rows onto building geometry by
// PK. Every row with a parseable begin and end is kept, geometry going
// null when the PK has no building. Rows are sorted by (PK, begin, end)
// and deduplicated on that key keeping the last occurrence.
func NoiseFeatures(rows []source.NoiseRow, variables []string, geoms map[string]orb.Geometry) (*models.FeatureCollection, int) {
	type keyed struct {
		row source.NoiseRow
		pos int
	}
	skipped := 0
	valid := make([]keyed, 0, len(rows))
	for i, row := range rows {
		if row.Begin == nil || row.End == nil {
			skipped++
			continue
		}
		valid = append(valid, keyed{row: row, pos: i})
	}

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i].row, valid[j].row
		if a.PK != b.PK {
			return a.PK < b.PK
		}
		if !a.Begin.Equal(*b.Begin) {
			return a.Begin.Before(*b.Begin)
		}
		if !a.End.Equal(*b.End) {
			return a.End.Before(*b.End)
		}
		return valid[i].pos < valid[j].pos
	})

	fc := models.NewFeatureCollection()
	for i, kr := range valid {
		// Duplicate keys keep the last row in file order; the stable
		// sort above leaves that row adjacent and last in its run.
		if i+1 < len(valid) && sameNoiseKey(kr.row, valid[i+1].row) {
			continue
		}
		row := kr.row
		props := map[string]interface{}{
			"PK":    row.PK,
			"begin": row.Begin.Format(models.TimeLayout),
			"end":   row.End.Format(models.TimeLayout),
		}
		for vi, name := range variables {
			props[name] = nullable(row.Values[vi])
		}
		fc.Features = append(fc.Features, models.NewFeature(geoms[row.PK], props))
	}
	return fc, skipped
}

func sameNoiseKey(a, b source.NoiseRow) bool {
	return a.PK == b.PK && a.Begin.Equal(*b.Begin) && a.End.Equal(*b.End)
}
