// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Package pipeline turns the raw parquet tables into the GeoJSON and
// interval artifacts served by the query service.
package pipeline

import (
	"sort"
	"time"

	"github.com/trafficatlas/trafficatlas/internal/models"
	"github.com/trafficatlas/trafficatlas/internal/source"
)

// AggregatedInterval is one aggregated (id, begin, end) group.
//
// Vehicles is the sum of per-row estimates (entered+left)/2, missing
// counts contributing zero. Speed and SpeedRelative are vehicle-weighted
// means, nil when the total weight is zero. The per-class maps carry an
// entry for every class observed anywhere in the input; classes with no
// rows in this group map to nil so the output schema stays uniform.
type AggregatedInterval struct {
	ID            string
	Begin         time.Time
	End           time.Time
	Vehicles      float64
	Speed         *float64
	SpeedRelative *float64
	ClassVehicles map[string]*float64
	ClassSpeed    map[string]*float64
}

// AggregateResult bundles the aggregated groups with the dataset-wide
// class name set and the per-stage skip count.
type AggregateResult struct {
	Records []AggregatedInterval
	Classes []string
	Skipped int
}

type groupKey struct {
	id         string
	begin, end int64
}

type weightedMean struct {
	num, den float64
}

func (w *weightedMean) add(value *float64, weight float64) {
	if value == nil {
		return
	}
	w.num += *value * weight
	w.den += weight
}

func (w *weightedMean) mean() *float64 {
	if w.den == 0 {
		return nil
	}
	m := w.num / w.den
	return &m
}

type classAccum struct {
	weight float64
	speed  weightedMean
}

type groupAccum struct {
	id         string
	begin, end time.Time
	weight     float64
	speed      weightedMean
	speedRel   weightedMean
	classes    map[string]*classAccum
}

// rowWeight is the per-row vehicle estimate (entered + left) / 2 with
// missing counts treated as zero.
func rowWeight(row source.TrafficRow) float64 {
	var entered, left float64
	if row.Entered != nil {
		entered = *row.Entered
	}
	if row.Left != nil {
		left = *row.Left
	}
	return (entered + left) / 2
}

// Aggregate groups traffic rows by (id, begin, end) and computes the
// weighted metrics. Rows without a parseable begin or end are skipped.
// Output is sorted by (id, begin, end) so repeated runs over the same
// input emit byte-identical artifacts.
func Aggregate(rows []source.TrafficRow) AggregateResult {
	groups := make(map[groupKey]*groupAccum)
	classSet := make(map[string]bool)
	skipped := 0

	for _, row := range rows {
		if row.Begin == nil || row.End == nil {
			skipped++
			continue
		}
		classSet[row.VClass] = true

		key := groupKey{id: row.ID, begin: row.Begin.Unix(), end: row.End.Unix()}
		acc, ok := groups[key]
		if !ok {
			acc = &groupAccum{
				id:      row.ID,
				begin:   *row.Begin,
				end:     *row.End,
				classes: make(map[string]*classAccum),
			}
			groups[key] = acc
		}

		w := rowWeight(row)
		acc.weight += w
		acc.speed.add(row.Speed, w)
		acc.speedRel.add(row.SpeedRelative, w)

		cls, ok := acc.classes[row.VClass]
		if !ok {
			cls = &classAccum{}
			acc.classes[row.VClass] = cls
		}
		cls.weight += w
		cls.speed.add(row.Speed, w)
	}

	classes := make([]string, 0, len(classSet))
	for name := range classSet {
		classes = append(classes, name)
	}
	sort.Strings(classes)

	records := make([]AggregatedInterval, 0, len(groups))
	for _, acc := range groups {
		rec := AggregatedInterval{
			ID:            acc.id,
			Begin:         acc.begin,
			End:           acc.end,
			Vehicles:      acc.weight,
			Speed:         acc.speed.mean(),
			SpeedRelative: acc.speedRel.mean(),
			ClassVehicles: make(map[string]*float64, len(classes)),
			ClassSpeed:    make(map[string]*float64, len(classes)),
		}
		for _, name := range classes {
			cls, ok := acc.classes[name]
			if !ok {
				rec.ClassVehicles[name] = nil
				rec.ClassSpeed[name] = nil
				continue
			}
			count := cls.weight
			rec.ClassVehicles[name] = &count
			rec.ClassSpeed[name] = cls.speed.mean()
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if !a.Begin.Equal(b.Begin) {
			return a.Begin.Before(b.Begin)
		}
		return a.End.Before(b.End)
	})

	return AggregateResult{Records: records, Classes: classes, Skipped: skipped}
}

// ExtractIntervals returns the sorted, deduplicated (begin, end) pairs
// observed in the raw traffic rows. The timeline is taken from the raw
// source rather than the aggregated output so it survives even when
// every segment geometry is missing.
func ExtractIntervals(rows []source.TrafficRow) []models.IntervalRecord {
	type key struct{ begin, end int64 }
	seen := make(map[key]models.IntervalRecord)
	for _, row := range rows {
		if row.Begin == nil || row.End == nil {
			continue
		}
		k := key{begin: row.Begin.Unix(), end: row.End.Unix()}
		if _, ok := seen[k]; !ok {
			seen[k] = models.IntervalRecord{
				Begin: row.Begin.Format(models.TimeLayout),
				End:   row.End.Format(models.TimeLayout),
			}
		}
	}

	intervals := make([]models.IntervalRecord, 0, len(seen))
	for _, rec := range seen {
		intervals = append(intervals, rec)
	}
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Begin != intervals[j].Begin {
			return intervals[i].Begin < intervals[j].Begin
		}
		return intervals[i].End < intervals[j].End
	})
	return intervals
}
