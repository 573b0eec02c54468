// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package source

import "time"

// SegmentRow is one record from the roads source: a stable segment id
// and its WKB-encoded geometry. Geometry may be nil when the source
// carries an empty cell; such rows are skipped downstream.
type SegmentRow struct {
	ID       string
	Geometry []byte
}

// BuildingRow is one record from the buildings source.
type BuildingRow struct {
	PK       string
	Geometry []byte
	Height   *float64
	Pop      *float64
}

// TrafficRow is one measurement for one segment over one sub-interval
// and one vehicle class. Numeric fields are pointers: a nil value means
// the cell was missing or non-numeric and is excluded from weighted
// means rather than treated as zero.
type TrafficRow struct {
	ID            string
	Begin         *time.Time
	End           *time.Time
	VClass        string
	Entered       *float64
	Left          *float64
	Speed         *float64
	SpeedRelative *float64
}

// NoiseRow is one noise measurement attached to a building PK over a
// time interval, carrying the configured measurement variables in
// column order.
type NoiseRow struct {
	PK     string
	Begin  *time.Time
	End    *time.Time
	Values []*float64
}
