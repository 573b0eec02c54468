// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package models

// TimeLayout is the wire format for interval timestamps: ISO-8601 at
// second precision with no timezone suffix, matching the values the
// pipeline writes into feature properties.
const TimeLayout = "2006-01-02T15:04:05"

// IntervalRecord is one distinct (begin, end) pair observed in the raw
// traffic source. The full sorted set forms the dataset timeline that
// clients use to build a time slider.
type IntervalRecord struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// IntervalList is the intervals artifact: the deduplicated timeline,
// sorted ascending by begin then end.
type IntervalList struct {
	Intervals []IntervalRecord `json:"intervals"`
}

// MinMax holds the bounds of a numeric variable. Nil means no valid
// value exists, which serializes as JSON null.
type MinMax struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// IntervalBounds is the response of the latest-interval lookup. Both
// fields are null when no feature carries a parseable interval.
type IntervalBounds struct {
	Begin *string `json:"begin"`
	End   *string `json:"end"`
}
