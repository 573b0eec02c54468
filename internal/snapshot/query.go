// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package snapshot

import (
	"strings"
	"time"

	"github.com/trafficatlas/trafficatlas/internal/models"
)

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 timestamp accepting either a space or a
// 'T' date/time separator and an optional trailing 'Z'. It returns nil
// for anything unparseable; callers treat that as an absent bound.
func ParseISO(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.Replace(s, " ", "T", 1)
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// FilterByInterval returns the features whose interval overlaps
// [start, end] with inclusive bounds. With neither bound supplied the
// input passes through unfiltered. When filtering, a feature lacking
// both bounds is excluded, and each comparison applies only when both
// its sides exist: a feature is dropped if its end precedes start or
// its begin follows end.
func FilterByInterval(features []TrafficFeature, start, end *time.Time) []TrafficFeature {
	if start == nil && end == nil {
		return features
	}

	out := make([]TrafficFeature, 0, len(features))
	for _, f := range features {
		if f.Begin == nil && f.End == nil {
			continue
		}
		if start != nil && f.End != nil && f.End.Before(*start) {
			continue
		}
		if end != nil && f.Begin != nil && f.Begin.After(*end) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MinMaxOf scans the named variable across a feature set, ignoring
// non-numeric, NaN, and infinite values. Both bounds are nil when no
// valid value exists.
func MinMaxOf(features []TrafficFeature, variable string) models.MinMax {
	var mm models.MinMax
	for _, f := range features {
		v, ok := numericValue(f.Feature.Properties[variable])
		if !ok {
			continue
		}
		if mm.Min == nil || v < *mm.Min {
			value := v
			mm.Min = &value
		}
		if mm.Max == nil || v > *mm.Max {
			value := v
			mm.Max = &value
		}
	}
	return mm
}

// LatestInterval returns the bounds of the feature with the maximum end
// timestamp among features with both bounds parseable. Ties keep the
// first feature encountered.
func LatestInterval(features []TrafficFeature) models.IntervalBounds {
	var bounds models.IntervalBounds
	var latest *time.Time
	for _, f := range features {
		if f.Begin == nil || f.End == nil {
			continue
		}
		if latest != nil && !f.End.After(*latest) {
			continue
		}
		begin := f.Begin.Format(models.TimeLayout)
		end := f.End.Format(models.TimeLayout)
		latest = f.End
		bounds.Begin = &begin
		bounds.End = &end
	}
	return bounds
}
