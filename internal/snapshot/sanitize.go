// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package snapshot

import "math"

// Sanitize walks a decoded JSON structure and replaces every NaN or
// infinite floating-point value with nil. NaN and Inf are not valid
// JSON and browser-side parsers reject payloads that contain them.
func Sanitize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = Sanitize(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = Sanitize(val)
		}
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return nil
		}
		return t
	case *float64:
		if t == nil || math.IsNaN(*t) || math.IsInf(*t, 0) {
			return (*float64)(nil)
		}
		return t
	default:
		return v
	}
}

// numericValue reports whether a property value is a finite number and
// returns it as a float64.
func numericValue(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
