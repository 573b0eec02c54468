// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package models

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is a single GeoJSON feature with free-form properties.
//
// Properties are kept as a map rather than a fixed struct because the
// traffic layer carries one count and one speed column per vehicle class
// observed in the raw data; the column set is only known at runtime.
// Geometry is a pointer so that traffic measurements without a matching
// road segment serialize as "geometry": null instead of being dropped.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection returns an empty FeatureCollection ready to append to.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []*Feature{},
	}
}

// NewFeature builds a Feature from an orb geometry and properties.
// A nil geometry is preserved as a null GeoJSON geometry.
func NewFeature(g orb.Geometry, props map[string]interface{}) *Feature {
	f := &Feature{
		Type:       "Feature",
		Properties: props,
	}
	if g != nil {
		f.Geometry = geojson.NewGeometry(g)
	}
	return f
}

// TrafficMeta is the metadata block attached to the traffic layer
// response: which variable the client asked for, the min/max used for
// color scaling, how many features matched, and which scope produced
// the bounds.
type TrafficMeta struct {
	Var   string   `json:"var"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Count int      `json:"count"`
	Scope string   `json:"scope"`
}

// TrafficCollection is a FeatureCollection plus the traffic metadata block.
type TrafficCollection struct {
	Type     string      `json:"type"`
	Features []*Feature  `json:"features"`
	Meta     TrafficMeta `json:"meta"`
}
