// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package source

import "errors"

// Sentinel errors for the two fatal failure classes of the pipeline.
// Callers match with errors.Is; everything else is recovered row by row.
var (
	// ErrSourceUnavailable indicates a raw input could not be opened or
	// parsed at all. Fatal for the roads source, degraded-to-empty for
	// the buildings, traffic and noise sources.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchemaMismatch indicates an essential column (id, geometry,
	// begin, end, PK) is absent from an input table. Always fatal: the
	// pipeline must not silently substitute defaults for these.
	ErrSchemaMismatch = errors.New("schema mismatch")
)
