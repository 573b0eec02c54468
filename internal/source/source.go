// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Package source reads the raw parquet tables through DuckDB.
//
// An in-memory DuckDB instance scans each parquet file with
// read_parquet(), which gives the pipeline typed columns, TRY_CAST
// coercion for dirty numeric/timestamp cells, and a DESCRIBE-based
// schema check, without loading any query engine of our own.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/trafficatlas/trafficatlas/internal/config"
)

// Reader provides typed access to the raw parquet sources.
type Reader struct {
	conn *sql.DB
}

// NewReader opens an in-memory DuckDB instance tuned per the pipeline
// configuration.
func NewReader(cfg *config.PipelineConfig) (*Reader, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "2GB"
	}

	// Auto-install/auto-load stay disabled: read_parquet is built in and
	// restricted networks must not stall the run.
	connStr := fmt.Sprintf(":memory:?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return &Reader{conn: conn}, nil
}

// Close releases the DuckDB instance.
func (r *Reader) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// quotePath escapes a file path for embedding in a single-quoted SQL
// string literal. read_parquet does not accept bound parameters on all
// driver versions, so the path is inlined.
func quotePath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", "''") + "'"
}

// columns returns the column names of a parquet file.
func (r *Reader) columns(ctx context.Context, path string) (map[string]bool, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}

	query := fmt.Sprintf("SELECT column_name FROM (DESCRIBE SELECT * FROM read_parquet(%s))", quotePath(path))
	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	return cols, nil
}

// requireColumns verifies that every essential column is present.
func requireColumns(cols map[string]bool, path string, required ...string) error {
	var missing []string
	for _, name := range required {
		if !cols[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing required columns: %s",
			ErrSchemaMismatch, path, strings.Join(missing, ", "))
	}
	return nil
}

// Segments reads the roads source. Row order follows file order.
func (r *Reader) Segments(ctx context.Context, path string) ([]SegmentRow, error) {
	cols, err := r.columns(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, path, "id", "geometry"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT CAST(id AS VARCHAR), geometry FROM read_parquet(%s)`, quotePath(path))
	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	defer rows.Close()

	var out []SegmentRow
	for rows.Next() {
		var row SegmentRow
		var geometry []byte
		if err := rows.Scan(&row.ID, &geometry); err != nil {
			return nil, fmt.Errorf("failed to scan segment row: %w", err)
		}
		// Copy: the driver may reuse the scan buffer between rows.
		row.Geometry = append([]byte(nil), geometry...)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	return out, nil
}

// Buildings reads the buildings source. Row order follows file order.
func (r *Reader) Buildings(ctx context.Context, path string) ([]BuildingRow, error) {
	cols, err := r.columns(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, path, "PK", "geometry"); err != nil {
		return nil, err
	}

	// Height and population are display attributes, not essential
	// columns; absent columns degrade to null properties.
	height, pop := "NULL", "NULL"
	if cols["HEIGHT"] {
		height = `TRY_CAST("HEIGHT" AS DOUBLE)`
	}
	if cols["POP"] {
		pop = `TRY_CAST("POP" AS DOUBLE)`
	}
	query := fmt.Sprintf(`SELECT CAST("PK" AS VARCHAR), geometry, %s, %s FROM read_parquet(%s)`,
		height, pop, quotePath(path))

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	defer rows.Close()

	var out []BuildingRow
	for rows.Next() {
		var row BuildingRow
		var geometry []byte
		var height, pop sql.NullFloat64
		if err := rows.Scan(&row.PK, &geometry, &height, &pop); err != nil {
			return nil, fmt.Errorf("failed to scan building row: %w", err)
		}
		row.Geometry = append([]byte(nil), geometry...)
		row.Height = nullableFloat(height)
		row.Pop = nullableFloat(pop)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	return out, nil
}

// Traffic reads the traffic measurement source. Timestamps and numeric
// measurements are coerced with TRY_CAST; unparseable cells surface as
// nil and are handled by the aggregation stage.
func (r *Reader) Traffic(ctx context.Context, path string) ([]TrafficRow, error) {
	cols, err := r.columns(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, path, "id", "begin", "end", "vclass"); err != nil {
		return nil, err
	}

	measurement := func(name string) string {
		if cols[name] {
			return fmt.Sprintf(`TRY_CAST("%s" AS DOUBLE)`, name)
		}
		return "NULL"
	}

	query := fmt.Sprintf(`SELECT CAST(id AS VARCHAR),
		TRY_CAST("begin" AS TIMESTAMP), TRY_CAST("end" AS TIMESTAMP),
		COALESCE(CAST(vclass AS VARCHAR), ''), %s, %s, %s, %s
		FROM read_parquet(%s)`,
		measurement("entered"), measurement("left"),
		measurement("speed"), measurement("speedRelative"),
		quotePath(path))

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	defer rows.Close()

	var out []TrafficRow
	for rows.Next() {
		var row TrafficRow
		var begin, end sql.NullTime
		var entered, left, speed, speedRel sql.NullFloat64
		if err := rows.Scan(&row.ID, &begin, &end, &row.VClass,
			&entered, &left, &speed, &speedRel); err != nil {
			return nil, fmt.Errorf("failed to scan traffic row: %w", err)
		}
		row.Begin = nullableTime(begin)
		row.End = nullableTime(end)
		row.Entered = nullableFloat(entered)
		row.Left = nullableFloat(left)
		row.Speed = nullableFloat(speed)
		row.SpeedRelative = nullableFloat(speedRel)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	return out, nil
}

// Noise reads the noise measurement source with the configured variable
// columns. Each requested variable is an essential column, matching the
// strictness of the historical preparation tooling.
func (r *Reader) Noise(ctx context.Context, path string, variables []string) ([]NoiseRow, error) {
	cols, err := r.columns(ctx, path)
	if err != nil {
		return nil, err
	}
	required := append([]string{"PK", "begin", "end"}, variables...)
	if err := requireColumns(cols, path, required...); err != nil {
		return nil, err
	}

	selects := make([]string, 0, len(variables))
	for _, v := range variables {
		selects = append(selects, fmt.Sprintf(`TRY_CAST("%s" AS DOUBLE)`, strings.ReplaceAll(v, `"`, `""`)))
	}
	varList := ""
	if len(selects) > 0 {
		varList = ", " + strings.Join(selects, ", ")
	}

	query := fmt.Sprintf(`SELECT CAST("PK" AS VARCHAR),
		TRY_CAST("begin" AS TIMESTAMP), TRY_CAST("end" AS TIMESTAMP)%s
		FROM read_parquet(%s)`, varList, quotePath(path))

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	defer rows.Close()

	var out []NoiseRow
	for rows.Next() {
		row := NoiseRow{Values: make([]*float64, len(variables))}
		var begin, end sql.NullTime
		values := make([]sql.NullFloat64, len(variables))

		dest := []interface{}{&row.PK, &begin, &end}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan noise row: %w", err)
		}
		row.Begin = nullableTime(begin)
		row.End = nullableTime(end)
		for i := range values {
			row.Values[i] = nullableFloat(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	return out, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
