// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

// Package config defines the application configuration for both binaries.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, then an optional YAML config
// file, then built-in defaults. See koanf.go for the loader.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/trafficatlas/trafficatlas/internal/validation"
)

// Config is the root configuration shared by the preparation pipeline
// and the query service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Data     DataConfig     `koanf:"data"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings for the query service.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed browser origins. The map client is a
	// separate static page, so cross-origin requests are the norm.
	CORSOrigins []string `koanf:"cors_origins"`

	// Rate limiting (requests per window per client IP).
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// DataConfig locates the pipeline output artifacts consumed by the
// query service. File names are relative to Dir.
type DataConfig struct {
	Dir       string `koanf:"dir" validate:"required"`
	Buildings string `koanf:"buildings" validate:"required"`
	Roads     string `koanf:"roads" validate:"required"`
	Traffic   string `koanf:"traffic" validate:"required"`
	Noise     string `koanf:"noise" validate:"required"`
	Intervals string `koanf:"intervals" validate:"required"`
}

// BuildingsPath returns the absolute location of the buildings layer.
func (d *DataConfig) BuildingsPath() string { return filepath.Join(d.Dir, d.Buildings) }

// RoadsPath returns the absolute location of the roads layer.
func (d *DataConfig) RoadsPath() string { return filepath.Join(d.Dir, d.Roads) }

// TrafficPath returns the absolute location of the traffic layer.
func (d *DataConfig) TrafficPath() string { return filepath.Join(d.Dir, d.Traffic) }

// NoisePath returns the absolute location of the noise layer.
func (d *DataConfig) NoisePath() string { return filepath.Join(d.Dir, d.Noise) }

// IntervalsPath returns the absolute location of the intervals list.
func (d *DataConfig) IntervalsPath() string { return filepath.Join(d.Dir, d.Intervals) }

// PipelineConfig holds the raw source locations and tuning options for
// the preparation pipeline.
type PipelineConfig struct {
	// Parquet sources. The roads source is mandatory: without segment
	// geometry none of the layers are meaningful. Buildings, traffic and
	// noise degrade to empty artifacts when missing.
	RoadsSource     string `koanf:"roads_source"`
	BuildingsSource string `koanf:"buildings_source"`
	TrafficSource   string `koanf:"traffic_source"`
	NoiseSource     string `koanf:"noise_source"`

	// NoiseVariables lists the measurement columns to carry from the
	// noise source (e.g. Lden, LAeq).
	NoiseVariables []string `koanf:"noise_variables"`

	// Reproject toggles the EPSG:3003 -> WGS84 transform. Disable only
	// for sources already in geographic coordinates.
	Reproject bool `koanf:"reproject"`

	// DuckDB tuning for the source reader.
	Threads   int    `koanf:"threads" validate:"min=0"`
	MaxMemory string `koanf:"max_memory"`
}

// LoggingConfig controls the shared zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for structural errors. It is called
// by the loader; a failed validation aborts startup.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
