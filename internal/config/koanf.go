// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/trafficatlas/config.yaml",
	"/etc/trafficatlas/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              4326, // EPSG:4326, the CRS every layer is served in
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Data: DataConfig{
			Dir:       "./data",
			Buildings: "buildings.geojson",
			Roads:     "roads.geojson",
			Traffic:   "traffic_agg.geojson",
			Noise:     "noise.geojson",
			Intervals: "intervals.json",
		},
		Pipeline: PipelineConfig{
			RoadsSource:     "GEOM_V1.parquet",
			BuildingsSource: "BUILDINGS_GEOM_v1.parquet",
			TrafficSource:   "traffic_res.parquet",
			NoiseSource:     "",
			NoiseVariables:  []string{},
			Reproject:       true,
			Threads:         0, // 0 = runtime.NumCPU()
			MaxMemory:       "2GB",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values above
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars arrive as strings; convert known slice fields.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when they arrive from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"pipeline.noise_variables",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults): nothing to do.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envKeyMap maps environment variable names to koanf config paths.
// Unknown variables are ignored so unrelated environment noise cannot
// leak into the configuration.
var envKeyMap = map[string]string{
	"HTTP_HOST":           "server.host",
	"HTTP_PORT":           "server.port",
	"HTTP_TIMEOUT":        "server.timeout",
	"CORS_ORIGINS":        "server.cors_origins",
	"RATE_LIMIT_REQS":     "server.rate_limit_reqs",
	"RATE_LIMIT_WINDOW":   "server.rate_limit_window",
	"RATE_LIMIT_DISABLED": "server.rate_limit_disabled",

	"DATA_DIR":            "data.dir",
	"BUILDINGS_GEOJSON":   "data.buildings",
	"ROADS_GEOJSON":       "data.roads",
	"TRAFFIC_GEOJSON":     "data.traffic",
	"NOISE_GEOJSON":       "data.noise",
	"INTERVALS_JSON":      "data.intervals",

	"ROADS_PARQUET":     "pipeline.roads_source",
	"BUILDINGS_PARQUET": "pipeline.buildings_source",
	"TRAFFIC_PARQUET":   "pipeline.traffic_source",
	"NOISE_PARQUET":     "pipeline.noise_source",
	"NOISE_VARIABLES":   "pipeline.noise_variables",
	"REPROJECT":         "pipeline.reproject",
	"DUCKDB_THREADS":    "pipeline.threads",
	"DUCKDB_MAX_MEMORY": "pipeline.max_memory",

	"LOG_LEVEL":  "logging.level",
	"LOG_FORMAT": "logging.format",
	"LOG_CALLER": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Returning "" drops the variable.
func envTransformFunc(key string) string {
	return envKeyMap[strings.ToUpper(key)]
}
