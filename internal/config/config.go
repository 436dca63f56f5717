// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

// Package config loads pipeline configuration with Koanf v2 using layered
// sources: built-in defaults, an optional YAML file, then environment
// variables. Precedence: ENV > file > defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cocktaildb/config.yaml",
	"/etc/cocktaildb/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the root configuration for the similarity pipeline binary.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DatabaseConfig configures the read-only DuckDB snapshot source.
type DatabaseConfig struct {
	// Path is the DuckDB database file.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// ArtifactsConfig configures the Badger blob store receiving the output
// analytics documents.
type ArtifactsConfig struct {
	// Path is the Badger directory.
	Path string `koanf:"path"`
}

// PipelineConfig carries the tuning knobs of the similarity computation.
type PipelineConfig struct {
	// MaxIterations caps the EM distance-learning loop.
	MaxIterations int `koanf:"max_iterations"`

	// Tolerance is the convergence threshold on the change in total
	// corpus transport cost between iterations.
	Tolerance float64 `koanf:"tolerance"`

	// LearningRate bounds the per-iteration multiplicative cost
	// adjustment for over-used ground-distance entries (0, 1).
	LearningRate float64 `koanf:"learning_rate"`

	// PriorPull is the rate at which under-used entries relax back
	// toward the structural prior [0, 1].
	PriorPull float64 `koanf:"prior_pull"`

	// Workers sizes the transport-phase worker pool; 0 means
	// runtime.NumCPU().
	Workers int `koanf:"workers"`

	// Deadline is the wall-clock budget for one full run.
	Deadline time.Duration `koanf:"deadline"`

	// Perplexity is the projector's neighborhood-size parameter.
	Perplexity float64 `koanf:"perplexity"`

	// ProjectionIterations is the projector's gradient-descent step count.
	ProjectionIterations int `koanf:"projection_iterations"`

	// Seed fixes the projector's random source for reproducible runs.
	Seed int64 `koanf:"seed"`

	// Neighbors is the nearest-neighbor count per recipe.
	Neighbors int `koanf:"neighbors"`

	// PlanEntries is the number of transport-plan entries kept per
	// neighbor pair.
	PlanEntries int `koanf:"plan_entries"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig configures the optional Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Listen  string `koanf:"listen"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment overrides.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "/data/cocktaildb.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Artifacts: ArtifactsConfig{
			Path: "/data/analytics",
		},
		Pipeline: PipelineConfig{
			MaxIterations:        25,
			Tolerance:            1e-4,
			LearningRate:         0.1,
			PriorPull:            0.05,
			Workers:              0, // 0 = runtime.NumCPU()
			Deadline:             20 * time.Minute,
			Perplexity:           12,
			ProjectionIterations: 500,
			Seed:                 42,
			Neighbors:            4,
			PlanEntries:          3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, honoring
// the CONFIG_PATH override, or "" when none exists.
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

// envKeyMap maps recognized environment variables to koanf paths.
// Only variables listed here participate in configuration; everything
// else in the process environment is ignored.
var envKeyMap = map[string]string{
	"DATABASE_PATH":                  "database.path",
	"DATABASE_MAX_MEMORY":            "database.max_memory",
	"DATABASE_THREADS":               "database.threads",
	"ARTIFACTS_PATH":                 "artifacts.path",
	"PIPELINE_MAX_ITERATIONS":        "pipeline.max_iterations",
	"PIPELINE_TOLERANCE":             "pipeline.tolerance",
	"PIPELINE_LEARNING_RATE":         "pipeline.learning_rate",
	"PIPELINE_PRIOR_PULL":            "pipeline.prior_pull",
	"PIPELINE_WORKERS":               "pipeline.workers",
	"PIPELINE_DEADLINE":              "pipeline.deadline",
	"PIPELINE_PERPLEXITY":            "pipeline.perplexity",
	"PIPELINE_PROJECTION_ITERATIONS": "pipeline.projection_iterations",
	"PIPELINE_SEED":                  "pipeline.seed",
	"PIPELINE_NEIGHBORS":             "pipeline.neighbors",
	"PIPELINE_PLAN_ENTRIES":          "pipeline.plan_entries",
	"LOG_LEVEL":                      "logging.level",
	"LOG_FORMAT":                     "logging.format",
	"LOG_CALLER":                     "logging.caller",
	"METRICS_ENABLED":                "metrics.enabled",
	"METRICS_LISTEN":                 "metrics.listen",
}

// envTransform maps an environment variable name to its koanf path.
// Returning "" tells koanf to skip the variable.
func envTransform(name string) string {
	return envKeyMap[name]
}
