// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is complete and internally
// consistent. Messages name the environment variable that fixes the
// problem.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateArtifacts(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DATABASE_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	if c.Artifacts.Path == "" {
		return fmt.Errorf("ARTIFACTS_PATH is required")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	p := c.Pipeline
	if p.MaxIterations < 1 {
		return fmt.Errorf("PIPELINE_MAX_ITERATIONS must be >= 1, got %d", p.MaxIterations)
	}
	if p.Tolerance <= 0 {
		return fmt.Errorf("PIPELINE_TOLERANCE must be > 0, got %g", p.Tolerance)
	}
	if p.LearningRate <= 0 || p.LearningRate >= 1 {
		return fmt.Errorf("PIPELINE_LEARNING_RATE must be in (0, 1), got %g", p.LearningRate)
	}
	if p.PriorPull < 0 || p.PriorPull > 1 {
		return fmt.Errorf("PIPELINE_PRIOR_PULL must be in [0, 1], got %g", p.PriorPull)
	}
	if p.Workers < 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be >= 0, got %d", p.Workers)
	}
	if p.Deadline <= 0 {
		return fmt.Errorf("PIPELINE_DEADLINE must be positive, got %s", p.Deadline)
	}
	if p.Perplexity <= 0 {
		return fmt.Errorf("PIPELINE_PERPLEXITY must be > 0, got %g", p.Perplexity)
	}
	if p.ProjectionIterations < 1 {
		return fmt.Errorf("PIPELINE_PROJECTION_ITERATIONS must be >= 1, got %d", p.ProjectionIterations)
	}
	if p.Neighbors < 1 {
		return fmt.Errorf("PIPELINE_NEIGHBORS must be >= 1, got %d", p.Neighbors)
	}
	if p.PlanEntries < 1 {
		return fmt.Errorf("PIPELINE_PLAN_ENTRIES must be >= 1, got %d", p.PlanEntries)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace/debug/info/warn/error/fatal/disabled, got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
