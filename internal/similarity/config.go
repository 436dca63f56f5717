// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"fmt"
	"runtime"
)

// LearnerConfig contains configuration for the EM distance learner.
type LearnerConfig struct {
	// MaxIterations caps the transport/update loop.
	// Typical range: 10-50.
	MaxIterations int

	// Tolerance is the convergence threshold: the loop stops when the
	// total corpus transport cost changes by less than this between
	// iterations.
	Tolerance float64

	// LearningRate bounds the multiplicative cost reduction applied to
	// over-used ground-distance entries per iteration. Range (0, 1).
	LearningRate float64

	// PriorPull is the rate at which under-used entries relax back
	// toward the structural prior. Range [0, 1].
	PriorPull float64

	// NumWorkers sizes the transport-phase worker pool.
	// If <= 0, defaults to runtime.NumCPU().
	NumWorkers int
}

// DefaultLearnerConfig returns default learner configuration.
func DefaultLearnerConfig() LearnerConfig {
	return LearnerConfig{
		MaxIterations: 25,
		Tolerance:     1e-4,
		LearningRate:  0.1,
		PriorPull:     0.05,
		NumWorkers:    runtime.NumCPU(),
	}
}

// normalize applies defaults for zero values.
func (c LearnerConfig) normalize() LearnerConfig {
	d := DefaultLearnerConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.LearningRate <= 0 || c.LearningRate >= 1 {
		c.LearningRate = d.LearningRate
	}
	if c.PriorPull < 0 || c.PriorPull > 1 {
		c.PriorPull = d.PriorPull
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = runtime.NumCPU()
	}
	return c
}

// ProjectorConfig contains configuration for the embedding projector.
type ProjectorConfig struct {
	// Dimensions is the embedding dimensionality; the pipeline uses 2.
	Dimensions int

	// Perplexity is the neighborhood-size parameter. It is clamped to
	// (n-1)/3 for small recipe sets.
	Perplexity float64

	// LearningRate is the gradient-descent step size.
	LearningRate float64

	// Iterations is the gradient-descent step count.
	Iterations int

	// Seed fixes the random source; identical inputs and seed produce
	// identical coordinates.
	Seed int64
}

// DefaultProjectorConfig returns default projector configuration.
func DefaultProjectorConfig() ProjectorConfig {
	return ProjectorConfig{
		Dimensions:   2,
		Perplexity:   12,
		LearningRate: 100,
		Iterations:   500,
		Seed:         42,
	}
}

func (c ProjectorConfig) normalize() ProjectorConfig {
	d := DefaultProjectorConfig()
	if c.Dimensions <= 0 {
		c.Dimensions = d.Dimensions
	}
	if c.Perplexity <= 0 {
		c.Perplexity = d.Perplexity
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// Config aggregates everything one pipeline run needs.
type Config struct {
	Learner   LearnerConfig
	Projector ProjectorConfig

	// Units is the unit conversion table; nil uses DefaultUnitTable().
	Units UnitTable

	// Neighbors is the nearest-neighbor count per recipe.
	Neighbors int

	// PlanEntries is the number of transport-plan entries kept per
	// neighbor pair.
	PlanEntries int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Learner:     DefaultLearnerConfig(),
		Projector:   DefaultProjectorConfig(),
		Units:       DefaultUnitTable(),
		Neighbors:   4,
		PlanEntries: 3,
	}
}

// Validate checks the aggregate configuration. Zero values are legal
// and mean "use the default"; only explicitly negative knobs fail.
func (c *Config) Validate() error {
	if c.Neighbors < 0 {
		return fmt.Errorf("neighbors must be >= 0, got %d", c.Neighbors)
	}
	if c.PlanEntries < 0 {
		return fmt.Errorf("plan entries must be >= 0, got %d", c.PlanEntries)
	}
	return nil
}

// normalize fills defaults on the aggregate config.
func (c *Config) normalize() *Config {
	out := *c
	out.Learner = c.Learner.normalize()
	out.Projector = c.Projector.normalize()
	if out.Units == nil {
		out.Units = DefaultUnitTable()
	}
	if out.Neighbors <= 0 {
		out.Neighbors = 4
	}
	if out.PlanEntries <= 0 {
		out.PlanEntries = 3
	}
	return &out
}
