// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

// Package metrics exposes Prometheus instrumentation for the similarity
// pipeline: run outcomes and duration, learner progress, and data-quality
// counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRuns counts completed runs by outcome ("ok", "fatal").
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_pipeline_runs_total",
			Help: "Total number of similarity pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	// PipelineDuration observes end-to-end run duration.
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_pipeline_duration_seconds",
			Help:    "End-to-end duration of a similarity pipeline run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		},
	)

	// StageDuration observes per-stage duration.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "similarity_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // "snapshot", "hierarchy", "normalize", "ground", "learn", "project", "extract", "persist"
	)

	// LearnerIterations reports iterations completed by the last run.
	LearnerIterations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_learner_iterations",
			Help: "EM learner iterations completed in the last run",
		},
	)

	// LearnerConverged is 1 when the last run converged, 0 otherwise.
	LearnerConverged = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_learner_converged",
			Help: "Whether the last run's EM learner converged (1) or hit a cap (0)",
		},
	)

	// LearnerTotalCost reports the final total corpus transport cost.
	LearnerTotalCost = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_learner_total_cost",
			Help: "Final total corpus transport cost of the last run",
		},
	)

	// RecipesExcluded counts recipes excluded from the similarity space
	// by data errors, labeled by reason.
	RecipesExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_recipes_excluded_total",
			Help: "Recipes excluded from the similarity space by reason",
		},
		[]string{"reason"}, // "zero_volume", "unknown_unit"
	)

	// TransportComputations counts optimal-transport solves.
	TransportComputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_transport_computations_total",
			Help: "Total optimal-transport distance computations",
		},
	)
)
