// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

// Package main is the entry point for the cocktail similarity pipeline.
//
// The pipeline is a one-shot batch job: it reads a recipe catalog
// snapshot from a read-only DuckDB file, computes the recipe similarity
// space (learned ground distances, earth-mover distances, a 2-D
// embedding, and per-recipe nearest neighbors), and persists two
// analytics documents into an embedded Badger store:
//
//   - recipe-similar: nearest neighbors per recipe with transport-plan
//     explanations
//   - recipe-embedding: 2-D coordinates per recipe with ingredient
//     summaries
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (DATABASE_PATH, ARTIFACTS_PATH,
//     PIPELINE_*, LOG_*, METRICS_*)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Run semantics
//
// A run either succeeds completely or leaves the previously stored
// artifacts untouched; artifacts are assembled fully in memory before
// the first write. PIPELINE_DEADLINE bounds the learning loop: when the
// budget runs out the best iteration so far is used and the artifacts
// are flagged as not converged. SIGINT and SIGTERM abort the run.
//
// # Example usage
//
//	export DATABASE_PATH=/data/cocktaildb.duckdb
//	export ARTIFACTS_PATH=/data/analytics
//	export PIPELINE_DEADLINE=20m
//	./pipeline
//
// With the Prometheus listener (useful when the job runs under a
// scheduler that scrapes mid-run):
//
//	export METRICS_ENABLED=true
//	export METRICS_LISTEN=:9090
//	./pipeline
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kthorn/cocktaildb-sub001/internal/artifact"
	"github.com/kthorn/cocktaildb-sub001/internal/config"
	"github.com/kthorn/cocktaildb-sub001/internal/database"
	"github.com/kthorn/cocktaildb-sub001/internal/logging"
	"github.com/kthorn/cocktaildb-sub001/internal/metrics"
	"github.com/kthorn/cocktaildb-sub001/internal/similarity"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("database", cfg.Database.Path).
		Str("artifacts", cfg.Artifacts.Path).
		Dur("deadline", cfg.Pipeline.Deadline).
		Msg("Starting similarity pipeline")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Pipeline failed")
	}
	logging.Info().Msg("Pipeline finished")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		startMetricsListener(cfg.Metrics.Listen)
	}

	db, err := database.Open(database.Config{
		Path:      cfg.Database.Path,
		MaxMemory: cfg.Database.MaxMemory,
		Threads:   cfg.Database.Threads,
		ReadOnly:  true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, err := artifact.Open(cfg.Artifacts.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing artifact store")
		}
	}()

	pipeline, err := similarity.NewPipeline(db, pipelineConfig(&cfg.Pipeline))
	if err != nil {
		return err
	}

	var deadline time.Time
	if cfg.Pipeline.Deadline > 0 {
		deadline = time.Now().Add(cfg.Pipeline.Deadline)
	}

	similar, embedding, err := pipeline.Run(ctx, deadline)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := store.PutSimilar(similar); err != nil {
		return err
	}
	if err := store.PutEmbedding(embedding); err != nil {
		return err
	}
	metrics.StageDuration.WithLabelValues("persist").Observe(time.Since(start).Seconds())

	logging.Info().
		Str("run_id", similar.Metadata.RunID).
		Int("recipes", len(similar.Data)).
		Int("excluded", len(similar.Metadata.ExcludedRecipeIDs)).
		Bool("converged", similar.Metadata.Converged).
		Msg("Artifacts persisted")
	return nil
}

// pipelineConfig maps the binary's flat configuration onto the
// similarity package's component configs.
func pipelineConfig(pc *config.PipelineConfig) *similarity.Config {
	cfg := similarity.DefaultConfig()
	cfg.Learner = similarity.LearnerConfig{
		MaxIterations: pc.MaxIterations,
		Tolerance:     pc.Tolerance,
		LearningRate:  pc.LearningRate,
		PriorPull:     pc.PriorPull,
		NumWorkers:    pc.Workers,
	}
	cfg.Projector = similarity.ProjectorConfig{
		Dimensions:   2,
		Perplexity:   pc.Perplexity,
		LearningRate: 100,
		Iterations:   pc.ProjectionIterations,
		Seed:         pc.Seed,
	}
	cfg.Neighbors = pc.Neighbors
	cfg.PlanEntries = pc.PlanEntries
	return cfg
}

// startMetricsListener serves /metrics in the background for schedulers
// that scrape the job while it runs. Listener errors are logged, not
// fatal: the pipeline's own work does not depend on it.
func startMetricsListener(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Str("listen", addr).Msg("Metrics listener stopped")
		}
	}()
	logging.Info().Str("listen", addr).Msg("Metrics listener started")
}
