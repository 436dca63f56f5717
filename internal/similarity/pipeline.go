// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kthorn/cocktaildb-sub001/internal/logging"
	"github.com/kthorn/cocktaildb-sub001/internal/metrics"
	"github.com/kthorn/cocktaildb-sub001/internal/models"
)

// DataProvider supplies the catalog snapshot a pipeline run operates on.
type DataProvider interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Pipeline runs the full similarity computation: snapshot to artifacts.
type Pipeline struct {
	provider DataProvider
	cfg      *Config
}

// NewPipeline creates a pipeline over the given data provider. A nil
// config uses defaults; zero-valued config fields fall back to defaults.
func NewPipeline(provider DataProvider, cfg *Config) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("similarity: data provider is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("similarity: invalid config: %w", err)
	}
	cfg = cfg.normalize()
	return &Pipeline{provider: provider, cfg: cfg}, nil
}

// Run executes one full pipeline pass and returns both artifacts, fully
// assembled in memory. Nothing is persisted here; a failed run leaves
// any previously stored artifacts untouched.
//
// The deadline bounds the learner's refinement loop; a zero deadline
// disables it. Context cancellation aborts the run at the next stage or
// worker boundary.
func (p *Pipeline) Run(ctx context.Context, deadline time.Time) (*SimilarArtifact, *EmbeddingArtifact, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logging.With().Str("run_id", runID).Logger()

	similar, embedding, err := p.run(ctx, deadline, runID)
	elapsed := time.Since(start)
	metrics.PipelineDuration.Observe(elapsed.Seconds())
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("fatal").Inc()
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("Pipeline run failed")
		return nil, nil, err
	}

	metrics.PipelineRuns.WithLabelValues("ok").Inc()
	log.Info().
		Dur("elapsed", elapsed).
		Int("recipes", len(similar.Data)).
		Bool("converged", similar.Metadata.Converged).
		Msg("Pipeline run complete")
	return similar, embedding, nil
}

func (p *Pipeline) run(ctx context.Context, deadline time.Time, runID string) (*SimilarArtifact, *EmbeddingArtifact, error) {
	snapshot, err := p.stageSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	stage := time.Now()
	hierarchy, err := BuildHierarchy(snapshot.Ingredients)
	if err != nil {
		return nil, nil, fmt.Errorf("building ingredient hierarchy: %w", err)
	}
	rollup := BuildRollupMap(hierarchy, snapshot.Ingredients)
	observeStage("hierarchy", stage)

	stage = time.Now()
	dists, excluded := NormalizeRecipes(snapshot.Recipes, snapshot.RecipeIngredients, p.cfg.Units, rollup)
	for _, e := range excluded {
		metrics.RecipesExcluded.WithLabelValues(string(e.Reason)).Inc()
	}
	observeStage("normalize", stage)

	stage = time.Now()
	prior := BuildGroundMatrix(hierarchy, CollectCategories(dists))
	observeStage("ground", stage)

	stage = time.Now()
	result, err := LearnGroundDistance(ctx, dists, prior, p.cfg.Learner, deadline)
	if err != nil {
		return nil, nil, fmt.Errorf("learning ground distance: %w", err)
	}
	observeStage("learn", stage)

	stage = time.Now()
	coords, err := Project(ctx, result.Distances, p.cfg.Projector)
	if err != nil {
		return nil, nil, fmt.Errorf("projecting embedding: %w", err)
	}
	observeStage("project", stage)

	stage = time.Now()
	neighborDocs := ExtractNeighbors(dists, result.Distances, result.Plans, p.cfg.Neighbors, p.cfg.PlanEntries)
	points := BuildEmbeddingPoints(dists, coords, hierarchy)
	observeStage("extract", stage)

	excludedIDs := make([]int, 0, len(excluded))
	for _, e := range excluded {
		excludedIDs = append(excludedIDs, e.RecipeID)
	}
	sort.Ints(excludedIDs)

	meta := ArtifactMetadata{
		GeneratedAt:       time.Now().UTC(),
		StorageVersion:    StorageVersion,
		Converged:         result.Converged,
		RunID:             runID,
		ExcludedRecipeIDs: excludedIDs,
	}

	similarMeta := meta
	similarMeta.AnalyticsType = AnalyticsTypeSimilar
	embeddingMeta := meta
	embeddingMeta.AnalyticsType = AnalyticsTypeEmbedding

	return &SimilarArtifact{Data: neighborDocs, Metadata: similarMeta},
		&EmbeddingArtifact{Data: points, Metadata: embeddingMeta},
		nil
}

func (p *Pipeline) stageSnapshot(ctx context.Context) (*models.Snapshot, error) {
	stage := time.Now()
	snapshot, err := p.provider.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	observeStage("snapshot", stage)

	logging.Debug().
		Int("ingredients", len(snapshot.Ingredients)).
		Int("recipes", len(snapshot.Recipes)).
		Int("rows", len(snapshot.RecipeIngredients)).
		Msg("Snapshot loaded")
	return snapshot, nil
}

func observeStage(name string, start time.Time) {
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
