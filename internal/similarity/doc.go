// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

// Package similarity computes the recipe similarity space: it learns a
// ground distance metric between ingredient categories from optimal
// transport over the recipe corpus, derives the recipe-to-recipe distance
// matrix, projects recipes to two dimensions, and extracts per-recipe
// nearest neighbors with interpretable transport-plan summaries.
//
// # Components
//
// In dependency order:
//
//   - hierarchy.go: ingredient parent/child forest and tree distances
//   - rollup.go: substitutable-leaf to parent-category mapping
//   - normalize.go: raw amounts to per-recipe volume-fraction distributions
//   - ground.go: structural prior cost matrix
//   - emd.go: earth-mover distance and transport plans (min-cost flow)
//   - learner.go: EM-style iterative refinement of the ground matrix
//   - embed.go: seeded 2-D projection of the recipe distance matrix
//   - neighbors.go: nearest-neighbor extraction and artifact documents
//   - pipeline.go: the single full-run entry point
//
// # Concurrency
//
// One pipeline run is a single offline batch. The learner's transport
// phase fans out over a worker pool; its update phase is a barrier that
// only runs after every pair of the iteration has been solved. Each
// iteration's workers read an immutable ground-matrix snapshot.
//
// # Error taxonomy
//
// Configuration errors (cyclic or dangling hierarchy) abort the run.
// Data errors (zero-volume recipe, unknown unit) exclude the recipe and
// continue. Hitting the iteration cap or deadline is a flagged, non-fatal
// outcome. Transport infeasibility indicates an upstream bug and aborts.
package similarity
