// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kthorn/cocktaildb-sub001/internal/logging"
	"github.com/kthorn/cocktaildb-sub001/internal/metrics"
)

// LearnResult is the output of the ground-distance learner.
type LearnResult struct {
	// Ground is the learned ground matrix of the best iteration.
	Ground *GroundMatrix

	// Distances is the recipe-to-recipe distance matrix computed with
	// the best iteration's ground matrix.
	Distances *DistanceMatrix

	// Plans holds the optimal transport plan per recipe pair, stored
	// once per unordered pair from the lower id's perspective.
	Plans map[PairKey]TransportPlan

	// TotalCost is the summed corpus transport cost of the best
	// iteration.
	TotalCost float64

	// Iterations is how many full transport/update iterations ran.
	Iterations int

	// Converged reports whether the loop stopped on the cost tolerance
	// rather than the iteration cap or the deadline.
	Converged bool
}

// recipePair is one unit of transport work: indices into the
// distribution slice, with i < j.
type recipePair struct {
	i, j int
}

// iterationState is one completed transport phase: every pairwise cost
// and plan under a single ground-matrix snapshot.
type iterationState struct {
	ground *GroundMatrix
	costs  []float64
	plans  []TransportPlan
	total  float64
}

// LearnGroundDistance refines the structural prior into a learned ground
// metric by alternating a transport phase (solve every recipe pair under
// the current matrix) and an update phase (contract over-used category
// pairs, relax under-used ones back toward the prior).
//
// The first transport phase always completes, so a result is available
// even under an immediate deadline. A zero deadline disables the time
// limit. Hitting the deadline or the iteration cap returns the
// best-so-far state with Converged=false; context cancellation is fatal.
func LearnGroundDistance(ctx context.Context, dists []Distribution, prior *GroundMatrix, cfg LearnerConfig, deadline time.Time) (*LearnResult, error) {
	cfg = cfg.normalize()

	pairs := make([]recipePair, 0, len(dists)*(len(dists)-1)/2)
	for i := 0; i < len(dists); i++ {
		for j := i + 1; j < len(dists); j++ {
			pairs = append(pairs, recipePair{i: i, j: j})
		}
	}

	var (
		best      *iterationState
		prevTotal float64
		converged bool
		iteration int
	)

	ground := prior.Clone()
	for iteration = 1; iteration <= cfg.MaxIterations; iteration++ {
		state, err := transportPhase(ctx, dists, pairs, ground, cfg.NumWorkers)
		if err != nil {
			return nil, err
		}

		logging.Debug().
			Int("iteration", iteration).
			Float64("total_cost", state.total).
			Msg("Learner iteration complete")

		if best == nil || state.total < best.total {
			best = state
		}

		if iteration > 1 && absFloat(prevTotal-state.total) < cfg.Tolerance {
			converged = true
			break
		}
		prevTotal = state.total

		if !deadline.IsZero() && time.Now().After(deadline) {
			logging.Warn().
				Int("iteration", iteration).
				Msg("Learner deadline reached, returning best-effort result")
			break
		}
		if iteration == cfg.MaxIterations {
			break
		}

		ground = updateGround(state, prior, cfg)
	}

	metrics.LearnerIterations.Set(float64(iteration))
	metrics.LearnerTotalCost.Set(best.total)
	if converged {
		metrics.LearnerConverged.Set(1)
	} else {
		metrics.LearnerConverged.Set(0)
	}

	return buildResult(best, dists, pairs, iteration, converged), nil
}

// transportPhase solves every recipe pair against an immutable ground
// snapshot. Workers write to disjoint regions of preallocated slices, so
// no locking is needed.
func transportPhase(ctx context.Context, dists []Distribution, pairs []recipePair, ground *GroundMatrix, workers int) (*iterationState, error) {
	state := &iterationState{
		ground: ground,
		costs:  make([]float64, len(pairs)),
		plans:  make([]TransportPlan, len(pairs)),
	}
	if len(pairs) == 0 {
		return state, nil
	}

	if workers > len(pairs) {
		workers = len(pairs)
	}
	chunkSize := (len(pairs) + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			for k := start; k < end; k++ {
				if ctx.Err() != nil {
					errs[worker] = ctx.Err()
					return
				}
				p := pairs[k]
				cost, plan, err := EMD(dists[p.i], dists[p.j], ground)
				if err != nil {
					errs[worker] = fmt.Errorf("transport between recipes %d and %d: %w",
						dists[p.i].RecipeID, dists[p.j].RecipeID, err)
					return
				}
				state.costs[k] = cost
				state.plans[k] = plan
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for _, c := range state.costs {
		state.total += c
	}
	metrics.TransportComputations.Add(float64(len(pairs)))
	return state, nil
}

// updateGround derives the next ground matrix from the usage statistics
// of a completed transport phase. Category pairs moving more mass than
// average contract multiplicatively, bounded by the learning rate; pairs
// moving less relax back toward the structural prior. The diagonal stays
// zero and symmetry is preserved by construction.
func updateGround(state *iterationState, prior *GroundMatrix, cfg LearnerConfig) *GroundMatrix {
	usage := make(map[PairKey]float64)
	for _, plan := range state.plans {
		for _, e := range plan {
			if e.From == e.To {
				continue
			}
			usage[NewPairKey(e.From, e.To)] += e.Mass
		}
	}

	// Summed in sorted key order so runs are bit-for-bit reproducible.
	var mean float64
	if len(usage) > 0 {
		keys := make([]PairKey, 0, len(usage))
		for k := range usage {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(a, b int) bool {
			if keys[a].Lo != keys[b].Lo {
				return keys[a].Lo < keys[b].Lo
			}
			return keys[a].Hi < keys[b].Hi
		})
		for _, k := range keys {
			mean += usage[k]
		}
		mean /= float64(len(usage))
	}

	next := state.ground.Clone()
	ids := next.IDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			d := next.at(i, j)
			m := usage[NewPairKey(ids[i], ids[j])]

			if mean > 0 && m > mean {
				// Heavily used route: bring the categories closer.
				shrink := (m - mean) / mean
				if shrink > 1 {
					shrink = 1
				}
				next.set(i, j, d*(1-cfg.LearningRate*shrink))
			} else {
				// Lightly used route: drift back toward the prior.
				d0 := prior.at(i, j)
				next.set(i, j, d+cfg.PriorPull*(d0-d))
			}
		}
	}
	return next
}

// buildResult assembles the distance matrix and plan index from the best
// iteration.
func buildResult(best *iterationState, dists []Distribution, pairs []recipePair, iterations int, converged bool) *LearnResult {
	ids := make([]int, len(dists))
	for i, d := range dists {
		ids[i] = d.RecipeID
	}

	dm := NewDistanceMatrix(ids)
	plans := make(map[PairKey]TransportPlan, len(pairs))
	for k, p := range pairs {
		a, b := dists[p.i].RecipeID, dists[p.j].RecipeID
		dm.setIndex(dm.index[a], dm.index[b], best.costs[k])

		plan := best.plans[k]
		if a > b {
			plan = plan.Reversed()
		}
		plans[NewPairKey(a, b)] = plan
	}

	return &LearnResult{
		Ground:     best.ground,
		Distances:  dm,
		Plans:      plans,
		TotalCost:  best.total,
		Iterations: iterations,
		Converged:  converged,
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
