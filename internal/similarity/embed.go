// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"context"
	"math"
	"math/rand"

	"github.com/kthorn/cocktaildb-sub001/internal/logging"
)

const (
	// entropyTolerance bounds the per-point perplexity binary search.
	entropyTolerance = 1e-5

	// entropySearchSteps caps the binary search iterations per point.
	entropySearchSteps = 50

	// exaggerationPhase is the iteration count during which pairwise
	// affinities are amplified to form early cluster structure.
	exaggerationPhase = 100

	// exaggerationFactor amplifies affinities during the early phase.
	exaggerationFactor = 4.0

	// momentumSwitch is the iteration at which momentum increases.
	momentumSwitch = 250

	// affinityFloor keeps affinities strictly positive.
	affinityFloor = 1e-12
)

// Project embeds the recipe distance matrix into two dimensions with a
// stochastic neighbor embedding over the precomputed distances. The
// random source is seeded from the configuration, so identical inputs
// produce identical coordinates. Coordinates are returned in ascending
// recipe-id order.
func Project(ctx context.Context, dm *DistanceMatrix, cfg ProjectorConfig) ([]Coordinate, error) {
	cfg = cfg.normalize()
	ids := dm.IDs()
	n := len(ids)

	// Degenerate layouts need no optimization.
	switch n {
	case 0:
		return []Coordinate{}, nil
	case 1:
		return []Coordinate{{RecipeID: ids[0]}}, nil
	case 2:
		half := dm.atIndex(0, 1) / 2
		return []Coordinate{
			{RecipeID: ids[0], X: -half},
			{RecipeID: ids[1], X: half},
		}, nil
	}

	perplexity := cfg.Perplexity
	if limit := float64(n-1) / 3; perplexity > limit {
		perplexity = limit
	}
	if perplexity < 1 {
		perplexity = 1
	}

	p := affinities(dm, perplexity)

	rng := rand.New(rand.NewSource(cfg.Seed))
	y := make([][2]float64, n)
	for i := range y {
		y[i][0] = rng.NormFloat64() * 1e-4
		y[i][1] = rng.NormFloat64() * 1e-4
	}

	velocity := make([][2]float64, n)
	gains := make([][2]float64, n)
	for i := range gains {
		gains[i] = [2]float64{1, 1}
	}

	grad := make([][2]float64, n)
	q := make([][]float64, n)
	for i := range q {
		q[i] = make([]float64, n)
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		if iter%50 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		exaggeration := 1.0
		if iter < exaggerationPhase {
			exaggeration = exaggerationFactor
		}
		momentum := 0.5
		if iter >= momentumSwitch {
			momentum = 0.8
		}

		// Low-dimensional affinities with a Student-t kernel.
		var qSum float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := y[i][0] - y[j][0]
				dy := y[i][1] - y[j][1]
				w := 1 / (1 + dx*dx + dy*dy)
				q[i][j] = w
				q[j][i] = w
				qSum += 2 * w
			}
		}

		for i := range grad {
			grad[i] = [2]float64{}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				qij := q[i][j] / qSum
				if qij < affinityFloor {
					qij = affinityFloor
				}
				mult := (exaggeration*p[i][j] - qij) * q[i][j]
				grad[i][0] += 4 * mult * (y[i][0] - y[j][0])
				grad[i][1] += 4 * mult * (y[i][1] - y[j][1])
			}
		}

		for i := 0; i < n; i++ {
			for d := 0; d < 2; d++ {
				if (grad[i][d] > 0) == (velocity[i][d] > 0) {
					gains[i][d] *= 0.8
				} else {
					gains[i][d] += 0.2
				}
				if gains[i][d] < 0.01 {
					gains[i][d] = 0.01
				}
				velocity[i][d] = momentum*velocity[i][d] - cfg.LearningRate*gains[i][d]*grad[i][d]
				y[i][d] += velocity[i][d]
			}
		}

		// Keep the embedding centered.
		var cx, cy float64
		for i := range y {
			cx += y[i][0]
			cy += y[i][1]
		}
		cx /= float64(n)
		cy /= float64(n)
		for i := range y {
			y[i][0] -= cx
			y[i][1] -= cy
		}
	}

	logging.Debug().
		Int("recipes", n).
		Float64("perplexity", perplexity).
		Int("iterations", cfg.Iterations).
		Msg("Embedding projection complete")

	coords := make([]Coordinate, n)
	for i, id := range ids {
		coords[i] = Coordinate{RecipeID: id, X: y[i][0], Y: y[i][1]}
	}
	return coords, nil
}

// affinities converts the distance matrix into symmetric neighbor
// probabilities, tuning each point's kernel bandwidth to the target
// perplexity by binary search on the conditional entropy.
func affinities(dm *DistanceMatrix, perplexity float64) [][]float64 {
	n := dm.Size()
	targetEntropy := math.Log(perplexity)

	cond := make([][]float64, n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		cond[i] = make([]float64, n)

		beta := 1.0
		betaMin := math.Inf(-1)
		betaMax := math.Inf(1)

		var entropy float64
		for step := 0; step < entropySearchSteps; step++ {
			var sum float64
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				d := dm.atIndex(i, j)
				row[j] = math.Exp(-d * d * beta)
				sum += row[j]
			}
			if sum == 0 {
				// All other points infinitely far under this beta.
				break
			}

			entropy = 0
			for j := 0; j < n; j++ {
				if j == i || row[j] == 0 {
					continue
				}
				pj := row[j] / sum
				entropy -= pj * math.Log(pj)
				cond[i][j] = pj
			}

			diff := entropy - targetEntropy
			if math.Abs(diff) < entropyTolerance {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}
	}

	// Symmetrize and normalize to a joint distribution.
	joint := make([][]float64, n)
	for i := range joint {
		joint[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := (cond[i][j] + cond[j][i]) / (2 * float64(n))
			if v < affinityFloor {
				v = affinityFloor
			}
			joint[i][j] = v
			joint[j][i] = v
		}
	}
	return joint
}
