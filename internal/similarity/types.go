// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MassTolerance bounds acceptable drift in probability mass: fraction
// sums, marginal totals, and transported mass are compared against 1.0
// within this tolerance.
const MassTolerance = 1e-6

// ParentEdge is one link of the ingredient forest: the parent category
// and the structural cost of the edge.
type ParentEdge struct {
	ParentID int
	Cost     float64
}

// ParentMap maps a child ingredient id to its parent edge. Root
// ingredients have no entry. Built once by BuildHierarchy and never
// mutated afterward.
type ParentMap map[int]ParentEdge

// RollupMap maps a substitutable leaf ingredient id to its parent
// category id. Ingredients without an entry roll up to themselves.
type RollupMap map[int]int

// Resolve returns the post-rollup category for an ingredient id.
func (m RollupMap) Resolve(id int) int {
	if target, ok := m[id]; ok {
		return target
	}
	return id
}

// Distribution is one recipe's probability distribution over post-rollup
// ingredient categories. Fractions are non-negative and sum to 1.0
// within MassTolerance.
type Distribution struct {
	// RecipeID identifies the recipe.
	RecipeID int

	// Name is the recipe display name.
	Name string

	// Fractions maps category id to volume fraction; only positive
	// entries are present.
	Fractions map[int]float64

	// Volumes maps category id to canonical volume in milliliters
	// before normalization. Garnish categories appear with volume 0.
	Volumes map[int]float64

	// Garnish lists discrete (unmeasured) category ids retained for
	// presentation but excluded from volume arithmetic.
	Garnish []int
}

// Support returns the category ids with positive mass, ascending.
func (d Distribution) Support() []int {
	ids := make([]int, 0, len(d.Fractions))
	for id := range d.Fractions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TotalMass returns the sum of all fractions.
func (d Distribution) TotalMass() float64 {
	var sum float64
	for _, f := range d.Fractions {
		sum += f
	}
	return sum
}

// TransportEntry is one mass flow of a transport plan.
type TransportEntry struct {
	// From is the source category id.
	From int

	// To is the destination category id.
	To int

	// Mass is the transported probability mass.
	Mass float64
}

// TransportPlan is the sparse mass-flow assignment realizing an optimal
// transport solution between two distributions.
type TransportPlan []TransportEntry

// TotalMass returns the total transported mass of the plan.
func (p TransportPlan) TotalMass() float64 {
	var sum float64
	for _, e := range p {
		sum += e.Mass
	}
	return sum
}

// Reversed returns the plan with source and destination swapped, for
// reading a stored A→B plan from B's perspective.
func (p TransportPlan) Reversed() TransportPlan {
	out := make(TransportPlan, len(p))
	for i, e := range p {
		out[i] = TransportEntry{From: e.To, To: e.From, Mass: e.Mass}
	}
	return out
}

// GroundMatrix is a symmetric, zero-diagonal, non-negative cost matrix
// over ingredient category ids. Entries evolve across learner iterations
// but each matrix value is immutable once handed to a transport phase.
type GroundMatrix struct {
	ids   []int
	index map[int]int
	d     [][]float64
}

// NewGroundMatrix allocates a zero matrix over the given category ids.
func NewGroundMatrix(ids []int) *GroundMatrix {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	index := make(map[int]int, len(sorted))
	for i, id := range sorted {
		index[id] = i
	}

	d := make([][]float64, len(sorted))
	for i := range d {
		d[i] = make([]float64, len(sorted))
	}

	return &GroundMatrix{ids: sorted, index: index, d: d}
}

// IDs returns the category ids covered by the matrix, ascending.
func (g *GroundMatrix) IDs() []int {
	return g.ids
}

// Size returns the matrix dimension.
func (g *GroundMatrix) Size() int {
	return len(g.ids)
}

// Distance returns the cost between two category ids. Unknown ids are a
// programming error and panic; upstream canonicalization guarantees all
// ids used in distributions appear in the matrix.
func (g *GroundMatrix) Distance(a, b int) float64 {
	return g.d[g.index[a]][g.index[b]]
}

// at returns the cost by matrix index.
func (g *GroundMatrix) at(i, j int) float64 {
	return g.d[i][j]
}

// set assigns a symmetric pair of entries by matrix index.
func (g *GroundMatrix) set(i, j int, v float64) {
	g.d[i][j] = v
	g.d[j][i] = v
}

// Clone returns a deep copy sharing no storage with the receiver.
func (g *GroundMatrix) Clone() *GroundMatrix {
	out := NewGroundMatrix(g.ids)
	for i := range g.d {
		copy(out.d[i], g.d[i])
	}
	return out
}

// Validate checks symmetry, non-negativity, and the zero diagonal.
func (g *GroundMatrix) Validate() error {
	for i := range g.d {
		if g.d[i][i] != 0 {
			return fmt.Errorf("ground matrix diagonal entry %d is %g, want 0", g.ids[i], g.d[i][i])
		}
		for j := i + 1; j < len(g.d); j++ {
			if g.d[i][j] < 0 {
				return fmt.Errorf("ground matrix entry (%d,%d) is negative: %g", g.ids[i], g.ids[j], g.d[i][j])
			}
			if math.Abs(g.d[i][j]-g.d[j][i]) > 1e-12 {
				return fmt.Errorf("ground matrix asymmetric at (%d,%d): %g vs %g", g.ids[i], g.ids[j], g.d[i][j], g.d[j][i])
			}
		}
	}
	return nil
}

// DistanceMatrix is the symmetric, zero-diagonal recipe-to-recipe
// distance matrix produced by one pipeline run.
type DistanceMatrix struct {
	ids   []int
	index map[int]int
	d     [][]float64
}

// NewDistanceMatrix allocates a zero matrix over the given recipe ids.
func NewDistanceMatrix(ids []int) *DistanceMatrix {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	index := make(map[int]int, len(sorted))
	for i, id := range sorted {
		index[id] = i
	}

	d := make([][]float64, len(sorted))
	for i := range d {
		d[i] = make([]float64, len(sorted))
	}

	return &DistanceMatrix{ids: sorted, index: index, d: d}
}

// IDs returns the recipe ids covered by the matrix, ascending.
func (m *DistanceMatrix) IDs() []int {
	return m.ids
}

// Size returns the matrix dimension.
func (m *DistanceMatrix) Size() int {
	return len(m.ids)
}

// Distance returns the distance between two recipe ids.
func (m *DistanceMatrix) Distance(a, b int) float64 {
	return m.d[m.index[a]][m.index[b]]
}

// atIndex returns the distance by matrix index.
func (m *DistanceMatrix) atIndex(i, j int) float64 {
	return m.d[i][j]
}

// setIndex assigns a symmetric pair of entries by matrix index.
func (m *DistanceMatrix) setIndex(i, j int, v float64) {
	m.d[i][j] = v
	m.d[j][i] = v
}

// PairKey identifies an unordered recipe pair; Lo < Hi always.
type PairKey struct {
	Lo, Hi int
}

// NewPairKey builds the canonical key for two recipe ids.
func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// Coordinate is one recipe's 2-D embedding position.
type Coordinate struct {
	RecipeID int
	X, Y     float64
}

// StorageVersion is the artifact format version.
const StorageVersion = "v1"

// Analytics document types persisted to the blob store.
const (
	AnalyticsTypeSimilar   = "recipe-similar"
	AnalyticsTypeEmbedding = "recipe-embedding"
)

// PlanEntryDoc is one transport-plan entry of the similar artifact.
type PlanEntryDoc struct {
	FromIngredientID int     `json:"from_ingredient_id"`
	ToIngredientID   int     `json:"to_ingredient_id"`
	Mass             float64 `json:"mass"`
}

// NeighborDoc is one neighbor entry of the similar artifact.
type NeighborDoc struct {
	NeighborRecipeID int            `json:"neighbor_recipe_id"`
	NeighborName     string         `json:"neighbor_name"`
	Distance         float64        `json:"distance"`
	TransportPlan    []PlanEntryDoc `json:"transport_plan"`
}

// RecipeNeighborsDoc is one recipe's entry of the similar artifact.
type RecipeNeighborsDoc struct {
	RecipeID   int           `json:"recipe_id"`
	RecipeName string        `json:"recipe_name"`
	Neighbors  []NeighborDoc `json:"neighbors"`
}

// ArtifactMetadata is the run-level metadata block shared by both
// artifacts.
type ArtifactMetadata struct {
	GeneratedAt       time.Time `json:"generated_at"`
	StorageVersion    string    `json:"storage_version"`
	AnalyticsType     string    `json:"analytics_type"`
	Converged         bool      `json:"converged"`
	RunID             string    `json:"run_id"`
	ExcludedRecipeIDs []int     `json:"excluded_recipe_ids,omitempty"`
}

// SimilarArtifact is the "recipe-similar" analytics document.
type SimilarArtifact struct {
	Data     []RecipeNeighborsDoc `json:"data"`
	Metadata ArtifactMetadata     `json:"metadata"`
}

// EmbeddingPoint is one recipe's entry of the embedding artifact.
type EmbeddingPoint struct {
	RecipeID    int      `json:"recipe_id"`
	RecipeName  string   `json:"recipe_name"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Ingredients []string `json:"ingredients"`
}

// EmbeddingArtifact is the "recipe-embedding" analytics document.
type EmbeddingArtifact struct {
	Data     []EmbeddingPoint `json:"data"`
	Metadata ArtifactMetadata `json:"metadata"`
}
