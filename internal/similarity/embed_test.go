// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"context"
	"math"
	"testing"
)

// clusteredDistances builds a 4-recipe matrix with two tight pairs
// (10, 20) and (30, 40) far from each other.
func clusteredDistances() *DistanceMatrix {
	dm := NewDistanceMatrix([]int{10, 20, 30, 40})
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			dm.setIndex(i, j, 10)
		}
	}
	dm.setIndex(0, 1, 0.1)
	dm.setIndex(2, 3, 0.1)
	return dm
}

func TestProjectDeterminism(t *testing.T) {
	cfg := DefaultProjectorConfig()
	cfg.Iterations = 200

	first, err := Project(context.Background(), clusteredDistances(), cfg)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	second, err := Project(context.Background(), clusteredDistances(), cfg)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("coordinate counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("coordinate %d differs between identical runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestProjectSeedChangesLayout(t *testing.T) {
	cfg := DefaultProjectorConfig()
	cfg.Iterations = 200

	first, err := Project(context.Background(), clusteredDistances(), cfg)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	cfg.Seed = 7
	second, err := Project(context.Background(), clusteredDistances(), cfg)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestProjectPreservesClusters(t *testing.T) {
	coords, err := Project(context.Background(), clusteredDistances(), DefaultProjectorConfig())
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	byID := make(map[int]Coordinate, len(coords))
	for _, c := range coords {
		byID[c.RecipeID] = c
	}
	d := func(a, b int) float64 {
		return math.Hypot(byID[a].X-byID[b].X, byID[a].Y-byID[b].Y)
	}

	within := math.Max(d(10, 20), d(30, 40))
	across := math.Min(math.Min(d(10, 30), d(10, 40)), math.Min(d(20, 30), d(20, 40)))
	if within >= across {
		t.Errorf("pairs not separated: within = %g, across = %g", within, across)
	}
}

func TestProjectDegenerateSizes(t *testing.T) {
	cfg := DefaultProjectorConfig()

	t.Run("empty", func(t *testing.T) {
		coords, err := Project(context.Background(), NewDistanceMatrix(nil), cfg)
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if len(coords) != 0 {
			t.Errorf("expected no coordinates, got %d", len(coords))
		}
	})

	t.Run("single", func(t *testing.T) {
		coords, err := Project(context.Background(), NewDistanceMatrix([]int{10}), cfg)
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if len(coords) != 1 || coords[0].RecipeID != 10 {
			t.Fatalf("unexpected coordinates: %+v", coords)
		}
		if coords[0].X != 0 || coords[0].Y != 0 {
			t.Errorf("single recipe not at origin: %+v", coords[0])
		}
	})

	t.Run("pair", func(t *testing.T) {
		dm := NewDistanceMatrix([]int{10, 20})
		dm.setIndex(0, 1, 4)

		coords, err := Project(context.Background(), dm, cfg)
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if len(coords) != 2 {
			t.Fatalf("expected 2 coordinates, got %d", len(coords))
		}
		gap := math.Hypot(coords[0].X-coords[1].X, coords[0].Y-coords[1].Y)
		if math.Abs(gap-4) > 1e-9 {
			t.Errorf("pair separation = %g, want 4", gap)
		}
	})
}

func TestProjectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Project(ctx, clusteredDistances(), DefaultProjectorConfig())
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestProjectOrderedByRecipeID(t *testing.T) {
	coords, err := Project(context.Background(), clusteredDistances(), DefaultProjectorConfig())
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	want := []int{10, 20, 30, 40}
	for i, c := range coords {
		if c.RecipeID != want[i] {
			t.Errorf("coordinate %d has recipe %d, want %d", i, c.RecipeID, want[i])
		}
	}
}
