// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import "testing"

func TestCollectCategories(t *testing.T) {
	dists := []Distribution{
		{RecipeID: 1, Fractions: map[int]float64{5: 1}, Volumes: map[int]float64{5: 60}},
		{
			RecipeID:  2,
			Fractions: map[int]float64{2: 0.5, 10: 0.5},
			Volumes:   map[int]float64{2: 30, 10: 30, 12: 0},
			Garnish:   []int{12},
		},
	}

	got := CollectCategories(dists)
	want := []int{2, 5, 10, 12}
	if len(got) != len(want) {
		t.Fatalf("CollectCategories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CollectCategories = %v, want %v", got, want)
		}
	}
}

func TestBuildGroundMatrix(t *testing.T) {
	h, err := BuildHierarchy(testCatalog())
	if err != nil {
		t.Fatalf("BuildHierarchy failed: %v", err)
	}

	g := BuildGroundMatrix(h, []int{2, 5, 10})
	if err := g.Validate(); err != nil {
		t.Fatalf("prior matrix invalid: %v", err)
	}

	if got := g.Distance(2, 5); got != 2 {
		t.Errorf("d(Whiskey, Gin) = %g, want 2", got)
	}
	// Cross-tree pairs bridge through the virtual super-root.
	if got := g.Distance(2, 10); got != 3 {
		t.Errorf("d(Whiskey, Citrus) = %g, want 3", got)
	}
	if got := g.Distance(2, 2); got != 0 {
		t.Errorf("d(Whiskey, Whiskey) = %g, want 0", got)
	}
	if g.Distance(2, 10) != g.Distance(10, 2) {
		t.Error("prior matrix is asymmetric")
	}
}
