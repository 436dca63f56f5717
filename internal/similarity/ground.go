// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import "sort"

// CollectCategories returns the sorted union of every category id
// appearing in the given distributions, garnish included.
func CollectCategories(dists []Distribution) []int {
	seen := make(map[int]struct{})
	for _, d := range dists {
		for id := range d.Volumes {
			seen[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// BuildGroundMatrix builds the structural prior: pairwise tree distances
// between the given ingredient categories. This matrix seeds the learner;
// it is also the anchor under-used entries relax back toward.
func BuildGroundMatrix(h *Hierarchy, categories []int) *GroundMatrix {
	g := NewGroundMatrix(categories)
	ids := g.IDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			g.set(i, j, h.TreeDistance(ids[i], ids[j]))
		}
	}
	return g
}
