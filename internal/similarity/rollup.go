// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import "github.com/kthorn/cocktaildb-sub001/internal/models"

// BuildRollupMap derives the substitution rollup from the hierarchy: a
// leaf ingredient that allows substitution maps to its parent category,
// so interchangeable brands and varieties share a single coordinate in
// the similarity space. Non-leaf ingredients never roll up even when
// flagged substitutable, and the result never chains: a rollup target is
// always its own category.
func BuildRollupMap(h *Hierarchy, ingredients []models.Ingredient) RollupMap {
	m := make(RollupMap)
	for _, ing := range ingredients {
		if !ing.AllowSubstitution || ing.IsRoot() {
			continue
		}
		if h.ChildCount(ing.ID) > 0 {
			continue
		}
		m[ing.ID] = ing.ParentID
	}
	return m
}
