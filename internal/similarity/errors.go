// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"errors"
	"fmt"
)

// ErrInfeasibleTransport reports unequal total mass reaching the
// transport engine. Upstream normalization guarantees equal marginals,
// so this error always indicates a bug and aborts the run.
var ErrInfeasibleTransport = errors.New("similarity: transport problem infeasible")

// HierarchyError is a fatal configuration error in the ingredient
// hierarchy: a cycle in the parent relation or a dangling parent
// reference. No partial tree is returned alongside it.
type HierarchyError struct {
	// IngredientID is the ingredient at which the problem was detected.
	IngredientID int

	// Kind is "cycle" or "dangling_parent".
	Kind string

	// ParentID is the unresolvable parent for dangling references.
	ParentID int
}

func (e *HierarchyError) Error() string {
	switch e.Kind {
	case "cycle":
		return fmt.Sprintf("similarity: ingredient hierarchy contains a cycle through ingredient %d", e.IngredientID)
	case "dangling_parent":
		return fmt.Sprintf("similarity: ingredient %d references unknown parent %d", e.IngredientID, e.ParentID)
	default:
		return fmt.Sprintf("similarity: invalid ingredient hierarchy at ingredient %d", e.IngredientID)
	}
}

// ExclusionReason classifies why a recipe was excluded from the
// similarity space. Exclusion is a data error: logged, counted, and
// skipped, never fatal.
type ExclusionReason string

const (
	// ExcludedZeroVolume marks recipes whose total measured volume is
	// zero (all discrete or unmeasured ingredients).
	ExcludedZeroVolume ExclusionReason = "zero_volume"

	// ExcludedUnknownUnit marks recipes carrying a unit missing from
	// the conversion table.
	ExcludedUnknownUnit ExclusionReason = "unknown_unit"
)

// ExcludedRecipe records one recipe dropped from the similarity space.
type ExcludedRecipe struct {
	RecipeID int
	Name     string
	Reason   ExclusionReason

	// Unit is the offending unit for ExcludedUnknownUnit.
	Unit string
}
