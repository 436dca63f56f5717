// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

// Package models defines the raw record types read from the catalog
// snapshot and the identifier canonicalization applied at the ingestion
// boundary.
//
// The source system is ambiguous about identifier types: depending on the
// table and the client that wrote it, ids arrive as INTEGER, TEXT, or
// JSON numbers. All of that ambiguity is resolved here, once, by
// CanonicalID. Everything downstream operates on plain ints and treats a
// type mismatch as a programming error, not a lookup miss.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RootSentinel marks an ingredient with no parent. It is an explicit
// sentinel so that "root" is never expressed as a nil-by-convention value.
const RootSentinel = -1

// Ingredient is one row of the ingredient catalog.
type Ingredient struct {
	// ID is the canonical integer ingredient identifier.
	ID int `json:"id"`

	// Name is the display name (e.g. "Bourbon", "Angostura Bitters").
	Name string `json:"name"`

	// ParentID is the parent category id, or RootSentinel for roots.
	ParentID int `json:"parent_id"`

	// AllowSubstitution marks ingredients that may be rolled up into
	// their parent category for similarity purposes.
	AllowSubstitution bool `json:"allow_substitution"`
}

// IsRoot reports whether the ingredient has no parent.
func (i Ingredient) IsRoot() bool {
	return i.ParentID == RootSentinel
}

// Recipe is one row of the recipe catalog.
type Recipe struct {
	// ID is the canonical integer recipe identifier.
	ID int `json:"id"`

	// Name is the recipe display name.
	Name string `json:"name"`
}

// RecipeIngredient is one recipe-ingredient row from the snapshot.
type RecipeIngredient struct {
	// RecipeID is the owning recipe.
	RecipeID int `json:"recipe_id"`

	// IngredientID is the ingredient used, pre-rollup.
	IngredientID int `json:"ingredient_id"`

	// Amount is the raw amount in the row's unit. Fixed-contribution
	// units (pour-to-top, rinse) may carry a zero amount.
	Amount float64 `json:"amount"`

	// Unit is the raw unit name (e.g. "oz", "ml", "each", "top").
	Unit string `json:"unit"`
}

// Snapshot is the immutable read-only input to one pipeline run.
type Snapshot struct {
	Ingredients       []Ingredient
	Recipes           []Recipe
	RecipeIngredients []RecipeIngredient
}

// CanonicalID coerces a source identifier to the canonical int form.
// Accepted inputs: integer types, float64 with integral value (JSON
// numbers), and decimal strings. Anything else is an error; callers at
// the ingestion boundary must not let such values through.
func CanonicalID(v any) (int, error) {
	switch id := v.(type) {
	case int:
		return id, nil
	case int32:
		return int(id), nil
	case int64:
		return int(id), nil
	case uint64:
		return int(id), nil
	case float64:
		n := int(id)
		if float64(n) != id {
			return 0, fmt.Errorf("non-integral identifier %v", id)
		}
		return n, nil
	case string:
		s := strings.TrimSpace(id)
		if s == "" {
			return 0, fmt.Errorf("empty identifier")
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("non-numeric identifier %q", id)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("nil identifier")
	default:
		return 0, fmt.Errorf("unsupported identifier type %T", v)
	}
}
