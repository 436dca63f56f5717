// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"sort"

	"github.com/kthorn/cocktaildb-sub001/internal/logging"
	"github.com/kthorn/cocktaildb-sub001/internal/models"
)

// NormalizeRecipes converts raw recipe rows into volume-fraction
// distributions over post-rollup ingredient categories. Amounts are
// converted to milliliters, substitutable leaves are remapped through
// the rollup, duplicate categories are aggregated by summing, and each
// recipe's measured volumes are divided by the recipe total.
//
// Recipes carrying an unknown unit or summing to zero measured volume
// are excluded, not failed: they are returned separately, and the rest
// of the corpus proceeds. Discrete units contribute no volume but their
// categories are retained as garnish.
func NormalizeRecipes(recipes []models.Recipe, rows []models.RecipeIngredient, units UnitTable, rollup RollupMap) ([]Distribution, []ExcludedRecipe) {
	byRecipe := make(map[int][]models.RecipeIngredient, len(recipes))
	for _, row := range rows {
		byRecipe[row.RecipeID] = append(byRecipe[row.RecipeID], row)
	}

	dists := make([]Distribution, 0, len(recipes))
	var excluded []ExcludedRecipe

	for _, recipe := range recipes {
		dist, exc := normalizeRecipe(recipe, byRecipe[recipe.ID], units, rollup)
		if exc != nil {
			logging.Warn().
				Int("recipe_id", recipe.ID).
				Str("recipe_name", recipe.Name).
				Str("reason", string(exc.Reason)).
				Str("unit", exc.Unit).
				Msg("Recipe excluded from similarity space")
			excluded = append(excluded, *exc)
			continue
		}
		dists = append(dists, *dist)
	}

	logging.Info().
		Int("recipes", len(dists)).
		Int("excluded", len(excluded)).
		Msg("Recipe volumes normalized")

	return dists, excluded
}

func normalizeRecipe(recipe models.Recipe, rows []models.RecipeIngredient, units UnitTable, rollup RollupMap) (*Distribution, *ExcludedRecipe) {
	volumes := make(map[int]float64)

	for _, row := range rows {
		conv, ok := units.Lookup(row.Unit)
		if !ok {
			return nil, &ExcludedRecipe{
				RecipeID: recipe.ID,
				Name:     recipe.Name,
				Reason:   ExcludedUnknownUnit,
				Unit:     row.Unit,
			}
		}

		category := rollup.Resolve(row.IngredientID)
		switch conv.Kind {
		case UnitScaled:
			volumes[category] += row.Amount * conv.Factor
		case UnitFixed:
			// Nominal contribution; the recorded amount is ignored.
			volumes[category] += conv.Fixed
		case UnitDiscrete:
			// No volume, but keep the category in the map.
			volumes[category] += 0
		}
	}

	var total float64
	for _, v := range volumes {
		total += v
	}
	if total <= 0 {
		return nil, &ExcludedRecipe{
			RecipeID: recipe.ID,
			Name:     recipe.Name,
			Reason:   ExcludedZeroVolume,
		}
	}

	fractions := make(map[int]float64, len(volumes))
	var garnish []int
	for category, v := range volumes {
		if v > 0 {
			fractions[category] = v / total
		} else {
			garnish = append(garnish, category)
		}
	}
	sort.Ints(garnish)

	return &Distribution{
		RecipeID:  recipe.ID,
		Name:      recipe.Name,
		Fractions: fractions,
		Volumes:   volumes,
		Garnish:   garnish,
	}, nil
}
