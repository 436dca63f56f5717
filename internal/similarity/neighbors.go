// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import "sort"

// ExtractNeighbors builds the per-recipe nearest-neighbor documents from
// a learned distance matrix. Each recipe gets up to neighborCount
// neighbors ordered by ascending distance (ties broken by ascending
// recipe id, the recipe itself never included), each carrying the top
// planEntries transport-plan entries by moved mass as an explanation of
// the distance. Documents are ordered by recipe id.
func ExtractNeighbors(dists []Distribution, dm *DistanceMatrix, plans map[PairKey]TransportPlan, neighborCount, planEntries int) []RecipeNeighborsDoc {
	names := make(map[int]string, len(dists))
	for _, d := range dists {
		names[d.RecipeID] = d.Name
	}

	ids := dm.IDs()
	docs := make([]RecipeNeighborsDoc, 0, len(ids))
	for _, id := range ids {
		candidates := make([]int, 0, len(ids)-1)
		for _, other := range ids {
			if other != id {
				candidates = append(candidates, other)
			}
		}
		sort.Slice(candidates, func(a, b int) bool {
			da, db := dm.Distance(id, candidates[a]), dm.Distance(id, candidates[b])
			if da != db {
				return da < db
			}
			return candidates[a] < candidates[b]
		})
		if len(candidates) > neighborCount {
			candidates = candidates[:neighborCount]
		}

		neighbors := make([]NeighborDoc, 0, len(candidates))
		for _, nb := range candidates {
			plan := plans[NewPairKey(id, nb)]
			if id > nb {
				// Plans are stored from the lower id's perspective.
				plan = plan.Reversed()
			}
			neighbors = append(neighbors, NeighborDoc{
				NeighborRecipeID: nb,
				NeighborName:     names[nb],
				Distance:         dm.Distance(id, nb),
				TransportPlan:    topPlanEntries(plan, planEntries),
			})
		}

		docs = append(docs, RecipeNeighborsDoc{
			RecipeID:   id,
			RecipeName: names[id],
			Neighbors:  neighbors,
		})
	}
	return docs
}

// topPlanEntries selects the limit largest plan entries by moved mass,
// ties broken by ascending source then destination id. Zero-mass entries
// never appear.
func topPlanEntries(plan TransportPlan, limit int) []PlanEntryDoc {
	entries := make(TransportPlan, 0, len(plan))
	for _, e := range plan {
		if e.Mass > 0 {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Mass != entries[b].Mass {
			return entries[a].Mass > entries[b].Mass
		}
		if entries[a].From != entries[b].From {
			return entries[a].From < entries[b].From
		}
		return entries[a].To < entries[b].To
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	docs := make([]PlanEntryDoc, len(entries))
	for i, e := range entries {
		docs[i] = PlanEntryDoc{FromIngredientID: e.From, ToIngredientID: e.To, Mass: e.Mass}
	}
	return docs
}

// BuildEmbeddingPoints joins the projected coordinates with each
// recipe's ingredient summary: measured category names ordered by
// descending volume, garnish categories after them, names breaking ties
// alphabetically.
func BuildEmbeddingPoints(dists []Distribution, coords []Coordinate, h *Hierarchy) []EmbeddingPoint {
	byID := make(map[int]Distribution, len(dists))
	for _, d := range dists {
		byID[d.RecipeID] = d
	}

	points := make([]EmbeddingPoint, 0, len(coords))
	for _, c := range coords {
		d, ok := byID[c.RecipeID]
		if !ok {
			continue
		}
		points = append(points, EmbeddingPoint{
			RecipeID:    c.RecipeID,
			RecipeName:  d.Name,
			X:           c.X,
			Y:           c.Y,
			Ingredients: ingredientSummary(d, h),
		})
	}
	return points
}

func ingredientSummary(d Distribution, h *Hierarchy) []string {
	measured := make([]int, 0, len(d.Fractions))
	for id := range d.Fractions {
		measured = append(measured, id)
	}
	sort.Slice(measured, func(a, b int) bool {
		va, vb := d.Volumes[measured[a]], d.Volumes[measured[b]]
		if va != vb {
			return va > vb
		}
		return h.Name(measured[a]) < h.Name(measured[b])
	})

	garnish := make([]int, len(d.Garnish))
	copy(garnish, d.Garnish)
	sort.Slice(garnish, func(a, b int) bool {
		return h.Name(garnish[a]) < h.Name(garnish[b])
	})

	names := make([]string, 0, len(measured)+len(garnish))
	for _, id := range measured {
		names = append(names, h.Name(id))
	}
	for _, id := range garnish {
		names = append(names, h.Name(id))
	}
	return names
}
