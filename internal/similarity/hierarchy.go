// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"sort"

	"github.com/kthorn/cocktaildb-sub001/internal/models"
)

// unitEdgeCost is the structural cost of one parent/child edge.
const unitEdgeCost = 1.0

// crossTreeBridgeCost is the cost of joining two root ingredients of
// different trees through the virtual super-root (one unit edge up, one
// unit edge down).
const crossTreeBridgeCost = 2.0

// Hierarchy is the validated ingredient forest. It is built once per run
// and read concurrently afterward without locking.
type Hierarchy struct {
	parents    ParentMap
	names      map[int]string
	childCount map[int]int
	ids        []int
}

// BuildHierarchy validates the catalog's parent relation and assembles
// the ingredient forest. A dangling parent reference or a cycle is a
// fatal configuration error; no partial hierarchy is returned.
func BuildHierarchy(ingredients []models.Ingredient) (*Hierarchy, error) {
	h := &Hierarchy{
		parents:    make(ParentMap, len(ingredients)),
		names:      make(map[int]string, len(ingredients)),
		childCount: make(map[int]int),
		ids:        make([]int, 0, len(ingredients)),
	}

	for _, ing := range ingredients {
		h.names[ing.ID] = ing.Name
		h.ids = append(h.ids, ing.ID)
	}
	sort.Ints(h.ids)

	for _, ing := range ingredients {
		if ing.IsRoot() {
			continue
		}
		if _, ok := h.names[ing.ParentID]; !ok {
			return nil, &HierarchyError{
				IngredientID: ing.ID,
				Kind:         "dangling_parent",
				ParentID:     ing.ParentID,
			}
		}
		h.parents[ing.ID] = ParentEdge{ParentID: ing.ParentID, Cost: unitEdgeCost}
		h.childCount[ing.ParentID]++
	}

	if err := h.detectCycles(); err != nil {
		return nil, err
	}
	return h, nil
}

// detectCycles walks every chain to a root, coloring nodes so each chain
// is traversed once.
func (h *Hierarchy) detectCycles() error {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current walk
		black = 2 // proven to reach a root
	)
	color := make(map[int]int, len(h.ids))

	for _, id := range h.ids {
		if color[id] != white {
			continue
		}
		// Walk up from id, graying the path.
		path := []int{}
		node := id
		for {
			if color[node] == black {
				break
			}
			if color[node] == gray {
				return &HierarchyError{IngredientID: node, Kind: "cycle"}
			}
			color[node] = gray
			path = append(path, node)

			edge, ok := h.parents[node]
			if !ok {
				break
			}
			node = edge.ParentID
		}
		for _, n := range path {
			color[n] = black
		}
	}
	return nil
}

// IDs returns all ingredient ids in the catalog, ascending.
func (h *Hierarchy) IDs() []int {
	return h.ids
}

// Name returns an ingredient's display name.
func (h *Hierarchy) Name(id int) string {
	return h.names[id]
}

// ChildCount returns how many ingredients list id as their parent.
func (h *Hierarchy) ChildCount(id int) int {
	return h.childCount[id]
}

// Parent returns the parent edge of id, if any.
func (h *Hierarchy) Parent(id int) (ParentEdge, bool) {
	edge, ok := h.parents[id]
	return edge, ok
}

// Contains reports whether id is in the catalog.
func (h *Hierarchy) Contains(id int) bool {
	_, ok := h.names[id]
	return ok
}

// pathToRoot returns cumulative edge cost from id to each of its
// ancestors (id itself at cost 0) and the total cost to id's root.
func (h *Hierarchy) pathToRoot(id int) (costs map[int]float64, total float64) {
	costs = make(map[int]float64)
	node := id
	for {
		costs[node] = total
		edge, ok := h.parents[node]
		if !ok {
			return costs, total
		}
		total += edge.Cost
		node = edge.ParentID
	}
}

// TreeDistance returns the structural distance between two ingredients:
// the summed edge cost of the path through their lowest common ancestor.
// Ingredients in different trees connect through a virtual super-root,
// adding crossTreeBridgeCost on top of each side's cost to its own root.
func (h *Hierarchy) TreeDistance(a, b int) float64 {
	if a == b {
		return 0
	}

	aCosts, aTotal := h.pathToRoot(a)

	// Walk up from b; the first node also on a's path is the LCA.
	var bCost float64
	node := b
	for {
		if up, ok := aCosts[node]; ok {
			return up + bCost
		}
		edge, ok := h.parents[node]
		if !ok {
			break
		}
		bCost += edge.Cost
		node = edge.ParentID
	}

	// Different trees: bridge through the virtual super-root.
	return aTotal + bCost + crossTreeBridgeCost
}
