// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"math"
	"sort"
)

// flowEpsilon is the residual capacity below which an arc is considered
// saturated. Far below MassTolerance so rounding never stalls or
// overshoots an augmentation.
const flowEpsilon = 1e-12

// EMD solves the optimal transport problem between two recipe
// distributions over the given ground matrix. It returns the earth-mover
// distance (total mass-weighted cost) and the realizing transport plan,
// sorted by source then destination category id.
//
// Both distributions must carry equal total mass within MassTolerance;
// normalization guarantees this, so a violation returns
// ErrInfeasibleTransport and indicates an upstream bug.
func EMD(a, b Distribution, g *GroundMatrix) (float64, TransportPlan, error) {
	if math.Abs(a.TotalMass()-b.TotalMass()) > MassTolerance {
		return 0, nil, ErrInfeasibleTransport
	}

	srcIDs := a.Support()
	dstIDs := b.Support()
	if len(srcIDs) == 0 || len(dstIDs) == 0 {
		return 0, TransportPlan{}, nil
	}

	// Node layout: source, then a's support, then b's support, then sink.
	n, m := len(srcIDs), len(dstIDs)
	source := 0
	sink := n + m + 1
	net := newFlowNetwork(n + m + 2)

	for i, id := range srcIDs {
		net.addArc(source, 1+i, a.Fractions[id], 0)
	}
	for j, id := range dstIDs {
		net.addArc(1+n+j, sink, b.Fractions[id], 0)
	}
	for i, sid := range srcIDs {
		for j, did := range dstIDs {
			net.addArc(1+i, 1+n+j, math.Inf(1), g.Distance(sid, did))
		}
	}

	cost := net.minCostFlow(source, sink)

	plan := make(TransportPlan, 0, n+m)
	for i, sid := range srcIDs {
		for _, arc := range net.arcs[1+i] {
			if arc.to == source || arc.flow <= flowEpsilon {
				continue
			}
			plan = append(plan, TransportEntry{
				From: sid,
				To:   dstIDs[arc.to-1-n],
				Mass: arc.flow,
			})
		}
	}
	sort.Slice(plan, func(x, y int) bool {
		if plan[x].From != plan[y].From {
			return plan[x].From < plan[y].From
		}
		return plan[x].To < plan[y].To
	})

	return cost, plan, nil
}

// flowArc is one directed arc of the residual network.
type flowArc struct {
	to   int
	rev  int // index of the reverse arc in arcs[to]
	cap  float64
	flow float64
	cost float64
}

// flowNetwork is a residual graph for successive-shortest-path min-cost
// flow. Supports are small (a handful of categories per recipe), so the
// dense Bellman-Ford search is cheap.
type flowNetwork struct {
	arcs [][]flowArc
}

func newFlowNetwork(nodes int) *flowNetwork {
	return &flowNetwork{arcs: make([][]flowArc, nodes)}
}

func (f *flowNetwork) addArc(from, to int, cap, cost float64) {
	f.arcs[from] = append(f.arcs[from], flowArc{to: to, rev: len(f.arcs[to]), cap: cap, cost: cost})
	f.arcs[to] = append(f.arcs[to], flowArc{to: from, rev: len(f.arcs[from]) - 1, cap: 0, cost: -cost})
}

// minCostFlow pushes the maximum feasible flow from source to sink along
// successive shortest paths and returns the total cost. Reverse arcs
// carry negative costs, so each search is a Bellman-Ford relaxation.
func (f *flowNetwork) minCostFlow(source, sink int) float64 {
	var total float64
	nodes := len(f.arcs)
	dist := make([]float64, nodes)
	prevNode := make([]int, nodes)
	prevArc := make([]int, nodes)

	for {
		for i := range dist {
			dist[i] = math.Inf(1)
			prevNode[i] = -1
		}
		dist[source] = 0

		for relaxed, pass := true, 0; relaxed && pass < nodes; pass++ {
			relaxed = false
			for u := 0; u < nodes; u++ {
				if math.IsInf(dist[u], 1) {
					continue
				}
				for ai, arc := range f.arcs[u] {
					if arc.cap-arc.flow <= flowEpsilon {
						continue
					}
					if d := dist[u] + arc.cost; d < dist[arc.to]-flowEpsilon {
						dist[arc.to] = d
						prevNode[arc.to] = u
						prevArc[arc.to] = ai
						relaxed = true
					}
				}
			}
		}

		if math.IsInf(dist[sink], 1) {
			return total
		}

		// Bottleneck along the path.
		push := math.Inf(1)
		for v := sink; v != source; v = prevNode[v] {
			arc := f.arcs[prevNode[v]][prevArc[v]]
			if residual := arc.cap - arc.flow; residual < push {
				push = residual
			}
		}
		if push <= flowEpsilon || math.IsInf(push, 1) {
			return total
		}

		for v := sink; v != source; v = prevNode[v] {
			arc := &f.arcs[prevNode[v]][prevArc[v]]
			arc.flow += push
			rev := &f.arcs[arc.to][arc.rev]
			rev.flow -= push
			total += push * arc.cost
		}
	}
}
