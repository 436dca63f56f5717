// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"errors"
	"math"
	"testing"
)

// triangleGround builds a three-category ground matrix with
// d(1,2)=1, d(1,3)=2, d(2,3)=1.
func triangleGround() *GroundMatrix {
	g := NewGroundMatrix([]int{1, 2, 3})
	g.set(0, 1, 1)
	g.set(0, 2, 2)
	g.set(1, 2, 1)
	return g
}

func dist(id int, fractions map[int]float64) Distribution {
	return Distribution{RecipeID: id, Fractions: fractions}
}

func TestEMDIdenticalDistributions(t *testing.T) {
	g := triangleGround()
	d := dist(1, map[int]float64{1: 0.5, 2: 0.3, 3: 0.2})

	cost, plan, err := EMD(d, d, g)
	if err != nil {
		t.Fatalf("EMD failed: %v", err)
	}
	if cost != 0 {
		t.Errorf("EMD(X, X) = %g, want exactly 0", cost)
	}
	if got := plan.TotalMass(); math.Abs(got-1.0) > MassTolerance {
		t.Errorf("plan mass = %g, want 1.0", got)
	}
}

func TestEMDSharedAndMovedMass(t *testing.T) {
	// R1 = {1: 0.5, 2: 0.5}, R2 = {1: 0.5, 3: 0.5}. The shared half
	// stays in place; the other half moves 2 -> 3 at cost 1.
	g := triangleGround()
	r1 := dist(1, map[int]float64{1: 0.5, 2: 0.5})
	r2 := dist(2, map[int]float64{1: 0.5, 3: 0.5})

	cost, plan, err := EMD(r1, r2, g)
	if err != nil {
		t.Fatalf("EMD failed: %v", err)
	}
	if math.Abs(cost-0.5) > MassTolerance {
		t.Errorf("EMD = %g, want 0.5", cost)
	}
	if got := plan.TotalMass(); math.Abs(got-1.0) > MassTolerance {
		t.Errorf("plan mass = %g, want 1.0", got)
	}

	var moved float64
	for _, e := range plan {
		if e.From == 2 && e.To == 3 {
			moved += e.Mass
		}
	}
	if math.Abs(moved-0.5) > MassTolerance {
		t.Errorf("mass moved 2 -> 3 = %g, want 0.5", moved)
	}
}

func TestEMDSymmetry(t *testing.T) {
	g := triangleGround()
	r1 := dist(1, map[int]float64{1: 0.7, 2: 0.3})
	r2 := dist(2, map[int]float64{2: 0.4, 3: 0.6})

	ab, _, err := EMD(r1, r2, g)
	if err != nil {
		t.Fatalf("EMD(a, b) failed: %v", err)
	}
	ba, _, err := EMD(r2, r1, g)
	if err != nil {
		t.Fatalf("EMD(b, a) failed: %v", err)
	}
	if math.Abs(ab-ba) > MassTolerance {
		t.Errorf("EMD asymmetric: %g vs %g", ab, ba)
	}
}

func TestEMDPlanConservation(t *testing.T) {
	g := triangleGround()
	r1 := dist(1, map[int]float64{1: 0.25, 2: 0.75})
	r2 := dist(2, map[int]float64{1: 0.5, 3: 0.5})

	_, plan, err := EMD(r1, r2, g)
	if err != nil {
		t.Fatalf("EMD failed: %v", err)
	}

	out := make(map[int]float64)
	in := make(map[int]float64)
	for _, e := range plan {
		if e.Mass <= 0 {
			t.Errorf("plan carries non-positive mass entry: %+v", e)
		}
		out[e.From] += e.Mass
		in[e.To] += e.Mass
	}
	for id, want := range r1.Fractions {
		if math.Abs(out[id]-want) > MassTolerance {
			t.Errorf("outflow from %d = %g, want %g", id, out[id], want)
		}
	}
	for id, want := range r2.Fractions {
		if math.Abs(in[id]-want) > MassTolerance {
			t.Errorf("inflow to %d = %g, want %g", id, in[id], want)
		}
	}
}

func TestEMDPlanOrdering(t *testing.T) {
	g := triangleGround()
	r1 := dist(1, map[int]float64{1: 0.4, 2: 0.6})
	r2 := dist(2, map[int]float64{2: 0.3, 3: 0.7})

	_, plan, err := EMD(r1, r2, g)
	if err != nil {
		t.Fatalf("EMD failed: %v", err)
	}
	for i := 1; i < len(plan); i++ {
		prev, cur := plan[i-1], plan[i]
		if prev.From > cur.From || (prev.From == cur.From && prev.To >= cur.To) {
			t.Errorf("plan not ordered at %d: %+v then %+v", i, prev, cur)
		}
	}
}

func TestEMDInfeasibleMarginals(t *testing.T) {
	g := triangleGround()
	r1 := dist(1, map[int]float64{1: 0.5})
	r2 := dist(2, map[int]float64{1: 1.0})

	_, _, err := EMD(r1, r2, g)
	if !errors.Is(err, ErrInfeasibleTransport) {
		t.Fatalf("expected ErrInfeasibleTransport, got %v", err)
	}
}

func TestEMDLowerBoundsByGroundDistance(t *testing.T) {
	// All mass at one category moving to another costs exactly the
	// ground distance between them.
	g := triangleGround()
	r1 := dist(1, map[int]float64{1: 1.0})
	r2 := dist(2, map[int]float64{3: 1.0})

	cost, plan, err := EMD(r1, r2, g)
	if err != nil {
		t.Fatalf("EMD failed: %v", err)
	}
	if math.Abs(cost-2.0) > MassTolerance {
		t.Errorf("EMD = %g, want 2.0", cost)
	}
	if len(plan) != 1 || plan[0].From != 1 || plan[0].To != 3 {
		t.Errorf("unexpected plan: %+v", plan)
	}
}
