package lp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/aff"
)

func box(t *testing.T, intervals ...[2]float64) *aff.Polytope {
	t.Helper()
	p, err := aff.FromIntervals(intervals)
	if err != nil {
		t.Fatalf("FromIntervals: %v", err)
	}
	return p
}

func TestIsFeasibleBox(t *testing.T) {
	o := New()

	feasible, err := o.IsFeasible(box(t, [2]float64{-1, 1}, [2]float64{-1, 1}))
	if err != nil {
		t.Fatalf("IsFeasible: %v", err)
	}
	if !feasible {
		t.Error("unit box reported infeasible")
	}
}

func TestIsFeasibleContradiction(t *testing.T) {
	o := New()

	// x0 >= 1 and x0 <= -1.
	p, _ := aff.NewPolytope(2)
	p.Append(aff.CoordinateGE(2, 0, -1))
	w := mat.NewVecDense(2, []float64{-1, 0})
	p.Append(aff.NewHalfSpace(w, -1))

	feasible, err := o.IsFeasible(p)
	if err != nil {
		t.Fatalf("IsFeasible: %v", err)
	}
	if feasible {
		t.Error("contradicting constraints reported feasible")
	}
}

func TestIsFeasibleUnconstrained(t *testing.T) {
	o := New()
	p, _ := aff.NewPolytope(3)

	feasible, err := o.IsFeasible(p)
	if err != nil {
		t.Fatalf("IsFeasible: %v", err)
	}
	if !feasible {
		t.Error("R^3 reported infeasible")
	}
}

func TestIsFeasibleUnboundedRegion(t *testing.T) {
	o := New()

	// The half-plane x0 >= 5 is feasible although unbounded.
	p, _ := aff.NewPolytope(2)
	p.Append(aff.CoordinateGE(2, 0, -5))

	feasible, err := o.IsFeasible(p)
	if err != nil {
		t.Fatalf("IsFeasible: %v", err)
	}
	if !feasible {
		t.Error("unbounded half-plane reported infeasible")
	}
}

func TestIsFeasibleZeroNormalFacets(t *testing.T) {
	o := New()

	// Composition with constant maps leaves facets like 0·x + 3 >= 0.
	p, _ := aff.NewPolytope(2)
	p.Append(aff.NewHalfSpace(mat.NewVecDense(2, nil), 3))
	feasible, err := o.IsFeasible(p)
	if err != nil || !feasible {
		t.Errorf("vacuous facet: feasible=%v err=%v, want true, nil", feasible, err)
	}

	p, _ = aff.NewPolytope(2)
	p.Append(aff.NewHalfSpace(mat.NewVecDense(2, nil), -3))
	feasible, err = o.IsFeasible(p)
	if err != nil || feasible {
		t.Errorf("unsatisfiable facet: feasible=%v err=%v, want false, nil", feasible, err)
	}

	// Strict zero-normal facet 0·x + 0 > 0 is unsatisfiable.
	p, _ = aff.NewPolytope(2)
	p.Append(aff.NewStrictHalfSpace(mat.NewVecDense(2, nil), 0))
	feasible, err = o.IsFeasible(p)
	if err != nil || feasible {
		t.Errorf("strict zero facet: feasible=%v err=%v, want false, nil", feasible, err)
	}
}

func TestStrictBoundaryOnly(t *testing.T) {
	o := New()

	// x0 >= 0 and -x0 > 0 has no point: the strict side excludes the shared
	// boundary.
	p, _ := aff.NewPolytope(1)
	p.Append(aff.CoordinateGE(1, 0, 0))
	w := mat.NewVecDense(1, []float64{-1})
	p.Append(aff.NewStrictHalfSpace(w, 0))

	feasible, err := o.IsFeasible(p)
	if err != nil {
		t.Fatalf("IsFeasible: %v", err)
	}
	if feasible {
		t.Error("boundary-only strict region reported feasible")
	}
}

func TestChebyshevCenterUnitBox(t *testing.T) {
	o := New()

	center, radius, err := o.ChebyshevCenter(box(t, [2]float64{-1, 1}, [2]float64{-1, 1}))
	if err != nil {
		t.Fatalf("ChebyshevCenter: %v", err)
	}
	if math.Abs(radius-1) > 1e-6 {
		t.Errorf("radius = %v, want 1", radius)
	}
	for j := 0; j < 2; j++ {
		if math.Abs(center.AtVec(j)) > 1e-6 {
			t.Errorf("center[%d] = %v, want 0", j, center.AtVec(j))
		}
	}
}

func TestChebyshevCenterAsymmetricBox(t *testing.T) {
	o := New()

	center, radius, err := o.ChebyshevCenter(box(t, [2]float64{0, 4}, [2]float64{0, 2}))
	if err != nil {
		t.Fatalf("ChebyshevCenter: %v", err)
	}
	if math.Abs(radius-1) > 1e-6 {
		t.Errorf("radius = %v, want 1", radius)
	}
	if math.Abs(center.AtVec(1)-1) > 1e-6 {
		t.Errorf("center[1] = %v, want 1", center.AtVec(1))
	}
}

func TestChebyshevCenterInfeasible(t *testing.T) {
	o := New()

	p, _ := aff.NewPolytope(1)
	p.Append(aff.CoordinateGE(1, 0, -1))
	w := mat.NewVecDense(1, []float64{-1})
	p.Append(aff.NewHalfSpace(w, -1))

	_, radius, err := o.ChebyshevCenter(p)
	if err != nil {
		t.Fatalf("ChebyshevCenter: %v", err)
	}
	if !math.IsInf(radius, -1) {
		t.Errorf("radius = %v, want -Inf", radius)
	}
}

func TestOptions(t *testing.T) {
	o := New(WithStrictEps(1e-3), WithSimplexTol(1e-8))
	if o.strictEps != 1e-3 || o.simplexTol != 1e-8 {
		t.Errorf("options not applied: %+v", o)
	}
}
