package aff

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestHalfSpaceNegate(t *testing.T) {
	h := CoordinateGE(2, 0, 0) // x0 >= 0
	neg := h.Negate()          // -x0 > 0

	x := mat.NewVecDense(2, []float64{1, 0})
	in, _ := h.Contains(x, 0)
	out, _ := neg.Contains(x, 0)
	if !in || out {
		t.Errorf("x0=1: h=%v, negation=%v; want true, false", in, out)
	}

	// Every point satisfies exactly one of h and its complement.
	for _, v := range []float64{-2, -1e-9, 0, 1e-9, 3} {
		x := mat.NewVecDense(2, []float64{v, 0})
		a, _ := h.Contains(x, 0)
		b, _ := neg.Contains(x, 0)
		if a == b {
			t.Errorf("x0=%v: constraint and complement agree (%v)", v, a)
		}
	}

	if !neg.Strict {
		t.Error("negation of a non-strict constraint must be strict")
	}
	if neg.Negate().Strict {
		t.Error("double negation must restore non-strictness")
	}
}

func TestHalfSpaceComposeWith(t *testing.T) {
	// Constraint y0 - y1 >= 0 pulled back through f(x) = (2x0+1, x1-3).
	w := mat.NewVecDense(2, []float64{1, -1})
	h := NewHalfSpace(w, 0)

	f, _ := FromSlices(2, 2, []float64{
		2, 0,
		0, 1,
	}, []float64{1, -3})

	g, err := h.ComposeWith(f)
	if err != nil {
		t.Fatalf("ComposeWith: %v", err)
	}

	// ⟨w, f(x)⟩ = 2x0 + 1 - x1 + 3, so g must be 2x0 - x1 + 4 >= 0.
	if g.W.AtVec(0) != 2 || g.W.AtVec(1) != -1 {
		t.Errorf("normal = (%v, %v), want (2, -1)", g.W.AtVec(0), g.W.AtVec(1))
	}
	if g.C != 4 {
		t.Errorf("offset = %v, want 4", g.C)
	}

	// Semantic check: g(x) holds iff h(f(x)) holds on samples.
	for _, pt := range [][]float64{{0, 0}, {-3, 1}, {1, 7}, {0.5, 5}} {
		x := mat.NewVecDense(2, pt)
		fx, _ := f.Apply(x)
		want, _ := h.Contains(fx, 0)
		got, _ := g.Contains(x, 0)
		if got != want {
			t.Errorf("x=%v: pulled-back constraint disagrees with original", pt)
		}
	}
}

func TestFromIntervals(t *testing.T) {
	p, err := FromIntervals([][2]float64{{-1, 1}, {0, 2}})
	if err != nil {
		t.Fatalf("FromIntervals: %v", err)
	}
	if p.NumConstraints() != 4 {
		t.Fatalf("constraints = %d, want 4", p.NumConstraints())
	}

	inside := mat.NewVecDense(2, []float64{0.5, 1})
	outside := mat.NewVecDense(2, []float64{0.5, 3})
	if ok, _ := p.Contains(inside, 0); !ok {
		t.Error("interior point reported outside")
	}
	if ok, _ := p.Contains(outside, 0); ok {
		t.Error("exterior point reported inside")
	}

	if _, err := FromIntervals([][2]float64{{2, 1}}); err == nil {
		t.Error("expected error for empty interval")
	}
}

func TestToAxb(t *testing.T) {
	p, _ := NewPolytope(2)
	p.Append(CoordinateGE(2, 0, -1)) // x0 - 1 >= 0
	w := mat.NewVecDense(2, []float64{0, 1})
	p.Append(NewStrictHalfSpace(w, 2)) // x1 + 2 > 0

	g, h, err := p.ToAxb(1e-6)
	if err != nil {
		t.Fatalf("ToAxb: %v", err)
	}
	rows, cols := g.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("G dims = (%d,%d), want (2,2)", rows, cols)
	}
	// Row 0: -x0 <= -1. Row 1: -x1 <= 2 - eps.
	if g.At(0, 0) != -1 || h[0] != -1 {
		t.Errorf("row 0 = (%v, %v), want (-1, -1)", g.At(0, 0), h[0])
	}
	if g.At(1, 1) != -1 || h[1] >= 2 {
		t.Errorf("strict row not tightened: h[1] = %v", h[1])
	}

	empty, _ := NewPolytope(2)
	if _, _, err := empty.ToAxb(0); err == nil {
		t.Error("expected ErrEmptyPolytope for empty conjunction")
	}
}

func TestIntersect(t *testing.T) {
	a, _ := FromIntervals([][2]float64{{-1, 1}, {-1, 1}})
	b, _ := NewPolytope(2)
	b.Append(CoordinateGE(2, 0, 0)) // x0 >= 0

	c, err := a.Intersect(b)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if c.NumConstraints() != a.NumConstraints()+1 {
		t.Errorf("constraints = %d, want %d", c.NumConstraints(), a.NumConstraints()+1)
	}
	if ok, _ := c.Contains(mat.NewVecDense(2, []float64{-0.5, 0}), 0); ok {
		t.Error("point violating the added facet reported inside")
	}
}

func TestHalfSpaceString(t *testing.T) {
	h := CoordinateGE(2, 1, -0.5)
	s := h.String()
	if s == "" {
		t.Fatal("empty rendering")
	}
	if h.Negate().String() == s {
		t.Error("negation renders identically")
	}
}
