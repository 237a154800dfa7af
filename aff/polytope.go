package aff

import (
	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/pkg/errors"
)

// Polytope is an ordered conjunction of half-space constraints over a fixed
// ambient dimension. The empty conjunction is all of R^dim.
//
// During tree traversal a polytope accumulates the constraints along the
// path from the root, taking the constraint or its complement depending on
// the branch followed at each decision ancestor.
type Polytope struct {
	dim int
	hs  []HalfSpace
}

// NewPolytope creates the unconstrained polytope R^dim.
func NewPolytope(dim int) (*Polytope, error) {
	if dim <= 0 {
		return nil, errors.NewValueErrorf("NewPolytope", "dimension must be positive, got %d", dim)
	}
	return &Polytope{dim: dim}, nil
}

// FromIntervals creates the hyperrectangle described by per-coordinate
// [lo, hi] intervals.
func FromIntervals(intervals [][2]float64) (*Polytope, error) {
	dim := len(intervals)
	p, err := NewPolytope(dim)
	if err != nil {
		return nil, err
	}
	for i, iv := range intervals {
		lo, hi := iv[0], iv[1]
		if lo > hi {
			return nil, errors.NewValueErrorf("FromIntervals", "interval %d is empty: [%g, %g]", i, lo, hi)
		}
		// x_i - lo >= 0 and hi - x_i >= 0.
		p.hs = append(p.hs, CoordinateGE(dim, i, -lo))
		w := mat.NewVecDense(dim, nil)
		w.SetVec(i, -1)
		p.hs = append(p.hs, HalfSpace{W: w, C: hi})
	}
	return p, nil
}

// Dim returns the ambient dimension.
func (p *Polytope) Dim() int {
	return p.dim
}

// NumConstraints returns the number of half-space facets.
func (p *Polytope) NumConstraints() int {
	return len(p.hs)
}

// Constraints returns the facet list. The slice is shared; callers must not
// modify it.
func (p *Polytope) Constraints() []HalfSpace {
	return p.hs
}

// Append adds a constraint to the conjunction in place.
func (p *Polytope) Append(h HalfSpace) error {
	if h.Dim() != p.dim {
		return errors.NewDimensionMismatchError("Polytope.Append", p.dim, h.Dim())
	}
	p.hs = append(p.hs, h)
	return nil
}

// Intersect returns the conjunction of p and q as a new polytope.
func (p *Polytope) Intersect(q *Polytope) (*Polytope, error) {
	if q.dim != p.dim {
		return nil, errors.NewDimensionMismatchError("Polytope.Intersect", p.dim, q.dim)
	}
	out := &Polytope{dim: p.dim, hs: make([]HalfSpace, 0, len(p.hs)+len(q.hs))}
	out.hs = append(out.hs, p.hs...)
	out.hs = append(out.hs, q.hs...)
	return out, nil
}

// Contains reports whether x satisfies every constraint, with slack eps on
// strict facets.
func (p *Polytope) Contains(x *mat.VecDense, eps float64) (bool, error) {
	if x.Len() != p.dim {
		return false, errors.NewDimensionMismatchError("Polytope.Contains", p.dim, x.Len())
	}
	for _, h := range p.hs {
		ok, err := h.Contains(x, eps)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ToAxb exports the polytope in the form G·x ≤ h expected by LP solvers.
// Each facet ⟨w,x⟩ + c ≥ 0 becomes the row -w·x ≤ c; strict facets are
// tightened by eps so the solver decides strict feasibility.
func (p *Polytope) ToAxb(eps float64) (*mat.Dense, []float64, error) {
	if len(p.hs) == 0 {
		return nil, nil, errors.ErrEmptyPolytope
	}
	g := mat.NewDense(len(p.hs), p.dim, nil)
	h := make([]float64, len(p.hs))
	for i, face := range p.hs {
		for j := 0; j < p.dim; j++ {
			g.Set(i, j, -face.W.AtVec(j))
		}
		h[i] = face.C
		if face.Strict {
			h[i] -= eps
		}
	}
	return g, h, nil
}

// Clone returns a deep copy of the polytope.
func (p *Polytope) Clone() *Polytope {
	out := &Polytope{dim: p.dim, hs: make([]HalfSpace, len(p.hs))}
	for i, h := range p.hs {
		out.hs[i] = h.Clone()
	}
	return out
}
