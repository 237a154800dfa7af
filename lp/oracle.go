// Package lp implements the feasibility oracle on gonum's simplex solver.
//
// Redundancy elimination in the tree package only needs a yes/no answer:
// does a polytope contain a point? The oracle converts the polytope to the
// general form G·x ≤ h, runs a phase-1 simplex with a zero objective, and
// maps solver breakdowns to SolverFailureError so callers can fall back to
// "assume feasible".
package lp

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/pkg/errors"
)

const (
	// defaultStrictEps is the margin by which strict inequalities are
	// tightened before solving; feasibility of a strict constraint is
	// certified by satisfying it with this slack.
	defaultStrictEps = 1e-9

	// defaultSimplexTol is the convergence tolerance handed to lp.Simplex.
	defaultSimplexTol = 1e-10

	// zeroNormalTol treats constraint normals below this magnitude as zero.
	// Composition with constant maps produces such degenerate facets, and
	// the simplex rejects all-zero rows outright.
	zeroNormalTol = 1e-12
)

// Oracle decides polytope feasibility with gonum's simplex. The zero value
// is not usable; construct with New.
type Oracle struct {
	strictEps  float64
	simplexTol float64
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithStrictEps sets the slack required of strict inequalities.
func WithStrictEps(eps float64) Option {
	return func(o *Oracle) { o.strictEps = eps }
}

// WithSimplexTol sets the simplex convergence tolerance.
func WithSimplexTol(tol float64) Option {
	return func(o *Oracle) { o.simplexTol = tol }
}

// New creates an Oracle with the given options.
func New(opts ...Option) *Oracle {
	o := &Oracle{
		strictEps:  defaultStrictEps,
		simplexTol: defaultSimplexTol,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IsFeasible reports whether p contains at least one point. The error, when
// non-nil, is a SolverFailureError; the caller must then treat the region as
// feasible, never as empty.
func (o *Oracle) IsFeasible(p *aff.Polytope) (bool, error) {
	// Degenerate facets with a zero normal are decided directly: the facet
	// ⟨0,x⟩ + c ≥ 0 is either vacuous or unsatisfiable.
	rows := make([]aff.HalfSpace, 0, p.NumConstraints())
	for _, h := range p.Constraints() {
		if mat.Norm(h.W, math.Inf(1)) <= zeroNormalTol {
			if h.Strict {
				if h.C <= 0 {
					return false, nil
				}
			} else if h.C < 0 {
				return false, nil
			}
			continue
		}
		rows = append(rows, h)
	}
	if len(rows) == 0 {
		return true, nil
	}

	reduced, err := buildPolytope(p.Dim(), rows)
	if err != nil {
		return false, errors.NewSolverFailureError("IsFeasible", len(rows), err)
	}
	g, h, err := reduced.ToAxb(o.strictEps)
	if err != nil {
		return false, errors.NewSolverFailureError("IsFeasible", len(rows), err)
	}

	// Phase-1 only: any feasible point of the standard form certifies the
	// polytope, so the objective is zero.
	c := make([]float64, p.Dim())
	cNew, aNew, bNew := lp.Convert(c, g, h, nil, nil)
	_, _, err = lp.Simplex(cNew, aNew, bNew, o.simplexTol, nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, lp.ErrInfeasible):
		return false, nil
	case errors.Is(err, lp.ErrUnbounded):
		// Cannot happen with a zero objective, but unbounded still implies
		// a feasible point was found.
		return true, nil
	default:
		return false, errors.NewSolverFailureError("IsFeasible", len(rows), err)
	}
}

// ChebyshevCenter returns the center and radius of the largest ball
// inscribed in p: maximize r subject to ⟨w_i,x⟩ + c_i ≥ r·‖w_i‖ for every
// facet. A negative radius certifies infeasibility; errors.ErrUnbounded is
// returned when the radius grows without limit.
func (o *Oracle) ChebyshevCenter(p *aff.Polytope) (*mat.VecDense, float64, error) {
	n := p.Dim()
	m := p.NumConstraints()
	if m == 0 {
		return nil, 0, errors.ErrEmptyPolytope
	}

	// Variables (x, r); minimize -r.
	g := mat.NewDense(m, n+1, nil)
	h := make([]float64, m)
	for i, face := range p.Constraints() {
		norm := mat.Norm(face.W, 2)
		for j := 0; j < n; j++ {
			g.Set(i, j, -face.W.AtVec(j))
		}
		g.Set(i, n, norm)
		h[i] = face.C
	}
	c := make([]float64, n+1)
	c[n] = -1

	cNew, aNew, bNew := lp.Convert(c, g, h, nil, nil)
	_, xStd, err := lp.Simplex(cNew, aNew, bNew, o.simplexTol, nil)
	switch {
	case err == nil:
		// Convert lays the standard-form variables out as the blocks
		// [x⁺, x⁻, slack]; the original free variables are x⁺ - x⁻.
		nVar := n + 1
		x := mat.NewVecDense(n, nil)
		for j := 0; j < n; j++ {
			x.SetVec(j, xStd[j]-xStd[nVar+j])
		}
		r := xStd[n] - xStd[nVar+n]
		return x, r, nil
	case errors.Is(err, lp.ErrInfeasible):
		return nil, math.Inf(-1), nil
	case errors.Is(err, lp.ErrUnbounded):
		return nil, math.Inf(1), errors.ErrUnbounded
	default:
		return nil, 0, errors.NewSolverFailureError("ChebyshevCenter", m, err)
	}
}

// buildPolytope assembles a polytope from prepared facets.
func buildPolytope(dim int, rows []aff.HalfSpace) (*aff.Polytope, error) {
	p, err := aff.NewPolytope(dim)
	if err != nil {
		return nil, err
	}
	for _, h := range rows {
		if err := p.Append(h); err != nil {
			return nil, err
		}
	}
	return p, nil
}
