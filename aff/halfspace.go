package aff

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/pkg/errors"
)

// HalfSpace is the affine constraint ⟨w,x⟩ + c ≥ 0, or ⟨w,x⟩ + c > 0 when
// Strict is set. It serves both as the predicate of a decision node and as a
// facet of a path polytope.
type HalfSpace struct {
	W      *mat.VecDense
	C      float64
	Strict bool
}

// NewHalfSpace creates the constraint ⟨w,x⟩ + c ≥ 0.
func NewHalfSpace(w *mat.VecDense, c float64) HalfSpace {
	return HalfSpace{W: w, C: c}
}

// NewStrictHalfSpace creates the constraint ⟨w,x⟩ + c > 0.
func NewStrictHalfSpace(w *mat.VecDense, c float64) HalfSpace {
	return HalfSpace{W: w, C: c, Strict: true}
}

// CoordinateGE returns the constraint x_row + c ≥ 0 in R^dim.
func CoordinateGE(dim, row int, c float64) HalfSpace {
	w := mat.NewVecDense(dim, nil)
	w.SetVec(row, 1)
	return HalfSpace{W: w, C: c}
}

// Dim returns the ambient dimension of the constraint.
func (h HalfSpace) Dim() int {
	return h.W.Len()
}

// Eval returns ⟨w,x⟩ + c.
func (h HalfSpace) Eval(x *mat.VecDense) (float64, error) {
	if x.Len() != h.Dim() {
		return 0, errors.NewDimensionMismatchError("HalfSpace.Eval", h.Dim(), x.Len())
	}
	return mat.Dot(h.W, x) + h.C, nil
}

// Contains reports whether x satisfies the constraint. Strict constraints are
// tested with margin eps to keep feasibility decisions stable under rounding.
func (h HalfSpace) Contains(x *mat.VecDense, eps float64) (bool, error) {
	v, err := h.Eval(x)
	if err != nil {
		return false, err
	}
	if h.Strict {
		return v > eps, nil
	}
	return v >= -eps, nil
}

// Negate returns the complement constraint. The complement of ⟨w,x⟩ + c ≥ 0
// is ⟨-w,x⟩ - c > 0, so strictness flips.
func (h HalfSpace) Negate() HalfSpace {
	w := mat.NewVecDense(h.Dim(), nil)
	w.ScaleVec(-1, h.W)
	return HalfSpace{W: w, C: -h.C, Strict: !h.Strict}
}

// ComposeWith re-expresses the constraint through the affine map f: a
// constraint on y = f(x) = Wx + b becomes a constraint on x,
//
//	⟨w, Wx+b⟩ + c = ⟨Wᵗw, x⟩ + (⟨w,b⟩ + c)
//
// This substitution is what pulls a decision from a tree's output space back
// into its input space during composition; the sign convention and the
// strictness flag are preserved exactly.
func (h HalfSpace) ComposeWith(f *AffFunc) (HalfSpace, error) {
	if h.Dim() != f.OutDim() {
		return HalfSpace{}, errors.NewDimensionMismatchError("HalfSpace.ComposeWith", f.OutDim(), h.Dim())
	}
	w := mat.NewVecDense(f.InDim(), nil)
	w.MulVec(f.W.T(), h.W)
	return HalfSpace{
		W:      w,
		C:      mat.Dot(h.W, f.B) + h.C,
		Strict: h.Strict,
	}, nil
}

// Clone returns a deep copy of the constraint.
func (h HalfSpace) Clone() HalfSpace {
	return HalfSpace{W: mat.VecDenseCopyOf(h.W), C: h.C, Strict: h.Strict}
}

// String renders the constraint as an inequality, e.g. "1.00·x0 - 0.50·x2 + 3.00 ≥ 0".
func (h HalfSpace) String() string {
	var sb strings.Builder
	first := true
	for i := 0; i < h.Dim(); i++ {
		v := h.W.AtVec(i)
		if v == 0 {
			continue
		}
		switch {
		case first:
			fmt.Fprintf(&sb, "%.2f·x%d", v, i)
		case v < 0:
			fmt.Fprintf(&sb, " - %.2f·x%d", -v, i)
		default:
			fmt.Fprintf(&sb, " + %.2f·x%d", v, i)
		}
		first = false
	}
	if first {
		sb.WriteString("0")
	}
	if h.C < 0 {
		fmt.Fprintf(&sb, " - %.2f", -h.C)
	} else if h.C > 0 {
		fmt.Fprintf(&sb, " + %.2f", h.C)
	}
	if h.Strict {
		sb.WriteString(" > 0")
	} else {
		sb.WriteString(" ≥ 0")
	}
	return sb.String()
}
