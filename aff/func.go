// Package aff provides the linear-algebra value types underlying afftree:
// affine maps, half-space constraints and polytopes.
//
// All types are backed by gonum matrices and treated as immutable after
// construction. Operations return fresh values; callers that need to mutate
// work on explicit clones.
package aff

import (
	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/pkg/errors"
)

// AffFunc is an affine map y = Wx + b from R^n to R^m.
//
// W and b are shared by reference when multiple tree terminals coincide, so
// they must not be mutated after construction.
type AffFunc struct {
	W *mat.Dense    // m×n weight matrix
	B *mat.VecDense // bias of length m
}

// NewAffFunc creates an affine map from a weight matrix and a bias vector.
// The bias length must match the matrix row count.
func NewAffFunc(w *mat.Dense, b *mat.VecDense) (*AffFunc, error) {
	rows, _ := w.Dims()
	if b.Len() != rows {
		return nil, errors.NewDimensionMismatchError("NewAffFunc", rows, b.Len())
	}
	return &AffFunc{W: w, B: b}, nil
}

// FromSlices creates an m×n affine map from row-major weights and a bias.
func FromSlices(m, n int, weights, bias []float64) (*AffFunc, error) {
	if len(weights) != m*n {
		return nil, errors.NewValueErrorf("FromSlices", "want %d weights, got %d", m*n, len(weights))
	}
	if len(bias) != m {
		return nil, errors.NewDimensionMismatchError("FromSlices", m, len(bias))
	}
	return &AffFunc{W: mat.NewDense(m, n, weights), B: mat.NewVecDense(m, bias)}, nil
}

// Identity returns the identity map on R^dim.
func Identity(dim int) *AffFunc {
	w := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		w.Set(i, i, 1)
	}
	return &AffFunc{W: w, B: mat.NewVecDense(dim, nil)}
}

// Constant returns the map from R^dim that ignores its input and outputs c.
func Constant(dim int, c *mat.VecDense) *AffFunc {
	return &AffFunc{W: mat.NewDense(c.Len(), dim, nil), B: mat.VecDenseCopyOf(c)}
}

// ConstantScalar returns the map from R^dim to R that always outputs c.
func ConstantScalar(dim int, c float64) *AffFunc {
	return &AffFunc{W: mat.NewDense(1, dim, nil), B: mat.NewVecDense(1, []float64{c})}
}

// ZeroRow returns the identity on R^dim with output coordinate row forced to
// zero. This is the "inactive" branch of a ReLU on that coordinate.
func ZeroRow(dim, row int) *AffFunc {
	f := Identity(dim)
	f.W.Set(row, row, 0)
	return f
}

// ScaleRow returns the identity on R^dim with output coordinate row scaled by
// alpha and shifted by beta.
func ScaleRow(dim, row int, alpha, beta float64) *AffFunc {
	f := Identity(dim)
	f.W.Set(row, row, alpha)
	f.B.SetVec(row, beta)
	return f
}

// SetRow returns the identity on R^dim with output coordinate row pinned to
// the constant c regardless of the input.
func SetRow(dim, row int, c float64) *AffFunc {
	return ScaleRow(dim, row, 0, c)
}

// InDim returns the input dimension n.
func (f *AffFunc) InDim() int {
	_, n := f.W.Dims()
	return n
}

// OutDim returns the output dimension m.
func (f *AffFunc) OutDim() int {
	m, _ := f.W.Dims()
	return m
}

// Apply evaluates the map at x.
func (f *AffFunc) Apply(x *mat.VecDense) (*mat.VecDense, error) {
	if x.Len() != f.InDim() {
		return nil, errors.NewDimensionMismatchError("AffFunc.Apply", f.InDim(), x.Len())
	}
	y := mat.NewVecDense(f.OutDim(), nil)
	y.MulVec(f.W, x)
	y.AddVec(y, f.B)
	return y, nil
}

// ApplySlice evaluates the map at the point given as a plain slice.
func (f *AffFunc) ApplySlice(x []float64) ([]float64, error) {
	y, err := f.Apply(mat.NewVecDense(len(x), x))
	if err != nil {
		return nil, err
	}
	out := make([]float64, y.Len())
	copy(out, y.RawVector().Data)
	return out, nil
}

// Compose returns the map x ↦ f(g(x)), i.e. f after g:
//
//	(W_f, b_f) ∘ (W_g, b_g) = (W_f·W_g, W_f·b_g + b_f)
func (f *AffFunc) Compose(g *AffFunc) (*AffFunc, error) {
	if f.InDim() != g.OutDim() {
		return nil, errors.NewDimensionMismatchError("AffFunc.Compose", f.InDim(), g.OutDim())
	}
	w := mat.NewDense(f.OutDim(), g.InDim(), nil)
	w.Mul(f.W, g.W)

	b := mat.NewVecDense(f.OutDim(), nil)
	b.MulVec(f.W, g.B)
	b.AddVec(b, f.B)

	return &AffFunc{W: w, B: b}, nil
}

// RowFunctional returns row i of the map as an affine functional (w, c) with
// x ↦ ⟨w,x⟩ + c. The returned vector is a copy.
func (f *AffFunc) RowFunctional(i int) (*mat.VecDense, float64, error) {
	if i < 0 || i >= f.OutDim() {
		return nil, 0, errors.NewValueErrorf("AffFunc.RowFunctional", "row %d out of range [0,%d)", i, f.OutDim())
	}
	w := mat.NewVecDense(f.InDim(), nil)
	for j := 0; j < f.InDim(); j++ {
		w.SetVec(j, f.W.At(i, j))
	}
	return w, f.B.AtVec(i), nil
}

// EqualWithin reports whether f and g represent the same affine map up to the
// given absolute tolerance.
func (f *AffFunc) EqualWithin(g *AffFunc, tol float64) bool {
	if f.InDim() != g.InDim() || f.OutDim() != g.OutDim() {
		return false
	}
	if !mat.EqualApprox(f.W, g.W, tol) {
		return false
	}
	return mat.EqualApprox(f.B, g.B, tol)
}

// Clone returns a deep copy of the map.
func (f *AffFunc) Clone() *AffFunc {
	return &AffFunc{W: mat.DenseCopyOf(f.W), B: mat.VecDenseCopyOf(f.B)}
}
