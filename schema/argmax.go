package schema

import (
	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/pkg/errors"
	"github.com/afftree/afftree/tree"
)

// Argmax returns the tree mapping x in R^dim to the index of its largest
// coordinate, as a scalar constant. The tree keeps a running winner and
// compares it against each remaining coordinate; on exact ties the lower
// index wins, so repeated evaluations are deterministic.
func Argmax(dim int) (*tree.AffTree, error) {
	if dim <= 0 {
		return nil, errors.NewValueErrorf("Argmax", "dimension must be positive, got %d", dim)
	}
	if dim == 1 {
		return tree.FromFunc(aff.ConstantScalar(1, 0)), nil
	}
	return argmaxRec(dim, 0, 1)
}

// argmaxRec decides between the current winner best and coordinates
// next..dim-1. The comparison x_best - x_next ≥ 0 keeps best on ties, and
// best is always the smaller index at that point.
func argmaxRec(dim, best, next int) (*tree.AffTree, error) {
	if next == dim {
		return tree.FromFunc(aff.ConstantScalar(dim, float64(best))), nil
	}
	then, err := argmaxRec(dim, best, next+1)
	if err != nil {
		return nil, err
	}
	els, err := argmaxRec(dim, next, next+1)
	if err != nil {
		return nil, err
	}
	return tree.Branch(comparison(dim, best, next), then, els)
}

// ClassChar returns the characteristic tree of class clazz: it maps x to 1
// when coordinate clazz is a maximum of x and to 0 otherwise. Ties in favor
// of clazz count as membership, matching the argmax tie-break when
// clazz is the lowest tied index.
func ClassChar(dim, clazz int) (*tree.AffTree, error) {
	if err := checkRow("ClassChar", dim, clazz); err != nil {
		return nil, err
	}
	acc := tree.FromFunc(aff.ConstantScalar(dim, 1))
	reject := tree.FromFunc(aff.ConstantScalar(dim, 0))
	var err error
	for j := dim - 1; j >= 0; j-- {
		if j == clazz {
			continue
		}
		acc, err = tree.Branch(comparison(dim, clazz, j), acc, reject)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// InfNormBall returns the indicator tree of the closed inf-norm ball around
// center: 1 when |x_i - c_i| ≤ radius for every coordinate, 0 otherwise.
func InfNormBall(dim int, center *mat.VecDense, radius float64) (*tree.AffTree, error) {
	if dim <= 0 {
		return nil, errors.NewValueErrorf("InfNormBall", "dimension must be positive, got %d", dim)
	}
	if center.Len() != dim {
		return nil, errors.NewDimensionMismatchError("InfNormBall", dim, center.Len())
	}
	if radius < 0 {
		return nil, errors.NewValueErrorf("InfNormBall", "radius must be non-negative, got %g", radius)
	}

	acc := tree.FromFunc(aff.ConstantScalar(dim, 1))
	reject := tree.FromFunc(aff.ConstantScalar(dim, 0))
	var err error
	for i := dim - 1; i >= 0; i-- {
		c := center.AtVec(i)

		// radius + c - x_i >= 0, i.e. x_i <= c + radius.
		upper := mat.NewVecDense(dim, nil)
		upper.SetVec(i, -1)
		acc, err = tree.Branch(aff.NewHalfSpace(upper, c+radius), acc, reject)
		if err != nil {
			return nil, err
		}

		// x_i - c + radius >= 0, i.e. x_i >= c - radius.
		acc, err = tree.Branch(aff.CoordinateGE(dim, i, radius-c), acc, reject)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// InfNorm returns the indicator tree of ‖x‖_inf ≤ maximum.
func InfNorm(dim int, maximum float64) (*tree.AffTree, error) {
	return InfNormBall(dim, mat.NewVecDense(dim, nil), maximum)
}
