// Package schema builds the canonical AffTrees for standard piecewise-linear
// primitives. Each constructor is a pure function of its parameters and
// returns a fresh tree that reproduces the named mathematical function
// exactly on R^dim, acting as the identity on every coordinate it is not
// parameterized to touch.
//
// The distillation driver composes the Partial variants row by row; the
// non-partial variants are conveniences that fold all rows into one tree.
package schema

import (
	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/pkg/errors"
	"github.com/afftree/afftree/tree"
)

func checkRow(op string, dim, row int) error {
	if dim <= 0 {
		return errors.NewValueErrorf(op, "dimension must be positive, got %d", dim)
	}
	if row < 0 || row >= dim {
		return errors.NewValueErrorf(op, "row %d out of range [0,%d)", row, dim)
	}
	return nil
}

// PartialReLU returns the tree for x ↦ (x_0, ..., max(x_row, 0), ..., x_{dim-1}).
func PartialReLU(dim, row int) (*tree.AffTree, error) {
	if err := checkRow("PartialReLU", dim, row); err != nil {
		return nil, err
	}
	return tree.Branch(
		aff.CoordinateGE(dim, row, 0),
		tree.FromFunc(aff.Identity(dim)),
		tree.FromFunc(aff.ZeroRow(dim, row)),
	)
}

// ReLU folds PartialReLU over every coordinate.
func ReLU(dim int) (*tree.AffTree, error) {
	return foldRows("ReLU", dim, func(row int) (*tree.AffTree, error) {
		return PartialReLU(dim, row)
	})
}

// PartialLeakyReLU returns the tree applying x ↦ x for x_row ≥ 0 and
// x_row ↦ alpha·x_row otherwise, identity on all other coordinates.
func PartialLeakyReLU(dim, row int, alpha float64) (*tree.AffTree, error) {
	if err := checkRow("PartialLeakyReLU", dim, row); err != nil {
		return nil, err
	}
	return tree.Branch(
		aff.CoordinateGE(dim, row, 0),
		tree.FromFunc(aff.Identity(dim)),
		tree.FromFunc(aff.ScaleRow(dim, row, alpha, 0)),
	)
}

// LeakyReLU folds PartialLeakyReLU over every coordinate.
func LeakyReLU(dim int, alpha float64) (*tree.AffTree, error) {
	return foldRows("LeakyReLU", dim, func(row int) (*tree.AffTree, error) {
		return PartialLeakyReLU(dim, row, alpha)
	})
}

// PartialHardTanh returns the tree clamping x_row to [-1, 1]:
// breakpoints at -1 and 1, identity in between.
func PartialHardTanh(dim, row int) (*tree.AffTree, error) {
	if err := checkRow("PartialHardTanh", dim, row); err != nil {
		return nil, err
	}
	inner, err := tree.Branch(
		aff.CoordinateGE(dim, row, 1), // x_row ≥ -1
		tree.FromFunc(aff.Identity(dim)),
		tree.FromFunc(aff.SetRow(dim, row, -1)),
	)
	if err != nil {
		return nil, err
	}
	return tree.Branch(
		aff.CoordinateGE(dim, row, -1), // x_row ≥ 1
		tree.FromFunc(aff.SetRow(dim, row, 1)),
		inner,
	)
}

// HardTanh folds PartialHardTanh over every coordinate.
func HardTanh(dim int) (*tree.AffTree, error) {
	return foldRows("HardTanh", dim, func(row int) (*tree.AffTree, error) {
		return PartialHardTanh(dim, row)
	})
}

// PartialHardSigmoid returns the tree for the hard sigmoid on x_row:
// 0 below -3, 1 above 3, x/6 + 1/2 in between.
func PartialHardSigmoid(dim, row int) (*tree.AffTree, error) {
	if err := checkRow("PartialHardSigmoid", dim, row); err != nil {
		return nil, err
	}
	inner, err := tree.Branch(
		aff.CoordinateGE(dim, row, 3), // x_row ≥ -3
		tree.FromFunc(aff.ScaleRow(dim, row, 1.0/6.0, 0.5)),
		tree.FromFunc(aff.SetRow(dim, row, 0)),
	)
	if err != nil {
		return nil, err
	}
	return tree.Branch(
		aff.CoordinateGE(dim, row, -3), // x_row ≥ 3
		tree.FromFunc(aff.SetRow(dim, row, 1)),
		inner,
	)
}

// HardSigmoid folds PartialHardSigmoid over every coordinate.
func HardSigmoid(dim int) (*tree.AffTree, error) {
	return foldRows("HardSigmoid", dim, func(row int) (*tree.AffTree, error) {
		return PartialHardSigmoid(dim, row)
	})
}

// foldRows composes the per-row schema trees for rows 0..dim-1 into one tree.
func foldRows(op string, dim int, build func(row int) (*tree.AffTree, error)) (*tree.AffTree, error) {
	if dim <= 0 {
		return nil, errors.NewValueErrorf(op, "dimension must be positive, got %d", dim)
	}
	acc, err := tree.Identity(dim)
	if err != nil {
		return nil, err
	}
	for row := 0; row < dim; row++ {
		step, err := build(row)
		if err != nil {
			return nil, err
		}
		acc, err = acc.Compose(step)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// comparison returns the constraint x_i - x_j ≥ 0 in R^dim.
func comparison(dim, i, j int) aff.HalfSpace {
	w := mat.NewVecDense(dim, nil)
	w.SetVec(i, 1)
	w.SetVec(j, -1)
	return aff.NewHalfSpace(w, 0)
}
