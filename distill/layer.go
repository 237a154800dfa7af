// Package distill drives the layer-by-layer construction of a network's
// surrogate tree: each layer's affine map and activation schema are composed
// into a running AffTree, with infeasible branches pruned after every step.
package distill

import (
	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/pkg/errors"
)

// Activation selects the piecewise-linear nonlinearity applied after a
// layer's affine map. The set is closed: composition dispatches over these
// tags and nothing else, since the schema catalog is part of the
// exactness contract.
type Activation int

const (
	// None applies no nonlinearity.
	None Activation = iota
	// ReLU applies max(x, 0) per coordinate.
	ReLU
	// LeakyReLU applies x for x ≥ 0 and Alpha·x otherwise.
	LeakyReLU
	// HardTanh clamps each coordinate to [-1, 1].
	HardTanh
	// HardSigmoid applies the piecewise-linear sigmoid surrogate
	// clamp(x/6 + 1/2, 0, 1).
	HardSigmoid
)

func (a Activation) String() string {
	switch a {
	case None:
		return "none"
	case ReLU:
		return "relu"
	case LeakyReLU:
		return "leaky_relu"
	case HardTanh:
		return "hard_tanh"
	case HardSigmoid:
		return "hard_sigmoid"
	default:
		return "unknown"
	}
}

// Layer is one stage of the network, given as plain numeric arrays: the
// affine map y = Wx + B followed by an activation. This is the only
// representation the driver depends on; extracting it from a training
// framework's checkpoint is an external concern.
type Layer struct {
	W          *mat.Dense
	B          *mat.VecDense
	Activation Activation

	// Alpha is the negative-side slope for LeakyReLU; ignored otherwise.
	Alpha float64
}

// InDim returns the layer's input dimension.
func (l Layer) InDim() int {
	_, n := l.W.Dims()
	return n
}

// OutDim returns the layer's output dimension.
func (l Layer) OutDim() int {
	m, _ := l.W.Dims()
	return m
}

func (l Layer) validate(index int) error {
	if l.W == nil || l.B == nil {
		return errors.NewValueErrorf("FromLayers", "layer %d has nil weights or bias", index)
	}
	if l.B.Len() != l.OutDim() {
		return errors.NewShapeMismatchError("FromLayers", index, l.OutDim(), l.B.Len())
	}
	switch l.Activation {
	case None, ReLU, LeakyReLU, HardTanh, HardSigmoid:
	default:
		return errors.NewValueErrorf("FromLayers", "layer %d has unknown activation %d", index, int(l.Activation))
	}
	return nil
}
