// Package afftree distills piecewise-linear functions, in particular
// ReLU-family neural networks, into semantically equivalent decision trees.
//
// The resulting AffTree partitions the input space into polytopal regions and
// attaches one affine map to each region, so evaluating the tree on any input
// reproduces the original network's output exactly (up to floating-point
// tolerance). The tree is a faithful surrogate of the network, not an
// approximation, which makes it suitable for verification, interpretation and
// exact region enumeration.
//
// # Packages
//
//   - aff: affine maps, half-space constraints and polytopes (gonum backed)
//   - tree: the AffTree structure with evaluation, composition and pruning
//   - lp: linear-programming feasibility oracle used to drop unreachable branches
//   - schema: canonical trees for ReLU, leaky ReLU, hard tanh, hard sigmoid,
//     argmax and related piecewise-linear primitives
//   - distill: the layer-by-layer distillation driver
//   - render: DOT export and 2-D partition plots
//
// # Quick Start
//
// Distill a two-layer network and query the surrogate:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/afftree/afftree/distill"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    layers := []distill.Layer{
//	        {W: mat.NewDense(2, 1, []float64{1, -1}), B: mat.NewVecDense(2, nil), Activation: distill.ReLU},
//	        {W: mat.NewDense(1, 2, []float64{1, 1}), B: mat.NewVecDense(1, nil), Activation: distill.None},
//	    }
//	    t, err := distill.FromLayers(layers)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    y, _ := t.Evaluate([]float64{2})
//	    fmt.Println(y[0]) // relu(x) + relu(-x) = |x|, evaluated exactly
//	}
package afftree
