// Standard attribute keys for distillation logging.
//
// Keys follow a hierarchical naming convention ("tree.nodes", "layer.index")
// so runs can be filtered and compared across log aggregators.

package log

// Tree shape attributes.
const (
	// TreeNodesKey records the node count of the running surrogate tree.
	TreeNodesKey = "tree.nodes"

	// TreeTerminalsKey records the number of terminals (linear regions).
	TreeTerminalsKey = "tree.terminals"

	// TreeDepthKey records the depth of the running tree.
	TreeDepthKey = "tree.depth"

	// InDimKey records the input dimension of the tree being built.
	InDimKey = "tree.in_dim"

	// OutDimKey records the output dimension of the tree being built.
	OutDimKey = "tree.out_dim"
)

// Distillation progress attributes.
const (
	// LayerIndexKey is the zero-based index of the layer being composed.
	LayerIndexKey = "layer.index"

	// LayerRowsKey is the output dimension of the layer being composed.
	LayerRowsKey = "layer.rows"

	// ActivationKey names the activation schema applied after the layer.
	ActivationKey = "layer.activation"

	// OperationKey names the tree operation in flight, e.g. "compose", "prune".
	OperationKey = "op"

	// DurationMsKey records the execution time of one step in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Feasibility oracle attributes.
const (
	// SolvesKey counts linear programs solved during one pruning pass.
	SolvesKey = "lp.solves"

	// PrunedKey counts subtrees removed by redundancy elimination.
	PrunedKey = "lp.pruned"

	// ConstraintsKey records the constraint count of the largest polytope seen.
	ConstraintsKey = "lp.constraints"
)
