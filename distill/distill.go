package distill

import (
	"log/slog"
	"time"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/lp"
	"github.com/afftree/afftree/pkg/errors"
	"github.com/afftree/afftree/pkg/log"
	"github.com/afftree/afftree/schema"
	"github.com/afftree/afftree/tree"
)

type config struct {
	oracle   tree.FeasibilityOracle
	pruning  bool
	parallel bool
	logger   *slog.Logger
}

// Option configures FromLayers.
type Option func(*config)

// WithOracle replaces the default simplex feasibility oracle.
func WithOracle(o tree.FeasibilityOracle) Option {
	return func(c *config) { c.oracle = o }
}

// WithoutPruning disables redundancy elimination. The resulting tree is
// still exact but keeps every infeasible branch, so its size grows
// exponentially with depth; useful only for debugging and small stacks.
func WithoutPruning() Option {
	return func(c *config) { c.pruning = false }
}

// WithParallel distributes per-terminal substitution across CPU cores.
func WithParallel() Option {
	return func(c *config) { c.parallel = true }
}

// WithLogger sets the logger for per-layer progress records.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// FromLayers distills an ordered layer stack into one AffTree that evaluates
// to exactly the same function as applying the layers in sequence.
//
// The whole stack is shape-checked before any composition: a layer whose
// input dimension disagrees with its predecessor's output fails with a
// ShapeMismatchError and the running tree is never touched. Construction
// starts from the identity tree on the first layer's input space and folds
// in, per layer, the affine map and then one schema tree per activated
// coordinate, pruning unreachable branches after every step.
func FromLayers(layers []Layer, opts ...Option) (*tree.AffTree, error) {
	cfg := config{
		pruning: true,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.oracle == nil {
		cfg.oracle = lp.New()
	}

	if len(layers) == 0 {
		return nil, errors.NewValueError("FromLayers", "layer stack is empty")
	}
	for i, layer := range layers {
		if err := layer.validate(i); err != nil {
			return nil, err
		}
		if i > 0 && layer.InDim() != layers[i-1].OutDim() {
			return nil, errors.NewShapeMismatchError("FromLayers", i, layers[i-1].OutDim(), layer.InDim())
		}
	}

	cfg.logger.Debug("distillation started",
		log.OperationKey, "from_layers",
		log.InDimKey, layers[0].InDim(),
		log.OutDimKey, layers[len(layers)-1].OutDim(),
		"layers", len(layers),
	)

	t, err := tree.Identity(layers[0].InDim())
	if err != nil {
		return nil, err
	}

	var composeOpts []tree.ComposeOption
	if cfg.pruning {
		composeOpts = append(composeOpts, tree.WithOracle(cfg.oracle))
	}
	if cfg.parallel {
		composeOpts = append(composeOpts, tree.WithParallelSubstitution())
	}

	for i, layer := range layers {
		start := time.Now()
		var stats tree.Stats
		layerOpts := append(composeOpts, tree.WithStats(&stats))

		f, err := aff.NewAffFunc(layer.W, layer.B)
		if err != nil {
			return nil, err
		}
		t, err = t.ComposeFunc(f)
		if err != nil {
			return nil, err
		}

		if layer.Activation != None {
			for row := 0; row < layer.OutDim(); row++ {
				s, err := schemaFor(layer, row)
				if err != nil {
					return nil, err
				}
				if err := t.ComposeInPlace(s, layerOpts...); err != nil {
					return nil, err
				}
			}
		}

		cfg.logger.Debug("layer composed",
			log.LayerIndexKey, i,
			log.LayerRowsKey, layer.OutDim(),
			log.ActivationKey, layer.Activation.String(),
			log.TreeNodesKey, t.NodeCount(),
			log.TreeTerminalsKey, t.TerminalCount(),
			log.TreeDepthKey, t.Depth(),
			log.SolvesKey, stats.Solves,
			log.PrunedKey, stats.Pruned,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		if stats.SolverFailures > 0 {
			cfg.logger.Warn("feasibility solver failed on some branches; they were kept",
				log.LayerIndexKey, i,
				log.SolvesKey, stats.Solves,
				"failures", stats.SolverFailures,
			)
		}
	}
	return t, nil
}

func schemaFor(layer Layer, row int) (*tree.AffTree, error) {
	dim := layer.OutDim()
	switch layer.Activation {
	case ReLU:
		return schema.PartialReLU(dim, row)
	case LeakyReLU:
		return schema.PartialLeakyReLU(dim, row, layer.Alpha)
	case HardTanh:
		return schema.PartialHardTanh(dim, row)
	case HardSigmoid:
		return schema.PartialHardSigmoid(dim, row)
	default:
		return nil, errors.NewValueErrorf("FromLayers", "no schema for activation %q", layer.Activation)
	}
}
