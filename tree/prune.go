package tree

import (
	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/pkg/errors"
)

// FeasibilityOracle decides whether a polytope contains at least one point.
// It is a capability boundary: any linear-program backend satisfying the
// contract can drive redundancy elimination. An error means the oracle could
// not decide within its budget; callers must then treat the region as
// feasible.
type FeasibilityOracle interface {
	IsFeasible(p *aff.Polytope) (bool, error)
}

type pruneConfig struct {
	mergeTerminals bool
	mergeTol       float64
	stats          *Stats
}

// PruneOption configures Prune.
type PruneOption func(*pruneConfig)

// WithTerminalMerge collapses a decision node into a single terminal when
// both children have been reduced to terminals carrying the same affine map
// within tol. Purely a size optimization; the function is unchanged.
func WithTerminalMerge(tol float64) PruneOption {
	return func(c *pruneConfig) {
		c.mergeTerminals = true
		c.mergeTol = tol
	}
}

// WithPruneStats records solver counters of the pass into s.
func WithPruneStats(s *Stats) PruneOption {
	return func(c *pruneConfig) { c.stats = s }
}

// Prune removes branches whose path polytope is infeasible and returns the
// reduced tree. Whenever one branch of a decision is unreachable, the
// decision is replaced by the surviving subtree. The result evaluates
// identically to t on every input and never has more nodes; pruning an
// already-pruned tree is a no-op.
func (t *AffTree) Prune(oracle FeasibilityOracle, opts ...PruneOption) (*AffTree, error) {
	var cfg pruneConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if t.empty() {
		return nil, errors.NewEmptyTreeError("Prune")
	}

	out := &AffTree{inDim: t.inDim}
	var stats Stats
	path := make([]aff.HalfSpace, 0, t.Depth())
	root, err := out.pruneRec(t, t.root, path, oracle, &cfg, &stats)
	if err != nil {
		return nil, err
	}
	out.root = root
	if cfg.stats != nil {
		cfg.stats.add(stats)
	}
	return out, nil
}

func (out *AffTree) pruneRec(t *AffTree, id NodeID, path []aff.HalfSpace, oracle FeasibilityOracle, cfg *pruneConfig, stats *Stats) (NodeID, error) {
	n := &t.nodes[id]
	if n.kind == kindTerminal {
		return out.addTerminal(n.fn), nil
	}

	feasThen := out.checkFeasible(append(path, n.hs), oracle, stats)
	feasElse := out.checkFeasible(append(path, n.hs.Negate()), oracle, stats)

	switch {
	case feasThen && !feasElse:
		stats.Pruned++
		return out.pruneRec(t, n.then, path, oracle, cfg, stats)
	case !feasThen && feasElse:
		stats.Pruned++
		return out.pruneRec(t, n.els, path, oracle, cfg, stats)
	case !feasThen && !feasElse:
		// The oracle rejected both signs of a total predicate, which can
		// only happen through numerical tolerance. Keep the node intact.
	}

	path = append(path, n.hs)
	then, err := out.pruneRec(t, n.then, path, oracle, cfg, stats)
	if err != nil {
		return NoNode, err
	}
	path[len(path)-1] = n.hs.Negate()
	els, err := out.pruneRec(t, n.els, path, oracle, cfg, stats)
	if err != nil {
		return NoNode, err
	}

	if cfg.mergeTerminals {
		tn, en := &out.nodes[then], &out.nodes[els]
		if tn.kind == kindTerminal && en.kind == kindTerminal && tn.fn.EqualWithin(en.fn, cfg.mergeTol) {
			return then, nil
		}
	}
	return out.addDecision(n.hs, then, els), nil
}
