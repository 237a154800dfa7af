package tree

import (
	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/core/parallel"
	"github.com/afftree/afftree/pkg/errors"
)

// Stats accumulates counters from one composition or pruning pass.
type Stats struct {
	Solves         int // linear programs handed to the oracle
	Pruned         int // subtrees dropped as infeasible
	SolverFailures int // oracle breakdowns, each treated as "feasible"
}

func (s *Stats) add(o Stats) {
	s.Solves += o.Solves
	s.Pruned += o.Pruned
	s.SolverFailures += o.SolverFailures
}

type composeConfig struct {
	oracle   FeasibilityOracle
	stats    *Stats
	parallel bool
}

// ComposeOption configures Compose and ComposeInPlace.
type ComposeOption func(*composeConfig)

// WithOracle enables eager redundancy elimination during composition: every
// substituted decision is feasibility-checked against the accumulated path
// polytope and unreachable branches are dropped on the fly. Composing many
// layers without this check blows up the tree with dead regions, so the
// distillation driver always sets it.
func WithOracle(o FeasibilityOracle) ComposeOption {
	return func(c *composeConfig) { c.oracle = o }
}

// WithStats records solver counters of the pass into s.
func WithStats(s *Stats) ComposeOption {
	return func(c *composeConfig) { c.stats = s }
}

// WithParallelSubstitution distributes the per-terminal substitution work
// across CPU cores. Each grafted subtree is owned by a single worker until
// it is joined into the result arena.
func WithParallelSubstitution() ComposeOption {
	return func(c *composeConfig) { c.parallel = true }
}

// parallelThreshold is the terminal count above which parallel substitution
// pays for the goroutine overhead.
const parallelThreshold = 64

// ComposeFunc returns the tree for f ∘ t: decisions are untouched (they
// already live in t's input space) and every terminal map g becomes f∘g.
func (t *AffTree) ComposeFunc(f *aff.AffFunc) (*AffTree, error) {
	if t.empty() {
		return nil, errors.NewEmptyTreeError("ComposeFunc")
	}
	outDim, err := t.OutDim()
	if err != nil {
		return nil, err
	}
	if f.InDim() != outDim {
		return nil, errors.NewDimensionMismatchError("ComposeFunc", outDim, f.InDim())
	}

	out := &AffTree{inDim: t.inDim}
	out.root, err = out.composeFuncRec(t, t.root, f)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (out *AffTree) composeFuncRec(t *AffTree, id NodeID, f *aff.AffFunc) (NodeID, error) {
	n := &t.nodes[id]
	if n.kind == kindTerminal {
		fn, err := f.Compose(n.fn)
		if err != nil {
			return NoNode, err
		}
		return out.addTerminal(fn), nil
	}
	then, err := out.composeFuncRec(t, n.then, f)
	if err != nil {
		return NoNode, err
	}
	els, err := out.composeFuncRec(t, n.els, f)
	if err != nil {
		return NoNode, err
	}
	return out.addDecision(n.hs, then, els), nil
}

// Compose returns the tree for other ∘ t. At every terminal of t with map g,
// a copy of other is substituted: other's terminal maps f become f∘g and
// other's decision constraints, which test t's output space, are pulled back
// into t's input space via constraint∘g. With an oracle configured,
// substituted decisions whose branch region is unreachable are elided as
// they are built.
func (t *AffTree) Compose(other *AffTree, opts ...ComposeOption) (*AffTree, error) {
	var cfg composeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if t.empty() || other.empty() {
		return nil, errors.NewEmptyTreeError("Compose")
	}
	outDim, err := t.OutDim()
	if err != nil {
		return nil, err
	}
	if other.InDim() != outDim {
		return nil, errors.NewDimensionMismatchError("Compose", outDim, other.InDim())
	}

	out := &AffTree{inDim: t.inDim}

	var slots []substSlot
	path := make([]aff.HalfSpace, 0, t.Depth())
	out.root, err = out.copyBase(t, t.root, &path, &slots)
	if err != nil {
		return nil, err
	}

	if cfg.parallel && len(slots) >= parallelThreshold {
		err = out.substituteParallel(other, slots, &cfg)
	} else {
		err = out.substituteSequential(other, slots, &cfg)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ComposeInPlace replaces t with other ∘ t. This is the variant the
// distillation driver uses to fold layer after layer into a running tree.
func (t *AffTree) ComposeInPlace(other *AffTree, opts ...ComposeOption) error {
	result, err := t.Compose(other, opts...)
	if err != nil {
		return err
	}
	*t = *result
	return nil
}

// substSlot is a terminal of the base tree awaiting substitution: the arena
// slot to fill, the terminal's map, and its path constraints.
type substSlot struct {
	id   NodeID
	fn   *aff.AffFunc
	path []aff.HalfSpace
}

// copyBase copies the decision skeleton of t and records every terminal as a
// substitution slot together with a snapshot of its path constraints.
func (out *AffTree) copyBase(t *AffTree, id NodeID, path *[]aff.HalfSpace, slots *[]substSlot) (NodeID, error) {
	n := &t.nodes[id]
	if n.kind == kindTerminal {
		snapshot := make([]aff.HalfSpace, len(*path))
		copy(snapshot, *path)
		slot := out.addTerminal(nil)
		*slots = append(*slots, substSlot{id: slot, fn: n.fn, path: snapshot})
		return slot, nil
	}
	*path = append(*path, n.hs)
	then, err := out.copyBase(t, n.then, path, slots)
	if err != nil {
		return NoNode, err
	}
	(*path)[len(*path)-1] = n.hs.Negate()
	els, err := out.copyBase(t, n.els, path, slots)
	if err != nil {
		return NoNode, err
	}
	*path = (*path)[:len(*path)-1]
	return out.addDecision(n.hs, then, els), nil
}

func (out *AffTree) substituteSequential(other *AffTree, slots []substSlot, cfg *composeConfig) error {
	for _, slot := range slots {
		frag := &AffTree{inDim: out.inDim}
		var stats Stats
		root, err := frag.substitute(other, other.root, slot.fn, slot.path, cfg.oracle, &stats)
		if err != nil {
			return err
		}
		out.splice(slot.id, frag, root)
		if cfg.stats != nil {
			cfg.stats.add(stats)
		}
	}
	return nil
}

func (out *AffTree) substituteParallel(other *AffTree, slots []substSlot, cfg *composeConfig) error {
	frags := make([]*AffTree, len(slots))
	roots := make([]NodeID, len(slots))
	errs := make([]error, len(slots))
	statsPer := make([]Stats, len(slots))

	parallel.Parallelize(len(slots), func(start, end int) {
		for i := start; i < end; i++ {
			frag := &AffTree{inDim: out.inDim}
			root, err := frag.substitute(other, other.root, slots[i].fn, slots[i].path, cfg.oracle, &statsPer[i])
			frags[i] = frag
			roots[i] = root
			errs[i] = err
		}
	})

	for i, slot := range slots {
		if errs[i] != nil {
			return errs[i]
		}
		out.splice(slot.id, frags[i], roots[i])
		if cfg.stats != nil {
			cfg.stats.add(statsPer[i])
		}
	}
	return nil
}

// substitute grafts other's subtree at src into frag, composing terminal maps
// with g and pulling decision constraints back through g. With an oracle,
// each pulled-back constraint is checked against the path polytope and
// branches that cannot be reached are skipped, which is what keeps repeated
// layer composition from drowning in infeasible regions.
func (frag *AffTree) substitute(other *AffTree, src NodeID, g *aff.AffFunc, path []aff.HalfSpace, oracle FeasibilityOracle, stats *Stats) (NodeID, error) {
	n := &other.nodes[src]
	if n.kind == kindTerminal {
		fn, err := n.fn.Compose(g)
		if err != nil {
			return NoNode, err
		}
		return frag.addTerminal(fn), nil
	}

	hs, err := n.hs.ComposeWith(g)
	if err != nil {
		return NoNode, err
	}

	if oracle != nil {
		feasThen := frag.checkFeasible(append(path, hs), oracle, stats)
		feasElse := frag.checkFeasible(append(path, hs.Negate()), oracle, stats)
		switch {
		case feasThen && !feasElse:
			stats.Pruned++
			return frag.substitute(other, n.then, g, path, oracle, stats)
		case !feasThen && feasElse:
			stats.Pruned++
			return frag.substitute(other, n.els, g, path, oracle, stats)
		case !feasThen && !feasElse:
			// Numerically ambiguous; keeping both branches preserves the
			// function, dropping either might not.
		}
	}

	path = append(path, hs)
	then, err := frag.substitute(other, n.then, g, path, oracle, stats)
	if err != nil {
		return NoNode, err
	}
	path[len(path)-1] = hs.Negate()
	els, err := frag.substitute(other, n.els, g, path, oracle, stats)
	if err != nil {
		return NoNode, err
	}
	return frag.addDecision(hs, then, els), nil
}

// checkFeasible asks the oracle whether the conjunction of the given
// constraints is satisfiable. A solver failure counts as feasible so that
// over-pruning can never break the surrogate's exactness.
func (t *AffTree) checkFeasible(hs []aff.HalfSpace, oracle FeasibilityOracle, stats *Stats) bool {
	poly, err := aff.NewPolytope(t.inDim)
	if err != nil {
		return true
	}
	for _, h := range hs {
		if err := poly.Append(h); err != nil {
			return true
		}
	}
	stats.Solves++
	feasible, err := oracle.IsFeasible(poly)
	if err != nil {
		stats.SolverFailures++
		return true
	}
	return feasible
}

// splice copies frag's nodes into t's arena and overwrites the slot node
// with frag's root. The slot keeps its id, so parent links in t stay valid.
func (t *AffTree) splice(slot NodeID, frag *AffTree, fragRoot NodeID) {
	offset := NodeID(len(t.nodes))
	for _, n := range frag.nodes {
		if n.kind == kindDecision {
			n.then += offset
			n.els += offset
		}
		t.nodes = append(t.nodes, n)
	}
	t.nodes[slot] = t.nodes[fragRoot+offset]
}
