// Package tree implements the AffTree structure: a rooted binary decision
// tree whose inner nodes test half-space constraints and whose terminals
// apply affine maps. An AffTree represents a piecewise-linear function
// exactly; composition and pruning keep that representation faithful while
// the distillation driver folds network layers into it.
//
// Nodes live in a flat arena addressed by NodeID. Children are exclusively
// owned by their parent; there is no sharing between subtrees and no cycle,
// so traversal is a simple index walk.
package tree

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/core/parallel"
	"github.com/afftree/afftree/pkg/errors"
)

// NodeID addresses a node inside a tree's arena.
type NodeID int32

// NoNode marks an absent child reference.
const NoNode NodeID = -1

type nodeKind uint8

const (
	kindDecision nodeKind = iota
	kindTerminal
)

type node struct {
	kind nodeKind
	hs   aff.HalfSpace // decision predicate, decision nodes only
	fn   *aff.AffFunc  // region map, terminals only
	then NodeID
	els  NodeID
}

// AffTree is a piecewise-linear function represented as a binary space
// partition. The input dimension is fixed for the whole tree; every decision
// constraint and every terminal map must match it.
type AffTree struct {
	inDim int
	nodes []node
	root  NodeID
}

// Identity returns the single-terminal tree applying the identity map on R^dim.
func Identity(dim int) (*AffTree, error) {
	if dim <= 0 {
		return nil, errors.NewValueErrorf("Identity", "dimension must be positive, got %d", dim)
	}
	return FromFunc(aff.Identity(dim)), nil
}

// FromFunc returns the single-terminal tree applying f everywhere.
func FromFunc(f *aff.AffFunc) *AffTree {
	t := &AffTree{inDim: f.InDim()}
	t.root = t.addTerminal(f)
	return t
}

// Branch combines two trees under a new decision constraint: inputs
// satisfying h evaluate through thenTree, all others through elseTree.
// Both subtrees are copied into the new tree's arena.
func Branch(h aff.HalfSpace, thenTree, elseTree *AffTree) (*AffTree, error) {
	if thenTree.inDim != elseTree.inDim {
		return nil, errors.NewDimensionMismatchError("Branch", thenTree.inDim, elseTree.inDim)
	}
	if h.Dim() != thenTree.inDim {
		return nil, errors.NewDimensionMismatchError("Branch", thenTree.inDim, h.Dim())
	}
	if thenTree.empty() || elseTree.empty() {
		return nil, errors.NewEmptyTreeError("Branch")
	}
	thenOut, err := thenTree.OutDim()
	if err != nil {
		return nil, err
	}
	elseOut, err := elseTree.OutDim()
	if err != nil {
		return nil, err
	}
	if thenOut != elseOut {
		return nil, errors.NewDimensionMismatchError("Branch", thenOut, elseOut)
	}
	t := &AffTree{inDim: thenTree.inDim}
	thenRoot := t.graft(thenTree, thenTree.root)
	elseRoot := t.graft(elseTree, elseTree.root)
	t.root = t.addDecision(h, thenRoot, elseRoot)
	return t, nil
}

func (t *AffTree) addTerminal(f *aff.AffFunc) NodeID {
	t.nodes = append(t.nodes, node{kind: kindTerminal, fn: f, then: NoNode, els: NoNode})
	return NodeID(len(t.nodes) - 1)
}

func (t *AffTree) addDecision(h aff.HalfSpace, then, els NodeID) NodeID {
	t.nodes = append(t.nodes, node{kind: kindDecision, hs: h, then: then, els: els})
	return NodeID(len(t.nodes) - 1)
}

// graft copies the subtree of src rooted at id into t's arena and returns
// the new root id.
func (t *AffTree) graft(src *AffTree, id NodeID) NodeID {
	n := src.nodes[id]
	if n.kind == kindTerminal {
		return t.addTerminal(n.fn)
	}
	then := t.graft(src, n.then)
	els := t.graft(src, n.els)
	return t.addDecision(n.hs, then, els)
}

// empty reports whether the tree has no nodes. The zero value of AffTree is
// empty, so the root sentinel alone is not enough.
func (t *AffTree) empty() bool {
	return t.root == NoNode || len(t.nodes) == 0
}

// InDim returns the input dimension n of the represented function.
func (t *AffTree) InDim() int {
	return t.inDim
}

// OutDim returns the output dimension m shared by all terminals.
func (t *AffTree) OutDim() (int, error) {
	if t.empty() {
		return 0, errors.NewEmptyTreeError("OutDim")
	}
	id := t.root
	for t.nodes[id].kind == kindDecision {
		id = t.nodes[id].then
	}
	return t.nodes[id].fn.OutDim(), nil
}

// NodeCount returns the number of nodes reachable from the root.
func (t *AffTree) NodeCount() int {
	if t.empty() {
		return 0
	}
	count := 0
	t.walk(t.root, func(NodeID, *node) { count++ })
	return count
}

// TerminalCount returns the number of linear regions of the function.
func (t *AffTree) TerminalCount() int {
	if t.empty() {
		return 0
	}
	count := 0
	t.walk(t.root, func(_ NodeID, n *node) {
		if n.kind == kindTerminal {
			count++
		}
	})
	return count
}

// Depth returns the number of decisions on the longest root-to-terminal
// path. A single-terminal tree has depth 0.
func (t *AffTree) Depth() int {
	if t.empty() {
		return 0
	}
	return t.depth(t.root)
}

func (t *AffTree) depth(id NodeID) int {
	n := &t.nodes[id]
	if n.kind == kindTerminal {
		return 0
	}
	dThen := t.depth(n.then)
	dElse := t.depth(n.els)
	if dElse > dThen {
		dThen = dElse
	}
	return dThen + 1
}

func (t *AffTree) walk(id NodeID, visit func(NodeID, *node)) {
	n := &t.nodes[id]
	visit(id, n)
	if n.kind == kindDecision {
		t.walk(n.then, visit)
		t.walk(n.els, visit)
	}
}

// EvaluateVec walks the tree from the root, descending into the then-branch
// whenever the decision constraint holds at x, and applies the reached
// terminal's map. The walk visits at most Depth() decisions.
func (t *AffTree) EvaluateVec(x *mat.VecDense) (*mat.VecDense, error) {
	if t.empty() {
		return nil, errors.NewEmptyTreeError("Evaluate")
	}
	if x.Len() != t.inDim {
		return nil, errors.NewDimensionMismatchError("Evaluate", t.inDim, x.Len())
	}
	id := t.root
	for t.nodes[id].kind == kindDecision {
		n := &t.nodes[id]
		v, err := n.hs.Eval(x)
		if err != nil {
			return nil, err
		}
		holds := v >= 0
		if n.hs.Strict {
			holds = v > 0
		}
		if holds {
			id = n.then
		} else {
			id = n.els
		}
	}
	return t.nodes[id].fn.Apply(x)
}

// Evaluate is EvaluateVec on plain slices.
func (t *AffTree) Evaluate(x []float64) ([]float64, error) {
	y, err := t.EvaluateVec(mat.NewVecDense(len(x), x))
	if err != nil {
		return nil, err
	}
	out := make([]float64, y.Len())
	copy(out, y.RawVector().Data)
	return out, nil
}

// EvaluateBatch evaluates every row of X and returns the stacked outputs.
// Rows are independent, so the walk is distributed across CPU cores.
func (t *AffTree) EvaluateBatch(X mat.Matrix) (*mat.Dense, error) {
	if t.empty() {
		return nil, errors.NewEmptyTreeError("EvaluateBatch")
	}
	rows, cols := X.Dims()
	if cols != t.inDim {
		return nil, errors.NewDimensionMismatchError("EvaluateBatch", t.inDim, cols)
	}
	outDim, err := t.OutDim()
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, outDim, nil)
	var (
		errMu    sync.Mutex
		firstErr error
	)
	parallel.ParallelizeWithThreshold(rows, 32, func(start, end int) {
		x := mat.NewVecDense(t.inDim, nil)
		for i := start; i < end; i++ {
			for j := 0; j < t.inDim; j++ {
				x.SetVec(j, X.At(i, j))
			}
			y, err := t.EvaluateVec(x)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			out.SetRow(i, y.RawVector().Data)
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Terminal is a leaf of the tree together with its arena id.
type Terminal struct {
	ID NodeID
	Fn *aff.AffFunc
}

// Terminals lists the leaves in depth-first order (then before else).
func (t *AffTree) Terminals() []Terminal {
	if t.empty() {
		return nil
	}
	var out []Terminal
	t.walk(t.root, func(id NodeID, n *node) {
		if n.kind == kindTerminal {
			out = append(out, Terminal{ID: id, Fn: n.fn})
		}
	})
	return out
}

// Region pairs a terminal's affine map with the polytope of inputs reaching
// it: the conjunction of the path constraints from the root, taking each
// decision's constraint on the then-branch and its complement on the
// else-branch.
type Region struct {
	ID   NodeID
	Poly *aff.Polytope
	Fn   *aff.AffFunc
}

// Regions exports the canonical (polytope, affine map) decomposition of the
// function, one entry per terminal in depth-first order. This is the
// traversal primitive consumed by renderers and external analyzers.
func (t *AffTree) Regions() ([]Region, error) {
	if t.empty() {
		return nil, errors.NewEmptyTreeError("Regions")
	}
	var out []Region
	path := make([]aff.HalfSpace, 0, t.Depth())
	var rec func(id NodeID) error
	rec = func(id NodeID) error {
		n := &t.nodes[id]
		if n.kind == kindTerminal {
			poly, err := aff.NewPolytope(t.inDim)
			if err != nil {
				return err
			}
			for _, h := range path {
				if err := poly.Append(h.Clone()); err != nil {
					return err
				}
			}
			out = append(out, Region{ID: id, Poly: poly, Fn: n.fn})
			return nil
		}
		path = append(path, n.hs)
		if err := rec(n.then); err != nil {
			return err
		}
		path[len(path)-1] = n.hs.Negate()
		if err := rec(n.els); err != nil {
			return err
		}
		path = path[:len(path)-1]
		return nil
	}
	if err := rec(t.root); err != nil {
		return nil, err
	}
	return out, nil
}

// NodeInfo is a read-only view of one node, as exposed to renderers and
// external analyzers.
type NodeInfo struct {
	ID         NodeID
	IsDecision bool
	Constraint aff.HalfSpace // decision nodes only
	Fn         *aff.AffFunc  // terminals only
	Then, Else NodeID        // NoNode on terminals
}

// Nodes lists the reachable nodes in depth-first order (then before else).
func (t *AffTree) Nodes() []NodeInfo {
	if t.empty() {
		return nil
	}
	out := make([]NodeInfo, 0, len(t.nodes))
	t.walk(t.root, func(id NodeID, n *node) {
		info := NodeInfo{ID: id, Then: NoNode, Else: NoNode}
		if n.kind == kindDecision {
			info.IsDecision = true
			info.Constraint = n.hs
			info.Then = n.then
			info.Else = n.els
		} else {
			info.Fn = n.fn
		}
		out = append(out, info)
	})
	return out
}

// Root returns the root node id.
func (t *AffTree) Root() NodeID {
	return t.root
}

// EqualStructure reports whether two trees have the same shape with
// constraints and terminal maps equal within tol. Arena ordering is ignored.
func (t *AffTree) EqualStructure(o *AffTree, tol float64) bool {
	if t.inDim != o.inDim {
		return false
	}
	if t.empty() != o.empty() {
		return false
	}
	if t.empty() {
		return true
	}
	return t.equalNodes(o, t.root, o.root, tol)
}

func (t *AffTree) equalNodes(o *AffTree, a, b NodeID, tol float64) bool {
	na, nb := &t.nodes[a], &o.nodes[b]
	if na.kind != nb.kind {
		return false
	}
	if na.kind == kindTerminal {
		return na.fn.EqualWithin(nb.fn, tol)
	}
	if na.hs.Strict != nb.hs.Strict {
		return false
	}
	if !mat.EqualApprox(na.hs.W, nb.hs.W, tol) {
		return false
	}
	diff := na.hs.C - nb.hs.C
	if diff < -tol || diff > tol {
		return false
	}
	return t.equalNodes(o, na.then, nb.then, tol) && t.equalNodes(o, na.els, nb.els, tol)
}

// Clone returns a deep copy with a freshly packed arena.
func (t *AffTree) Clone() *AffTree {
	out := &AffTree{inDim: t.inDim}
	if t.empty() {
		out.root = NoNode
		return out
	}
	out.root = out.graft(t, t.root)
	return out
}
