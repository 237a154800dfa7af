package tree

import (
	"math/rand"
	"testing"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/lp"
	"github.com/afftree/afftree/pkg/errors"
)

// failingOracle simulates a solver that never reaches an answer.
type failingOracle struct{}

func (failingOracle) IsFeasible(p *aff.Polytope) (bool, error) {
	return false, errors.NewSolverFailureError("IsFeasible", p.NumConstraints(), errors.New("budget exhausted"))
}

// unreachableBranchTree nests a decision on x0 >= -1 below a decision on
// x0 >= 0, so the inner else-branch (x0 >= 0 and x0 < -1) is empty.
func unreachableBranchTree(t *testing.T) *AffTree {
	t.Helper()
	inner, err := Branch(
		aff.CoordinateGE(1, 0, 1),
		FromFunc(aff.Identity(1)),
		FromFunc(aff.ZeroRow(1, 0)), // dead region
	)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := Branch(
		aff.CoordinateGE(1, 0, 0),
		inner,
		FromFunc(aff.ScaleRow(1, 0, -1, 0)),
	)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestPruneRemovesInfeasibleBranch(t *testing.T) {
	tr := unreachableBranchTree(t)

	var stats Stats
	pruned, err := tr.Prune(lp.New(), WithPruneStats(&stats))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}

	if pruned.NodeCount() >= tr.NodeCount() {
		t.Errorf("prune did not shrink: %d vs %d nodes", pruned.NodeCount(), tr.NodeCount())
	}
	if stats.Pruned == 0 {
		t.Error("no pruning recorded")
	}

	// The dead region is gone, so one decision and two terminals remain.
	if pruned.NodeCount() != 3 {
		t.Errorf("pruned tree has %d nodes, want 3", pruned.NodeCount())
	}

	for _, x := range []float64{-4, -1.5, -0.5, 0, 0.5, 2} {
		a, _ := tr.Evaluate([]float64{x})
		b, _ := pruned.Evaluate([]float64{x})
		if a[0] != b[0] {
			t.Errorf("pruning changed the function at %v: %v vs %v", x, a[0], b[0])
		}
	}
}

func TestPruneIdempotent(t *testing.T) {
	tr := unreachableBranchTree(t)
	oracle := lp.New()

	once, err := tr.Prune(oracle)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := once.Prune(oracle)
	if err != nil {
		t.Fatal(err)
	}
	if !once.EqualStructure(twice, 1e-12) {
		t.Error("pruning a pruned tree changed its structure")
	}
}

func TestPruneKeepsFeasibleTree(t *testing.T) {
	tr := reluTree(t, 2, 0)
	pruned, err := tr.Prune(lp.New())
	if err != nil {
		t.Fatal(err)
	}
	if !pruned.EqualStructure(tr, 1e-12) {
		t.Error("pruning removed feasible branches")
	}
}

func TestPruneSolverFailureKeepsBranches(t *testing.T) {
	tr := unreachableBranchTree(t)

	var stats Stats
	pruned, err := tr.Prune(failingOracle{}, WithPruneStats(&stats))
	if err != nil {
		t.Fatalf("Prune must not fail on solver breakdown: %v", err)
	}
	if pruned.NodeCount() != tr.NodeCount() {
		t.Error("solver failure must keep every branch")
	}
	if stats.SolverFailures == 0 {
		t.Error("solver failures not recorded")
	}
}

func TestPruneTerminalMerge(t *testing.T) {
	// Both branches carry the identity map; without merging the decision
	// stays, with merging it collapses to one terminal.
	tr, err := Branch(
		aff.CoordinateGE(1, 0, 0),
		FromFunc(aff.Identity(1)),
		FromFunc(aff.Identity(1)),
	)
	if err != nil {
		t.Fatal(err)
	}

	plain, err := tr.Prune(lp.New())
	if err != nil {
		t.Fatal(err)
	}
	if plain.NodeCount() != 3 {
		t.Errorf("un-merged prune has %d nodes, want 3", plain.NodeCount())
	}

	merged, err := tr.Prune(lp.New(), WithTerminalMerge(1e-9))
	if err != nil {
		t.Fatal(err)
	}
	if merged.NodeCount() != 1 {
		t.Errorf("merged prune has %d nodes, want 1", merged.NodeCount())
	}
	for _, x := range []float64{-2, 0, 2} {
		a, _ := tr.Evaluate([]float64{x})
		b, _ := merged.Evaluate([]float64{x})
		if a[0] != b[0] {
			t.Errorf("merge changed the function at %v", x)
		}
	}
}

func TestPruneEmptyTree(t *testing.T) {
	tr := &AffTree{inDim: 1, root: NoNode}
	if _, err := tr.Prune(lp.New()); err == nil {
		t.Error("expected EmptyTreeError")
	}
}

func TestPrunePreservesSemanticsOnRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	// Random stack of per-coordinate relus and affine maps over R^2.
	tr, err := Identity(2)
	if err != nil {
		t.Fatal(err)
	}
	for step := 0; step < 4; step++ {
		w := []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		b := []float64{rng.NormFloat64(), rng.NormFloat64()}
		f, err := aff.FromSlices(2, 2, w, b)
		if err != nil {
			t.Fatal(err)
		}
		tr, err = tr.ComposeFunc(f)
		if err != nil {
			t.Fatal(err)
		}
		tr, err = tr.Compose(reluTree(t, 2, step%2))
		if err != nil {
			t.Fatal(err)
		}
	}

	pruned, err := tr.Prune(lp.New())
	if err != nil {
		t.Fatal(err)
	}
	if pruned.NodeCount() > tr.NodeCount() {
		t.Error("pruning increased the node count")
	}

	for trial := 0; trial < 200; trial++ {
		x := []float64{rng.NormFloat64() * 2, rng.NormFloat64() * 2}
		a, _ := tr.Evaluate(x)
		b, _ := pruned.Evaluate(x)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("pruning changed the function at %v: %v vs %v", x, a, b)
			}
		}
	}
}
