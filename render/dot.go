// Package render turns AffTrees into human-readable artifacts: Graphviz
// sources for the tree structure and 2-D plots of the input-space partition.
// It consumes only the tree's canonical traversal primitives; the core never
// depends on it.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/pkg/errors"
	"github.com/afftree/afftree/tree"
)

// DOT writes the tree as a Graphviz digraph. Decision nodes are labelled
// with their inequality, terminals with their affine map; then-edges are
// solid, else-edges dashed.
func DOT(w io.Writer, t *tree.AffTree) error {
	nodes := t.Nodes()
	if len(nodes) == 0 {
		return errors.NewEmptyTreeError("DOT")
	}

	var sb strings.Builder
	sb.WriteString("digraph afftree {\n")
	sb.WriteString("\tnode [fontname=\"monospace\"];\n")
	for _, n := range nodes {
		if n.IsDecision {
			fmt.Fprintf(&sb, "\tn%d [shape=diamond, label=%q];\n", n.ID, n.Constraint.String())
			fmt.Fprintf(&sb, "\tn%d -> n%d;\n", n.ID, n.Then)
			fmt.Fprintf(&sb, "\tn%d -> n%d [style=dashed];\n", n.ID, n.Else)
		} else {
			fmt.Fprintf(&sb, "\tn%d [shape=box, label=%q];\n", n.ID, formatAff(n.Fn))
		}
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// formatAff renders one affine map as per-row functionals, one line per
// output coordinate.
func formatAff(f *aff.AffFunc) string {
	var sb strings.Builder
	for i := 0; i < f.OutDim(); i++ {
		w, c, err := f.RowFunctional(i)
		if err != nil {
			continue
		}
		if i > 0 {
			sb.WriteString("\\n")
		}
		first := true
		for j := 0; j < w.Len(); j++ {
			v := w.AtVec(j)
			if v == 0 {
				continue
			}
			switch {
			case first:
				fmt.Fprintf(&sb, "%.2f·x%d", v, j)
			case v < 0:
				fmt.Fprintf(&sb, " - %.2f·x%d", -v, j)
			default:
				fmt.Fprintf(&sb, " + %.2f·x%d", v, j)
			}
			first = false
		}
		switch {
		case first:
			fmt.Fprintf(&sb, "%.2f", c)
		case c < 0:
			fmt.Fprintf(&sb, " - %.2f", -c)
		case c > 0:
			fmt.Fprintf(&sb, " + %.2f", c)
		}
	}
	return sb.String()
}
