package render

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/afftree/afftree/aff"
	"github.com/afftree/afftree/lp"
	"github.com/afftree/afftree/pkg/errors"
	"github.com/afftree/afftree/tree"
)

// containTol is the slack used when testing candidate vertices against the
// region facets; intersection points sit exactly on two boundaries and must
// not be rejected for rounding.
const containTol = 1e-7

// PlotPartition draws the input-space partition of a two-dimensional tree:
// every linear region, clipped to the given [lo,hi] intervals, becomes one
// colored polygon. The plot is written to file; the format follows the file
// extension (png, svg, pdf, ...).
func PlotPartition(t *tree.AffTree, intervals [2][2]float64, file string) error {
	p, err := PartitionPlot(t, intervals)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, file)
}

// PartitionPlot builds the partition plot without saving it, so callers can
// restyle or embed it.
func PartitionPlot(t *tree.AffTree, intervals [2][2]float64) (*plot.Plot, error) {
	if t.InDim() != 2 {
		return nil, errors.NewDimensionMismatchError("PartitionPlot", 2, t.InDim())
	}

	box, err := aff.FromIntervals(intervals[:])
	if err != nil {
		return nil, err
	}
	regions, err := t.Regions()
	if err != nil {
		return nil, err
	}

	// Color regions by the magnitude of their affine map, so neighboring
	// regions with different maps are distinguishable.
	vals := make([]float64, len(regions))
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i, r := range regions {
		vals[i] = mat.Norm(r.Fn.W, 2) + 0.2*mat.Norm(r.Fn.B, 2)
		minV = math.Min(minV, vals[i])
		maxV = math.Max(maxV, vals[i])
	}
	colors := palette.Heat(64, 1).Colors()

	pl := plot.New()
	pl.X.Label.Text = "x0"
	pl.Y.Label.Text = "x1"
	pl.X.Min, pl.X.Max = intervals[0][0], intervals[0][1]
	pl.Y.Min, pl.Y.Max = intervals[1][0], intervals[1][1]

	oracle := lp.New()
	for i, r := range regions {
		clipped, err := r.Poly.Intersect(box)
		if err != nil {
			return nil, err
		}
		verts := enumerateVertices2D(clipped, oracle)
		if len(verts) < 3 {
			// Empty or degenerate region inside the window.
			continue
		}

		xys := make(plotter.XYs, len(verts))
		for j, v := range verts {
			xys[j].X, xys[j].Y = v[0], v[1]
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, err
		}
		idx := 0
		if maxV > minV {
			idx = int(float64(len(colors)-1) * (vals[i] - minV) / (maxV - minV))
		}
		poly.Color = colors[idx]
		poly.LineStyle.Color = color.RGBA{R: 38, G: 38, B: 84, A: 255}
		poly.LineStyle.Width = vg.Points(0.5)
		pl.Add(poly)
	}
	return pl, nil
}

// enumerateVertices2D computes the vertices of a 2-D polytope by
// intersecting facet boundary lines pairwise and keeping the points that
// satisfy every constraint, ordered counter-clockwise around the region's
// Chebyshev center. This is exact for the small facet counts produced by
// path polytopes.
func enumerateVertices2D(p *aff.Polytope, oracle *lp.Oracle) [][2]float64 {
	hs := p.Constraints()
	var verts [][2]float64
	for i := 0; i < len(hs); i++ {
		for j := i + 1; j < len(hs); j++ {
			v, ok := intersectLines(hs[i], hs[j])
			if !ok {
				continue
			}
			x := mat.NewVecDense(2, []float64{v[0], v[1]})
			inside, err := p.Contains(x, containTol)
			if err != nil || !inside {
				continue
			}
			if !seen(verts, v) {
				verts = append(verts, v)
			}
		}
	}
	if len(verts) < 3 {
		return verts
	}

	// Any interior point serves as the sort anchor; the Chebyshev center is
	// interior whenever the region is full-dimensional. Degenerate regions
	// fall back to the vertex centroid.
	var cx, cy float64
	if c, r, err := oracle.ChebyshevCenter(p); err == nil && c != nil && r > 0 {
		cx, cy = c.AtVec(0), c.AtVec(1)
	} else {
		for _, v := range verts {
			cx += v[0]
			cy += v[1]
		}
		cx /= float64(len(verts))
		cy /= float64(len(verts))
	}
	sort.Slice(verts, func(a, b int) bool {
		return math.Atan2(verts[a][1]-cy, verts[a][0]-cx) < math.Atan2(verts[b][1]-cy, verts[b][0]-cx)
	})
	return verts
}

// intersectLines solves the 2x2 system placing x on the boundary of both
// half-spaces.
func intersectLines(a, b aff.HalfSpace) ([2]float64, bool) {
	a0, a1 := a.W.AtVec(0), a.W.AtVec(1)
	b0, b1 := b.W.AtVec(0), b.W.AtVec(1)
	det := a0*b1 - a1*b0
	if math.Abs(det) < 1e-12 {
		return [2]float64{}, false
	}
	// Boundaries: a·x = -a.C and b·x = -b.C.
	x := (-a.C*b1 + b.C*a1) / det
	y := (-b.C*a0 + a.C*b0) / det
	return [2]float64{x, y}, true
}

func seen(verts [][2]float64, v [2]float64) bool {
	for _, u := range verts {
		if math.Abs(u[0]-v[0]) < containTol && math.Abs(u[1]-v[1]) < containTol {
			return true
		}
	}
	return false
}
