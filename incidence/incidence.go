package incidence

import (
	"errors"
	"fmt"
	"slices"

	"github.com/james-bowman/sparse"
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
)

// ErrDimension is returned when the requested kinds do not form a valid incidence
var ErrDimension = errors.New("incompatible element dimensions")

// Incidence is a 0/1 sparse matrix relating elements (rows) to boundary elements (columns)
type Incidence struct {
	Rows []store.Handle
	Cols []store.Handle
	M    *sparse.CSR

	rowIndex map[store.Handle]int
	colIndex map[store.Handle]int
}

func (inc *Incidence) Row(h store.Handle) (int, bool) {
	i, ok := inc.rowIndex[h]
	return i, ok
}

func (inc *Incidence) Col(h store.Handle) (int, bool) {
	j, ok := inc.colIndex[h]
	return j, ok
}

// Matrix builds the incidence between every rowKind element of src and its colKind boundary
// elements. Columns are the colKind elements of src in range order.
func Matrix(src store.Source, rowKind, colKind topology.Kind) (*Incidence, error) {
	if colKind.Dimension() >= rowKind.Dimension() {
		return nil, fmt.Errorf("%w: %v is not on the boundary of %v", ErrDimension, colKind, rowKind)
	}
	rows, err := src.Elements(rowKind)
	if err != nil {
		return nil, err
	}
	cols, err := src.Elements(colKind)
	if err != nil {
		return nil, err
	}
	inc := newIncidence(rows.Handles(), cols.Handles())
	dok := sparse.NewDOK(max(len(inc.Rows), 1), max(len(inc.Cols), 1))
	dim := colKind.Dimension()
	for i := 0; i < rows.Len(); i++ {
		el := rows.Element(i)
		if el == nil {
			continue
		}
		for _, b := range el.Boundary(dim) {
			if j, ok := inc.colIndex[b]; ok {
				dok.Set(i, j, 1)
			}
		}
	}
	inc.M = dok.ToCSR()
	return inc, nil
}

// CellFacets builds the incidence between the cells of the given kinds and their facets.
// The cell kinds must share one dimension. Facet columns are numbered in order of first
// appearance, so facets of mixed kinds share one column space.
func CellFacets(src store.Source, cellKinds ...topology.Kind) (*Incidence, error) {
	if len(cellKinds) == 0 {
		return nil, fmt.Errorf("%w: no cell kinds", ErrDimension)
	}
	dim := cellKinds[0].Dimension()
	if dim < 1 {
		return nil, fmt.Errorf("%w: %v has no facets", ErrDimension, cellKinds[0])
	}
	var (
		cells  []store.Handle
		facets []store.Handle
		els    []*store.Element
		seen   = make(map[store.Handle]bool)
	)
	for _, k := range cellKinds {
		if k.Dimension() != dim {
			return nil, fmt.Errorf("%w: %v and %v", ErrDimension, cellKinds[0], k)
		}
		r, err := src.Elements(k)
		if err != nil {
			return nil, err
		}
		for h, el := range r.All() {
			cells = append(cells, h)
			els = append(els, el)
			for _, f := range el.Facets() {
				if !seen[f] {
					seen[f] = true
					facets = append(facets, f)
				}
			}
		}
	}
	inc := newIncidence(cells, facets)
	dok := sparse.NewDOK(max(len(cells), 1), max(len(facets), 1))
	for i, el := range els {
		for _, f := range el.Facets() {
			dok.Set(i, inc.colIndex[f], 1)
		}
	}
	inc.M = dok.ToCSR()
	return inc, nil
}

func newIncidence(rows, cols []store.Handle) *Incidence {
	inc := &Incidence{
		Rows:     rows,
		Cols:     cols,
		rowIndex: make(map[store.Handle]int, len(rows)),
		colIndex: make(map[store.Handle]int, len(cols)),
	}
	for i, h := range rows {
		inc.rowIndex[h] = i
	}
	for j, h := range cols {
		inc.colIndex[h] = j
	}
	return inc
}

// ColumnCounts returns, per column, the number of rows referencing it
func (inc *Incidence) ColumnCounts() []int {
	counts := make([]int, len(inc.Cols))
	inc.M.DoNonZero(func(i, j int, v float64) {
		if j < len(counts) && v != 0 {
			counts[j]++
		}
	})
	return counts
}

// BoundaryFacets returns the columns referenced by exactly one row, in column order.
// For a CellFacets incidence these are the facets on the boundary of the cell set.
func (inc *Incidence) BoundaryFacets() []store.Handle {
	var out []store.Handle
	for j, n := range inc.ColumnCounts() {
		if n == 1 {
			out = append(out, inc.Cols[j])
		}
	}
	return out
}

// Graph is the cell adjacency in compressed form: the neighbours of cell i are
// Adjncy[Xadj[i]:Xadj[i+1]], and Shared holds the number of facets each pair has in common
type Graph struct {
	Cells  []store.Handle
	Xadj   []int32
	Adjncy []int32
	Shared []int32
}

func (g *Graph) Neighbors(i int) []int32 {
	return g.Adjncy[g.Xadj[i]:g.Xadj[i+1]]
}

// DualGraph connects cells sharing at least one facet. It is read off the off-diagonal
// entries of C*C^T, where C is the cell to facet incidence.
func DualGraph(src store.Source, cellKinds ...topology.Kind) (*Graph, error) {
	inc, err := CellFacets(src, cellKinds...)
	if err != nil {
		return nil, err
	}
	nc := len(inc.Rows)
	g := &Graph{Cells: inc.Rows, Xadj: make([]int32, nc+1)}
	if nc == 0 {
		return g, nil
	}
	rows, _ := inc.M.Dims()
	CToC := sparse.NewCSR(rows, rows, nil, nil, nil)
	CToC.Mul(inc.M, inc.M.T())

	type entry struct {
		col    int
		shared int32
	}
	adj := make([][]entry, nc)
	CToC.DoNonZero(func(i, j int, v float64) {
		if i == j || i >= nc || j >= nc || v == 0 {
			return
		}
		adj[i] = append(adj[i], entry{col: j, shared: int32(v)})
	})
	for i := 0; i < nc; i++ {
		slices.SortFunc(adj[i], func(a, b entry) int { return a.col - b.col })
		for _, e := range adj[i] {
			g.Adjncy = append(g.Adjncy, int32(e.col))
			g.Shared = append(g.Shared, e.shared)
		}
		g.Xadj[i+1] = int32(len(g.Adjncy))
	}
	return g, nil
}
