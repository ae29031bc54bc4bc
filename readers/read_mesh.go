package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/meshstore/segmentation"
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Summary describes what a reader put into the segmentation
type Summary struct {
	Format     string
	Vertices   int
	Cells      int
	Degenerate int
	Segments   []string
}

// ReadMeshFile reads a mesh file based on extension into sm
func ReadMeshFile(filename string, sm *segmentation.Segmentation) (*Summary, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambitNeutral(filename, sm)
	case ".su2":
		return ReadSU2(filename, sm)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// rawElement is an element as read from file; verts index rawMesh.points
type rawElement struct {
	kind  topology.Kind
	id    store.ID
	hasID bool
	verts []int
}

// rawFace names face `face` (0-based) of cell `cell` (index into rawMesh.cells)
type rawFace struct {
	cell, face int
}

type rawSet struct {
	name     string
	cells    []int
	faces    []rawFace
	elements []rawElement
}

// rawMesh is the parsed file content, validated before anything reaches the store
type rawMesh struct {
	format   string
	points   []r3.Vec
	pointIDs []store.ID
	cells    []rawElement
	sets     []rawSet
}

// dropBoundaryIDs clears the file ids of cells whose kind is on the boundary of another
// cell in the file. The store numbers those kinds itself while deriving boundaries, so a
// file id could name an element created earlier.
func (raw *rawMesh) dropBoundaryIDs() {
	boundary := make(map[topology.Kind]bool)
	for _, el := range raw.cells {
		for _, k := range topology.Closure(el.kind) {
			if k != el.kind {
				boundary[k] = true
			}
		}
	}
	for i := range raw.cells {
		if boundary[raw.cells[i].kind] {
			raw.cells[i].hasID = false
		}
	}
}

// checkIDs rejects file ids that repeat within a kind or are already taken in mesh
func (raw *rawMesh) checkIDs(mesh *store.Collection) error {
	taken := func(k topology.Kind, id store.ID) bool {
		_, err := mesh.Find(k, id)
		return err == nil
	}
	seen := make(map[store.ID]bool, len(raw.pointIDs))
	for i, id := range raw.pointIDs {
		if seen[id] || taken(topology.Vertex, id) {
			return fmt.Errorf("node %d: id %d: %w", i+1, id, store.ErrIDInUse)
		}
		seen[id] = true
	}
	cellIDs := make(map[topology.Kind]map[store.ID]bool)
	for i, el := range raw.cells {
		if !el.hasID {
			continue
		}
		if cellIDs[el.kind] == nil {
			cellIDs[el.kind] = make(map[store.ID]bool)
		}
		if cellIDs[el.kind][el.id] || taken(el.kind, el.id) {
			return fmt.Errorf("element %d: %v id %d: %w", i+1, el.kind, el.id, store.ErrIDInUse)
		}
		cellIDs[el.kind][el.id] = true
	}
	return nil
}

func (raw *rawMesh) validate() error {
	check := func(el rawElement) error {
		if !el.kind.AcceptsVertexCount(len(el.verts)) {
			return fmt.Errorf("%v with %d nodes", el.kind, len(el.verts))
		}
		for _, v := range el.verts {
			if v < 0 || v >= len(raw.points) {
				return fmt.Errorf("node index %d out of range [0,%d)", v, len(raw.points))
			}
		}
		return nil
	}
	for i, el := range raw.cells {
		if err := check(el); err != nil {
			return fmt.Errorf("element %d: %w", i+1, err)
		}
	}
	for _, set := range raw.sets {
		for _, c := range set.cells {
			if c < 0 || c >= len(raw.cells) {
				return fmt.Errorf("set %s: element %d out of range", set.name, c+1)
			}
		}
		for _, f := range set.faces {
			if f.cell < 0 || f.cell >= len(raw.cells) {
				return fmt.Errorf("set %s: element %d out of range", set.name, f.cell+1)
			}
			cell := raw.cells[f.cell]
			if n := len(cell.kind.Facets(len(cell.verts))); f.face < 0 || f.face >= n {
				return fmt.Errorf("set %s: face %d of element %d out of range", set.name, f.face+1, f.cell+1)
			}
		}
		for _, el := range set.elements {
			if err := check(el); err != nil {
				return fmt.Errorf("set %s: %w", set.name, err)
			}
		}
	}
	return nil
}

// build inserts the parsed mesh: vertices and cells into the mesh, each set as a named segment
func (raw *rawMesh) build(sm *segmentation.Segmentation) (*Summary, error) {
	var (
		mesh = sm.Mesh()
		log  = mesh.Logger()
		sum  = &Summary{Format: raw.format}
	)
	raw.dropBoundaryIDs()
	if err := raw.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", raw.format, err)
	}
	if err := raw.checkIDs(mesh); err != nil {
		return nil, fmt.Errorf("%s: %w", raw.format, err)
	}
	verts := make([]store.Handle, len(raw.points))
	for i, p := range raw.points {
		var err error
		if raw.pointIDs != nil {
			verts[i], err = store.MakeVertexWithID(mesh, p, raw.pointIDs[i])
		} else {
			verts[i], err = store.MakeVertex(mesh, p)
		}
		if err != nil {
			return nil, err
		}
	}
	sum.Vertices = len(verts)

	insert := func(tgt store.Target, el rawElement) (store.Handle, error) {
		hs := make([]store.Handle, len(el.verts))
		for j, v := range el.verts {
			hs[j] = verts[v]
		}
		if topology.IsDegenerate(el.verts) {
			sum.Degenerate++
			log.WithFields(logrus.Fields{
				"kind":  el.kind.String(),
				"nodes": el.verts,
			}).Warn("degenerate element")
		}
		h, _, err := store.Insert(tgt, store.Candidate{Kind: el.kind, Vertices: hs, ID: el.id, HasID: el.hasID})
		return h, err
	}

	cells := make([]store.Handle, len(raw.cells))
	for i, el := range raw.cells {
		var err error
		if cells[i], err = insert(mesh, el); err != nil {
			return nil, fmt.Errorf("%s: element %d: %w", raw.format, i+1, err)
		}
	}
	sum.Cells = len(cells)

	for _, set := range raw.sets {
		seg := sm.MakeNamed(set.name)
		for _, c := range set.cells {
			if err := sm.Add(seg, cells[c]); err != nil {
				return nil, err
			}
		}
		for _, f := range set.faces {
			el, err := mesh.Dereference(cells[f.cell])
			if err != nil {
				return nil, err
			}
			if err = sm.Add(seg, el.Facets()[f.face]); err != nil {
				return nil, err
			}
		}
		for _, el := range set.elements {
			if _, err := insert(seg, el); err != nil {
				return nil, fmt.Errorf("%s: set %s: %w", raw.format, set.name, err)
			}
		}
		sum.Segments = append(sum.Segments, set.name)
	}

	log.WithFields(logrus.Fields{
		"format":   sum.Format,
		"vertices": sum.Vertices,
		"cells":    sum.Cells,
		"segments": len(sum.Segments),
	}).Info("mesh read")
	return sum, nil
}
