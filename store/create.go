package store

import (
	"fmt"

	"github.com/notargets/meshstore/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// Target is anything elements can be created in: a collection, a view or a segment
type Target interface {
	Inserter() *Inserter
}

// Source is anything elements can be read from
type Source interface {
	Elements(kind topology.Kind) (Range, error)
	Dereference(h Handle) (*Element, error)
}

// Insert runs a candidate through the target's inserter
func Insert(t Target, cand Candidate) (Handle, bool, error) {
	return t.Inserter().Insert(cand)
}

func MakeVertex(t Target, p r3.Vec) (Handle, error) {
	h, _, err := Insert(t, Candidate{Kind: topology.Vertex, Point: p})
	return h, err
}

// MakeVertexWithID creates a vertex with a caller supplied id. If a vertex with that id
// exists it is returned unchanged.
func MakeVertexWithID(t Target, p r3.Vec, id ID) (Handle, error) {
	h, _, err := Insert(t, Candidate{Kind: topology.Vertex, Point: p, ID: id, HasID: true})
	return h, err
}

// MakeUniqueVertex returns a vertex of the target lying within tol of p, creating one if
// there is none. A non-positive tol uses |p|*1e-6.
func MakeUniqueVertex(t Target, p r3.Vec, tol float64) (h Handle, err error) {
	in := t.Inserter()
	var src Source = in.coll
	if in.view != nil {
		src = in.view
	}
	if tol <= 0 {
		tol = r3.Norm(p) * 1e-6
	}
	var verts Range
	if verts, err = src.Elements(topology.Vertex); err != nil {
		return
	}
	for vh, el := range verts.All() {
		if r3.Norm(r3.Sub(el.Point(), p)) <= tol {
			return vh, nil
		}
	}
	return MakeVertex(t, p)
}

// MakeElement creates an element of the given kind from its vertices, deriving and
// sharing its boundary elements
func MakeElement(t Target, kind topology.Kind, verts ...Handle) (Handle, error) {
	h, _, err := Insert(t, Candidate{Kind: kind, Vertices: verts})
	return h, err
}

func MakeElementWithID(t Target, kind topology.Kind, id ID, verts ...Handle) (Handle, error) {
	h, _, err := Insert(t, Candidate{Kind: kind, Vertices: verts, ID: id, HasID: true})
	return h, err
}

func MakeLine(t Target, v0, v1 Handle) (Handle, error) {
	return MakeElement(t, topology.Line, v0, v1)
}

func MakeTriangle(t Target, v0, v1, v2 Handle) (Handle, error) {
	return MakeElement(t, topology.Triangle, v0, v1, v2)
}

func MakeQuadrilateral(t Target, v0, v1, v2, v3 Handle) (Handle, error) {
	return MakeElement(t, topology.Quadrilateral, v0, v1, v2, v3)
}

func MakePolygon(t Target, verts ...Handle) (Handle, error) {
	return MakeElement(t, topology.Polygon, verts...)
}

func MakeTetrahedron(t Target, v0, v1, v2, v3 Handle) (Handle, error) {
	return MakeElement(t, topology.Tetrahedron, v0, v1, v2, v3)
}

// MakeHexahedron takes the bottom face counter-clockwise followed by the top face
func MakeHexahedron(t Target, verts [8]Handle) (Handle, error) {
	return MakeElement(t, topology.Hexahedron, verts[:]...)
}

// CopyElement re-creates the element h of src in dst. Vertices are matched to existing
// vertices of dst by position, so copying neighbouring elements keeps them connected.
func CopyElement(src Source, h Handle, dst Target) (Handle, error) {
	el, err := src.Dereference(h)
	if err != nil {
		return Handle{}, err
	}
	if el.Kind() == topology.Vertex {
		return MakeUniqueVertex(dst, el.Point(), 0)
	}
	verts := make([]Handle, len(el.Vertices()))
	for i, vh := range el.Vertices() {
		v, err := src.Dereference(vh)
		if err != nil {
			return Handle{}, fmt.Errorf("copying %v: %w", h, err)
		}
		if verts[i], err = MakeUniqueVertex(dst, v.Point(), 0); err != nil {
			return Handle{}, err
		}
	}
	return MakeElement(dst, el.Kind(), verts...)
}
