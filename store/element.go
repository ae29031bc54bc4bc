package store

import (
	"github.com/notargets/meshstore/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// Element is one stored mesh entity. Its boundary lists are complete from the moment it
// becomes visible: Boundary(d) holds every boundary element of dimension d, vertices in
// the order the element was created with and facets in the kind's facet order.
type Element struct {
	kind     topology.Kind
	id       ID
	handle   Handle
	boundary [][]Handle
	point    r3.Vec
	key      topology.Key
	erased   bool
}

func (e *Element) Kind() topology.Kind { return e.kind }
func (e *Element) ID() ID               { return e.id }
func (e *Element) Handle() Handle       { return e.handle }
func (e *Element) Dimension() int       { return e.kind.Dimension() }

// Point is the coordinate payload of a vertex; zero for other kinds
func (e *Element) Point() r3.Vec { return e.point }

// Boundary returns the boundary handles of dimension dim. The slice must not be modified.
func (e *Element) Boundary(dim int) []Handle {
	if dim < 0 || dim >= len(e.boundary) {
		return nil
	}
	return e.boundary[dim]
}

// Vertices is Boundary(0)
func (e *Element) Vertices() []Handle { return e.Boundary(0) }

// Facets is the boundary of dimension one below the element's
func (e *Element) Facets() []Handle { return e.Boundary(len(e.boundary) - 1) }

// References reports whether h is on the boundary of e
func (e *Element) References(h Handle) bool {
	for _, b := range e.Boundary(h.Kind.Dimension()) {
		if b == h {
			return true
		}
	}
	return false
}

func (e *Element) Erased() bool { return e.erased }
