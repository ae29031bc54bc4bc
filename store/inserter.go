package store

import (
	"fmt"

	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Candidate describes an element to be inserted. Vertex candidates carry a Point and no
// Vertices; every other kind lists its vertex handles in the kind's local order.
type Candidate struct {
	Kind     topology.Kind
	Vertices []Handle
	Point    r3.Vec
	// ID is used in place of a generated id when HasID is set
	ID    ID
	HasID bool
}

/*
Inserter is the only path by which elements enter a mesh.

A physical inserter writes into its collection. A view inserter runs the same pipeline
against the view's base collection and then registers the element, together with its whole
boundary, into the view. Boundary elements are derived from the kind's facet table and
inserted bottom-up through the same pipeline, so an edge shared by two faces is created
once and referenced by both.
*/
type Inserter struct {
	coll       *Collection
	view       *View
	onRegister func(Handle)
}

func (in *Inserter) Collection() *Collection { return in.coll }

// View is the view the inserter registers into, nil for a physical inserter
func (in *Inserter) View() *View { return in.view }

// Insert runs the insertion pipeline. isNew is false when a structurally identical element
// was already stored, in which case the stored element's handle is returned. Handle or kind
// errors are reported before anything is stored.
func (in *Inserter) Insert(cand Candidate) (h Handle, isNew bool, err error) {
	var key topology.Key
	if key, err = in.check(cand); err != nil {
		return
	}
	el, isNew := in.place(cand, key)
	if in.view != nil {
		in.view.registerClosure(el, in.onRegister)
	}
	return el.handle, isNew, nil
}

func (in *Inserter) check(cand Candidate) (key topology.Key, err error) {
	c := in.coll
	if !c.HasKind(cand.Kind) {
		return "", fmt.Errorf("%w: %v", ErrUnknownKind, cand.Kind)
	}
	if in.view != nil && !in.view.Tracks(cand.Kind) {
		return "", fmt.Errorf("%w: view does not track %v", ErrUnknownKind, cand.Kind)
	}
	if !cand.Kind.AcceptsVertexCount(len(cand.Vertices)) {
		return "", fmt.Errorf("%w: %v with %d vertices", ErrInvalidCandidate, cand.Kind, len(cand.Vertices))
	}
	if cand.HasID && cand.ID < 0 {
		return "", fmt.Errorf("%w: negative id %d", ErrInvalidCandidate, cand.ID)
	}
	for _, vh := range cand.Vertices {
		if vh.Kind != topology.Vertex {
			return "", fmt.Errorf("%w: %v is not a vertex", ErrInvalidHandle, vh)
		}
		if _, err = c.Dereference(vh); err != nil {
			return "", err
		}
	}
	cont := c.containers[cand.Kind]
	if cand.Kind == topology.Vertex {
		return "", nil
	}
	key = topology.NewKey(cand.Kind, slotIndices(cand.Vertices))
	if !cand.HasID {
		return key, nil
	}
	if existing, ok := cont.lookupID(cand.ID); ok && existing.key != key {
		return "", fmt.Errorf("%w: %v id %d", ErrIDInUse, cand.Kind, cand.ID)
	}
	return key, nil
}

// place stores the candidate and its derived boundary; the candidate has passed check
func (in *Inserter) place(cand Candidate, key topology.Key) (*Element, bool) {
	c := in.coll
	cont := c.containers[cand.Kind]
	if cand.Kind == topology.Vertex {
		if cand.HasID {
			if existing, ok := cont.lookupID(cand.ID); ok {
				return existing, false
			}
		}
	} else if existing, ok := cont.lookupKey(key); ok {
		return existing, false
	}

	el := &Element{
		kind:     cand.Kind,
		key:      key,
		boundary: in.deriveBoundary(cand),
	}
	if cand.Kind == topology.Vertex {
		el.point = cand.Point
	}
	if cand.HasID {
		el.id = cand.ID
		c.ids.RegisterExisting(cand.Kind, cand.ID)
	} else {
		el.id = c.ids.Next(cand.Kind)
	}
	cont.insert(el)
	c.version++
	if c.log.IsLevelEnabled(logrus.DebugLevel) {
		c.log.WithFields(logrus.Fields{
			"kind": el.kind.String(),
			"id":   el.id,
			"slot": el.handle.Index,
		}).Debug("element created")
	}
	if hook := c.hooks[el.kind]; hook != nil {
		hook(c, el)
	}
	return el, true
}

func (in *Inserter) deriveBoundary(cand Candidate) [][]Handle {
	dim := cand.Kind.Dimension()
	if dim == 0 {
		return nil
	}
	boundary := make([][]Handle, dim)
	boundary[0] = append([]Handle(nil), cand.Vertices...)
	if dim == 1 {
		return boundary
	}
	var (
		facets    = cand.Kind.Facets(len(cand.Vertices))
		facetEls  = make([]*Element, len(facets))
		facetHdls = make([]Handle, len(facets))
	)
	for i, f := range facets {
		fv := make([]Handle, len(f.Local))
		for j, l := range f.Local {
			fv[j] = cand.Vertices[l]
		}
		fc := Candidate{Kind: f.Kind, Vertices: fv}
		facetEls[i], _ = in.place(fc, topology.NewKey(f.Kind, slotIndices(fv)))
		facetHdls[i] = facetEls[i].handle
	}
	boundary[dim-1] = facetHdls
	for d := 1; d < dim-1; d++ {
		seen := make(map[Handle]bool)
		for _, fe := range facetEls {
			for _, b := range fe.Boundary(d) {
				if !seen[b] {
					seen[b] = true
					boundary[d] = append(boundary[d], b)
				}
			}
		}
	}
	return boundary
}

func slotIndices(hs []Handle) []int {
	idx := make([]int, len(hs))
	for i, h := range hs {
		idx[i] = h.Index
	}
	return idx
}
