package segmentation

import (
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
)

// Segment is one member of a Segmentation. Elements created through a segment are
// stored in the mesh and registered in the segment.
type Segment struct {
	id       int
	name     string
	owner    *Segmentation
	view     *store.View
	inserter *store.Inserter
}

func (s *Segment) ID() int                      { return s.id }
func (s *Segment) Name() string                 { return s.name }
func (s *Segment) SetName(name string)          { s.name = name }
func (s *Segment) View() *store.View            { return s.view }
func (s *Segment) Inserter() *store.Inserter    { return s.inserter }
func (s *Segment) Contains(h store.Handle) bool { return s.view.Contains(h) }
func (s *Segment) Len(k topology.Kind) int      { return s.view.Len(k) }

func (s *Segment) Elements(k topology.Kind) (store.Range, error) {
	return s.view.Elements(k)
}

func (s *Segment) Dereference(h store.Handle) (*store.Element, error) {
	return s.view.Dereference(h)
}

func (s *Segment) registered(h store.Handle) { s.owner.register(s, h) }
