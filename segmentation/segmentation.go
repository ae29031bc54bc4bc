package segmentation

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
)

// ErrSegmentNotFound is returned when a segment id or name was never created
var ErrSegmentNotFound = errors.New("segment not found")

// Config holds the options a Segmentation is built with
type Config struct {
	// PruneOrphans erases an element from the mesh once it leaves its last segment
	PruneOrphans bool
	// Logger defaults to the mesh's logger
	Logger *logrus.Logger
}

type infoKey struct {
	segment int
	element store.Handle
}

/*
Segmentation is a numbered set of possibly overlapping segments over one mesh.

Every segment is a view of the mesh and is always boundary-closed. The segmentation keeps
a union view of everything assigned to any segment, and a side index from element to the
ids of the segments holding it.
*/
type Segmentation struct {
	mesh       *store.Collection
	all        *store.View
	segments   map[int]*Segment
	highest    int
	membership map[store.Handle][]int
	info       map[infoKey]any
	cfg        Config
	log        *logrus.Logger
	cancel     func()
}

func New(mesh *store.Collection, cfg Config) (*Segmentation, error) {
	if mesh == nil {
		return nil, errors.New("segmentation needs a mesh")
	}
	sm := &Segmentation{
		mesh:       mesh,
		all:        store.NewFullView(mesh),
		segments:   make(map[int]*Segment),
		highest:    -1,
		membership: make(map[store.Handle][]int),
		info:       make(map[infoKey]any),
		cfg:        cfg,
		log:        cfg.Logger,
	}
	if sm.log == nil {
		sm.log = mesh.Logger()
	}
	sm.cancel = mesh.OnErase(sm.forget)
	return sm, nil
}

// Release detaches the union view, every segment view and the erase listener from the
// mesh. The segmentation must not be used afterwards; the mesh stays intact.
func (sm *Segmentation) Release() {
	if sm.cancel == nil {
		return
	}
	sm.cancel()
	sm.cancel = nil
	sm.all.Release()
	for _, seg := range sm.segments {
		seg.view.Release()
	}
}

// Mesh is the physical collection the segments refer to
func (sm *Segmentation) Mesh() *store.Collection { return sm.mesh }

// AllElements is the union of every segment
func (sm *Segmentation) AllElements() *store.View { return sm.all }

// Elements ranges over the union of every segment
func (sm *Segmentation) Elements(k topology.Kind) (store.Range, error) {
	return sm.all.Elements(k)
}

func (sm *Segmentation) Dereference(h store.Handle) (*store.Element, error) {
	return sm.all.Dereference(h)
}

func (sm *Segmentation) Len() int { return len(sm.segments) }

// Make creates a segment with the next free id, one past the highest id seen so far
func (sm *Segmentation) Make() *Segment {
	return sm.create(sm.highest + 1)
}

// MakeNamed creates a segment with the next free id and a name
func (sm *Segmentation) MakeNamed(name string) *Segment {
	seg := sm.Make()
	seg.name = name
	return seg
}

// GetOrMake returns the segment with the given id, creating it if needed
func (sm *Segmentation) GetOrMake(id int) *Segment {
	if seg, ok := sm.segments[id]; ok {
		return seg
	}
	return sm.create(id)
}

func (sm *Segmentation) Get(id int) (*Segment, error) {
	seg, ok := sm.segments[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrSegmentNotFound, id)
	}
	return seg, nil
}

// ByName returns the lowest numbered segment with the given name
func (sm *Segmentation) ByName(name string) (*Segment, error) {
	for _, seg := range sm.Segments() {
		if seg.name == name {
			return seg, nil
		}
	}
	return nil, fmt.Errorf("%w: name %q", ErrSegmentNotFound, name)
}

// Segments returns every segment ordered by id
func (sm *Segmentation) Segments() []*Segment {
	segs := make([]*Segment, 0, len(sm.segments))
	for _, seg := range sm.segments {
		segs = append(segs, seg)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].id < segs[j].id })
	return segs
}

func (sm *Segmentation) create(id int) *Segment {
	view := store.NewFullView(sm.mesh)
	seg := &Segment{id: id, owner: sm, view: view}
	seg.inserter = view.NewInserter(seg.registered)
	sm.segments[id] = seg
	if id > sm.highest {
		sm.highest = id
	}
	sm.log.WithField("segment", id).Debug("segment created")
	return seg
}

// SegmentIDs returns the ids of the segments holding h, in ascending order
func (sm *Segmentation) SegmentIDs(h store.Handle) []int {
	return slices.Clone(sm.membership[h])
}

// IsInSegment tests h against its membership set. It is false for a nil or foreign segment.
func (sm *Segmentation) IsInSegment(seg *Segment, h store.Handle) bool {
	if sm.owns(seg) != nil {
		return false
	}
	_, found := slices.BinarySearch(sm.membership[h], seg.id)
	return found
}

// Add puts h and its whole boundary into seg
func (sm *Segmentation) Add(seg *Segment, h store.Handle) error {
	if err := sm.owns(seg); err != nil {
		return err
	}
	return seg.view.AddClosureFunc(h, seg.registered)
}

/*
Erase removes h from seg together with every element of seg that references it. Boundary
elements stay in the segment. An element left in no segment drops out of the union view,
and is erased from the mesh as well when PruneOrphans is set.
*/
func (sm *Segmentation) Erase(seg *Segment, h store.Handle) error {
	if err := sm.owns(seg); err != nil {
		return err
	}
	if !seg.view.Contains(h) {
		return fmt.Errorf("%w: %v is not in segment %d", store.ErrInvalidHandle, h, seg.id)
	}
	refs, err := sm.mesh.Referencing(h)
	if err != nil {
		return err
	}
	var orphans []store.Handle
	for _, r := range refs {
		if !seg.view.Contains(r) {
			continue
		}
		seg.view.RemoveHandle(r)
		delete(sm.info, infoKey{seg.id, r})
		ids := sm.membership[r]
		if i, found := slices.BinarySearch(ids, seg.id); found {
			ids = slices.Delete(ids, i, i+1)
		}
		if len(ids) > 0 {
			sm.membership[r] = ids
			continue
		}
		delete(sm.membership, r)
		sm.all.RemoveHandle(r)
		orphans = append(orphans, r)
	}
	if sm.cfg.PruneOrphans && len(orphans) > 0 {
		return sm.mesh.Erase(orphans...)
	}
	return nil
}

// SetInfo attaches a value to the pair (seg, h); h must be in seg
func (sm *Segmentation) SetInfo(seg *Segment, h store.Handle, value any) error {
	if err := sm.owns(seg); err != nil {
		return err
	}
	if !seg.view.Contains(h) {
		return fmt.Errorf("%w: %v is not in segment %d", store.ErrInvalidHandle, h, seg.id)
	}
	sm.info[infoKey{seg.id, h}] = value
	return nil
}

// Info returns the value attached to (seg, h) if it has type T
func Info[T any](sm *Segmentation, seg *Segment, h store.Handle) (value T, ok bool) {
	raw, found := sm.info[infoKey{seg.id, h}]
	if !found {
		return
	}
	value, ok = raw.(T)
	return
}

// Interface returns the elements of kind k held by both segments, in the order of seg0
func (sm *Segmentation) Interface(seg0, seg1 *Segment, k topology.Kind) ([]store.Handle, error) {
	r, err := seg0.view.Elements(k)
	if err != nil {
		return nil, err
	}
	var shared []store.Handle
	for h := range r.All() {
		if seg1.view.Contains(h) {
			shared = append(shared, h)
		}
	}
	return shared, nil
}

func (sm *Segmentation) owns(seg *Segment) error {
	if seg == nil || seg.owner != sm {
		return fmt.Errorf("%w: segment belongs to another segmentation", ErrSegmentNotFound)
	}
	return nil
}

// register records membership for a handle just added to seg's view
func (sm *Segmentation) register(seg *Segment, h store.Handle) {
	ids := sm.membership[h]
	if i, found := slices.BinarySearch(ids, seg.id); !found {
		sm.membership[h] = slices.Insert(ids, i, seg.id)
	}
	// h was just added to a full view of the same mesh, so it is live and of a tracked
	// kind and AddHandle cannot fail; added is false when another segment holds h
	_, _ = sm.all.AddHandle(h)
}

// forget drops bookkeeping for elements erased from the mesh
func (sm *Segmentation) forget(erased []store.Handle) {
	for _, h := range erased {
		for _, id := range sm.membership[h] {
			delete(sm.info, infoKey{id, h})
		}
		delete(sm.membership, h)
	}
}
