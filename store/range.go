package store

import (
	"iter"

	"github.com/notargets/meshstore/topology"
)

// Range is an ordered, restartable sequence of elements of one kind taken from a
// collection or view. It is a snapshot: once Stale reports true the source has changed
// and the range should be fetched again.
type Range struct {
	kind    topology.Kind
	handles []Handle
	base    *Collection
	version uint64
	current func() uint64
}

func newRange(base *Collection, kind topology.Kind, handles []Handle, current func() uint64, version uint64) Range {
	return Range{
		kind:    kind,
		handles: handles,
		base:    base,
		version: version,
		current: current,
	}
}

func (r Range) Kind() topology.Kind { return r.kind }
func (r Range) Len() int            { return len(r.handles) }
func (r Range) Handle(i int) Handle { return r.handles[i] }

// Element returns the i-th element, or nil if it has been erased since the range was taken
func (r Range) Element(i int) *Element {
	el := r.base.slot(r.handles[i])
	if el.erased {
		return nil
	}
	return el
}

// Handles returns a copy of the handles in range order
func (r Range) Handles() []Handle {
	return append([]Handle(nil), r.handles...)
}

// All iterates the range, skipping elements erased after it was taken
func (r Range) All() iter.Seq2[Handle, *Element] {
	return func(yield func(Handle, *Element) bool) {
		for i, h := range r.handles {
			el := r.Element(i)
			if el == nil {
				continue
			}
			if !yield(h, el) {
				return
			}
		}
	}
}

// Stale reports whether the source changed after the range was taken
func (r Range) Stale() bool {
	if r.current == nil {
		return false
	}
	return r.current() != r.version
}
