package store

import (
	"fmt"
	"slices"

	"github.com/notargets/meshstore/topology"
)

// View is a non-owning projection of a collection: per kind, an ordered set of handles
// into the base. Elements reached through a view are the base's elements.
type View struct {
	base     *Collection
	tracks   [topology.NumKinds]bool
	handles  [topology.NumKinds][]Handle
	index    map[Handle]int
	version  uint64
	inserter *Inserter
}

// NewView creates an empty view over base tracking the given kinds and their boundary
// kinds. No kinds means every kind of the base. The view follows erasures in base until
// Release is called.
func NewView(base *Collection, kinds ...topology.Kind) (*View, error) {
	if len(kinds) == 0 {
		return NewFullView(base), nil
	}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
		}
	}
	closed := topology.Closure(kinds...)
	for _, k := range closed {
		if !base.HasKind(k) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
		}
	}
	return newView(base, closed), nil
}

// NewFullView creates an empty view tracking every kind of base
func NewFullView(base *Collection) *View {
	return newView(base, base.Kinds())
}

func newView(base *Collection, kinds []topology.Kind) *View {
	v := &View{
		base:  base,
		index: make(map[Handle]int),
	}
	for _, k := range kinds {
		v.tracks[k] = true
	}
	v.inserter = v.NewInserter(nil)
	base.attach(v)
	return v
}

// NewFilteredView creates a view holding every element of the base accepted by keep,
// together with its boundary
func NewFilteredView(base *Collection, keep func(*Element) bool, kinds ...topology.Kind) (*View, error) {
	v, err := NewView(base, kinds...)
	if err != nil {
		return nil, err
	}
	for _, k := range base.Kinds() {
		if !v.tracks[k] {
			continue
		}
		for _, el := range base.containers[k].All() {
			if keep(el) {
				v.registerClosure(el, nil)
			}
		}
	}
	return v, nil
}

func (v *View) Base() *Collection { return v.base }

// Tracks reports whether the view holds elements of kind k
func (v *View) Tracks(k topology.Kind) bool { return k.Valid() && v.tracks[k] }

// Version changes whenever a handle is added or removed
func (v *View) Version() uint64 { return v.version }

// Inserter is the view inserter; elements it creates are stored in the base
func (v *View) Inserter() *Inserter { return v.inserter }

// NewInserter returns a view inserter that calls onRegister for every handle newly added to the view
func (v *View) NewInserter(onRegister func(Handle)) *Inserter {
	return &Inserter{coll: v.base, view: v, onRegister: onRegister}
}

// Release detaches the view from its base. Every attached view is visited by each
// Collection.Erase, so views that are no longer used should be released. A released view
// keeps its handles but no longer follows erasures.
func (v *View) Release() { v.base.detach(v) }

func (v *View) Len(k topology.Kind) int {
	if !v.Tracks(k) {
		return 0
	}
	return len(v.handles[k])
}

func (v *View) Contains(h Handle) bool {
	_, ok := v.index[h]
	return ok
}

// AddHandle registers a single handle without its boundary. added is false if the view
// already held it.
func (v *View) AddHandle(h Handle) (added bool, err error) {
	if err = v.checkHandle(h); err != nil {
		return false, err
	}
	return v.add(h), nil
}

// AddClosure registers h and its whole boundary
func (v *View) AddClosure(h Handle) error {
	return v.AddClosureFunc(h, nil)
}

// AddClosureFunc registers h and its whole boundary, calling onRegister for every handle
// the view did not hold before
func (v *View) AddClosureFunc(h Handle, onRegister func(Handle)) error {
	if err := v.checkHandle(h); err != nil {
		return err
	}
	v.registerClosure(v.base.slot(h), onRegister)
	return nil
}

func (v *View) checkHandle(h Handle) error {
	if _, err := v.base.Dereference(h); err != nil {
		return err
	}
	if !v.tracks[h.Kind] {
		return fmt.Errorf("%w: view does not track %v", ErrUnknownKind, h.Kind)
	}
	return nil
}

// RemoveHandle drops h from the view; boundary elements are left in place
func (v *View) RemoveHandle(h Handle) bool {
	return v.removeSet(map[Handle]bool{h: true}) > 0
}

func (v *View) Dereference(h Handle) (*Element, error) {
	if !v.Contains(h) {
		return nil, fmt.Errorf("%w: %v is not in the view", ErrInvalidHandle, h)
	}
	return v.base.Dereference(h)
}

// Elements returns a range over the view's elements of kind k in registration order
func (v *View) Elements(k topology.Kind) (Range, error) {
	if !v.Tracks(k) {
		return Range{}, fmt.Errorf("%w: view does not track %v", ErrUnknownKind, k)
	}
	return newRange(v.base, k, slices.Clone(v.handles[k]), v.Version, v.version), nil
}

func (v *View) add(h Handle) bool {
	if _, ok := v.index[h]; ok {
		return false
	}
	v.index[h] = len(v.handles[h.Kind])
	v.handles[h.Kind] = append(v.handles[h.Kind], h)
	v.version++
	return true
}

func (v *View) registerClosure(el *Element, onRegister func(Handle)) {
	if v.add(el.handle) && onRegister != nil {
		onRegister(el.handle)
	}
	for d := el.Dimension() - 1; d >= 0; d-- {
		for _, b := range el.Boundary(d) {
			if v.add(b) && onRegister != nil {
				onRegister(b)
			}
		}
	}
}

// removeSet drops every listed handle the view holds, keeping the order of the rest
func (v *View) removeSet(drop map[Handle]bool) (removed int) {
	touched := make(map[topology.Kind]bool)
	for h := range drop {
		if _, ok := v.index[h]; ok {
			touched[h.Kind] = true
		}
	}
	for k := range touched {
		kept := v.handles[k][:0]
		for _, h := range v.handles[k] {
			if drop[h] {
				delete(v.index, h)
				removed++
				continue
			}
			v.index[h] = len(kept)
			kept = append(kept, h)
		}
		v.handles[k] = kept
	}
	if removed > 0 {
		v.version++
	}
	return
}
