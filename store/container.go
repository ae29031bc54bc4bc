package store

import (
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/notargets/meshstore/topology"
)

// Container owns the elements of one kind. Elements live in append-only slots, so a slot
// index never changes once issued; erasing leaves a tombstone behind.
type Container struct {
	kind    topology.Kind
	mesh    uuid.UUID
	slots   []*Element
	byID    map[ID]int
	byKey   map[topology.Key]int
	alive   int
	version uint64
}

func newContainer(kind topology.Kind, mesh uuid.UUID) *Container {
	return &Container{
		kind:  kind,
		mesh:  mesh,
		byID:  make(map[ID]int),
		byKey: make(map[topology.Key]int),
	}
}

func (c *Container) Kind() topology.Kind { return c.kind }

// Len is the number of live elements
func (c *Container) Len() int { return c.alive }

// Version changes whenever an element is added or erased
func (c *Container) Version() uint64 { return c.version }

func (c *Container) Contains(id ID) bool {
	_, ok := c.byID[id]
	return ok
}

// Find looks up the live element with the given id
func (c *Container) Find(id ID) (Handle, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Handle{}, false
	}
	return c.slots[idx].handle, true
}

func (c *Container) Dereference(h Handle) (*Element, error) {
	if h.mesh != c.mesh || h.Kind != c.kind || h.Index < 0 || h.Index >= len(c.slots) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHandle, h)
	}
	el := c.slots[h.Index]
	if el.erased {
		return nil, fmt.Errorf("%w: %v has been erased", ErrInvalidHandle, h)
	}
	return el, nil
}

// All iterates live elements in insertion order
func (c *Container) All() iter.Seq2[Handle, *Element] {
	return func(yield func(Handle, *Element) bool) {
		for _, el := range c.slots {
			if el.erased {
				continue
			}
			if !yield(el.handle, el) {
				return
			}
		}
	}
}

func (c *Container) handles() []Handle {
	hs := make([]Handle, 0, c.alive)
	for h := range c.All() {
		hs = append(hs, h)
	}
	return hs
}

func (c *Container) lookupKey(key topology.Key) (*Element, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return nil, false
	}
	return c.slots[idx], true
}

func (c *Container) lookupID(id ID) (*Element, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return c.slots[idx], true
}

// insert stores el unless an element with the same structural key is present, in which
// case the present element is returned with isNew false
func (c *Container) insert(el *Element) (stored *Element, isNew bool) {
	if el.key != "" {
		if existing, ok := c.lookupKey(el.key); ok {
			return existing, false
		}
	}
	idx := len(c.slots)
	el.handle = Handle{Kind: c.kind, Index: idx, mesh: c.mesh}
	c.slots = append(c.slots, el)
	c.byID[el.id] = idx
	if el.key != "" {
		c.byKey[el.key] = idx
	}
	c.alive++
	c.version++
	return el, true
}

func (c *Container) erase(h Handle) {
	el := c.slots[h.Index]
	if el.erased {
		return
	}
	el.erased = true
	delete(c.byID, el.id)
	if el.key != "" {
		delete(c.byKey, el.key)
	}
	c.alive--
	c.version++
}
