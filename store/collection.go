package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
)

// Collection is the owner of a mesh's elements, one Container per configured kind
type Collection struct {
	id         uuid.UUID
	kinds      []topology.Kind
	containers [topology.NumKinds]*Container
	ids        *IDGenerator
	hooks      map[topology.Kind]PostInsertFunc
	log        *logrus.Logger
	version    uint64
	inserter   *Inserter
	views      map[*View]struct{}
	onErase    []func(erased []Handle)
}

// NewCollection builds an empty collection. An empty kind list configures every kind.
func NewCollection(cfg Config) (*Collection, error) {
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = topology.Kinds()
	}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
		}
	}
	c := &Collection{
		id:    uuid.New(),
		kinds: topology.Closure(kinds...),
		ids:   NewIDGenerator(),
		hooks: make(map[topology.Kind]PostInsertFunc),
		log:   cfg.Logger,
		views: make(map[*View]struct{}),
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	for _, k := range c.kinds {
		c.containers[k] = newContainer(k, c.id)
	}
	for k, fn := range cfg.PostInsert {
		if c.containers[k] == nil {
			return nil, fmt.Errorf("%w: post insert hook for %v", ErrUnknownKind, k)
		}
		c.hooks[k] = fn
	}
	c.inserter = &Inserter{coll: c}
	return c, nil
}

// UUID identifies this collection; every handle it issues carries it
func (c *Collection) UUID() uuid.UUID { return c.id }

// Kinds returns the configured kinds ordered by dimension
func (c *Collection) Kinds() []topology.Kind {
	return append([]topology.Kind(nil), c.kinds...)
}

func (c *Collection) HasKind(k topology.Kind) bool {
	return k.Valid() && c.containers[k] != nil
}

func (c *Collection) Container(k topology.Kind) (*Container, error) {
	if !c.HasKind(k) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
	}
	return c.containers[k], nil
}

// Len returns the number of live elements of a kind, zero for unconfigured kinds
func (c *Collection) Len(k topology.Kind) int {
	if !c.HasKind(k) {
		return 0
	}
	return c.containers[k].Len()
}

// Version changes on every insertion or erase into any container
func (c *Collection) Version() uint64 { return c.version }

func (c *Collection) IDs() *IDGenerator { return c.ids }

func (c *Collection) Logger() *logrus.Logger { return c.log }

// Inserter is the physical inserter of the collection
func (c *Collection) Inserter() *Inserter { return c.inserter }

func (c *Collection) Dereference(h Handle) (*Element, error) {
	if h.mesh != c.id {
		return nil, fmt.Errorf("%w: %v belongs to another mesh", ErrInvalidHandle, h)
	}
	if !c.HasKind(h.Kind) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHandle, h)
	}
	return c.containers[h.Kind].Dereference(h)
}

// Find resolves an element by its identity
func (c *Collection) Find(k topology.Kind, id ID) (Handle, error) {
	cont, err := c.Container(k)
	if err != nil {
		return Handle{}, err
	}
	h, ok := cont.Find(id)
	if !ok {
		return Handle{}, fmt.Errorf("%w: no %v with id %d", ErrInvalidHandle, k, id)
	}
	return h, nil
}

// Elements returns a range over the live elements of a kind in insertion order
func (c *Collection) Elements(k topology.Kind) (Range, error) {
	cont, err := c.Container(k)
	if err != nil {
		return Range{}, err
	}
	return newRange(c, k, cont.handles(), cont.Version, cont.Version()), nil
}

// OnErase registers fn to be called with every batch of physically erased handles.
// Calling cancel unregisters it.
func (c *Collection) OnErase(fn func(erased []Handle)) (cancel func()) {
	i := len(c.onErase)
	c.onErase = append(c.onErase, fn)
	return func() { c.onErase[i] = nil }
}

func (c *Collection) attach(v *View) { c.views[v] = struct{}{} }
func (c *Collection) detach(v *View) { delete(c.views, v) }

// slot returns the element behind h without checking liveness; h must come from c
func (c *Collection) slot(h Handle) *Element {
	return c.containers[h.Kind].slots[h.Index]
}
