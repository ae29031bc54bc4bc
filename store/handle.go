package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/notargets/meshstore/topology"
)

// ID is the identity of an element within its kind
type ID int

// Handle refers to one element slot of one collection. Slots are never reused, so a
// handle stays valid for the life of its element no matter how the collection grows.
// The zero Handle refers to nothing.
type Handle struct {
	Kind  topology.Kind
	Index int
	mesh  uuid.UUID
}

func (h Handle) IsZero() bool { return h.mesh == uuid.Nil }

// Mesh returns the identity of the collection that issued the handle
func (h Handle) Mesh() uuid.UUID { return h.mesh }

func (h Handle) String() string {
	if h.IsZero() {
		return "Handle(nil)"
	}
	return fmt.Sprintf("%s[%d]", h.Kind, h.Index)
}
