package store

import "github.com/notargets/meshstore/topology"

// IDGenerator hands out per-kind ids in strictly increasing order. Ids are never reused,
// including after an erase.
type IDGenerator struct {
	next [topology.NumKinds]ID
}

func NewIDGenerator() *IDGenerator { return &IDGenerator{} }

func (g *IDGenerator) Next(kind topology.Kind) ID {
	id := g.next[kind]
	g.next[kind]++
	return id
}

// RegisterExisting records an id assigned outside the generator so later ids never collide with it
func (g *IDGenerator) RegisterExisting(kind topology.Kind, id ID) {
	if id >= g.next[kind] {
		g.next[kind] = id + 1
	}
}

// UpperBound is the id the next call to Next will return
func (g *IDGenerator) UpperBound(kind topology.Kind) ID { return g.next[kind] }
