package topology

import (
	"encoding/binary"
	"math"
	"slices"
)

// Key is the structural identity of an element, derived from the slots of its vertices.
// Two candidates of the same kind with equal keys are the same element.
type Key string

/*
EdgeKey stores an edge's two vertex slots so that the edge [4,0] and the edge [0,4] compare equal.
The lower slot is kept in the low 32 bits.
*/
type EdgeKey uint64

func NewEdgeKey(a, b int) (packed EdgeKey, ok bool) {
	if a < 0 || b < 0 || a > math.MaxUint32 || b > math.MaxUint32 {
		return 0, false
	}
	if a > b {
		a, b = b, a
	}
	return EdgeKey(uint64(a) | uint64(b)<<32), true
}

func (ek EdgeKey) Vertices() (verts [2]int) {
	verts[0] = int(ek & math.MaxUint32)
	verts[1] = int(ek >> 32)
	return
}

// NewKey computes the structural key of an element of kind k from its vertex slots.
// Two elements share a key when they have the same facets. Lines use the packed edge
// key, quadrilaterals and polygons the smallest rotation of the vertex cycle in either
// direction, triangles and tetrahedra the sorted vertex set, and the other cells the
// sorted set of their facet keys.
func NewKey(k Kind, verts []int) Key {
	var ordered []int
	switch k {
	case Hexahedron, Prism, Pyramid:
		return facetSetKey(k, verts)
	case Quadrilateral:
		ordered = canonicalCycle(verts)
	case Line:
		if len(verts) == 2 {
			if ek, ok := NewEdgeKey(verts[0], verts[1]); ok {
				buf := make([]byte, 0, 9)
				buf = append(buf, byte(k))
				buf = binary.LittleEndian.AppendUint64(buf, uint64(ek))
				return Key(buf)
			}
		}
		ordered = sortedCopy(verts)
	case Polygon:
		ordered = canonicalCycle(verts)
	default:
		ordered = sortedCopy(verts)
	}
	buf := make([]byte, 0, 1+len(ordered)*binary.MaxVarintLen64)
	buf = append(buf, byte(k)|0x80)
	for _, v := range ordered {
		buf = binary.AppendUvarint(buf, uint64(v))
	}
	return Key(buf)
}

func facetSetKey(k Kind, verts []int) Key {
	facets := k.Facets(len(verts))
	keys := make([]string, len(facets))
	for i, f := range facets {
		fv := make([]int, len(f.Local))
		for j, l := range f.Local {
			fv[j] = verts[l]
		}
		keys[i] = string(NewKey(f.Kind, fv))
	}
	slices.Sort(keys)
	buf := []byte{byte(k) | 0x40}
	for _, fk := range keys {
		buf = binary.AppendUvarint(buf, uint64(len(fk)))
		buf = append(buf, fk...)
	}
	return Key(buf)
}

func sortedCopy(verts []int) []int {
	out := slices.Clone(verts)
	slices.Sort(out)
	return out
}

// canonicalCycle returns the lexicographically smallest rotation of the cycle,
// taken over both traversal directions
func canonicalCycle(verts []int) []int {
	n := len(verts)
	if n == 0 {
		return nil
	}
	var best []int
	rev := slices.Clone(verts)
	slices.Reverse(rev)
	for _, cyc := range [][]int{verts, rev} {
		for start := 0; start < n; start++ {
			rot := make([]int, n)
			for i := range rot {
				rot[i] = cyc[(start+i)%n]
			}
			if best == nil || slices.Compare(rot, best) < 0 {
				best = rot
			}
		}
	}
	return best
}
