package topology

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the closed set of element kinds a mesh store understands
type Kind uint8

const (
	// 0D elements
	Vertex Kind = iota
	// 1D elements
	Line
	// 2D elements
	Triangle
	Quadrilateral
	Polygon
	// 3D elements
	Tetrahedron
	Hexahedron
	Prism
	Pyramid
	NumKinds
)

// Dynamic is the vertex count reported by kinds without a fixed vertex count
const Dynamic = -1

// Facet is one codimension-1 boundary element of a kind, given as local
// vertex indices into the parent's vertex list
type Facet struct {
	Kind  Kind
	Local []int
}

type descriptor struct {
	name        string
	dimension   int
	numVertices int
	facets      []Facet
}

var descriptors = [NumKinds]descriptor{
	Vertex: {name: "Vertex", dimension: 0, numVertices: 1},
	Line: {name: "Line", dimension: 1, numVertices: 2,
		facets: []Facet{{Vertex, []int{0}}, {Vertex, []int{1}}}},
	Triangle: {name: "Triangle", dimension: 2, numVertices: 3,
		facets: lines(0, 1, 1, 2, 2, 0)},
	Quadrilateral: {name: "Quadrilateral", dimension: 2, numVertices: 4,
		facets: lines(0, 1, 1, 2, 2, 3, 3, 0)},
	Polygon: {name: "Polygon", dimension: 2, numVertices: Dynamic},
	// Face ordering follows the Gambit/Gmsh face numbering
	Tetrahedron: {name: "Tetrahedron", dimension: 3, numVertices: 4,
		facets: []Facet{
			{Triangle, []int{0, 2, 1}},
			{Triangle, []int{0, 1, 3}},
			{Triangle, []int{1, 2, 3}},
			{Triangle, []int{0, 3, 2}},
		}},
	Hexahedron: {name: "Hexahedron", dimension: 3, numVertices: 8,
		facets: []Facet{
			{Quadrilateral, []int{0, 3, 2, 1}},
			{Quadrilateral, []int{4, 5, 6, 7}},
			{Quadrilateral, []int{0, 1, 5, 4}},
			{Quadrilateral, []int{1, 2, 6, 5}},
			{Quadrilateral, []int{2, 3, 7, 6}},
			{Quadrilateral, []int{3, 0, 4, 7}},
		}},
	Prism: {name: "Prism", dimension: 3, numVertices: 6,
		facets: []Facet{
			{Triangle, []int{0, 2, 1}},
			{Triangle, []int{3, 4, 5}},
			{Quadrilateral, []int{0, 1, 4, 3}},
			{Quadrilateral, []int{1, 2, 5, 4}},
			{Quadrilateral, []int{2, 0, 3, 5}},
		}},
	Pyramid: {name: "Pyramid", dimension: 3, numVertices: 5,
		facets: []Facet{
			{Quadrilateral, []int{0, 3, 2, 1}},
			{Triangle, []int{0, 1, 4}},
			{Triangle, []int{1, 2, 4}},
			{Triangle, []int{2, 3, 4}},
			{Triangle, []int{3, 0, 4}},
		}},
}

func lines(pairs ...int) (facets []Facet) {
	for i := 0; i < len(pairs); i += 2 {
		facets = append(facets, Facet{Line, []int{pairs[i], pairs[i+1]}})
	}
	return
}

// Kinds returns every kind ordered by dimension
func Kinds() []Kind {
	kinds := make([]Kind, 0, NumKinds)
	for k := Vertex; k < NumKinds; k++ {
		kinds = append(kinds, k)
	}
	SortByDimension(kinds)
	return kinds
}

func (k Kind) Valid() bool { return k < NumKinds }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return descriptors[k].name
}

// Dimension returns the topological dimension, or -1 for an invalid kind
func (k Kind) Dimension() int {
	if !k.Valid() {
		return -1
	}
	return descriptors[k].dimension
}

// NumVertices returns the fixed vertex count, or Dynamic
func (k Kind) NumVertices() int {
	if !k.Valid() {
		return 0
	}
	return descriptors[k].numVertices
}

// AcceptsVertexCount reports whether an element of this kind may be built from n vertices
func (k Kind) AcceptsVertexCount(n int) bool {
	switch {
	case !k.Valid():
		return false
	case k == Vertex:
		return n == 0
	case k.NumVertices() == Dynamic:
		return n >= 3
	default:
		return n == k.NumVertices()
	}
}

// Facets returns the codimension-1 decomposition for an element with nverts vertices.
// The returned slices must not be modified.
func (k Kind) Facets(nverts int) []Facet {
	if !k.Valid() {
		return nil
	}
	if k == Polygon {
		facets := make([]Facet, nverts)
		for i := range facets {
			facets[i] = Facet{Line, []int{i, (i + 1) % nverts}}
		}
		return facets
	}
	return descriptors[k].facets
}

// FacetKinds lists the distinct kinds appearing as facets of k
func (k Kind) FacetKinds() (kinds []Kind) {
	switch k {
	case Polygon:
		return []Kind{Line}
	}
	seen := make(map[Kind]bool)
	for _, f := range k.Facets(k.NumVertices()) {
		if !seen[f.Kind] {
			seen[f.Kind] = true
			kinds = append(kinds, f.Kind)
		}
	}
	return
}

// Boundary returns the local vertex lists of the boundary elements of dimension dim
// for an element with nverts vertices. Elements below the facet dimension are collected
// from the facets in first-appearance order without repeats.
func (k Kind) Boundary(dim, nverts int) [][]int {
	kd := k.Dimension()
	if dim < 0 || dim >= kd {
		return nil
	}
	if dim == 0 {
		verts := make([][]int, nverts)
		for i := range verts {
			verts[i] = []int{i}
		}
		return verts
	}
	var (
		result [][]int
		seen   = make(map[Key]bool)
	)
	for _, f := range k.Facets(nverts) {
		var sub [][]int
		if f.Kind.Dimension() == dim {
			sub = [][]int{f.Local}
		} else {
			for _, loc := range f.Kind.Boundary(dim, len(f.Local)) {
				mapped := make([]int, len(loc))
				for i, l := range loc {
					mapped[i] = f.Local[l]
				}
				sub = append(sub, mapped)
			}
		}
		for _, s := range sub {
			key := NewKey(kindOfDimension(dim, len(s)), s)
			if !seen[key] {
				seen[key] = true
				result = append(result, s)
			}
		}
	}
	return result
}

// BoundaryCount returns the number of boundary elements of dimension dim
func (k Kind) BoundaryCount(dim, nverts int) int {
	return len(k.Boundary(dim, nverts))
}

func kindOfDimension(dim, nverts int) Kind {
	switch dim {
	case 1:
		return Line
	case 2:
		switch nverts {
		case 3:
			return Triangle
		case 4:
			return Quadrilateral
		}
		return Polygon
	}
	return Vertex
}

// ParseKind resolves a kind by its name, case-insensitively
func ParseKind(name string) (Kind, error) {
	for k := Vertex; k < NumKinds; k++ {
		if strings.EqualFold(descriptors[k].name, name) {
			return k, nil
		}
	}
	return NumKinds, fmt.Errorf("unknown element kind %q", name)
}

// Closure returns the given kinds together with every kind reachable through facets,
// ordered by dimension
func Closure(kinds ...Kind) []Kind {
	var (
		seen  = make(map[Kind]bool)
		stack = append([]Kind(nil), kinds...)
		out   []Kind
	)
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !k.Valid() || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		stack = append(stack, k.FacetKinds()...)
	}
	SortByDimension(out)
	return out
}

// SortByDimension orders kinds by dimension, then by enumeration order
func SortByDimension(kinds []Kind) {
	sort.Slice(kinds, func(i, j int) bool {
		di, dj := kinds[i].Dimension(), kinds[j].Dimension()
		if di != dj {
			return di < dj
		}
		return kinds[i] < kinds[j]
	})
}

// IsDegenerate reports a vertex list that repeats a vertex
func IsDegenerate(verts []int) bool {
	seen := make(map[int]bool, len(verts))
	for _, v := range verts {
		if seen[v] {
			return true
		}
		seen[v] = true
	}
	return false
}
