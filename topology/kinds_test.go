package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindDimensions(t *testing.T) {
	assert.Equal(t, 0, Vertex.Dimension())
	assert.Equal(t, 1, Line.Dimension())
	for _, k := range []Kind{Triangle, Quadrilateral, Polygon} {
		assert.Equal(t, 2, k.Dimension(), k.String())
	}
	for _, k := range []Kind{Tetrahedron, Hexahedron, Prism, Pyramid} {
		assert.Equal(t, 3, k.Dimension(), k.String())
	}
	assert.Equal(t, -1, NumKinds.Dimension())
	assert.Equal(t, Dynamic, Polygon.NumVertices())
}

func TestBoundaryCounts(t *testing.T) {
	tests := []struct {
		kind   Kind
		nverts int
		counts []int // per dimension below the kind's
	}{
		{Line, 2, []int{2}},
		{Triangle, 3, []int{3, 3}},
		{Quadrilateral, 4, []int{4, 4}},
		{Polygon, 6, []int{6, 6}},
		{Tetrahedron, 4, []int{4, 6, 4}},
		{Hexahedron, 8, []int{8, 12, 6}},
		{Prism, 6, []int{6, 9, 5}},
		{Pyramid, 5, []int{5, 8, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			for dim, want := range tt.counts {
				assert.Equal(t, want, tt.kind.BoundaryCount(dim, tt.nverts), "dim %d", dim)
			}
			assert.Equal(t, 0, tt.kind.BoundaryCount(tt.kind.Dimension(), tt.nverts))
		})
	}
}

func TestTriangleEdgeOrder(t *testing.T) {
	edges := Triangle.Boundary(1, 3)
	assert.Equal(t, [][]int{{0, 1}, {1, 2}, {2, 0}}, edges)
}

func TestTetrahedronEdgesFromFaces(t *testing.T) {
	edges := Tetrahedron.Boundary(1, 4)
	require.Len(t, edges, 6)
	seen := make(map[EdgeKey]bool)
	for _, e := range edges {
		ek, ok := NewEdgeKey(e[0], e[1])
		require.True(t, ok)
		assert.False(t, seen[ek], "edge %v repeated", e)
		seen[ek] = true
	}
}

func TestFacetKinds(t *testing.T) {
	assert.Equal(t, []Kind{Triangle, Quadrilateral}, Prism.FacetKinds())
	assert.Equal(t, []Kind{Quadrilateral, Triangle}, Pyramid.FacetKinds())
	assert.Equal(t, []Kind{Line}, Polygon.FacetKinds())
	assert.Empty(t, Vertex.FacetKinds())
}

func TestClosure(t *testing.T) {
	assert.Equal(t, []Kind{Vertex, Line, Triangle, Tetrahedron}, Closure(Tetrahedron))
	assert.Equal(t, []Kind{Vertex, Line, Triangle, Quadrilateral, Prism}, Closure(Prism))
	assert.Equal(t, []Kind{Vertex}, Closure(Vertex))
	assert.Len(t, Closure(Kinds()...), int(NumKinds))
}

func TestAcceptsVertexCount(t *testing.T) {
	assert.True(t, Vertex.AcceptsVertexCount(0))
	assert.False(t, Vertex.AcceptsVertexCount(1))
	assert.True(t, Triangle.AcceptsVertexCount(3))
	assert.False(t, Triangle.AcceptsVertexCount(4))
	assert.True(t, Polygon.AcceptsVertexCount(5))
	assert.False(t, Polygon.AcceptsVertexCount(2))
	assert.False(t, NumKinds.AcceptsVertexCount(3))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("tetrahedron")
	require.NoError(t, err)
	assert.Equal(t, Tetrahedron, k)
	_, err = ParseKind("Octahedron")
	assert.Error(t, err)
}

func TestEdgeKey(t *testing.T) {
	k1, ok := NewEdgeKey(4, 0)
	require.True(t, ok)
	k2, _ := NewEdgeKey(0, 4)
	assert.Equal(t, k1, k2)
	assert.Equal(t, [2]int{0, 4}, k1.Vertices())
	_, ok = NewEdgeKey(-1, 2)
	assert.False(t, ok)
}

func TestStructuralKeys(t *testing.T) {
	assert.Equal(t, NewKey(Line, []int{1, 2}), NewKey(Line, []int{2, 1}))
	assert.Equal(t, NewKey(Triangle, []int{0, 1, 2}), NewKey(Triangle, []int{2, 0, 1}))
	assert.NotEqual(t, NewKey(Triangle, []int{0, 1, 2}), NewKey(Triangle, []int{0, 1, 3}))
	// Same vertex set, different kind
	assert.NotEqual(t, NewKey(Quadrilateral, []int{0, 1, 2, 3}), NewKey(Tetrahedron, []int{0, 1, 2, 3}))
	// Polygons compare as cycles in either direction
	assert.Equal(t, NewKey(Polygon, []int{3, 4, 5, 6, 7}), NewKey(Polygon, []int{5, 4, 3, 7, 6}))
	assert.NotEqual(t, NewKey(Polygon, []int{3, 4, 5, 6, 7}), NewKey(Polygon, []int{3, 5, 4, 6, 7}))
	// Quads are keyed by their edge cycle, not their vertex set
	assert.Equal(t, NewKey(Quadrilateral, []int{0, 1, 2, 3}), NewKey(Quadrilateral, []int{2, 1, 0, 3}))
	assert.NotEqual(t, NewKey(Quadrilateral, []int{0, 1, 2, 3}), NewKey(Quadrilateral, []int{0, 2, 1, 3}))
	// Hexes are keyed by their faces
	hex := []int{0, 1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, NewKey(Hexahedron, hex), NewKey(Hexahedron, []int{4, 5, 6, 7, 0, 1, 2, 3}))
	assert.NotEqual(t, NewKey(Hexahedron, hex), NewKey(Hexahedron, []int{0, 1, 3, 2, 4, 5, 7, 6}))
	assert.NotEqual(t, NewKey(Prism, []int{0, 1, 2, 3, 4, 5}), NewKey(Prism, []int{0, 1, 2, 3, 5, 4}))
}

func TestIsDegenerate(t *testing.T) {
	assert.False(t, IsDegenerate([]int{0, 1, 2}))
	assert.True(t, IsDegenerate([]int{0, 1, 0}))
}
