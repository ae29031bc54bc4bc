package readers

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/meshstore/segmentation"
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func createTempMeshFile(t *testing.T, name, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

func newSegmentation(t *testing.T) *segmentation.Segmentation {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	mesh, err := store.NewCollection(store.Config{Logger: log})
	require.NoError(t, err)
	sm, err := segmentation.New(mesh, segmentation.Config{Logger: log})
	require.NoError(t, err)
	return sm
}

// two tets sharing the face (2,3,4)
const twoTetNeu = `        CONTROL INFO 2.0.0
** GAMBIT NEUTRAL FILE
Two tets
PROGRAM:                  Test     VERSION:  1.0
Mon Jan  1 00:00:00 2025
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         5         2         2         1         3         3
ENDOFSECTION
   NODAL COORDINATES 2.0.0
         1   0.00000000000e+00   0.00000000000e+00   0.00000000000e+00
         2   1.00000000000e+00   0.00000000000e+00   0.00000000000e+00
         3   0.00000000000e+00   1.00000000000e+00   0.00000000000e+00
         4   0.00000000000e+00   0.00000000000e+00   1.00000000000e+00
         5   1.00000000000e+00   1.00000000000e+00   1.00000000000e+00
ENDOFSECTION
   ELEMENTS/CELLS 2.0.0
         1         6         4         1         2         3         4
         2         6         4         2         3         4         5
ENDOFSECTION
       ELEMENT GROUP 2.0.0
GROUP:           1 ELEMENTS:           1 MATERIAL:           2 NFLAGS:           1
fluid
       0
         1
GROUP:           2 ELEMENTS:           1 MATERIAL:           3 NFLAGS:           0
solid
         2
ENDOFSECTION
 BOUNDARY CONDITIONS 2.0.0
wall                   1       1       0       6
         1         6         1
ENDOFSECTION
`

func TestReadGambitNeutral(t *testing.T) {
	sm := newSegmentation(t)
	sum, err := ReadMeshFile(createTempMeshFile(t, "test.neu", twoTetNeu), sm)
	require.NoError(t, err)
	assert.Equal(t, "gambit", sum.Format)
	assert.Equal(t, 5, sum.Vertices)
	assert.Equal(t, 2, sum.Cells)
	assert.Equal(t, 0, sum.Degenerate)
	assert.Equal(t, []string{"fluid", "solid", "wall"}, sum.Segments)

	mesh := sm.Mesh()
	assert.Equal(t, 5, mesh.Len(topology.Vertex))
	assert.Equal(t, 2, mesh.Len(topology.Tetrahedron))
	// the shared face is stored once
	assert.Equal(t, 7, mesh.Len(topology.Triangle))
	assert.Equal(t, 9, mesh.Len(topology.Line))

	// file ids are kept, shifted to 0-based
	h, err := mesh.Find(topology.Vertex, 4)
	require.NoError(t, err)
	v, err := mesh.Dereference(h)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, v.Point())
	_, err = mesh.Find(topology.Tetrahedron, 1)
	require.NoError(t, err)

	fluid, err := sm.ByName("fluid")
	require.NoError(t, err)
	solid, err := sm.ByName("solid")
	require.NoError(t, err)
	assert.Equal(t, 1, fluid.Len(topology.Tetrahedron))
	assert.Equal(t, 4, fluid.Len(topology.Triangle))
	shared, err := sm.Interface(fluid, solid, topology.Triangle)
	require.NoError(t, err)
	assert.Len(t, shared, 1)

	wall, err := sm.ByName("wall")
	require.NoError(t, err)
	assert.Equal(t, 0, wall.Len(topology.Tetrahedron))
	assert.Equal(t, 1, wall.Len(topology.Triangle))
	assert.Equal(t, 3, wall.Len(topology.Line))
	assert.Equal(t, 3, wall.Len(topology.Vertex))

	// face 1 of element 1 is the z=0 face
	r, err := wall.Elements(topology.Vertex)
	require.NoError(t, err)
	for _, el := range r.All() {
		assert.Equal(t, 0., el.Point().Z)
	}
}

func TestReadGambitNeutralErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "count mismatch",
			content: strings.Replace(twoTetNeu, "         5         2         2", "         5         3         2", 1),
			errText: "invalid element line",
		},
		{
			name:    "unknown node",
			content: strings.Replace(twoTetNeu, "2         3         4         5\n", "2         3         4         9\n", 1),
			errText: "unknown node 9",
		},
		{
			name:    "bad face",
			content: strings.Replace(twoTetNeu, "         1         6         1\n", "         1         6         7\n", 1),
			errText: "face 7 of element 1 out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newSegmentation(t)
			_, err := ReadGambitNeutral(createTempMeshFile(t, "test.neu", tt.content), sm)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
			// nothing is stored when parsing or validation fails
			assert.Equal(t, 0, sm.Mesh().Len(topology.Vertex))
		})
	}
}

// a triangle with a dangling edge attached to node 3
const triEdgeNeu = `        CONTROL INFO 2.0.0
** GAMBIT NEUTRAL FILE
Triangle and edge
PROGRAM:                  Test     VERSION:  1.0
Mon Jan  1 00:00:00 2025
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         4         2         0         0         2         2
ENDOFSECTION
   NODAL COORDINATES 2.0.0
         1   0.00000000000e+00   0.00000000000e+00
         2   1.00000000000e+00   0.00000000000e+00
         3   0.00000000000e+00   1.00000000000e+00
         4   0.00000000000e+00   2.00000000000e+00
ENDOFSECTION
   ELEMENTS/CELLS 2.0.0
         1         3         3         1         2         3
         2         1         2         3         4
ENDOFSECTION
`

func TestReadGambitNeutralMixedTriangleAndEdge(t *testing.T) {
	sm := newSegmentation(t)
	sum, err := ReadMeshFile(createTempMeshFile(t, "mixed.neu", triEdgeNeu), sm)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Cells)

	mesh := sm.Mesh()
	assert.Equal(t, 4, mesh.Len(topology.Vertex))
	assert.Equal(t, 1, mesh.Len(topology.Triangle))
	// three triangle edges plus the file's edge
	assert.Equal(t, 4, mesh.Len(topology.Line))
	// the triangle keeps its file id, lines are numbered by the store
	_, err = mesh.Find(topology.Triangle, 0)
	require.NoError(t, err)
	assert.Equal(t, store.ID(4), mesh.IDs().UpperBound(topology.Line))
}

func TestReadGambitNeutralIDsTaken(t *testing.T) {
	sm := newSegmentation(t)
	fn := createTempMeshFile(t, "test.neu", twoTetNeu)
	_, err := ReadGambitNeutral(fn, sm)
	require.NoError(t, err)
	version := sm.Mesh().Version()

	// the same node and cell ids a second time
	_, err = ReadGambitNeutral(fn, sm)
	assert.ErrorIs(t, err, store.ErrIDInUse)
	assert.Equal(t, version, sm.Mesh().Version(), "a rejected file must not touch the mesh")
	assert.Equal(t, 5, sm.Mesh().Len(topology.Vertex))
}

// unit square in two triangles; elements come before the points
const squareSU2 = `% unit square
NDIME= 2
NELEM= 2
5 0 1 2 0
5 0 2 3 1
NPOIN= 4
0.0 0.0 0
1.0 0.0 1
1.0 1.0 2
0.0 1.0 3
NMARK= 2
MARKER_TAG= lower
MARKER_ELEMS= 1
3 0 1
MARKER_TAG= upper
MARKER_ELEMS= 2
3 1 2
3 2 3
`

func TestReadSU2(t *testing.T) {
	sm := newSegmentation(t)
	sum, err := ReadMeshFile(createTempMeshFile(t, "square.su2", squareSU2), sm)
	require.NoError(t, err)
	assert.Equal(t, "su2", sum.Format)
	assert.Equal(t, 4, sum.Vertices)
	assert.Equal(t, 2, sum.Cells)
	assert.Equal(t, []string{"lower", "upper"}, sum.Segments)

	mesh := sm.Mesh()
	assert.Equal(t, 2, mesh.Len(topology.Triangle))
	// marker lines are the triangle edges, not new elements
	assert.Equal(t, 5, mesh.Len(topology.Line))

	lower, err := sm.ByName("lower")
	require.NoError(t, err)
	assert.Equal(t, 1, lower.Len(topology.Line))
	assert.Equal(t, 2, lower.Len(topology.Vertex))
	upper, err := sm.ByName("upper")
	require.NoError(t, err)
	assert.Equal(t, 2, upper.Len(topology.Line))
	assert.Equal(t, 3, upper.Len(topology.Vertex))
	shared, err := sm.Interface(lower, upper, topology.Vertex)
	require.NoError(t, err)
	assert.Len(t, shared, 1)
}

func TestReadSU2Degenerate(t *testing.T) {
	content := `NDIME= 2
NPOIN= 3
0 0
1 0
0 1
NELEM= 2
5 0 1 2
5 0 0 1
`
	sm := newSegmentation(t)
	sum, err := ReadSU2(createTempMeshFile(t, "d.su2", content), sm)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Degenerate)
	assert.Equal(t, 2, sm.Mesh().Len(topology.Triangle))
}

func TestReadSU2Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"bad dimension", "NDIME= 4\n", "unsupported dimension"},
		{"missing points", "NDIME= 2\nNELEM= 0\n", "missing NDIME or NPOIN"},
		{"unknown type", "NDIME= 2\nNPOIN= 1\n0 0\nNELEM= 1\n7 0 0 0\n", "unknown element type: 7"},
		{"node out of range", "NDIME= 2\nNPOIN= 1\n0 0\nNELEM= 1\n5 0 1 2\n", "out of range"},
		{"bad marker", "NDIME= 2\nNPOIN= 1\n0 0\nNMARK= 1\nMARKER_ELEMS= 0\n", "expected MARKER_TAG="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newSegmentation(t)
			_, err := ReadSU2(createTempMeshFile(t, "e.su2", tt.content), sm)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestReadMeshFileUnsupported(t *testing.T) {
	sm := newSegmentation(t)
	_, err := ReadMeshFile(createTempMeshFile(t, "mesh.msh", ""), sm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mesh format: .msh")
}
