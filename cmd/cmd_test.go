package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/meshstore/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2x1 quads split into four triangles
const stripSU2 = `NDIME= 2
NPOIN= 6
0 0
1 0
2 0
0 1
1 1
2 1
NELEM= 4
5 0 1 4
5 0 4 3
5 1 2 5
5 1 5 4
NMARK= 1
MARKER_TAG= bottom
MARKER_ELEMS= 2
3 0 1
3 1 2
`

func writeGrid(t *testing.T) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "strip.su2")
	require.NoError(t, os.WriteFile(fn, []byte(stripSU2), 0644))
	return fn
}

func TestStats(t *testing.T) {
	s, err := openMesh(writeGrid(t))
	require.NoError(t, err)
	assert.Equal(t, []topology.Kind{topology.Triangle}, cellKinds(s.sm.Mesh()))

	var buf bytes.Buffer
	require.NoError(t, s.writeStats(&buf))
	out := buf.String()
	assert.Contains(t, out, "format su2: 6 vertices, 4 cells, 0 degenerate")
	assert.Contains(t, out, "boundary facets 6")
	assert.Contains(t, out, `segment 0 "bottom"`)
}

func TestPartition(t *testing.T) {
	s, err := openMesh(writeGrid(t))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, s.partition(&buf, 1))
	assert.Contains(t, buf.String(), "4 cells in 1 parts")
	seg, err := s.sm.ByName("part0")
	require.NoError(t, err)
	assert.Equal(t, 4, seg.Len(topology.Triangle))
}

func TestMissingGridFile(t *testing.T) {
	_, err := openMesh("")
	assert.Error(t, err)
}
