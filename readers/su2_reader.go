package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/meshstore/segmentation"
	"github.com/notargets/meshstore/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// SU2 uses VTK element type ids
var su2KindMap = map[int]topology.Kind{
	3:  topology.Line,
	5:  topology.Triangle,
	9:  topology.Quadrilateral,
	10: topology.Tetrahedron,
	12: topology.Hexahedron,
	13: topology.Prism,
	14: topology.Pyramid,
}

// ReadSU2 reads an SU2 native format file. Each marker becomes a named segment holding
// its boundary elements.
func ReadSU2(filename string, sm *segmentation.Segmentation) (*Summary, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := parseSU2(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return raw.build(sm)
}

// su2Line strips comments (text after %) and surrounding space
func su2Line(s string) string {
	if idx := strings.Index(s, "%"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// nextSU2Line returns the next line that is not blank or a comment
func nextSU2Line(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		if line := su2Line(scanner.Text()); line != "" {
			return line, true
		}
	}
	return "", false
}

func parseSU2Element(line string) (rawElement, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return rawElement{}, fmt.Errorf("invalid element line: %q", line)
	}
	su2Type, err := strconv.Atoi(fields[0])
	if err != nil {
		return rawElement{}, fmt.Errorf("invalid element type: %w", err)
	}
	kind, ok := su2KindMap[su2Type]
	if !ok {
		return rawElement{}, fmt.Errorf("unknown element type: %d", su2Type)
	}
	numNodes := kind.NumVertices()
	if len(fields) < numNodes+1 {
		return rawElement{}, fmt.Errorf("element type %v expects %d nodes, got %d fields",
			kind, numNodes, len(fields)-1)
	}
	// A trailing element id may follow the nodes; ids are implicit by order
	el := rawElement{kind: kind, verts: make([]int, numNodes)}
	for j := 0; j < numNodes; j++ {
		if el.verts[j], err = strconv.Atoi(fields[1+j]); err != nil {
			return rawElement{}, fmt.Errorf("invalid node index: %w", err)
		}
	}
	return el, nil
}

func parseSU2(r io.Reader) (*rawMesh, error) {
	raw := &rawMesh{format: "su2"}
	scanner := bufio.NewScanner(r)
	var ndime int

	for {
		line, ok := nextSU2Line(scanner)
		if !ok {
			break
		}

		switch {
		case strings.HasPrefix(line, "NDIME="):
			fmt.Sscanf(line, "NDIME=%d", &ndime)
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NPOIN="):
			if ndime == 0 {
				return nil, fmt.Errorf("NPOIN before NDIME")
			}
			var npoin int
			fmt.Sscanf(line, "NPOIN=%d", &npoin)
			raw.points = make([]r3.Vec, npoin)
			for i := 0; i < npoin; i++ {
				pl, ok := nextSU2Line(scanner)
				if !ok {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(pl)
				if len(fields) < ndime {
					return nil, fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
				}
				var coords [3]float64
				for j := 0; j < ndime; j++ {
					var err error
					if coords[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %w", err)
					}
				}
				raw.points[i] = r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}
			}

		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			fmt.Sscanf(line, "NELEM=%d", &nelem)
			raw.cells = make([]rawElement, 0, nelem)
			for i := 0; i < nelem; i++ {
				elLine, ok := nextSU2Line(scanner)
				if !ok {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				el, err := parseSU2Element(elLine)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				raw.cells = append(raw.cells, el)
			}

		case strings.HasPrefix(line, "NMARK="):
			var nmark int
			fmt.Sscanf(line, "NMARK=%d", &nmark)
			for i := 0; i < nmark; i++ {
				set, err := parseSU2Marker(scanner, i)
				if err != nil {
					return nil, err
				}
				raw.sets = append(raw.sets, set)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if ndime == 0 || raw.points == nil {
		return nil, fmt.Errorf("missing NDIME or NPOIN section")
	}
	return raw, nil
}

func parseSU2Marker(scanner *bufio.Scanner, i int) (set rawSet, err error) {
	markerLine, ok := nextSU2Line(scanner)
	if !ok {
		return set, fmt.Errorf("unexpected EOF reading marker %d", i)
	}
	if !strings.HasPrefix(markerLine, "MARKER_TAG=") {
		return set, fmt.Errorf("expected MARKER_TAG=, got: %s", markerLine)
	}
	set.name = strings.TrimSpace(strings.TrimPrefix(markerLine, "MARKER_TAG="))

	elemLine, ok := nextSU2Line(scanner)
	if !ok {
		return set, fmt.Errorf("unexpected EOF reading marker elements for %s", set.name)
	}
	var n int
	if _, err = fmt.Sscanf(elemLine, "MARKER_ELEMS=%d", &n); err != nil {
		return set, fmt.Errorf("invalid MARKER_ELEMS line: %s", elemLine)
	}
	set.elements = make([]rawElement, 0, n)
	for j := 0; j < n; j++ {
		line, ok := nextSU2Line(scanner)
		if !ok {
			return set, fmt.Errorf("unexpected EOF reading boundary elements for %s", set.name)
		}
		el, err := parseSU2Element(line)
		if err != nil {
			return set, fmt.Errorf("marker %s: %w", set.name, err)
		}
		set.elements = append(set.elements, el)
	}
	return set, nil
}
