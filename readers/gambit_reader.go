package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/meshstore/segmentation"
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadGambitNeutral reads a Gambit neutral file (.neu). Element groups and boundary
// condition sets become named segments.
func ReadGambitNeutral(filename string, sm *segmentation.Segmentation) (*Summary, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := parseGambit(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return raw.build(sm)
}

func gambitKind(gambitType, numNodes int) (topology.Kind, bool) {
	switch gambitType {
	case 1: // Edge
		return topology.Line, numNodes == 2
	case 2: // Quadrilateral, or a 2-node bar in older files
		if numNodes == 2 {
			return topology.Line, true
		}
		return topology.Quadrilateral, numNodes == 4
	case 3:
		return topology.Triangle, numNodes == 3
	case 4: // Brick
		return topology.Hexahedron, numNodes == 8
	case 5: // Wedge
		return topology.Prism, numNodes == 6
	case 6:
		return topology.Tetrahedron, numNodes == 4
	case 7:
		return topology.Pyramid, numNodes == 5
	}
	return 0, false
}

func parseGambit(r io.Reader) (*rawMesh, error) {
	raw := &rawMesh{format: "gambit"}
	scanner := bufio.NewScanner(r)

	// Control variables from header
	var numnp, nelem, ngrps, nbsets int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			// Next line contains the actual values
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF after control header")
			}
			values := strings.Fields(scanner.Text())
			if len(values) < 4 {
				return nil, fmt.Errorf("invalid control info: %q", scanner.Text())
			}
			numnp, _ = strconv.Atoi(values[0])
			nelem, _ = strconv.Atoi(values[1])
			ngrps, _ = strconv.Atoi(values[2])
			nbsets, _ = strconv.Atoi(values[3])
			break
		}
	}

	// Gambit ids are 1-based; index maps hold id -> position
	nodeIndex := make(map[int]int, numnp)
	elemIndex := make(map[int]int, nelem)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "ENDOFSECTION":
			continue

		case strings.Contains(line, "NODAL COORDINATES"):
			for i := 0; i < numnp; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid node line: %q", scanner.Text())
				}
				nodeID, err := strconv.Atoi(fields[0])
				if err != nil {
					return nil, fmt.Errorf("invalid node id: %w", err)
				}
				var coords [3]float64
				for j := 1; j < len(fields) && j <= 3; j++ {
					if coords[j-1], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("node %d: invalid coordinate: %w", nodeID, err)
					}
				}
				nodeIndex[nodeID] = len(raw.points)
				raw.points = append(raw.points, r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]})
				raw.pointIDs = append(raw.pointIDs, store.ID(nodeID-1))
			}

		case strings.Contains(line, "ELEMENTS/CELLS"):
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid element line: %q", scanner.Text())
				}
				elemID, _ := strconv.Atoi(fields[0])
				gambitType, _ := strconv.Atoi(fields[1])
				numNodes, _ := strconv.Atoi(fields[2])

				// Connectivity may continue on following lines
				for len(fields) < 3+numNodes && scanner.Scan() {
					fields = append(fields, strings.Fields(scanner.Text())...)
				}
				kind, ok := gambitKind(gambitType, numNodes)
				if !ok {
					return nil, fmt.Errorf("element %d: unsupported type %d with %d nodes", elemID, gambitType, numNodes)
				}
				el := rawElement{kind: kind, id: store.ID(elemID - 1), hasID: true, verts: make([]int, numNodes)}
				for j := 0; j < numNodes; j++ {
					nodeID, _ := strconv.Atoi(fields[3+j])
					idx, found := nodeIndex[nodeID]
					if !found {
						return nil, fmt.Errorf("element %d: unknown node %d", elemID, nodeID)
					}
					el.verts[j] = idx
				}
				elemIndex[elemID] = len(raw.cells)
				raw.cells = append(raw.cells, el)
			}

		case strings.HasPrefix(line, "GROUP:"):
			// an ELEMENT GROUP section may hold several groups
			set, err := parseGambitGroup(line, scanner, elemIndex)
			if err != nil {
				return nil, err
			}
			raw.sets = append(raw.sets, set)

		case strings.Contains(line, "BOUNDARY CONDITIONS"):
			set, err := parseGambitBoundary(scanner, elemIndex)
			if err != nil {
				return nil, err
			}
			if set != nil {
				raw.sets = append(raw.sets, *set)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if len(raw.points) != numnp || len(raw.cells) != nelem {
		return nil, fmt.Errorf("header declares %d nodes and %d elements, read %d and %d",
			numnp, nelem, len(raw.points), len(raw.cells))
	}
	groups, bcs := 0, 0
	for _, s := range raw.sets {
		if s.faces != nil {
			bcs++
		} else {
			groups++
		}
	}
	if groups > ngrps || bcs > nbsets {
		return nil, fmt.Errorf("header declares %d groups and %d boundary sets, read %d and %d",
			ngrps, nbsets, groups, bcs)
	}
	return raw, nil
}

// parseGambitGroup reads one group of an ELEMENT GROUP section, starting from its header:
//
//	GROUP: n ELEMENTS: n MATERIAL: n NFLAGS: n
//	name
//	flags
//	element ids...
func parseGambitGroup(header string, scanner *bufio.Scanner, elemIndex map[int]int) (set rawSet, err error) {
	var groupID, numElems, nflags int
	parts := strings.Fields(header)
	for i := 0; i+1 < len(parts); i++ {
		switch parts[i] {
		case "GROUP:":
			groupID, _ = strconv.Atoi(parts[i+1])
		case "ELEMENTS:":
			numElems, _ = strconv.Atoi(parts[i+1])
		case "NFLAGS:":
			nflags, _ = strconv.Atoi(parts[i+1])
		}
	}
	if !scanner.Scan() {
		return set, fmt.Errorf("unexpected EOF reading group %d name", groupID)
	}
	set.name = strings.TrimSpace(scanner.Text())
	if set.name == "" {
		set.name = fmt.Sprintf("group%d", groupID)
	}
	if nflags > 0 && !scanner.Scan() {
		return set, fmt.Errorf("unexpected EOF reading group %d flags", groupID)
	}
	set.cells = make([]int, 0, numElems)
	for len(set.cells) < numElems {
		if !scanner.Scan() {
			return set, fmt.Errorf("unexpected EOF reading group %d elements", groupID)
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "ENDOFSECTION" {
			break
		}
		for _, field := range strings.Fields(line) {
			elemID, err := strconv.Atoi(field)
			if err != nil {
				return set, fmt.Errorf("group %d: invalid element id %q", groupID, field)
			}
			idx, ok := elemIndex[elemID]
			if !ok {
				return set, fmt.Errorf("group %d: unknown element %d", groupID, elemID)
			}
			set.cells = append(set.cells, idx)
		}
	}
	return set, nil
}

// parseGambitBoundary reads one BOUNDARY CONDITIONS section. Only element/face sets
// (ITYPE 1) are kept; node sets are skipped and reported as nil.
func parseGambitBoundary(scanner *bufio.Scanner, elemIndex map[int]int) (*rawSet, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF reading boundary conditions")
	}
	// Format: NAME ITYPE NENTRY NVALUES IBCODE...
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid boundary condition header: %q", scanner.Text())
	}
	name := parts[0]
	itype, _ := strconv.Atoi(parts[1])
	nentry, _ := strconv.Atoi(parts[2])

	set := &rawSet{name: name, faces: make([]rawFace, 0, nentry)}
	for i := 0; i < nentry; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading boundary %s", name)
		}
		if itype != 1 {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return nil, fmt.Errorf("boundary %s: invalid entry %q", name, scanner.Text())
		}
		elemID, _ := strconv.Atoi(fields[0])
		faceID, _ := strconv.Atoi(fields[2])
		idx, ok := elemIndex[elemID]
		if !ok {
			return nil, fmt.Errorf("boundary %s: unknown element %d", name, elemID)
		}
		// Face IDs are 1-based
		set.faces = append(set.faces, rawFace{cell: idx, face: faceID - 1})
	}
	if itype != 1 {
		return nil, nil
	}
	return set, nil
}
