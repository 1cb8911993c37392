package mesh

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Mesh files are a gmsh 2.2 ASCII subset: $MeshFormat, $PhysicalNames,
// $Nodes and $Elements with line elements (boundary segments, tagged by
// physical name) and triangle/quad elements (cells). A $Comms extension
// section carries the halo-exchange channels of a partitioned piece:
//
//	$Comms
//	<number of channels>
//	<peer rank> <number of send cells> <number of receive cells>
//	<send cell indices, 0-based file order>
//	<receive cell indices>
//	$EndComms
//
// Receive cells are halo copies of neighbour-rank cells and are flagged
// ghost on load.

// ReadFile loads the mesh piece for one rank, named <base>_<rank+1>.msh.
func ReadFile(base string, rank int) (*Mesh, error) {
	name := fmt.Sprintf("%s_%d.msh", base, rank+1)
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("mesh: %s: %w", name, err)
	}
	return m, nil
}

type rawMesh struct {
	physNames map[int]string
	nodeIdx   map[int]int
	nodesX    []float64
	nodesY    []float64
	cells     [][]int
	bline     map[[2]int]int // sorted node pair -> physical id
	comms     []*CommChannel
}

// Read parses a mesh from r and derives the geometry and topology the
// engine consumes: cell areas and centroids, edge normals, lengths and
// centers, boundary bindings with interned tags, and comm channels.
func Read(r io.Reader) (*Mesh, error) {
	raw := &rawMesh{
		physNames: make(map[int]string),
		nodeIdx:   make(map[int]int),
		bline:     make(map[[2]int]int),
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for {
		line, ok := nextLine(sc)
		if !ok {
			break
		}
		var err error
		switch line {
		case "$MeshFormat":
			err = raw.readFormat(sc)
		case "$PhysicalNames":
			err = raw.readPhysicalNames(sc)
		case "$Nodes":
			err = raw.readNodes(sc)
		case "$Elements":
			err = raw.readElements(sc)
		case "$Comms":
			err = raw.readComms(sc)
		default:
			// Unknown section, skip to its end marker
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				err = skipSection(sc, "$End"+line[1:])
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(raw.cells) == 0 {
		return nil, fmt.Errorf("no cells in mesh file")
	}
	return raw.build()
}

func nextLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func skipSection(sc *bufio.Scanner, end string) error {
	for {
		line, ok := nextLine(sc)
		if !ok {
			return fmt.Errorf("unterminated section, expected %s", end)
		}
		if line == end {
			return nil
		}
	}
}

func (raw *rawMesh) readFormat(sc *bufio.Scanner) error {
	line, ok := nextLine(sc)
	if !ok || !strings.HasPrefix(line, "2.2") {
		return fmt.Errorf("unsupported mesh format %q, need 2.2 ASCII", line)
	}
	return skipSection(sc, "$EndMeshFormat")
}

func (raw *rawMesh) readPhysicalNames(sc *bufio.Scanner) error {
	n, err := countLine(sc, "$PhysicalNames")
	if err != nil {
		return err
	}
	for k := 0; k < n; k++ {
		line, ok := nextLine(sc)
		if !ok {
			return fmt.Errorf("truncated $PhysicalNames")
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return fmt.Errorf("bad physical name line %q", line)
		}
		dim, _ := strconv.Atoi(fields[0])
		id, _ := strconv.Atoi(fields[1])
		if dim == 1 {
			raw.physNames[id] = strings.Trim(fields[2], `"`)
		}
	}
	return skipSection(sc, "$EndPhysicalNames")
}

func (raw *rawMesh) readNodes(sc *bufio.Scanner) error {
	n, err := countLine(sc, "$Nodes")
	if err != nil {
		return err
	}
	for k := 0; k < n; k++ {
		fields, err := fieldsLine(sc, 4, "$Nodes")
		if err != nil {
			return err
		}
		id, _ := strconv.Atoi(fields[0])
		x, _ := strconv.ParseFloat(fields[1], 64)
		y, _ := strconv.ParseFloat(fields[2], 64)
		raw.nodeIdx[id] = len(raw.nodesX)
		raw.nodesX = append(raw.nodesX, x)
		raw.nodesY = append(raw.nodesY, y)
	}
	return skipSection(sc, "$EndNodes")
}

func (raw *rawMesh) readElements(sc *bufio.Scanner) error {
	n, err := countLine(sc, "$Elements")
	if err != nil {
		return err
	}
	for k := 0; k < n; k++ {
		fields, err := fieldsLine(sc, 3, "$Elements")
		if err != nil {
			return err
		}
		etype, _ := strconv.Atoi(fields[1])
		ntags, _ := strconv.Atoi(fields[2])
		if len(fields) < 3+ntags {
			return fmt.Errorf("short element line %q", strings.Join(fields, " "))
		}
		rest := fields[3+ntags:]
		var phys int
		if ntags > 0 {
			phys, _ = strconv.Atoi(fields[3])
		}
		switch etype {
		case 1: // 2-node line: boundary segment
			if len(rest) < 2 {
				return fmt.Errorf("short line element")
			}
			a, okA := raw.nodeIdx[atoi(rest[0])]
			b, okB := raw.nodeIdx[atoi(rest[1])]
			if !okA || !okB {
				return fmt.Errorf("line element references unknown node")
			}
			raw.bline[pairKey(a, b)] = phys
		case 2, 3: // triangle, quad
			nn := 3
			if etype == 3 {
				nn = 4
			}
			if len(rest) < nn {
				return fmt.Errorf("short cell element")
			}
			cell := make([]int, nn)
			for i := 0; i < nn; i++ {
				idx, ok := raw.nodeIdx[atoi(rest[i])]
				if !ok {
					return fmt.Errorf("cell element references unknown node")
				}
				cell[i] = idx
			}
			raw.cells = append(raw.cells, cell)
		default:
			return fmt.Errorf("unsupported element type %d", etype)
		}
	}
	return skipSection(sc, "$EndElements")
}

func (raw *rawMesh) readComms(sc *bufio.Scanner) error {
	n, err := countLine(sc, "$Comms")
	if err != nil {
		return err
	}
	for k := 0; k < n; k++ {
		fields, err := fieldsLine(sc, 3, "$Comms")
		if err != nil {
			return err
		}
		c := &CommChannel{Peer: atoi(fields[0])}
		nsnd, nrec := atoi(fields[1]), atoi(fields[2])
		if c.SendIndices, err = readInts(sc, nsnd); err != nil {
			return err
		}
		if c.RecvIndices, err = readInts(sc, nrec); err != nil {
			return err
		}
		raw.comms = append(raw.comms, c)
	}
	return skipSection(sc, "$EndComms")
}

func readInts(sc *bufio.Scanner, n int) ([]int, error) {
	out := make([]int, 0, n)
	for len(out) < n {
		line, ok := nextLine(sc)
		if !ok {
			return nil, fmt.Errorf("truncated $Comms index list")
		}
		for _, f := range strings.Fields(line) {
			out = append(out, atoi(f))
		}
	}
	if len(out) != n {
		return nil, fmt.Errorf("$Comms index list has %d entries, want %d", len(out), n)
	}
	return out, nil
}

func countLine(sc *bufio.Scanner, section string) (int, error) {
	line, ok := nextLine(sc)
	if !ok {
		return 0, fmt.Errorf("truncated %s", section)
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("bad %s count %q", section, line)
	}
	return n, nil
}

func fieldsLine(sc *bufio.Scanner, min int, section string) ([]string, error) {
	line, ok := nextLine(sc)
	if !ok {
		return nil, fmt.Errorf("truncated %s", section)
	}
	fields := strings.Fields(line)
	if len(fields) < min {
		return nil, fmt.Errorf("bad %s line %q", section, line)
	}
	return fields, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// edgeRec tracks a node pair during topology construction: the first cell
// that traversed it, the directed node order of that traversal, and the
// second cell when the pair turns out interior.
type edgeRec struct {
	a, b int
	i, j int
}

func (raw *rawMesh) build() (*Mesh, error) {
	m := &Mesh{
		NodesX: raw.nodesX,
		NodesY: raw.nodesY,
	}

	// Cells: enforce counterclockwise orientation, derive area and centroid
	for _, cell := range raw.cells {
		a, cx, cy := polygonGeometry(raw.nodesX, raw.nodesY, cell)
		if a < 0 {
			reverse(cell)
			a = -a
		}
		m.CellsNodes = append(m.CellsNodes, cell)
		m.CellsAreas = append(m.CellsAreas, a)
		m.CellsCentersX = append(m.CellsCentersX, cx)
		m.CellsCentersY = append(m.CellsCentersY, cy)
		m.CellsIsGhost = append(m.CellsIsGhost, false)
	}
	m.NRealCells = len(m.CellsAreas)

	// Halo cells from the comm channels
	for _, c := range raw.comms {
		for _, i := range c.RecvIndices {
			if i < 0 || i >= m.NRealCells {
				return nil, fmt.Errorf("$Comms receive index %d out of range", i)
			}
			m.CellsIsGhost[i] = true
		}
	}
	m.Comms = raw.comms

	// Edge topology from shared node pairs, in cell traversal order
	var (
		recs  []*edgeRec
		byKey = make(map[[2]int]*edgeRec)
	)
	for ci, cell := range m.CellsNodes {
		for k := range cell {
			a, b := cell[k], cell[(k+1)%len(cell)]
			key := pairKey(a, b)
			if rec, ok := byKey[key]; ok {
				if rec.j != rec.i {
					return nil, fmt.Errorf("node pair (%d,%d) shared by more than two cells", a, b)
				}
				rec.j = ci
				continue
			}
			rec := &edgeRec{a: a, b: b, i: ci, j: ci}
			byKey[key] = rec
			recs = append(recs, rec)
		}
	}

	tags := NewTagTable()
	for _, rec := range recs {
		if rec.j != rec.i {
			addMeshEdge(m, rec.i, rec.j, rec.a, rec.b)
			continue
		}
		// Unpaired: boundary segment of an owned cell, or the outer rim of
		// a halo cell, which the owning rank is responsible for
		if m.CellsIsGhost[rec.i] {
			continue
		}
		phys, ok := raw.bline[pairKey(rec.a, rec.b)]
		if !ok {
			return nil, fmt.Errorf("boundary edge of cell %d has no tagged line element", rec.i)
		}
		name, ok := raw.physNames[phys]
		if !ok {
			return nil, fmt.Errorf("boundary physical id %d has no name", phys)
		}
		g := addGhostMirror(m, rec.i, rec.a, rec.b)
		e := addMeshEdge(m, rec.i, g, rec.a, rec.b)
		m.BoundaryEdges = append(m.BoundaryEdges, e)
		m.BoundaryTags = append(m.BoundaryTags, tags.Intern(name))
	}
	m.TagNames = tags.Names()

	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// addMeshEdge appends the edge (i,j) traversed as a->b by cell i. Cells
// are counterclockwise, so the outward normal from i is the traversal
// direction rotated minus ninety degrees.
func addMeshEdge(m *Mesh, i, j, a, b int) int {
	var (
		dx = m.NodesX[b] - m.NodesX[a]
		dy = m.NodesY[b] - m.NodesY[a]
		le = math.Hypot(dx, dy)
	)
	e := len(m.EdgesLengths)
	m.EdgesCells = append(m.EdgesCells, [2]int{i, j})
	m.EdgesLengths = append(m.EdgesLengths, le)
	m.EdgesNormalsX = append(m.EdgesNormalsX, dy/le)
	m.EdgesNormalsY = append(m.EdgesNormalsY, -dx/le)
	m.EdgesCentersX = append(m.EdgesCentersX, 0.5*(m.NodesX[a]+m.NodesX[b]))
	m.EdgesCentersY = append(m.EdgesCentersY, 0.5*(m.NodesY[a]+m.NodesY[b]))
	m.EdgesNodes = append(m.EdgesNodes, [2]int{a, b})
	return e
}

// addGhostMirror appends a ghost cell mirroring owner across the segment
// a-b, copying the owner's area.
func addGhostMirror(m *Mesh, owner, a, b int) int {
	var (
		dx = m.NodesX[b] - m.NodesX[a]
		dy = m.NodesY[b] - m.NodesY[a]
		le = math.Hypot(dx, dy)
		nx = dy / le
		ny = -dx / le
		ex = 0.5 * (m.NodesX[a] + m.NodesX[b])
		ey = 0.5 * (m.NodesY[a] + m.NodesY[b])
		cx = m.CellsCentersX[owner]
		cy = m.CellsCentersY[owner]
		d  = (ex-cx)*nx + (ey-cy)*ny
	)
	g := len(m.CellsAreas)
	m.CellsAreas = append(m.CellsAreas, m.CellsAreas[owner])
	m.CellsCentersX = append(m.CellsCentersX, cx+2*d*nx)
	m.CellsCentersY = append(m.CellsCentersY, cy+2*d*ny)
	m.CellsIsGhost = append(m.CellsIsGhost, true)
	return g
}

func polygonGeometry(xs, ys []float64, nodes []int) (area, cx, cy float64) {
	var a2 float64
	for k := range nodes {
		i, j := nodes[k], nodes[(k+1)%len(nodes)]
		cross := xs[i]*ys[j] - xs[j]*ys[i]
		a2 += cross
		cx += (xs[i] + xs[j]) * cross
		cy += (ys[i] + ys[j]) * cross
	}
	area = 0.5 * a2
	cx /= 3 * a2
	cy /= 3 * a2
	return
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
