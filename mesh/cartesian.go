package mesh

// Structured cartesian mesh generators. These cover the test and example
// geometries without a mesh file: the unit square box, plain rectangles,
// and the Mach-3 forward step channel. Generated meshes are complete
// single-rank meshes; Decompose splits them for multi-rank runs.

// TagFunc names the boundary kernel for a boundary edge, given the edge
// center and its outward normal.
type TagFunc func(x, y, nx, ny float64) string

// WallTag tags every boundary edge "wall".
func WallTag(x, y, nx, ny float64) string { return "wall" }

// NewUnitSquare builds an nx by ny quad mesh of the unit square with every
// boundary tagged "wall".
func NewUnitSquare(nx, ny int) *Mesh {
	return NewRect(nx, ny, 0, 0, 1, 1, nil, WallTag)
}

// NewRect builds an nx by ny quad mesh of [x0,x1]x[y0,y1]. Cells where
// active returns false are omitted from the domain; a nil active keeps
// every cell. Boundary edges are tagged through tag.
func NewRect(nx, ny int, x0, y0, x1, y1 float64, active func(i, j int) bool, tag TagFunc) *Mesh {
	var (
		dx   = (x1 - x0) / float64(nx)
		dy   = (y1 - y0) / float64(ny)
		m    = &Mesh{}
		tags = NewTagTable()
	)
	cellID := make([]int, nx*ny)
	nodeID := make([]int, (nx+1)*(ny+1))
	for i := range cellID {
		cellID[i] = -1
	}
	for i := range nodeID {
		nodeID[i] = -1
	}
	cid := func(i, j int) int { return i + nx*j }

	node := func(i, j int) int {
		k := i + (nx+1)*j
		if nodeID[k] < 0 {
			nodeID[k] = len(m.NodesX)
			m.NodesX = append(m.NodesX, x0+float64(i)*dx)
			m.NodesY = append(m.NodesY, y0+float64(j)*dy)
		}
		return nodeID[k]
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if active != nil && !active(i, j) {
				continue
			}
			cellID[cid(i, j)] = len(m.CellsAreas)
			m.CellsAreas = append(m.CellsAreas, dx*dy)
			m.CellsCentersX = append(m.CellsCentersX, x0+(float64(i)+0.5)*dx)
			m.CellsCentersY = append(m.CellsCentersY, y0+(float64(j)+0.5)*dy)
			m.CellsIsGhost = append(m.CellsIsGhost, false)
			m.CellsNodes = append(m.CellsNodes,
				[]int{node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1)})
		}
	}
	m.NRealCells = len(m.CellsAreas)

	on := func(i, j int) bool {
		return i >= 0 && i < nx && j >= 0 && j < ny && cellID[cid(i, j)] >= 0
	}
	addEdge := func(ci, cj int, nvx, nvy, le, ex, ey float64, na, nb int) int {
		e := len(m.EdgesLengths)
		m.EdgesCells = append(m.EdgesCells, [2]int{ci, cj})
		m.EdgesLengths = append(m.EdgesLengths, le)
		m.EdgesNormalsX = append(m.EdgesNormalsX, nvx)
		m.EdgesNormalsY = append(m.EdgesNormalsY, nvy)
		m.EdgesCentersX = append(m.EdgesCentersX, ex)
		m.EdgesCentersY = append(m.EdgesCentersY, ey)
		m.EdgesNodes = append(m.EdgesNodes, [2]int{na, nb})
		return e
	}
	addGhost := func(owner int, nvx, nvy, h float64) int {
		g := len(m.CellsAreas)
		m.CellsAreas = append(m.CellsAreas, m.CellsAreas[owner])
		m.CellsCentersX = append(m.CellsCentersX, m.CellsCentersX[owner]+nvx*h)
		m.CellsCentersY = append(m.CellsCentersY, m.CellsCentersY[owner]+nvy*h)
		m.CellsIsGhost = append(m.CellsIsGhost, true)
		return g
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if !on(i, j) {
				continue
			}
			var (
				c  = cellID[cid(i, j)]
				xw = x0 + float64(i)*dx // west node line
				ys = y0 + float64(j)*dy // south node line
			)
			// Interior edges toward +x and +y so each pair appears once
			if on(i+1, j) {
				addEdge(c, cellID[cid(i+1, j)], 1, 0, dy,
					xw+dx, ys+0.5*dy, node(i+1, j), node(i+1, j+1))
			}
			if on(i, j+1) {
				addEdge(c, cellID[cid(i, j+1)], 0, 1, dx,
					xw+0.5*dx, ys+dy, node(i, j+1), node(i+1, j+1))
			}
			// Boundary edges where the neighbour is missing
			sides := [4]struct {
				di, dj   int
				nvx, nvy float64
				le, h    float64
				ex, ey   float64
				na, nb   int
			}{
				{1, 0, 1, 0, dy, dx, xw + dx, ys + 0.5*dy, node(i+1, j), node(i+1, j+1)},
				{-1, 0, -1, 0, dy, dx, xw, ys + 0.5*dy, node(i, j), node(i, j+1)},
				{0, 1, 0, 1, dx, dy, xw + 0.5*dx, ys + dy, node(i, j+1), node(i+1, j+1)},
				{0, -1, 0, -1, dx, dy, xw + 0.5*dx, ys, node(i, j), node(i+1, j)},
			}
			for _, s := range sides {
				if on(i+s.di, j+s.dj) {
					continue
				}
				g := addGhost(c, s.nvx, s.nvy, s.h)
				e := addEdge(c, g, s.nvx, s.nvy, s.le, s.ex, s.ey, s.na, s.nb)
				m.BoundaryEdges = append(m.BoundaryEdges, e)
				m.BoundaryTags = append(m.BoundaryTags, tags.Intern(tag(s.ex, s.ey, s.nvx, s.nvy)))
			}
		}
	}
	m.TagNames = tags.Names()
	return m
}

// NewChannelWithStep builds the Mach-3 forward step channel: a [0,3]x[0,1]
// duct with the region x > 0.6, y < 0.2 removed. The left boundary is
// tagged "inlet", the right "outlet", everything else "wall". nx, ny are
// the base grid resolution over the full rectangle.
func NewChannelWithStep(nx, ny int) *Mesh {
	var (
		dx = 3.0 / float64(nx)
		dy = 1.0 / float64(ny)
	)
	active := func(i, j int) bool {
		cx := (float64(i) + 0.5) * dx
		cy := (float64(j) + 0.5) * dy
		return !(cx > 0.6 && cy < 0.2)
	}
	tag := func(x, y, nvx, nvy float64) string {
		switch {
		case x < 1e-12:
			return "inlet"
		case x > 3-1e-12:
			return "outlet"
		default:
			return "wall"
		}
	}
	return NewRect(nx, ny, 0, 0, 3, 1, active, tag)
}
