package mesh

import (
	"fmt"
	"math"
)

// Mesh holds the static per-rank mesh piece: cell geometry, edge topology,
// boundary bindings and the communication channels toward neighbour ranks.
//
// Cells are stored flat. Indices 0..NRealCells-1 carry geometry; cells at
// NRealCells and above are boundary ghost mirrors created for boundary
// edges. Halo cells received from neighbour ranks live below NRealCells
// with CellsIsGhost set: they carry geometry but are never owned here.
type Mesh struct {
	CellsAreas    []float64
	CellsCentersX []float64
	CellsCentersY []float64
	CellsIsGhost  []bool
	NRealCells    int

	// Edge e connects EdgesCells[e][0] and EdgesCells[e][1]. The normal is
	// the unit outward normal from cell 0 toward cell 1.
	EdgesCells    [][2]int
	EdgesLengths  []float64
	EdgesNormalsX []float64
	EdgesNormalsY []float64
	EdgesCentersX []float64
	EdgesCentersY []float64
	EdgesNodes    [][2]int

	// Boundary edge bindings, one per boundary edge. BoundaryTags[i] is the
	// integer tag resolved from the mesh file's physical name for edge
	// BoundaryEdges[i].
	BoundaryEdges []int
	BoundaryTags  []BCTag
	TagNames      []string // indexed by BCTag

	Comms []*CommChannel

	// Node storage kept for the output writers. CellsNodes covers cells
	// below NRealCells; boundary ghost mirrors carry no connectivity.
	NodesX, NodesY []float64
	CellsNodes     [][]int
}

// CommChannel describes the halo exchange with one neighbour rank. Send
// and receive index lists on paired ranks name the same cells in the same
// order. The solver's startup handshake checks that paired lists have
// matching lengths; it does not compare the cells they name.
type CommChannel struct {
	Peer        int
	SendIndices []int
	RecvIndices []int
	SendBuf     []float64
	RecvBuf     []float64
}

// Resize sizes the channel buffers for a problem with the given number of
// conserved variables. Buffers are allocated once and reused every step.
func (c *CommChannel) Resize(vars int) {
	c.SendBuf = make([]float64, vars*len(c.SendIndices))
	c.RecvBuf = make([]float64, vars*len(c.RecvIndices))
}

// NumCells returns the total cell count including ghost cells.
func (m *Mesh) NumCells() int {
	return len(m.CellsAreas)
}

// NumOwned counts owned, non-ghost cells.
func (m *Mesh) NumOwned() (n int) {
	for i := 0; i < m.NRealCells; i++ {
		if !m.CellsIsGhost[i] {
			n++
		}
	}
	return
}

// Check validates the mesh invariants that the engine depends on. It is
// run once before entering the step loop; a failure here is a
// configuration error, not a runtime condition.
func (m *Mesh) Check() error {
	var (
		nc = m.NumCells()
		ne = len(m.EdgesLengths)
	)
	if m.NRealCells <= 0 || m.NRealCells > nc {
		return fmt.Errorf("mesh: NRealCells = %d out of range for %d cells", m.NRealCells, nc)
	}
	if len(m.CellsCentersX) != nc || len(m.CellsCentersY) != nc || len(m.CellsIsGhost) != nc {
		return fmt.Errorf("mesh: cell attribute lengths disagree")
	}
	for i := 0; i < m.NRealCells; i++ {
		if !(m.CellsAreas[i] > 0) {
			return fmt.Errorf("mesh: cell %d has non-positive area %g", i, m.CellsAreas[i])
		}
	}
	if len(m.EdgesCells) != ne || len(m.EdgesNormalsX) != ne || len(m.EdgesNormalsY) != ne ||
		len(m.EdgesCentersX) != ne || len(m.EdgesCentersY) != ne {
		return fmt.Errorf("mesh: edge attribute lengths disagree")
	}
	for e := 0; e < ne; e++ {
		if !(m.EdgesLengths[e] > 0) {
			return fmt.Errorf("mesh: edge %d has non-positive length %g", e, m.EdgesLengths[e])
		}
		nx, ny := m.EdgesNormalsX[e], m.EdgesNormalsY[e]
		if math.Abs(nx*nx+ny*ny-1) > 1e-10 {
			return fmt.Errorf("mesh: edge %d normal (%g,%g) is not unit", e, nx, ny)
		}
		i, j := m.EdgesCells[e][0], m.EdgesCells[e][1]
		if i < 0 || i >= nc || j < 0 || j >= nc {
			return fmt.Errorf("mesh: edge %d references cell out of range", e)
		}
	}
	if len(m.BoundaryEdges) != len(m.BoundaryTags) {
		return fmt.Errorf("mesh: %d boundary edges but %d tags", len(m.BoundaryEdges), len(m.BoundaryTags))
	}
	for i, e := range m.BoundaryEdges {
		if e < 0 || e >= ne {
			return fmt.Errorf("mesh: boundary binding %d references edge out of range", i)
		}
		if int(m.BoundaryTags[i]) >= len(m.TagNames) {
			return fmt.Errorf("mesh: boundary binding %d has unresolved tag", i)
		}
		j := m.EdgesCells[e][1]
		if j < m.NRealCells {
			return fmt.Errorf("mesh: boundary edge %d does not pair with a ghost cell", e)
		}
	}
	for _, c := range m.Comms {
		for _, i := range c.SendIndices {
			if i < 0 || i >= m.NRealCells || m.CellsIsGhost[i] {
				return fmt.Errorf("mesh: comm to rank %d sends non-owned cell %d", c.Peer, i)
			}
		}
		for _, i := range c.RecvIndices {
			if i < 0 || i >= m.NRealCells || !m.CellsIsGhost[i] {
				return fmt.Errorf("mesh: comm from rank %d receives into non-halo cell %d", c.Peer, i)
			}
		}
	}
	return nil
}

// Area sums the owned cell areas, the measure of this rank's domain piece.
func (m *Mesh) Area() (a float64) {
	for i := 0; i < m.NRealCells; i++ {
		if !m.CellsIsGhost[i] {
			a += m.CellsAreas[i]
		}
	}
	return
}
