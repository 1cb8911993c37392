package mesh

import (
	"fmt"
	"sort"
)

// StripX assigns owned cells of a single-rank mesh to nparts contiguous
// strips ordered by centroid x. Deterministic, used by tests and by runs
// on generated meshes; PartitionKWay is the general alternative.
func StripX(m *Mesh, nparts int) []int {
	var (
		n    = m.NRealCells
		ids  = make([]int, n)
		part = make([]int, n)
	)
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return m.CellsCentersX[ids[a]] < m.CellsCentersX[ids[b]]
	})
	for pos, id := range ids {
		part[id] = pos * nparts / n
	}
	return part
}

// Decompose splits a single-rank mesh into nparts per-rank meshes given a
// part assignment over its real cells. Each piece holds its owned cells
// first, then halo copies of neighbour-rank cells (flagged ghost), then
// boundary ghost mirrors, with symmetric comm channels toward every
// neighbour rank. Cell, edge and channel ordering is derived from global
// ordering, so paired channels name the same cells in the same order.
func Decompose(g *Mesh, part []int, nparts int) ([]*Mesh, error) {
	if len(part) != g.NRealCells {
		return nil, fmt.Errorf("mesh: part assignment covers %d cells, mesh has %d", len(part), g.NRealCells)
	}
	for i, p := range part {
		if p < 0 || p >= nparts {
			return nil, fmt.Errorf("mesh: cell %d assigned to rank %d of %d", i, p, nparts)
		}
		if g.CellsIsGhost[i] {
			return nil, fmt.Errorf("mesh: decomposing an already decomposed mesh")
		}
	}

	// Tag lookup for the global boundary bindings
	tagOf := make(map[int]BCTag, len(g.BoundaryEdges))
	for i, e := range g.BoundaryEdges {
		tagOf[e] = g.BoundaryTags[i]
	}

	out := make([]*Mesh, nparts)
	for r := 0; r < nparts; r++ {
		lm, err := extractPiece(g, part, r, tagOf)
		if err != nil {
			return nil, err
		}
		out[r] = lm
	}
	return out, nil
}

func extractPiece(g *Mesh, part []int, r int, tagOf map[int]BCTag) (*Mesh, error) {
	var (
		haloSet = make(map[int]bool)
		sendSet = make(map[int]map[int]bool) // peer -> owned cells to send
	)
	// Find halo cells and per-peer send sets from interior adjacency
	for _, ec := range g.EdgesCells {
		i, j := ec[0], ec[1]
		if i >= g.NRealCells || j >= g.NRealCells || i == j {
			continue
		}
		if part[i] == r && part[j] != r {
			haloSet[j] = true
			addSend(sendSet, part[j], i)
		}
		if part[j] == r && part[i] != r {
			haloSet[i] = true
			addSend(sendSet, part[i], j)
		}
	}

	var owned, halo []int
	for i := 0; i < g.NRealCells; i++ {
		if part[i] == r {
			owned = append(owned, i)
		}
	}
	for i := range haloSet {
		halo = append(halo, i)
	}
	sort.Ints(halo)

	lm := &Mesh{TagNames: append([]string(nil), g.TagNames...)}
	g2l := make(map[int]int, len(owned)+len(halo))
	n2l := make(map[int]int)

	localNode := func(gn int) int {
		if ln, ok := n2l[gn]; ok {
			return ln
		}
		ln := len(lm.NodesX)
		n2l[gn] = ln
		lm.NodesX = append(lm.NodesX, g.NodesX[gn])
		lm.NodesY = append(lm.NodesY, g.NodesY[gn])
		return ln
	}
	// Halo cells keep their node connectivity so a decomposed piece can be
	// written back to a mesh file.
	addCell := func(gi int, ghost bool) {
		g2l[gi] = len(lm.CellsAreas)
		lm.CellsAreas = append(lm.CellsAreas, g.CellsAreas[gi])
		lm.CellsCentersX = append(lm.CellsCentersX, g.CellsCentersX[gi])
		lm.CellsCentersY = append(lm.CellsCentersY, g.CellsCentersY[gi])
		lm.CellsIsGhost = append(lm.CellsIsGhost, ghost)
		if gi < len(g.CellsNodes) {
			nodes := make([]int, len(g.CellsNodes[gi]))
			for k, gn := range g.CellsNodes[gi] {
				nodes[k] = localNode(gn)
			}
			lm.CellsNodes = append(lm.CellsNodes, nodes)
		}
	}
	for _, gi := range owned {
		addCell(gi, false)
	}
	for _, gi := range halo {
		addCell(gi, true)
	}
	lm.NRealCells = len(lm.CellsAreas)

	// Edges, preserving global order so per-cell flux accumulation order
	// matches the single-rank run
	for ge, ec := range g.EdgesCells {
		i, j := ec[0], ec[1]
		if j >= g.NRealCells {
			// boundary edge, owned side only
			if part[i] != r {
				continue
			}
			tag, ok := tagOf[ge]
			if !ok {
				return nil, fmt.Errorf("mesh: boundary edge %d has no binding", ge)
			}
			// ghost mirror copied from the global ghost cell
			lg := len(lm.CellsAreas)
			lm.CellsAreas = append(lm.CellsAreas, g.CellsAreas[j])
			lm.CellsCentersX = append(lm.CellsCentersX, g.CellsCentersX[j])
			lm.CellsCentersY = append(lm.CellsCentersY, g.CellsCentersY[j])
			lm.CellsIsGhost = append(lm.CellsIsGhost, true)
			le := appendEdge(lm, g, ge, g2l[i], lg, localNode)
			lm.BoundaryEdges = append(lm.BoundaryEdges, le)
			lm.BoundaryTags = append(lm.BoundaryTags, tag)
			continue
		}
		if i == j || (part[i] != r && part[j] != r) {
			continue
		}
		appendEdge(lm, g, ge, g2l[i], g2l[j], localNode)
	}

	// Comm channels ordered by peer rank; index lists ordered by global id
	var peers []int
	for p := range sendSet {
		peers = append(peers, p)
	}
	sort.Ints(peers)
	for _, p := range peers {
		var snd []int
		for gi := range sendSet[p] {
			snd = append(snd, gi)
		}
		sort.Ints(snd)
		var rec []int
		for _, gi := range halo {
			if part[gi] == p {
				rec = append(rec, gi)
			}
		}
		c := &CommChannel{Peer: p}
		for _, gi := range snd {
			c.SendIndices = append(c.SendIndices, g2l[gi])
		}
		for _, gi := range rec {
			c.RecvIndices = append(c.RecvIndices, g2l[gi])
		}
		lm.Comms = append(lm.Comms, c)
	}
	return lm, nil
}

func addSend(sendSet map[int]map[int]bool, peer, cell int) {
	if sendSet[peer] == nil {
		sendSet[peer] = make(map[int]bool)
	}
	sendSet[peer][cell] = true
}

func appendEdge(lm, g *Mesh, ge, li, lj int, localNode func(int) int) int {
	e := len(lm.EdgesLengths)
	lm.EdgesCells = append(lm.EdgesCells, [2]int{li, lj})
	lm.EdgesLengths = append(lm.EdgesLengths, g.EdgesLengths[ge])
	lm.EdgesNormalsX = append(lm.EdgesNormalsX, g.EdgesNormalsX[ge])
	lm.EdgesNormalsY = append(lm.EdgesNormalsY, g.EdgesNormalsY[ge])
	lm.EdgesCentersX = append(lm.EdgesCentersX, g.EdgesCentersX[ge])
	lm.EdgesCentersY = append(lm.EdgesCentersY, g.EdgesCentersY[ge])
	if ge < len(g.EdgesNodes) {
		nd := g.EdgesNodes[ge]
		lm.EdgesNodes = append(lm.EdgesNodes, [2]int{localNode(nd[0]), localNode(nd[1])})
	}
	return e
}
