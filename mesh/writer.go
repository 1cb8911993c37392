package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteFile writes the mesh piece for one rank as <base>_<rank+1>.msh in
// the same gmsh 2.2 subset ReadFile consumes, including the $Comms
// section. Used by the partition command.
func WriteFile(m *Mesh, base string, rank int) error {
	name := fmt.Sprintf("%s_%d.msh", base, rank+1)
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("mesh: %w", err)
	}
	defer f.Close()
	if err := Write(m, f); err != nil {
		return fmt.Errorf("mesh: %s: %w", name, err)
	}
	return nil
}

// Write emits m to w. Only cells below NRealCells are written as
// elements; boundary ghost mirrors are reconstructed on read.
func Write(m *Mesh, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")

	// Boundary physical ids are tag+1; the interior surface is 100
	const fluidPhys = 100
	fmt.Fprintf(bw, "$PhysicalNames\n%d\n", len(m.TagNames)+1)
	for tag, name := range m.TagNames {
		fmt.Fprintf(bw, "1 %d \"%s\"\n", tag+1, name)
	}
	fmt.Fprintf(bw, "2 %d \"fluid\"\n$EndPhysicalNames\n", fluidPhys)

	fmt.Fprintf(bw, "$Nodes\n%d\n", len(m.NodesX))
	for i := range m.NodesX {
		fmt.Fprintf(bw, "%d %.17g %.17g 0\n", i+1, m.NodesX[i], m.NodesY[i])
	}
	fmt.Fprintf(bw, "$EndNodes\n")

	if len(m.CellsNodes) < m.NRealCells {
		return fmt.Errorf("mesh has no node connectivity for all real cells")
	}
	fmt.Fprintf(bw, "$Elements\n%d\n", m.NRealCells+len(m.BoundaryEdges))
	id := 1
	for i, e := range m.BoundaryEdges {
		if e >= len(m.EdgesNodes) {
			return fmt.Errorf("mesh has no node pair for boundary edge %d", e)
		}
		nd := m.EdgesNodes[e]
		fmt.Fprintf(bw, "%d 1 2 %d %d %d %d\n", id, int(m.BoundaryTags[i])+1, int(m.BoundaryTags[i])+1, nd[0]+1, nd[1]+1)
		id++
	}
	for c := 0; c < m.NRealCells; c++ {
		nodes := m.CellsNodes[c]
		etype := 2
		if len(nodes) == 4 {
			etype = 3
		}
		fmt.Fprintf(bw, "%d %d 2 %d %d", id, etype, fluidPhys, fluidPhys)
		for _, n := range nodes {
			fmt.Fprintf(bw, " %d", n+1)
		}
		fmt.Fprintf(bw, "\n")
		id++
	}
	fmt.Fprintf(bw, "$EndElements\n")

	if len(m.Comms) > 0 {
		fmt.Fprintf(bw, "$Comms\n%d\n", len(m.Comms))
		for _, c := range m.Comms {
			fmt.Fprintf(bw, "%d %d %d\n", c.Peer, len(c.SendIndices), len(c.RecvIndices))
			writeInts(bw, c.SendIndices)
			writeInts(bw, c.RecvIndices)
		}
		fmt.Fprintf(bw, "$EndComms\n")
	}
	return bw.Flush()
}

func writeInts(w io.Writer, xs []int) {
	for i, x := range xs {
		if i > 0 {
			fmt.Fprintf(w, " ")
		}
		fmt.Fprintf(w, "%d", x)
	}
	fmt.Fprintf(w, "\n")
}
