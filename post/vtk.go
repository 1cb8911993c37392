// Package post writes solver output: legacy ASCII VTK unstructured-grid
// files per rank, and a ParaView .series index for time-series runs.
package post

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Alexsimulation/fvhyper/mesh"
	"github.com/Alexsimulation/fvhyper/solver"
)

// WriteVTKFile writes the solution of one rank to <name>_<rank+1>.vtk.
func WriteVTKFile(name string, q []float64, prob *solver.Problem, m *mesh.Mesh, rank int) error {
	fname := fmt.Sprintf("%s_%d.vtk", name, rank+1)
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer f.Close()
	if err := WriteVTK(f, q, prob, m); err != nil {
		return fmt.Errorf("post: %s: %w", fname, err)
	}
	return nil
}

// WriteVTK emits the owned, non-ghost cells of m with cell data for every
// conserved variable and every extra scalar and vector kernel.
func WriteVTK(w io.Writer, q []float64, prob *solver.Problem, m *mesh.Mesh) error {
	var (
		bw   = bufio.NewWriter(w)
		vars = prob.Vars
	)
	var cells []int
	size := 0
	for c := 0; c < m.NRealCells && c < len(m.CellsNodes); c++ {
		if !m.CellsIsGhost[c] {
			cells = append(cells, c)
			size += len(m.CellsNodes[c]) + 1
		}
	}
	if len(cells) == 0 {
		return fmt.Errorf("mesh carries no cell connectivity")
	}

	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n")
	fmt.Fprintf(bw, "fvhyper solution\n")
	fmt.Fprintf(bw, "ASCII\n")
	fmt.Fprintf(bw, "DATASET UNSTRUCTURED_GRID\n")

	fmt.Fprintf(bw, "POINTS %d double\n", len(m.NodesX))
	for i := range m.NodesX {
		fmt.Fprintf(bw, "%g %g 0\n", m.NodesX[i], m.NodesY[i])
	}

	fmt.Fprintf(bw, "CELLS %d %d\n", len(cells), size)
	for _, c := range cells {
		fmt.Fprintf(bw, "%d", len(m.CellsNodes[c]))
		for _, n := range m.CellsNodes[c] {
			fmt.Fprintf(bw, " %d", n)
		}
		fmt.Fprintf(bw, "\n")
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", len(cells))
	for _, c := range cells {
		if len(m.CellsNodes[c]) == 4 {
			fmt.Fprintf(bw, "9\n") // VTK_QUAD
		} else {
			fmt.Fprintf(bw, "5\n") // VTK_TRIANGLE
		}
	}

	fmt.Fprintf(bw, "CELL_DATA %d\n", len(cells))
	for k := 0; k < vars; k++ {
		fmt.Fprintf(bw, "SCALARS %s double\nLOOKUP_TABLE default\n", prob.VarNames[k])
		for _, c := range cells {
			fmt.Fprintf(bw, "%g\n", q[vars*c+k])
		}
	}
	var out [2]float64
	for _, name := range sortedKeys(prob.ExtraScalars) {
		fn := prob.ExtraScalars[name]
		fmt.Fprintf(bw, "SCALARS %s double\nLOOKUP_TABLE default\n", name)
		for _, c := range cells {
			fn(out[:1], q[vars*c:vars*c+vars])
			fmt.Fprintf(bw, "%g\n", out[0])
		}
	}
	for _, name := range sortedKeys(prob.ExtraVectors) {
		fn := prob.ExtraVectors[name]
		fmt.Fprintf(bw, "VECTORS %s double\n", name)
		for _, c := range cells {
			fn(out[:2], q[vars*c:vars*c+vars])
			fmt.Fprintf(bw, "%g %g 0\n", out[0], out[1])
		}
	}
	return bw.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
