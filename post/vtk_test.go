package post

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexsimulation/fvhyper/euler"
	"github.com/Alexsimulation/fvhyper/mesh"
)

func TestWriteVTK(t *testing.T) {
	var (
		prob, _ = euler.SodShockTube()
		m       = mesh.NewUnitSquare(4, 3)
		q       = make([]float64, 4*m.NumCells())
	)
	prob.InitialSolution(q, m)

	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, q, prob, m))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# vtk DataFile Version 3.0\n"))
	assert.Contains(t, out, "DATASET UNSTRUCTURED_GRID")
	assert.Contains(t, out, fmt.Sprintf("POINTS %d double", len(m.NodesX)))
	assert.Contains(t, out, "CELLS 12 60") // 12 quads, 5 ints each
	assert.Contains(t, out, "CELL_DATA 12")
	for _, name := range prob.VarNames {
		assert.Contains(t, out, "SCALARS "+name+" double")
	}
	assert.Contains(t, out, "SCALARS p double")
	assert.Contains(t, out, "VECTORS U double")

	// Quad cell type for every cell
	assert.Contains(t, out, "CELL_TYPES 12")
	typesBlock := out[strings.Index(out, "CELL_TYPES 12"):]
	typesBlock = typesBlock[:strings.Index(typesBlock, "CELL_DATA")]
	assert.Equal(t, 12, strings.Count(typesBlock, "9"))
}

func TestWriteVTKSkipsGhostCells(t *testing.T) {
	var (
		prob, _ = euler.SodShockTube()
		g       = mesh.NewUnitSquare(6, 2)
	)
	pieces, err := mesh.Decompose(g, mesh.StripX(g, 2), 2)
	require.NoError(t, err)

	m := pieces[0]
	q := make([]float64, 4*m.NumCells())
	prob.InitialSolution(q, m)

	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, q, prob, m))
	// Only the 6 owned cells are emitted, not the halo column
	assert.Contains(t, buf.String(), "CELL_DATA 6")
}
