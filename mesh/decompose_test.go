package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripX(t *testing.T) {
	var (
		m    = NewUnitSquare(8, 4)
		part = StripX(m, 2)
	)
	require.Len(t, part, m.NRealCells)
	counts := map[int]int{}
	for i, p := range part {
		counts[p]++
		// Strips split at x = 0.5 on this even grid
		if m.CellsCentersX[i] < 0.5 {
			assert.Equal(t, 0, p)
		} else {
			assert.Equal(t, 1, p)
		}
	}
	assert.Equal(t, 16, counts[0])
	assert.Equal(t, 16, counts[1])
}

func TestDecompose(t *testing.T) {
	var (
		g      = NewUnitSquare(8, 4)
		nparts = 2
	)
	pieces, err := Decompose(g, StripX(g, nparts), nparts)
	require.NoError(t, err)
	require.Len(t, pieces, nparts)

	totalOwned := 0
	for _, p := range pieces {
		require.NoError(t, p.Check())
		totalOwned += p.NumOwned()
	}
	assert.Equal(t, g.NRealCells, totalOwned)

	// Each strip has one neighbour: the other strip, across 4 cells
	for r, p := range pieces {
		require.Len(t, p.Comms, 1)
		c := p.Comms[0]
		assert.Equal(t, 1-r, c.Peer)
		assert.Len(t, c.SendIndices, 4)
		assert.Len(t, c.RecvIndices, 4)
	}

	// Paired channels name the same cells in the same order: the cells
	// rank 0 sends sit at the same centroids rank 1 receives into
	var (
		p0, p1 = pieces[0], pieces[1]
		c0, c1 = p0.Comms[0], p1.Comms[0]
	)
	for k := range c0.SendIndices {
		var (
			s = c0.SendIndices[k]
			r = c1.RecvIndices[k]
		)
		assert.Equal(t, p0.CellsCentersX[s], p1.CellsCentersX[r])
		assert.Equal(t, p0.CellsCentersY[s], p1.CellsCentersY[r])
		assert.False(t, p0.CellsIsGhost[s])
		assert.True(t, p1.CellsIsGhost[r])
	}
	for k := range c1.SendIndices {
		var (
			s = c1.SendIndices[k]
			r = c0.RecvIndices[k]
		)
		assert.Equal(t, p1.CellsCentersX[s], p0.CellsCentersX[r])
		assert.Equal(t, p1.CellsCentersY[s], p0.CellsCentersY[r])
	}

	// Total area of owned cells is preserved
	assert.InDelta(t, g.Area(), p0.Area()+p1.Area(), 1e-14)
}

func TestDecomposeRejectsBadAssignment(t *testing.T) {
	g := NewUnitSquare(4, 4)
	_, err := Decompose(g, []int{0, 1}, 2)
	assert.Error(t, err)

	bad := StripX(g, 2)
	bad[0] = 7
	_, err = Decompose(g, bad, 2)
	assert.Error(t, err)
}
