package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alexsimulation/fvhyper/mesh"
)

// fillLinear writes the exact linear field a*x + b*y (first variable) and
// c*x + d*y (second) into every cell, ghost mirrors included.
func fillLinear(q []float64, m *mesh.Mesh, a, b, c, d float64) {
	for i := 0; i < m.NumCells(); i++ {
		x, y := m.CellsCentersX[i], m.CellsCentersY[i]
		q[2*i] = a*x + b*y
		q[2*i+1] = c*x + d*y
	}
}

func TestGradientsExactForLinearFields(t *testing.T) {
	var (
		m = mesh.NewUnitSquare(8, 6)
		s = newTestSolver(t, advectionProblem(1, 0, true), m)
		q = make([]float64, 2*m.NumCells())
	)
	fillLinear(q, m, 1.5, -2.5, 0.25, 4)
	s.calcGradients(q)
	for i := 0; i < m.NRealCells; i++ {
		if m.CellsIsGhost[i] {
			continue
		}
		assert.InDelta(t, 1.5, s.gx[2*i], 1e-12)
		assert.InDelta(t, -2.5, s.gy[2*i], 1e-12)
		assert.InDelta(t, 0.25, s.gx[2*i+1], 1e-12)
		assert.InDelta(t, 4.0, s.gy[2*i+1], 1e-12)
	}
}

func TestGradientsZeroOnGhostMirrors(t *testing.T) {
	var (
		m = mesh.NewUnitSquare(5, 5)
		s = newTestSolver(t, advectionProblem(1, 0, true), m)
		q = make([]float64, 2*m.NumCells())
	)
	fillLinear(q, m, 2, 3, -1, 1)
	s.calcGradients(q)
	for i := m.NRealCells; i < m.NumCells(); i++ {
		assert.Zero(t, s.gx[2*i])
		assert.Zero(t, s.gy[2*i])
		assert.Zero(t, s.gx[2*i+1])
		assert.Zero(t, s.gy[2*i+1])
	}
}

// Swapping the two cells of every interior edge, with the normal negated
// to stay outward from the new first cell, must leave the accumulated
// gradients unchanged: the edge contribution is antisymmetric.
func TestGradientsEdgeOrientationInvariance(t *testing.T) {
	var (
		m1 = mesh.NewUnitSquare(6, 6)
		m2 = mesh.NewUnitSquare(6, 6)
	)
	for e := range m2.EdgesLengths {
		i, j := m2.EdgesCells[e][0], m2.EdgesCells[e][1]
		if j >= m2.NRealCells || i == j {
			continue
		}
		m2.EdgesCells[e] = [2]int{j, i}
		m2.EdgesNormalsX[e] = -m2.EdgesNormalsX[e]
		m2.EdgesNormalsY[e] = -m2.EdgesNormalsY[e]
	}
	var (
		s1 = newTestSolver(t, advectionProblem(1, 0, true), m1)
		s2 = newTestSolver(t, advectionProblem(1, 0, true), m2)
		q  = make([]float64, 2*m1.NumCells())
	)
	prob := advectionProblem(1, 0, true)
	prob.InitialSolution(q, m1)
	s1.calcGradients(q)
	s2.calcGradients(q)
	for i := range s1.gx {
		assert.InDelta(t, s1.gx[i], s2.gx[i], 1e-14)
		assert.InDelta(t, s1.gy[i], s2.gy[i], 1e-14)
	}
}
