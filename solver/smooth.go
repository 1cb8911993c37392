package solver

import (
	"github.com/james-bowman/sparse"

	"github.com/Alexsimulation/fvhyper/mesh"
)

// smoother applies implicit residual smoothing: a few weighted-Jacobi
// sweeps of (I + eps*L) qt_smoothed = qt over the owned-cell adjacency
// graph, which relaxes the explicit stability bound at steady state.
// The adjacency is assembled once into a CSR matrix at construction.
type smoother struct {
	adj    *sparse.CSR
	deg    []float64
	n      int
	eps    float64
	sweeps int
	x, acc []float64
}

func newSmoother(m *mesh.Mesh) *smoother {
	n := m.NumCells()
	dok := sparse.NewDOK(n, n)
	deg := make([]float64, n)
	owned := func(c int) bool { return c < m.NRealCells && !m.CellsIsGhost[c] }
	for e := range m.EdgesLengths {
		i, j := m.EdgesCells[e][0], m.EdgesCells[e][1]
		if i == j || !owned(i) || !owned(j) {
			continue
		}
		dok.Set(i, j, 1)
		dok.Set(j, i, 1)
		deg[i]++
		deg[j]++
	}
	return &smoother{
		adj:    dok.ToCSR(),
		deg:    deg,
		n:      n,
		eps:    0.5,
		sweeps: 2,
	}
}

// apply smooths qt in place. Halo and boundary ghost cells are excluded
// from the stencil and keep their zero qt.
func (sm *smoother) apply(qt []float64, vars int) {
	if len(sm.x) != len(qt) {
		sm.x = make([]float64, len(qt))
		sm.acc = make([]float64, len(qt))
	}
	copy(sm.x, qt)
	for sweep := 0; sweep < sm.sweeps; sweep++ {
		for i := range sm.acc {
			sm.acc[i] = 0
		}
		sm.adj.DoNonZero(func(i, j int, v float64) {
			for k := 0; k < vars; k++ {
				sm.acc[vars*i+k] += v * sm.x[vars*j+k]
			}
		})
		for c := 0; c < sm.n; c++ {
			w := 1 / (1 + sm.eps*sm.deg[c])
			for k := 0; k < vars; k++ {
				sm.x[vars*c+k] = (qt[vars*c+k] + sm.eps*sm.acc[vars*c+k]) * w
			}
		}
	}
	copy(qt, sm.x)
}
