package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// calcResiduals fills R with the global residual norms: the square root
// of the sum over every owned, non-ghost cell on every rank of
// qt^2 * area, reduced through rank 0 and identical on all ranks on
// return.
func (s *Solver) calcResiduals(R []float64) {
	var (
		vars = s.prob.Vars
		m    = s.m
	)
	for k := range R {
		R[k] = 0
	}
	for i := 0; i < m.NRealCells; i++ {
		if m.CellsIsGhost[i] {
			continue
		}
		a := m.CellsAreas[i]
		for k := 0; k < vars; k++ {
			v := s.qt[vars*i+k]
			R[k] += v * v * a
		}
	}
	s.proc.ReduceSum(R)
	for k := range R {
		R[k] = math.Sqrt(R[k])
	}
}

// minDT collapses the local dt field to its minimum entry.
func (s *Solver) minDT() {
	min := floats.Min(s.dt)
	for i := range s.dt {
		s.dt[i] = min
	}
}

// validateDT reduces the time step to the global minimum across ranks
// and writes the winning scalar into every entry, so all cells on all
// ranks advance together.
func (s *Solver) validateDT() {
	min := s.proc.ReduceMin(s.dt[0])
	for i := range s.dt {
		s.dt[i] = min
	}
}
