package euler

import (
	"math"

	"github.com/Alexsimulation/fvhyper/mesh"
)

// ConstantTimeStep returns a dt rule that fills every entry with v.
func ConstantTimeStep(v float64) func(dt, q []float64, m *mesh.Mesh) {
	return func(dt, q []float64, m *mesh.Mesh) {
		for i := range dt {
			dt[i] = v
		}
	}
}

// CFLTimeStep is the spectral-radius rule: each cell accumulates the
// largest flux-Jacobian eigenvalue times edge length over its edges and
// takes dt = CFL * area / sum.
func (ph Physics) CFLTimeStep(dt, q []float64, m *mesh.Mesh) {
	const vars = 4
	for i := range dt {
		dt[i] = 0
	}
	for e := range m.EdgesLengths {
		var (
			i, j = m.EdgesCells[e][0], m.EdgesCells[e][1]
			le   = m.EdgesLengths[e]
			nx   = m.EdgesNormalsX[e]
			ny   = m.EdgesNormalsY[e]
			qi   = q[vars*i : vars*i+vars]
			qj   = q[vars*j : vars*j+vars]
		)
		eigI := ph.SoundSpeed(qi) + math.Abs(qi[1]/qi[0]*nx+qi[2]/qi[0]*ny)
		eigJ := ph.SoundSpeed(qj) + math.Abs(qj[1]/qj[0]*nx+qj[2]/qj[0]*ny)
		eig := math.Max(eigI, eigJ)
		for k := 0; k < vars; k++ {
			dt[vars*i+k] += eig * le
			dt[vars*j+k] += eig * le
		}
	}
	for i := 0; i < m.NumCells(); i++ {
		for k := 0; k < vars; k++ {
			dt[vars*i+k] = ph.CFL * m.CellsAreas[i] / dt[vars*i+k]
		}
	}
}

// Michalak is the piecewise-cubic limiter function with threshold 2: the
// identity near zero, saturating smoothly to one.
func Michalak(y float64) float64 {
	const yt = 2.0
	if y >= yt {
		return 1
	}
	var (
		a = 1/(yt*yt) - 2/(yt*yt*yt)
		b = -1.5*a*yt - 0.5/yt
	)
	return a*y*y*y + b*y*y + y
}

// FirstOrder disables reconstruction entirely.
func FirstOrder(y float64) float64 { return 0 }
