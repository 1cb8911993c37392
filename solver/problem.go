package solver

import (
	"github.com/Alexsimulation/fvhyper/mesh"
)

// BoundaryFunc writes the ghost-cell state b from the owned-cell state q
// and the outward edge normal n.
type BoundaryFunc func(b, q []float64, n [2]float64)

// FluxFunc evaluates the numerical flux across one edge. qi, qj are the
// adjacent states, gx/gy and lim their gradients and limiters, n the unit
// normal from i to j, di/dj the vectors from each centroid to the edge
// center, area the area of cell i and length the edge length. The V flux
// components are written to f.
type FluxFunc func(f, qi, qj, gxi, gyi, gxj, gyj, limi, limj []float64,
	n, di, dj [2]float64, area, length float64)

// Flags selects the engine phases a problem wants. A disabled phase is
// skipped and its downstream consumers see zeros.
type Flags struct {
	DoCalcGradients    bool
	DoCalcLimiters     bool
	LinearInterpolate  bool
	DiffusiveGradients bool
	GlobalDT           bool
	SmoothResiduals    bool
}

// Problem is the user binding the engine integrates: the conserved
// variables, the physics kernels and the phase selection. Boundary
// kernels are keyed by the mesh's boundary tag names and resolved to a
// tag-indexed table at solver construction.
type Problem struct {
	Vars     int
	VarNames []string
	Flags    Flags

	InitialSolution func(q []float64, m *mesh.Mesh)
	Flux            FluxFunc
	CalcDT          func(dt, q []float64, m *mesh.Mesh)
	LimiterFunc     func(y float64) float64
	Boundaries      map[string]BoundaryFunc

	// Post-processing kernels consumed by the output writers only
	ExtraScalars map[string]func(out, q []float64)
	ExtraVectors map[string]func(out, q []float64)
}

// GradientForDiffusion is the edge-local gradient estimate available to
// flux kernels of diffusive problems: the difference quotient of the
// first variable of qi, qj projected on the edge normal.
func GradientForDiffusion(grad, qi, qj []float64, n [2]float64, area, length float64) {
	grad[0] = (qj[0] - qi[0]) * n[0] * length / area
	grad[1] = (qj[0] - qi[0]) * n[1] * length / area
}
