package euler

import (
	"math"

	"github.com/Alexsimulation/fvhyper/mesh"
	"github.com/Alexsimulation/fvhyper/solver"
)

var varNames = []string{"rho", "rhou", "rhov", "rhoe"}

// SodShockTube builds the Sod problem on the unit square: left state
// rho=1, p=1 and right state rho=0.125, p=0.1 split at x=0.5, zero-flux
// boundaries, fixed dt. First order, global time stepping.
func SodShockTube() (*solver.Problem, Physics) {
	ph := Physics{Gamma: 1.4}
	prob := &solver.Problem{
		Vars:     4,
		VarNames: varNames,
		Flags: solver.Flags{
			GlobalDT: true,
		},
		InitialSolution: func(q []float64, m *mesh.Mesh) {
			for i := 0; i < m.NumCells(); i++ {
				if m.CellsCentersX[i] < 0.5 {
					q[4*i] = 1
					q[4*i+1] = 0
					q[4*i+2] = 0
					q[4*i+3] = 1 / (ph.Gamma - 1)
				} else {
					q[4*i] = 0.125
					q[4*i+1] = 0
					q[4*i+2] = 0
					q[4*i+3] = 0.1 / (ph.Gamma - 1)
				}
			}
		},
		Flux:        NewRoeFlux(ph),
		CalcDT:      ConstantTimeStep(2e-5),
		LimiterFunc: FirstOrder,
		Boundaries: map[string]solver.BoundaryFunc{
			"wall": WallCopy,
		},
		ExtraScalars: map[string]func(out, q []float64){
			"p": func(out, q []float64) { out[0] = ph.Pressure(q) },
		},
		ExtraVectors: map[string]func(out, q []float64){
			"U": Velocity,
		},
	}
	return prob, ph
}

// ForwardStep builds the Mach-3 forward step: uniform free stream
// initial condition, characteristic inlet/outlet, slip walls, CFL-bound
// global time stepping.
func ForwardStep() (*solver.Problem, Physics) {
	ph := NewFreeStream(1.4, 1.5, 3)
	inletOutlet := NewInletOutlet(ph)
	prob := &solver.Problem{
		Vars:     4,
		VarNames: varNames,
		Flags: solver.Flags{
			GlobalDT: true,
		},
		InitialSolution: func(q []float64, m *mesh.Mesh) {
			for i := 0; i < m.NumCells(); i++ {
				copy(q[4*i:4*i+4], ph.Qinf[:])
			}
		},
		Flux:        NewRoeFlux(ph),
		CalcDT:      ph.CFLTimeStep,
		LimiterFunc: Michalak,
		Boundaries: map[string]solver.BoundaryFunc{
			"wall":   Wall,
			"inlet":  inletOutlet,
			"outlet": inletOutlet,
		},
		ExtraScalars: map[string]func(out, q []float64){
			"p": func(out, q []float64) { out[0] = ph.Pressure(q) },
			"mach": func(out, q []float64) {
				out[0] = ph.MachNumber(q)
			},
		},
		ExtraVectors: map[string]func(out, q []float64){
			"U": Velocity,
		},
	}
	return prob, ph
}

// Velocity recovers the velocity vector from the conserved state.
func Velocity(out, q []float64) {
	out[0] = q[1] / q[0]
	out[1] = q[2] / q[0]
}

// TotalMass integrates rho over the owned cells of a rank's piece; the
// conservation tests watch this across steps.
func TotalMass(q []float64, m *mesh.Mesh) (mass float64) {
	for i := 0; i < m.NRealCells; i++ {
		if !m.CellsIsGhost[i] {
			mass += q[4*i] * m.CellsAreas[i]
		}
	}
	return
}

// IsFinite reports whether every owned entry of q is finite.
func IsFinite(q []float64, m *mesh.Mesh) bool {
	for i := 0; i < m.NRealCells; i++ {
		for k := 0; k < 4; k++ {
			if math.IsNaN(q[4*i+k]) || math.IsInf(q[4*i+k], 0) {
				return false
			}
		}
	}
	return true
}
