// Package euler binds the compressible Euler equations to the solver
// engine: the Roe flux, the characteristic and wall boundary kernels, the
// CFL time-step rule and the canonical shock-tube and forward-step cases.
package euler

import "math"

// Physics groups the run's numerical constants. It is passed by value
// into every kernel closure, so independent problem instances never share
// state.
type Physics struct {
	Gamma float64
	CFL   float64
	Mach  float64

	// Free-stream reference state and pressure used by the
	// characteristic inlet/outlet kernel
	Qinf   [4]float64
	PBound float64
}

// NewFreeStream builds the physics of a free stream at the given Mach
// number with unit sound speed: rho = gamma, p = 1.
func NewFreeStream(gamma, cfl, mach float64) Physics {
	ph := Physics{Gamma: gamma, CFL: cfl, Mach: mach, PBound: 1}
	rho := gamma
	ph.Qinf = [4]float64{
		rho,
		rho * mach,
		0,
		1/(gamma-1) + 0.5*rho*mach*mach,
	}
	return ph
}

// Pressure computes the static pressure of a conserved state.
func (ph Physics) Pressure(q []float64) float64 {
	return (ph.Gamma - 1) * (q[3] - 0.5/q[0]*(q[1]*q[1]+q[2]*q[2]))
}

// SoundSpeed computes the local speed of sound of a conserved state.
func (ph Physics) SoundSpeed(q []float64) float64 {
	return math.Sqrt(ph.Gamma * ph.Pressure(q) / q[0])
}

// MachNumber computes the local Mach number of a conserved state.
func (ph Physics) MachNumber(q []float64) float64 {
	unorm := math.Hypot(q[1], q[2]) / q[0]
	return unorm / ph.SoundSpeed(q)
}
