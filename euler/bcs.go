package euler

import (
	"github.com/Alexsimulation/fvhyper/solver"
)

// Wall is the slip wall kernel: the velocity is reflected about the edge
// normal, density and total energy pass through, so the normal momentum
// flux through the wall vanishes for a symmetric flux.
func Wall(b, q []float64, n [2]float64) {
	un := n[0]*q[1] + n[1]*q[2]
	b[0] = q[0]
	b[1] = q[1] - 2*n[0]*un
	b[2] = q[2] - 2*n[1]*un
	b[3] = q[3]
}

// WallCopy is the zero-flux kernel: the ghost cell mirrors the interior
// state unchanged.
func WallCopy(b, q []float64, n [2]float64) {
	copy(b[:4], q[:4])
}

// NewInletOutlet returns the characteristic inlet/outlet kernel. The
// branch is chosen from the local Mach number and the sign of the normal
// velocity: supersonic flow copies the prescribed or interior state
// whole, subsonic flow couples the prescribed state with the interior
// pressure (inlet) or the interior state with the prescribed pressure
// (outlet) along the outgoing characteristic.
func NewInletOutlet(ph Physics) solver.BoundaryFunc {
	var (
		gamma = ph.Gamma
		bv    = ph.Qinf
		pa    = ph.PBound
	)
	return func(b, q []float64, n [2]float64) {
		var (
			u     = q[1] / q[0]
			v     = q[2] / q[0]
			uDotN = u*n[0] + v*n[1]
			p     = ph.Pressure(q)
			c     = ph.SoundSpeed(q)
			mach  = ph.MachNumber(q)
		)
		if mach > 1 {
			if uDotN < 0 {
				// Supersonic inlet
				copy(b[:4], bv[:])
			} else {
				// Supersonic outlet
				copy(b[:4], q[:4])
			}
			return
		}
		var (
			pd       = p
			rho0, c0 = q[0], c
			ud, vd   = u, v
		)
		if uDotN < 0 {
			// Subsonic inlet: prescribed state at the interior pressure
			pb := pd
			b[0] = bv[0]
			b[1] = bv[1]
			b[2] = bv[2]
			b[3] = pb/(gamma-1) + 0.5/b[0]*(b[1]*b[1]+b[2]*b[2])
		} else {
			// Subsonic outlet: interior state corrected toward the
			// prescribed pressure along the outgoing characteristic
			pb := pa
			b[0] = q[0] + (pb-pd)/(c0*c0)
			b[1] = b[0] * (ud + n[0]*(pd-pb)/(rho0*c0))
			b[2] = b[0] * (vd + n[1]*(pd-pb)/(rho0*c0))
			b[3] = pb/(gamma-1) + 0.5/b[0]*(b[1]*b[1]+b[2]*b[2])
		}
	}
}
