package euler

import (
	"math"

	"github.com/Alexsimulation/fvhyper/solver"
)

// NewRoeFlux returns the Roe flux-difference-splitting kernel: the
// average of the two physical fluxes minus the upwind dissipation built
// from Roe-averaged variables, with the eigenvalue bounds of the
// expansion-shock cure applied to the acoustic waves.
//
// Both states are reconstructed linearly to the edge center with the
// limited gradients before the flux is formed; with gradients or
// limiters disabled the reconstruction term vanishes and the kernel is
// first order.
func NewRoeFlux(ph Physics) solver.FluxFunc {
	gamma := ph.Gamma
	return func(f, qi, qj, gxi, gyi, gxj, gyj, limi, limj []float64,
		n, di, dj [2]float64, area, length float64) {

		var qL, qR [4]float64
		for k := 0; k < 4; k++ {
			qL[k] = qi[k] + limi[k]*(gxi[k]*di[0]+gyi[k]*di[1])
			qR[k] = qj[k] + limj[k]*(gxj[k]*dj[0]+gyj[k]*dj[1])
		}

		// Central flux
		var (
			pL = (gamma - 1) * (qL[3] - 0.5/qL[0]*(qL[1]*qL[1]+qL[2]*qL[2]))
			pR = (gamma - 1) * (qR[3] - 0.5/qR[0]*(qR[1]*qR[1]+qR[2]*qR[2]))
			VL = (qL[1]*n[0] + qL[2]*n[1]) / qL[0]
			VR = (qR[1]*n[0] + qR[2]*n[1]) / qR[0]
		)
		f[0] = (qL[0]*VL + qR[0]*VR) * 0.5
		f[1] = (qL[1]*VL + pL*n[0] + qR[1]*VR + pR*n[0]) * 0.5
		f[2] = (qL[2]*VL + pL*n[1] + qR[2]*VR + pR*n[1]) * 0.5
		f[3] = ((qL[3]+pL)*VL + (qR[3]+pR)*VR) * 0.5

		// Roe averages
		var (
			uL, vL = qL[1] / qL[0], qL[2] / qL[0]
			uR, vR = qR[1] / qR[0], qR[2] / qR[0]
			srhoL  = math.Sqrt(qL[0])
			srhoR  = math.Sqrt(qR[0])
			rho    = srhoL * srhoR
			u      = (uL*srhoL + uR*srhoR) / (srhoL + srhoR)
			v      = (vL*srhoL + vR*srhoR) / (srhoL + srhoR)
			h      = ((qL[3]+pL)/qL[0]*srhoL + (qR[3]+pR)/qR[0]*srhoR) / (srhoL + srhoR)
			q2     = u*u + v*v
			c      = math.Sqrt((gamma - 1) * (h - 0.5*q2))
			V      = u*n[0] + v*n[1]
		)

		// Eigenvalue bounds against the expansion shock
		var (
			lambdaCM = math.Abs(math.Min(V-c, VL-c))
			lambdaC  = math.Abs(V)
			lambdaCP = math.Abs(math.Max(V+c, VR+c))
		)

		var (
			kF1    = lambdaCM * ((pR - pL) - rho*c*(VR-VL)) / (2 * c * c)
			kF234  = lambdaC * ((qR[0] - qL[0]) - (pR-pL)/(c*c))
			kF234s = lambdaC * rho
			kF5    = lambdaCP * ((pR - pL) + rho*c*(VR-VL)) / (2 * c * c)
		)

		f[0] -= 0.5 * (kF1 + kF234 + kF5)
		f[1] -= 0.5 * (kF1*(u-c*n[0]) + kF234*u + kF234s*(uR-uL-(VR-VL)*n[0]) + kF5*(u+c*n[0]))
		f[2] -= 0.5 * (kF1*(v-c*n[1]) + kF234*v + kF234s*(vR-vL-(VR-VL)*n[1]) + kF5*(v+c*n[1]))
		f[3] -= 0.5 * (kF1*(h-c*V) + kF234*q2*0.5 + kF234s*(u*(uR-uL)+v*(vR-vL)-V*(VR-VL)) + kF5*(h+c*V))
	}
}
