// Package sod evaluates the analytic solution of the Sod shock tube,
// used by the end-to-end solver tests as the reference profile.
package sod

import "math"

// The canonical Sod states: (rho, p) = (1, 1) left of x = 0.5 and
// (0.125, 0.1) right of it, both at rest, gamma = 1.4.
const (
	Gamma = 1.4
	RhoL  = 1.0
	PL    = 1.0
	RhoR  = 0.125
	PR    = 0.1
	X0    = 0.5
)

// Solution is the self-similar wave structure at one time: rarefaction
// head X1 and tail X2, contact X3 and shock X4, with the star-region
// states between them.
type Solution struct {
	T                  float64
	PStar, UStar       float64
	RhoStarL, RhoStarR float64
	X1, X2, X3, X4     float64
}

// Solve computes the wave structure at time t. The star pressure is the
// root of the pressure function connecting the right shock and the left
// rarefaction, found by secant iteration.
func Solve(t float64) Solution {
	var (
		mu2   = (Gamma - 1) / (Gamma + 1)
		cL    = math.Sqrt(Gamma * PL / RhoL)
		pStar = fzero(pressureFunc, math.Pi)
		uStar = 2 * math.Sqrt(Gamma) / (Gamma - 1) * (1 - math.Pow(pStar, (Gamma-1)/(2*Gamma)))
		rhoSR = RhoR * (pStar/PR + mu2) / (1 + mu2*pStar/PR)
		rhoSL = RhoL * math.Pow(pStar/PL, 1/Gamma)
		vSh   = uStar * (rhoSR / RhoR) / (rhoSR/RhoR - 1)
		c2    = cL - 0.5*(Gamma-1)*uStar
	)
	return Solution{
		T:        t,
		PStar:    pStar,
		UStar:    uStar,
		RhoStarL: rhoSL,
		RhoStarR: rhoSR,
		X1:       X0 - cL*t,
		X2:       X0 + (uStar-c2)*t,
		X3:       X0 + uStar*t,
		X4:       X0 + vSh*t,
	}
}

// Sample evaluates density, velocity and pressure at position x.
func (s Solution) Sample(x float64) (rho, u, p float64) {
	var (
		mu2 = (Gamma - 1) / (Gamma + 1)
		cL  = math.Sqrt(Gamma * PL / RhoL)
	)
	switch {
	case x < s.X1:
		return RhoL, 0, PL
	case x <= s.X2:
		c := mu2*(X0-x)/s.T + (1-mu2)*cL
		rho = RhoL * math.Pow(c/cL, 2/(Gamma-1))
		p = PL * math.Pow(rho/RhoL, Gamma)
		u = (1 - mu2) * ((x-X0)/s.T + cL)
		return rho, u, p
	case x <= s.X3:
		return s.RhoStarL, s.UStar, s.PStar
	case x <= s.X4:
		return s.RhoStarR, s.UStar, s.PStar
	default:
		return RhoR, 0, PR
	}
}

// Energy converts a sampled state to the conserved total energy density.
func Energy(rho, u, p float64) float64 {
	return p/(Gamma-1) + 0.5*rho*u*u
}

func pressureFunc(p float64) float64 {
	mu2 := (Gamma - 1) / (Gamma + 1)
	return (p-PR)*math.Sqrt((1-mu2)*(1-mu2)/(RhoR*(p+mu2*PR))) -
		2*math.Sqrt(Gamma)/(Gamma-1)*(1-math.Pow(p, (Gamma-1)/(2*Gamma)))
}

func fzero(f func(float64) float64, start float64) float64 {
	const tol = 1e-10
	var (
		x0 = start / 2
		x1 = start
		f0 = f(x0)
	)
	for i := 0; i < 100; i++ {
		f1 := f(x1)
		if math.Abs(f1) < tol {
			break
		}
		x2 := x1 - f1*(x1-x0)/(f1-f0)
		x0, f0 = x1, f1
		x1 = x2
	}
	return x1
}
