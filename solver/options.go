package solver

import "math"

// DefaultStageCoeffs is the five-stage low-storage Runge-Kutta scheme the
// driver uses unless the options name another coefficient sequence.
var DefaultStageCoeffs = []float64{0.05, 0.125, 0.25, 0.5, 1.0}

// Options controls the outer loop of a run.
type Options struct {
	MaxStep       int     // upper bound on steps, required
	MaxTime       float64 // upper bound on simulated time, 0 means unbounded
	PrintInterval int     // steps between residual prints, required
	Tolerance     float64 // convergence threshold on max(R/R0), 0 means 1e-16

	SaveTimeSeries     bool
	TimeSeriesInterval float64

	// StageCoeffs overrides the integrator's stage multipliers
	StageCoeffs []float64

	// StageBounds refreshes boundary ghost cells before every stage
	// instead of once per step
	StageBounds bool
}

func (opt *Options) withDefaults() Options {
	o := *opt
	if o.MaxTime == 0 {
		o.MaxTime = math.Inf(1)
	}
	if o.Tolerance == 0 {
		o.Tolerance = 1e-16
	}
	if len(o.StageCoeffs) == 0 {
		o.StageCoeffs = DefaultStageCoeffs
	}
	return o
}
