package solver

import (
	"errors"
	"fmt"
	"math"
)

// ErrNaN reports that the residual norms stopped being finite; the run
// is unrecoverable and terminates with a distinguishable error.
var ErrNaN = errors.New("solver: residuals are no longer finite")

// Writer receives the solution at emission points: the time-series
// interval during the run and the final state. A nil writer disables
// output.
type Writer interface {
	Write(q []float64, step int, time float64) error
}

// Run integrates the problem until the step bound, the time bound or the
// residual tolerance is reached. Rank 0 prints a CSV residual table at
// every print interval. On return Q holds the final solution.
func (s *Solver) Run(w Writer) error {
	var (
		vars = s.prob.Vars
		opt  = s.opt
	)
	s.prob.InitialSolution(s.Q, s.m)
	s.Step = 0
	s.Time = 0

	if s.proc.Rank == 0 {
		fmt.Printf("step, time")
		for _, name := range s.prob.VarNames {
			fmt.Printf(", R(%s)", name)
		}
		fmt.Printf("\n")
	}

	for k := range s.R {
		s.R[k] = 1
	}
	nextEmit := opt.TimeSeriesInterval

	for {
		rmax := 1.0
		if s.Step > 0 {
			rmax = 0
			for _, r := range s.R {
				rmax = math.Max(rmax, r)
			}
		}
		if math.IsNaN(rmax) {
			return ErrNaN
		}
		if s.Step >= opt.MaxStep || s.Time >= opt.MaxTime || rmax < opt.Tolerance {
			break
		}

		// Refresh ghost cells, then the time step
		s.UpdateBounds(s.Q)
		s.prob.CalcDT(s.dt, s.Q, s.m)
		s.UpdateComms(s.dt)
		if s.prob.Flags.GlobalDT {
			s.minDT()
			s.validateDT()
		}

		// Multi-stage update on the stage accumulator
		copy(s.qs, s.Q)
		for _, a := range opt.StageCoeffs {
			if opt.StageBounds {
				s.UpdateBounds(s.qs)
			}
			s.completeCalcQT(s.qs)
			s.updateCells(s.qs, s.Q, a)
			s.UpdateComms(s.qs)
		}
		copy(s.Q, s.qs)

		// Residual reporting against the step-0 norms
		if s.Step == 0 {
			s.calcResiduals(s.R0)
			for k := 0; k < vars; k++ {
				s.R[k] = s.R0[k]
				if s.R0[k] > 0 {
					s.R[k] = 1
				}
			}
		} else if s.Step%opt.PrintInterval == 0 || opt.Tolerance > 1.01e-16 {
			s.calcResiduals(s.R)
			for k := 0; k < vars; k++ {
				if s.R0[k] > 0 {
					s.R[k] /= s.R0[k]
				}
			}
			if s.Step%opt.PrintInterval == 0 && s.proc.Rank == 0 {
				fmt.Printf("%d, %g", s.Step, s.Time)
				for k := 0; k < vars; k++ {
					fmt.Printf(", %g", s.R[k])
				}
				fmt.Printf("\n")
			}
		}

		s.Step++
		if s.prob.Flags.GlobalDT {
			s.Time += s.dt[0]
		}

		if opt.SaveTimeSeries && w != nil && opt.TimeSeriesInterval > 0 {
			for s.Time >= nextEmit {
				if err := w.Write(s.Q, s.Step, s.Time); err != nil {
					return err
				}
				nextEmit += opt.TimeSeriesInterval
			}
		}
	}

	if w != nil {
		return w.Write(s.Q, s.Step, s.Time)
	}
	return nil
}
