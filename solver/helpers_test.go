package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alexsimulation/fvhyper/mesh"
	"github.com/Alexsimulation/fvhyper/parallel"
)

// advectionProblem is the two-variable linear advection system used by
// the engine tests: an upwind flux with optional limited reconstruction,
// zero-gradient walls and a fixed time step.
func advectionProblem(ax, ay float64, secondOrder bool) *Problem {
	flags := Flags{GlobalDT: true}
	if secondOrder {
		flags.DoCalcGradients = true
		flags.DoCalcLimiters = true
	}
	return &Problem{
		Vars:     2,
		VarNames: []string{"qa", "qb"},
		Flags:    flags,
		InitialSolution: func(q []float64, m *mesh.Mesh) {
			for i := 0; i < m.NumCells(); i++ {
				x, y := m.CellsCentersX[i], m.CellsCentersY[i]
				q[2*i] = math.Sin(2*math.Pi*x) * math.Cos(2*math.Pi*y)
				q[2*i+1] = 1 + 0.5*math.Cos(2*math.Pi*(x+y))
			}
		},
		Flux: func(f, qi, qj, gxi, gyi, gxj, gyj, limi, limj []float64,
			n, di, dj [2]float64, area, length float64) {
			an := ax*n[0] + ay*n[1]
			for k := 0; k < 2; k++ {
				qL := qi[k] + limi[k]*(gxi[k]*di[0]+gyi[k]*di[1])
				qR := qj[k] + limj[k]*(gxj[k]*dj[0]+gyj[k]*dj[1])
				f[k] = 0.5*an*(qL+qR) - 0.5*math.Abs(an)*(qR-qL)
			}
		},
		CalcDT: func(dt, q []float64, m *mesh.Mesh) {
			for i := range dt {
				dt[i] = 1e-3
			}
		},
		LimiterFunc: func(y float64) float64 {
			return math.Max(0, math.Min(1, y))
		},
		Boundaries: map[string]BoundaryFunc{
			"wall": func(b, q []float64, n [2]float64) {
				copy(b[:2], q[:2])
			},
		},
	}
}

func newTestSolver(t *testing.T, prob *Problem, m *mesh.Mesh) *Solver {
	t.Helper()
	pool := parallel.NewPool(1)
	s, err := New(prob, m, pool.Proc(0), Options{MaxStep: 100, PrintInterval: 1 << 30})
	require.NoError(t, err)
	return s
}
