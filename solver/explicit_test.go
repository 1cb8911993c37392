package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexsimulation/fvhyper/mesh"
	"github.com/Alexsimulation/fvhyper/parallel"
)

func TestLimiterRange(t *testing.T) {
	var (
		m = mesh.NewUnitSquare(10, 10)
		s = newTestSolver(t, advectionProblem(1, 0.5, true), m)
	)
	s.prob.InitialSolution(s.Q, m)
	s.UpdateBounds(s.Q)
	s.calcGradients(s.Q)
	s.calcLimiters(s.Q)
	for i := 0; i < m.NRealCells; i++ {
		if m.CellsIsGhost[i] {
			continue
		}
		for k := 0; k < 2; k++ {
			lim := s.limiters[2*i+k]
			assert.GreaterOrEqual(t, lim, 0.0)
			assert.LessOrEqual(t, lim, 1.0)
		}
	}
}

func TestLimiterUnityForLinearField(t *testing.T) {
	// A smooth linear field must stay unlimited: the bounds grow with the
	// cell size fade and the limiter evaluates to one everywhere
	var (
		m = mesh.NewUnitSquare(8, 8)
		s = newTestSolver(t, advectionProblem(1, 0, true), m)
		q = make([]float64, 2*m.NumCells())
	)
	fillLinear(q, m, 1e-9, 2e-9, -1e-9, 1e-9)
	s.calcGradients(q)
	s.calcLimiters(q)
	for i := 0; i < m.NRealCells; i++ {
		if m.CellsIsGhost[i] {
			continue
		}
		assert.InDelta(t, 1.0, s.limiters[2*i], 1e-12)
	}
}

func TestGhostTimeDerivativesAreZero(t *testing.T) {
	var (
		m = mesh.NewUnitSquare(9, 5)
		s = newTestSolver(t, advectionProblem(1, -0.25, true), m)
	)
	s.prob.InitialSolution(s.Q, m)
	s.UpdateBounds(s.Q)
	s.completeCalcQT(s.Q)
	for i := 0; i < m.NumCells(); i++ {
		if i < m.NRealCells && !m.CellsIsGhost[i] {
			continue
		}
		assert.Zero(t, s.qt[2*i])
		assert.Zero(t, s.qt[2*i+1])
	}
}

func TestUpdateBoundsIdempotent(t *testing.T) {
	var (
		m = mesh.NewUnitSquare(6, 6)
		s = newTestSolver(t, advectionProblem(1, 0, false), m)
	)
	s.prob.InitialSolution(s.Q, m)
	s.UpdateBounds(s.Q)
	once := append([]float64(nil), s.Q...)
	s.UpdateBounds(s.Q)
	assert.Equal(t, once, s.Q)
}

func TestRunTerminatesOnMaxStep(t *testing.T) {
	var (
		m    = mesh.NewUnitSquare(6, 6)
		pool = parallel.NewPool(1)
	)
	s, err := New(advectionProblem(1, 0.5, false), m, pool.Proc(0), Options{
		MaxStep:       12,
		PrintInterval: 1 << 30,
		Tolerance:     -1,
	})
	require.NoError(t, err)
	require.NoError(t, s.Run(nil))
	assert.Equal(t, 12, s.Step)
	assert.InDelta(t, 12e-3, s.Time, 1e-12)
}

func TestRunReportsNaN(t *testing.T) {
	prob := advectionProblem(1, 0, false)
	prob.Flux = func(f, qi, qj, gxi, gyi, gxj, gyj, limi, limj []float64,
		n, di, dj [2]float64, area, length float64) {
		f[0], f[1] = math.NaN(), math.NaN()
	}
	var (
		m    = mesh.NewUnitSquare(4, 4)
		pool = parallel.NewPool(1)
	)
	s, err := New(prob, m, pool.Proc(0), Options{MaxStep: 10, PrintInterval: 1 << 30})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Run(nil), ErrNaN)
}

func TestNewRejectsBadConfigurations(t *testing.T) {
	var (
		m    = mesh.NewUnitSquare(4, 4)
		pool = parallel.NewPool(1)
		opt  = Options{MaxStep: 10, PrintInterval: 10}
	)
	{ // missing boundary kernel for the mesh's tag
		prob := advectionProblem(1, 0, false)
		prob.Boundaries = map[string]BoundaryFunc{"farfield": prob.Boundaries["wall"]}
		_, err := New(prob, m, pool.Proc(0), opt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wall")
	}
	{ // missing flux kernel
		prob := advectionProblem(1, 0, false)
		prob.Flux = nil
		_, err := New(prob, m, pool.Proc(0), opt)
		assert.Error(t, err)
	}
	{ // variable name count mismatch
		prob := advectionProblem(1, 0, false)
		prob.VarNames = []string{"only"}
		_, err := New(prob, m, pool.Proc(0), opt)
		assert.Error(t, err)
	}
	{ // required options absent
		prob := advectionProblem(1, 0, false)
		_, err := New(prob, m, pool.Proc(0), Options{PrintInterval: 10})
		assert.Error(t, err)
		_, err = New(prob, m, pool.Proc(0), Options{MaxStep: 10})
		assert.Error(t, err)
	}
}

func TestSmootherPreservesConstantAndDampsSpikes(t *testing.T) {
	var (
		m  = mesh.NewUnitSquare(8, 8)
		sm = newSmoother(m)
		n  = 2 * m.NumCells()
	)
	qt := make([]float64, n)
	for i := 0; i < m.NRealCells; i++ {
		qt[2*i] = 3.5
	}
	sm.apply(qt, 2)
	for i := 0; i < m.NRealCells; i++ {
		assert.InDelta(t, 3.5, qt[2*i], 1e-12)
	}

	// A single spike spreads and shrinks
	spike := make([]float64, n)
	center := 8*4 + 4
	spike[2*center] = 1
	sm.apply(spike, 2)
	assert.Less(t, spike[2*center], 1.0)
	assert.Greater(t, spike[2*center], 0.0)
	sum := 0.0
	for i := 0; i < m.NRealCells; i++ {
		sum += spike[2*i]
	}
	assert.Greater(t, sum, 0.0)
}
