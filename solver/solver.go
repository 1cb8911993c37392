package solver

import (
	"fmt"

	"github.com/Alexsimulation/fvhyper/mesh"
	"github.com/Alexsimulation/fvhyper/parallel"
)

// Solver owns the state of one rank's integration: the solution q, its
// per-step transients, and the resolved kernel tables. All fields are
// allocated once at construction, sized from the mesh.
type Solver struct {
	prob *Problem
	m    *mesh.Mesh
	proc *parallel.Proc
	opt  Options

	bounds []BoundaryFunc // indexed by mesh.BCTag
	smooth *smoother

	Q        []float64
	qs       []float64 // stage accumulator
	qt       []float64
	gx, gy   []float64
	limiters []float64
	qmin     []float64
	qmax     []float64
	dt       []float64

	R0, R []float64
	Step  int
	Time  float64
}

// New validates the problem binding against the mesh, resolves boundary
// tags, sizes the comm buffers and allocates the solver state. Every
// failure here is a configuration error; the step loop is never entered
// with a partially valid setup.
func New(prob *Problem, m *mesh.Mesh, proc *parallel.Proc, opt Options) (*Solver, error) {
	if prob.Vars <= 0 {
		return nil, fmt.Errorf("solver: problem has %d variables", prob.Vars)
	}
	if len(prob.VarNames) != prob.Vars {
		return nil, fmt.Errorf("solver: %d variable names for %d variables", len(prob.VarNames), prob.Vars)
	}
	if prob.InitialSolution == nil || prob.Flux == nil || prob.CalcDT == nil {
		return nil, fmt.Errorf("solver: problem binding is missing a required kernel")
	}
	if prob.Flags.DoCalcLimiters && prob.LimiterFunc == nil {
		return nil, fmt.Errorf("solver: limiters enabled without a limiter function")
	}
	if opt.MaxStep <= 0 {
		return nil, fmt.Errorf("solver: MaxStep is required")
	}
	if opt.PrintInterval <= 0 {
		return nil, fmt.Errorf("solver: PrintInterval is required")
	}
	if err := m.Check(); err != nil {
		return nil, err
	}

	s := &Solver{
		prob: prob,
		m:    m,
		proc: proc,
		opt:  opt.withDefaults(),
	}

	// Resolve string boundary tags to the kernel table
	s.bounds = make([]BoundaryFunc, len(m.TagNames))
	for tag, name := range m.TagNames {
		fn, ok := prob.Boundaries[name]
		if !ok {
			return nil, fmt.Errorf("solver: no boundary kernel bound for tag %q", name)
		}
		s.bounds[tag] = fn
	}

	for _, c := range m.Comms {
		if c.Peer < 0 || c.Peer >= proc.Size || c.Peer == proc.Rank {
			return nil, fmt.Errorf("solver: comm channel peer %d invalid on rank %d of %d",
				c.Peer, proc.Rank, proc.Size)
		}
		c.Resize(prob.Vars)
	}
	if err := s.handshake(); err != nil {
		return nil, err
	}

	n := prob.Vars * m.NumCells()
	s.Q = make([]float64, n)
	s.qs = make([]float64, n)
	s.qt = make([]float64, n)
	s.gx = make([]float64, n)
	s.gy = make([]float64, n)
	s.limiters = make([]float64, n)
	s.qmin = make([]float64, n)
	s.qmax = make([]float64, n)
	s.dt = make([]float64, n)
	s.R0 = make([]float64, prob.Vars)
	s.R = make([]float64, prob.Vars)

	if prob.Flags.SmoothResiduals {
		s.smooth = newSmoother(m)
	}
	return s, nil
}

// handshake verifies that paired comm channels agree on their lengths
// before any field data moves. Mismatched channel lists are a
// configuration bug caught here, not during a halo exchange.
func (s *Solver) handshake() error {
	if s.proc.Size == 1 {
		return nil
	}
	chans := make(map[int]*mesh.CommChannel, len(s.m.Comms))
	for _, c := range s.m.Comms {
		chans[c.Peer] = c
	}
	// Every rank pair trades its channel sizes, zeros when no channel
	// exists, so a one-sided channel shows up as a mismatch instead of a
	// hang on the first exchange.
	for dst := 0; dst < s.proc.Size; dst++ {
		if dst == s.proc.Rank {
			continue
		}
		var snd, rec int
		if c := chans[dst]; c != nil {
			snd, rec = len(c.SendIndices), len(c.RecvIndices)
		}
		s.proc.Send(dst, []float64{float64(snd), float64(rec)})
	}
	sizes := make([]float64, 2)
	for src := 0; src < s.proc.Size; src++ {
		if src == s.proc.Rank {
			continue
		}
		s.proc.Recv(src, sizes)
		peerSend, peerRecv := int(sizes[0]), int(sizes[1])
		var snd, rec int
		if c := chans[src]; c != nil {
			snd, rec = len(c.SendIndices), len(c.RecvIndices)
		}
		if peerSend != rec || peerRecv != snd {
			return fmt.Errorf("solver: comm channel %d<->%d disagrees: peer sends %d/receives %d, local receives %d/sends %d",
				s.proc.Rank, src, peerSend, peerRecv, rec, snd)
		}
	}
	return nil
}

// Mesh returns the mesh this solver integrates on.
func (s *Solver) Mesh() *mesh.Mesh { return s.m }

// Problem returns the bound problem definition.
func (s *Solver) Problem() *Problem { return s.prob }
