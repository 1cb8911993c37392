package solver

import "math"

// The per-step dataflow. Every routine runs to completion on its rank;
// the only blocking points are the halo exchanges and the reductions.

// calcGradients accumulates the Green-Gauss cell-based gradient of q into
// gx, gy. Edge contributions are symmetric: +n*L on the first cell, -n*L
// on the second, so interior fluxes cancel pairwise in the divergence.
// Ghost-cell gradients are zeroed after accumulation; halo cells get
// theirs from the owning rank through the comms.
func (s *Solver) calcGradients(q []float64) {
	var (
		vars = s.prob.Vars
		m    = s.m
		f    = make([]float64, vars)
	)
	for i := range s.gx {
		s.gx[i] = 0
		s.gy[i] = 0
	}
	for e := range m.EdgesLengths {
		i, j := m.EdgesCells[e][0], m.EdgesCells[e][1]
		if i == j {
			continue
		}
		var (
			nx = m.EdgesNormalsX[e]
			ny = m.EdgesNormalsY[e]
			le = m.EdgesLengths[e]
		)
		for k := 0; k < vars; k++ {
			f[k] = (q[vars*i+k] + q[vars*j+k]) * 0.5 * le
		}
		for k := 0; k < vars; k++ {
			s.gx[vars*i+k] += f[k] * nx
			s.gy[vars*i+k] += f[k] * ny

			s.gx[vars*j+k] -= f[k] * nx
			s.gy[vars*j+k] -= f[k] * ny
		}
	}
	for i := 0; i < m.NRealCells; i++ {
		invA := 1. / m.CellsAreas[i]
		for k := 0; k < vars; k++ {
			s.gx[vars*i+k] *= invA
			s.gy[vars*i+k] *= invA
		}
	}
	for i := m.NRealCells * vars; i < len(s.gx); i++ {
		s.gx[i] = 0
		s.gy[i] = 0
	}
}

// calcLimiters computes the per-cell per-variable slope limiter: one-ring
// min/max bounds swept over the edges, then the Michalak-style blend of a
// cell-size fade with the user's limiter function, accumulated as a min
// over the cell's edges.
func (s *Solver) calcLimiters(q []float64) {
	var (
		vars = s.prob.Vars
		m    = s.m
	)
	for i := range s.limiters {
		s.limiters[i] = 1
	}
	copy(s.qmin, q)
	copy(s.qmax, q)
	for e := range m.EdgesLengths {
		i, j := m.EdgesCells[e][0], m.EdgesCells[e][1]
		for k := 0; k < vars; k++ {
			s.qmin[vars*i+k] = math.Min(s.qmin[vars*i+k], q[vars*j+k])
			s.qmin[vars*j+k] = math.Min(s.qmin[vars*j+k], q[vars*i+k])

			s.qmax[vars*i+k] = math.Max(s.qmax[vars*i+k], q[vars*j+k])
			s.qmax[vars*j+k] = math.Max(s.qmax[vars*j+k], q[vars*i+k])
		}
	}
	const tol = 1e-15
	for e := range m.EdgesLengths {
		for _, id := range m.EdgesCells[e] {
			if id >= m.NRealCells || m.CellsIsGhost[id] {
				continue
			}
			var (
				dx   = m.EdgesCentersX[e] - m.CellsCentersX[id]
				dy   = m.EdgesCentersY[e] - m.CellsCentersY[id]
				ka   = math.Sqrt(m.CellsAreas[id])
				k3a  = ka * ka * ka
				base = vars * id
			)
			for k := 0; k < vars; k++ {
				var (
					dqg      = s.gx[base+k]*dx + s.gy[base+k]*dy
					deltaMax = s.qmax[base+k] - q[base+k]
					deltaMin = s.qmin[base+k] - q[base+k]
					d2       = (deltaMax - deltaMin) * (deltaMax - deltaMin)
				)
				var sig float64
				switch {
				case d2 <= k3a:
					sig = 1
				case d2 < 2*k3a:
					y := d2/k3a - 1
					sig = 2*y*y*y - 3*y*y + 1
				default:
					sig = 0
				}
				lim := 1.0
				if dqg > tol {
					lim = s.prob.LimiterFunc(deltaMax / dqg)
				} else if dqg < -tol {
					lim = s.prob.LimiterFunc(deltaMin / dqg)
				}
				lim = sig + (1-sig)*lim
				s.limiters[base+k] = math.Min(s.limiters[base+k], lim)
			}
		}
	}
}

// calcTimeDerivatives assembles qt by looping edges, evaluating the
// problem's flux kernel and accumulating the area-normalized divergence.
// Ghost and halo cells are forced to zero: their state comes from the
// boundary kernels or the comms, never from local flux work.
func (s *Solver) calcTimeDerivatives(q []float64) {
	var (
		vars = s.prob.Vars
		m    = s.m
		f    = make([]float64, vars)
	)
	for i := range s.qt {
		s.qt[i] = 0
	}
	for e := range m.EdgesLengths {
		i, j := m.EdgesCells[e][0], m.EdgesCells[e][1]
		if i == j {
			continue
		}
		var (
			le = m.EdgesLengths[e]
			n  = [2]float64{m.EdgesNormalsX[e], m.EdgesNormalsY[e]}
			ex = m.EdgesCentersX[e]
			ey = m.EdgesCentersY[e]
			di = [2]float64{ex - m.CellsCentersX[i], ey - m.CellsCentersY[i]}
			dj = [2]float64{ex - m.CellsCentersX[j], ey - m.CellsCentersY[j]}
			bi = vars * i
			bj = vars * j
		)
		s.prob.Flux(f,
			q[bi:bi+vars], q[bj:bj+vars],
			s.gx[bi:bi+vars], s.gy[bi:bi+vars],
			s.gx[bj:bj+vars], s.gy[bj:bj+vars],
			s.limiters[bi:bi+vars], s.limiters[bj:bj+vars],
			n, di, dj, m.CellsAreas[i], le)
		for k := 0; k < vars; k++ {
			s.qt[bi+k] -= f[k] * le
			s.qt[bj+k] += f[k] * le
		}
	}
	for i := 0; i < m.NumCells(); i++ {
		if i >= m.NRealCells || m.CellsIsGhost[i] {
			for k := 0; k < vars; k++ {
				s.qt[vars*i+k] = 0
			}
		} else {
			invA := 1. / m.CellsAreas[i]
			for k := 0; k < vars; k++ {
				s.qt[vars*i+k] *= invA
			}
		}
	}
}

// updateCells advances one stage: q := ql + qt*dt*a over every entry.
func (s *Solver) updateCells(q, ql []float64, a float64) {
	for i := range q {
		q[i] = ql[i] + s.qt[i]*s.dt[i]*a
	}
}

// UpdateBounds writes every boundary ghost cell by invoking the kernel
// bound to its edge's tag. Purely local; safe to call repeatedly.
func (s *Solver) UpdateBounds(q []float64) {
	var (
		vars = s.prob.Vars
		m    = s.m
	)
	for bi, e := range m.BoundaryEdges {
		var (
			n    = [2]float64{m.EdgesNormalsX[e], m.EdgesNormalsY[e]}
			i    = m.EdgesCells[e][0]
			j    = m.EdgesCells[e][1]
			fn   = s.bounds[m.BoundaryTags[bi]]
			base = vars * j
		)
		fn(q[base:base+vars], q[vars*i:vars*i+vars], n)
	}
}

// UpdateComms refreshes the halo cells of f from the owning ranks: pack
// owned values into each channel's send buffer, post all sends, then
// block on the receives in channel order and unpack. A barrier with
// respect to f; on return every halo entry equals the peer's value at
// the moment the peer posted its send.
func (s *Solver) UpdateComms(f []float64) {
	if s.proc.Size == 1 {
		return
	}
	vars := s.prob.Vars
	for _, c := range s.m.Comms {
		for iter, i := range c.SendIndices {
			copy(c.SendBuf[vars*iter:vars*(iter+1)], f[vars*i:vars*(i+1)])
		}
		s.proc.Send(c.Peer, c.SendBuf)
	}
	for _, c := range s.m.Comms {
		s.proc.Recv(c.Peer, c.RecvBuf)
		for iter, i := range c.RecvIndices {
			copy(f[vars*i:vars*(i+1)], c.RecvBuf[vars*iter:vars*(iter+1)])
		}
	}
}

// completeCalcQT runs the full spatial pipeline for one stage state:
// gradients, halo refresh, limiters, halo refresh, flux assembly, and
// optional residual smoothing.
func (s *Solver) completeCalcQT(q []float64) {
	if s.prob.Flags.DoCalcGradients {
		s.calcGradients(q)
		s.UpdateComms(s.gx)
		s.UpdateComms(s.gy)
	}
	if s.prob.Flags.DoCalcLimiters {
		s.calcLimiters(q)
		s.UpdateComms(s.limiters)
	}
	s.calcTimeDerivatives(q)
	if s.smooth != nil {
		s.smooth.apply(s.qt, s.prob.Vars)
	}
}
