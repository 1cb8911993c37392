package parallel

import "math"

// Reductions use the gather-to-root plus scatter pattern: rank 0
// serializes the combine, then broadcasts the result, so every rank
// returns with the same value. Each reduction is a barrier.

// ReduceMin returns the minimum of v across all ranks.
func (p *Proc) ReduceMin(v float64) float64 {
	if p.Size == 1 {
		return v
	}
	if p.Rank != 0 {
		p.SendScalar(0, v)
		return p.RecvScalar(0)
	}
	for src := 1; src < p.Size; src++ {
		v = math.Min(v, p.RecvScalar(src))
	}
	for dst := 1; dst < p.Size; dst++ {
		p.SendScalar(dst, v)
	}
	return v
}

// ReduceSum replaces v on every rank with the component-wise sum of v
// across all ranks. Partials are combined in rank order on rank 0.
func (p *Proc) ReduceSum(v []float64) {
	if p.Size == 1 {
		return
	}
	if p.Rank != 0 {
		p.Send(0, v)
		p.Recv(0, v)
		return
	}
	other := make([]float64, len(v))
	for src := 1; src < p.Size; src++ {
		p.Recv(src, other)
		for k := range v {
			v[k] += other[k]
		}
	}
	for dst := 1; dst < p.Size; dst++ {
		p.Send(dst, v)
	}
}

// Broadcast distributes root's v to every rank.
func (p *Proc) Broadcast(v []float64, root int) {
	if p.Size == 1 {
		return
	}
	if p.Rank == root {
		for dst := 0; dst < p.Size; dst++ {
			if dst != root {
				p.Send(dst, v)
			}
		}
		return
	}
	p.Recv(root, v)
}
