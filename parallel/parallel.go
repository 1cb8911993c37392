// Package parallel runs the solver's ranks. Each rank executes as one
// goroutine with exclusive ownership of its mesh piece and fields;
// ranks interact only through message channels, mirroring the
// send/receive discipline of a message-passing launcher. The engine sees
// a Proc and never the pool, so a different transport can stand in.
package parallel

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// linkDepth bounds the number of undelivered messages per directed rank
// pair. Within one exchange a pair carries one message each way, and a
// rank can run at most one exchange ahead of its peer, but the dt and
// residual reductions interleave with halo traffic, so leave headroom.
const linkDepth = 8

// Pool owns the channel fabric connecting size ranks.
type Pool struct {
	Size  int
	links [][]chan []float64 // links[src][dst]
}

func NewPool(size int) *Pool {
	if size < 1 {
		panic(fmt.Errorf("parallel: pool size %d", size))
	}
	p := &Pool{Size: size, links: make([][]chan []float64, size)}
	for src := 0; src < size; src++ {
		p.links[src] = make([]chan []float64, size)
		for dst := 0; dst < size; dst++ {
			if src != dst {
				p.links[src][dst] = make(chan []float64, linkDepth)
			}
		}
	}
	return p
}

// Proc is one rank's endpoint into the pool.
type Proc struct {
	Rank int
	Size int
	pool *Pool
}

func (p *Pool) Proc(rank int) *Proc {
	if rank < 0 || rank >= p.Size {
		panic(fmt.Errorf("parallel: rank %d of %d", rank, p.Size))
	}
	return &Proc{Rank: rank, Size: p.Size, pool: p}
}

// Run executes body once per rank and returns the first error. A body
// error does not interrupt the other ranks; a rank blocked on a failed
// peer is a deadlock the caller surfaces by the returned error.
func (p *Pool) Run(body func(proc *Proc) error) error {
	g := new(errgroup.Group)
	for rank := 0; rank < p.Size; rank++ {
		proc := p.Proc(rank)
		g.Go(func() error {
			return body(proc)
		})
	}
	return g.Wait()
}

// Send posts buf toward dst and returns immediately. The data is copied
// out of buf, so the caller may reuse its buffer as soon as Send returns;
// delivery to dst is in order per pair.
func (p *Proc) Send(dst int, buf []float64) {
	msg := make([]float64, len(buf))
	copy(msg, buf)
	p.pool.links[p.Rank][dst] <- msg
}

// Recv blocks for the next message from src and copies it into buf. The
// message length must match; a mismatch means the paired channel lists
// disagree, which startup validation should have caught.
func (p *Proc) Recv(src int, buf []float64) {
	msg := <-p.pool.links[src][p.Rank]
	if len(msg) != len(buf) {
		panic(fmt.Errorf("parallel: rank %d received %d values from rank %d, want %d",
			p.Rank, len(msg), src, len(buf)))
	}
	copy(buf, msg)
}

// SendScalar and RecvScalar move single values through the same links.
func (p *Proc) SendScalar(dst int, v float64) {
	p.pool.links[p.Rank][dst] <- []float64{v}
}

func (p *Proc) RecvScalar(src int) float64 {
	msg := <-p.pool.links[src][p.Rank]
	if len(msg) != 1 {
		panic(fmt.Errorf("parallel: rank %d expected scalar from rank %d, got %d values",
			p.Rank, src, len(msg)))
	}
	return msg[0]
}
