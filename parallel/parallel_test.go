package parallel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRecv(t *testing.T) {
	pool := NewPool(2)
	err := pool.Run(func(p *Proc) error {
		var (
			peer = 1 - p.Rank
			out  = []float64{float64(p.Rank), 2, 3}
			in   = make([]float64, 3)
		)
		p.Send(peer, out)
		// Reusing the send buffer immediately must not corrupt the message
		out[0] = -1
		p.Recv(peer, in)
		assert.Equal(t, float64(peer), in[0])
		assert.Equal(t, []float64{2, 3}, in[1:])
		return nil
	})
	require.NoError(t, err)
}

func TestMessagesKeepOrder(t *testing.T) {
	pool := NewPool(2)
	err := pool.Run(func(p *Proc) error {
		peer := 1 - p.Rank
		for i := 0; i < 20; i++ {
			p.SendScalar(peer, float64(i))
			if i%4 == 3 {
				for k := i - 3; k <= i; k++ {
					assert.Equal(t, float64(k), p.RecvScalar(peer))
				}
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestReduceMin(t *testing.T) {
	const np = 4
	pool := NewPool(np)
	got := make([]float64, np)
	err := pool.Run(func(p *Proc) error {
		local := 10.0 - float64(p.Rank)*2.5 // rank 3 holds the minimum 2.5
		got[p.Rank] = p.ReduceMin(local)
		return nil
	})
	require.NoError(t, err)
	for rank := 0; rank < np; rank++ {
		assert.Equal(t, 2.5, got[rank])
	}
}

func TestReduceSum(t *testing.T) {
	const np = 3
	pool := NewPool(np)
	got := make([][]float64, np)
	err := pool.Run(func(p *Proc) error {
		v := []float64{float64(p.Rank), 1, float64(p.Rank * p.Rank)}
		p.ReduceSum(v)
		got[p.Rank] = v
		return nil
	})
	require.NoError(t, err)
	for rank := 0; rank < np; rank++ {
		assert.Equal(t, []float64{3, 3, 5}, got[rank])
	}
}

func TestBroadcast(t *testing.T) {
	const np = 4
	pool := NewPool(np)
	got := make([][]float64, np)
	err := pool.Run(func(p *Proc) error {
		v := make([]float64, 2)
		if p.Rank == 1 {
			v[0], v[1] = math.Pi, math.E
		}
		p.Broadcast(v, 1)
		got[p.Rank] = v
		return nil
	})
	require.NoError(t, err)
	for rank := 0; rank < np; rank++ {
		assert.Equal(t, []float64{math.Pi, math.E}, got[rank])
	}
}

func TestSinglePoolShortCircuits(t *testing.T) {
	pool := NewPool(1)
	err := pool.Run(func(p *Proc) error {
		v := []float64{1, 2}
		p.ReduceSum(v)
		assert.Equal(t, 7.0, p.ReduceMin(7))
		assert.Equal(t, []float64{1, 2}, v)
		return nil
	})
	require.NoError(t, err)
}
