package jobs

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParallelFor_CoversEveryIndexOnce checks each index is visited exactly
// once for sizes around the batch boundary.
func TestParallelFor_CoversEveryIndexOnce(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	for _, n := range []int{0, 1, 63, 64, 65, 1000} {
		visits := make([]int32, n)
		p.ParallelFor(n, 64, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&visits[i], 1)
			}
		})
		for i, v := range visits {
			require.Equal(t, int32(1), v, "n=%d index %d", n, i)
		}
	}
}

func TestParallelFor_DefaultBatch(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	var total int64
	p.ParallelFor(500, 0, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	assert.Equal(t, int64(500), total)
}

func TestNewPool_DefaultWorkers(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	assert.Positive(t, p.Workers())
}

// TestSchedule_RunsAfterDependency checks a dependent job never starts
// before the job it waits on has finished.
func TestSchedule_RunsAfterDependency(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	gate := make(chan struct{})
	var first, second atomic.Bool

	h1 := p.Schedule(func() {
		<-gate
		first.Store(true)
	}, nil)
	h2 := p.Schedule(func() {
		assert.True(t, first.Load(), "dependent job ran early")
		second.Store(true)
	}, h1)

	assert.False(t, h2.IsCompleted())
	close(gate)
	h2.Complete()

	assert.True(t, first.Load())
	assert.True(t, second.Load())
	assert.True(t, h1.IsCompleted())
}

func TestScheduleParallelFor_Handle(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	out := make([]int, 300)
	h := p.ScheduleParallelFor(len(out), 32, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = i * 2
		}
	}, Completed())
	h.Complete()

	for i, v := range out {
		require.Equal(t, i*2, v)
	}
}

func TestCombine(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	assert.True(t, Combine().IsCompleted())
	assert.True(t, Combine(nil, Completed()).IsCompleted())

	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	h0 := p.Schedule(func() { <-gates[0] }, nil)
	h1 := p.Schedule(func() { <-gates[1] }, nil)
	joined := Combine(h0, h1)

	close(gates[0])
	h0.Complete()
	assert.False(t, joined.IsCompleted())

	close(gates[1])
	<-joined.Done()
	assert.True(t, joined.IsCompleted())
}

func TestNilHandle(t *testing.T) {
	var h *Handle
	h.Complete()
	assert.True(t, h.IsCompleted())
	<-h.Done()
}

func TestClose_Idempotent(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()
}
