package jobs

import (
	"runtime"
	"sync"
)

// DefaultBatchSize is the number of indices handed to a worker per chunk.
// Ranges no larger than one batch run on the dispatching goroutine, since
// the handoff costs more than the work.
const DefaultBatchSize = 64

// workChunk is a range of indices for a worker to process.
type workChunk struct {
	start, end int
	fn         func(start, end int)
	wg         *sync.WaitGroup
}

// Pool is a fixed set of worker goroutines executing index-range chunks.
// Work functions must not block on other jobs; all joining happens on the
// dispatcher side.
type Pool struct {
	numWorkers int

	workChan chan workChunk
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts a pool with the given number of workers. A non-positive
// count uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: workers,
		workChan:   make(chan workChunk, workers),
		stopChan:   make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.numWorkers
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk := <-p.workChan:
			chunk.fn(chunk.start, chunk.end)
			chunk.wg.Done()
		}
	}
}

// Close stops the workers and waits for them to exit. Every handle
// scheduled on the pool must have completed before Close is called.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.stopChan)
	p.wg.Wait()
}

// ParallelFor runs fn over [0, n) in chunks of batch indices and returns
// when every chunk has finished.
func (p *Pool) ParallelFor(n, batch int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if n <= batch {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += batch {
		end := start + batch
		if end > n {
			end = n
		}
		wg.Add(1)
		p.workChan <- workChunk{start: start, end: end, fn: fn, wg: &wg}
	}
	wg.Wait()
}

// ScheduleParallelFor runs ParallelFor once dep has completed and returns a
// handle for the whole range.
func (p *Pool) ScheduleParallelFor(n, batch int, fn func(start, end int), dep *Handle) *Handle {
	h := newHandle()
	go func() {
		dep.Complete()
		p.ParallelFor(n, batch, fn)
		close(h.done)
	}()
	return h
}

// Schedule runs fn once dep has completed.
func (p *Pool) Schedule(fn func(), dep *Handle) *Handle {
	h := newHandle()
	go func() {
		dep.Complete()
		fn()
		close(h.done)
	}()
	return h
}
