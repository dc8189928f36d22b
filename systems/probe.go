package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/jobs"
)

// ProbeBackend answers batches of sphere casts against the environment.
// ScheduleBatch must not read requests before dep completes, must write
// every slot of results (components.NoHit for a miss) and must return a
// handle that completes only after it has.
type ProbeBackend interface {
	ScheduleBatch(requests []components.ProbeRequest, results []components.ProbeResult, dep *jobs.Handle) *jobs.Handle
}

// ProbeDirection selects which axis of the pose a probe is cast along.
type ProbeDirection uint8

const (
	ProbeForward ProbeDirection = iota // along forward, from the position
	ProbeDown                          // along -up, from the position lifted by Lift along up
)

// ProbeStage owns one probe request and result per agent. Requests are
// rebuilt from the pose snapshot each tick; results are valid once the
// handle returned by SubmitBatch completes.
type ProbeStage struct {
	dir     ProbeDirection
	shape   ProbeShape
	lift    float64
	backend ProbeBackend

	requests []components.ProbeRequest
	results  []components.ProbeResult
}

// NewForwardProbe creates a stage casting ahead of each of n agents.
func NewForwardProbe(n int, shape ProbeShape, backend ProbeBackend) *ProbeStage {
	return newProbeStage(n, ProbeForward, shape, 0, backend)
}

// NewDownProbe creates a stage casting down each agent's -up axis from lift
// units above its position.
func NewDownProbe(n int, shape ProbeShape, lift float64, backend ProbeBackend) *ProbeStage {
	return newProbeStage(n, ProbeDown, shape, lift, backend)
}

func newProbeStage(n int, dir ProbeDirection, shape ProbeShape, lift float64, backend ProbeBackend) *ProbeStage {
	return &ProbeStage{
		dir:      dir,
		shape:    shape,
		lift:     lift,
		backend:  backend,
		requests: make([]components.ProbeRequest, n),
		results:  make([]components.ProbeResult, n),
	}
}

// Len returns the number of probe slots.
func (s *ProbeStage) Len() int {
	return len(s.requests)
}

// BuildRequests fills every request from poses and returns them.
func (s *ProbeStage) BuildRequests(poses *Poses) []components.ProbeRequest {
	s.buildRange(poses, 0, len(s.requests))
	return s.requests
}

// buildRange fills requests [i0, i1). Orientation vectors are used as given.
func (s *ProbeStage) buildRange(poses *Poses, i0, i1 int) {
	for i := i0; i < i1; i++ {
		req := &s.requests[i]
		req.Radius = s.shape.Radius
		req.MaxDistance = s.shape.MaxDistance

		switch s.dir {
		case ProbeForward:
			req.Origin = poses.Positions[i]
			req.Direction = poses.Forwards[i]
		case ProbeDown:
			up := poses.Ups[i]
			req.Origin = r3.Add(poses.Positions[i], r3.Scale(s.lift, up))
			req.Direction = r3.Scale(-1, up)
		}
	}
}

// SubmitBatch hands the current requests to the backend behind dep.
func (s *ProbeStage) SubmitBatch(dep *jobs.Handle) *jobs.Handle {
	return s.backend.ScheduleBatch(s.requests, s.results, dep)
}

// Collect waits for h and returns the results.
func (s *ProbeStage) Collect(h *jobs.Handle) []components.ProbeResult {
	h.Complete()
	return s.results
}

// Results returns the result buffer without waiting. Callers must be
// ordered after the handle returned by SubmitBatch.
func (s *ProbeStage) Results() []components.ProbeResult {
	return s.results
}

// Schedule builds requests from poses in parallel behind dep, then submits
// them, returning the backend's handle.
func (s *ProbeStage) Schedule(p *jobs.Pool, poses *Poses, batch int, dep *jobs.Handle) *jobs.Handle {
	built := p.ScheduleParallelFor(len(s.requests), batch, func(i0, i1 int) {
		s.buildRange(poses, i0, i1)
	}, dep)
	return s.SubmitBatch(built)
}
