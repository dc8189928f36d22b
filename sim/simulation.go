// Package sim runs the per-tick agent update: it snapshots poses from the
// host world, executes the stage graph on the worker pool and writes the
// integrated poses back.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/jobs"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// ErrClosed is returned when ticking a closed simulation.
var ErrClosed = errors.New("simulation closed")

// Buffer names declared by the stages. The graph rejects any wiring where
// two unordered stages share one with a writer.
const (
	bufPositions     = "positions"
	bufForwards      = "forwards"
	bufUps           = "ups"
	bufSteering      = "steering"
	bufAheadRequests = "ahead.requests"
	bufAheadHits     = "ahead.hits"
	bufUnderRequests = "under.requests"
	bufUnderHits     = "under.hits"
	bufNextPoses     = "next.poses"
)

// Stage names.
const (
	StageForces     = "forces"
	StageProbeAhead = "probe.ahead"
	StageProbeUnder = "probe.under"
	StageIntegrate  = "integrate"
)

// Options configures a Simulation.
type Options struct {
	Config  *config.Config
	World   systems.WorldBinding
	Backend systems.ProbeBackend

	// Pool runs the stages. When nil the simulation starts its own, sized
	// by Config.Simulation.Workers, and stops it on Close.
	Pool *jobs.Pool

	// Seed seeds the boid noise field.
	Seed int64
}

// Simulation owns every per-tick buffer for a fixed population. Tick and
// Close may be called from different goroutines; ticks never overlap.
type Simulation struct {
	cfg  *config.Config
	kind components.Kind

	n        int
	world    systems.WorldBinding
	pool     *jobs.Pool
	ownsPool bool
	graph    *jobs.Graph

	poses    *systems.PoseBuffer
	steering []r3.Vec
	ahead    *systems.ProbeStage
	under    *systems.ProbeStage

	perf *telemetry.PerfCollector

	mu     sync.Mutex
	tick   int32
	closed bool
}

// New allocates buffers for the world's current population and validates
// the stage graph for the configured movement policy.
func New(opts Options) (*Simulation, error) {
	if opts.Config == nil || opts.World == nil || opts.Backend == nil {
		return nil, errors.New("sim: config, world and backend are required")
	}
	cfg := opts.Config
	n := opts.World.Len()

	s := &Simulation{
		cfg:      cfg,
		kind:     cfg.Derived.Kind,
		n:        n,
		world:    opts.World,
		pool:     opts.Pool,
		poses:    systems.NewPoseBuffer(n),
		steering: make([]r3.Vec, n),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	if s.pool == nil {
		s.pool = jobs.NewPool(cfg.Simulation.Workers)
		s.ownsPool = true
	}

	var stages []jobs.Stage
	switch s.kind {
	case components.KindBoid:
		stages = s.boidStages(opts.Backend, opts.Seed)
	case components.KindCrowd:
		stages = s.crowdStages(opts.Backend)
	default:
		s.release()
		return nil, fmt.Errorf("sim: kind %v: %w", s.kind, config.ErrUnknownMode)
	}

	graph, err := jobs.NewGraph(stages...)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("sim: building stage graph: %w", err)
	}
	s.graph = graph

	slog.Info("simulation created",
		"kind", s.kind.String(),
		"agents", n,
		"workers", s.pool.Workers(),
		"stages", graph.Names(),
	)
	return s, nil
}

func (s *Simulation) batch() int {
	if b := s.cfg.Simulation.BatchSize; b > 0 {
		return b
	}
	return jobs.DefaultBatchSize
}

// boidStages wires forces and the forward probe side by side, both
// feeding free-flight integration.
func (s *Simulation) boidStages(backend systems.ProbeBackend, seed int64) []jobs.Stage {
	settings := s.cfg.Boids.InteractionSettings
	n := s.poses.Len()
	batch := s.batch()
	current := s.poses.Current()

	forces := systems.NewBoidForces(settings, current, s.steering)
	s.ahead = systems.NewForwardProbe(n, s.cfg.Boids.Probe, backend)
	noise := systems.NewNoiseField(seed, settings.NoiseFrequency, settings.NoiseStrength)
	integrator := systems.NewBoidIntegrator(settings, current, s.poses.Next(), s.steering, s.ahead.Results(), noise)

	return []jobs.Stage{
		{
			Name:   StageForces,
			Reads:  []string{bufPositions, bufForwards},
			Writes: []string{bufSteering},
			Run: func(p *jobs.Pool, dep *jobs.Handle) *jobs.Handle {
				return p.ScheduleParallelFor(n, batch, forces.Compute, dep)
			},
		},
		{
			Name:   StageProbeAhead,
			Reads:  []string{bufPositions, bufForwards},
			Writes: []string{bufAheadRequests, bufAheadHits},
			Run: func(p *jobs.Pool, dep *jobs.Handle) *jobs.Handle {
				return s.ahead.Schedule(p, current, batch, dep)
			},
		},
		{
			Name:   StageIntegrate,
			Reads:  []string{bufPositions, bufForwards, bufUps, bufSteering, bufAheadHits},
			Writes: []string{bufNextPoses},
			After:  []string{StageForces, StageProbeAhead},
			Run: func(p *jobs.Pool, dep *jobs.Handle) *jobs.Handle {
				return p.ScheduleParallelFor(n, batch, integrator.Integrate, dep)
			},
		},
	}
}

// crowdStages wires the placeholder force stage and both probes side by
// side, all feeding terrain-snap integration.
func (s *Simulation) crowdStages(backend systems.ProbeBackend) []jobs.Stage {
	settings := s.cfg.Crowd.CrowdSettings
	n := s.poses.Len()
	batch := s.batch()
	current := s.poses.Current()

	var forces systems.CrowdForces
	s.ahead = systems.NewForwardProbe(n, s.cfg.Crowd.ForwardProbe, backend)
	s.under = systems.NewDownProbe(n, s.cfg.Crowd.DownProbe, settings.Height, backend)
	integrator := systems.NewCrowdIntegrator(settings, current, s.poses.Next(), s.ahead.Results(), s.under.Results())

	return []jobs.Stage{
		{
			Name:   StageForces,
			Reads:  []string{bufPositions},
			Writes: []string{bufSteering},
			Run: func(p *jobs.Pool, dep *jobs.Handle) *jobs.Handle {
				return p.ScheduleParallelFor(n, batch, forces.Compute, dep)
			},
		},
		{
			Name:   StageProbeAhead,
			Reads:  []string{bufPositions, bufForwards},
			Writes: []string{bufAheadRequests, bufAheadHits},
			Run: func(p *jobs.Pool, dep *jobs.Handle) *jobs.Handle {
				return s.ahead.Schedule(p, current, batch, dep)
			},
		},
		{
			Name:   StageProbeUnder,
			Reads:  []string{bufPositions, bufUps},
			Writes: []string{bufUnderRequests, bufUnderHits},
			Run: func(p *jobs.Pool, dep *jobs.Handle) *jobs.Handle {
				return s.under.Schedule(p, current, batch, dep)
			},
		},
		{
			Name:   StageIntegrate,
			Reads:  []string{bufPositions, bufForwards, bufUps, bufAheadHits, bufUnderHits},
			Writes: []string{bufNextPoses},
			After:  []string{StageForces, StageProbeAhead, StageProbeUnder},
			Run: func(p *jobs.Pool, dep *jobs.Handle) *jobs.Handle {
				return p.ScheduleParallelFor(n, batch, integrator.Integrate, dep)
			},
		},
	}
}

// Tick advances every agent once. It returns after the integrated poses
// have been written back to the host world.
func (s *Simulation) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseSnapshot)
	if err := s.poses.Snapshot(s.world); err != nil {
		s.perf.AbortTick()
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}

	s.perf.StartPhase(telemetry.PhaseStages)
	s.graph.Execute(s.pool).Complete()

	s.perf.StartPhase(telemetry.PhaseWriteback)
	if err := s.poses.Writeback(s.world); err != nil {
		s.perf.AbortTick()
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}

	s.perf.EndTick()
	s.tick++
	return nil
}

// Run calls Tick n times, stopping at the first error.
func (s *Simulation) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Close waits for any in-flight tick, then releases the buffers and stops
// the pool if the simulation started it. Close is idempotent.
func (s *Simulation) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.release()
	slog.Info("simulation closed", "ticks", s.tick)
	return nil
}

func (s *Simulation) release() {
	if s.ownsPool {
		s.pool.Close()
	}
	s.graph = nil
	s.poses = nil
	s.ahead = nil
	s.under = nil
	s.steering = nil
}

// Kind returns the movement policy.
func (s *Simulation) Kind() components.Kind {
	return s.kind
}

// Ticks returns the number of completed ticks.
func (s *Simulation) Ticks() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Len returns the fixed agent count.
func (s *Simulation) Len() int {
	return s.n
}

// Poses returns the poses produced by the last tick, or nil once closed.
// The view is only valid between ticks.
func (s *Simulation) Poses() *systems.Poses {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poses == nil {
		return nil
	}
	return s.poses.Next()
}

// GroundHits returns the last tick's downward probe results, or nil for
// boids. Valid between ticks.
func (s *Simulation) GroundHits() []components.ProbeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.under == nil {
		return nil
	}
	return s.under.Results()
}

// Perf returns the tick timing collector.
func (s *Simulation) Perf() *telemetry.PerfCollector {
	return s.perf
}
