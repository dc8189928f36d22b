package sim

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/swarm/telemetry"
)

// Recorder emits flock and perf stats every window of ticks.
type Recorder struct {
	sim      *Simulation
	window   int32
	logStats bool
	output   *telemetry.OutputManager

	last telemetry.FlockStats
}

// NewRecorder creates a recorder for s. output may be nil.
func NewRecorder(s *Simulation, logStats bool, output *telemetry.OutputManager) *Recorder {
	window := int32(s.cfg.Telemetry.StatsWindow)
	if window < 1 {
		window = 1
	}
	return &Recorder{
		sim:      s,
		window:   window,
		logStats: logStats,
		output:   output,
	}
}

// Step ticks the simulation once and flushes stats at window boundaries.
func (r *Recorder) Step() error {
	if err := r.sim.Tick(); err != nil {
		return err
	}
	tick := r.sim.Ticks()
	if tick%r.window != 0 {
		return nil
	}
	return r.flush(tick)
}

func (r *Recorder) flush(tick int32) error {
	poses := r.sim.Poses()
	if poses == nil {
		return ErrClosed
	}
	stats := telemetry.ComputeFlockStats(poses, r.sim.GroundHits())
	stats.WindowEnd = tick
	r.last = stats
	perf := r.sim.Perf().Stats()

	if r.logStats {
		slog.Info("window", "tick", tick, "flock", stats, "perf", perf)
	}
	if err := r.output.WriteFlock(stats); err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	if err := r.output.WritePerf(perf, tick); err != nil {
		return fmt.Errorf("tick %d: %w", tick, err)
	}
	return nil
}

// Last returns the most recent window's flock stats.
func (r *Recorder) Last() telemetry.FlockStats {
	return r.last
}
