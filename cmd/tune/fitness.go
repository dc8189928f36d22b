package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/telemetry"
)

// Targets for a healthy flock.
type Targets struct {
	Polarization float64 // desired heading agreement in [0,1]
	Spacing      float64 // desired mean nearest-neighbour distance
}

// penalty is returned for runs that fail or diverge.
const penalty = 1e6

// FitnessEvaluator runs short headless simulations and scores how close the
// resulting flock is to the targets.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig *config.Config
	targets    Targets

	mu   sync.Mutex
	last telemetry.FlockStats // averaged stats from the most recent Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
		targets:    targets,
	}
}

// Last returns the seed-averaged flock stats of the latest evaluation.
func (fe *FitnessEvaluator) Last() telemetry.FlockStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.Apply(&cfg.Boids.InteractionSettings, x)
	// Seeds run side by side, so each simulation gets one worker.
	cfg.Simulation.Workers = 1

	results := make([]telemetry.FlockStats, len(fe.seeds))
	ok := make([]bool, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], ok[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	total, avg := fe.aggregate(results, ok)

	fe.mu.Lock()
	fe.last = avg
	fe.mu.Unlock()

	return total
}

// aggregate returns the mean score over all seeds, with failed seeds scored
// as penalty, and the flock stats averaged over the successful seeds only.
func (fe *FitnessEvaluator) aggregate(results []telemetry.FlockStats, ok []bool) (float64, telemetry.FlockStats) {
	var avg telemetry.FlockStats
	if len(results) == 0 {
		return penalty, avg
	}
	total := 0.0
	passed := 0
	for i, r := range results {
		if !ok[i] {
			total += penalty
			continue
		}
		passed++
		total += fe.score(r)
		avg.Polarization += r.Polarization
		avg.NearestMean += r.NearestMean
		avg.SpreadMean += r.SpreadMean
	}
	if passed > 0 {
		m := float64(passed)
		avg.Polarization /= m
		avg.NearestMean /= m
		avg.SpreadMean /= m
	}
	return total / float64(len(results)), avg
}

// runSimulation runs one seed and returns the flock stats at the end of the
// run. It reports false if the run failed or produced non-finite poses.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (telemetry.FlockStats, bool) {
	setup, err := sim.Build(cfg, seed)
	if err != nil {
		return telemetry.FlockStats{}, false
	}
	defer setup.Close()

	if err := setup.Run(fe.ticks); err != nil {
		return telemetry.FlockStats{}, false
	}
	stats := telemetry.ComputeFlockStats(setup.Poses(), nil)
	if !finite(stats.Polarization) || !finite(stats.NearestMean) {
		return stats, false
	}
	return stats, true
}

// score is the squared error against both targets. The spacing error is
// relative to the target, or absolute when the target is not positive.
func (fe *FitnessEvaluator) score(s telemetry.FlockStats) float64 {
	dp := s.Polarization - fe.targets.Polarization
	ds := s.NearestMean - fe.targets.Spacing
	if fe.targets.Spacing > 0 {
		ds /= fe.targets.Spacing
	}
	return dp*dp + ds*ds
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
