package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector(config.Defaults().Boids.InteractionSettings)
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestApplyClampsAndSets(t *testing.T) {
	pv := NewParamVector(config.Defaults().Boids.InteractionSettings)
	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e6
	}

	var s systems.InteractionSettings
	pv.Apply(&s, values)

	for _, spec := range pv.Specs {
		if got := spec.get(&s); got != spec.Max {
			t.Errorf("%s = %v, want clamp to %v", spec.Name, got, spec.Max)
		}
	}
	if s.Speed != 0 {
		t.Errorf("Apply touched untuned field Speed: %v", s.Speed)
	}
}

func TestFitnessScore(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Polarization: 0.8, Spacing: 2}}
	tests := []struct {
		name         string
		polarization float64
		spacing      float64
		want         float64
	}{
		{"on target", 0.8, 2, 0},
		{"polarization off", 0.6, 2, 0.04},
		{"spacing off", 0.8, 3, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := fe.score(flockStats(tt.polarization, tt.spacing))
			if math.Abs(fs-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", fs, tt.want)
			}
		})
	}
}

func TestFitnessScore_ZeroSpacingTarget(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Polarization: 0.8, Spacing: 0}}
	fs := fe.score(flockStats(0.8, 1.5))
	if !finite(fs) {
		t.Fatalf("score = %v, want finite", fs)
	}
	if math.Abs(fs-2.25) > 1e-9 {
		t.Errorf("score = %v, want 2.25", fs)
	}
}

func TestAggregate_AveragesSuccessfulSeeds(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Polarization: 0.8, Spacing: 2}}
	results := []telemetry.FlockStats{
		flockStats(0.8, 2),
		{},
		flockStats(0.6, 4),
	}
	ok := []bool{true, false, true}

	total, avg := fe.aggregate(results, ok)

	if math.Abs(avg.Polarization-0.7) > 1e-9 {
		t.Errorf("avg polarization = %v, want 0.7", avg.Polarization)
	}
	if math.Abs(avg.NearestMean-3) > 1e-9 {
		t.Errorf("avg nearest = %v, want 3", avg.NearestMean)
	}
	want := (0 + penalty + 1.04) / 3
	if math.Abs(total-want) > 1e-6 {
		t.Errorf("total = %v, want %v", total, want)
	}
}

func TestAggregate_AllSeedsFailed(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Polarization: 0.8, Spacing: 2}}
	total, avg := fe.aggregate(make([]telemetry.FlockStats, 2), []bool{false, false})
	if total != penalty {
		t.Errorf("total = %v, want %v", total, penalty)
	}
	if avg != (telemetry.FlockStats{}) {
		t.Errorf("avg = %+v, want zero", avg)
	}
}

func flockStats(polarization, spacing float64) telemetry.FlockStats {
	return telemetry.FlockStats{Polarization: polarization, NearestMean: spacing}
}
