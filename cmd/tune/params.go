package main

import (
	"github.com/pthm-cable/swarm/systems"
)

// ParamSpec defines a single tunable boid parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	set func(s *systems.InteractionSettings, v float64)
	get func(s *systems.InteractionSettings) float64
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the tunable boid rule weights and radii, with
// defaults taken from base.
func NewParamVector(base systems.InteractionSettings) *ParamVector {
	specs := []ParamSpec{
		{Name: "separation", Path: "boids.separation", Min: 0.1, Max: 4.0,
			set: func(s *systems.InteractionSettings, v float64) { s.Separation = v },
			get: func(s *systems.InteractionSettings) float64 { return s.Separation }},
		{Name: "separation_radius", Path: "boids.separation_radius", Min: 0.5, Max: 5.0,
			set: func(s *systems.InteractionSettings, v float64) { s.SeparationRadius = v },
			get: func(s *systems.InteractionSettings) float64 { return s.SeparationRadius }},
		{Name: "alignment", Path: "boids.alignment", Min: 0.1, Max: 4.0,
			set: func(s *systems.InteractionSettings, v float64) { s.Alignment = v },
			get: func(s *systems.InteractionSettings) float64 { return s.Alignment }},
		{Name: "alignment_radius", Path: "boids.alignment_radius", Min: 1.0, Max: 10.0,
			set: func(s *systems.InteractionSettings, v float64) { s.AlignmentRadius = v },
			get: func(s *systems.InteractionSettings) float64 { return s.AlignmentRadius }},
		{Name: "cohesion", Path: "boids.cohesion", Min: 0.1, Max: 4.0,
			set: func(s *systems.InteractionSettings, v float64) { s.Cohesion = v },
			get: func(s *systems.InteractionSettings) float64 { return s.Cohesion }},
		{Name: "cohesion_radius", Path: "boids.cohesion_radius", Min: 1.0, Max: 15.0,
			set: func(s *systems.InteractionSettings, v float64) { s.CohesionRadius = v },
			get: func(s *systems.InteractionSettings) float64 { return s.CohesionRadius }},
		{Name: "noise_strength", Path: "boids.noise_strength", Min: 0.0, Max: 1.0,
			set: func(s *systems.InteractionSettings, v float64) { s.NoiseStrength = v },
			get: func(s *systems.InteractionSettings) float64 { return s.NoiseStrength }},
	}
	for i := range specs {
		specs[i].Default = specs[i].get(&base)
	}
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Apply writes clamped parameter values into s. Order matches Specs.
func (pv *ParamVector) Apply(s *systems.InteractionSettings, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(s, v)
	}
}
