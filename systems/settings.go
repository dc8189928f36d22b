// Package systems provides the per-tick stages that move agents: probes,
// interaction forces and pose integration.
package systems

// InteractionSettings configures the boid rules. It is shared read-only by
// every stage of a tick. Values are not validated: a zero radius or
// strength simply disables the rule.
type InteractionSettings struct {
	Speed float64 `yaml:"speed"`

	Separation       float64 `yaml:"separation"`
	SeparationRadius float64 `yaml:"separation_radius"`
	Alignment        float64 `yaml:"alignment"`
	AlignmentRadius  float64 `yaml:"alignment_radius"`
	Cohesion         float64 `yaml:"cohesion"`
	CohesionRadius   float64 `yaml:"cohesion_radius"`

	ObstacleAvoidance         float64 `yaml:"obstacle_avoidance"`
	ObstacleAvoidanceDistance float64 `yaml:"obstacle_avoidance_distance"`

	NoiseFrequency float64 `yaml:"noise_frequency"`
	NoiseStrength  float64 `yaml:"noise_strength"`
}

// CrowdSettings configures ground-bound agents.
type CrowdSettings struct {
	Speed             float64 `yaml:"speed"`
	Height            float64 `yaml:"height"`
	AvoidanceStrength float64 `yaml:"avoidance_strength"`
}

// ProbeShape is the swept sphere used for one kind of probe.
type ProbeShape struct {
	Radius      float64 `yaml:"radius"`
	MaxDistance float64 `yaml:"max_distance"`
}
