package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// BoidForces computes each boid's steering resultant from every other boid
// in the snapshot. Compute writes only steering[i] for the indices it is
// given, so disjoint ranges may run concurrently.
type BoidForces struct {
	settings InteractionSettings
	poses    *Poses
	steering []r3.Vec
}

// NewBoidForces binds the rules to a pose snapshot and an output buffer of
// the same length.
func NewBoidForces(settings InteractionSettings, poses *Poses, steering []r3.Vec) *BoidForces {
	return &BoidForces{
		settings: settings,
		poses:    poses,
		steering: steering,
	}
}

// Steering returns the output buffer.
func (f *BoidForces) Steering() []r3.Vec {
	return f.steering
}

// Compute fills steering for agents [i0, i1).
func (f *BoidForces) Compute(i0, i1 int) {
	for i := i0; i < i1; i++ {
		f.steering[i] = f.Resultant(i)
	}
}

// Resultant combines the three rules for agent i.
func (f *BoidForces) Resultant(i int) r3.Vec {
	sum := r3.Add(f.Alignment(i), r3.Add(f.Separation(i), f.Cohesion(i)))
	return SafeNormalize(sum)
}

// Alignment steers toward the mean heading of neighbours within
// AlignmentRadius.
func (f *BoidForces) Alignment(i int) r3.Vec {
	var dir r3.Vec
	for j := range f.poses.Forwards {
		if j != i && f.inRange(i, j, f.settings.AlignmentRadius) {
			dir = r3.Add(dir, f.poses.Forwards[j])
		}
	}
	return r3.Scale(f.settings.Alignment, SafeNormalize(dir))
}

// Separation steers away from neighbours within SeparationRadius.
func (f *BoidForces) Separation(i int) r3.Vec {
	pos := f.poses.Positions
	var away r3.Vec
	for j := range pos {
		if j != i && f.inRange(i, j, f.settings.SeparationRadius) {
			away = r3.Add(away, r3.Sub(pos[i], pos[j]))
		}
	}
	return r3.Scale(f.settings.Separation, SafeNormalize(away))
}

// Cohesion steers toward the centre of agents within CohesionRadius. The
// agent itself is part of the average whenever the radius is positive.
func (f *BoidForces) Cohesion(i int) r3.Vec {
	pos := f.poses.Positions
	var center r3.Vec
	count := 0
	for j := range pos {
		if f.inRange(i, j, f.settings.CohesionRadius) {
			center = r3.Add(center, pos[j])
			count++
		}
	}
	if count == 0 {
		return r3.Vec{}
	}
	center = r3.Scale(1/float64(count), center)
	return r3.Scale(f.settings.Cohesion, SafeNormalize(r3.Sub(center, pos[i])))
}

func (f *BoidForces) inRange(i, j int, radius float64) bool {
	return r3.Norm(r3.Sub(f.poses.Positions[i], f.poses.Positions[j])) < radius
}

// CrowdForces is the crowd force stage. Crowd agents steer from probe
// results alone, so it computes nothing.
type CrowdForces struct{}

// Compute does nothing.
func (CrowdForces) Compute(i0, i1 int) {}
