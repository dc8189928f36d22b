package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
)

// boidUp is the up reference boids are rotated against.
var boidUp = r3.Vec{Z: 1}

// BoidAvoidance returns the push away from a forward probe hit. Its
// magnitude falls linearly from strength at distance 0 to nothing at
// maxDistance. Missed probes never push, whatever their stale normal holds.
func BoidAvoidance(hit components.ProbeResult, strength, maxDistance float64) r3.Vec {
	if !hit.Hit() || hit.Distance >= maxDistance {
		return r3.Vec{}
	}
	return r3.Scale(lerp(strength, 0, hit.Distance/maxDistance), hit.Normal)
}

// CrowdAvoidance returns the sideways nudge off a wall-like forward probe
// hit: one whose normal is nearly perpendicular to up.
func CrowdAvoidance(hit components.ProbeResult, up r3.Vec, strength float64) r3.Vec {
	if !hit.Hit() {
		return r3.Vec{}
	}
	if math.Abs(r3.Dot(hit.Normal, up)) >= wallThreshold {
		return r3.Vec{}
	}
	return r3.Scale(strength, hit.Normal)
}

// BoidIntegrator moves boids in free flight from their steering resultant,
// obstacle avoidance and noise.
type BoidIntegrator struct {
	settings InteractionSettings
	current  *Poses
	next     *Poses
	steering []r3.Vec
	hits     []components.ProbeResult
	noise    *NoiseField
}

// NewBoidIntegrator binds the free-flight law to its input and output
// buffers. noise may be nil.
func NewBoidIntegrator(settings InteractionSettings, current, next *Poses, steering []r3.Vec, hits []components.ProbeResult, noise *NoiseField) *BoidIntegrator {
	return &BoidIntegrator{
		settings: settings,
		current:  current,
		next:     next,
		steering: steering,
		hits:     hits,
		noise:    noise,
	}
}

// Integrate writes next poses for agents [i0, i1).
func (b *BoidIntegrator) Integrate(i0, i1 int) {
	s := &b.settings
	for i := i0; i < i1; i++ {
		pos := b.current.Positions[i]
		fwd := b.current.Forwards[i]

		avoid := BoidAvoidance(b.hits[i], s.ObstacleAvoidance, s.ObstacleAvoidanceDistance)
		dir := r3.Add(fwd, SafeNormalize(r3.Add(b.steering[i], avoid)))
		dir = r3.Add(dir, b.noise.Sample(pos))

		b.next.Positions[i] = r3.Add(pos, r3.Scale(s.Speed, dir))
		if o, ok := LookRotation(dir, boidUp); ok {
			b.next.Forwards[i] = o.Forward
			b.next.Ups[i] = o.Up
		} else {
			b.next.Forwards[i] = fwd
			b.next.Ups[i] = b.current.Ups[i]
		}
	}
}

// CrowdIntegrator walks ground agents over the surface under them. Agents
// whose downward probe misses keep their pose for the tick.
type CrowdIntegrator struct {
	settings CrowdSettings
	current  *Poses
	next     *Poses
	ahead    []components.ProbeResult
	under    []components.ProbeResult
}

// NewCrowdIntegrator binds the terrain-snap law to its buffers.
func NewCrowdIntegrator(settings CrowdSettings, current, next *Poses, ahead, under []components.ProbeResult) *CrowdIntegrator {
	return &CrowdIntegrator{
		settings: settings,
		current:  current,
		next:     next,
		ahead:    ahead,
		under:    under,
	}
}

// Integrate writes next poses for agents [i0, i1).
func (c *CrowdIntegrator) Integrate(i0, i1 int) {
	s := &c.settings
	for i := i0; i < i1; i++ {
		ground := c.under[i]
		if !ground.Hit() {
			c.next.copyAgent(i, c.current)
			continue
		}

		fwd := c.current.Forwards[i]
		up := c.current.Ups[i]

		pos := r3.Add(ground.Point, r3.Scale(s.Height/2, up))
		heading := r3.Add(fwd, CrowdAvoidance(c.ahead[i], up, s.AvoidanceStrength))
		heading = ProjectOnPlane(heading, ground.Normal)

		o, ok := LookRotation(heading, ground.Normal)
		if !ok {
			o = components.Orientation{Forward: fwd, Up: up}
		}

		c.next.Positions[i] = r3.Add(pos, r3.Scale(s.Speed, o.Forward))
		c.next.Forwards[i] = o.Forward
		c.next.Ups[i] = o.Up
	}
}
