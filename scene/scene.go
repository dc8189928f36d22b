// Package scene is a static collision scene that answers batched sphere
// casts for the probe stages.
package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/jobs"
)

// Plane is a one-sided infinite plane. Casts only hit it from the side its
// Normal points to.
type Plane struct {
	Point  r3.Vec
	Normal r3.Vec
}

// Sphere is a solid spherical obstacle.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

// Scene holds static shapes. It must not be modified while a batch is in
// flight; Cast is safe for concurrent use otherwise.
type Scene struct {
	pool  *jobs.Pool
	batch int

	planes  []Plane
	spheres []Sphere
}

// New creates an empty scene whose batches run on pool.
func New(pool *jobs.Pool, batch int) *Scene {
	return &Scene{pool: pool, batch: batch}
}

// FromConfig builds the scene described by cfg.
func FromConfig(cfg config.SceneConfig, pool *jobs.Pool, batch int) *Scene {
	s := New(pool, batch)

	if cfg.Ground {
		s.AddPlane(r3.Vec{Y: cfg.GroundHeight}, r3.Vec{Y: 1})
	}

	if b := cfg.Bounds; b > 0 {
		s.AddPlane(r3.Vec{X: -b}, r3.Vec{X: 1})
		s.AddPlane(r3.Vec{X: b}, r3.Vec{X: -1})
		s.AddPlane(r3.Vec{Z: -b}, r3.Vec{Z: 1})
		s.AddPlane(r3.Vec{Z: b}, r3.Vec{Z: -1})
		if cfg.Ceiling {
			s.AddPlane(r3.Vec{Y: b}, r3.Vec{Y: -1})
			if !cfg.Ground {
				s.AddPlane(r3.Vec{Y: -b}, r3.Vec{Y: 1})
			}
		}
	}

	for _, o := range cfg.Obstacles {
		s.AddSphere(r3.Vec{X: o.Center[0], Y: o.Center[1], Z: o.Center[2]}, o.Radius)
	}
	return s
}

// AddPlane adds a plane through point facing normal. Degenerate normals are
// ignored.
func (s *Scene) AddPlane(point, normal r3.Vec) {
	if r3.Norm2(normal) == 0 {
		return
	}
	s.planes = append(s.planes, Plane{Point: point, Normal: r3.Unit(normal)})
}

// AddSphere adds a spherical obstacle.
func (s *Scene) AddSphere(center r3.Vec, radius float64) {
	s.spheres = append(s.spheres, Sphere{Center: center, Radius: radius})
}

// Planes returns the scene's planes.
func (s *Scene) Planes() []Plane {
	return s.planes
}

// Spheres returns the scene's spheres.
func (s *Scene) Spheres() []Sphere {
	return s.spheres
}

// ScheduleBatch casts every request in parallel once dep completes.
func (s *Scene) ScheduleBatch(requests []components.ProbeRequest, results []components.ProbeResult, dep *jobs.Handle) *jobs.Handle {
	return s.pool.ScheduleParallelFor(len(requests), s.batch, func(i0, i1 int) {
		for i := i0; i < i1; i++ {
			results[i] = s.Cast(requests[i])
		}
	}, dep)
}

// Cast returns the nearest hit along the request. Shapes the swept sphere
// already overlaps at its origin are ignored.
func (s *Scene) Cast(req components.ProbeRequest) components.ProbeResult {
	if r3.Norm2(req.Direction) == 0 || req.MaxDistance <= 0 {
		return components.NoHit
	}
	dir := r3.Unit(req.Direction)

	best := components.NoHit
	bestT := math.Inf(1)

	for _, p := range s.planes {
		if t, ok := castPlane(req.Origin, dir, req.Radius, p); ok && t < bestT && t <= req.MaxDistance {
			bestT = t
			best = components.ProbeResult{
				Distance: t,
				Point:    r3.Sub(r3.Add(req.Origin, r3.Scale(t, dir)), r3.Scale(req.Radius, p.Normal)),
				Normal:   p.Normal,
			}
		}
	}

	for _, sp := range s.spheres {
		if t, ok := castSphere(req.Origin, dir, req.Radius, sp); ok && t < bestT && t <= req.MaxDistance {
			bestT = t
			center := r3.Add(req.Origin, r3.Scale(t, dir))
			n := r3.Unit(r3.Sub(center, sp.Center))
			best = components.ProbeResult{
				Distance: t,
				Point:    r3.Add(sp.Center, r3.Scale(sp.Radius, n)),
				Normal:   n,
			}
		}
	}

	return best
}

// castPlane returns the travel distance at which a sphere of radius r
// moving along unit dir from origin touches p.
func castPlane(origin, dir r3.Vec, r float64, p Plane) (float64, bool) {
	gap := r3.Dot(r3.Sub(origin, p.Point), p.Normal)
	if gap <= r {
		return 0, false
	}
	approach := -r3.Dot(dir, p.Normal)
	if approach <= 0 {
		return 0, false
	}
	return (gap - r) / approach, true
}

// castSphere returns the travel distance at which a sphere of radius r
// moving along unit dir from origin touches sp.
func castSphere(origin, dir r3.Vec, r float64, sp Sphere) (float64, bool) {
	reach := sp.Radius + r
	oc := r3.Sub(origin, sp.Center)
	c := r3.Dot(oc, oc) - reach*reach
	if c <= 0 {
		return 0, false
	}
	b := r3.Dot(oc, dir)
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t <= 0 {
		return 0, false
	}
	return t, true
}
