// Package camera provides an orbit camera for viewing the simulation volume.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxPitch keeps the camera just short of the poles so its up vector stays
// well defined.
const maxPitch = math.Pi/2 - 0.01

// Camera orbits Target at Distance. Yaw turns about +Y, Pitch raises the
// eye above the XZ plane.
type Camera struct {
	Target   r3.Vec
	Yaw      float64
	Pitch    float64
	Distance float64

	// Zoom constraints
	MinDistance, MaxDistance float64
}

// New creates a camera looking at target from distance, slightly raised.
func New(target r3.Vec, distance float64) *Camera {
	return &Camera{
		Target:      target,
		Pitch:       0.4,
		Distance:    distance,
		MinDistance: distance / 10,
		MaxDistance: distance * 4,
	}
}

// Orbit rotates the camera around its target.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+dPitch))
}

// Zoom scales the orbit distance by factor within the zoom constraints.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = math.Max(c.MinDistance, math.Min(c.MaxDistance, c.Distance*factor))
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() r3.Vec {
	cp := math.Cos(c.Pitch)
	offset := r3.Vec{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
	return r3.Add(c.Target, offset)
}
