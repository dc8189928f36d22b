package components

import "gonum.org/v1/gonum/spatial/r3"

// ProbeRequest is a single sphere cast: a ray from Origin along Direction,
// swept with Radius, up to MaxDistance.
type ProbeRequest struct {
	Origin      r3.Vec
	Direction   r3.Vec
	Radius      float64
	MaxDistance float64
}

// ProbeResult is the answer to one ProbeRequest. A Distance of exactly 0
// means nothing was hit; Point and Normal are meaningless in that case and
// may hold stale or default values.
type ProbeResult struct {
	Distance float64
	Point    r3.Vec
	Normal   r3.Vec
}

// Hit reports whether the probe struck a surface.
func (r ProbeResult) Hit() bool {
	return r.Distance != 0
}

// NoHit is the result a backend writes for a probe that struck nothing.
var NoHit = ProbeResult{}
