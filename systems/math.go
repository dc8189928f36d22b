package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
)

// NormalizeEpsilon is the magnitude at or below which SafeNormalize returns
// the zero vector.
const NormalizeEpsilon = 1e-9

// minNormalFloat32 is the smallest normal float32 (FLT_MIN_NORMAL). Plane
// normals with a squared length below it are treated as degenerate.
const minNormalFloat32 = 0x1p-126

// wallThreshold bounds |dot(normal, up)| for a surface to count as a wall.
const wallThreshold = 0.1

// SafeNormalize returns v scaled to unit length, or the zero vector when
// |v| <= NormalizeEpsilon. It never produces NaN or Inf for finite input.
func SafeNormalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n <= NormalizeEpsilon || math.IsInf(n, 0) || math.IsNaN(n) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// ProjectOnPlane removes the component of v along the plane normal n.
// A normal whose squared length underflows float32 leaves v unchanged.
func ProjectOnPlane(v, n r3.Vec) r3.Vec {
	sqrMag := r3.Dot(n, n)
	if sqrMag < minNormalFloat32 {
		return v
	}
	return r3.Sub(v, r3.Scale(r3.Dot(v, n)/sqrMag, n))
}

// LookRotation returns the orientation facing forward with its up axis as
// close to up as possible. It returns false when forward is degenerate.
func LookRotation(forward, up r3.Vec) (components.Orientation, bool) {
	f := SafeNormalize(forward)
	if f == (r3.Vec{}) {
		return components.Orientation{}, false
	}

	right := r3.Cross(up, f)
	if r3.Norm2(right) <= NormalizeEpsilon {
		// up is parallel to forward; any perpendicular will do
		alt := r3.Vec{X: 1}
		if math.Abs(f.X) > 0.9 {
			alt = r3.Vec{Y: 1}
		}
		right = r3.Cross(alt, f)
	}
	right = r3.Unit(right)

	return components.Orientation{
		Forward: f,
		Up:      r3.Cross(f, right),
	}, true
}

// lerp linearly interpolates from a to b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
