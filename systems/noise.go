package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// Per-axis sample offsets so the three noise components are decorrelated.
const (
	noiseOffsetY = 31.416
	noiseOffsetZ = 71.829
)

// NoiseField is a coherent 3-D vector noise over world space. Sampling is
// read-only and safe for concurrent use.
type NoiseField struct {
	noise     opensimplex.Noise
	frequency float64
	strength  float64
}

// NewNoiseField creates a noise field. Samples are taken at position *
// frequency and scaled by strength.
func NewNoiseField(seed int64, frequency, strength float64) *NoiseField {
	return &NoiseField{
		noise:     opensimplex.New(seed),
		frequency: frequency,
		strength:  strength,
	}
}

// Sample returns the noise vector at p.
func (n *NoiseField) Sample(p r3.Vec) r3.Vec {
	if n == nil || n.strength == 0 {
		return r3.Vec{}
	}
	q := r3.Scale(n.frequency, p)
	v := r3.Vec{
		X: n.noise.Eval3(q.X, q.Y, q.Z),
		Y: n.noise.Eval3(q.X+noiseOffsetY, q.Y+noiseOffsetY, q.Z+noiseOffsetY),
		Z: n.noise.Eval3(q.X+noiseOffsetZ, q.Y+noiseOffsetZ, q.Z+noiseOffsetZ),
	}
	return r3.Scale(n.strength, v)
}
