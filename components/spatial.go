package components

import "gonum.org/v1/gonum/spatial/r3"

// Position is an agent's world position.
type Position r3.Vec

// Orientation is an agent's rotation expressed as an orthonormal
// forward/up pair. Forward must stay unit length; probes are built from it
// without renormalizing.
type Orientation struct {
	Forward r3.Vec
	Up      r3.Vec
}

// Identity returns the orientation facing +Z with +Y up.
func Identity() Orientation {
	return Orientation{
		Forward: r3.Vec{Z: 1},
		Up:      r3.Vec{Y: 1},
	}
}
