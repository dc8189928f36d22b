package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/systems"
)

// SpawnPopulation fills w with cfg.Population.Count agents of the configured
// kind, placed uniformly inside the spawn sphere. Boids get a uniformly
// random orientation; crowd agents stand on y=0 with a random yaw.
func SpawnPopulation(w *ECSWorld, cfg *config.Config, rng *rand.Rand) {
	kind := cfg.Derived.Kind
	radius := cfg.Population.SpawnRadius

	for i := 0; i < cfg.Population.Count; i++ {
		p := r3.Scale(radius, insideUnitSphere(rng))
		if cfg.Derived.Planar {
			p.Y = 0
		}

		var o components.Orientation
		if kind == components.KindCrowd || cfg.Derived.Planar {
			o = yawOrientation(rng.Float64() * 2 * math.Pi)
		} else {
			o = randomOrientation(rng)
		}

		w.Spawn(kind, components.Position(p), o)
	}
}

// insideUnitSphere returns a point uniformly distributed in the unit ball.
func insideUnitSphere(rng *rand.Rand) r3.Vec {
	dir := onUnitSphere(rng)
	return r3.Scale(math.Cbrt(rng.Float64()), dir)
}

// onUnitSphere returns a uniformly distributed unit vector.
func onUnitSphere(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if n := r3.Norm(v); n > 1e-6 {
			return r3.Scale(1/n, v)
		}
	}
}

func randomOrientation(rng *rand.Rand) components.Orientation {
	for {
		if o, ok := systems.LookRotation(onUnitSphere(rng), onUnitSphere(rng)); ok {
			return o
		}
	}
}

func yawOrientation(yaw float64) components.Orientation {
	return components.Orientation{
		Forward: r3.Vec{X: math.Sin(yaw), Z: math.Cos(yaw)},
		Up:      r3.Vec{Y: 1},
	}
}
