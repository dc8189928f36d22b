// Package components defines the ECS components and probe records shared by
// the simulation.
package components

// Kind selects the movement policy an agent is simulated with.
type Kind uint8

const (
	KindBoid  Kind = iota // free-flight flocking
	KindCrowd             // ground-bound, terrain-snapping
)

// String returns the config name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBoid:
		return "boid"
	case KindCrowd:
		return "crowd"
	default:
		return "unknown"
	}
}

// Agent tags an entity as a simulated agent. Index is the agent's slot in
// every per-tick buffer and is fixed for the lifetime of the population.
type Agent struct {
	Index int
	Kind  Kind
}
