package sim

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/systems"
)

// ECSWorld is the host world: agents are ark entities carrying Position,
// Orientation and Agent components. It implements systems.WorldBinding.
type ECSWorld struct {
	world *ecs.World

	agentMapper *ecs.Map3[components.Position, components.Orientation, components.Agent]
	agentFilter *ecs.Filter3[components.Position, components.Orientation, components.Agent]

	count int
}

// NewECSWorld creates an empty host world.
func NewECSWorld() *ECSWorld {
	world := ecs.NewWorld()
	return &ECSWorld{
		world:       world,
		agentMapper: ecs.NewMap3[components.Position, components.Orientation, components.Agent](world),
		agentFilter: ecs.NewFilter3[components.Position, components.Orientation, components.Agent](world),
	}
}

// Spawn creates an agent and assigns it the next buffer index.
func (w *ECSWorld) Spawn(kind components.Kind, pos components.Position, o components.Orientation) ecs.Entity {
	agent := components.Agent{Index: w.count, Kind: kind}
	w.count++
	return w.agentMapper.NewEntity(&pos, &o, &agent)
}

// Len returns the number of agents.
func (w *ECSWorld) Len() int {
	return w.count
}

// ReadPoses copies every agent's pose into dst at its buffer index.
func (w *ECSWorld) ReadPoses(dst *systems.Poses) {
	query := w.agentFilter.Query()
	for query.Next() {
		pos, o, agent := query.Get()
		dst.Positions[agent.Index] = r3.Vec(*pos)
		dst.Forwards[agent.Index] = o.Forward
		dst.Ups[agent.Index] = o.Up
	}
}

// WritePoses copies src back onto the agents' components.
func (w *ECSWorld) WritePoses(src *systems.Poses) {
	query := w.agentFilter.Query()
	for query.Next() {
		pos, o, agent := query.Get()
		*pos = components.Position(src.Positions[agent.Index])
		o.Forward = src.Forwards[agent.Index]
		o.Up = src.Ups[agent.Index]
	}
}

// Pose returns the pose stored on entity e.
func (w *ECSWorld) Pose(e ecs.Entity) (components.Position, components.Orientation) {
	pos, o, _ := w.agentMapper.Get(e)
	return *pos, *o
}
