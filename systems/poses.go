package systems

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/components"
)

// ErrPopulationChanged is returned when the host world's agent count no
// longer matches the count the buffers were allocated for.
var ErrPopulationChanged = errors.New("agent population changed")

// Poses stores per-agent pose data as parallel slices indexed by agent.
type Poses struct {
	Positions []r3.Vec
	Forwards  []r3.Vec
	Ups       []r3.Vec
}

// NewPoses allocates pose storage for n agents.
func NewPoses(n int) Poses {
	return Poses{
		Positions: make([]r3.Vec, n),
		Forwards:  make([]r3.Vec, n),
		Ups:       make([]r3.Vec, n),
	}
}

// Len returns the number of agents.
func (p *Poses) Len() int {
	return len(p.Positions)
}

// Set writes agent i's pose.
func (p *Poses) Set(i int, pos components.Position, o components.Orientation) {
	p.Positions[i] = r3.Vec(pos)
	p.Forwards[i] = o.Forward
	p.Ups[i] = o.Up
}

// Get returns agent i's pose.
func (p *Poses) Get(i int) (components.Position, components.Orientation) {
	return components.Position(p.Positions[i]), components.Orientation{
		Forward: p.Forwards[i],
		Up:      p.Ups[i],
	}
}

// copyAgent copies agent i's pose from src.
func (p *Poses) copyAgent(i int, src *Poses) {
	p.Positions[i] = src.Positions[i]
	p.Forwards[i] = src.Forwards[i]
	p.Ups[i] = src.Ups[i]
}

// WorldBinding is the host world's authoritative pose store. ReadPoses and
// WritePoses are each called once per tick.
type WorldBinding interface {
	Len() int
	ReadPoses(dst *Poses)
	WritePoses(src *Poses)
}

// PoseBuffer holds a tick's read-only pose snapshot and the separate output
// buffer integration writes the next poses into. Both are sized once.
type PoseBuffer struct {
	current Poses
	next    Poses
}

// NewPoseBuffer allocates buffers for n agents.
func NewPoseBuffer(n int) *PoseBuffer {
	return &PoseBuffer{
		current: NewPoses(n),
		next:    NewPoses(n),
	}
}

// Len returns the agent count the buffers were allocated for.
func (b *PoseBuffer) Len() int {
	return b.current.Len()
}

// Current returns the snapshot taken at tick start. Stages must treat it as
// read-only.
func (b *PoseBuffer) Current() *Poses {
	return &b.current
}

// Next returns the integration output buffer.
func (b *PoseBuffer) Next() *Poses {
	return &b.next
}

// Snapshot copies the host world's poses into the current buffer.
func (b *PoseBuffer) Snapshot(w WorldBinding) error {
	if n := w.Len(); n != b.Len() {
		return fmt.Errorf("snapshot: world has %d agents, buffers hold %d: %w", n, b.Len(), ErrPopulationChanged)
	}
	w.ReadPoses(&b.current)
	return nil
}

// Writeback copies the integrated poses back to the host world.
func (b *PoseBuffer) Writeback(w WorldBinding) error {
	if n := w.Len(); n != b.Len() {
		return fmt.Errorf("writeback: world has %d agents, buffers hold %d: %w", n, b.Len(), ErrPopulationChanged)
	}
	w.WritePoses(&b.next)
	return nil
}
