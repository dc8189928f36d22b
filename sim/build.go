package sim

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/jobs"
	"github.com/pthm-cable/swarm/scene"
)

// Setup is a ready-to-run simulation together with the world and scene it
// was built against.
type Setup struct {
	*Simulation
	World *ECSWorld
	Scene *scene.Scene
}

// Build spawns the configured population into a fresh ECS world, builds the
// configured scene and wires a simulation over both on a shared pool.
func Build(cfg *config.Config, seed int64) (*Setup, error) {
	world := NewECSWorld()
	SpawnPopulation(world, cfg, rand.New(rand.NewSource(seed)))
	return build(cfg, seed, world)
}

func build(cfg *config.Config, seed int64, world *ECSWorld) (*Setup, error) {
	pool := jobs.NewPool(cfg.Simulation.Workers)
	sc := scene.FromConfig(cfg.Scene, pool, cfg.Simulation.BatchSize)

	s, err := New(Options{
		Config:  cfg,
		World:   world,
		Backend: sc,
		Pool:    pool,
		Seed:    seed,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("building simulation: %w", err)
	}
	s.ownsPool = true

	return &Setup{Simulation: s, World: world, Scene: sc}, nil
}
