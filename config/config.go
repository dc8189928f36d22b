// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownMode is returned when simulation.mode names no movement policy.
var ErrUnknownMode = errors.New("unknown simulation mode")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Population PopulationConfig `yaml:"population"`
	Boids      BoidConfig       `yaml:"boids"`
	Crowd      CrowdConfig      `yaml:"crowd"`
	Scene      SceneConfig      `yaml:"scene"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig selects the movement policy and sizes the worker pool.
type SimulationConfig struct {
	Mode      string `yaml:"mode"`       // "boid" or "crowd"
	Workers   int    `yaml:"workers"`    // 0 = GOMAXPROCS
	BatchSize int    `yaml:"batch_size"` // agents per work chunk
}

// PopulationConfig holds the fixed agent population parameters.
type PopulationConfig struct {
	Count       int     `yaml:"count"`
	SpawnRadius float64 `yaml:"spawn_radius"`
	Planar      bool    `yaml:"planar"` // constrain spawn to y=0 (always on for crowd)
}

// BoidConfig holds the boid rules and their forward probe.
type BoidConfig struct {
	systems.InteractionSettings `yaml:",inline"`
	Probe                       systems.ProbeShape `yaml:"probe"`
}

// CrowdConfig holds crowd movement parameters and both probes.
type CrowdConfig struct {
	systems.CrowdSettings `yaml:",inline"`
	ForwardProbe          systems.ProbeShape `yaml:"forward_probe"`
	DownProbe             systems.ProbeShape `yaml:"down_probe"`
}

// SceneConfig describes the static probe scene.
type SceneConfig struct {
	Ground       bool             `yaml:"ground"`        // add a ground plane facing +Y
	GroundHeight float64          `yaml:"ground_height"` // ground plane Y
	Bounds       float64          `yaml:"bounds"`        // half extent of inward-facing walls (0 = none)
	Ceiling      bool             `yaml:"ceiling"`       // close the bounds above and below
	Obstacles    []ObstacleConfig `yaml:"obstacles"`
}

// ObstacleConfig is a spherical obstacle.
type ObstacleConfig struct {
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // ticks in the rolling perf window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Kind   components.Kind // parsed Simulation.Mode
	Planar bool            // effective spawn planarity
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.ComputeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ComputeDerived recalculates derived values. Call it after changing
// fields of a loaded config.
func (c *Config) ComputeDerived() error {
	switch c.Simulation.Mode {
	case components.KindBoid.String():
		c.Derived.Kind = components.KindBoid
	case components.KindCrowd.String():
		c.Derived.Kind = components.KindCrowd
	default:
		return fmt.Errorf("mode %q: %w", c.Simulation.Mode, ErrUnknownMode)
	}
	c.Derived.Planar = c.Population.Planar || c.Derived.Kind == components.KindCrowd
	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Scene.Obstacles = append([]ObstacleConfig(nil), c.Scene.Obstacles...)
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
