package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/renderer"
	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	mode := flag.String("mode", "", "Movement policy override: boid or crowd")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *mode != "" {
		cfg.Simulation.Mode = *mode
		if err := cfg.ComputeDerived(); err != nil {
			slog.Error("invalid mode", "error", err)
			os.Exit(1)
		}
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if dir := output.Dir(); dir != "" {
		slog.Info("writing telemetry", "dir", dir)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	r := run{
		cfg:      cfg,
		seed:     rngSeed,
		maxTicks: *maxTicks,
		logStats: *logStats,
		output:   output,
	}

	if *headless {
		if err := r.headless(); err != nil {
			slog.Error("simulation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Swarm")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	if err := r.graphical(); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// run holds the options shared by both modes.
type run struct {
	cfg      *config.Config
	seed     int64
	maxTicks int
	logStats bool
	output   *telemetry.OutputManager
}

func (r *run) headless() error {
	setup, err := sim.Build(r.cfg, r.seed)
	if err != nil {
		return err
	}
	defer setup.Close()

	rec := sim.NewRecorder(setup.Simulation, r.logStats, r.output)

	slog.Info("starting headless simulation",
		"seed", r.seed,
		"mode", r.cfg.Simulation.Mode,
		"agents", setup.Len(),
		"max_ticks", r.maxTicks,
	)

	for r.maxTicks <= 0 || int(setup.Ticks()) < r.maxTicks {
		if err := rec.Step(); err != nil {
			return err
		}
	}
	slog.Info("max ticks reached", "tick", setup.Ticks())
	return nil
}

func (r *run) graphical() error {
	setup, err := sim.Build(r.cfg, r.seed)
	if err != nil {
		return err
	}
	defer setup.Close()

	rec := sim.NewRecorder(setup.Simulation, r.logStats, r.output)
	viewer := renderer.NewViewer(r.cfg, setup.Scene, setup.World)

	for !rl.WindowShouldClose() {
		viewer.HandleInput()
		if viewer.ShouldTick() {
			if err := rec.Step(); err != nil {
				return err
			}
		}

		viewer.Draw(renderer.HUDData{
			Kind:         setup.Kind(),
			Agents:       setup.Len(),
			Tick:         setup.Ticks(),
			TickUS:       float64(setup.Perf().Stats().AvgTickDuration.Microseconds()),
			Polarization: rec.Last().Polarization,
			Paused:       viewer.Paused(),
		})

		if r.maxTicks > 0 && int(setup.Ticks()) >= r.maxTicks {
			break
		}
	}
	return nil
}
