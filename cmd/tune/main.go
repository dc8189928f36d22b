// Package main tunes boid rule weights with CMA-ES so that headless runs
// settle into a flock with a target polarization and spacing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/systems"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval             int     `csv:"eval"`
	Fitness          float64 `csv:"fitness"`
	Polarization     float64 `csv:"polarization"`
	NearestMean      float64 `csv:"nearest_mean"`
	Separation       float64 `csv:"separation"`
	SeparationRadius float64 `csv:"separation_radius"`
	Alignment        float64 `csv:"alignment"`
	AlignmentRadius  float64 `csv:"alignment_radius"`
	Cohesion         float64 `csv:"cohesion"`
	CohesionRadius   float64 `csv:"cohesion_radius"`
	NoiseStrength    float64 `csv:"noise_strength"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 600, "Simulation ticks per run")
	agents := flag.Int("agents", 200, "Agents per run (0 = use config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	polarization := flag.Float64("target-polarization", 0.8, "Target heading agreement")
	spacing := flag.Float64("target-spacing", 1.5, "Target mean nearest-neighbour distance")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if baseCfg.Derived.Kind != components.KindBoid {
		log.Fatalf("tuning needs simulation.mode boid, got %q", baseCfg.Simulation.Mode)
	}
	if *agents > 0 {
		baseCfg.Population.Count = *agents
	}

	params := NewParamVector(baseCfg.Boids.InteractionSettings)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *ticks, evalSeeds, baseCfg, Targets{
		Polarization: *polarization,
		Spacing:      *spacing,
	})

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append([]float64(nil), raw...)
			}

			last := evaluator.Last()
			if err := writeRecord(logFile, evalCount == 1, newEvalRecord(params, raw, evalCount, fitness, last.Polarization, last.NearestMean)); err != nil {
				log.Printf("failed to log evaluation %d: %v", evalCount, err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: fitness=%.4f polarization=%.3f spacing=%.3f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, last.Polarization, last.NearestMean, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES tuning with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, agents: %d\n", *seeds, *ticks, baseCfg.Population.Count)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.Apply(&bestCfg.Boids.InteractionSettings, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

func newEvalRecord(params *ParamVector, raw []float64, eval int, fitness, polarization, spacing float64) evalRecord {
	var s systems.InteractionSettings
	params.Apply(&s, raw)
	return evalRecord{
		Eval:             eval,
		Fitness:          fitness,
		Polarization:     polarization,
		NearestMean:      spacing,
		Separation:       s.Separation,
		SeparationRadius: s.SeparationRadius,
		Alignment:        s.Alignment,
		AlignmentRadius:  s.AlignmentRadius,
		Cohesion:         s.Cohesion,
		CohesionRadius:   s.CohesionRadius,
		NoiseStrength:    s.NoiseStrength,
	}
}

func writeRecord(f *os.File, header bool, rec evalRecord) error {
	rows := []evalRecord{rec}
	if header {
		return gocsv.Marshal(rows, f)
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}
