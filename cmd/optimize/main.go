// Package main searches species, food and breeding parameters with CMA-ES
// for configurations that keep a sheep and wolf scenario alive.
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

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/game"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	inputPath := flag.String("input", "", "Scenario YAML file")
	maxTime := flag.Float64("max-time", 120, "Maximum simulated seconds per run")
	dt := flag.Float64("dt", 0, "Step size in seconds (0 = run.dt from config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" || *inputPath == "" {
		log.Fatal("--input and --output are required")
	}
	if *seeds < 1 {
		log.Fatal("--seeds must be at least 1")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	if *dt <= 0 {
		*dt = baseCfg.Run.DT
	}

	scenario, err := loadScenario(*inputPath)
	if err != nil {
		log.Fatal(err)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, scenario, *maxTime, *dt, evalSeeds, baseCfg)

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	prog, err := newProgress(params, logFile, os.Stdout, *maxEvals)
	if err != nil {
		log.Fatal(err)
	}

	// The search runs in the normalized [0,1] space.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			prog.record(values, fitness, evaluator.LastQuality())
			return fitness
		},
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(params.Dim())/2.0)
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel inside Evaluate
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		params.Dim(), popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, seconds per run: %.1f (dt=%g)\n", *seeds, *maxTime, *dt)

	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))
	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if prog.bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", prog.evals, formatDuration(time.Since(prog.start)))
	fmt.Printf("Best fitness: %.1f\n\nBest parameters:\n", prog.bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, prog.bestParams[i])
	}

	if err := writeBest(*outputDir, *configPath, params, prog.bestParams, evaluator); err != nil {
		log.Fatal(err)
	}
}

func loadScenario(path string) (*game.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()
	sc, err := game.LoadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("loading scenario: %w", err)
	}
	return sc, nil
}

// writeBest saves best_config.yaml and the window stats of the best run.
func writeBest(dir, configPath string, params *ParamVector, best []float64, fe *FitnessEvaluator) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(cfg, best)

	cfgPath := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(cfgPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", cfgPath)

	windows := fe.BestWindows()
	if len(windows) == 0 {
		return nil
	}
	windowsPath := filepath.Join(dir, "best_windows.csv")
	f, err := os.Create(windowsPath)
	if err != nil {
		return fmt.Errorf("creating window stats: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&windows, f); err != nil {
		return fmt.Errorf("writing window stats: %w", err)
	}
	fmt.Printf("Window stats saved to: %s\n", windowsPath)
	return nil
}
