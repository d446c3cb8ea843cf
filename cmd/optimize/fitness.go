package main

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/game"
	"github.com/pthm-cable/ecosys/telemetry"
)

// FitnessEvaluator runs scenario simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	scenario    *game.Scenario
	maxTime     float64
	dt          float64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, sc *game.Scenario, maxTime, dt float64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		scenario:    sc,
		maxTime:     maxTime,
		dt:          dt,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either diet stays below this for
// extinctionGraceSec, it counts as functionally extinct.
const (
	minViablePop       = 2
	extinctionGraceSec = 2.0
	warmupSec          = 1.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survival    float64                 // seconds before functional extinction, or maxTime
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
	err         error
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival time: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Simulations capture config values when built. All seeds share the
	// parameters, so install them once before the parallel launch.
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	config.Set(cfg)

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(s)
			if result.err != nil {
				results[idx] = seedResult{fitness: 0}
				return
			}
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: computeQuality(result.windowStats),
				windows: result.windowStats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedWindows []telemetry.WindowStats

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedWindows = r.windows
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = bestSeedWindows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single run of the scenario.
// Runs until functional extinction or maxTime, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(seed int64) *runResult {
	result := &runResult{}

	tel, err := game.NewTelemetry(game.TelemetryOptions{
		Seed:        seed,
		StatsWindow: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer tel.Close()

	sim, err := fe.scenario.Build(rand.New(rand.NewSource(seed)), game.Options{Telemetry: tel})
	if err != nil {
		result.err = err
		return result
	}

	var herbBelow, carnBelow float64
	for sim.Clock() < fe.maxTime {
		if err := sim.Step(fe.dt); err != nil {
			result.err = err
			return result
		}
		if sim.Clock() < warmupSec {
			continue
		}

		herbivores, carnivores := sim.Population()

		// Hard extinction: either diet completely gone
		if herbivores == 0 || carnivores == 0 {
			result.survival = sim.Clock()
			return result
		}

		// Functional extinction: below minimum viable population too long
		if herbivores < minViablePop {
			herbBelow += fe.dt
		} else {
			herbBelow = 0
		}
		if carnivores < minViablePop {
			carnBelow += fe.dt
		} else {
			carnBelow = 0
		}
		if herbBelow >= extinctionGraceSec || carnBelow >= extinctionGraceSec {
			result.survival = sim.Clock()
			return result
		}
	}

	result.survival = fe.maxTime
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survival × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	quality := computeQuality(r.windowStats)
	return -(r.survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.30
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.25
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 2 // skip first N windows (warmup)
	qualityMinPop        = 2 // exclude windows where either diet < this
	qualityTargetRatio   = 5 // herbivores per carnivore
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var ratioSum, energySum, huntSum float64
	var valid int

	herbCounts := make([]float64, 0, len(windows))
	carnCounts := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Herbivores < qualityMinPop || w.Carnivores < qualityMinPop {
			continue
		}
		valid++

		herbCounts = append(herbCounts, float64(w.Herbivores))
		carnCounts = append(carnCounts, float64(w.Carnivores))

		// 1. Population ratio score
		logErr := math.Log(float64(w.Herbivores) / float64(w.Carnivores) / qualityTargetRatio)
		ratioSum += math.Exp(-logErr * logErr)

		// 3. Energy health score: median energy near half the maximum
		herbH := math.Exp(-math.Pow((w.HerbivoreEnergyP50-50)/25, 2))
		carnH := math.Exp(-math.Pow((w.CarnivoreEnergyP50-50)/25, 2))
		energySum += (herbH + carnH) / 2.0

		// 4. Hunting activity score: kills per carnivore per window
		killsPerCarn := float64(w.Kills) / float64(w.Carnivores)
		huntSum += 1.0 - math.Exp(-killsPerCarn)
	}

	if valid == 0 {
		return 0
	}

	n := float64(valid)
	ratioScore := ratioSum / n

	// 2. Population stability (CV across all valid windows)
	stabilityScore := 0.0
	if len(herbCounts) >= 2 {
		cvHerb, cvCarn := cv(herbCounts), cv(carnCounts)
		stabilityScore = math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))
	}

	energyScore := energySum / n
	huntScore := huntSum / n

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energyScore +
		qualityWeightHunting*huntScore

	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	if mean == 0 {
		return 0
	}
	return math.Sqrt(variance) / mean
}
