package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTime         float64 `csv:"sim_time"`

	// Population counts at window end
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`

	// Events during window
	HerbivoreBirths int     `csv:"herbivore_births"`
	CarnivoreBirths int     `csv:"carnivore_births"`
	HerbivoreDeaths int     `csv:"herbivore_deaths"`
	CarnivoreDeaths int     `csv:"carnivore_deaths"`
	Kills           int     `csv:"kills"`
	Conceptions     int     `csv:"conceptions"`
	MeanLifespan    float64 `csv:"mean_lifespan"` // mean age of the animals that died

	// Energy distribution (sampled at window end)
	HerbivoreEnergyMean float64 `csv:"herbivore_energy_mean"`
	HerbivoreEnergyP10  float64 `csv:"herbivore_energy_p10"`
	HerbivoreEnergyP50  float64 `csv:"herbivore_energy_p50"`
	HerbivoreEnergyP90  float64 `csv:"herbivore_energy_p90"`

	CarnivoreEnergyMean float64 `csv:"carnivore_energy_mean"`
	CarnivoreEnergyP10  float64 `csv:"carnivore_energy_p10"`
	CarnivoreEnergyP50  float64 `csv:"carnivore_energy_p50"`
	CarnivoreEnergyP90  float64 `csv:"carnivore_energy_p90"`

	// Desire distribution over all live animals
	DesireMean float64 `csv:"desire_mean"`
	DesireStd  float64 `csv:"desire_std"`

	// Remaining stock of the bounded regions
	DynamicFood float64 `csv:"dynamic_food"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// ComputeSpread returns the mean and population standard deviation of values.
func ComputeSpread(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	return mean, math.Sqrt(variance)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("carnivore_deaths", s.CarnivoreDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("conceptions", s.Conceptions),
		slog.Float64("mean_lifespan", s.MeanLifespan),
		slog.Float64("herbivore_energy_mean", s.HerbivoreEnergyMean),
		slog.Float64("herbivore_energy_p50", s.HerbivoreEnergyP50),
		slog.Float64("carnivore_energy_mean", s.CarnivoreEnergyMean),
		slog.Float64("carnivore_energy_p50", s.CarnivoreEnergyP50),
		slog.Float64("desire_mean", s.DesireMean),
		slog.Float64("desire_std", s.DesireStd),
		slog.Float64("dynamic_food", s.DynamicFood),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
