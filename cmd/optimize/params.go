package main

import (
	"github.com/pthm-cable/ecosys/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Sheep
			{Name: "sheep_energy_drain", Path: "species.sheep.energy_drain", Min: 8, Max: 30, Default: 20},
			{Name: "sheep_desire_rate", Path: "species.sheep.desire_rate", Min: 15, Max: 60, Default: 40},
			{Name: "sheep_speed", Path: "species.sheep.speed", Min: 20, Max: 50, Default: 35},
			{Name: "sheep_flee_factor", Path: "species.sheep.flee_factor", Min: 1, Max: 3, Default: 2},
			// Wolf
			{Name: "wolf_energy_drain", Path: "species.wolf.energy_drain", Min: 8, Max: 30, Default: 18},
			{Name: "wolf_desire_rate", Path: "species.wolf.desire_rate", Min: 10, Max: 50, Default: 30},
			{Name: "wolf_speed", Path: "species.wolf.speed", Min: 35, Max: 80, Default: 60},
			{Name: "wolf_kill_gain", Path: "species.wolf.kill_gain", Min: 20, Max: 80, Default: 50},
			{Name: "wolf_hunger_threshold", Path: "species.wolf.hunger_threshold", Min: 20, Max: 80, Default: 50},
			// Food
			{Name: "base_yield", Path: "food.base_yield", Min: 30, Max: 100, Default: 60},
			{Name: "crowd_threshold", Path: "food.crowd_threshold", Min: 2, Max: 10, Default: 5},
			// Breeding
			{Name: "scatter", Path: "breeding.scatter", Min: 10, Max: 100, Default: 60},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// fields returns pointers to the config fields in Specs order.
func fields(cfg *config.Config) []*float64 {
	sheep, wolf := &cfg.Species.Sheep, &cfg.Species.Wolf
	return []*float64{
		&sheep.EnergyDrain,
		&sheep.DesireRate,
		&sheep.Speed,
		&sheep.FleeFactor,
		&wolf.EnergyDrain,
		&wolf.DesireRate,
		&wolf.Speed,
		&wolf.KillGain,
		&wolf.HungerThreshold,
		&cfg.Food.BaseYield,
		&cfg.Food.CrowdThreshold,
		&cfg.Breeding.Scatter,
	}
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, f := range fields(cfg) {
		*f = clamped[i]
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	fs := fields(cfg)
	v := make([]float64, len(fs))
	for i, f := range fs {
		v[i] = *f
	}
	return v
}
