package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/telemetry"
)

func init() {
	config.MustInit("")
}

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	norm := pv.Normalize(raw)
	for i, v := range norm {
		if v < 0 || v > 1 {
			t.Errorf("%s normalized to %v, want [0,1]", pv.Specs[i].Name, v)
		}
	}
	back := pv.Denormalize(norm)
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Cfg().Clone()

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = (spec.Min + spec.Max) / 2
	}
	values[0] = pv.Specs[0].Max + 100

	pv.ApplyToConfig(cfg, values)
	got := pv.ExtractFromConfig(cfg)
	if got[0] != pv.Specs[0].Max {
		t.Errorf("%s = %v, want clamped to %v", pv.Specs[0].Name, got[0], pv.Specs[0].Max)
	}
	for i := 1; i < len(values); i++ {
		if got[i] != values[i] {
			t.Errorf("%s = %v, want %v", pv.Specs[i].Name, got[i], values[i])
		}
	}
	if config.Cfg().Species.Sheep.EnergyDrain == cfg.Species.Sheep.EnergyDrain {
		t.Error("ApplyToConfig on a clone changed the global config")
	}
}

func TestComputeQuality(t *testing.T) {
	healthy := telemetry.WindowStats{
		Herbivores:         20,
		Carnivores:         4,
		HerbivoreEnergyP50: 50,
		CarnivoreEnergyP50: 50,
		Kills:              4,
	}
	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		wantMin float64
		wantMax float64
	}{
		{"warmup only", []telemetry.WindowStats{healthy, healthy}, 0, 0},
		{"collapsed", []telemetry.WindowStats{healthy, healthy, {Herbivores: 1, Carnivores: 1}}, 0, 0},
		{"steady", []telemetry.WindowStats{healthy, healthy, healthy, healthy, healthy}, 0.9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeQuality(tt.windows)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("quality = %v, want [%v,%v]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
