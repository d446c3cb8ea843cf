package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/factory"
)

// ErrScenario reports a scenario document that cannot be applied.
var ErrScenario = errors.New("invalid scenario")

// Scenario is the initial world: its dimensions, the regions that replace
// the defaults and the animals to add.
type Scenario struct {
	Cols    int           `yaml:"cols"`
	Rows    int           `yaml:"rows"`
	Width   int           `yaml:"width"`
	Height  int           `yaml:"height"`
	Regions []RegionPatch `yaml:"regions"`
	Animals []AnimalBatch `yaml:"animals"`
}

// RegionPatch places a region built from Spec on every cell of the
// inclusive Row x Col ranges. Each cell gets its own instance.
type RegionPatch struct {
	Row  []int               `yaml:"row"`
	Col  []int               `yaml:"col"`
	Spec factory.Description `yaml:"spec"`
}

// AnimalBatch adds Amount animals built from Spec.
type AnimalBatch struct {
	Amount int                 `yaml:"amount"`
	Spec   factory.Description `yaml:"spec"`
}

// LoadScenario decodes a YAML or JSON scenario. Missing dimensions fall
// back to the world section of the config.
func LoadScenario(r io.Reader) (*Scenario, error) {
	world := config.Cfg().World
	sc := &Scenario{
		Cols:   world.Cols,
		Rows:   world.Rows,
		Width:  world.Width,
		Height: world.Height,
	}
	if err := yaml.NewDecoder(r).Decode(sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	for i, p := range sc.Regions {
		if len(p.Row) != 2 || len(p.Col) != 2 {
			return nil, fmt.Errorf("region %d: row and col must be [from, to]: %w", i, ErrScenario)
		}
	}
	for i, b := range sc.Animals {
		if b.Amount < 0 {
			return nil, fmt.Errorf("animal batch %d: negative amount: %w", i, ErrScenario)
		}
	}
	return sc, nil
}

// Build creates a simulator of the scenario's dimensions and applies it,
// drawing from rng.
func (sc *Scenario) Build(rng *rand.Rand, opts Options) (*Simulator, error) {
	sim, err := New(sc.Cols, sc.Rows, sc.Width, sc.Height, rng, opts)
	if err != nil {
		return nil, err
	}
	if err := sc.Apply(sim, factory.NewRegistry(rng)); err != nil {
		return nil, err
	}
	return sim, nil
}

// Apply sets the scenario's regions then adds its animals. The first
// description that fails to build aborts the rest.
func (sc *Scenario) Apply(sim *Simulator, reg *factory.Registry) error {
	for i, p := range sc.Regions {
		for row := p.Row[0]; row <= p.Row[1]; row++ {
			for col := p.Col[0]; col <= p.Col[1]; col++ {
				r, err := reg.Regions.Create(p.Spec)
				if err != nil {
					return fmt.Errorf("region %d at (%d,%d): %w", i, row, col, err)
				}
				sim.SetRegion(row, col, r)
			}
		}
	}
	for i, b := range sc.Animals {
		for n := 0; n < b.Amount; n++ {
			a, err := reg.Animals.Create(b.Spec)
			if err != nil {
				return fmt.Errorf("animal batch %d: %w", i, err)
			}
			if _, err := sim.AddAnimal(a); err != nil {
				return fmt.Errorf("animal batch %d: %w", i, err)
			}
		}
	}
	return nil
}
