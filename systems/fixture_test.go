package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/selection"
	"github.com/pthm-cable/ecosys/traits"
)

func init() {
	config.MustInit("")
}

type fixture struct {
	grid     *RegionGrid
	store    *AnimalStore
	behavior *BehaviorSystem
	rng      *rand.Rand
	nextID   uint32
}

func newFixture(t *testing.T, cols, rows, width, height int) *fixture {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	g, err := NewRegionGrid(ecs.NewWorld(), cols, rows, width, height, rng)
	if err != nil {
		t.Fatalf("NewRegionGrid failed: %v", err)
	}
	return &fixture{
		grid:     g,
		store:    g.Store(),
		behavior: NewBehaviorSystem(g, rng),
		rng:      rng,
	}
}

// animal builds an unregistered animal with the species' base parameters.
func (f *fixture) animal(kind traits.Kind, pos geom.Vector) components.Animal {
	sc := config.Cfg().Species.For(kind)
	f.nextID++
	return components.Animal{
		Genome: components.Genome{ID: f.nextID, Kind: kind, Code: sc.GeneticCode, Diet: kind.Diet()},
		Body:   components.Body{Pos: pos, Placed: true, Speed: sc.Speed, SightRange: sc.Sight},
		Vitals: components.Vitals{Energy: 100, Age: sc.InitialAge},
		Behavior: components.Behavior{
			State:        traits.Normal,
			MatePolicy:   selection.First{},
			TargetPolicy: selection.Closest{},
		},
	}
}

// spawn creates and registers an animal at pos.
func (f *fixture) spawn(t *testing.T, kind traits.Kind, pos geom.Vector) ecs.Entity {
	t.Helper()
	a := f.animal(kind, pos)
	return f.add(t, &a)
}

func (f *fixture) add(t *testing.T, a *components.Animal) ecs.Entity {
	t.Helper()
	e := f.store.Spawn(a)
	if err := f.grid.RegisterAnimal(e); err != nil {
		t.Fatalf("RegisterAnimal failed: %v", err)
	}
	return e
}

// setParam changes a species parameter for the duration of the test.
func setParam(t *testing.T, p *float64, v float64) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}
