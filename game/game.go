// Package game runs the ecosystem: it owns the ECS world, the region grid
// and the live animal list, advances them step by step and notifies
// observers.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/systems"
	"github.com/pthm-cable/ecosys/traits"
)

// ErrInvalidStep reports a non-positive step size.
var ErrInvalidStep = errors.New("invalid step")

// Simulator holds the complete simulation state.
type Simulator struct {
	world    *ecs.World
	rng      *rand.Rand
	grid     *systems.RegionGrid
	store    *systems.AnimalStore
	behavior *systems.BehaviorSystem

	// Live animals in insertion order; the step visits them in this order.
	live []ecs.Entity

	clock  float64
	steps  int32
	nextID uint32

	observers []Observer
	telemetry *Telemetry
}

// New creates a simulator over an empty width x height world split into
// rows x cols default regions.
func New(cols, rows, width, height int, rng *rand.Rand, opts Options) (*Simulator, error) {
	s := &Simulator{
		rng:       rng,
		nextID:    1,
		telemetry: opts.Telemetry,
	}
	if err := s.build(cols, rows, width, height); err != nil {
		return nil, err
	}
	for _, o := range opts.Observers {
		s.Subscribe(o)
	}
	return s, nil
}

func (s *Simulator) build(cols, rows, width, height int) error {
	world := ecs.NewWorld()
	grid, err := systems.NewRegionGrid(world, cols, rows, width, height, s.rng)
	if err != nil {
		return fmt.Errorf("creating region grid: %w", err)
	}
	s.world = world
	s.grid = grid
	s.store = grid.Store()
	s.behavior = systems.NewBehaviorSystem(grid, s.rng)
	s.live = nil
	s.clock = 0
	s.steps = 0
	return nil
}

// Reset discards every animal and region and starts over on a fresh world.
// Observers stay subscribed and receive OnReset. Animal IDs keep counting.
func (s *Simulator) Reset(cols, rows, width, height int) error {
	if err := s.build(cols, rows, width, height); err != nil {
		return err
	}
	animals := s.animalInfos()
	for _, o := range s.observers {
		o.OnReset(s.clock, s.grid, animals)
	}
	return nil
}

// SetRegion replaces the region at (row, col). Out-of-range coordinates are
// ignored and notify nobody.
func (s *Simulator) SetRegion(row, col int, r systems.Region) bool {
	if !s.grid.SetRegion(row, col, r) {
		return false
	}
	info := r.Info()
	for _, o := range s.observers {
		o.OnRegionSet(row, col, s.grid, info)
	}
	return true
}

// AddAnimal gives a its ID, places it in the world and appends it to the
// live list.
func (s *Simulator) AddAnimal(a components.Animal) (ecs.Entity, error) {
	return s.addAnimal(&a, 0)
}

// Subscribe adds o and sends it OnRegister. Subscribing twice is a no-op.
func (s *Simulator) Subscribe(o Observer) {
	if slices.Contains(s.observers, o) {
		return
	}
	s.observers = append(s.observers, o)
	o.OnRegister(s.clock, s.grid, s.animalInfos())
}

// Unsubscribe removes o.
func (s *Simulator) Unsubscribe(o Observer) {
	if i := slices.Index(s.observers, o); i >= 0 {
		s.observers = slices.Delete(s.observers, i, i+1)
	}
}

// Clock returns the simulated time.
func (s *Simulator) Clock() float64 {
	return s.clock
}

// Steps returns the number of steps taken since the last reset.
func (s *Simulator) Steps() int32 {
	return s.steps
}

// MapInfo returns the read-only view of the grid.
func (s *Simulator) MapInfo() MapInfo {
	return s.grid
}

// Animals returns a copy of every live animal's state in list order.
func (s *Simulator) Animals() []AnimalInfo {
	return s.animalInfos()
}

// Population counts the live animals that are not DEAD, per diet.
func (s *Simulator) Population() (herbivores, carnivores int) {
	for _, e := range s.live {
		if !s.store.Living(e) {
			continue
		}
		if s.store.Diet(e) == traits.Herbivore {
			herbivores++
		} else {
			carnivores++
		}
	}
	return herbivores, carnivores
}

// Verify checks the grid's membership invariant against the live list.
func (s *Simulator) Verify() error {
	return s.grid.Verify(s.live)
}

func (s *Simulator) animalInfos() []AnimalInfo {
	out := make([]AnimalInfo, len(s.live))
	for i, e := range s.live {
		out[i] = s.animalInfo(e)
	}
	return out
}

func (s *Simulator) animalInfo(e ecs.Entity) AnimalInfo {
	g := s.store.Genome(e)
	body := s.store.Body(e)
	v := s.store.Vitals(e)
	return AnimalInfo{
		ID:     g.ID,
		Kind:   g.Kind,
		Code:   g.Code,
		Diet:   g.Diet,
		State:  s.store.Behavior(e).State,
		Pos:    body.Pos,
		Dest:   body.Dest,
		Speed:  body.Speed,
		Sight:  body.SightRange,
		Energy: v.Energy,
		Age:    v.Age,
		Desire: v.Desire,
	}
}
