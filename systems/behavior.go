package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/selection"
	"github.com/pthm-cable/ecosys/traits"
)

// Outcome reports what one update did beyond the animal itself.
type Outcome struct {
	Killed    ecs.Entity // prey killed this step, zero if none
	Partner   ecs.Entity // mate of a conception
	Conceived bool
	Died      bool
}

// Species is the per-species part of the state machine: one routine per
// live state. The shared shell in BehaviorSystem.Update handles bounds,
// death and feeding.
type Species interface {
	Normal(a *Actor)
	Threatened(a *Actor)
	Mate(a *Actor)
}

// BehaviorSystem runs the per-animal state machine.
type BehaviorSystem struct {
	grid     *RegionGrid
	animals  *AnimalStore
	breeding *BreedingSystem
	rng      *rand.Rand

	vitals   config.VitalsConfig
	movement config.MovementConfig
	params   map[traits.Kind]*config.SpeciesConfig
	species  map[traits.Kind]Species
}

// NewBehaviorSystem creates a behavior system acting on the animals of grid.
func NewBehaviorSystem(grid *RegionGrid, rng *rand.Rand) *BehaviorSystem {
	cfg := config.Cfg()
	return &BehaviorSystem{
		grid:     grid,
		animals:  grid.Store(),
		breeding: NewBreedingSystem(grid.Store(), rng),
		rng:      rng,
		vitals:   cfg.Vitals,
		movement: cfg.Movement,
		params:   cfg.Derived.Species,
		species: map[traits.Kind]Species{
			traits.Sheep: Sheep{},
			traits.Wolf:  Wolf{},
		},
	}
}

// Update advances e by dt. DEAD animals are left untouched.
func (s *BehaviorSystem) Update(e ecs.Entity, dt float64) Outcome {
	if !s.animals.Alive(e) {
		return Outcome{}
	}
	a := s.actor(e, dt)
	if a.Behavior.State == traits.Dead {
		return Outcome{}
	}

	sp := s.species[a.Genome.Kind]
	switch a.Behavior.State {
	case traits.Normal:
		sp.Normal(a)
	case traits.Threatened:
		sp.Threatened(a)
	case traits.Mate:
		sp.Mate(a)
	}

	if !a.Body.Pos.Inside(s.grid.width, s.grid.height) {
		a.Body.Pos = a.Body.Pos.Wrap(s.grid.width, s.grid.height)
		a.Behavior.State = traits.Normal
	}

	if a.Vitals.Energy <= 0 || a.Vitals.Age > a.Params.DeathAge {
		a.Behavior.State = traits.Dead
		a.out.Died = true
		return a.out
	}

	a.addEnergy(s.grid.Food(e, dt))
	return a.out
}

func (s *BehaviorSystem) actor(e ecs.Entity, dt float64) *Actor {
	g := s.animals.Genome(e)
	return &Actor{
		E:        e,
		Genome:   g,
		Body:     s.animals.Body(e),
		Vitals:   s.animals.Vitals(e),
		Behavior: s.animals.Behavior(e),
		Params:   s.params[g.Kind],
		sys:      s,
		dt:       dt,
	}
}

// Actor is the animal being updated, with direct access to its components.
type Actor struct {
	E        ecs.Entity
	Genome   *components.Genome
	Body     *components.Body
	Vitals   *components.Vitals
	Behavior *components.Behavior
	Params   *config.SpeciesConfig

	sys *BehaviorSystem
	dt  float64
	out Outcome
}

func (a *Actor) addEnergy(delta float64) {
	a.Vitals.SetEnergy(a.Vitals.Energy+delta, a.sys.vitals.MaxEnergy)
}

func (a *Actor) addDesire(delta float64) {
	a.Vitals.SetDesire(a.Vitals.Desire+delta, a.sys.vitals.MaxDesire)
}

// baseSpeed is the distance covered in one step at normal pace; it drops
// as energy falls below the maximum.
func (a *Actor) baseSpeed() float64 {
	drag := a.sys.movement.EnergyDrag
	return a.Body.Speed * a.dt * math.Exp((a.Vitals.Energy-a.sys.vitals.MaxEnergy)*drag)
}

// move steps speed units toward the destination. Leaving the world is
// handled by the shell.
func (a *Actor) move(speed float64) {
	step := a.Body.Dest.Sub(a.Body.Pos).Direction().Scale(speed)
	a.Body.Pos = a.Body.Pos.Add(step)
}

// spend ages the animal by dt, then exerts it.
func (a *Actor) spend(cost float64) {
	a.Vitals.Age += a.dt
	a.exert(cost)
}

// exert drains energy scaled by cost and builds desire.
func (a *Actor) exert(cost float64) {
	a.addEnergy(-a.Params.EnergyDrain * cost * a.dt)
	a.addDesire(a.Params.DesireRate * a.dt)
}

// reached reports whether p is within reach.
func (a *Actor) reached(p geom.Vector) bool {
	return a.Body.Pos.DistanceTo(p) < a.sys.movement.Reach
}

// wander heads for the current destination, picking a new random one once
// it is reached.
func (a *Actor) wander() {
	if a.reached(a.Body.Dest) {
		a.Body.Dest = a.sys.grid.RandomPosition()
	}
	a.move(a.baseSpeed())
	a.spend(1)
}

// pursue heads for target at factor times the base speed.
func (a *Actor) pursue(target ecs.Entity, factor, cost float64) {
	a.Body.Dest = a.sys.animals.Body(target).Pos
	a.move(factor * a.baseSpeed())
	a.spend(cost)
}

// flee runs straight away from threat at factor times the base speed.
func (a *Actor) flee(threat ecs.Entity, factor, cost float64) {
	away := a.Body.Pos.Sub(a.sys.animals.Body(threat).Pos).Direction()
	a.Body.Pos = a.Body.Pos.Add(away.Scale(factor * a.baseSpeed()))
	a.spend(cost)
}

// visible reports whether other is still alive, not DEAD and in sight.
func (a *Actor) visible(other ecs.Entity) bool {
	return a.sys.animals.Living(other) && a.Body.InSight(a.sys.animals.Body(other).Pos)
}

// search returns the candidate policy picks among the living animals in
// range accepted by filter, excluding a itself.
func (a *Actor) search(policy selection.Policy, filter func(ecs.Entity) bool) ecs.Entity {
	animals := a.sys.animals
	found := a.sys.grid.AnimalsInRange(a.E, func(o ecs.Entity) bool {
		return o != a.E && animals.Behavior(o).State != traits.Dead && filter(o)
	})
	if len(found) == 0 {
		return ecs.Entity{}
	}

	cs := make([]selection.Candidate, len(found))
	for i, o := range found {
		cs[i] = selection.Candidate{Pos: animals.Body(o).Pos, Age: animals.Vitals(o).Age}
	}
	ref := selection.Candidate{Pos: a.Body.Pos, Age: a.Vitals.Age}
	idx, ok := selection.OrFirst(policy).Select(ref, cs)
	if !ok {
		return ecs.Entity{}
	}
	return found[idx]
}

// refreshMate drops a mate that died, left sight or lost interest, then
// looks for a willing one of the same genetic code if none is set.
func (a *Actor) refreshMate() {
	b := a.Behavior
	if !isNone(b.MateTarget) && !(a.visible(b.MateTarget) && a.willing(b.MateTarget)) {
		b.MateTarget = ecs.Entity{}
	}
	if isNone(b.MateTarget) {
		animals := a.sys.animals
		b.MateTarget = a.search(b.MatePolicy, func(o ecs.Entity) bool {
			return animals.Genome(o).Code == a.Genome.Code && a.willing(o)
		})
	}
}

// willing reports whether other's desire is high enough to mate. A partner
// that just mated has its desire reset and is no longer willing.
func (a *Actor) willing(other ecs.Entity) bool {
	return a.sys.animals.Vitals(other).Desire >= a.Params.MateDesire
}

// courtMate chases the current mate and mates once within reach: both
// desires reset and, unless already pregnant, a conceives with the
// species' probability.
func (a *Actor) courtMate() {
	mate := a.Behavior.MateTarget
	a.pursue(mate, a.Params.PursuitFactor, a.Params.AlteredCost)
	if !a.reached(a.sys.animals.Body(mate).Pos) {
		return
	}

	a.Vitals.Desire = 0
	a.sys.animals.Vitals(mate).Desire = 0
	if !a.Behavior.Pregnant() && a.sys.rng.Float64() < a.Params.ConceptionChance {
		a.Behavior.Pregnancy = a.sys.breeding.Breed(a.E, mate)
		a.addEnergy(-a.Params.ConceptionCost)
		a.out.Conceived = true
		a.out.Partner = mate
	}
	a.Behavior.MateTarget = ecs.Entity{}
}

// isNone reports whether e is the empty handle.
func isNone(e ecs.Entity) bool {
	return e == (ecs.Entity{})
}
