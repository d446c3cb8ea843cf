package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/systems"
	"github.com/pthm-cable/ecosys/telemetry"
)

// addAnimal assigns the next ID to a, spawns and registers it, then
// notifies observers. parentID is zero for animals placed from outside.
func (s *Simulator) addAnimal(a *components.Animal, parentID uint32) (ecs.Entity, error) {
	a.Genome.ID = s.nextID
	s.nextID++

	e := s.store.Spawn(a)
	if err := s.grid.RegisterAnimal(e); err != nil {
		s.store.Remove(e)
		return ecs.Entity{}, fmt.Errorf("adding animal %d: %w", a.Genome.ID, err)
	}
	s.live = append(s.live, e)
	s.telemetry.registerLifetime(s.steps, s.clock, s.store.Genome(e), parentID)

	if len(s.observers) > 0 {
		animals := s.animalInfos()
		added := s.animalInfo(e)
		for _, o := range s.observers {
			o.OnAnimalAdded(s.clock, s.grid, animals, added)
		}
	}
	return e, nil
}

// pruneDead removes the animals that died during the previous step from
// the grid, the world and the live list.
func (s *Simulator) pruneDead() {
	dead := s.grid.RemoveDeadAnimals()
	if len(dead) == 0 {
		return
	}
	for _, e := range dead {
		s.telemetry.recordDeath(s.steps, s.clock, s.store.Genome(e), s.store.Vitals(e).Age)
		s.store.Remove(e)
	}

	live := s.live[:0]
	for _, e := range s.live {
		if s.store.Alive(e) {
			live = append(live, e)
		}
	}
	clear(s.live[len(live):])
	s.live = live
}

// recordOutcome forwards the inter-animal effects of one update to
// telemetry.
func (s *Simulator) recordOutcome(e ecs.Entity, out systems.Outcome) {
	if s.telemetry == nil {
		return
	}
	g := s.store.Genome(e)
	if out.Killed != (ecs.Entity{}) {
		s.telemetry.record(telemetry.NewKillEvent(s.steps, g.ID, s.store.Genome(out.Killed).ID))
	}
	if out.Conceived {
		var partner uint32
		if s.store.Alive(out.Partner) {
			partner = s.store.Genome(out.Partner).ID
		}
		s.telemetry.record(telemetry.NewConceptionEvent(s.steps, g.ID, partner, g.Diet))
	}
}
