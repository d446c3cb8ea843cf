package game

import (
	"fmt"
	"math"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/telemetry"
)

// newborn is an offspring waiting to be registered at the end of a step.
type newborn struct {
	animal   *components.Animal
	parentID uint32
}

// Step advances the simulation by dt.
//
// The clock moves first, then the dead of the previous step leave the
// world. Every live animal is updated in list order; after each one its
// region is refreshed, every region advances by dt and a pending offspring
// is collected. Offspring join the world only once the loop is done, so
// newborns never act in the step they are born in.
func (s *Simulator) Step(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("step of %v: %w", dt, ErrInvalidStep)
	}

	s.telemetry.startTick()
	s.clock += dt
	s.steps++

	s.telemetry.phase(telemetry.PhasePrune)
	s.pruneDead()

	var born []newborn
	for _, e := range s.live {
		s.telemetry.phase(telemetry.PhaseUpdate)
		out := s.behavior.Update(e, dt)
		s.recordOutcome(e, out)

		s.telemetry.phase(telemetry.PhaseMigrate)
		if err := s.grid.UpdateAnimalRegion(e); err != nil {
			s.telemetry.endTick(len(s.live))
			return fmt.Errorf("step %d: %w", s.steps, err)
		}

		s.telemetry.phase(telemetry.PhaseRegions)
		s.grid.UpdateAllRegions(dt)

		if b := s.store.Behavior(e); b.Pregnant() {
			born = append(born, newborn{animal: b.Deliver(), parentID: s.store.Genome(e).ID})
		}
	}

	s.telemetry.phase(telemetry.PhaseBirths)
	for _, nb := range born {
		if _, err := s.addAnimal(nb.animal, nb.parentID); err != nil {
			s.telemetry.endTick(len(s.live))
			return fmt.Errorf("step %d: %w", s.steps, err)
		}
	}

	s.telemetry.phase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.telemetry.endTick(len(s.live))

	if len(s.observers) > 0 {
		animals := s.animalInfos()
		for _, o := range s.observers {
			o.OnAdvanced(s.clock, s.grid, animals, dt)
		}
	}
	return nil
}

// Run steps until the clock passes until.
func (s *Simulator) Run(until, dt float64) error {
	for s.clock <= until {
		if err := s.Step(dt); err != nil {
			return err
		}
	}
	return nil
}
