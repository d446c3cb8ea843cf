package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/traits"
)

// Wolf is the predator state machine. THREATENED means hungry; the prey
// being hunted is kept in Behavior.Target.
type Wolf struct{}

func (Wolf) Normal(a *Actor) {
	a.wander()

	if a.Vitals.Energy < a.Params.HungerThreshold {
		a.Behavior.State = traits.Threatened
		a.Behavior.MateTarget = ecs.Entity{}
	} else if a.Vitals.Desire > a.Params.MateDesire {
		a.Behavior.State = traits.Mate
		a.Behavior.Target = ecs.Entity{}
	}
}

func (Wolf) Threatened(a *Actor) {
	b := a.Behavior
	if isNone(b.Target) || !a.visible(b.Target) {
		animals := a.sys.animals
		b.Target = a.search(b.TargetPolicy, func(o ecs.Entity) bool {
			return animals.Diet(o) == traits.Herbivore
		})
	}

	if isNone(b.Target) {
		a.wander()
	} else {
		wolfHunt(a)
	}

	if a.Vitals.Energy >= a.Params.HungerThreshold {
		if a.Vitals.Desire < a.Params.MateDesire {
			b.State = traits.Normal
			b.MateTarget = ecs.Entity{}
		} else {
			b.State = traits.Mate
		}
		b.Target = ecs.Entity{}
	}
}

func (Wolf) Mate(a *Actor) {
	a.refreshMate()
	if isNone(a.Behavior.MateTarget) {
		a.wander()
	} else {
		a.courtMate()
	}

	if a.Vitals.Energy < a.Params.HungerThreshold {
		a.Behavior.State = traits.Threatened
		a.Behavior.MateTarget = ecs.Entity{}
	} else if a.Vitals.Desire < a.Params.MateDesire {
		a.Behavior.State = traits.Normal
		a.Behavior.MateTarget = ecs.Entity{}
		a.Behavior.Target = ecs.Entity{}
	}
}

// wolfHunt chases the current prey and kills it once within reach.
// A hunting wolf does not age.
func wolfHunt(a *Actor) {
	prey := a.Behavior.Target
	a.Body.Dest = a.sys.animals.Body(prey).Pos
	a.move(a.Params.PursuitFactor * a.baseSpeed())
	a.exert(1)
	if !a.reached(a.sys.animals.Body(prey).Pos) {
		return
	}

	a.sys.animals.Behavior(prey).State = traits.Dead
	a.out.Killed = prey
	a.Behavior.Target = ecs.Entity{}
	a.Body.Dest = a.sys.grid.RandomPosition()
	a.addEnergy(a.Params.KillGain)
}
