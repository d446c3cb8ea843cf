package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/traits"
)

// Sheep is the prey state machine. THREATENED means a carnivore is in
// sight; the threat is kept in Behavior.Target.
type Sheep struct{}

func (Sheep) Normal(a *Actor) {
	a.wander()

	if sheepFindThreat(a) {
		a.Behavior.State = traits.Threatened
		a.Behavior.MateTarget = ecs.Entity{}
	} else if a.Vitals.Desire >= a.Params.MateDesire {
		a.Behavior.State = traits.Mate
	}
}

func (Sheep) Threatened(a *Actor) {
	sheepFindThreat(a)
	if isNone(a.Behavior.Target) {
		a.wander()
	} else {
		a.flee(a.Behavior.Target, a.Params.FleeFactor, a.Params.AlteredCost)
	}

	if !sheepFindThreat(a) {
		sheepCalm(a)
	}
}

func (Sheep) Mate(a *Actor) {
	a.refreshMate()
	if isNone(a.Behavior.MateTarget) {
		a.wander()
	} else {
		a.courtMate()
	}

	if sheepFindThreat(a) {
		a.Behavior.State = traits.Threatened
		a.Behavior.MateTarget = ecs.Entity{}
	} else if a.Vitals.Desire < a.Params.MateDesire {
		a.Behavior.State = traits.Normal
		a.Behavior.MateTarget = ecs.Entity{}
	}
}

// sheepCalm leaves THREATENED once no threat is left.
func sheepCalm(a *Actor) {
	if a.Vitals.Desire < a.Params.MateDesire {
		a.Behavior.State = traits.Normal
		a.Behavior.MateTarget = ecs.Entity{}
	} else {
		a.Behavior.State = traits.Mate
	}
}

// sheepFindThreat drops a threat that died or left sight and, when none is
// set, picks one among the carnivores in range. It reports whether a
// threat is set afterwards.
func sheepFindThreat(a *Actor) bool {
	b := a.Behavior
	if !isNone(b.Target) && !a.visible(b.Target) {
		b.Target = ecs.Entity{}
	}
	if isNone(b.Target) {
		animals := a.sys.animals
		b.Target = a.search(b.TargetPolicy, func(o ecs.Entity) bool {
			return animals.Diet(o) == traits.Carnivore
		})
	}
	return !isNone(b.Target)
}
