// Package components defines ECS components for the simulation.
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/selection"
	"github.com/pthm-cable/ecosys/traits"
)

// Genome is the immutable identity of an animal.
type Genome struct {
	ID   uint32      // monotonically assigned by the simulator
	Kind traits.Kind // species, selects the state machine
	Code string      // genetic tag; only equal codes mate
	Diet traits.Diet
}

// Behavior holds the state machine's working memory.
// Target is the threat for prey and the hunt target for predators.
type Behavior struct {
	State        traits.State
	MateTarget   ecs.Entity
	Target       ecs.Entity
	MatePolicy   selection.Policy
	TargetPolicy selection.Policy
	Pregnancy    *Animal // undelivered offspring, at most one
}

// Pregnant reports whether an offspring is waiting to be delivered.
func (b *Behavior) Pregnant() bool {
	return b.Pregnancy != nil
}

// Deliver hands over the pending offspring and clears the pregnancy.
func (b *Behavior) Deliver() *Animal {
	a := b.Pregnancy
	b.Pregnancy = nil
	return a
}

// Cell is the region grid index of a registered animal.
type Cell struct {
	Row, Col   int
	Registered bool
}

// Animal is an animal that does not live in a world yet: what the
// construction service and reproduction produce.
type Animal struct {
	Genome   Genome
	Body     Body
	Vitals   Vitals
	Behavior Behavior
}

// Diet returns the animal's diet.
func (a *Animal) Diet() traits.Diet {
	return a.Genome.Diet
}

// Position returns the animal's position.
func (a *Animal) Position() geom.Vector {
	return a.Body.Pos
}
