package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/traits"
)

// AnimalStore is the arena of animals: entity creation, removal and
// component lookups over one ECS world. Component pointers it returns stay
// valid until the next entity is created or removed.
type AnimalStore struct {
	world *ecs.World

	mapper *ecs.Map5[
		components.Genome,
		components.Body,
		components.Vitals,
		components.Behavior,
		components.Cell,
	]

	genomeMap   *ecs.Map[components.Genome]
	bodyMap     *ecs.Map[components.Body]
	vitalsMap   *ecs.Map[components.Vitals]
	behaviorMap *ecs.Map[components.Behavior]
	cellMap     *ecs.Map[components.Cell]
}

// NewAnimalStore creates a store over w.
func NewAnimalStore(w *ecs.World) *AnimalStore {
	return &AnimalStore{
		world: w,
		mapper: ecs.NewMap5[
			components.Genome,
			components.Body,
			components.Vitals,
			components.Behavior,
			components.Cell,
		](w),
		genomeMap:   ecs.NewMap[components.Genome](w),
		bodyMap:     ecs.NewMap[components.Body](w),
		vitalsMap:   ecs.NewMap[components.Vitals](w),
		behaviorMap: ecs.NewMap[components.Behavior](w),
		cellMap:     ecs.NewMap[components.Cell](w),
	}
}

// Spawn creates an entity from a. The animal is not registered in any grid yet.
func (s *AnimalStore) Spawn(a *components.Animal) ecs.Entity {
	genome := a.Genome
	body := a.Body
	vitals := a.Vitals
	behavior := a.Behavior
	cell := components.Cell{}
	return s.mapper.NewEntity(&genome, &body, &vitals, &behavior, &cell)
}

// Remove deletes e from the world. Removing a dead handle is a no-op.
func (s *AnimalStore) Remove(e ecs.Entity) {
	if s.Alive(e) {
		s.world.RemoveEntity(e)
	}
}

// Alive reports whether e is a handle to an entity that still exists.
// An animal in the DEAD state is still alive in this sense until removed.
func (s *AnimalStore) Alive(e ecs.Entity) bool {
	return e != (ecs.Entity{}) && s.world.Alive(e)
}

// Genome returns the identity of e.
func (s *AnimalStore) Genome(e ecs.Entity) *components.Genome { return s.genomeMap.Get(e) }

// Body returns the body of e.
func (s *AnimalStore) Body(e ecs.Entity) *components.Body { return s.bodyMap.Get(e) }

// Vitals returns the vitals of e.
func (s *AnimalStore) Vitals(e ecs.Entity) *components.Vitals { return s.vitalsMap.Get(e) }

// Behavior returns the state machine memory of e.
func (s *AnimalStore) Behavior(e ecs.Entity) *components.Behavior { return s.behaviorMap.Get(e) }

// Cell returns the grid index of e.
func (s *AnimalStore) Cell(e ecs.Entity) *components.Cell { return s.cellMap.Get(e) }

// Diet returns the diet of e.
func (s *AnimalStore) Diet(e ecs.Entity) traits.Diet {
	return s.genomeMap.Get(e).Diet
}

// Living reports whether e exists and is not DEAD.
func (s *AnimalStore) Living(e ecs.Entity) bool {
	return s.Alive(e) && s.behaviorMap.Get(e).State != traits.Dead
}

// Snapshot returns a copy of e's components as an unregistered animal.
func (s *AnimalStore) Snapshot(e ecs.Entity) components.Animal {
	return components.Animal{
		Genome:   *s.genomeMap.Get(e),
		Body:     *s.bodyMap.Get(e),
		Vitals:   *s.vitalsMap.Get(e),
		Behavior: *s.behaviorMap.Get(e),
	}
}
