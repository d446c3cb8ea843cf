package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/traits"
)

// BreedingSystem builds offspring from two parents.
type BreedingSystem struct {
	animals *AnimalStore
	rng     *rand.Rand
	cfg     config.BreedingConfig
	vitals  config.VitalsConfig
}

// NewBreedingSystem creates a breeding system over the animals of store.
func NewBreedingSystem(store *AnimalStore, rng *rand.Rand) *BreedingSystem {
	cfg := config.Cfg()
	return &BreedingSystem{
		animals: store,
		rng:     rng,
		cfg:     cfg.Breeding,
		vitals:  cfg.Vitals,
	}
}

// Breed returns the offspring of p1 and p2. Identity, diet, species and
// target policy come from p1; the mate policy from either parent with equal
// odds. Energy is the parents' mean; sight and speed are their means
// jittered. The child lands near p1 and is positioned on registration.
func (s *BreedingSystem) Breed(p1, p2 ecs.Entity) *components.Animal {
	g1 := s.animals.Genome(p1)
	b1, b2 := s.animals.Behavior(p1), s.animals.Behavior(p2)
	body1, body2 := s.animals.Body(p1), s.animals.Body(p2)
	v1, v2 := s.animals.Vitals(p1), s.animals.Vitals(p2)

	matePolicy := b2.MatePolicy
	if s.rng.Float64() < s.cfg.InheritChance {
		matePolicy = b1.MatePolicy
	}

	offset := geom.RandomVector(s.rng, -1, 1).Scale(s.cfg.Scatter * (s.rng.NormFloat64() + 1))

	return &components.Animal{
		Genome: components.Genome{
			Kind: g1.Kind,
			Code: g1.Code,
			Diet: g1.Diet,
		},
		Body: components.Body{
			Pos:        body1.Pos.Add(offset),
			SightRange: Jitter(s.rng, (body1.SightRange+body2.SightRange)/2, s.cfg.Jitter),
			Speed:      Jitter(s.rng, (body1.Speed+body2.Speed)/2, s.cfg.Jitter),
			Placed:     true,
		},
		Vitals: components.Vitals{
			Energy: clampFloat((v1.Energy+v2.Energy)/2, 0, s.vitals.MaxEnergy),
		},
		Behavior: components.Behavior{
			State:        traits.Normal,
			MatePolicy:   matePolicy,
			TargetPolicy: b1.TargetPolicy,
		},
	}
}
