package factory

import (
	"math/rand"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/selection"
	"github.com/pthm-cable/ecosys/systems"
)

// Registry groups the factories a scenario needs.
type Registry struct {
	Regions  *Factory[systems.Region]
	Policies *Factory[selection.Policy]
	Animals  *Factory[components.Animal]
}

// NewRegistry wires the region, policy and animal factories, all drawing
// from rng.
func NewRegistry(rng *rand.Rand) *Registry {
	policies := NewPolicyFactory()
	return &Registry{
		Regions:  NewRegionFactory(rng),
		Policies: policies,
		Animals:  NewAnimalFactory(policies, rng),
	}
}

// Info lists every builder grouped by what it creates.
func (r *Registry) Info() map[string][]Info {
	return map[string][]Info{
		"regions":    r.Regions.Info(),
		"strategies": r.Policies.Info(),
		"animals":    r.Animals.Info(),
	}
}
