package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/traits"
)

// Region type tags.
const (
	DefaultRegionType = "default"
	DynamicRegionType = "dynamic"
)

// Region is one cell of the grid: a membership list and a food supply.
type Region interface {
	AddAnimal(e ecs.Entity, diet traits.Diet)
	RemoveAnimal(e ecs.Entity) bool
	Animals() []ecs.Entity
	CountByDiet(diet traits.Diet) int

	// Food returns the energy an animal of the given diet gains in dt.
	Food(diet traits.Diet, dt float64) float64
	// Update advances the region's own dynamics by dt.
	Update(dt float64)

	Info() RegionInfo
}

// RegionInfo is a read-only summary of a region.
type RegionInfo struct {
	Type       string
	Herbivores int
	Carnivores int
	Food       float64 // remaining stock, meaningful when Bounded
	Bounded    bool
}

type member struct {
	e    ecs.Entity
	diet traits.Diet
}

// membership is the ordered resident list shared by every region type.
type membership struct {
	members []member
}

// AddAnimal appends e to the residents.
func (m *membership) AddAnimal(e ecs.Entity, diet traits.Diet) {
	m.members = append(m.members, member{e: e, diet: diet})
}

// RemoveAnimal removes e keeping the order of the others. It reports
// whether e was a resident.
func (m *membership) RemoveAnimal(e ecs.Entity) bool {
	for i, mb := range m.members {
		if mb.e == e {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return true
		}
	}
	return false
}

// Animals returns a copy of the residents in arrival order.
func (m *membership) Animals() []ecs.Entity {
	out := make([]ecs.Entity, len(m.members))
	for i, mb := range m.members {
		out[i] = mb.e
	}
	return out
}

// CountByDiet returns the number of residents with the given diet.
func (m *membership) CountByDiet(diet traits.Diet) int {
	n := 0
	for _, mb := range m.members {
		if mb.diet == diet {
			n++
		}
	}
	return n
}

// herbivoreYield is the crowding-limited food a herbivore finds in dt.
func (m *membership) herbivoreYield(cfg *config.FoodConfig, dt float64) float64 {
	n := float64(m.CountByDiet(traits.Herbivore))
	return cfg.BaseYield * math.Exp(-math.Max(0, n-cfg.CrowdThreshold)*cfg.CrowdPenalty) * dt
}

// DefaultRegion yields crowding-limited food without ever running out.
type DefaultRegion struct {
	membership
	food config.FoodConfig
}

// NewDefaultRegion creates an empty default region.
func NewDefaultRegion() *DefaultRegion {
	return &DefaultRegion{food: config.Cfg().Food}
}

// Food returns the herbivore yield; carnivores get nothing.
func (r *DefaultRegion) Food(diet traits.Diet, dt float64) float64 {
	if diet == traits.Carnivore {
		return 0
	}
	return r.herbivoreYield(&r.food, dt)
}

// Update does nothing: the supply is unbounded.
func (r *DefaultRegion) Update(float64) {}

// Info implements Region.
func (r *DefaultRegion) Info() RegionInfo {
	return RegionInfo{
		Type:       DefaultRegionType,
		Herbivores: r.CountByDiet(traits.Herbivore),
		Carnivores: r.CountByDiet(traits.Carnivore),
	}
}

// DynamicRegion holds a finite stock of food that feeding withdraws and
// that randomly drains over time.
type DynamicRegion struct {
	membership
	food   config.FoodConfig
	stock  float64
	factor float64
	rng    *rand.Rand
}

// NewDynamicRegion creates a region with the given initial stock and drain factor.
func NewDynamicRegion(stock, factor float64, rng *rand.Rand) (*DynamicRegion, error) {
	if stock < 0 {
		return nil, fmt.Errorf("initial food %v is negative: %w", stock, ErrConfiguration)
	}
	return &DynamicRegion{
		food:   config.Cfg().Food,
		stock:  stock,
		factor: factor,
		rng:    rng,
	}, nil
}

// Stock returns the remaining food.
func (r *DynamicRegion) Stock() float64 {
	return r.stock
}

// Factor returns the drain factor.
func (r *DynamicRegion) Factor() float64 {
	return r.factor
}

// Food withdraws the herbivore yield, bounded by the stock.
func (r *DynamicRegion) Food(diet traits.Diet, dt float64) float64 {
	if diet == traits.Carnivore {
		return 0
	}
	eaten := math.Min(r.stock, r.herbivoreYield(&r.food, dt))
	r.stock -= eaten
	return eaten
}

// Update drains dt*factor from the stock with the configured probability.
// The stock never goes below zero.
func (r *DynamicRegion) Update(dt float64) {
	if r.rng.Float64() < r.food.DrainChance {
		r.stock = math.Max(0, r.stock-dt*r.factor)
	}
}

// Info implements Region.
func (r *DynamicRegion) Info() RegionInfo {
	return RegionInfo{
		Type:       DynamicRegionType,
		Herbivores: r.CountByDiet(traits.Herbivore),
		Carnivores: r.CountByDiet(traits.Carnivore),
		Food:       r.stock,
		Bounded:    true,
	}
}
