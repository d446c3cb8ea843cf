package factory

import (
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/selection"
	"github.com/pthm-cable/ecosys/systems"
	"github.com/pthm-cable/ecosys/traits"
)

// targetKey is the data key naming the target policy of each species.
var targetKey = map[traits.Kind]string{
	traits.Sheep: "danger_strategy",
	traits.Wolf:  "hunt_strategy",
}

type posData struct {
	XRange []float64 `yaml:"x_range"`
	YRange []float64 `yaml:"y_range"`
}

// NewAnimalFactory returns a factory for sheep and wolves. Strategies are
// built by policies; random draws come from rng.
func NewAnimalFactory(policies *Factory[selection.Policy], rng *rand.Rand) *Factory[components.Animal] {
	var builders []Builder[components.Animal]
	for _, kind := range traits.Kinds {
		builders = append(builders, animalBuilder(kind, policies, rng))
	}
	return New(builders...)
}

func animalBuilder(kind traits.Kind, policies *Factory[selection.Policy], rng *rand.Rand) Builder[components.Animal] {
	tkey := targetKey[kind]
	return builder[components.Animal]{
		tag:  kind.Key(),
		desc: fmt.Sprintf("Create a %s", kind.Key()),
		example: map[string]any{
			"mate_strategy": map[string]any{"type": selection.FirstType},
			tkey:            map[string]any{"type": selection.ClosestType},
			"pos": map[string]any{
				"x_range": []float64{100, 200},
				"y_range": []float64{100, 200},
			},
		},
		create: func(data *yaml.Node) (components.Animal, error) {
			var d map[string]yaml.Node
			if err := decode(data, &d); err != nil {
				return components.Animal{}, err
			}

			mate, err := strategy(policies, d, "mate_strategy")
			if err != nil {
				return components.Animal{}, err
			}
			target, err := strategy(policies, d, tkey)
			if err != nil {
				return components.Animal{}, err
			}

			a := newFounder(kind, rng)
			a.Behavior.MatePolicy = mate
			a.Behavior.TargetPolicy = target

			if n, ok := d["pos"]; ok && !isEmpty(&n) {
				pos, err := position(&n, rng)
				if err != nil {
					return components.Animal{}, err
				}
				a.Body.Pos = pos
				a.Body.Placed = true
			}
			return a, nil
		},
	}
}

// newFounder builds an animal with the species' base parameters and a
// jittered speed. Placement is left to registration.
func newFounder(kind traits.Kind, rng *rand.Rand) components.Animal {
	cfg := config.Cfg()
	sc := cfg.Species.For(kind)
	return components.Animal{
		Genome: components.Genome{Kind: kind, Code: sc.GeneticCode, Diet: kind.Diet()},
		Body: components.Body{
			Speed:      systems.Jitter(rng, sc.Speed, cfg.Breeding.SpawnJitter),
			SightRange: sc.Sight,
		},
		Vitals:   components.Vitals{Energy: cfg.Vitals.InitialEnergy, Age: sc.InitialAge},
		Behavior: components.Behavior{State: traits.Normal},
	}
}

// strategy builds the policy under key, defaulting to first.
func strategy(policies *Factory[selection.Policy], d map[string]yaml.Node, key string) (selection.Policy, error) {
	n, ok := d[key]
	if !ok || isEmpty(&n) {
		return selection.First{}, nil
	}
	var desc Description
	if err := n.Decode(&desc); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", key, err, ErrMalformedDescription)
	}
	p, err := policies.Create(desc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return p, nil
}

// position draws a point uniformly from the x_range and y_range of n.
func position(n *yaml.Node, rng *rand.Rand) (geom.Vector, error) {
	var p posData
	if err := decode(n, &p); err != nil {
		return geom.Vector{}, fmt.Errorf("pos: %w", err)
	}
	x, err := draw(p.XRange, rng)
	if err != nil {
		return geom.Vector{}, fmt.Errorf("pos.x_range: %w", err)
	}
	y, err := draw(p.YRange, rng)
	if err != nil {
		return geom.Vector{}, fmt.Errorf("pos.y_range: %w", err)
	}
	return geom.V(x, y), nil
}

func draw(r []float64, rng *rand.Rand) (float64, error) {
	if len(r) != 2 || r[0] > r[1] {
		return 0, fmt.Errorf("want [min, max], got %v: %w", r, ErrMalformedDescription)
	}
	return r[0] + rng.Float64()*(r[1]-r[0]), nil
}
