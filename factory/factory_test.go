package factory

import (
	"errors"
	"math/rand"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/selection"
	"github.com/pthm-cable/ecosys/systems"
	"github.com/pthm-cable/ecosys/traits"
)

func init() {
	config.MustInit("")
}

func parse(t *testing.T, src string) Description {
	t.Helper()
	var d Description
	if err := yaml.Unmarshal([]byte(src), &d); err != nil {
		t.Fatalf("parsing description: %v", err)
	}
	return d
}

func TestPolicyFactory(t *testing.T) {
	f := NewPolicyFactory()
	tests := []struct {
		name    string
		src     string
		want    string
		wantErr error
	}{
		{"first", `{type: first}`, selection.FirstType, nil},
		{"closest with empty data", `{type: closest, data: {}}`, selection.ClosestType, nil},
		{"youngest", `{"type": "youngest", "data": null}`, selection.YoungestType, nil},
		{"payload rejected", `{type: closest, data: {k: 1}}`, "", ErrMalformedDescription},
		{"unknown", `{type: oldest}`, "", ErrUnrecognizedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.Create(parse(t, tt.src))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if p.Type() != tt.want {
				t.Errorf("type = %s, want %s", p.Type(), tt.want)
			}
		})
	}
}

func TestRegionFactory(t *testing.T) {
	f := NewRegionFactory(rand.New(rand.NewSource(1)))

	r, err := f.Create(parse(t, `{type: dynamic, data: {food: 5, factor: 3}}`))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	dyn, ok := r.(*systems.DynamicRegion)
	if !ok {
		t.Fatalf("got %T, want *systems.DynamicRegion", r)
	}
	if dyn.Stock() != 5 || dyn.Factor() != 3 {
		t.Errorf("stock/factor = %v/%v, want 5/3", dyn.Stock(), dyn.Factor())
	}

	r, err = f.Create(parse(t, `{type: dynamic}`))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := r.(*systems.DynamicRegion).Stock(); got != config.Cfg().Food.DynamicFood {
		t.Errorf("default stock = %v, want %v", got, config.Cfg().Food.DynamicFood)
	}

	if _, err := f.Create(parse(t, `{type: dynamic, data: {food: -1}}`)); !errors.Is(err, systems.ErrConfiguration) {
		t.Errorf("negative food: error = %v, want ErrConfiguration", err)
	}
	if _, err := f.Create(parse(t, `{type: dynamic, data: [1, 2]}`)); !errors.Is(err, ErrMalformedDescription) {
		t.Errorf("list data: error = %v, want ErrMalformedDescription", err)
	}

	r, err = f.Create(parse(t, `{type: default}`))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Info().Type != systems.DefaultRegionType {
		t.Errorf("type = %s, want default", r.Info().Type)
	}
}

func TestAnimalFactory(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))

	a, err := reg.Animals.Create(parse(t, `
type: wolf
data:
  mate_strategy: {type: youngest}
  hunt_strategy: {type: closest, data: {}}
  pos: {x_range: [100, 200], y_range: [10, 10]}
`))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	wolf := config.Cfg().Species.Wolf
	if a.Genome.Kind != traits.Wolf || a.Genome.Code != wolf.GeneticCode || a.Diet() != traits.Carnivore {
		t.Errorf("identity = %+v", a.Genome)
	}
	if a.Behavior.MatePolicy.Type() != selection.YoungestType || a.Behavior.TargetPolicy.Type() != selection.ClosestType {
		t.Errorf("policies = %s/%s", a.Behavior.MatePolicy.Type(), a.Behavior.TargetPolicy.Type())
	}
	if !a.Body.Placed || a.Body.Pos.X < 100 || a.Body.Pos.X > 200 || a.Body.Pos.Y != 10 {
		t.Errorf("position = %v placed=%v", a.Body.Pos, a.Body.Placed)
	}
	if s := a.Body.Speed; s < wolf.Speed*0.9 || s > wolf.Speed*1.1 {
		t.Errorf("speed %v outside the spawn jitter", s)
	}
	if a.Vitals.Energy != config.Cfg().Vitals.InitialEnergy || a.Vitals.Age != wolf.InitialAge {
		t.Errorf("vitals = %+v", a.Vitals)
	}

	sheep, err := reg.Animals.Create(parse(t, `{type: sheep}`))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sheep.Body.Placed {
		t.Error("sheep without pos should be placed on registration")
	}
	if sheep.Behavior.MatePolicy.Type() != selection.FirstType || sheep.Behavior.TargetPolicy.Type() != selection.FirstType {
		t.Error("missing strategies should default to first")
	}
}

func TestAnimalFactory_Malformed(t *testing.T) {
	reg := NewRegistry(rand.New(rand.NewSource(1)))
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"reversed range", `{type: sheep, data: {pos: {x_range: [5, 1], y_range: [0, 1]}}}`, ErrMalformedDescription},
		{"short range", `{type: sheep, data: {pos: {x_range: [5], y_range: [0, 1]}}}`, ErrMalformedDescription},
		{"bad strategy", `{type: sheep, data: {danger_strategy: {type: bravest}}}`, ErrUnrecognizedType},
		{"strategy payload", `{type: wolf, data: {mate_strategy: {type: first, data: {n: 1}}}}`, ErrMalformedDescription},
		{"unknown animal", `{type: lion}`, ErrUnrecognizedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.Animals.Create(parse(t, tt.src)); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegistryInfo(t *testing.T) {
	info := NewRegistry(rand.New(rand.NewSource(1))).Info()
	want := map[string][]string{
		"regions":    {"default", "dynamic"},
		"strategies": {"first", "closest", "youngest"},
		"animals":    {"sheep", "wolf"},
	}
	for group, types := range want {
		got := info[group]
		if len(got) != len(types) {
			t.Fatalf("%s: %d builders, want %d", group, len(got), len(types))
		}
		for i, typ := range types {
			if got[i].Type != typ {
				t.Errorf("%s[%d] = %s, want %s", group, i, got[i].Type, typ)
			}
		}
	}
}

func TestDescribe(t *testing.T) {
	d, err := Describe("dynamic", map[string]float64{"food": 7})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	r, err := NewRegionFactory(rand.New(rand.NewSource(1))).Create(d)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := r.(*systems.DynamicRegion).Stock(); got != 7 {
		t.Errorf("stock = %v, want 7", got)
	}
}
