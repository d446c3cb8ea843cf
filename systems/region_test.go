package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/traits"
)

func addResidents(r Region, diet traits.Diet, n int) {
	for i := 0; i < n; i++ {
		r.AddAnimal(ecs.Entity{}, diet)
	}
}

func TestDefaultRegionFood(t *testing.T) {
	tests := []struct {
		name       string
		herbivores int
		diet       traits.Diet
		dt         float64
		want       float64
	}{
		{"carnivore gets nothing", 1, traits.Carnivore, 1, 0},
		{"uncrowded", 3, traits.Herbivore, 0.5, 30},
		{"at threshold", 5, traits.Herbivore, 1, 60},
		{"crowded", 7, traits.Herbivore, 1, 60 * math.Exp(-4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefaultRegion()
			addResidents(r, traits.Herbivore, tt.herbivores)
			addResidents(r, traits.Carnivore, 2)

			got := r.Food(tt.diet, tt.dt)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Food = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDynamicRegion_WithdrawCappedAtStock(t *testing.T) {
	r, err := NewDynamicRegion(5, 2, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewDynamicRegion failed: %v", err)
	}

	if got := r.Food(traits.Carnivore, 1); got != 0 {
		t.Errorf("carnivore Food = %v, want 0", got)
	}
	if got := r.Food(traits.Herbivore, 1); got != 5 {
		t.Errorf("Food = %v, want the remaining 5", got)
	}
	if r.Stock() != 0 {
		t.Errorf("stock = %v, want 0", r.Stock())
	}
	if got := r.Food(traits.Herbivore, 1); got != 0 {
		t.Errorf("Food on empty stock = %v, want 0", got)
	}
}

func TestDynamicRegion_DrainSaturates(t *testing.T) {
	r, err := NewDynamicRegion(5, 2, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}

	drained := false
	for i := 0; i < 200; i++ {
		prev := r.Stock()
		r.Update(1)
		cur := r.Stock()
		if cur < 0 {
			t.Fatalf("stock went negative: %v", cur)
		}
		step := prev - cur
		if step != 0 && step != 2 && cur != 0 {
			t.Fatalf("drain step = %v, want 0 or 2", step)
		}
		if step > 0 {
			drained = true
		}
	}
	if !drained {
		t.Error("stock never drained in 200 updates")
	}
	if r.Stock() != 0 {
		t.Errorf("stock = %v after 200 updates, want 0", r.Stock())
	}
}

func TestNewDynamicRegion_NegativeFood(t *testing.T) {
	_, err := NewDynamicRegion(-1, 2, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestMembershipKeepsOrder(t *testing.T) {
	f := newFixture(t, 1, 1, 10, 10)
	a := f.spawn(t, traits.Sheep, f.grid.RandomPosition())
	b := f.spawn(t, traits.Wolf, f.grid.RandomPosition())
	c := f.spawn(t, traits.Sheep, f.grid.RandomPosition())

	r := f.grid.RegionAt(0, 0)
	if !r.RemoveAnimal(b) {
		t.Fatal("RemoveAnimal should report a resident")
	}
	if r.RemoveAnimal(b) {
		t.Error("RemoveAnimal should report a non-resident")
	}
	got := r.Animals()
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("Animals = %v, want [%v %v]", got, a, c)
	}
	if n := r.CountByDiet(traits.Herbivore); n != 2 {
		t.Errorf("CountByDiet(herbivore) = %d, want 2", n)
	}
}
