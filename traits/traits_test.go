package traits

import "testing"

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{"NORMAL", Normal},
		{"danger", Threatened},
		{"HUNGER", Threatened},
		{"Threatened", Threatened},
		{"MATE", Mate},
		{"DEAD", Dead},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if err != nil {
				t.Fatalf("ParseState(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseState(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseState("SLEEPING"); err == nil {
		t.Error("ParseState(SLEEPING) should fail")
	}
}

func TestKindDiet(t *testing.T) {
	if Sheep.Diet() != Herbivore {
		t.Errorf("Sheep.Diet() = %v, want HERBIVORE", Sheep.Diet())
	}
	if Wolf.Diet() != Carnivore {
		t.Errorf("Wolf.Diet() = %v, want CARNIVORE", Wolf.Diet())
	}
	if Wolf.Key() != "wolf" {
		t.Errorf("Wolf.Key() = %q, want wolf", Wolf.Key())
	}
}

func TestDietText(t *testing.T) {
	b, err := Carnivore.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var d Diet
	if err := d.UnmarshalText(b); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if d != Carnivore {
		t.Errorf("round trip = %v, want CARNIVORE", d)
	}
}
