package selection

import (
	"testing"

	"github.com/pthm-cable/ecosys/geom"
)

func TestPolicies(t *testing.T) {
	ref := Candidate{Pos: geom.V(0, 0)}
	cs := []Candidate{
		{Pos: geom.V(10, 0), Age: 2},
		{Pos: geom.V(3, 0), Age: 5},
		{Pos: geom.V(7, 0), Age: 1},
	}

	tests := []struct {
		name   string
		policy Policy
		want   int
	}{
		{"first", First{}, 0},
		{"closest", Closest{}, 1},
		{"youngest", Youngest{}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.policy.Select(ref, cs)
			if !ok {
				t.Fatal("Select returned no candidate")
			}
			if got != tt.want {
				t.Errorf("Select = %d, want %d", got, tt.want)
			}
			if _, ok := tt.policy.Select(ref, nil); ok {
				t.Error("Select on empty list should report none")
			}
			if tt.policy.Type() != tt.name {
				t.Errorf("Type() = %q, want %q", tt.policy.Type(), tt.name)
			}
		})
	}
}

func TestClosestTieKeepsEarliest(t *testing.T) {
	cs := []Candidate{
		{Pos: geom.V(0, 4)},
		{Pos: geom.V(4, 0)},
	}
	if got, _ := (Closest{}).Select(Candidate{}, cs); got != 0 {
		t.Errorf("Select = %d, want 0", got)
	}
}

func TestOrFirst(t *testing.T) {
	if OrFirst(nil).Type() != FirstType {
		t.Error("OrFirst(nil) should be First")
	}
	if OrFirst(Youngest{}).Type() != YoungestType {
		t.Error("OrFirst should keep a non-nil policy")
	}
}
