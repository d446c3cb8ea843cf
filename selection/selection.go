// Package selection provides the stateless policies animals use to pick a
// mate, a threat or a prey out of the animals in sight.
package selection

import "github.com/pthm-cable/ecosys/geom"

// Candidate is the view of an animal a policy selects on.
type Candidate struct {
	Pos geom.Vector
	Age float64
}

// Policy picks one candidate relative to a reference animal. ok is false
// when cs is empty.
type Policy interface {
	Select(ref Candidate, cs []Candidate) (idx int, ok bool)
	Type() string
}

// Type tags used by descriptions.
const (
	FirstType    = "first"
	ClosestType  = "closest"
	YoungestType = "youngest"
)

// First picks the first candidate.
type First struct{}

func (First) Select(_ Candidate, cs []Candidate) (int, bool) {
	if len(cs) == 0 {
		return -1, false
	}
	return 0, true
}

func (First) Type() string { return FirstType }

// Closest picks the candidate nearest to the reference, ties to the earliest.
type Closest struct{}

func (Closest) Select(ref Candidate, cs []Candidate) (int, bool) {
	return argmin(cs, func(c Candidate) float64 {
		return ref.Pos.DistanceTo(c.Pos)
	})
}

func (Closest) Type() string { return ClosestType }

// Youngest picks the candidate with the lowest age, ties to the earliest.
type Youngest struct{}

func (Youngest) Select(_ Candidate, cs []Candidate) (int, bool) {
	return argmin(cs, func(c Candidate) float64 {
		return c.Age
	})
}

func (Youngest) Type() string { return YoungestType }

func argmin(cs []Candidate, key func(Candidate) float64) (int, bool) {
	if len(cs) == 0 {
		return -1, false
	}
	best, bestKey := 0, key(cs[0])
	for i := 1; i < len(cs); i++ {
		if k := key(cs[i]); k < bestKey {
			best, bestKey = i, k
		}
	}
	return best, true
}

// OrFirst returns p, or First when p is nil.
func OrFirst(p Policy) Policy {
	if p == nil {
		return First{}
	}
	return p
}
