// Package traits defines the enumerations describing an animal.
package traits

import (
	"fmt"
	"strings"
)

// Diet is what an animal eats.
type Diet uint8

const (
	Herbivore Diet = iota // Feeds on region food
	Carnivore             // Feeds by killing herbivores
)

// String returns the upper-case name of the diet.
func (d Diet) String() string {
	switch d {
	case Herbivore:
		return "HERBIVORE"
	case Carnivore:
		return "CARNIVORE"
	default:
		return fmt.Sprintf("Diet(%d)", uint8(d))
	}
}

// ParseDiet parses a diet name, case-insensitive.
func ParseDiet(s string) (Diet, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HERBIVORE", "HERBIVORES":
		return Herbivore, nil
	case "CARNIVORE", "CARNIVORES":
		return Carnivore, nil
	}
	return 0, fmt.Errorf("unknown diet %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Diet) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Diet) UnmarshalText(b []byte) error {
	v, err := ParseDiet(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// State is the behavioral state of an animal.
type State uint8

const (
	Normal     State = iota // Wandering
	Threatened              // In danger (prey) or hungry (predator)
	Mate                    // Looking for a partner
	Dead                    // Awaiting removal
)

// String returns the upper-case name of the state.
func (s State) String() string {
	switch s {
	case Normal:
		return "NORMAL"
	case Threatened:
		return "THREATENED"
	case Mate:
		return "MATE"
	case Dead:
		return "DEAD"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ParseState parses a state name. DANGER and HUNGER are aliases of THREATENED.
func ParseState(s string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NORMAL":
		return Normal, nil
	case "THREATENED", "DANGER", "HUNGER":
		return Threatened, nil
	case "MATE":
		return Mate, nil
	case "DEAD":
		return Dead, nil
	}
	return 0, fmt.Errorf("unknown state %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Kind is the species of an animal.
type Kind uint8

const (
	Sheep Kind = iota
	Wolf
)

// Kinds lists every species in declaration order.
var Kinds = []Kind{Sheep, Wolf}

// String returns the upper-case name of the species.
func (k Kind) String() string {
	switch k {
	case Sheep:
		return "SHEEP"
	case Wolf:
		return "WOLF"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Key returns the lower-case name used by config and scenario files.
func (k Kind) Key() string {
	return strings.ToLower(k.String())
}

// Diet returns the diet every member of the species shares.
func (k Kind) Diet() Diet {
	if k == Wolf {
		return Carnivore
	}
	return Herbivore
}

// ParseKind parses a species name, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SHEEP":
		return Sheep, nil
	case "WOLF":
		return Wolf, nil
	}
	return 0, fmt.Errorf("unknown species %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
