package game

import (
	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/traits"
)

// Snapshot is the serializable world state after a step.
type Snapshot struct {
	Time  float64   `json:"time"`
	State GridState `json:"state"`
}

// GridState lists every region in row-major order.
type GridState struct {
	Regions []RegionState `json:"regions"`
}

// RegionState is one region and the animals resident in it.
type RegionState struct {
	Row        int           `json:"row"`
	Col        int           `json:"col"`
	Type       string        `json:"type"`
	Herbivores int           `json:"herbivores"`
	Carnivores int           `json:"carnivores"`
	Food       *float64      `json:"food,omitempty"` // remaining stock of bounded regions
	Animals    []AnimalState `json:"animals"`
}

// AnimalState is the serialized form of one animal.
type AnimalState struct {
	ID    uint32       `json:"id"`
	Pos   geom.Vector  `json:"pos"`
	Code  string       `json:"gcode"`
	Diet  traits.Diet  `json:"diet"`
	State traits.State `json:"state"`
}

// Snapshot captures the clock and every region with its residents.
func (s *Simulator) Snapshot() Snapshot {
	snap := Snapshot{
		Time:  s.clock,
		State: GridState{Regions: make([]RegionState, 0, s.grid.Rows()*s.grid.Cols())},
	}
	for d := range s.grid.Regions() {
		rs := RegionState{
			Row:        d.Row,
			Col:        d.Col,
			Type:       d.Info.Type,
			Herbivores: d.Info.Herbivores,
			Carnivores: d.Info.Carnivores,
			Animals:    make([]AnimalState, len(d.Animals)),
		}
		if d.Info.Bounded {
			food := d.Info.Food
			rs.Food = &food
		}
		for i, e := range d.Animals {
			g := s.store.Genome(e)
			rs.Animals[i] = AnimalState{
				ID:    g.ID,
				Pos:   s.store.Body(e).Pos,
				Code:  g.Code,
				Diet:  g.Diet,
				State: s.store.Behavior(e).State,
			}
		}
		snap.State.Regions = append(snap.State.Regions, rs)
	}
	return snap
}
