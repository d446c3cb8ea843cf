package game

import (
	"iter"

	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/systems"
	"github.com/pthm-cable/ecosys/traits"
)

// MapInfo is the read-only view of the region grid handed to observers.
type MapInfo interface {
	Cols() int
	Rows() int
	Width() int
	Height() int
	CellWidth() int
	CellHeight() int
	Regions() iter.Seq[systems.RegionData]
}

// AnimalInfo is a copy of one animal's observable state.
type AnimalInfo struct {
	ID     uint32       `json:"id"`
	Kind   traits.Kind  `json:"kind"`
	Code   string       `json:"gcode"`
	Diet   traits.Diet  `json:"diet"`
	State  traits.State `json:"state"`
	Pos    geom.Vector  `json:"pos"`
	Dest   geom.Vector  `json:"dest"`
	Speed  float64      `json:"speed"`
	Sight  float64      `json:"sight"`
	Energy float64      `json:"energy"`
	Age    float64      `json:"age"`
	Desire float64      `json:"desire"`
}

// Observer receives simulator lifecycle notifications. Callbacks run on the
// stepping goroutine and must not call back into the simulator.
type Observer interface {
	OnRegister(time float64, m MapInfo, animals []AnimalInfo)
	OnReset(time float64, m MapInfo, animals []AnimalInfo)
	OnAnimalAdded(time float64, m MapInfo, animals []AnimalInfo, a AnimalInfo)
	OnRegionSet(row, col int, m MapInfo, r systems.RegionInfo)
	OnAdvanced(time float64, m MapInfo, animals []AnimalInfo, dt float64)
}

// NopObserver implements Observer with no-ops. Embed it to handle only
// some notifications.
type NopObserver struct{}

func (NopObserver) OnRegister(float64, MapInfo, []AnimalInfo)                {}
func (NopObserver) OnReset(float64, MapInfo, []AnimalInfo)                   {}
func (NopObserver) OnAnimalAdded(float64, MapInfo, []AnimalInfo, AnimalInfo) {}
func (NopObserver) OnRegionSet(int, int, MapInfo, systems.RegionInfo)        {}
func (NopObserver) OnAdvanced(float64, MapInfo, []AnimalInfo, float64)       {}
