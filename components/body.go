package components

import "github.com/pthm-cable/ecosys/geom"

// Body holds the physical properties of an animal.
// Speed and SightRange are fixed at birth.
type Body struct {
	Pos        geom.Vector
	Dest       geom.Vector
	Speed      float64
	SightRange float64
	Placed     bool // Pos was supplied; otherwise drawn on registration
}

// InSight reports whether p is strictly closer than the sight range.
func (b *Body) InSight(p geom.Vector) bool {
	return b.Pos.DistanceTo(p) < b.SightRange
}
