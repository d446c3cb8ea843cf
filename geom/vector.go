// Package geom provides the 2D vector type used for positions and headings.
package geom

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector is an immutable 2D point or direction.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V is shorthand for Vector{X: x, Y: y}.
func V(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) r2() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

func fromR2(p r2.Vec) Vector {
	return Vector{X: p.X, Y: p.Y}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return fromR2(r2.Add(v.r2(), o.r2()))
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return fromR2(r2.Sub(v.r2(), o.r2()))
}

// Scale returns v * f.
func (v Vector) Scale(f float64) Vector {
	return fromR2(r2.Scale(f, v.r2()))
}

// Dot returns the inner product of v and o.
func (v Vector) Dot(o Vector) float64 {
	return r2.Dot(v.r2(), o.r2())
}

// Magnitude returns the Euclidean length of v.
func (v Vector) Magnitude() float64 {
	return r2.Norm(v.r2())
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vector) DistanceTo(o Vector) float64 {
	return v.Sub(o).Magnitude()
}

// Direction returns the unit vector of v. The zero vector has no direction
// and is returned unchanged.
func (v Vector) Direction() Vector {
	if v.Magnitude() > 0 {
		return fromR2(r2.Unit(v.r2()))
	}
	return v
}

// Rotate returns v rotated counter-clockwise by deg degrees around the origin.
func (v Vector) Rotate(deg float64) Vector {
	return fromR2(r2.Rotate(v.r2(), deg*math.Pi/180, r2.Vec{}))
}

// Angle returns the signed angle in degrees, within [-180, 180], between v and o.
func (v Vector) Angle(o Vector) float64 {
	a2 := math.Atan2(o.X, o.Y)
	a1 := math.Atan2(v.X, v.Y)
	angle := a1 - a2
	k := 2 * math.Pi
	if a1 > a2 {
		k = -k
	}
	if math.Abs(k+angle) < math.Abs(angle) {
		angle += k
	}
	return angle * 180 / math.Pi
}

// Wrap folds v into the rectangle [0,width] x [0,height]. A coordinate past
// the far edge by an exact multiple of the extent lands on the far edge.
func (v Vector) Wrap(width, height int) Vector {
	return Vector{X: wrap(v.X, float64(width)), Y: wrap(v.Y, float64(height))}
}

func wrap(c, extent float64) float64 {
	if extent <= 0 || math.IsNaN(c) || math.IsInf(c, 0) || (c >= 0 && c <= extent) {
		return c
	}
	r := math.Mod(c, extent)
	switch {
	case c > extent && r == 0:
		return extent
	case r < 0:
		r += extent
	}
	return min(max(r, 0), extent)
}

// Inside reports whether v lies in [0,width] x [0,height].
func (v Vector) Inside(width, height int) bool {
	return v.X >= 0 && v.X <= float64(width) && v.Y >= 0 && v.Y <= float64(height)
}

// String implements fmt.Stringer.
func (v Vector) String() string {
	return fmt.Sprintf("[%g,%g]", v.X, v.Y)
}

// MarshalJSON encodes v as a two element array, the layout snapshots use.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{v.X, v.Y})
}

// UnmarshalJSON accepts the two element array written by MarshalJSON.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var xy [2]float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("decoding vector %s: %w", data, err)
	}
	v.X, v.Y = xy[0], xy[1]
	return nil
}

// RandomPosition returns a uniformly distributed point in [0,width) x [0,height).
func RandomPosition(rng *rand.Rand, width, height float64) Vector {
	x := rng.Float64() * width
	y := rng.Float64() * height
	return Vector{X: x, Y: y}
}

// RandomVector returns a vector with both coordinates uniform in [min,max).
func RandomVector(rng *rand.Rand, min, max float64) Vector {
	x := min + rng.Float64()*(max-min)
	y := min + rng.Float64()*(max-min)
	return Vector{X: x, Y: y}
}
