// Package systems provides the regions, the region grid and the per-species
// state machines that act on animals stored in the ECS world.
package systems

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/traits"
)

// Grid limits.
const (
	MinWidth  = 10
	MinHeight = 10
	MinCols   = 1
	MinRows   = 1
)

var (
	// ErrConfiguration reports invalid world dimensions or region parameters.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNotRegistered reports an operation on an animal the grid does not know.
	ErrNotRegistered = errors.New("animal not registered")
)

// RegionData is a read-only view of one grid cell.
type RegionData struct {
	Row, Col int
	Info     RegionInfo
	Animals  []ecs.Entity
}

// RegionGrid partitions the world into rows x cols regions and owns the
// animal -> region index.
type RegionGrid struct {
	animals *AnimalStore
	rng     *rand.Rand

	cols, rows    int
	width, height int
	cellW, cellH  int
	regions       []Region // row-major
}

// NewRegionGrid creates a grid of default regions over a width x height world.
// cols and rows are clamped to [1, width] and [1, height].
func NewRegionGrid(w *ecs.World, cols, rows, width, height int, rng *rand.Rand) (*RegionGrid, error) {
	if width < MinWidth {
		return nil, fmt.Errorf("width %d is below %d: %w", width, MinWidth, ErrConfiguration)
	}
	if height < MinHeight {
		return nil, fmt.Errorf("height %d is below %d: %w", height, MinHeight, ErrConfiguration)
	}
	cols = clampInt(cols, MinCols, width)
	rows = clampInt(rows, MinRows, height)

	g := &RegionGrid{
		animals: NewAnimalStore(w),
		rng:     rng,
		cols:    cols,
		rows:    rows,
		width:   width,
		height:  height,
		cellW:   ceilDiv(width, cols),
		cellH:   ceilDiv(height, rows),
		regions: make([]Region, cols*rows),
	}
	for i := range g.regions {
		g.regions[i] = NewDefaultRegion()
	}
	return g, nil
}

// Cols returns the number of columns.
func (g *RegionGrid) Cols() int { return g.cols }

// Rows returns the number of rows.
func (g *RegionGrid) Rows() int { return g.rows }

// Width returns the world width.
func (g *RegionGrid) Width() int { return g.width }

// Height returns the world height.
func (g *RegionGrid) Height() int { return g.height }

// CellWidth returns the width of one region.
func (g *RegionGrid) CellWidth() int { return g.cellW }

// CellHeight returns the height of one region.
func (g *RegionGrid) CellHeight() int { return g.cellH }

// Store returns the animal store the grid reads positions from.
func (g *RegionGrid) Store() *AnimalStore { return g.animals }

// RegionAt returns the region at (row, col), or nil when out of range.
func (g *RegionGrid) RegionAt(row, col int) Region {
	if !g.inRange(row, col) {
		return nil
	}
	return g.regions[row*g.cols+col]
}

// SetRegion replaces the region at (row, col). Residents of the old region
// move into r. Out-of-range coordinates are ignored; the result reports
// whether the region was replaced.
func (g *RegionGrid) SetRegion(row, col int, r Region) bool {
	if !g.inRange(row, col) || r == nil {
		return false
	}
	idx := row*g.cols + col
	for _, e := range g.regions[idx].Animals() {
		r.AddAnimal(e, g.animals.Diet(e))
	}
	g.regions[idx] = r
	return true
}

// RegisterAnimal places e in the world and in its region. A supplied
// position is wrapped into the world, a missing one is drawn at random;
// the destination is always drawn at random.
func (g *RegionGrid) RegisterAnimal(e ecs.Entity) error {
	if !g.animals.Alive(e) {
		return fmt.Errorf("registering animal: %w", ErrNotRegistered)
	}
	cell := g.animals.Cell(e)
	if cell.Registered {
		return nil
	}

	body := g.animals.Body(e)
	if body.Placed {
		body.Pos = body.Pos.Wrap(g.width, g.height)
	} else {
		body.Pos = geom.RandomPosition(g.rng, float64(g.width), float64(g.height))
		body.Placed = true
	}
	body.Dest = g.RandomPosition()

	cell.Row, cell.Col = g.cellOf(body.Pos)
	cell.Registered = true
	g.regions[cell.Row*g.cols+cell.Col].AddAnimal(e, g.animals.Diet(e))
	return nil
}

// UnregisterAnimal removes e from its region and the index.
func (g *RegionGrid) UnregisterAnimal(e ecs.Entity) error {
	cell, err := g.cellFor(e)
	if err != nil {
		return fmt.Errorf("unregistering animal: %w", err)
	}
	g.regions[cell.Row*g.cols+cell.Col].RemoveAnimal(e)
	cell.Registered = false
	return nil
}

// UpdateAnimalRegion moves e to the region its position now falls in.
// Calling it again without movement changes nothing.
func (g *RegionGrid) UpdateAnimalRegion(e ecs.Entity) error {
	cell, err := g.cellFor(e)
	if err != nil {
		return fmt.Errorf("updating animal region: %w", err)
	}
	row, col := g.cellOf(g.animals.Body(e).Pos)
	if row == cell.Row && col == cell.Col {
		return nil
	}
	diet := g.animals.Diet(e)
	g.regions[cell.Row*g.cols+cell.Col].RemoveAnimal(e)
	g.regions[row*g.cols+col].AddAnimal(e, diet)
	cell.Row, cell.Col = row, col
	return nil
}

// RemoveDeadAnimals unregisters every DEAD animal and returns them, in
// row-major region order then residence order.
func (g *RegionGrid) RemoveDeadAnimals() []ecs.Entity {
	var dead []ecs.Entity
	for _, r := range g.regions {
		for _, e := range r.Animals() {
			if g.animals.Behavior(e).State == traits.Dead {
				dead = append(dead, e)
			}
		}
	}
	for _, e := range dead {
		cell := g.animals.Cell(e)
		g.regions[cell.Row*g.cols+cell.Col].RemoveAnimal(e)
		cell.Registered = false
	}
	return dead
}

// Food returns what e's region supplies to it over dt. Unregistered
// animals get nothing.
func (g *RegionGrid) Food(e ecs.Entity, dt float64) float64 {
	cell, err := g.cellFor(e)
	if err != nil {
		return 0
	}
	return g.regions[cell.Row*g.cols+cell.Col].Food(g.animals.Diet(e), dt)
}

// AnimalsInRange returns the residents accepted by filter in every region
// overlapped by the square of half-side SightRange around e, clamped to
// the world. The far row and column of the square are excluded and no
// distance check is made.
func (g *RegionGrid) AnimalsInRange(e ecs.Entity, filter func(ecs.Entity) bool) []ecs.Entity {
	body := g.animals.Body(e)
	minX := math.Max(body.Pos.X-body.SightRange, 0)
	minY := math.Max(body.Pos.Y-body.SightRange, 0)
	maxX := math.Min(body.Pos.X+body.SightRange, float64(g.width))
	maxY := math.Min(body.Pos.Y+body.SightRange, float64(g.height))

	minRow := int(minY / float64(g.cellH))
	maxRow := min(int(maxY/float64(g.cellH)), g.rows)
	minCol := int(minX / float64(g.cellW))
	maxCol := min(int(maxX/float64(g.cellW)), g.cols)

	var out []ecs.Entity
	for row := minRow; row < maxRow; row++ {
		for col := minCol; col < maxCol; col++ {
			for _, other := range g.regions[row*g.cols+col].Animals() {
				if filter == nil || filter(other) {
					out = append(out, other)
				}
			}
		}
	}
	return out
}

// UpdateAllRegions advances every region once, row-major.
func (g *RegionGrid) UpdateAllRegions(dt float64) {
	for _, r := range g.regions {
		r.Update(dt)
	}
}

// Regions yields every cell in row-major order.
func (g *RegionGrid) Regions() iter.Seq[RegionData] {
	return func(yield func(RegionData) bool) {
		for i, r := range g.regions {
			d := RegionData{
				Row:     i / g.cols,
				Col:     i % g.cols,
				Info:    r.Info(),
				Animals: r.Animals(),
			}
			if !yield(d) {
				return
			}
		}
	}
}

// RandomPosition draws a uniform point in the world.
func (g *RegionGrid) RandomPosition() geom.Vector {
	return geom.RandomPosition(g.rng, float64(g.width), float64(g.height))
}

// Verify checks that every registered animal is a resident of exactly the
// region its index names and that live handles equals the registered set.
func (g *RegionGrid) Verify(live []ecs.Entity) error {
	seen := make(map[ecs.Entity]struct{}, len(live))
	for i, r := range g.regions {
		for _, e := range r.Animals() {
			if !g.animals.Alive(e) {
				return fmt.Errorf("region %d holds a removed animal: %w", i, ErrNotRegistered)
			}
			cell := g.animals.Cell(e)
			if !cell.Registered || cell.Row*g.cols+cell.Col != i {
				return fmt.Errorf("region %d holds an animal indexed at (%d,%d): %w", i, cell.Row, cell.Col, ErrNotRegistered)
			}
			if _, dup := seen[e]; dup {
				return fmt.Errorf("animal resident twice: %w", ErrNotRegistered)
			}
			seen[e] = struct{}{}
		}
	}
	if len(seen) != len(live) {
		return fmt.Errorf("grid holds %d animals, simulator %d: %w", len(seen), len(live), ErrNotRegistered)
	}
	for _, e := range live {
		if _, ok := seen[e]; !ok {
			return fmt.Errorf("live animal missing from grid: %w", ErrNotRegistered)
		}
	}
	return nil
}

// cellFor returns the index entry of a registered animal.
func (g *RegionGrid) cellFor(e ecs.Entity) (*components.Cell, error) {
	if !g.animals.Alive(e) {
		return nil, ErrNotRegistered
	}
	cell := g.animals.Cell(e)
	if !cell.Registered {
		return nil, ErrNotRegistered
	}
	return cell, nil
}

// cellOf returns the region coordinates of a world position, clamped so a
// point on the far edge stays in the last row or column.
func (g *RegionGrid) cellOf(p geom.Vector) (row, col int) {
	col = int(math.Floor(p.X / float64(g.cellW)))
	row = int(math.Floor(p.Y / float64(g.cellH)))
	return clampInt(row, 0, g.rows-1), clampInt(col, 0, g.cols-1)
}

func (g *RegionGrid) inRange(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}
