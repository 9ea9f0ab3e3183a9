// Package costgrid provides the immutable 2D cost-grid snapshot that the
// sampling planners consume, along with index math and world/map conversions.
package costgrid

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Recognized cost values. A cell at or above LethalCost is impassable.
const (
	FreeCost   uint8 = 0
	LethalCost uint8 = 253
	MaxCost    uint8 = 255
)

// Grid is an immutable snapshot of a 2D cost grid. Cells are addressed by
// integer (x, y) with x in [0, NX) and y in [0, NY); the flat index of a cell
// is y*NX + x.
type Grid struct {
	nx, ny int
	res    float64
	origin r2.Point
	costs  []uint8
}

// NewGrid creates a grid snapshot from the given dimensions and cost array.
// The costs slice is copied so later mutation by the caller cannot be observed.
func NewGrid(nx, ny int, res float64, origin r2.Point, costs []uint8) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, errors.Errorf("grid dimensions must be positive, got %dx%d", nx, ny)
	}
	if res <= 0 {
		return nil, errors.Errorf("grid resolution must be positive, got %f", res)
	}
	if len(costs) != nx*ny {
		return nil, errors.Errorf("cost array length %d does not match %dx%d grid", len(costs), nx, ny)
	}
	copied := make([]uint8, len(costs))
	copy(copied, costs)
	return &Grid{nx: nx, ny: ny, res: res, origin: origin, costs: copied}, nil
}

// NewEmptyGrid creates an all-free grid, useful for tests and benchmarks.
func NewEmptyGrid(nx, ny int, res float64, origin r2.Point) (*Grid, error) {
	return NewGrid(nx, ny, res, origin, make([]uint8, nx*ny))
}

// NX returns the grid width in cells.
func (g *Grid) NX() int { return g.nx }

// NY returns the grid height in cells.
func (g *Grid) NY() int { return g.ny }

// Resolution returns the world size of one cell.
func (g *Grid) Resolution() float64 { return g.res }

// Origin returns the world coordinates of the grid's (0, 0) corner.
func (g *Grid) Origin() r2.Point { return g.origin }

// Size returns the total number of cells.
func (g *Grid) Size() int { return g.nx * g.ny }

// Inside reports whether the cell (x, y) lies on the grid.
func (g *Grid) Inside(x, y int) bool {
	return x >= 0 && x < g.nx && y >= 0 && y < g.ny
}

// Cost returns the traversal cost of cell (x, y). Off-grid cells are lethal.
func (g *Grid) Cost(x, y int) uint8 {
	if !g.Inside(x, y) {
		return LethalCost
	}
	return g.costs[y*g.nx+x]
}

// IsLethal reports whether cell (x, y) is impassable.
func (g *Grid) IsLethal(x, y int) bool {
	return g.Cost(x, y) >= LethalCost
}

// GridToIndex converts cell coordinates to the flat cell index.
func (g *Grid) GridToIndex(x, y int) int {
	return y*g.nx + x
}

// IndexToGrid converts a flat cell index back to cell coordinates.
func (g *Grid) IndexToGrid(index int) (int, int) {
	return index % g.nx, index / g.nx
}

// WorldToMap converts world coordinates to cell coordinates using a floor
// conversion. The second return is false when the point is off the grid.
func (g *Grid) WorldToMap(w r2.Point) (int, int, bool) {
	if w.X < g.origin.X || w.Y < g.origin.Y {
		return 0, 0, false
	}
	mx := int(math.Floor((w.X - g.origin.X) / g.res))
	my := int(math.Floor((w.Y - g.origin.Y) / g.res))
	if mx >= g.nx || my >= g.ny {
		return 0, 0, false
	}
	return mx, my, true
}

// MapToWorld converts cell coordinates to the world coordinates of the cell
// center.
func (g *Grid) MapToWorld(mx, my int) r2.Point {
	return r2.Point{
		X: g.origin.X + (float64(mx)+0.5)*g.res,
		Y: g.origin.Y + (float64(my)+0.5)*g.res,
	}
}

// Outline returns a copy of the grid whose border row and column cells are
// painted lethal. The receiver is unchanged.
func (g *Grid) Outline() *Grid {
	costs := make([]uint8, len(g.costs))
	copy(costs, g.costs)
	for x := 0; x < g.nx; x++ {
		costs[x] = LethalCost
		costs[(g.ny-1)*g.nx+x] = LethalCost
	}
	for y := 0; y < g.ny; y++ {
		costs[y*g.nx] = LethalCost
		costs[y*g.nx+g.nx-1] = LethalCost
	}
	return &Grid{nx: g.nx, ny: g.ny, res: g.res, origin: g.origin, costs: costs}
}

// SetCost returns a copy of the grid with one cell's cost replaced. Intended
// for scenario construction; planning never mutates a grid.
func (g *Grid) SetCost(x, y int, cost uint8) *Grid {
	costs := make([]uint8, len(g.costs))
	copy(costs, g.costs)
	if g.Inside(x, y) {
		costs[y*g.nx+x] = cost
	}
	return &Grid{nx: g.nx, ny: g.ny, res: g.res, origin: g.origin, costs: costs}
}
