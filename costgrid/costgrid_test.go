package costgrid

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestNewGridValidation(t *testing.T) {
	_, err := NewGrid(0, 5, 1.0, r2.Point{}, nil)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewGrid(5, 5, 0, r2.Point{}, make([]uint8, 25))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewGrid(5, 5, 1.0, r2.Point{}, make([]uint8, 24))
	test.That(t, err, test.ShouldNotBeNil)

	g, err := NewGrid(5, 5, 1.0, r2.Point{}, make([]uint8, 25))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Size(), test.ShouldEqual, 25)
}

func TestIndexBijection(t *testing.T) {
	g, err := NewEmptyGrid(7, 4, 1.0, r2.Point{})
	test.That(t, err, test.ShouldBeNil)

	seen := map[int]bool{}
	for y := 0; y < g.NY(); y++ {
		for x := 0; x < g.NX(); x++ {
			id := g.GridToIndex(x, y)
			test.That(t, seen[id], test.ShouldBeFalse)
			seen[id] = true
			rx, ry := g.IndexToGrid(id)
			test.That(t, rx, test.ShouldEqual, x)
			test.That(t, ry, test.ShouldEqual, y)
		}
	}
	test.That(t, len(seen), test.ShouldEqual, g.Size())
}

func TestWorldMapConversions(t *testing.T) {
	g, err := NewEmptyGrid(10, 10, 0.5, r2.Point{X: -2, Y: 3})
	test.That(t, err, test.ShouldBeNil)

	mx, my, ok := g.WorldToMap(r2.Point{X: -2, Y: 3})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, mx, test.ShouldEqual, 0)
	test.That(t, my, test.ShouldEqual, 0)

	mx, my, ok = g.WorldToMap(r2.Point{X: -0.8, Y: 4.2})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, mx, test.ShouldEqual, 2)
	test.That(t, my, test.ShouldEqual, 2)

	_, _, ok = g.WorldToMap(r2.Point{X: -2.1, Y: 3})
	test.That(t, ok, test.ShouldBeFalse)
	_, _, ok = g.WorldToMap(r2.Point{X: 3.1, Y: 3})
	test.That(t, ok, test.ShouldBeFalse)

	w := g.MapToWorld(2, 2)
	test.That(t, w.X, test.ShouldAlmostEqual, -0.75)
	test.That(t, w.Y, test.ShouldAlmostEqual, 4.25)

	// map -> world -> map round-trips to the same cell
	rx, ry, ok := g.WorldToMap(w)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, rx, test.ShouldEqual, 2)
	test.That(t, ry, test.ShouldEqual, 2)
}

func TestCostAndLethal(t *testing.T) {
	g, err := NewEmptyGrid(5, 5, 1.0, r2.Point{})
	test.That(t, err, test.ShouldBeNil)

	g2 := g.SetCost(2, 3, LethalCost)
	test.That(t, g.IsLethal(2, 3), test.ShouldBeFalse)
	test.That(t, g2.IsLethal(2, 3), test.ShouldBeTrue)
	test.That(t, g2.Cost(2, 3), test.ShouldEqual, LethalCost)

	// off-grid cells read as lethal
	test.That(t, g.IsLethal(-1, 0), test.ShouldBeTrue)
	test.That(t, g.IsLethal(5, 0), test.ShouldBeTrue)
}

func TestOutline(t *testing.T) {
	g, err := NewEmptyGrid(4, 3, 1.0, r2.Point{})
	test.That(t, err, test.ShouldBeNil)

	o := g.Outline()
	for x := 0; x < 4; x++ {
		test.That(t, o.IsLethal(x, 0), test.ShouldBeTrue)
		test.That(t, o.IsLethal(x, 2), test.ShouldBeTrue)
	}
	for y := 0; y < 3; y++ {
		test.That(t, o.IsLethal(0, y), test.ShouldBeTrue)
		test.That(t, o.IsLethal(3, y), test.ShouldBeTrue)
	}
	test.That(t, o.IsLethal(1, 1), test.ShouldBeFalse)
	test.That(t, g.IsLethal(0, 0), test.ShouldBeFalse)
}

func TestParseTextGrid(t *testing.T) {
	g, err := ParseTextGrid(`
....
.#..
...9
`, 1.0, r2.Point{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.NX(), test.ShouldEqual, 4)
	test.That(t, g.NY(), test.ShouldEqual, 3)

	// first text row is the top of the map
	test.That(t, g.IsLethal(1, 1), test.ShouldBeTrue)
	test.That(t, g.Cost(3, 0), test.ShouldEqual, uint8(252))
	test.That(t, g.Cost(0, 2), test.ShouldEqual, FreeCost)

	_, err = ParseTextGrid("..\n...", 1.0, r2.Point{})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ParseTextGrid("..x.", 1.0, r2.Point{})
	test.That(t, err, test.ShouldNotBeNil)
}
