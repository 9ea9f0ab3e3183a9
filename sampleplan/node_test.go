package sampleplan

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/viam-labs/gridplan/costgrid"
)

func emptyGrid(t *testing.T, nx, ny int) *costgrid.Grid {
	t.Helper()
	g, err := costgrid.NewEmptyGrid(nx, ny, 1.0, r2.Point{})
	test.That(t, err, test.ShouldBeNil)
	return g
}

func TestSampleSetInsert(t *testing.T) {
	grid := emptyGrid(t, 10, 10)
	set := newSampleSet()

	root := set.insert(newNode(grid, 1, 1, 0, rootPID))
	child := set.insert(newNode(grid, 4, 1, 3, root.ID))
	test.That(t, set.len(), test.ShouldEqual, 2)
	test.That(t, len(set.trace), test.ShouldEqual, 2)

	// reinsert with the same cell index replaces parent and cost in place
	set.insert(Node{X: 4, Y: 1, G: 2.5, ID: child.ID, PID: root.ID})
	test.That(t, set.len(), test.ShouldEqual, 2)
	got, ok := set.get(child.ID)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got.G, test.ShouldAlmostEqual, 2.5)

	// the trace keeps the insertion-time snapshot
	test.That(t, set.trace[1].G, test.ShouldAlmostEqual, 3)
}

func TestSampleSetNear(t *testing.T) {
	grid := emptyGrid(t, 20, 20)
	set := newSampleSet()
	set.insert(newNode(grid, 5, 5, 0, rootPID))
	set.insert(newNode(grid, 6, 5, 1, grid.GridToIndex(5, 5)))
	set.insert(newNode(grid, 9, 5, 4, grid.GridToIndex(5, 5)))
	set.insert(newNode(grid, 15, 15, 0, rootPID))

	near := set.near(5, 5, 3.0)
	test.That(t, len(near), test.ShouldEqual, 1)
	test.That(t, near[0].X, test.ShouldEqual, 6)

	near = set.near(7, 5, 2.5)
	test.That(t, len(near), test.ShouldEqual, 3)
	// ordered by (G, ID)
	test.That(t, near[0].G, test.ShouldBeLessThanOrEqualTo, near[1].G)
	test.That(t, near[1].G, test.ShouldBeLessThanOrEqualTo, near[2].G)
}

func TestChainToRootAndExtract(t *testing.T) {
	grid := emptyGrid(t, 10, 10)
	set := newSampleSet()
	a := set.insert(newNode(grid, 0, 0, 0, rootPID))
	b := set.insert(newNode(grid, 3, 0, 3, a.ID))
	c := set.insert(newNode(grid, 3, 4, 7, b.ID))

	chain := set.chainToRoot(c.ID)
	test.That(t, len(chain), test.ShouldEqual, 3)
	test.That(t, chain[0].ID, test.ShouldEqual, c.ID)
	test.That(t, chain[2].ID, test.ShouldEqual, a.ID)

	path := set.extractPath(c.ID)
	test.That(t, len(path), test.ShouldEqual, 3)
	test.That(t, path[0].ID, test.ShouldEqual, a.ID)
	test.That(t, path[2].ID, test.ShouldEqual, c.ID)
	// costs recomputed by edge summation
	test.That(t, path[1].G, test.ShouldAlmostEqual, 3)
	test.That(t, path[2].G, test.ShouldAlmostEqual, 7)
	test.That(t, pathCost(path), test.ShouldAlmostEqual, 7)

	// stale child costs do not leak into extracted paths
	b.G = 99
	path = set.extractPath(c.ID)
	test.That(t, path[2].G, test.ShouldAlmostEqual, 7)
}

func TestNearestNeighborDeterminism(t *testing.T) {
	grid := emptyGrid(t, 50, 50)
	set := newSampleSet()
	set.insert(newNode(grid, 10, 10, 0, rootPID))
	set.insert(newNode(grid, 30, 10, 0, rootPID))

	// equidistant candidates resolve to the smaller cell index
	nm := &neighborManager{nCPU: 4}
	best := nm.nearestNeighbor(20, 10, set)
	test.That(t, best.ID, test.ShouldEqual, grid.GridToIndex(10, 10))

	serial := &neighborManager{nCPU: 1}
	test.That(t, serial.nearestNeighbor(20, 10, set).ID, test.ShouldEqual, best.ID)
}
