package sampleplan

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/viam-labs/gridplan/costgrid"
)

func TestNewSamplePlannerUnknownName(t *testing.T) {
	logger := golog.NewTestLogger(t)
	grid := emptyGrid(t, 10, 10)

	cfg := DefaultConfig()
	cfg.PlannerName = "a_star"
	_, err := NewSamplePlanner(grid, cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOutlineMapBlocksBorder(t *testing.T) {
	logger := golog.NewTestLogger(t)
	grid := emptyGrid(t, 20, 20)

	cfg := DefaultConfig()
	cfg.OutlineMap = true
	sp, err := NewSamplePlanner(grid, cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	// the planner's snapshot is outlined, the input grid is untouched
	test.That(t, sp.CostGrid().IsLethal(0, 0), test.ShouldBeTrue)
	test.That(t, grid.IsLethal(0, 0), test.ShouldBeFalse)

	// a goal on the border is now rejected as lethal
	_, err = sp.Plan(context.Background(), r2.Point{X: 5.5, Y: 5.5}, r2.Point{X: 0.5, Y: 0.5})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestHistoryPathFallback(t *testing.T) {
	logger := golog.NewTestLogger(t)
	// an open area plus a pocket that is reachable only through a gap the
	// tiny budget will not find reliably; instead, wall the pocket off
	// completely so the second call must fail
	grid := emptyGrid(t, 20, 20)
	for y := 0; y <= 18; y++ {
		grid = grid.SetCost(15, y, costgrid.LethalCost)
	}
	for x := 15; x < 20; x++ {
		grid = grid.SetCost(x, 18, costgrid.LethalCost)
	}

	cfg := DefaultConfig()
	cfg.SamplePoints = 1500
	cfg.Seed = 42
	sp, err := NewSamplePlanner(grid, cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	// first plan in the open region succeeds and is cached
	first, err := sp.Plan(context.Background(), r2.Point{X: 1.5, Y: 1.5}, r2.Point{X: 10.5, Y: 10.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(first.Path), test.ShouldBeGreaterThan, 0)

	// second plan targets the sealed pocket and falls back to history
	second, err := sp.Plan(context.Background(), r2.Point{X: 1.5, Y: 1.5}, r2.Point{X: 17.5, Y: 10.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.Path, test.ShouldResemble, first.Path)
}

func TestSetFactor(t *testing.T) {
	logger := golog.NewTestLogger(t)
	// a corridor of inflated but non-lethal cost across the only route
	grid := emptyGrid(t, 20, 5)
	for y := 0; y < 5; y++ {
		grid = grid.SetCost(10, y, 200)
	}

	cfg := DefaultConfig()
	cfg.SamplePoints = 2000
	cfg.Seed = 42
	sp, err := NewSamplePlanner(grid, cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	// factor 0.5 scales the collision threshold to ~126, so cost-200
	// cells read as obstacles and no route exists
	_, err = sp.Plan(context.Background(), r2.Point{X: 1.5, Y: 2.5}, r2.Point{X: 18.5, Y: 2.5})
	test.That(t, err, test.ShouldBeError, ErrNoPath)

	// raising the factor readmits the inflated cells
	sp.SetFactor(1.0)
	plan, err := sp.Plan(context.Background(), r2.Point{X: 1.5, Y: 2.5}, r2.Point{X: 18.5, Y: 2.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(plan.Path), test.ShouldBeGreaterThan, 0)
}
