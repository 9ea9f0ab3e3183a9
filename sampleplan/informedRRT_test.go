package sampleplan

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/viam-labs/gridplan/costgrid"
)

func TestInformedSamplingStaysInEllipse(t *testing.T) {
	logger := golog.NewTestLogger(t)
	grid := emptyGrid(t, 60, 60)

	base := newRRTPlanner(grid, DefaultConfig(), logger)
	mp := newInformedRRTPlanner(newRRTStarPlanner(base, 10))

	start := newNode(grid, 10, 30, 0, rootPID)
	goal := newNode(grid, 50, 30, 0, rootPID)
	st := newStarState(start, goal)
	st.cBest = 50
	st.bestParent = goal.ID

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		x, y := mp.sampleInformed(rng, st)
		test.That(t, grid.Inside(x, y), test.ShouldBeTrue)
		viaCost := costgrid.Dist(start.X, start.Y, x, y) + costgrid.Dist(x, y, goal.X, goal.Y)
		// cell-quantization slack: truncation moves the point by at most
		// sqrt(2), changing the focal sum by at most twice that
		test.That(t, viaCost, test.ShouldBeLessThan, st.cBest+2*math.Sqrt2)
	}
}

func TestInformedSamplingUniformBeforeSolution(t *testing.T) {
	logger := golog.NewTestLogger(t)
	grid := emptyGrid(t, 40, 40)

	base := newRRTPlanner(grid, DefaultConfig(), logger)
	mp := newInformedRRTPlanner(newRRTStarPlanner(base, 10))

	start := newNode(grid, 5, 5, 0, rootPID)
	goal := newNode(grid, 35, 35, 0, rootPID)
	st := newStarState(start, goal)
	test.That(t, st.solved(), test.ShouldBeFalse)

	// with no incumbent the whole grid is the informed set
	rng := rand.New(rand.NewSource(1))
	outside := 0
	for i := 0; i < 2000; i++ {
		x, y := mp.sampleInformed(rng, st)
		test.That(t, grid.Inside(x, y), test.ShouldBeTrue)
		via := costgrid.Dist(start.X, start.Y, x, y) + costgrid.Dist(x, y, goal.X, goal.Y)
		if via > st.cMin+10 {
			outside++
		}
	}
	test.That(t, outside, test.ShouldBeGreaterThan, 0)
}

func TestInformedRRTAroundWall(t *testing.T) {
	logger := golog.NewTestLogger(t)
	grid := wallGrid(t)

	cfg := DefaultConfig()
	cfg.PlannerName = PlannerInformedRRT
	cfg.SamplePoints = 5000
	cfg.Seed = 42

	sp, err := NewSamplePlanner(grid, cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	plan, err := sp.Plan(context.Background(), r2.Point{X: 2.5, Y: 10.5}, r2.Point{X: 18.5, Y: 10.5})
	test.That(t, err, test.ShouldBeNil)

	verifyPath(t, grid, plan.Path, 2, 10, 18, 10)
	verifyTrace(t, plan.Expansion)
	test.That(t, len(plan.Convergence), test.ShouldBeGreaterThan, 0)

	// the shortest route threads the gap above the wall; allow 20% slack
	// over the two-segment detour through (10, 16)
	detour := costgrid.Dist(2, 10, 10, 16) + costgrid.Dist(10, 16, 18, 10)
	test.That(t, plan.Cost, test.ShouldBeLessThan, 1.2*detour)

	// the last recorded incumbent cost is finite
	test.That(t, math.IsInf(plan.Convergence[len(plan.Convergence)-1].CBest, 1), test.ShouldBeFalse)
}
