package sampleplan

import (
	"context"
	"math"
	"math/rand"

	"github.com/viam-labs/gridplan/costgrid"
)

// informedRRTPlanner restricts sampling to the prolate hyperspheroid (an
// ellipse in 2D) that bounds every cell able to improve on the incumbent
// solution. Until a first solution exists it behaves exactly like RRT*.
type informedRRTPlanner struct {
	*rrtStarPlanner
}

func newInformedRRTPlanner(planner *rrtStarPlanner) *informedRRTPlanner {
	return &informedRRTPlanner{rrtStarPlanner: planner}
}

func (mp *informedRRTPlanner) plan(ctx context.Context, start, goal Node) *planReturn {
	rng := rand.New(rand.NewSource(mp.seed))
	set := newSampleSet()
	set.insert(start)
	st := newStarState(start, goal)

	logEvery := mp.logEvery()
	for i := 1; i <= mp.sampleNum; i++ {
		select {
		case <-ctx.Done():
			return &planReturn{expand: set.trace, convergence: st.convergence, err: ctx.Err()}
		default:
		}

		sx, sy := mp.sampleInformed(rng, st)
		newN := mp.extend(set, sx, sy, mp.maxDist)
		if !newN.Valid() {
			continue
		}
		mp.checkGoal(set, st, i, newN.ID)

		if i%logEvery == 0 {
			mp.logger.Debugf("informed rrt* progress: %d%%\tbest cost: %.3f", 100*i/mp.sampleNum, st.cBest)
		}
	}

	return mp.finish(set, st)
}

// sampleInformed draws a cell from the current informed subset: the whole
// grid before a solution exists, the cBest ellipse afterwards.
func (mp *informedRRTPlanner) sampleInformed(rng *rand.Rand, st *starState) (int, int) {
	if !st.solved() {
		return mp.sampleUniform(rng)
	}
	for {
		ux, uy := sampleUnitDisk(rng)
		x, y := mp.ellipseTransform(st, ux, uy)
		if mp.grid.Inside(x, y) {
			return x, y
		}
	}
}

// sampleUnitDisk rejection-samples a point from the open unit disk.
func sampleUnitDisk(rng *rand.Rand) (float64, float64) {
	for {
		x := 2*rng.Float64() - 1
		y := 2*rng.Float64() - 1
		if x*x+y*y < 1 {
			return x, y
		}
	}
}

// ellipseTransform maps a unit-disk point into the ellipse whose foci are
// start and goal, with semi-major axis cBest/2 and semi-minor axis
// sqrt((cBest/2)^2 - (cMin/2)^2), rotated to the start-goal axis.
func (mp *informedRRTPlanner) ellipseTransform(st *starState, x, y float64) (int, int) {
	centerX := float64(st.start.X+st.goal.X) / 2
	centerY := float64(st.start.Y+st.goal.Y) / 2
	theta := -costgrid.Angle(st.start.X, st.start.Y, st.goal.X, st.goal.Y)

	a := st.cBest / 2
	c := st.cMin / 2
	b := math.Sqrt(math.Max(a*a-c*c, 0))

	tx := int(a*math.Cos(theta)*x + b*math.Sin(theta)*y + centerX)
	ty := int(-a*math.Sin(theta)*x + b*math.Cos(theta)*y + centerY)
	return tx, ty
}
