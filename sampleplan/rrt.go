package sampleplan

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"github.com/edaniels/golog"

	"github.com/viam-labs/gridplan/costgrid"
)

// planReturn carries the outcome of one planning run back over the solution
// channel.
type planReturn struct {
	path        []Node
	expand      []Node
	convergence []ConvergencePoint
	err         error
}

// rrtPlanner grows a single tree from the start until a vertex lands within
// steering range of the goal. It also carries the primitives every other
// variant is built from.
type rrtPlanner struct {
	grid      *costgrid.Grid
	logger    golog.Logger
	sampleNum int
	maxDist   float64
	tolCells  float64
	threshold uint8
	seed      int64
	nCPU      int
	nm        *neighborManager
}

func newRRTPlanner(grid *costgrid.Grid, cfg Config, logger golog.Logger) *rrtPlanner {
	nCPU := runtime.NumCPU()
	return &rrtPlanner{
		grid:      grid,
		logger:    logger,
		sampleNum: cfg.SamplePoints,
		maxDist:   cfg.SampleMaxD,
		tolCells:  cfg.DefaultTolerance / grid.Resolution(),
		threshold: collisionThreshold(cfg.ObstacleFactor),
		seed:      cfg.Seed,
		nCPU:      nCPU,
		nm:        &neighborManager{nCPU: nCPU},
	}
}

// collisionThreshold scales the lethal threshold by the obstacle factor, so a
// smaller factor treats high-cost inflation zones as obstacles too.
func collisionThreshold(factor float64) uint8 {
	t := factor * float64(costgrid.LethalCost)
	if t < 1 {
		return 1
	}
	if t > float64(costgrid.LethalCost) {
		return costgrid.LethalCost
	}
	return uint8(t)
}

func (mp *rrtPlanner) setFactor(factor float64) {
	mp.threshold = collisionThreshold(factor)
}

// collisionFree reports whether the segment between two cells stays below the
// planner's obstacle threshold.
func (mp *rrtPlanner) collisionFree(ax, ay, bx, by int) bool {
	return mp.grid.CollisionFree(ax, ay, bx, by, mp.threshold)
}

// sampleUniform draws a cell uniformly from the grid.
func (mp *rrtPlanner) sampleUniform(rng *rand.Rand) (int, int) {
	return rng.Intn(mp.grid.NX()), rng.Intn(mp.grid.NY())
}

// steer projects the sampled cell onto the tree: it clips the segment from
// nearest to the sample at maxDist, rounds to a cell, and validates the edge.
// The result is invalid if the edge collides or the cell is already a vertex.
func (mp *rrtPlanner) steer(set *sampleSet, nearest *Node, sx, sy int, maxDist float64) Node {
	tx, ty := sx, sy
	dist := costgrid.Dist(nearest.X, nearest.Y, sx, sy)
	if dist > maxDist {
		theta := costgrid.Angle(nearest.X, nearest.Y, sx, sy)
		tx = nearest.X + int(math.Round(maxDist*math.Cos(theta)))
		ty = nearest.Y + int(math.Round(maxDist*math.Sin(theta)))
	}
	if !mp.grid.Inside(tx, ty) {
		return invalidNode()
	}
	id := mp.grid.GridToIndex(tx, ty)
	if set.contains(id) {
		return invalidNode()
	}
	if !mp.collisionFree(nearest.X, nearest.Y, tx, ty) {
		return invalidNode()
	}
	return newNode(mp.grid, tx, ty, nearest.G+costgrid.Dist(nearest.X, nearest.Y, tx, ty), nearest.ID)
}

// extendNearest draws the nearest vertex to the sampled cell and steers
// toward it.
func (mp *rrtPlanner) extendNearest(set *sampleSet, sx, sy int, maxDist float64) Node {
	nearest := mp.nm.nearestNeighbor(sx, sy, set)
	if nearest == nil {
		return invalidNode()
	}
	return mp.steer(set, nearest, sx, sy, maxDist)
}

// goalReachable reports whether the goal can be attached directly to the
// given vertex.
func (mp *rrtPlanner) goalReachable(n *Node, goal Node) bool {
	if nodeDist(n, &goal) > mp.maxDist+mp.tolCells {
		return false
	}
	return mp.collisionFree(n.X, n.Y, goal.X, goal.Y)
}

func (mp *rrtPlanner) logEvery() int {
	every := int(float64(mp.sampleNum) * defaultLoggingInterval)
	if every < 1 {
		every = 1
	}
	return every
}

func (mp *rrtPlanner) plan(ctx context.Context, start, goal Node) *planReturn {
	rng := rand.New(rand.NewSource(mp.seed))
	set := newSampleSet()
	set.insert(start)

	logEvery := mp.logEvery()
	for i := 1; i <= mp.sampleNum; i++ {
		select {
		case <-ctx.Done():
			return &planReturn{expand: set.trace, err: ctx.Err()}
		default:
		}

		sx, sy := mp.sampleUniform(rng)
		newN := mp.extendNearest(set, sx, sy, mp.maxDist)
		if !newN.Valid() {
			continue
		}
		inserted := set.insert(newN)

		if inserted.ID == goal.ID {
			return &planReturn{path: set.extractPath(inserted.ID), expand: set.trace}
		}
		if mp.goalReachable(inserted, goal) {
			goalNode := newNode(mp.grid, goal.X, goal.Y, inserted.G+nodeDist(inserted, &goal), inserted.ID)
			set.nodes[goalNode.ID] = &goalNode
			return &planReturn{path: set.extractPath(goalNode.ID), expand: set.trace}
		}

		if i%logEvery == 0 {
			mp.logger.Debugf("rrt progress: %d%%\ttree size: %d", 100*i/mp.sampleNum, set.len())
		}
	}

	return &planReturn{expand: set.trace, err: ErrNoPath}
}
