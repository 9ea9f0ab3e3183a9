package sampleplan

import (
	"context"
	"math"
	"math/rand"
)

// ConvergencePoint records an improvement of the best known solution cost.
type ConvergencePoint struct {
	Iteration int
	CBest     float64
}

// rrtStarPlanner adds neighborhood-based parent selection and rewiring to the
// base tree growth, and keeps sampling for the full budget so the solution
// keeps improving after the first goal contact.
type rrtStarPlanner struct {
	*rrtPlanner
	optimizationR float64
}

func newRRTStarPlanner(planner *rrtPlanner, optimizationR float64) *rrtStarPlanner {
	return &rrtStarPlanner{rrtPlanner: planner, optimizationR: optimizationR}
}

// starState is the per-call bookkeeping shared by the optimizing variants.
type starState struct {
	start, goal Node
	cBest       float64
	cMin        float64
	bestParent  int
	convergence []ConvergencePoint
}

func newStarState(start, goal Node) *starState {
	return &starState{
		start:      start,
		goal:       goal,
		cBest:      math.Inf(1),
		cMin:       nodeDist(&start, &goal),
		bestParent: invalidID,
	}
}

func (st *starState) solved() bool {
	return st.bestParent != invalidID
}

// recordGoalCandidate updates the incumbent solution if attaching the goal to
// the given vertex beats the best known cost. Returns true on improvement.
func (st *starState) recordGoalCandidate(iteration int, n *Node, cost float64) bool {
	if cost >= st.cBest {
		return false
	}
	st.cBest = cost
	st.bestParent = n.ID
	st.convergence = append(st.convergence, ConvergencePoint{Iteration: iteration, CBest: cost})
	return true
}

// extend steers toward the sampled cell, then reparents the new vertex onto
// the cheapest line-of-sight neighbor within the optimization radius and
// rewires that neighborhood through the new vertex where it lowers cost.
// Descendant costs are left stale on purpose; path extraction recomputes them
// by edge summation.
func (mp *rrtStarPlanner) extend(set *sampleSet, sx, sy int, maxDist float64) Node {
	newN := mp.extendNearest(set, sx, sy, maxDist)
	if !newN.Valid() {
		return newN
	}

	neighbors := set.near(newN.X, newN.Y, mp.optimizationR)
	mp.chooseParent(&newN, neighbors)
	inserted := set.insert(newN)

	mp.rewire(set, inserted, neighbors)
	return *inserted
}

// chooseParent reparents the candidate vertex onto the neighbor minimizing
// neighbor.G plus edge length, ties to the smaller cell index. The steering
// parent stands when no neighbor improves on it.
func (mp *rrtStarPlanner) chooseParent(newN *Node, neighbors []*Node) {
	for _, m := range neighbors {
		cost := m.G + nodeDist(m, newN)
		if cost > newN.G || (cost == newN.G && m.ID >= newN.PID) {
			continue
		}
		if mp.collisionFree(m.X, m.Y, newN.X, newN.Y) {
			newN.G = cost
			newN.PID = m.ID
		}
	}
}

func (mp *rrtStarPlanner) rewire(set *sampleSet, newN *Node, neighbors []*Node) {
	for _, m := range neighbors {
		if m.ID == newN.PID {
			continue
		}
		cost := newN.G + nodeDist(newN, m)
		if cost < m.G && mp.collisionFree(newN.X, newN.Y, m.X, m.Y) {
			m.PID = newN.ID
			m.G = cost
		}
	}
}

func (mp *rrtStarPlanner) plan(ctx context.Context, start, goal Node) *planReturn {
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

		sx, sy := mp.sampleUniform(rng)
		newN := mp.extend(set, sx, sy, mp.maxDist)
		if !newN.Valid() {
			continue
		}
		mp.checkGoal(set, st, i, newN.ID)

		if i%logEvery == 0 {
			mp.logger.Debugf("rrt* progress: %d%%\tbest cost: %.3f", 100*i/mp.sampleNum, st.cBest)
		}
	}

	return mp.finish(set, st)
}

// checkGoal tests whether the goal attaches to the just-inserted vertex and
// tracks the cheapest attachment seen so far.
func (mp *rrtStarPlanner) checkGoal(set *sampleSet, st *starState, iteration, id int) {
	n, ok := set.get(id)
	if !ok {
		return
	}
	if n.ID == st.goal.ID {
		st.recordGoalCandidate(iteration, n, n.G)
		return
	}
	dist := nodeDist(n, &st.goal)
	if dist <= mp.maxDist+mp.tolCells && mp.collisionFree(n.X, n.Y, st.goal.X, st.goal.Y) {
		st.recordGoalCandidate(iteration, n, n.G+dist)
	}
}

// finish attaches the goal to its best recorded parent and extracts the path.
func (mp *rrtStarPlanner) finish(set *sampleSet, st *starState) *planReturn {
	if !st.solved() {
		return &planReturn{expand: set.trace, convergence: st.convergence, err: ErrNoPath}
	}
	goalID := st.goal.ID
	if st.bestParent != goalID {
		parent, _ := set.get(st.bestParent)
		goalNode := Node{X: st.goal.X, Y: st.goal.Y, G: st.cBest, ID: goalID, PID: parent.ID}
		set.nodes[goalID] = &goalNode
	}
	return &planReturn{path: set.extractPath(goalID), expand: set.trace, convergence: st.convergence}
}
