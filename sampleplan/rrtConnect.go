package sampleplan

import (
	"context"
	"math/rand"
)

type extendStatus int

const (
	trapped extendStatus = iota
	advanced
	reached
)

// rrtConnectPlanner grows one tree from the start and one from the goal,
// alternating which is extended, and greedily connects the other tree to
// every new vertex. It stops at the first connection.
type rrtConnectPlanner struct {
	*rrtPlanner
}

func newRRTConnectPlanner(planner *rrtPlanner) *rrtConnectPlanner {
	return &rrtConnectPlanner{rrtPlanner: planner}
}

// extend steers the tree toward the target cell one step and classifies the
// outcome.
func (mp *rrtConnectPlanner) extend(set *sampleSet, tx, ty int) (extendStatus, *Node) {
	newN := mp.extendNearest(set, tx, ty, mp.maxDist)
	if !newN.Valid() {
		return trapped, nil
	}
	inserted := set.insert(newN)
	if inserted.X == tx && inserted.Y == ty {
		return reached, inserted
	}
	return advanced, inserted
}

// connect repeatedly extends the tree toward the target vertex until it is
// reached, the extension traps, or the shared sample budget runs out. Each
// extension consumes budget so the total number of accepted vertices stays
// bounded by the configured sample count.
func (mp *rrtConnectPlanner) connect(set *sampleSet, target *Node, budget *int) (extendStatus, *Node) {
	for *budget > 0 {
		*budget--
		status, n := mp.extend(set, target.X, target.Y)
		if status != advanced {
			return status, n
		}
	}
	return trapped, nil
}

func (mp *rrtConnectPlanner) plan(ctx context.Context, start, goal Node) *planReturn {
	rng := rand.New(rand.NewSource(mp.seed))

	startTree := newSampleSet()
	startTree.insert(start)
	goalTree := newSampleSet()
	goalTree.insert(goal)

	// treeA is extended toward the sample, treeB chases the new vertex.
	treeA, treeB := startTree, goalTree

	logEvery := mp.logEvery()
	budget := mp.sampleNum
	for iteration := 0; budget > 0; budget-- {
		iteration++
		select {
		case <-ctx.Done():
			return &planReturn{expand: mergeTraces(startTree, goalTree), err: ctx.Err()}
		default:
		}

		sx, sy := mp.sampleUniform(rng)
		status, newN := mp.extend(treeA, sx, sy)
		if status != trapped {
			if status, connectN := mp.connect(treeB, newN, &budget); status == reached {
				path := mp.mergePath(startTree, goalTree, newN, connectN)
				return &planReturn{path: path, expand: mergeTraces(startTree, goalTree)}
			}
		}

		// balance growth between the two trees
		treeA, treeB = treeB, treeA

		if iteration%logEvery == 0 {
			mp.logger.Debugf("rrt-connect progress: %d%%\ttree sizes: %d/%d",
				100*(mp.sampleNum-budget)/mp.sampleNum, startTree.len(), goalTree.len())
		}
	}

	return &planReturn{expand: mergeTraces(startTree, goalTree), err: ErrNoPath}
}

// mergePath joins the chains of the meeting vertices so the result runs start
// to goal, then recomputes costs by edge summation over the joined polyline.
func (mp *rrtConnectPlanner) mergePath(startTree, goalTree *sampleSet, a, b *Node) []Node {
	startSide, goalSide := a, b
	if !startTree.contains(a.ID) {
		startSide, goalSide = b, a
	}

	chain := startTree.chainToRoot(startSide.ID)
	path := make([]Node, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		path = append(path, *chain[i])
	}
	for i, n := range goalTree.chainToRoot(goalSide.ID) {
		// the meeting cell is present in both trees
		if i == 0 && n.ID == startSide.ID {
			continue
		}
		path = append(path, *n)
	}

	g := 0.
	path[0].G = 0
	path[0].PID = rootPID
	for i := 1; i < len(path); i++ {
		g += nodeDist(&path[i-1], &path[i])
		path[i].G = g
		path[i].PID = path[i-1].ID
	}
	return path
}

// mergeTraces interleaves nothing: the start tree's discovery order followed
// by the goal tree's, which is enough for visualization.
func mergeTraces(startTree, goalTree *sampleSet) []Node {
	trace := make([]Node, 0, len(startTree.trace)+len(goalTree.trace))
	trace = append(trace, startTree.trace...)
	trace = append(trace, goalTree.trace...)
	return trace
}
