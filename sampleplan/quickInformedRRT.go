package sampleplan

import (
	"context"
	"math"
	"math/rand"

	exprand "golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// Geometric decay applied to the adaptive steering step on every
	// improvement of the incumbent cost, floored at one cell.
	stepDecay = 0.9

	// Upper bound on the probability of drawing from the prior set rather
	// than the informed ellipse.
	maxPriorProbability = 0.75

	// Attempts at placing a prior-set sample on the grid before falling
	// back to the ellipse.
	priorSampleRetries = 10
)

// quickInformedRRTPlanner refines informed RRT* with concentrated sampling
// near the incumbent path, a steering step that shrinks as the solution
// improves, heavy-tailed growth, and a fork-join parallel rewire phase.
type quickInformedRRTPlanner struct {
	*informedRRTPlanner
	priorR   float64
	threads  int
	stepInit float64
	tdist    distuv.StudentsT

	step     float64
	bestPath []Node
}

func newQuickInformedRRTPlanner(planner *informedRRTPlanner, cfg Config) *quickInformedRRTPlanner {
	return &quickInformedRRTPlanner{
		informedRRTPlanner: planner,
		priorR:             cfg.PriorSampleSetR,
		threads:            cfg.RewireThreadsNum,
		stepInit:           cfg.StepExtendD,
		tdist: distuv.StudentsT{
			Mu:    0,
			Sigma: 1,
			Nu:    cfg.TDistrFreedom,
			Src:   exprand.NewSource(uint64(cfg.Seed) + 1),
		},
	}
}

func (mp *quickInformedRRTPlanner) plan(ctx context.Context, start, goal Node) *planReturn {
	rng := rand.New(rand.NewSource(mp.seed))
	set := newSampleSet()
	set.insert(start)
	st := newStarState(start, goal)
	mp.step = mp.stepInit
	mp.bestPath = nil
	mp.tdist.Src = exprand.NewSource(uint64(mp.seed) + 1)

	logEvery := mp.logEvery()
	for i := 1; i <= mp.sampleNum; i++ {
		select {
		case <-ctx.Done():
			return &planReturn{expand: set.trace, convergence: st.convergence, err: ctx.Err()}
		default:
		}

		sx, sy := mp.sampleQuick(rng, st)
		newN := mp.extendParallel(set, sx, sy, mp.step)
		if !newN.Valid() {
			continue
		}
		mp.checkGoalAdaptive(set, st, i, newN.ID)

		if i%logEvery == 0 {
			mp.logger.Debugf("quick informed rrt* progress: %d%%\tbest cost: %.3f\tstep: %.2f",
				100*i/mp.sampleNum, st.cBest, mp.step)
		}
	}

	return mp.finish(set, st)
}

// checkGoalAdaptive is the goal test of RRT* plus the refinements that fire
// on improvement: the steering step decays and the incumbent path used for
// prior-set sampling is refreshed.
func (mp *quickInformedRRTPlanner) checkGoalAdaptive(set *sampleSet, st *starState, iteration, id int) {
	n, ok := set.get(id)
	if !ok {
		return
	}
	improved := false
	if n.ID == st.goal.ID {
		improved = st.recordGoalCandidate(iteration, n, n.G)
	} else if dist := nodeDist(n, &st.goal); dist <= mp.step+mp.tolCells &&
		mp.collisionFree(n.X, n.Y, st.goal.X, st.goal.Y) {
		improved = st.recordGoalCandidate(iteration, n, n.G+dist)
	}
	if !improved {
		return
	}
	mp.step = math.Max(1, mp.step*stepDecay)
	if chain := set.chainToRoot(st.bestParent); chain != nil {
		mp.bestPath = mp.bestPath[:0]
		for _, c := range chain {
			mp.bestPath = append(mp.bestPath, *c)
		}
	}
}

// sampleQuick draws the next cell: uniform before any solution, then either
// a disk around a random vertex of the incumbent path or the informed
// ellipse with a heavy-tailed radial profile.
func (mp *quickInformedRRTPlanner) sampleQuick(rng *rand.Rand, st *starState) (int, int) {
	if !st.solved() {
		return mp.sampleUniform(rng)
	}
	if len(mp.bestPath) > 0 && rng.Float64() < mp.priorProbability(st) {
		if x, y, ok := mp.samplePrior(rng); ok {
			return x, y
		}
	}
	for {
		ux, uy := mp.sampleHeavyDisk(rng)
		x, y := mp.ellipseTransform(st, ux, uy)
		if mp.grid.Inside(x, y) {
			return x, y
		}
	}
}

// priorProbability grows with the prior-set radius relative to the scale of
// the problem, capped so ellipse sampling never starves.
func (mp *quickInformedRRTPlanner) priorProbability(st *starState) float64 {
	if st.cMin <= 0 {
		return maxPriorProbability
	}
	return math.Min(maxPriorProbability, mp.priorR/(mp.priorR+st.cMin))
}

// samplePrior draws a cell from a disk of the prior radius centered on a
// random vertex of the incumbent path.
func (mp *quickInformedRRTPlanner) samplePrior(rng *rand.Rand) (int, int, bool) {
	for attempt := 0; attempt < priorSampleRetries; attempt++ {
		center := mp.bestPath[rng.Intn(len(mp.bestPath))]
		r := mp.priorR * math.Sqrt(rng.Float64())
		theta := 2 * math.Pi * rng.Float64()
		x := center.X + int(math.Round(r*math.Cos(theta)))
		y := center.Y + int(math.Round(r*math.Sin(theta)))
		if mp.grid.Inside(x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}

// sampleHeavyDisk draws a unit-disk point whose radius follows |t|/(1+|t|)
// for t Student-t distributed, so low freedom produces frequent near-rim
// samples that escape local concavities.
func (mp *quickInformedRRTPlanner) sampleHeavyDisk(rng *rand.Rand) (float64, float64) {
	t := math.Abs(mp.tdist.Rand())
	r := t / (1 + t)
	theta := 2 * math.Pi * rng.Float64()
	return r * math.Cos(theta), r * math.Sin(theta)
}

// extendParallel mirrors the RRT* extension but shards the rewire phase
// across workers. Workers only read tree state and emit proposals; a single
// commit pass applies the winning proposal per neighbor.
func (mp *quickInformedRRTPlanner) extendParallel(set *sampleSet, sx, sy int, maxDist float64) Node {
	newN := mp.extendNearest(set, sx, sy, maxDist)
	if !newN.Valid() {
		return newN
	}

	neighbors := set.near(newN.X, newN.Y, mp.optimizationR)
	mp.chooseParent(&newN, neighbors)
	inserted := set.insert(newN)

	mp.parallelRewire(inserted, neighbors)
	return *inserted
}

type rewireProposal struct {
	idx int
	g   float64
}

func (mp *quickInformedRRTPlanner) parallelRewire(newN *Node, neighbors []*Node) {
	if len(neighbors) == 0 {
		return
	}
	threads := mp.threads
	if threads > len(neighbors) {
		threads = len(neighbors)
	}

	buffers := make([][]rewireProposal, threads)
	var group errgroup.Group
	for w := 0; w < threads; w++ {
		worker := w
		group.Go(func() error {
			var buf []rewireProposal
			for i := worker; i < len(neighbors); i += threads {
				m := neighbors[i]
				if m.ID == newN.PID {
					continue
				}
				cost := newN.G + nodeDist(newN, m)
				if cost < m.G && mp.collisionFree(newN.X, newN.Y, m.X, m.Y) {
					buf = append(buf, rewireProposal{idx: i, g: cost})
				}
			}
			buffers[worker] = buf
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		mp.logger.Errorw("parallel rewire worker failed", "error", err)
		return
	}

	// serial commit: each neighbor has at most one proposal, and the new
	// vertex predates this rewire round, so no cycle can form.
	for _, buf := range buffers {
		for _, p := range buf {
			m := neighbors[p.idx]
			if p.g < m.G {
				m.PID = newN.ID
				m.G = p.g
			}
		}
	}
}
