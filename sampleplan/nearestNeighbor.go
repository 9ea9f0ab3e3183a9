package sampleplan

import (
	"math"
	"sync"

	"go.viam.com/utils"

	"github.com/viam-labs/gridplan/costgrid"
)

// If the sample set is smaller than this, a serial scan beats the overhead of
// spinning up workers.
const neighborsBeforeParallelization = 1000

// neighborManager finds the tree vertex nearest to a sampled cell. The scan
// runs over the insertion-order slice with a strict (distance, ID) tie-break,
// so results do not depend on map iteration order or on worker count.
type neighborManager struct {
	nCPU int
}

type nnResult struct {
	dist float64
	node *Node
}

func (nm *neighborManager) nearestNeighbor(x, y int, set *sampleSet) *Node {
	if nm.nCPU > 1 && set.len() > neighborsBeforeParallelization {
		return nm.parallelNearestNeighbor(x, y, set)
	}
	return scanNearest(x, y, set.order)
}

func scanNearest(x, y int, nodes []*Node) *Node {
	bestDist := math.Inf(1)
	var best *Node
	for _, n := range nodes {
		dist := costgrid.Dist(n.X, n.Y, x, y)
		if dist < bestDist || (dist == bestDist && best != nil && n.ID < best.ID) {
			bestDist = dist
			best = n
		}
	}
	return best
}

func (nm *neighborManager) parallelNearestNeighbor(x, y int, set *sampleSet) *Node {
	results := make([]*Node, nm.nCPU)
	shard := (set.len() + nm.nCPU - 1) / nm.nCPU

	var wg sync.WaitGroup
	for i := 0; i < nm.nCPU; i++ {
		lo := i * shard
		hi := lo + shard
		if lo >= set.len() {
			break
		}
		if hi > set.len() {
			hi = set.len()
		}
		wg.Add(1)
		slot := i
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			results[slot] = scanNearest(x, y, set.order[lo:hi])
		})
	}
	wg.Wait()

	bestDist := math.Inf(1)
	var best *Node
	for _, n := range results {
		if n == nil {
			continue
		}
		dist := costgrid.Dist(n.X, n.Y, x, y)
		if dist < bestDist || (dist == bestDist && best != nil && n.ID < best.ID) {
			bestDist = dist
			best = n
		}
	}
	return best
}
