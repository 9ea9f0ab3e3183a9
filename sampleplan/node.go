package sampleplan

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/viam-labs/gridplan/costgrid"
)

// invalidID marks a node that is not part of any tree, e.g. a steering result
// that failed its collision check.
const invalidID = -1

// rootPID marks the root of a tree.
const rootPID = -1

// Node is a single vertex of a planning tree. Identity is the flat cell
// index ID; PID is the parent's cell index, rootPID for a tree root. G is the
// accumulated path cost from the root in cell units. H is kept for interface
// uniformity with the graph planners and is unused here.
type Node struct {
	X, Y int
	G, H float64
	ID   int
	PID  int
}

func newNode(grid *costgrid.Grid, x, y int, g float64, pid int) Node {
	return Node{X: x, Y: y, G: g, ID: grid.GridToIndex(x, y), PID: pid}
}

func invalidNode() Node {
	return Node{ID: invalidID, PID: rootPID}
}

// Valid reports whether the node belongs to a tree.
func (n Node) Valid() bool {
	return n.ID != invalidID
}

func nodeDist(a, b *Node) float64 {
	return costgrid.Dist(a.X, a.Y, b.X, b.Y)
}

// less orders nodes lexicographically by (G, ID), the tie-break order used
// during parent selection.
func (n Node) less(other Node) bool {
	if n.G != other.G {
		return n.G < other.G
	}
	return n.ID < other.ID
}

// treeEntry adapts a node for R-tree storage.
type treeEntry struct {
	node *Node
	rect rtreego.Rect
}

func (e *treeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// sampleSet is the arena holding every vertex of one planning tree. Nodes are
// keyed by cell index, kept in insertion order for deterministic iteration,
// and indexed by an R-tree for radius queries. It doubles as the open and
// closed list: a vertex is never removed, only reparented.
type sampleSet struct {
	nodes map[int]*Node
	order []*Node
	trace []Node
	rtree *rtreego.Rtree
}

func newSampleSet() *sampleSet {
	return &sampleSet{
		nodes: map[int]*Node{},
		rtree: rtreego.NewTree(2, 25, 50),
	}
}

func (s *sampleSet) len() int {
	return len(s.nodes)
}

func (s *sampleSet) contains(id int) bool {
	_, ok := s.nodes[id]
	return ok
}

func (s *sampleSet) get(id int) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// insert adds a node to the set, or replaces the parent and cost of the
// existing node with the same ID. The expansion trace records the node as it
// was at insertion time.
func (s *sampleSet) insert(n Node) *Node {
	if existing, ok := s.nodes[n.ID]; ok {
		existing.G = n.G
		existing.PID = n.PID
		return existing
	}
	stored := &Node{}
	*stored = n
	s.nodes[n.ID] = stored
	s.order = append(s.order, stored)
	s.trace = append(s.trace, n)
	s.rtree.Insert(&treeEntry{
		node: stored,
		rect: rtreego.Point{float64(n.X), float64(n.Y)}.ToRect(0.01),
	})
	return stored
}

// near returns all nodes within Euclidean radius r of (x, y), excluding the
// cell (x, y) itself, ordered by (G, ID).
func (s *sampleSet) near(x, y int, r float64) []*Node {
	rect, err := rtreego.NewRect(
		rtreego.Point{float64(x) - r, float64(y) - r},
		[]float64{2 * r, 2 * r},
	)
	if err != nil {
		return nil
	}
	var found []*Node
	for _, item := range s.rtree.SearchIntersect(rect) {
		n := item.(*treeEntry).node
		if n.X == x && n.Y == y {
			continue
		}
		if costgrid.Dist(n.X, n.Y, x, y) <= r {
			found = append(found, n)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].less(*found[j])
	})
	return found
}

// chainToRoot collects the parent chain from the node with the given ID up to
// and including the root. Returns nil if the chain is broken or cyclic.
func (s *sampleSet) chainToRoot(id int) []*Node {
	var chain []*Node
	cur, ok := s.nodes[id]
	for ok {
		chain = append(chain, cur)
		if len(chain) > s.len() {
			return nil
		}
		if cur.PID == rootPID {
			return chain
		}
		cur, ok = s.nodes[cur.PID]
	}
	return nil
}

// extractPath walks the parent chain from the goal-connected node back to the
// root and returns the path ordered root to goal. Costs along the returned
// path are recomputed by summing edge lengths, since rewiring leaves the G of
// untouched descendants stale.
func (s *sampleSet) extractPath(goalID int) []Node {
	chain := s.chainToRoot(goalID)
	if chain == nil {
		return nil
	}
	path := make([]Node, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		path = append(path, *chain[i])
	}
	g := 0.
	path[0].G = 0
	for i := 1; i < len(path); i++ {
		g += nodeDist(&path[i-1], &path[i])
		path[i].G = g
	}
	return path
}

// pathCost returns the edge-sum cost of a path produced by extractPath.
func pathCost(path []Node) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}
	return path[len(path)-1].G
}
