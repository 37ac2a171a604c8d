package pathfind

import (
	"container/heap"

	"github.com/GoCodeAlone/ecotick/internal/geom"
)

// AStar is the reference Planner implementation: a uniform-cost grid A*
// with a Manhattan-distance heuristic on a 4-directional grid and a
// Chebyshev-distance heuristic when diagonals are allowed (every step
// costs 1, so both are admissible). It
// terminates finitely because the closed/open sets are bounded by maxNodes.
type AStar struct {
	AllowDiagonal bool
}

type node struct {
	pos      geom.Position
	g        int32 // cost from origin
	f        int32 // g + heuristic
	parent   *node
	heapIdx  int
}

type openSet []*node

func (o openSet) Len() int            { return len(o) }
func (o openSet) Less(i, j int) bool  { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int)       { o[i], o[j] = o[j], o[i]; o[i].heapIdx = i; o[j].heapIdx = j }
func (o *openSet) Push(x any)         { n := x.(*node); n.heapIdx = len(*o); *o = append(*o, n) }
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}

func neighborsOf(p geom.Position, diagonal bool) []geom.Position {
	out := []geom.Position{
		p.Add(1, 0), p.Add(-1, 0), p.Add(0, 1), p.Add(0, -1),
	}
	if diagonal {
		out = append(out, p.Add(1, 1), p.Add(1, -1), p.Add(-1, 1), p.Add(-1, -1))
	}
	return out
}

// FindPath runs A* from origin to dest. Returns (nil, false) if dest is
// unreachable within maxNodes expansions — the budget exceeded case and the
// "genuinely no path" case are both reported as !ok per spec §4.5 ("a
// waypoint sequence or a 'unreachable/budget-exceeded' failure").
func (a AStar) FindPath(origin, dest geom.Position, walkable WalkableFunc, maxNodes int) ([]geom.Position, bool) {
	if maxNodes <= 0 {
		maxNodes = 4096
	}
	if origin.Equal(dest) {
		return []geom.Position{origin}, true
	}
	if !walkable(dest) {
		return nil, false
	}

	heuristic := func(p geom.Position) int32 {
		if !a.AllowDiagonal {
			return p.ManhattanTo(dest)
		}
		dx, dy := p.X-dest.X, p.Y-dest.Y
		return max(dx, -dx, dy, -dy)
	}

	open := &openSet{}
	heap.Init(open)
	start := &node{pos: origin, g: 0, f: heuristic(origin)}
	heap.Push(open, start)

	best := make(map[geom.Position]*node)
	best[origin] = start

	expanded := 0
	for open.Len() > 0 && expanded < maxNodes {
		current := heap.Pop(open).(*node)
		expanded++

		if current.pos.Equal(dest) {
			return reconstruct(current), true
		}

		for _, next := range neighborsOf(current.pos, a.AllowDiagonal) {
			if !next.Equal(dest) && !walkable(next) {
				continue
			}
			stepCost := int32(1)
			if a.AllowDiagonal && next.X != current.pos.X && next.Y != current.pos.Y {
				stepCost = 1 // grid-uniform cost; diagonal not discounted, keeping the heuristic admissible
			}
			g := current.g + stepCost
			if existing, ok := best[next]; ok && existing.g <= g {
				continue
			}
			n := &node{pos: next, g: g, f: g + heuristic(next), parent: current}
			best[next] = n
			heap.Push(open, n)
		}
	}
	return nil, false
}

func reconstruct(n *node) []geom.Position {
	var out []geom.Position
	for cur := n; cur != nil; cur = cur.parent {
		out = append(out, cur.pos)
	}
	// reverse
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
