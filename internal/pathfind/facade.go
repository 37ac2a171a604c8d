package pathfind

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/terrain"
)

// Request is a pending path request attached to an entity.
type Request struct {
	Origin        geom.Position
	Destination   geom.Position
	AllowDiagonal bool
	MaxNodes      int
}

// Result is a completed path request's outcome.
type Result struct {
	Waypoints   []geom.Position
	Unreachable bool
}

// Facade owns the walkability grid and the pending/result bookkeeping
// described in spec §4.5. Path requests may be solved off the tick's
// critical path (here, concurrently via errgroup across pending requests)
// but are only integrated into world state — via Results/TakeResult — on a
// tick boundary, per the §5 concurrency contract.
type Facade struct {
	planner Planner
	terrain terrain.Query

	mu       sync.Mutex
	blocked  map[geom.Position]bool
	costs    map[geom.Position]float64 // reserved for mark_cost; reference walkable() ignores cost weighting, treats any entry as walkable-with-preference data for richer planners
	pending  map[entity.ID]Request
	results  map[entity.ID]Result
}

// New returns a Facade backed by the given terrain query and path planner.
// A nil planner defaults to the reference AStar.
func New(q terrain.Query, planner Planner) *Facade {
	if planner == nil {
		planner = AStar{}
	}
	return &Facade{
		planner: planner,
		terrain: q,
		blocked: make(map[geom.Position]bool),
		costs:   make(map[geom.Position]float64),
		pending: make(map[entity.ID]Request),
		results: make(map[entity.ID]Result),
	}
}

// RequestPath attaches a pending path request for an entity, replacing any
// prior pending request for the same entity (only the latest request for a
// given entity matters once drained on the next sweep).
func (f *Facade) RequestPath(id entity.ID, origin, dest geom.Position, allowDiagonal bool, maxNodes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[id] = Request{Origin: origin, Destination: dest, AllowDiagonal: allowDiagonal, MaxNodes: maxNodes}
}

// MarkBlocked registers pos as impassable regardless of terrain, for
// dynamic obstacles (spec §4.5).
func (f *Facade) MarkBlocked(pos geom.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocked[pos] = true
}

// UnmarkBlocked clears a dynamic block.
func (f *Facade) UnmarkBlocked(pos geom.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blocked, pos)
}

// MarkCost records a movement-cost override for pos. The reference facade
// does not weight paths by cost (the reference planner is uniform-cost);
// this is exposed so a richer Planner implementation can consult it.
func (f *Facade) MarkCost(pos geom.Position, cost float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.costs[pos] = cost
}

func (f *Facade) walkable(pos geom.Position) bool {
	f.mu.Lock()
	blocked := f.blocked[pos]
	f.mu.Unlock()
	if blocked {
		return false
	}
	if f.terrain == nil {
		return true
	}
	return f.terrain.Walkable(pos)
}

// Sweep resolves every pending request, one solve per entity, running
// solves concurrently (the read-only terrain oracle and blocked-set reads
// are safe to share) and only publishing results once every solve in the
// batch has completed — i.e. results become visible exactly at the tick
// boundary that calls Sweep, honoring the §5 concurrency contract.
func (f *Facade) Sweep() {
	f.mu.Lock()
	batch := f.pending
	f.pending = make(map[entity.ID]Request)
	f.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	type solved struct {
		id  entity.ID
		res Result
	}
	out := make([]solved, len(batch))
	ids := make([]entity.ID, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		req := batch[id]
		g.Go(func() error {
			waypoints, ok := f.planner.FindPath(req.Origin, req.Destination, f.walkable, req.MaxNodes)
			if !ok {
				out[i] = solved{id: id, res: Result{Unreachable: true}}
				return nil
			}
			out[i] = solved{id: id, res: Result{Waypoints: waypoints}}
			return nil
		})
	}
	_ = g.Wait() // solves never return error; the reference planner cannot fail beyond reporting Unreachable

	f.mu.Lock()
	for _, s := range out {
		f.results[s.id] = s.res
	}
	f.mu.Unlock()
}

// TakeResult removes and returns a completed result for id, if any. If the
// entity despawned before its response landed, the caller simply never
// calls TakeResult for it again and the result is dropped on the next
// cleanup — matching the §9 design note "if the entity dies before the
// response lands, the response is dropped".
func (f *Facade) TakeResult(id entity.ID) (Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.results[id]
	if ok {
		delete(f.results, id)
	}
	return res, ok
}

// Forget drops any pending request or unconsumed result for a despawned
// entity.
func (f *Facade) Forget(id entity.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, id)
	delete(f.results, id)
}
