// Package pathfind implements the Pathfinding Facade (spec §4.5, component
// C5): a walkability-grid-backed request/response layer around a
// caller-supplied PathPlanner. Algorithm internals are out of scope (spec
// §1); A* is provided only as the reference implementation the facade
// defaults to.
package pathfind

import "github.com/GoCodeAlone/ecotick/internal/geom"

// WalkableFunc reports whether pos can be entered, combining terrain
// walkability with any dynamic blocks the facade has been told about.
type WalkableFunc func(pos geom.Position) bool

// Planner is the spec §6 external interface #2: given origin/destination
// and a walkability oracle, return a waypoint sequence or report
// unreachable. Admissibility and finite termination are required of any
// implementation; the algorithm itself is not specified.
type Planner interface {
	FindPath(origin, dest geom.Position, walkable WalkableFunc, maxNodes int) (waypoints []geom.Position, ok bool)
}
