package shell

import "github.com/GoCodeAlone/ecotick/internal/pathfind"

// DefaultPlanner returns the reference PathPlanner (spec §6 external
// interface #2): admissible A* over a uniform-cost grid, adapted from the
// teacher's grid/topology pathing texture to the generic walkability
// oracle the Facade passes in. pathfind.AStar already is that reference
// implementation; this constructor just gives shell-driven setups a named
// entry point alongside NewGridTerrain/NewLivenessOracle.
func DefaultPlanner() pathfind.Planner {
	return pathfind.AStar{}
}
