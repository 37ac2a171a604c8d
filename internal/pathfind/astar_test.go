package pathfind

import (
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/geom"
)

func allWalkable(geom.Position) bool { return true }

func TestAStarFindsDirectPath(t *testing.T) {
	a := AStar{}
	path, ok := a.FindPath(geom.Position{X: 0, Y: 0}, geom.Position{X: 3, Y: 0}, allWalkable, 0)
	if !ok {
		t.Fatal("expected a path")
	}
	if len(path) != 4 {
		t.Fatalf("expected 4 waypoints (inclusive), got %d: %v", len(path), path)
	}
	if !path[0].Equal(geom.Position{X: 0, Y: 0}) || !path[len(path)-1].Equal(geom.Position{X: 3, Y: 0}) {
		t.Errorf("expected path to start at origin and end at destination, got %v", path)
	}
}

func TestAStarOriginEqualsDestination(t *testing.T) {
	a := AStar{}
	path, ok := a.FindPath(geom.Position{X: 5, Y: 5}, geom.Position{X: 5, Y: 5}, allWalkable, 0)
	if !ok || len(path) != 1 {
		t.Fatalf("expected a trivial 1-waypoint path, got %v ok=%v", path, ok)
	}
}

func TestAStarUnreachableBehindWall(t *testing.T) {
	a := AStar{}
	walkable := func(p geom.Position) bool {
		// a wall at x=2 for all y traps the origin in a box, except one
		// unreachable-by-design destination beyond it
		return p.X != 2
	}
	_, ok := a.FindPath(geom.Position{X: 0, Y: 0}, geom.Position{X: 5, Y: 0}, walkable, 100)
	if ok {
		t.Error("expected destination behind a complete wall to be unreachable")
	}
}

func TestAStarRespectsNodeBudget(t *testing.T) {
	a := AStar{}
	_, ok := a.FindPath(geom.Position{X: 0, Y: 0}, geom.Position{X: 1000, Y: 1000}, allWalkable, 10)
	if ok {
		t.Error("expected a far destination to exceed a tiny node budget and report unreachable")
	}
}

func TestAStarDestinationNotWalkable(t *testing.T) {
	a := AStar{}
	walkable := func(p geom.Position) bool { return !p.Equal(geom.Position{X: 1, Y: 1}) }
	_, ok := a.FindPath(geom.Position{X: 0, Y: 0}, geom.Position{X: 1, Y: 1}, walkable, 100)
	if ok {
		t.Error("expected an unwalkable destination to be unreachable")
	}
}
