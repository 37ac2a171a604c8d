package pathfind

import (
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
)

func TestFacadeSweepResolvesPendingRequest(t *testing.T) {
	f := New(nil, nil) // nil terrain => everything walkable; nil planner => AStar
	id := entity.NewID()
	f.RequestPath(id, geom.Position{X: 0, Y: 0}, geom.Position{X: 2, Y: 0}, false, 0)

	f.Sweep()

	res, ok := f.TakeResult(id)
	if !ok {
		t.Fatal("expected a result after sweeping a pending request")
	}
	if res.Unreachable {
		t.Error("expected a reachable path on an open grid")
	}
	if len(res.Waypoints) != 3 {
		t.Errorf("expected 3 waypoints, got %d", len(res.Waypoints))
	}
}

func TestFacadeMarkBlockedForcesReroute(t *testing.T) {
	f := New(nil, nil)
	f.MarkBlocked(geom.Position{X: 1, Y: 0})

	id := entity.NewID()
	f.RequestPath(id, geom.Position{X: 0, Y: 0}, geom.Position{X: 2, Y: 0}, false, 50)
	f.Sweep()

	res, ok := f.TakeResult(id)
	if !ok || res.Unreachable {
		t.Fatalf("expected a rerouted path around the block, got ok=%v unreachable=%v", ok, res.Unreachable)
	}
	for _, wp := range res.Waypoints {
		if wp.Equal(geom.Position{X: 1, Y: 0}) {
			t.Error("expected the path to avoid the blocked tile")
		}
	}
}

func TestFacadeTakeResultConsumesOnce(t *testing.T) {
	f := New(nil, nil)
	id := entity.NewID()
	f.RequestPath(id, geom.Position{X: 0, Y: 0}, geom.Position{X: 1, Y: 0}, false, 0)
	f.Sweep()

	_, ok := f.TakeResult(id)
	if !ok {
		t.Fatal("expected first take to succeed")
	}
	_, ok = f.TakeResult(id)
	if ok {
		t.Error("expected second take to find nothing: results are consumed once")
	}
}

func TestFacadeForgetDropsPendingAndResult(t *testing.T) {
	f := New(nil, nil)
	id := entity.NewID()
	f.RequestPath(id, geom.Position{X: 0, Y: 0}, geom.Position{X: 5, Y: 5}, false, 0)
	f.Forget(id) // entity despawned before the sweep
	f.Sweep()

	_, ok := f.TakeResult(id)
	if ok {
		t.Error("expected a forgotten entity's request to be dropped, not resolved")
	}
}
