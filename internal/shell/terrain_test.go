package shell

import (
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/species"
)

func TestGridTerrainIsDeterministicForSameSeed(t *testing.T) {
	a := NewGridTerrain(-10, -10, 10, 10, 42)
	b := NewGridTerrain(-10, -10, 10, 10, 42)
	for x := int32(-10); x <= 10; x++ {
		for y := int32(-10); y <= 10; y++ {
			pos := geom.Position{X: x, Y: y}
			if a.Walkable(pos) != b.Walkable(pos) || a.IsWater(pos) != b.IsWater(pos) {
				t.Fatalf("expected identical terrain at %+v for the same seed", pos)
			}
		}
	}
}

func TestGridTerrainOutOfBoundsIsNotWalkable(t *testing.T) {
	g := NewGridTerrain(0, 0, 5, 5, 1)
	if g.Walkable(geom.Position{X: 100, Y: 100}) {
		t.Fatal("expected out-of-bounds position to be unwalkable")
	}
}

func TestGridTerrainWaterImpliesUnwalkable(t *testing.T) {
	g := NewGridTerrain(-20, -20, 20, 20, 7)
	found := false
	for x := int32(-20); x <= 20; x++ {
		for y := int32(-20); y <= 20; y++ {
			pos := geom.Position{X: x, Y: y}
			if g.IsWater(pos) {
				found = true
				if g.Walkable(pos) {
					t.Fatalf("expected water tile %+v to be unwalkable", pos)
				}
			}
		}
	}
	if !found {
		t.Fatal("expected at least one water tile across a 41x41 sample")
	}
}

func TestNewLivenessOracleReflectsRegistryState(t *testing.T) {
	reg := entity.NewRegistry()
	rec := reg.Spawn(&species.Config{}, geom.Position{}, entity.SexUnspecified, 0)
	oracle := NewLivenessOracle(reg)
	if !oracle(rec.ID) {
		t.Fatal("expected freshly spawned entity to be alive")
	}
	reg.Despawn(rec.ID)
	if oracle(rec.ID) {
		t.Fatal("expected despawned entity to report not alive")
	}
}

func TestDefaultPlannerFindsPath(t *testing.T) {
	p := DefaultPlanner()
	walkable := func(geom.Position) bool { return true }
	waypoints, ok := p.FindPath(geom.Position{}, geom.Position{X: 3, Y: 0}, walkable, 1000)
	if !ok || len(waypoints) == 0 {
		t.Fatal("expected a path across an open grid")
	}
}
