package actionqueue

import (
	"math/rand"
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/fear"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/movement"
	"github.com/GoCodeAlone/ecotick/internal/needs"
	"github.com/GoCodeAlone/ecotick/internal/pathfind"
	"github.com/GoCodeAlone/ecotick/internal/reproduction"
	"github.com/GoCodeAlone/ecotick/internal/species"
	"github.com/GoCodeAlone/ecotick/internal/vegetation"
)

func testDeps(reg *entity.Registry) Deps {
	return Deps{
		Registry:     reg,
		Grid:         vegetation.New(vegetation.Defaults(), nil, rand.New(rand.NewSource(1))),
		Facade:       pathfind.New(nil, nil),
		Movement:     movement.New(),
		Needs:        make(map[entity.ID]*needs.Pool),
		Reproduction: reproduction.New(rand.New(rand.NewSource(1))),
		Fear:         fear.New(),
		Claims:       NewClaimTable(),
		Walkable:     func(geom.Position) bool { return true },
	}
}

func spawnWithPool(reg *entity.Registry, deps Deps, pos geom.Position) entity.ID {
	cfg := &species.Config{
		MovementTicksPerTile: 1,
		Stats: species.StatsTemplate{
			Hunger: species.StatTemplate{Max: 100, MealAmount: 20},
			Thirst: species.StatTemplate{Max: 100, MealAmount: 20},
			Energy: species.StatTemplate{Max: 100, MealAmount: 10},
		},
	}
	rec := reg.Spawn(cfg, pos, entity.SexUnspecified, 0)
	deps.Needs[rec.ID] = needs.NewPool(cfg.Stats)
	return rec.ID
}

func TestHeapPromotesHighestPriorityFirst(t *testing.T) {
	reg := entity.NewRegistry()
	deps := testDeps(reg)
	ex := New()
	ex.SetPromoteBudget(1)

	low := spawnWithPool(reg, deps, geom.Position{X: 0, Y: 0})
	high := spawnWithPool(reg, deps, geom.Position{X: 0, Y: 0})
	ex.Enqueue(QueuedAction{Entity: low, Kind: Wander, Priority: 100, TargetPos: geom.Position{X: 5, Y: 0}, MaxDurationTicks: 10})
	ex.Enqueue(QueuedAction{Entity: high, Kind: Wander, Priority: 500, TargetPos: geom.Position{X: 5, Y: 0}, MaxDurationTicks: 10})

	ex.Tick(1, deps)

	if !ex.HasActive(high) {
		t.Error("expected the higher-priority action to be promoted first")
	}
}

func TestRestReplenishesEnergyAndCompletes(t *testing.T) {
	reg := entity.NewRegistry()
	deps := testDeps(reg)
	ex := New()
	id := spawnWithPool(reg, deps, geom.Position{X: 0, Y: 0})
	deps.Needs[id].Energy.Value = 50

	ex.Enqueue(QueuedAction{Entity: id, Kind: Rest, Priority: 300, HoldDuration: 2, MaxDurationTicks: 100})

	ex.Tick(1, deps)                // promotes and runs the first hold tick
	completions := ex.Tick(2, deps) // second hold tick -> done

	if deps.Needs[id].Energy.Value <= 50 {
		t.Error("expected energy to rise from resting")
	}
	found := false
	for _, c := range completions {
		if c.Entity == id && c.Kind == Rest && c.Success {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a successful Rest completion, got %+v", completions)
	}
}

func TestCancellationMarksFailureAndRemovesActive(t *testing.T) {
	reg := entity.NewRegistry()
	deps := testDeps(reg)
	ex := New()
	id := spawnWithPool(reg, deps, geom.Position{X: 0, Y: 0})
	ex.Enqueue(QueuedAction{Entity: id, Kind: Rest, Priority: 300, HoldDuration: 10, MaxDurationTicks: 100})
	ex.Tick(1, deps)

	ex.Cancel(id)
	completions := ex.Tick(2, deps)

	if ex.HasActive(id) {
		t.Error("expected cancellation to remove the active action")
	}
	if len(completions) != 1 || completions[0].Success {
		t.Fatalf("expected a single failed completion from cancellation, got %+v", completions)
	}
}

func TestDrinkClaimBlocksSecondEntityAtSameTile(t *testing.T) {
	reg := entity.NewRegistry()
	deps := testDeps(reg)
	ex := New()
	tile := geom.Position{X: 3, Y: 3}
	a := spawnWithPool(reg, deps, tile)
	b := spawnWithPool(reg, deps, tile)

	ex.Enqueue(QueuedAction{Entity: a, Kind: Drink, Priority: 350, TargetPos: tile, HoldDuration: 5, MaxDurationTicks: 100})
	ex.Tick(1, deps) // a is promoted, is already on the tile and claims it

	ex.Enqueue(QueuedAction{Entity: b, Kind: Drink, Priority: 350, TargetPos: tile, HoldDuration: 5, MaxDurationTicks: 100})
	completions := ex.Tick(2, deps)

	var bFailed bool
	for _, c := range completions {
		if c.Entity == b && !c.Success {
			bFailed = true
		}
	}
	if !bFailed {
		t.Fatalf("expected the second entity to fail claiming an already-held drink tile, got %+v", completions)
	}
}

func TestExpiredActionForcesDoneFailure(t *testing.T) {
	reg := entity.NewRegistry()
	deps := testDeps(reg)
	ex := New()
	id := spawnWithPool(reg, deps, geom.Position{X: 0, Y: 0})
	ex.Enqueue(QueuedAction{Entity: id, Kind: Rest, Priority: 300, HoldDuration: 1000, MaxDurationTicks: 2})

	ex.Tick(1, deps)
	completions := ex.Tick(3, deps) // StartedTick=1, currentTick-started=2 >= MaxDurationTicks

	if len(completions) != 1 || completions[0].Success {
		t.Fatalf("expected the action to be force-failed on timeout, got %+v", completions)
	}
}

func TestSweepRemovesDeadEntityFromActive(t *testing.T) {
	reg := entity.NewRegistry()
	deps := testDeps(reg)
	ex := New()
	dead := spawnWithPool(reg, deps, geom.Position{X: 0, Y: 0})
	ex.Enqueue(QueuedAction{Entity: dead, Kind: Rest, Priority: 300, HoldDuration: 1000, MaxDurationTicks: 10000})
	ex.Tick(1, deps)
	reg.Despawn(dead)

	ex.Tick(SweepIntervalTicks, deps)

	if ex.HasActive(dead) {
		t.Error("expected the periodic sweep to remove a despawned entity's active action")
	}
}
