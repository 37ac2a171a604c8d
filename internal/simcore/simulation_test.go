package simcore

import (
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/actionqueue"
	"github.com/GoCodeAlone/ecotick/internal/config"
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/planner"
	"github.com/GoCodeAlone/ecotick/internal/replan"
	"github.com/GoCodeAlone/ecotick/internal/shell"
	"github.com/GoCodeAlone/ecotick/internal/simlog"
)

func testSimulation(t *testing.T) *Simulation {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}
	terrain := shell.NewGridTerrain(-32, -32, 32, 32, 7)
	return New(cfg, terrain, 7, simlog.Discard())
}

func TestNewSeedsConfiguredSpawnGroups(t *testing.T) {
	sim := testSimulation(t)
	if sim.registry.Count() == 0 {
		t.Fatal("expected New to spawn entities from the embedded defaults' spawn_groups")
	}
}

func TestSpawnAndDespawnBookkeeping(t *testing.T) {
	sim := testSimulation(t)
	before := sim.registry.Count()

	cfg := sim.speciesByName["deer"]
	if cfg == nil {
		t.Fatal("expected embedded defaults to define a deer species")
	}
	id := sim.Spawn(cfg, geom.Position{X: 1, Y: 1}, entity.SexFemale, sim.CurrentTick())
	if sim.registry.Count() != before+1 {
		t.Fatal("expected Spawn to grow the registry")
	}
	if _, ok := sim.needsPools[id]; !ok {
		t.Fatal("expected Spawn to allocate a needs pool")
	}

	sim.Despawn(id)
	if sim.registry.Count() != before {
		t.Fatal("expected Despawn to shrink the registry back")
	}
	if _, ok := sim.needsPools[id]; ok {
		t.Fatal("expected Despawn to drop the needs pool")
	}
	if _, ok := sim.pairs[id]; ok {
		t.Fatal("expected Despawn to drop any pair state")
	}
}

func TestStepAdvancesTicksAndRunsThePipeline(t *testing.T) {
	sim := testSimulation(t)
	startTick := sim.CurrentTick()

	advanced := sim.Step(100 * 50) // 50 ticks' worth at the 100ms base, capped by the clock at 5
	if advanced == 0 {
		t.Fatal("expected Step to advance at least one tick")
	}
	if sim.CurrentTick() <= startTick {
		t.Fatal("expected CurrentTick to move forward after Step")
	}

	entities := sim.SnapshotEntities()
	if len(entities) == 0 {
		t.Fatal("expected surviving entities to appear in the snapshot")
	}
	for _, e := range entities {
		if e.Hunger < 0 || e.Hunger > 1e6 {
			t.Fatalf("hunger out of sane range: %+v", e)
		}
	}
}

func TestStepRespectsMaxTicksPerStepGuard(t *testing.T) {
	sim := testSimulation(t)
	// A huge wall-clock delta must still only ever advance a bounded burst
	// per Step call, per the Tick Clock's spiral-of-death guard.
	advanced := sim.Step(1_000_000)
	if advanced > 5 {
		t.Fatalf("expected Step to cap ticks-per-call at the clock's guard, got %d", advanced)
	}
}

func TestPauseStopsTickProgress(t *testing.T) {
	sim := testSimulation(t)
	sim.Pause()
	before := sim.CurrentTick()
	sim.Step(10_000)
	if sim.CurrentTick() != before {
		t.Fatal("expected Pause to prevent further tick progress")
	}

	sim.Resume()
	sim.Step(10_000)
	if sim.CurrentTick() <= before {
		t.Fatal("expected Resume to let ticks progress again")
	}
}

func TestBiomassQueriesReturnNonNegativeValues(t *testing.T) {
	sim := testSimulation(t)
	sim.Step(1000)

	pos := geom.Position{X: 0, Y: 0}
	if b := sim.BiomassAt(pos); b < 0 {
		t.Fatalf("expected non-negative biomass at %+v, got %f", pos, b)
	}
	if b := sim.BiomassChunkAggregate(pos.Chunk()); b < 0 {
		t.Fatalf("expected non-negative chunk biomass aggregate, got %f", b)
	}
}

func TestHealthSnapshotReflectsPopulation(t *testing.T) {
	sim := testSimulation(t)
	sim.Step(500)

	h := sim.SnapshotHealth()
	if h.CurrentTPS < 0 {
		t.Fatalf("expected non-negative TPS estimate, got %f", h.CurrentTPS)
	}
}

// TestLowerPriorityReplanDoesNotPreemptActiveAction exercises spec §4.9's
// preemption rule directly: a Mate hold already running must survive a
// replan trigger that can only produce Wander (the priority floor), since
// Wander's priority never outranks an active Mate.
func TestLowerPriorityReplanDoesNotPreemptActiveAction(t *testing.T) {
	sim := testSimulation(t)
	deer := sim.speciesByName["deer"]
	if deer == nil {
		t.Fatal("expected embedded defaults to define a deer species")
	}

	pos := geom.Position{X: 0, Y: 0}
	id := sim.Spawn(deer, pos, entity.SexFemale, sim.CurrentTick())

	sim.actionExec.Enqueue(actionqueue.QueuedAction{
		Entity:       id,
		Kind:         actionqueue.Mate,
		Priority:     planner.PriorityMate,
		TargetPos:    pos,
		HoldDuration: 50,
	})

	tick := sim.CurrentTick() + 1
	sim.runTick(tick)
	if kind, ok := sim.actionExec.ActiveKind(id); !ok || kind != actionqueue.Mate {
		t.Fatalf("expected the queued Mate action to be promoted to active, got kind=%v ok=%v", kind, ok)
	}

	// Force a replan request. buildPlannerInputs always offers Wander (no
	// hunt target for a deer), and Wander's PriorityWander is below
	// PriorityMate, so the plan stage must leave the active Mate alone.
	sim.replanQ.Enqueue(id, replan.LaneNormal, "test-low-priority-trigger", tick)
	sim.runTick(tick + 1)

	if kind, ok := sim.actionExec.ActiveKind(id); !ok || kind != actionqueue.Mate {
		t.Fatalf("expected active Mate action to survive a lower-priority replan trigger, got kind=%v ok=%v", kind, ok)
	}
}

func TestRunMatcherPopulatesPairsOnlyWithinSpecies(t *testing.T) {
	sim := testSimulation(t)
	deer := sim.speciesByName["deer"]
	if deer == nil {
		t.Fatal("expected embedded defaults to define a deer species")
	}
	wolf := sim.speciesByName["wolf"]
	if wolf == nil {
		t.Fatal("expected embedded defaults to define a wolf species")
	}

	// Spawn a mixed-species pool of eligible adults at the same spot so
	// any pairing bug (e.g. cross-species matching) would be visible.
	var spawned []entity.ID
	for i := 0; i < 4; i++ {
		sex := entity.SexFemale
		if i%2 == 1 {
			sex = entity.SexMale
		}
		spawned = append(spawned, sim.Spawn(deer, geom.Position{X: 0, Y: 0}, sex, 0))
		spawned = append(spawned, sim.Spawn(wolf, geom.Position{X: 0, Y: 0}, sex, 0))
	}
	// Give each a full well-fed streak and run the matcher on an interval
	// boundary at which both species are adult.
	for _, id := range spawned {
		for i := uint64(0); i < wolf.Reproduction.WellFedStreakTicks; i++ {
			sim.repro.UpdateWellFedStreak(id, sim.needsPools[id], wolf.Reproduction.SlackThreshold)
		}
	}
	sim.runMatcher(wolf.Reproduction.AdultAtTicks)
	if len(sim.pairs) == 0 {
		t.Fatal("expected the matcher to pair the eligible adults")
	}

	for id, p := range sim.pairs {
		rec, ok := sim.registry.Get(id)
		if !ok {
			continue
		}
		partner, ok := sim.registry.Get(p.partner)
		if !ok {
			continue
		}
		if rec.Species.Name != partner.Species.Name {
			t.Fatalf("expected pairs to stay within one species, got %s paired with %s", rec.Species.Name, partner.Species.Name)
		}
	}
}
