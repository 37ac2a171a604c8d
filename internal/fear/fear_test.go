package fear

import (
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/spatial"
)

func TestScanRaisesLevelAndReportsThresholdCrossing(t *testing.T) {
	tr := New()
	idx := spatial.New[entity.ID]()

	preyID := entity.NewID()
	predatorID := entity.NewID()
	idx.Insert(predatorID, geom.Position{X: 1, Y: 0})

	prey := []EntityView{
		{ID: preyID, Position: geom.Position{X: 0, Y: 0}, FearRadius: 5, Threshold: 0.2, DecayRate: 0.05},
	}

	crossed := tr.Scan(1, prey, idx)
	if len(crossed) != 1 || crossed[0] != preyID {
		t.Fatalf("expected the prey to cross its fear threshold, got %v", crossed)
	}
	if tr.LevelOf(preyID) <= 0 {
		t.Error("expected fear level to have risen above zero")
	}
}

func TestScanDecaysWhenNoPredatorsNearby(t *testing.T) {
	tr := New()
	idx := spatial.New[entity.ID]()
	preyID := entity.NewID()

	// seed an elevated level via an initial scan with a predator present
	predatorID := entity.NewID()
	idx.Insert(predatorID, geom.Position{X: 0, Y: 0})
	prey := []EntityView{{ID: preyID, Position: geom.Position{X: 0, Y: 0}, FearRadius: 5, Threshold: 0.2, DecayRate: 0.1}}
	tr.Scan(1, prey, idx)
	before := tr.LevelOf(preyID)

	idx.Remove(predatorID, geom.Position{X: 0, Y: 0})
	tr.Scan(2, prey, idx)
	after := tr.LevelOf(preyID)

	if after >= before {
		t.Fatalf("expected fear level to decay once predators leave, before=%v after=%v", before, after)
	}
}

func TestScanDoesNotReCrossUntilLevelDropsBelowThreshold(t *testing.T) {
	tr := New()
	idx := spatial.New[entity.ID]()
	preyID := entity.NewID()
	predatorID := entity.NewID()
	idx.Insert(predatorID, geom.Position{X: 0, Y: 0})

	prey := []EntityView{{ID: preyID, Position: geom.Position{X: 0, Y: 0}, FearRadius: 5, Threshold: 0.1, DecayRate: 0.05}}

	first := tr.Scan(1, prey, idx)
	second := tr.Scan(2, prey, idx)
	if len(first) != 1 {
		t.Fatalf("expected first scan to cross, got %v", first)
	}
	if len(second) != 0 {
		t.Fatalf("expected no repeated crossing while still above threshold, got %v", second)
	}
}

func TestScentMarksExpireAndStopContributingFear(t *testing.T) {
	tr := New()
	idx := spatial.New[entity.ID]()
	preyID := entity.NewID()
	tr.DepositScent(geom.Position{X: 0, Y: 0}, 5)

	prey := []EntityView{{ID: preyID, Position: geom.Position{X: 0, Y: 0}, FearRadius: 3, Threshold: 0.9, DecayRate: 0.1}}
	tr.Scan(1, prey, idx)
	levelBeforeExpiry := tr.LevelOf(preyID)
	if levelBeforeExpiry <= 0 {
		t.Fatal("expected a scent mark to raise fear level even with no predator present")
	}

	tr.Scan(10, prey, idx) // past the mark's expiry tick
	if tr.LevelOf(preyID) >= levelBeforeExpiry {
		t.Error("expected fear level to decay once the scent mark expired")
	}
}

func TestForgetDropsTrackedState(t *testing.T) {
	tr := New()
	id := entity.NewID()
	idx := spatial.New[entity.ID]()
	tr.Scan(1, []EntityView{{ID: id, Position: geom.Position{}, FearRadius: 1, Threshold: 0.5, DecayRate: 0.1}}, idx)
	tr.Forget(id)
	if tr.LevelOf(id) != 0 {
		t.Error("expected forgotten entity's level to reset to zero")
	}
}
