package snapshot

import (
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/health"
)

func TestBuildEntitiesReturnsACopyNotTheOriginal(t *testing.T) {
	b := New()
	in := []EntitySummary{{Species: "deer"}}
	out := b.BuildEntities(in)
	out[0].Species = "wolf"
	if in[0].Species != "deer" {
		t.Fatal("expected BuildEntities to return an independent copy")
	}
}

func TestBiomassSamplerDelegates(t *testing.T) {
	s := NewBiomassSampler(
		func(p geom.Position) float64 { return float64(p.X) },
		func(c geom.ChunkCoord) float64 { return float64(c.X) * 10 },
	)
	if s.BiomassAt(geom.Position{X: 5}) != 5 {
		t.Error("expected BiomassAt to delegate to the wrapped func")
	}
	if s.ChunkAggregate(geom.ChunkCoord{X: 2}) != 20 {
		t.Error("expected ChunkAggregate to delegate to the wrapped func")
	}
}

func TestBuildHealthAggregatesAlertCounts(t *testing.T) {
	m := health.New()
	m.ObserveTick(500) // low TPS -> triggers TpsLow on RunChecks
	m.RunChecks(50, 0, func(entity.ID) (string, bool) { return "", false }, func(entity.ID) int { return 0 }, nil)

	summary := BuildHealth(m, 50)
	if summary.AlertCountsByKind[health.AlertTpsLow] != 1 {
		t.Fatalf("expected one TpsLow alert counted, got %+v", summary.AlertCountsByKind)
	}
	if summary.IsHealthy {
		t.Error("expected IsHealthy false right after a TpsLow alert")
	}
}
