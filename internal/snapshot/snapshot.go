// Package snapshot implements the Read-Only State Projections (spec
// §4.15, component C15): immutable, tick-boundary copies of simulation
// state for external presenters to poll at their own cadence.
package snapshot

import (
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/health"
)

// EntitySummary is one entity's externally-visible state.
type EntitySummary struct {
	ID            entity.ID
	Species       string
	Position      geom.Position
	Hunger        float64
	Thirst        float64
	Energy        float64
	Health        float64
	CurrentAction string
	AgeTicks      uint64
	FearLevel     float64
}

// HealthSummary is the aggregated view of the Health Monitor.
type HealthSummary struct {
	AlertCountsByKind map[health.AlertKind]int
	IsHealthy         bool
	CurrentTPS        float64
}

// Builder assembles snapshots from live subsystem state at a tick
// boundary. It holds no state of its own beyond the inputs passed to
// each Build call, keeping every snapshot a pure copy.
type Builder struct{}

// New returns a Builder.
func New() Builder { return Builder{} }

// BuildEntities copies a slice of EntitySummary from the live records
// supplied by the caller (already resolved from entity.Registry plus each
// subsystem's per-entity state, since snapshot deliberately has no direct
// dependency on those packages' internals).
func (Builder) BuildEntities(records []EntitySummary) []EntitySummary {
	out := make([]EntitySummary, len(records))
	copy(out, records)
	return out
}

// BiomassSampler answers biomass_at/biomass_chunk_aggregate queries
// against a live ResourceGrid without exposing the grid itself.
type BiomassSampler struct {
	biomassAt         func(geom.Position) float64
	chunkAggregate    func(geom.ChunkCoord) float64
}

// NewBiomassSampler wraps the two read-only grid queries the outer shell
// needs.
func NewBiomassSampler(biomassAt func(geom.Position) float64, chunkAggregate func(geom.ChunkCoord) float64) BiomassSampler {
	return BiomassSampler{biomassAt: biomassAt, chunkAggregate: chunkAggregate}
}

// BiomassAt returns the biomass at pos.
func (b BiomassSampler) BiomassAt(pos geom.Position) float64 { return b.biomassAt(pos) }

// ChunkAggregate returns the aggregate biomass for chunk.
func (b BiomassSampler) ChunkAggregate(chunk geom.ChunkCoord) float64 { return b.chunkAggregate(chunk) }

// BuildHealth assembles a HealthSummary from the live Health Monitor.
func BuildHealth(m *health.Monitor, tick uint64) HealthSummary {
	alerts := m.RecentAlerts()
	counts := make(map[health.AlertKind]int, 4)
	for _, a := range alerts {
		counts[a.Kind]++
	}
	return HealthSummary{
		AlertCountsByKind: counts,
		IsHealthy:         m.IsHealthy(tick),
		CurrentTPS:        m.CurrentTPS(),
	}
}

// RecentAlerts returns an immutable copy of the Health Monitor's alert
// window.
func RecentAlerts(m *health.Monitor) []health.Alert {
	return m.RecentAlerts()
}
