// Package lod implements the Chunk LOD Manager (spec §4.4, component C4):
// every K ticks it classifies vegetation chunks as Hot/Warm/Cold/Frozen by
// distance to the nearest agent and scales ResourceGrid update frequency
// accordingly, conserving biomass across every transition.
package lod

import (
	"math"

	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/vegetation"
)

// Tier is a chunk's current LOD classification.
type Tier int

const (
	Hot Tier = iota
	Warm
	Cold
	Frozen
)

func (t Tier) String() string {
	switch t {
	case Hot:
		return "hot"
	case Warm:
		return "warm"
	case Cold:
		return "cold"
	default:
		return "frozen"
	}
}

// Thresholds are the tile-distance boundaries between tiers, defaults per
// spec §4.4.
type Thresholds struct {
	HotMax  float64
	WarmMax float64
	ColdMax float64
}

// DefaultThresholds returns {20, 50, 100}.
func DefaultThresholds() Thresholds {
	return Thresholds{HotMax: 20, WarmMax: 50, ColdMax: 100}
}

// DefaultIntervalTicks is how often (in ticks) reclassification runs.
const DefaultIntervalTicks = 20

type aggregateState struct {
	biomass    float64
	maxBiomass float64
}

// Manager classifies vegetation chunks and drives Hot/Warm/Cold/Frozen
// transitions against a vegetation.Grid.
type Manager struct {
	thresholds   Thresholds
	intervalTick uint64
	tier         map[geom.ChunkCoord]Tier
	aggregate    map[geom.ChunkCoord]aggregateState
}

// New returns a Manager with the given thresholds and reclassification
// interval (in ticks).
func New(thresholds Thresholds, intervalTicks uint64) *Manager {
	if intervalTicks == 0 {
		intervalTicks = DefaultIntervalTicks
	}
	return &Manager{
		thresholds:   thresholds,
		intervalTick: intervalTicks,
		tier:         make(map[geom.ChunkCoord]Tier),
		aggregate:    make(map[geom.ChunkCoord]aggregateState),
	}
}

// ShouldRun reports whether reclassification is due at currentTick.
func (m *Manager) ShouldRun(currentTick uint64) bool {
	return currentTick%m.intervalTick == 0
}

// TierOf returns the last-known tier for a chunk (Hot if never classified).
func (m *Manager) TierOf(chunk geom.ChunkCoord) Tier {
	if t, ok := m.tier[chunk]; ok {
		return t
	}
	return Hot
}

func (m *Manager) classify(minDist float64) Tier {
	switch {
	case minDist <= m.thresholds.HotMax:
		return Hot
	case minDist <= m.thresholds.WarmMax:
		return Warm
	case minDist <= m.thresholds.ColdMax:
		return Cold
	default:
		return Frozen
	}
}

func factorFor(t Tier) (factor float64, suppressed bool) {
	switch t {
	case Hot:
		return 1.0, false
	case Warm:
		return 0.5, false
	default: // Cold and Frozen suppress per-cell event processing entirely;
		// Cold still grows via the chunk aggregate, handled separately.
		return 0, true
	}
}

// Reclassify scans agentPositions and reassigns every chunk the grid
// currently tracks plus every previously-tracked chunk (so a chunk that
// lost its last cell doesn't strand an aggregate) to a new tier, applying
// the transition rules from spec §4.4:
//   - Hot/Warm -> Cold/Frozen: collapse cells to an aggregate.
//   - Cold/Frozen -> Hot/Warm: reinflate proportionally to MaxBiomass.
//   - Cold: apply logistic growth to the aggregate by sampling.
func (m *Manager) Reclassify(currentTick uint64, agentPositions []geom.Position, grid *vegetation.Grid) {
	chunks := grid.Chunks()
	seen := make(map[geom.ChunkCoord]bool, len(chunks))
	for _, chunk := range chunks {
		seen[chunk] = true
		m.reclassifyOne(currentTick, chunk, agentPositions, grid)
	}
	// Chunks we tracked before but that grid.Chunks() no longer reports
	// (all cells removed) still need their aggregate dropped so it can't
	// leak memory across a long run.
	for chunk := range m.tier {
		if !seen[chunk] {
			delete(m.tier, chunk)
			delete(m.aggregate, chunk)
		}
	}
}

func (m *Manager) reclassifyOne(currentTick uint64, chunk geom.ChunkCoord, agentPositions []geom.Position, grid *vegetation.Grid) {
	center := chunkCenter(chunk)
	minDist := math.Inf(1)
	for _, p := range agentPositions {
		d := center.DistanceTo(p)
		if d < minDist {
			minDist = d
		}
	}
	newTier := m.classify(minDist)
	oldTier := m.TierOf(chunk)
	m.tier[chunk] = newTier

	wasFrozenOrCold := oldTier == Cold || oldTier == Frozen
	isFrozenOrCold := newTier == Cold || newTier == Frozen

	switch {
	case !wasFrozenOrCold && isFrozenOrCold:
		biomass, cellCount := grid.CollapseChunk(chunk)
		if cellCount > 0 {
			m.aggregate[chunk] = aggregateState{biomass: biomass, maxBiomass: grid.ChunkMaxBiomass(chunk)}
		}
	case wasFrozenOrCold && !isFrozenOrCold:
		if agg, ok := m.aggregate[chunk]; ok {
			grid.ReinflateChunk(chunk, agg.biomass)
			grid.RestartChunkGrowth(currentTick, chunk)
			delete(m.aggregate, chunk)
		}
	case newTier == Cold:
		m.growAggregate(chunk)
	}

	factor, suppressed := factorFor(newTier)
	grid.SetChunkLOD(chunk, factor, suppressed)
}

// AggregateGrowthRate approximates the ResourceGrid's default logistic rate
// for chunks represented only as an aggregate (spec: "growth is applied at
// chunk aggregate by sampling").
const AggregateGrowthRate = 0.04

func (m *Manager) growAggregate(chunk geom.ChunkCoord) {
	agg, ok := m.aggregate[chunk]
	if !ok || agg.maxBiomass <= 0 {
		return
	}
	growth := AggregateGrowthRate * agg.biomass * (1 - agg.biomass/agg.maxBiomass)
	agg.biomass += growth
	if agg.biomass > agg.maxBiomass {
		agg.biomass = agg.maxBiomass
	}
	if agg.biomass < 0 {
		agg.biomass = 0
	}
	m.aggregate[chunk] = agg
}

func chunkCenter(c geom.ChunkCoord) geom.Position {
	half := int32(geom.ChunkSize / 2)
	return geom.Position{X: c.X*geom.ChunkSize + half, Y: c.Y*geom.ChunkSize + half}
}
