// Package fear implements the Fear & Predator Subsystem (spec §4.11,
// component C11): prey fear level tracking against predators detected via
// the entity spatial index, and the predator toolkit's
// hunting/patrolling/marking state with expiring scent marks.
package fear

import (
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/spatial"
)

// Level tracks a single prey entity's fear level in [0,1] plus whether it
// is currently above its species threshold (used for the replan Fear
// trigger's rising-edge detection).
type Level struct {
	Value     float64
	AboveThreshold bool
}

// PredatorMode is the predator's current behavior mode.
type PredatorMode int

const (
	ModePatrolling PredatorMode = iota
	ModeHunting
	ModeMarking
)

// PredatorState is the per-predator toolkit state.
type PredatorState struct {
	Mode            PredatorMode
	TerritoryCenter geom.Position
	Target          entity.ID
	HasTarget       bool
}

// ScentMark is a scent deposit with an expiry tick, stored by position.
type ScentMark struct {
	Position geom.Position
	ExpireAt uint64
}

// Tracker owns per-prey fear levels and per-predator toolkit state.
type Tracker struct {
	levels    map[entity.ID]*Level
	predators map[entity.ID]*PredatorState
	scents    *spatial.Index[geom.Position] // keyed by position itself so scent marks can share C2's chunk lookup
	scentExpiry map[geom.Position]uint64
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		levels:      make(map[entity.ID]*Level),
		predators:   make(map[entity.ID]*PredatorState),
		scents:      spatial.New[geom.Position](),
		scentExpiry: make(map[geom.Position]uint64),
	}
}

// IsPredator, FearParams and Position are the minimal shape Scan needs
// from each live entity; kept as a narrow interface so the caller
// supplies entity.Registry/species.Config data without this package
// importing species directly for every field.
type EntityView struct {
	ID          entity.ID
	Position    geom.Position
	IsPredator  bool
	FearRadius  float64
	Threshold   float64
	DecayRate   float64
}

// Scan runs one tick of fear evaluation: for every prey entity, finds
// predators (and unexpired scent marks, weighted weaker) within its fear
// radius via idx, raises or decays its level, and returns the ids of prey
// whose level just crossed Threshold upward this tick (for the replan
// Fear trigger).
func (t *Tracker) Scan(tick uint64, prey []EntityView, idx *spatial.Index[entity.ID]) []entity.ID {
	t.expireScents(tick)

	var crossed []entity.ID
	for _, p := range prey {
		lvl, ok := t.levels[p.ID]
		if !ok {
			lvl = &Level{}
			t.levels[p.ID] = lvl
		}

		predatorCount := 0
		minDist := p.FearRadius + 1
		idx.QueryRadius(p.Position, p.FearRadius, func(key entity.ID, pos geom.Position) {
			if key == p.ID {
				return
			}
			predatorCount++
			d := p.Position.DistanceTo(pos)
			if d < minDist {
				minDist = d
			}
		})

		proximityAt := func(d float64) float64 {
			if p.FearRadius > 0 {
				return 1 - (d / (p.FearRadius + 1))
			}
			return 1.0
		}

		scentRaise := 0.0
		t.scents.QueryRadius(p.Position, p.FearRadius, func(_ geom.Position, pos geom.Position) {
			// scent marks are a weaker fear source than a present predator at the same distance
			scentRaise += 0.1 * proximityAt(p.Position.DistanceTo(pos))
		})

		wasAbove := lvl.AboveThreshold
		if predatorCount > 0 || scentRaise > 0 {
			raise := float64(predatorCount)*0.25*proximityAt(minDist) + scentRaise
			lvl.Value += raise
		} else {
			lvl.Value -= p.DecayRate
		}
		if lvl.Value > 1 {
			lvl.Value = 1
		}
		if lvl.Value < 0 {
			lvl.Value = 0
		}
		lvl.AboveThreshold = lvl.Value >= p.Threshold

		if lvl.AboveThreshold && !wasAbove {
			crossed = append(crossed, p.ID)
		}
	}
	return crossed
}

// LevelOf returns the current fear level for an entity (0 if never
// tracked).
func (t *Tracker) LevelOf(id entity.ID) float64 {
	if lvl, ok := t.levels[id]; ok {
		return lvl.Value
	}
	return 0
}

// Forget drops tracking for a despawned entity.
func (t *Tracker) Forget(id entity.ID) {
	delete(t.levels, id)
	delete(t.predators, id)
}

// PredatorOf returns (and lazily creates) the toolkit state for a
// predator entity, seeded at its spawn/territory position.
func (t *Tracker) PredatorOf(id entity.ID, territoryCenter geom.Position) *PredatorState {
	st, ok := t.predators[id]
	if !ok {
		st = &PredatorState{Mode: ModePatrolling, TerritoryCenter: territoryCenter}
		t.predators[id] = st
	}
	return st
}

// DepositScent leaves a scent mark at pos, expiring at expireAt.
func (t *Tracker) DepositScent(pos geom.Position, expireAt uint64) {
	if !t.scents.Contains(pos, pos) {
		t.scents.Insert(pos, pos)
	}
	t.scentExpiry[pos] = expireAt
}

func (t *Tracker) expireScents(tick uint64) {
	for pos, expiry := range t.scentExpiry {
		if tick >= expiry {
			t.scents.Remove(pos, pos)
			delete(t.scentExpiry, pos)
		}
	}
}
