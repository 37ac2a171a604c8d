// Package health implements the Health Monitor (spec §4.13, component
// C13): a TPS exponential moving average, sparse stale-position tracking,
// action-repetition counting, and a capped ring buffer of alerts produced
// by periodic checks.
package health

import (
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
)

// AlertKind is the closed set of alert kinds (spec §3 HealthAlert).
type AlertKind int

const (
	AlertTpsLow AlertKind = iota
	AlertEntitiesStuck
	AlertPopulationCrash
	AlertActionLoop
)

// Alert is one entry in the ring buffer.
type Alert struct {
	Kind    AlertKind
	Tick    uint64
	WallTimeMS int64
	Note    string
}

// RingCap is the alert ring buffer's capacity (spec §3: "cap 100").
const RingCap = 100

// CheckIntervalTicks is how often the periodic checks run (spec §4.13).
const CheckIntervalTicks = 50

// StuckTicksThreshold is how long an entity's position may stay unchanged
// before it is flagged, unless it is in a legitimately stationary action.
const StuckTicksThreshold = 50

// PopulationCrashWindowTicks and PopulationCrashFraction bound the crash
// check (spec §4.13: "dropped >= 50% within a 100-tick window").
const (
	PopulationCrashWindowTicks = 100
	PopulationCrashFraction    = 0.5
)

// ActionLoopThreshold is the consecutive-repeat count that trips an
// ActionLoop alert.
const ActionLoopThreshold = 20

// TpsEMAWindow is the smoothing window for the TPS exponential moving
// average.
const TpsEMAWindow = 20

// StationaryKind reports whether an action kind is one where standing
// still is expected, so EntitiesStuck should not fire for it. Defined as
// a function so the health package does not need to import actionqueue.
type StationaryKind func(kind string) bool

type positionRecord struct {
	pos      geom.Position
	sinceTick uint64
}

type populationSample struct {
	tick  uint64
	count int
}

// Monitor owns the rolling TPS average, sparse stale-position tracking,
// and the alert ring buffer.
type Monitor struct {
	tps        float64
	tpsSeeded  bool
	staleness  map[entity.ID]positionRecord
	popHistory []populationSample
	alerts     []Alert
}

// New returns an empty Monitor.
func New() *Monitor {
	return &Monitor{staleness: make(map[entity.ID]positionRecord)}
}

// ObserveTick feeds one tick's wall-clock duration (ms) into the TPS EMA.
// tickDurationMS of 0 is ignored (first warm-up tick or a paused step).
func (m *Monitor) ObserveTick(tickDurationMS float64) {
	if tickDurationMS <= 0 {
		return
	}
	instTPS := 1000.0 / tickDurationMS
	if !m.tpsSeeded {
		m.tps = instTPS
		m.tpsSeeded = true
		return
	}
	alpha := 2.0 / (TpsEMAWindow + 1)
	m.tps += alpha * (instTPS - m.tps)
}

// CurrentTPS returns the current smoothed ticks-per-second estimate.
func (m *Monitor) CurrentTPS() float64 { return m.tps }

// ObservePosition updates the sparse stale-position tracker for id: if pos
// differs from the last recorded one, the record resets; otherwise it
// persists so StuckTicksThreshold can be measured.
func (m *Monitor) ObservePosition(id entity.ID, pos geom.Position, tick uint64) {
	rec, ok := m.staleness[id]
	if !ok || !rec.pos.Equal(pos) {
		m.staleness[id] = positionRecord{pos: pos, sinceTick: tick}
		return
	}
	// unchanged: leave sinceTick as-is
}

// ObservePopulation records the current alive population for the crash
// check, trimming samples outside the rolling window.
func (m *Monitor) ObservePopulation(tick uint64, count int) {
	m.popHistory = append(m.popHistory, populationSample{tick: tick, count: count})
	cutoff := int64(tick) - PopulationCrashWindowTicks
	i := 0
	for i < len(m.popHistory) && int64(m.popHistory[i].tick) < cutoff {
		i++
	}
	m.popHistory = m.popHistory[i:]
}

// RunChecks runs the periodic alert checks (spec §4.13), called every
// CheckIntervalTicks by the caller. activeKindOf reports a tracked
// entity's active action kind (for the stationary exemption) and
// repeatCountOf its repeat count (for ActionLoop), both answered by the
// caller from the action queue.
func (m *Monitor) RunChecks(tick uint64, wallTimeMS int64, activeKindOf func(entity.ID) (string, bool), repeatCountOf func(entity.ID) int, stationary StationaryKind) {
	if m.tps < 10 {
		m.push(Alert{Kind: AlertTpsLow, Tick: tick, WallTimeMS: wallTimeMS, Note: "tps below 10"})
	}

	for id, rec := range m.staleness {
		if tick-rec.sinceTick < StuckTicksThreshold {
			continue
		}
		kind, hasAction := activeKindOf(id)
		if hasAction && stationary != nil && stationary(kind) {
			continue
		}
		m.push(Alert{Kind: AlertEntitiesStuck, Tick: tick, WallTimeMS: wallTimeMS, Note: "entity stationary beyond threshold"})
	}

	if len(m.popHistory) >= 2 {
		earliest := m.popHistory[0].count
		latest := m.popHistory[len(m.popHistory)-1].count
		if earliest > 0 && float64(earliest-latest)/float64(earliest) >= PopulationCrashFraction {
			m.push(Alert{Kind: AlertPopulationCrash, Tick: tick, WallTimeMS: wallTimeMS, Note: "population dropped >= 50% in window"})
		}
	}

	for id := range m.staleness {
		if repeatCountOf(id) >= ActionLoopThreshold {
			m.push(Alert{Kind: AlertActionLoop, Tick: tick, WallTimeMS: wallTimeMS, Note: "same action repeated 20+ times"})
		}
	}
}

func (m *Monitor) push(a Alert) {
	m.alerts = append(m.alerts, a)
	if len(m.alerts) > RingCap {
		m.alerts = m.alerts[len(m.alerts)-RingCap:]
	}
}

// RecentAlerts returns an immutable copy of the current alert ring.
func (m *Monitor) RecentAlerts() []Alert {
	out := make([]Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// IsHealthy reports whether TPS is at or above 10 and no PopulationCrash
// or TpsLow alert was raised within the last 4*CheckIntervalTicks ticks.
func (m *Monitor) IsHealthy(tick uint64) bool {
	if m.tps < 10 {
		return false
	}
	recentCutoff := uint64(0)
	if tick > CheckIntervalTicks*4 {
		recentCutoff = tick - CheckIntervalTicks*4
	}
	for i := len(m.alerts) - 1; i >= 0; i-- {
		a := m.alerts[i]
		if a.Tick < recentCutoff {
			break
		}
		if a.Kind == AlertTpsLow || a.Kind == AlertPopulationCrash {
			return false
		}
	}
	return true
}

// Cleanup retains only alive entities in the staleness map. Per spec
// §4.13, a full clear is forbidden (it would destroy alive-entity
// baselines and cause false stuck alerts); only despawned entities are
// dropped.
func (m *Monitor) Cleanup(isAlive func(entity.ID) bool) {
	for id := range m.staleness {
		if !isAlive(id) {
			delete(m.staleness, id)
		}
	}
}
