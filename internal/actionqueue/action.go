// Package actionqueue implements the Action Queue & Executor (spec §4.10,
// component C10): a priority heap of QueuedAction, a map of ActiveAction
// per entity, cooperative cancellation, and the bounded-period dead-entity
// sweep. Each ActionKind is a pure state machine stepped once per tick by
// Executor.Tick, calling into ResourceGrid/Facade/Movement/needs as its
// effects.
package actionqueue

import (
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
)

// Kind is the closed set of action kinds (spec §3 ActionRecord).
type Kind int

const (
	Graze Kind = iota
	Drink
	Rest
	Wander
	Follow
	Mate
	Flee
	Hunt
	Patrol
	Harvest
)

func (k Kind) String() string {
	switch k {
	case Graze:
		return "graze"
	case Drink:
		return "drink"
	case Rest:
		return "rest"
	case Wander:
		return "wander"
	case Follow:
		return "follow"
	case Mate:
		return "mate"
	case Flee:
		return "flee"
	case Hunt:
		return "hunt"
	case Patrol:
		return "patrol"
	case Harvest:
		return "harvest"
	default:
		return "unknown"
	}
}

// Outcome is the per-tick result of stepping an ActiveAction.
type Outcome int

const (
	Continue Outcome = iota
	DoneSuccess
	DoneFailure
)

// QueuedAction is a pending request to start an action, sitting in the
// priority heap (spec §3).
type QueuedAction struct {
	Entity       entity.ID
	Kind         Kind
	Priority     int32
	EnqueuedTick uint64

	TargetPos        geom.Position
	TargetEntity     entity.ID
	HasTargetEntity  bool
	HoldDuration     uint64
	StopDistance     float64
	Waypoints        []geom.Position
	MaxDurationTicks uint64
	FearThreshold    float64 // Flee only: Done once fear level drops below this
	IsFemale         bool    // Mate only: which partner completes gestation bookkeeping

	seq int64 // heap tie-break, assigned on push
}

// ActiveAction is the running instance of a started action (spec §3).
type ActiveAction struct {
	Entity      entity.ID
	Kind        Kind
	StartedTick uint64
	Cancelled   bool
	Priority    int32

	TargetPos       geom.Position
	TargetEntity    entity.ID
	HasTargetEntity bool
	HoldDuration    uint64
	StopDistance    float64
	Waypoints       []geom.Position
	WaypointIndex   int
	FearThreshold   float64
	IsFemale        bool

	MaxDurationTicks uint64
	elapsedHold      uint64
	pathRequested    bool
	pathRetried      bool
	consumeRetried   bool
	claimed          bool
}

func (a *ActiveAction) expired(currentTick uint64) bool {
	return a.MaxDurationTicks > 0 && currentTick-a.StartedTick >= a.MaxDurationTicks
}
