package replan

import (
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/movement"
	"github.com/GoCodeAlone/ecotick/internal/needs"
)

// IdleTracker records, per entity, the tick at which it last had an active
// action, so LongIdle can be detected without scanning the action queue.
type IdleTracker struct {
	lastActive map[entity.ID]uint64
}

// NewIdleTracker returns an empty tracker.
func NewIdleTracker() *IdleTracker {
	return &IdleTracker{lastActive: make(map[entity.ID]uint64)}
}

// MarkActive records that id has an active action as of tick.
func (t *IdleTracker) MarkActive(id entity.ID, tick uint64) {
	t.lastActive[id] = tick
}

// Forget drops tracking for a despawned entity.
func (t *IdleTracker) Forget(id entity.ID) {
	delete(t.lastActive, id)
}

// IdleSince returns the tick id was last active, and whether it has ever
// been tracked at all.
func (t *IdleTracker) IdleSince(id entity.ID) (uint64, bool) {
	tick, ok := t.lastActive[id]
	return tick, ok
}

// RunStatThreshold enqueues Normal replan requests for every entity whose
// needs pool crossed a threshold this tick (spec §4.8 StatThreshold).
func RunStatThreshold(q *Queue, tick uint64, crossings map[entity.ID][]needs.ThresholdCrossed) {
	for id, cs := range crossings {
		if len(cs) == 0 {
			continue
		}
		q.Enqueue(id, LaneNormal, "hunger/thirst/energy over threshold", tick)
	}
}

// FleeState reports, for a prey entity, whether it is already fleeing —
// the Fear trigger only enqueues entities not already in a Flee action.
type FleeState func(prey entity.ID) bool

// RunFear enqueues High replan requests for prey entities with a predator
// detected inside fear_radius that are not already fleeing (spec §4.8
// Fear trigger).
func RunFear(q *Queue, tick uint64, preyWithPredatorNearby []entity.ID, alreadyFleeing FleeState) {
	for _, id := range preyWithPredatorNearby {
		if alreadyFleeing != nil && alreadyFleeing(id) {
			continue
		}
		q.Enqueue(id, LaneHigh, "predator within fear radius", tick)
	}
}

// RunActionCompletion enqueues Normal replan requests for every entity
// whose action completed or failed this tick (spec §4.8 ActionCompletion),
// and also folds in the movement-layer ArrivedAt/PathFailed events so a
// finished walk feeds back into planning without a separate trigger.
func RunActionCompletion(q *Queue, tick uint64, completedOrFailed []entity.ID, moveEvents []movement.Event) {
	for _, id := range completedOrFailed {
		q.Enqueue(id, LaneNormal, "action completed or failed", tick)
	}
	for _, ev := range moveEvents {
		q.Enqueue(ev.Entity, LaneNormal, "action completed or failed", tick)
	}
}

// RunLongIdle enqueues Normal replan requests for entities that have had
// no active action for wanderRadius*10 ticks (spec §4.8 LongIdle). alive
// lists the currently-alive entities with their species' wander radius.
func RunLongIdle(q *Queue, tick uint64, idle *IdleTracker, alive map[entity.ID]uint32) {
	for id, wanderRadius := range alive {
		threshold := uint64(wanderRadius) * 10
		last, tracked := idle.IdleSince(id)
		if !tracked {
			idle.MarkActive(id, tick)
			continue
		}
		if tick-last >= threshold {
			q.Enqueue(id, LaneNormal, "long idle", tick)
		}
	}
}
