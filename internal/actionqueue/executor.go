package actionqueue

import (
	"container/heap"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/fear"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/movement"
	"github.com/GoCodeAlone/ecotick/internal/needs"
	"github.com/GoCodeAlone/ecotick/internal/pathfind"
	"github.com/GoCodeAlone/ecotick/internal/reproduction"
	"github.com/GoCodeAlone/ecotick/internal/vegetation"
)

// SweepIntervalTicks is how often the dead-entity sweep runs (spec §4.10:
// "every 100 ticks"). This bounded-period sweep is the sole mechanism
// preventing unbounded growth from despawned entities and MUST run.
const SweepIntervalTicks = 100

// PromoteBudgetPerTick bounds how many queued actions are promoted to
// active per tick.
const PromoteBudgetPerTick = 20

// Completion records one finished/failed/cancelled action for the
// ActionCompletion replan trigger and Health Monitor's action-repetition
// tracking.
type Completion struct {
	Entity      entity.ID
	Kind        Kind
	Tick        uint64
	Success     bool
}

// Deps bundles the subsystems an ActiveAction's step touches. All fields
// are read/written only through their own owning component's methods, per
// spec §5's "spatial indices/cells mutated only by their owning component"
// rule.
type Deps struct {
	Registry     *entity.Registry
	Grid         *vegetation.Grid
	Facade       *pathfind.Facade
	Movement     *movement.Executor
	Needs        map[entity.ID]*needs.Pool
	Reproduction *reproduction.Tracker
	Fear         *fear.Tracker
	Claims       *ClaimTable
	Walkable     movement.IsWalkable
}

// Executor owns the priority heap, the active-action map, and pending
// cancellations (spec §4.10).
type Executor struct {
	heap                priorityHeap
	active              map[entity.ID]*ActiveAction
	pendingCancellations map[entity.ID]bool
	recentlyCompleted   []Completion
	nextSeq             int64
	lastActionKind      map[entity.ID]Kind
	repeatCount         map[entity.ID]int
	promoteBudget       int
}

// New returns an empty Executor using the default promote budget.
func New() *Executor {
	return &Executor{
		active:               make(map[entity.ID]*ActiveAction),
		pendingCancellations: make(map[entity.ID]bool),
		lastActionKind:       make(map[entity.ID]Kind),
		repeatCount:          make(map[entity.ID]int),
		promoteBudget:        PromoteBudgetPerTick,
	}
}

// SetPromoteBudget overrides how many queued actions may be promoted to
// active per tick (config ActionBudgets.ActionPromotePerTick). budget <= 0
// is ignored.
func (e *Executor) SetPromoteBudget(budget int) {
	if budget > 0 {
		e.promoteBudget = budget
	}
}

// Enqueue pushes a new QueuedAction onto the priority heap.
func (e *Executor) Enqueue(q QueuedAction) {
	q.seq = e.nextSeq
	e.nextSeq++
	heap.Push(&e.heap, &q)
}

// Cancel marks id's active action (if any) for cooperative cancellation.
func (e *Executor) Cancel(id entity.ID) {
	e.pendingCancellations[id] = true
}

// HasActive reports whether id currently has a running action.
func (e *Executor) HasActive(id entity.ID) bool {
	_, ok := e.active[id]
	return ok
}

// ActiveKind returns the kind of id's active action, if any.
func (e *Executor) ActiveKind(id entity.ID) (Kind, bool) {
	a, ok := e.active[id]
	if !ok {
		return 0, false
	}
	return a.Kind, true
}

// ActivePriority returns the priority class of id's currently running
// action, if any (spec §4.9: preemption only cancels a lower-priority
// active action, so callers must compare against this before Cancel).
func (e *Executor) ActivePriority(id entity.ID) (int32, bool) {
	a, ok := e.active[id]
	if !ok {
		return 0, false
	}
	return a.Priority, true
}

// Tick runs one full pass: apply cancellations, promote from the heap,
// step every active action, and (every SweepIntervalTicks) sweep dead
// entities. Returns the completions produced this tick.
func (e *Executor) Tick(currentTick uint64, deps Deps) []Completion {
	e.recentlyCompleted = e.recentlyCompleted[:0]

	e.applyCancellations(currentTick, deps)
	e.promote(currentTick)
	e.stepActive(currentTick, deps)
	deps.Claims.ExpireOlderThan(currentTick)

	if currentTick%SweepIntervalTicks == 0 {
		e.sweepDead(deps.Registry)
	}

	return e.recentlyCompleted
}

func (e *Executor) applyCancellations(currentTick uint64, deps Deps) {
	for id := range e.pendingCancellations {
		a, ok := e.active[id]
		if !ok {
			delete(e.pendingCancellations, id)
			continue
		}
		e.releaseClaims(a, deps)
		delete(e.active, id)
		delete(e.pendingCancellations, id)
		e.complete(id, a.Kind, currentTick, false)
	}
}

func (e *Executor) promote(currentTick uint64) {
	promoted := 0
	for e.heap.Len() > 0 && promoted < e.promoteBudget {
		top := e.heap[0]
		if _, busy := e.active[top.Entity]; busy {
			// top entity already running something; pop and drop this
			// stale request rather than blocking the whole heap on it
			heap.Pop(&e.heap)
			continue
		}
		heap.Pop(&e.heap)
		e.active[top.Entity] = &ActiveAction{
			Entity:           top.Entity,
			Kind:             top.Kind,
			StartedTick:      currentTick,
			Priority:         top.Priority,
			TargetPos:        top.TargetPos,
			TargetEntity:     top.TargetEntity,
			HasTargetEntity:  top.HasTargetEntity,
			HoldDuration:     top.HoldDuration,
			StopDistance:     top.StopDistance,
			Waypoints:        top.Waypoints,
			MaxDurationTicks: top.MaxDurationTicks,
			FearThreshold:    top.FearThreshold,
			IsFemale:         top.IsFemale,
		}
		promoted++
	}
}

func (e *Executor) stepActive(currentTick uint64, deps Deps) {
	for id, a := range e.active {
		if a.expired(currentTick) {
			e.releaseClaims(a, deps)
			delete(e.active, id)
			e.complete(id, a.Kind, currentTick, false)
			continue
		}

		outcome := e.step(currentTick, a, deps)
		switch outcome {
		case Continue:
			continue
		case DoneSuccess:
			e.releaseClaims(a, deps)
			delete(e.active, id)
			e.complete(id, a.Kind, currentTick, true)
		case DoneFailure:
			e.releaseClaims(a, deps)
			delete(e.active, id)
			e.complete(id, a.Kind, currentTick, false)
		}
	}
}

func (e *Executor) complete(id entity.ID, kind Kind, tick uint64, success bool) {
	e.recentlyCompleted = append(e.recentlyCompleted, Completion{Entity: id, Kind: kind, Tick: tick, Success: success})
	if e.lastActionKind[id] == kind {
		e.repeatCount[id]++
	} else {
		e.lastActionKind[id] = kind
		e.repeatCount[id] = 1
	}
}

// RepeatCount reports how many times in a row id's last completed action
// was the same kind (feeds the Health Monitor's ActionLoop alert).
func (e *Executor) RepeatCount(id entity.ID) int { return e.repeatCount[id] }

func (e *Executor) releaseClaims(a *ActiveAction, deps Deps) {
	switch a.Kind {
	case Graze, Harvest:
		deps.Claims.Release(a.TargetPos, ClaimGraze, a.Entity)
	case Drink:
		deps.Claims.Release(a.TargetPos, ClaimDrink, a.Entity)
	case Mate:
		deps.Claims.Release(a.TargetPos, ClaimMate, a.Entity)
	}
}

// sweepDead removes dead entities from active/pendingCancellations/heap,
// per spec §4.10's mandatory bounded-period sweep.
func (e *Executor) sweepDead(reg *entity.Registry) {
	for id := range e.active {
		if !reg.IsAlive(id) {
			delete(e.active, id)
		}
	}
	for id := range e.pendingCancellations {
		if !reg.IsAlive(id) {
			delete(e.pendingCancellations, id)
		}
	}
	for id := range e.lastActionKind {
		if !reg.IsAlive(id) {
			delete(e.lastActionKind, id)
			delete(e.repeatCount, id)
		}
	}

	if len(e.heap) == 0 {
		return
	}
	filtered := make(priorityHeap, 0, len(e.heap))
	for _, q := range e.heap {
		if reg.IsAlive(q.Entity) {
			filtered = append(filtered, q)
		}
	}
	e.heap = filtered
	heap.Init(&e.heap)
}

// Forget drops all state for a despawned entity outside the periodic
// sweep (used when a caller wants immediate cleanup rather than waiting
// up to SweepIntervalTicks).
func (e *Executor) Forget(id entity.ID) {
	delete(e.active, id)
	delete(e.pendingCancellations, id)
	delete(e.lastActionKind, id)
	delete(e.repeatCount, id)
}

// QueueLen returns the number of pending (not yet active) QueuedAction
// entries.
func (e *Executor) QueueLen() int { return e.heap.Len() }

func arrivedAt(pos, target geom.Position) bool { return pos.Equal(target) }
