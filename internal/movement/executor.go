// Package movement implements the Movement Executor (spec §4.6, component
// C6): advances each entity with a Path one tile per species-configured
// ticks_per_tile, updates the entity spatial index on every position
// change, and reports ArrivedAt / PathFailed events. All movement for a
// tick commits before C7 stat drains and C8 triggers observe the new
// positions (spec §5 ordering guarantee b).
package movement

import (
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/spatial"
)

// Path is a finite ordered sequence of walkable positions plus a cursor
// (spec §3).
type Path struct {
	Waypoints []geom.Position
	Index     int
}

// Exhausted reports whether every waypoint has been consumed.
func (p *Path) Exhausted() bool { return p.Index >= len(p.Waypoints) }

// Next returns the next waypoint to move toward, if any remain.
func (p *Path) Next() (geom.Position, bool) {
	if p.Exhausted() {
		return geom.Position{}, false
	}
	return p.Waypoints[p.Index], true
}

// EventKind distinguishes the two events this component emits.
type EventKind int

const (
	EventArrivedAt EventKind = iota
	EventPathFailed
)

// Event is one movement outcome for one entity this tick.
type Event struct {
	Entity entity.ID
	Kind   EventKind
}

// IsWalkable reports whether pos can be entered; movement consults this
// once per candidate step so a waypoint that became blocked between
// planning and arrival is caught.
type IsWalkable func(pos geom.Position) bool

// Executor owns per-entity path state and ticks-since-move counters.
type Executor struct {
	paths          map[entity.ID]*Path
	ticksSinceMove map[entity.ID]uint32
}

// New returns an empty Executor.
func New() *Executor {
	return &Executor{
		paths:          make(map[entity.ID]*Path),
		ticksSinceMove: make(map[entity.ID]uint32),
	}
}

// SetPath attaches a new Path to an entity, replacing any existing one and
// resetting its move counter.
func (e *Executor) SetPath(id entity.ID, waypoints []geom.Position) {
	e.paths[id] = &Path{Waypoints: waypoints}
	e.ticksSinceMove[id] = 0
}

// HasPath reports whether an entity currently has an active path.
func (e *Executor) HasPath(id entity.ID) bool {
	_, ok := e.paths[id]
	return ok
}

// ClearPath removes an entity's path without emitting an event (used by
// action cancellation).
func (e *Executor) ClearPath(id entity.ID) {
	delete(e.paths, id)
	delete(e.ticksSinceMove, id)
}

// Step advances every entity with an active path by at most one tile,
// gated by the species' movement_ticks_per_tile, updating reg's position
// and idx's membership on every move. Returns the ArrivedAt/PathFailed
// events produced this tick.
func (e *Executor) Step(reg *entity.Registry, idx *spatial.Index[entity.ID], walkable IsWalkable) []Event {
	var events []Event

	for id, path := range e.paths {
		rec, ok := reg.Get(id)
		if !ok || !rec.Alive {
			delete(e.paths, id)
			delete(e.ticksSinceMove, id)
			continue
		}

		ticksPerTile := rec.Species.MovementTicksPerTile
		if ticksPerTile == 0 {
			ticksPerTile = 1
		}
		e.ticksSinceMove[id]++
		if e.ticksSinceMove[id] < ticksPerTile {
			continue
		}
		e.ticksSinceMove[id] = 0

		next, has := path.Next()
		if !has {
			delete(e.paths, id)
			events = append(events, Event{Entity: id, Kind: EventArrivedAt})
			continue
		}

		if walkable != nil && !walkable(next) {
			delete(e.paths, id)
			events = append(events, Event{Entity: id, Kind: EventPathFailed})
			continue
		}

		old := rec.Position
		reg.SetPosition(id, next)
		idx.Update(id, old, next)
		path.Index++

		if path.Exhausted() {
			delete(e.paths, id)
			events = append(events, Event{Entity: id, Kind: EventArrivedAt})
		}
	}

	return events
}

// Forget drops an entity's path state without emitting an event, for
// despawn cleanup.
func (e *Executor) Forget(id entity.ID) {
	delete(e.paths, id)
	delete(e.ticksSinceMove, id)
}
