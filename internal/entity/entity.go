// Package entity holds the simulation's entity identity and the one piece
// of state every subsystem needs to agree on: position and liveness. Spec
// §9 calls out the teacher's implicit cyclic relationships (entity has
// action, action references entity, mother references offspring) as a
// pattern requiring re-architecture: here entities are referenced purely by
// ID, and every other subsystem (needs, fear, reproduction, actionqueue...)
// keeps its own per-entity state in a map keyed by ID, resolved by lookup
// on every use rather than stored as an owning reference.
package entity

import (
	"github.com/google/uuid"

	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/species"
)

// ID is an entity's opaque identity (spec §3: "opaque identity + a set of
// attached components"). The teacher uses a sequential int; this module
// uses github.com/google/uuid so identities stay unique across despawn and
// respawn without a shared counter.
type ID uuid.UUID

// NewID returns a fresh random identity.
func NewID() ID { return ID(uuid.New()) }

func (id ID) String() string { return uuid.UUID(id).String() }

// Sex is optional per spec §3 ("optional sex").
type Sex int

const (
	SexUnspecified Sex = iota
	SexMale
	SexFemale
)

// Record is the minimal universal entity state: identity, species,
// position, sex, birth tick, and liveness. Every entity has exactly one
// Position (spec §3 invariant).
type Record struct {
	ID        ID
	Species   *species.Config
	Position  geom.Position
	Sex       Sex
	BirthTick uint64
	Alive     bool
}

// Registry owns entity lifecycle: creation, despawn, and the liveness
// oracle every cleanup sweep in the spec (C10, C13) is built around.
type Registry struct {
	records map[ID]*Record
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[ID]*Record)}
}

// Spawn creates a new alive entity and returns its record. The caller is
// responsible for inserting it into the entity spatial index and any
// per-subsystem component maps (needs pool, fear state, etc.) — Registry
// only owns identity/position/liveness.
func (r *Registry) Spawn(cfg *species.Config, pos geom.Position, sex Sex, birthTick uint64) *Record {
	rec := &Record{
		ID:        NewID(),
		Species:   cfg,
		Position:  pos,
		Sex:       sex,
		BirthTick: birthTick,
		Alive:     true,
	}
	r.records[rec.ID] = rec
	return rec
}

// Despawn marks an entity dead. It stays in the registry (so late lookups
// by stale callers resolve to "not alive" rather than "unknown") until
// Forget is called during a cleanup sweep.
func (r *Registry) Despawn(id ID) {
	if rec, ok := r.records[id]; ok {
		rec.Alive = false
	}
}

// Forget fully removes a despawned entity's record. Called by the periodic
// cleanup sweeps (C10, C13) once every other subsystem has dropped its own
// per-entity state.
func (r *Registry) Forget(id ID) {
	delete(r.records, id)
}

// IsAlive is the liveness oracle (spec §6 external interface #5, backed
// here directly by registry membership rather than an ECS check).
func (r *Registry) IsAlive(id ID) bool {
	rec, ok := r.records[id]
	return ok && rec.Alive
}

// Get returns an entity's record, if known (alive or recently despawned).
func (r *Registry) Get(id ID) (*Record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// SetPosition updates an entity's position. Movement (C6) is the only
// subsystem that should call this on behalf of a live entity.
func (r *Registry) SetPosition(id ID, pos geom.Position) {
	if rec, ok := r.records[id]; ok {
		rec.Position = pos
	}
}

// AllAlive calls visit for every currently alive entity's record.
func (r *Registry) AllAlive(visit func(*Record)) {
	for _, rec := range r.records {
		if rec.Alive {
			visit(rec)
		}
	}
}

// Count returns the number of alive entities.
func (r *Registry) Count() int {
	n := 0
	for _, rec := range r.records {
		if rec.Alive {
			n++
		}
	}
	return n
}

// TotalRecords returns alive+recently-despawned-but-not-yet-forgotten
// records, for tests asserting cleanup sweeps actually shrink the map.
func (r *Registry) TotalRecords() int { return len(r.records) }
