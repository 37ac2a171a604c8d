// Package terrain defines the TerrainQuery contract the core consumes from
// the outer shell (spec §6, external interface #1). World/terrain
// generation itself is out of scope (spec §1); this package only names the
// shape the core depends on.
package terrain

import "github.com/GoCodeAlone/ecotick/internal/geom"

// Kind is an opaque terrain classification; the core never branches on
// specific Kind values beyond Walkable/IsWater, which are their own query
// methods precisely so content (what terrain kinds exist) stays the
// shell's concern.
type Kind int

// BiomeKind is likewise opaque to the core.
type BiomeKind int

// Query is the read-only terrain oracle. Implementations must be pure and
// referentially transparent within a run (spec §6).
type Query interface {
	TerrainAt(pos geom.Position) Kind
	Walkable(pos geom.Position) bool
	IsWater(pos geom.Position) bool
	BiomeAt(pos geom.Position) BiomeKind
}

// GrowthMultiplier adapts a Query to vegetation.TerrainGrowth when the
// shell's terrain implementation also reports a growth multiplier; shells
// that don't care about differential growth can embed this default via
// UniformGrowth.
type GrowthMultiplier interface {
	GrowthMultiplier(pos geom.Position) float64
}

// UniformGrowth is a GrowthMultiplier that always returns 1.0, for shells
// that don't model terrain-dependent growth.
type UniformGrowth struct{}

// GrowthMultiplier always returns 1.0.
func (UniformGrowth) GrowthMultiplier(geom.Position) float64 { return 1.0 }
