// Package shell holds reference implementations of the external
// interfaces the core consumes (terrain.Query, pathfind.Planner, the
// liveness oracle) — not part of the core's public contract, but needed
// so cmd/ecosim-tui and tests have something to drive the core with (spec
// §12). World generation itself stays out of scope; GridTerrain is a flat
// elevation/water grid generated once at construction, grounded on the
// teacher's topology.go grid-cell shape reduced to what terrain.Query
// actually needs.
package shell

import (
	"math"
	"math/rand"

	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/terrain"
)

// cell mirrors the handful of topology.TopologyCell fields the reference
// terrain oracle needs: elevation drives walkability/slope-growth, water
// marks lakes/rivers.
type cell struct {
	elevation float64
	water     bool
	biome     terrain.BiomeKind
}

const (
	BiomePlain terrain.BiomeKind = iota
	BiomeForest
	BiomeWetland
	BiomeMountain
)

// GridTerrain is a bounded, deterministically-generated flat terrain
// oracle: a sum-of-sines elevation field (cheap, reproducible for a given
// seed, no external noise library needed) with water bodies carved in
// wherever elevation dips below seaLevel.
type GridTerrain struct {
	minX, minY, maxX, maxY int32
	seaLevel               float64
	mountainLevel          float64
	cells                  map[geom.Position]cell
}

// NewGridTerrain generates a GridTerrain covering [minX,maxX]x[minY,maxY]
// (inclusive) from seed. The same seed over the same bounds always
// produces the same terrain.
func NewGridTerrain(minX, minY, maxX, maxY int32, seed int64) *GridTerrain {
	rng := rand.New(rand.NewSource(seed))
	// A handful of random sine terms gives an elevation field with some
	// texture without needing a dedicated noise library.
	type term struct{ ax, ay, fx, fy, phase float64 }
	terms := make([]term, 4)
	for i := range terms {
		terms[i] = term{
			ax:    rng.Float64()*0.6 + 0.2,
			ay:    rng.Float64()*0.6 + 0.2,
			fx:    rng.Float64()*0.08 + 0.02,
			fy:    rng.Float64()*0.08 + 0.02,
			phase: rng.Float64() * math.Pi * 2,
		}
	}

	g := &GridTerrain{
		minX: minX, minY: minY, maxX: maxX, maxY: maxY,
		seaLevel:      -0.2,
		mountainLevel: 0.55,
		cells:         make(map[geom.Position]cell),
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			e := 0.0
			for _, t := range terms {
				e += t.ax*math.Sin(float64(x)*t.fx+t.phase) + t.ay*math.Cos(float64(y)*t.fy+t.phase)
			}
			e /= float64(len(terms))

			c := cell{elevation: e}
			switch {
			case e < g.seaLevel:
				c.water = true
				c.biome = BiomeWetland
			case e > g.mountainLevel:
				c.biome = BiomeMountain
			case e > 0.15:
				c.biome = BiomeForest
			default:
				c.biome = BiomePlain
			}
			g.cells[geom.Position{X: x, Y: y}] = c
		}
	}
	return g
}

func (g *GridTerrain) inBounds(pos geom.Position) bool {
	return pos.X >= g.minX && pos.X <= g.maxX && pos.Y >= g.minY && pos.Y <= g.maxY
}

// TerrainAt reports an opaque elevation-band classification. Out-of-bounds
// positions classify as mountain (impassable), closing the map off rather
// than generating unboundedly.
func (g *GridTerrain) TerrainAt(pos geom.Position) terrain.Kind {
	c, ok := g.cells[pos]
	if !ok {
		return terrain.Kind(BiomeMountain)
	}
	return terrain.Kind(c.biome)
}

// Walkable reports whether an agent can enter pos: in bounds, not water,
// not above the mountain threshold.
func (g *GridTerrain) Walkable(pos geom.Position) bool {
	c, ok := g.cells[pos]
	if !ok {
		return false
	}
	return !c.water && c.elevation <= g.mountainLevel
}

// IsWater reports whether pos is a water tile (drink-target eligible).
func (g *GridTerrain) IsWater(pos geom.Position) bool {
	c, ok := g.cells[pos]
	return ok && c.water
}

// BiomeAt returns pos's biome classification.
func (g *GridTerrain) BiomeAt(pos geom.Position) terrain.BiomeKind {
	c, ok := g.cells[pos]
	if !ok {
		return BiomeMountain
	}
	return c.biome
}

// GrowthMultiplier scales vegetation regrowth by biome: forests grow
// fastest, wetland edges next, plains baseline, mountains barely at all.
// Implements terrain.GrowthMultiplier.
func (g *GridTerrain) GrowthMultiplier(pos geom.Position) float64 {
	switch g.BiomeAt(pos) {
	case BiomeForest:
		return 1.3
	case BiomePlain:
		return 1.0
	case BiomeWetland:
		return 1.1
	default:
		return 0.2
	}
}

var _ terrain.Query = (*GridTerrain)(nil)
var _ terrain.GrowthMultiplier = (*GridTerrain)(nil)
