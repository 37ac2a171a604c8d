package lod

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/species"
	"github.com/GoCodeAlone/ecotick/internal/vegetation"
)

func TestReclassifyHotNearAgent(t *testing.T) {
	grid := vegetation.New(vegetation.Defaults(), nil, rand.New(rand.NewSource(1)))
	grid.GetOrCreateCell(0, geom.Position{X: 0, Y: 0}, species.ResourceGrass, 100, 1.0)

	m := New(DefaultThresholds(), 1)
	m.Reclassify(0, []geom.Position{{X: 0, Y: 0}}, grid)

	assert.Equal(t, Hot, m.TierOf(geom.ChunkCoord{X: 0, Y: 0}))
}

func TestReclassifyFrozenFarFromAgents(t *testing.T) {
	grid := vegetation.New(vegetation.Defaults(), nil, rand.New(rand.NewSource(1)))
	pos := geom.Position{X: 1000, Y: 1000}
	grid.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)

	m := New(DefaultThresholds(), 1)
	m.Reclassify(0, []geom.Position{{X: 0, Y: 0}}, grid)

	assert.Equal(t, Frozen, m.TierOf(pos.Chunk()))
}

func TestCollapseThenReinflateConservesBiomassAcrossTiers(t *testing.T) {
	grid := vegetation.New(vegetation.Defaults(), nil, rand.New(rand.NewSource(1)))
	chunk := geom.ChunkCoord{X: 5, Y: 5}
	base := geom.Position{X: chunk.X * geom.ChunkSize, Y: chunk.Y * geom.ChunkSize}
	for i := int32(0); i < 5; i++ {
		pos := base.Add(i, 0)
		grid.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)
	}
	var before float64
	grid.CellIterActive(func(_ geom.Position, c *vegetation.Cell) { before += c.Biomass })

	m := New(DefaultThresholds(), 1)

	// Far away: collapses to Frozen.
	m.Reclassify(0, []geom.Position{{X: -10000, Y: -10000}}, grid)
	require.Equal(t, Frozen, m.TierOf(chunk))

	// Agent approaches: reinflates back to Hot.
	agentNear := chunkCenter(chunk)
	m.Reclassify(1, []geom.Position{agentNear}, grid)
	require.Equal(t, Hot, m.TierOf(chunk))

	var after float64
	grid.CellIterActive(func(_ geom.Position, c *vegetation.Cell) { after += c.Biomass })
	assert.InDelta(t, before, after, 0.01, "expected biomass conserved across a collapse+reinflate round trip")
}

func TestShouldRunRespectsInterval(t *testing.T) {
	m := New(DefaultThresholds(), 20)
	assert.True(t, m.ShouldRun(0))
	assert.False(t, m.ShouldRun(5))
	assert.True(t, m.ShouldRun(20))
	assert.True(t, m.ShouldRun(40))
}
