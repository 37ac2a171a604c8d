package vegetation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/species"
)

func newTestGrid() *Grid {
	return New(Defaults(), nil, rand.New(rand.NewSource(7)))
}

func TestGetOrCreateCellStartsAtInitialFraction(t *testing.T) {
	g := newTestGrid()
	pos := geom.Position{X: 1, Y: 0}
	c := g.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)

	assert.Equal(t, 80.0, c.Biomass)
	assert.True(t, g.index.Contains(pos, pos), "expected cell registered in vegetation index")
	assert.Equal(t, 1, g.PendingEvents(), "expected initial Regrow event scheduled")
}

func TestConsumeRespectsThirtyPercentRule(t *testing.T) {
	g := newTestGrid()
	pos := geom.Position{X: 1, Y: 0}
	g.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)
	g.cells[pos].Biomass = 100 // reset to full for a clean boundary example

	consumed, remainder := g.Consume(0, pos, 1000, 0.30)
	require.Equal(t, 30.0, consumed, "30%% of 100 biomass caps the meal at 30")
	assert.Equal(t, 970.0, remainder)
	assert.Equal(t, 70.0, g.cells[pos].Biomass)
}

func TestConsumeDepletesAndRemovesCell(t *testing.T) {
	g := newTestGrid()
	pos := geom.Position{X: 2, Y: 2}
	g.GetOrCreateCell(0, pos, species.ResourceGrass, 10, 1.0)
	g.cells[pos].Biomass = 10

	// max_fraction=1.0 means a big enough request can fully deplete it.
	consumed, _ := g.Consume(0, pos, 10, 1.0)
	assert.Equal(t, 10.0, consumed)
	_, exists := g.cells[pos]
	assert.False(t, exists, "expected depleted cell removed from the map")
	assert.False(t, g.index.Contains(pos, pos), "expected depleted cell removed from the index")
}

func TestConsumeOnAbsentCellReturnsZero(t *testing.T) {
	g := newTestGrid()
	consumed, remainder := g.Consume(0, geom.Position{X: 9, Y: 9}, 5, 0.3)
	assert.Equal(t, 0.0, consumed)
	assert.Equal(t, 5.0, remainder)
}

func TestConsumeClampsNegativeRequestedAndFraction(t *testing.T) {
	g := newTestGrid()
	pos := geom.Position{X: 0, Y: 0}
	g.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)

	consumed, remainder := g.Consume(0, pos, -5, -1)
	assert.Equal(t, 0.0, consumed)
	assert.Equal(t, 0.0, remainder)
}

func TestRefractoryWindowHidesCellFromForage(t *testing.T) {
	g := newTestGrid()
	pos := geom.Position{X: 0, Y: 0}
	g.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)
	g.cells[pos].Biomass = 100

	g.Consume(0, pos, 10, 0.3)

	filter := map[species.ResourceType]species.DietPreference{
		species.ResourceGrass: {ResourceType: species.ResourceGrass, Weight: 1.0},
	}
	results := g.FindForageCells(0, geom.Position{X: 0, Y: 0}, 5, 0, filter)
	assert.Empty(t, results, "expected cell to be unavailable during its refractory window")

	results = g.FindForageCells(g.cfg.MinRefractoryTicks+1, geom.Position{X: 0, Y: 0}, 5, 0, filter)
	assert.Len(t, results, 1, "expected cell available again after the refractory window")
}

func TestFindForageCellsFiltersByDietAndRanksByScore(t *testing.T) {
	g := newTestGrid()
	near := geom.Position{X: 1, Y: 0}
	far := geom.Position{X: 10, Y: 0}
	wrongType := geom.Position{X: 0, Y: 1}

	g.GetOrCreateCell(0, near, species.ResourceGrass, 100, 1.0)
	g.cells[near].Biomass = 50
	g.GetOrCreateCell(0, far, species.ResourceGrass, 100, 1.0)
	g.cells[far].Biomass = 100
	g.GetOrCreateCell(0, wrongType, species.ResourceShrub, 100, 1.0)

	filter := map[species.ResourceType]species.DietPreference{
		species.ResourceGrass: {ResourceType: species.ResourceGrass, Weight: 1.0},
	}
	results := g.FindForageCells(0, geom.Position{X: 0, Y: 0}, 20, 0, filter)

	require.Len(t, results, 2, "shrub cell must be excluded by diet filter")
	assert.Equal(t, near, results[0].Position, "closer cell should usually outrank a farther higher-biomass one")
}

func TestLogisticGrowthStaysWithinBounds(t *testing.T) {
	g := newTestGrid()
	pos := geom.Position{X: 0, Y: 0}
	g.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)
	g.cells[pos].Biomass = 1 // near-empty, should grow toward capacity

	tick := uint64(0)
	for i := 0; i < 500; i++ {
		tick++
		g.ProcessTick(tick)
		require.GreaterOrEqual(t, g.cells[pos].Biomass, 0.0)
		require.LessOrEqual(t, g.cells[pos].Biomass, g.cells[pos].MaxBiomass)
	}
	assert.InDelta(t, 100.0, g.cells[pos].Biomass, 1.0, "expected biomass to approach carrying capacity")
}

func TestProcessTickRespectsEventBudget(t *testing.T) {
	cfg := Defaults()
	cfg.EventBudgetPerTick = 3
	cfg.RandomTicksPerTick = 0
	g := New(cfg, nil, rand.New(rand.NewSource(1)))

	for i := int32(0); i < 10; i++ {
		g.GetOrCreateCell(0, geom.Position{X: i, Y: 0}, species.ResourceGrass, 100, 1.0)
	}
	processed := g.ProcessTick(1_000_000) // force everything due
	assert.LessOrEqual(t, processed, cfg.EventBudgetPerTick)
}

func TestCollapseThenReinflateConservesBiomass(t *testing.T) {
	g := newTestGrid()
	chunk := geom.ChunkCoord{X: 0, Y: 0}
	for i := int32(0); i < 4; i++ {
		pos := geom.Position{X: i, Y: 0}
		g.GetOrCreateCell(0, pos, species.ResourceGrass, 100, 1.0)
		g.cells[pos].Biomass = float64(i+1) * 10
	}

	before, _ := g.CollapseChunk(chunk)
	g.ReinflateChunk(chunk, before)
	after, _ := g.CollapseChunk(chunk)

	assert.InDelta(t, before, after, 0.001, "expected reinflation to conserve total chunk biomass")
}
