// Package vegetation implements the ResourceGrid (spec §4.3, component
// C3): sparse per-tile biomass with logistic regrowth driven by a
// priority-queued event scheduler, plus the consumption API herbivores use.
// The teacher tracks vegetation as a dense []Plant slice rebuilt into a 2D
// grid every tick (world.go's clearGrid/updateGrid); that doesn't scale to
// activity-proportional cost, so the sparse-map-plus-scheduler shape here
// is grounded in the pack's event-driven idiom rather than the teacher's
// grid, while the logistic growth formula and per-resource-type config
// texture follow the teacher's plant.go PlantConfig table.
package vegetation

import (
	"math"
	"math/rand"
	"sort"

	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/spatial"
	"github.com/GoCodeAlone/ecotick/internal/species"
)

// TerrainGrowth is the subset of the outer shell's TerrainQuery the grid
// needs: a growth multiplier per tile (soil quality, moisture, biome...).
// Kept as its own tiny interface so vegetation does not need to depend on
// the full terrain contract.
type TerrainGrowth interface {
	GrowthMultiplier(pos geom.Position) float64
}

// Config bundles the grid's tunables. In New, zero-value fields fall back
// to the documented spec defaults via Defaults(), except
// MinRefractoryTicks and DistancePenalty, which keep a zero value, and
// MinGrowthDelay, which is filled only when MaxGrowthDelay is zero too.
type Config struct {
	InitialFraction    float64 // fraction of MaxBiomass a newly created cell starts with
	MaxFractionPerMeal float64 // the "30% rule" cap
	MinRefractoryTicks uint64  // giving-up window after consumption
	EventBudgetPerTick int     // scheduler pop budget per tick
	RandomTicksPerTick int     // safety-net sample count per tick
	DistancePenalty    float64 // forage ranking distance penalty
	GrowthRate         float64 // logistic r
	NearFullFraction   float64 // stop scheduling Regrow once biomass/max exceeds this
	MinGrowthDelay     uint64  // Δ floor (fast recovery when near-depleted)
	MaxGrowthDelay     uint64  // Δ ceiling (slow recovery when near-full)
	RegrowDelayByType  map[species.ResourceType]uint64
}

// Defaults returns the spec's documented default tunables.
func Defaults() Config {
	return Config{
		InitialFraction:    0.8,
		MaxFractionPerMeal: 0.30,
		MinRefractoryTicks: 40,
		EventBudgetPerTick: 200,
		RandomTicksPerTick: 50,
		DistancePenalty:    0.02,
		GrowthRate:         0.08,
		NearFullFraction:   0.95,
		MinGrowthDelay:     10,
		MaxGrowthDelay:     80,
		RegrowDelayByType: map[species.ResourceType]uint64{
			species.ResourceGrass:       20,
			species.ResourceShrub:       40,
			species.ResourceCollectable: 60,
		},
	}
}

func (c *Config) fillDefaults() {
	d := Defaults()
	if c.InitialFraction == 0 {
		c.InitialFraction = d.InitialFraction
	}
	if c.MaxFractionPerMeal == 0 {
		c.MaxFractionPerMeal = d.MaxFractionPerMeal
	}
	if c.EventBudgetPerTick == 0 {
		c.EventBudgetPerTick = d.EventBudgetPerTick
	}
	if c.RandomTicksPerTick == 0 {
		c.RandomTicksPerTick = d.RandomTicksPerTick
	}
	if c.GrowthRate == 0 {
		c.GrowthRate = d.GrowthRate
	}
	if c.NearFullFraction == 0 {
		c.NearFullFraction = d.NearFullFraction
	}
	if c.MaxGrowthDelay == 0 {
		c.MaxGrowthDelay = d.MaxGrowthDelay
		c.MinGrowthDelay = d.MinGrowthDelay
	}
	if c.RegrowDelayByType == nil {
		c.RegrowDelayByType = d.RegrowDelayByType
	}
}

// Grid is the ResourceGrid: the sparse cell map, its event scheduler, and
// its vegetation spatial index, kept in lockstep per spec invariant (i):
// "C2 membership ↔ map membership".
type Grid struct {
	cfg     Config
	cells   map[geom.Position]*Cell
	index   *spatial.Index[geom.Position]
	sched   *scheduler
	terrain TerrainGrowth
	rng     *rand.Rand

	// lodFactor and suppressed are written by the Chunk LOD Manager (C4)
	// through SetChunkLOD; ResourceGrid remains the sole mutator of cell
	// state, the LOD manager only tells it how fast to apply growth.
	lodFactor  map[geom.ChunkCoord]float64
	suppressed map[geom.ChunkCoord]bool
}

// New builds an empty Grid. terrain may be nil, in which case growth
// multiplier defaults to 1.0 everywhere.
func New(cfg Config, terrain TerrainGrowth, rng *rand.Rand) *Grid {
	cfg.fillDefaults()
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Grid{
		cfg:        cfg,
		cells:      make(map[geom.Position]*Cell),
		index:      spatial.New[geom.Position](),
		sched:      newScheduler(),
		terrain:    terrain,
		rng:        rng,
		lodFactor:  make(map[geom.ChunkCoord]float64),
		suppressed: make(map[geom.ChunkCoord]bool),
	}
}

func (g *Grid) growthMultiplier(pos geom.Position) float64 {
	if g.terrain == nil {
		return 1.0
	}
	return g.terrain.GrowthMultiplier(pos)
}

// GetOrCreateCell returns the cell at pos, creating it with
// biomass = initial_fraction * max_biomass if absent, registering it in the
// vegetation spatial index, and scheduling its first Regrow event.
func (g *Grid) GetOrCreateCell(currentTick uint64, pos geom.Position, rt species.ResourceType, maxBiomass, growthRateModifier float64) *Cell {
	if c, ok := g.cells[pos]; ok {
		return c
	}
	c := &Cell{
		ResourceType:       rt,
		Biomass:            maxBiomass * g.cfg.InitialFraction,
		MaxBiomass:         maxBiomass,
		GrowthRateModifier: growthRateModifier,
		LastUpdateTick:     currentTick,
	}
	c.clampBiomass()
	g.cells[pos] = c
	g.index.Insert(pos, pos)
	g.sched.ScheduleRegrow(pos, currentTick+g.cfg.RegrowDelayByType[rt])
	return c
}

// BiomassAt returns the biomass at pos, or 0 if no cell exists there.
func (g *Grid) BiomassAt(pos geom.Position) float64 {
	if c, ok := g.cells[pos]; ok {
		return c.Biomass
	}
	return 0
}

// Consume removes up to requested biomass from the cell at pos, bounded by
// the "30% rule" (maxFraction of current biomass), and returns
// (consumed, remainder). Spec §4.3 and testable property §8:
// consumed <= min(requested, maxFraction*biomass_before) and
// biomass_after == biomass_before - consumed.
func (g *Grid) Consume(currentTick uint64, pos geom.Position, requested, maxFraction float64) (consumed, remainder float64) {
	if requested < 0 {
		requested = 0
	}
	maxFraction = clampFraction(maxFraction)

	c, ok := g.cells[pos]
	if !ok {
		return 0, requested
	}

	available := c.Biomass * maxFraction
	if available > c.Biomass {
		available = c.Biomass
	}
	consumed = math.Min(requested, available)
	remainder = requested - consumed

	before := c.Biomass
	c.Biomass -= consumed
	c.clampBiomass()
	c.LastUpdateTick = currentTick
	c.RegrowthAvailableTick = currentTick + g.cfg.MinRefractoryTicks

	if c.Depleted() {
		delete(g.cells, pos)
		g.index.Remove(pos, pos)
		return consumed, remainder
	}

	delay := g.consumptionRegrowDelay(consumed, before)
	g.sched.ScheduleRegrow(pos, currentTick+delay)
	return consumed, remainder
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// consumptionRegrowDelay scales with bite size: bigger bites take longer to
// recover from (spec §4.3: "longer delay for bigger bites").
func (g *Grid) consumptionRegrowDelay(consumed, maxBiomass float64) uint64 {
	if maxBiomass <= 0 {
		return g.cfg.MinGrowthDelay
	}
	frac := clampFraction(consumed / maxBiomass)
	span := float64(g.cfg.MaxGrowthDelay - g.cfg.MinGrowthDelay)
	return g.cfg.MinGrowthDelay + uint64(frac*span)
}

// ForageCandidate is one ranked result from FindForageCells.
type ForageCandidate struct {
	Position geom.Position
	Cell     *Cell
	Score    float64
}

// FindForageCells queries the vegetation index within radius of center,
// filters by resource type membership in dietFilter, minimum biomass, and
// refractory availability, then ranks by biomass * diet weight / (1 +
// distance^2 * distancePenalty) (spec §4.3).
func (g *Grid) FindForageCells(currentTick uint64, center geom.Position, radius, minBiomass float64, dietFilter map[species.ResourceType]species.DietPreference) []ForageCandidate {
	var out []ForageCandidate
	g.index.QueryRadius(center, radius, func(pos geom.Position, _ geom.Position) {
		c, ok := g.cells[pos]
		if !ok {
			return
		}
		pref, ok := dietFilter[c.ResourceType]
		if !ok {
			return
		}
		floor := minBiomass
		if pref.MinimumBiomass > floor {
			floor = pref.MinimumBiomass
		}
		if c.Biomass < floor {
			return
		}
		if !c.Available(currentTick) {
			return
		}
		dist := center.DistanceTo(pos)
		score := (c.Biomass * pref.Weight) / (1 + dist*dist*g.cfg.DistancePenalty)
		out = append(out, ForageCandidate{Position: pos, Cell: c, Score: score})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// TotalBiomassInChunk sums live cell biomass within a chunk, a read-only
// projection helper.
func (g *Grid) TotalBiomassInChunk(chunk geom.ChunkCoord) float64 {
	var total float64
	base := geom.Position{X: chunk.X * geom.ChunkSize, Y: chunk.Y * geom.ChunkSize}
	for dy := int32(0); dy < geom.ChunkSize; dy++ {
		for dx := int32(0); dx < geom.ChunkSize; dx++ {
			if c, ok := g.cells[base.Add(dx, dy)]; ok {
				total += c.Biomass
			}
		}
	}
	return total
}

// CellIterActive calls visit for every live cell, for read-only projection
// (spec §4.3 cell_iter_active).
func (g *Grid) CellIterActive(visit func(pos geom.Position, c *Cell)) {
	for pos, c := range g.cells {
		visit(pos, c)
	}
}

// Len returns the number of live cells.
func (g *Grid) Len() int { return len(g.cells) }

// PendingEvents returns the scheduler's current queue size, used by tests
// asserting the bounded-queue-size invariant (spec §4.3 invariant iv).
func (g *Grid) PendingEvents() int { return g.sched.Len() }

// ProcessTick pops due events up to the configured budget, applies logistic
// growth, reschedules Regrow as needed, and samples RandomTick cells as a
// safety net. It returns the number of events processed this tick (spec §8:
// "events_processed_this_tick <= event_budget").
func (g *Grid) ProcessTick(currentTick uint64) int {
	due := g.sched.PopDue(currentTick, g.cfg.EventBudgetPerTick)
	for _, ev := range due {
		g.applyGrowth(currentTick, ev.Position)
	}

	remainingBudget := g.cfg.EventBudgetPerTick - len(due)
	if remainingBudget > 0 {
		g.sampleRandomTicks(currentTick, min(remainingBudget, g.cfg.RandomTicksPerTick))
	}
	return len(due)
}

func (g *Grid) sampleRandomTicks(currentTick uint64, count int) {
	if len(g.cells) == 0 || count <= 0 {
		return
	}
	positions := make([]geom.Position, 0, len(g.cells))
	for pos := range g.cells {
		positions = append(positions, pos)
	}
	for i := 0; i < count; i++ {
		pos := positions[g.rng.Intn(len(positions))]
		g.applyGrowth(currentTick, pos)
	}
}

func (g *Grid) applyGrowth(currentTick uint64, pos geom.Position) {
	c, ok := g.cells[pos]
	if !ok {
		return // removed since the event was scheduled
	}
	chunk := pos.Chunk()
	if g.suppressed[chunk] {
		return // Cold/Frozen chunk: growth suppressed per C4
	}
	factor := g.lodFactor[chunk]
	if factor == 0 {
		factor = 1.0
	}

	terrainMul := g.growthMultiplier(pos)
	r := g.cfg.GrowthRate * c.GrowthRateModifier
	growth := r * c.Biomass * (1 - c.Biomass/c.MaxBiomass) * terrainMul * factor
	c.Biomass += growth
	c.clampBiomass()
	c.LastUpdateTick = currentTick

	if c.Biomass < c.MaxBiomass*g.cfg.NearFullFraction {
		// Δ shortens as the biomass fraction drops: a near-empty cell is
		// rescheduled close to MinGrowthDelay, a near-full one close to
		// MaxGrowthDelay (spec §4.3).
		frac := clampFraction(c.Biomass / c.MaxBiomass)
		span := float64(g.cfg.MaxGrowthDelay - g.cfg.MinGrowthDelay)
		delta := g.cfg.MinGrowthDelay + uint64(frac*span)
		g.sched.ScheduleRegrow(pos, currentTick+delta)
	}
}

// SetChunkLOD is called by the Chunk LOD Manager (C4) to set the growth
// factor and suppression state for a chunk. Passing suppressed=true freezes
// per-cell event processing for that chunk (Cold/Frozen tiers).
func (g *Grid) SetChunkLOD(chunk geom.ChunkCoord, factor float64, suppressed bool) {
	g.lodFactor[chunk] = factor
	g.suppressed[chunk] = suppressed
}

// CollapseChunk computes and returns the aggregate biomass and cell count
// for a chunk, for the LOD manager's Hot/Warm -> Cold transition. The cells
// themselves are left untouched (their biomass is the source of truth the
// LOD manager can later reinflate from); this just reports the aggregate.
func (g *Grid) CollapseChunk(chunk geom.ChunkCoord) (sumBiomass float64, cellCount int) {
	base := geom.Position{X: chunk.X * geom.ChunkSize, Y: chunk.Y * geom.ChunkSize}
	for dy := int32(0); dy < geom.ChunkSize; dy++ {
		for dx := int32(0); dx < geom.ChunkSize; dx++ {
			if c, ok := g.cells[base.Add(dx, dy)]; ok {
				sumBiomass += c.Biomass
				cellCount++
			}
		}
	}
	return sumBiomass, cellCount
}

// ReinflateChunk distributes aggregateBiomass back across a chunk's cells
// proportionally to each cell's MaxBiomass, for the Cold -> Hot/Warm
// transition. Biomass is conserved: the sum of post-reinflation cell
// biomass equals aggregateBiomass (spec §8 LOD conservation property).
func (g *Grid) ReinflateChunk(chunk geom.ChunkCoord, aggregateBiomass float64) {
	base := geom.Position{X: chunk.X * geom.ChunkSize, Y: chunk.Y * geom.ChunkSize}
	var totalMax float64
	var positions []geom.Position
	for dy := int32(0); dy < geom.ChunkSize; dy++ {
		for dx := int32(0); dx < geom.ChunkSize; dx++ {
			p := base.Add(dx, dy)
			if c, ok := g.cells[p]; ok {
				totalMax += c.MaxBiomass
				positions = append(positions, p)
			}
		}
	}
	if totalMax <= 0 {
		return
	}
	for _, p := range positions {
		c := g.cells[p]
		c.Biomass = aggregateBiomass * (c.MaxBiomass / totalMax)
		c.clampBiomass()
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
