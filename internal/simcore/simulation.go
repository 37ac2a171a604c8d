// Package simcore wires every component (C1-C15) into the single
// Simulation type the outer shell drives: one Step call per wall-clock
// frame, internally fanning out across however many ticks the clock
// produced, in the fixed order spec §5 requires (fear scan, stat drains,
// replan triggers, planning, action execution, movement, then
// reproduction, LOD, vegetation events, health checks and profiler).
package simcore

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoCodeAlone/ecotick/internal/actionqueue"
	"github.com/GoCodeAlone/ecotick/internal/config"
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/fear"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/health"
	"github.com/GoCodeAlone/ecotick/internal/lod"
	"github.com/GoCodeAlone/ecotick/internal/movement"
	"github.com/GoCodeAlone/ecotick/internal/needs"
	"github.com/GoCodeAlone/ecotick/internal/pathfind"
	"github.com/GoCodeAlone/ecotick/internal/planner"
	"github.com/GoCodeAlone/ecotick/internal/profiler"
	"github.com/GoCodeAlone/ecotick/internal/replan"
	"github.com/GoCodeAlone/ecotick/internal/reproduction"
	"github.com/GoCodeAlone/ecotick/internal/simlog"
	"github.com/GoCodeAlone/ecotick/internal/simtime"
	"github.com/GoCodeAlone/ecotick/internal/snapshot"
	"github.com/GoCodeAlone/ecotick/internal/spatial"
	"github.com/GoCodeAlone/ecotick/internal/species"
	"github.com/GoCodeAlone/ecotick/internal/terrain"
	"github.com/GoCodeAlone/ecotick/internal/vegetation"
)

// DefaultHoldTicks/DefaultMaxDurationTicks feed planner.Inputs for species
// that don't override them via config (spec leaves these as free
// per-action tunables; these are the reference defaults).
const (
	DefaultHoldTicks       = 20
	DefaultMaxDurationTicks = 600
)

// ReplanBudgetPerTick bounds how many queued replan requests get a fresh
// plan each tick when config doesn't override it (spec §4.8/§4.9: bounded
// work per tick).
const ReplanBudgetPerTick = 10

type pairState struct {
	partner    entity.ID
	rendezvous geom.Position
	isFemale   bool
}

// Simulation owns every subsystem and the glue state simcore itself is
// responsible for (species lookup, per-entity need pools, mate-pairing
// lookup by ID, mother tracking for Follow).
type Simulation struct {
	logger zerolog.Logger
	rng    *rand.Rand

	clock *simtime.Clock

	registry  *entity.Registry
	entityIdx *spatial.Index[entity.ID]

	terrain terrain.Query
	grid    *vegetation.Grid
	lodMgr  *lod.Manager
	facade  *pathfind.Facade

	movementExec *movement.Executor
	replanQ      *replan.Queue
	idle         *replan.IdleTracker
	fearTracker  *fear.Tracker
	repro        *reproduction.Tracker
	actionExec   *actionqueue.Executor
	claims       *actionqueue.ClaimTable
	healthMon    *health.Monitor
	prof         *profiler.Profiler
	snapBuilder  snapshot.Builder

	needsPools map[entity.ID]*needs.Pool
	pairs      map[entity.ID]pairState
	motherOf   map[entity.ID]entity.ID

	speciesByName map[string]*species.Config

	replanBudget         int
	replanFromMovement   []movement.Event
	completedOrFailedIDs []entity.ID
}

// New assembles a Simulation from loaded config, a terrain oracle, and a
// seeded RNG (spec §12: threaded per-Simulation, never the global source,
// so two runs with the same seed reproduce identically).
func New(cfg *config.Config, q terrain.Query, seed int64, logger zerolog.Logger) *Simulation {
	rng := rand.New(rand.NewSource(seed))

	var growth vegetation.TerrainGrowth
	if g, ok := q.(vegetation.TerrainGrowth); ok {
		growth = g
	}

	vegCfg := vegetation.Defaults()
	sim := &Simulation{
		logger:        logger,
		rng:           rng,
		clock:         simtime.New(float64(cfg.BaseTickMS)),
		registry:      entity.NewRegistry(),
		entityIdx:     spatial.New[entity.ID](),
		terrain:       q,
		grid:          vegetation.New(vegCfg, growth, rng),
		lodMgr:        lod.New(lod.Thresholds{HotMax: cfg.LODThresholds.HotMax, WarmMax: cfg.LODThresholds.WarmMax, ColdMax: cfg.LODThresholds.ColdMax}, lod.DefaultIntervalTicks),
		facade:        pathfind.New(q, nil),
		movementExec:  movement.New(),
		replanQ:       replan.New(),
		idle:          replan.NewIdleTracker(),
		fearTracker:   fear.New(),
		repro:         reproduction.New(rng),
		actionExec:    actionqueue.New(),
		claims:        actionqueue.NewClaimTable(),
		healthMon:     health.New(),
		prof:          profiler.New(nil),
		snapBuilder:   snapshot.New(),
		needsPools:    make(map[entity.ID]*needs.Pool),
		pairs:         make(map[entity.ID]pairState),
		motherOf:      make(map[entity.ID]entity.ID),
		speciesByName: make(map[string]*species.Config),
	}

	for _, spec := range cfg.Species {
		sim.speciesByName[spec.Name] = specFromConfig(spec)
	}

	sim.seedVegetation(cfg)
	sim.actionExec.SetPromoteBudget(int(cfg.ActionBudgets.ActionPromotePerTick))
	sim.replanBudget = int(cfg.ActionBudgets.ReplanDrainPerTick)
	if sim.replanBudget <= 0 {
		sim.replanBudget = ReplanBudgetPerTick
	}

	for _, group := range cfg.SpawnGroups {
		speciesCfg, ok := sim.speciesByName[group.Species]
		if !ok {
			continue
		}
		for i := 0; i < group.Count; i++ {
			pos := geom.Position{
				X: group.AreaMinX + int32(rng.Intn(int(group.AreaMaxX-group.AreaMinX+1))),
				Y: group.AreaMinY + int32(rng.Intn(int(group.AreaMaxY-group.AreaMinY+1))),
			}
			sex := entity.SexFemale
			if rng.Intn(2) == 0 {
				sex = entity.SexMale
			}
			sim.Spawn(speciesCfg, pos, sex, 0)
		}
	}

	return sim
}

func resourceTypeFromName(name string) species.ResourceType {
	switch name {
	case "shrub":
		return species.ResourceShrub
	case "collectable":
		return species.ResourceCollectable
	default:
		return species.ResourceGrass
	}
}

// seedVegetation scatters initial cells across every spawn group's area per
// the configured resource densities — a reference seeding strategy; a
// richer shell is free to call GetOrCreateCell directly from its own
// terrain-driven placement instead.
func (s *Simulation) seedVegetation(cfg *config.Config) {
	for _, group := range cfg.SpawnGroups {
		for _, profile := range cfg.ResourceProfiles {
			rt := resourceTypeFromName(profile.ResourceType)
			area := (group.AreaMaxX - group.AreaMinX + 1) * (group.AreaMaxY - group.AreaMinY + 1)
			count := int(float64(area) * profile.Density / float64(len(cfg.ResourceProfiles)+1))
			for i := 0; i < count; i++ {
				pos := geom.Position{
					X: group.AreaMinX + int32(s.rng.Intn(int(group.AreaMaxX-group.AreaMinX+1))),
					Y: group.AreaMinY + int32(s.rng.Intn(int(group.AreaMaxY-group.AreaMinY+1))),
				}
				if s.terrain != nil && !s.terrain.Walkable(pos) {
					continue
				}
				s.grid.GetOrCreateCell(0, pos, rt, profile.MaxBiomass, profile.GrowthRateModifier)
			}
		}
	}
}

func specFromConfig(s config.SpeciesSpec) *species.Config {
	diet := make([]species.DietPreference, 0, len(s.DietPreferences))
	for _, d := range s.DietPreferences {
		diet = append(diet, species.DietPreference{
			ResourceType:   resourceTypeFromName(d.ResourceType),
			Weight:         d.Weight,
			MinimumBiomass: d.MinimumBiomass,
		})
	}
	return &species.Config{
		Name:                 s.Name,
		Label:                s.Label,
		MovementTicksPerTile: s.MovementTicksPerTile,
		WanderRadius:         s.WanderRadius,
		DrinkAt:              s.DrinkAt,
		EatAt:                s.EatAt,
		RestAt:               s.RestAt,
		GrazeMinRange:        s.GrazeMinRange,
		GrazeMaxRange:        s.GrazeMaxRange,
		FoodSearchRadius:     s.FoodSearchRadius,
		WaterSearchRadius:    s.WaterSearchRadius,
		DietPreferences:      diet,
		Stats: species.StatsTemplate{
			Hunger: species.StatTemplate(s.Stats.Hunger),
			Thirst: species.StatTemplate(s.Stats.Thirst),
			Energy: species.StatTemplate(s.Stats.Energy),
			Health: species.StatTemplate(s.Stats.Health),
		},
		Reproduction: species.ReproductionParams(s.Reproduction),
		Fear:         species.FearParams(s.Fear),
		IsPredator:   s.IsPredator,
		PreyPreference: s.PreyPreference,
	}
}

// Spawn creates a new entity at pos with the given species/sex, wiring it
// into every per-entity subsystem map. birthTick 0 means "spawned at
// startup"; births from C12 pass the current tick.
func (s *Simulation) Spawn(cfg *species.Config, pos geom.Position, sex entity.Sex, birthTick uint64) entity.ID {
	rec := s.registry.Spawn(cfg, pos, sex, birthTick)
	rec.Position = pos
	s.entityIdx.Insert(rec.ID, pos)
	s.needsPools[rec.ID] = needs.NewPool(cfg.Stats)
	return rec.ID
}

// Despawn marks an entity dead and drops it from every subsystem's
// per-entity bookkeeping immediately (the bounded-period sweeps in C10/C13
// exist for late/lazy cleanup of entities despawned by other means, e.g.
// starvation detected inline during a tick).
func (s *Simulation) Despawn(id entity.ID) {
	s.registry.Despawn(id)
	if pos, ok := s.entityIdx.PositionOf(id); ok {
		s.entityIdx.Remove(id, pos)
	}
	delete(s.needsPools, id)
	s.movementExec.Forget(id)
	s.replanQ.Forget(id)
	s.idle.Forget(id)
	s.fearTracker.Forget(id)
	s.repro.Forget(id)
	s.actionExec.Forget(id)
	delete(s.pairs, id)
	delete(s.motherOf, id)
}

// SetSpeed forwards to the tick clock's speed multiplier.
func (s *Simulation) SetSpeed(multiplier float64) { s.clock.SetSpeed(multiplier) }

// Pause forwards to the tick clock.
func (s *Simulation) Pause() { s.clock.Pause() }

// Resume forwards to the tick clock.
func (s *Simulation) Resume() { s.clock.Resume() }

// CurrentTick returns the clock's monotonic tick counter.
func (s *Simulation) CurrentTick() uint64 { return s.clock.CurrentTick() }

// Step feeds one wall-clock delta (ms) to the tick clock and runs every
// tick it produces in order, returning how many ticks ran. Each tick's
// actual wall-clock duration feeds the Health Monitor's TPS estimate,
// independent of the clock's own (possibly sped-up or slowed-down)
// simulated tick duration.
func (s *Simulation) Step(deltaWallMS float64) int {
	advanced := s.clock.Advance(deltaWallMS)
	for i := 0; i < advanced; i++ {
		start := time.Now()
		tick := s.clock.CurrentTick()
		s.prof.Bracket("tick", func() {
			s.runTick(tick)
		})
		s.healthMon.ObserveTick(float64(time.Since(start).Milliseconds()))
	}
	return advanced
}

// MatcherIntervalTicks is the reference cadence for the reproduction
// matcher when a species doesn't override it via Reproduction.MatcherInterval.
const MatcherIntervalTicks = 30

// FleeDistance is how far a Flee destination is projected past the nearest
// detected predator (spec leaves this a free tunable; 10 tiles clears most
// species' fear radii in one action).
const FleeDistance = 10.0

// PatrolRadiusFraction scales a predator's wander radius down to a patrol
// loop around its territory center.
const PatrolRadiusFraction = 0.5

// runTick drives one full tick through every component in the exact order
// spec §5 names: C11 fear scan → C7 stat drains → C8 triggers → C9 planner
// drain → C10 action execution → C6 movement → C12 matcher/birth → C4 LOD
// reclassify → C3 event drain → C13 checks → C14 report. This also keeps
// invariant (c) satisfied: action effects on cells (consume, in C10) are
// visible to C4 and C3 within the same tick, since both now run after C10
// instead of before it.
func (s *Simulation) runTick(tick uint64) {
	walkable := func(pos geom.Position) bool {
		if s.terrain == nil {
			return true
		}
		return s.terrain.Walkable(pos)
	}

	// C5 pathfinding resolves here, before C10 consumes any TakeResult this
	// tick; its effect on world state is still only applied when C6
	// consumes the resulting path, per spec §5's concurrency contract.
	s.prof.Bracket("pathfind", func() {
		s.facade.Sweep()
	})

	var preyViews []fear.EntityView
	s.registry.AllAlive(func(rec *entity.Record) {
		if rec.Species.IsPredator {
			return
		}
		preyViews = append(preyViews, fear.EntityView{
			ID:         rec.ID,
			Position:   rec.Position,
			FearRadius: rec.Species.Fear.Radius,
			Threshold:  rec.Species.Fear.Threshold,
			DecayRate:  rec.Species.Fear.DecayRate,
		})
	})
	var fearCrossed []entity.ID
	s.prof.Bracket("fear", func() {
		fearCrossed = s.fearTracker.Scan(tick, preyViews, s.entityIdx)
	})

	var crossings map[entity.ID][]needs.ThresholdCrossed
	s.prof.Bracket("needs", func() {
		crossings = make(map[entity.ID][]needs.ThresholdCrossed)
		s.registry.AllAlive(func(rec *entity.Record) {
			pool, ok := s.needsPools[rec.ID]
			if !ok {
				return
			}
			pool.DrainAll()
			if pool.Health.Value <= 0 {
				s.Despawn(rec.ID)
				return
			}
			thresholds := map[needs.Kind]float64{
				needs.Hunger: rec.Species.EatAt,
				needs.Thirst: rec.Species.DrinkAt,
				needs.Energy: rec.Species.RestAt,
			}
			if cs := pool.CheckThresholds(tick, thresholds); len(cs) > 0 {
				crossings[rec.ID] = cs
			}
			s.repro.UpdateWellFedStreak(rec.ID, pool, rec.Species.Reproduction.SlackThreshold)
			s.healthMon.ObservePosition(rec.ID, rec.Position, tick)
			if s.actionExec.HasActive(rec.ID) {
				s.idle.MarkActive(rec.ID, tick)
			}
		})
	})

	s.prof.Bracket("replan", func() {
		replan.RunStatThreshold(s.replanQ, tick, crossings)
		replan.RunFear(s.replanQ, tick, fearCrossed, func(id entity.ID) bool {
			kind, ok := s.actionExec.ActiveKind(id)
			return ok && kind == actionqueue.Flee
		})
		replan.RunActionCompletion(s.replanQ, tick, s.completedOrFailedIDs, s.replanFromMovement)

		aliveWander := make(map[entity.ID]uint32)
		s.registry.AllAlive(func(rec *entity.Record) {
			r := uint32(rec.Species.WanderRadius)
			if r == 0 {
				r = 1
			}
			aliveWander[rec.ID] = r
		})
		replan.RunLongIdle(s.replanQ, tick, s.idle, aliveWander)
	})

	s.prof.Bracket("plan", func() {
		for _, req := range s.replanQ.Drain(s.replanBudget) {
			rec, ok := s.registry.Get(req.Entity)
			if !ok || !rec.Alive {
				continue
			}
			pool, ok := s.needsPools[req.Entity]
			if !ok {
				continue
			}
			in := s.buildPlannerInputs(tick, rec, pool)
			if action, ok := planner.Evaluate(req.Entity, tick, in); ok {
				if activePriority, busy := s.actionExec.ActivePriority(req.Entity); busy && activePriority >= action.Priority {
					// spec §4.9: only an active action of LOWER priority is
					// cancelled; equal-or-higher priority keeps running
					// (e.g. a Mate hold in progress must survive a Thirst
					// replan trigger unless thirst actually outranks it).
					continue
				}
				s.actionExec.Cancel(req.Entity)
				s.actionExec.Enqueue(action)
			}
		}
	})

	var completions []actionqueue.Completion
	s.prof.Bracket("actionqueue", func() {
		deps := actionqueue.Deps{
			Registry:     s.registry,
			Grid:         s.grid,
			Facade:       s.facade,
			Movement:     s.movementExec,
			Needs:        s.needsPools,
			Reproduction: s.repro,
			Fear:         s.fearTracker,
			Claims:       s.claims,
			Walkable:     walkable,
		}
		completions = s.actionExec.Tick(tick, deps)
	})
	s.completedOrFailedIDs = s.completedOrFailedIDs[:0]
	for _, c := range completions {
		s.completedOrFailedIDs = append(s.completedOrFailedIDs, c.Entity)
		if c.Kind == actionqueue.Mate {
			if p, ok := s.pairs[c.Entity]; ok {
				delete(s.pairs, p.partner)
			}
			delete(s.pairs, c.Entity)
		}
	}

	s.prof.Bracket("movement", func() {
		s.replanFromMovement = s.movementExec.Step(s.registry, s.entityIdx, walkable)
	})

	s.prof.Bracket("reproduction", func() {
		s.runMatcher(tick)
		for _, birth := range s.repro.DueBirths(tick) {
			s.spawnLitter(tick, birth)
		}
	})

	if s.lodMgr.ShouldRun(tick) {
		s.prof.Bracket("lod", func() {
			var agentPositions []geom.Position
			s.registry.AllAlive(func(rec *entity.Record) {
				agentPositions = append(agentPositions, rec.Position)
			})
			s.lodMgr.Reclassify(tick, agentPositions, s.grid)
		})
	}

	s.prof.Bracket("vegetation", func() {
		s.grid.ProcessTick(tick)
	})

	if tick%health.CheckIntervalTicks == 0 {
		s.prof.Bracket("health", func() {
			s.healthMon.ObservePopulation(tick, s.registry.Count())
			s.healthMon.RunChecks(tick, time.Now().UnixMilli(),
				func(id entity.ID) (string, bool) {
					kind, ok := s.actionExec.ActiveKind(id)
					if !ok {
						return "", false
					}
					return kind.String(), true
				},
				s.actionExec.RepeatCount,
				func(kind string) bool {
					return kind == actionqueue.Rest.String() || kind == actionqueue.Graze.String() ||
						kind == actionqueue.Harvest.String() || kind == actionqueue.Drink.String() ||
						kind == actionqueue.Mate.String()
				},
			)
			s.healthMon.Cleanup(s.registry.IsAlive)
		})
	}

	if report, ok := s.prof.MaybeReport(tick); ok {
		simlog.TickLogger(s.logger, tick).Debug().Int("systems", len(report.Stats)).Msg("tick profile report")
	}
}

// runMatcher pairs eligible females with eligible males, scoped per species
// so cross-species pairing never happens, at the cadence the species'
// MatcherInterval configures (falling back to MatcherIntervalTicks).
func (s *Simulation) runMatcher(tick uint64) {
	bySpecies := make(map[string][]reproduction.Candidate)
	s.registry.AllAlive(func(rec *entity.Record) {
		pool, ok := s.needsPools[rec.ID]
		if !ok {
			return
		}
		c := reproduction.Candidate{ID: rec.ID, Position: rec.Position, Sex: rec.Sex, BirthTick: rec.BirthTick, Species: rec.Species}
		if !s.repro.Eligible(c, pool, tick) {
			return
		}
		bySpecies[rec.Species.Name] = append(bySpecies[rec.Species.Name], c)
	})

	for name, candidates := range bySpecies {
		cfg := s.speciesByName[name]
		interval := uint64(MatcherIntervalTicks)
		if cfg != nil && cfg.Reproduction.MatcherInterval > 0 {
			interval = cfg.Reproduction.MatcherInterval
		}
		if tick%interval != 0 {
			continue
		}
		var females, males []reproduction.Candidate
		for _, c := range candidates {
			if c.Sex == entity.SexFemale {
				females = append(females, c)
			} else if c.Sex == entity.SexMale {
				males = append(males, c)
			}
		}
		for _, pair := range s.repro.RunMatcher(females, males, s.entityIdx) {
			s.pairs[pair.Female] = pairState{partner: pair.Male, rendezvous: pair.Rendezvous, isFemale: true}
			s.pairs[pair.Male] = pairState{partner: pair.Female, rendezvous: pair.Rendezvous, isFemale: false}
		}
	}
}

func (s *Simulation) spawnLitter(tick uint64, birth reproduction.Birth) {
	for i := 0; i < birth.LitterSize; i++ {
		sex := entity.SexFemale
		if s.rng.Intn(2) == 0 {
			sex = entity.SexMale
		}
		offset := geom.Position{X: int32(s.rng.Intn(3) - 1), Y: int32(s.rng.Intn(3) - 1)}
		pos := birth.Position.Add(offset.X, offset.Y)
		id := s.Spawn(birth.Species, pos, sex, tick)
		s.motherOf[id] = birth.Mother
	}
	simlog.TickLogger(s.logger, tick).Info().Str("species", birth.Species.Name).Int("litter", birth.LitterSize).Msg("birth")
}

// buildPlannerInputs gathers every piece of pre-computed per-entity signal
// the planner needs: forage ranking, water search, flee destination, follow
// candidates, wander sampling, and (for predators) hunt/patrol targeting.
func (s *Simulation) buildPlannerInputs(tick uint64, rec *entity.Record, pool *needs.Pool) planner.Inputs {
	cfg := rec.Species
	in := planner.Inputs{
		Position:           rec.Position,
		Species:            cfg,
		HungerUrgency:      pool.Hunger.Urgency(needs.Hunger),
		ThirstUrgency:      pool.Thirst.Urgency(needs.Thirst),
		EnergyUrgency:      pool.Energy.Urgency(needs.Energy),
		FearLevel:          s.fearTracker.LevelOf(rec.ID),
		SafeRestTile:       rec.Position,
		DefaultHoldTicks:   DefaultHoldTicks,
		DefaultMaxDuration: DefaultMaxDurationTicks,
	}

	forage := s.grid.FindForageCells(tick, rec.Position, cfg.GrazeMaxRange, 0, cfg.DietFilter())
	for i := range forage {
		if forage[i].Cell.ResourceType == species.ResourceCollectable {
			if in.BestHarvestCell == nil {
				in.BestHarvestCell = &forage[i]
			}
		} else if in.BestGrazeCell == nil {
			in.BestGrazeCell = &forage[i]
		}
	}

	if pos, found := s.findWaterTarget(rec.Position, cfg.WaterSearchRadius); found {
		in.Water = planner.WaterTarget{Position: pos, Found: true}
	}

	if mother, ok := s.motherOf[rec.ID]; ok {
		if motherRec, alive := s.registry.Get(mother); alive && motherRec.Alive {
			in.FollowCandidates = append(in.FollowCandidates, planner.FollowCandidate{
				Entity:   mother,
				Position: motherRec.Position,
				Distance: rec.Position.DistanceTo(motherRec.Position),
			})
		}
	}

	if nearestPredator, _, found := s.nearestPredator(rec.Position, cfg.Fear.Radius, rec.ID); found {
		in.HasFleeDest = true
		in.FleeDestination = fleeAwayFrom(rec.Position, nearestPredator, FleeDistance)
	}

	if p, ok := s.pairs[rec.ID]; ok {
		if s.registry.IsAlive(p.partner) {
			in.Mate = planner.MateOption{Eligible: true, Partner: p.partner, Rendezvous: p.rendezvous, HasPartner: true, IsFemale: p.isFemale}
		} else {
			delete(s.pairs, rec.ID)
		}
	}

	if cfg.IsPredator {
		if target, ok := s.nearestPrey(rec); ok {
			in.Hunt = planner.HuntTarget{Entity: target, Found: true}
		} else {
			state := s.fearTracker.PredatorOf(rec.ID, cfg.HomePosition)
			in.PatrolWaypoints = patrolLoop(state.TerritoryCenter, cfg.WanderRadius*PatrolRadiusFraction)
		}
	}

	if !in.Hunt.Found {
		dx := int32(s.rng.Intn(int(cfg.WanderRadius)*2+1)) - int32(cfg.WanderRadius)
		dy := int32(s.rng.Intn(int(cfg.WanderRadius)*2+1)) - int32(cfg.WanderRadius)
		in.WanderDestination = cfg.HomePosition.Add(dx, dy)
		in.HasWanderDest = true
	}

	return in
}

// findWaterTarget scans expanding square rings around center for the
// nearest terrain.Query water tile within radius tiles, since no dedicated
// spatial index of water exists.
func (s *Simulation) findWaterTarget(center geom.Position, radius float64) (geom.Position, bool) {
	if s.terrain == nil || radius <= 0 {
		return geom.Position{}, false
	}
	r := int32(radius)
	if s.terrain.IsWater(center) {
		return center, true
	}
	for ring := int32(1); ring <= r; ring++ {
		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				if absInt32(dx) != ring && absInt32(dy) != ring {
					continue
				}
				pos := center.Add(dx, dy)
				if s.terrain.IsWater(pos) {
					return pos, true
				}
			}
		}
	}
	return geom.Position{}, false
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// nearestPredator finds the closest living predator within radius of pos,
// excluding self.
func (s *Simulation) nearestPredator(pos geom.Position, radius float64, self entity.ID) (geom.Position, float64, bool) {
	var best geom.Position
	bestDist := radius + 1
	found := false
	s.entityIdx.QueryRadius(pos, radius, func(key entity.ID, p geom.Position) {
		if key == self {
			return
		}
		rec, ok := s.registry.Get(key)
		if !ok || !rec.Alive || !rec.Species.IsPredator {
			return
		}
		d := pos.DistanceTo(p)
		if d < bestDist {
			bestDist = d
			best = p
			found = true
		}
	})
	return best, bestDist, found
}

func fleeAwayFrom(self, threat geom.Position, distance float64) geom.Position {
	dx := float64(self.X - threat.X)
	dy := float64(self.Y - threat.Y)
	mag := dx*dx + dy*dy
	if mag == 0 {
		return geom.Position{X: self.X + int32(distance), Y: self.Y}
	}
	m := math.Sqrt(mag)
	return geom.Position{
		X: self.X + int32(dx/m*distance),
		Y: self.Y + int32(dy/m*distance),
	}
}

// nearestPrey finds the closest living entity within the predator's
// FoodSearchRadius whose species name appears in its PreyPreference list.
func (s *Simulation) nearestPrey(predator *entity.Record) (entity.ID, bool) {
	preySet := make(map[string]bool, len(predator.Species.PreyPreference))
	for _, name := range predator.Species.PreyPreference {
		preySet[name] = true
	}
	var best entity.ID
	bestDist := predator.Species.FoodSearchRadius + 1
	found := false
	s.entityIdx.QueryRadius(predator.Position, predator.Species.FoodSearchRadius, func(key entity.ID, p geom.Position) {
		if key == predator.ID {
			return
		}
		rec, ok := s.registry.Get(key)
		if !ok || !rec.Alive || !preySet[rec.Species.Name] {
			return
		}
		d := predator.Position.DistanceTo(p)
		if d < bestDist {
			bestDist = d
			best = key
			found = true
		}
	})
	return best, found
}

// patrolLoop returns a small fixed square of waypoints around center.
func patrolLoop(center geom.Position, radius float64) []geom.Position {
	r := int32(radius)
	if r < 1 {
		r = 1
	}
	return []geom.Position{
		center.Add(r, 0),
		center.Add(0, r),
		center.Add(-r, 0),
		center.Add(0, -r),
	}
}

// SnapshotEntities returns a read-only projection of every currently alive
// entity (spec §4.15, §6).
func (s *Simulation) SnapshotEntities() []snapshot.EntitySummary {
	var out []snapshot.EntitySummary
	tick := s.CurrentTick()
	s.registry.AllAlive(func(rec *entity.Record) {
		pool, ok := s.needsPools[rec.ID]
		if !ok {
			return
		}
		action := ""
		if kind, ok := s.actionExec.ActiveKind(rec.ID); ok {
			action = kind.String()
		}
		age := uint64(0)
		if tick > rec.BirthTick {
			age = tick - rec.BirthTick
		}
		out = append(out, snapshot.EntitySummary{
			ID:            rec.ID,
			Species:       rec.Species.Name,
			Position:      rec.Position,
			Hunger:        pool.Hunger.Value,
			Thirst:        pool.Thirst.Value,
			Energy:        pool.Energy.Value,
			Health:        pool.Health.Value,
			CurrentAction: action,
			AgeTicks:      age,
			FearLevel:     s.fearTracker.LevelOf(rec.ID),
		})
	})
	return s.snapBuilder.BuildEntities(out)
}

// SnapshotHealth returns the current Health Monitor summary.
func (s *Simulation) SnapshotHealth() snapshot.HealthSummary {
	return snapshot.BuildHealth(s.healthMon, s.CurrentTick())
}

// RecentAlerts returns the Health Monitor's alert ring buffer.
func (s *Simulation) RecentAlerts() []health.Alert {
	return snapshot.RecentAlerts(s.healthMon)
}

// BiomassAt returns the ResourceGrid biomass at pos.
func (s *Simulation) BiomassAt(pos geom.Position) float64 {
	return s.grid.BiomassAt(pos)
}

// BiomassChunkAggregate returns the total biomass across every live cell in
// chunk.
func (s *Simulation) BiomassChunkAggregate(chunk geom.ChunkCoord) float64 {
	return s.grid.TotalBiomassInChunk(chunk)
}
