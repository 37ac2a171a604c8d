// Package reproduction implements the Reproduction Subsystem (spec §4.12,
// component C12): eligibility gating, a periodic nearest-partner matcher,
// gestation timers, and birth-event production.
package reproduction

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/needs"
	"github.com/GoCodeAlone/ecotick/internal/spatial"
	"github.com/GoCodeAlone/ecotick/internal/species"
)

// Candidate is the minimal per-entity view the eligibility predicate and
// matcher need.
type Candidate struct {
	ID        entity.ID
	Position  geom.Position
	Sex       entity.Sex
	BirthTick uint64
	Species   *species.Config
}

// Tracker owns the well-fed streak counters, mate cooldowns, and pending
// gestations.
type Tracker struct {
	wellFedStreak map[entity.ID]uint64
	maleCooldownUntil map[entity.ID]uint64
	femaleCooldownUntil map[entity.ID]uint64
	paired        map[entity.ID]entity.ID // entity -> current partner, while a Mate action/gestation is outstanding
	gestations    []gestation
	rng           *rand.Rand
}

type gestation struct {
	Mother   entity.ID
	Position geom.Position
	Species  *species.Config
	DueTick  uint64
}

// Birth is a due gestation ready to spawn juveniles.
type Birth struct {
	Mother     entity.ID
	Position   geom.Position
	Species    *species.Config
	LitterSize int
}

// Pair is a matched mate pair with a shared rendezvous tile.
type Pair struct {
	Female      entity.ID
	Male        entity.ID
	Rendezvous  geom.Position
}

// New returns a Tracker seeded from rng (caller supplies a
// per-simulation *rand.Rand for deterministic reproducibility).
func New(rng *rand.Rand) *Tracker {
	return &Tracker{
		wellFedStreak:       make(map[entity.ID]uint64),
		maleCooldownUntil:   make(map[entity.ID]uint64),
		femaleCooldownUntil: make(map[entity.ID]uint64),
		paired:              make(map[entity.ID]entity.ID),
		rng:                 rng,
	}
}

// UpdateWellFedStreak advances or resets id's well-fed streak for this
// tick, based on whether its hunger/thirst urgency is within the species'
// slack threshold.
func (t *Tracker) UpdateWellFedStreak(id entity.ID, pool *needs.Pool, slackThreshold float64) {
	if pool.Hunger.Urgency(needs.Hunger) <= slackThreshold && pool.Thirst.Urgency(needs.Thirst) <= slackThreshold {
		t.wellFedStreak[id]++
	} else {
		t.wellFedStreak[id] = 0
	}
}

// Eligible reports whether c may enter the mate pool at currentTick: an
// adult, off cooldown, not already paired, with energy/health above gate
// thresholds and a well-fed streak at least WellFedStreakTicks.
func (t *Tracker) Eligible(c Candidate, pool *needs.Pool, currentTick uint64) bool {
	rp := c.Species.Reproduction
	if currentTick < c.BirthTick+rp.AdultAtTicks {
		return false
	}
	if _, paired := t.paired[c.ID]; paired {
		return false
	}
	if c.Sex == entity.SexMale && currentTick < t.maleCooldownUntil[c.ID] {
		return false
	}
	if c.Sex == entity.SexFemale && currentTick < t.femaleCooldownUntil[c.ID] {
		return false
	}
	if pool.Energy.Urgency(needs.Energy) > 1-rp.EligibleEnergyMin {
		return false
	}
	if pool.Health.Urgency(needs.Health) > 1-rp.EligibleHealthMin {
		return false
	}
	return t.wellFedStreak[c.ID] >= rp.WellFedStreakTicks
}

// RunMatcher pairs every eligible female with the nearest eligible,
// unpaired male of the same species within MateSearchRadius, called once
// every MatcherInterval ticks per spec §4.12. idx is the entity spatial
// index used to bound the search.
func (t *Tracker) RunMatcher(females, males []Candidate, idx *spatial.Index[entity.ID]) []Pair {
	maleByID := make(map[entity.ID]Candidate, len(males))
	for _, m := range males {
		maleByID[m.ID] = m
	}

	var pairs []Pair
	for _, f := range females {
		if _, alreadyPaired := t.paired[f.ID]; alreadyPaired {
			continue
		}
		radius := float64(f.Species.Reproduction.MateSearchRadius)
		var bestMale entity.ID
		bestDist := radius + 1
		found := false
		idx.QueryRadius(f.Position, radius, func(key entity.ID, pos geom.Position) {
			m, isMaleCandidate := maleByID[key]
			if !isMaleCandidate {
				return
			}
			if _, paired := t.paired[m.ID]; paired {
				return
			}
			d := f.Position.DistanceTo(pos)
			if d < bestDist {
				bestDist = d
				bestMale = m.ID
				found = true
			}
		})
		if !found {
			continue
		}
		m := maleByID[bestMale]
		rendezvous := midpoint(f.Position, m.Position)
		t.paired[f.ID] = m.ID
		t.paired[m.ID] = f.ID
		pairs = append(pairs, Pair{Female: f.ID, Male: m.ID, Rendezvous: rendezvous})
	}
	return pairs
}

func midpoint(a, b geom.Position) geom.Position {
	return geom.Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// CompleteMating is called when a paired female's Mate action completes
// successfully: it clears the pairing, starts the female's postpartum
// cooldown and the male's cooldown, and schedules a Birth gestation.
func (t *Tracker) CompleteMating(female, male entity.ID, femaleCfg *species.Config, motherPos geom.Position, currentTick uint64) {
	rp := femaleCfg.Reproduction
	delete(t.paired, female)
	delete(t.paired, male)
	t.femaleCooldownUntil[female] = currentTick + rp.FemalePostpartum
	t.maleCooldownUntil[male] = currentTick + rp.MaleCooldown
	t.gestations = append(t.gestations, gestation{
		Mother:   female,
		Position: motherPos,
		Species:  femaleCfg,
		DueTick:  currentTick + rp.GestationTicks,
	})
}

// AbortMating clears a pairing without starting gestation or cooldowns
// (the Mate action failed or was cancelled).
func (t *Tracker) AbortMating(female, male entity.ID) {
	delete(t.paired, female)
	delete(t.paired, male)
}

// DueBirths pops every gestation due at or before currentTick and returns
// the litters to spawn, sampling each litter size uniformly in
// [LitterMin, LitterMax] via gonum's distuv.Uniform.
func (t *Tracker) DueBirths(currentTick uint64) []Birth {
	var due []gestation
	var remaining []gestation
	for _, g := range t.gestations {
		if currentTick >= g.DueTick {
			due = append(due, g)
		} else {
			remaining = append(remaining, g)
		}
	}
	t.gestations = remaining

	var births []Birth
	for _, g := range due {
		rp := g.Species.Reproduction
		litter := rp.LitterMin
		if rp.LitterMax > rp.LitterMin {
			u := distuv.Uniform{Min: float64(rp.LitterMin), Max: float64(rp.LitterMax) + 1, Src: t.rng}
			litter = int(u.Rand())
			if litter > rp.LitterMax {
				litter = rp.LitterMax
			}
		}
		births = append(births, Birth{Mother: g.Mother, Position: g.Position, Species: g.Species, LitterSize: litter})
	}
	return births
}

// Forget drops all tracked state for a despawned entity.
func (t *Tracker) Forget(id entity.ID) {
	delete(t.wellFedStreak, id)
	delete(t.maleCooldownUntil, id)
	delete(t.femaleCooldownUntil, id)
	if partner, ok := t.paired[id]; ok {
		delete(t.paired, partner)
	}
	delete(t.paired, id)
}
