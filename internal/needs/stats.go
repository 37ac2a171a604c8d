// Package needs implements the Needs Stats component (spec §4.7, C7):
// per-entity hunger/thirst/energy/health pools with drain rates and
// debounced threshold-crossing events.
package needs

import (
	"github.com/GoCodeAlone/ecotick/internal/species"
)

// Kind names the four tracked pools.
type Kind int

const (
	Hunger Kind = iota
	Thirst
	Energy
	Health
)

func (k Kind) String() string {
	switch k {
	case Hunger:
		return "hunger"
	case Thirst:
		return "thirst"
	case Energy:
		return "energy"
	case Health:
		return "health"
	default:
		return "unknown"
	}
}

// risesWithDrain reports whether drain increases (Hunger/Thirst) rather
// than decreases (Energy/Health) the raw value, per spec §3.
func (k Kind) risesWithDrain() bool {
	return k == Hunger || k == Thirst
}

// Stat is one pool: {max, value, drain_per_tick} with the invariant
// 0 <= value <= max (spec §3).
type Stat struct {
	Max          float64
	Value        float64
	DrainPerTick float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Drain applies one tick of drain in the kind-appropriate direction and
// clamps to [0, Max].
func (s *Stat) Drain(k Kind) {
	if k.risesWithDrain() {
		s.Value = clamp(s.Value+s.DrainPerTick, 0, s.Max)
	} else {
		s.Value = clamp(s.Value-s.DrainPerTick, 0, s.Max)
	}
}

// Urgency returns the normalized pressure to act on this stat, in [0,1].
// For Hunger/Thirst that's value/max (rising need = rising urgency); for
// Energy/Health it's 1 - value/max (falling pool = rising urgency) per
// spec §3.
func (s *Stat) Urgency(k Kind) float64 {
	if s.Max <= 0 {
		return 0
	}
	frac := s.Value / s.Max
	if k.risesWithDrain() {
		return clamp(frac, 0, 1)
	}
	return clamp(1-frac, 0, 1)
}

// Replenish adds amt toward satiation: decreases Hunger/Thirst value,
// increases Energy/Health value, clamped to [0, Max].
func (s *Stat) Replenish(k Kind, amt float64) {
	if amt < 0 {
		amt = 0
	}
	if k.risesWithDrain() {
		s.Value = clamp(s.Value-amt, 0, s.Max)
	} else {
		s.Value = clamp(s.Value+amt, 0, s.Max)
	}
}

// Pool is the full set of need stats for one entity, plus the debounce
// bookkeeping for threshold-crossing events.
type Pool struct {
	Hunger Stat
	Thirst Stat
	Energy Stat
	Health Stat

	// lastNeedyBand and lastEmitTick track, per kind, whether the stat is
	// in the needy band (set when a crossing is emitted, cleared when the
	// stat is observed below its configured threshold), and the tick of the
	// last emitted crossing, so oscillation around the threshold doesn't
	// spam the replan queue (spec §4.7).
	lastNeedyBand map[Kind]bool
	lastEmitTick  map[Kind]uint64
}

// MinReemitTicks is the debounce gap for threshold-crossing re-emission,
// default per spec §4.7.
const MinReemitTicks = 30

// NewPool builds a Pool from a species stats template, starting every stat
// at its satiated value (Value=0 for Hunger/Thirst, Value=Max for
// Energy/Health).
func NewPool(tpl species.StatsTemplate) *Pool {
	p := &Pool{
		Hunger:        Stat{Max: tpl.Hunger.Max, Value: 0, DrainPerTick: tpl.Hunger.DrainPerTick},
		Thirst:        Stat{Max: tpl.Thirst.Max, Value: 0, DrainPerTick: tpl.Thirst.DrainPerTick},
		Energy:        Stat{Max: tpl.Energy.Max, Value: tpl.Energy.Max, DrainPerTick: tpl.Energy.DrainPerTick},
		Health:        Stat{Max: tpl.Health.Max, Value: tpl.Health.Max, DrainPerTick: tpl.Health.DrainPerTick},
		lastNeedyBand: make(map[Kind]bool, 4),
		lastEmitTick:  make(map[Kind]uint64, 4),
	}
	return p
}

func (p *Pool) stat(k Kind) *Stat {
	switch k {
	case Hunger:
		return &p.Hunger
	case Thirst:
		return &p.Thirst
	case Energy:
		return &p.Energy
	default:
		return &p.Health
	}
}

// Replenish applies amt of satiation to the named stat (used by actions
// such as Graze/Drink/Rest to feed back consumption into the pool).
func (p *Pool) Replenish(k Kind, amt float64) {
	p.stat(k).Replenish(k, amt)
}

// DrainAll applies one tick of drain to every pool.
func (p *Pool) DrainAll() {
	p.Hunger.Drain(Hunger)
	p.Thirst.Drain(Thirst)
	p.Energy.Drain(Energy)
	p.Health.Drain(Health)
}

// ThresholdCrossed is emitted when a stat's urgency crosses a configured
// threshold upward into "needy" territory, debounced per entity+kind.
type ThresholdCrossed struct {
	Kind    Kind
	Urgency float64
}

// CheckThresholds evaluates every stat against its configured threshold and
// returns the crossings that should be emitted this tick, applying the
// debounce gap. threshold(k) supplies the per-kind threshold fraction
// (DrinkAt/EatAt/RestAt for Thirst/Hunger/Energy respectively; Health has no
// configured threshold in spec and is skipped here — health drives despawn
// directly, not replanning).
func (p *Pool) CheckThresholds(tick uint64, thresholds map[Kind]float64) []ThresholdCrossed {
	var out []ThresholdCrossed
	for _, k := range []Kind{Hunger, Thirst, Energy} {
		threshold, ok := thresholds[k]
		if !ok {
			continue
		}
		s := p.stat(k)
		urgency := s.Urgency(k)
		needy := urgency >= threshold

		wasNeedy, tracked := p.lastNeedyBand[k]
		if !needy {
			p.lastNeedyBand[k] = false
			continue // no crossing
		}
		if tracked && wasNeedy {
			continue // already in the needy band
		}

		last, hasLast := p.lastEmitTick[k]
		if hasLast && tick-last < MinReemitTicks {
			continue // debounced: the band stays non-needy, so the crossing is emitted once the gap has passed
		}
		p.lastNeedyBand[k] = true
		p.lastEmitTick[k] = tick
		out = append(out, ThresholdCrossed{Kind: k, Urgency: urgency})
	}
	return out
}
