// Package simtime implements the Tick Clock (spec §4.1, component C1): it
// converts a wall-clock delta into a monotonic tick counter with a speed
// multiplier and pause, and gates every mutating system in the simulation.
package simtime

// DefaultBaseTickMS is the wall-clock duration of one tick at 1x speed: 100ms,
// i.e. 10 ticks per second.
const DefaultBaseTickMS = 100

// MaxTicksPerStep caps how many ticks a single Advance call may produce,
// discarding any further accumulated time. This is the spiral-of-death
// guard from spec §4.1.
const MaxTicksPerStep = 5

// Clock converts fed wall-clock deltas into ticks.
type Clock struct {
	baseTickMS       float64
	current          uint64
	accumulatorMS    float64
	speedMultiplier  float64
	paused           bool
	shouldTickFlag   bool
	ticksThisAdvance int
}

// New returns a Clock with the given base tick duration in milliseconds. A
// baseTickMS of 0 or less falls back to DefaultBaseTickMS.
func New(baseTickMS float64) *Clock {
	if baseTickMS <= 0 {
		baseTickMS = DefaultBaseTickMS
	}
	return &Clock{
		baseTickMS:      baseTickMS,
		speedMultiplier: 1.0,
	}
}

// CurrentTick returns the monotonic tick counter. Tick 0 is the initial
// state, before any Advance has produced a tick.
func (c *Clock) CurrentTick() uint64 { return c.current }

// ShouldTick reports whether at least one tick advanced on the most recent
// Advance call. Mutating systems gate on this flag; presentation systems
// may run regardless.
func (c *Clock) ShouldTick() bool { return c.shouldTickFlag }

// TicksAdvanced returns how many ticks the most recent Advance call
// produced (0 if none, capped at MaxTicksPerStep).
func (c *Clock) TicksAdvanced() int { return c.ticksThisAdvance }

// SetSpeed sets the speed multiplier applied to incoming wall-clock deltas.
// Negative multipliers are clamped to 0 (effectively pausing progress
// without engaging Pause's forced-false semantics).
func (c *Clock) SetSpeed(multiplier float64) {
	if multiplier < 0 {
		multiplier = 0
	}
	c.speedMultiplier = multiplier
}

// Speed returns the current speed multiplier.
func (c *Clock) Speed() float64 { return c.speedMultiplier }

// Pause freezes the counter: subsequent Advance calls never produce a tick
// and ShouldTick is forced false, regardless of accumulated time.
func (c *Clock) Pause() { c.paused = true }

// Resume lifts a prior Pause. Wall time fed to Advance while paused is
// discarded, so only time fed after Resume (plus any remainder left from
// before the Pause) produces ticks.
func (c *Clock) Resume() { c.paused = false }

// Paused reports whether the clock is currently paused.
func (c *Clock) Paused() bool { return c.paused }

// Advance feeds a wall-clock delta (milliseconds) into the clock, advancing
// current as many times as the accumulator allows (up to MaxTicksPerStep),
// and reports how many ticks advanced. Negative deltas and time going
// backward are clamped to 0, per the §4.1 failure model — this layer never
// returns an error.
func (c *Clock) Advance(deltaWallMS float64) int {
	if deltaWallMS < 0 {
		deltaWallMS = 0
	}

	if c.paused {
		c.shouldTickFlag = false
		c.ticksThisAdvance = 0
		return 0
	}

	c.accumulatorMS += deltaWallMS * c.speedMultiplier

	advanced := 0
	for c.accumulatorMS >= c.baseTickMS && advanced < MaxTicksPerStep {
		c.current++
		c.accumulatorMS -= c.baseTickMS
		advanced++
	}
	if advanced == MaxTicksPerStep {
		// Safety cap hit: discard the remainder rather than let it carry
		// forward and cause a burst next step.
		c.accumulatorMS = 0
	}

	c.ticksThisAdvance = advanced
	c.shouldTickFlag = advanced > 0
	return advanced
}
