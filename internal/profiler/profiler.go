// Package profiler implements the Tick Profiler (spec §4.14, component
// C14): per-system timing accumulators with a bounded-period reset, and
// the prometheus collectors presented to an external scrape endpoint
// (grounded on the pack's metrics.Metrics idiom).
package profiler

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportIntervalTicks is the default report/reset cadence (spec §4.14).
const ReportIntervalTicks = 50

// SystemStats is one system's accumulated timing, spec §4.14's
// {total_duration, call_count, last_duration, max_duration, min_duration}.
type SystemStats struct {
	TotalDuration time.Duration
	CallCount     uint64
	LastDuration  time.Duration
	MaxDuration   time.Duration
	MinDuration   time.Duration
}

// Report is an immutable snapshot emitted every ReportIntervalTicks.
type Report struct {
	Tick  uint64
	Stats map[string]SystemStats
}

// Metrics bundles the prometheus collectors a scrape endpoint exposes,
// following the pack's NewMetrics/Register idiom.
type Metrics struct {
	SystemDurationSeconds *prometheus.GaugeVec
	SystemCallsTotal      *prometheus.CounterVec
	TicksPerSecond        prometheus.Gauge
}

// NewMetrics constructs the collector set without registering it.
func NewMetrics() *Metrics {
	return &Metrics{
		SystemDurationSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotick_system_duration_seconds",
			Help: "Last observed per-tick duration of a simulation system.",
		}, []string{"system"}),
		SystemCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecotick_system_calls_total",
			Help: "Total number of times a simulation system ran.",
		}, []string{"system"}),
		TicksPerSecond: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ecotick_ticks_per_second",
			Help: "Current smoothed simulation ticks-per-second.",
		}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.SystemDurationSeconds, m.SystemCallsTotal, m.TicksPerSecond)
}

// Profiler owns the per-system timing accumulators.
type Profiler struct {
	stats   map[string]*SystemStats
	metrics *Metrics
}

// New returns a Profiler optionally publishing to metrics (nil to run
// without prometheus wiring, e.g. in tests).
func New(metrics *Metrics) *Profiler {
	return &Profiler{stats: make(map[string]*SystemStats), metrics: metrics}
}

// Bracket times fn as one call of system, updating its accumulator and,
// if wired, the prometheus collectors.
func (p *Profiler) Bracket(system string, fn func()) {
	start := time.Now()
	fn()
	p.Record(system, time.Since(start))
}

// Record folds one observed duration into system's accumulator directly,
// for callers that measure their own span (e.g. work done in a goroutine).
func (p *Profiler) Record(system string, d time.Duration) {
	s, ok := p.stats[system]
	if !ok {
		s = &SystemStats{MinDuration: d}
		p.stats[system] = s
	}
	s.TotalDuration += d
	s.CallCount++
	s.LastDuration = d
	if d > s.MaxDuration {
		s.MaxDuration = d
	}
	if d < s.MinDuration || s.CallCount == 1 {
		s.MinDuration = d
	}
	if p.metrics != nil {
		p.metrics.SystemDurationSeconds.WithLabelValues(system).Set(d.Seconds())
		p.metrics.SystemCallsTotal.WithLabelValues(system).Inc()
	}
}

// MaybeReport emits and resets the accumulators every ReportIntervalTicks
// (spec §4.14): every existing key's total_duration/call_count/max_duration
// are zeroed and min_duration reset to +Inf, but last_duration and the key
// set are preserved. Clearing the map itself is forbidden. Returns the
// pre-reset snapshot and true when a report fired this tick.
func (p *Profiler) MaybeReport(tick uint64) (Report, bool) {
	if tick == 0 || tick%ReportIntervalTicks != 0 {
		return Report{}, false
	}
	snapshot := make(map[string]SystemStats, len(p.stats))
	for name, s := range p.stats {
		snapshot[name] = *s
		s.TotalDuration = 0
		s.CallCount = 0
		s.MaxDuration = 0
		s.MinDuration = time.Duration(math.MaxInt64)
	}
	return Report{Tick: tick, Stats: snapshot}, true
}

// Snapshot returns an immutable copy of the current accumulators without
// resetting them.
func (p *Profiler) Snapshot() map[string]SystemStats {
	out := make(map[string]SystemStats, len(p.stats))
	for name, s := range p.stats {
		out[name] = *s
	}
	return out
}
