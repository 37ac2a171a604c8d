// Package simlog wires the simulation's logging sink. simcore.Simulation
// holds the zerolog.Logger it is constructed with and logs births and
// profiler reports through TickLogger; no other package logs, and
// despawns and health alerts are not logged.
package simlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the simulation's default logger: structured JSON with a
// timestamp field, written to w (os.Stderr when w is nil). Callers that
// want a silent logger for tests should use Discard.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Discard returns a logger that drops everything, for tests and for
// embedding contexts that don't want core log noise.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// TickLogger returns a child logger tagged with the current tick, so every
// event emitted within a tick boundary can be correlated.
func TickLogger(base zerolog.Logger, tick uint64) zerolog.Logger {
	return base.With().Uint64("tick", tick).Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
