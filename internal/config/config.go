// Package config holds the numeric constants and tunables that must be
// passed explicitly through the core rather than hard-coded as
// package-level globals (per the Design Notes' guidance against
// module-level singletons and caches).
package config

// Config bundles all of the numeric constants and policy toggles
// referenced by spec.md §6 and §9.
type Config struct {
	// TicksPerBeat governs beat rounding and timestamp export. Must be
	// kept stable on-wire once a project has been saved with it.
	TicksPerBeat int

	// VelocitySaveResolution is the integer scale used to persist
	// velocities: serialization stores round(velocity * res) and loads
	// by dividing.
	VelocitySaveResolution int

	// MinNoteLength is the floor on note length, in beats.
	MinNoteLength float64

	// UndoStackSizeBudget bounds the undo stack by the sum of each
	// action's SizeInUnits().
	UndoStackSizeBudget int

	// FlatTupletVelocity switches the per-sub-event tuplet velocity
	// fade (§9 OQ2) from the observed `1 - i/100` factor to a flat
	// factor (no fade).
	FlatTupletVelocity bool
}

// DefaultConfig returns the constants used throughout this repo's
// tests and CLI: 16 ticks per beat, 128 velocity levels, a 1/64 beat
// minimum note length, and a generous undo budget.
func DefaultConfig() Config {
	return Config{
		TicksPerBeat:           16,
		VelocitySaveResolution: 128,
		MinNoteLength:          1.0 / 64.0,
		UndoStackSizeBudget:    1 << 20,
		FlatTupletVelocity:     false,
	}
}

// RoundBeat rounds a beat position to the nearest 1/TicksPerBeat grid.
func (c Config) RoundBeat(beat float64) float64 {
	if c.TicksPerBeat <= 0 {
		return beat
	}
	scale := float64(c.TicksPerBeat)
	return roundHalfAwayFromZero(beat*scale) / scale
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}
