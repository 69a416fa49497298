package stretch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/grain"
)

// Request is the playback intent for one grain.
type Request struct {
	// Position is the grain centre in source frames. NaN marks a flush grain
	// that analyses nothing and lets pending output drain.
	Position float64
	// Speed is the playback rate; 1 leaves the tempo unchanged.
	Speed float64
	// Pitch is the frequency multiplier; 1 leaves the pitch unchanged.
	Pitch float64
	// Reset discards carried-over synthesis state on this grain. Next clears it.
	Reset bool
}

// Validate checks that speed is positive and finite, that pitch lies in
// [grain.MinPitch, grain.MaxPitch] and that the position is finite or NaN.
func (r Request) Validate() error {
	if !core.IsFinitePositive(r.Speed) {
		return fmt.Errorf("%w: speed must be positive and finite, got %v", ErrInvalidRequest, r.Speed)
	}

	if !(r.Pitch >= grain.MinPitch && r.Pitch <= grain.MaxPitch) {
		return fmt.Errorf("%w: pitch must be in [%g, %g], got %v",
			ErrInvalidRequest, grain.MinPitch, grain.MaxPitch, r.Pitch)
	}

	if math.IsInf(r.Position, 0) {
		return fmt.Errorf("%w: position must be finite or NaN, got %v", ErrInvalidRequest, r.Position)
	}

	return nil
}

// IsFlush reports whether r is a flush grain.
func (r Request) IsFlush() bool { return math.IsNaN(r.Position) }
