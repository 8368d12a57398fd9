package garment

import "math"

const (
	// Smoothing factors per channel; higher means more smoothing (slower
	// response). Position jitters more visibly than size, so it gets the
	// heavier filter.
	positionSmoothing = 0.9
	sizeSmoothing     = 0.7

	// referenceFrameMillis normalizes the factor to one frame at ~60Hz, so the
	// filter stays correct under variable frame intervals.
	referenceFrameMillis = 16.0
)

// Smoother is the per-channel exponential low-pass filter between the raw
// resolver output and the animation driver. Exactly one instance exists per
// session; its state is updated only when a frame is actually admitted.
type Smoother struct {
	seeded bool
	state  Rect
}

// NewSmoother returns an unseeded smoother. Seed must be called with the
// initial rectangle before the first pose arrives.
func NewSmoother() *Smoother {
	return &Smoother{}
}

// Seed sets the filter state directly, bypassing smoothing.
func (s *Smoother) Seed(r Rect) {
	s.state = r
	s.seeded = true
}

// State returns the last emitted rectangle.
func (s *Smoother) State() Rect {
	return s.state
}

// Step blends the target rectangle into the filter state and returns the new
// output. elapsedMillis is the time since the last admitted frame; a
// non-positive value falls back to one reference frame. An unseeded smoother
// adopts the target outright.
func (s *Smoother) Step(target Rect, elapsedMillis float64) Rect {
	if !s.seeded {
		s.Seed(target)
		return s.state
	}
	if elapsedMillis <= 0 {
		elapsedMillis = referenceFrameMillis
	}
	s.state = Rect{
		X:      lowpass(s.state.X, target.X, positionSmoothing, elapsedMillis),
		Y:      lowpass(s.state.Y, target.Y, positionSmoothing, elapsedMillis),
		Width:  lowpass(s.state.Width, target.Width, sizeSmoothing, elapsedMillis),
		Height: lowpass(s.state.Height, target.Height, sizeSmoothing, elapsedMillis),
	}
	return s.state
}

// lowpass is a continuous-time-correct exponential filter step:
// out = prev + alpha*(target-prev) with alpha = 1 - exp(-factor*dt/16).
func lowpass(prev, target, factor, elapsedMillis float64) float64 {
	alpha := 1 - math.Exp(-factor*elapsedMillis/referenceFrameMillis)
	return prev + alpha*(target-prev)
}
