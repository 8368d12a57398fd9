package garment

import "time"

const (
	// gateFrameInterval admits every Nth sensor frame for geometry work.
	gateFrameInterval = 20
	// gateMaxLatency forces an admit when the last processed frame is this
	// stale, so a slow sensor still updates the overlay promptly.
	gateMaxLatency = 50 * time.Millisecond
)

// FrameGate bounds how often pose frames reach the geometry pipeline without
// bounding the visual animation rate. Frames it rejects are dropped outright;
// there is no queue and no backpressure.
type FrameGate struct {
	seen     uint64
	admitted time.Time
}

// Admit reports whether the frame arriving at now should be processed. A
// frame is admitted when it is the start of a counting interval, or when more
// than the latency bound has passed since the last admitted frame.
func (g *FrameGate) Admit(now time.Time) bool {
	idx := g.seen
	g.seen++

	if idx%gateFrameInterval == 0 {
		g.admitted = now
		return true
	}
	if !g.admitted.IsZero() && now.Sub(g.admitted) >= gateMaxLatency {
		g.admitted = now
		return true
	}
	return false
}

// FramesSeen returns how many frames the gate has inspected.
func (g *FrameGate) FramesSeen() uint64 {
	return g.seen
}
