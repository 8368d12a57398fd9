package garment

import (
	"time"

	"github.com/google/uuid"
)

// Session owns all per-camera-session state: the frame gate, the smoothing
// filter, the catalog cursor, and the animator. It is constructed per camera
// session and torn down with it; nothing here is package-global.
//
// HandleFrame is synchronous and non-reentrant (one sensor callback completes
// before the next begins) and is the sole writer of the smoothing state. The
// animator's tick loop is the sole writer of the render target, so neither
// side needs a lock beyond the catalog cursor.
type Session struct {
	id       uuid.UUID
	catalog  *Catalog
	gate     FrameGate
	smoother *Smoother
	animator *Animator

	screenWidth  float64
	screenHeight float64

	lastProcessed time.Time
	processed     uint64
}

// NewSession seeds the smoother with a screen-centered rectangle at half the
// active asset's intrinsic size, so the first visible frame animates from a
// plausible resting state instead of from zero.
func NewSession(catalog *Catalog, screenWidth, screenHeight float64) (*Session, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	asset, _ := catalog.Active()
	aw, ah := asset.size()
	seed := Rect{
		Width:  aw / 2,
		Height: ah / 2,
		X:      (screenWidth - aw/2) / 2,
		Y:      (screenHeight - ah/2) / 2,
	}

	s := &Session{
		id:           uuid.New(),
		catalog:      catalog,
		smoother:     NewSmoother(),
		animator:     NewAnimator(seed),
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
	}
	s.smoother.Seed(seed)
	return s, nil
}

// ID identifies the session in logs and stats.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Animator exposes the animation driver so the render loop can tick it and
// the draw path can snapshot it.
func (s *Session) Animator() *Animator {
	return s.animator
}

// Catalog returns the session's garment catalog.
func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// HandleFrame is the sensor callback for one pose frame. Frames rejected by
// the gate are dropped without side effects. Admitted frames run the full
// pipeline to completion: normalize, resolve, smooth, publish. A frame that
// fails the visibility gate fades the overlay out in place instead of moving
// it.
func (s *Session) HandleFrame(frame PoseFrame, now time.Time) {
	if !s.gate.Admit(now) {
		return
	}

	elapsedMillis := 0.0
	if !s.lastProcessed.IsZero() {
		elapsedMillis = float64(now.Sub(s.lastProcessed)) / float64(time.Millisecond)
	}
	s.lastProcessed = now
	s.processed++

	normalized := frame.Normalized(s.screenWidth, s.screenHeight)
	_, profile := s.catalog.Active()

	geom, ok := Resolve(normalized, profile, s.screenWidth, s.screenHeight)
	if !ok {
		// Keep the last smoothed rect so the garment fades out where it was.
		s.animator.SetGoal(s.smoother.State(), 0)
		return
	}

	smoothed := s.smoother.Step(geom.Rect, elapsedMillis)
	s.animator.SetGoal(smoothed, geom.Visibility)
}

// NextGarment cycles the catalog cursor and returns the new index and the
// catalog size. The render target is left untouched so the switch stays
// visually continuous; only the image and profile change.
func (s *Session) NextGarment() (index, total int) {
	return s.catalog.Advance(), s.catalog.Len()
}

// FramesSeen and FramesProcessed expose gate statistics.
func (s *Session) FramesSeen() uint64 {
	return s.gate.FramesSeen()
}

func (s *Session) FramesProcessed() uint64 {
	return s.processed
}
