package garment

import (
	"testing"
	"time"

	"github.com/golang/geo/r2"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	c, err := NewCatalog([]Asset{
		{Name: "white tee", ProfileKey: "tshirt", Width: 300, Height: 380},
		{Name: "summer dress", ProfileKey: "dress", Width: 320, Height: 500},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	s, err := NewSession(c, 640, 480)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func confidentFrame() PoseFrame {
	return PoseFrame{
		Keypoints: map[KeypointName]Keypoint{
			Nose:          {Position: r2.Point{X: 320, Y: 100}, Confidence: 0.95},
			LeftShoulder:  {Position: r2.Point{X: 240, Y: 200}, Confidence: 0.9},
			RightShoulder: {Position: r2.Point{X: 400, Y: 200}, Confidence: 0.9},
			LeftHip:       {Position: r2.Point{X: 270, Y: 330}, Confidence: 0.85},
			RightHip:      {Position: r2.Point{X: 370, Y: 330}, Confidence: 0.85},
		},
		SourceWidth:  640,
		SourceHeight: 480,
	}
}

func TestSessionSeedsCenteredHalfSizeRect(t *testing.T) {
	s := testSession(t)
	tgt := s.Animator().Target()

	if tgt.Rect.Width != 150 || tgt.Rect.Height != 190 {
		t.Errorf("seed size %vx%v, want half the asset size 150x190", tgt.Rect.Width, tgt.Rect.Height)
	}
	c := tgt.Rect.Center()
	if c.X != 320 || c.Y != 240 {
		t.Errorf("seed center (%v, %v), want screen center (320, 240)", c.X, c.Y)
	}
	if tgt.Visibility != 0 {
		t.Errorf("seed visibility %v, want hidden", tgt.Visibility)
	}
}

func TestSessionProcessesAdmittedFrames(t *testing.T) {
	s := testSession(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.HandleFrame(confidentFrame(), base)
	if s.FramesProcessed() != 1 {
		t.Fatalf("processed %d, want 1", s.FramesProcessed())
	}

	// Frames inside the counting interval and under the latency bound drop.
	s.HandleFrame(confidentFrame(), base.Add(10*time.Millisecond))
	if s.FramesProcessed() != 1 {
		t.Fatalf("processed %d after gated frame, want 1", s.FramesProcessed())
	}

	a := s.Animator()
	a.Tick(base)
	for i := 1; i <= 20; i++ {
		a.Tick(base.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	tgt := a.Target()
	if tgt.Visibility <= 0 {
		t.Errorf("visibility %v, want fading in after a confident pose", tgt.Visibility)
	}
	if tgt.Rect == (Rect{Width: 150, Height: 190, X: 245, Y: 145}) {
		t.Error("rect should have moved off the seed after processing a pose")
	}
}

func TestSessionFadesOutOnLowConfidence(t *testing.T) {
	s := testSession(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.HandleFrame(confidentFrame(), base)
	before := s.smoother.State()

	weak := confidentFrame()
	weak.Keypoints[LeftShoulder] = Keypoint{Position: r2.Point{X: 240, Y: 200}, Confidence: 0.2}
	s.HandleFrame(weak, base.Add(60*time.Millisecond))

	// Smoothing state must not move on a not-visible frame.
	if s.smoother.State() != before {
		t.Errorf("smoothing state moved on a not-visible frame: %+v -> %+v", before, s.smoother.State())
	}

	a := s.Animator()
	a.Tick(base)
	for i := 1; i <= 125; i++ {
		a.Tick(base.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	if vis := a.Target().Visibility; vis > 0.05 {
		t.Errorf("visibility %v, want faded toward 0", vis)
	}
}

func TestSessionNextGarmentKeepsRenderTarget(t *testing.T) {
	s := testSession(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.HandleFrame(confidentFrame(), base)
	a := s.Animator()
	a.Tick(base)
	a.Tick(base.Add(50 * time.Millisecond))
	before := a.Target()

	index, total := s.NextGarment()
	if index != 1 || total != 2 {
		t.Fatalf("next garment: index %d total %d, want 1 of 2", index, total)
	}
	if a.Target() != before {
		t.Errorf("garment switch must not disturb the render target: %+v -> %+v", before, a.Target())
	}

	// Cycles back around.
	if index, _ := s.NextGarment(); index != 0 {
		t.Errorf("second advance index %d, want wraparound to 0", index)
	}
}

func TestSessionDistinctIDs(t *testing.T) {
	a := testSession(t)
	b := testSession(t)
	if a.ID() == b.ID() {
		t.Error("sessions must have distinct ids")
	}
}
