package garment

import (
	"time"

	"github.com/golang/geo/r2"
)

// KeypointName identifies an anatomical landmark reported by the pose detector.
type KeypointName string

const (
	Nose          KeypointName = "nose"
	LeftEye       KeypointName = "left_eye"
	RightEye      KeypointName = "right_eye"
	LeftShoulder  KeypointName = "left_shoulder"
	RightShoulder KeypointName = "right_shoulder"
	LeftHip       KeypointName = "left_hip"
	RightHip      KeypointName = "right_hip"
)

// Keypoint is a detected landmark position with its detector confidence in [0, 1].
type Keypoint struct {
	Position   r2.Point
	Confidence float64
}

// PoseFrame is one person's keypoints for a single sensor tick, together with
// the resolution the detector ran at. Frames are immutable once built and are
// discarded after processing.
type PoseFrame struct {
	Keypoints    map[KeypointName]Keypoint
	SourceWidth  float64
	SourceHeight float64
	Observed     time.Time
}

// Keypoint returns the named keypoint; a missing entry comes back with zero
// confidence so callers can treat absence and non-detection uniformly.
func (f PoseFrame) Keypoint(name KeypointName) Keypoint {
	return f.Keypoints[name]
}

// Normalized rescales every keypoint from the frame's source resolution to the
// given display resolution, independently per axis. A frame that did not report
// its source resolution is assumed to already be in display coordinates.
func (f PoseFrame) Normalized(displayWidth, displayHeight float64) PoseFrame {
	scaleX := 1.0
	scaleY := 1.0
	if f.SourceWidth > 0 {
		scaleX = displayWidth / f.SourceWidth
	}
	if f.SourceHeight > 0 {
		scaleY = displayHeight / f.SourceHeight
	}

	out := PoseFrame{
		Keypoints:    make(map[KeypointName]Keypoint, len(f.Keypoints)),
		SourceWidth:  displayWidth,
		SourceHeight: displayHeight,
		Observed:     f.Observed,
	}
	for name, kp := range f.Keypoints {
		out.Keypoints[name] = Keypoint{
			Position:   r2.Point{X: kp.Position.X * scaleX, Y: kp.Position.Y * scaleY},
			Confidence: kp.Confidence,
		}
	}
	return out
}
