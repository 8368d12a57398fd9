package garment

import (
	"math"

	"github.com/golang/geo/r2"
)

// MinKeypointConfidence is the detector confidence below which a shoulder or
// hip keypoint is treated as not detected.
const MinKeypointConfidence = 0.6

const (
	minGarmentWidth  = 100.0
	maxGarmentWidth  = 400.0
	minGarmentHeight = 100.0
	maxGarmentHeight = 3000.0

	// Vertical center stays inside this fraction of the screen so the garment
	// never parks off-screen.
	minCenterYFraction = 0.2
	maxCenterYFraction = 0.9

	minVisibleScale = 0.8
	maxVisibleScale = 1.0

	// neutralHeadMultiplier is used when the head ratio is degenerate.
	neutralHeadMultiplier = 1.4
)

// Rect is an axis-aligned overlay rectangle with a top-left origin, in display
// units.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the rectangle's center point.
func (r Rect) Center() r2.Point {
	return r2.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Geometry is the resolver's raw output for one admitted frame: where the
// garment should sit and how visible it should be.
type Geometry struct {
	Rect       Rect
	Visibility float64
}

// headBucket maps a head-ratio threshold to the vertical offset multiplier
// applied above it. Larger head in frame means the camera is closer and the
// garment needs a larger downward offset, so multipliers grow with the ratio.
type headBucket struct {
	threshold  float64
	multiplier float64
}

var headBuckets = []headBucket{
	{0.75, 2.1},
	{0.68, 2.0},
	{0.62, 1.85},
	{0.58, 1.7},
	{0.55, 1.6},
	{0.52, 1.5},
	{0.45, 1.4},
	{0.35, 1.2},
	{0.25, 1.05},
	{0.0, 0.9},
}

// HeadOffsetMultiplier maps the head's vertical position as a fraction of
// screen height to the vertical offset multiplier. The mapping is a step
// function, monotonically non-decreasing in the ratio and bounded to
// [0.9, 2.1]. A non-positive or undefined ratio yields the neutral 1.4.
func HeadOffsetMultiplier(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio <= 0 {
		return neutralHeadMultiplier
	}
	if ratio > 1 {
		ratio = 1
	}
	for _, b := range headBuckets {
		if ratio > b.threshold {
			return b.multiplier
		}
	}
	return neutralHeadMultiplier
}

// Resolve computes the raw target rectangle and visibility for a normalized
// pose frame under the given profile. It reports ok=false when either
// shoulder is below the confidence threshold; the caller must then fade the
// overlay out rather than hold stale geometry.
func Resolve(frame PoseFrame, p Profile, screenWidth, screenHeight float64) (Geometry, bool) {
	left := frame.Keypoint(LeftShoulder)
	right := frame.Keypoint(RightShoulder)
	if left.Confidence < MinKeypointConfidence || right.Confidence < MinKeypointConfidence {
		return Geometry{}, false
	}

	shoulderCenter := r2.Point{
		X: (left.Position.X + right.Position.X) / 2,
		Y: (left.Position.Y + right.Position.Y) / 2,
	}
	span := math.Abs(left.Position.X - right.Position.X)
	width := clamp(span*p.WidthRatio, minGarmentWidth, maxGarmentWidth)

	height := resolveHeight(frame, p, width, shoulderCenter)
	height = clamp(height, minGarmentHeight, maxGarmentHeight)

	head := headPosition(frame)
	headRatio := clamp(head.Y/screenHeight, 0, 1)
	mult := HeadOffsetMultiplier(headRatio)

	offset := math.Abs(shoulderCenter.Y-head.Y) * mult
	centerY := shoulderCenter.Y - offset + p.OffsetY
	centerY = clamp(centerY, minCenterYFraction*screenHeight, maxCenterYFraction*screenHeight)

	// The garment tracks the screen midline, not shoulder X; torso X-tracking
	// is deliberately out of scope.
	centerX := screenWidth/2 + p.OffsetX

	vis := clamp(math.Min(left.Confidence, right.Confidence), minVisibleScale, maxVisibleScale)

	return Geometry{
		Rect: Rect{
			X:      centerX - width/2,
			Y:      centerY - height/2,
			Width:  width,
			Height: height,
		},
		Visibility: vis,
	}, true
}

// resolveHeight applies the profile's height policy. Full-length garments
// follow the torso when both hips are confidently detected; silhouette
// garments are aspect-driven, with the torso only ever raising the result.
func resolveHeight(frame PoseFrame, p Profile, width float64, shoulderCenter r2.Point) float64 {
	torso, torsoOK := torsoLength(frame, shoulderCenter)

	switch p.Kind {
	case FullLength:
		if torsoOK {
			return torso * p.TorsoMultiplier
		}
		return width * p.AspectRatio
	default:
		height := width * p.AspectRatio * p.HeightMultiplier
		if p.TorsoAdjust && torsoOK {
			height = math.Max(height, torso*p.TorsoMultiplier)
		}
		return height
	}
}

// torsoLength is the vertical distance between shoulder center and hip
// center, valid only when both hips clear the confidence threshold.
func torsoLength(frame PoseFrame, shoulderCenter r2.Point) (float64, bool) {
	lh := frame.Keypoint(LeftHip)
	rh := frame.Keypoint(RightHip)
	if lh.Confidence < MinKeypointConfidence || rh.Confidence < MinKeypointConfidence {
		return 0, false
	}
	hipCenterY := (lh.Position.Y + rh.Position.Y) / 2
	return math.Abs(hipCenterY - shoulderCenter.Y), true
}

// headPosition estimates the head location: nose when detected, else the eye
// midpoint, else the left shoulder. Presence means nonzero confidence.
func headPosition(frame PoseFrame) r2.Point {
	if nose := frame.Keypoint(Nose); nose.Confidence > 0 {
		return nose.Position
	}
	le := frame.Keypoint(LeftEye)
	re := frame.Keypoint(RightEye)
	if le.Confidence > 0 && re.Confidence > 0 {
		return r2.Point{
			X: (le.Position.X + re.Position.X) / 2,
			Y: (le.Position.Y + re.Position.Y) / 2,
		}
	}
	return frame.Keypoint(LeftShoulder).Position
}

// clamp clamps a value between min and max.
func clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}
