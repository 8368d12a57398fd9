package garment

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// ParseReadings converts a pose sensor's Readings map into a PoseFrame. The
// expected shape is:
//
//	{
//	  "width": 640, "height": 480,
//	  "people": [
//	    {"keypoints": {"nose": {"x": 1, "y": 2, "confidence": 0.9}, ...}},
//	    ...
//	  ]
//	}
//
// Only the first person is used. An empty or absent people list is not an
// error: it yields a frame with no keypoints, which downstream resolves to
// not-visible. Malformed structure is an error.
func ParseReadings(readings map[string]interface{}) (PoseFrame, error) {
	frame := PoseFrame{
		SourceWidth:  numberField(readings, "width"),
		SourceHeight: numberField(readings, "height"),
	}

	peopleRaw, ok := readings["people"]
	if !ok || peopleRaw == nil {
		return frame, nil
	}
	people, ok := peopleRaw.([]interface{})
	if !ok {
		return PoseFrame{}, fmt.Errorf("people is not a list")
	}
	if len(people) == 0 {
		return frame, nil
	}

	person, ok := people[0].(map[string]interface{})
	if !ok {
		return PoseFrame{}, fmt.Errorf("person 0 is not a map")
	}
	keypointsRaw, ok := person["keypoints"]
	if !ok {
		return PoseFrame{}, fmt.Errorf("person 0 has no keypoints")
	}
	keypoints, ok := keypointsRaw.(map[string]interface{})
	if !ok {
		return PoseFrame{}, fmt.Errorf("person 0 keypoints is not a map")
	}

	frame.Keypoints = make(map[KeypointName]Keypoint, len(keypoints))
	for name, kpRaw := range keypoints {
		kp, ok := kpRaw.(map[string]interface{})
		if !ok {
			return PoseFrame{}, fmt.Errorf("keypoint %q is not a map", name)
		}
		x, ok := asNumber(kp["x"])
		if !ok {
			return PoseFrame{}, fmt.Errorf("keypoint %q x is not a number", name)
		}
		y, ok := asNumber(kp["y"])
		if !ok {
			return PoseFrame{}, fmt.Errorf("keypoint %q y is not a number", name)
		}
		conf, ok := asNumber(kp["confidence"])
		if !ok {
			return PoseFrame{}, fmt.Errorf("keypoint %q confidence is not a number", name)
		}
		frame.Keypoints[KeypointName(name)] = Keypoint{
			Position:   r2.Point{X: x, Y: y},
			Confidence: conf,
		}
	}
	return frame, nil
}

// numberField reads an optional numeric field, returning 0 when absent so the
// normalizer's missing-resolution fallback applies.
func numberField(m map[string]interface{}, key string) float64 {
	if v, ok := asNumber(m[key]); ok {
		return v
	}
	return 0
}

// asNumber accepts the numeric types that show up after JSON or protobuf
// round-trips of sensor readings.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
