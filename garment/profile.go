package garment

import "fmt"

// GarmentKind selects how a profile derives the overlay height.
type GarmentKind int

const (
	// Silhouette garments (jackets, shirts) derive height from the garment's
	// aspect ratio and a tuning multiplier.
	Silhouette GarmentKind = iota
	// FullLength garments (dresses, coats) derive height primarily from the
	// wearer's torso span.
	FullLength
)

func (k GarmentKind) String() string {
	switch k {
	case Silhouette:
		return "silhouette"
	case FullLength:
		return "full-length"
	default:
		return "unknown"
	}
}

// Profile is the per-garment-type tuning that maps a wearer's shoulder and hip
// geometry onto an overlay rectangle. Profiles are immutable configuration
// data; the numeric constants are empirical fits from live tuning, not derived.
type Profile struct {
	Kind             GarmentKind
	WidthRatio       float64 // shoulder span to garment width
	AspectRatio      float64 // height per unit width when the torso is not usable
	HeightMultiplier float64 // extra height scaling for silhouette garments
	TorsoMultiplier  float64 // torso length to garment height
	TorsoAdjust      bool    // silhouette only: allow torso length to grow the height
	OffsetX          float64 // horizontal center offset in display units
	OffsetY          float64 // vertical center offset in display units
}

// builtinProfiles is the profile table looked up by garment configuration.
// Keys are what catalog entries reference; an unknown key fails at startup.
var builtinProfiles = map[string]Profile{
	"tshirt": {
		Kind:             Silhouette,
		WidthRatio:       1.9,
		AspectRatio:      11.9,
		HeightMultiplier: 0.12,
	},
	"jacket": {
		Kind:             Silhouette,
		WidthRatio:       2.2,
		AspectRatio:      11.9,
		HeightMultiplier: 0.11,
		TorsoAdjust:      true,
		TorsoMultiplier:  11.4,
		OffsetY:          10,
	},
	"hoodie": {
		Kind:             Silhouette,
		WidthRatio:       2.1,
		AspectRatio:      11.9,
		HeightMultiplier: 0.13,
		OffsetY:          -8,
	},
	"dress": {
		Kind:            FullLength,
		WidthRatio:      2.0,
		AspectRatio:     1.6,
		TorsoMultiplier: 11.4,
		OffsetY:         20,
	},
	"coat": {
		Kind:            FullLength,
		WidthRatio:      2.3,
		AspectRatio:     1.45,
		TorsoMultiplier: 11.4,
		OffsetY:         12,
	},
}

// LookupProfile resolves a profile key from the built-in table.
func LookupProfile(key string) (Profile, error) {
	p, ok := builtinProfiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, key)
	}
	return p, nil
}

// ProfileKeys lists the known profile keys, for config validation messages.
func ProfileKeys() []string {
	keys := make([]string, 0, len(builtinProfiles))
	for k := range builtinProfiles {
		keys = append(keys, k)
	}
	return keys
}
