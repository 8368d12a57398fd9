package garment

import "errors"

var (
	// ErrUnknownProfile is returned when a garment references a profile key
	// that is not in the profile table. This is a configuration error and
	// should abort startup rather than be handled per frame.
	ErrUnknownProfile = errors.New("unknown garment profile")

	// ErrEmptyCatalog is returned when a session is built without any garments.
	ErrEmptyCatalog = errors.New("garment catalog is empty")
)
