package roi

import "errors"

var (
	// ErrIndexOutOfRange indicates a collection index outside [0, Count).
	ErrIndexOutOfRange = errors.New("region index out of range")
	// ErrNoRegion indicates a required region was not provided.
	ErrNoRegion = errors.New("no region drawn")
	// ErrBadFrame indicates a frame index below 1.
	ErrBadFrame = errors.New("frame must be positive")
)
