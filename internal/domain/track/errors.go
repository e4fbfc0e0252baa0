package track

import "errors"

var (
	// ErrNoSeed indicates tracking was requested without a drawn seed region.
	ErrNoSeed = errors.New("no seed region drawn")
	// ErrNoStack indicates tracking was requested without an open image sequence.
	ErrNoStack = errors.New("no image sequence open")
	// ErrFrameOutOfRange indicates a start frame outside [1, frame count].
	ErrFrameOutOfRange = errors.New("start frame out of range")
)
