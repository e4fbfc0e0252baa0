package track

// PixelGrid is read-only access to one frame's intensity values. Callers
// clip coordinates before reading; At must never be called out of range.
type PixelGrid interface {
	At(x, y int) float64
	Width() int
	Height() int
}

// FrameSource hands out pixel grids per frame of an image sequence.
// Frames are 1-based.
type FrameSource interface {
	Grid(frame int) (PixelGrid, error)
	FrameCount() int
}
