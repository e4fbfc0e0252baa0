package roi

import "github.com/google/uuid"

// Point is a location in image coordinates, pixel units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in image coordinates, pixel units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a rectangle from its top-left corner and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2.0, Y: r.Y + r.Height/2.0}
}

// CenteredAt returns a rectangle of the same size centered on the given point.
func (r Rect) CenteredAt(p Point) Rect {
	return Rect{
		X:      p.X - r.Width/2.0,
		Y:      p.Y - r.Height/2.0,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Region is a named rectangular region bound to one frame of an image
// sequence. Frame is 1-based; 0 means the region is not assigned to a frame
// (used as a soft-delete sentinel by hosts).
type Region struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Frame  int       `json:"frame"`
	Bounds Rect      `json:"bounds"`
}

// NewRegion creates an unnamed region with a fresh identifier.
func NewRegion(bounds Rect, frame int) *Region {
	return &Region{
		ID:     uuid.New(),
		Frame:  frame,
		Bounds: bounds,
	}
}

// Assigned reports whether the region is bound to a frame.
func (r *Region) Assigned() bool {
	return r.Frame > 0
}
