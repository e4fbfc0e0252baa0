package track

// DefaultSearchRadius is the half-width of the square search window, in
// pixels.
const DefaultSearchRadius = 5

// FindMaximum returns the coordinate of the brightest pixel in the square
// window [cx-radius, cx+radius) x [cy-radius, cy+radius), clipped to the
// grid. The scan runs row-major (ascending y, then ascending x) and only a
// strictly brighter pixel replaces the current best, so ties resolve to the
// first pixel encountered in scan order and results are reproducible.
//
// When the whole window falls outside the grid the center itself is
// returned, clamped to the grid bounds: the search degrades to no movement
// rather than failing.
func FindMaximum(grid PixelGrid, cx, cy float64, radius int) (int, int) {
	w, h := grid.Width(), grid.Height()
	maxX := clamp(int(cx), 0, w-1)
	maxY := clamp(int(cy), 0, h-1)
	found := false
	var maxIntensity float64

	for y := int(cy) - radius; y < int(cy)+radius; y++ {
		if y < 0 || y >= h {
			continue
		}
		for x := int(cx) - radius; x < int(cx)+radius; x++ {
			if x < 0 || x >= w {
				continue
			}
			v := grid.At(x, y)
			if !found || v > maxIntensity {
				found = true
				maxIntensity = v
				maxX = x
				maxY = y
			}
		}
	}
	return maxX, maxY
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
