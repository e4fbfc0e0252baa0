package measure

import (
	"fmt"
	"sort"

	kalman_filter "github.com/LdDl/kalman-filter"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
)

// TrackPoint is one point of a center trajectory.
type TrackPoint struct {
	Frame    int       `json:"frame"`
	Raw      roi.Point `json:"raw"`
	Smoothed roi.Point `json:"smoothed"`
}

// SmoothTrack returns the frame-ordered center trajectory of the
// collection with a Kalman-filtered estimate next to each raw center. The
// filter state starts at the first center; each later frame runs one
// predict/update cycle.
func SmoothTrack(col roi.Collection) ([]TrackPoint, error) {
	var points []TrackPoint
	for i := 0; i < col.Count(); i++ {
		r, err := col.Get(i)
		if err != nil {
			return nil, fmt.Errorf("reading region %d: %w", i, err)
		}
		if !r.Assigned() {
			continue
		}
		points = append(points, TrackPoint{Frame: r.Frame, Raw: r.Bounds.Center()})
	}
	if len(points) == 0 {
		return nil, nil
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Frame < points[j].Frame })

	/* Kalman filter props */
	dt := 1.0
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy,
		kalman_filter.WithState2D(points[0].Raw.X, points[0].Raw.Y))

	points[0].Smoothed = points[0].Raw
	for i := 1; i < len(points); i++ {
		kf.Predict()
		if err := kf.Update(points[i].Raw.X, points[i].Raw.Y); err != nil {
			return nil, fmt.Errorf("updating filter at frame %d: %w", points[i].Frame, err)
		}
		stateX, stateY := kf.GetState()
		points[i].Smoothed = roi.Point{X: stateX, Y: stateY}
	}
	return points, nil
}
