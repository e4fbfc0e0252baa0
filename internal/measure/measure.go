// Package measure derives numeric artifacts from a finished region
// collection: per-region intensity statistics and a smoothed center
// trajectory.
package measure

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/domain/track"
)

// Measurement summarizes the pixel intensities inside one region.
type Measurement struct {
	Frame  int     `json:"frame"`
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Pixels int     `json:"pixels"`
}

// Regions measures every frame-bound region in the collection against its
// frame's pixel grid, ordered by frame. Unassigned regions are skipped.
func Regions(src track.FrameSource, col roi.Collection) ([]Measurement, error) {
	var out []Measurement
	for i := 0; i < col.Count(); i++ {
		r, err := col.Get(i)
		if err != nil {
			return nil, fmt.Errorf("reading region %d: %w", i, err)
		}
		if !r.Assigned() || r.Frame > src.FrameCount() {
			continue
		}
		grid, err := src.Grid(r.Frame)
		if err != nil {
			return nil, fmt.Errorf("fetching frame %d: %w", r.Frame, err)
		}
		m := measureRegion(grid, r)
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out, nil
}

func measureRegion(grid track.PixelGrid, r *roi.Region) Measurement {
	w, h := grid.Width(), grid.Height()
	x0, y0 := int(r.Bounds.X), int(r.Bounds.Y)
	x1, y1 := x0+int(r.Bounds.Width), y0+int(r.Bounds.Height)

	var values []float64
	for y := y0; y < y1; y++ {
		if y < 0 || y >= h {
			continue
		}
		for x := x0; x < x1; x++ {
			if x < 0 || x >= w {
				continue
			}
			values = append(values, grid.At(x, y))
		}
	}

	m := Measurement{Frame: r.Frame, Name: r.Name, Pixels: len(values)}
	if len(values) == 0 {
		return m
	}
	m.Mean, m.StdDev = stat.MeanStdDev(values, nil)
	m.Min, m.Max = values[0], values[0]
	for _, v := range values[1:] {
		if v < m.Min {
			m.Min = v
		}
		if v > m.Max {
			m.Max = v
		}
	}
	return m
}

// WriteCSV writes measurements as semicolon-separated rows with a header.
func WriteCSV(w io.Writer, measurements []Measurement) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write([]string{"frame", "name", "mean", "stddev", "min", "max", "pixels"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, m := range measurements {
		row := []string{
			fmt.Sprintf("%d", m.Frame),
			m.Name,
			fmt.Sprintf("%f", m.Mean),
			fmt.Sprintf("%f", m.StdDev),
			fmt.Sprintf("%f", m.Min),
			fmt.Sprintf("%f", m.Max),
			fmt.Sprintf("%d", m.Pixels),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
