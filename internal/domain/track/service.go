package track

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
)

// Service runs forward walks: re-localizing a region frame by frame and
// committing one region per frame to a collection.
type Service struct {
	radius int
	logger *slog.Logger
}

// NewService creates a tracker with the given search radius. A radius below
// 1 falls back to DefaultSearchRadius.
func NewService(radius int, logger *slog.Logger) *Service {
	if radius < 1 {
		radius = DefaultSearchRadius
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{radius: radius, logger: logger}
}

// Track walks forward from startFrame to the last frame of src, committing
// one region per frame to col. The seed is bound to startFrame and
// committed first; every later frame gets a region of the seed's size
// centered on the brightest pixel near the previously committed center.
//
// Entries with frame >= startFrame are removed before anything is
// committed, so re-tracking from an earlier frame discards the downstream
// trajectory. Validation failures (nil seed, nil source, start frame out of
// range) abort before any mutation.
//
// Returns the number of regions committed. A failed grid fetch stops the
// walk at the last committed frame and reports the error; commits already
// made are kept.
func (s *Service) Track(ctx context.Context, col roi.Collection, seed *roi.Region, startFrame int, src FrameSource) (int, error) {
	if seed == nil {
		return 0, ErrNoSeed
	}
	if src == nil {
		return 0, ErrNoStack
	}
	frameCount := src.FrameCount()
	if startFrame < 1 || startFrame > frameCount {
		return 0, errors.Wrapf(ErrFrameOutOfRange, "start frame %d, sequence has %d frames", startFrame, frameCount)
	}

	if _, err := roi.ClearFrom(col, startFrame); err != nil {
		return 0, errors.Wrap(err, "clearing downstream regions")
	}

	seed.Frame = startFrame
	col.Append(seed)
	committed := 1

	// The walk runs to completion once started; there is no cancellation
	// point between per-frame steps.
	for frame := startFrame + 1; frame <= frameCount; frame++ {
		grid, err := src.Grid(frame)
		if err != nil {
			s.logger.Warn("frame fetch failed, stopping walk", "frame", frame, "error", err)
			return committed, errors.Wrapf(err, "fetching frame %d", frame)
		}

		previous, err := col.Get(col.Count() - 1)
		if err != nil {
			return committed, errors.Wrap(err, "reading previous region")
		}

		center := previous.Bounds.Center()
		maxX, maxY := FindMaximum(grid, center.X, center.Y, s.radius)

		next := roi.NewRegion(previous.Bounds.CenteredAt(roi.Point{X: float64(maxX), Y: float64(maxY)}), frame)
		col.Append(next)
		committed++
	}

	s.logger.Info("tracking complete", "start_frame", startFrame, "committed", committed)
	return committed, nil
}
