// Package imgstack loads time-lapse image sequences and exposes per-frame
// intensity grids to the tracker. A sequence is a directory of single-frame
// image files (TIFF or PNG), ordered by file name, which is how microscopy
// stacks are commonly exported frame by frame.
package imgstack

import (
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/maartenpaul/foci-annotator/internal/domain/track"
)

// Frame holds one frame's intensity values as float64, row-major.
// It implements track.PixelGrid.
type Frame struct {
	pix  []float64
	w, h int
}

// NewFrame creates a frame from a row-major intensity buffer.
func NewFrame(pix []float64, w, h int) *Frame {
	return &Frame{pix: pix, w: w, h: h}
}

// FromImage converts a decoded image into an intensity frame. 16-bit
// grayscale keeps its full range; everything else goes through the usual
// luminance weights.
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]float64, w*h)

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = float64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				// Luminance: (19595*R + 38470*G + 7471*B) >> 16
				pix[y*w+x] = float64((19595*(r>>8) + 38470*(g>>8) + 7471*(b>>8)) >> 16)
			}
		}
	}
	return &Frame{pix: pix, w: w, h: h}
}

// At returns the intensity at (x, y). Coordinates must be in range.
func (f *Frame) At(x, y int) float64 { return f.pix[y*f.w+x] }

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.w }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.h }

// Stack is an ordered sequence of frames. It implements track.FrameSource
// with 1-based frame indices.
type Stack struct {
	Name   string
	frames []*Frame
}

// NewStack builds a stack from already-converted frames.
func NewStack(name string, frames []*Frame) *Stack {
	return &Stack{Name: name, frames: frames}
}

// FrameCount returns the number of frames.
func (s *Stack) FrameCount() int { return len(s.frames) }

// Grid returns the pixel grid for the given 1-based frame.
func (s *Stack) Grid(frame int) (track.PixelGrid, error) {
	if frame < 1 || frame > len(s.frames) {
		return nil, errors.Errorf("frame %d out of range [1, %d]", frame, len(s.frames))
	}
	return s.frames[frame-1], nil
}

// frameAt returns the concrete frame for internal consumers.
func (s *Stack) frameAt(frame int) *Frame { return s.frames[frame-1] }

// Load reads every .tif/.tiff/.png file in dir, sorted by name, as one
// frame each.
func Load(dir string) (*Stack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading sequence directory")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".tif", ".tiff", ".png":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no frame files in %s", dir)
	}
	sort.Strings(names)

	frames := make([]*Frame, 0, len(names))
	for _, name := range names {
		img, err := decodeFrame(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "decoding frame %s", name)
		}
		frames = append(frames, FromImage(img))
	}
	return &Stack{Name: filepath.Base(dir), frames: frames}, nil
}

func decodeFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".tif" || ext == ".tiff" {
		return tiff.Decode(f)
	}
	img, _, err := image.Decode(f)
	return img, err
}
