package imgstack

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
)

// ErrSizeMismatch indicates the collection holds regions of differing sizes.
var ErrSizeMismatch = errors.New("all regions must have the same size")

// ErrNoRegions indicates an empty collection was handed to Crop.
var ErrNoRegions = errors.New("no regions in collection")

// Crop builds a sub-stack from the collection: for each source frame that
// has a region, the region's rectangle is cut out of that frame. Frames
// without a region are skipped. All regions must share the same
// width/height; the check runs before any frame is cut.
func Crop(s *Stack, col roi.Collection) (*Stack, error) {
	if col.Count() == 0 {
		return nil, ErrNoRegions
	}

	first, err := col.Get(0)
	if err != nil {
		return nil, errors.Wrap(err, "reading first region")
	}
	cw := int(first.Bounds.Width)
	ch := int(first.Bounds.Height)
	for i := 1; i < col.Count(); i++ {
		r, err := col.Get(i)
		if err != nil {
			return nil, errors.Wrapf(err, "reading region %d", i)
		}
		if int(r.Bounds.Width) != cw || int(r.Bounds.Height) != ch {
			return nil, ErrSizeMismatch
		}
	}

	var frames []*Frame
	for frame := 1; frame <= s.FrameCount(); frame++ {
		r, ok := col.FindByFrame(frame)
		if !ok {
			continue
		}
		frames = append(frames, cropFrame(s.frameAt(frame), r.Bounds, cw, ch))
	}
	return &Stack{Name: "Cropped_" + s.Name, frames: frames}, nil
}

// cropFrame cuts a cw x ch window starting at the rectangle's top-left
// corner. Reads outside the source grid yield zero intensity.
func cropFrame(src *Frame, bounds roi.Rect, cw, ch int) *Frame {
	x0 := int(bounds.X)
	y0 := int(bounds.Y)
	pix := make([]float64, cw*ch)
	for y := 0; y < ch; y++ {
		sy := y0 + y
		if sy < 0 || sy >= src.h {
			continue
		}
		for x := 0; x < cw; x++ {
			sx := x0 + x
			if sx < 0 || sx >= src.w {
				continue
			}
			pix[y*cw+x] = src.At(sx, sy)
		}
	}
	return &Frame{pix: pix, w: cw, h: ch}
}

// WriteTIFF writes each frame of the stack as a 16-bit grayscale TIFF file
// under dir, numbered in frame order.
func (s *Stack) WriteTIFF(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	for i, frame := range s.frames {
		img := image.NewGray16(image.Rect(0, 0, frame.w, frame.h))
		for y := 0; y < frame.h; y++ {
			for x := 0; x < frame.w; x++ {
				v := frame.At(x, y)
				if v < 0 {
					v = 0
				}
				if v > math.MaxUint16 {
					v = math.MaxUint16
				}
				img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.tif", i+1))
		if err := writeTIFFFile(path, img); err != nil {
			return errors.Wrapf(err, "writing frame %d", i+1)
		}
	}
	return nil
}

func writeTIFFFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
}
