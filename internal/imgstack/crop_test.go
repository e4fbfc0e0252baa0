package imgstack_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/imgstack"
	"github.com/maartenpaul/foci-annotator/internal/roimanager"
)

func gradientFrame(w, h int) *imgstack.Frame {
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = float64(y*w + x)
		}
	}
	return imgstack.NewFrame(pix, w, h)
}

func TestCrop_CutsRegionPerFrame(t *testing.T) {
	s := imgstack.NewStack("seq", []*imgstack.Frame{gradientFrame(10, 10), gradientFrame(10, 10)})
	col := roimanager.New()
	col.Append(roi.NewRegion(roi.NewRect(2, 3, 4, 4), 1))
	col.Append(roi.NewRegion(roi.NewRect(4, 4, 4, 4), 2))

	cropped, err := imgstack.Crop(s, col)
	require.NoError(t, err)
	require.Equal(t, 2, cropped.FrameCount())
	require.Equal(t, "Cropped_seq", cropped.Name)

	g, err := cropped.Grid(1)
	require.NoError(t, err)
	require.Equal(t, 4, g.Width())
	require.Equal(t, 4, g.Height())
	// Top-left of the cut window is source pixel (2, 3).
	require.Equal(t, float64(3*10+2), g.At(0, 0))
}

func TestCrop_SkipsFramesWithoutRegion(t *testing.T) {
	s := imgstack.NewStack("seq", []*imgstack.Frame{gradientFrame(10, 10), gradientFrame(10, 10), gradientFrame(10, 10)})
	col := roimanager.New()
	col.Append(roi.NewRegion(roi.NewRect(0, 0, 4, 4), 1))
	col.Append(roi.NewRegion(roi.NewRect(0, 0, 4, 4), 3))

	cropped, err := imgstack.Crop(s, col)
	require.NoError(t, err)
	require.Equal(t, 2, cropped.FrameCount())
}

func TestCrop_SizeMismatch(t *testing.T) {
	s := imgstack.NewStack("seq", []*imgstack.Frame{gradientFrame(10, 10)})
	col := roimanager.New()
	col.Append(roi.NewRegion(roi.NewRect(0, 0, 4, 4), 1))
	col.Append(roi.NewRegion(roi.NewRect(0, 0, 5, 4), 1))

	_, err := imgstack.Crop(s, col)
	require.ErrorIs(t, err, imgstack.ErrSizeMismatch)
}

func TestCrop_EmptyCollection(t *testing.T) {
	s := imgstack.NewStack("seq", []*imgstack.Frame{gradientFrame(10, 10)})

	_, err := imgstack.Crop(s, roimanager.New())
	require.ErrorIs(t, err, imgstack.ErrNoRegions)
}

func TestCrop_ZeroFillsOutsideSource(t *testing.T) {
	s := imgstack.NewStack("seq", []*imgstack.Frame{gradientFrame(10, 10)})
	col := roimanager.New()
	col.Append(roi.NewRegion(roi.NewRect(8, 8, 4, 4), 1))

	cropped, err := imgstack.Crop(s, col)
	require.NoError(t, err)

	g, err := cropped.Grid(1)
	require.NoError(t, err)
	require.Equal(t, float64(8*10+8), g.At(0, 0))
	require.Equal(t, float64(0), g.At(3, 3))
}

func TestWriteTIFF_RoundTrip(t *testing.T) {
	s := imgstack.NewStack("seq", []*imgstack.Frame{gradientFrame(6, 6)})
	dir := t.TempDir()
	out := filepath.Join(dir, "cropped")

	require.NoError(t, s.WriteTIFF(out))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "frame_0001.tif", entries[0].Name())

	loaded, err := imgstack.Load(out)
	require.NoError(t, err)
	g, err := loaded.Grid(1)
	require.NoError(t, err)
	require.Equal(t, float64(2*6+1), g.At(1, 2))
}
