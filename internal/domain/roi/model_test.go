package roi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
)

func TestRect_Center(t *testing.T) {
	r := roi.NewRect(10, 20, 6, 4)
	require.Equal(t, roi.Point{X: 13, Y: 22}, r.Center())
}

func TestRect_CenteredAt_PreservesSize(t *testing.T) {
	r := roi.NewRect(0, 0, 11, 7)
	moved := r.CenteredAt(roi.Point{X: 50, Y: 40})
	require.Equal(t, r.Width, moved.Width)
	require.Equal(t, r.Height, moved.Height)
	require.Equal(t, roi.Point{X: 50, Y: 40}, moved.Center())
}

func TestNewRegion_FreshID(t *testing.T) {
	a := roi.NewRegion(roi.NewRect(0, 0, 5, 5), 1)
	b := roi.NewRegion(roi.NewRect(0, 0, 5, 5), 1)
	require.NotEqual(t, a.ID, b.ID)
	require.True(t, a.Assigned())
}

func TestRegion_Unassigned(t *testing.T) {
	r := roi.NewRegion(roi.NewRect(0, 0, 5, 5), 0)
	require.False(t, r.Assigned())
}
