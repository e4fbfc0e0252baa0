package roi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/roimanager"
)

func TestService_AddAtFrame_RenamesWithSuffix(t *testing.T) {
	col := roimanager.New()
	svc := roi.NewService(nil)

	prompter := roi.PromptFunc(func(string) (string, bool) { return "bleach", true })
	region, err := svc.AddAtFrame(col, roi.NewRegion(roi.NewRect(10, 10, 8, 8), 0), 3, prompter)
	require.NoError(t, err)
	require.Equal(t, 3, region.Frame)
	require.Equal(t, 1, col.Count())

	got, err := col.Get(0)
	require.NoError(t, err)
	require.Equal(t, "0003-bleach", got.Name)
}

func TestService_AddAtFrame_CancelledPromptStillAppends(t *testing.T) {
	col := roimanager.New()
	svc := roi.NewService(nil)

	prompter := roi.PromptFunc(func(string) (string, bool) { return "ignored", false })
	_, err := svc.AddAtFrame(col, roi.NewRegion(roi.NewRect(0, 0, 8, 8), 0), 2, prompter)
	require.NoError(t, err)
	require.Equal(t, 1, col.Count())

	got, err := col.Get(0)
	require.NoError(t, err)
	require.Equal(t, "0002-", got.Name)
}

func TestService_AddAtFrame_Validation(t *testing.T) {
	col := roimanager.New()
	svc := roi.NewService(nil)

	_, err := svc.AddAtFrame(col, nil, 1, nil)
	require.ErrorIs(t, err, roi.ErrNoRegion)

	_, err = svc.AddAtFrame(col, roi.NewRegion(roi.NewRect(0, 0, 8, 8), 0), 0, nil)
	require.ErrorIs(t, err, roi.ErrBadFrame)
	require.Equal(t, 0, col.Count())
}

func TestService_NewFocus_SequentialNumbers(t *testing.T) {
	col := roimanager.New()
	svc := roi.NewService(nil)

	first, err := svc.NewFocus(col, roi.NewRegion(roi.NewRect(0, 0, 8, 8), 0), 1)
	require.NoError(t, err)
	require.Equal(t, "n01f001-start", first.Name)

	second, err := svc.NewFocus(col, roi.NewRegion(roi.NewRect(5, 5, 8, 8), 0), 4)
	require.NoError(t, err)
	require.Equal(t, "n01f002-start", second.Name)
	require.Equal(t, 4, second.Frame)
}

func TestService_Clear(t *testing.T) {
	col := roimanager.New()
	svc := roi.NewService(nil)
	for i := 1; i <= 3; i++ {
		col.Append(roi.NewRegion(roi.NewRect(0, 0, 5, 5), i))
	}

	require.NoError(t, svc.Clear(col))
	require.Equal(t, 0, col.Count())
}

func TestClearFrom_RemovesDownstreamOnly(t *testing.T) {
	col := roimanager.New()
	for i := 1; i <= 5; i++ {
		col.Append(roi.NewRegion(roi.NewRect(0, 0, 5, 5), i))
	}

	removed, err := roi.ClearFrom(col, 3)
	require.NoError(t, err)
	require.Equal(t, 3, removed)
	require.Equal(t, 2, col.Count())

	for i := 0; i < col.Count(); i++ {
		r, err := col.Get(i)
		require.NoError(t, err)
		require.Less(t, r.Frame, 3)
	}
}
