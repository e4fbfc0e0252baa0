package functional_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/domain/track"
	"github.com/maartenpaul/foci-annotator/internal/imgstack"
	"github.com/maartenpaul/foci-annotator/internal/mcp"
	"github.com/maartenpaul/foci-annotator/internal/roimanager"
	"github.com/maartenpaul/foci-annotator/internal/sqlite"
)

// newSession connects an MCP client to the annotator server over an
// in-memory transport pair.
func newSession(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations())

	var frames []*imgstack.Frame
	for i := 0; i < 4; i++ {
		pix := make([]float64, 30*30)
		pix[15*30+14+i] = 500
		frames = append(frames, imgstack.NewFrame(pix, 30, 30))
	}

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Tracker: track.NewService(5, nil),
			Regions: roi.NewService(nil),
		},
		Stack:      imgstack.NewStack("seq01", frames),
		Collection: roimanager.New(),
		Store:      sqlite.NewRegionStore(db),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func callTool(t *testing.T, s *sdkmcp.ClientSession, name string, args map[string]any) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	require.False(t, result.IsError, "Tool %s returned error: %v", name, result.Content)

	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return json.RawMessage(textContent.Text)
		}
	}
	t.Fatalf("Tool %s returned no text content", name)
	return nil
}

func TestFunctional_ListTools(t *testing.T) {
	s := newSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	tools, err := s.ListTools(ctx, nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, expected := range []string{
		"track_forward", "add_roi", "new_focus_roi", "list_rois", "clear_rois",
		"crop_stack", "save_rois_omero", "measure_rois", "save_roi_set", "load_roi_set",
	} {
		require.True(t, names[expected], "missing tool %s", expected)
	}
}

func TestFunctional_TrackListClear(t *testing.T) {
	s := newSession(t)

	trackResp := callTool(t, s, "track_forward", map[string]any{
		"start_frame": 1,
		"seed":        map[string]any{"x": 9, "y": 10, "width": 10, "height": 10},
	})
	var tracked struct {
		Committed int `json:"committed"`
		LastFrame int `json:"last_frame"`
	}
	require.NoError(t, json.Unmarshal(trackResp, &tracked))
	require.Equal(t, 4, tracked.Committed)
	require.Equal(t, 4, tracked.LastFrame)

	listResp := callTool(t, s, "list_rois", map[string]any{})
	var listed struct {
		Regions []struct {
			Frame int    `json:"frame"`
			Name  string `json:"name"`
		} `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(listResp, &listed))
	require.Len(t, listed.Regions, 4)
	require.Equal(t, 1, listed.Regions[0].Frame)

	clearResp := callTool(t, s, "clear_rois", map[string]any{})
	var cleared struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(clearResp, &cleared))
	require.Equal(t, 4, cleared.Removed)
}

func TestFunctional_SaveAndReloadSet(t *testing.T) {
	s := newSession(t)

	callTool(t, s, "new_focus_roi", map[string]any{
		"frame":  2,
		"bounds": map[string]any{"x": 5, "y": 5, "width": 8, "height": 8},
	})
	callTool(t, s, "save_roi_set", map[string]any{"name": "run1"})
	callTool(t, s, "clear_rois", map[string]any{})

	loadResp := callTool(t, s, "load_roi_set", map[string]any{"name": "run1"})
	var loaded struct {
		Regions []struct {
			Name  string `json:"name"`
			Frame int    `json:"frame"`
		} `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(loadResp, &loaded))
	require.Len(t, loaded.Regions, 1)
	require.Equal(t, "n01f001-start", loaded.Regions[0].Name)
	require.Equal(t, 2, loaded.Regions[0].Frame)
}

func TestFunctional_MeasureAfterTracking(t *testing.T) {
	s := newSession(t)

	callTool(t, s, "track_forward", map[string]any{
		"start_frame": 1,
		"seed":        map[string]any{"x": 9, "y": 10, "width": 10, "height": 10},
	})

	measureResp := callTool(t, s, "measure_rois", map[string]any{})
	var measured struct {
		Measurements []struct {
			Frame int     `json:"frame"`
			Max   float64 `json:"max"`
		} `json:"measurements"`
	}
	require.NoError(t, json.Unmarshal(measureResp, &measured))
	require.Len(t, measured.Measurements, 4)
	for _, m := range measured.Measurements {
		require.Equal(t, float64(500), m.Max)
	}
}
