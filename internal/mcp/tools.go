package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/domain/track"
	"github.com/maartenpaul/foci-annotator/internal/imgstack"
	"github.com/maartenpaul/foci-annotator/internal/measure"
)

// RectParams is a rectangle as supplied by the caller, pixel units.
type RectParams struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p RectParams) rect() roi.Rect {
	return roi.NewRect(p.X, p.Y, p.Width, p.Height)
}

// RegionSummary is one collection entry in tool results.
type RegionSummary struct {
	Index  int        `json:"index"`
	Name   string     `json:"name"`
	Frame  int        `json:"frame"`
	Bounds RectParams `json:"bounds"`
}

type TrackForwardParams struct {
	StartFrame int        `json:"start_frame" jsonschema:"1-based frame the seed is drawn on"`
	Seed       RectParams `json:"seed" jsonschema:"seed rectangle drawn by the user"`
}

type TrackForwardResult struct {
	Committed  int `json:"committed"`
	StartFrame int `json:"start_frame"`
	LastFrame  int `json:"last_frame"`
}

type AddRoiParams struct {
	Frame  int        `json:"frame" jsonschema:"1-based frame to bind the region to"`
	Bounds RectParams `json:"bounds"`
	Suffix *string    `json:"suffix,omitempty" jsonschema:"text placed after the dash in the region name; omit to keep the bare base name"`
}

type NewFocusParams struct {
	Frame  int        `json:"frame" jsonschema:"1-based frame to bind the region to"`
	Bounds RectParams `json:"bounds"`
}

type ListRoisParams struct{}

type ListRoisResult struct {
	Regions []RegionSummary `json:"regions"`
}

type ClearRoisParams struct{}

type ClearRoisResult struct {
	Removed int `json:"removed"`
}

type CropStackParams struct {
	OutDir string `json:"out_dir" jsonschema:"directory the cropped sub-stack is written to"`
}

type CropStackResult struct {
	Frames int    `json:"frames"`
	OutDir string `json:"out_dir"`
}

type SaveOmeroParams struct {
	ImageID int64 `json:"image_id" jsonschema:"OMERO image the regions are attached to"`
}

type SaveOmeroResult struct {
	Shapes int `json:"shapes"`
}

type MeasureRoisParams struct {
	CSVPath string `json:"csv_path,omitempty" jsonschema:"optional path for a CSV export of the measurements"`
}

type MeasureRoisResult struct {
	Measurements []measure.Measurement `json:"measurements"`
}

type SaveSetParams struct {
	Name string `json:"name" jsonschema:"name to store the region set under"`
}

type SaveSetResult struct {
	Regions int `json:"regions"`
}

type LoadSetParams struct {
	Name string `json:"name" jsonschema:"name of a previously saved region set"`
}

func registerTools(server *sdkmcp.Server, ws *workspace) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "track_forward",
		Description: "Track the spot in the seed rectangle forward from start_frame, committing one region per frame. Regions at start_frame and later are replaced.",
	}, ws.trackForward)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_roi",
		Description: "Add a drawn rectangle as a region at a specific frame, with an optional name suffix after the dash.",
	}, ws.addRoi)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "new_focus_roi",
		Description: "Add a drawn rectangle as the start of a new focus group with the next free focus number.",
	}, ws.newFocusRoi)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_rois",
		Description: "List all regions in display order.",
	}, ws.listRois)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_rois",
		Description: "Remove every region from the collection.",
	}, ws.clearRois)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "crop_stack",
		Description: "Cut a sub-stack out of the image sequence using one same-sized region per frame, written as TIFF files.",
	}, ws.cropStack)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_rois_omero",
		Description: "Upload all regions to the configured OMERO server as rectangle annotations.",
	}, ws.saveOmero)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "measure_rois",
		Description: "Measure pixel intensity statistics inside every frame-bound region.",
	}, ws.measureRois)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_roi_set",
		Description: "Persist the current region collection under a name.",
	}, ws.saveSet)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "load_roi_set",
		Description: "Replace the current region collection with a previously saved set.",
	}, ws.loadSet)
}

func (ws *workspace) trackForward(ctx context.Context, req *sdkmcp.CallToolRequest, params TrackForwardParams) (*sdkmcp.CallToolResult, TrackForwardResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.stack == nil {
		return nil, TrackForwardResult{}, mapError(track.ErrNoStack)
	}
	seed := roi.NewRegion(params.Seed.rect(), params.StartFrame)
	committed, err := ws.tracker.Track(ctx, ws.col, seed, params.StartFrame, ws.stack)
	if err != nil {
		return nil, TrackForwardResult{}, mapError(err)
	}
	return nil, TrackForwardResult{
		Committed:  committed,
		StartFrame: params.StartFrame,
		LastFrame:  params.StartFrame + committed - 1,
	}, nil
}

func (ws *workspace) addRoi(ctx context.Context, req *sdkmcp.CallToolRequest, params AddRoiParams) (*sdkmcp.CallToolResult, RegionSummary, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	prompter := roi.PromptFunc(func(string) (string, bool) {
		if params.Suffix == nil {
			return "", false
		}
		return *params.Suffix, true
	})
	region, err := ws.regions.AddAtFrame(ws.col, roi.NewRegion(params.Bounds.rect(), 0), params.Frame, prompter)
	if err != nil {
		return nil, RegionSummary{}, mapError(err)
	}
	return nil, summarize(region, ws.col.Count()-1), nil
}

func (ws *workspace) newFocusRoi(ctx context.Context, req *sdkmcp.CallToolRequest, params NewFocusParams) (*sdkmcp.CallToolResult, RegionSummary, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	region, err := ws.regions.NewFocus(ws.col, roi.NewRegion(params.Bounds.rect(), 0), params.Frame)
	if err != nil {
		return nil, RegionSummary{}, mapError(err)
	}
	return nil, summarize(region, ws.col.Count()-1), nil
}

func (ws *workspace) listRois(ctx context.Context, req *sdkmcp.CallToolRequest, params ListRoisParams) (*sdkmcp.CallToolResult, ListRoisResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	result := ListRoisResult{Regions: []RegionSummary{}}
	for i, r := range ws.col.Regions() {
		result.Regions = append(result.Regions, summarize(r, i))
	}
	return nil, result, nil
}

func (ws *workspace) clearRois(ctx context.Context, req *sdkmcp.CallToolRequest, params ClearRoisParams) (*sdkmcp.CallToolResult, ClearRoisResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	removed := ws.col.Count()
	if err := ws.regions.Clear(ws.col); err != nil {
		return nil, ClearRoisResult{}, mapError(err)
	}
	return nil, ClearRoisResult{Removed: removed}, nil
}

func (ws *workspace) cropStack(ctx context.Context, req *sdkmcp.CallToolRequest, params CropStackParams) (*sdkmcp.CallToolResult, CropStackResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.stack == nil {
		return nil, CropStackResult{}, mapError(track.ErrNoStack)
	}
	if strings.TrimSpace(params.OutDir) == "" {
		return nil, CropStackResult{}, &APIError{Code: "INVALID_INPUT", Message: "out_dir is required"}
	}
	cropped, err := imgstack.Crop(ws.stack, ws.col)
	if err != nil {
		return nil, CropStackResult{}, mapError(err)
	}
	if err := cropped.WriteTIFF(params.OutDir); err != nil {
		return nil, CropStackResult{}, mapError(err)
	}
	return nil, CropStackResult{Frames: cropped.FrameCount(), OutDir: params.OutDir}, nil
}

func (ws *workspace) saveOmero(ctx context.Context, req *sdkmcp.CallToolRequest, params SaveOmeroParams) (*sdkmcp.CallToolResult, SaveOmeroResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.uploader == nil {
		return nil, SaveOmeroResult{}, &APIError{Code: "OMERO_NOT_CONFIGURED", Message: "no OMERO server configured", RecoveryHint: "Set omero.url in the config"}
	}
	shapes, err := ws.uploader.UploadRegions(ctx, params.ImageID, ws.col)
	if err != nil {
		return nil, SaveOmeroResult{}, mapError(err)
	}
	return nil, SaveOmeroResult{Shapes: shapes}, nil
}

func (ws *workspace) measureRois(ctx context.Context, req *sdkmcp.CallToolRequest, params MeasureRoisParams) (*sdkmcp.CallToolResult, MeasureRoisResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.stack == nil {
		return nil, MeasureRoisResult{}, mapError(track.ErrNoStack)
	}
	measurements, err := measure.Regions(ws.stack, ws.col)
	if err != nil {
		return nil, MeasureRoisResult{}, mapError(err)
	}
	if params.CSVPath != "" {
		if err := writeMeasurementsCSV(params.CSVPath, measurements); err != nil {
			return nil, MeasureRoisResult{}, mapError(err)
		}
	}
	if measurements == nil {
		measurements = []measure.Measurement{}
	}
	return nil, MeasureRoisResult{Measurements: measurements}, nil
}

func (ws *workspace) saveSet(ctx context.Context, req *sdkmcp.CallToolRequest, params SaveSetParams) (*sdkmcp.CallToolResult, SaveSetResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.store == nil {
		return nil, SaveSetResult{}, &APIError{Code: "STORE_NOT_CONFIGURED", Message: "no region store configured"}
	}
	stackName := ""
	if ws.stack != nil {
		stackName = ws.stack.Name
	}
	regions := ws.col.Regions()
	if err := ws.store.SaveSet(ctx, params.Name, stackName, regions); err != nil {
		return nil, SaveSetResult{}, mapError(err)
	}
	return nil, SaveSetResult{Regions: len(regions)}, nil
}

func (ws *workspace) loadSet(ctx context.Context, req *sdkmcp.CallToolRequest, params LoadSetParams) (*sdkmcp.CallToolResult, ListRoisResult, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.store == nil {
		return nil, ListRoisResult{}, &APIError{Code: "STORE_NOT_CONFIGURED", Message: "no region store configured"}
	}
	regions, err := ws.store.LoadSet(ctx, params.Name)
	if err != nil {
		return nil, ListRoisResult{}, mapError(err)
	}
	if err := ws.regions.Clear(ws.col); err != nil {
		return nil, ListRoisResult{}, mapError(err)
	}
	result := ListRoisResult{Regions: []RegionSummary{}}
	for _, r := range regions {
		idx := ws.col.Append(r)
		result.Regions = append(result.Regions, summarize(r, idx))
	}
	return nil, result, nil
}

func summarize(r *roi.Region, index int) RegionSummary {
	return RegionSummary{
		Index: index,
		Name:  r.Name,
		Frame: r.Frame,
		Bounds: RectParams{
			X:      r.Bounds.X,
			Y:      r.Bounds.Y,
			Width:  r.Bounds.Width,
			Height: r.Bounds.Height,
		},
	}
}

func writeMeasurementsCSV(path string, measurements []measure.Measurement) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating csv directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()
	return measure.WriteCSV(f, measurements)
}
