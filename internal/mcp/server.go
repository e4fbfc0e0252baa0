// Package mcp exposes the annotator's operations as MCP tools: tracking,
// region bookkeeping, cropping, measurement, OMERO upload, and region-set
// persistence. Tools mutate one shared collection handle behind a mutex; a
// tracking walk always runs to completion before the next tool call
// proceeds.
package mcp

import (
	"log/slog"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/domain/track"
	"github.com/maartenpaul/foci-annotator/internal/imgstack"
	"github.com/maartenpaul/foci-annotator/internal/omero"
	"github.com/maartenpaul/foci-annotator/internal/roimanager"
	"github.com/maartenpaul/foci-annotator/internal/sqlite"
)

const serverInstructions = `Spot tracking over a time-lapse image sequence.

Draw a seed rectangle on a frame, then call track_forward to follow the
spot through the remaining frames; one region per frame is committed to the
shared region list. Re-running track_forward from an earlier frame replaces
everything downstream. Use crop_stack, measure_rois and save_rois_omero on
the finished list, and save_roi_set/load_roi_set to persist it.`

// Services contains the domain services the tool surface dispatches to.
type Services struct {
	Tracker *track.Service
	Regions *roi.Service
}

// Config contains server configuration.
type Config struct {
	Services   Services
	Stack      *imgstack.Stack
	Collection *roimanager.Manager
	Store      *sqlite.RegionStore
	Uploader   *omero.Client
	Logger     *slog.Logger
}

// workspace is the shared mutable state behind the tools. The mutex
// serializes every operation: the collection's index-stability assumptions
// require a single writer.
type workspace struct {
	mu       sync.Mutex
	stack    *imgstack.Stack
	col      *roimanager.Manager
	tracker  *track.Service
	regions  *roi.Service
	store    *sqlite.RegionStore
	uploader *omero.Client
	logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "foci-annotator",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	ws := &workspace{
		stack:    cfg.Stack,
		col:      cfg.Collection,
		tracker:  cfg.Services.Tracker,
		regions:  cfg.Services.Regions,
		store:    cfg.Store,
		uploader: cfg.Uploader,
		logger:   logger,
	}
	registerTools(server, ws)

	return server
}
