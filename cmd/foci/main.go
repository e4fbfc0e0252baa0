package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maartenpaul/foci-annotator/internal/config"
	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/domain/track"
	"github.com/maartenpaul/foci-annotator/internal/imgstack"
	"github.com/maartenpaul/foci-annotator/internal/mcp"
	"github.com/maartenpaul/foci-annotator/internal/measure"
	"github.com/maartenpaul/foci-annotator/internal/omero"
	"github.com/maartenpaul/foci-annotator/internal/roimanager"
	"github.com/maartenpaul/foci-annotator/internal/sqlite"
)

const usage = `usage: foci <command> [flags]

commands:
  serve    run the MCP server on stdio (default)
  track    track a seed rectangle forward through the stack
  crop     cut a sub-stack using a saved region set
  measure  measure intensities inside a saved region set
  upload   send a saved region set to OMERO
  sets     list saved region sets
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays clean for JSON-RPC in serve mode.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	app, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	switch cmd {
	case "serve":
		err = app.serve()
	case "track":
		err = app.track(args)
	case "crop":
		err = app.crop(args)
	case "measure":
		err = app.measure(args)
	case "upload":
		err = app.upload(args)
	case "sets":
		err = app.sets(args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// app bundles the wired services behind the subcommands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sqlite.DB
	store    *sqlite.RegionStore
	stack    *imgstack.Stack
	tracker  *track.Service
	regions  *roi.Service
	uploader *omero.Client
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		store:   sqlite.NewRegionStore(db),
		tracker: track.NewService(cfg.Search.Radius, logger),
		regions: roi.NewService(logger),
	}

	if cfg.Stack.Dir != "" {
		stack, err := imgstack.Load(cfg.Stack.Dir)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("loading stack from %s: %w", cfg.Stack.Dir, err)
		}
		logger.Info("stack loaded", "dir", cfg.Stack.Dir, "frames", stack.FrameCount())
		a.stack = stack
	}

	if cfg.OMERO.URL != "" {
		a.uploader = omero.NewClient(cfg.OMERO.URL, cfg.OMERO.Token, &http.Client{Timeout: 30 * time.Second}, logger)
	}

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) serve() error {
	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Tracker: a.tracker,
			Regions: a.regions,
		},
		Stack:      a.stack,
		Collection: roimanager.New(),
		Store:      a.store,
		Uploader:   a.uploader,
		Logger:     a.logger,
	})

	a.logger.Info("starting stdio transport")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		a.logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or the context is canceled.
	return server.Run(ctx, &sdkmcp.StdioTransport{})
}

func (a *app) track(args []string) error {
	fs := flag.NewFlagSet("track", flag.ExitOnError)
	frame := fs.Int("frame", 1, "1-based frame the seed is drawn on")
	x := fs.Float64("x", 0, "seed rectangle x")
	y := fs.Float64("y", 0, "seed rectangle y")
	w := fs.Float64("w", 0, "seed rectangle width")
	h := fs.Float64("h", 0, "seed rectangle height")
	save := fs.String("save", "", "region set name to store the result under")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.stack == nil {
		return track.ErrNoStack
	}

	col := roimanager.New()
	seed := roi.NewRegion(roi.NewRect(*x, *y, *w, *h), *frame)
	committed, err := a.tracker.Track(context.Background(), col, seed, *frame, a.stack)
	if err != nil {
		return err
	}
	fmt.Printf("committed %d regions from frame %d\n", committed, *frame)
	for _, r := range col.Regions() {
		c := r.Bounds.Center()
		fmt.Printf("  %s frame=%d center=(%.1f, %.1f)\n", r.Name, r.Frame, c.X, c.Y)
	}

	if *save != "" {
		if err := a.store.SaveSet(context.Background(), *save, a.stack.Name, col.Regions()); err != nil {
			return err
		}
		fmt.Printf("saved region set %q\n", *save)
	}
	return nil
}

func (a *app) crop(args []string) error {
	fs := flag.NewFlagSet("crop", flag.ExitOnError)
	set := fs.String("set", "", "saved region set name")
	out := fs.String("out", "", "output directory for the cropped sub-stack")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *set == "" || *out == "" {
		return fmt.Errorf("crop requires -set and -out")
	}
	if a.stack == nil {
		return track.ErrNoStack
	}

	col, err := a.loadSet(*set)
	if err != nil {
		return err
	}
	cropped, err := imgstack.Crop(a.stack, col)
	if err != nil {
		return err
	}
	if err := cropped.WriteTIFF(*out); err != nil {
		return err
	}
	fmt.Printf("wrote %d frames to %s\n", cropped.FrameCount(), *out)
	return nil
}

func (a *app) measure(args []string) error {
	fs := flag.NewFlagSet("measure", flag.ExitOnError)
	set := fs.String("set", "", "saved region set name")
	csvPath := fs.String("csv", "", "write a CSV report to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *set == "" {
		return fmt.Errorf("measure requires -set")
	}
	if a.stack == nil {
		return track.ErrNoStack
	}

	col, err := a.loadSet(*set)
	if err != nil {
		return err
	}
	measurements, err := measure.Regions(a.stack, col)
	if err != nil {
		return err
	}
	for _, m := range measurements {
		fmt.Printf("%s frame=%d mean=%.2f sd=%.2f min=%.0f max=%.0f n=%d\n",
			m.Name, m.Frame, m.Mean, m.StdDev, m.Min, m.Max, m.Pixels)
	}
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := measure.WriteCSV(f, measurements); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *csvPath)
	}
	return nil
}

func (a *app) upload(args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	set := fs.String("set", "", "saved region set name")
	imageID := fs.Int64("image", 0, "OMERO image ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *set == "" {
		return fmt.Errorf("upload requires -set")
	}
	if a.uploader == nil {
		return omero.ErrNoConnection
	}
	id := *imageID
	if id == 0 {
		id = a.cfg.OMERO.ImageID
	}

	col, err := a.loadSet(*set)
	if err != nil {
		return err
	}
	shapes, err := a.uploader.UploadRegions(context.Background(), id, col)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded %d shapes to image %d\n", shapes, id)
	return nil
}

func (a *app) sets(args []string) error {
	names, err := a.store.ListSets(context.Background())
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func (a *app) loadSet(name string) (*roimanager.Manager, error) {
	regions, err := a.store.LoadSet(context.Background(), name)
	if err != nil {
		return nil, err
	}
	col := roimanager.New()
	for _, r := range regions {
		col.Append(r)
	}
	return col, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
