// Package omero uploads finished region collections to an OMERO server as
// rectangle annotations. It only consumes the collection; tracking state is
// never touched.
package omero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
)

var (
	// ErrNoConnection indicates the server could not be reached.
	ErrNoConnection = errors.New("no connection to OMERO server")
	// ErrNoRegions indicates there was nothing to upload.
	ErrNoRegions = errors.New("no regions to save")
	// ErrRejected indicates the server refused the payload.
	ErrRejected = errors.New("OMERO server rejected payload")
)

// rectangleShape is one rectangle in the upload payload. TheT is the
// 0-based time index; it is omitted for regions not bound to a frame
// rather than probed for at runtime.
type rectangleShape struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label,omitempty"`
	TheT   *int    `json:"theT,omitempty"`
}

type uploadRequest struct {
	ImageID int64            `json:"image_id"`
	Shapes  []rectangleShape `json:"shapes"`
}

// Client talks to an OMERO JSON endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the given base URL and session token.
// A nil httpClient gets a default with a 30s timeout.
func NewClient(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient, logger: logger}
}

// UploadRegions posts every region in the collection as a rectangle
// annotation on the given image. Returns the number of shapes uploaded.
func (c *Client) UploadRegions(ctx context.Context, imageID int64, col roi.Collection) (int, error) {
	if col.Count() == 0 {
		return 0, ErrNoRegions
	}

	payload := uploadRequest{ImageID: imageID}
	for i := 0; i < col.Count(); i++ {
		r, err := col.Get(i)
		if err != nil {
			return 0, fmt.Errorf("reading region %d: %w", i, err)
		}
		shape := rectangleShape{
			X:      r.Bounds.X,
			Y:      r.Bounds.Y,
			Width:  r.Bounds.Width,
			Height: r.Bounds.Height,
			Label:  r.Name,
		}
		if r.Assigned() {
			t := r.Frame - 1
			shape.TheT = &t
		}
		payload.Shapes = append(payload.Shapes, shape)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v0/m/rois/", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, msg)
	}

	c.logger.Info("saved regions to OMERO", "image_id", imageID, "shapes", len(payload.Shapes))
	return len(payload.Shapes), nil
}
