package mcp

import (
	"errors"
	"fmt"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
	"github.com/maartenpaul/foci-annotator/internal/domain/track"
	"github.com/maartenpaul/foci-annotator/internal/imgstack"
	"github.com/maartenpaul/foci-annotator/internal/omero"
	"github.com/maartenpaul/foci-annotator/internal/sqlite"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// mapError maps domain errors to MCP error codes. Unknown errors pass
// through with an INTERNAL code so the caller still gets the detail.
func mapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, track.ErrNoSeed):
		return &APIError{Code: "NO_SEED", Message: "no seed region drawn", RecoveryHint: "Provide a seed rectangle on the start frame"}
	case errors.Is(err, track.ErrNoStack):
		return &APIError{Code: "NO_STACK", Message: "no image stack loaded", RecoveryHint: "Configure stack.dir and restart"}
	case errors.Is(err, track.ErrFrameOutOfRange):
		return &APIError{Code: "FRAME_OUT_OF_RANGE", Message: "frame outside the stack", Details: err.Error(), RecoveryHint: "Use a 1-based frame within the stack"}
	case errors.Is(err, roi.ErrIndexOutOfRange):
		return &APIError{Code: "INDEX_OUT_OF_RANGE", Message: "region index outside the collection", RecoveryHint: "List regions to see valid indices"}
	case errors.Is(err, roi.ErrNoRegion):
		return &APIError{Code: "NO_REGION", Message: "no region to operate on"}
	case errors.Is(err, roi.ErrBadFrame):
		return &APIError{Code: "BAD_FRAME", Message: "frame must be at least 1"}
	case errors.Is(err, imgstack.ErrSizeMismatch):
		return &APIError{Code: "SIZE_MISMATCH", Message: "regions are not all the same size", RecoveryHint: "Crop needs one same-sized region per frame; re-run tracking"}
	case errors.Is(err, imgstack.ErrNoRegions):
		return &APIError{Code: "NO_REGIONS", Message: "no frame-bound regions to crop with"}
	case errors.Is(err, omero.ErrNoRegions):
		return &APIError{Code: "NO_REGIONS", Message: "no regions to upload"}
	case errors.Is(err, omero.ErrNoConnection):
		return &APIError{Code: "OMERO_UNREACHABLE", Message: "could not reach the OMERO server", Details: err.Error(), RecoveryHint: "Check omero.url and the network"}
	case errors.Is(err, omero.ErrRejected):
		return &APIError{Code: "OMERO_REJECTED", Message: "OMERO rejected the upload", Details: err.Error(), RecoveryHint: "Check the image ID and your token"}
	case errors.Is(err, sqlite.ErrSetNotFound):
		return &APIError{Code: "SET_NOT_FOUND", Message: "no region set with that name", RecoveryHint: "List saved sets to see valid names"}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error()}
	}
}
