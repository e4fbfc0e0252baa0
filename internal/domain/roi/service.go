package roi

import (
	"fmt"
	"log/slog"
)

// Prompter obtains a free-text string from the user. The second return
// value is false when the prompt was cancelled. Cancellation never aborts
// the operation that asked for the text; it only yields an empty answer.
type Prompter interface {
	Prompt(label string) (string, bool)
}

// PromptFunc adapts a function to the Prompter interface.
type PromptFunc func(label string) (string, bool)

func (f PromptFunc) Prompt(label string) (string, bool) { return f(label) }

// Service handles manual region bookkeeping: adding a drawn region at a
// frame, starting a new focus group, and clearing the collection.
type Service struct {
	logger *slog.Logger
}

// NewService creates a new region service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// AddAtFrame binds the drawn region to the given frame, appends it, and
// renames it with a user-chosen suffix after the dash. A cancelled prompt
// keeps the bare base name; the append itself always happens.
func (s *Service) AddAtFrame(col Collection, region *Region, frame int, prompter Prompter) (*Region, error) {
	if region == nil {
		return nil, ErrNoRegion
	}
	if frame < 1 {
		return nil, ErrBadFrame
	}

	region.Frame = frame
	idx := col.Append(region)

	suffix := ""
	if prompter != nil {
		if text, ok := prompter.Prompt("Add text after dash:"); ok {
			suffix = text
		}
	}
	name := WithSuffix(region.Name, suffix)
	if err := col.Rename(idx, name); err != nil {
		return nil, fmt.Errorf("renaming region: %w", err)
	}

	s.logger.Info("added region", "frame", frame, "name", name)
	return region, nil
}

// NewFocus binds the drawn region to the given frame, appends it, and names
// it as the start of the next focus group.
func (s *Service) NewFocus(col Collection, region *Region, frame int) (*Region, error) {
	if region == nil {
		return nil, ErrNoRegion
	}
	if frame < 1 {
		return nil, ErrBadFrame
	}

	name := NextFocusName(col)
	region.Frame = frame
	idx := col.Append(region)
	if err := col.Rename(idx, name); err != nil {
		return nil, fmt.Errorf("renaming region: %w", err)
	}

	s.logger.Info("created focus region", "frame", frame, "name", name)
	return region, nil
}

// Clear removes every entry from the collection.
func (s *Service) Clear(col Collection) error {
	removed, err := ClearFrom(col, 0)
	if err != nil {
		return fmt.Errorf("clearing regions: %w", err)
	}
	s.logger.Info("cleared regions", "count", removed)
	return nil
}
