// Package roimanager provides the in-memory region collection host. It is
// the working set the tracker and manual operations mutate; persistence is
// a separate concern (see internal/sqlite).
package roimanager

import (
	"fmt"

	"github.com/maartenpaul/foci-annotator/internal/domain/roi"
)

// Manager is an insertion-ordered region collection. It implements
// roi.Collection. Deleting an entry shifts later indices down; no other
// mutation reorders entries. The manager does not enforce one region per
// frame; duplicate-frame entries coexist and frame lookup returns the
// first one in display order.
//
// Manager is not safe for concurrent use. Callers serialize access, which
// matches the single-writer discipline the collection contract assumes.
type Manager struct {
	regions []*roi.Region
}

// New creates an empty manager.
func New() *Manager {
	return &Manager{}
}

// Append adds the region at the end and returns its index. Regions without
// a name get an auto-label from their frame and slot, the way an ROI
// manager labels undrawn names.
func (m *Manager) Append(r *roi.Region) int {
	if r.Name == "" {
		r.Name = fmt.Sprintf("%04d-%04d", r.Frame, len(m.regions)+1)
	}
	m.regions = append(m.regions, r)
	return len(m.regions) - 1
}

// Get returns the region at index i.
func (m *Manager) Get(i int) (*roi.Region, error) {
	if i < 0 || i >= len(m.regions) {
		return nil, roi.ErrIndexOutOfRange
	}
	return m.regions[i], nil
}

// Delete removes the entry at index i, shifting subsequent entries down.
func (m *Manager) Delete(i int) error {
	if i < 0 || i >= len(m.regions) {
		return roi.ErrIndexOutOfRange
	}
	m.regions = append(m.regions[:i], m.regions[i+1:]...)
	return nil
}

// Rename changes the name of the entry at index i.
func (m *Manager) Rename(i int, name string) error {
	if i < 0 || i >= len(m.regions) {
		return roi.ErrIndexOutOfRange
	}
	m.regions[i].Name = name
	return nil
}

// Count returns the number of entries.
func (m *Manager) Count() int {
	return len(m.regions)
}

// FindByFrame returns the first entry bound to the given frame.
func (m *Manager) FindByFrame(frame int) (*roi.Region, bool) {
	for _, r := range m.regions {
		if r.Frame == frame {
			return r, true
		}
	}
	return nil, false
}

// Regions returns the entries in display order. The slice is a copy; the
// regions themselves are shared.
func (m *Manager) Regions() []*roi.Region {
	out := make([]*roi.Region, len(m.regions))
	copy(out, m.regions)
	return out
}
