package roi

// Collection is an ordered, mutable container of regions. The order is the
// display order set by insertion, not frame order. The container does not
// enforce one-region-per-frame; consumers must tolerate duplicate-frame
// entries (FindByFrame returns the first match in iteration order).
//
// The host environment owns the collection and hands it into every
// operation; no package keeps an implicit shared instance. Callers must
// serialize access: Delete shifts subsequent indices down, so concurrent
// mutation would invalidate index-based iteration.
type Collection interface {
	// Append adds a region at the end and returns its index.
	Append(r *Region) int
	// Get returns the region at index i, or ErrIndexOutOfRange.
	Get(i int) (*Region, error)
	// Delete removes the entry at index i, shifting later indices down.
	Delete(i int) error
	// Rename changes the name of the entry at index i. Frame and bounds
	// are left untouched.
	Rename(i int, name string) error
	// Count returns the number of entries.
	Count() int
	// FindByFrame returns the first entry bound to the given frame.
	FindByFrame(frame int) (*Region, bool)
}

// ClearFrom deletes every entry whose frame is >= startFrame. Iteration runs
// in reverse index order so deletions do not shift the indices still to be
// visited.
func ClearFrom(col Collection, startFrame int) (int, error) {
	removed := 0
	for i := col.Count() - 1; i >= 0; i-- {
		r, err := col.Get(i)
		if err != nil {
			return removed, err
		}
		if r.Frame >= startFrame {
			if err := col.Delete(i); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
