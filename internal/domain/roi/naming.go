package roi

import (
	"fmt"
	"strconv"
	"strings"
)

// Focus-group names follow the pattern n<NN>f<NNN>-<suffix>, e.g.
// "n01f003-start". The numeric component after 'f' identifies the focus
// group (one logical spot track).

// WithSuffix rebuilds a region name from its base and a user-supplied
// suffix. The base is everything up to and including the first dash; a name
// without a dash gets one appended. Idempotent for a given input pair.
func WithSuffix(name, suffix string) string {
	base := name + "-"
	if idx := strings.Index(name, "-"); idx >= 0 {
		base = name[:idx+1]
	}
	return base + suffix
}

// NextFocusName scans the collection for focus-group names and returns the
// name for the next group: n01f<NNN>-start with NNN = highest parsed focus
// number + 1, or 1 when no focus name exists. Names that look like focus
// tags but do not parse cleanly are skipped.
func NextFocusName(col Collection) string {
	maxFocus := 0
	for i := 0; i < col.Count(); i++ {
		r, err := col.Get(i)
		if err != nil {
			break
		}
		if n, ok := parseFocusNumber(r.Name); ok && n > maxFocus {
			maxFocus = n
		}
	}
	return fmt.Sprintf("n01f%03d-start", maxFocus+1)
}

// parseFocusNumber extracts the focus number from a name like
// "n01f003-start": the digits between the first 'f' and the first dash
// after it.
func parseFocusNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "n") {
		return 0, false
	}
	fIdx := strings.Index(name, "f")
	if fIdx < 0 {
		return 0, false
	}
	dashIdx := strings.Index(name[fIdx:], "-")
	if dashIdx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[fIdx+1 : fIdx+dashIdx])
	if err != nil {
		return 0, false
	}
	return n, true
}
