package mines

import "sort"

// sortPositions sorts in place in row-major order, the tie-break order
// used throughout the package for deterministic output.
func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Less(ps[j]) })
}
