package mines

import "sort"

// Constraint asserts that exactly Count of the positions in Vars are
// mines. Vars is kept sorted in row-major order so every downstream
// consumer (frontier decomposition, GAC scheduling, backtracking) iterates
// it in a fixed, reproducible order.
type Constraint struct {
	Vars  []Position
	Count int
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildConstraints derives the sum constraints implied by every revealed
// numeric cell, per spec §4.2: for each Revealed(k) cell, count its
// neighbors already settled as mines (m), collect its still-undecided
// neighbors (U), and — when U is non-empty — emit (U, clamp(k-m, 0, |U|)).
//
// A neighbor counts toward m if it is Flagged in the grid or present in
// knownMines; it is a member of U only if it is Unknown in the grid AND
// not already in knownMines (a cell the driver has deduced to be a mine
// but not yet flagged is not a free variable, even while its grid Kind is
// still Unknown — see DESIGN.md).
//
// Returns the constraint list (duplicates are not removed, matching
// spec §4.2's "no duplicates required") and the set of variables that
// appear in at least one constraint.
func BuildConstraints(k Knowledge, knownMines map[Position]struct{}) ([]Constraint, map[Position]struct{}, error) {
	if err := k.Validate(knownMines); err != nil {
		return nil, nil, err
	}

	var constraints []Constraint
	vars := make(map[Position]struct{})

	k.EachPosition(func(p Position) {
		cell := k.At(p)
		if cell.Kind != Revealed {
			return
		}
		neighbors := k.Neighbors(p)
		m := 0
		var unknowns []Position
		for _, n := range neighbors {
			switch {
			case isKnownMine(k, knownMines, n):
				m++
			case k.At(n).Kind == Unknown:
				unknowns = append(unknowns, n)
			}
		}
		if len(unknowns) == 0 {
			return
		}
		sort.Slice(unknowns, func(i, j int) bool { return unknowns[i].Less(unknowns[j]) })
		count := clamp(int(cell.Value)-m, 0, len(unknowns))
		constraints = append(constraints, Constraint{Vars: unknowns, Count: count})
		for _, v := range unknowns {
			vars[v] = struct{}{}
		}
	})

	return constraints, vars, nil
}
