package mines

import "context"

// backtrackState bundles the mutable search state for one satisfiability
// test, threaded explicitly through plain functions rather than closed
// over — the teacher's Design Notes equivalent of avoiding per-variable
// closures over shared state (see propagateLocked in fd.go, and spec §9).
type backtrackState struct {
	constraints []Constraint
	varToCons   map[Position][]int
	assigned    map[Position]int
}

// legalValues returns the values p may still take given a fixed override
// (used to pin the hypothesis variable and every domain-singleton variable
// in the component) or, absent an override, both 0 and 1.
func legalValues(p Position, overrides map[Position]int) []int {
	if v, ok := overrides[p]; ok {
		return []int{v}
	}
	return []int{0, 1}
}

// constraintFeasible applies spec §4.5's pruning rule: a constraint C is
// still feasible under the current (possibly partial) assignment iff
// C.Count - (assigned ones in C) lies in [0, unassigned-in-C].
func (st *backtrackState) constraintFeasible(ci int) bool {
	c := st.constraints[ci]
	trueCount, unassignedCount := 0, 0
	for _, v := range c.Vars {
		val, ok := st.assigned[v]
		switch {
		case !ok:
			unassignedCount++
		case val == 1:
			trueCount++
		}
	}
	remaining := c.Count - trueCount
	return remaining >= 0 && remaining <= unassignedCount
}

func (st *backtrackState) allFeasible() bool {
	for ci := range st.constraints {
		if !st.constraintFeasible(ci) {
			return false
		}
	}
	return true
}

// degree counts constraints containing p that still have at least one
// other unassigned variable — the tie-break from spec §4.5's MRV+degree
// ordering ("most constraints involving the variable restricted to still-
// unassigned neighbors").
func (st *backtrackState) degree(p Position) int {
	d := 0
	for _, ci := range st.varToCons[p] {
		for _, v := range st.constraints[ci].Vars {
			if v == p {
				continue
			}
			if _, ok := st.assigned[v]; !ok {
				d++
				break
			}
		}
	}
	return d
}

// selectVariable implements MRV with degree tie-break over the given
// candidate (still-unassigned) variables, falling back to insertion
// (row-major) order on a full tie, per spec §4.5.
func (st *backtrackState) selectVariable(candidates []Position, overrides map[Position]int) Position {
	best := candidates[0]
	bestCount, bestDegree := -1, -1
	for _, p := range candidates {
		count := 0
		for _, v := range legalValues(p, overrides) {
			st.assigned[p] = v
			if st.allFeasible() {
				count++
			}
			delete(st.assigned, p)
		}
		deg := st.degree(p)
		if bestCount == -1 || count < bestCount || (count == bestCount && deg > bestDegree) {
			best, bestCount, bestDegree = p, count, deg
		}
	}
	return best
}

// search performs backtracking over the remaining unassigned variables,
// choosing each next variable by MRV with degree tie-break
// (selectVariable), value order {0, 1}, returning true the moment one fully
// consistent assignment is found. It checks ctx at every recursive call so
// a cancelled or expired context actually aborts a deep search instead of
// running to completion regardless, per spec §6.
func (st *backtrackState) search(ctx context.Context, unassigned []Position, overrides map[Position]int) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}
	if !st.allFeasible() {
		return false, nil
	}
	if len(unassigned) == 0 {
		return true, nil
	}

	v := st.selectVariable(unassigned, overrides)
	rest := make([]Position, 0, len(unassigned)-1)
	for _, p := range unassigned {
		if p != v {
			rest = append(rest, p)
		}
	}

	for _, val := range legalValues(v, overrides) {
		st.assigned[v] = val
		if st.allFeasible() {
			found, err := st.search(ctx, rest, overrides)
			if err != nil {
				delete(st.assigned, v)
				return false, err
			}
			if found {
				return true, nil
			}
		}
		delete(st.assigned, v)
	}
	return false, nil
}

// existsSolution reports whether comp's constraints admit an assignment
// extending fixed (the hypothesis under test, plus every already-singleton
// domain variable in the component).
func existsSolution(ctx context.Context, comp Component, fixed map[Position]int) (bool, error) {
	varToCons := make(map[Position][]int)
	for ci, c := range comp.Constraints {
		for _, v := range c.Vars {
			varToCons[v] = append(varToCons[v], ci)
		}
	}
	st := &backtrackState{
		constraints: comp.Constraints,
		varToCons:   varToCons,
		assigned:    make(map[Position]int, len(comp.Vars)),
	}
	var unassigned []Position
	for _, v := range comp.Vars {
		if val, ok := fixed[v]; ok {
			st.assigned[v] = val
		} else {
			unassigned = append(unassigned, v)
		}
	}
	return st.search(ctx, unassigned, fixed)
}

// deductiveBacktrack proves forced values for undecided variables in comp
// that GAC alone did not resolve (domains with two remaining values), per
// spec §4.5. For each such variable it attempts extensions with x=0 and
// x=1; a polarity that admits no extension is infeasible, and if exactly
// one polarity is feasible the variable is forced. Finding neither
// feasible is a model inconsistency local to that variable: per spec, no
// deduction is returned for it and the caller defers to risk. A cancelled
// or expired ctx aborts the remaining search and is returned as an error.
func deductiveBacktrack(ctx context.Context, comp Component, domains map[Position]Domain) (Deductions, error) {
	fixed := make(map[Position]int, len(comp.Vars))
	var undecided []Position
	for _, v := range comp.Vars {
		d := domains[v]
		switch {
		case d == domainZero:
			fixed[v] = 0
		case d == domainOne:
			fixed[v] = 1
		default:
			undecided = append(undecided, v)
		}
	}

	var out Deductions
	for _, v := range undecided {
		if err := checkContext(ctx); err != nil {
			return Deductions{}, err
		}
		tryWith := func(val int) (bool, error) {
			hypo := make(map[Position]int, len(fixed)+1)
			for k, val2 := range fixed {
				hypo[k] = val2
			}
			hypo[v] = val
			return existsSolution(ctx, comp, hypo)
		}
		canBeSafe, err := tryWith(0)
		if err != nil {
			return Deductions{}, err
		}
		canBeMine, err := tryWith(1)
		if err != nil {
			return Deductions{}, err
		}
		switch {
		case canBeSafe && !canBeMine:
			out.Safe = append(out.Safe, v)
		case canBeMine && !canBeSafe:
			out.Mines = append(out.Mines, v)
		}
		// Neither feasible: local model inconsistency, no deduction for v.
	}
	sortPositions(out.Safe)
	sortPositions(out.Mines)
	return out, nil
}
