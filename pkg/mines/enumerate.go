package mines

import "context"

// SmallLimit is the variable-count threshold at or below which the exact
// enumerator uses naive 2^n enumeration (spec §4.6's recommended value).
const SmallLimit = 20

// DefaultMaxSolutions is the recommended cap on accepted solutions for the
// backtracking enumeration path, per spec §4.6/§6.
const DefaultMaxSolutions = 200000

// EnumerationResult is the outcome of exactly enumerating one component's
// satisfying assignments.
type EnumerationResult struct {
	Solutions int
	Marginals map[Position]float64
	Truncated bool
}

// consState is the compact per-constraint bookkeeping used by unit
// propagation: t assigned-true, u still-unassigned, req the target count.
// Bounded by 8 by construction (a Minesweeper cell has at most 8
// neighbors), so int8 is ample — matching spec §9's "small integer types"
// note.
type consState struct {
	t, u, req int8
}

// trailKind discriminates the two kinds of undoable mutation searchPropagating
// performs: assigning a variable, and updating one constraint's bookkeeping.
type trailKind uint8

const (
	trailAssign trailKind = iota
	trailConsState
)

// trailEntry records one undoable mutation, adapted verbatim in spirit from
// the teacher's FDStore.trail/snapshot/undo (_examples/gitrdm-gokando/pkg/
// minikanren/fd.go): rather than cloning the whole assignment and
// constraint-state slice before every branch, each force() call pushes the
// minimal information needed to reverse itself, and undo(mark) pops back to
// a saved trail length, per spec §9.
type trailEntry struct {
	kind trailKind
	pos  Position  // trailAssign
	ci   int       // trailConsState
	prev consState // trailConsState
}

// enumerator holds the fixed inputs for one component's exact enumeration;
// bundled explicitly (not captured by closures) per spec §9.
type enumerator struct {
	vars        []Position
	constraints []Constraint
	varToCons   map[Position][]int
	maxSolution int

	solutionCount int
	trueCounts    map[Position]int

	trail []trailEntry
}

// snapshot returns a mark that undo(mark, ...) can later roll back to.
func (e *enumerator) snapshot() int {
	return len(e.trail)
}

// undo reverses every trail entry pushed since mark, restoring assign and
// state to their state at the matching snapshot() call. Entries are undone
// in reverse order, mirroring the teacher's FDStore.undo.
func (e *enumerator) undo(mark int, assign map[Position]int, state []consState) {
	for i := len(e.trail) - 1; i >= mark; i-- {
		t := e.trail[i]
		switch t.kind {
		case trailAssign:
			delete(assign, t.pos)
		case trailConsState:
			state[t.ci] = t.prev
		}
	}
	e.trail = e.trail[:mark]
}

// EnumerateExact counts every satisfying assignment of comp and, for each
// variable, the fraction of solutions in which it is a mine, per spec
// §4.6. At or below SmallLimit variables it enumerates all 2^n assignments
// with a leaf-only constraint check (robust, minimal bookkeeping); above it,
// it backtracks with unit propagation at each node and caps the accepted
// solution count at maxSolutions, flagging the result Truncated if the cap
// is hit. Returns nil if the component has zero satisfying assignments
// (ErrImpossibleObservation). A cancelled or expired ctx aborts the search
// and is returned as an error, per spec §6.
func EnumerateExact(ctx context.Context, comp Component, maxSolutions int) (*EnumerationResult, error) {
	if maxSolutions <= 0 {
		maxSolutions = DefaultMaxSolutions
	}
	varToCons := make(map[Position][]int, len(comp.Vars))
	for ci, c := range comp.Constraints {
		for _, v := range c.Vars {
			varToCons[v] = append(varToCons[v], ci)
		}
	}
	e := &enumerator{
		vars:        comp.Vars,
		constraints: comp.Constraints,
		varToCons:   varToCons,
		maxSolution: maxSolutions,
		trueCounts:  make(map[Position]int, len(comp.Vars)),
	}
	for _, v := range comp.Vars {
		e.trueCounts[v] = 0
	}

	var truncated bool
	if len(comp.Vars) <= SmallLimit {
		if err := e.searchNaive(ctx, 0, make(map[Position]int, len(comp.Vars))); err != nil {
			return nil, err
		}
	} else {
		state := e.initState(make(map[Position]int, len(comp.Vars)))
		if !e.feasible(state) {
			return nil, ErrImpossibleObservation
		}
		var err error
		truncated, err = e.searchPropagating(ctx, make(map[Position]int, len(comp.Vars)), state)
		if err != nil {
			return nil, err
		}
	}

	if e.solutionCount == 0 {
		return nil, ErrImpossibleObservation
	}

	marginals := make(map[Position]float64, len(comp.Vars))
	for _, v := range comp.Vars {
		marginals[v] = float64(e.trueCounts[v]) / float64(e.solutionCount)
	}
	return &EnumerationResult{Solutions: e.solutionCount, Marginals: marginals, Truncated: truncated}, nil
}

// checkComplete verifies a full assignment satisfies every constraint
// exactly.
func (e *enumerator) checkComplete(assign map[Position]int) bool {
	for _, c := range e.constraints {
		sum := 0
		for _, v := range c.Vars {
			sum += assign[v]
		}
		if sum != c.Count {
			return false
		}
	}
	return true
}

// searchNaive enumerates all 2^n assignments of e.vars[idx:] depth-first.
func (e *enumerator) searchNaive(ctx context.Context, idx int, assign map[Position]int) error {
	if idx == len(e.vars) {
		if e.checkComplete(assign) {
			e.recordSolution(assign)
		}
		return nil
	}
	if idx%8 == 0 {
		if err := checkContext(ctx); err != nil {
			return err
		}
	}
	v := e.vars[idx]
	for _, val := range [2]int{0, 1} {
		assign[v] = val
		if err := e.searchNaive(ctx, idx+1, assign); err != nil {
			delete(assign, v)
			return err
		}
	}
	delete(assign, v)
	return nil
}

func (e *enumerator) recordSolution(assign map[Position]int) {
	e.solutionCount++
	for v, val := range assign {
		if val == 1 {
			e.trueCounts[v]++
		}
	}
}

// initState builds the (t, u, req) triple for every constraint given the
// (possibly empty) current assignment.
func (e *enumerator) initState(assign map[Position]int) []consState {
	state := make([]consState, len(e.constraints))
	for ci, c := range e.constraints {
		var t, u int8
		for _, v := range c.Vars {
			if val, ok := assign[v]; ok {
				if val == 1 {
					t++
				}
			} else {
				u++
			}
		}
		state[ci] = consState{t: t, u: u, req: int8(c.Count)}
	}
	return state
}

func (e *enumerator) feasible(state []consState) bool {
	for _, s := range state {
		if s.req < s.t || s.req > s.t+s.u {
			return false
		}
	}
	return true
}

// propagate applies forced-0/forced-1 unit propagation to a fixed point,
// per spec §4.6: if req == t every still-unassigned var in that
// constraint must be 0; if req == t+u every one must be 1; if u == 0 the
// constraint must already be satisfied; any violation fails the branch.
// Mutates assign and state in place (recording every mutation on e.trail)
// and returns false on contradiction; the caller is responsible for
// undoing back to its own snapshot on failure.
func (e *enumerator) propagate(assign map[Position]int, state []consState) bool {
	changed := true
	for changed {
		changed = false
		for ci, c := range e.constraints {
			s := state[ci]
			if s.u == 0 {
				if s.t != s.req {
					return false
				}
				continue
			}
			if s.req < s.t || s.req > s.t+s.u {
				return false
			}
			switch {
			case s.req == s.t:
				for _, v := range c.Vars {
					if _, ok := assign[v]; ok {
						continue
					}
					e.force(assign, state, v, 0)
				}
				changed = true
			case s.req == s.t+s.u:
				for _, v := range c.Vars {
					if _, ok := assign[v]; ok {
						continue
					}
					e.force(assign, state, v, 1)
				}
				changed = true
			}
		}
	}
	return true
}

// force assigns v := val and updates every constraint state containing v,
// pushing a trailEntry for the assignment and for each constraint's prior
// consState before mutating it, so a later undo() can reverse exactly this
// call.
func (e *enumerator) force(assign map[Position]int, state []consState, v Position, val int) {
	assign[v] = val
	e.trail = append(e.trail, trailEntry{kind: trailAssign, pos: v})
	for _, ci := range e.varToCons[v] {
		s := state[ci]
		e.trail = append(e.trail, trailEntry{kind: trailConsState, ci: ci, prev: s})
		s.u--
		if val == 1 {
			s.t++
		}
		state[ci] = s
	}
}

// searchPropagating performs branching backtracking search with unit
// propagation at each node (spec §4.6's large-component strategy). Unlike a
// clone-per-branch design, it mutates a single shared assign/state pair in
// place and undoes each branch's mutations via e.trail once that branch is
// exhausted, per spec §9. Returns true iff the solution cap was hit
// (Truncated). Checks ctx at every node so a cancelled or expired context
// actually stops the search.
func (e *enumerator) searchPropagating(ctx context.Context, assign map[Position]int, state []consState) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}
	if e.solutionCount >= e.maxSolution {
		return true, nil
	}

	mark := e.snapshot()
	if !e.propagate(assign, state) {
		e.undo(mark, assign, state)
		return false, nil
	}

	if len(assign) == len(e.vars) {
		ok := true
		for _, s := range state {
			if s.u != 0 || s.t != s.req {
				ok = false
				break
			}
		}
		if ok {
			e.recordSolution(assign)
		}
		e.undo(mark, assign, state)
		return false, nil
	}

	v, ok := e.selectByDegree(assign)
	if !ok {
		e.undo(mark, assign, state)
		return false, nil
	}

	truncated := false
	for _, val := range [2]int{0, 1} {
		branchMark := e.snapshot()
		e.force(assign, state, v, val)
		if e.feasible(state) {
			t, err := e.searchPropagating(ctx, assign, state)
			if err != nil {
				e.undo(mark, assign, state)
				return false, err
			}
			if t {
				truncated = true
			}
		}
		e.undo(branchMark, assign, state)
		if e.solutionCount >= e.maxSolution {
			truncated = true
			break
		}
	}

	e.undo(mark, assign, state)
	return truncated, nil
}

// selectByDegree picks the unassigned variable with the most constraints,
// per spec §4.6 ("variable selection by maximum degree among unassigned").
// The bool result is false only when every variable is already assigned.
func (e *enumerator) selectByDegree(assign map[Position]int) (Position, bool) {
	best := Position{}
	bestDeg := -1
	found := false
	for _, v := range e.vars {
		if _, ok := assign[v]; ok {
			continue
		}
		deg := len(e.varToCons[v])
		if !found || deg > bestDeg {
			best, bestDeg, found = v, deg, true
		}
	}
	return best, found
}
