package mines

import (
	"context"
	"math"
)

// ActionKind discriminates the variants of Action.
type ActionKind uint8

const (
	// ActionFlagAll flags every provable, not-yet-flagged mine.
	ActionFlagAll ActionKind = iota
	// ActionRevealAllSafe reveals every provable, not-yet-revealed safe cell.
	ActionRevealAllSafe
	// ActionReveal reveals a single chosen cell (the minimum-risk pick).
	ActionReveal
	// ActionNone indicates no unknown cell remains.
	ActionNone
)

// Action is the single decision produced by ChooseAction, per spec §6.
type Action struct {
	Kind      ActionKind
	Positions []Position // FlagAll/RevealAllSafe
	Position  Position   // Reveal
}

// tieEpsilon is the tolerance within which two risk values are treated as
// tied before applying the informativeness tie-break, per spec §4.8.
const tieEpsilon = 1e-12

// Infer runs constraint construction, GAC, and the deductive backtracker
// (spec §4.2-§4.5) and returns every position provably safe or mined.
// Safe and Mines are always disjoint (spec §8). A component-local
// ErrImpossibleObservation does not abort the call: that component simply
// contributes no deductions (it is left to the risk estimator, whose
// fallback prior absorbs the inconsistency per spec §7); a full-grid
// ErrInvalidGrid does abort.
func Infer(ctx context.Context, k Knowledge, knownMines map[Position]struct{}, opts ...Option) (Deductions, error) {
	co := buildOptions(opts)
	constraints, _, err := BuildConstraints(k, knownMines)
	if err != nil {
		return Deductions{}, err
	}
	components := Decompose(constraints)

	var out Deductions
	for i, comp := range components {
		if err := checkContext(ctx); err != nil {
			return Deductions{}, err
		}
		if co.observer != nil {
			co.observer.ComponentBuilt(i, len(comp.Vars), len(comp.Constraints))
		}
		domains, gacErr := propagateGAC(comp.Vars, comp.Constraints)
		if gacErr != nil {
			// Inconsistent component: no deductions from it, defer to risk.
			if co.observer != nil {
				co.observer.PropagationDone(i, 0, 0, false)
			}
			continue
		}
		gacDeductions := deductionsFromDomains(domains)
		if co.observer != nil {
			co.observer.PropagationDone(i, len(gacDeductions.Safe), len(gacDeductions.Mines), true)
		}
		out.Safe = append(out.Safe, gacDeductions.Safe...)
		out.Mines = append(out.Mines, gacDeductions.Mines...)

		btDeductions, err := deductiveBacktrack(ctx, comp, domains)
		if err != nil {
			return Deductions{}, err
		}
		out.Safe = append(out.Safe, btDeductions.Safe...)
		out.Mines = append(out.Mines, btDeductions.Mines...)
	}

	sortPositions(out.Safe)
	sortPositions(out.Mines)
	return out, nil
}

// Risk computes a P(mine) map for every current Unknown cell, per spec
// §4.7.
func Risk(ctx context.Context, k Knowledge, knownMines map[Position]struct{}, totalMines *int, cfg RiskConfig, opts ...Option) (map[Position]float64, error) {
	return ComputeRisk(ctx, k, knownMines, totalMines, cfg, opts...)
}

// informativeness is the count of unknown 8-neighbors of p, the tie-break
// score from spec §4.8 (and original_source's _info_score).
func informativeness(k Knowledge, p Position) int {
	count := 0
	for _, n := range k.Neighbors(p) {
		if k.At(n).Kind == Unknown {
			count++
		}
	}
	return count
}

// ChooseAction applies the precedence from spec §4.8: flag every provable
// mine, else reveal every provable safe cell, else pick the minimum-risk
// unknown cell (informativeness tie-break, then row-major position),
// else (no unknown cells remain) ActionNone.
func ChooseAction(ctx context.Context, k Knowledge, movesMade, knownMines map[Position]struct{}, totalMines *int, cfg RiskConfig, opts ...Option) (Action, error) {
	co := buildOptions(opts)

	// Tag this invocation with its own decision-scoped observer (a fresh
	// google/uuid-backed correlation id in internal/trace's
	// implementation) so every trace line this call emits, directly or
	// via Infer/ComputeRisk below, carries the same id.
	callOpts := opts
	if co.observer != nil {
		decision := co.observer.NewDecision()
		co.observer = decision
		callOpts = []Option{WithTrace(decision)}
	}

	deductions, err := Infer(ctx, k, knownMines, callOpts...)
	if err != nil {
		return Action{}, err
	}

	var unflagged []Position
	for _, m := range deductions.Mines {
		if k.At(m).Kind != Flagged {
			unflagged = append(unflagged, m)
		}
	}
	if len(unflagged) > 0 {
		sortPositions(unflagged)
		act := Action{Kind: ActionFlagAll, Positions: unflagged}
		if co.observer != nil {
			co.observer.ActionChosen("FlagAll", len(unflagged))
		}
		return act, nil
	}

	var unrevealed []Position
	for _, s := range deductions.Safe {
		if k.At(s).Kind != Revealed {
			unrevealed = append(unrevealed, s)
		}
	}
	if len(unrevealed) > 0 {
		sortPositions(unrevealed)
		act := Action{Kind: ActionRevealAllSafe, Positions: unrevealed}
		if co.observer != nil {
			co.observer.ActionChosen("RevealAllSafe", len(unrevealed))
		}
		return act, nil
	}

	if len(k.UnknownPositions()) == 0 {
		if co.observer != nil {
			co.observer.ActionChosen("NoMove", 0)
		}
		return Action{Kind: ActionNone}, nil
	}

	forbidden := make(map[Position]struct{}, len(movesMade)+len(knownMines))
	for p := range movesMade {
		forbidden[p] = struct{}{}
	}
	for p := range knownMines {
		forbidden[p] = struct{}{}
	}

	probs, err := ComputeRisk(ctx, k, knownMines, totalMines, cfg, callOpts...)
	if err != nil {
		return Action{}, err
	}

	var candidates []Position
	for p := range probs {
		if _, blocked := forbidden[p]; blocked {
			continue
		}
		if k.At(p).Kind != Unknown {
			continue
		}
		candidates = append(candidates, p)
	}

	if len(candidates) == 0 {
		// Fallback: first unknown, non-forbidden cell in row-major order.
		for _, p := range k.UnknownPositions() {
			if _, blocked := forbidden[p]; !blocked {
				if co.observer != nil {
					co.observer.ActionChosen("Reveal(fallback)", 1)
				}
				return Action{Kind: ActionReveal, Position: p}, nil
			}
		}
		if co.observer != nil {
			co.observer.ActionChosen("NoMove", 0)
		}
		return Action{Kind: ActionNone}, nil
	}

	sortPositions(candidates)
	pmin := math.Inf(1)
	for _, p := range candidates {
		if probs[p] < pmin {
			pmin = probs[p]
		}
	}

	var bucket []Position
	for _, p := range candidates {
		if math.Abs(probs[p]-pmin) <= tieEpsilon {
			bucket = append(bucket, p)
		}
	}

	best := bucket[0]
	bestInfo := informativeness(k, best)
	for _, p := range bucket[1:] {
		info := informativeness(k, p)
		if info > bestInfo || (info == bestInfo && p.Less(best)) {
			best, bestInfo = p, info
		}
	}

	if co.observer != nil {
		co.observer.ActionChosen("Reveal", 1)
	}
	return Action{Kind: ActionReveal, Position: best}, nil
}
