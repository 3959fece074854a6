package mines

import "context"

// RiskConfig configures the probabilistic risk module, per spec §6/§4.7.
// Every field travels with the call; there is no global configuration
// state anywhere in this package (spec §9).
type RiskConfig struct {
	// MaxVarsExact is the component-size threshold at or below which a
	// frontier component is enumerated exactly. Recommended 18-22.
	MaxVarsExact int
	// MaxSolutions caps accepted solutions during exact enumeration.
	// Recommended 200,000.
	MaxSolutions int
	// Alpha weights local pressure against the current probability during
	// step 4's blend. Recommended 0.7.
	Alpha float64
	// Calibrate enables step 5's soft rescaling toward the global mine
	// budget. Recommended true.
	Calibrate bool
}

// DefaultRiskConfig returns the recommended configuration from spec §6.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxVarsExact: 22,
		MaxSolutions: DefaultMaxSolutions,
		Alpha:        0.7,
		Calibrate:    true,
	}
}

const calibrationTolerance = 0.10

// ComputeRisk produces P(mine) for every current Unknown cell, following
// the five steps of spec §4.7: exact enumeration on small components,
// a fallback prior on large/degenerate ones, an outside-frontier prior
// that respects the remaining mine budget, a local-pressure blend for
// every non-exact cell, and a soft calibration of the non-exact total
// toward the budget.
func ComputeRisk(ctx context.Context, k Knowledge, knownMines map[Position]struct{}, totalMines *int, cfg RiskConfig, opts ...Option) (map[Position]float64, error) {
	co := buildOptions(opts)
	if err := k.Validate(knownMines); err != nil {
		return nil, err
	}
	if cfg.MaxVarsExact <= 0 {
		cfg.MaxVarsExact = DefaultRiskConfig().MaxVarsExact
	}
	if cfg.MaxSolutions <= 0 {
		cfg.MaxSolutions = DefaultRiskConfig().MaxSolutions
	}

	unknown := k.UnknownPositions()
	var trueUnknown []Position
	for _, p := range unknown {
		if !isKnownMine(k, knownMines, p) {
			trueUnknown = append(trueUnknown, p)
		}
	}
	if len(trueUnknown) == 0 {
		return map[Position]float64{}, nil
	}

	var minesRemaining float64
	haveBudget := totalMines != nil
	var p0Fallback float64
	if haveBudget {
		minesRemaining = float64(*totalMines - len(knownMines))
		if minesRemaining < 0 {
			minesRemaining = 0
		}
		p0Fallback = minesRemaining / float64(len(trueUnknown))
	} else {
		p0Fallback = 0.5
	}

	constraints, _, err := BuildConstraints(k, knownMines)
	if err != nil {
		return nil, err
	}
	components := Decompose(constraints)

	probs := make(map[Position]float64, len(trueUnknown))
	exact := make(map[Position]bool, len(trueUnknown))
	frontier := make(map[Position]bool, len(trueUnknown))

	for i, comp := range components {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		for _, v := range comp.Vars {
			frontier[v] = true
		}
		if co.observer != nil {
			co.observer.ComponentBuilt(i, len(comp.Vars), len(comp.Constraints))
		}
		if len(comp.Vars) <= cfg.MaxVarsExact {
			res, enumErr := EnumerateExact(ctx, comp, cfg.MaxSolutions)
			if enumErr == nil && !res.Truncated {
				for v, p := range res.Marginals {
					probs[v] = p
					exact[v] = true
				}
				continue
			}
			if enumErr == nil && res.Truncated && co.observer != nil {
				co.observer.EnumerationTruncated(i, cfg.MaxSolutions)
			}
		}
		for _, v := range comp.Vars {
			probs[v] = p0Fallback
		}
	}

	// Step 3: outside-frontier prior.
	var outside []Position
	for _, v := range trueUnknown {
		if !frontier[v] {
			outside = append(outside, v)
		}
	}
	if len(outside) > 0 {
		var p0Outside float64
		if !haveBudget {
			p0Outside = p0Fallback
		} else {
			var eFrontier float64
			for v := range frontier {
				eFrontier += probs[v]
			}
			leftForOutside := minesRemaining - eFrontier
			if leftForOutside < 0 {
				leftForOutside = 0
			}
			p0Outside = clampFloat(leftForOutside/float64(len(outside)), 0, 1)
		}
		for _, v := range outside {
			probs[v] = p0Outside
		}
	}

	// Step 4: local-pressure refinement on non-exact cells.
	alpha := cfg.Alpha
	if alpha == 0 {
		alpha = DefaultRiskConfig().Alpha
	}
	for _, v := range trueUnknown {
		if exact[v] {
			continue
		}
		current := probs[v]
		if lp, ok := localPressure(k, knownMines, v); ok {
			probs[v] = (1-alpha)*current + alpha*lp
		}
	}

	// Step 5: soft calibration of non-exact cells toward the budget.
	if cfg.Calibrate && haveBudget {
		var flex []Position
		for _, v := range trueUnknown {
			if !exact[v] {
				flex = append(flex, v)
			}
		}
		if len(flex) > 0 {
			var sExact, sFlex float64
			for v := range exact {
				sExact += probs[v]
			}
			for _, v := range flex {
				sFlex += probs[v]
			}
			targetFlex := minesRemaining - sExact
			if targetFlex < 0 {
				targetFlex = 0
			}
			tol := calibrationTolerance * maxFloat(1, targetFlex)
			if sFlex > 0 && absFloat(sFlex-targetFlex) > tol {
				scale := targetFlex / sFlex
				for _, v := range flex {
					probs[v] = clampFloat(probs[v]*scale, 0, 1)
				}
				if co.observer != nil {
					co.observer.CalibrationApplied(scale, targetFlex, sFlex)
				}
			}
		}
	}

	for _, v := range trueUnknown {
		if _, ok := probs[v]; !ok {
			probs[v] = p0Fallback
		}
	}

	return probs, nil
}

// localPressure computes lp(v): the mean, over v's revealed numeric
// neighbors n, of max(0, value(n) - knownMinesAround(n)) / max(1,
// |unknownNeighborsOf(n)|), clamped to [0,1]. The second bool result is
// false if v has no revealed numeric neighbor to draw pressure from.
func localPressure(k Knowledge, knownMines map[Position]struct{}, v Position) (float64, bool) {
	var ratios []float64
	for _, n := range k.Neighbors(v) {
		cell := k.At(n)
		if cell.Kind != Revealed {
			continue
		}
		neighborsOfN := k.Neighbors(n)
		knownMinesAround := 0
		unknownCount := 0
		for _, nn := range neighborsOfN {
			if isKnownMine(k, knownMines, nn) {
				knownMinesAround++
			} else if k.At(nn).Kind == Unknown {
				unknownCount++
			}
		}
		need := float64(int(cell.Value) - knownMinesAround)
		if need < 0 {
			need = 0
		}
		denom := float64(unknownCount)
		if denom < 1 {
			denom = 1
		}
		ratios = append(ratios, clampFloat(need/denom, 0, 1))
	}
	if len(ratios) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range ratios {
		sum += r
	}
	return sum / float64(len(ratios)), true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
