package mines

import "context"

// Observer receives structured diagnostic events from one Infer/Risk/
// ChooseAction call. It is satisfied by internal/trace.Observer, but
// pkg/mines never imports that package directly — it depends only on this
// narrow interface, keeping the core decoupled from any particular
// logging backend (spec §9: "no global singletons", extended here to "no
// hard dependency on an ambient logging package" either).
type Observer interface {
	ComponentBuilt(index, vars, constraints int)
	PropagationDone(index int, safe, mines int, consistent bool)
	EnumerationTruncated(index, maxSolutions int)
	CalibrationApplied(scale, targetFlex, sumFlex float64)
	ActionChosen(kind string, count int)

	// NewDecision returns an Observer scoped to one new invocation (for
	// example, carrying a freshly minted correlation id), sharing the
	// same underlying sink as the receiver. ChooseAction calls this once
	// per invocation and uses the result for every event the call emits,
	// so all of a single decision's trace lines can be correlated
	// end to end.
	NewDecision() Observer
}

// Option configures an optional, call-scoped behavior. Options never
// change what a call returns, only what it reports about how it got
// there.
type Option func(*callOptions)

type callOptions struct {
	observer Observer
}

func buildOptions(opts []Option) callOptions {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// WithTrace attaches an Observer to one call for structured diagnostic
// logging.
func WithTrace(o Observer) Option {
	return func(co *callOptions) { co.observer = o }
}

// checkContext reports ctx's error, if any. The deductive backtracker and
// the exact enumerator's propagating search call this at each node (the
// naive 2^n search at every eighth level of depth) so a
// cancelled or expired context actually stops work instead of merely
// being decorative, per spec §6.
func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
