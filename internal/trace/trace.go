// Package trace provides optional structured instrumentation for the
// inference core. It is adapted from the teacher's SolverMonitor hook on
// FDStore (pkg/minikanren/pool.go): there, a monitor records search
// statistics (depth, backtracks, queue size) purely as counters; here, the
// same idea is generalized to emit structured log events through
// zerolog, matching the logging library the zk-proving repo in the pack
// uses for its own deterministic pipeline stages.
//
// An Observer carries no state the algorithm depends on: attaching one
// never changes what a decision returns, only what gets logged about how
// it was reached.
package trace

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tanobar/minesweeper-prj/pkg/mines"
)

// Observer receives structured events from one inference call.
type Observer struct {
	logger zerolog.Logger
	id     uuid.UUID
}

// NewObserver creates an Observer writing leveled, structured events through
// logger (a logger on os.Stderr is the common case, wired by cmd/minedemo). Each Observer is
// tagged with a fresh decision correlation ID; callers that want one ID per
// ChooseAction invocation should call NewDecision on it rather than
// constructing a new top-level Observer per call, so the logger and its
// sink are reused across the process's lifetime.
func NewObserver(logger zerolog.Logger) *Observer {
	return &Observer{logger: logger, id: uuid.New()}
}

// NewStderrObserver is a convenience constructor for the common CLI case.
func NewStderrObserver() *Observer {
	return NewObserver(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
}

// NewDecision returns an Observer sharing this one's logger but tagged with
// a freshly minted correlation ID, so every trace line emitted during one
// ChooseAction invocation — across Infer, ComputeRisk, and the final
// ActionChosen — can be grouped by that single ID. Satisfies mines.Observer.
func (o *Observer) NewDecision() mines.Observer {
	if o == nil {
		return nil
	}
	return NewObserver(o.logger)
}

// DecisionID returns this Observer's correlation ID as a string.
func (o *Observer) DecisionID() string {
	if o == nil {
		return ""
	}
	return o.id.String()
}

func (o *Observer) event(level zerolog.Level) *zerolog.Event {
	return o.logger.WithLevel(level).Str("decision_id", o.DecisionID())
}

// ComponentBuilt logs one frontier component's size and constraint count
// right after decomposition.
func (o *Observer) ComponentBuilt(index, vars, constraints int) {
	if o == nil {
		return
	}
	o.event(zerolog.DebugLevel).
		Int("component", index).
		Int("vars", vars).
		Int("constraints", constraints).
		Msg("frontier component built")
}

// PropagationDone logs the outcome of GAC on one component.
func (o *Observer) PropagationDone(index int, safe, mines int, consistent bool) {
	if o == nil {
		return
	}
	o.event(zerolog.DebugLevel).
		Int("component", index).
		Int("safe", safe).
		Int("mines", mines).
		Bool("consistent", consistent).
		Msg("gac propagation complete")
}

// EnumerationTruncated logs that a component's exact enumeration hit the
// solution cap and was demoted to the fallback prior.
func (o *Observer) EnumerationTruncated(index, maxSolutions int) {
	if o == nil {
		return
	}
	o.event(zerolog.WarnLevel).
		Int("component", index).
		Int("max_solutions", maxSolutions).
		Msg("exact enumeration truncated, falling back to prior")
}

// CalibrationApplied logs that soft calibration rescaled the non-exact
// probabilities toward the mine budget.
func (o *Observer) CalibrationApplied(scale, targetFlex, sumFlex float64) {
	if o == nil {
		return
	}
	o.event(zerolog.DebugLevel).
		Float64("scale", scale).
		Float64("target_flex", targetFlex).
		Float64("sum_flex", sumFlex).
		Msg("soft calibration applied")
}

// ActionChosen logs the final decision.
func (o *Observer) ActionChosen(kind string, count int) {
	if o == nil {
		return
	}
	o.event(zerolog.InfoLevel).
		Str("action", kind).
		Int("count", count).
		Msg("action chosen")
}
