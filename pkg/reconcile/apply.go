package reconcile

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/internal/telemetry"
)

// State is a position in the apply state machine:
//
//	Idle -> Deleting -> Setting -> Done
//	          |            |
//	          +-> Failed <-+
type State int

const (
	StateIdle State = iota
	StateDeleting
	StateSetting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDeleting:
		return "deleting"
	case StateSetting:
		return "setting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step names the sink call an apply failed in.
type Step string

const (
	StepDelete Step = "delete"
	StepSet    Step = "set"
)

// KeyDeleter removes parameters from a section.
type KeyDeleter interface {
	DeleteKeys(ctx context.Context, section string, keys []string) error
}

// KeySetter writes parameters to a section.
type KeySetter interface {
	SetKeys(ctx context.Context, section string, parms map[string]string) error
}

// Metrics observes apply runs. Implementations must be safe for concurrent
// use. A nil Metrics disables collection.
type Metrics interface {
	ObserveApply(state State, duration time.Duration)
	ObserveStep(step Step, duration time.Duration, err error)
}

// ApplyError is returned when a sink call fails. Error returns the sink's
// message unchanged.
type ApplyError struct {
	Step    Step
	Section string
	Message string
	Err     error
}

func (e *ApplyError) Error() string { return e.Message }
func (e *ApplyError) Unwrap() error { return e.Err }

// Outcome describes one apply run.
type Outcome struct {
	Section  string        `json:"section"`
	State    State         `json:"-"`
	Delta    Delta         `json:"delta"`
	Path     []State       `json:"-"`
	Err      *ApplyError   `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Orchestrator applies deltas: deletions first, then sets, halting at the
// first failed step. Nothing is retried or rolled back; callers re-read the
// configuration afterwards to learn the resulting state.
type Orchestrator struct {
	deleter KeyDeleter
	setter  KeySetter
	metrics Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics attaches a metrics observer.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator creates an orchestrator over the two sinks.
func NewOrchestrator(deleter KeyDeleter, setter KeySetter, opts ...Option) *Orchestrator {
	o := &Orchestrator{deleter: deleter, setter: setter}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Apply runs the delete-then-set sequence for section. Empty halves are
// skipped without calling their sink. On failure the returned error is an
// *ApplyError and the outcome's State is StateFailed; deletions that already
// succeeded stay applied.
func (o *Orchestrator) Apply(ctx context.Context, section string, delta Delta) (*Outcome, error) {
	ctx, span := telemetry.StartApplySpan(ctx, section, len(delta.ToSet), len(delta.ToDelete))
	defer span.End()
	ctx = telemetry.WithLogContext(ctx)

	out := &Outcome{Section: section, Delta: delta, State: StateIdle, Path: []State{StateIdle}}
	start := time.Now()

	transition := func(s State) {
		logger.DebugCtx(ctx, "Apply state transition",
			logger.Section(section), logger.State(s.String()))
		out.State = s
		out.Path = append(out.Path, s)
	}

	finish := func(err *ApplyError) (*Outcome, error) {
		out.Duration = time.Since(start)
		span.SetAttributes(telemetry.State(out.State.String()))
		if o.metrics != nil {
			o.metrics.ObserveApply(out.State, out.Duration)
		}
		if err != nil {
			out.Err = err
			telemetry.RecordError(ctx, err)
			logger.WarnCtx(ctx, "Apply failed",
				logger.Section(section), logger.Step(string(err.Step)), logger.Err(err),
				logger.DurationMs(logger.Duration(start)))
			return out, err
		}
		span.SetStatus(codes.Ok, "")
		logger.InfoCtx(ctx, "Apply complete",
			logger.Section(section), logger.ToSet(len(delta.ToSet)), logger.ToDelete(len(delta.ToDelete)),
			logger.DurationMs(logger.Duration(start)))
		return out, nil
	}

	transition(StateDeleting)
	if len(delta.ToDelete) > 0 {
		if err := o.step(ctx, StepDelete, section, func(ctx context.Context) error {
			return o.deleter.DeleteKeys(ctx, section, delta.ToDelete)
		}); err != nil {
			transition(StateFailed)
			return finish(err)
		}
	}

	transition(StateSetting)
	if len(delta.ToSet) > 0 {
		if err := o.step(ctx, StepSet, section, func(ctx context.Context) error {
			return o.setter.SetKeys(ctx, section, delta.ToSet)
		}); err != nil {
			transition(StateFailed)
			return finish(err)
		}
	}

	transition(StateDone)
	return finish(nil)
}

func (o *Orchestrator) step(ctx context.Context, step Step, section string, call func(context.Context) error) *ApplyError {
	if err := ctx.Err(); err != nil {
		return &ApplyError{Step: step, Section: section, Message: err.Error(), Err: err}
	}

	spanName := telemetry.SpanApplySet
	if step == StepDelete {
		spanName = telemetry.SpanApplyDelete
	}
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()
	span.SetAttributes(telemetry.Section(section), telemetry.Step(string(step)))

	start := time.Now()
	err := call(ctx)
	if o.metrics != nil {
		o.metrics.ObserveStep(step, time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		return &ApplyError{Step: step, Section: section, Message: err.Error(), Err: err}
	}
	return nil
}
