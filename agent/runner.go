package agent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/contentpipe/internal/metrics"
	"github.com/BaSui01/contentpipe/state"
)

// Result is the outcome of one wrapped agent execution. Failures are
// expressed through the state's failed status, not through an error value,
// so callers always receive a usable state.
type Result struct {
	State   *state.WorkflowState
	Success bool
}

// Runner is the public invocation point for an agent. It validates the
// inbound state, normalizes the workflow status, runs the agent, and
// converts any execution error into a terminal failed status on the state.
type Runner struct {
	agent   Agent
	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMetrics attaches a metrics collector to the runner.
func WithMetrics(c *metrics.Collector) RunnerOption {
	return func(r *Runner) {
		r.metrics = c
	}
}

// NewRunner wraps an agent with validation, logging, and error containment.
func NewRunner(a Agent, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		agent:  a,
		logger: logger.With(zap.String("component", "agent_runner"), zap.String("agent", a.Name())),
		tracer: otel.Tracer("github.com/BaSui01/contentpipe/agent"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the wrapped agent's routing name.
func (r *Runner) Name() string {
	return r.agent.Name()
}

// Run executes the agent against the state. Validation failures and
// execution errors degrade the workflow to a failed status instead of
// propagating; the returned state is always non-nil.
func (r *Runner) Run(ctx context.Context, st *state.WorkflowState) *Result {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "agent.run",
		trace.WithAttributes(
			attribute.String("agent.name", r.agent.Name()),
			attribute.String("workflow.id", st.WorkflowID),
		),
	)
	defer span.End()

	if err := st.Validate(); err != nil {
		verr := NewValidationError(r.agent.Name(), "invalid workflow state").WithCause(err)
		return r.fail(span, st, verr, start)
	}

	st.CurrentAgent = r.agent.Name()
	if st.Status == state.StatusInitiated {
		st.Status = state.StatusInProgress
	}

	r.logger.Debug("agent execution starting",
		zap.String("workflow_id", st.WorkflowID),
		zap.Int("step_count", st.StepCount),
	)

	updated, err := r.agent.Execute(ctx, st)
	if err != nil {
		return r.fail(span, st, err, start)
	}
	if updated == nil {
		// An agent returning nil state is a contract violation, treated the
		// same as any other execution failure.
		return r.fail(span, st, NewExecutionError(r.agent.Name(), "agent returned nil state"), start)
	}

	updated.IncrementStep()
	updated.CurrentAgent = r.agent.Name()
	if updated.Status == state.StatusInitiated {
		updated.Status = state.StatusInProgress
	}

	r.metrics.RecordAgentExecution(r.agent.Name(), "success", time.Since(start))
	r.logger.Debug("agent execution completed",
		zap.String("workflow_id", updated.WorkflowID),
		zap.Int("step_count", updated.StepCount),
		zap.Duration("duration", time.Since(start)),
	)

	return &Result{State: updated, Success: true}
}

// fail logs the error, records it on the state, and marks the workflow
// failed. The partially mutated state is returned so the caller can inspect
// how far the run progressed.
func (r *Runner) fail(span trace.Span, st *state.WorkflowState, err error, start time.Time) *Result {
	code := CodeOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	r.logger.Error("agent execution failed",
		zap.String("workflow_id", st.WorkflowID),
		zap.String("error_code", string(code)),
		zap.Error(err),
	)

	st.RecordError(r.agent.Name(), string(code), err.Error())
	st.Status = state.StatusFailed
	r.metrics.RecordAgentExecution(r.agent.Name(), "failed", time.Since(start))

	return &Result{State: st, Success: false}
}
