package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/contentpipe/agent"
	"github.com/BaSui01/contentpipe/internal/metrics"
	"github.com/BaSui01/contentpipe/state"
)

// Orchestration faults. These indicate engine or wiring bugs, never business
// failures, and are returned as errors rather than folded into the state.
var (
	// ErrStepCeiling 路由循环超过步数上限
	ErrStepCeiling = errors.New("step ceiling exceeded")
	// ErrUnknownAgent 路由器返回了未注册的节点名
	ErrUnknownAgent = errors.New("router selected unknown agent")
	// ErrNoSavedState 恢复或重试时没有可用的检查点
	ErrNoSavedState = errors.New("no saved state for thread")
	// ErrRetriesExhausted 重试次数用尽
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// DefaultMaxSteps is the routing-loop backstop.
const DefaultMaxSteps = 20

// Engine drives the route→execute→advance loop over a set of named agent
// runners. One Engine serves many concurrent workflow runs; it holds no
// per-run state.
type Engine struct {
	runners       map[string]*agent.Runner
	router        Router
	store         CheckpointStore
	interruptName string
	maxSteps      int
	logger        *zap.Logger
	metrics       *metrics.Collector
	tracer        trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCheckpointStore enables the checkpointed execution mode.
func WithCheckpointStore(store CheckpointStore) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithMaxSteps overrides the step ceiling.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithInterruptBefore names the agent the checkpointed mode pauses in front
// of. Defaults to the human review gate.
func WithInterruptBefore(agentName string) EngineOption {
	return func(e *Engine) {
		e.interruptName = agentName
	}
}

// WithEngineMetrics attaches a metrics collector.
func WithEngineMetrics(c *metrics.Collector) EngineOption {
	return func(e *Engine) {
		e.metrics = c
	}
}

// NewEngine builds an engine over the given runners and router.
func NewEngine(runners []*agent.Runner, router Router, logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]*agent.Runner, len(runners))
	for _, r := range runners {
		byName[r.Name()] = r
	}
	e := &Engine{
		runners:       byName,
		router:        router,
		interruptName: agent.NameHumanReview,
		maxSteps:      DefaultMaxSteps,
		logger:        logger.With(zap.String("component", "workflow_engine")),
		tracer:        otel.Tracer("github.com/BaSui01/contentpipe/workflow"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the workflow synchronously to termination. Business failures
// come back as a failed status on the returned state; the error return is
// reserved for orchestration faults.
func (e *Engine) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	return e.run(ctx, st, "")
}

// ExecuteWithCheckpoint runs the loop persisting the state after every step
// under threadID, and pauses in front of the interrupt agent: the state is
// parked as waiting-human, checkpointed, and returned without a terminal
// status. Resume continues it.
func (e *Engine) ExecuteWithCheckpoint(ctx context.Context, st *state.WorkflowState, threadID string) (*state.WorkflowState, error) {
	if e.store == nil {
		return nil, fmt.Errorf("checkpointed execution requires a checkpoint store")
	}
	return e.run(ctx, st, threadID)
}

// Resume loads the thread's checkpoint, appends the feedback record, and
// continues the run to termination. A missing checkpoint is a fatal
// orchestration fault.
func (e *Engine) Resume(ctx context.Context, threadID string, feedback map[string]any) (*state.WorkflowState, error) {
	if e.store == nil {
		return nil, fmt.Errorf("resume requires a checkpoint store")
	}
	st, err := e.store.Load(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrCheckpointNotFound) {
			return nil, fmt.Errorf("resume %s: %w", threadID, ErrNoSavedState)
		}
		return nil, fmt.Errorf("resume %s: %w", threadID, err)
	}

	if feedback != nil {
		st.HumanFeedback = append(st.HumanFeedback, feedback)
	}
	if st.Status == state.StatusWaitingHuman {
		st.Status = state.StatusInProgress
	}
	st.Touch()

	e.logger.Info("resuming workflow",
		zap.String("thread_id", threadID),
		zap.String("workflow_id", st.WorkflowID),
		zap.Int("step_count", st.StepCount),
	)
	return e.run(ctx, st, threadID)
}

// Retry reloads the last checkpoint and re-invokes the remaining graph,
// sleeping backoffBase * 2^(attempt-1) between attempts. It gives up after
// maxRetries with an error embedding the last failure.
func (e *Engine) Retry(ctx context.Context, threadID string, maxRetries int, backoffBase time.Duration) (*state.WorkflowState, error) {
	if e.store == nil {
		return nil, fmt.Errorf("retry requires a checkpoint store")
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			backoff := backoffBase * time.Duration(1<<(attempt-2))
			e.logger.Warn("retry backing off",
				zap.String("thread_id", threadID),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		st, err := e.store.Load(ctx, threadID)
		if err != nil {
			if errors.Is(err, ErrCheckpointNotFound) {
				return nil, fmt.Errorf("retry %s: %w", threadID, ErrNoSavedState)
			}
			return nil, fmt.Errorf("retry %s: %w", threadID, err)
		}
		if st.Status == state.StatusFailed {
			st.Status = state.StatusInProgress
		}

		final, err := e.run(ctx, st, threadID)
		if err != nil {
			lastErr = err
			continue
		}
		if final.Status == state.StatusFailed {
			if rec, ok := final.LastError(); ok {
				lastErr = fmt.Errorf("attempt %d failed at %s: %s", attempt, rec.Agent, rec.Message)
			} else {
				lastErr = fmt.Errorf("attempt %d failed", attempt)
			}
			continue
		}
		return final, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, maxRetries, lastErr)
}

// Execution is the handle for a background run.
type Execution struct {
	done  chan struct{}
	state *state.WorkflowState
	err   error
}

// Wait blocks until the run finishes or the context is done.
func (x *Execution) Wait(ctx context.Context) (*state.WorkflowState, error) {
	select {
	case <-x.done:
		return x.state, x.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done exposes the completion channel for select loops.
func (x *Execution) Done() <-chan struct{} {
	return x.done
}

// RunInBackground schedules the full run on its own goroutine and returns a
// handle. The optional onComplete callback is invoked best-effort: a panic
// inside it is logged and swallowed so it cannot corrupt the run's result.
func (e *Engine) RunInBackground(st *state.WorkflowState, onComplete func(*state.WorkflowState, error)) *Execution {
	x := &Execution{done: make(chan struct{})}
	go func() {
		defer close(x.done)
		final, err := e.run(context.Background(), st, "")
		x.state, x.err = final, err
		if onComplete == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("completion callback panicked", zap.Any("panic", r))
			}
		}()
		onComplete(final, err)
	}()
	return x
}

// run is the shared route→execute→advance loop. A non-empty threadID enables
// checkpointing and the interrupt-before pause.
func (e *Engine) run(ctx context.Context, st *state.WorkflowState, threadID string) (*state.WorkflowState, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "workflow.run",
		trace.WithAttributes(
			attribute.String("workflow.id", st.WorkflowID),
			attribute.String("workflow.thread_id", threadID),
		),
	)
	defer span.End()

	if st.Status.Terminal() {
		// Re-invoking on a settled state is a no-op.
		return st, nil
	}

	for steps := 0; ; steps++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if steps >= e.maxSteps {
			e.metrics.RecordWorkflowExecution("step_ceiling", time.Since(start))
			return st, fmt.Errorf("%w: %d iterations on workflow %s (last agent %s)",
				ErrStepCeiling, e.maxSteps, st.WorkflowID, st.CurrentAgent)
		}

		next := e.router.Route(st)
		if next == End {
			break
		}

		if threadID != "" && next == e.interruptName && len(st.HumanFeedback) == 0 {
			st.Status = state.StatusWaitingHuman
			st.Touch()
			if err := e.store.Save(ctx, threadID, st); err != nil {
				return st, fmt.Errorf("checkpoint before interrupt: %w", err)
			}
			e.metrics.RecordCheckpointSave("engine", "interrupt")
			e.logger.Info("workflow interrupted for human review",
				zap.String("workflow_id", st.WorkflowID),
				zap.String("thread_id", threadID),
				zap.Int("step_count", st.StepCount),
			)
			return st, nil
		}

		runner, ok := e.runners[next]
		if !ok {
			return st, fmt.Errorf("%w: %q", ErrUnknownAgent, next)
		}

		e.logger.Debug("routing to agent",
			zap.String("workflow_id", st.WorkflowID),
			zap.String("agent", next),
			zap.Int("step_count", st.StepCount),
		)

		res := runner.Run(ctx, st)
		st = res.State
		e.metrics.RecordWorkflowStep()

		if threadID != "" {
			if err := e.store.Save(ctx, threadID, st); err != nil {
				return st, fmt.Errorf("checkpoint after %s: %w", next, err)
			}
			e.metrics.RecordCheckpointSave("engine", "step")
		}

		if st.Status == state.StatusWaitingHuman {
			// The review gate parked the run; hand control back to the caller.
			return st, nil
		}
	}

	if !st.Status.Terminal() {
		st.Status = state.StatusCompleted
		st.Touch()
	}
	if threadID != "" {
		if err := e.store.Save(ctx, threadID, st); err != nil {
			return st, fmt.Errorf("checkpoint final state: %w", err)
		}
	}

	e.metrics.RecordWorkflowExecution(string(st.Status), time.Since(start))
	e.logger.Info("workflow finished",
		zap.String("workflow_id", st.WorkflowID),
		zap.String("status", string(st.Status)),
		zap.Int("step_count", st.StepCount),
		zap.Duration("duration", time.Since(start)),
	)
	return st, nil
}
