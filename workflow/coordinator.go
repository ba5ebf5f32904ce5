package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/contentpipe/agent"
	"github.com/BaSui01/contentpipe/internal/metrics"
	"github.com/BaSui01/contentpipe/state"
)

// Coordinator is the high-level entry point of the content pipeline. It
// assembles the default agent roster, router, and engine, and exposes the
// handful of operations callers actually need.
type Coordinator struct {
	engine   *Engine
	logger   *zap.Logger
	roster   map[string]agent.Agent
	store    CheckpointStore
	metrics  *metrics.Collector
	maxSteps int
	parallel bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorCheckpointStore enables checkpointed runs.
func WithCoordinatorCheckpointStore(store CheckpointStore) CoordinatorOption {
	return func(c *Coordinator) {
		c.store = store
	}
}

// WithCoordinatorMaxSteps overrides the engine step ceiling.
func WithCoordinatorMaxSteps(n int) CoordinatorOption {
	return func(c *Coordinator) {
		c.maxSteps = n
	}
}

// WithCoordinatorParallelGeneration switches the generation phases to the
// concurrent fan-out node.
func WithCoordinatorParallelGeneration(enabled bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.parallel = enabled
	}
}

// WithCoordinatorMetrics attaches a metrics collector to the engine and all
// agent runners.
func WithCoordinatorMetrics(m *metrics.Collector) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithAgent replaces or adds a roster agent, keyed by the agent's own
// routing name. The usual use is swapping a stub backend for a real one.
func WithAgent(a agent.Agent) CoordinatorOption {
	return func(c *Coordinator) {
		c.roster[a.Name()] = a
	}
}

// NewCoordinator builds the pipeline with the default roster.
func NewCoordinator(logger *zap.Logger, opts ...CoordinatorOption) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		logger:   logger.With(zap.String("component", "coordinator")),
		maxSteps: DefaultMaxSteps,
		roster: map[string]agent.Agent{
			agent.NameInputAnalyzer:    agent.NewInputAnalyzer(),
			agent.NameContentPlanner:   agent.NewContentPlanner(),
			agent.NameTextGenerator:    agent.NewTextGenerator(),
			agent.NameImageGenerator:   agent.NewImageGenerator(),
			agent.NameAudioProcessor:   agent.NewAudioProcessor(),
			agent.NameBrandVoice:       agent.NewBrandVoice(),
			agent.NameCrossPlatform:    agent.NewCrossPlatform(),
			agent.NameQualityAssurance: agent.NewQualityAssurance(),
			agent.NameHumanReview:      agent.NewHumanReview(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.parallel {
		c.roster[agent.NameParallelGeneration] = NewParallelGeneration(
			c.roster[agent.NameTextGenerator],
			c.roster[agent.NameImageGenerator],
			c.roster[agent.NameAudioProcessor],
		)
	}

	runners := make([]*agent.Runner, 0, len(c.roster))
	for _, a := range c.roster {
		runners = append(runners, agent.NewRunner(a, logger, agent.WithMetrics(c.metrics)))
	}

	engineOpts := []EngineOption{
		WithMaxSteps(c.maxSteps),
		WithEngineMetrics(c.metrics),
	}
	if c.store != nil {
		engineOpts = append(engineOpts, WithCheckpointStore(c.store))
	}
	c.engine = NewEngine(runners, NewContentRouter(WithParallelGeneration(c.parallel)), logger, engineOpts...)
	return c
}

// Engine exposes the underlying engine for callers that need background or
// checkpointed execution directly.
func (c *Coordinator) Engine() *Engine {
	return c.engine
}

// Run executes one content workflow from raw input to final state. The
// final_content summary is assembled only on successful completion.
func (c *Coordinator) Run(ctx context.Context, input map[string]any, opts ...state.Option) (*state.WorkflowState, error) {
	st := state.New(input, opts...)
	c.logger.Info("workflow starting",
		zap.String("workflow_id", st.WorkflowID),
		zap.String("user_id", st.UserID),
	)

	final, err := c.engine.Execute(ctx, st)
	if err != nil {
		return final, err
	}
	if final.Status == state.StatusCompleted {
		c.assembleFinalContent(final)
	}
	return final, nil
}

// RunWithCheckpoint executes with persistence under threadID, pausing for
// human review.
func (c *Coordinator) RunWithCheckpoint(ctx context.Context, input map[string]any, threadID string, opts ...state.Option) (*state.WorkflowState, error) {
	st := state.New(input, opts...)
	return c.engine.ExecuteWithCheckpoint(ctx, st, threadID)
}

// Resume continues a paused workflow with the reviewer's feedback.
func (c *Coordinator) Resume(ctx context.Context, threadID string, feedback map[string]any) (*state.WorkflowState, error) {
	final, err := c.engine.Resume(ctx, threadID, feedback)
	if err != nil {
		return final, err
	}
	if final.Status == state.StatusCompleted {
		c.assembleFinalContent(final)
	}
	return final, nil
}

// assembleFinalContent flattens the per-agent artifacts into the delivery
// summary consumers read.
func (c *Coordinator) assembleFinalContent(st *state.WorkflowState) {
	topic, _ := st.OriginalInput["text"].(string)
	platform := "blog"
	if plan, ok := st.PlatformContent["plan"]; ok {
		if p, _ := plan["platform"].(string); p != "" {
			platform = p
		}
	}

	st.FinalContent["topic"] = topic
	st.FinalContent["platform"] = platform
	st.FinalContent["text"] = st.TextContent
	st.FinalContent["images"] = st.ImageContent
	st.FinalContent["audio"] = st.AudioContent
	st.FinalContent["quality_score"] = st.QualityScores["overall"]
	st.FinalContent["feedback_count"] = len(st.HumanFeedback)
	st.FinalContent["assembled_at"] = time.Now().UTC().Format(time.RFC3339)
	st.Touch()
}
