package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/contentpipe/agent"
	"github.com/BaSui01/contentpipe/state"
)

func TestCoordinatorRun(t *testing.T) {
	c := NewCoordinator(zap.NewNop())

	final, err := c.Run(context.Background(), map[string]any{
		"text":     "Innovative platforms improve developer growth",
		"platform": "linkedin",
	}, state.WithUserID("user-7"))
	require.NoError(t, err)

	assert.Equal(t, state.StatusCompleted, final.Status)
	assert.Equal(t, "user-7", final.UserID)
	assert.Equal(t, "linkedin", final.FinalContent["platform"])
	assert.Equal(t, final.QualityScores["overall"], final.FinalContent["quality_score"])
	assert.Equal(t, 1, final.FinalContent["feedback_count"])
	assert.NotEmpty(t, final.FinalContent["text"])
}

func TestCoordinatorRunFailureSkipsFinalContent(t *testing.T) {
	c := NewCoordinator(zap.NewNop())

	final, err := c.Run(context.Background(), map[string]any{"text": ""})
	require.NoError(t, err)

	assert.Equal(t, state.StatusFailed, final.Status)
	assert.Empty(t, final.FinalContent)
}

func TestCoordinatorCheckpointAndResume(t *testing.T) {
	store := NewMemoryCheckpointStore()
	c := NewCoordinator(zap.NewNop(), WithCoordinatorCheckpointStore(store))

	paused, err := c.RunWithCheckpoint(context.Background(),
		map[string]any{"text": "Checkpointed pipeline run"}, "thread-co")
	require.NoError(t, err)
	require.Equal(t, state.StatusWaitingHuman, paused.Status)

	final, err := c.Resume(context.Background(), "thread-co", map[string]any{
		"reviewer": "bob",
		"approved": true,
		"comment":  "ship it",
	})
	require.NoError(t, err)

	assert.Equal(t, state.StatusCompleted, final.Status)
	assert.Equal(t, 1, final.FinalContent["feedback_count"])
}

func TestCoordinatorParallelGeneration(t *testing.T) {
	c := NewCoordinator(zap.NewNop(), WithCoordinatorParallelGeneration(true))

	final, err := c.Run(context.Background(), map[string]any{
		"text": "Concurrent generation of all content kinds",
	})
	require.NoError(t, err)

	assert.Equal(t, state.StatusCompleted, final.Status)
	assert.NotEmpty(t, final.TextContent)
	assert.NotEmpty(t, final.ImageContent)
	assert.NotEmpty(t, final.AudioContent)
}

func TestCoordinatorAgentOverride(t *testing.T) {
	synth := &recordingSynth{}
	c := NewCoordinator(zap.NewNop(),
		WithAgent(agent.NewAudioProcessor(agent.WithSynthesizer(synth))),
	)

	final, err := c.Run(context.Background(), map[string]any{
		"text": "Audio narration for the weekly digest",
	})
	require.NoError(t, err)

	assert.Equal(t, state.StatusCompleted, final.Status)
	assert.Equal(t, true, final.AudioContent["generated"])
	assert.True(t, synth.called)
}

type recordingSynth struct {
	called bool
}

func (r *recordingSynth) Synthesize(ctx context.Context, text string) (string, error) {
	r.called = true
	return "generated://audio/digest.mp3", nil
}
