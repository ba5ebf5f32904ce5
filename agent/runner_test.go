package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/contentpipe/state"
)

type stubAgent struct {
	name    string
	execute ExecuteFunc
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	return s.execute(ctx, st)
}

func passthrough(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	return st, nil
}

func TestRunnerSuccess(t *testing.T) {
	r := NewRunner(&stubAgent{name: "Stub", execute: passthrough}, zap.NewNop())
	st := state.New(map[string]any{"text": "hello"})

	res := r.Run(context.Background(), st)

	require.True(t, res.Success)
	assert.Equal(t, state.StatusInProgress, res.State.Status)
	assert.Equal(t, "Stub", res.State.CurrentAgent)
	assert.Equal(t, 1, res.State.StepCount)
	assert.Empty(t, res.State.ErrorLog)
}

func TestRunnerContainsExecutionError(t *testing.T) {
	boom := NewExecutionError("Stub", "backend exploded")
	r := NewRunner(&stubAgent{
		name: "Stub",
		execute: func(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
			return nil, boom
		},
	}, zap.NewNop())
	st := state.New(map[string]any{"text": "hello"})

	res := r.Run(context.Background(), st)

	require.False(t, res.Success)
	require.NotNil(t, res.State)
	assert.Equal(t, state.StatusFailed, res.State.Status)
	require.Len(t, res.State.ErrorLog, 1)
	assert.Equal(t, string(CodeExecution), res.State.ErrorLog[0].Code)
	assert.Equal(t, "Stub", res.State.ErrorLog[0].Agent)
}

func TestRunnerContainsPlainError(t *testing.T) {
	r := NewRunner(&stubAgent{
		name: "Stub",
		execute: func(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
			return nil, errors.New("something untyped")
		},
	}, zap.NewNop())
	st := state.New(map[string]any{"text": "hello"})

	res := r.Run(context.Background(), st)

	require.False(t, res.Success)
	assert.Equal(t, state.StatusFailed, res.State.Status)
	require.Len(t, res.State.ErrorLog, 1)
	assert.Equal(t, string(CodeUnknown), res.State.ErrorLog[0].Code)
}

func TestRunnerRejectsInvalidState(t *testing.T) {
	r := NewRunner(&stubAgent{name: "Stub", execute: passthrough}, zap.NewNop())
	st := state.New(map[string]any{"text": "hello"})
	st.WorkflowID = ""

	res := r.Run(context.Background(), st)

	require.False(t, res.Success)
	assert.Equal(t, state.StatusFailed, res.State.Status)
	require.Len(t, res.State.ErrorLog, 1)
	assert.Equal(t, string(CodeValidation), res.State.ErrorLog[0].Code)
}

func TestRunnerNilStateIsFailure(t *testing.T) {
	r := NewRunner(&stubAgent{
		name: "Stub",
		execute: func(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
			return nil, nil
		},
	}, zap.NewNop())
	st := state.New(map[string]any{"text": "hello"})

	res := r.Run(context.Background(), st)

	require.False(t, res.Success)
	require.NotNil(t, res.State)
	assert.Equal(t, state.StatusFailed, res.State.Status)
}

func TestRunnerNormalizesInitiatedStatus(t *testing.T) {
	r := NewRunner(&stubAgent{name: "Stub", execute: passthrough}, zap.NewNop())
	st := state.New(map[string]any{"text": "hello"})
	require.Equal(t, state.StatusInitiated, st.Status)

	res := r.Run(context.Background(), st)

	require.True(t, res.Success)
	assert.Equal(t, state.StatusInProgress, res.State.Status)
}

func TestRunnerPreservesExplicitStatus(t *testing.T) {
	r := NewRunner(&stubAgent{
		name: "Stub",
		execute: func(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
			st.Status = state.StatusWaitingHuman
			return st, nil
		},
	}, zap.NewNop())
	st := state.New(map[string]any{"text": "hello"})

	res := r.Run(context.Background(), st)

	require.True(t, res.Success)
	assert.Equal(t, state.StatusWaitingHuman, res.State.Status)
}
