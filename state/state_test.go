package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := New(map[string]any{"text": "AI in healthcare"})

	assert.NotEmpty(t, s.WorkflowID)
	assert.Equal(t, StatusInitiated, s.Status)
	assert.Equal(t, 0, s.StepCount)
	assert.Equal(t, "AI in healthcare", s.OriginalInput["text"])
	assert.NotNil(t, s.TextContent)
	assert.NotNil(t, s.QualityScores)
	assert.Empty(t, s.HumanFeedback)
}

func TestNew_UniqueIDs(t *testing.T) {
	a := New(nil)
	b := New(nil)
	assert.NotEqual(t, a.WorkflowID, b.WorkflowID)
}

func TestNew_Options(t *testing.T) {
	s := New(nil, WithUserID("u-1"), WithWorkflowID("wf-fixed"))
	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, "wf-fixed", s.WorkflowID)
}

func TestIncrementStep(t *testing.T) {
	s := New(nil)
	before := s.UpdatedAt
	time.Sleep(time.Millisecond)

	s.IncrementStep()
	s.IncrementStep()

	assert.Equal(t, 2, s.StepCount)
	assert.True(t, s.UpdatedAt.After(before))
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusInitiated, false},
		{StatusInProgress, false},
		{StatusWaitingHuman, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.Terminal())
		})
	}
}

func TestRecordError(t *testing.T) {
	s := New(nil)
	s.RecordError("TextGenerator", "agent_execution_error", "provider unavailable")

	rec, ok := s.LastError()
	require.True(t, ok)
	assert.Equal(t, "TextGenerator", rec.Agent)
	assert.Equal(t, "agent_execution_error", rec.Code)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestClone_Isolation(t *testing.T) {
	s := New(map[string]any{"topic": "go"})
	s.TextContent["body"] = "original"
	s.PlatformContent["plan"] = map[string]any{"sections": float64(3)}
	s.HumanFeedback = append(s.HumanFeedback, map[string]any{"approved": true})

	clone, err := s.Clone()
	require.NoError(t, err)

	clone.TextContent["body"] = "mutated"
	clone.PlatformContent["plan"]["sections"] = float64(9)
	clone.HumanFeedback[0]["approved"] = false

	assert.Equal(t, "original", s.TextContent["body"])
	assert.Equal(t, float64(3), s.PlatformContent["plan"]["sections"])
	assert.Equal(t, true, s.HumanFeedback[0]["approved"])
}

func TestJSONRoundTrip_RestoresEmptyMaps(t *testing.T) {
	data := []byte(`{"workflow_id":"wf-1","status":"in_progress","step_count":2}`)

	var s WorkflowState
	require.NoError(t, json.Unmarshal(data, &s))

	// Content mappings must be writable after decoding a sparse snapshot.
	assert.NotNil(t, s.TextContent)
	assert.NotNil(t, s.ImageContent)
	assert.NotNil(t, s.AudioContent)
	assert.NotNil(t, s.QualityScores)
	assert.NotNil(t, s.OriginalInput)
	s.TextContent["body"] = "ok"
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorkflowState)
		wantErr error
	}{
		{"valid", func(s *WorkflowState) {}, nil},
		{"missing id", func(s *WorkflowState) { s.WorkflowID = "" }, ErrMissingWorkflowID},
		{"unknown status", func(s *WorkflowState) { s.Status = "paused" }, ErrUnknownStatus},
		{"negative steps", func(s *WorkflowState) { s.StepCount = -1 }, ErrNegativeStepCount},
		{"nil input", func(s *WorkflowState) { s.OriginalInput = nil }, ErrMissingInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(map[string]any{"text": "x"})
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
