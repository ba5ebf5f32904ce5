package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle phase of a workflow run.
type Status string

const (
	StatusInitiated    Status = "initiated"
	StatusInProgress   Status = "in_progress"
	StatusWaitingHuman Status = "waiting_human"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusCancelled    Status = "cancelled"
)

// Terminal reports whether no further agent may run against this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Known reports whether s is one of the defined workflow statuses.
func (s Status) Known() bool {
	switch s {
	case StatusInitiated, StatusInProgress, StatusWaitingHuman,
		StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ErrorRecord captures a single agent failure in the workflow error log.
type ErrorRecord struct {
	Agent     string    `json:"agent"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkflowState is the single mutable aggregate threaded through the
// pipeline. It is owned by the engine for the duration of a run and handed
// to exactly one agent at a time. Progress is inferred from the presence of
// content keys rather than an explicit step pointer, so every agent must
// write its output key even on partial success.
type WorkflowState struct {
	// Workflow management
	WorkflowID   string `json:"workflow_id"`
	UserID       string `json:"user_id,omitempty"`
	Status       Status `json:"status"`
	CurrentAgent string `json:"current_agent,omitempty"`
	StepCount    int    `json:"step_count"`

	// Content data
	OriginalInput   map[string]any            `json:"original_input"`
	InputAnalysis   map[string]any            `json:"input_analysis,omitempty"`
	PlatformContent map[string]map[string]any `json:"platform_content"`
	TextContent     map[string]any            `json:"text_content"`
	ImageContent    map[string]any            `json:"image_content"`
	AudioContent    map[string]any            `json:"audio_content"`

	// Quality control
	QualityScores   map[string]float64 `json:"quality_scores"`
	BrandCompliance map[string]any     `json:"brand_compliance,omitempty"`
	HumanFeedback   []map[string]any   `json:"human_feedback"`

	// Output
	FinalContent map[string]any `json:"final_content,omitempty"`

	// Error handling
	ErrorLog   []ErrorRecord `json:"error_log,omitempty"`
	RetryCount int           `json:"retry_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Option configures a new WorkflowState.
type Option func(*WorkflowState)

// WithUserID attaches an end-user identifier to the state.
func WithUserID(userID string) Option {
	return func(s *WorkflowState) {
		s.UserID = userID
	}
}

// WithWorkflowID overrides the generated workflow id. Intended for tests
// and for replaying externally created runs.
func WithWorkflowID(id string) Option {
	return func(s *WorkflowState) {
		s.WorkflowID = id
	}
}

// New creates a fresh WorkflowState with a unique workflow id and the given
// original input. The input mapping is set once here and treated as
// read-only afterwards.
func New(input map[string]any, opts ...Option) *WorkflowState {
	if input == nil {
		input = make(map[string]any)
	}
	now := time.Now()
	s := &WorkflowState{
		WorkflowID:      uuid.NewString(),
		Status:          StatusInitiated,
		OriginalInput:   input,
		InputAnalysis:   make(map[string]any),
		PlatformContent: make(map[string]map[string]any),
		TextContent:     make(map[string]any),
		ImageContent:    make(map[string]any),
		AudioContent:    make(map[string]any),
		QualityScores:   make(map[string]float64),
		BrandCompliance: make(map[string]any),
		HumanFeedback:   make([]map[string]any, 0),
		FinalContent:    make(map[string]any),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IncrementStep advances the step counter by exactly one.
func (s *WorkflowState) IncrementStep() {
	s.StepCount++
	s.Touch()
}

// Touch updates the modification timestamp.
func (s *WorkflowState) Touch() {
	s.UpdatedAt = time.Now()
}

// RecordError appends a failure record to the error log.
func (s *WorkflowState) RecordError(agent, code, message string) {
	s.ErrorLog = append(s.ErrorLog, ErrorRecord{
		Agent:     agent,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	})
	s.Touch()
}

// LastError returns the most recent error record, if any.
func (s *WorkflowState) LastError() (ErrorRecord, bool) {
	if len(s.ErrorLog) == 0 {
		return ErrorRecord{}, false
	}
	return s.ErrorLog[len(s.ErrorLog)-1], true
}

// Clone returns a deep copy of the state via a JSON round-trip. Used by the
// checkpoint stores and the parallel fan-out so that concurrent readers
// never share mutable maps with the live run.
func (s *WorkflowState) Clone() (*WorkflowState, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	var clone WorkflowState
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &clone, nil
}

// normalizeMaps re-creates nil maps after JSON decoding so callers can write
// into content mappings without nil checks.
func (s *WorkflowState) normalizeMaps() {
	if s.OriginalInput == nil {
		s.OriginalInput = make(map[string]any)
	}
	if s.InputAnalysis == nil {
		s.InputAnalysis = make(map[string]any)
	}
	if s.PlatformContent == nil {
		s.PlatformContent = make(map[string]map[string]any)
	}
	if s.TextContent == nil {
		s.TextContent = make(map[string]any)
	}
	if s.ImageContent == nil {
		s.ImageContent = make(map[string]any)
	}
	if s.AudioContent == nil {
		s.AudioContent = make(map[string]any)
	}
	if s.QualityScores == nil {
		s.QualityScores = make(map[string]float64)
	}
	if s.BrandCompliance == nil {
		s.BrandCompliance = make(map[string]any)
	}
	if s.HumanFeedback == nil {
		s.HumanFeedback = make([]map[string]any, 0)
	}
	if s.FinalContent == nil {
		s.FinalContent = make(map[string]any)
	}
}

// UnmarshalJSON decodes the state and restores empty content mappings.
func (s *WorkflowState) UnmarshalJSON(data []byte) error {
	type alias WorkflowState
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = WorkflowState(a)
	s.normalizeMaps()
	return nil
}
