package agent

import (
	"context"
	"time"

	"github.com/BaSui01/contentpipe/state"
)

// HumanReview is the approval gate at the end of the pipeline. In
// auto-approve mode (the default for synchronous runs) it appends a system
// approval record so the workflow can complete unattended. With auto-approve
// disabled it parks the workflow in the waiting-human status until feedback
// arrives; a checkpointed engine interrupts before this agent instead and
// injects feedback on resume.
type HumanReview struct {
	autoApprove bool
}

// ReviewOption configures a HumanReview agent.
type ReviewOption func(*HumanReview)

// WithAutoApprove toggles unattended approval. Disabled, the agent waits for
// injected feedback.
func WithAutoApprove(enabled bool) ReviewOption {
	return func(h *HumanReview) {
		h.autoApprove = enabled
	}
}

// NewHumanReview creates the review gate. Auto-approve is on by default.
func NewHumanReview(opts ...ReviewOption) *HumanReview {
	h := &HumanReview{autoApprove: true}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HumanReview) Name() string {
	return NameHumanReview
}

func (h *HumanReview) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	if len(st.HumanFeedback) > 0 {
		// Feedback already injected (resume path); nothing to gate on.
		return st, nil
	}

	if !h.autoApprove {
		st.Status = state.StatusWaitingHuman
		return st, nil
	}

	st.HumanFeedback = append(st.HumanFeedback, map[string]any{
		"reviewer":    "system",
		"approved":    true,
		"comment":     "auto-approved",
		"reviewed_at": time.Now().UTC().Format(time.RFC3339),
	})
	return st, nil
}
