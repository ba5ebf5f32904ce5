package state

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingWorkflowID 工作流 ID 缺失
	ErrMissingWorkflowID = errors.New("workflow id is empty")

	// ErrUnknownStatus 状态未知
	ErrUnknownStatus = errors.New("unknown workflow status")

	// ErrNegativeStepCount 步数为负
	ErrNegativeStepCount = errors.New("step count is negative")

	// ErrMissingInput 原始输入缺失
	ErrMissingInput = errors.New("original input is not set")
)

// Validate checks the structural invariants every agent relies on: a
// non-empty workflow id, a known status, a non-negative step count, and a
// well-formed input mapping.
func (s *WorkflowState) Validate() error {
	if s == nil {
		return errors.New("state is nil")
	}
	if s.WorkflowID == "" {
		return ErrMissingWorkflowID
	}
	if !s.Status.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, s.Status)
	}
	if s.StepCount < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeStepCount, s.StepCount)
	}
	if s.OriginalInput == nil {
		return ErrMissingInput
	}
	return nil
}
