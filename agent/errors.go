package agent

import (
	"errors"
	"fmt"
)

// Code classifies an agent failure for logging, the state error log, and
// the orchestration retry decision.
type Code string

const (
	CodeValidation      Code = "validation_error"
	CodeExecution       Code = "agent_execution_error"
	CodeExternalService Code = "external_service_error"
	CodeUnknown         Code = "unknown_error"
)

// Error is a structured agent error with a code, the owning agent's name,
// and an optional wrapped cause.
type Error struct {
	Code    Code
	Agent   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Agent, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Agent, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause attaches a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// NewValidationError creates a malformed-state/input error. Never retried.
func NewValidationError(agent, message string) *Error {
	return &Error{Code: CodeValidation, Agent: agent, Message: message}
}

// NewExecutionError creates a generic agent-internal failure.
func NewExecutionError(agent, message string) *Error {
	return &Error{Code: CodeExecution, Agent: agent, Message: message}
}

// NewExternalError creates a failure attributed to a downstream provider.
// Eligible for retry at the orchestration level.
func NewExternalError(agent, message string) *Error {
	return &Error{Code: CodeExternalService, Agent: agent, Message: message}
}

// CodeOf extracts the error code, falling back to CodeUnknown for errors
// raised outside the taxonomy.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Retryable reports whether the failure is attributable to a downstream
// dependency and therefore worth retrying from the last checkpoint.
func Retryable(err error) bool {
	return CodeOf(err) == CodeExternalService
}
