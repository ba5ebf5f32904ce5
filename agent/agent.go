package agent

import (
	"context"

	"github.com/BaSui01/contentpipe/state"
)

// Agent is a named unit of work transforming the shared workflow state.
// Implementations mutate the state they are handed and return it; the
// engine guarantees an agent owns the state exclusively for the duration of
// one Execute call.
type Agent interface {
	// Name returns the routing name of the agent.
	Name() string
	// Execute performs the agent-specific work and returns the updated state.
	Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error)
}

// ExecuteFunc is the function form of an agent's work.
type ExecuteFunc func(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error)

// FuncAgent adapts a plain function to the Agent interface. Used heavily in
// tests and for small inline pipeline nodes.
type FuncAgent struct {
	name string
	fn   ExecuteFunc
}

// NewFuncAgent creates a function-backed agent.
func NewFuncAgent(name string, fn ExecuteFunc) *FuncAgent {
	return &FuncAgent{name: name, fn: fn}
}

func (a *FuncAgent) Name() string {
	return a.name
}

func (a *FuncAgent) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	return a.fn(ctx, st)
}
