// Package agent defines the agent contract of the content pipeline and the
// roster of content agents that implement it.
//
// Every agent is a named unit exposing Execute(ctx, state) -> state. The
// Runner wrapper is the only public invocation point: it validates the
// inbound state, normalizes the workflow status, and converts any execution
// error into a terminal failed status on the state instead of propagating,
// so business failures surface as data while orchestration failures stay
// exceptions in the workflow package.
//
// The agent bodies themselves are deliberately simple deterministic
// implementations; real generation backends plug in behind the same
// contract.
package agent
