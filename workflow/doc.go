// Package workflow is the orchestration core of the content pipeline: a
// data-presence router, the route→execute→advance engine with synchronous,
// background, and checkpointed execution modes, pluggable checkpoint stores
// (memory, Redis, GORM), and the Coordinator facade that wires the default
// agent roster together.
//
// Routing is driven entirely by the state: the router inspects which output
// keys have been written and picks the first unfinished phase. Business
// failures surface as a failed status on the state; errors returned by the
// engine are orchestration faults (unknown agent, step ceiling, missing
// checkpoint) and indicate wiring bugs rather than bad content.
package workflow
