// Package state defines the shared workflow state threaded through the
// content-generation pipeline.
//
// A WorkflowState doubles as a progress ledger: the router decides the next
// agent purely from the workflow status and the presence of content keys,
// so there is no separate program counter to keep in sync.
package state
