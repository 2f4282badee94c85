// Package services defines the shared error taxonomy and context plumbing
// used by components that talk to external collaborators (generation
// provider, planner LLM, media tools).
//
// Errors are tagged with sentinel markers so orchestration code can classify
// failures without string matching: validation and configuration problems are
// operator-actionable, transient failures are retryable, and timeouts retain
// enough context for manual reconciliation.
package services
