// Package orchestrator coordinates the segment generation workflow: project
// creation, plan application, approval gates, generation job submission and
// polling, the first-frame continuity chain, and finalization.
//
// All state lives in the store; the orchestrator is stateless between calls.
// Generation claims use a compare-and-swap on the segment status so the same
// segment can never hold two live provider jobs, even with concurrent
// callers. Frame continuity is re-resolved from the predecessor at every
// submission, never from a cached value, so regenerating a segment
// automatically invalidates what its successor will start from.
package orchestrator
