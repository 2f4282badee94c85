package lifecycle

import (
	"errors"
	"fmt"

	"storyreel/internal/store"
)

// ErrIllegalTransition reports a transition the machine does not permit.
var ErrIllegalTransition = errors.New("illegal segment transition")

// ErrPreconditionNotMet reports a legal transition whose preconditions are
// not satisfied yet. Callers treat this as "not yet", not as a failure.
var ErrPreconditionNotMet = errors.New("transition precondition not met")

// Preconditions carries the facts the machine needs to validate a transition.
// The orchestrator fills these from the segment record; the machine never
// inspects storage itself.
type Preconditions struct {
	PromptPopulated    bool
	FirstFrameResolved bool
	ArtifactsComplete  bool
}

type transitionKey struct {
	from store.SegmentStatus
	to   store.SegmentStatus
}

var legalTransitions = map[transitionKey]struct{}{
	{store.SegmentPending, store.SegmentPromptReady}:     {},
	{store.SegmentPromptReady, store.SegmentApproved}:    {},
	{store.SegmentApproved, store.SegmentGenerating}:     {},
	{store.SegmentGenerating, store.SegmentGenerated}:    {},
	{store.SegmentGenerating, store.SegmentFailed}:       {},
	{store.SegmentGenerated, store.SegmentApprovedFinal}: {},
	{store.SegmentGenerated, store.SegmentGenerating}:    {},
	// Regeneration re-queues through approved; the workflow loop performs the
	// actual approved -> generating claim.
	{store.SegmentGenerated, store.SegmentApproved}: {},
	{store.SegmentFailed, store.SegmentPromptReady}: {},
	// Timed-out segments keep live job ids; retry re-queues them through
	// approved so polling resumes without a fresh submission.
	{store.SegmentFailed, store.SegmentApproved}: {},
}

// CanTransition reports whether the from→to edge exists, ignoring
// preconditions. Force-failing any non-terminal state is always an edge.
func CanTransition(from, to store.SegmentStatus) bool {
	if to == store.SegmentFailed && from != store.SegmentApprovedFinal && from != store.SegmentFailed {
		return true
	}
	_, ok := legalTransitions[transitionKey{from: from, to: to}]
	return ok
}

// Validate checks both edge legality and the preconditions the target status
// requires. A nil return means the orchestrator may record the transition.
func Validate(from, to store.SegmentStatus, pre Preconditions) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	switch to {
	case store.SegmentPromptReady:
		if from == store.SegmentPending && !pre.PromptPopulated {
			return fmt.Errorf("%w: prompt and narration must be populated", ErrPreconditionNotMet)
		}
	case store.SegmentGenerating:
		if !pre.FirstFrameResolved {
			return fmt.Errorf("%w: first frame not resolved", ErrPreconditionNotMet)
		}
	case store.SegmentGenerated:
		if !pre.ArtifactsComplete {
			return fmt.Errorf("%w: video and audio artifacts required", ErrPreconditionNotMet)
		}
	}
	return nil
}
