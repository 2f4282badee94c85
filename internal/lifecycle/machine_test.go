package lifecycle

import (
	"errors"
	"testing"

	"storyreel/internal/store"
)

func TestHappyPathTransitions(t *testing.T) {
	pre := Preconditions{PromptPopulated: true, FirstFrameResolved: true, ArtifactsComplete: true}
	path := []store.SegmentStatus{
		store.SegmentPending,
		store.SegmentPromptReady,
		store.SegmentApproved,
		store.SegmentGenerating,
		store.SegmentGenerated,
		store.SegmentApprovedFinal,
	}
	for i := 0; i < len(path)-1; i++ {
		if err := Validate(path[i], path[i+1], pre); err != nil {
			t.Fatalf("transition %s -> %s: %v", path[i], path[i+1], err)
		}
	}
}

func TestGeneratingRequiresFirstFrame(t *testing.T) {
	err := Validate(store.SegmentApproved, store.SegmentGenerating, Preconditions{})
	if !errors.Is(err, ErrPreconditionNotMet) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestGeneratedRequiresArtifacts(t *testing.T) {
	err := Validate(store.SegmentGenerating, store.SegmentGenerated, Preconditions{})
	if !errors.Is(err, ErrPreconditionNotMet) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestRegenerationEdge(t *testing.T) {
	err := Validate(store.SegmentGenerated, store.SegmentGenerating, Preconditions{FirstFrameResolved: true})
	if err != nil {
		t.Fatalf("regeneration should be legal: %v", err)
	}
}

func TestFailedResetEdge(t *testing.T) {
	if err := Validate(store.SegmentFailed, store.SegmentPromptReady, Preconditions{PromptPopulated: true}); err != nil {
		t.Fatalf("failed -> prompt_ready should be legal: %v", err)
	}
}

func TestRequeueEdges(t *testing.T) {
	// Regeneration and timeout-resume both travel through approved so the
	// workflow loop re-claims the segment.
	if err := Validate(store.SegmentGenerated, store.SegmentApproved, Preconditions{}); err != nil {
		t.Fatalf("generated -> approved should be legal: %v", err)
	}
	if err := Validate(store.SegmentFailed, store.SegmentApproved, Preconditions{}); err != nil {
		t.Fatalf("failed -> approved should be legal: %v", err)
	}
}

func TestForceFailFromNonTerminal(t *testing.T) {
	for _, from := range []store.SegmentStatus{
		store.SegmentPending,
		store.SegmentPromptReady,
		store.SegmentApproved,
		store.SegmentGenerating,
		store.SegmentGenerated,
	} {
		if !CanTransition(from, store.SegmentFailed) {
			t.Fatalf("force-fail from %s should be legal", from)
		}
	}
	if CanTransition(store.SegmentApprovedFinal, store.SegmentFailed) {
		t.Fatal("segment_approved is terminal and must not be force-failed")
	}
	if CanTransition(store.SegmentFailed, store.SegmentFailed) {
		t.Fatal("failing a failed segment is not a transition")
	}
}

func TestIllegalEdges(t *testing.T) {
	cases := []struct {
		from, to store.SegmentStatus
	}{
		{store.SegmentPending, store.SegmentApproved},
		{store.SegmentPending, store.SegmentGenerating},
		{store.SegmentPromptReady, store.SegmentGenerated},
		{store.SegmentApproved, store.SegmentApprovedFinal},
		{store.SegmentApprovedFinal, store.SegmentGenerating},
		{store.SegmentFailed, store.SegmentGenerating},
	}
	pre := Preconditions{PromptPopulated: true, FirstFrameResolved: true, ArtifactsComplete: true}
	for _, tc := range cases {
		if err := Validate(tc.from, tc.to, pre); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("%s -> %s should be illegal, got %v", tc.from, tc.to, err)
		}
	}
}

func TestEditingPromptKeepsState(t *testing.T) {
	// Editing while prompt_ready is not a transition at all.
	if CanTransition(store.SegmentPromptReady, store.SegmentPromptReady) {
		t.Fatal("self-transition should not be a legal edge")
	}
}
