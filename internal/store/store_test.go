package store_test

import (
	"context"
	"testing"

	"storyreel/internal/store"
	"storyreel/internal/testsupport"
)

func TestCreateProjectSeedsContiguousSegments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	project := testsupport.NewProject(t, st, "Voyage", 12, 6)
	if project.ID == "" {
		t.Fatal("expected project ID to be assigned")
	}
	if project.Status != store.ProjectCreated {
		t.Fatalf("status = %s", project.Status)
	}

	segments := testsupport.Segments(t, st, project.ID)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	for i, segment := range segments {
		if segment.Index != i {
			t.Fatalf("segment %d has index %d", i, segment.Index)
		}
		if segment.Status != store.SegmentPending {
			t.Fatalf("segment %d status = %s", i, segment.Status)
		}
		if segment.DurationSec != 6 {
			t.Fatalf("segment %d duration = %d", i, segment.DurationSec)
		}
	}
}

func TestCreateProjectRejectsZeroSegments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.CreateProject(context.Background(), &store.Project{
		Name:           "Empty",
		TargetSeconds:  0,
		SegmentSeconds: 6,
		SegmentCount:   0,
	})
	if err == nil {
		t.Fatal("expected error for zero segment count")
	}
}

func TestUpdateSegmentRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	project := testsupport.NewProject(t, st, "Voyage", 12, 6)
	segments := testsupport.Segments(t, st, project.ID)

	seg := segments[0]
	seg.VideoPrompt = "a ship departs at dawn"
	seg.NarrationText = "The ship slipped its moorings."
	seg.Status = store.SegmentPromptReady
	if err := st.UpdateSegment(ctx, seg); err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}

	fetched, err := st.GetSegment(ctx, seg.ID)
	if err != nil {
		t.Fatalf("GetSegment: %v", err)
	}
	if fetched.VideoPrompt != seg.VideoPrompt || fetched.Status != store.SegmentPromptReady {
		t.Fatalf("unexpected segment after update: %#v", fetched)
	}
	if fetched.Index != 0 {
		t.Fatalf("index changed: %d", fetched.Index)
	}
}

func TestClaimGenerationIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	project := testsupport.NewProject(t, st, "Voyage", 12, 6)
	segments := testsupport.Segments(t, st, project.ID)

	seg := segments[0]
	seg.Status = store.SegmentApproved
	if err := st.UpdateSegment(ctx, seg); err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}

	claimed, err := st.ClaimGeneration(ctx, seg.ID, store.SegmentApproved)
	if err != nil {
		t.Fatalf("ClaimGeneration: %v", err)
	}
	if !claimed {
		t.Fatal("first claim should succeed")
	}

	again, err := st.ClaimGeneration(ctx, seg.ID, store.SegmentApproved)
	if err != nil {
		t.Fatalf("ClaimGeneration (second): %v", err)
	}
	if again {
		t.Fatal("second claim must be rejected")
	}

	fetched, err := st.GetSegment(ctx, seg.ID)
	if err != nil {
		t.Fatalf("GetSegment: %v", err)
	}
	if fetched.Status != store.SegmentGenerating {
		t.Fatalf("status = %s", fetched.Status)
	}
}

func TestClaimGenerationChainedRejectsReplacedFrame(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	project := testsupport.NewProject(t, st, "Voyage", 12, 6)
	segments := testsupport.Segments(t, st, project.ID)

	prev, next := segments[0], segments[1]
	prev.Status = store.SegmentGenerated
	prev.LastFrame = "frames/last-000.png"
	if err := st.UpdateSegment(ctx, prev); err != nil {
		t.Fatalf("UpdateSegment(prev): %v", err)
	}
	next.Status = store.SegmentApproved
	if err := st.UpdateSegment(ctx, next); err != nil {
		t.Fatalf("UpdateSegment(next): %v", err)
	}

	// The predecessor gets regenerated after the caller resolved its frame:
	// the frame is gone and the claim must miss.
	prev.Status = store.SegmentApproved
	prev.LastFrame = ""
	if err := st.UpdateSegment(ctx, prev); err != nil {
		t.Fatalf("UpdateSegment(regen): %v", err)
	}
	claimed, err := st.ClaimGenerationChained(ctx, next.ID, store.SegmentApproved, prev.ID, "frames/last-000.png")
	if err != nil {
		t.Fatalf("ClaimGenerationChained: %v", err)
	}
	if claimed {
		t.Fatal("claim must miss when the predecessor frame was discarded")
	}
	fetched, err := st.GetSegment(ctx, next.ID)
	if err != nil {
		t.Fatalf("GetSegment: %v", err)
	}
	if fetched.Status != store.SegmentApproved {
		t.Fatalf("status = %s", fetched.Status)
	}

	// Once the predecessor lands again with the same frame, the claim holds.
	prev.Status = store.SegmentGenerated
	prev.LastFrame = "frames/last-000.png"
	if err := st.UpdateSegment(ctx, prev); err != nil {
		t.Fatalf("UpdateSegment(regen landed): %v", err)
	}
	claimed, err = st.ClaimGenerationChained(ctx, next.ID, store.SegmentApproved, prev.ID, "frames/last-000.png")
	if err != nil {
		t.Fatalf("ClaimGenerationChained (fresh frame): %v", err)
	}
	if !claimed {
		t.Fatal("claim should succeed when the resolved frame is current")
	}
}

func TestReleaseGenerationRestoresStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	project := testsupport.NewProject(t, st, "Voyage", 12, 6)
	seg := testsupport.Segments(t, st, project.ID)[0]
	seg.Status = store.SegmentApproved
	if err := st.UpdateSegment(ctx, seg); err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}
	if _, err := st.ClaimGeneration(ctx, seg.ID, store.SegmentApproved); err != nil {
		t.Fatalf("ClaimGeneration: %v", err)
	}
	if err := st.ReleaseGeneration(ctx, seg.ID, store.SegmentApproved); err != nil {
		t.Fatalf("ReleaseGeneration: %v", err)
	}
	fetched, err := st.GetSegment(ctx, seg.ID)
	if err != nil {
		t.Fatalf("GetSegment: %v", err)
	}
	if fetched.Status != store.SegmentApproved {
		t.Fatalf("status = %s", fetched.Status)
	}
}

func TestResetFailedSegment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	project := testsupport.NewProject(t, st, "Voyage", 12, 6)
	seg := testsupport.Segments(t, st, project.ID)[0]
	seg.Status = store.SegmentFailed
	seg.ErrorMessage = "content policy violation"
	seg.VideoJobID = "job-1"
	if err := st.UpdateSegment(ctx, seg); err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}

	reset, err := st.ResetFailedSegment(ctx, seg.ID)
	if err != nil {
		t.Fatalf("ResetFailedSegment: %v", err)
	}
	if !reset {
		t.Fatal("expected reset to apply")
	}

	fetched, err := st.GetSegment(ctx, seg.ID)
	if err != nil {
		t.Fatalf("GetSegment: %v", err)
	}
	if fetched.Status != store.SegmentPromptReady {
		t.Fatalf("status = %s", fetched.Status)
	}
	if fetched.VideoJobID != "" {
		t.Fatalf("job id should be cleared, got %q", fetched.VideoJobID)
	}
	if fetched.ErrorMessage == "" {
		t.Fatal("error message should be retained for inspection")
	}

	// Resetting a non-failed segment is a no-op.
	again, err := st.ResetFailedSegment(ctx, seg.ID)
	if err != nil {
		t.Fatalf("ResetFailedSegment (second): %v", err)
	}
	if again {
		t.Fatal("reset of non-failed segment should not apply")
	}
}

func TestCountSegmentsByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	project := testsupport.NewProject(t, st, "Voyage", 18, 6)
	segments := testsupport.Segments(t, st, project.ID)

	segments[0].Status = store.SegmentApprovedFinal
	if err := st.UpdateSegment(ctx, segments[0]); err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}

	counts, err := st.CountSegmentsByStatus(ctx, project.ID)
	if err != nil {
		t.Fatalf("CountSegmentsByStatus: %v", err)
	}
	if counts[store.SegmentApprovedFinal] != 1 || counts[store.SegmentPending] != 2 {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}
