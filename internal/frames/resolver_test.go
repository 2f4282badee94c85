package frames

import (
	"testing"

	"storyreel/internal/store"
)

func TestSegmentZeroUsesSeedFrame(t *testing.T) {
	project := &store.Project{SeedFrame: "seed.png"}
	segment := &store.Segment{Index: 0}

	res := ResolveFirstFrame(project, segment, nil)
	if !res.Ready || res.Frame != "seed.png" || res.Source != store.FrameSourceSeed {
		t.Fatalf("unexpected resolution: %#v", res)
	}
}

func TestSegmentZeroWithoutSeedNotReady(t *testing.T) {
	project := &store.Project{}
	segment := &store.Segment{Index: 0}

	if res := ResolveFirstFrame(project, segment, nil); res.Ready {
		t.Fatalf("expected not ready, got %#v", res)
	}
}

func TestManualOverrideWins(t *testing.T) {
	project := &store.Project{SeedFrame: "seed.png"}
	segment := &store.Segment{
		Index:          1,
		FirstFrame:     "manual.png",
		FirstFrameFrom: store.FrameSourceManual,
	}
	prev := &store.Segment{Index: 0, Status: store.SegmentGenerated, LastFrame: "frame0.png"}

	res := ResolveFirstFrame(project, segment, prev)
	if !res.Ready || res.Frame != "manual.png" || res.Source != store.FrameSourceManual {
		t.Fatalf("manual override should win: %#v", res)
	}
}

func TestChainFromGeneratedPredecessor(t *testing.T) {
	project := &store.Project{SeedFrame: "seed.png"}
	segment := &store.Segment{Index: 1}
	prev := &store.Segment{Index: 0, Status: store.SegmentGenerated, LastFrame: "frame0.png"}

	res := ResolveFirstFrame(project, segment, prev)
	if !res.Ready || res.Frame != "frame0.png" || res.Source != store.FrameSourceChain {
		t.Fatalf("unexpected resolution: %#v", res)
	}
}

func TestChainFromApprovedPredecessor(t *testing.T) {
	project := &store.Project{}
	segment := &store.Segment{Index: 2}
	prev := &store.Segment{Index: 1, Status: store.SegmentApprovedFinal, LastFrame: "frame1.png"}

	res := ResolveFirstFrame(project, segment, prev)
	if !res.Ready || res.Frame != "frame1.png" {
		t.Fatalf("unexpected resolution: %#v", res)
	}
}

func TestChainNotReadyWhilePredecessorGenerating(t *testing.T) {
	project := &store.Project{SeedFrame: "seed.png"}
	segment := &store.Segment{Index: 1}
	prev := &store.Segment{Index: 0, Status: store.SegmentGenerating}

	if res := ResolveFirstFrame(project, segment, prev); res.Ready {
		t.Fatalf("expected not ready, got %#v", res)
	}
}

func TestChainNotReadyWithoutLastFrame(t *testing.T) {
	// Predecessor regeneration clears its last frame; the chain must stall
	// rather than hand out the stale reference.
	project := &store.Project{}
	segment := &store.Segment{Index: 1}
	prev := &store.Segment{Index: 0, Status: store.SegmentGenerated}

	if res := ResolveFirstFrame(project, segment, prev); res.Ready {
		t.Fatalf("expected not ready, got %#v", res)
	}
}

func TestAutoResolvedFrameIsNotAnOverride(t *testing.T) {
	// A chain-sourced frame cached on the segment must be re-resolved from
	// the live predecessor, not reused.
	project := &store.Project{}
	segment := &store.Segment{
		Index:          1,
		FirstFrame:     "stale-frame0.png",
		FirstFrameFrom: store.FrameSourceChain,
	}
	prev := &store.Segment{Index: 0, Status: store.SegmentGenerated, LastFrame: "fresh-frame0.png"}

	res := ResolveFirstFrame(project, segment, prev)
	if !res.Ready || res.Frame != "fresh-frame0.png" {
		t.Fatalf("expected fresh chain frame, got %#v", res)
	}
}

func TestWrongPredecessorIndexNotReady(t *testing.T) {
	project := &store.Project{}
	segment := &store.Segment{Index: 2}
	prev := &store.Segment{Index: 0, Status: store.SegmentGenerated, LastFrame: "frame0.png"}

	if res := ResolveFirstFrame(project, segment, prev); res.Ready {
		t.Fatalf("expected not ready for index gap, got %#v", res)
	}
}
