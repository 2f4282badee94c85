// Package frames resolves the effective first-frame input for a segment.
//
// Segment 0 starts from the project's seed image. Later segments chain off
// the previous segment's extracted last frame, unless the user supplied a
// manual first frame, which always wins and decouples the chain at that
// point. Resolution never triggers frame extraction; it only reads what the
// orchestrator has already cached on the segments.
package frames

import (
	"storyreel/internal/store"
)

// Resolution is the result of a first-frame lookup.
type Resolution struct {
	Frame  string
	Source store.FrameSource
	Ready  bool
}

// NotReady is returned when the chain cannot supply a frame yet. This is the
// expected transient state while a predecessor is still generating.
var NotReady = Resolution{}

// ResolveFirstFrame computes the first-frame reference for the segment at
// the given index. prev may be nil for index 0 and must be the segment at
// index-1 otherwise.
func ResolveFirstFrame(project *store.Project, segment *store.Segment, prev *store.Segment) Resolution {
	if project == nil || segment == nil {
		return NotReady
	}

	// A manually supplied frame always wins, regardless of index.
	if segment.FirstFrameFrom == store.FrameSourceManual && segment.FirstFrame != "" {
		return Resolution{Frame: segment.FirstFrame, Source: store.FrameSourceManual, Ready: true}
	}

	if segment.Index == 0 {
		if project.SeedFrame == "" {
			return NotReady
		}
		return Resolution{Frame: project.SeedFrame, Source: store.FrameSourceSeed, Ready: true}
	}

	if prev == nil || prev.Index != segment.Index-1 {
		return NotReady
	}
	if prev.Status != store.SegmentGenerated && prev.Status != store.SegmentApprovedFinal {
		return NotReady
	}
	if prev.LastFrame == "" {
		return NotReady
	}
	return Resolution{Frame: prev.LastFrame, Source: store.FrameSourceChain, Ready: true}
}
