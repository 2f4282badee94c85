package store

import (
	"strings"
	"time"
)

// ProjectStatus mirrors aggregate segment progress for a project.
type ProjectStatus string

const (
	ProjectCreated        ProjectStatus = "created"
	ProjectPlanGenerating ProjectStatus = "plan_generating"
	ProjectPlanReady      ProjectStatus = "plan_ready"
	ProjectGenerating     ProjectStatus = "generating"
	ProjectFinalizing     ProjectStatus = "finalizing"
	ProjectCompleted      ProjectStatus = "completed"
	ProjectFailed         ProjectStatus = "failed"
)

// SegmentStatus represents the lifecycle of one segment.
type SegmentStatus string

const (
	SegmentPending         SegmentStatus = "pending"
	SegmentPromptReady     SegmentStatus = "prompt_ready"
	SegmentApproved        SegmentStatus = "approved"
	SegmentGenerating      SegmentStatus = "generating"
	SegmentGenerated       SegmentStatus = "generated"
	SegmentApprovedFinal   SegmentStatus = "segment_approved"
	SegmentFailed          SegmentStatus = "failed"
)

var allSegmentStatuses = []SegmentStatus{
	SegmentPending,
	SegmentPromptReady,
	SegmentApproved,
	SegmentGenerating,
	SegmentGenerated,
	SegmentApprovedFinal,
	SegmentFailed,
}

var segmentStatusSet = func() map[SegmentStatus]struct{} {
	set := make(map[SegmentStatus]struct{}, len(allSegmentStatuses))
	for _, status := range allSegmentStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllSegmentStatuses returns the ordered list of known segment statuses.
func AllSegmentStatuses() []SegmentStatus {
	cp := make([]SegmentStatus, len(allSegmentStatuses))
	copy(cp, allSegmentStatuses)
	return cp
}

// ParseSegmentStatus converts a string into a known SegmentStatus.
func ParseSegmentStatus(value string) (SegmentStatus, bool) {
	normalized := SegmentStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := segmentStatusSet[normalized]
	return normalized, ok
}

// FrameSource records how a segment's first-frame reference was produced.
// Only manually supplied frames act as overrides during chain resolution;
// frames resolved from the chain are re-resolved on every submission so a
// regenerated predecessor can never leak a stale frame forward.
type FrameSource string

const (
	FrameSourceNone   FrameSource = ""
	FrameSourceManual FrameSource = "manual"
	FrameSourceSeed   FrameSource = "seed"
	FrameSourceChain  FrameSource = "chain"
)

// Project is a narrated video assembled from fixed-duration segments.
type Project struct {
	ID             string
	Name           string
	StoryPrompt    string
	TargetSeconds  int
	SegmentSeconds int
	SegmentCount   int
	VoiceID        string
	SeedFrame      string
	FinalVideo     string
	PublishedURL   string
	Status         ProjectStatus
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Segment is one fixed-duration slice of a project's final video.
type Segment struct {
	ID             string
	ProjectID      string
	Index          int
	VideoPrompt    string
	NarrationText  string
	EndFramePrompt string
	Status         SegmentStatus
	PromptApproved bool
	FirstFrame     string
	FirstFrameFrom FrameSource
	LastFrame      string
	VideoFile      string
	AudioFile      string
	VideoJobID     string
	AudioJobID     string
	DurationSec    int
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasActiveJob reports whether the segment carries an in-flight provider job.
func (s Segment) HasActiveJob() bool {
	return s.VideoJobID != "" || s.AudioJobID != ""
}

// IsTerminal reports whether the status needs no further orchestration.
func (s SegmentStatus) IsTerminal() bool {
	return s == SegmentApprovedFinal || s == SegmentFailed
}
