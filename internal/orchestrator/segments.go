package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"storyreel/internal/frames"
	"storyreel/internal/lifecycle"
	"storyreel/internal/logging"
	"storyreel/internal/poller"
	"storyreel/internal/services"
	"storyreel/internal/services/minimax"
	"storyreel/internal/store"
)

// ApprovePrompt passes the first review gate for a segment, moving it from
// prompt_ready to approved. Approving an already approved prompt is a no-op.
func (o *Orchestrator) ApprovePrompt(ctx context.Context, projectID string, index int) error {
	const operation = "approve prompt"
	segment, err := o.mustSegment(ctx, projectID, index, operation)
	if err != nil {
		return err
	}
	if segment.PromptApproved && segment.Status != store.SegmentPromptReady {
		return nil
	}
	if err := lifecycle.Validate(segment.Status, store.SegmentApproved, lifecycle.Preconditions{}); err != nil {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation, err.Error(), nil)
	}
	segment.Status = store.SegmentApproved
	segment.PromptApproved = true
	return o.store.UpdateSegment(ctx, segment)
}

// NextEligible returns the lowest-index segment ready for generation: its
// prompt is approved and its predecessor (if any) has a usable last frame.
// Returns nil when nothing is ready.
func (o *Orchestrator) NextEligible(ctx context.Context, projectID string) (*store.Segment, error) {
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	segments, err := o.store.SegmentsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i, segment := range segments {
		if segment.Status != store.SegmentApproved {
			continue
		}
		var prev *store.Segment
		if i > 0 {
			prev = segments[i-1]
		}
		if frames.ResolveFirstFrame(project, segment, prev).Ready {
			return segment, nil
		}
	}
	return nil, nil
}

// AdvanceSegment runs one segment through generation: claim, submit video
// and narration jobs, await both, download artifacts, extract the last frame
// for the chain, and record the generated state. A chain frame that is not
// ready yet is a silent no-op so the caller can simply try again later.
func (o *Orchestrator) AdvanceSegment(ctx context.Context, projectID string, index int) error {
	const operation = "advance segment"
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return services.Wrap(services.ErrNotFound, "orchestrator", operation, "project "+projectID, nil)
	}
	segment, err := o.mustSegment(ctx, projectID, index, operation)
	if err != nil {
		return err
	}
	from := segment.Status
	if from != store.SegmentApproved {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation,
			fmt.Sprintf("segment %d is %s, generation requires approved", index, from), nil)
	}

	var prev *store.Segment
	if index > 0 {
		prev, err = o.store.SegmentByIndex(ctx, projectID, index-1)
		if err != nil {
			return err
		}
	}
	resolution := frames.ResolveFirstFrame(project, segment, prev)
	if !resolution.Ready {
		// Predecessor has not produced a last frame yet. Not an error.
		return nil
	}

	// The claim is the double-submission guard: only one caller wins the
	// approved -> generating edge. Chain-fed segments assert inside the same
	// statement that the predecessor's last frame is still the one resolved
	// above, so a regeneration racing this call makes the claim miss instead
	// of letting a discarded frame seed the submission.
	var claimed bool
	if resolution.Source == store.FrameSourceChain {
		claimed, err = o.store.ClaimGenerationChained(ctx, segment.ID, from, prev.ID, resolution.Frame)
	} else {
		claimed, err = o.store.ClaimGeneration(ctx, segment.ID, from)
	}
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	segment.Status = store.SegmentGenerating
	segment.FirstFrame = resolution.Frame
	if resolution.Source != store.FrameSourceManual {
		segment.FirstFrameFrom = resolution.Source
	}
	segment.ErrorMessage = ""

	if project.Status == store.ProjectPlanReady {
		project.Status = store.ProjectGenerating
		if err := o.store.UpdateProject(ctx, project); err != nil {
			// Unwind the claim so the segment is not stranded in generating
			// with no job ids.
			if releaseErr := o.store.ReleaseGeneration(ctx, segment.ID, from); releaseErr != nil {
				o.logger.Error("release generation claim", logging.Error(releaseErr))
			}
			return err
		}
	}

	if err := o.generate(ctx, project, segment); err != nil {
		return o.failSegment(ctx, project, segment, err)
	}
	return nil
}

// ResumeInFlight picks up segments left generating by an earlier process.
// Job ids are persisted before polling begins, so a segment interrupted
// mid-poll resumes from its recorded ids without resubmitting; a segment
// claimed before any id was recorded is returned to approved for a fresh
// pass. Reports whether any segment finished generation.
func (o *Orchestrator) ResumeInFlight(ctx context.Context, projectID string) (bool, error) {
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	if project == nil {
		return false, nil
	}
	segments, err := o.store.SegmentsByProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	resumed := false
	for _, segment := range segments {
		if segment.Status != store.SegmentGenerating {
			continue
		}
		if !segment.HasActiveJob() {
			if err := o.store.ReleaseGeneration(ctx, segment.ID, store.SegmentApproved); err != nil {
				return resumed, err
			}
			continue
		}
		o.logger.Info("resuming in-flight generation",
			logging.String(logging.FieldProjectID, projectID),
			logging.Int(logging.FieldSegmentIndex, segment.Index),
			logging.String(logging.FieldJobID, segment.VideoJobID))
		if err := o.generate(ctx, project, segment); err != nil {
			return resumed, o.failSegment(ctx, project, segment, err)
		}
		resumed = true
	}
	return resumed, nil
}

// generate submits both provider jobs, persists their ids, awaits both, and
// lands the artifacts. Job ids are stored before any waiting so a restart can
// resume polling instead of resubmitting.
func (o *Orchestrator) generate(ctx context.Context, project *store.Project, segment *store.Segment) error {
	logger := o.logger.With(
		logging.String(logging.FieldProjectID, project.ID),
		logging.Int(logging.FieldSegmentIndex, segment.Index))

	if segment.VideoJobID == "" {
		videoJob, err := o.provider.SubmitVideo(ctx, minimax.VideoRequest{
			Prompt:          segment.VideoPrompt,
			FirstFramePath:  segment.FirstFrame,
			DurationSeconds: segment.DurationSec,
		})
		if err != nil {
			return err
		}
		segment.VideoJobID = videoJob
	}
	if segment.AudioJobID == "" && segment.NarrationText != "" {
		audioJob, err := o.provider.SubmitSpeech(ctx, minimax.SpeechRequest{
			Text:    segment.NarrationText,
			VoiceID: project.VoiceID,
		})
		if err != nil {
			return err
		}
		segment.AudioJobID = audioJob
	}
	if err := o.store.UpdateSegment(ctx, segment); err != nil {
		return err
	}
	logger.Info("generation jobs submitted",
		logging.String(logging.FieldJobID, segment.VideoJobID))

	videoResult, err := o.awaiter.Await(ctx, func(ctx context.Context) (poller.Check, error) {
		return o.provider.VideoStatus(ctx, segment.VideoJobID)
	})
	if err != nil {
		return err
	}
	if videoResult.Outcome != poller.OutcomeSuccess {
		return outcomeError("video generation", videoResult)
	}

	if segment.AudioJobID != "" {
		audioResult, err := o.awaiter.Await(ctx, func(ctx context.Context) (poller.Check, error) {
			return o.provider.SpeechStatus(ctx, segment.AudioJobID)
		})
		if err != nil {
			return err
		}
		if audioResult.Outcome != poller.OutcomeSuccess {
			return outcomeError("speech synthesis", audioResult)
		}
		audioPath := o.segmentPath(project.ID, segment.Index, "mp3")
		if err := o.provider.DownloadArtifact(ctx, audioResult.Artifact, audioPath); err != nil {
			return err
		}
		segment.AudioFile = audioPath
	}

	videoPath := o.segmentPath(project.ID, segment.Index, "mp4")
	if err := o.provider.DownloadArtifact(ctx, videoResult.Artifact, videoPath); err != nil {
		return err
	}
	segment.VideoFile = videoPath

	framePath := filepath.Join(filepath.Dir(videoPath), fmt.Sprintf("last-frame-%03d.png", segment.Index))
	if err := o.extractor.ExtractLastFrame(ctx, videoPath, framePath); err != nil {
		return err
	}
	segment.LastFrame = framePath

	pre := lifecycle.Preconditions{ArtifactsComplete: segment.VideoFile != ""}
	if err := lifecycle.Validate(store.SegmentGenerating, store.SegmentGenerated, pre); err != nil {
		return err
	}
	segment.Status = store.SegmentGenerated
	segment.VideoJobID = ""
	segment.AudioJobID = ""
	if err := o.store.UpdateSegment(ctx, segment); err != nil {
		return err
	}

	logger.Info("segment generated", logging.String("video", segment.VideoFile))
	if err := o.notifier.NotifySegmentAwaitingReview(ctx, project.Name, segment.Index); err != nil {
		logger.Warn("review notification failed", logging.Error(err))
	}
	return nil
}

// failSegment records a generation failure verbatim. Timeouts keep their job
// ids so a retry can resume polling the still-running provider job.
func (o *Orchestrator) failSegment(ctx context.Context, project *store.Project, segment *store.Segment, cause error) error {
	segment.Status = store.SegmentFailed
	segment.ErrorMessage = services.FailureMessage(cause)
	if !services.IsTimeout(cause) {
		segment.VideoJobID = ""
		segment.AudioJobID = ""
	}
	if err := o.store.UpdateSegment(ctx, segment); err != nil {
		o.logger.Error("persist segment failure", logging.Error(err))
	}
	o.logger.Error("segment generation failed",
		logging.String(logging.FieldProjectID, project.ID),
		logging.Int(logging.FieldSegmentIndex, segment.Index),
		logging.Error(cause))
	if err := o.notifier.NotifySegmentFailed(ctx, project.Name, segment.Index, segment.ErrorMessage); err != nil {
		o.logger.Warn("failure notification failed", logging.Error(err))
	}
	return cause
}

// ApproveSegment passes the second review gate. When it approves the last
// outstanding segment, finalization runs immediately.
func (o *Orchestrator) ApproveSegment(ctx context.Context, projectID string, index int) error {
	const operation = "approve segment"
	segment, err := o.mustSegment(ctx, projectID, index, operation)
	if err != nil {
		return err
	}
	if segment.Status == store.SegmentApprovedFinal {
		return nil
	}
	if err := lifecycle.Validate(segment.Status, store.SegmentApprovedFinal, lifecycle.Preconditions{}); err != nil {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation, err.Error(), nil)
	}
	segment.Status = store.SegmentApprovedFinal
	if err := o.store.UpdateSegment(ctx, segment); err != nil {
		return err
	}

	counts, err := o.store.CountSegmentsByStatus(ctx, projectID)
	if err != nil {
		return err
	}
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project != nil && counts[store.SegmentApprovedFinal] == project.SegmentCount {
		return o.finalizeProject(ctx, project)
	}
	return nil
}

// Regenerate discards a generated segment's artifacts and returns it to the
// generation queue. The extracted last frame is cleared so the successor's
// chain resolution blocks until the new render lands.
func (o *Orchestrator) Regenerate(ctx context.Context, projectID string, index int) error {
	const operation = "regenerate"
	segment, err := o.mustSegment(ctx, projectID, index, operation)
	if err != nil {
		return err
	}
	if segment.Status != store.SegmentGenerated {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation,
			fmt.Sprintf("segment %d is %s, regeneration requires generated", index, segment.Status), nil)
	}
	if err := lifecycle.Validate(segment.Status, store.SegmentApproved, lifecycle.Preconditions{}); err != nil {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation, err.Error(), nil)
	}
	if segment.VideoFile != "" {
		if err := os.Remove(segment.VideoFile); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("remove stale video", logging.Error(err))
		}
	}
	segment.Status = store.SegmentApproved
	segment.VideoFile = ""
	segment.AudioFile = ""
	segment.LastFrame = ""
	segment.VideoJobID = ""
	segment.AudioJobID = ""
	segment.ErrorMessage = ""
	if segment.FirstFrameFrom != store.FrameSourceManual {
		segment.FirstFrame = ""
		segment.FirstFrameFrom = store.FrameSourceNone
	}
	return o.store.UpdateSegment(ctx, segment)
}

// Cancel aborts a generating segment. The provider job keeps running remotely
// but its result is never collected. Cancelling a segment that is not
// generating is a no-op.
func (o *Orchestrator) Cancel(ctx context.Context, projectID string, index int) error {
	segment, err := o.mustSegment(ctx, projectID, index, "cancel")
	if err != nil {
		return err
	}
	if segment.Status != store.SegmentGenerating {
		return nil
	}
	segment.Status = store.SegmentFailed
	segment.ErrorMessage = "cancelled"
	segment.VideoJobID = ""
	segment.AudioJobID = ""
	return o.store.UpdateSegment(ctx, segment)
}

// RetryFailed returns a failed segment to prompt_ready so it can pass the
// review gates again. Segments that failed on timeout keep their job ids;
// the next generation pass resumes polling instead of resubmitting.
func (o *Orchestrator) RetryFailed(ctx context.Context, projectID string, index int) error {
	const operation = "retry"
	segment, err := o.mustSegment(ctx, projectID, index, operation)
	if err != nil {
		return err
	}
	if segment.Status != store.SegmentFailed {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation,
			fmt.Sprintf("segment %d is %s, retry requires failed", index, segment.Status), nil)
	}
	if segment.HasActiveJob() {
		// Timed-out jobs may still be running remotely; go straight back to
		// generating-eligible state with the job ids intact.
		if err := lifecycle.Validate(segment.Status, store.SegmentApproved, lifecycle.Preconditions{}); err != nil {
			return services.Wrap(services.ErrPrecondition, "orchestrator", operation, err.Error(), nil)
		}
		segment.Status = store.SegmentApproved
		segment.PromptApproved = true
		segment.ErrorMessage = ""
		return o.store.UpdateSegment(ctx, segment)
	}
	reset, err := o.store.ResetFailedSegment(ctx, segment.ID)
	if err != nil {
		return err
	}
	if !reset {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation,
			fmt.Sprintf("segment %d changed state during retry", index), nil)
	}
	return nil
}

func (o *Orchestrator) mustSegment(ctx context.Context, projectID string, index int, operation string) (*store.Segment, error) {
	segment, err := o.store.SegmentByIndex(ctx, projectID, index)
	if err != nil {
		return nil, err
	}
	if segment == nil {
		return nil, services.Wrap(services.ErrNotFound, "orchestrator", operation,
			fmt.Sprintf("segment %d of project %s", index, projectID), nil)
	}
	return segment, nil
}

func (o *Orchestrator) segmentPath(projectID string, index int, ext string) string {
	return filepath.Join(o.cfg.Paths.OutputDir, projectID, fmt.Sprintf("segment-%03d.%s", index, ext))
}

func outcomeError(stage string, result poller.Result) error {
	marker := services.ErrExternalTool
	if result.Outcome == poller.OutcomeTimeout {
		marker = services.ErrTimeout
	}
	return services.Wrap(marker, "orchestrator", stage, result.Reason, nil)
}
