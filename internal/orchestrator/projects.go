package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/services/planner"
	"storyreel/internal/store"
)

// CreateProjectRequest carries the user-supplied parameters for a new project.
type CreateProjectRequest struct {
	Name           string
	StoryPrompt    string
	TargetSeconds  int
	SegmentSeconds int
	VoiceID        string
	SeedFrame      string
}

// CreateProject validates the duration layout and persists the project with
// its pending segment rows.
func (o *Orchestrator) CreateProject(ctx context.Context, req CreateProjectRequest) (*store.Project, error) {
	const operation = "create project"
	req.Name = strings.TrimSpace(req.Name)
	req.StoryPrompt = strings.TrimSpace(req.StoryPrompt)
	req.SeedFrame = strings.TrimSpace(req.SeedFrame)
	if req.Name == "" {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", operation, "project name required", nil)
	}
	if req.StoryPrompt == "" {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", operation, "story prompt required", nil)
	}
	if req.SeedFrame == "" {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", operation, "seed frame image required", nil)
	}
	if !config.AllowedSegmentDuration(req.SegmentSeconds) {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", operation,
			fmt.Sprintf("segment duration %ds not supported (allowed: %v)", req.SegmentSeconds, config.SegmentDurations), nil)
	}
	if req.TargetSeconds <= 0 || req.TargetSeconds%req.SegmentSeconds != 0 {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", operation,
			fmt.Sprintf("target duration %ds must be a positive multiple of %ds", req.TargetSeconds, req.SegmentSeconds), nil)
	}
	if maxTarget := o.cfg.Projects.MaxTargetSeconds; maxTarget > 0 && req.TargetSeconds > maxTarget {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", operation,
			fmt.Sprintf("target duration %ds exceeds maximum %ds", req.TargetSeconds, maxTarget), nil)
	}

	project, err := o.store.CreateProject(ctx, &store.Project{
		Name:           req.Name,
		StoryPrompt:    req.StoryPrompt,
		TargetSeconds:  req.TargetSeconds,
		SegmentSeconds: req.SegmentSeconds,
		SegmentCount:   req.TargetSeconds / req.SegmentSeconds,
		VoiceID:        strings.TrimSpace(req.VoiceID),
		SeedFrame:      req.SeedFrame,
	})
	if err != nil {
		return nil, err
	}
	o.logger.Info("project created",
		logging.String(logging.FieldProjectID, project.ID),
		logging.String("name", project.Name),
		logging.Int("segments", project.SegmentCount))
	return project, nil
}

// GeneratePlan asks the planner for segment prompts and applies them. Prompts
// move every pending segment to prompt_ready; when prompt auto-approval is
// configured they continue straight to approved.
func (o *Orchestrator) GeneratePlan(ctx context.Context, projectID string) error {
	const operation = "generate plan"
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return services.Wrap(services.ErrNotFound, "orchestrator", operation, "project "+projectID, nil)
	}
	if project.Status != store.ProjectCreated && project.Status != store.ProjectFailed {
		return services.Wrap(services.ErrPrecondition, "orchestrator", operation,
			fmt.Sprintf("project is %s, plan generation requires created", project.Status), nil)
	}

	project.Status = store.ProjectPlanGenerating
	project.ErrorMessage = ""
	if err := o.store.UpdateProject(ctx, project); err != nil {
		return err
	}

	plan, err := o.planner.GeneratePlan(ctx, project.StoryPrompt, project.SegmentCount, project.SegmentSeconds)
	if err != nil {
		project.Status = store.ProjectFailed
		project.ErrorMessage = services.FailureMessage(err)
		if updateErr := o.store.UpdateProject(ctx, project); updateErr != nil {
			o.logger.Error("persist plan failure", logging.Error(updateErr))
		}
		return err
	}

	if err := o.applyPlan(ctx, project, plan.Segments); err != nil {
		return err
	}

	project.Status = store.ProjectPlanReady
	if err := o.store.UpdateProject(ctx, project); err != nil {
		return err
	}
	o.logger.Info("plan applied",
		logging.String(logging.FieldProjectID, project.ID),
		logging.String("title", plan.Title),
		logging.Int("segments", len(plan.Segments)))
	if err := o.notifier.NotifyPlanAwaitingReview(ctx, project.Name, len(plan.Segments)); err != nil {
		o.logger.Warn("plan notification failed", logging.Error(err))
	}
	return nil
}

func (o *Orchestrator) applyPlan(ctx context.Context, project *store.Project, plans []planner.SegmentPlan) error {
	segments, err := o.store.SegmentsByProject(ctx, project.ID)
	if err != nil {
		return err
	}
	if len(plans) != len(segments) {
		return services.Wrap(services.ErrValidation, "orchestrator", "apply plan",
			fmt.Sprintf("plan has %d segments, project has %d", len(plans), len(segments)), nil)
	}
	for i, segment := range segments {
		segment.VideoPrompt = plans[i].VideoPrompt
		segment.NarrationText = plans[i].NarrationText
		segment.EndFramePrompt = plans[i].EndFramePrompt
		segment.DurationSec = project.SegmentSeconds
		if segment.Status == store.SegmentPending || segment.Status == store.SegmentFailed {
			segment.Status = store.SegmentPromptReady
		}
		if o.cfg.Projects.AutoApprovePrompts && segment.Status == store.SegmentPromptReady {
			segment.Status = store.SegmentApproved
			segment.PromptApproved = true
		}
		if err := o.store.UpdateSegment(ctx, segment); err != nil {
			return err
		}
	}
	return nil
}

// finalizeProject assembles the final video once every segment has passed
// review, then publishes it when artifact publishing is configured.
func (o *Orchestrator) finalizeProject(ctx context.Context, project *store.Project) error {
	project.Status = store.ProjectFinalizing
	project.ErrorMessage = ""
	if err := o.store.UpdateProject(ctx, project); err != nil {
		return err
	}

	finalPath, err := o.assembler.Assemble(ctx, project.ID)
	if err != nil {
		project.Status = store.ProjectFailed
		project.ErrorMessage = services.FailureMessage(err)
		if updateErr := o.store.UpdateProject(ctx, project); updateErr != nil {
			o.logger.Error("persist finalize failure", logging.Error(updateErr))
		}
		if notifyErr := o.notifier.NotifyError(ctx, err, "finalize "+project.Name); notifyErr != nil {
			o.logger.Warn("finalize failure notification failed", logging.Error(notifyErr))
		}
		return err
	}

	project.FinalVideo = finalPath
	project.Status = store.ProjectCompleted
	if o.publisher.Enabled() {
		url, pubErr := o.publisher.PublishFinalVideo(ctx, project.ID, finalPath)
		if pubErr != nil {
			// Publishing is best-effort; the local final video is the artifact
			// of record.
			o.logger.Warn("publish final video failed", logging.Error(pubErr))
		} else {
			project.PublishedURL = url
		}
	}
	if err := o.store.UpdateProject(ctx, project); err != nil {
		return err
	}

	o.logger.Info("project completed",
		logging.String(logging.FieldProjectID, project.ID),
		logging.String("final_video", finalPath))
	if err := o.notifier.NotifyProjectCompleted(ctx, project.Name, finalPath); err != nil {
		o.logger.Warn("completion notification failed", logging.Error(err))
	}
	if project.PublishedURL != "" {
		if err := o.notifier.NotifyProjectPublished(ctx, project.Name, project.PublishedURL); err != nil {
			o.logger.Warn("publish notification failed", logging.Error(err))
		}
	}
	return nil
}
