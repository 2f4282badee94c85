package planner

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"storyreel/internal/services"
)

// SegmentPlan carries the generated prompts for one segment.
type SegmentPlan struct {
	SegmentIndex   int    `json:"segment_index"`
	VideoPrompt    string `json:"video_prompt"`
	NarrationText  string `json:"narration_text"`
	EndFramePrompt string `json:"end_frame_prompt"`
}

// Plan is the complete story plan returned by the model.
type Plan struct {
	Title           string        `json:"title"`
	ContinuityNotes string        `json:"continuity_notes"`
	Segments        []SegmentPlan `json:"segments"`
}

// GeneratePlan asks the model for a story plan covering exactly segmentCount
// segments of segmentSeconds each. The response is validated before return:
// segment count must match and every prompt field must be populated.
func (c *Client) GeneratePlan(ctx context.Context, storyPrompt string, segmentCount, segmentSeconds int) (Plan, error) {
	const operation = "generate plan"
	var empty Plan
	storyPrompt = strings.TrimSpace(storyPrompt)
	if storyPrompt == "" {
		return empty, services.Wrap(services.ErrValidation, "planner", operation, "story prompt required", nil)
	}
	if segmentCount <= 0 {
		return empty, services.Wrap(services.ErrValidation, "planner", operation, "segment count must be positive", nil)
	}

	userPrompt := fmt.Sprintf(`Create a video story plan for:

Story concept: %s

Requirements:
- %d segments of %d seconds each
- Total duration: %d seconds

Generate cinematic prompts with smooth visual transitions between segments.
Each narration_text should fit ~%d seconds of speech.
Each end_frame_prompt should describe where the segment visually ends.`,
		storyPrompt, segmentCount, segmentSeconds, segmentCount*segmentSeconds, segmentSeconds)

	content, err := c.CompleteJSON(ctx, storyPlanPrompt, userPrompt)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, "planner", operation, "", err)
	}

	var plan Plan
	if err := DecodeModelJSON(content, &plan); err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "planner", operation, "parse plan payload", err)
	}
	if err := validatePlan(plan, segmentCount); err != nil {
		return empty, err
	}
	for i := range plan.Segments {
		plan.Segments[i].SegmentIndex = i
		plan.Segments[i].VideoPrompt = strings.TrimSpace(plan.Segments[i].VideoPrompt)
		plan.Segments[i].NarrationText = NormalizeNarration(plan.Segments[i].NarrationText)
		plan.Segments[i].EndFramePrompt = strings.TrimSpace(plan.Segments[i].EndFramePrompt)
	}
	plan.Title = strings.TrimSpace(plan.Title)
	return plan, nil
}

func validatePlan(plan Plan, want int) error {
	const operation = "generate plan"
	if len(plan.Segments) != want {
		return services.Wrap(services.ErrExternalTool, "planner", operation,
			fmt.Sprintf("model produced %d segments, requested %d", len(plan.Segments), want), nil)
	}
	for i, segment := range plan.Segments {
		if strings.TrimSpace(segment.VideoPrompt) == "" {
			return services.Wrap(services.ErrExternalTool, "planner", operation,
				fmt.Sprintf("segment %d missing video prompt", i), nil)
		}
		if strings.TrimSpace(segment.NarrationText) == "" {
			return services.Wrap(services.ErrExternalTool, "planner", operation,
				fmt.Sprintf("segment %d missing narration text", i), nil)
		}
		if strings.TrimSpace(segment.EndFramePrompt) == "" {
			return services.Wrap(services.ErrExternalTool, "planner", operation,
				fmt.Sprintf("segment %d missing end frame prompt", i), nil)
		}
	}
	return nil
}

// NormalizeNarration prepares narration text for speech synthesis: NFC
// normalization, control characters stripped, and whitespace collapsed so
// pacing is driven by punctuation rather than stray formatting. Whitespace
// controls (tab, CR) become plain spaces so they keep separating words.
func NormalizeNarration(text string) string {
	normalized := norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
