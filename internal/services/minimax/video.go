package minimax

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/poller"
	"storyreel/internal/services"
)

const maxVideoPromptLength = 2000

// VideoRequest describes one video generation submission. FirstFramePath is
// required; LastFramePath conditions the final frame when present.
type VideoRequest struct {
	Prompt          string
	FirstFramePath  string
	LastFramePath   string
	DurationSeconds int
	Resolution      string
}

type videoSubmitResponse struct {
	TaskID   string   `json:"task_id"`
	BaseResp baseResp `json:"base_resp"`
}

type videoStatusResponse struct {
	TaskID   string   `json:"task_id"`
	Status   string   `json:"status"`
	FileID   string   `json:"file_id"`
	BaseResp baseResp `json:"base_resp"`
}

// SubmitVideo starts an asynchronous video generation task and returns the
// provider task id. The duration must be one the model supports (6 or 10s).
func (c *Client) SubmitVideo(ctx context.Context, req VideoRequest) (string, error) {
	const operation = "submit video"
	if strings.TrimSpace(req.Prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "minimax", operation, "prompt required", nil)
	}
	if req.DurationSeconds != 6 && req.DurationSeconds != 10 {
		return "", services.Wrap(services.ErrValidation, "minimax", operation,
			fmt.Sprintf("unsupported duration %ds (model accepts 6 or 10)", req.DurationSeconds), nil)
	}
	firstFrame, err := encodeImageDataURL(req.FirstFramePath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "minimax", operation, "read first frame", err)
	}

	prompt := req.Prompt
	if len(prompt) > maxVideoPromptLength {
		prompt = prompt[:maxVideoPromptLength]
	}
	resolution := req.Resolution
	if resolution == "" {
		resolution = "768P"
	}
	payload := map[string]any{
		"model":             c.cfg.VideoModel,
		"prompt":            prompt,
		"first_frame_image": firstFrame,
		"duration":          req.DurationSeconds,
		"resolution":        resolution,
	}
	if req.LastFramePath != "" {
		lastFrame, err := encodeImageDataURL(req.LastFramePath)
		if err != nil {
			return "", services.Wrap(services.ErrValidation, "minimax", operation, "read last frame", err)
		}
		payload["last_frame_image"] = lastFrame
	}

	var decoded videoSubmitResponse
	if err := c.postJSON(ctx, operation, "/video_generation", payload, &decoded); err != nil {
		return "", err
	}
	if !decoded.BaseResp.ok() {
		return "", services.Wrap(services.ErrExternalTool, "minimax", operation, decoded.BaseResp.StatusMsg, nil)
	}
	if decoded.TaskID == "" {
		return "", services.Wrap(services.ErrExternalTool, "minimax", operation, "no task id in response", nil)
	}
	return decoded.TaskID, nil
}

// VideoStatus observes a video generation task once and maps the provider
// status into a poll phase. Terminal success carries the artifact file id.
func (c *Client) VideoStatus(ctx context.Context, taskID string) (poller.Check, error) {
	const operation = "video status"
	if strings.TrimSpace(taskID) == "" {
		return poller.Check{}, services.Wrap(services.ErrValidation, "minimax", operation, "task id required", nil)
	}
	query := url.Values{"task_id": []string{taskID}}

	var decoded videoStatusResponse
	if err := c.getJSON(ctx, operation, "/query/video_generation", query, &decoded); err != nil {
		return poller.Check{}, err
	}
	if !decoded.BaseResp.ok() {
		return poller.Check{}, services.Wrap(services.ErrTransient, "minimax", operation, decoded.BaseResp.StatusMsg, nil)
	}
	return mapTaskStatus(decoded.Status, decoded.FileID, decoded.BaseResp.StatusMsg), nil
}

// mapTaskStatus translates MiniMax task states into poll phases. Unknown
// states pass through verbatim so the awaiting layer fails loudly instead of
// guessing.
func mapTaskStatus(status, fileID, message string) poller.Check {
	switch status {
	case "Queueing":
		return poller.Check{Phase: poller.PhaseQueued}
	case "Preparing", "Processing":
		return poller.Check{Phase: poller.PhaseInProgress}
	case "Success":
		return poller.Check{Phase: poller.PhaseSucceeded, Artifact: fileID}
	case "Fail":
		if message == "" {
			message = "generation failed"
		}
		return poller.Check{Phase: poller.PhaseFailed, Message: message}
	default:
		return poller.Check{Phase: poller.Phase(status)}
	}
}

// encodeImageDataURL reads an image file and returns it as a base64 data URL,
// the inline form the generation endpoint accepts for frame conditioning.
func encodeImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := "image/jpeg"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mime = "image/png"
	case ".webp":
		mime = "image/webp"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
