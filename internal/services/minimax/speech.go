package minimax

import (
	"context"
	"net/url"
	"strings"

	"storyreel/internal/poller"
	"storyreel/internal/services"
)

// SpeechRequest describes one narration synthesis submission.
type SpeechRequest struct {
	Text    string
	VoiceID string
	Speed   float64
	Format  string
}

type speechSubmitResponse struct {
	TaskID   string   `json:"task_id"`
	BaseResp baseResp `json:"base_resp"`
}

type speechStatusResponse struct {
	TaskID   string   `json:"task_id"`
	Status   string   `json:"status"`
	FileID   string   `json:"file_id"`
	BaseResp baseResp `json:"base_resp"`
}

// SubmitSpeech starts an asynchronous text-to-audio task and returns the
// provider task id.
func (c *Client) SubmitSpeech(ctx context.Context, req SpeechRequest) (string, error) {
	const operation = "submit speech"
	if strings.TrimSpace(req.Text) == "" {
		return "", services.Wrap(services.ErrValidation, "minimax", operation, "text required", nil)
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		return "", services.Wrap(services.ErrValidation, "minimax", operation, "voice id required", nil)
	}
	speed := req.Speed
	if speed <= 0 {
		speed = 1.0
	}
	format := req.Format
	if format == "" {
		format = "mp3"
	}
	payload := map[string]any{
		"model": c.cfg.SpeechModel,
		"text":  req.Text,
		"voice_setting": map[string]any{
			"voice_id": req.VoiceID,
			"speed":    speed,
		},
		"audio_setting": map[string]any{
			"format": format,
		},
	}

	var decoded speechSubmitResponse
	if err := c.postJSON(ctx, operation, "/t2a_async_v2", payload, &decoded); err != nil {
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

// SpeechStatus observes a speech synthesis task once.
func (c *Client) SpeechStatus(ctx context.Context, taskID string) (poller.Check, error) {
	const operation = "speech status"
	if strings.TrimSpace(taskID) == "" {
		return poller.Check{}, services.Wrap(services.ErrValidation, "minimax", operation, "task id required", nil)
	}
	query := url.Values{"task_id": []string{taskID}}

	var decoded speechStatusResponse
	if err := c.getJSON(ctx, operation, "/query/t2a_async_v2", query, &decoded); err != nil {
		return poller.Check{}, err
	}
	if !decoded.BaseResp.ok() {
		return poller.Check{}, services.Wrap(services.ErrTransient, "minimax", operation, decoded.BaseResp.StatusMsg, nil)
	}
	return mapTaskStatus(decoded.Status, decoded.FileID, decoded.BaseResp.StatusMsg), nil
}
