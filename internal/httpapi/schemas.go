package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"storyreel/internal/store"
)

// ProjectResponse is the JSON shape for a project.
type ProjectResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	TargetSeconds  int       `json:"target_seconds"`
	SegmentSeconds int       `json:"segment_seconds"`
	SegmentCount   int       `json:"segment_count"`
	FinalVideo     string    `json:"final_video,omitempty"`
	PublishedURL   string    `json:"published_url,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SegmentResponse is the JSON shape for a segment.
type SegmentResponse struct {
	ID             string `json:"id"`
	Index          int    `json:"index"`
	Status         string `json:"status"`
	VideoPrompt    string `json:"video_prompt,omitempty"`
	NarrationText  string `json:"narration_text,omitempty"`
	EndFramePrompt string `json:"end_frame_prompt,omitempty"`
	PromptApproved bool   `json:"prompt_approved"`
	VideoFile      string `json:"video_file,omitempty"`
	AudioFile      string `json:"audio_file,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// CreateProjectRequest is the JSON body for POST /projects.
type CreateProjectRequest struct {
	Name           string `json:"name"`
	StoryPrompt    string `json:"story_prompt"`
	TargetSeconds  int    `json:"target_seconds"`
	SegmentSeconds int    `json:"segment_seconds"`
	VoiceID        string `json:"voice_id,omitempty"`
	SeedFrame      string `json:"seed_frame"`
}

// StatusSnapshot is one websocket frame: a project with its segments.
type StatusSnapshot struct {
	Project  ProjectResponse   `json:"project"`
	Segments []SegmentResponse `json:"segments"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func projectToResponse(p *store.Project) ProjectResponse {
	return ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Status:         string(p.Status),
		TargetSeconds:  p.TargetSeconds,
		SegmentSeconds: p.SegmentSeconds,
		SegmentCount:   p.SegmentCount,
		FinalVideo:     p.FinalVideo,
		PublishedURL:   p.PublishedURL,
		ErrorMessage:   p.ErrorMessage,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func segmentToResponse(s *store.Segment) SegmentResponse {
	return SegmentResponse{
		ID:             s.ID,
		Index:          s.Index,
		Status:         string(s.Status),
		VideoPrompt:    s.VideoPrompt,
		NarrationText:  s.NarrationText,
		EndFramePrompt: s.EndFramePrompt,
		PromptApproved: s.PromptApproved,
		VideoFile:      s.VideoFile,
		AudioFile:      s.AudioFile,
		ErrorMessage:   s.ErrorMessage,
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code})
}
