package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/orchestrator"
	"storyreel/internal/services"
)

// Client talks to a running daemon's review API. The CLI uses it for every
// command that needs the daemon rather than touching the database directly.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the daemon listening on bind (host:port).
func NewClient(bind string) *Client {
	base := strings.TrimSpace(bind)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Health reports whether the daemon is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Projects lists every project known to the daemon.
func (c *Client) Projects(ctx context.Context) ([]ProjectResponse, error) {
	var projects []ProjectResponse
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Project fetches one project with its segments.
func (c *Client) Project(ctx context.Context, projectID string) (StatusSnapshot, error) {
	var snapshot StatusSnapshot
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID, nil, &snapshot); err != nil {
		return StatusSnapshot{}, err
	}
	return snapshot, nil
}

// CreateProject submits a new project.
func (c *Client) CreateProject(ctx context.Context, req orchestrator.CreateProjectRequest) (ProjectResponse, error) {
	body := CreateProjectRequest{
		Name:           req.Name,
		StoryPrompt:    req.StoryPrompt,
		TargetSeconds:  req.TargetSeconds,
		SegmentSeconds: req.SegmentSeconds,
		VoiceID:        req.VoiceID,
		SeedFrame:      req.SeedFrame,
	}
	var project ProjectResponse
	if err := c.do(ctx, http.MethodPost, "/projects", body, &project); err != nil {
		return ProjectResponse{}, err
	}
	return project, nil
}

// GeneratePlan asks the daemon to run plan generation for a project.
func (c *Client) GeneratePlan(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodPost, "/projects/"+projectID+"/plan", nil, nil)
}

// SegmentAction invokes one of the review actions (approve-prompt, approve,
// regenerate, cancel, retry) on a segment.
func (c *Client) SegmentAction(ctx context.Context, projectID string, index int, action string) error {
	path := fmt.Sprintf("/projects/%s/segments/%d/%s", projectID, index, action)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return services.Wrap(services.ErrValidation, "httpapi", "encode request", path, err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return services.Wrap(services.ErrValidation, "httpapi", "build request", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "httpapi", "daemon unreachable",
			"is storyreeld running?", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		message := envelope.Error
		if message == "" {
			message = resp.Status
		}
		return services.Wrap(markerForStatus(resp.StatusCode), "httpapi", method+" "+path, message, nil)
	}
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return services.Wrap(services.ErrTransient, "httpapi", "decode response", path, err)
		}
	}
	return nil
}

func markerForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return services.ErrNotFound
	case http.StatusBadRequest:
		return services.ErrValidation
	case http.StatusConflict:
		return services.ErrPrecondition
	default:
		return services.ErrTransient
	}
}
