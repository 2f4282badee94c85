package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"storyreel/internal/logging"
	"storyreel/internal/orchestrator"
	"storyreel/internal/services"
	"storyreel/internal/store"
)

// SegmentActions is the per-segment orchestrator surface the API drives.
// Satisfied by *orchestrator.Orchestrator.
type SegmentActions interface {
	ApprovePrompt(ctx context.Context, projectID string, index int) error
	ApproveSegment(ctx context.Context, projectID string, index int) error
	Regenerate(ctx context.Context, projectID string, index int) error
	Cancel(ctx context.Context, projectID string, index int) error
	RetryFailed(ctx context.Context, projectID string, index int) error
}

// ProjectActions is the project-level orchestrator surface the API drives.
// Satisfied by *orchestrator.Orchestrator.
type ProjectActions interface {
	CreateProject(ctx context.Context, req orchestrator.CreateProjectRequest) (*store.Project, error)
	GeneratePlan(ctx context.Context, projectID string) error
}

// NewRouter builds the review API router.
func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = 2 * time.Second
	}
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/projects", listProjectsHandler(cfg))
	r.Post("/projects", createProjectHandler(cfg))
	r.Get("/projects/{id}", getProjectHandler(cfg))
	r.Post("/projects/{id}/plan", generatePlanHandler(cfg))
	r.Get("/projects/{id}/segments", listSegmentsHandler(cfg))
	r.Get("/projects/{id}/events", eventsHandler(cfg))

	r.Post("/projects/{id}/segments/{index}/approve-prompt", segmentActionHandler(cfg, cfg.Actions.ApprovePrompt))
	r.Post("/projects/{id}/segments/{index}/approve", segmentActionHandler(cfg, cfg.Actions.ApproveSegment))
	r.Post("/projects/{id}/segments/{index}/regenerate", segmentActionHandler(cfg, cfg.Actions.Regenerate))
	r.Post("/projects/{id}/segments/{index}/cancel", segmentActionHandler(cfg, cfg.Actions.Cancel))
	r.Post("/projects/{id}/segments/{index}/retry", segmentActionHandler(cfg, cfg.Actions.RetryFailed))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Store.ListProjects(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		resp := make([]ProjectResponse, 0, len(projects))
		for _, project := range projects {
			resp = append(resp, projectToResponse(project))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := loadSnapshot(w, r, cfg, chi.URLParam(r, "id"))
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, snapshot)
	}
}

func listSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := loadSnapshot(w, r, cfg, chi.URLParam(r, "id"))
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, snapshot.Segments)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		project, err := cfg.Projects.CreateProject(r.Context(), orchestrator.CreateProjectRequest{
			Name:           req.Name,
			StoryPrompt:    req.StoryPrompt,
			TargetSeconds:  req.TargetSeconds,
			SegmentSeconds: req.SegmentSeconds,
			VoiceID:        req.VoiceID,
			SeedFrame:      req.SeedFrame,
		})
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				WriteError(w, http.StatusBadRequest, services.FailureMessage(err), "BAD_REQUEST")
			} else {
				WriteError(w, http.StatusInternalServerError, services.FailureMessage(err), "INTERNAL_ERROR")
			}
			return
		}
		WriteJSON(w, http.StatusCreated, projectToResponse(project))
	}
}

func generatePlanHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Projects.GeneratePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeActionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func segmentActionHandler(cfg ServerConfig, action func(ctx context.Context, projectID string, index int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil || index < 0 {
			WriteError(w, http.StatusBadRequest, "segment index must be a non-negative integer", "BAD_REQUEST")
			return
		}
		if err := action(r.Context(), projectID, index); err != nil {
			writeActionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		WriteError(w, http.StatusNotFound, services.FailureMessage(err), "NOT_FOUND")
	case errors.Is(err, services.ErrPrecondition), errors.Is(err, services.ErrValidation):
		WriteError(w, http.StatusConflict, services.FailureMessage(err), "CONFLICT")
	default:
		WriteError(w, http.StatusInternalServerError, services.FailureMessage(err), "INTERNAL_ERROR")
	}
}

func loadSnapshot(w http.ResponseWriter, r *http.Request, cfg ServerConfig, projectID string) (StatusSnapshot, bool) {
	snapshot, err := buildSnapshot(r.Context(), cfg.Store, projectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
		} else {
			WriteError(w, http.StatusInternalServerError, "failed to load project", "INTERNAL_ERROR")
		}
		return StatusSnapshot{}, false
	}
	return snapshot, true
}

func buildSnapshot(ctx context.Context, st *store.Store, projectID string) (StatusSnapshot, error) {
	project, err := st.GetProject(ctx, projectID)
	if err != nil {
		return StatusSnapshot{}, err
	}
	if project == nil {
		return StatusSnapshot{}, services.Wrap(services.ErrNotFound, "httpapi", "snapshot", "project "+projectID, nil)
	}
	segments, err := st.SegmentsByProject(ctx, projectID)
	if err != nil {
		return StatusSnapshot{}, err
	}
	snapshot := StatusSnapshot{Project: projectToResponse(project)}
	for _, segment := range segments {
		snapshot.Segments = append(snapshot.Segments, segmentToResponse(segment))
	}
	return snapshot, nil
}
