package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyProjectCompleted(context.Background(), "Harbor Story", "final.mp4"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	type captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "plan awaiting review",
			notify: func(svc notifications.Service) error {
				return svc.NotifyPlanAwaitingReview(context.Background(), "Harbor Story", 5)
			},
			expectTitle:   "StoryReel - Plan Ready",
			expectMessage: "Plan for Harbor Story is ready: 5 segment prompts awaiting review",
			expectTags:    "storyreel,plan,review",
		},
		{
			name: "segment awaiting review",
			notify: func(svc notifications.Service) error {
				return svc.NotifySegmentAwaitingReview(context.Background(), "Harbor Story", 2)
			},
			expectTitle:   "StoryReel - Segment Ready",
			expectMessage: "Segment 2 of Harbor Story generated and awaiting review",
			expectTags:    "storyreel,segment,review",
		},
		{
			name: "segment failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifySegmentFailed(context.Background(), "Harbor Story", 3, "content policy violation")
			},
			expectTitle:    "StoryReel - Segment Failed",
			expectMessage:  "Segment 3 of Harbor Story failed: content policy violation",
			expectTags:     "storyreel,segment,failed",
			expectPriority: "high",
		},
		{
			name: "project completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyProjectCompleted(context.Background(), "Harbor Story", "harbor/final.mp4")
			},
			expectTitle:    "StoryReel - Complete",
			expectMessage:  "Final video ready: Harbor Story\nFile: harbor/final.mp4",
			expectTags:     "storyreel,project,completed",
			expectPriority: "high",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("database locked"), "workflow")
			},
			expectTitle:    "StoryReel - Error",
			expectMessage:  "Error with workflow: database locked",
			expectTags:     "storyreel,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				got.title = r.Header.Get("Title")
				got.tags = r.Header.Get("Tags")
				got.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				got.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.Review = true
			cfg.Notifications.Completion = true
			cfg.Notifications.Errors = true

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Review = false
	cfg.Notifications.Completion = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifySegmentAwaitingReview(context.Background(), "Harbor Story", 0); err != nil {
		t.Fatalf("disabled review notification returned error: %v", err)
	}
	if err := svc.NotifyProjectCompleted(context.Background(), "Harbor Story", ""); err != nil {
		t.Fatalf("disabled completion notification returned error: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "workflow"); err != nil {
		t.Fatalf("disabled error notification returned error: %v", err)
	}
}
