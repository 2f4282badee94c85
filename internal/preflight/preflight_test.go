package preflight_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"storyreel/internal/preflight"
	"storyreel/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckDirectoryAccess("Output directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for %s: %s", dir, result.Detail)
	}

	missing := preflight.CheckDirectoryAccess("Output directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Fatal("expected failure for missing directory")
	}
}

func TestCheckDirectoryAccessRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	testsupport.WriteFile(t, path, 1)

	result := preflight.CheckDirectoryAccess("Data directory", path)
	if result.Passed {
		t.Fatal("expected failure for plain file")
	}
}

func TestCheckProviderKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if result := preflight.CheckProviderKey(cfg); !result.Passed {
		t.Fatalf("expected configured key to pass: %s", result.Detail)
	}

	cfg.Provider.APIKey = ""
	if result := preflight.CheckProviderKey(cfg); result.Passed {
		t.Fatal("expected missing key to fail")
	}
}

func TestCheckPlannerReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{"content": `{"ok":true}`},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Planner.APIKey = "test-key"
	cfg.Planner.BaseURL = server.URL

	result := preflight.CheckPlanner(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected planner check to pass: %s", result.Detail)
	}
}

func TestRunAllIncludesDirectoryChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Planner.APIKey = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}
	if failed := preflight.Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
