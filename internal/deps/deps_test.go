package deps_test

import (
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/deps"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	results := deps.CheckBinaries([]deps.Requirement{
		{Name: "Ghost", Command: "definitely-not-a-real-binary-xyz"},
	})
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[0].Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "fakeprobe")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	t.Setenv("PATH", dir)

	results := deps.CheckBinaries([]deps.Requirement{
		{Name: "FakeProbe", Command: "fakeprobe"},
	})
	if !results[0].Available {
		t.Fatalf("expected availability, got %+v", results[0])
	}
	if results[0].Command != bin {
		t.Fatalf("resolved command = %q", results[0].Command)
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	results := deps.CheckBinaries([]deps.Requirement{{Name: "Empty"}})
	if results[0].Available {
		t.Fatal("empty command must not be available")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("detail = %q", results[0].Detail)
	}
}

func TestRequirementsUsesConfiguredBinaries(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.FFmpegBin = "/opt/ffmpeg/bin/ffmpeg"
	reqs := deps.Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("requirements = %d", len(reqs))
	}
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg command = %q", reqs[0].Command)
	}
}
