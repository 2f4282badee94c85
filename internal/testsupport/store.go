package testsupport

import (
	"context"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewProject creates a project with the given segment layout for tests.
func NewProject(t testing.TB, st *store.Store, name string, targetSeconds, segmentSeconds int) *store.Project {
	t.Helper()

	project, err := st.CreateProject(context.Background(), &store.Project{
		Name:           name,
		TargetSeconds:  targetSeconds,
		SegmentSeconds: segmentSeconds,
		SegmentCount:   targetSeconds / segmentSeconds,
		SeedFrame:      "seed.png",
		VoiceID:        "voice-test",
	})
	if err != nil {
		t.Fatalf("store.CreateProject: %v", err)
	}
	return project
}

// Segments returns a project's segments in index order, failing the test on error.
func Segments(t testing.TB, st *store.Store, projectID string) []*store.Segment {
	t.Helper()

	segments, err := st.SegmentsByProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("store.SegmentsByProject: %v", err)
	}
	return segments
}
