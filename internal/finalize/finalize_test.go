package finalize_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/finalize"
	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/store"
	"storyreel/internal/testsupport"
)

// fakeTools records media calls and fabricates outputs.
type fakeTools struct {
	calls         []string
	finalDuration float64
	failOn        string
}

func (f *fakeTools) record(name, out string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New(name + " exploded")
	}
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		return os.WriteFile(out, []byte(name), 0o644)
	}
	return nil
}

func (f *fakeTools) ConformAudioDuration(_ context.Context, _ string, _ float64, out string) error {
	return f.record("conform", out)
}

func (f *fakeTools) ConcatVideos(_ context.Context, inputs []string, out string) error {
	return f.record(fmt.Sprintf("concat-videos:%d", len(inputs)), out)
}

func (f *fakeTools) ConcatAudios(_ context.Context, inputs []string, out string) error {
	return f.record(fmt.Sprintf("concat-audios:%d", len(inputs)), out)
}

func (f *fakeTools) Mux(_ context.Context, _, _, out string) error {
	return f.record("mux", out)
}

func (f *fakeTools) ProbeDuration(context.Context, string) (float64, error) {
	f.calls = append(f.calls, "probe")
	return f.finalDuration, nil
}

func approveAll(t *testing.T, st *store.Store, projectID string) {
	t.Helper()
	for _, segment := range testsupport.Segments(t, st, projectID) {
		segment.Status = store.SegmentApprovedFinal
		segment.VideoFile = fmt.Sprintf("/videos/%03d.mp4", segment.Index)
		segment.AudioFile = fmt.Sprintf("/audios/%03d.mp3", segment.Index)
		segment.DurationSec = 6
		if err := st.UpdateSegment(context.Background(), segment); err != nil {
			t.Fatalf("UpdateSegment: %v", err)
		}
	}
}

func TestAssembleProducesFinalVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 18, 6)
	approveAll(t, st, project.ID)

	tools := &fakeTools{finalDuration: 18.0}
	fin := finalize.New(st, tools, cfg, logging.NewNop())

	finalPath, err := fin.Assemble(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, err := os.Stat(finalPath); err != nil {
		t.Fatalf("final video missing: %v", err)
	}
	// One conform per segment, then concat both tracks, mux, verify.
	want := []string{"conform", "conform", "conform", "concat-videos:3", "concat-audios:3", "mux", "probe"}
	if len(tools.calls) != len(want) {
		t.Fatalf("calls = %v", tools.calls)
	}
	for i, call := range want {
		if tools.calls[i] != call {
			t.Fatalf("call %d = %s, want %s (all: %v)", i, tools.calls[i], call, tools.calls)
		}
	}
	// Staging directory is removed after assembly.
	staging := filepath.Join(filepath.Dir(finalPath), "staging")
	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Fatal("staging directory left behind")
	}
}

func TestAssembleRejectsUnapprovedSegments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 12, 6)
	approveAll(t, st, project.ID)

	segments := testsupport.Segments(t, st, project.ID)
	segments[1].Status = store.SegmentGenerated
	if err := st.UpdateSegment(context.Background(), segments[1]); err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}

	tools := &fakeTools{finalDuration: 12.0}
	fin := finalize.New(st, tools, cfg, logging.NewNop())

	_, err := fin.Assemble(context.Background(), project.ID)
	if !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if len(tools.calls) != 0 {
		t.Fatalf("media work happened despite failed precondition: %v", tools.calls)
	}
}

func TestAssembleRejectsMissingArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 12, 6)
	approveAll(t, st, project.ID)

	segments := testsupport.Segments(t, st, project.ID)
	segments[0].AudioFile = ""
	if err := st.UpdateSegment(context.Background(), segments[0]); err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}

	fin := finalize.New(st, &fakeTools{}, cfg, logging.NewNop())
	_, err := fin.Assemble(context.Background(), project.ID)
	if !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestAssembleFailsOnDurationDrift(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 12, 6)
	approveAll(t, st, project.ID)

	// Tolerance defaults to 0.5s; report a 2s drift.
	tools := &fakeTools{finalDuration: 14.0}
	fin := finalize.New(st, tools, cfg, logging.NewNop())

	_, err := fin.Assemble(context.Background(), project.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "14.00s") {
		t.Fatalf("duration detail missing: %v", err)
	}
	// The drifted video never reaches the final path.
	finalPath := filepath.Join(cfg.Paths.OutputDir, project.ID, "final.mp4")
	if _, statErr := os.Stat(finalPath); !os.IsNotExist(statErr) {
		t.Fatal("drifted video left at final path")
	}
}

func TestAssembleStopsAtFirstToolFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 12, 6)
	approveAll(t, st, project.ID)

	tools := &fakeTools{finalDuration: 12.0, failOn: "mux"}
	fin := finalize.New(st, tools, cfg, logging.NewNop())

	if _, err := fin.Assemble(context.Background(), project.ID); err == nil {
		t.Fatal("expected mux failure to propagate")
	}
	finalPath := filepath.Join(cfg.Paths.OutputDir, project.ID, "final.mp4")
	if _, err := os.Stat(finalPath); !os.IsNotExist(err) {
		t.Fatal("partial output left at final path")
	}
}
