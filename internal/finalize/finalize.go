package finalize

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"storyreel/internal/config"
	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/store"
)

// MediaTools is the subset of media operations assembly needs. Satisfied by
// *media.Tools; tests substitute a fake.
type MediaTools interface {
	ConformAudioDuration(ctx context.Context, audioPath string, targetSeconds float64, outPath string) error
	ConcatVideos(ctx context.Context, inputs []string, outPath string) error
	ConcatAudios(ctx context.Context, inputs []string, outPath string) error
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Finalizer assembles approved projects into final videos.
type Finalizer struct {
	store     *store.Store
	tools     MediaTools
	outputDir string
	tolerance float64
	logger    *slog.Logger
}

// New constructs a Finalizer.
func New(st *store.Store, tools MediaTools, cfg *config.Config, logger *slog.Logger) *Finalizer {
	tolerance := cfg.Projects.DurationTolerance
	if tolerance <= 0 {
		tolerance = 0.5
	}
	return &Finalizer{
		store:     st,
		tools:     tools,
		outputDir: cfg.Paths.OutputDir,
		tolerance: tolerance,
		logger:    logging.NewComponentLogger(logger, "finalize"),
	}
}

// Assemble produces the final video for the project and returns its path.
// The project must have every segment approved; partial projects are
// rejected before any media work happens.
func (f *Finalizer) Assemble(ctx context.Context, projectID string) (string, error) {
	const operation = "assemble"
	project, err := f.store.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "", services.Wrap(services.ErrNotFound, "finalize", operation, "project "+projectID, nil)
	}
	segments, err := f.store.SegmentsByProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	if err := checkReady(project, segments); err != nil {
		return "", err
	}

	f.logger.Info("assembling final video",
		logging.String(logging.FieldProjectID, project.ID),
		logging.Int("segments", len(segments)))

	staging := filepath.Join(f.outputDir, project.ID, "staging")
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "finalize", operation, "create staging directory", err)
	}
	defer os.RemoveAll(staging)

	videos := make([]string, 0, len(segments))
	audios := make([]string, 0, len(segments))
	for _, segment := range segments {
		conformed := filepath.Join(staging, fmt.Sprintf("audio-%03d.mp3", segment.Index))
		if err := f.tools.ConformAudioDuration(ctx, segment.AudioFile, float64(segment.DurationSec), conformed); err != nil {
			return "", err
		}
		videos = append(videos, segment.VideoFile)
		audios = append(audios, conformed)
	}

	videoTrack := filepath.Join(staging, "video.mp4")
	if err := f.tools.ConcatVideos(ctx, videos, videoTrack); err != nil {
		return "", err
	}
	audioTrack := filepath.Join(staging, "audio.mp3")
	if err := f.tools.ConcatAudios(ctx, audios, audioTrack); err != nil {
		return "", err
	}

	muxed := filepath.Join(staging, "final.mp4")
	if err := f.tools.Mux(ctx, videoTrack, audioTrack, muxed); err != nil {
		return "", err
	}

	if err := f.verifyDuration(ctx, muxed, project); err != nil {
		return "", err
	}

	finalPath := filepath.Join(f.outputDir, project.ID, "final.mp4")
	if err := fileutil.MoveFile(muxed, finalPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "finalize", operation, "move final video", err)
	}
	f.logger.Info("final video assembled",
		logging.String(logging.FieldProjectID, project.ID),
		logging.String("path", finalPath))
	return finalPath, nil
}

// checkReady enforces the assembly preconditions: a contiguous run of
// segments, every one approved, every one carrying both artifacts.
func checkReady(project *store.Project, segments []*store.Segment) error {
	const operation = "check ready"
	if len(segments) == 0 {
		return services.Wrap(services.ErrPrecondition, "finalize", operation, "project has no segments", nil)
	}
	if len(segments) != project.SegmentCount {
		return services.Wrap(services.ErrPrecondition, "finalize", operation,
			fmt.Sprintf("expected %d segments, found %d", project.SegmentCount, len(segments)), nil)
	}
	for i, segment := range segments {
		if segment.Index != i {
			return services.Wrap(services.ErrPrecondition, "finalize", operation,
				fmt.Sprintf("segment indexes not contiguous at position %d", i), nil)
		}
		if segment.Status != store.SegmentApprovedFinal {
			return services.Wrap(services.ErrPrecondition, "finalize", operation,
				fmt.Sprintf("segment %d is %s, not approved", segment.Index, segment.Status), nil)
		}
		if segment.VideoFile == "" || segment.AudioFile == "" {
			return services.Wrap(services.ErrPrecondition, "finalize", operation,
				fmt.Sprintf("segment %d missing generated artifacts", segment.Index), nil)
		}
	}
	return nil
}

// verifyDuration compares the assembled video against the project target.
// A deviation beyond the tolerance is a hard failure, not a warning.
func (f *Finalizer) verifyDuration(ctx context.Context, path string, project *store.Project) error {
	actual, err := f.tools.ProbeDuration(ctx, path)
	if err != nil {
		return err
	}
	expected := float64(project.SegmentCount * project.SegmentSeconds)
	if math.Abs(actual-expected) > f.tolerance {
		return services.Wrap(services.ErrValidation, "finalize", "verify duration",
			fmt.Sprintf("assembled video is %.2fs, expected %.2fs (tolerance %.2fs)", actual, expected, f.tolerance), nil)
	}
	return nil
}
