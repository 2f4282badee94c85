package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"storyreel/internal/artifacts"
	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/notifications"
	"storyreel/internal/poller"
	"storyreel/internal/services/minimax"
	"storyreel/internal/services/planner"
	"storyreel/internal/store"
)

// Provider is the generation backend. Satisfied by *minimax.Client.
type Provider interface {
	SubmitVideo(ctx context.Context, req minimax.VideoRequest) (string, error)
	SubmitSpeech(ctx context.Context, req minimax.SpeechRequest) (string, error)
	VideoStatus(ctx context.Context, taskID string) (poller.Check, error)
	SpeechStatus(ctx context.Context, taskID string) (poller.Check, error)
	DownloadArtifact(ctx context.Context, fileID, destPath string) error
}

// Planner produces segment prompts from a story concept. Satisfied by
// *planner.Client.
type Planner interface {
	GeneratePlan(ctx context.Context, storyPrompt string, segmentCount, segmentSeconds int) (planner.Plan, error)
}

// FrameExtractor is the slice of media tooling generation needs. Satisfied
// by *media.Tools.
type FrameExtractor interface {
	ExtractLastFrame(ctx context.Context, videoPath, outPath string) error
}

// Assembler produces the final video once every segment is approved.
// Satisfied by *finalize.Finalizer.
type Assembler interface {
	Assemble(ctx context.Context, projectID string) (string, error)
}

// Orchestrator drives projects and segments through their lifecycles.
type Orchestrator struct {
	store     *store.Store
	provider  Provider
	planner   Planner
	extractor FrameExtractor
	assembler Assembler
	publisher artifacts.Publisher
	notifier  notifications.Service
	awaiter   *poller.Awaiter
	cfg       *config.Config
	logger    *slog.Logger
}

// Options bundles the orchestrator's collaborators.
type Options struct {
	Store     *store.Store
	Provider  Provider
	Planner   Planner
	Extractor FrameExtractor
	Assembler Assembler
	Publisher artifacts.Publisher
	Notifier  notifications.Service
	Clock     poller.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// New constructs an Orchestrator. A nil notifier or publisher degrades to
// no-ops; a nil clock selects the wall clock.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher, _ = artifacts.NewPublisher(&config.Config{})
	}
	awaiter := poller.New(poller.Config{
		PollInterval:     time.Duration(opts.Config.Provider.PollInterval) * time.Second,
		MaxWait:          time.Duration(opts.Config.Provider.MaxWaitSeconds) * time.Second,
		TransientRetries: opts.Config.Provider.TransientRetries,
	}, opts.Clock)
	return &Orchestrator{
		store:     opts.Store,
		provider:  opts.Provider,
		planner:   opts.Planner,
		extractor: opts.Extractor,
		assembler: opts.Assembler,
		publisher: publisher,
		notifier:  notifier,
		awaiter:   awaiter,
		cfg:       opts.Config,
		logger:    logging.NewComponentLogger(logger, "orchestrator"),
	}
}
