// Package daemonrun wires the daemon's dependency graph and runs it until a
// shutdown signal arrives.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"storyreel/internal/artifacts"
	"storyreel/internal/config"
	"storyreel/internal/daemon"
	"storyreel/internal/deps"
	"storyreel/internal/finalize"
	"storyreel/internal/httpapi"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/notifications"
	"storyreel/internal/orchestrator"
	"storyreel/internal/preflight"
	"storyreel/internal/services/minimax"
	"storyreel/internal/services/planner"
	"storyreel/internal/store"
	"storyreel/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the storyreel daemon runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("storyreel-%s.log", runID))
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update storyreel.log link: %v\n", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "storyreel.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logDependencySnapshot(logger, cfg)
	for _, result := range preflight.Failed(preflight.RunAll(signalCtx, cfg)) {
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer st.Close()

	provider := minimax.NewClient(minimax.Config{
		APIKey:         cfg.Provider.APIKey,
		BaseURL:        cfg.Provider.BaseURL,
		VideoModel:     cfg.Provider.VideoModel,
		SpeechModel:    cfg.Provider.SpeechModel,
		TimeoutSeconds: cfg.Provider.RequestTimeout,
	})
	plannerClient := planner.NewClient(planner.Config{
		APIKey:         cfg.Planner.APIKey,
		BaseURL:        cfg.Planner.BaseURL,
		Model:          cfg.Planner.Model,
		TimeoutSeconds: cfg.Planner.TimeoutSeconds,
	})
	tools := media.NewTools(cfg.Paths.FFmpegBin, cfg.Paths.FFprobeBin)
	assembler := finalize.New(st, tools, cfg, logger)
	publisher, err := artifacts.NewPublisher(cfg)
	if err != nil {
		logger.Error("configure artifact publisher", logging.Error(err))
		return err
	}
	notifier := notifications.NewService(cfg)

	orch := orchestrator.New(orchestrator.Options{
		Store:     st,
		Provider:  provider,
		Planner:   plannerClient,
		Extractor: tools,
		Assembler: assembler,
		Publisher: publisher,
		Notifier:  notifier,
		Config:    cfg,
		Logger:    logger,
	})
	wf := workflow.NewManager(cfg, st, orch, logger)
	api := httpapi.NewServer(httpapi.ServerConfig{
		Bind:     cfg.Paths.APIBind,
		Store:    st,
		Actions:  orch,
		Projects: orch,
		Logger:   logger,
	})

	d, err := daemon.New(cfg, st, logger, wf, api)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	<-signalCtx.Done()
	logger.Info("storyreel daemon shutting down")
	return nil
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		logger.Info("dependency snapshot",
			logging.String("name", status.Name),
			logging.String("binary", status.Command),
			logging.Bool("available", status.Available))
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "storyreel.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
