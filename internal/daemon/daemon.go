package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"storyreel/internal/config"
	"storyreel/internal/httpapi"
	"storyreel/internal/logging"
	"storyreel/internal/store"
	"storyreel/internal/workflow"
)

// Daemon coordinates the background workflow manager and the review API, and
// enforces single-instance execution through a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	workflow *workflow.Manager
	api      *httpapi.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool
	WorkflowBusy bool
	LastError    string
	DBPath       string
	LockFilePath string
	APIBind      string
}

// New constructs a daemon. The API server may be nil when the review API is
// not wanted (tests).
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, wf *workflow.Manager, api *httpapi.Server) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "storyreeld.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		workflow: wf,
		api:      api,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, then launches the workflow manager and
// the review API listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another storyreel daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start workflow: %w", err)
	}
	d.cancel = cancel

	if d.api != nil {
		go func() {
			if err := d.api.Start(); err != nil {
				d.logger.Error("review api stopped", logging.Error(err))
			}
		}()
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api_bind", d.cfg.Paths.APIBind))
	return nil
}

// Stop stops background processing, the API listener, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.api != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.api.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("review api shutdown", logging.Error(err))
		}
		cancel()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status returns current runtime information.
func (d *Daemon) Status() Status {
	lastErr := ""
	if err := d.workflow.LastError(); err != nil {
		lastErr = err.Error()
	}
	return Status{
		Running:      d.running.Load(),
		WorkflowBusy: d.workflow.Running(),
		LastError:    lastErr,
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
		APIBind:      d.cfg.Paths.APIBind,
	}
}
