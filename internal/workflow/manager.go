package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/store"
)

// Advancer is the orchestrator surface the manager drives. Satisfied by
// *orchestrator.Orchestrator.
type Advancer interface {
	NextEligible(ctx context.Context, projectID string) (*store.Segment, error)
	AdvanceSegment(ctx context.Context, projectID string, index int) error
	ResumeInFlight(ctx context.Context, projectID string) (bool, error)
}

// Manager coordinates background segment generation.
type Manager struct {
	cfg          *config.Config
	store        *store.Store
	advancer     Advancer
	logger       *slog.Logger
	pollInterval time.Duration
	errorRetry   time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, st *store.Store, advancer Advancer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	pollInterval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	errorRetry := time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second
	if errorRetry <= 0 {
		errorRetry = 10 * time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        st,
		advancer:     advancer,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: pollInterval,
		errorRetry:   errorRetry,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the background loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent loop error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	m.logger.Info("workflow loop started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("workflow loop stopped")
			return
		default:
		}

		advanced, err := m.runOnce(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Error("workflow iteration failed", logging.Error(err))
			m.waitOrShutdown(ctx, m.errorRetry)
			continue
		}
		if !advanced {
			m.waitOrShutdown(ctx, m.pollInterval)
		}
	}
}

// runOnce advances at most one segment per active project. It reports whether
// any work happened so the loop knows when to idle.
func (m *Manager) runOnce(ctx context.Context) (bool, error) {
	projects, err := m.store.ListProjects(ctx, store.ProjectPlanReady, store.ProjectGenerating)
	if err != nil {
		return false, err
	}

	advanced := false
	for _, project := range projects {
		// Segments a previous process left mid-generation come first: their
		// persisted job ids let polling resume without resubmission.
		resumed, err := m.advancer.ResumeInFlight(ctx, project.ID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return advanced, err
			}
			m.setLastError(err)
			m.logger.Warn("resume in-flight segments failed",
				logging.String(logging.FieldProjectID, project.ID),
				logging.Error(err))
		}
		if resumed {
			advanced = true
		}

		segment, err := m.advancer.NextEligible(ctx, project.ID)
		if err != nil {
			return advanced, err
		}
		if segment == nil {
			continue
		}
		m.logger.Info("advancing segment",
			logging.String(logging.FieldProjectID, project.ID),
			logging.Int(logging.FieldSegmentIndex, segment.Index))
		if err := m.advancer.AdvanceSegment(ctx, project.ID, segment.Index); err != nil {
			if errors.Is(err, context.Canceled) {
				return advanced, err
			}
			// Segment failures are recorded on the segment; the loop moves on
			// to other projects rather than stalling the daemon.
			m.setLastError(err)
			m.logger.Warn("segment advance failed",
				logging.String(logging.FieldProjectID, project.ID),
				logging.Int(logging.FieldSegmentIndex, segment.Index),
				logging.Error(err))
			continue
		}
		advanced = true
	}
	return advanced, nil
}

func (m *Manager) waitOrShutdown(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
