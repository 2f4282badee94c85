package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/store"
	"storyreel/internal/testsupport"
	"storyreel/internal/workflow"
)

// fakeAdvancer hands out one eligible segment until it is consumed.
type fakeAdvancer struct {
	mu          sync.Mutex
	eligible    *store.Segment
	advanced    []int
	err         error
	resumable   bool
	resumeCalls int
}

func (f *fakeAdvancer) NextEligible(_ context.Context, projectID string) (*store.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eligible, nil
}

func (f *fakeAdvancer) AdvanceSegment(_ context.Context, projectID string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.advanced = append(f.advanced, index)
	f.eligible = nil
	return nil
}

func (f *fakeAdvancer) ResumeInFlight(_ context.Context, projectID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCalls++
	resumed := f.resumable
	f.resumable = false
	return resumed, nil
}

func (f *fakeAdvancer) resumed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumeCalls
}

func (f *fakeAdvancer) advancedIndexes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]int, len(f.advanced))
	copy(cp, f.advanced)
	return cp
}

func markPlanReady(t *testing.T, st *store.Store, projectID string) {
	t.Helper()
	project, err := st.GetProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	project.Status = store.ProjectPlanReady
	if err := st.UpdateProject(context.Background(), project); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}

func TestManagerAdvancesEligibleSegment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 12, 6)
	markPlanReady(t, st, project.ID)

	segments := testsupport.Segments(t, st, project.ID)
	advancer := &fakeAdvancer{eligible: segments[0]}
	manager := workflow.NewManager(cfg, st, advancer, logging.NewNop())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	waitFor(t, 5*time.Second, func() bool {
		return len(advancer.advancedIndexes()) == 1
	})
	if got := advancer.advancedIndexes(); got[0] != 0 {
		t.Fatalf("advanced = %v", got)
	}
}

func TestManagerResumesInFlightBeforeAdvancing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 12, 6)
	markPlanReady(t, st, project.ID)

	advancer := &fakeAdvancer{resumable: true}
	manager := workflow.NewManager(cfg, st, advancer, logging.NewNop())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	waitFor(t, 5*time.Second, func() bool {
		return advancer.resumed() >= 1
	})
}

func TestManagerStartIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, st, &fakeAdvancer{}, logging.NewNop())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail while running")
	}
}

func TestManagerStopTerminatesLoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	st := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, st, &fakeAdvancer{}, logging.NewNop())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	manager.Stop()
	if manager.Running() {
		t.Fatal("manager still running after Stop")
	}
	// Stop again is a no-op.
	manager.Stop()
}

func TestManagerContinuesAfterAdvanceFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.NewProject(t, st, "harbor", 12, 6)
	markPlanReady(t, st, project.ID)

	segments := testsupport.Segments(t, st, project.ID)
	advanceErr := errors.New("provider rejected prompt")
	advancer := &fakeAdvancer{eligible: segments[0], err: advanceErr}
	manager := workflow.NewManager(cfg, st, advancer, logging.NewNop())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	waitFor(t, 5*time.Second, func() bool {
		return errors.Is(manager.LastError(), advanceErr)
	})
	if !manager.Running() {
		t.Fatal("loop exited on a segment failure")
	}
}
