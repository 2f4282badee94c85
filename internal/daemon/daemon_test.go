package daemon_test

import (
	"context"
	"testing"

	"storyreel/internal/daemon"
	"storyreel/internal/logging"
	"storyreel/internal/store"
	"storyreel/internal/testsupport"
	"storyreel/internal/workflow"
)

type idleAdvancer struct{}

func (idleAdvancer) NextEligible(context.Context, string) (*store.Segment, error) {
	return nil, nil
}

func (idleAdvancer) AdvanceSegment(context.Context, string, int) error {
	return nil
}

func (idleAdvancer) ResumeInFlight(context.Context, string) (bool, error) {
	return false, nil
}

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	wf := workflow.NewManager(cfg, st, idleAdvancer{}, logger)
	d, err := daemon.New(cfg, st, logger, wf, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newDaemon(t)
	t.Cleanup(d.Stop)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status := d.Status()
	if !status.Running {
		t.Fatal("expected running after Start")
	}
	if status.LockFilePath == "" {
		t.Fatal("expected lock file path")
	}

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected stopped after Stop")
	}
	d.Stop()
}

func TestDaemonRestartAfterStop(t *testing.T) {
	d := newDaemon(t)
	t.Cleanup(d.Stop)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Stop()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
}

func TestDaemonRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
