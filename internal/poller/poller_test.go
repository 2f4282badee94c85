package poller

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeClock advances virtual time on every sleep.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
	return nil
}

func testConfig() Config {
	return Config{
		PollInterval:     10 * time.Second,
		MaxWait:          5 * time.Minute,
		TransientRetries: 3,
		BackoffBase:      time.Second,
		BackoffMax:       8 * time.Second,
	}
}

func TestAwaitSuccessAfterProgress(t *testing.T) {
	clock := newFakeClock()
	awaiter := New(testConfig(), clock)

	phases := []Check{
		{Phase: PhaseQueued},
		{Phase: PhaseInProgress},
		{Phase: PhaseInProgress},
		{Phase: PhaseSucceeded, Artifact: "file-123"},
	}
	calls := 0
	result, err := awaiter.Await(context.Background(), func(context.Context) (Check, error) {
		observed := phases[calls]
		calls++
		return observed, nil
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if result.Outcome != OutcomeSuccess || result.Artifact != "file-123" {
		t.Fatalf("unexpected result: %#v", result)
	}
	if calls != 4 {
		t.Fatalf("expected 4 polls, got %d", calls)
	}
	// Steady-state waits use the fixed interval, not backoff.
	for _, d := range clock.sleeps {
		if d != 10*time.Second {
			t.Fatalf("steady-state sleep was %s", d)
		}
	}
}

func TestAwaitTerminalFailureKeepsMessage(t *testing.T) {
	awaiter := New(testConfig(), newFakeClock())

	result, err := awaiter.Await(context.Background(), func(context.Context) (Check, error) {
		return Check{Phase: PhaseFailed, Message: "content policy violation"}, nil
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if result.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if result.Reason != "content policy violation" {
		t.Fatalf("reason = %q", result.Reason)
	}
}

func TestAwaitRetriesTransientErrorsWithBackoff(t *testing.T) {
	clock := newFakeClock()
	awaiter := New(testConfig(), clock)

	calls := 0
	result, err := awaiter.Await(context.Background(), func(context.Context) (Check, error) {
		calls++
		if calls <= 2 {
			return Check{}, errors.New("connection reset")
		}
		return Check{Phase: PhaseSucceeded, Artifact: "ok"}, nil
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if len(clock.sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(clock.sleeps))
	}
	// Second backoff must not be shorter than the first's base (exponential).
	if clock.sleeps[1] < time.Second {
		t.Fatalf("backoff too short: %s", clock.sleeps[1])
	}
}

func TestAwaitExhaustsTransientBudget(t *testing.T) {
	awaiter := New(testConfig(), newFakeClock())

	result, err := awaiter.Await(context.Background(), func(context.Context) (Check, error) {
		return Check{}, errors.New("503 upstream")
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if result.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if !strings.Contains(result.Reason, "consecutive") {
		t.Fatalf("reason = %q", result.Reason)
	}
}

func TestAwaitTimesOutAtCeiling(t *testing.T) {
	cfg := testConfig()
	cfg.MaxWait = 25 * time.Second
	clock := newFakeClock()
	awaiter := New(cfg, clock)

	result, err := awaiter.Await(context.Background(), func(context.Context) (Check, error) {
		return Check{Phase: PhaseInProgress}, nil
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if result.Outcome != OutcomeTimeout {
		t.Fatalf("outcome = %s", result.Outcome)
	}
}

func TestAwaitUnrecognizedPhaseFails(t *testing.T) {
	awaiter := New(testConfig(), newFakeClock())

	result, err := awaiter.Await(context.Background(), func(context.Context) (Check, error) {
		return Check{Phase: Phase("mystery")}, nil
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if result.Outcome != OutcomeFailure || !strings.Contains(result.Reason, "mystery") {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestAwaitHonorsCancellation(t *testing.T) {
	awaiter := New(testConfig(), newFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := awaiter.Await(ctx, func(ctx context.Context) (Check, error) {
		return Check{}, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTransientCounterResetsOnSuccessfulPoll(t *testing.T) {
	cfg := testConfig()
	cfg.TransientRetries = 2
	clock := newFakeClock()
	awaiter := New(cfg, clock)

	// Alternate error/progress; each successful poll resets the error run so
	// the budget is never exhausted.
	calls := 0
	result, err := awaiter.Await(context.Background(), func(context.Context) (Check, error) {
		calls++
		switch {
		case calls >= 9:
			return Check{Phase: PhaseSucceeded, Artifact: "done"}, nil
		case calls%2 == 1:
			return Check{}, errors.New("flaky")
		default:
			return Check{Phase: PhaseInProgress}, nil
		}
	})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s (reason %q)", result.Outcome, result.Reason)
	}
}
