// Package poller drives external asynchronous jobs to a terminal state.
//
// The loop separates two kinds of waiting: steady-state polling of a known
// slow job uses a fixed interval, while transient transport errors on the
// poll call itself are retried with exponential backoff and jitter under a
// bounded attempt count. A hard wall-clock ceiling turns the whole wait into
// a timeout outcome; the remote job may still finish later, so the caller
// keeps the persisted job id for reconciliation.
//
// The poller holds no job state of its own. Given a persisted job id and a
// status check closure, a fresh poller resumes waiting after a restart.
package poller

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Phase classifies a provider status response.
type Phase string

const (
	PhaseQueued     Phase = "queued"
	PhaseInProgress Phase = "in_progress"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Check is one observation of a remote job.
type Check struct {
	Phase    Phase
	Artifact string
	Message  string
}

// Outcome is the terminal classification of an await.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeTimeout Outcome = "timeout"
)

// Result carries the terminal outcome of awaiting a job.
type Result struct {
	Outcome  Outcome
	Artifact string
	Reason   string
}

// CheckFunc polls the remote job once. A returned error is treated as a
// transient transport problem; terminal provider failures arrive as
// PhaseFailed with a message.
type CheckFunc func(ctx context.Context) (Check, error)

// Clock abstracts time so tests can simulate elapsed waits deterministically.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// Config bounds the await loop.
type Config struct {
	PollInterval     time.Duration
	MaxWait          time.Duration
	TransientRetries int
	BackoffBase      time.Duration
	BackoffMax       time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 15 * time.Minute
	}
	if c.TransientRetries <= 0 {
		c.TransientRetries = 5
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 30 * time.Second
	}
	return c
}

// Awaiter polls jobs to completion under a shared configuration.
type Awaiter struct {
	cfg   Config
	clock Clock
}

// New constructs an Awaiter. A nil clock selects the wall clock.
func New(cfg Config, clock Clock) *Awaiter {
	if clock == nil {
		clock = realClock{}
	}
	return &Awaiter{cfg: cfg.withDefaults(), clock: clock}
}

// Await polls check until the job reaches a terminal state, the transient
// retry budget is exhausted, or the wall-clock ceiling passes. Only context
// cancellation is reported as an error.
func (a *Awaiter) Await(ctx context.Context, check CheckFunc) (Result, error) {
	deadline := a.clock.Now().Add(a.cfg.MaxWait)
	consecutiveErrors := 0

	for {
		if a.clock.Now().After(deadline) {
			return Result{Outcome: OutcomeTimeout, Reason: fmt.Sprintf("job did not complete within %s", a.cfg.MaxWait)}, nil
		}

		observed, err := check(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			consecutiveErrors++
			if consecutiveErrors > a.cfg.TransientRetries {
				return Result{
					Outcome: OutcomeFailure,
					Reason:  fmt.Sprintf("poll failed %d consecutive times: %v", consecutiveErrors, err),
				}, nil
			}
			if sleepErr := a.clock.Sleep(ctx, a.backoff(consecutiveErrors)); sleepErr != nil {
				return Result{}, sleepErr
			}
			continue
		}
		consecutiveErrors = 0

		switch observed.Phase {
		case PhaseSucceeded:
			return Result{Outcome: OutcomeSuccess, Artifact: observed.Artifact}, nil
		case PhaseFailed:
			reason := observed.Message
			if reason == "" {
				reason = "job failed without detail"
			}
			return Result{Outcome: OutcomeFailure, Reason: reason}, nil
		case PhaseQueued, PhaseInProgress:
			if sleepErr := a.clock.Sleep(ctx, a.cfg.PollInterval); sleepErr != nil {
				return Result{}, sleepErr
			}
		default:
			return Result{Outcome: OutcomeFailure, Reason: fmt.Sprintf("unrecognized job phase %q", observed.Phase)}, nil
		}
	}
}

// backoff computes the delay before transient retry n (1-based) with jitter.
func (a *Awaiter) backoff(attempt int) time.Duration {
	delay := a.cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= a.cfg.BackoffMax {
			delay = a.cfg.BackoffMax
			break
		}
	}
	// Up to 25% jitter so synchronized pollers spread out.
	jitter := time.Duration(rand.Int64N(int64(delay)/4 + 1))
	return delay + jitter
}
