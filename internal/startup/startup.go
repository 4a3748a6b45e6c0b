// Package startup gates the serving loop behind connectivity checks
// against every required backend. Checks that fail with a retryable
// fault are attempted a fixed number of times with a fixed delay;
// anything else aborts startup immediately.
package startup

import (
	"context"
	"log/slog"
	"time"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// Check is one named readiness probe.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes checks in order, retrying retryable failures.
type Runner struct {
	attempts int
	delay    time.Duration
	logger   *slog.Logger

	// sleep is replaced in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(attempts int, delay time.Duration, logger *slog.Logger) *Runner {
	if attempts < 1 {
		attempts = 1
	}
	return &Runner{
		attempts: attempts,
		delay:    delay,
		logger:   logger,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes every check in order. A check passes as soon as one
// attempt succeeds. A non-retryable failure, or exhausting all
// attempts, fails the run.
func (r *Runner) Run(ctx context.Context, checks ...Check) error {
	for _, check := range checks {
		if err := r.runCheck(ctx, check); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runCheck(ctx context.Context, check Check) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err := check.Run(ctx)
		if err == nil {
			r.logger.Info("startup check passed", "check", check.Name, "attempt", attempt)
			return nil
		}
		if !fault.Retryable(err) {
			return fault.Wrap(fault.KindConfiguration, "startup check "+check.Name+" failed", err)
		}
		lastErr = err
		r.logger.Warn("startup check failed",
			"check", check.Name, "attempt", attempt, "of", r.attempts, "error", err)
		if attempt < r.attempts {
			if serr := r.sleep(ctx, r.delay); serr != nil {
				return fault.Wrap(fault.KindApplication, "startup interrupted", serr)
			}
		}
	}
	return fault.Wrap(fault.KindInfrastructure,
		"startup check "+check.Name+" exhausted all attempts", lastErr)
}
