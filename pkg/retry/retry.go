// Package retry runs system-mutating operations with bounded retry and
// a fixed delay between attempts. It is the only retry mechanism for
// host commands; idempotence of the wrapped operation is the caller's
// responsibility.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/NVIDIA/gpu-provisioner/pkg/defaults"
	"github.com/NVIDIA/gpu-provisioner/pkg/errors"
)

// Operation is a typed closure over one mutating step.
type Operation func(ctx context.Context) error

// Policy bounds retry behavior. The same policy applies to every
// mutating call; there are no per-call overrides.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// DefaultPolicy returns the provisioner-wide retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: defaults.RetryMaxAttempts,
		Delay:       defaults.RetryDelay,
	}
}

// Executor retries operations under a Policy.
type Executor struct {
	policy Policy

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Executor with the given policy.
func New(policy Policy) *Executor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Executor{
		policy: policy,
		sleep:  sleepContext,
	}
}

// Run invokes op until it succeeds or the policy is exhausted. The step
// name appears in attempt logs and in the terminal error. Exhaustion is
// returned as an EXHAUSTED_RETRY structured error wrapping the last
// failure.
func (e *Executor) Run(ctx context.Context, step string, op Operation) error {
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 1 {
				slog.Info("step succeeded after retry", "step", step, "attempt", attempt)
			}
			return nil
		}

		if attempt == e.policy.MaxAttempts {
			break
		}

		slog.Warn("step failed, retrying",
			"step", step,
			"attempt", attempt,
			"maxAttempts", e.policy.MaxAttempts,
			"delay", e.policy.Delay,
			"error", lastErr)

		if err := e.sleep(ctx, e.policy.Delay); err != nil {
			return err
		}
	}

	return errors.WrapWithContext(
		errors.ErrCodeExhaustedRetry,
		"step failed after all retry attempts",
		lastErr,
		map[string]any{
			"step":     step,
			"attempts": e.policy.MaxAttempts,
		},
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
