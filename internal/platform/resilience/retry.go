package resilience

import (
	"context"
	"time"
)

// Retry runs fn until it succeeds, returns an error retryable rejects, the
// attempts are exhausted or ctx is done. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, retryable func(error) bool, fn func(ctx context.Context, attempt int) error) error {
	return retry(ctx, NormalizeRetryPolicy(policy), retryable, fn, sleepContext)
}

func retry(
	ctx context.Context,
	policy RetryPolicy,
	retryable func(error) bool,
	fn func(ctx context.Context, attempt int) error,
	sleep func(ctx context.Context, d time.Duration) error,
) error {
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, policy.Delay(attempt-1)); err != nil {
				return err
			}
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if retryable == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
