package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("connection reset")

func TestRetryBacksOffExponentially(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	calls := 0
	err := retry(context.Background(), DefaultRetryPolicy(), isTransient, func(context.Context, int) error {
		calls++
		return errTransient
	}, sleep)
	if !errors.Is(err, errTransient) {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("unexpected attempts: got=%d want=%d", calls, 3)
	}
	if len(delays) != 2 || delays[0] != 2*time.Second || delays[1] != 4*time.Second {
		t.Fatalf("unexpected delays: %v", delays)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("status 404")
	calls := 0
	err := retry(context.Background(), DefaultRetryPolicy(), isTransient, func(context.Context, int) error {
		calls++
		return permanent
	}, func(context.Context, time.Duration) error { return nil })
	if !errors.Is(err, permanent) {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("unexpected attempts: got=%d want=%d", calls, 1)
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry(context.Background(), DefaultRetryPolicy(), isTransient, func(_ context.Context, attempt int) error {
		calls++
		if attempt == 1 {
			return errTransient
		}
		return nil
	}, func(context.Context, time.Duration) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("unexpected attempts: got=%d want=%d", calls, 2)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}, isTransient, func(context.Context, int) error {
		return errTransient
	})
	if !errors.Is(err, errTransient) && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}
