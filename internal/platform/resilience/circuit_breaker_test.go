package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker("sota-test", CircuitBreakerConfig{
		FailureThreshold: 2,
		OpenTimeout:      30 * time.Millisecond,
		HalfOpenMaxReq:   1,
	})
	failure := errors.New("upstream down")

	done, err := b.Allow()
	if err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}
	done(failure)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	done, err = b.Allow()
	if err != nil {
		t.Fatalf("expected allow before threshold: %v", err)
	}
	done(failure)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if _, err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	done, err = b.Allow()
	if err != nil {
		t.Fatalf("expected half-open trial request to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}
	if _, err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second half-open trial request to be rejected, got %v", err)
	}

	done(nil)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open trial request, got %s", state)
	}
}
