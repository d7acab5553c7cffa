package resilience

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards calls to an upstream dependency. Callers ask for a
// ticket with Allow and report the outcome through the returned callback.
type CircuitBreaker struct {
	cb *gobreaker.TwoStepCircuitBreaker[struct{}]
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg = NormalizeCircuitBreakerConfig(cfg)
	threshold := uint32(cfg.FailureThreshold)

	return &CircuitBreaker{
		cb: gobreaker.NewTwoStepCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        name,
			MaxRequests: uint32(cfg.HalfOpenMaxReq),
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: cfg.OnStateChange,
		}),
	}
}

// Allow returns ErrCircuitOpen while the breaker rejects calls. On success the
// returned done func must be called exactly once with the call's error.
func (b *CircuitBreaker) Allow() (func(error), error) {
	done, err := b.cb.Allow()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return func(callErr error) { done(callErr == nil) }, nil
}

func (b *CircuitBreaker) State() CircuitState {
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return CircuitStateOpen
	case gobreaker.StateHalfOpen:
		return CircuitStateHalfOpen
	default:
		return CircuitStateClosed
	}
}
