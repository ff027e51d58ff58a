package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/outfitter/internal/logging"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the circuit breaker in front of the catalog
// service. FailureThreshold 0 disables the breaker.
type BreakerSettings struct {
	FailureThreshold uint32        // consecutive failures before opening
	OpenTimeout      time.Duration // how long the breaker stays open
	HalfOpenRequests uint32        // probe requests allowed while half-open
}

// breaker wraps gobreaker. A nil *breaker passes calls straight through.
type breaker struct {
	cb *gobreaker.CircuitBreaker[[]byte]
}

func newBreaker(s BreakerSettings) *breaker {
	if s.FailureThreshold == 0 {
		return nil
	}
	threshold := s.FailureThreshold
	settings := gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &breaker{cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

func (b *breaker) execute(fn func() ([]byte, error)) ([]byte, error) {
	if b == nil {
		return fn()
	}
	body, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("catalog service unavailable: %w", err)
	}
	return body, err
}

func (b *breaker) state() string {
	if b == nil {
		return "disabled"
	}
	return b.cb.State().String()
}
