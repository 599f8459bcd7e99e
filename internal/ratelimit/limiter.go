package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound requests to a remote provider
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit_limiter.go -package=mocks -mock_names=Limiter=MockRateLimiter
type Limiter interface {
	// Wait blocks until a request may be sent or ctx is done
	Wait(ctx context.Context) error
}

type limiter struct {
	limiter *rate.Limiter
}

// NewLimiter returns a token bucket limiter shared by every caller holding it.
// A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) Limiter {
	if requestsPerSecond <= 0 {
		return &limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (l *limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}
