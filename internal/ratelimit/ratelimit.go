// Package ratelimit throttles calls to upstream APIs on top of
// golang.org/x/time/rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

// Limiter is a named token bucket refilled per minute.
type Limiter struct {
	name    string
	limiter *rate.Limiter
}

// New allows requestsPerMinute calls with a burst of a tenth of that,
// never less than one. A non-positive rate disables limiting.
func New(name string, requestsPerMinute int) *Limiter {
	l := &Limiter{name: name, limiter: rate.NewLimiter(rate.Inf, 1)}
	l.SetLimit(requestsPerMinute)
	return l
}

// Wait blocks until a token is available. Cancellation, or a deadline the
// wait cannot meet, surfaces as CodeRateLimitExceeded.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithCause(err),
			apperror.WithContext(l.name))
	}
	return nil
}

// Allow reports whether a call may happen now, consuming a token if so.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// SetLimit changes the rate and resizes the burst to match.
func (l *Limiter) SetLimit(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		l.limiter.SetLimit(rate.Inf)
		return
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	l.limiter.SetLimit(rate.Limit(float64(requestsPerMinute) / 60.0))
	l.limiter.SetBurst(burst)
}

// Name returns the limiter name.
func (l *Limiter) Name() string {
	return l.name
}
