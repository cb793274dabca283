// Package ratelimit provides token buckets on top of golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
)

// Limiter wraps rate.Limiter with convenience methods.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerMinute requests.
// Burst is 10% of the per-minute budget, at least 1.
func New(requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// NewWithBurst creates a limiter with explicit rate and burst.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}
	return nil
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}

// SetLimit updates the rate limit.
func (l *Limiter) SetLimit(requestsPerMinute int) {
	l.limiter.SetLimit(rate.Limit(float64(requestsPerMinute) / 60.0))
}

// Registry hands out one limiter per external API, shared by every caller of that API.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*Limiter
	rpm      map[string]int
	fallback int
}

// NewRegistry builds a registry. rpm maps API names to requests per minute;
// unknown APIs get defaultRPM.
func NewRegistry(rpm map[string]int, defaultRPM int) *Registry {
	copied := make(map[string]int, len(rpm))
	for k, v := range rpm {
		copied[k] = v
	}
	if defaultRPM <= 0 {
		defaultRPM = 60
	}
	return &Registry{
		limiters: make(map[string]*Limiter),
		rpm:      copied,
		fallback: defaultRPM,
	}
}

// For returns the limiter for api, creating it on first use.
func (r *Registry) For(api string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.limiters[api]; ok {
		return l
	}
	rpm, ok := r.rpm[api]
	if !ok || rpm <= 0 {
		rpm = r.fallback
	}
	l := New(rpm)
	r.limiters[api] = l
	return l
}

// Wait waits on the limiter for api.
func (r *Registry) Wait(ctx context.Context, api string) error {
	return r.For(api).Wait(ctx)
}
