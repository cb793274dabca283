// Package circuitbreaker wraps sony/gobreaker with project defaults and error codes.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
)

// Config configures a breaker.
type Config struct {
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears counts while closed. Zero never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// IsSuccessful classifies an error as success. Nil counts every error as failure.
	IsSuccessful  func(err error) bool
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig trips after 5 consecutive failures and probes again after 60s.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            0,
		Timeout:             60 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker is a typed breaker.
type CircuitBreaker[T any] struct {
	cb   *gobreaker.CircuitBreaker[T]
	name string
}

// New builds a breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: cfg.OnStateChange,
		IsSuccessful:  cfg.IsSuccessful,
	}

	return &CircuitBreaker[T]{
		cb:   gobreaker.NewCircuitBreaker[T](settings),
		name: cfg.Name,
	}
}

// Execute runs fn through the breaker. Rejections are returned as CodeCircuitOpen.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	res, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return res, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err), apperror.WithContext(c.name))
		}
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			return res, apperror.New(apperror.CodeCircuitHalfOpen,
				apperror.WithCause(err), apperror.WithContext(c.name))
		}
	}
	return res, err
}

// Name returns the breaker name.
func (c *CircuitBreaker[T]) Name() string { return c.name }

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State { return c.cb.State() }

// Counts returns the current counters.
func (c *CircuitBreaker[T]) Counts() gobreaker.Counts { return c.cb.Counts() }
