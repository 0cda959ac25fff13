// Package retrylimit wraps provider lookups in an adaptive rate limit and a
// bounded exponential backoff.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.WithRetryMax(ctx, func() error {
//	    return search(ctx, query)
//	}, lim, 3)
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

var ErrMaxAttempts = errors.New("max attempts exceeded")

// AdaptiveLimiter raises its rate on success and cuts it on rate-limit or
// server errors.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, bounded by [lo, hi]. stepUp is added on success and stepDown
// multiplies the rate on failure.
func NewAdaptiveLimiter(initial, lo, hi rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	initial = max(initial, 1)
	lo = max(lo, 1)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, max(int(initial), 1)),
		minLimit: lo,
		maxLimit: hi,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.adjustLimit(a.limiter.Limit() + a.stepUp)
	}
}

func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjustLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjustLimit(newLimit rate.Limit) {
	newLimit = min(max(newLimit, a.minLimit), a.maxLimit)
	if newLimit != a.limiter.Limit() {
		a.limiter.SetLimit(newLimit)
		a.limiter.SetBurst(max(int(newLimit), 1))
	}
}

// HTTPError is implemented by errors that carry an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError is a minimal HTTPError for callers that only have a response
// code at hand.
type StatusError struct {
	Code int
	Op   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Code)
}

func (e *StatusError) StatusCode() int { return e.Code }

// FatalError stops retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration
	Multiplier     float64
	Jitter         bool
	Logger         *log.Logger
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    5,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		RateLimitDelay: 100 * time.Millisecond,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// WithRetryMax executes fn with exponential backoff up to maxAttempts times.
func WithRetryMax(ctx context.Context, fn func() error, lim *AdaptiveLimiter, maxAttempts int) error {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = maxAttempts
	return WithRetryConfig(ctx, fn, lim, cfg)
}

// WithRetryConfig runs fn until it succeeds, returns a FatalError, ctx is
// done or the attempts run out. The last error is wrapped in the
// ErrMaxAttempts error.
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg RetryConfig) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("retry")
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				logger.Debug("Succeeded after retry", "attempts", attempt)
			}
			return nil
		}
		lastErr = err

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		switch {
		case isRateLimitError(err):
			if lim != nil {
				lim.RateLimited()
			}
			wait = cfg.RateLimitDelay
			logger.Warn("Rate limited", "attempt", attempt, "limit", currentLimit(lim))
		case isServerError(err):
			if lim != nil {
				lim.RateLimited()
			}
			logger.Warn("Server error", "attempt", attempt, "err", err, "sleep", wait)
		default:
			logger.Debug("Request failed", "attempt", attempt, "err", err, "sleep", wait)
		}

		if cfg.Jitter {
			wait = addJitter(wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, cfg.MaxAttempts, lastErr)
}

// addJitter adds 0-25% of delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + time.Duration(rand.Int64N(int64(delay/4)))
}

func isRateLimitError(err error) bool {
	var httpErr HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode() == http.StatusTooManyRequests
}

func isServerError(err error) bool {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	code := httpErr.StatusCode()
	return code >= 500 && code < 600
}

func currentLimit(lim *AdaptiveLimiter) float64 {
	if lim == nil {
		return 0
	}
	return lim.CurrentLimit()
}
