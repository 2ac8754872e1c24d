// Package retrylimit provides an adaptive rate limiter for clients of
// overload-prone services. The rate grows on success and shrinks when the
// service reports overload, within configured bounds.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(1, 0.1, 2, 0.2, 0.5)
//	if err := lim.Wait(ctx); err != nil {
//	    return err
//	}
//	err := doSomeWork()
//	lim.Observe(err, retrylimit.DefaultClassifier)
package retrylimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// calmPeriod is how long after the last overload the rate may grow again.
const calmPeriod = 10 * time.Second

// =============================================================================
// Limiter
// =============================================================================

// AdaptiveLimiter manages a rate limit that adjusts automatically based
// on the outcome of requests. Thread-safe and works with any error types.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates an AdaptiveLimiter with the given configuration.
//
// Parameters:
//   - initial: starting requests per second
//   - min: minimum allowed rate
//   - max: maximum allowed rate
//   - stepUp: increment on success
//   - stepDown: multiplier applied on overload (e.g., 0.5 to halve)
func NewAdaptiveLimiter(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 0.01
	}
	if max < min {
		max = min
	}
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is canceled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.RLock()
	lim := a.limiter
	a.mu.RUnlock()
	return lim.Wait(ctx)
}

// Success increases the rate after a successful request.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > calmPeriod {
		a.adjustLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited reduces the rate after a response indicating overload.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjustLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Observe feeds a request outcome back into the limiter. Errors the classifier
// does not consider overload leave the rate unchanged.
func (a *AdaptiveLimiter) Observe(err error, classify ErrorClassifier) {
	if err == nil {
		a.Success()
		return
	}
	if classify == nil {
		classify = DefaultClassifier
	}
	if classify(err) {
		a.RateLimited()
	}
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

// CurrentBurst returns the current burst size.
func (a *AdaptiveLimiter) CurrentBurst() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.limiter.Burst()
}

// MaxLimit returns the configured maximum rate.
func (a *AdaptiveLimiter) MaxLimit() rate.Limit { return a.maxLimit }

// MinLimit returns the configured minimum rate.
func (a *AdaptiveLimiter) MinLimit() rate.Limit { return a.minLimit }

// adjustLimit sets the limiter to a new rate, respecting min/max boundaries.
func (a *AdaptiveLimiter) adjustLimit(newLimit rate.Limit) {
	if newLimit > a.maxLimit {
		newLimit = a.maxLimit
	} else if newLimit < a.minLimit {
		newLimit = a.minLimit
	}

	if newLimit != a.limiter.Limit() {
		a.limiter.SetLimit(newLimit)
		a.limiter.SetBurst(burstFor(newLimit))
	}
}

// =============================================================================
// Errors
// =============================================================================

// HTTPError interface for errors that carry HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// ErrorClassifier reports whether an error means the service is overloaded.
type ErrorClassifier func(error) bool

// DefaultClassifier provides HTTP-aware error classification.
// Returns true for 429 (rate limit) and 5xx (server errors).
func DefaultClassifier(err error) bool {
	return IsOverloadStatus(statusOf(err))
}

// IsOverloadStatus reports whether an HTTP status code means overload.
func IsOverloadStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

func statusOf(err error) int {
	if httpErr, ok := err.(HTTPError); ok {
		return httpErr.StatusCode()
	}
	return 0
}

func burstFor(l rate.Limit) int {
	if int(l) > 1 {
		return int(l)
	}
	return 1
}
