package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrentWrites bounds in-flight mutating requests. The sqlite
// driver serializes writers, so piling more on only grows tail latency.
const DefaultMaxConcurrentWrites = 8

// ConcurrencyLimiter bounds in-flight requests with a weighted semaphore.
type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter creates a limiter admitting at most n requests at a
// time. Non-positive n falls back to DefaultMaxConcurrentWrites.
func NewConcurrencyLimiter(n int64) *ConcurrencyLimiter {
	if n <= 0 {
		n = DefaultMaxConcurrentWrites
	}
	return &ConcurrencyLimiter{sem: semaphore.NewWeighted(n)}
}

// Middleware returns an echo middleware that holds one semaphore slot for
// the duration of the request. Waiting requests abort when their context is
// canceled.
func (cl *ConcurrencyLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := cl.sem.Acquire(c.Request().Context(), 1); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "request canceled while waiting for a write slot")
			}
			defer cl.sem.Release(1)
			return next(c)
		}
	}
}
