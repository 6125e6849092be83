package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/server/internal/observability"
)

// Metrics records per-operation request counts, failures, and durations into
// the process-wide metrics collector. The operation label is the route
// pattern, not the raw path, so parameterized routes stay low-cardinality.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			operation := c.Request().Method + " " + c.Path()
			metrics := observability.GlobalMetrics()
			metrics.RecordRequest(operation)
			metrics.RecordDuration(operation, time.Since(start))
			if err != nil {
				metrics.RecordFailure(operation)
			}
			return err
		}
	}
}
