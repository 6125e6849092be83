package v1

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/server/internal/errors"
)

// statusForCode maps review error codes onto HTTP statuses.
func statusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidQuality, errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidFilter:
		return http.StatusBadRequest
	case errors.ErrCodeCardNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSessionAlreadyActive, errors.ErrCodeSessionNotActive:
		return http.StatusConflict
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeStoreUnavailable, errors.ErrCodeAnalyticsUnavailable, errors.ErrCodeContextCanceled:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// toHTTPError converts service errors to echo HTTP errors, keeping the
// structured message while hiding internal causes.
func toHTTPError(err error) *echo.HTTPError {
	var reviewErr *errors.ReviewError
	if stderrors.As(err, &reviewErr) {
		return echo.NewHTTPError(statusForCode(reviewErr.Code), reviewErr.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryInt64(c echo.Context, name string) (int64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func queryBool(c echo.Context, name string) bool {
	return c.QueryParam(name) == "true"
}
