package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirb101/proofdeck/server/internal/observability"
)

func TestMetrics_RecordsOperations(t *testing.T) {
	metrics := observability.GlobalMetrics()
	metrics.Reset()

	e := echo.New()
	e.Use(Metrics())
	e.GET("/cards/:uid", func(c echo.Context) error {
		if c.Param("uid") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return c.String(http.StatusOK, "ok")
	})

	for _, path := range []string{"/cards/abc", "/cards/def", "/cards/missing"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}

	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 3, snapshot.RequestTotal)
	assert.EqualValues(t, 1, snapshot.RequestFailed)

	// Parameterized requests collapse into one operation.
	op, ok := snapshot.OperationMetrics["GET /cards/:uid"]
	require.True(t, ok, "operations: %v", snapshot.OperationMetrics)
	assert.EqualValues(t, 3, op.ExecutionCount)
	assert.EqualValues(t, 1, op.ErrorCount)
}
