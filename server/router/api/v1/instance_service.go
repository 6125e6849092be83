package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/server/internal/errors"
	"github.com/amirb101/proofdeck/server/internal/observability"
)

// InstanceProfileResponse is the body of GET /api/v1/instance/profile.
// It exposes only fields safe for unauthenticated clients.
type InstanceProfileResponse struct {
	Mode    string `json:"mode"`
	Version string `json:"version"`
	Driver  string `json:"driver"`
}

// GetInstanceProfile returns the public server profile.
func (s *APIV1Service) GetInstanceProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, &InstanceProfileResponse{
		Mode:    s.Profile.Mode,
		Version: s.Profile.Version,
		Driver:  s.Profile.Driver,
	})
}

// GetInstanceStats returns instance-wide statistics. The collector's cached
// sample is served when available; refresh=true forces a fresh sample.
func (s *APIV1Service) GetInstanceStats(c echo.Context) error {
	if !queryBool(c, "refresh") {
		if snapshot, ok := s.Collector.Current(); ok {
			return c.JSON(http.StatusOK, snapshot)
		}
	}

	snapshot, err := s.Collector.Collect(c.Request().Context())
	if err != nil {
		return toHTTPError(errors.StoreUnavailable("failed to collect instance statistics", err))
	}
	return c.JSON(http.StatusOK, snapshot)
}

// GetInstanceMetrics returns per-operation request metrics for this process.
func (s *APIV1Service) GetInstanceMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, observability.GlobalMetrics().Snapshot())
}
