// Package server assembles the HTTP server: the backing store, the analytics
// persister, the stats collector, and the API and feed routers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/amirb101/proofdeck/internal/profile"
	"github.com/amirb101/proofdeck/plugin/analytics"
	"github.com/amirb101/proofdeck/server/internal/observability"
	apiv1 "github.com/amirb101/proofdeck/server/router/api/v1"
	"github.com/amirb101/proofdeck/server/router/feed"
	"github.com/amirb101/proofdeck/server/stats"
	"github.com/amirb101/proofdeck/store"
)

// Server owns the HTTP listener and the background workers around the store.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	persister  *analytics.Persister
	collector  *stats.Collector
}

// NewServer assembles a server from a validated profile and an open store.
// Background workers do not run until Start.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: observability.GenerateRequestID,
	}))
	echoServer.Use(middleware.CORS())
	echoServer.Use(requestLogger())

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: echoServer,
	}

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	var sink analytics.Sink
	if profile.AnalyticsEnabled {
		s.persister = analytics.NewPersister(store, analytics.PersisterConfig{
			FlushInterval: profile.AnalyticsFlushInterval,
		})
		sink = s.persister
	} else {
		sink = analytics.NewNoopSink()
	}

	s.collector = stats.NewCollector(store, stats.DefaultCollectInterval)

	apiService, err := apiv1.NewAPIV1Service(profile, store, sink, s.collector)
	if err != nil {
		return nil, fmt.Errorf("failed to create api service: %w", err)
	}
	apiService.RegisterRoutes(echoServer)

	// The feed routes are always mounted; the handlers gate on the profile so
	// a disabled feed answers 404 instead of falling through to the API.
	feedService, err := feed.NewFeedService(profile, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed service: %w", err)
	}
	feedService.RegisterRoutes(echoServer)

	// Prime the stats cache so the first stats request does not pay the
	// collection cost.
	if _, err := s.collector.Collect(ctx); err != nil {
		slog.Warn("initial stats collection failed", "error", err)
	}

	return s, nil
}

// Start launches the background workers and begins serving. It blocks until
// the listener stops; a graceful Shutdown surfaces as http.ErrServerClosed.
func (s *Server) Start(_ context.Context) error {
	if s.persister != nil {
		s.persister.Start()
	}
	s.collector.Start()

	slog.Info("server started",
		slog.String("addr", s.Profile.Addr),
		slog.Int("port", s.Profile.Port),
		slog.String("mode", s.Profile.Mode),
		slog.String("version", s.Profile.Version),
	)
	return s.echoServer.Start(fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port))
}

// Shutdown drains the listener, stops the background workers, flushes pending
// analytics, and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}

	s.collector.Close()
	if s.persister != nil {
		s.persister.Close()
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server shut down")
}

// requestLogger logs one line per request, tagged with the request id the
// RequestID middleware assigned.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				// Commit the error response so the logged status is the one
				// the client saw.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			slog.Info("http request",
				slog.String(observability.LogFieldRequestID, res.Header().Get(echo.HeaderXRequestID)),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Int64(observability.LogFieldDuration, time.Since(start).Milliseconds()),
			)
			return nil
		}
	}
}
