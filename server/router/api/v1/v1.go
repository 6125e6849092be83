// Package v1 exposes the REST API: cards, the review queue, grade
// submission, study sessions and instance statistics.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/internal/profile"
	"github.com/amirb101/proofdeck/plugin/analytics"
	apimw "github.com/amirb101/proofdeck/server/middleware"
	"github.com/amirb101/proofdeck/server/service/review"
	"github.com/amirb101/proofdeck/server/service/session"
	"github.com/amirb101/proofdeck/server/stats"
	"github.com/amirb101/proofdeck/store"
)

// defaultUserID attributes sessions on a single-user instance when the
// client does not name a user.
const defaultUserID = "default"

type APIV1Service struct {
	Profile        *profile.Profile
	Store          *store.Store
	ReviewService  review.Service
	SessionManager *session.Manager
	Collector      *stats.Collector

	rateLimiter *apimw.RateLimiter
	writeGuard  *apimw.ConcurrencyLimiter
}

// NewAPIV1Service wires the review workflow behind the REST surface. The
// sink receives session analytics; the collector serves instance statistics.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, sink analytics.Sink, collector *stats.Collector) (*APIV1Service, error) {
	reviewService, err := review.NewService(store)
	if err != nil {
		return nil, err
	}
	return &APIV1Service{
		Profile:        profile,
		Store:          store,
		ReviewService:  reviewService,
		SessionManager: session.NewManager(sink),
		Collector:      collector,
		rateLimiter:    apimw.NewRateLimiter(0, 0),
		writeGuard:     apimw.NewConcurrencyLimiter(0),
	}, nil
}

// RegisterRoutes mounts the REST API under /api/v1. Mutating routes carry
// a per-client rate limit and a write concurrency guard.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1", apimw.Metrics())
	limited := s.rateLimiter.Middleware()
	guarded := s.writeGuard.Middleware()

	g.GET("/cards", s.ListCards)
	g.POST("/cards", s.CreateCard, limited, guarded)
	g.GET("/cards/:uid", s.GetCard)
	g.PATCH("/cards/:uid", s.UpdateCard, limited, guarded)
	g.DELETE("/cards/:uid", s.DeleteCard, limited, guarded)
	g.POST("/cards/:uid/archive", s.ArchiveCard, limited, guarded)
	g.POST("/cards/:uid/restore", s.RestoreCard, limited, guarded)
	g.POST("/cards/:uid/reset", s.ResetCard, limited, guarded)
	g.POST("/cards/:uid/review", s.SubmitReview, limited, guarded)

	g.GET("/queue", s.GetQueue)
	g.GET("/breakdown", s.GetBreakdown)
	g.POST("/reschedule", s.RescheduleAll, limited, guarded)

	g.POST("/sessions", s.BeginSession, limited, guarded)
	g.GET("/sessions", s.ListSessions)
	g.GET("/sessions/current", s.GetCurrentSession)
	g.POST("/sessions/current/answers", s.RecordAnswer, limited, guarded)
	g.POST("/sessions/current/end", s.EndSession, limited, guarded)
	g.DELETE("/sessions/:uid", s.DeleteSession, limited, guarded)

	g.GET("/instance/profile", s.GetInstanceProfile)
	g.GET("/instance/stats", s.GetInstanceStats)
	g.GET("/instance/metrics", s.GetInstanceMetrics)
}
