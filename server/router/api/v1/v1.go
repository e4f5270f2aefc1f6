// Package v1 exposes the scheduling assistant HTTP API.
package v1

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
	"github.com/Kantisaranucheep/schedule-assistant/plugin/ai/agent"
	"github.com/Kantisaranucheep/schedule-assistant/internal/observability"
	"github.com/Kantisaranucheep/schedule-assistant/server/service/schedule"
	"github.com/Kantisaranucheep/schedule-assistant/server/stats"
	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// SettingsStore is the subset of the store the settings endpoints use.
type SettingsStore interface {
	GetUserSettings(ctx context.Context, find *store.FindUserSettings) (*store.UserSettings, error)
	UpsertUserSettings(ctx context.Context, upsert *store.UpsertUserSettings) (*store.UserSettings, error)
}

// APIV1Service wires the HTTP handlers to the domain services.
type APIV1Service struct {
	Profile  *profile.Profile
	Store    SettingsStore
	Schedule schedule.Service
	Parser   *agent.Parser
	Executor *agent.Executor
	Metrics  *observability.Metrics

	// Stats is optional; the route is only mounted when set.
	Stats *stats.Collector
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(p *profile.Profile, st SettingsStore, svc schedule.Service, parser *agent.Parser, executor *agent.Executor, metrics *observability.Metrics) *APIV1Service {
	return &APIV1Service{
		Profile:  p,
		Store:    st,
		Schedule: svc,
		Parser:   parser,
		Executor: executor,
		Metrics:  metrics,
	}
}

// Register mounts all v1 routes on the echo instance. The assistant
// routes additionally run assistantMiddleware, which the server uses
// to rate limit LLM-backed requests.
func (s *APIV1Service) Register(e *echo.Echo, assistantMiddleware ...echo.MiddlewareFunc) {
	g := e.Group("/api/v1")

	a := g.Group("/assistant", assistantMiddleware...)
	a.POST("/parse", s.ParseIntent)
	a.POST("/execute", s.ExecuteIntent)
	a.POST("/message", s.HandleMessage)

	g.GET("/events", s.ListEvents)
	g.POST("/events", s.CreateEvent)
	g.PATCH("/events/:uid", s.MoveEvent)
	g.DELETE("/events/:uid", s.CancelEvent)

	g.GET("/availability", s.GetAvailability)

	g.GET("/settings", s.GetSettings)
	g.PUT("/settings", s.UpdateSettings)

	g.GET("/metrics", s.GetMetrics)
	g.GET("/ping", s.Ping)
	if s.Stats != nil {
		g.GET("/stats", s.GetStats)
	}
}

// GetStats returns the latest usage statistics snapshot.
func (s *APIV1Service) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Stats.Snapshot())
}

// Ping reports liveness.
func (s *APIV1Service) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": s.Profile.Version})
}

// GetMetrics returns the pipeline counters.
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}
