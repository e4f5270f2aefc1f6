// Package server assembles the HTTP server and its domain services.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
	"github.com/Kantisaranucheep/schedule-assistant/plugin/ai"
	"github.com/Kantisaranucheep/schedule-assistant/plugin/ai/agent"
	"github.com/Kantisaranucheep/schedule-assistant/plugin/constraint"
	"github.com/Kantisaranucheep/schedule-assistant/internal/observability"
	apimiddleware "github.com/Kantisaranucheep/schedule-assistant/server/middleware"
	apiv1 "github.com/Kantisaranucheep/schedule-assistant/server/router/api/v1"
	"github.com/Kantisaranucheep/schedule-assistant/server/service/schedule"
	"github.com/Kantisaranucheep/schedule-assistant/server/stats"
	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// Assistant endpoints fan out to the LLM; keep their rate well below
// what the backend providers tolerate.
const (
	assistantRateRPS   = 5
	assistantRateBurst = 10
)

// Server is the assembled scheduling assistant server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiV1      *apiv1.APIV1Service
}

// NewServer builds the server and all its services from the profile.
func NewServer(ctx context.Context, p *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger())

	llmClient, err := ai.NewClientFromProfile(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM client")
	}
	if llmClient == nil {
		slog.Warn("no LLM backend configured, assistant parsing is disabled")
	}

	constraintClient := constraint.NewClientFromProfile(p)
	if constraintClient == nil {
		slog.Info("no constraint engine configured, advisory checks are disabled")
	}

	metrics := observability.NewMetrics()
	scheduleService := schedule.NewService(st, p)
	parser := agent.NewParser(llmClient, metrics)
	executor := agent.NewExecutor(scheduleService, constraintClient, metrics, p.ConfidenceThreshold)

	statsCollector := stats.NewCollector(st, time.Hour)
	statsCollector.Start(ctx)

	s := &Server{
		Profile:    p,
		Store:      st,
		echoServer: e,
		apiV1:      apiv1.NewAPIV1Service(p, st, scheduleService, parser, executor, metrics),
	}
	s.apiV1.Stats = statsCollector
	assistantLimiter := apimiddleware.NewRateLimiter(assistantRateRPS, assistantRateBurst)
	s.apiV1.Register(e, assistantLimiter.Middleware())

	return s, nil
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started",
		slog.String("address", address),
		slog.String("mode", s.Profile.Mode),
		slog.String("version", s.Profile.Version))
	return s.echoServer.Start(address)
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down server gracefully", slog.Any("error", err))
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.Any("error", err))
	}
	slog.Info("server stopped")
}

// requestLogger logs each request with latency and status.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			slog.Info("http request",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", c.Response().Status),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()))
			return err
		}
	}
}
