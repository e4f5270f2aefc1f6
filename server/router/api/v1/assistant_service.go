package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Kantisaranucheep/schedule-assistant/plugin/ai/agent"
)

// MessageRequest drives the combined parse and execute endpoint.
type MessageRequest struct {
	Text       string `json:"text"`
	UserID     int32  `json:"user_id"`
	CalendarID int32  `json:"calendar_id"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

// MessageResponse bundles the parse and execute results of one user
// message.
type MessageResponse struct {
	Parse   *agent.ParseResponse   `json:"parse"`
	Execute *agent.ExecuteResponse `json:"execute,omitempty"`
}

// ParseIntent converts user text into a structured intent. Pipeline
// failures are reported in the body with success false, not as HTTP
// errors.
func (s *APIV1Service) ParseIntent(c echo.Context) error {
	request := &agent.ParseRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	resp := s.Parser.Parse(c.Request().Context(), request, s.userTimezone(c, request.UserID))
	return c.JSON(http.StatusOK, resp)
}

// ExecuteIntent runs a previously parsed intent.
func (s *APIV1Service) ExecuteIntent(c echo.Context) error {
	request := &agent.ExecuteRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if request.Intent == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "intent is required")
	}

	resp := s.Executor.Execute(c.Request().Context(), request)
	return c.JSON(http.StatusOK, resp)
}

// HandleMessage parses and, when the parse succeeds, executes a user
// message in one round trip.
func (s *APIV1Service) HandleMessage(c echo.Context) error {
	request := &MessageRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	ctx := c.Request().Context()
	parseResp := s.Parser.Parse(ctx, &agent.ParseRequest{
		Text:       request.Text,
		UserID:     request.UserID,
		CalendarID: request.CalendarID,
	}, s.userTimezone(c, request.UserID))

	if !parseResp.Success {
		return c.JSON(http.StatusOK, &MessageResponse{Parse: parseResp})
	}

	executeResp := s.Executor.Execute(ctx, &agent.ExecuteRequest{
		Intent:     parseResp.Intent,
		UserID:     request.UserID,
		CalendarID: request.CalendarID,
		DryRun:     request.DryRun,
	})
	return c.JSON(http.StatusOK, &MessageResponse{Parse: parseResp, Execute: executeResp})
}

// userTimezone resolves the timezone used for relative date parsing.
func (s *APIV1Service) userTimezone(c echo.Context, userID int32) string {
	config, err := s.Schedule.WorkingHours(c.Request().Context(), userID)
	if err != nil {
		return s.Profile.DefaultTimezone
	}
	return config.Timezone
}
