package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Kantisaranucheep/schedule-assistant/server/timezone"
	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// Settings is the wire representation of a user's scheduling preferences.
type Settings struct {
	UserID        int32  `json:"user_id"`
	Timezone      string `json:"timezone"`
	DayStart      string `json:"day_start"`
	DayEnd        string `json:"day_end"`
	BufferMinutes int    `json:"buffer_minutes"`
}

// UpdateSettingsBody is the settings update payload. Absent fields keep
// their current values.
type UpdateSettingsBody struct {
	UserID        int32   `json:"user_id"`
	Timezone      *string `json:"timezone,omitempty"`
	DayStart      *string `json:"day_start,omitempty"`
	DayEnd        *string `json:"day_end,omitempty"`
	BufferMinutes *int    `json:"buffer_minutes,omitempty"`
}

// GetSettings returns the stored settings of a user, falling back to the
// working-hours defaults when the user has none.
func (s *APIV1Service) GetSettings(c echo.Context) error {
	userID, err := int32Param(c.QueryParam("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	ctx := c.Request().Context()

	stored, err := s.Store.GetUserSettings(ctx, &store.FindUserSettings{UserID: userID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get settings").SetInternal(err)
	}
	if stored != nil {
		return c.JSON(http.StatusOK, &Settings{
			UserID:        stored.UserID,
			Timezone:      stored.Timezone,
			DayStart:      stored.DayStart,
			DayEnd:        stored.DayEnd,
			BufferMinutes: stored.BufferMinutes,
		})
	}

	config, err := s.Schedule.WorkingHours(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve defaults").SetInternal(err)
	}
	return c.JSON(http.StatusOK, &Settings{
		UserID:        userID,
		Timezone:      config.Timezone,
		DayStart:      config.DayStart,
		DayEnd:        config.DayEnd,
		BufferMinutes: config.BufferMinutes,
	})
}

// UpdateSettings partially updates a user's settings. The merged result
// is validated before writing so availability never loses its day window.
func (s *APIV1Service) UpdateSettings(c echo.Context) error {
	body := &UpdateSettingsBody{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if body.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	ctx := c.Request().Context()

	if body.Timezone != nil && !timezone.IsValidTimezone(*body.Timezone) {
		return echo.NewHTTPError(http.StatusBadRequest, "timezone must be a valid IANA identifier")
	}
	if body.BufferMinutes != nil && *body.BufferMinutes < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "buffer_minutes must be >= 0")
	}

	merged, err := s.Schedule.WorkingHours(ctx, body.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve settings").SetInternal(err)
	}
	if body.DayStart != nil {
		merged.DayStart = *body.DayStart
	}
	if body.DayEnd != nil {
		merged.DayEnd = *body.DayEnd
	}
	dayStart, err := timezone.ParseClock(merged.DayStart)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "day_start must be HH:MM")
	}
	dayEnd, err := timezone.ParseClock(merged.DayEnd)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "day_end must be HH:MM")
	}
	if dayEnd.Hour*60+dayEnd.Minute <= dayStart.Hour*60+dayStart.Minute {
		return echo.NewHTTPError(http.StatusBadRequest, "day_end must be after day_start")
	}

	settings, err := s.Store.UpsertUserSettings(ctx, &store.UpsertUserSettings{
		UserID:        body.UserID,
		Timezone:      body.Timezone,
		DayStart:      body.DayStart,
		DayEnd:        body.DayEnd,
		BufferMinutes: body.BufferMinutes,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update settings").SetInternal(err)
	}

	return c.JSON(http.StatusOK, &Settings{
		UserID:        settings.UserID,
		Timezone:      settings.Timezone,
		DayStart:      settings.DayStart,
		DayEnd:        settings.DayEnd,
		BufferMinutes: settings.BufferMinutes,
	})
}
