package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kantisaranucheep/schedule-assistant/server/service/schedule"
	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// Event is the wire representation of a calendar event.
type Event struct {
	UID         string `json:"uid"`
	CalendarID  int32  `json:"calendar_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	Timezone    string `json:"timezone,omitempty"`
	Status      string `json:"status"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func eventFromStore(e *store.CalendarEvent) *Event {
	return &Event{
		UID:         e.UID,
		CalendarID:  e.CalendarID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartAt:     time.Unix(e.StartTs, 0).UTC().Format(time.RFC3339),
		EndAt:       time.Unix(e.EndTs, 0).UTC().Format(time.RFC3339),
		Timezone:    e.Timezone,
		Status:      string(e.Status),
		CreatedBy:   string(e.CreatedBy),
		CreatedAt:   time.Unix(e.CreatedTs, 0).UTC().Format(time.RFC3339),
		UpdatedAt:   time.Unix(e.UpdatedTs, 0).UTC().Format(time.RFC3339),
	}
}

func eventsFromStore(events []*store.CalendarEvent) []*Event {
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		out = append(out, eventFromStore(e))
	}
	return out
}

// CreateEventBody is the create event request payload.
type CreateEventBody struct {
	UserID      int32  `json:"user_id"`
	CalendarID  int32  `json:"calendar_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartAt     string `json:"start_at"` // RFC 3339
	EndAt       string `json:"end_at"`   // RFC 3339
	Timezone    string `json:"timezone,omitempty"`
}

// ConflictResponse is returned with status 409 when the candidate
// interval overlaps existing events.
type ConflictResponse struct {
	Message   string   `json:"message"`
	Conflicts []*Event `json:"conflicts"`
}

// ListEvents returns the non-cancelled events of a calendar in a time
// range. The range defaults to the next seven days.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	calendarID, err := int32Param(c.QueryParam("calendar_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "calendar_id is required")
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, 7)
	if raw := c.QueryParam("start"); raw != "" {
		if start, err = time.Parse(time.RFC3339, raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "start must be RFC 3339")
		}
	}
	if raw := c.QueryParam("end"); raw != "" {
		if end, err = time.Parse(time.RFC3339, raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "end must be RFC 3339")
		}
	}

	events, err := s.Schedule.ListEvents(c.Request().Context(), calendarID, start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": eventsFromStore(events)})
}

// CreateEvent creates an event, returning 409 with the conflicting
// events when the slot is taken.
func (s *APIV1Service) CreateEvent(c echo.Context) error {
	body := &CreateEventBody{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	start, err := time.Parse(time.RFC3339, body.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_at must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, body.EndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end_at must be RFC 3339")
	}

	event, err := s.Schedule.CreateEvent(c.Request().Context(), body.UserID, &schedule.CreateEventRequest{
		CalendarID:  body.CalendarID,
		Title:       body.Title,
		Description: body.Description,
		Location:    body.Location,
		Start:       start,
		End:         end,
		Timezone:    body.Timezone,
		CreatedBy:   store.EventCreatorUser,
	})
	if err != nil {
		return s.scheduleError(c, err)
	}
	return c.JSON(http.StatusCreated, eventFromStore(event))
}

// MoveEventBody is the reschedule request payload.
type MoveEventBody struct {
	UserID     int32  `json:"user_id"`
	CalendarID int32  `json:"calendar_id"`
	NewStartAt string `json:"new_start_at"` // RFC 3339
	NewEndAt   string `json:"new_end_at"`   // RFC 3339
}

// MoveEvent reschedules the event identified by the uid path param.
func (s *APIV1Service) MoveEvent(c echo.Context) error {
	body := &MoveEventBody{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	newStart, err := time.Parse(time.RFC3339, body.NewStartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "new_start_at must be RFC 3339")
	}
	newEnd, err := time.Parse(time.RFC3339, body.NewEndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "new_end_at must be RFC 3339")
	}

	event, err := s.Schedule.MoveEvent(c.Request().Context(), body.UserID, &schedule.MoveEventRequest{
		CalendarID: body.CalendarID,
		EventUID:   c.Param("uid"),
		NewStart:   newStart,
		NewEnd:     newEnd,
	})
	if err != nil {
		return s.scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, eventFromStore(event))
}

// CancelEvent soft-deletes the event identified by the uid path param.
func (s *APIV1Service) CancelEvent(c echo.Context) error {
	calendarID, err := int32Param(c.QueryParam("calendar_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "calendar_id is required")
	}
	userID, _ := int32Param(c.QueryParam("user_id"))

	event, err := s.Schedule.CancelEvent(c.Request().Context(), userID, &schedule.CancelEventRequest{
		CalendarID: calendarID,
		EventUID:   c.Param("uid"),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, eventFromStore(event))
}

// GetAvailability computes free slots for one day, or over a range
// when start_date and end_date are given.
func (s *APIV1Service) GetAvailability(c echo.Context) error {
	calendarID, err := int32Param(c.QueryParam("calendar_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "calendar_id is required")
	}
	userID, _ := int32Param(c.QueryParam("user_id"))
	ctx := c.Request().Context()

	if date := c.QueryParam("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		slots, err := s.Schedule.AvailableSlots(ctx, userID, calendarID, day)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "availability computation failed").SetInternal(err)
		}
		return c.JSON(http.StatusOK, map[string]any{"slots": slots})
	}

	startDate, err := time.Parse("2006-01-02", c.QueryParam("start_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", c.QueryParam("end_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}
	minDuration := 0
	if raw := c.QueryParam("duration_minutes"); raw != "" {
		if minDuration, err = intParam(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "duration_minutes must be an integer")
		}
	}

	slots, err := s.Schedule.AvailableSlotsRange(ctx, userID, calendarID, startDate, endDate, time.Duration(minDuration)*time.Minute)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "availability computation failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"slots": slots})
}

// scheduleError maps service errors to HTTP responses, converting a
// conflict into a 409 body listing the blockers.
func (s *APIV1Service) scheduleError(c echo.Context, err error) error {
	var conflictErr *schedule.ConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, &ConflictResponse{
			Message:   "requested time overlaps existing events",
			Conflicts: eventsFromStore(conflictErr.Conflicts),
		})
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
